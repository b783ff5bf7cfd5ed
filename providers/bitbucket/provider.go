package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"
	"github.com/goliatone/go-repo-sync/providers"
	"github.com/goliatone/go-repo-sync/ratelimit"
)

const (
	ProviderID  = "bitbucket"
	DisplayName = "Bitbucket"
	APIURL      = "https://api.bitbucket.org/2.0"
	Host        = "bitbucket.org"

	IntegrationType = "bitbucket_webhook"
)

type Config struct {
	APIURL          string
	WebhookEndpoint string
	Accounts        core.AccountStore
	Repos           core.RemoteRepositoryStore
	HTTPClient      providers.HTTPDoer
	RequestTimeout  time.Duration
	RateLimits      *ratelimit.AdaptivePolicy
}

func New(cfg Config) (core.Provider, error) {
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = APIURL
	}
	if strings.TrimSpace(cfg.WebhookEndpoint) == "" {
		return nil, fmt.Errorf("bitbucket: webhook endpoint is required")
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if cfg.RateLimits != nil {
		limited, err := ratelimit.NewTransport(ProviderID, httpClient, cfg.RateLimits)
		if err != nil {
			return nil, err
		}
		httpClient = limited
	}
	return providers.NewVCSProvider(providers.VCSConfig{
		ID:          ProviderID,
		DisplayName: DisplayName,
		Accounts:    cfg.Accounts,
		Repos:       cfg.Repos,
		Driver: &driver{
			apiURL:          strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
			webhookEndpoint: strings.TrimSpace(cfg.WebhookEndpoint),
			httpClient:      httpClient,
		},
	})
}

type driver struct {
	apiURL          string
	webhookEndpoint string
	httpClient      providers.HTTPDoer
}

type repoPage struct {
	Values []repoPayload `json:"values"`
}

type repoPayload struct {
	UUID       string `json:"uuid"`
	Name       string `json:"name"`
	FullName   string `json:"full_name"`
	IsPrivate  bool   `json:"is_private"`
	MainBranch struct {
		Name string `json:"name"`
	} `json:"mainbranch"`
	Links struct {
		HTML struct {
			Href string `json:"href"`
		} `json:"html"`
		Clone []struct {
			Name string `json:"name"`
			Href string `json:"href"`
		} `json:"clone"`
	} `json:"links"`
}

func (d *driver) ListRepositories(ctx context.Context, account core.LinkedAccount) ([]core.RemoteRepository, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		d.apiURL+"/repositories?role=member&pagelen=100",
		nil,
	)
	if err != nil {
		return nil, err
	}
	d.authorize(req, account)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("bitbucket: list repositories: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		providers.DiscardResponse(resp)
		return nil, fmt.Errorf("bitbucket: list repositories status %d: %w", resp.StatusCode, providers.ErrTokenInvalid)
	default:
		providers.DiscardResponse(resp)
		return nil, fmt.Errorf("bitbucket: list repositories unexpected status %d", resp.StatusCode)
	}

	var page repoPage
	if err := providers.DecodeResponse(resp, &page); err != nil {
		return nil, err
	}
	repos := make([]core.RemoteRepository, 0, len(page.Values))
	for _, item := range page.Values {
		repo := core.RemoteRepository{
			RemoteID:      item.UUID,
			Name:          item.Name,
			FullName:      item.FullName,
			HTMLURL:       item.Links.HTML.Href,
			Private:       item.IsPrivate,
			DefaultBranch: item.MainBranch.Name,
		}
		for _, clone := range item.Links.Clone {
			if strings.EqualFold(clone.Name, "https") {
				repo.CloneURL = clone.Href
				break
			}
		}
		repos = append(repos, repo)
	}
	return repos, nil
}

type hookRequest struct {
	Description string   `json:"description"`
	URL         string   `json:"url"`
	Active      bool     `json:"active"`
	Events      []string `json:"events"`
}

func (d *driver) CreateWebhook(ctx context.Context, account core.LinkedAccount, project core.Project, _ *core.Integration) (bool, error) {
	fullName, ok := providers.RepoFullName(project.RepoURL)
	if !ok {
		return false, fmt.Errorf("bitbucket: cannot derive repository from %q", project.RepoURL)
	}

	body, err := json.Marshal(hookRequest{
		Description: "repo-sync commit hook",
		URL:         d.webhookEndpoint,
		Active:      true,
		Events:      []string{"repo:push"},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.apiURL+"/repositories/"+fullName+"/hooks",
		bytes.NewReader(body),
	)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	d.authorize(req, account)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("bitbucket: create webhook: %w", err)
	}
	providers.DiscardResponse(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
		return true, nil
	case http.StatusUnauthorized:
		return false, providers.ErrTokenInvalid
	case http.StatusForbidden, http.StatusNotFound:
		return false, fmt.Errorf("bitbucket: no admin access to %s (status %d)", fullName, resp.StatusCode)
	default:
		return false, fmt.Errorf("bitbucket: create webhook unexpected status %d", resp.StatusCode)
	}
}

func (d *driver) RecognizesRepoURL(repoURL string) bool {
	return providers.HostMatches(repoURL, Host)
}

func (d *driver) authorize(req *http.Request, account core.LinkedAccount) {
	req.Header.Set("Authorization", "Bearer "+account.AccessToken)
}
