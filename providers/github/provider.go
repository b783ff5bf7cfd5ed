package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"
	"github.com/goliatone/go-repo-sync/providers"
	"github.com/goliatone/go-repo-sync/ratelimit"
)

const (
	ProviderID  = "github"
	DisplayName = "GitHub"
	APIURL      = "https://api.github.com"
	Host        = "github.com"

	// IntegrationType is the dashboard integration key this provider
	// serves when the caller pre-selects an integration.
	IntegrationType = "github_webhook"
)

type Config struct {
	APIURL string
	// WebhookEndpoint is the receiver URL registered as the hook target.
	WebhookEndpoint string
	Accounts        core.AccountStore
	Repos           core.RemoteRepositoryStore
	HTTPClient      providers.HTTPDoer
	RequestTimeout  time.Duration
	// RateLimits, when set, throttles API calls per host based on the
	// X-RateLimit response headers.
	RateLimits *ratelimit.AdaptivePolicy
}

func New(cfg Config) (core.Provider, error) {
	if strings.TrimSpace(cfg.APIURL) == "" {
		cfg.APIURL = APIURL
	}
	if strings.TrimSpace(cfg.WebhookEndpoint) == "" {
		return nil, fmt.Errorf("github: webhook endpoint is required")
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

type repoPayload struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	CloneURL      string `json:"clone_url"`
	HTMLURL       string `json:"html_url"`
	Private       bool   `json:"private"`
	DefaultBranch string `json:"default_branch"`
}

func (d *driver) ListRepositories(ctx context.Context, account core.LinkedAccount) ([]core.RemoteRepository, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		d.apiURL+"/user/repos?per_page=100&sort=full_name",
		nil,
	)
	if err != nil {
		return nil, err
	}
	d.authorize(req, account)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: list repositories: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		providers.DiscardResponse(resp)
		return nil, fmt.Errorf("github: list repositories status %d: %w", resp.StatusCode, providers.ErrTokenInvalid)
	default:
		providers.DiscardResponse(resp)
		return nil, fmt.Errorf("github: list repositories unexpected status %d", resp.StatusCode)
	}

	var payload []repoPayload
	if err := providers.DecodeResponse(resp, &payload); err != nil {
		return nil, err
	}
	repos := make([]core.RemoteRepository, 0, len(payload))
	for _, item := range payload {
		repos = append(repos, core.RemoteRepository{
			RemoteID:      strconv.FormatInt(item.ID, 10),
			Name:          item.Name,
			FullName:      item.FullName,
			CloneURL:      item.CloneURL,
			HTMLURL:       item.HTMLURL,
			Private:       item.Private,
			DefaultBranch: item.DefaultBranch,
		})
	}
	return repos, nil
}

type hookRequest struct {
	Name   string     `json:"name"`
	Active bool       `json:"active"`
	Events []string   `json:"events"`
	Config hookConfig `json:"config"`
}

type hookConfig struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

func (d *driver) CreateWebhook(ctx context.Context, account core.LinkedAccount, project core.Project, _ *core.Integration) (bool, error) {
	fullName, ok := providers.RepoFullName(project.RepoURL)
	if !ok {
		return false, fmt.Errorf("github: cannot derive repository from %q", project.RepoURL)
	}

	body, err := json.Marshal(hookRequest{
		Name:   "web",
		Active: true,
		Events: []string{"push"},
		Config: hookConfig{
			URL:         d.webhookEndpoint,
			ContentType: "json",
		},
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.apiURL+"/repos/"+fullName+"/hooks",
		bytes.NewReader(body),
	)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	d.authorize(req, account)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("github: create webhook: %w", err)
	}
	providers.DiscardResponse(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
		return true, nil
	case http.StatusUnprocessableEntity:
		// Hook already exists on the repository; treat as provisioned.
		return true, nil
	case http.StatusUnauthorized:
		return false, providers.ErrTokenInvalid
	case http.StatusForbidden, http.StatusNotFound:
		return false, fmt.Errorf("github: no admin access to %s (status %d)", fullName, resp.StatusCode)
	default:
		return false, fmt.Errorf("github: create webhook unexpected status %d", resp.StatusCode)
	}
}

func (d *driver) RecognizesRepoURL(repoURL string) bool {
	return providers.HostMatches(repoURL, Host)
}

func (d *driver) authorize(req *http.Request, account core.LinkedAccount) {
	req.Header.Set("Authorization", "Bearer "+account.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")
}
