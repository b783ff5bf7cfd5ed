package gitlab

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"
	"github.com/goliatone/go-repo-sync/providers"
	"github.com/goliatone/go-repo-sync/ratelimit"
)

const (
	ProviderID  = "gitlab"
	DisplayName = "GitLab"
	APIURL      = "https://gitlab.com/api/v4"
	Host        = "gitlab.com"

	IntegrationType = "gitlab_webhook"
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
		return nil, fmt.Errorf("gitlab: webhook endpoint is required")
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

type projectPayload struct {
	ID                int64  `json:"id"`
	Path              string `json:"path"`
	PathWithNamespace string `json:"path_with_namespace"`
	HTTPURLToRepo     string `json:"http_url_to_repo"`
	WebURL            string `json:"web_url"`
	Visibility        string `json:"visibility"`
	DefaultBranch     string `json:"default_branch"`
}

func (d *driver) ListRepositories(ctx context.Context, account core.LinkedAccount) ([]core.RemoteRepository, error) {
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		d.apiURL+"/projects?membership=true&per_page=100&order_by=path",
		nil,
	)
	if err != nil {
		return nil, err
	}
	d.authorize(req, account)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gitlab: list projects: %w", err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden:
		providers.DiscardResponse(resp)
		return nil, fmt.Errorf("gitlab: list projects status %d: %w", resp.StatusCode, providers.ErrTokenInvalid)
	default:
		providers.DiscardResponse(resp)
		return nil, fmt.Errorf("gitlab: list projects unexpected status %d", resp.StatusCode)
	}

	var payload []projectPayload
	if err := providers.DecodeResponse(resp, &payload); err != nil {
		return nil, err
	}
	repos := make([]core.RemoteRepository, 0, len(payload))
	for _, item := range payload {
		repos = append(repos, core.RemoteRepository{
			RemoteID:      strconv.FormatInt(item.ID, 10),
			Name:          item.Path,
			FullName:      item.PathWithNamespace,
			CloneURL:      item.HTTPURLToRepo,
			HTMLURL:       item.WebURL,
			Private:       item.Visibility != "public",
			DefaultBranch: item.DefaultBranch,
		})
	}
	return repos, nil
}

type hookRequest struct {
	URL                   string `json:"url"`
	PushEvents            bool   `json:"push_events"`
	EnableSSLVerification bool   `json:"enable_ssl_verification"`
}

func (d *driver) CreateWebhook(ctx context.Context, account core.LinkedAccount, project core.Project, _ *core.Integration) (bool, error) {
	fullName, ok := providers.RepoFullName(project.RepoURL)
	if !ok {
		return false, fmt.Errorf("gitlab: cannot derive project from %q", project.RepoURL)
	}

	body, err := json.Marshal(hookRequest{
		URL:                   d.webhookEndpoint,
		PushEvents:            true,
		EnableSSLVerification: true,
	})
	if err != nil {
		return false, err
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		d.apiURL+"/projects/"+url.PathEscape(fullName)+"/hooks",
		bytes.NewReader(body),
	)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	d.authorize(req, account)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("gitlab: create webhook: %w", err)
	}
	providers.DiscardResponse(resp)

	switch resp.StatusCode {
	case http.StatusCreated:
		return true, nil
	case http.StatusUnauthorized:
		return false, providers.ErrTokenInvalid
	case http.StatusForbidden, http.StatusNotFound:
		return false, fmt.Errorf("gitlab: no maintainer access to %s (status %d)", fullName, resp.StatusCode)
	default:
		return false, fmt.Errorf("gitlab: create webhook unexpected status %d", resp.StatusCode)
	}
}

func (d *driver) RecognizesRepoURL(repoURL string) bool {
	return providers.HostMatches(repoURL, Host)
}

func (d *driver) authorize(req *http.Request, account core.LinkedAccount) {
	req.Header.Set("Authorization", "Bearer "+account.AccessToken)
}
