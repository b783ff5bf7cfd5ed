package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-repo-sync/core"
)

const maxAPIResponseBytes = 1 << 20 // 1 MiB

// ErrTokenInvalid marks a provider API rejection caused by an invalid or
// revoked access token. The shared account wrapper converts it into the
// recoverable sync-service error kind.
var ErrTokenInvalid = errors.New("providers: access token invalid or revoked")

type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Driver is the host-specific API surface behind a VCS provider descriptor.
type Driver interface {
	// ListRepositories returns every repository the account can see.
	// Authentication failures are reported as ErrTokenInvalid.
	ListRepositories(ctx context.Context, account core.LinkedAccount) ([]core.RemoteRepository, error)
	// CreateWebhook provisions a commit webhook on the remote repository
	// backing the project. A false return without error means the provider
	// declined the hook (missing admin permission on the repository).
	CreateWebhook(ctx context.Context, account core.LinkedAccount, project core.Project, integration *core.Integration) (bool, error)
	// RecognizesRepoURL reports whether the repository URL belongs to the
	// host this driver integrates with.
	RecognizesRepoURL(repoURL string) bool
}

// HostMatches reports whether rawURL points at host or one of its
// subdomains. Scheme-less git SSH remotes (git@host:path) are normalized
// first.
func HostMatches(rawURL string, host string) bool {
	rawURL = strings.TrimSpace(rawURL)
	host = strings.TrimSpace(strings.ToLower(host))
	if rawURL == "" || host == "" {
		return false
	}
	if strings.HasPrefix(rawURL, "git@") {
		rest := strings.TrimPrefix(rawURL, "git@")
		if idx := strings.IndexAny(rest, ":/"); idx > 0 {
			rest = rest[:idx]
		}
		rawURL = "ssh://" + rest
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	candidate := strings.ToLower(parsed.Hostname())
	if candidate == "" {
		return false
	}
	return candidate == host || strings.HasSuffix(candidate, "."+host)
}

// RepoFullName extracts the "namespace/name" path from an https or ssh
// repository URL.
func RepoFullName(repoURL string) (string, bool) {
	repoURL = strings.TrimSpace(repoURL)
	if strings.HasPrefix(repoURL, "git@") {
		rest := strings.TrimPrefix(repoURL, "git@")
		if idx := strings.Index(rest, ":"); idx > 0 {
			return trimRepoPath(rest[idx+1:])
		}
		return "", false
	}
	parsed, err := url.Parse(repoURL)
	if err != nil {
		return "", false
	}
	return trimRepoPath(parsed.Path)
}

func trimRepoPath(path string) (string, bool) {
	path = strings.Trim(strings.TrimSuffix(strings.TrimSpace(path), ".git"), "/")
	if path == "" || !strings.Contains(path, "/") {
		return "", false
	}
	return path, true
}

// DecodeResponse drains and decodes a bounded API response body.
func DecodeResponse(resp *http.Response, into any) error {
	if resp == nil || resp.Body == nil {
		return fmt.Errorf("providers: response body is missing")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAPIResponseBytes))
	if err != nil {
		return fmt.Errorf("providers: read response body: %w", err)
	}
	if into == nil {
		return nil
	}
	if err := json.Unmarshal(body, into); err != nil {
		return fmt.Errorf("providers: decode response body: %w", err)
	}
	return nil
}

// DiscardResponse drains a response body so the connection can be reused.
func DiscardResponse(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
