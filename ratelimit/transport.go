package ratelimit

import (
	"fmt"
	"net/http"
	"strings"
)

type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Transport is a Doer decorator that consults a policy before every provider
// API call and feeds the response headers back in. Buckets derive from the
// request host. Response bodies pass through untouched.
type Transport struct {
	providerID string
	base       Doer
	policy     *AdaptivePolicy
}

func NewTransport(providerID string, base Doer, policy *AdaptivePolicy) (*Transport, error) {
	providerID = strings.TrimSpace(strings.ToLower(providerID))
	if providerID == "" {
		return nil, fmt.Errorf("ratelimit: provider id is required")
	}
	if base == nil {
		return nil, fmt.Errorf("ratelimit: base http client is required")
	}
	if policy == nil {
		return nil, fmt.Errorf("ratelimit: policy is required")
	}
	return &Transport{providerID: providerID, base: base, policy: policy}, nil
}

func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	if t == nil || t.base == nil {
		return nil, fmt.Errorf("ratelimit: transport is not configured")
	}
	if req == nil || req.URL == nil {
		return nil, fmt.Errorf("ratelimit: request is required")
	}
	key := Key{ProviderID: t.providerID, Bucket: req.URL.Hostname()}
	if err := t.policy.BeforeCall(req.Context(), key); err != nil {
		return nil, err
	}
	resp, err := t.base.Do(req)
	if err != nil {
		return nil, err
	}
	if afterErr := t.policy.AfterCall(req.Context(), key, resp.StatusCode, resp.Header); afterErr != nil {
		_ = resp.Body.Close()
		return nil, afterErr
	}
	return resp, nil
}
