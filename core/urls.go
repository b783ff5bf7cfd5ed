package core

import (
	"fmt"
	"strings"
)

// StaticURLResolver builds notification links from a dashboard base URL.
type StaticURLResolver struct {
	BaseURL        string
	WebhookDocsURL string
}

func NewStaticURLResolver(baseURL string, webhookDocsURL string) *StaticURLResolver {
	return &StaticURLResolver{
		BaseURL:        strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		WebhookDocsURL: strings.TrimSpace(webhookDocsURL),
	}
}

func (r *StaticURLResolver) ProjectIntegrations(projectSlug string) string {
	return fmt.Sprintf("%s/projects/%s/integrations/", r.base(), strings.TrimSpace(projectSlug))
}

func (r *StaticURLResolver) ConnectAccount(projectSlug string) string {
	return r.ProjectIntegrations(projectSlug)
}

func (r *StaticURLResolver) WebhookDocs() string {
	if r == nil {
		return ""
	}
	return r.WebhookDocsURL
}

func (r *StaticURLResolver) base() string {
	if r == nil || r.BaseURL == "" {
		return ""
	}
	return r.BaseURL
}
