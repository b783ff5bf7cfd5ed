package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repo-sync/core"
	"github.com/uptrace/bun"
)

// membershipRoles are the roles that count as organization membership for
// re-sync distribution. RoleNone values in the table are ignored.
var membershipRoles = []string{"viewer", "admin", "owner"}

type OrganizationStore struct {
	db   *bun.DB
	repo repository.Repository[*organizationRecord]
}

func NewOrganizationStore(db *bun.DB) (*OrganizationStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*organizationRecord](db, organizationHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid organization repository wiring: %w", err)
		}
	}
	return &OrganizationStore{db: db, repo: repo}, nil
}

func (s *OrganizationStore) FindBySlugs(ctx context.Context, slugs []string) ([]core.Organization, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: organization store is not configured")
	}
	trimmed := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if value := strings.TrimSpace(slug); value != "" {
			trimmed = append(trimmed, value)
		}
	}
	if len(trimmed) == 0 {
		return nil, nil
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug IN (?)", bun.In(trimmed))
		}),
		repository.OrderBy("slug ASC"),
	)
	if err != nil {
		return nil, err
	}
	return s.attachSSO(ctx, records)
}

func (s *OrganizationStore) FindWithSSOProvider(ctx context.Context, provider string) ([]core.Organization, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: organization store is not configured")
	}
	trimmedProvider := strings.TrimSpace(provider)
	if trimmedProvider == "" {
		return nil, fmt.Errorf("sqlstore: sso provider is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where(
				"EXISTS (SELECT 1 FROM organization_sso_integrations AS osi WHERE osi.organization_id = ?TableAlias.id AND osi.provider = ?)",
				trimmedProvider,
			)
		}),
		repository.OrderBy("slug ASC"),
	)
	if err != nil {
		return nil, err
	}
	return s.attachSSO(ctx, records)
}

// Members returns each qualifying user once even when the membership table
// carries duplicate rows for the same user.
func (s *OrganizationStore) Members(ctx context.Context, organizationID string) ([]core.User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: organization store is not configured")
	}
	trimmedID := strings.TrimSpace(organizationID)
	if trimmedID == "" {
		return nil, fmt.Errorf("sqlstore: organization id is required")
	}

	var records []*userRecord
	err := s.db.NewSelect().
		Model(&records).
		Where(
			"EXISTS (SELECT 1 FROM organization_members AS om WHERE om.user_id = ?TableAlias.id AND om.organization_id = ? AND om.role IN (?))",
			trimmedID,
			bun.In(membershipRoles),
		).
		OrderExpr("?TableAlias.id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]core.User, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func (s *OrganizationStore) attachSSO(ctx context.Context, records []*organizationRecord) ([]core.Organization, error) {
	if len(records) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.ID)
	}

	var ssoRecords []*ssoIntegrationRecord
	err := s.db.NewSelect().
		Model(&ssoRecords).
		Where("?TableAlias.organization_id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	ssoByOrg := make(map[string]*ssoIntegrationRecord, len(ssoRecords))
	for _, sso := range ssoRecords {
		ssoByOrg[sso.OrganizationID] = sso
	}

	out := make([]core.Organization, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain(ssoByOrg[record.ID]))
	}
	return out, nil
}
