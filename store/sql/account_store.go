package sqlstore

import (
	"context"
	"fmt"
	"strings"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repo-sync/core"
	"github.com/uptrace/bun"
)

type AccountStore struct {
	db   *bun.DB
	repo repository.Repository[*linkedAccountRecord]
}

func NewAccountStore(db *bun.DB) (*AccountStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*linkedAccountRecord](db, linkedAccountHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid linked account repository wiring: %w", err)
		}
	}
	return &AccountStore{db: db, repo: repo}, nil
}

// ListForUser orders by creation time so webhook fallback walks accounts in
// the order the user connected them.
func (s *AccountStore) ListForUser(ctx context.Context, userID string, providerID string) ([]core.LinkedAccount, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: account store is not configured")
	}
	trimmedUserID := strings.TrimSpace(userID)
	if trimmedUserID == "" {
		return nil, fmt.Errorf("sqlstore: user id is required")
	}
	trimmedProviderID := strings.TrimSpace(providerID)
	if trimmedProviderID == "" {
		return nil, fmt.Errorf("sqlstore: provider id is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("user_id", "=", trimmedUserID),
		repository.SelectBy("provider_id", "=", trimmedProviderID),
		repository.OrderBy("created_at ASC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]core.LinkedAccount, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
