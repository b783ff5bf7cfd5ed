package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repo-sync/core"
	"github.com/uptrace/bun"
)

type ProjectStore struct {
	db   *bun.DB
	repo repository.Repository[*projectRecord]
}

func NewProjectStore(db *bun.DB) (*ProjectStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*projectRecord](db, projectHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid project repository wiring: %w", err)
		}
	}
	return &ProjectStore{db: db, repo: repo}, nil
}

func (s *ProjectStore) Get(ctx context.Context, id string) (core.Project, error) {
	if s == nil || s.db == nil {
		return core.Project{}, fmt.Errorf("sqlstore: project store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.Project{}, fmt.Errorf("sqlstore: project id is required")
	}

	record := new(projectRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", trimmedID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Project{}, core.ErrProjectNotFound
		}
		return core.Project{}, err
	}
	return record.toDomain(), nil
}

// MarkValidWebhook only raises the flag. An already-valid project is a no-op
// rather than an error so repeated attachments stay idempotent.
func (s *ProjectStore) MarkValidWebhook(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: project store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return fmt.Errorf("sqlstore: project id is required")
	}

	result, err := s.db.NewUpdate().
		Model((*projectRecord)(nil)).
		Set("has_valid_webhook = ?", true).
		Set("updated_at = ?", time.Now().UTC()).
		Where("?TableAlias.id = ?", trimmedID).
		Exec(ctx)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return core.ErrProjectNotFound
	}
	return nil
}
