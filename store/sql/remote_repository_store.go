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
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RemoteRepositoryStore struct {
	db   *bun.DB
	repo repository.Repository[*remoteRepositoryRecord]
}

func NewRemoteRepositoryStore(db *bun.DB) (*RemoteRepositoryStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*remoteRepositoryRecord](db, remoteRepositoryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid remote repository wiring: %w", err)
		}
	}
	return &RemoteRepositoryStore{db: db, repo: repo}, nil
}

// Upsert keys on (provider_id, account_id, remote_id) so repeated syncs of
// the same remote listing refresh records in place.
func (s *RemoteRepositoryStore) Upsert(ctx context.Context, repo core.RemoteRepository) (core.RemoteRepository, error) {
	if s == nil || s.db == nil {
		return core.RemoteRepository{}, fmt.Errorf("sqlstore: remote repository store is not configured")
	}
	repo.ProviderID = strings.TrimSpace(repo.ProviderID)
	repo.AccountID = strings.TrimSpace(repo.AccountID)
	repo.RemoteID = strings.TrimSpace(repo.RemoteID)
	if repo.ProviderID == "" || repo.AccountID == "" {
		return core.RemoteRepository{}, fmt.Errorf("sqlstore: provider id and account id are required")
	}
	if repo.RemoteID == "" {
		return core.RemoteRepository{}, fmt.Errorf("sqlstore: remote id is required")
	}
	now := time.Now().UTC()

	var out core.RemoteRepository
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findRemoteRepositoryTx(ctx, tx, repo.ProviderID, repo.AccountID, repo.RemoteID)
		if err != nil {
			return err
		}
		if record == nil {
			record = newRemoteRepositoryRecord(repo, now)
			if strings.TrimSpace(record.ID) == "" {
				record.ID = uuid.NewString()
			}
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if isUniqueViolation(insertErr) {
					record, err = findRemoteRepositoryTx(ctx, tx, repo.ProviderID, repo.AccountID, repo.RemoteID)
					if err != nil {
						return err
					}
					if record == nil {
						return insertErr
					}
				} else {
					return insertErr
				}
			} else {
				out = record.toDomain()
				return nil
			}
		}

		record.Name = repo.Name
		record.FullName = repo.FullName
		record.CloneURL = repo.CloneURL
		record.HTMLURL = repo.HTMLURL
		record.Private = repo.Private
		record.DefaultBranch = repo.DefaultBranch
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.RemoteRepository{}, err
	}
	return out, nil
}

func (s *RemoteRepositoryStore) ListForAccount(ctx context.Context, accountID string) ([]core.RemoteRepository, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: remote repository store is not configured")
	}
	trimmedID := strings.TrimSpace(accountID)
	if trimmedID == "" {
		return nil, fmt.Errorf("sqlstore: account id is required")
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectBy("account_id", "=", trimmedID),
		repository.OrderBy("full_name ASC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]core.RemoteRepository, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}

func findRemoteRepositoryTx(ctx context.Context, tx bun.Tx, providerID, accountID, remoteID string) (*remoteRepositoryRecord, error) {
	record := new(remoteRepositoryRecord)
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.provider_id = ?", providerID).
		Where("?TableAlias.account_id = ?", accountID).
		Where("?TableAlias.remote_id = ?", remoteID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}
