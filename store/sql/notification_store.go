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

type NotificationStore struct {
	db   *bun.DB
	repo repository.Repository[*notificationRecord]
}

func NewNotificationStore(db *bun.DB) (*NotificationStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*notificationRecord](db, notificationHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid notification repository wiring: %w", err)
		}
	}
	return &NotificationStore{db: db, repo: repo}, nil
}

// Add deduplicates on (message id, attachment): re-raising the same message
// against the same object refreshes the existing notification instead of
// stacking duplicates in the user's inbox.
func (s *NotificationStore) Add(ctx context.Context, in core.AddNotificationInput) (core.Notification, error) {
	if s == nil || s.db == nil {
		return core.Notification{}, fmt.Errorf("sqlstore: notification store is not configured")
	}
	in.MessageID = strings.TrimSpace(in.MessageID)
	in.AttachedTo.Type = strings.TrimSpace(in.AttachedTo.Type)
	in.AttachedTo.ID = strings.TrimSpace(in.AttachedTo.ID)
	if in.MessageID == "" {
		return core.Notification{}, fmt.Errorf("sqlstore: message id is required")
	}
	if in.AttachedTo.Type == "" || in.AttachedTo.ID == "" {
		return core.Notification{}, fmt.Errorf("sqlstore: notification attachment is required")
	}
	now := time.Now().UTC()

	var out core.Notification
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := findNotificationTx(ctx, tx, in)
		if err != nil {
			return err
		}
		if record == nil {
			record = newNotificationRecord(in, now)
			record.ID = uuid.NewString()
			if _, insertErr := tx.NewInsert().Model(record).Exec(ctx); insertErr != nil {
				if isUniqueViolation(insertErr) {
					record, err = findNotificationTx(ctx, tx, in)
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

		record.Dismissable = in.Dismissable
		record.FormatValues = copyStringMap(in.FormatValues)
		record.UpdatedAt = now
		if _, updateErr := tx.NewUpdate().Model(record).Where("id = ?", record.ID).Exec(ctx); updateErr != nil {
			return updateErr
		}
		out = record.toDomain()
		return nil
	})
	if err != nil {
		return core.Notification{}, err
	}
	return out, nil
}

func findNotificationTx(ctx context.Context, tx bun.Tx, in core.AddNotificationInput) (*notificationRecord, error) {
	record := new(notificationRecord)
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.message_id = ?", in.MessageID).
		Where("?TableAlias.attached_to_type = ?", in.AttachedTo.Type).
		Where("?TableAlias.attached_to_id = ?", in.AttachedTo.ID).
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

func isUniqueViolation(err error) bool {
	message := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}
