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
	"github.com/uptrace/bun/dialect"
)

type UserStore struct {
	db   *bun.DB
	repo repository.Repository[*userRecord]
}

func NewUserStore(db *bun.DB) (*UserStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*userRecord](db, userHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid user repository wiring: %w", err)
		}
	}
	return &UserStore{db: db, repo: repo}, nil
}

func (s *UserStore) Get(ctx context.Context, id string) (core.User, error) {
	if s == nil || s.db == nil {
		return core.User{}, fmt.Errorf("sqlstore: user store is not configured")
	}
	trimmedID := strings.TrimSpace(id)
	if trimmedID == "" {
		return core.User{}, fmt.Errorf("sqlstore: user id is required")
	}

	record := new(userRecord)
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", trimmedID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.User{}, core.ErrUserNotFound
		}
		return core.User{}, err
	}
	return record.toDomain(), nil
}

// ActiveOnWeekday matches users on the ISO weekday of their own last login,
// so each active user is picked up exactly once per week without a separate
// scheduling table.
func (s *UserStore) ActiveOnWeekday(ctx context.Context, weekday int, since time.Time) ([]core.User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: user store is not configured")
	}
	if weekday < 1 || weekday > 7 {
		return nil, fmt.Errorf("sqlstore: weekday %d is outside ISO range 1..7", weekday)
	}

	weekdayExpr := "((CAST(strftime('%w', ?TableAlias.last_login) AS INTEGER) + 6) % 7) + 1 = ?"
	if s.db.Dialect().Name() == dialect.PG {
		weekdayExpr = "EXTRACT(ISODOW FROM ?TableAlias.last_login) = ?"
	}

	records, _, err := s.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("?TableAlias.last_login IS NOT NULL").
				Where("?TableAlias.last_login > ?", since.UTC()).
				Where(weekdayExpr, weekday).
				Where("EXISTS (SELECT 1 FROM linked_accounts AS la WHERE la.user_id = ?TableAlias.id)")
		}),
		repository.OrderBy("id ASC"),
	)
	if err != nil {
		return nil, err
	}

	out := make([]core.User, 0, len(records))
	for _, record := range records {
		out = append(out, record.toDomain())
	}
	return out, nil
}
