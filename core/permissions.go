package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserPermissionChecker allows a sync request when the requester is the
// affected user or a superuser. The check runs before any provider work
// starts.
type UserPermissionChecker struct {
	Users UserStore
}

func NewUserPermissionChecker(users UserStore) *UserPermissionChecker {
	return &UserPermissionChecker{Users: users}
}

func (c *UserPermissionChecker) UserMatchesOrSuperuser(ctx context.Context, requesterID string, userID string) error {
	if c == nil || c.Users == nil {
		return fmt.Errorf("core: permission checker requires a user store")
	}
	requesterID = strings.TrimSpace(requesterID)
	userID = strings.TrimSpace(userID)
	if requesterID == "" {
		return NewPermissionDeniedError(requesterID, userID)
	}
	if requesterID == userID {
		return nil
	}
	requester, err := c.Users.Get(ctx, requesterID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return NewPermissionDeniedError(requesterID, userID)
		}
		return err
	}
	if requester.IsSuperuser {
		return nil
	}
	return NewPermissionDeniedError(requesterID, userID)
}
