package sqlstore

import (
	"github.com/goliatone/go-repo-sync/core"
)

var (
	_ core.UserStore             = (*UserStore)(nil)
	_ core.AccountStore          = (*AccountStore)(nil)
	_ core.OrganizationStore     = (*OrganizationStore)(nil)
	_ core.ProjectStore          = (*ProjectStore)(nil)
	_ core.NotificationStore     = (*NotificationStore)(nil)
	_ core.RemoteRepositoryStore = (*RemoteRepositoryStore)(nil)
)
