package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-repo-sync/core"
)

var (
	_ gocmd.Querier[GetProjectMessage, core.Project]                          = (*GetProjectQuery)(nil)
	_ gocmd.Querier[ListRemoteRepositoriesMessage, []core.RemoteRepository]   = (*ListRemoteRepositoriesQuery)(nil)
	_ gocmd.Querier[ListLinkedAccountsMessage, []core.LinkedAccount]          = (*ListLinkedAccountsQuery)(nil)
)
