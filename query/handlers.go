package query

import (
	"context"

	"github.com/goliatone/go-repo-sync/core"
)

type ProjectReader interface {
	Get(ctx context.Context, id string) (core.Project, error)
}

type RemoteRepositoryReader interface {
	ListForAccount(ctx context.Context, accountID string) ([]core.RemoteRepository, error)
}

type LinkedAccountReader interface {
	ListForUser(ctx context.Context, userID string, providerID string) ([]core.LinkedAccount, error)
}

type GetProjectQuery struct {
	reader ProjectReader
}

func NewGetProjectQuery(reader ProjectReader) *GetProjectQuery {
	return &GetProjectQuery{reader: reader}
}

func (q *GetProjectQuery) Query(ctx context.Context, msg GetProjectMessage) (core.Project, error) {
	if q == nil || q.reader == nil {
		return core.Project{}, queryDependencyError("query: project reader is required")
	}
	if err := msg.Validate(); err != nil {
		return core.Project{}, err
	}
	return q.reader.Get(ctx, msg.ProjectID)
}

type ListRemoteRepositoriesQuery struct {
	reader RemoteRepositoryReader
}

func NewListRemoteRepositoriesQuery(reader RemoteRepositoryReader) *ListRemoteRepositoriesQuery {
	return &ListRemoteRepositoriesQuery{reader: reader}
}

func (q *ListRemoteRepositoriesQuery) Query(
	ctx context.Context,
	msg ListRemoteRepositoriesMessage,
) ([]core.RemoteRepository, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: remote repository reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.reader.ListForAccount(ctx, msg.AccountID)
}

type ListLinkedAccountsQuery struct {
	reader LinkedAccountReader
}

func NewListLinkedAccountsQuery(reader LinkedAccountReader) *ListLinkedAccountsQuery {
	return &ListLinkedAccountsQuery{reader: reader}
}

func (q *ListLinkedAccountsQuery) Query(
	ctx context.Context,
	msg ListLinkedAccountsMessage,
) ([]core.LinkedAccount, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: linked account reader is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.reader.ListForUser(ctx, msg.UserID, msg.ProviderID)
}
