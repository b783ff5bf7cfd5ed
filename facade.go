package reposync

import (
	"fmt"

	reposynccommand "github.com/goliatone/go-repo-sync/command"
	reposyncquery "github.com/goliatone/go-repo-sync/query"
)

// Commands exposes the command handlers downstream dispatchers register.
type Commands struct {
	SyncUser         *reposynccommand.SyncUserCommand
	DistributeResync *reposynccommand.DistributeResyncCommand
	WeeklyResync     *reposynccommand.WeeklyResyncCommand
	AttachWebhook    *reposynccommand.AttachWebhookCommand
}

// Queries exposes the read-side handlers over the same stores.
type Queries struct {
	GetProject             *reposyncquery.GetProjectQuery
	ListRemoteRepositories *reposyncquery.ListRemoteRepositoriesQuery
	ListLinkedAccounts     *reposyncquery.ListLinkedAccountsQuery
}

// Facade pairs a built service with its command and query handlers.
type Facade struct {
	service  *Service
	commands Commands
	queries  Queries
}

func NewFacade(service *Service) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("reposync: service is required")
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		SyncUser:         reposynccommand.NewSyncUserCommand(service, service.permissionChecker),
		DistributeResync: reposynccommand.NewDistributeResyncCommand(service),
		WeeklyResync:     reposynccommand.NewWeeklyResyncCommand(service),
		AttachWebhook:    reposynccommand.NewAttachWebhookCommand(service),
	}
	facade.queries = Queries{
		GetProject:             reposyncquery.NewGetProjectQuery(service.projects),
		ListRemoteRepositories: reposyncquery.NewListRemoteRepositoriesQuery(service.remoteRepos),
		ListLinkedAccounts:     reposyncquery.NewListLinkedAccountsQuery(service.accounts),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() *Service {
	if f == nil {
		return nil
	}
	return f.service
}
