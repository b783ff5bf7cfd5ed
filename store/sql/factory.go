package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/goliatone/go-repo-sync/core"
	"github.com/uptrace/bun"
)

// RepositoryFactory wires every SQL-backed store off one bun handle. It
// accepts either a raw *bun.DB or a persistence client exposing DB().
type RepositoryFactory struct {
	db *bun.DB

	userStore             *UserStore
	accountStore          *AccountStore
	organizationStore     *OrganizationStore
	projectStore          *ProjectStore
	notificationStore     *NotificationStore
	remoteRepositoryStore *RemoteRepositoryStore
}

func NewRepositoryFactory() *RepositoryFactory {
	return &RepositoryFactory{}
}

func NewRepositoryFactoryFromPersistence(client *persistence.Client) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(client); err != nil {
		return nil, err
	}
	return factory, nil
}

func NewRepositoryFactoryFromDB(db *bun.DB) (*RepositoryFactory, error) {
	factory := NewRepositoryFactory()
	if err := factory.BuildStores(db); err != nil {
		return nil, err
	}
	return factory, nil
}

func (f *RepositoryFactory) BuildStores(persistenceClient any) error {
	if f == nil {
		return fmt.Errorf("sqlstore: repository factory is nil")
	}
	if f.db == nil {
		db, err := resolveBunDB(persistenceClient)
		if err != nil {
			return err
		}
		f.db = db
	}
	if f.userStore != nil && f.projectStore != nil {
		return nil
	}
	return f.initStores()
}

func (f *RepositoryFactory) DB() *bun.DB {
	if f == nil {
		return nil
	}
	return f.db
}

func (f *RepositoryFactory) UserStore() core.UserStore {
	if f == nil {
		return nil
	}
	return f.userStore
}

func (f *RepositoryFactory) AccountStore() core.AccountStore {
	if f == nil {
		return nil
	}
	return f.accountStore
}

func (f *RepositoryFactory) OrganizationStore() core.OrganizationStore {
	if f == nil {
		return nil
	}
	return f.organizationStore
}

func (f *RepositoryFactory) ProjectStore() core.ProjectStore {
	if f == nil {
		return nil
	}
	return f.projectStore
}

func (f *RepositoryFactory) NotificationStore() core.NotificationStore {
	if f == nil {
		return nil
	}
	return f.notificationStore
}

func (f *RepositoryFactory) RemoteRepositoryStore() core.RemoteRepositoryStore {
	if f == nil {
		return nil
	}
	return f.remoteRepositoryStore
}

func (f *RepositoryFactory) initStores() error {
	userStore, err := NewUserStore(f.db)
	if err != nil {
		return err
	}
	f.userStore = userStore
	accountStore, err := NewAccountStore(f.db)
	if err != nil {
		return err
	}
	f.accountStore = accountStore
	organizationStore, err := NewOrganizationStore(f.db)
	if err != nil {
		return err
	}
	f.organizationStore = organizationStore
	projectStore, err := NewProjectStore(f.db)
	if err != nil {
		return err
	}
	f.projectStore = projectStore
	notificationStore, err := NewNotificationStore(f.db)
	if err != nil {
		return err
	}
	f.notificationStore = notificationStore
	remoteRepositoryStore, err := NewRemoteRepositoryStore(f.db)
	if err != nil {
		return err
	}
	f.remoteRepositoryStore = remoteRepositoryStore

	return nil
}

func resolveBunDB(candidate any) (*bun.DB, error) {
	switch typed := candidate.(type) {
	case nil:
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	case *bun.DB:
		return typed, nil
	case interface{ DB() *bun.DB }:
		db := typed.DB()
		if db == nil {
			return nil, fmt.Errorf("sqlstore: persistence client returned nil bun db")
		}
		return db, nil
	default:
		return nil, fmt.Errorf("sqlstore: unsupported persistence client type %T", candidate)
	}
}
