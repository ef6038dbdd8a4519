package sqlstore

import (
	"fmt"

	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
)

// RepositoryFactory builds every sql-backed store of the pipeline from a
// single bun handle.
type RepositoryFactory struct {
	db *bun.DB

	subscriptionStore       *SubscriptionStore
	apiGroupStore           *APIGroupStore
	userDirectory           *UserDirectory
	caseTypeConfigStore     *CaseTypeConfigStore
	documentTypeConfigStore *DocumentTypeConfigStore
	statusLedgerStore       *StatusLedgerStore
	documentLedgerStore     *DocumentLedgerStore
	activityStore           *ActivityStore
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
	if f.subscriptionStore != nil {
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

func (f *RepositoryFactory) SubscriptionStore() *SubscriptionStore {
	if f == nil {
		return nil
	}
	return f.subscriptionStore
}

func (f *RepositoryFactory) APIGroupStore() *APIGroupStore {
	if f == nil {
		return nil
	}
	return f.apiGroupStore
}

func (f *RepositoryFactory) UserDirectory() *UserDirectory {
	if f == nil {
		return nil
	}
	return f.userDirectory
}

func (f *RepositoryFactory) CaseTypeConfigStore() *CaseTypeConfigStore {
	if f == nil {
		return nil
	}
	return f.caseTypeConfigStore
}

func (f *RepositoryFactory) DocumentTypeConfigStore() *DocumentTypeConfigStore {
	if f == nil {
		return nil
	}
	return f.documentTypeConfigStore
}

func (f *RepositoryFactory) StatusLedgerStore() *StatusLedgerStore {
	if f == nil {
		return nil
	}
	return f.statusLedgerStore
}

func (f *RepositoryFactory) DocumentLedgerStore() *DocumentLedgerStore {
	if f == nil {
		return nil
	}
	return f.documentLedgerStore
}

func (f *RepositoryFactory) ActivityStore() *ActivityStore {
	if f == nil {
		return nil
	}
	return f.activityStore
}

func (f *RepositoryFactory) initStores() error {
	subscriptionStore, err := NewSubscriptionStore(f.db)
	if err != nil {
		return err
	}
	f.subscriptionStore = subscriptionStore

	apiGroupStore, err := NewAPIGroupStore(f.db)
	if err != nil {
		return err
	}
	f.apiGroupStore = apiGroupStore

	userDirectory, err := NewUserDirectory(f.db)
	if err != nil {
		return err
	}
	f.userDirectory = userDirectory

	caseTypeConfigStore, err := NewCaseTypeConfigStore(f.db)
	if err != nil {
		return err
	}
	f.caseTypeConfigStore = caseTypeConfigStore

	documentTypeConfigStore, err := NewDocumentTypeConfigStore(f.db)
	if err != nil {
		return err
	}
	f.documentTypeConfigStore = documentTypeConfigStore

	statusLedgerStore, err := NewStatusLedgerStore(f.db)
	if err != nil {
		return err
	}
	f.statusLedgerStore = statusLedgerStore

	documentLedgerStore, err := NewDocumentLedgerStore(f.db)
	if err != nil {
		return err
	}
	f.documentLedgerStore = documentLedgerStore

	activityStore, err := NewActivityStore(f.db)
	if err != nil {
		return err
	}
	f.activityStore = activityStore

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
