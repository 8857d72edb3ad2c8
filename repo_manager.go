package rolesync

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Users() Users
	Grants() Grants
	Resources() repository.Repository[*Resource]
}

func NewResourcesRepository(db *bun.DB) repository.Repository[*Resource] {
	handlers := repository.ModelHandlers[*Resource]{
		NewRecord: func() *Resource {
			return &Resource{}
		},
		GetID: func(record *Resource) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Resource, id uuid.UUID) {
			record.ID = id
		},
		GetIdentifier: func() string {
			return "name"
		},
	}
	return repository.NewRepository(db, handlers)
}

type mngr struct {
	db        *bun.DB
	users     Users
	grants    Grants
	resources repository.Repository[*Resource]
}

func NewRepositoryManager(db *bun.DB) RepositoryManager {
	return &mngr{
		db:        db,
		users:     NewUsersRepository(db),
		grants:    NewGrantsRepository(db),
		resources: NewResourcesRepository(db),
	}
}

func (m mngr) Validate() error {
	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	if m.grants == nil {
		return errors.New("repository grants should be initialized")
	}

	if m.resources == nil {
		return errors.New("repository resources should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) Grants() Grants {
	return m.grants
}

func (m mngr) Resources() repository.Repository[*Resource] {
	return m.resources
}
