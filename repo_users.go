package rolesync

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var SetUserActiveSQL = `UPDATE "users" AS "usr"
SET
	"is_active" = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

var SetUserRoleSQL = `UPDATE "users" AS "usr"
SET
	"user_role" = ?,
	"updated_at" = ?
WHERE
	"usr"."deleted_at" IS NULL
AND (
	"usr"."id" = ?
) RETURNING *;`

// Users is the persistence surface the reconciliation engine needs. The
// concrete implementation also satisfies repository.Repository[*User] for
// callers that want the full generic API.
type Users interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error)

	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)

	SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error)
	SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*User, error)

	UpdateRole(ctx context.Context, id uuid.UUID, role UserRole) (*User, error)
	UpdateRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role UserRole) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) FindByUsername(ctx context.Context, username string) (*User, error) {
	return a.FindByUsernameTx(ctx, a.db, username)
}

func (a *users) FindByUsernameTx(ctx context.Context, tx bun.IDB, username string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) SetActive(ctx context.Context, id uuid.UUID, active bool) (*User, error) {
	return a.SetActiveTx(ctx, a.db, id, active)
}

func (a *users) SetActiveTx(ctx context.Context, tx bun.IDB, id uuid.UUID, active bool) (*User, error) {
	// NOTE: Updating using the ORM fails due to a bug, it wont persist
	// is_active when the new value is false.
	res, err := a.Repository.RawTx(ctx, tx, SetUserActiveSQL, active, time.Now(), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func (a *users) UpdateRole(ctx context.Context, id uuid.UUID, role UserRole) (*User, error) {
	return a.UpdateRoleTx(ctx, a.db, id, role)
}

func (a *users) UpdateRoleTx(ctx context.Context, tx bun.IDB, id uuid.UUID, role UserRole) (*User, error) {
	// Raw update so only user_role changes. A partial record through the
	// generic UpdateTx would zero every other column.
	res, err := a.Repository.RawTx(ctx, tx, SetUserRoleSQL, role, time.Now(), id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return res[0], nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	if record.FirstName == "" {
		record.FirstName = record.Username
	}

	if record.LastName == "" {
		record.LastName = "-"
	}

	if record.Email == "" {
		record.Email = record.Username + "@email.notfound"
	}
}
