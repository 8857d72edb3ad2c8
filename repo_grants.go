package rolesync

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Grants is the persistence surface for per resource access rows.
type Grants interface {
	ListResourceIDs(ctx context.Context, kind ResourceKind) ([]uuid.UUID, error)
	ListResourceIDsTx(ctx context.Context, tx bun.IDB, kind ResourceKind) ([]uuid.UUID, error)

	ListByUser(ctx context.Context, userID uuid.UUID) ([]*Grant, error)
	ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Grant, error)

	Insert(ctx context.Context, grant *Grant) error
	InsertTx(ctx context.Context, tx bun.IDB, grant *Grant) error

	DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error)
}

type grants struct {
	repository.Repository[*Grant]
	db *bun.DB
}

var (
	_ Grants                        = (*grants)(nil)
	_ repository.Repository[*Grant] = (*grants)(nil)
)

func NewGrantsRepository(db *bun.DB) Grants {
	repo := repository.NewRepository[*Grant](db, repository.ModelHandlers[*Grant]{
		NewRecord: func() *Grant { return &Grant{} },
		GetID: func(g *Grant) uuid.UUID {
			if g == nil {
				return uuid.Nil
			}
			return g.ID
		},
		SetID: func(g *Grant, id uuid.UUID) {
			if g != nil {
				g.ID = id
			}
		},
	})

	return &grants{
		Repository: repo,
		db:         db,
	}
}

func (a *grants) ListResourceIDs(ctx context.Context, kind ResourceKind) ([]uuid.UUID, error) {
	return a.ListResourceIDsTx(ctx, a.db, kind)
}

func (a *grants) ListResourceIDsTx(ctx context.Context, tx bun.IDB, kind ResourceKind) ([]uuid.UUID, error) {
	ids := []uuid.UUID{}
	err := tx.NewSelect().
		Model((*Resource)(nil)).
		Column("id").
		Where("?TableAlias.resource_kind = ?", kind).
		Order("id ASC").
		Scan(ctx, &ids)

	if err != nil {
		return nil, err
	}

	return ids, nil
}

func (a *grants) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Grant, error) {
	return a.ListByUserTx(ctx, a.db, userID)
}

func (a *grants) ListByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) ([]*Grant, error) {
	records := []*Grant{}
	err := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Scan(ctx)

	if err != nil {
		return nil, err
	}

	return records, nil
}

func (a *grants) Insert(ctx context.Context, grant *Grant) error {
	return a.InsertTx(ctx, a.db, grant)
}

// InsertTx is idempotent: re-granting an existing (user, kind, resource)
// tuple is a no-op.
func (a *grants) InsertTx(ctx context.Context, tx bun.IDB, grant *Grant) error {
	if grant.ID == uuid.Nil {
		grant.ID = uuid.New()
	}

	_, err := tx.NewInsert().
		Model(grant).
		On("CONFLICT (user_id, resource_kind, resource_id) DO NOTHING").
		Exec(ctx)

	return err
}

func (a *grants) DeleteByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	return a.DeleteByUserTx(ctx, a.db, userID)
}

func (a *grants) DeleteByUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error) {
	res, err := tx.NewDelete().
		Model((*Grant)(nil)).
		Where("?TableAlias.user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return 0, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	return affected, nil
}
