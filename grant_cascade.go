package rolesync

import (
	"context"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// GrantCascade fans grant rows in and out when a user crosses the
// administrator boundary. Promotion grants every known resource of every
// kind; demotion revokes everything the user holds.
type GrantCascade struct {
	grants Grants
}

func NewGrantCascade(grants Grants) *GrantCascade {
	return &GrantCascade{grants: grants}
}

// PromoteTx grants the user access to every resource of every kind. It is
// idempotent: resources the user already holds are skipped by the insert.
// Returns the number of resources visited.
func (c *GrantCascade) PromoteTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int, error) {
	total := 0
	for _, kind := range ResourceKinds() {
		ids, err := c.grants.ListResourceIDsTx(ctx, tx, kind)
		if err != nil {
			return total, err
		}

		for _, resourceID := range ids {
			grant := &Grant{
				UserID:     userID,
				Kind:       kind,
				ResourceID: resourceID,
			}
			if err := c.grants.InsertTx(ctx, tx, grant); err != nil {
				return total, err
			}
			total++
		}
	}

	return total, nil
}

// DemoteTx revokes every grant the user holds. Returns the number of rows
// removed.
func (c *GrantCascade) DemoteTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) (int64, error) {
	return c.grants.DeleteByUserTx(ctx, tx, userID)
}
