package rolesync

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's assigned role. Role names are not enumerated here;
// they come from the gateway role mapping, with one name designated as the
// administrator role per engine.
type UserRole = string

// ResourceKind partitions grantable resources.
type ResourceKind = string

const (
	// KindSlice grants access to one slice.
	KindSlice ResourceKind = "slice"
	// KindDashboard grants access to one dashboard.
	KindDashboard ResourceKind = "dashboard"
)

// ResourceKinds returns every kind the grant cascade fans out over.
func ResourceKinds() []ResourceKind {
	return []ResourceKind{KindSlice, KindDashboard}
}

// User is the local identity reconciled against the gateway
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username      string     `bun:"username,notnull,unique" json:"username,omitempty"`
	Role          UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Active        bool       `bun:"is_active" json:"is_active"`
	FirstName     string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email         string     `bun:"email,notnull,unique" json:"email,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// NewProvisionedUser builds the record for a first gateway-authenticated
// login. The gateway only hands us a username, so name and email are
// placeholders derived from it.
func NewProvisionedUser(username string, role UserRole) *User {
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Role:      role,
		Active:    true,
		FirstName: username,
		LastName:  "-",
		Email:     username + "@email.notfound",
	}
}

// Grant gives one user access to one resource. Existence of the row is the
// whole permission; rows are unique per (user, kind, resource).
type Grant struct {
	bun.BaseModel `bun:"table:grants,alias:grt"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	UserID        uuid.UUID    `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	Kind          ResourceKind `bun:"resource_kind,notnull" json:"resource_kind,omitempty"`
	ResourceID    uuid.UUID    `bun:"resource_id,notnull,type:uuid" json:"resource_id,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Resource is one grantable thing (a slice or a dashboard). Rows are owned by
// the surrounding application; this module only reads them to fan out grants.
type Resource struct {
	bun.BaseModel `bun:"table:resources,alias:rsc"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Kind          ResourceKind `bun:"resource_kind,notnull" json:"resource_kind,omitempty"`
	Name          string       `bun:"name,notnull" json:"name,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
