package auth3p

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the local account a verified vendor subject maps to. A row always
// carries at least one of the two subject columns; each column is unique, so
// a (vendor, subject) pair maps to at most one user.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email         string         `bun:"email,notnull" json:"email,omitempty"`
	FirstName     string         `bun:"first_name" json:"first_name,omitempty"`
	LastName      string         `bun:"last_name" json:"last_name,omitempty"`
	Phone         string         `bun:"phone_number" json:"phone_number,omitempty"`
	AppleSubject  *string        `bun:"apple_subject,unique,nullzero" json:"apple_subject,omitempty"`
	GoogleSubject *string        `bun:"google_subject,unique,nullzero" json:"google_subject,omitempty"`
	Active        bool           `bun:"active,notnull" json:"active"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// SubjectFor returns the subject stored for the given vendor, nil when the
// account is not linked to that vendor.
func (u *User) SubjectFor(v Vendor) *string {
	switch v {
	case VendorApple:
		return u.AppleSubject
	case VendorGoogle:
		return u.GoogleSubject
	}
	return nil
}

// HasVendorSubject reports whether at least one vendor subject is set.
func (u *User) HasVendorSubject() bool {
	return (u.AppleSubject != nil && *u.AppleSubject != "") ||
		(u.GoogleSubject != nil && *u.GoogleSubject != "")
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Token is an opaque bearer credential. The value is a random secret stored
// verbatim and never mutated; deleting the row revokes it. Ownership is
// exclusive, one user per token, any number of tokens per user.
type Token struct {
	bun.BaseModel `bun:"table:user_tokens,alias:tok"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Value         string     `bun:"value,notnull,unique" json:"value,omitempty"`
	UserID        uuid.UUID  `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User          *User      `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
