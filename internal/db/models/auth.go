package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is a human account. PasswordHash is set for email/password accounts,
// Subject for accounts linked to the external SSO provider.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           string     `bun:"id,pk,type:uuid"`
	Subject      *string    `bun:"subject,unique"`
	Email        string     `bun:"email,notnull,unique"`
	PasswordHash *string    `bun:"password_hash"`
	CreatedAt    time.Time  `bun:"created_at,notnull"`
	UpdatedAt    time.Time  `bun:"updated_at,notnull"`
	LastLoginAt  *time.Time `bun:"last_login_at"`
	DisabledAt   *time.Time `bun:"disabled_at"`
}

// Disabled reports whether the account has been switched off.
func (u *User) Disabled() bool {
	return u != nil && u.DisabledAt != nil
}

// Session is a server-side login session. Only the SHA-256 hash of the bearer
// token is stored.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:sess"`

	ID         string    `bun:"id,pk,type:uuid"`
	UserID     string    `bun:"user_id,notnull,type:uuid"`
	TokenHash  string    `bun:"token_hash,notnull,unique"`
	ExpiresAt  time.Time `bun:"expires_at,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	LastUsedAt time.Time `bun:"last_used_at,notnull"`
	UserAgent  *string   `bun:"user_agent"`
	IPAddress  *string   `bun:"ip_address"`
	Revoked    bool      `bun:"revoked,notnull,default:false"`
}

// Profile carries the single role of a user plus display attributes.
// Exactly one per user; never deleted.
type Profile struct {
	bun.BaseModel `bun:"table:profiles,alias:p"`

	UserID     string    `bun:"user_id,pk,type:uuid"`
	Role       string    `bun:"role,notnull"`
	FullName   string    `bun:"full_name,notnull,default:''"`
	Attributes JSONMap   `bun:"attributes,type:jsonb,notnull"`
	CreatedAt  time.Time `bun:"created_at,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`

	User *User `bun:"rel:belongs-to,join:user_id=id"`
}
