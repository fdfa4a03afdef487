package model

import "time"

// Company is a tenant account. All domain entities are scoped to exactly one
// company except platform-level listings.
type Company struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Status    int       `json:"status"` // 0: inactive, 1: active
	CreatedAt time.Time `json:"created_at"`
}

// User represents a platform user. Every mutating store operation resolves a
// user as its acting context before touching state.
type User struct {
	ID        uint      `json:"id"`
	CompanyID uint      `json:"company_id"`
	Username  string    `json:"username"`
	Password  string    `json:"-"` // bcrypt hash
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Status    int       `json:"status"` // 0: inactive, 1: active
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
