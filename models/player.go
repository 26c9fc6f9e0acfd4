package models

import "time"

// Role is the closed set of role claims the identity provider may grant.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// ParseRole maps a free-form claim onto the closed Role set. Anything that is
// not exactly "admin" is an ordinary member.
func ParseRole(claim string) Role {
	if Role(claim) == RoleAdmin {
		return RoleAdmin
	}
	return RoleMember
}

// Identity is what the identity gateway resolves a bearer token to.
type Identity struct {
	UserID string
	Email  string
	Role   Role
}

// Player is a league member profile keyed by the identity provider's user id.
type Player struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	Phone       *string   `json:"phone,omitempty" db:"phone"`
	Role        Role      `json:"role" db:"role"`
	AvatarKey   *string   `json:"-" db:"avatar_key"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`

	AvatarURL *string `json:"avatar_url,omitempty" db:"-"`
}

// PublicPlayer is the projection returned by public listings. It never carries
// a phone number.
type PublicPlayer struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Email       string    `json:"email" db:"email"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (p *Player) Public() PublicPlayer {
	return PublicPlayer{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Email:       p.Email,
		CreatedAt:   p.CreatedAt,
	}
}
