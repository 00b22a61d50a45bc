package models

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ReservedUsernames cannot be registered; "me" is the profile sub-resource.
var ReservedUsernames = map[string]bool{
	"me": true,
}

type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Username  string `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email     string `gorm:"type:varchar(254);uniqueIndex;not null" json:"email"`
	FirstName string `gorm:"type:varchar(150)" json:"first_name"`
	LastName  string `gorm:"type:varchar(150)" json:"last_name"`
	Bio       string `gorm:"type:text" json:"bio"`
	Role      Role   `gorm:"type:varchar(20);not null;default:'user'" json:"role"`

	// Account activation state. ConfirmationCode and CodeExpiry are both
	// set (code pending) or both nil (consumed or never issued).
	IsActive         bool       `gorm:"not null;default:false" json:"is_active"`
	IsSuperuser      bool       `gorm:"not null;default:false" json:"-"`
	IsStaff          bool       `gorm:"not null;default:false" json:"-"`
	ConfirmationCode *string    `gorm:"type:varchar(36)" json:"-"`
	CodeExpiry       *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds admin authority.
// Superusers count as admins regardless of their stored role.
func (u *User) IsAdmin() bool {
	return u.IsSuperuser || u.Role == RoleAdmin
}

func (u *User) IsModerator() bool {
	return u.Role == RoleModerator
}

// IssueCode stores a fresh confirmation code, replacing any prior one.
// The most recent code is the only valid one.
func (u *User) IssueCode(code string, ttl time.Duration) {
	expiry := time.Now().Add(ttl)
	u.ConfirmationCode = &code
	u.CodeExpiry = &expiry
}

// ClearCode consumes the pending confirmation code.
func (u *User) ClearCode() {
	u.ConfirmationCode = nil
	u.CodeExpiry = nil
}

// CodeMatches checks a submitted code against the stored one, including expiry.
func (u *User) CodeMatches(code string, now time.Time) bool {
	if u.ConfirmationCode == nil || u.CodeExpiry == nil {
		return false
	}
	if *u.ConfirmationCode != code {
		return false
	}
	return !now.After(*u.CodeExpiry)
}
