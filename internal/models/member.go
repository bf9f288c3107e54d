package models

import (
	"time"
)

// Member roles
const (
	RoleStandard = "standard"
	RoleAdmin    = "admin"
)

// Member represents a participant in the shared-purchase group.
// Members are deactivated, never hard-deleted, so balance history stays
// attributable.
type Member struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Password     string    `gorm:"size:255" json:"-"` // bcrypt hash
	AuthUID      string    `gorm:"size:36;uniqueIndex" json:"-"`
	Role         string    `gorm:"size:20;default:standard" json:"role"` // standard, admin
	Active       bool      `gorm:"default:true" json:"active"`
	ProfileImage string    `gorm:"size:500" json:"profile_image"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Member) TableName() string { return "members" }

// IsAdmin reports whether the member holds the administrator role.
func (m *Member) IsAdmin() bool { return m.Role == RoleAdmin }
