package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role identifies what a user is allowed to do. Assigned at registration and
// never changed afterwards.
type Role string

const (
	RoleVendor      Role = "vendor"
	RoleDistributor Role = "distributor"
	RoleAuditor     Role = "auditor"
	RoleAdmin       Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleVendor, RoleDistributor, RoleAuditor, RoleAdmin:
		return true
	}
	return false
}

// User represents an authenticated user of one of the portals.
type User struct {
	ID              uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Email           string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash    string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Name            string    `json:"name" gorm:"size:255;not null"`
	Role            Role      `json:"role" gorm:"type:varchar(20);not null;default:'vendor';index"`
	IsEmailVerified bool      `json:"isEmailVerified" gorm:"default:false"`
	CreatedAt       time.Time `json:"createdAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
