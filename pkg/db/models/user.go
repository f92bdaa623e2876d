package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/pharmaeye/pharmaeye-backend/pkg/enums"
)

// User represents a pharmacy staff account. The reserved "root" username is
// seeded at bootstrap and is protected from deletion.
type User struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username              string     `gorm:"column:username;not null;uniqueIndex" json:"username"`
	Email                 string     `gorm:"column:email;not null;uniqueIndex" json:"email"`
	PasswordHash          string     `gorm:"column:password_hash;not null" json:"-"`
	FullName              string     `gorm:"column:full_name;not null" json:"fullName"`
	Role                  enums.Role `gorm:"column:role;not null" json:"role"`
	Phone                 *string    `gorm:"column:phone" json:"phone,omitempty"`
	BiometricCredentialID *string    `gorm:"column:biometric_credential_id" json:"biometricCredentialId,omitempty"`
	CreatedAt             time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt             time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}
