package models

import "time"

// Credential is a locally managed login, used only by the built-in auth provider.
type Credential struct {
	PrincipalID  string `gorm:"type:char(36);primaryKey"`
	Email        string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"size:255;not null"`
	DisplayName  string `gorm:"size:255"`
	CreatedAt    time.Time
}

// TableName overrides the table name for Credential
func (Credential) TableName() string {
	return "credentials"
}
