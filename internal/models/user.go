// internal/models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type User struct {
	BaseModel
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName     string     `json:"full_name" gorm:"size:255;not null"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"`
	Role         UserRole   `json:"role" gorm:"type:varchar(30);not null;index"`
	Status       UserStatus `json:"status" gorm:"type:varchar(20);default:'active'"`
	CompanyID    *uuid.UUID `json:"company_id" gorm:"type:uuid;index"`
	StationID    *uuid.UUID `json:"station_id" gorm:"type:uuid;index"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// Relationships
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Station *Station `json:"station,omitempty" gorm:"foreignKey:StationID"`
}

func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Actor converts the stored user into the principal value carried through
// service calls.
func (u *User) Actor() Actor {
	return Actor{
		ID:        u.ID,
		Role:      u.Role,
		CompanyID: u.CompanyID,
		StationID: u.StationID,
	}
}
