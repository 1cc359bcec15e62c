// internal/models/company.go
package models

import (
	"github.com/lib/pq"
)

type Company struct {
	BaseModel
	Name               string         `json:"name" gorm:"size:255;not null"`
	RegistrationNumber string         `json:"registration_number" gorm:"uniqueIndex;size:50;not null"`
	ContactEmail       string         `json:"contact_email" gorm:"size:255"`
	Active             bool           `json:"active" gorm:"default:true"`
	Tags               pq.StringArray `json:"tags" gorm:"type:text[]"`

	// Relationships
	Stations []Station `json:"stations,omitempty" gorm:"foreignKey:CompanyID"`
	Users    []User    `json:"users,omitempty" gorm:"foreignKey:CompanyID"`
}
