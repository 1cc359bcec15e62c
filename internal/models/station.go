// internal/models/station.go
package models

import (
	"github.com/google/uuid"
)

type Station struct {
	BaseModel
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;not null;index"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Slug      string    `json:"slug" gorm:"uniqueIndex;size:255;not null"`
	Active    bool      `json:"active" gorm:"default:true;index"`
	RiskScore float64   `json:"risk_score" gorm:"type:decimal(5,2);default:0"`
	Latitude  float64   `json:"latitude" gorm:"type:decimal(9,6)"`
	Longitude float64   `json:"longitude" gorm:"type:decimal(9,6)"`
	Address   string    `json:"address" gorm:"size:500"`

	// Relationships
	Company     Company      `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:StationID"`
	Tasks       []Task       `json:"tasks,omitempty" gorm:"foreignKey:StationID"`
}
