// internal/models/catalog.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// CatalogVersion is a versioned ruleset of obligations. Versions supersede
// each other by effective date; the latest version is the one with the
// greatest effective date not after now.
type CatalogVersion struct {
	BaseModel
	Label         string    `json:"label" gorm:"size:100;not null"`
	EffectiveDate time.Time `json:"effective_date" gorm:"not null;index"`
	Notes         string    `json:"notes" gorm:"type:text"`

	// Relationships
	Obligations []Obligation `json:"obligations,omitempty" gorm:"foreignKey:CatalogVersionID"`
}

type Obligation struct {
	BaseModel
	CatalogVersionID uuid.UUID             `json:"catalog_version_id" gorm:"type:uuid;not null;uniqueIndex:idx_obligations_version_code"`
	Code             string                `json:"code" gorm:"size:50;not null;uniqueIndex:idx_obligations_version_code"`
	Title            string                `json:"title" gorm:"size:255;not null"`
	Description      string                `json:"description" gorm:"type:text"`
	FieldType        ObligationFieldType   `json:"field_type" gorm:"type:varchar(20);not null"`
	Frequency        ObligationFrequency   `json:"frequency" gorm:"type:varchar(20);not null"`
	Criticality      ObligationCriticality `json:"criticality" gorm:"type:varchar(20);not null;index"`

	// Relationships
	CatalogVersion CatalogVersion `json:"catalog_version,omitempty" gorm:"foreignKey:CatalogVersionID"`
}
