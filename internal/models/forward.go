// internal/models/forward.go
package models

import (
	"github.com/google/uuid"
)

// BulkForwardBatch records one invocation of the bulk-forward workflow for a
// company and period. Batches and their items are append-only audit records,
// never mutated after creation.
type BulkForwardBatch struct {
	BaseModel
	CompanyID uuid.UUID   `json:"company_id" gorm:"type:uuid;not null;index"`
	PeriodID  uuid.UUID   `json:"period_id" gorm:"type:uuid;not null;index"`
	Mode      ForwardMode `json:"mode" gorm:"type:varchar(30);not null"`
	CreatedBy uuid.UUID   `json:"created_by" gorm:"type:uuid;not null"`

	// Relationships
	Company Company            `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	Period  SubmissionPeriod   `json:"period,omitempty" gorm:"foreignKey:PeriodID"`
	Items   []BulkForwardItem  `json:"items,omitempty" gorm:"foreignKey:BatchID;constraint:OnDelete:CASCADE"`
}

// BulkForwardItem is the per-station outcome of a batch. Position preserves
// the processing order of the target-station list.
type BulkForwardItem struct {
	BaseModel
	BatchID   uuid.UUID      `json:"batch_id" gorm:"type:uuid;not null;index"`
	StationID uuid.UUID      `json:"station_id" gorm:"type:uuid;not null;index"`
	Position  int            `json:"position" gorm:"not null"`
	Outcome   ForwardOutcome `json:"outcome" gorm:"type:varchar(20);not null"`
	Message   string         `json:"message" gorm:"size:500"`

	// Relationships
	Batch   BulkForwardBatch `json:"batch,omitempty" gorm:"foreignKey:BatchID"`
	Station Station          `json:"station,omitempty" gorm:"foreignKey:StationID"`
}
