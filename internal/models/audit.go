// internal/models/audit.go
package models

import (
	"github.com/google/uuid"
)

// AuditLog is an append-only record of mutating operations. Writes are
// fire-and-forget from the services' perspective.
type AuditLog struct {
	BaseModel
	ActorID    *uuid.UUID  `json:"actor_id" gorm:"type:uuid;index"`
	CompanyID  *uuid.UUID  `json:"company_id" gorm:"type:uuid;index"`
	EntityType string      `json:"entity_type" gorm:"size:50;not null;index"`
	EntityID   *uuid.UUID  `json:"entity_id" gorm:"type:uuid;index"`
	Action     AuditAction `json:"action" gorm:"type:varchar(20);not null;index"`
	Diff       JSONB       `json:"diff" gorm:"type:jsonb"`
	IPAddress  string      `json:"ip_address" gorm:"size:45"`
}
