// internal/services/audit_service.go
package services

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/models"
)

// AuditService appends mutation records. Writes are fire-and-forget: a failed
// audit insert is logged and never fails the operation that triggered it.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Record(actorID uuid.UUID, companyID *uuid.UUID, entityType string, entityID uuid.UUID, action models.AuditAction, diff models.JSONB) {
	entry := &models.AuditLog{
		ActorID:    &actorID,
		CompanyID:  companyID,
		EntityType: entityType,
		EntityID:   &entityID,
		Action:     action,
		Diff:       diff,
	}

	go func() {
		if err := s.db.Create(entry).Error; err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"entity_type": entityType,
				"entity_id":   entityID,
				"action":      action,
			}).Error("Failed to write audit log")
		}
	}()
}
