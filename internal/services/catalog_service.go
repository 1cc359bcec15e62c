// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/models"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

// CatalogService manages the versioned obligation ruleset. Catalog versions
// supersede each other by effective date and are never edited in place.
type CatalogService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewCatalogService(db *gorm.DB, audit *AuditService) *CatalogService {
	return &CatalogService{db: db, audit: audit}
}

type CreateCatalogVersionRequest struct {
	Label         string    `json:"label" validate:"required,max=100"`
	EffectiveDate time.Time `json:"effective_date" validate:"required"`
	Notes         string    `json:"notes,omitempty"`
}

type CreateObligationRequest struct {
	CatalogVersionID uuid.UUID                    `json:"catalog_version_id" validate:"required"`
	Code             string                       `json:"code" validate:"required,max=50"`
	Title            string                       `json:"title" validate:"required,max=255"`
	Description      string                       `json:"description,omitempty"`
	FieldType        models.ObligationFieldType   `json:"field_type" validate:"required"`
	Frequency        models.ObligationFrequency   `json:"frequency" validate:"required"`
	Criticality      models.ObligationCriticality `json:"criticality" validate:"required"`
}

func (s *CatalogService) CreateCatalogVersion(actor models.Actor, req *CreateCatalogVersionRequest) (*models.CatalogVersion, error) {
	if !actor.IsSystemAdmin() {
		return nil, apperrors.PermissionDenied("only system administrators may create catalog versions")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid catalog version")
	}

	version := &models.CatalogVersion{
		Label:         req.Label,
		EffectiveDate: req.EffectiveDate,
		Notes:         req.Notes,
	}

	if err := s.db.Create(version).Error; err != nil {
		return nil, fmt.Errorf("failed to create catalog version: %w", err)
	}

	s.audit.Record(actor.ID, nil, "catalog_version", version.ID, models.AuditActionCreate,
		models.JSONB{"label": req.Label})

	return version, nil
}

func (s *CatalogService) CreateObligation(actor models.Actor, req *CreateObligationRequest) (*models.Obligation, error) {
	if !actor.IsSystemAdmin() {
		return nil, apperrors.PermissionDenied("only system administrators may create obligations")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid obligation")
	}

	var version models.CatalogVersion
	if err := s.db.First(&version, "id = ?", req.CatalogVersionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("catalog version %s not found", req.CatalogVersionID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	obligation := &models.Obligation{
		CatalogVersionID: req.CatalogVersionID,
		Code:             req.Code,
		Title:            req.Title,
		Description:      req.Description,
		FieldType:        req.FieldType,
		Frequency:        req.Frequency,
		Criticality:      req.Criticality,
	}

	if err := s.db.Create(obligation).Error; err != nil {
		return nil, fmt.Errorf("failed to create obligation: %w", err)
	}

	s.audit.Record(actor.ID, nil, "obligation", obligation.ID, models.AuditActionCreate,
		models.JSONB{"code": req.Code})

	return obligation, nil
}

// LatestCatalogVersion returns the version with the greatest effective date
// not after now.
func (s *CatalogService) LatestCatalogVersion(now time.Time) (*models.CatalogVersion, error) {
	var version models.CatalogVersion
	err := s.db.Where("effective_date <= ?", now).
		Order("effective_date DESC").
		First(&version).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("no catalog version is effective yet")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &version, nil
}

// ListObligations lists the obligations of a catalog version; with the nil
// UUID it resolves the latest effective version first.
func (s *CatalogService) ListObligations(versionID uuid.UUID, now time.Time) ([]models.Obligation, error) {
	if versionID == uuid.Nil {
		version, err := s.LatestCatalogVersion(now)
		if err != nil {
			return nil, err
		}
		versionID = version.ID
	}

	var obligations []models.Obligation
	if err := s.db.Where("catalog_version_id = ?", versionID).
		Order("code ASC").
		Find(&obligations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch obligations: %w", err)
	}

	return obligations, nil
}

func (s *CatalogService) ListCatalogVersions() ([]models.CatalogVersion, error) {
	var versions []models.CatalogVersion
	if err := s.db.Order("effective_date DESC").Find(&versions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch catalog versions: %w", err)
	}
	return versions, nil
}
