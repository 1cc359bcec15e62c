// internal/services/forward_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/metrics"
	"github.com/fuelwatch/compliance-backend/internal/models"
)

// ForwardService hands a cohort of station submissions over to customs
// oversight. Each station is processed independently: one station's failure
// never rolls back or blocks the others, and the result order mirrors the
// target-station list.
type ForwardService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewForwardService(db *gorm.DB, audit *AuditService) *ForwardService {
	return &ForwardService{db: db, audit: audit}
}

type BulkForwardRequest struct {
	PeriodID     uuid.UUID            `json:"period_id" validate:"required"`
	Mode         models.ForwardMode   `json:"mode" validate:"required"`
	StationIDs   []uuid.UUID          `json:"station_ids,omitempty"`
	Explanations map[uuid.UUID]string `json:"explanations,omitempty"`
}

type StationForwardResult struct {
	StationID uuid.UUID             `json:"station_id"`
	Outcome   models.ForwardOutcome `json:"outcome"`
	Message   string                `json:"message"`
}

type BulkForwardResult struct {
	BatchID uuid.UUID              `json:"batch_id"`
	Results []StationForwardResult `json:"results"`
}

// BulkForward runs one forwarding pass for the acting company over the given
// period. With no explicit station subset, all active stations of the company
// are targeted.
func (s *ForwardService) BulkForward(actor models.Actor, req *BulkForwardRequest, now time.Time) (*BulkForwardResult, error) {
	if actor.IsOversight() || actor.CompanyID == nil {
		return nil, apperrors.PermissionDenied("bulk forward is a company-side operation")
	}
	companyID := *actor.CompanyID

	if req.Mode != models.ForwardModeOnlyApproved && req.Mode != models.ForwardModeIncludeEdgeCases {
		return nil, apperrors.Validation("unknown forward mode %q", req.Mode)
	}

	var period models.SubmissionPeriod
	if err := s.db.First(&period, "id = ?", req.PeriodID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("period %s not found", req.PeriodID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	stations, err := s.resolveTargets(companyID, req.StationIDs)
	if err != nil {
		return nil, err
	}

	batch := &models.BulkForwardBatch{
		CompanyID: companyID,
		PeriodID:  period.ID,
		Mode:      req.Mode,
		CreatedBy: actor.ID,
	}
	if err := s.db.Create(batch).Error; err != nil {
		return nil, fmt.Errorf("failed to create forward batch: %w", err)
	}

	results := make([]StationForwardResult, 0, len(stations))
	for i, station := range stations {
		outcome, message := s.forwardStation(actor, &period, station, req.Mode,
			strings.TrimSpace(req.Explanations[station.ID]), now)
		metrics.ObserveForwardOutcome(string(outcome))

		item := models.BulkForwardItem{
			BatchID:   batch.ID,
			StationID: station.ID,
			Position:  i,
			Outcome:   outcome,
			Message:   message,
		}
		if err := s.db.Create(&item).Error; err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"batch_id":   batch.ID,
				"station_id": station.ID,
			}).Error("Failed to record forward batch item")
		}

		results = append(results, StationForwardResult{
			StationID: station.ID,
			Outcome:   outcome,
			Message:   message,
		})
	}

	s.audit.Record(actor.ID, &companyID, "bulk_forward_batch", batch.ID, models.AuditActionCreate,
		models.JSONB{"mode": req.Mode, "stations": len(stations)})

	return &BulkForwardResult{BatchID: batch.ID, Results: results}, nil
}

func (s *ForwardService) resolveTargets(companyID uuid.UUID, stationIDs []uuid.UUID) ([]*models.Station, error) {
	var stations []*models.Station

	if len(stationIDs) == 0 {
		if err := s.db.Where("company_id = ? AND active = ?", companyID, true).
			Order("name ASC").
			Find(&stations).Error; err != nil {
			return nil, fmt.Errorf("failed to fetch company stations: %w", err)
		}
		return stations, nil
	}

	// Explicit subset: preserve the caller's order.
	var found []*models.Station
	if err := s.db.Where("company_id = ? AND id IN ?", companyID, stationIDs).
		Find(&found).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	byID := make(map[uuid.UUID]*models.Station, len(found))
	for _, st := range found {
		byID[st.ID] = st
	}
	for _, id := range stationIDs {
		station, ok := byID[id]
		if !ok {
			return nil, apperrors.NotFound("station %s not found in company", id)
		}
		stations = append(stations, station)
	}

	return stations, nil
}

// forwardStation decides and applies the outcome for one station. Unexpected
// storage failures become FAILED items rather than propagating.
func (s *ForwardService) forwardStation(actor models.Actor, period *models.SubmissionPeriod, station *models.Station, mode models.ForwardMode, explanation string, now time.Time) (models.ForwardOutcome, string) {
	var submission models.Submission
	err := s.db.Where("period_id = ? AND station_id = ?", period.ID, station.ID).
		First(&submission).Error
	hasSubmission := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ForwardOutcomeFailed, fmt.Sprintf("Lookup failed: %v", err)
	}

	if hasSubmission && submission.Status == models.SubmissionStatusApproved {
		if submission.IsForwarded() {
			return models.ForwardOutcomeSkipped, "Already forwarded"
		}
		submission.ForwardedAt = &now
		submission.ForwardedBy = &actor.ID
		if err := s.db.Save(&submission).Error; err != nil {
			return models.ForwardOutcomeFailed, fmt.Sprintf("Failed to forward: %v", err)
		}
		return models.ForwardOutcomeSuccess, "Forwarded"
	}

	if mode == models.ForwardModeOnlyApproved {
		return models.ForwardOutcomeSkipped, "Not approved"
	}

	// Edge case hand-off requires a written explanation.
	if len(explanation) < 5 {
		return models.ForwardOutcomeFailed, "Missing explanation for edge case"
	}

	if hasSubmission {
		submission.ForwardedAt = &now
		submission.ForwardedBy = &actor.ID
		submission.ForwardedWithoutStationSubmit = true
		submission.ForwardExplanation = explanation
		if err := s.db.Save(&submission).Error; err != nil {
			return models.ForwardOutcomeFailed, fmt.Sprintf("Failed to forward: %v", err)
		}
		return models.ForwardOutcomeSuccess, "Forwarded as edge case"
	}

	stub := models.Submission{
		PeriodID:                      period.ID,
		StationID:                     station.ID,
		Status:                        models.SubmissionStatusDraft,
		ForwardedAt:                   &now,
		ForwardedBy:                   &actor.ID,
		ForwardedWithoutStationSubmit: true,
		ForwardExplanation:            explanation,
	}
	if err := s.db.Create(&stub).Error; err != nil {
		return models.ForwardOutcomeFailed, fmt.Sprintf("Failed to create stub submission: %v", err)
	}

	return models.ForwardOutcomeSuccess, "Forwarded as edge case"
}

// GetBatch loads a batch with its items in processing order.
func (s *ForwardService) GetBatch(actor models.Actor, batchID uuid.UUID) (*models.BulkForwardBatch, error) {
	var batch models.BulkForwardBatch
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&batch, "id = ?", batchID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("forward batch %s not found", batchID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.CanAccessCompany(batch.CompanyID) {
		return nil, apperrors.PermissionDenied("no access to forward batch %s", batchID)
	}

	return &batch, nil
}

// ListBatches lists a company's batches, newest first.
func (s *ForwardService) ListBatches(actor models.Actor, companyID uuid.UUID) ([]models.BulkForwardBatch, error) {
	if !actor.CanAccessCompany(companyID) {
		return nil, apperrors.PermissionDenied("no access to company %s", companyID)
	}

	var batches []models.BulkForwardBatch
	if err := s.db.Where("company_id = ?", companyID).
		Order("created_at DESC").
		Find(&batches).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch forward batches: %w", err)
	}

	return batches, nil
}
