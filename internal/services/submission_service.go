// internal/services/submission_service.go
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
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

// SubmissionService owns the submission state machine:
//
//	DRAFT -> SUBMITTED -> UNDER_REVIEW -> APPROVED | REJECTED
//
// with company-side recall/return transitions back to DRAFT, and a separate
// unguarded customs decision path that can set any status.
type SubmissionService struct {
	db      *gorm.DB
	periods *PeriodService
	storage *StorageService
	audit   *AuditService
}

func NewSubmissionService(db *gorm.DB, periods *PeriodService, storage *StorageService, audit *AuditService) *SubmissionService {
	return &SubmissionService{
		db:      db,
		periods: periods,
		storage: storage,
		audit:   audit,
	}
}

type ReturnSubmissionRequest struct {
	Reason string `json:"reason" validate:"required,reason"`
}

type SubmissionCheckRequest struct {
	ObligationID uuid.UUID `json:"obligation_id" validate:"required"`
	Value        string    `json:"value" validate:"required"`
	Notes        string    `json:"notes,omitempty"`
}

type SubmissionSearchParams struct {
	PeriodID  *uuid.UUID               `json:"period_id,omitempty"`
	StationID *uuid.UUID               `json:"station_id,omitempty"`
	Status    *models.SubmissionStatus `json:"status,omitempty"`
}

// EnsureActiveSubmission resolves the submission for (current period,
// station), creating a DRAFT one when none exists. A newly created
// submission is auto-filled from the station's immediately preceding
// submission: check values and notes are copied, and evidence rows are
// carried over by reference to the same stored blob. Evidence carry-over is
// best-effort per item and never fails the creation.
func (s *SubmissionService) EnsureActiveSubmission(actor models.Actor, stationID uuid.UUID, now time.Time) (*models.Submission, error) {
	station, err := s.loadStation(stationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessStation(station) {
		return nil, apperrors.PermissionDenied("no access to station %s", station.Slug)
	}

	period, err := s.periods.GetOrCreateCurrentPeriod(now)
	if err != nil {
		return nil, err
	}

	existing, err := s.findByPeriodStation(period.ID, stationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	submission := &models.Submission{
		PeriodID:  period.ID,
		StationID: stationID,
		Status:    models.SubmissionStatusDraft,
	}

	if err := s.db.Create(submission).Error; err != nil {
		// A concurrent caller won the (period_id, station_id) unique index;
		// fall back to their row.
		if winner, readErr := s.findByPeriodStation(period.ID, stationID); readErr == nil && winner != nil {
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}

	s.autoFillFromPrevious(submission, period, actor, now)

	s.audit.Record(actor.ID, &station.CompanyID, "submission", submission.ID, models.AuditActionCreate, nil)

	return s.reload(submission.ID)
}

// autoFillFromPrevious copies checks and evidence references from the most
// recent prior-period submission of the same station, regardless of that
// submission's status.
func (s *SubmissionService) autoFillFromPrevious(submission *models.Submission, period *models.SubmissionPeriod, actor models.Actor, now time.Time) {
	var previous models.Submission
	err := s.db.Joins("JOIN submission_periods ON submission_periods.id = submissions.period_id").
		Where("submissions.station_id = ? AND submission_periods.start_date < ?", submission.StationID, period.StartDate).
		Order("submission_periods.start_date DESC").
		Preload("Checks").Preload("Evidence").
		First(&previous).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	if err != nil {
		logrus.WithError(err).WithField("submission_id", submission.ID).
			Warn("Auto-fill lookup failed, creating empty submission")
		return
	}

	for _, check := range previous.Checks {
		copied := models.SubmissionCheck{
			SubmissionID: submission.ID,
			ObligationID: check.ObligationID,
			Value:        check.Value,
			Notes:        check.Notes,
		}
		if err := s.db.Create(&copied).Error; err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"submission_id": submission.ID,
				"obligation_id": check.ObligationID,
			}).Warn("Failed to carry over check")
		}
	}

	// Evidence rows point at the same stored blob; no file duplication. Each
	// item is independent, a failure is logged and the loop continues.
	for _, evidence := range previous.Evidence {
		carried := models.Evidence{
			SubmissionID: submission.ID,
			ObligationID: evidence.ObligationID,
			FileName:     evidence.FileName,
			StoragePath:  evidence.StoragePath,
			ContentType:  evidence.ContentType,
			ContentHash:  evidence.ContentHash,
			SizeBytes:    evidence.SizeBytes,
			UploadedBy:   evidence.UploadedBy,
		}
		if err := s.db.Create(&carried).Error; err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"submission_id": submission.ID,
				"file_name":     evidence.FileName,
			}).Warn("Failed to carry over evidence")
		}
	}
}

// Submit moves a DRAFT submission to SUBMITTED. Company-side actors only.
func (s *SubmissionService) Submit(actor models.Actor, submissionID uuid.UUID, now time.Time) (*models.Submission, error) {
	submission, err := s.loadForCompanyAction(actor, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != models.SubmissionStatusDraft {
		return nil, apperrors.Validation("cannot submit a %s submission", submission.Status)
	}

	submission.Status = models.SubmissionStatusSubmitted
	submission.SubmittedAt = &now
	submission.SubmittedBy = &actor.ID

	if err := s.db.Save(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to submit submission: %w", err)
	}

	metrics.ObserveTransition(string(submission.Status))
	s.audit.Record(actor.ID, actor.CompanyID, "submission", submission.ID, models.AuditActionUpdate,
		models.JSONB{"status": models.SubmissionStatusSubmitted})

	return submission, nil
}

// Recall reverts a SUBMITTED submission back to DRAFT before review begins,
// clearing the submit stamp.
func (s *SubmissionService) Recall(actor models.Actor, submissionID uuid.UUID) (*models.Submission, error) {
	submission, err := s.loadForCompanyAction(actor, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != models.SubmissionStatusSubmitted {
		return nil, apperrors.Validation("cannot recall a %s submission", submission.Status)
	}

	submission.Status = models.SubmissionStatusDraft
	submission.SubmittedAt = nil
	submission.SubmittedBy = nil

	if err := s.db.Save(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to recall submission: %w", err)
	}

	metrics.ObserveTransition(string(submission.Status))
	s.audit.Record(actor.ID, actor.CompanyID, "submission", submission.ID, models.AuditActionUpdate,
		models.JSONB{"status": models.SubmissionStatusDraft})

	return submission, nil
}

// Reopen is a second entry point over the recall transition; both exist
// because callers distinguish the two intents.
func (s *SubmissionService) Reopen(actor models.Actor, submissionID uuid.UUID) (*models.Submission, error) {
	return s.Recall(actor, submissionID)
}

// StartReview moves a SUBMITTED submission to UNDER_REVIEW and stamps the
// reviewing company actor. The reviewed_at/by pair is shared with the customs
// decision; last writer wins.
func (s *SubmissionService) StartReview(actor models.Actor, submissionID uuid.UUID, now time.Time) (*models.Submission, error) {
	submission, err := s.loadForCompanyAction(actor, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != models.SubmissionStatusSubmitted {
		return nil, apperrors.Validation("cannot start review of a %s submission", submission.Status)
	}

	submission.Status = models.SubmissionStatusUnderReview
	submission.ReviewedAt = &now
	submission.ReviewedBy = &actor.ID

	if err := s.db.Save(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to start review: %w", err)
	}

	metrics.ObserveTransition(string(submission.Status))
	s.audit.Record(actor.ID, actor.CompanyID, "submission", submission.ID, models.AuditActionUpdate,
		models.JSONB{"status": models.SubmissionStatusUnderReview})

	return submission, nil
}

// ReturnSubmission sends a SUBMITTED or UNDER_REVIEW submission back to the
// station for correction. A reason of at least 5 characters is required.
func (s *SubmissionService) ReturnSubmission(actor models.Actor, submissionID uuid.UUID, req *ReturnSubmissionRequest, now time.Time) (*models.Submission, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("return reason must contain at least 5 characters")
	}

	submission, err := s.loadForCompanyAction(actor, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != models.SubmissionStatusSubmitted && submission.Status != models.SubmissionStatusUnderReview {
		return nil, apperrors.Validation("cannot return a %s submission", submission.Status)
	}

	submission.Status = models.SubmissionStatusDraft
	submission.ReturnReason = strings.TrimSpace(req.Reason)
	submission.CompanyDecisionAt = &now
	submission.CompanyDecisionBy = &actor.ID

	if err := s.db.Save(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to return submission: %w", err)
	}

	metrics.ObserveTransition(string(submission.Status))
	s.audit.Record(actor.ID, actor.CompanyID, "submission", submission.ID, models.AuditActionUpdate,
		models.JSONB{"status": models.SubmissionStatusDraft, "return_reason": submission.ReturnReason})

	return submission, nil
}

// ApproveSubmission is the company-side approval ahead of forwarding. It
// shares the APPROVED status value with the customs decision but runs under
// different guards and stamps different fields.
func (s *SubmissionService) ApproveSubmission(actor models.Actor, submissionID uuid.UUID, now time.Time) (*models.Submission, error) {
	submission, err := s.loadForCompanyAction(actor, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != models.SubmissionStatusSubmitted && submission.Status != models.SubmissionStatusUnderReview {
		return nil, apperrors.Validation("cannot approve a %s submission", submission.Status)
	}

	submission.Status = models.SubmissionStatusApproved
	submission.CompanyDecisionAt = &now
	submission.CompanyDecisionBy = &actor.ID

	if err := s.db.Save(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to approve submission: %w", err)
	}

	metrics.ObserveTransition(string(submission.Status))
	s.audit.Record(actor.ID, actor.CompanyID, "submission", submission.ID, models.AuditActionUpdate,
		models.JSONB{"status": models.SubmissionStatusApproved})

	return submission, nil
}

// UpdateSubmissionStatus is the authoritative customs decision. It carries no
// guard on the current status: the oversight decision always wins, including
// over a prior company approval.
func (s *SubmissionService) UpdateSubmissionStatus(actor models.Actor, submissionID uuid.UUID, status models.SubmissionStatus, now time.Time) (*models.Submission, error) {
	if !actor.IsOversight() {
		return nil, apperrors.PermissionDenied("only oversight actors may set submission status directly")
	}

	if !validSubmissionStatus(status) {
		return nil, apperrors.Validation("unknown submission status %q", status)
	}

	submission, err := s.load(submissionID)
	if err != nil {
		return nil, err
	}

	submission.Status = status
	submission.ReviewedAt = &now
	submission.ReviewedBy = &actor.ID

	if err := s.db.Save(submission).Error; err != nil {
		return nil, fmt.Errorf("failed to update submission status: %w", err)
	}

	metrics.ObserveTransition(string(status))
	s.audit.Record(actor.ID, nil, "submission", submission.ID, models.AuditActionUpdate,
		models.JSONB{"status": status})

	return submission, nil
}

// CreateOrUpdateSubmissionCheck upserts the answer for one obligation.
//
// The mutation guard is deliberately asymmetric: company-side actors may only
// write while the submission is in DRAFT, customs-side actors may only write
// once it is NOT in DRAFT (annotation after hand-off). Do not make this
// symmetric.
func (s *SubmissionService) CreateOrUpdateSubmissionCheck(actor models.Actor, submissionID uuid.UUID, req *SubmissionCheckRequest) (*models.SubmissionCheck, error) {
	submission, err := s.load(submissionID)
	if err != nil {
		return nil, err
	}

	station, err := s.loadStation(submission.StationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessStation(station) {
		return nil, apperrors.PermissionDenied("no access to station %s", station.Slug)
	}

	if err := checkWriteAllowed(actor, submission.Status); err != nil {
		return nil, err
	}

	var obligation models.Obligation
	if err := s.db.First(&obligation, "id = ?", req.ObligationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("obligation %s not found", req.ObligationID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var check models.SubmissionCheck
	err = s.db.Where("submission_id = ? AND obligation_id = ?", submissionID, req.ObligationID).
		First(&check).Error
	switch {
	case err == nil:
		check.Value = req.Value
		check.Notes = req.Notes
		if err := s.db.Save(&check).Error; err != nil {
			return nil, fmt.Errorf("failed to update check: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		check = models.SubmissionCheck{
			SubmissionID: submissionID,
			ObligationID: req.ObligationID,
			Value:        req.Value,
			Notes:        req.Notes,
		}
		if err := s.db.Create(&check).Error; err != nil {
			// Concurrent upsert lost the unique-index race; update the winner.
			if s.db.Where("submission_id = ? AND obligation_id = ?", submissionID, req.ObligationID).
				First(&check).Error == nil {
				check.Value = req.Value
				check.Notes = req.Notes
				if err := s.db.Save(&check).Error; err != nil {
					return nil, fmt.Errorf("failed to update check: %w", err)
				}
				break
			}
			return nil, fmt.Errorf("failed to create check: %w", err)
		}
	default:
		return nil, fmt.Errorf("database error: %w", err)
	}

	s.audit.Record(actor.ID, actor.CompanyID, "submission_check", check.ID, models.AuditActionUpdate,
		models.JSONB{"obligation_code": obligation.Code})

	return &check, nil
}

// checkWriteAllowed is the asymmetric check-mutation predicate.
func checkWriteAllowed(actor models.Actor, status models.SubmissionStatus) error {
	if actor.IsOversight() {
		if status == models.SubmissionStatusDraft {
			return apperrors.Validation("oversight actors may only amend checks after hand-off")
		}
		return nil
	}
	if status != models.SubmissionStatusDraft {
		return apperrors.Validation("checks can only be edited while the submission is in DRAFT")
	}
	return nil
}

// AddEvidence uploads an attachment onto a DRAFT submission.
func (s *SubmissionService) AddEvidence(actor models.Actor, submissionID uuid.UUID, filename, contentType string, data []byte, obligationID *uuid.UUID) (*models.Evidence, error) {
	submission, err := s.loadForCompanyAction(actor, submissionID)
	if err != nil {
		return nil, err
	}

	if !submission.IsDraft() {
		return nil, apperrors.Validation("evidence can only be added while the submission is in DRAFT")
	}

	storedPath, err := s.storage.Store(data, filename, fmt.Sprintf("evidence/%s", submissionID))
	if err != nil {
		return nil, fmt.Errorf("failed to store evidence file: %w", err)
	}

	evidence := &models.Evidence{
		SubmissionID: submissionID,
		ObligationID: obligationID,
		FileName:     filename,
		StoragePath:  storedPath,
		ContentType:  contentType,
		ContentHash:  utils.HashString(string(data)),
		SizeBytes:    int64(len(data)),
		UploadedBy:   actor.ID,
	}

	if err := s.db.Create(evidence).Error; err != nil {
		return nil, fmt.Errorf("failed to create evidence record: %w", err)
	}

	s.audit.Record(actor.ID, actor.CompanyID, "evidence", evidence.ID, models.AuditActionCreate,
		models.JSONB{"file_name": filename})

	return evidence, nil
}

// DeleteEvidence removes an attachment from a DRAFT submission. The blob is
// only deleted when no other submission references it (carry-over shares
// blobs between periods).
func (s *SubmissionService) DeleteEvidence(actor models.Actor, evidenceID uuid.UUID) error {
	var evidence models.Evidence
	if err := s.db.First(&evidence, "id = ?", evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("evidence %s not found", evidenceID)
		}
		return fmt.Errorf("database error: %w", err)
	}

	submission, err := s.loadForCompanyAction(actor, evidence.SubmissionID)
	if err != nil {
		return err
	}
	if !submission.IsDraft() {
		return apperrors.Validation("evidence can only be removed while the submission is in DRAFT")
	}

	if err := s.db.Delete(&evidence).Error; err != nil {
		return fmt.Errorf("failed to delete evidence record: %w", err)
	}

	var refs int64
	s.db.Model(&models.Evidence{}).Where("storage_path = ?", evidence.StoragePath).Count(&refs)
	if refs == 0 {
		if err := s.storage.Delete(evidence.StoragePath); err != nil {
			logrus.WithError(err).WithField("storage_path", evidence.StoragePath).
				Warn("Failed to delete stored evidence blob")
		}
	}

	s.audit.Record(actor.ID, actor.CompanyID, "evidence", evidence.ID, models.AuditActionDelete, nil)

	return nil
}

// GetEvidence loads an attachment record and its stored bytes, applying the
// tenant predicate of the owning submission.
func (s *SubmissionService) GetEvidence(actor models.Actor, evidenceID uuid.UUID) (*models.Evidence, []byte, error) {
	var evidence models.Evidence
	if err := s.db.First(&evidence, "id = ?", evidenceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.NotFound("evidence %s not found", evidenceID)
		}
		return nil, nil, fmt.Errorf("database error: %w", err)
	}

	submission, err := s.load(evidence.SubmissionID)
	if err != nil {
		return nil, nil, err
	}
	station, err := s.loadStation(submission.StationID)
	if err != nil {
		return nil, nil, err
	}
	if !actor.CanAccessStation(station) {
		return nil, nil, apperrors.PermissionDenied("no access to station %s", station.Slug)
	}

	data, err := s.storage.Retrieve(evidence.StoragePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read evidence file: %w", err)
	}

	// Rows carried over between periods share a blob; a hash mismatch means
	// the stored file no longer matches what was uploaded.
	if evidence.ContentHash != "" && !utils.ValidateFileHash(data, evidence.ContentHash) {
		return nil, nil, fmt.Errorf("evidence %s failed integrity verification", evidenceID)
	}

	return &evidence, data, nil
}

// GetSubmission loads a submission with its checks and evidence, applying the
// tenant predicate.
func (s *SubmissionService) GetSubmission(actor models.Actor, submissionID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Preload("Period").Preload("Station").
		Preload("Checks").Preload("Checks.Obligation").Preload("Evidence").
		First(&submission, "id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("submission %s not found", submissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.CanAccessStation(&submission.Station) {
		return nil, apperrors.PermissionDenied("no access to submission %s", submissionID)
	}

	return &submission, nil
}

// ListSubmissions returns submissions visible to the actor. Company-scoped
// actors see their company's stations only; station-scoped actors are further
// narrowed to their own station.
func (s *SubmissionService) ListSubmissions(actor models.Actor, params SubmissionSearchParams) ([]models.Submission, error) {
	query := s.db.Model(&models.Submission{}).
		Joins("JOIN stations ON stations.id = submissions.station_id").
		Preload("Period").Preload("Station")

	if !actor.IsOversight() {
		if actor.CompanyID == nil {
			return nil, apperrors.PermissionDenied("actor has no company scope")
		}
		query = query.Where("stations.company_id = ?", *actor.CompanyID)
		if actor.StationID != nil {
			query = query.Where("submissions.station_id = ?", *actor.StationID)
		}
	}

	if params.PeriodID != nil {
		query = query.Where("submissions.period_id = ?", *params.PeriodID)
	}
	if params.StationID != nil {
		query = query.Where("submissions.station_id = ?", *params.StationID)
	}
	if params.Status != nil {
		query = query.Where("submissions.status = ?", *params.Status)
	}

	var submissions []models.Submission
	if err := query.Order("submissions.created_at DESC").Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	return submissions, nil
}

// Helpers

func (s *SubmissionService) load(submissionID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.First(&submission, "id = ?", submissionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("submission %s not found", submissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &submission, nil
}

func (s *SubmissionService) reload(submissionID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	if err := s.db.Preload("Checks").Preload("Evidence").
		First(&submission, "id = ?", submissionID).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &submission, nil
}

// loadForCompanyAction loads a submission for a company-side mutation:
// oversight actors are rejected, and the actor must belong to the station's
// company.
func (s *SubmissionService) loadForCompanyAction(actor models.Actor, submissionID uuid.UUID) (*models.Submission, error) {
	if actor.IsOversight() {
		return nil, apperrors.PermissionDenied("operation is reserved for company-side actors")
	}

	submission, err := s.load(submissionID)
	if err != nil {
		return nil, err
	}

	station, err := s.loadStation(submission.StationID)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessStation(station) {
		return nil, apperrors.PermissionDenied("no access to station %s", station.Slug)
	}

	return submission, nil
}

func (s *SubmissionService) loadStation(stationID uuid.UUID) (*models.Station, error) {
	var station models.Station
	err := s.db.First(&station, "id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("station %s not found", stationID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &station, nil
}

func (s *SubmissionService) findByPeriodStation(periodID, stationID uuid.UUID) (*models.Submission, error) {
	var submission models.Submission
	err := s.db.Preload("Checks").Preload("Evidence").
		Where("period_id = ? AND station_id = ?", periodID, stationID).
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &submission, nil
}

func validSubmissionStatus(status models.SubmissionStatus) bool {
	switch status {
	case models.SubmissionStatusDraft, models.SubmissionStatusSubmitted,
		models.SubmissionStatusUnderReview, models.SubmissionStatusApproved,
		models.SubmissionStatusRejected:
		return true
	}
	return false
}
