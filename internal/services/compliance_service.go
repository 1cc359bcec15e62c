// internal/services/compliance_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/models"
)

// Mandatory obligation codes a station must answer affirmatively in its last
// finished period to count as compliant.
var MandatoryObligationCodes = []string{
	"OBL-001", "OBL-002", "OBL-003", "OBL-004", "OBL-005", "OBL-006", "OBL-007",
}

// BadgePendingReport flags a station whose currently active period has no
// submitted report yet. Badges never affect the compliance status.
const BadgePendingReport = "PENDING_REPORT"

// ComplianceService derives a station's pass/fail status from its most
// recently closed period and the mandatory obligation set.
type ComplianceService struct {
	db      *gorm.DB
	periods *PeriodService
}

func NewComplianceService(db *gorm.DB, periods *PeriodService) *ComplianceService {
	return &ComplianceService{db: db, periods: periods}
}

type ComplianceResult struct {
	Status               models.ComplianceStatus `json:"status"`
	Badges               []string                `json:"badges"`
	Violations           []string                `json:"violations"`
	LastFinishedPeriodID *uuid.UUID              `json:"last_finished_period_id,omitempty"`
}

// EvaluateStation computes the station's current compliance state at now.
func (s *ComplianceService) EvaluateStation(actor models.Actor, stationID uuid.UUID, now time.Time) (*ComplianceResult, error) {
	var station models.Station
	if err := s.db.First(&station, "id = ?", stationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("station %s not found", stationID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.CanAccessStation(&station) {
		return nil, apperrors.PermissionDenied("no access to station %s", station.Slug)
	}

	result := &ComplianceResult{
		Status:     models.ComplianceStatusCompliant,
		Badges:     []string{},
		Violations: []string{},
	}

	lastFinished, err := s.periods.LastFinishedPeriod(now)
	if err != nil {
		return nil, err
	}

	if lastFinished != nil {
		result.LastFinishedPeriodID = &lastFinished.ID
		violations, err := s.violationsForPeriod(lastFinished, stationID, now)
		if err != nil {
			return nil, err
		}
		result.Violations = violations
	}
	// No finished period: nothing to evaluate yet, the station starts
	// compliant.

	pending, err := s.activePeriodPending(stationID, now)
	if err != nil {
		return nil, err
	}
	if pending {
		result.Badges = append(result.Badges, BadgePendingReport)
	}

	if len(result.Violations) > 0 {
		result.Status = models.ComplianceStatusNonCompliant
	}

	return result, nil
}

func (s *ComplianceService) violationsForPeriod(period *models.SubmissionPeriod, stationID uuid.UUID, now time.Time) ([]string, error) {
	var submission models.Submission
	err := s.db.Preload("Checks").Preload("Checks.Obligation").
		Where("period_id = ? AND station_id = ?", period.ID, stationID).
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []string{fmt.Sprintf("missing submission for period %d/%d", period.PeriodNumber, period.Month)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if submission.Status == models.SubmissionStatusDraft || submission.Status == models.SubmissionStatusRejected {
		return []string{fmt.Sprintf("submission for period %d/%d is %s",
			period.PeriodNumber, period.Month, submission.Status)}, nil
	}

	return EvaluateChecks(submission.Checks, MandatoryObligationCodes, now), nil
}

// EvaluateChecks builds the violation list for a submission's checks against
// the mandatory obligation codes. A single obligation can contribute two
// violations: a non-affirmative (or missing) answer and an expired validity.
func EvaluateChecks(checks []models.SubmissionCheck, mandatoryCodes []string, now time.Time) []string {
	byCode := make(map[string]models.SubmissionCheck, len(checks))
	for _, check := range checks {
		byCode[check.Obligation.Code] = check
	}

	violations := []string{}
	for _, code := range mandatoryCodes {
		check, ok := byCode[code]
		if !ok {
			violations = append(violations, fmt.Sprintf("obligation %s not answered", code))
			continue
		}

		answer := ParseCheckValue(check.Value)
		if !answer.Affirmative() {
			violations = append(violations, fmt.Sprintf("obligation %s answer %q is not affirmative", code, answer.Answer))
		}
		if answer.Expired(now) {
			violations = append(violations, fmt.Sprintf("obligation %s expired on %s",
				code, answer.ValidUntil.Format("2006-01-02")))
		}
	}

	return violations
}

func (s *ComplianceService) activePeriodPending(stationID uuid.UUID, now time.Time) (bool, error) {
	active, err := s.periods.ActivePeriod(now)
	if err != nil {
		return false, err
	}
	if active == nil {
		// Window exists but was never materialized, so no submission either.
		return true, nil
	}

	var submission models.Submission
	err = s.db.Where("period_id = ? AND station_id = ?", active.ID, stationID).
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("database error: %w", err)
	}

	return submission.Status == models.SubmissionStatusDraft, nil
}
