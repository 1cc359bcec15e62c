// internal/services/period_service.go
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

// PeriodService derives and lazily materializes the fixed reporting windows.
// Each calendar month is partitioned into day-of-month ranges 1-10, 11-20 and
// 21-end; deadlines land two working days after a window closes.
type PeriodService struct {
	db *gorm.DB
}

func NewPeriodService(db *gorm.DB) *PeriodService {
	return &PeriodService{db: db}
}

// PeriodBounds is the derived window for a date, before any row exists.
type PeriodBounds struct {
	Number int
	Start  time.Time
	End    time.Time
}

// PeriodForDate maps a date onto its reporting window. Start is the first
// instant of the window's first day, end the last millisecond of its last day.
func PeriodForDate(t time.Time) PeriodBounds {
	year, month, day := t.Date()
	loc := t.Location()

	var number, startDay, endDay int
	switch {
	case day <= 10:
		number, startDay, endDay = 1, 1, 10
	case day <= 20:
		number, startDay, endDay = 2, 11, 20
	default:
		number, startDay, endDay = 3, 21, lastDayOfMonth(year, month)
	}

	return PeriodBounds{
		Number: number,
		Start:  time.Date(year, month, startDay, 0, 0, 0, 0, loc),
		End:    time.Date(year, month, endDay, 23, 59, 59, 999000000, loc),
	}
}

// Deadline adds two working days to the window end, skipping Saturdays and
// Sundays for each added day.
func Deadline(end time.Time) time.Time {
	d := end
	added := 0
	for added < 2 {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		added++
	}
	return d
}

// PeriodBoundsForMonth derives all three windows of a month. They tile the
// month exactly.
func PeriodBoundsForMonth(year int, month time.Month) [3]PeriodBounds {
	last := lastDayOfMonth(year, month)
	return [3]PeriodBounds{
		{Number: 1, Start: dayStart(year, month, 1), End: dayEnd(year, month, 10)},
		{Number: 2, Start: dayStart(year, month, 11), End: dayEnd(year, month, 20)},
		{Number: 3, Start: dayStart(year, month, 21), End: dayEnd(year, month, last)},
	}
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func dayStart(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func dayEnd(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 23, 59, 59, 999000000, time.UTC)
}

// GetOrCreateCurrentPeriod resolves the period row containing now, creating
// it if this is the first caller. Concurrent first-callers race on the
// business-key unique index; the loser re-reads the winner's row.
func (s *PeriodService) GetOrCreateCurrentPeriod(now time.Time) (*models.SubmissionPeriod, error) {
	bounds := PeriodForDate(now)
	return s.getOrCreate(now.Year(), int(now.Month()), bounds)
}

func (s *PeriodService) getOrCreate(year, month int, bounds PeriodBounds) (*models.SubmissionPeriod, error) {
	var period models.SubmissionPeriod
	err := s.db.Where("period_number = ? AND month = ? AND year = ?", bounds.Number, month, year).
		First(&period).Error
	if err == nil {
		return &period, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", err)
	}

	period = models.SubmissionPeriod{
		PeriodNumber: bounds.Number,
		Month:        month,
		Year:         year,
		StartDate:    bounds.Start,
		EndDate:      bounds.End,
		DeadlineDate: Deadline(bounds.End),
	}

	if err := s.db.Create(&period).Error; err != nil {
		// Unique-index conflict under a concurrent first-caller; the row
		// exists now, so re-read it.
		var existing models.SubmissionPeriod
		if readErr := s.db.Where("period_number = ? AND month = ? AND year = ?", bounds.Number, month, year).
			First(&existing).Error; readErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to create period %d/%d/%d: %w", bounds.Number, month, year, err)
	}

	return &period, nil
}

// GeneratePeriodsForMonth materializes all three periods of a month, creating
// the missing ones and leaving existing rows untouched.
func (s *PeriodService) GeneratePeriodsForMonth(year int, month time.Month) ([]models.SubmissionPeriod, error) {
	if month < time.January || month > time.December {
		return nil, apperrors.Validation("invalid month %d", month)
	}

	bounds := PeriodBoundsForMonth(year, month)
	periods := make([]models.SubmissionPeriod, 0, 3)
	for _, b := range bounds {
		period, err := s.getOrCreate(year, int(month), b)
		if err != nil {
			return nil, err
		}
		periods = append(periods, *period)
	}

	return periods, nil
}

// UpcomingPeriods lists periods starting at or after now, soonest first.
func (s *PeriodService) UpcomingPeriods(now time.Time, limit int) ([]models.SubmissionPeriod, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}

	var periods []models.SubmissionPeriod
	if err := s.db.Where("start_date >= ?", now).
		Order("start_date ASC").
		Limit(limit).
		Find(&periods).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch upcoming periods: %w", err)
	}

	return periods, nil
}

// LastFinishedPeriod returns the most recently ended period row with an end
// date before now, or nil when the system has no finished period yet.
func (s *PeriodService) LastFinishedPeriod(now time.Time) (*models.SubmissionPeriod, error) {
	var period models.SubmissionPeriod
	err := s.db.Where("end_date < ?", now).
		Order("end_date DESC").
		First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch last finished period: %w", err)
	}

	return &period, nil
}

// ActivePeriod returns the period row whose window contains now, or nil when
// it has not been materialized yet.
func (s *PeriodService) ActivePeriod(now time.Time) (*models.SubmissionPeriod, error) {
	var period models.SubmissionPeriod
	err := s.db.Where("start_date <= ? AND end_date >= ?", now, now).
		First(&period).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch active period: %w", err)
	}

	return &period, nil
}

// GetPeriod loads a period by id.
func (s *PeriodService) GetPeriod(id uuid.UUID) (*models.SubmissionPeriod, error) {
	var period models.SubmissionPeriod
	if err := s.db.First(&period, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("period %s not found", id)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &period, nil
}
