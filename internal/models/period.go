// internal/models/period.go
package models

import (
	"time"
)

// SubmissionPeriod is a fixed reporting window identified by the business key
// (period_number, month, year). Day-of-month partition: 1-10, 11-20,
// 21-end-of-month. Rows are immutable once created; the composite unique
// index is what makes lazy creation race-safe.
type SubmissionPeriod struct {
	BaseModel
	PeriodNumber int       `json:"period_number" gorm:"not null;uniqueIndex:idx_periods_business_key"`
	Month        int       `json:"month" gorm:"not null;uniqueIndex:idx_periods_business_key"`
	Year         int       `json:"year" gorm:"not null;uniqueIndex:idx_periods_business_key"`
	StartDate    time.Time `json:"start_date" gorm:"not null;index"`
	EndDate      time.Time `json:"end_date" gorm:"not null;index"`
	DeadlineDate time.Time `json:"deadline_date" gorm:"not null"`

	// Relationships
	Submissions []Submission `json:"submissions,omitempty" gorm:"foreignKey:PeriodID"`
}

// Contains reports whether t falls inside the period window.
func (p *SubmissionPeriod) Contains(t time.Time) bool {
	return !t.Before(p.StartDate) && !t.After(p.EndDate)
}
