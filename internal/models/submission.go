// internal/models/submission.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Submission is one station's compliance report for one period. The
// (period_id, station_id) pairing is unique; duplicate creation is rejected
// by the composite index and callers fall back to re-reading the winner.
type Submission struct {
	BaseModel
	PeriodID  uuid.UUID        `json:"period_id" gorm:"type:uuid;not null;uniqueIndex:idx_submissions_period_station"`
	StationID uuid.UUID        `json:"station_id" gorm:"type:uuid;not null;uniqueIndex:idx_submissions_period_station"`
	Status    SubmissionStatus `json:"status" gorm:"type:varchar(20);default:'DRAFT';index"`

	SubmittedAt *time.Time `json:"submitted_at"`
	SubmittedBy *uuid.UUID `json:"submitted_by" gorm:"type:uuid"`

	// ReviewedAt/By is written both by the company pre-review step and by the
	// customs decision; last writer wins.
	ReviewedAt *time.Time `json:"reviewed_at"`
	ReviewedBy *uuid.UUID `json:"reviewed_by" gorm:"type:uuid"`

	CompanyDecisionAt *time.Time `json:"company_decision_at"`
	CompanyDecisionBy *uuid.UUID `json:"company_decision_by" gorm:"type:uuid"`
	ReturnReason      string     `json:"return_reason,omitempty" gorm:"type:text"`

	ForwardedAt                   *time.Time `json:"forwarded_at"`
	ForwardedBy                   *uuid.UUID `json:"forwarded_by" gorm:"type:uuid"`
	ForwardedWithoutStationSubmit bool       `json:"forwarded_without_station_submit" gorm:"default:false"`
	ForwardExplanation            string     `json:"forward_explanation,omitempty" gorm:"type:text"`

	// Relationships
	Period   SubmissionPeriod  `json:"period,omitempty" gorm:"foreignKey:PeriodID"`
	Station  Station           `json:"station,omitempty" gorm:"foreignKey:StationID"`
	Checks   []SubmissionCheck `json:"checks,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
	Evidence []Evidence        `json:"evidence,omitempty" gorm:"foreignKey:SubmissionID;constraint:OnDelete:CASCADE"`
}

func (s *Submission) IsDraft() bool {
	return s.Status == SubmissionStatusDraft
}

func (s *Submission) IsForwarded() bool {
	return s.ForwardedAt != nil
}

// SubmissionCheck is a station's answer to one catalog obligation within a
// submission, unique per (submission_id, obligation_id). The value is either
// a bare string or a JSON object {answer, validUntil}; see the checkvalue
// parser in services.
type SubmissionCheck struct {
	BaseModel
	SubmissionID uuid.UUID `json:"submission_id" gorm:"type:uuid;not null;uniqueIndex:idx_checks_submission_obligation"`
	ObligationID uuid.UUID `json:"obligation_id" gorm:"type:uuid;not null;uniqueIndex:idx_checks_submission_obligation"`
	Value        string    `json:"value" gorm:"type:text"`
	Notes        string    `json:"notes,omitempty" gorm:"type:text"`

	// Relationships
	Submission Submission `json:"submission,omitempty" gorm:"foreignKey:SubmissionID"`
	Obligation Obligation `json:"obligation,omitempty" gorm:"foreignKey:ObligationID"`
}

// Evidence is an attachment on a submission. Carry-over between periods
// copies the row pointing at the same stored blob, never the blob itself.
type Evidence struct {
	BaseModel
	SubmissionID uuid.UUID  `json:"submission_id" gorm:"type:uuid;not null;index"`
	ObligationID *uuid.UUID `json:"obligation_id" gorm:"type:uuid;index"`
	FileName     string     `json:"file_name" gorm:"size:255;not null"`
	StoragePath  string     `json:"storage_path" gorm:"size:500;not null"`
	ContentType  string     `json:"content_type" gorm:"size:100"`
	ContentHash  string     `json:"content_hash" gorm:"size:64"`
	SizeBytes    int64      `json:"size_bytes"`
	UploadedBy   uuid.UUID  `json:"uploaded_by" gorm:"type:uuid;not null"`

	// Relationships
	Submission Submission `json:"submission,omitempty" gorm:"foreignKey:SubmissionID"`
}
