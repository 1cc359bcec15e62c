// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserRole string

const (
	RoleCompanyAdmin      UserRole = "company_admin"
	RoleStationOperator   UserRole = "station_operator"
	RoleCustomsOfficer    UserRole = "customs_officer"
	RoleCustomsSupervisor UserRole = "customs_supervisor"
	RoleSystemAdmin       UserRole = "system_admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
)

type SubmissionStatus string

const (
	SubmissionStatusDraft       SubmissionStatus = "DRAFT"
	SubmissionStatusSubmitted   SubmissionStatus = "SUBMITTED"
	SubmissionStatusUnderReview SubmissionStatus = "UNDER_REVIEW"
	SubmissionStatusApproved    SubmissionStatus = "APPROVED"
	SubmissionStatusRejected    SubmissionStatus = "REJECTED"
)

type ComplianceStatus string

const (
	ComplianceStatusCompliant    ComplianceStatus = "COMPLIANT"
	ComplianceStatusNonCompliant ComplianceStatus = "NON_COMPLIANT"
)

type ForwardMode string

const (
	ForwardModeOnlyApproved     ForwardMode = "ONLY_APPROVED"
	ForwardModeIncludeEdgeCases ForwardMode = "INCLUDE_EDGE_CASES"
)

type ForwardOutcome string

const (
	ForwardOutcomeSuccess ForwardOutcome = "SUCCESS"
	ForwardOutcomeSkipped ForwardOutcome = "SKIPPED"
	ForwardOutcomeFailed  ForwardOutcome = "FAILED"
)

type ObligationFrequency string

const (
	FrequencyAnnual    ObligationFrequency = "annual"
	FrequencyPerChange ObligationFrequency = "per_change"
	FrequencyPeriodic  ObligationFrequency = "periodic"
)

type ObligationCriticality string

const (
	CriticalityCritical ObligationCriticality = "critical"
	CriticalityMajor    ObligationCriticality = "major"
	CriticalityMinor    ObligationCriticality = "minor"
)

type ObligationFieldType string

const (
	FieldTypeBoolean ObligationFieldType = "boolean"
	FieldTypeText    ObligationFieldType = "text"
	FieldTypeDate    ObligationFieldType = "date"
)

type TaskStatus string

const (
	TaskStatusOpen            TaskStatus = "OPEN"
	TaskStatusAwaitingCompany TaskStatus = "AWAITING_COMPANY"
	TaskStatusEscalated       TaskStatus = "ESCALATED"
	TaskStatusClosed          TaskStatus = "CLOSED"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)
