// internal/models/task.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Task is an oversight ticket tied to a station, optionally to the submission
// and obligation it originated from.
type Task struct {
	BaseModel
	StationID            uuid.UUID  `json:"station_id" gorm:"type:uuid;not null;index"`
	OriginSubmissionID   *uuid.UUID `json:"origin_submission_id" gorm:"type:uuid;index"`
	ResolvedSubmissionID *uuid.UUID `json:"resolved_submission_id" gorm:"type:uuid"`
	ObligationID         *uuid.UUID `json:"obligation_id" gorm:"type:uuid"`
	Title                string     `json:"title" gorm:"size:255;not null"`
	Description          string     `json:"description" gorm:"type:text"`
	Status               TaskStatus `json:"status" gorm:"type:varchar(20);default:'OPEN';index"`
	CreatedBy            uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	ClosedAt             *time.Time `json:"closed_at"`
	ClosedBy             *uuid.UUID `json:"closed_by" gorm:"type:uuid"`

	// Relationships
	Station  Station       `json:"station,omitempty" gorm:"foreignKey:StationID"`
	Messages []TaskMessage `json:"messages,omitempty" gorm:"foreignKey:TaskID;constraint:OnDelete:CASCADE"`
}

func (t *Task) IsClosed() bool {
	return t.Status == TaskStatusClosed
}

// TaskMessage is one reply in a task's ordered thread.
type TaskMessage struct {
	BaseModel
	TaskID   uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	AuthorID uuid.UUID `json:"author_id" gorm:"type:uuid;not null"`
	Body     string    `json:"body" gorm:"type:text;not null"`

	// Relationships
	Task   Task  `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	Author *User `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
}
