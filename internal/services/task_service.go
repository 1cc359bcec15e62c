// internal/services/task_service.go
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

// TaskService manages oversight tickets raised against stations and their
// message threads.
type TaskService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewTaskService(db *gorm.DB, audit *AuditService) *TaskService {
	return &TaskService{db: db, audit: audit}
}

type CreateTaskRequest struct {
	StationID          uuid.UUID  `json:"station_id" validate:"required"`
	OriginSubmissionID *uuid.UUID `json:"origin_submission_id,omitempty"`
	ObligationID       *uuid.UUID `json:"obligation_id,omitempty"`
	Title              string     `json:"title" validate:"required,max=255"`
	Description        string     `json:"description,omitempty"`
}

type ReplyTaskRequest struct {
	Body string `json:"body" validate:"required"`
}

// CreateTask opens a ticket. Oversight only; opens in AWAITING_COMPANY since
// a new ticket always expects the company's response first.
func (s *TaskService) CreateTask(actor models.Actor, req *CreateTaskRequest) (*models.Task, error) {
	if !actor.IsOversight() {
		return nil, apperrors.PermissionDenied("only oversight actors may open tasks")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid task")
	}

	var station models.Station
	if err := s.db.First(&station, "id = ?", req.StationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("station %s not found", req.StationID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	task := &models.Task{
		StationID:          req.StationID,
		OriginSubmissionID: req.OriginSubmissionID,
		ObligationID:       req.ObligationID,
		Title:              req.Title,
		Description:        req.Description,
		Status:             models.TaskStatusAwaitingCompany,
		CreatedBy:          actor.ID,
	}

	if err := s.db.Create(task).Error; err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.audit.Record(actor.ID, &station.CompanyID, "task", task.ID, models.AuditActionCreate,
		models.JSONB{"title": req.Title})

	return task, nil
}

// Reply appends a message to the thread. A company reply hands the ticket
// back to oversight (OPEN); an oversight reply hands it to the company
// (AWAITING_COMPANY). Closed tickets take no replies.
func (s *TaskService) Reply(actor models.Actor, taskID uuid.UUID, req *ReplyTaskRequest) (*models.TaskMessage, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid reply")
	}

	task, err := s.loadWithAccess(actor, taskID)
	if err != nil {
		return nil, err
	}

	if task.IsClosed() {
		return nil, apperrors.Validation("cannot reply to a closed task")
	}

	message := &models.TaskMessage{
		TaskID:   task.ID,
		AuthorID: actor.ID,
		Body:     req.Body,
	}

	if err := s.db.Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to create task message: %w", err)
	}

	if actor.IsOversight() {
		task.Status = models.TaskStatusAwaitingCompany
	} else {
		task.Status = models.TaskStatusOpen
	}
	if err := s.db.Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to update task status: %w", err)
	}

	s.audit.Record(actor.ID, actor.CompanyID, "task_message", message.ID, models.AuditActionCreate, nil)

	return message, nil
}

// Escalate marks a ticket as escalated. Oversight only.
func (s *TaskService) Escalate(actor models.Actor, taskID uuid.UUID) (*models.Task, error) {
	if !actor.IsOversight() {
		return nil, apperrors.PermissionDenied("only oversight actors may escalate tasks")
	}

	task, err := s.loadWithAccess(actor, taskID)
	if err != nil {
		return nil, err
	}

	if task.IsClosed() {
		return nil, apperrors.Validation("cannot escalate a closed task")
	}

	task.Status = models.TaskStatusEscalated
	if err := s.db.Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to escalate task: %w", err)
	}

	s.audit.Record(actor.ID, nil, "task", task.ID, models.AuditActionUpdate,
		models.JSONB{"status": models.TaskStatusEscalated})

	return task, nil
}

// Close resolves a ticket, optionally recording the submission that resolved
// it. Oversight only.
func (s *TaskService) Close(actor models.Actor, taskID uuid.UUID, resolvedSubmissionID *uuid.UUID, now time.Time) (*models.Task, error) {
	if !actor.IsOversight() {
		return nil, apperrors.PermissionDenied("only oversight actors may close tasks")
	}

	task, err := s.loadWithAccess(actor, taskID)
	if err != nil {
		return nil, err
	}

	if task.IsClosed() {
		return task, nil
	}

	task.Status = models.TaskStatusClosed
	task.ResolvedSubmissionID = resolvedSubmissionID
	task.ClosedAt = &now
	task.ClosedBy = &actor.ID

	if err := s.db.Save(task).Error; err != nil {
		return nil, fmt.Errorf("failed to close task: %w", err)
	}

	s.audit.Record(actor.ID, nil, "task", task.ID, models.AuditActionUpdate,
		models.JSONB{"status": models.TaskStatusClosed})

	return task, nil
}

// GetTask loads a task with its ordered message thread.
func (s *TaskService) GetTask(actor models.Actor, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Preload("Station").
		Preload("Messages", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&task, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("task %s not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.CanAccessStation(&task.Station) {
		return nil, apperrors.PermissionDenied("no access to task %s", taskID)
	}

	return &task, nil
}

// ListTasks scopes the listing like every station-scoped read.
func (s *TaskService) ListTasks(actor models.Actor, status *models.TaskStatus) ([]models.Task, error) {
	query := s.db.Model(&models.Task{}).
		Joins("JOIN stations ON stations.id = tasks.station_id").
		Preload("Station")

	if !actor.IsOversight() {
		if actor.CompanyID == nil {
			return nil, apperrors.PermissionDenied("actor has no company scope")
		}
		query = query.Where("stations.company_id = ?", *actor.CompanyID)
		if actor.StationID != nil {
			query = query.Where("tasks.station_id = ?", *actor.StationID)
		}
	}

	if status != nil {
		query = query.Where("tasks.status = ?", *status)
	}

	var tasks []models.Task
	if err := query.Order("tasks.created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}

	return tasks, nil
}

func (s *TaskService) loadWithAccess(actor models.Actor, taskID uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := s.db.Preload("Station").First(&task, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("task %s not found", taskID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.CanAccessStation(&task.Station) {
		return nil, apperrors.PermissionDenied("no access to task %s", taskID)
	}

	return &task, nil
}
