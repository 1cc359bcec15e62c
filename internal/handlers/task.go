// internal/handlers/task.go
package handlers

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuelwatch/compliance-backend/internal/middleware"
	"github.com/fuelwatch/compliance-backend/internal/models"
	"github.com/fuelwatch/compliance-backend/internal/services"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GET /tasks?status=OPEN
func (h *TaskHandler) ListTasks(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var status *models.TaskStatus
	if statusStr := c.Query("status"); statusStr != "" {
		s := models.TaskStatus(statusStr)
		status = &s
	}

	tasks, err := h.taskService.ListTasks(actor, status)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, tasks)
}

// GET /tasks/:id
func (h *TaskHandler) GetTask(c *gin.Context) {
	actor, taskID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(actor, taskID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, task)
}

// POST /tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	task, err := h.taskService.CreateTask(actor, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, task)
}

// POST /tasks/:id/reply
func (h *TaskHandler) Reply(c *gin.Context) {
	actor, taskID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req services.ReplyTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	message, err := h.taskService.Reply(actor, taskID, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, message)
}

// POST /tasks/:id/escalate
func (h *TaskHandler) Escalate(c *gin.Context) {
	actor, taskID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	task, err := h.taskService.Escalate(actor, taskID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, task)
}

// POST /tasks/:id/close
func (h *TaskHandler) Close(c *gin.Context) {
	actor, taskID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req struct {
		ResolvedSubmissionID *uuid.UUID `json:"resolved_submission_id,omitempty"`
	}
	// Body is optional for a plain close; a body that is present but
	// malformed is still rejected.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	task, err := h.taskService.Close(actor, taskID, req.ResolvedSubmissionID, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, task)
}

func (h *TaskHandler) actorAndID(c *gin.Context) (models.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return models.Actor{}, uuid.Nil, false
	}

	taskID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid task ID", nil)
		return models.Actor{}, uuid.Nil, false
	}

	return actor, taskID, true
}
