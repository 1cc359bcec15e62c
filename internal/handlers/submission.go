// internal/handlers/submission.go
package handlers

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuelwatch/compliance-backend/internal/middleware"
	"github.com/fuelwatch/compliance-backend/internal/models"
	"github.com/fuelwatch/compliance-backend/internal/services"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

const maxEvidenceSize = 25 << 20 // 25 MB

type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

// POST /stations/:id/submissions/current
func (h *SubmissionHandler) EnsureActiveSubmission(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	stationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid station ID", nil)
		return
	}

	submission, err := h.submissionService.EnsureActiveSubmission(actor, stationID, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, submission)
}

// GET /submissions/:id
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid submission ID", nil)
		return
	}

	submission, err := h.submissionService.GetSubmission(actor, submissionID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, submission)
}

// GET /submissions
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var params services.SubmissionSearchParams
	if periodIDStr := c.Query("period_id"); periodIDStr != "" {
		if periodID, err := uuid.Parse(periodIDStr); err == nil {
			params.PeriodID = &periodID
		}
	}
	if stationIDStr := c.Query("station_id"); stationIDStr != "" {
		if stationID, err := uuid.Parse(stationIDStr); err == nil {
			params.StationID = &stationID
		}
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.SubmissionStatus(statusStr)
		params.Status = &status
	}

	submissions, err := h.submissionService.ListSubmissions(actor, params)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, submissions)
}

// POST /submissions/:id/submit
func (h *SubmissionHandler) Submit(c *gin.Context) {
	h.transition(c, func(actor models.Actor, id uuid.UUID) (*models.Submission, error) {
		return h.submissionService.Submit(actor, id, time.Now())
	})
}

// POST /submissions/:id/recall
func (h *SubmissionHandler) Recall(c *gin.Context) {
	h.transition(c, h.submissionService.Recall)
}

// POST /submissions/:id/reopen
func (h *SubmissionHandler) Reopen(c *gin.Context) {
	h.transition(c, h.submissionService.Reopen)
}

// POST /submissions/:id/review
func (h *SubmissionHandler) StartReview(c *gin.Context) {
	h.transition(c, func(actor models.Actor, id uuid.UUID) (*models.Submission, error) {
		return h.submissionService.StartReview(actor, id, time.Now())
	})
}

// POST /submissions/:id/approve
func (h *SubmissionHandler) Approve(c *gin.Context) {
	h.transition(c, func(actor models.Actor, id uuid.UUID) (*models.Submission, error) {
		return h.submissionService.ApproveSubmission(actor, id, time.Now())
	})
}

// POST /submissions/:id/return
func (h *SubmissionHandler) Return(c *gin.Context) {
	actor, submissionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req services.ReturnSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	submission, err := h.submissionService.ReturnSubmission(actor, submissionID, &req, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, submission)
}

// PUT /submissions/:id/status
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	actor, submissionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req struct {
		Status models.SubmissionStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	submission, err := h.submissionService.UpdateSubmissionStatus(actor, submissionID, req.Status, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, submission)
}

// PUT /submissions/:id/checks
func (h *SubmissionHandler) UpsertCheck(c *gin.Context) {
	actor, submissionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	var req services.SubmissionCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	check, err := h.submissionService.CreateOrUpdateSubmissionCheck(actor, submissionID, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, check)
}

// POST /submissions/:id/evidence
func (h *SubmissionHandler) AddEvidence(c *gin.Context) {
	actor, submissionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "Missing evidence file", nil)
		return
	}
	if fileHeader.Size > maxEvidenceSize {
		utils.BadRequestResponse(c, "Evidence file exceeds 25MB", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.InternalErrorResponse(c, "")
		return
	}

	var obligationID *uuid.UUID
	if obligationIDStr := c.PostForm("obligation_id"); obligationIDStr != "" {
		parsed, err := uuid.Parse(obligationIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid obligation ID", nil)
			return
		}
		obligationID = &parsed
	}

	contentType := fileHeader.Header.Get("Content-Type")
	evidence, err := h.submissionService.AddEvidence(actor, submissionID, fileHeader.Filename, contentType, data, obligationID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, evidence)
}

// GET /evidence/:id/download
func (h *SubmissionHandler) DownloadEvidence(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	evidenceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid evidence ID", nil)
		return
	}

	evidence, data, err := h.submissionService.GetEvidence(actor, evidenceID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+evidence.FileName+"\"")
	c.Data(200, evidence.ContentType, data)
}

// DELETE /evidence/:id
func (h *SubmissionHandler) DeleteEvidence(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	evidenceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid evidence ID", nil)
		return
	}

	if err := h.submissionService.DeleteEvidence(actor, evidenceID); err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}

func (h *SubmissionHandler) actorAndID(c *gin.Context) (models.Actor, uuid.UUID, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return models.Actor{}, uuid.Nil, false
	}

	submissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid submission ID", nil)
		return models.Actor{}, uuid.Nil, false
	}

	return actor, submissionID, true
}

func (h *SubmissionHandler) transition(c *gin.Context, fn func(models.Actor, uuid.UUID) (*models.Submission, error)) {
	actor, submissionID, ok := h.actorAndID(c)
	if !ok {
		return
	}

	submission, err := fn(actor, submissionID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, submission)
}
