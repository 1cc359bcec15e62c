// internal/handlers/forward.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuelwatch/compliance-backend/internal/middleware"
	"github.com/fuelwatch/compliance-backend/internal/services"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

type ForwardHandler struct {
	forwardService *services.ForwardService
}

func NewForwardHandler(forwardService *services.ForwardService) *ForwardHandler {
	return &ForwardHandler{forwardService: forwardService}
}

// POST /forward
func (h *ForwardHandler) BulkForward(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.BulkForwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	result, err := h.forwardService.BulkForward(actor, &req, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /forward/batches/:id
func (h *ForwardHandler) GetBatch(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid batch ID", nil)
		return
	}

	batch, err := h.forwardService.GetBatch(actor, batchID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, batch)
}

// GET /forward/batches?company_id=...
func (h *ForwardHandler) ListBatches(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	companyID := uuid.Nil
	if companyIDStr := c.Query("company_id"); companyIDStr != "" {
		parsed, err := uuid.Parse(companyIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid company ID", nil)
			return
		}
		companyID = parsed
	} else if actor.CompanyID != nil {
		companyID = *actor.CompanyID
	}
	if companyID == uuid.Nil {
		utils.BadRequestResponse(c, "company_id is required", nil)
		return
	}

	batches, err := h.forwardService.ListBatches(actor, companyID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, batches)
}
