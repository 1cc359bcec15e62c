// internal/handlers/compliance.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuelwatch/compliance-backend/internal/middleware"
	"github.com/fuelwatch/compliance-backend/internal/services"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

type ComplianceHandler struct {
	complianceService *services.ComplianceService
	dashboardService  *services.DashboardService
}

func NewComplianceHandler(complianceService *services.ComplianceService, dashboardService *services.DashboardService) *ComplianceHandler {
	return &ComplianceHandler{
		complianceService: complianceService,
		dashboardService:  dashboardService,
	}
}

// GET /stations/:id/compliance
func (h *ComplianceHandler) GetStationCompliance(c *gin.Context) {
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

	result, err := h.complianceService.EvaluateStation(actor, stationID, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// GET /companies/:id/dashboard
func (h *ComplianceHandler) GetCompanyDashboard(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	companyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid company ID", nil)
		return
	}

	dashboard, err := h.dashboardService.CompanyDashboard(actor, companyID, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, dashboard)
}

// GET /oversight/dashboard
func (h *ComplianceHandler) GetOversightDashboard(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	dashboard, err := h.dashboardService.OversightDashboard(actor, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, dashboard)
}
