// internal/handlers/period.go
package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuelwatch/compliance-backend/internal/services"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

type PeriodHandler struct {
	periodService *services.PeriodService
}

func NewPeriodHandler(periodService *services.PeriodService) *PeriodHandler {
	return &PeriodHandler{periodService: periodService}
}

// GET /periods/current
func (h *PeriodHandler) GetCurrentPeriod(c *gin.Context) {
	period, err := h.periodService.GetOrCreateCurrentPeriod(time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, period)
}

// GET /periods/upcoming
func (h *PeriodHandler) GetUpcomingPeriods(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "3"))
	if limit < 1 || limit > 12 {
		limit = 3
	}

	periods, err := h.periodService.UpcomingPeriods(time.Now(), limit)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, periods)
}

// GET /periods/:id
func (h *PeriodHandler) GetPeriod(c *gin.Context) {
	periodID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid period ID", nil)
		return
	}

	period, err := h.periodService.GetPeriod(periodID)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, period)
}

// POST /admin/periods/generate?year=2026&month=8
func (h *PeriodHandler) GeneratePeriods(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		utils.BadRequestResponse(c, "Invalid year", nil)
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		utils.BadRequestResponse(c, "Invalid month", nil)
		return
	}

	periods, err := h.periodService.GeneratePeriodsForMonth(year, time.Month(month))
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, periods)
}
