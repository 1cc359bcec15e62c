// internal/handlers/catalog.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/fuelwatch/compliance-backend/internal/middleware"
	"github.com/fuelwatch/compliance-backend/internal/services"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

type CatalogHandler struct {
	catalogService *services.CatalogService
}

func NewCatalogHandler(catalogService *services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// GET /catalog/versions
func (h *CatalogHandler) ListVersions(c *gin.Context) {
	versions, err := h.catalogService.ListCatalogVersions()
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, versions)
}

// GET /catalog/obligations?version_id=...
// Without version_id, the currently effective version is used.
func (h *CatalogHandler) ListObligations(c *gin.Context) {
	versionID := uuid.Nil
	if versionIDStr := c.Query("version_id"); versionIDStr != "" {
		parsed, err := uuid.Parse(versionIDStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid version ID", nil)
			return
		}
		versionID = parsed
	}

	obligations, err := h.catalogService.ListObligations(versionID, time.Now())
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}
	utils.SuccessResponse(c, obligations)
}

// POST /admin/catalog/versions
func (h *CatalogHandler) CreateVersion(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateCatalogVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	version, err := h.catalogService.CreateCatalogVersion(actor, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, version)
}

// POST /admin/catalog/obligations
func (h *CatalogHandler) CreateObligation(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req services.CreateObligationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	obligation, err := h.catalogService.CreateObligation(actor, &req)
	if err != nil {
		utils.ServiceErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, obligation)
}
