// internal/services/station_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/models"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

type StationService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewStationService(db *gorm.DB, audit *AuditService) *StationService {
	return &StationService{db: db, audit: audit}
}

type CreateStationRequest struct {
	CompanyID uuid.UUID `json:"company_id" validate:"required"`
	Name      string    `json:"name" validate:"required,min=2,max=255"`
	Address   string    `json:"address,omitempty"`
	Latitude  float64   `json:"latitude,omitempty"`
	Longitude float64   `json:"longitude,omitempty"`
	RiskScore float64   `json:"risk_score,omitempty"`
}

type UpdateStationRequest struct {
	Name      *string  `json:"name,omitempty"`
	Address   *string  `json:"address,omitempty"`
	Active    *bool    `json:"active,omitempty"`
	RiskScore *float64 `json:"risk_score,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// CreateStation registers a station under a company. Reference-data mutation
// is system-admin only. The slug is derived from the name and disambiguated
// with a numeric suffix on collision.
func (s *StationService) CreateStation(actor models.Actor, req *CreateStationRequest) (*models.Station, error) {
	if !actor.IsSystemAdmin() {
		return nil, apperrors.PermissionDenied("only system administrators may create stations")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid station")
	}

	var company models.Company
	if err := s.db.First(&company, "id = ?", req.CompanyID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("company %s not found", req.CompanyID)
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	slug, err := s.uniqueSlug(utils.Slugify(req.Name))
	if err != nil {
		return nil, err
	}

	station := &models.Station{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Slug:      slug,
		Active:    true,
		Address:   req.Address,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		RiskScore: req.RiskScore,
	}

	if err := s.db.Create(station).Error; err != nil {
		return nil, fmt.Errorf("failed to create station: %w", err)
	}

	s.audit.Record(actor.ID, &req.CompanyID, "station", station.ID, models.AuditActionCreate,
		models.JSONB{"name": req.Name, "slug": slug})

	return station, nil
}

func (s *StationService) uniqueSlug(base string) (string, error) {
	if base == "" {
		return "", apperrors.Validation("station name yields an empty slug")
	}

	slug := base
	for i := 2; ; i++ {
		var count int64
		if err := s.db.Model(&models.Station{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if count == 0 {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *StationService) UpdateStation(actor models.Actor, stationID uuid.UUID, req *UpdateStationRequest) (*models.Station, error) {
	if !actor.IsSystemAdmin() {
		return nil, apperrors.PermissionDenied("only system administrators may update stations")
	}

	station, err := s.GetStation(actor, stationID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		station.Name = *req.Name
	}
	if req.Address != nil {
		station.Address = *req.Address
	}
	if req.Active != nil {
		station.Active = *req.Active
	}
	if req.RiskScore != nil {
		station.RiskScore = *req.RiskScore
	}
	if req.Latitude != nil {
		station.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		station.Longitude = *req.Longitude
	}

	if err := s.db.Save(station).Error; err != nil {
		return nil, fmt.Errorf("failed to update station: %w", err)
	}

	s.audit.Record(actor.ID, &station.CompanyID, "station", station.ID, models.AuditActionUpdate, nil)

	return station, nil
}

func (s *StationService) GetStation(actor models.Actor, stationID uuid.UUID) (*models.Station, error) {
	var station models.Station
	err := s.db.Preload("Company").First(&station, "id = ?", stationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("station %s not found", stationID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if !actor.CanAccessStation(&station) {
		return nil, apperrors.PermissionDenied("no access to station %s", station.Slug)
	}

	return &station, nil
}

// ListStations scopes the listing to the actor: oversight sees everything,
// company actors their company, station-scoped actors only their station.
func (s *StationService) ListStations(actor models.Actor, params utils.PaginationParams) ([]models.Station, int64, error) {
	query := s.db.Model(&models.Station{}).Preload("Company")

	if !actor.IsOversight() {
		if actor.CompanyID == nil {
			return nil, 0, apperrors.PermissionDenied("actor has no company scope")
		}
		query = query.Where("company_id = ?", *actor.CompanyID)
		if actor.StationID != nil {
			query = query.Where("id = ?", *actor.StationID)
		}
	}

	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count stations: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "risk_score"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var stations []models.Station
	if err := query.Find(&stations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch stations: %w", err)
	}

	return stations, total, nil
}
