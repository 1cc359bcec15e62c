// internal/services/company_service.go
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

type CompanyService struct {
	db    *gorm.DB
	audit *AuditService
}

func NewCompanyService(db *gorm.DB, audit *AuditService) *CompanyService {
	return &CompanyService{db: db, audit: audit}
}

type CreateCompanyRequest struct {
	Name               string `json:"name" validate:"required,min=2,max=255"`
	RegistrationNumber string `json:"registration_number" validate:"required,max=50"`
	ContactEmail       string `json:"contact_email" validate:"omitempty,email"`
}

func (s *CompanyService) CreateCompany(actor models.Actor, req *CreateCompanyRequest) (*models.Company, error) {
	if !actor.IsSystemAdmin() {
		return nil, apperrors.PermissionDenied("only system administrators may create companies")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid company")
	}

	company := &models.Company{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		ContactEmail:       req.ContactEmail,
		Active:             true,
	}

	if err := s.db.Create(company).Error; err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}

	s.audit.Record(actor.ID, &company.ID, "company", company.ID, models.AuditActionCreate,
		models.JSONB{"name": req.Name})

	return company, nil
}

func (s *CompanyService) GetCompany(actor models.Actor, companyID uuid.UUID) (*models.Company, error) {
	if !actor.CanAccessCompany(companyID) {
		return nil, apperrors.PermissionDenied("no access to company %s", companyID)
	}

	var company models.Company
	err := s.db.Preload("Stations").First(&company, "id = ?", companyID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("company %s not found", companyID)
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	return &company, nil
}

func (s *CompanyService) ListCompanies(actor models.Actor, params utils.PaginationParams) ([]models.Company, int64, error) {
	if !actor.IsOversight() {
		return nil, 0, apperrors.PermissionDenied("only oversight actors may list companies")
	}

	query := s.db.Model(&models.Company{})
	if params.Search != "" {
		query = query.Where("name ILIKE ?", "%"+params.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count companies: %w", err)
	}

	allowedSortFields := []string{"created_at", "name"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var companies []models.Company
	if err := query.Find(&companies).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch companies: %w", err)
	}

	return companies, total, nil
}
