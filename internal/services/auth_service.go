// internal/services/auth_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/config"
	"github.com/fuelwatch/compliance-backend/internal/models"
	"github.com/fuelwatch/compliance-backend/internal/utils"
)

// AuthService handles login and user administration.
type AuthService struct {
	db    *gorm.DB
	cfg   *config.JWTConfig
	audit *AuditService
}

func NewAuthService(db *gorm.DB, cfg *config.JWTConfig, audit *AuditService) *AuthService {
	return &AuthService{db: db, cfg: cfg, audit: audit}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // seconds
	User      *models.User `json:"user"`
}

type CreateUserRequest struct {
	Email     string          `json:"email" validate:"required,email"`
	FullName  string          `json:"full_name" validate:"required,max=255"`
	Password  string          `json:"password" validate:"required,strong_password"`
	Role      models.UserRole `json:"role" validate:"required"`
	CompanyID *uuid.UUID      `json:"company_id,omitempty"`
	StationID *uuid.UUID      `json:"station_id,omitempty"`
}

// Login verifies credentials and issues an access token carrying the actor's
// role and tenant scope. Inactive users cannot log in.
func (s *AuthService) Login(req *LoginRequest) (*LoginResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid login request")
	}

	var user models.User
	err := s.db.First(&user, "email = ?", req.Email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.PermissionDenied("invalid credentials")
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if user.Status != models.UserStatusActive {
		return nil, apperrors.PermissionDenied("account is not active")
	}

	if err := user.CheckPassword(req.Password); err != nil {
		return nil, apperrors.PermissionDenied("invalid credentials")
	}

	token, err := utils.GenerateJWT(user.ID, string(user.Role), user.CompanyID, user.StationID, s.cfg.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.db.Model(&user).Update("last_login_at", now).Error; err != nil {
		// Login still succeeds, the timestamp is informational.
		return &LoginResponse{Token: token, ExpiresIn: s.cfg.AccessTokenTTL * 3600, User: &user}, nil
	}

	return &LoginResponse{
		Token:     token,
		ExpiresIn: s.cfg.AccessTokenTTL * 3600,
		User:      &user,
	}, nil
}

// CreateUser provisions an account. System admin only. Company-side roles
// must carry a company scope; station operators additionally carry a station.
func (s *AuthService) CreateUser(actor models.Actor, req *CreateUserRequest) (*models.User, error) {
	if !actor.IsSystemAdmin() {
		return nil, apperrors.PermissionDenied("only system admins may create users")
	}

	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid user")
	}

	switch req.Role {
	case models.RoleCompanyAdmin:
		if req.CompanyID == nil {
			return nil, apperrors.Validation("company admins require a company")
		}
	case models.RoleStationOperator:
		if req.CompanyID == nil || req.StationID == nil {
			return nil, apperrors.Validation("station operators require a company and a station")
		}
	case models.RoleCustomsOfficer, models.RoleCustomsSupervisor, models.RoleSystemAdmin:
		if req.CompanyID != nil || req.StationID != nil {
			return nil, apperrors.Validation("oversight roles carry no tenant scope")
		}
	default:
		return nil, apperrors.Validation("unknown role %q", req.Role)
	}

	if req.StationID != nil {
		var station models.Station
		if err := s.db.First(&station, "id = ?", *req.StationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.NotFound("station %s not found", *req.StationID)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
		if station.CompanyID != *req.CompanyID {
			return nil, apperrors.Validation("station does not belong to the given company")
		}
	}

	user := &models.User{
		Email:     req.Email,
		FullName:  req.FullName,
		Role:      req.Role,
		Status:    models.UserStatusActive,
		CompanyID: req.CompanyID,
		StationID: req.StationID,
	}
	if err := user.SetPassword(req.Password); err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.Create(user).Error; err != nil {
		if utils.IsUniqueViolation(err) {
			return nil, apperrors.Validation("email %s is already registered", req.Email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit.Record(actor.ID, req.CompanyID, "user", user.ID, models.AuditActionCreate,
		models.JSONB{"email": req.Email, "role": req.Role})

	return user, nil
}

// DeactivateUser suspends an account so its tokens stop resolving.
func (s *AuthService) DeactivateUser(actor models.Actor, userID uuid.UUID) error {
	if !actor.IsSystemAdmin() {
		return apperrors.PermissionDenied("only system admins may deactivate users")
	}

	result := s.db.Model(&models.User{}).Where("id = ?", userID).
		Update("status", models.UserStatusSuspended)
	if result.Error != nil {
		return fmt.Errorf("failed to deactivate user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("user %s not found", userID)
	}

	s.audit.Record(actor.ID, nil, "user", userID, models.AuditActionUpdate,
		models.JSONB{"status": models.UserStatusSuspended})

	return nil
}

// ResolveActor turns validated token claims back into an Actor, re-checking
// the account is still active.
func (s *AuthService) ResolveActor(claims *utils.JWTClaims) (models.Actor, error) {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return models.Actor{}, apperrors.PermissionDenied("invalid token subject")
	}

	var user models.User
	dbErr := s.db.First(&user, "id = ?", userID).Error
	if errors.Is(dbErr, gorm.ErrRecordNotFound) {
		return models.Actor{}, apperrors.PermissionDenied("account no longer exists")
	}
	if dbErr != nil {
		return models.Actor{}, fmt.Errorf("database error: %w", dbErr)
	}

	if user.Status != models.UserStatusActive {
		return models.Actor{}, apperrors.PermissionDenied("account is not active")
	}

	return user.Actor(), nil
}
