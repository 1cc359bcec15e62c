// internal/services/dashboard_service.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/models"
)

// DashboardService aggregates submission and compliance figures for the
// company and oversight landing views.
type DashboardService struct {
	db         *gorm.DB
	periods    *PeriodService
	compliance *ComplianceService
}

func NewDashboardService(db *gorm.DB, periods *PeriodService, compliance *ComplianceService) *DashboardService {
	return &DashboardService{db: db, periods: periods, compliance: compliance}
}

type statusCountRow struct {
	Status models.SubmissionStatus
	Count  int64
}

type PeriodSummary struct {
	Period        *models.SubmissionPeriod          `json:"period"`
	Deadline      time.Time                         `json:"deadline"`
	StatusCounts  map[models.SubmissionStatus]int64 `json:"status_counts"`
	TotalStations int64                             `json:"total_stations"`
	Missing       int64                             `json:"missing"`
}

type StationCompliance struct {
	Station models.Station    `json:"station"`
	Result  *ComplianceResult `json:"result"`
}

type CompanyDashboard struct {
	ActivePeriod *PeriodSummary      `json:"active_period,omitempty"`
	LastFinished *PeriodSummary      `json:"last_finished_period,omitempty"`
	Stations     []StationCompliance `json:"stations"`
	OpenTasks    int64               `json:"open_tasks"`
}

type OversightDashboard struct {
	ActivePeriod   *PeriodSummary `json:"active_period,omitempty"`
	LastFinished   *PeriodSummary `json:"last_finished_period,omitempty"`
	TotalCompanies int64          `json:"total_companies"`
	TotalStations  int64          `json:"total_stations"`
	NonCompliant   int64          `json:"non_compliant_stations"`
	OpenTasks      int64          `json:"open_tasks"`
}

// CompanyDashboard builds the landing view for a company-scoped actor:
// submission counts for the running and last closed windows plus a per-station
// compliance evaluation.
func (s *DashboardService) CompanyDashboard(actor models.Actor, companyID uuid.UUID, now time.Time) (*CompanyDashboard, error) {
	if !actor.CanAccessCompany(companyID) {
		return nil, apperrors.PermissionDenied("no access to company %s", companyID)
	}

	dashboard := &CompanyDashboard{Stations: []StationCompliance{}}

	active, err := s.periods.ActivePeriod(now)
	if err != nil {
		return nil, err
	}
	if active != nil {
		summary, err := s.periodSummary(active, &companyID)
		if err != nil {
			return nil, err
		}
		dashboard.ActivePeriod = summary
	}

	lastFinished, err := s.periods.LastFinishedPeriod(now)
	if err != nil {
		return nil, err
	}
	if lastFinished != nil {
		summary, err := s.periodSummary(lastFinished, &companyID)
		if err != nil {
			return nil, err
		}
		dashboard.LastFinished = summary
	}

	var stations []models.Station
	if err := s.db.Where("company_id = ? AND active = ?", companyID, true).
		Order("name ASC").Find(&stations).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch stations: %w", err)
	}

	for _, station := range stations {
		result, err := s.compliance.EvaluateStation(actor, station.ID, now)
		if err != nil {
			return nil, err
		}
		dashboard.Stations = append(dashboard.Stations, StationCompliance{Station: station, Result: result})
	}

	if err := s.db.Model(&models.Task{}).
		Joins("JOIN stations ON stations.id = tasks.station_id").
		Where("stations.company_id = ? AND tasks.status <> ?", companyID, models.TaskStatusClosed).
		Count(&dashboard.OpenTasks).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return dashboard, nil
}

// OversightDashboard builds the cross-tenant landing view. Non-compliance is
// approximated from last-finished-period submissions rather than a full
// per-station evaluation; the per-station listing carries the exact result.
func (s *DashboardService) OversightDashboard(actor models.Actor, now time.Time) (*OversightDashboard, error) {
	if !actor.IsOversight() {
		return nil, apperrors.PermissionDenied("oversight access required")
	}

	dashboard := &OversightDashboard{}

	active, err := s.periods.ActivePeriod(now)
	if err != nil {
		return nil, err
	}
	if active != nil {
		summary, err := s.periodSummary(active, nil)
		if err != nil {
			return nil, err
		}
		dashboard.ActivePeriod = summary
	}

	lastFinished, err := s.periods.LastFinishedPeriod(now)
	if err != nil {
		return nil, err
	}
	if lastFinished != nil {
		summary, err := s.periodSummary(lastFinished, nil)
		if err != nil {
			return nil, err
		}
		dashboard.LastFinished = summary

		dashboard.NonCompliant = summary.Missing
		for status, count := range summary.StatusCounts {
			if status == models.SubmissionStatusDraft || status == models.SubmissionStatusRejected {
				dashboard.NonCompliant += count
			}
		}
	}

	if err := s.db.Model(&models.Company{}).Count(&dashboard.TotalCompanies).Error; err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}
	if err := s.db.Model(&models.Station{}).Where("active = ?", true).
		Count(&dashboard.TotalStations).Error; err != nil {
		return nil, fmt.Errorf("failed to count stations: %w", err)
	}
	if err := s.db.Model(&models.Task{}).Where("status <> ?", models.TaskStatusClosed).
		Count(&dashboard.OpenTasks).Error; err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	return dashboard, nil
}

// periodSummary counts a period's submissions grouped by status, scoped to a
// company when companyID is set. Missing is the gap between active stations
// and existing submission rows.
func (s *DashboardService) periodSummary(period *models.SubmissionPeriod, companyID *uuid.UUID) (*PeriodSummary, error) {
	summary := &PeriodSummary{
		Period:       period,
		Deadline:     period.DeadlineDate,
		StatusCounts: map[models.SubmissionStatus]int64{},
	}

	query := s.db.Model(&models.Submission{}).
		Select("submissions.status AS status, COUNT(*) AS count").
		Joins("JOIN stations ON stations.id = submissions.station_id").
		Where("submissions.period_id = ?", period.ID)
	stationQuery := s.db.Model(&models.Station{}).Where("active = ?", true)

	if companyID != nil {
		query = query.Where("stations.company_id = ?", *companyID)
		stationQuery = stationQuery.Where("company_id = ?", *companyID)
	}

	var rows []statusCountRow
	if err := query.Group("submissions.status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}

	var total int64
	for _, row := range rows {
		summary.StatusCounts[row.Status] = row.Count
		total += row.Count
	}

	if err := stationQuery.Count(&summary.TotalStations).Error; err != nil {
		return nil, fmt.Errorf("failed to count stations: %w", err)
	}

	if summary.TotalStations > total {
		summary.Missing = summary.TotalStations - total
	}

	return summary, nil
}
