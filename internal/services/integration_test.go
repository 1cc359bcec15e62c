// internal/services/integration_test.go
package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	tc "github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fuelwatch/compliance-backend/internal/apperrors"
	"github.com/fuelwatch/compliance-backend/internal/database"
	"github.com/fuelwatch/compliance-backend/internal/models"
)

// ServiceIntegrationSuite runs the DB-dependent service tests against a real
// postgres instance.
type ServiceIntegrationSuite struct {
	suite.Suite
	container   *tcpostgres.PostgresContainer
	db          *gorm.DB
	storageRoot string

	audit       *AuditService
	periods     *PeriodService
	submissions *SubmissionService
	compliance  *ComplianceService
	forward     *ForwardService

	company models.Company
	station models.Station
	catalog models.CatalogVersion
}

func TestServiceIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed tests in short mode")
	}
	suite.Run(t, new(ServiceIntegrationSuite))
}

func (s *ServiceIntegrationSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.RunContainer(ctx,
		tc.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("compliance_test"),
		tcpostgres.WithUsername("compliance"),
		tcpostgres.WithPassword("compliance"),
		tc.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	s.db = db

	s.Require().NoError(database.RunMigrations(db))

	storageConfig := testStorageConfig(s.T())
	storage, err := NewStorageService(storageConfig)
	s.Require().NoError(err)
	s.storageRoot = storageConfig.Storage.LocalPath

	s.audit = NewAuditService(db)
	s.periods = NewPeriodService(db)
	s.submissions = NewSubmissionService(db, s.periods, storage, s.audit)
	s.compliance = NewComplianceService(db, s.periods)
	s.forward = NewForwardService(db, s.audit)
}

func (s *ServiceIntegrationSuite) TearDownSuite() {
	if s.container != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.container.Terminate(ctx)
	}
}

// SetupTest gives every test a clean tenant with one station and a seeded
// obligation catalog.
func (s *ServiceIntegrationSuite) SetupTest() {
	tables := []string{
		"audit_logs", "bulk_forward_items", "bulk_forward_batches",
		"task_messages", "tasks", "evidences", "submission_checks",
		"submissions", "submission_periods", "obligations",
		"catalog_versions", "stations", "companies", "users",
	}
	for _, table := range tables {
		s.Require().NoError(s.db.Exec("DELETE FROM " + table).Error)
	}

	s.company = models.Company{Name: "Test Fuels", RegistrationNumber: "REG-001"}
	s.Require().NoError(s.db.Create(&s.company).Error)

	s.station = models.Station{CompanyID: s.company.ID, Name: "North Terminal", Slug: "north-terminal", Active: true}
	s.Require().NoError(s.db.Create(&s.station).Error)

	s.catalog = models.CatalogVersion{Label: "v1", EffectiveDate: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.Require().NoError(s.db.Create(&s.catalog).Error)

	for _, code := range MandatoryObligationCodes {
		obligation := models.Obligation{
			CatalogVersionID: s.catalog.ID,
			Code:             code,
			Title:            "Obligation " + code,
			FieldType:        models.FieldTypeBoolean,
			Frequency:        models.FrequencyPeriodic,
			Criticality:      models.CriticalityCritical,
		}
		s.Require().NoError(s.db.Create(&obligation).Error)
	}
}

func (s *ServiceIntegrationSuite) companyActor() models.Actor {
	companyID := s.company.ID
	return models.Actor{ID: uuid.New(), Role: models.RoleCompanyAdmin, CompanyID: &companyID}
}

func (s *ServiceIntegrationSuite) customsActor() models.Actor {
	return models.Actor{ID: uuid.New(), Role: models.RoleCustomsOfficer}
}

func (s *ServiceIntegrationSuite) obligations() []models.Obligation {
	var obligations []models.Obligation
	s.Require().NoError(s.db.Order("code ASC").Find(&obligations).Error)
	return obligations
}

func (s *ServiceIntegrationSuite) TestEnsureActiveSubmissionIsIdempotent() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	first, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusDraft, first.Status)

	second, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now.Add(3*time.Hour))
	s.Require().NoError(err)
	s.Equal(first.ID, second.ID)

	var count int64
	s.db.Model(&models.Submission{}).Where("station_id = ?", s.station.ID).Count(&count)
	s.Equal(int64(1), count)
}

func (s *ServiceIntegrationSuite) TestEnsureActiveSubmissionAutoFillsFromPrevious() {
	actor := s.companyActor()
	previousTime := time.Date(2026, 8, 5, 10, 0, 0, 0, time.UTC)
	currentTime := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	obligations := s.obligations()

	previous, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, previousTime)
	s.Require().NoError(err)

	_, err = s.submissions.CreateOrUpdateSubmissionCheck(actor, previous.ID, &SubmissionCheckRequest{
		ObligationID: obligations[0].ID,
		Value:        "yes",
		Notes:        "carried note",
	})
	s.Require().NoError(err)

	_, err = s.submissions.AddEvidence(actor, previous.ID, "certificate.pdf", "application/pdf",
		[]byte("pdf-bytes"), nil)
	s.Require().NoError(err)

	current, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, currentTime)
	s.Require().NoError(err)
	s.NotEqual(previous.ID, current.ID)

	s.Require().Len(current.Checks, 1)
	s.Equal(obligations[0].ID, current.Checks[0].ObligationID)
	s.Equal("yes", current.Checks[0].Value)
	s.Equal("carried note", current.Checks[0].Notes)

	// Evidence is carried by reference: new row, same blob.
	s.Require().Len(current.Evidence, 1)
	var previousEvidence models.Evidence
	s.Require().NoError(s.db.First(&previousEvidence, "submission_id = ?", previous.ID).Error)
	s.NotEqual(previousEvidence.ID, current.Evidence[0].ID)
	s.Equal(previousEvidence.StoragePath, current.Evidence[0].StoragePath)
	s.Equal(previousEvidence.ContentHash, current.Evidence[0].ContentHash)
}

func (s *ServiceIntegrationSuite) TestEvidenceIntegrityCheck() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	submission, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)

	evidence, err := s.submissions.AddEvidence(actor, submission.ID, "certificate.pdf", "application/pdf",
		[]byte("original bytes"), nil)
	s.Require().NoError(err)
	s.Len(evidence.ContentHash, 64)

	loaded, data, err := s.submissions.GetEvidence(actor, evidence.ID)
	s.Require().NoError(err)
	s.Equal([]byte("original bytes"), data)
	s.Equal(evidence.ContentHash, loaded.ContentHash)

	// Overwrite the stored blob behind the service's back.
	blobPath := filepath.Join(s.storageRoot, filepath.FromSlash(evidence.StoragePath))
	s.Require().NoError(os.WriteFile(blobPath, []byte("tampered"), 0o644))

	_, _, err = s.submissions.GetEvidence(actor, evidence.ID)
	s.Error(err)
	s.Contains(err.Error(), "integrity")
}

func (s *ServiceIntegrationSuite) TestSubmissionLifecycle() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	submission, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)

	// DRAFT -> SUBMITTED
	submission, err = s.submissions.Submit(actor, submission.ID, now)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusSubmitted, submission.Status)
	s.NotNil(submission.SubmittedAt)

	// Double submit is rejected.
	_, err = s.submissions.Submit(actor, submission.ID, now)
	s.Error(err)
	s.True(apperrors.IsValidation(err))

	// Recall clears the submit stamp.
	submission, err = s.submissions.Recall(actor, submission.ID)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusDraft, submission.Status)
	s.Nil(submission.SubmittedAt)
	s.Nil(submission.SubmittedBy)

	// Resubmit, review, approve.
	submission, err = s.submissions.Submit(actor, submission.ID, now)
	s.Require().NoError(err)
	submission, err = s.submissions.StartReview(actor, submission.ID, now)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusUnderReview, submission.Status)
	submission, err = s.submissions.ApproveSubmission(actor, submission.ID, now)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusApproved, submission.Status)
	s.NotNil(submission.CompanyDecisionAt)
}

func (s *ServiceIntegrationSuite) TestReturnRequiresSubstantialReason() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	submission, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)
	submission, err = s.submissions.Submit(actor, submission.ID, now)
	s.Require().NoError(err)

	_, err = s.submissions.ReturnSubmission(actor, submission.ID, &ReturnSubmissionRequest{Reason: "  ab  "}, now)
	s.Error(err)
	s.True(apperrors.IsValidation(err))

	returned, err := s.submissions.ReturnSubmission(actor, submission.ID, &ReturnSubmissionRequest{Reason: "missing meter readings"}, now)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusDraft, returned.Status)
	s.Equal("missing meter readings", returned.ReturnReason)
}

func (s *ServiceIntegrationSuite) TestCustomsDecisionOverridesCompanyApproval() {
	actor := s.companyActor()
	customs := s.customsActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	submission, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)
	submission, err = s.submissions.Submit(actor, submission.ID, now)
	s.Require().NoError(err)
	submission, err = s.submissions.ApproveSubmission(actor, submission.ID, now)
	s.Require().NoError(err)

	// The customs decision is unguarded and replaces the approval.
	rejected, err := s.submissions.UpdateSubmissionStatus(customs, submission.ID, models.SubmissionStatusRejected, now)
	s.Require().NoError(err)
	s.Equal(models.SubmissionStatusRejected, rejected.Status)

	// Company actors cannot use the decision path.
	_, err = s.submissions.UpdateSubmissionStatus(actor, submission.ID, models.SubmissionStatusApproved, now)
	s.Error(err)
	s.True(apperrors.IsPermissionDenied(err))
}

func (s *ServiceIntegrationSuite) TestCheckWriteGuardsAcrossLifecycle() {
	actor := s.companyActor()
	customs := s.customsActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)
	obligations := s.obligations()

	submission, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)

	req := &SubmissionCheckRequest{ObligationID: obligations[0].ID, Value: "yes"}

	// Company writes in DRAFT, customs does not.
	_, err = s.submissions.CreateOrUpdateSubmissionCheck(actor, submission.ID, req)
	s.NoError(err)
	_, err = s.submissions.CreateOrUpdateSubmissionCheck(customs, submission.ID, req)
	s.Error(err)

	_, err = s.submissions.Submit(actor, submission.ID, now)
	s.Require().NoError(err)

	// After hand-off the sides flip.
	_, err = s.submissions.CreateOrUpdateSubmissionCheck(actor, submission.ID, req)
	s.Error(err)
	_, err = s.submissions.CreateOrUpdateSubmissionCheck(customs, submission.ID, &SubmissionCheckRequest{
		ObligationID: obligations[0].ID,
		Value:        "no",
		Notes:        "customs annotation",
	})
	s.NoError(err)

	// The upsert updated in place rather than duplicating.
	var count int64
	s.db.Model(&models.SubmissionCheck{}).Where("submission_id = ?", submission.ID).Count(&count)
	s.Equal(int64(1), count)
}

func (s *ServiceIntegrationSuite) TestGeneratePeriodsForMonthIsIdempotent() {
	periods, err := s.periods.GeneratePeriodsForMonth(2026, time.July)
	s.Require().NoError(err)
	s.Require().Len(periods, 3)

	again, err := s.periods.GeneratePeriodsForMonth(2026, time.July)
	s.Require().NoError(err)
	s.Require().Len(again, 3)

	for i := range periods {
		s.Equal(periods[i].ID, again[i].ID)
	}

	var count int64
	s.db.Model(&models.SubmissionPeriod{}).Where("year = ? AND month = ?", 2026, 7).Count(&count)
	s.Equal(int64(3), count)
}

func (s *ServiceIntegrationSuite) TestBulkForwardOnlyApproved() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	second := models.Station{CompanyID: s.company.ID, Name: "South Depot", Slug: "south-depot", Active: true}
	s.Require().NoError(s.db.Create(&second).Error)

	period, err := s.periods.GetOrCreateCurrentPeriod(now)
	s.Require().NoError(err)

	// First station reaches APPROVED; the second stays in DRAFT.
	submission, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)
	_, err = s.submissions.Submit(actor, submission.ID, now)
	s.Require().NoError(err)
	_, err = s.submissions.ApproveSubmission(actor, submission.ID, now)
	s.Require().NoError(err)
	_, err = s.submissions.EnsureActiveSubmission(actor, second.ID, now)
	s.Require().NoError(err)

	result, err := s.forward.BulkForward(actor, &BulkForwardRequest{
		PeriodID: period.ID,
		Mode:     models.ForwardModeOnlyApproved,
	}, now)
	s.Require().NoError(err)
	s.Require().Len(result.Results, 2)

	// Default targeting orders stations by name: North Terminal, South Depot.
	s.Equal(s.station.ID, result.Results[0].StationID)
	s.Equal(models.ForwardOutcomeSuccess, result.Results[0].Outcome)
	s.Equal("Forwarded", result.Results[0].Message)

	s.Equal(second.ID, result.Results[1].StationID)
	s.Equal(models.ForwardOutcomeSkipped, result.Results[1].Outcome)
	s.Equal("Not approved", result.Results[1].Message)

	// Re-running skips the already-forwarded station.
	rerun, err := s.forward.BulkForward(actor, &BulkForwardRequest{
		PeriodID: period.ID,
		Mode:     models.ForwardModeOnlyApproved,
	}, now)
	s.Require().NoError(err)
	s.Equal(models.ForwardOutcomeSkipped, rerun.Results[0].Outcome)
	s.Equal("Already forwarded", rerun.Results[0].Message)
}

func (s *ServiceIntegrationSuite) TestBulkForwardEdgeCases() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	period, err := s.periods.GetOrCreateCurrentPeriod(now)
	s.Require().NoError(err)

	// No submission at all and no explanation: the item fails.
	missing, err := s.forward.BulkForward(actor, &BulkForwardRequest{
		PeriodID:   period.ID,
		Mode:       models.ForwardModeIncludeEdgeCases,
		StationIDs: []uuid.UUID{s.station.ID},
	}, now)
	s.Require().NoError(err)
	s.Equal(models.ForwardOutcomeFailed, missing.Results[0].Outcome)
	s.Equal("Missing explanation for edge case", missing.Results[0].Message)

	// With an explanation a stub DRAFT submission is created and forwarded.
	forwarded, err := s.forward.BulkForward(actor, &BulkForwardRequest{
		PeriodID:     period.ID,
		Mode:         models.ForwardModeIncludeEdgeCases,
		StationIDs:   []uuid.UUID{s.station.ID},
		Explanations: map[uuid.UUID]string{s.station.ID: "station closed for maintenance"},
	}, now)
	s.Require().NoError(err)
	s.Equal(models.ForwardOutcomeSuccess, forwarded.Results[0].Outcome)
	s.Equal("Forwarded as edge case", forwarded.Results[0].Message)

	var stub models.Submission
	s.Require().NoError(s.db.Where("period_id = ? AND station_id = ?", period.ID, s.station.ID).
		First(&stub).Error)
	s.Equal(models.SubmissionStatusDraft, stub.Status)
	s.True(stub.ForwardedWithoutStationSubmit)
	s.Equal("station closed for maintenance", stub.ForwardExplanation)
	s.NotNil(stub.ForwardedAt)
}

func (s *ServiceIntegrationSuite) TestBulkForwardEdgeCaseExistingDraft() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	period, err := s.periods.GetOrCreateCurrentPeriod(now)
	s.Require().NoError(err)

	draft, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, now)
	s.Require().NoError(err)

	// A one-word explanation is too short; the draft stays untouched.
	short, err := s.forward.BulkForward(actor, &BulkForwardRequest{
		PeriodID:     period.ID,
		Mode:         models.ForwardModeIncludeEdgeCases,
		StationIDs:   []uuid.UUID{s.station.ID},
		Explanations: map[uuid.UUID]string{s.station.ID: "ok"},
	}, now)
	s.Require().NoError(err)
	s.Equal(models.ForwardOutcomeFailed, short.Results[0].Outcome)
	s.Equal("Missing explanation for edge case", short.Results[0].Message)

	var untouched models.Submission
	s.Require().NoError(s.db.First(&untouched, "id = ?", draft.ID).Error)
	s.Nil(untouched.ForwardedAt)
	s.False(untouched.ForwardedWithoutStationSubmit)

	// With a real explanation the existing draft is stamped in place rather
	// than replaced by a stub.
	result, err := s.forward.BulkForward(actor, &BulkForwardRequest{
		PeriodID:     period.ID,
		Mode:         models.ForwardModeIncludeEdgeCases,
		StationIDs:   []uuid.UUID{s.station.ID},
		Explanations: map[uuid.UUID]string{s.station.ID: "meter recalibration still pending"},
	}, now)
	s.Require().NoError(err)
	s.Equal(models.ForwardOutcomeSuccess, result.Results[0].Outcome)
	s.Equal("Forwarded as edge case", result.Results[0].Message)

	var stamped models.Submission
	s.Require().NoError(s.db.First(&stamped, "id = ?", draft.ID).Error)
	s.Equal(models.SubmissionStatusDraft, stamped.Status)
	s.True(stamped.ForwardedWithoutStationSubmit)
	s.Equal("meter recalibration still pending", stamped.ForwardExplanation)
	s.NotNil(stamped.ForwardedAt)
	s.Equal(actor.ID, *stamped.ForwardedBy)

	var count int64
	s.db.Model(&models.Submission{}).Where("period_id = ? AND station_id = ?", period.ID, s.station.ID).Count(&count)
	s.Equal(int64(1), count)
}

func (s *ServiceIntegrationSuite) TestBulkForwardResultOrderMirrorsRequest() {
	actor := s.companyActor()
	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)

	second := models.Station{CompanyID: s.company.ID, Name: "A First By Name", Slug: "a-first-by-name", Active: true}
	s.Require().NoError(s.db.Create(&second).Error)

	period, err := s.periods.GetOrCreateCurrentPeriod(now)
	s.Require().NoError(err)

	// Explicit subset in reverse-alphabetical order is preserved as given.
	result, err := s.forward.BulkForward(actor, &BulkForwardRequest{
		PeriodID:   period.ID,
		Mode:       models.ForwardModeOnlyApproved,
		StationIDs: []uuid.UUID{s.station.ID, second.ID},
	}, now)
	s.Require().NoError(err)
	s.Require().Len(result.Results, 2)
	s.Equal(s.station.ID, result.Results[0].StationID)
	s.Equal(second.ID, result.Results[1].StationID)

	// The persisted batch items carry the same order.
	batch, err := s.forward.GetBatch(actor, result.BatchID)
	s.Require().NoError(err)
	s.Require().Len(batch.Items, 2)
	s.Equal(s.station.ID, batch.Items[0].StationID)
	s.Equal(second.ID, batch.Items[1].StationID)
}

func (s *ServiceIntegrationSuite) TestBulkForwardIsCompanyOnly() {
	now := time.Now()
	period, err := s.periods.GetOrCreateCurrentPeriod(now)
	s.Require().NoError(err)

	_, err = s.forward.BulkForward(s.customsActor(), &BulkForwardRequest{
		PeriodID: period.ID,
		Mode:     models.ForwardModeOnlyApproved,
	}, now)
	s.Error(err)
	s.True(apperrors.IsPermissionDenied(err))
}

func (s *ServiceIntegrationSuite) TestComplianceEvaluation() {
	actor := s.companyActor()
	obligations := s.obligations()

	// Work entirely inside August 2026: the last finished period at the 25th
	// is period 2 (11th-20th).
	periodTime := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)
	evalTime := time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)

	submission, err := s.submissions.EnsureActiveSubmission(actor, s.station.ID, periodTime)
	s.Require().NoError(err)
	for _, obligation := range obligations {
		_, err = s.submissions.CreateOrUpdateSubmissionCheck(actor, submission.ID, &SubmissionCheckRequest{
			ObligationID: obligation.ID,
			Value:        "yes",
		})
		s.Require().NoError(err)
	}
	_, err = s.submissions.Submit(actor, submission.ID, periodTime)
	s.Require().NoError(err)

	result, err := s.compliance.EvaluateStation(actor, s.station.ID, evalTime)
	s.Require().NoError(err)
	s.Equal(models.ComplianceStatusCompliant, result.Status)
	s.Empty(result.Violations)
	// No submission for the running third period yet.
	s.Contains(result.Badges, BadgePendingReport)

	// Flip one mandatory answer and the station turns non-compliant.
	customs := s.customsActor()
	_, err = s.submissions.CreateOrUpdateSubmissionCheck(customs, submission.ID, &SubmissionCheckRequest{
		ObligationID: obligations[0].ID,
		Value:        "no",
	})
	s.Require().NoError(err)

	result, err = s.compliance.EvaluateStation(actor, s.station.ID, evalTime)
	s.Require().NoError(err)
	s.Equal(models.ComplianceStatusNonCompliant, result.Status)
	s.Require().Len(result.Violations, 1)
	s.Contains(result.Violations[0], obligations[0].Code)
}

func (s *ServiceIntegrationSuite) TestComplianceMissingSubmission() {
	actor := s.companyActor()

	// Materialize period 2 of August without any submission.
	_, err := s.periods.GetOrCreateCurrentPeriod(time.Date(2026, 8, 14, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)

	result, err := s.compliance.EvaluateStation(actor, s.station.ID, time.Date(2026, 8, 25, 0, 0, 0, 0, time.UTC))
	s.Require().NoError(err)
	s.Equal(models.ComplianceStatusNonCompliant, result.Status)
	s.Require().Len(result.Violations, 1)
	s.Contains(result.Violations[0], "missing submission")
}

func (s *ServiceIntegrationSuite) TestTenantIsolation() {
	other := models.Company{Name: "Other Fuels", RegistrationNumber: "REG-002"}
	s.Require().NoError(s.db.Create(&other).Error)
	otherID := other.ID
	foreignActor := models.Actor{ID: uuid.New(), Role: models.RoleCompanyAdmin, CompanyID: &otherID}

	now := time.Date(2026, 8, 14, 10, 0, 0, 0, time.UTC)
	submission, err := s.submissions.EnsureActiveSubmission(s.companyActor(), s.station.ID, now)
	s.Require().NoError(err)

	_, err = s.submissions.GetSubmission(foreignActor, submission.ID)
	s.Error(err)
	s.True(apperrors.IsPermissionDenied(err))

	_, err = s.submissions.EnsureActiveSubmission(foreignActor, s.station.ID, now)
	s.Error(err)
	s.True(apperrors.IsPermissionDenied(err))

	listed, err := s.submissions.ListSubmissions(foreignActor, SubmissionSearchParams{})
	s.Require().NoError(err)
	s.Empty(listed)
}
