// internal/services/compliance_service_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fuelwatch/compliance-backend/internal/models"
)

func checkFor(code, value string) models.SubmissionCheck {
	return models.SubmissionCheck{
		Value:      value,
		Obligation: models.Obligation{Code: code},
	}
}

func allMandatoryChecks(value string) []models.SubmissionCheck {
	checks := make([]models.SubmissionCheck, 0, len(MandatoryObligationCodes))
	for _, code := range MandatoryObligationCodes {
		checks = append(checks, checkFor(code, value))
	}
	return checks
}

func TestEvaluateChecksAllAffirmative(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	violations := EvaluateChecks(allMandatoryChecks("yes"), MandatoryObligationCodes, now)
	assert.Empty(t, violations)
}

func TestEvaluateChecksMissingObligation(t *testing.T) {
	now := time.Now()
	checks := allMandatoryChecks("yes")

	// Drop OBL-003 from the answered set.
	var withoutThird []models.SubmissionCheck
	for _, check := range checks {
		if check.Obligation.Code != "OBL-003" {
			withoutThird = append(withoutThird, check)
		}
	}

	violations := EvaluateChecks(withoutThird, MandatoryObligationCodes, now)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "OBL-003")
	assert.Contains(t, violations[0], "not answered")
}

func TestEvaluateChecksNonAffirmativeAnswer(t *testing.T) {
	now := time.Now()
	checks := allMandatoryChecks("yes")
	checks[4] = checkFor("OBL-005", "no")

	violations := EvaluateChecks(checks, MandatoryObligationCodes, now)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "OBL-005")
	assert.Contains(t, violations[0], "not affirmative")
}

func TestEvaluateChecksExpiredButAffirmative(t *testing.T) {
	// An affirmative answer with a lapsed validity contributes exactly one
	// violation, for the expiry.
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	checks := allMandatoryChecks("yes")
	checks[0] = checkFor("OBL-001", `{"answer":"yes","validUntil":"2026-01-15"}`)

	violations := EvaluateChecks(checks, MandatoryObligationCodes, now)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0], "OBL-001")
	assert.Contains(t, violations[0], "expired")
	assert.Contains(t, violations[0], "2026-01-15")
}

func TestEvaluateChecksNegativeAndExpiredDoubleViolation(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	checks := allMandatoryChecks("yes")
	checks[1] = checkFor("OBL-002", `{"answer":"no","validUntil":"2025-12-31"}`)

	violations := EvaluateChecks(checks, MandatoryObligationCodes, now)
	require.Len(t, violations, 2)
	assert.Contains(t, violations[0], "not affirmative")
	assert.Contains(t, violations[1], "expired")
}

func TestEvaluateChecksFutureValidityPasses(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	checks := allMandatoryChecks("yes")
	checks[2] = checkFor("OBL-003", `{"answer":"yes","validUntil":"2027-06-30"}`)

	violations := EvaluateChecks(checks, MandatoryObligationCodes, now)
	assert.Empty(t, violations)
}

func TestEvaluateChecksIgnoresNonMandatoryAnswers(t *testing.T) {
	now := time.Now()
	checks := append(allMandatoryChecks("yes"), checkFor("OBL-008", "no"))

	violations := EvaluateChecks(checks, MandatoryObligationCodes, now)
	assert.Empty(t, violations)
}

func TestEvaluateChecksNothingAnswered(t *testing.T) {
	violations := EvaluateChecks(nil, MandatoryObligationCodes, time.Now())
	require.Len(t, violations, len(MandatoryObligationCodes))
	for i, code := range MandatoryObligationCodes {
		assert.Contains(t, violations[i], code)
	}
}

func TestEvaluateChecksViolationOrderFollowsMandatoryList(t *testing.T) {
	now := time.Now()
	checks := allMandatoryChecks("no")

	violations := EvaluateChecks(checks, MandatoryObligationCodes, now)
	require.Len(t, violations, len(MandatoryObligationCodes))
	for i, code := range MandatoryObligationCodes {
		assert.Contains(t, violations[i], fmt.Sprintf("obligation %s", code))
	}
}

func TestMandatoryObligationCodes(t *testing.T) {
	assert.Len(t, MandatoryObligationCodes, 7)
	assert.Equal(t, "OBL-001", MandatoryObligationCodes[0])
	assert.Equal(t, "OBL-007", MandatoryObligationCodes[6])
}
