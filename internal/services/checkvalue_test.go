// internal/services/checkvalue_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCheckValuePlainString(t *testing.T) {
	tests := []struct {
		raw    string
		answer string
	}{
		{"YES", "YES"},
		{"  yes  ", "yes"},
		{"no", "no"},
		{"true", "true"},
		{"Inspection passed with remarks", "Inspection passed with remarks"},
		{"", ""},
	}

	for _, tt := range tests {
		parsed := ParseCheckValue(tt.raw)
		assert.Equal(t, tt.answer, parsed.Answer)
		assert.False(t, parsed.Structured)
		assert.Nil(t, parsed.ValidUntil)
	}
}

func TestParseCheckValueStructured(t *testing.T) {
	parsed := ParseCheckValue(`{"answer":"yes","validUntil":"2026-12-31"}`)
	assert.True(t, parsed.Structured)
	assert.Equal(t, "yes", parsed.Answer)
	require.NotNil(t, parsed.ValidUntil)
	assert.Equal(t, 2026, parsed.ValidUntil.Year())
	assert.Equal(t, time.December, parsed.ValidUntil.Month())
	assert.Equal(t, 31, parsed.ValidUntil.Day())
}

func TestParseCheckValueStructuredRFC3339(t *testing.T) {
	parsed := ParseCheckValue(`{"answer":"true","validUntil":"2026-06-30T12:00:00Z"}`)
	assert.True(t, parsed.Structured)
	require.NotNil(t, parsed.ValidUntil)
	assert.Equal(t, time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC), *parsed.ValidUntil)
}

func TestParseCheckValueStructuredWithoutValidUntil(t *testing.T) {
	parsed := ParseCheckValue(`{"answer":"no"}`)
	assert.True(t, parsed.Structured)
	assert.Equal(t, "no", parsed.Answer)
	assert.Nil(t, parsed.ValidUntil)
}

func TestParseCheckValueMalformedJSONFallsBack(t *testing.T) {
	// Broken JSON and JSON without an answer degrade to a plain-string answer.
	for _, raw := range []string{
		`{"answer":`,
		`{"validUntil":"2026-01-01"}`,
		`{not json at all}`,
	} {
		parsed := ParseCheckValue(raw)
		assert.False(t, parsed.Structured, raw)
		assert.Equal(t, raw, parsed.Answer, raw)
	}
}

func TestParseCheckValueUnparseableDateIsDropped(t *testing.T) {
	parsed := ParseCheckValue(`{"answer":"yes","validUntil":"next spring"}`)
	assert.True(t, parsed.Structured)
	assert.Nil(t, parsed.ValidUntil)
}

func TestAffirmative(t *testing.T) {
	affirmative := []string{"yes", "YES", "Yes", "true", "TRUE", " yes "}
	for _, raw := range affirmative {
		assert.True(t, CheckAnswer{Answer: raw}.Affirmative(), raw)
	}

	negative := []string{"no", "false", "", "y", "1", "ok", "yes please"}
	for _, raw := range negative {
		assert.False(t, CheckAnswer{Answer: raw}.Affirmative(), raw)
	}
}

func TestExpired(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	past := now.AddDate(0, -1, 0)
	future := now.AddDate(0, 1, 0)

	assert.False(t, CheckAnswer{Answer: "yes"}.Expired(now), "no validUntil never expires")
	assert.True(t, CheckAnswer{Answer: "yes", ValidUntil: &past}.Expired(now))
	assert.False(t, CheckAnswer{Answer: "yes", ValidUntil: &future}.Expired(now))
	assert.False(t, CheckAnswer{Answer: "yes", ValidUntil: &now}.Expired(now), "exact instant is not yet expired")
}
