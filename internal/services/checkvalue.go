// internal/services/checkvalue.go
package services

import (
	"encoding/json"
	"strings"
	"time"
)

// CheckAnswer is the parsed form of a submission check value. Stored values
// are either a bare string ("YES", "true", free text) or a JSON object
// {"answer": ..., "validUntil": ...}; the parse rule is: attempt the
// structured form, fall back to treating the raw value as a plain answer.
type CheckAnswer struct {
	Answer     string
	ValidUntil *time.Time
	Structured bool
}

type structuredCheckValue struct {
	Answer     string `json:"answer"`
	ValidUntil string `json:"validUntil"`
}

// ParseCheckValue decodes a stored check value into its tagged form.
func ParseCheckValue(raw string) CheckAnswer {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var sv structuredCheckValue
		if err := json.Unmarshal([]byte(trimmed), &sv); err == nil && sv.Answer != "" {
			answer := CheckAnswer{Answer: sv.Answer, Structured: true}
			if until := parseValidUntil(sv.ValidUntil); until != nil {
				answer.ValidUntil = until
			}
			return answer
		}
	}

	return CheckAnswer{Answer: trimmed}
}

func parseValidUntil(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// Affirmative reports whether the answer counts as a yes.
func (a CheckAnswer) Affirmative() bool {
	switch strings.ToLower(strings.TrimSpace(a.Answer)) {
	case "yes", "true":
		return true
	}
	return false
}

// Expired reports whether the answer carries a validUntil already in the
// past. An answer can be affirmative and expired at the same time; callers
// report those as separate violations.
func (a CheckAnswer) Expired(now time.Time) bool {
	return a.ValidUntil != nil && a.ValidUntil.Before(now)
}
