// internal/utils/validator_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type reasonPayload struct {
	Reason string `validate:"required,reason"`
}

func TestReasonValidator(t *testing.T) {
	valid := []string{
		"missing meter calibration certificate",
		"12345",
		"  five!  ",
	}
	for _, reason := range valid {
		assert.NoError(t, ValidateStruct(&reasonPayload{Reason: reason}), reason)
	}

	invalid := []string{
		"no",
		"abcd",
		"    a    ",
		"  \t\n  ",
	}
	for _, reason := range invalid {
		assert.Error(t, ValidateStruct(&reasonPayload{Reason: reason}), reason)
	}
}

type passwordPayload struct {
	Password string `validate:"required,strong_password"`
}

func TestStrongPasswordValidator(t *testing.T) {
	strong := []string{"Str0ng!pass", "Short1!A"}
	for _, password := range strong {
		assert.NoError(t, ValidateStruct(&passwordPayload{Password: password}), password)
	}

	weak := []string{
		"alllowercase",
		"ALLUPPERCASE1!",
		"NoSpecials123",
		"NoNumbers!!",
		"Ab1!",
	}
	for _, password := range weak {
		assert.Error(t, ValidateStruct(&passwordPayload{Password: password}), password)
	}
}
