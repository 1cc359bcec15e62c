// internal/models/actor_test.go
package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestActorIsOversight(t *testing.T) {
	oversight := []UserRole{RoleCustomsOfficer, RoleCustomsSupervisor, RoleSystemAdmin}
	for _, role := range oversight {
		assert.True(t, Actor{Role: role}.IsOversight(), string(role))
	}

	companySide := []UserRole{RoleCompanyAdmin, RoleStationOperator}
	for _, role := range companySide {
		assert.False(t, Actor{Role: role}.IsOversight(), string(role))
	}
}

func TestActorIsSystemAdmin(t *testing.T) {
	assert.True(t, Actor{Role: RoleSystemAdmin}.IsSystemAdmin())

	// Plain customs roles read cross-tenant but never mutate reference data.
	assert.False(t, Actor{Role: RoleCustomsOfficer}.IsSystemAdmin())
	assert.False(t, Actor{Role: RoleCustomsSupervisor}.IsSystemAdmin())
	assert.False(t, Actor{Role: RoleCompanyAdmin}.IsSystemAdmin())
}

func TestCanAccessCompany(t *testing.T) {
	ownCompany := uuid.New()
	otherCompany := uuid.New()

	companyAdmin := Actor{Role: RoleCompanyAdmin, CompanyID: &ownCompany}
	assert.True(t, companyAdmin.CanAccessCompany(ownCompany))
	assert.False(t, companyAdmin.CanAccessCompany(otherCompany))

	// No company scope means no company access.
	assert.False(t, Actor{Role: RoleCompanyAdmin}.CanAccessCompany(ownCompany))

	// Oversight passes for any tenant.
	assert.True(t, Actor{Role: RoleCustomsOfficer}.CanAccessCompany(ownCompany))
	assert.True(t, Actor{Role: RoleSystemAdmin}.CanAccessCompany(otherCompany))
}

func TestCanAccessStation(t *testing.T) {
	companyID := uuid.New()
	station := &Station{BaseModel: BaseModel{ID: uuid.New()}, CompanyID: companyID}
	otherStation := &Station{BaseModel: BaseModel{ID: uuid.New()}, CompanyID: companyID}
	foreignStation := &Station{BaseModel: BaseModel{ID: uuid.New()}, CompanyID: uuid.New()}

	companyAdmin := Actor{Role: RoleCompanyAdmin, CompanyID: &companyID}
	assert.True(t, companyAdmin.CanAccessStation(station))
	assert.True(t, companyAdmin.CanAccessStation(otherStation))
	assert.False(t, companyAdmin.CanAccessStation(foreignStation))

	// Station operators are pinned to their own station.
	operator := Actor{Role: RoleStationOperator, CompanyID: &companyID, StationID: &station.ID}
	assert.True(t, operator.CanAccessStation(station))
	assert.False(t, operator.CanAccessStation(otherStation))
	assert.False(t, operator.CanAccessStation(foreignStation))

	assert.True(t, Actor{Role: RoleCustomsSupervisor}.CanAccessStation(foreignStation))
}
