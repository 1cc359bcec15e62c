// internal/models/actor.go
package models

import (
	"github.com/google/uuid"
)

// Actor is the already-authenticated principal a request acts as. It is
// resolved once by the auth middleware and threaded explicitly through every
// service operation; there is no process-wide authorization state.
type Actor struct {
	ID        uuid.UUID  `json:"id"`
	Role      UserRole   `json:"role"`
	CompanyID *uuid.UUID `json:"company_id,omitempty"`
	StationID *uuid.UUID `json:"station_id,omitempty"`
}

// IsOversight reports whether the actor belongs to the oversight class:
// customs roles and the system admin, all with unconditional cross-tenant
// read access.
func (a Actor) IsOversight() bool {
	switch a.Role {
	case RoleCustomsOfficer, RoleCustomsSupervisor, RoleSystemAdmin:
		return true
	}
	return false
}

// IsSystemAdmin reports whether the actor may mutate reference data
// (companies, stations, catalog versions, obligations). Plain customs roles
// may read cross-tenant but not mutate reference data.
func (a Actor) IsSystemAdmin() bool {
	return a.Role == RoleSystemAdmin
}

// CanAccessCompany is the tenant predicate gating every company-scoped
// resource. Oversight actors pass unconditionally.
func (a Actor) CanAccessCompany(companyID uuid.UUID) bool {
	if a.IsOversight() {
		return true
	}
	return a.CompanyID != nil && *a.CompanyID == companyID
}

// CanAccessStation narrows station-scoped actors to their own station on top
// of the company check.
func (a Actor) CanAccessStation(station *Station) bool {
	if a.IsOversight() {
		return true
	}
	if !a.CanAccessCompany(station.CompanyID) {
		return false
	}
	if a.StationID != nil && *a.StationID != station.ID {
		return false
	}
	return true
}
