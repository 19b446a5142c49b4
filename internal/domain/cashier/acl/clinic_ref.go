package acl

import (
	"strings"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClinicRef is the cashier context's denormalized view of a clinic from the
// external organization context: its identity plus the short code used to
// prefix session numbers. The prefix is a snapshot taken at the boundary, not
// a live lookup.
type ClinicRef struct {
	id     uuid.UUID
	prefix string
}

// NewClinicRef creates a ClinicRef. The prefix is trimmed and upper-cased; an
// empty prefix is allowed, numbering falls back to a generic code.
func NewClinicRef(id uuid.UUID, prefix string) (ClinicRef, error) {
	if id == uuid.Nil {
		return ClinicRef{}, shared.NewDomainError("INVALID_CLINIC_ID", "Clinic ID cannot be empty")
	}
	return ClinicRef{
		id:     id,
		prefix: strings.ToUpper(strings.TrimSpace(prefix)),
	}, nil
}

// ID returns the clinic's UUID.
func (r ClinicRef) ID() uuid.UUID {
	return r.id
}

// Prefix returns the normalized session-number prefix, possibly empty.
func (r ClinicRef) Prefix() string {
	return r.prefix
}

// String returns the clinic UUID as a string.
func (r ClinicRef) String() string {
	return r.id.String()
}

// IsEmpty returns true if the reference holds a nil UUID.
func (r ClinicRef) IsEmpty() bool {
	return r.id == uuid.Nil
}
