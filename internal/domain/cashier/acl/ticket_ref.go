// Package acl provides the Anti-Corruption Layer for the cashier bounded
// context. Tickets and clinics live in external contexts; the cashier domain
// only ever sees them through the value objects defined here, never through
// the owning context's aggregates.
package acl

import (
	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// TicketRef is the cashier context's reference to a ticket in the external
// ticketing context. Debt ledgers and payments carry ticket identity only;
// ticket contents stay on the other side of the boundary.
type TicketRef struct {
	value uuid.UUID
}

// NewTicketRef creates a TicketRef from a UUID. Returns an error if the UUID
// is nil.
func NewTicketRef(id uuid.UUID) (TicketRef, error) {
	if id == uuid.Nil {
		return TicketRef{}, shared.NewDomainError("INVALID_TICKET_ID", "Ticket ID cannot be empty")
	}
	return TicketRef{value: id}, nil
}

// MustNewTicketRef creates a TicketRef, panicking on a nil UUID. Use only
// when the ID is guaranteed valid, e.g. loaded from the database.
func MustNewTicketRef(id uuid.UUID) TicketRef {
	ref, err := NewTicketRef(id)
	if err != nil {
		panic(err)
	}
	return ref
}

// ParseTicketRef parses a string into a TicketRef.
func ParseTicketRef(s string) (TicketRef, error) {
	if s == "" {
		return TicketRef{}, shared.NewDomainError("INVALID_TICKET_ID", "Ticket ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return TicketRef{}, shared.NewDomainError("INVALID_TICKET_ID", "Ticket ID is not a valid UUID")
	}
	return NewTicketRef(id)
}

// UUID returns the underlying UUID value.
func (r TicketRef) UUID() uuid.UUID {
	return r.value
}

// String returns the string representation of the TicketRef.
func (r TicketRef) String() string {
	return r.value.String()
}

// IsEmpty returns true if the reference holds a nil UUID.
func (r TicketRef) IsEmpty() bool {
	return r.value == uuid.Nil
}

// Equals checks if two TicketRefs point at the same ticket.
func (r TicketRef) Equals(other TicketRef) bool {
	return r.value == other.value
}
