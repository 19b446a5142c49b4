package cashier

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/clinicore/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ChangeAction is the kind of mutation a change log entry records
type ChangeAction string

const (
	ChangeActionCreate ChangeAction = "CREATE"
	ChangeActionUpdate ChangeAction = "UPDATE"
	ChangeActionCancel ChangeAction = "CANCEL"
	ChangeActionClose  ChangeAction = "CLOSE"
	ChangeActionVerify ChangeAction = "VERIFY"
)

// IsValid checks if the action is a valid ChangeAction
func (a ChangeAction) IsValid() bool {
	switch a {
	case ChangeActionCreate, ChangeActionUpdate, ChangeActionCancel, ChangeActionClose, ChangeActionVerify:
		return true
	}
	return false
}

// String returns the string representation of ChangeAction
func (a ChangeAction) String() string {
	return string(a)
}

// ChangeDetails is the free-form payload of a change log entry, stored as
// JSONB
type ChangeDetails map[string]any

// Value implements driver.Valuer for ChangeDetails
func (d ChangeDetails) Value() (driver.Value, error) {
	if d == nil {
		return nil, nil
	}
	return json.Marshal(d)
}

// Scan implements sql.Scanner for ChangeDetails
func (d *ChangeDetails) Scan(value any) error {
	if value == nil {
		*d = nil
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ChangeDetails", value)
	}
	return json.Unmarshal(raw, d)
}

// ChangeLogEntry is an append-only audit row describing who did what to a
// cashier entity. Entries are never updated or deleted.
type ChangeLogEntry struct {
	shared.BaseEntity
	TenantID   uuid.UUID
	EntityID   uuid.UUID
	EntityType string
	Action     ChangeAction
	UserID     uuid.UUID
	Details    ChangeDetails
}

// NewChangeLogEntry creates an audit entry for a mutation
func NewChangeLogEntry(
	tenantID uuid.UUID,
	entityID uuid.UUID,
	entityType string,
	action ChangeAction,
	userID uuid.UUID,
	details ChangeDetails,
) (*ChangeLogEntry, error) {
	if entityID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity ID cannot be empty")
	}
	if entityType == "" {
		return nil, shared.NewDomainError("INVALID_ENTITY", "Entity type cannot be empty")
	}
	if !action.IsValid() {
		return nil, shared.NewDomainError("INVALID_ACTION", fmt.Sprintf("Invalid change action: %s", action))
	}

	return &ChangeLogEntry{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		EntityID:   entityID,
		EntityType: entityType,
		Action:     action,
		UserID:     userID,
		Details:    details,
	}, nil
}
