package types

import (
	"time"

	"github.com/google/uuid"
)

// ListenerID identifies one observer registration in a listener chain.
type ListenerID string

// RuleID identifies one persisted rule row.
type RuleID string

// SnapshotID identifies one renaming pass, used to correlate log lines.
type SnapshotID string

// NewListenerID generates a UUIDv7 listener identifier.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewListenerID() ListenerID {
	return ListenerID(uuid.Must(uuid.NewV7()).String())
}

// NewRuleID generates a UUIDv7 rule identifier.
// Time-ordered IDs keep rows of one save clustered in B-tree pages.
func NewRuleID() RuleID {
	return RuleID(uuid.Must(uuid.NewV7()).String())
}

// NewSnapshotID generates a UUIDv7 snapshot identifier.
func NewSnapshotID() SnapshotID {
	return SnapshotID(uuid.Must(uuid.NewV7()).String())
}

// ParseRuleID validates and converts a string to RuleID.
func ParseRuleID(s string) (RuleID, error) {
	if _, err := uuid.Parse(s); err != nil {
		return "", err
	}
	return RuleID(s), nil
}

// RuleIDTime extracts the timestamp embedded in a UUIDv7 rule ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func RuleIDTime(id RuleID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
