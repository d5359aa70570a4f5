package enums

import "fmt"

// EntryStatus tracks whether a daily entry still participates in reports by default.
type EntryStatus string

const (
	EntryStatusActive   EntryStatus = "active"
	EntryStatusArchived EntryStatus = "archived"
)

var validEntryStatuses = []EntryStatus{
	EntryStatusActive,
	EntryStatusArchived,
}

// String implements fmt.Stringer.
func (s EntryStatus) String() string {
	return string(s)
}

// IsValid reports whether the status is recognized.
func (s EntryStatus) IsValid() bool {
	for _, candidate := range validEntryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEntryStatus converts a raw string into an EntryStatus.
func ParseEntryStatus(value string) (EntryStatus, error) {
	for _, candidate := range validEntryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid entry status %q", value)
}
