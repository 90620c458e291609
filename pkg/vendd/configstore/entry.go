package configstore

import (
	"time"
)

// Entry represents a named configuration setting
//
// Settings are append-only; the entry with the latest change wins. An entry
// may be scoped to a tenant (vendor), overriding the global entry of the
// same name. Values flagged encrypted are stored encrypted at rest.
type Entry struct {
	Name       string
	lastChange time.Time
	Value      string
	Encrypted  bool
	TenantID   int64
}

// Global returns true if the entry is not scoped to a tenant
func (e Entry) Global() bool {
	return e.TenantID == 0
}

// LastChange returns the time the entry was written
func (e Entry) LastChange() time.Time {
	return e.lastChange
}
