package principal

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// Role is the closed set of roles a user can hold
type Role int8

const (
	RoleNone Role = iota
	RoleVendor
	RoleAdmin
	RoleSystemAdmin
)

// ParseRole maps a stored role name onto the role set
//
// Normalization happens here, at the boundary, exactly once. Unknown names
// map to RoleNone.
func ParseRole(s string) Role {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vendor":
		return RoleVendor
	case "admin":
		return RoleAdmin
	case "system_admin":
		return RoleSystemAdmin
	}
	return RoleNone
}

func (r Role) String() string {
	switch r {
	case RoleVendor:
		return "vendor"
	case RoleAdmin:
		return "admin"
	case RoleSystemAdmin:
		return "system_admin"
	}
	return "none"
}

// Scan implements the Scanner interface for sql
func (r *Role) Scan(v interface{}) error {
	switch src := v.(type) {
	case []byte:
		*r = ParseRole(string(src))
		return nil
	case string:
		*r = ParseRole(src)
		return nil
	case nil:
		*r = RoleNone
		return nil
	}
	return fmt.Errorf("cannot scan %T into %T", v, r)
}

// Value implements the Valuer interface for sql
func (r Role) Value() (driver.Value, error) {
	return driver.Value(r.String()), nil
}

// Admin returns true if the role carries administrative capabilities
func (r Role) Admin() bool {
	return r == RoleAdmin || r == RoleSystemAdmin
}

// User represents a user of the vending API
type User struct {
	ID      int64
	Created time.Time
	Name    string
	Role    Role
}

// Empty returns true if the user is considered empty/uninitialized
func (u User) Empty() bool {
	return u.ID == 0 && u.Name == ""
}

// CanVendFor returns true if the user may vend for a meter owned by the
// vendor with the given owning user id
func (u User) CanVendFor(ownerUserID int64) bool {
	if u.Role.Admin() {
		return true
	}
	return u.ID != 0 && u.ID == ownerUserID
}

// Vendor represents a vendor, the owner of one or more meters
type Vendor struct {
	ID      int64
	Created time.Time
	UserID  int64
	Name    string
}

// Empty returns true if the vendor is considered empty/uninitialized
func (v Vendor) Empty() bool {
	return v.ID == 0 && v.Name == ""
}
