package configstore

import (
	"database/sql"
	"fmt"
)

// Resolver resolves named settings to values
//
// It applies the per-tenant override semantics and decrypts values flagged
// encrypted. A Resolver is a value object constructed once and passed to the
// services that need it; settings are never looked up ad hoc mid-algorithm.
type Resolver struct {
	db    *sql.DB
	codec *Codec
}

// NewResolver creates a resolver over the given DB connection
//
// The codec may be nil when no encrypted entries are in use; resolving an
// encrypted entry without a codec is an error.
func NewResolver(db *sql.DB, codec *Codec) *Resolver {
	return &Resolver{db: db, codec: codec}
}

func (r *Resolver) value(e Entry, err error, def string) (string, error) {
	if err == ErrEntryNotFound {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	if e.Encrypted {
		// ciphertext must never pass for a setting value
		if r.codec == nil {
			return def, fmt.Errorf("setting %s is encrypted and no codec is configured", e.Name)
		}
		plain, err := r.codec.Decrypt(e.Value)
		if err != nil {
			return def, fmt.Errorf("error decrypting setting %s: %v", e.Name, err)
		}
		return plain, nil
	}
	return e.Value, nil
}

// Value resolves a global setting, returning the default when unset
func (r *Resolver) Value(name, def string) (string, error) {
	e, err := EntryByNameDB(r.db, name)
	return r.value(e, err, def)
}

// ValueForTenant resolves a setting for the given tenant, falling back to
// the global setting and then the default
func (r *Resolver) ValueForTenant(name string, tenantID int64, def string) (string, error) {
	e, err := EntryByNameForTenantDB(r.db, name, tenantID)
	return r.value(e, err, def)
}
