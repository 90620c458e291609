package configstore

import (
	"database/sql"
	"errors"
	"time"
)

var (
	// ErrEntryNotFound is returned by select methods if no entry exists
	// for the requested name
	ErrEntryNotFound = errors.New("config entry not found")
)

const selectEntry = `
SELECT
	c.name,
	c.last_change,
	c.value,
	c.encrypted,
	c.tenant_id
FROM system_config AS c
`

const selectEntryByName = selectEntry + `
WHERE
	c.name = ?
	AND
	c.tenant_id = 0
	AND
	c.last_change = (
		SELECT MAX(last_change) FROM system_config AS mc
		WHERE mc.name = c.name AND mc.tenant_id = c.tenant_id
	)
`

const selectEntryByNameForTenant = selectEntry + `
WHERE
	c.name = ?
	AND
	c.tenant_id = ?
	AND
	c.last_change = (
		SELECT MAX(last_change) FROM system_config AS mc
		WHERE mc.name = c.name AND mc.tenant_id = c.tenant_id
	)
`

func readSingleEntry(row *sql.Row) (Entry, error) {
	e := Entry{}
	var ts int64
	err := row.Scan(&e.Name, &ts, &e.Value, &e.Encrypted, &e.TenantID)
	if err != nil {
		if err == sql.ErrNoRows {
			return e, ErrEntryNotFound
		}
		return e, err
	}
	e.lastChange = time.Unix(0, ts)
	return e, nil
}

// EntryByNameDB selects the current global entry for the given name
func EntryByNameDB(db *sql.DB, name string) (Entry, error) {
	row := db.QueryRow(selectEntryByName, name)
	return readSingleEntry(row)
}

// EntryByNameTx selects the current global entry for the given name
//
// This function should be used inside a (SQL-)transaction
func EntryByNameTx(db *sql.Tx, name string) (Entry, error) {
	row := db.QueryRow(selectEntryByName, name)
	return readSingleEntry(row)
}

// EntryByNameForTenantDB selects the current entry for the given name and
// tenant, falling back to the global entry when no tenant override exists
func EntryByNameForTenantDB(db *sql.DB, name string, tenantID int64) (Entry, error) {
	row := db.QueryRow(selectEntryByNameForTenant, name, tenantID)
	e, err := readSingleEntry(row)
	if err == ErrEntryNotFound {
		return EntryByNameDB(db, name)
	}
	return e, err
}

const insertEntry = `
INSERT INTO system_config
(name, last_change, value, encrypted, tenant_id)
VALUES
(?, ?, ?, ?, ?)
`

// InsertEntryDB inserts an entry
//
// Entries are append-only; inserting is how a setting is changed.
func InsertEntryDB(db *sql.DB, e Entry) error {
	stmt, err := db.Prepare(insertEntry)
	if err != nil {
		return err
	}
	t := time.Now()
	_, err = stmt.Exec(e.Name, t.UnixNano(), e.Value, e.Encrypted, e.TenantID)
	stmt.Close()
	return err
}

// InsertEntryTx inserts an entry
//
// This function should be used inside a (SQL-)transaction
func InsertEntryTx(db *sql.Tx, e Entry) error {
	stmt, err := db.Prepare(insertEntry)
	if err != nil {
		return err
	}
	t := time.Now()
	_, err = stmt.Exec(e.Name, t.UnixNano(), e.Value, e.Encrypted, e.TenantID)
	stmt.Close()
	return err
}
