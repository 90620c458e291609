package principal

import (
	"database/sql"
	"errors"
)

var (
	// ErrUserNotFound is returned by select methods if the requested user was not found
	ErrUserNotFound = errors.New("user not found")
	// ErrVendorNotFound is returned by select methods if the requested vendor was not found
	ErrVendorNotFound = errors.New("vendor not found")
)

const selectUser = `
SELECT
	id,
	created,
	name,
	role
FROM user
`

const selectUserByID = selectUser + `
WHERE
	id = ?
`

func scanUser(row *sql.Row) (User, error) {
	u := User{}
	err := row.Scan(&u.ID, &u.Created, &u.Name, &u.Role)
	if err != nil {
		if err == sql.ErrNoRows {
			return u, ErrUserNotFound
		}
		return u, err
	}
	return u, nil
}

// UserByIDDB selects a user by the given id
func UserByIDDB(db *sql.DB, id int64) (User, error) {
	row := db.QueryRow(selectUserByID, id)
	return scanUser(row)
}

// UserByIDTx selects a user by the given id
func UserByIDTx(db *sql.Tx, id int64) (User, error) {
	row := db.QueryRow(selectUserByID, id)
	return scanUser(row)
}

const selectVendor = `
SELECT
	id,
	created,
	user_id,
	name
FROM vendor
`

const selectVendorByID = selectVendor + `
WHERE
	id = ?
`

func scanVendor(row *sql.Row) (Vendor, error) {
	v := Vendor{}
	err := row.Scan(&v.ID, &v.Created, &v.UserID, &v.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return v, ErrVendorNotFound
		}
		return v, err
	}
	return v, nil
}

// VendorByIDTx selects a vendor by the given id
func VendorByIDTx(db *sql.Tx, id int64) (Vendor, error) {
	row := db.QueryRow(selectVendorByID, id)
	return scanVendor(row)
}
