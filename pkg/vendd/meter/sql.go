package meter

import (
	"database/sql"
	"errors"
)

var (
	// ErrMeterNotFound is returned by select methods if the requested meter was not found
	ErrMeterNotFound = errors.New("meter not found")
)

const selectMeter = `
SELECT
	id,
	vendor_id,
	created,
	meter_number,
	sgc,
	krn,
	ti,
	ea,
	ken
FROM meter
`

const selectMeterByID = selectMeter + `
WHERE
	id = ?
`

const selectMeterByNumber = selectMeter + `
WHERE
	meter_number = ?
`

func scanMeter(row *sql.Row) (*Meter, error) {
	m := &Meter{}
	err := row.Scan(
		&m.ID,
		&m.VendorID,
		&m.Created,
		&m.Number,
		&m.SGC,
		&m.KRN,
		&m.TI,
		&m.EA,
		&m.KEN,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return m, ErrMeterNotFound
		}
		return m, err
	}
	return m, nil
}

// MeterByIDTx selects a meter by the given id
func MeterByIDTx(db *sql.Tx, id int64) (*Meter, error) {
	row := db.QueryRow(selectMeterByID, id)
	return scanMeter(row)
}

// MeterByNumberTx selects a meter by the given meter number
func MeterByNumberTx(db *sql.Tx, number string) (*Meter, error) {
	row := db.QueryRow(selectMeterByNumber, number)
	return scanMeter(row)
}

const selectFirstCustomerID = `
SELECT
	id
FROM customer
WHERE
	meter_id = ?
ORDER BY id
LIMIT 1
`

// FirstCustomerIDTx selects the id of the first customer attached to the
// given meter, if any
func FirstCustomerIDTx(db *sql.Tx, meterID int64) (sql.NullInt64, error) {
	var id sql.NullInt64
	err := db.QueryRow(selectFirstCustomerID, meterID).Scan(&id.Int64)
	if err != nil {
		if err == sql.ErrNoRows {
			return id, nil
		}
		return id, err
	}
	id.Valid = true
	return id, nil
}
