package token

import (
	"database/sql"
	"encoding/json"
	"errors"
)

var (
	// ErrTransactionNotFound is returned by select methods if the requested
	// transaction was not found
	ErrTransactionNotFound = errors.New("token transaction not found")
)

const insertTransaction = `
INSERT INTO token_transaction
(created, meter_id, vendor_user_id, customer_id, amount, tokens, msg_id, status, description)
VALUES
(?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertTransactionTx inserts a token transaction
//
// This will modify the given transaction, setting the ID field. There are
// deliberately no update helpers in this package; the table is an
// append-only audit log.
func InsertTransactionTx(db *sql.Tx, t *Transaction) error {
	tokens, err := json.Marshal(t.Tokens)
	if err != nil {
		return err
	}
	stmt, err := db.Prepare(insertTransaction)
	if err != nil {
		return err
	}
	res, err := stmt.Exec(
		t.Created,
		t.MeterID,
		t.VendorUserID,
		t.CustomerID,
		t.Amount,
		tokens,
		t.MsgID,
		t.Status,
		t.Description,
	)
	stmt.Close()
	if err != nil {
		return err
	}
	t.ID, err = res.LastInsertId()
	return err
}

const selectTransaction = `
SELECT
	id,
	created,
	meter_id,
	vendor_user_id,
	customer_id,
	amount,
	tokens,
	msg_id,
	status,
	description
FROM token_transaction
`

const selectTransactionByID = selectTransaction + `
WHERE
	id = ?
`

func scanTransaction(row *sql.Row) (*Transaction, error) {
	t := &Transaction{}
	var tokens []byte
	err := row.Scan(
		&t.ID,
		&t.Created,
		&t.MeterID,
		&t.VendorUserID,
		&t.CustomerID,
		&t.Amount,
		&tokens,
		&t.MsgID,
		&t.Status,
		&t.Description,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return t, ErrTransactionNotFound
		}
		return t, err
	}
	if len(tokens) > 0 {
		err = json.Unmarshal(tokens, &t.Tokens)
		if err != nil {
			return t, err
		}
	}
	return t, nil
}

// TransactionByIDTx selects a token transaction by the given id
func TransactionByIDTx(db *sql.Tx, id int64) (*Transaction, error) {
	row := db.QueryRow(selectTransactionByID, id)
	return scanTransaction(row)
}

const selectCountByStatus = `
SELECT COUNT(*) FROM token_transaction
WHERE
	status = ?
`

// CountByStatusDB counts token transactions with the given status
func CountByStatusDB(db *sql.DB, status TransactionStatus) (int64, error) {
	var count int64
	err := db.QueryRow(selectCountByStatus, status).Scan(&count)
	return count, err
}
