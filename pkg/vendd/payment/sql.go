package payment

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrPaymentNotFound is returned by select methods if the requested payment was not found
	ErrPaymentNotFound = errors.New("payment not found")
	// ErrDuplicate is returned when an insert hits the checkout id or
	// receipt number unique constraint
	ErrDuplicate = errors.New("duplicate payment")
)

const mysqlErrDuplicateEntry = 1062

const insertPayment = `
INSERT INTO payment
(created, merchant_request_id, checkout_request_id, account_reference, phone, amount, receipt_number, result_code, result_desc, status)
VALUES
(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

// InsertPaymentTx inserts a payment
//
// This will modify the given payment, setting the ID field. A unique
// constraint violation on the checkout id or receipt number is returned
// as ErrDuplicate.
func InsertPaymentTx(db *sql.Tx, p *Payment) error {
	stmt, err := db.Prepare(insertPayment)
	if err != nil {
		return err
	}
	res, err := stmt.Exec(
		p.Created,
		p.MerchantRequestID,
		p.CheckoutRequestID,
		p.AccountReference,
		p.Phone,
		p.Amount,
		p.ReceiptNumber,
		p.ResultCode,
		p.ResultDesc,
		p.Status,
	)
	stmt.Close()
	if err != nil {
		if mysqlErr, ok := err.(*mysql.MySQLError); ok {
			if mysqlErr.Number == mysqlErrDuplicateEntry {
				return ErrDuplicate
			}
		}
		return err
	}
	p.ID, err = res.LastInsertId()
	return err
}

const selectPayment = `
SELECT
	id,
	created,
	merchant_request_id,
	checkout_request_id,
	account_reference,
	phone,
	amount,
	receipt_number,
	result_code,
	result_desc,
	status
FROM payment
`

const selectPaymentByCheckoutID = selectPayment + `
WHERE
	checkout_request_id = ?
`

const selectPaymentByCheckoutOrReceipt = selectPayment + `
WHERE
	checkout_request_id = ?
	OR
	receipt_number = ?
LIMIT 1
`

func scanPayment(row *sql.Row) (*Payment, error) {
	p := &Payment{}
	err := row.Scan(
		&p.ID,
		&p.Created,
		&p.MerchantRequestID,
		&p.CheckoutRequestID,
		&p.AccountReference,
		&p.Phone,
		&p.Amount,
		&p.ReceiptNumber,
		&p.ResultCode,
		&p.ResultDesc,
		&p.Status,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return p, ErrPaymentNotFound
		}
		return p, err
	}
	return p, nil
}

// PaymentByCheckoutIDTx selects a payment by the given checkout request id
func PaymentByCheckoutIDTx(db *sql.Tx, checkoutID string) (*Payment, error) {
	row := db.QueryRow(selectPaymentByCheckoutID, checkoutID)
	return scanPayment(row)
}

// PaymentByCheckoutOrReceiptTx selects a payment matching the given checkout
// request id or receipt number
//
// This is the duplicate probe for callback processing.
func PaymentByCheckoutOrReceiptTx(db *sql.Tx, checkoutID, receipt string) (*Payment, error) {
	row := db.QueryRow(selectPaymentByCheckoutOrReceipt, checkoutID, receipt)
	return scanPayment(row)
}

const updateFailedPayment = `
UPDATE payment
SET
	merchant_request_id = ?,
	account_reference = ?,
	phone = ?,
	amount = ?,
	result_code = ?,
	result_desc = ?,
	status = ?
WHERE
	checkout_request_id = ?
`

// UpsertFailedTx creates or updates a failed payment keyed by the checkout
// request id
//
// A failure callback may arrive for a checkout id without an existing row;
// in that case a new row is inserted.
func UpsertFailedTx(db *sql.Tx, p *Payment) error {
	stmt, err := db.Prepare(updateFailedPayment)
	if err != nil {
		return err
	}
	res, err := stmt.Exec(
		p.MerchantRequestID,
		p.AccountReference,
		p.Phone,
		p.Amount,
		p.ResultCode,
		p.ResultDesc,
		p.Status,
		p.CheckoutRequestID,
	)
	stmt.Close()
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	err = InsertPaymentTx(db, p)
	if err == ErrDuplicate {
		// identical values update: MySQL reports zero affected rows,
		// the row is already in the requested state
		return nil
	}
	return err
}

const selectCountByStatus = `
SELECT COUNT(*) FROM payment
WHERE
	status = ?
`

// CountByStatusDB counts payments with the given status
func CountByStatusDB(db *sql.DB, status Status) (int64, error) {
	var count int64
	err := db.QueryRow(selectCountByStatus, status).Scan(&count)
	return count, err
}
