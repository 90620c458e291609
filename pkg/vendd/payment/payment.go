package payment

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"time"
)

// Status is the terminal status of a payment record
type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Scan implements the Scanner interface for sql
func (s *Status) Scan(v interface{}) error {
	switch src := v.(type) {
	case []byte:
		*s = Status(string(src))
		return nil
	case string:
		*s = Status(src)
		return nil
	}
	return fmt.Errorf("cannot scan %T into %T", v, s)
}

// Value implements the Valuer interface for sql
func (s Status) Value() (driver.Value, error) {
	return driver.Value(string(s)), nil
}

// Payment represents one mobile-money payment attempt as observed through
// the gateway callback
//
// checkout_request_id and receipt_number carry unique constraints; they are
// the deduplication mechanism for repeated callback delivery.
type Payment struct {
	ID                int64
	Created           time.Time
	MerchantRequestID string
	CheckoutRequestID string
	AccountReference  sql.NullString
	Phone             string
	Amount            int64
	ReceiptNumber     sql.NullString
	ResultCode        string
	ResultDesc        string
	Status            Status
}

// Valid returns true if the payment carries the fields any persisted
// record must have
func (p Payment) Valid() bool {
	return p.CheckoutRequestID != "" && (p.Status == StatusConfirmed || p.Status == StatusFailed)
}

// SetAccountReference sets the nullable account reference
func (p *Payment) SetAccountReference(ref string) {
	p.AccountReference.String, p.AccountReference.Valid = ref, true
}

// SetReceiptNumber sets the nullable provider receipt number
func (p *Payment) SetReceiptNumber(receipt string) {
	p.ReceiptNumber.String, p.ReceiptNumber.Valid = receipt, true
}
