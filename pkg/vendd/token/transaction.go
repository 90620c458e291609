package token

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// TransactionStatus is the terminal status of a vend attempt
type TransactionStatus string

const (
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Scan implements the Scanner interface for sql
func (s *TransactionStatus) Scan(v interface{}) error {
	switch src := v.(type) {
	case []byte:
		*s = TransactionStatus(string(src))
		return nil
	case string:
		*s = TransactionStatus(src)
		return nil
	}
	return fmt.Errorf("cannot scan %T into %T", v, s)
}

// Value implements the Valuer interface for sql
func (s TransactionStatus) Value() (driver.Value, error) {
	return driver.Value(string(s)), nil
}

// Transaction represents one vend attempt
//
// A transaction is created exactly once per attempt and never mutated.
// The token list is empty on failure.
type Transaction struct {
	ID           int64
	Created      time.Time
	MeterID      int64
	VendorUserID int64
	CustomerID   sql.NullInt64
	Amount       int64
	Tokens       []string
	MsgID        string
	Status       TransactionStatus
	Description  string
}

// Succeeded returns true if the vend attempt succeeded
func (t Transaction) Succeeded() bool {
	return t.Status == TransactionStatusSuccess
}

const displayGroupSize = 4

// FormatGroups renders a numeric token string in space-separated 4-digit
// groups for display
func FormatGroups(tok string) string {
	if len(tok) <= displayGroupSize {
		return tok
	}
	groups := make([]string, 0, (len(tok)+displayGroupSize-1)/displayGroupSize)
	for i := 0; i < len(tok); i += displayGroupSize {
		end := i + displayGroupSize
		if end > len(tok) {
			end = len(tok)
		}
		groups = append(groups, tok[i:end])
	}
	return strings.Join(groups, " ")
}
