package meter

import (
	"database/sql"
	"time"
)

// STS parameter fallbacks applied when the meter record leaves a value unset
const (
	DefaultSGC = 201457
	DefaultKRN = 1
	DefaultTI  = 1
	DefaultEA  = 7
	DefaultKEN = 255
)

// Meter represents a physical metering point
//
// The five STS cryptographic parameters are nullable; the accessor methods
// apply the fixed fallbacks. A meter is immutable for the duration of a vend.
type Meter struct {
	ID       int64
	VendorID int64
	Created  time.Time
	Number   string

	SGC sql.NullInt64
	KRN sql.NullInt64
	TI  sql.NullInt64
	EA  sql.NullInt64
	KEN sql.NullInt64
}

// Empty returns true if the meter is considered empty/uninitialized
func (m Meter) Empty() bool {
	return m.ID == 0 && m.Number == ""
}

// SupplyGroupCode returns the SGC, falling back to the default
func (m Meter) SupplyGroupCode() int32 {
	if m.SGC.Valid {
		return int32(m.SGC.Int64)
	}
	return DefaultSGC
}

// KeyRevision returns the KRN, falling back to the default
func (m Meter) KeyRevision() int32 {
	if m.KRN.Valid {
		return int32(m.KRN.Int64)
	}
	return DefaultKRN
}

// TariffIndex returns the TI, falling back to the default
func (m Meter) TariffIndex() int32 {
	if m.TI.Valid {
		return int32(m.TI.Int64)
	}
	return DefaultTI
}

// EncryptionAlgorithm returns the EA, falling back to the default
func (m Meter) EncryptionAlgorithm() int32 {
	if m.EA.Valid {
		return int32(m.EA.Int64)
	}
	return DefaultEA
}

// KeyExpiry returns the KEN, falling back to the default
func (m Meter) KeyExpiry() int32 {
	if m.KEN.Valid {
		return int32(m.KEN.Int64)
	}
	return DefaultKEN
}
