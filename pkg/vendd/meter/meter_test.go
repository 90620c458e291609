package meter

import (
	"database/sql"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMeterParameterFallbacks(t *testing.T) {
	Convey("Given a meter without STS parameters", t, func() {
		m := Meter{ID: 1, Number: "600727000000000009"}

		Convey("The accessors should apply the fixed fallbacks", func() {
			So(m.SupplyGroupCode(), ShouldEqual, 201457)
			So(m.KeyRevision(), ShouldEqual, 1)
			So(m.TariffIndex(), ShouldEqual, 1)
			So(m.EncryptionAlgorithm(), ShouldEqual, 7)
			So(m.KeyExpiry(), ShouldEqual, 255)
		})
	})

	Convey("Given a meter with explicit STS parameters", t, func() {
		m := Meter{
			ID:     2,
			Number: "600727000000000010",
			SGC:    sql.NullInt64{Int64: 123456, Valid: true},
			KRN:    sql.NullInt64{Int64: 2, Valid: true},
			TI:     sql.NullInt64{Int64: 3, Valid: true},
			EA:     sql.NullInt64{Int64: 11, Valid: true},
			KEN:    sql.NullInt64{Int64: 128, Valid: true},
		}

		Convey("The accessors should return the stored values", func() {
			So(m.SupplyGroupCode(), ShouldEqual, 123456)
			So(m.KeyRevision(), ShouldEqual, 2)
			So(m.TariffIndex(), ShouldEqual, 3)
			So(m.EncryptionAlgorithm(), ShouldEqual, 11)
			So(m.KeyExpiry(), ShouldEqual, 128)
		})
	})
}
