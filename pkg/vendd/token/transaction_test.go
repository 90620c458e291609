package token

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTokenDisplayGrouping(t *testing.T) {
	Convey("Given a 20-digit STS token", t, func() {
		tok := "12345678901234567890"

		Convey("It should be grouped in blocks of four digits", func() {
			So(FormatGroups(tok), ShouldEqual, "1234 5678 9012 3456 7890")
		})
	})

	Convey("Given a token not divisible by four", t, func() {
		So(FormatGroups("123456"), ShouldEqual, "1234 56")
	})

	Convey("Given a short token", t, func() {
		So(FormatGroups("1234"), ShouldEqual, "1234")
		So(FormatGroups(""), ShouldEqual, "")
	})
}

func TestTransactionStatus(t *testing.T) {
	Convey("Given a transaction status column value", t, func() {
		var s TransactionStatus

		Convey("Scanning bytes should populate the status", func() {
			So(s.Scan([]byte("success")), ShouldBeNil)
			So(s, ShouldEqual, TransactionStatusSuccess)
		})

		Convey("Scanning a string should populate the status", func() {
			So(s.Scan("failed"), ShouldBeNil)
			So(s, ShouldEqual, TransactionStatusFailed)
		})

		Convey("Scanning an unsupported type should error", func() {
			So(s.Scan(42), ShouldNotBeNil)
		})
	})

	Convey("Given transactions in both terminal states", t, func() {
		So(Transaction{Status: TransactionStatusSuccess}.Succeeded(), ShouldBeTrue)
		So(Transaction{Status: TransactionStatusFailed}.Succeeded(), ShouldBeFalse)
	})
}
