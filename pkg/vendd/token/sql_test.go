package token

import (
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTransactionInsert(t *testing.T) {
	Convey("Given a database mock connection", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		Reset(func() {
			db.Close()
		})

		Convey("When inserting a successful transaction", func() {
			mock.ExpectBegin()
			mock.ExpectPrepare("INSERT INTO token_transaction").
				ExpectExec().
				WillReturnResult(sqlmock.NewResult(7, 1))

			tx, err := db.Begin()
			So(err, ShouldBeNil)

			trans := &Transaction{
				Created:      time.Now(),
				MeterID:      1,
				VendorUserID: 10,
				Amount:       100,
				Tokens:       []string{"12345678901234567890"},
				MsgID:        "1700000000-0011223344556677",
				Status:       TransactionStatusSuccess,
				Description:  "Successfully generated 1 token(s).",
			}
			err = InsertTransactionTx(tx, trans)

			Convey("It should set the transaction id", func() {
				So(err, ShouldBeNil)
				So(trans.ID, ShouldEqual, 7)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})
	})
}
