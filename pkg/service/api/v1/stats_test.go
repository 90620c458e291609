package v1

import (
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStatsRequest(t *testing.T) {
	Convey("Given the stats endpoint", t, func() {
		ctx := newTestContext(t)
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		Reset(func() {
			db.Close()
		})
		ctx.SetPaymentDB(db, nil)
		api := NewStatsAPI(ctx)

		Convey("A GET should report counts by status", func() {
			countRows := func(n int64) *sqlmock.Rows {
				return sqlmock.NewRows([]string{"COUNT(*)"}).AddRow(n)
			}
			mock.ExpectQuery("SELECT COUNT(.+)FROM token_transaction").
				WithArgs("success").WillReturnRows(countRows(12))
			mock.ExpectQuery("SELECT COUNT(.+)FROM token_transaction").
				WithArgs("failed").WillReturnRows(countRows(3))
			mock.ExpectQuery("SELECT COUNT(.+)FROM payment").
				WithArgs("confirmed").WillReturnRows(countRows(9))
			mock.ExpectQuery("SELECT COUNT(.+)FROM payment").
				WithArgs("failed").WillReturnRows(countRows(2))

			req := httptest.NewRequest(http.MethodGet, "/v1/stats", nil)
			w := httptest.NewRecorder()
			api.StatsRequest().ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"success":12`)
			So(w.Body.String(), ShouldContainSubstring, `"confirmed":9`)
			So(mock.ExpectationsWereMet(), ShouldBeNil)
		})

		Convey("A POST should not be allowed", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/stats", nil)
			w := httptest.NewRecorder()
			api.StatsRequest().ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}
