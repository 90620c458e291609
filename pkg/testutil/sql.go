package testutil

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	// EnvVarMySQLTest is the environment var, which must be present to run
	// MySQL tests
	EnvVarMySQLTest = "VENDD_MYSQLTEST"
	// EnvVarMySQLTestPaymentDSN holds the DSN for the test payment database
	EnvVarMySQLTestPaymentDSN = "VENDD_MYSQLTEST_PAYMENTDSN"
	// EnvVarMySQLTestPrincipalDSN holds the DSN for the test principal database
	EnvVarMySQLTestPrincipalDSN = "VENDD_MYSQLTEST_PRINCIPALDSN"
)

// WithPaymentDB is a test decorator providing a DB connection to the test payment DB
func WithPaymentDB(t *testing.T, f func(db *sql.DB)) func() {
	return withDB(t, EnvVarMySQLTestPaymentDSN, f)
}

// WithPrincipalDB is a test decorator providing a DB connection to the test principal DB
func WithPrincipalDB(t *testing.T, f func(db *sql.DB)) func() {
	return withDB(t, EnvVarMySQLTestPrincipalDSN, f)
}

func withDB(t *testing.T, dsnVar string, f func(db *sql.DB)) func() {
	return func() {
		if os.Getenv(EnvVarMySQLTest) == "" {
			t.Skip("Skipping MySQL test")
			return
		}
		if os.Getenv(dsnVar) == "" {
			t.Skip("No test DB DSN present. Skipping.")
			return
		}
		db, err := sql.Open("mysql", os.Getenv(dsnVar))

		So(err, ShouldBeNil)
		So(db, ShouldNotBeNil)

		err = db.Ping()
		So(err, ShouldBeNil)

		f(db)
	}
}
