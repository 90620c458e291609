package vending

import (
	"context"
	"errors"
	"testing"

	"github.com/rezicom/vendd/pkg/vendd/meter"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/inconshreveable/log15.v2"
)

func TestErrorKinds(t *testing.T) {
	Convey("Given classified vending errors", t, func() {

		Convey("KindOf should report the kind of a vending error", func() {
			err := newError(KindConnection, "could not connect", nil)
			So(KindOf(err), ShouldEqual, KindConnection)
		})

		Convey("KindOf should unwrap wrapped vending errors", func() {
			inner := &Error{Kind: KindUpstream, Code: "E42", Message: "Key expired"}
			So(KindOf(inner), ShouldEqual, KindUpstream)
		})

		Convey("KindOf should report KindNone for foreign errors", func() {
			So(KindOf(errors.New("boom")), ShouldEqual, KindNone)
			So(KindOf(nil), ShouldEqual, KindNone)
		})

		Convey("An upstream error should render its code and message", func() {
			err := &Error{Kind: KindUpstream, Code: "E42", Message: "Key expired"}
			So(err.Error(), ShouldEqual, "vending upstream error E42: Key expired")
		})

		Convey("Kinds should have readable names", func() {
			So(KindAuthorization.String(), ShouldEqual, "authorization")
			So(KindValidation.String(), ShouldEqual, "validation")
			So(KindPersistence.String(), ShouldEqual, "persistence")
		})
	})
}

func TestSessionStateGuards(t *testing.T) {
	Convey("Given an unconnected session against an unreachable host", t, func() {
		log := log15.New()
		log.SetHandler(log15.DiscardHandler())
		sess := NewSession(SessionConfig{Host: "127.0.0.1", Port: 1}, log)

		Convey("Authenticating should connect first and report the connection failure", func() {
			err := sess.Authenticate(context.Background())
			So(KindOf(err), ShouldEqual, KindConnection)
		})

		Convey("Issuing should authenticate first and report the connection failure", func() {
			_, err := sess.IssueCreditToken(context.Background(), &meter.Meter{Number: "01450052836"}, 0, 100)
			So(KindOf(err), ShouldEqual, KindConnection)
		})

		Convey("Closing should be a no-op", func() {
			So(sess.Close, ShouldNotPanic)
			sess.Close()
		})
	})
}
