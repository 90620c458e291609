package service

import (
	"context"
	"testing"

	"github.com/rezicom/vendd/pkg/config"
	"github.com/rezicom/vendd/pkg/vendd/correlation"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/inconshreveable/log15.v2"
)

func TestContextSetup(t *testing.T) {
	Convey("Given a new service context", t, func() {
		ctx, err := NewContext(context.Background(), config.DefaultConfig(), log15.New())
		So(err, ShouldBeNil)

		Convey("When setting a principal DB with nil write connection", func() {
			Convey("It should panic", func() {
				So(func() { ctx.SetPrincipalDB(nil, nil) }, ShouldPanic)
			})
		})

		Convey("When setting a payment DB with nil write connection", func() {
			Convey("It should panic", func() {
				So(func() { ctx.SetPaymentDB(nil, nil) }, ShouldPanic)
			})
		})

		Convey("When setting a nil correlation store", func() {
			Convey("It should panic", func() {
				So(func() { ctx.SetCorrelationStore(nil) }, ShouldPanic)
			})
		})

		Convey("When setting a correlation store", func() {
			ctx.SetCorrelationStore(correlation.NewMemStore())

			Convey("The store should be retrievable", func() {
				So(ctx.CorrelationStore(), ShouldNotBeNil)
			})
		})

		Convey("The config should be retrievable through Value", func() {
			cfg, ok := ctx.Value("cfg").(config.Config)
			So(ok, ShouldBeTrue)
			So(cfg.Prism.Port, ShouldEqual, 9443)
		})
	})
}

func TestNewContextRequiresLog(t *testing.T) {
	Convey("Creating a context without a logger should fail", t, func() {
		_, err := NewContext(context.Background(), config.DefaultConfig(), nil)
		So(err, ShouldNotBeNil)
	})
}
