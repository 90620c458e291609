package config

import (
	"bytes"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConfigDefaults(t *testing.T) {
	Convey("Given a default config", t, func() {
		cfg := DefaultConfig()

		Convey("It should have a service address", func() {
			So(cfg.Service.Address, ShouldNotBeEmpty)
		})

		Convey("It should have a short send and a long receive timeout for the vending host", func() {
			send, err := cfg.Prism.SendTimeout.Duration()
			So(err, ShouldBeNil)
			recv, err := cfg.Prism.RecvTimeout.Duration()
			So(err, ShouldBeNil)
			So(send, ShouldBeLessThan, recv)
		})

		Convey("It should require a minimum vend amount of 25", func() {
			So(cfg.API.MinVendAmount, ShouldEqual, 25)
		})
	})
}

func TestConfigReadWrite(t *testing.T) {
	Convey("Given a config with non-default settings", t, func() {
		cfg := DefaultConfig()
		cfg.Prism.Host = "vend.example.com"
		cfg.Prism.RecvTimeout = "25s"
		cfg.Mpesa.TransactionType = "CustomerPayBillOnline"

		Convey("When writing and re-reading the config", func() {
			buf := bytes.NewBuffer(nil)
			err := WriteConfig(buf, cfg)
			So(err, ShouldBeNil)

			read, err := ReadConfig(buf)
			So(err, ShouldBeNil)

			Convey("The settings should survive the round trip", func() {
				So(read.Prism.Host, ShouldEqual, "vend.example.com")
				So(read.Mpesa.TransactionType, ShouldEqual, "CustomerPayBillOnline")
				d, err := read.Prism.RecvTimeout.Duration()
				So(err, ShouldBeNil)
				So(d, ShouldEqual, 25*time.Second)
			})
		})
	})

	Convey("Given a partial config file", t, func() {
		r := strings.NewReader(`{"Prism":{"Host":"other.example.com"}}`)

		Convey("When reading it", func() {
			cfg, err := ReadConfig(r)
			So(err, ShouldBeNil)

			Convey("Absent settings should keep their defaults", func() {
				So(cfg.Prism.Host, ShouldEqual, "other.example.com")
				So(cfg.Prism.Port, ShouldEqual, 9443)
				So(cfg.API.MinVendAmount, ShouldEqual, 25)
			})
		})
	})
}
