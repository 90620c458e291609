package correlation

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestMemStore(t *testing.T) {
	Convey("Given an in-process correlation store", t, func() {
		store := NewMemStore()
		ctx := context.Background()

		Convey("A stored reference should be readable before expiry", func() {
			err := store.Put(ctx, "ws_CO_123", "R123", DefaultTTL)
			So(err, ShouldBeNil)

			v, ok, err := store.Get(ctx, "ws_CO_123")
			So(err, ShouldBeNil)
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "R123")
		})

		Convey("A reference should not be readable after expiry", func() {
			err := store.Put(ctx, "ws_CO_123", "R123", DefaultTTL)
			So(err, ShouldBeNil)

			store.now = func() time.Time {
				return time.Now().Add(DefaultTTL + time.Minute)
			}

			_, ok, err := store.Get(ctx, "ws_CO_123")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("An unknown checkout id should yield no reference", func() {
			_, ok, err := store.Get(ctx, "ws_CO_unknown")
			So(err, ShouldBeNil)
			So(ok, ShouldBeFalse)
		})

		Convey("Entries for different checkout ids should not collide", func() {
			So(store.Put(ctx, "a", "ref-a", DefaultTTL), ShouldBeNil)
			So(store.Put(ctx, "b", "ref-b", DefaultTTL), ShouldBeNil)

			v, ok, _ := store.Get(ctx, "a")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, "ref-a")
		})
	})
}

func TestEntryKey(t *testing.T) {
	Convey("The store key should carry the documented prefix", t, func() {
		So(entryKey("ws_CO_9"), ShouldEqual, "payment_account_ref_ws_CO_9")
	})
}
