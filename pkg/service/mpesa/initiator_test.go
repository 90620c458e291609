package mpesa

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/rezicom/vendd/pkg/config"
	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/vendd/configstore"
	"github.com/rezicom/vendd/pkg/vendd/correlation"
	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/inconshreveable/log15.v2"
)

func newTestContext(t *testing.T) *service.Context {
	log := log15.New()
	log.SetHandler(log15.DiscardHandler())
	ctx, err := service.NewContext(context.Background(), config.DefaultConfig(), log)
	if err != nil {
		t.Fatal(err)
	}
	ctx.SetCorrelationStore(correlation.NewMemStore())
	return ctx
}

func TestNormalizePhone(t *testing.T) {
	Convey("Normalizing payer phone numbers", t, func() {

		Convey("A local number should gain the country code", func() {
			So(NormalizePhone("0712345678"), ShouldEqual, "254712345678")
		})

		Convey("An international number should pass through", func() {
			So(NormalizePhone("254712345678"), ShouldEqual, "254712345678")
			So(NormalizePhone("+254712345678"), ShouldEqual, "254712345678")
		})

		Convey("A bare subscriber number should gain the country code", func() {
			So(NormalizePhone("712345678"), ShouldEqual, "254712345678")
		})

		Convey("Anything else should pass through as digits", func() {
			So(NormalizePhone("44791234567"), ShouldEqual, "44791234567")
		})
	})
}

func TestPartyB(t *testing.T) {
	Convey("Selecting the receiving party", t, func() {
		cfg := GatewayConfig{Shortcode: "174379", TillNo: "555555"}

		Convey("Paybill payments should target the shortcode", func() {
			cfg.TransactionType = TransactionTypePayBill
			So(cfg.PartyB(), ShouldEqual, "174379")
		})

		Convey("Till payments should target the till number", func() {
			cfg.TransactionType = TransactionTypeBuyGoods
			So(cfg.PartyB(), ShouldEqual, "555555")
		})

		Convey("Till payments without a till number should fall back to the shortcode", func() {
			cfg.TransactionType = TransactionTypeBuyGoods
			cfg.TillNo = ""
			So(cfg.PartyB(), ShouldEqual, "174379")
		})
	})
}

func TestGatewayConfigForTenant(t *testing.T) {
	Convey("Given tenant scoped gateway settings", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		Reset(func() {
			db.Close()
		})
		resolver := configstore.NewResolver(db, nil)

		base := GatewayConfig{
			Env:             "sandbox",
			ConsumerKey:     "ck",
			ConsumerSecret:  "cs",
			Shortcode:       "174379",
			Passkey:         "passkey",
			TransactionType: TransactionTypeBuyGoods,
		}
		entryColumns := []string{"name", "last_change", "value", "encrypted", "tenant_id"}

		Convey("A tenant shortcode override should apply over the base config", func() {
			settings := []string{
				SettingEnv, SettingConsumerKey, SettingConsumerSecret,
				SettingShortcode, SettingTillNo, SettingPasskey, SettingTransactionType,
			}
			for _, name := range settings {
				rows := sqlmock.NewRows(entryColumns)
				if name == SettingShortcode {
					rows.AddRow(name, 1, "555555", false, 42)
				}
				mock.ExpectQuery("SELECT(.+)FROM system_config").
					WithArgs(name, int64(42)).
					WillReturnRows(rows)
				if name != SettingShortcode {
					// tenant miss falls back to the global entry
					mock.ExpectQuery("SELECT(.+)FROM system_config").
						WithArgs(name).
						WillReturnRows(sqlmock.NewRows(entryColumns))
				}
			}

			cfg, err := GatewayConfigForTenant(resolver, 42, base)
			So(err, ShouldBeNil)
			So(cfg.Shortcode, ShouldEqual, "555555")
			So(cfg.ConsumerKey, ShouldEqual, "ck")
			So(cfg.TransactionType, ShouldEqual, TransactionTypeBuyGoods)
		})
	})
}

func TestPush(t *testing.T) {
	Convey("Given an STK push gateway", t, func() {
		var gotAuth string
		var gotBody map[string]interface{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/oauth/v1/generate":
				gotAuth = r.Header.Get("Authorization")
				json.NewEncoder(w).Encode(map[string]string{"access_token": "token-1"})
			case "/mpesa/stkpush/v1/processrequest":
				json.NewDecoder(r.Body).Decode(&gotBody)
				json.NewEncoder(w).Encode(map[string]string{
					"MerchantRequestID":   "mr-1",
					"CheckoutRequestID":   "ws_CO_1",
					"ResponseCode":        "0",
					"ResponseDescription": "Success. Request accepted for processing",
					"CustomerMessage":     "Success. Request accepted for processing",
				})
			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		Reset(srv.Close)

		ctx := newTestContext(t)
		initiator := NewInitiator(ctx)
		gwCfg := GatewayConfig{
			ConsumerKey:     "ck",
			ConsumerSecret:  "cs",
			Shortcode:       "174379",
			TillNo:          "555555",
			Passkey:         "passkey",
			CallbackURL:     "https://vendd.example/mpesa/callback",
			TransactionType: TransactionTypeBuyGoods,
			baseURL:         srv.URL,
		}

		Convey("Pushing should authenticate and post the request", func() {
			resp, err := initiator.PushWithConfig(context.Background(), gwCfg, PushRequest{
				Phone:            "0712345678",
				Amount:           150,
				AccountReference: "01450052836",
				Description:      "Token purchase",
			})
			So(err, ShouldBeNil)
			So(resp.CheckoutRequestID, ShouldEqual, "ws_CO_1")

			expectedAuth := "Basic " + base64.StdEncoding.EncodeToString([]byte("ck:cs"))
			So(gotAuth, ShouldEqual, expectedAuth)

			So(gotBody["PhoneNumber"], ShouldEqual, "254712345678")
			So(gotBody["PartyA"], ShouldEqual, "254712345678")
			So(gotBody["PartyB"], ShouldEqual, "555555")
			So(gotBody["TransactionType"], ShouldEqual, TransactionTypeBuyGoods)
			So(gotBody["AccountReference"], ShouldEqual, "01450052836")
			So(gotBody["Amount"], ShouldEqual, float64(150))

			Convey("And the password should be derived from shortcode, passkey and timestamp", func() {
				password, _ := gotBody["Password"].(string)
				raw, err := base64.StdEncoding.DecodeString(password)
				So(err, ShouldBeNil)
				So(string(raw), ShouldStartWith, "174379passkey")
				timestamp, _ := gotBody["Timestamp"].(string)
				So(string(raw), ShouldEndWith, timestamp)
			})

			Convey("And the account reference should be correlated to the checkout id", func() {
				ref, ok, err := ctx.CorrelationStore().Get(context.Background(), "ws_CO_1")
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(ref, ShouldEqual, "01450052836")
			})
		})

		Convey("A rejected token request should fail the push", func() {
			gwCfg.ConsumerKey = ""
			broken := gwCfg
			broken.baseURL = "http://127.0.0.1:0"
			_, err := initiator.PushWithConfig(context.Background(), broken, PushRequest{
				Phone:  "0712345678",
				Amount: 150,
			})
			So(err, ShouldNotBeNil)
		})
	})
}
