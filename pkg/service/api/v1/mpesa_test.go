package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rezicom/vendd/pkg/service/mpesa"
	. "github.com/smartystreets/goconvey/convey"
)

type stubPusher struct {
	resp *mpesa.PushResponse
	err  error

	gotReq    mpesa.PushRequest
	gotTenant int64
}

func (s *stubPusher) Push(ctx context.Context, req mpesa.PushRequest) (*mpesa.PushResponse, error) {
	s.gotReq = req
	return s.resp, s.err
}

func (s *stubPusher) PushForTenant(ctx context.Context, tenantID int64, req mpesa.PushRequest) (*mpesa.PushResponse, error) {
	s.gotTenant = tenantID
	s.gotReq = req
	return s.resp, s.err
}

type stubReconciler struct {
	result mpesa.Result
	gotEnv *mpesa.CallbackEnvelope
}

func (s *stubReconciler) OnCallback(ctx context.Context, env *mpesa.CallbackEnvelope) mpesa.Result {
	s.gotEnv = env
	return s.result
}

func TestPushEndpoint(t *testing.T) {
	Convey("Given the payment initiation endpoint", t, func() {
		ctx := newTestContext(t)

		Convey("A push should pass the gateway acknowledgement through", func() {
			pusher := &stubPusher{resp: &mpesa.PushResponse{
				CheckoutRequestID: "ws_CO_1",
				Raw:               json.RawMessage(`{"CheckoutRequestID":"ws_CO_1","ResponseCode":"0"}`),
			}}
			api := NewMpesaAPI(ctx, pusher, &stubReconciler{})

			req := httptest.NewRequest(http.MethodPost, "/mpesa/stkpush",
				strings.NewReader(`{"phone": "0712345678", "amount": 150, "account_reference": "01450052836"}`))
			w := httptest.NewRecorder()
			api.PushRequest().ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"CheckoutRequestID":"ws_CO_1"`)
			So(pusher.gotReq.Phone, ShouldEqual, "0712345678")
			So(pusher.gotReq.Amount, ShouldEqual, 150)
		})

		Convey("A push carrying a vendor id should use tenant credentials", func() {
			pusher := &stubPusher{resp: &mpesa.PushResponse{CheckoutRequestID: "ws_CO_2"}}
			api := NewMpesaAPI(ctx, pusher, &stubReconciler{})

			req := httptest.NewRequest(http.MethodPost, "/mpesa/stkpush",
				strings.NewReader(`{"phone": "0712345678", "amount": 150, "vendor_id": 42}`))
			w := httptest.NewRecorder()
			api.PushRequest().ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(pusher.gotTenant, ShouldEqual, 42)
		})

		Convey("A push below one shilling should respond 400", func() {
			api := NewMpesaAPI(ctx, &stubPusher{}, &stubReconciler{})

			req := httptest.NewRequest(http.MethodPost, "/mpesa/stkpush",
				strings.NewReader(`{"phone": "0712345678", "amount": 0}`))
			w := httptest.NewRecorder()
			api.PushRequest().ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A push without a phone should respond 400", func() {
			api := NewMpesaAPI(ctx, &stubPusher{}, &stubReconciler{})

			req := httptest.NewRequest(http.MethodPost, "/mpesa/stkpush",
				strings.NewReader(`{"amount": 150}`))
			w := httptest.NewRecorder()
			api.PushRequest().ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("A gateway failure should respond 502", func() {
			api := NewMpesaAPI(ctx, &stubPusher{err: context.DeadlineExceeded}, &stubReconciler{})

			req := httptest.NewRequest(http.MethodPost, "/mpesa/stkpush",
				strings.NewReader(`{"phone": "0712345678", "amount": 150}`))
			w := httptest.NewRecorder()
			api.PushRequest().ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
		})
	})
}

func TestCallbackEndpoint(t *testing.T) {
	Convey("Given the callback endpoint", t, func() {
		ctx := newTestContext(t)

		Convey("A well-formed callback should be reconciled and acknowledged", func() {
			rec := &stubReconciler{result: mpesa.ResultConfirmed}
			api := NewMpesaAPI(ctx, &stubPusher{}, rec)

			body := `{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_1","ResultCode":0}}}`
			req := httptest.NewRequest(http.MethodPost, "/mpesa/callback", strings.NewReader(body))
			w := httptest.NewRecorder()
			api.CallbackRequest().ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(rec.gotEnv, ShouldNotBeNil)
			So(rec.gotEnv.Body.StkCallback.CheckoutRequestID, ShouldEqual, "ws_CO_1")

			var ack map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
			So(ack["ResultCode"], ShouldEqual, float64(0))
			So(ack["ResultDesc"], ShouldEqual, "Success")
		})

		Convey("A garbage body should still be acknowledged", func() {
			rec := &stubReconciler{}
			api := NewMpesaAPI(ctx, &stubPusher{}, rec)

			req := httptest.NewRequest(http.MethodPost, "/mpesa/callback", strings.NewReader("not json"))
			w := httptest.NewRecorder()
			api.CallbackRequest().ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(rec.gotEnv, ShouldBeNil)

			var ack map[string]interface{}
			So(json.Unmarshal(w.Body.Bytes(), &ack), ShouldBeNil)
			So(ack["ResultCode"], ShouldEqual, float64(0))
		})
	})
}
