package v1

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/service/mpesa"
	"gopkg.in/inconshreveable/log15.v2"
)

// Pusher initiates STK push payments
type Pusher interface {
	Push(ctx context.Context, req mpesa.PushRequest) (*mpesa.PushResponse, error)
	PushForTenant(ctx context.Context, tenantID int64, req mpesa.PushRequest) (*mpesa.PushResponse, error)
}

// Reconciler applies result callbacks
type Reconciler interface {
	OnCallback(ctx context.Context, env *mpesa.CallbackEnvelope) mpesa.Result
}

// MpesaAPI serves the payment initiation and callback endpoints
type MpesaAPI struct {
	ctx *service.Context
	log log15.Logger

	pusher     Pusher
	reconciler Reconciler
}

// NewMpesaAPI creates the M-Pesa API
func NewMpesaAPI(ctx *service.Context, pusher Pusher, reconciler Reconciler) *MpesaAPI {
	return &MpesaAPI{
		ctx:        ctx,
		log:        ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/api/v1"}),
		pusher:     pusher,
		reconciler: reconciler,
	}
}

// PushAPIRequest is the request body for a payment initiation
type PushAPIRequest struct {
	Phone            string `json:"phone"`
	Amount           int64  `json:"amount"`
	AccountReference string `json:"account_reference"`
	Description      string `json:"description"`
	// VendorID selects tenant scoped gateway credentials when set
	VendorID int64 `json:"vendor_id"`
}

// PushRequest returns the handler initiating STK push payments
func (a *MpesaAPI) PushRequest() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req PushAPIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				ErrorDetails: "could not read request",
			})
			return
		}
		if req.Amount < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				ErrorDetails: "amount must be at least 1",
			})
			return
		}
		if req.Phone == "" {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				ErrorDetails: "phone is required",
			})
			return
		}

		pushReq := mpesa.PushRequest{
			Phone:            req.Phone,
			Amount:           req.Amount,
			AccountReference: req.AccountReference,
			Description:      req.Description,
		}
		var resp *mpesa.PushResponse
		var err error
		if req.VendorID != 0 {
			resp, err = a.pusher.PushForTenant(r.Context(), req.VendorID, pushReq)
		} else {
			resp, err = a.pusher.Push(r.Context(), pushReq)
		}
		if err != nil {
			a.log.Error("error initiating stk push", log15.Ctx{"err": err})
			writeJSON(w, http.StatusBadGateway, errorResponse{
				ErrorDetails: "payment gateway rejected the request",
			})
			return
		}

		// pass the gateway acknowledgement through unmodified
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if len(resp.Raw) > 0 {
			w.Write(resp.Raw)
			return
		}
		json.NewEncoder(w).Encode(resp)
	})
}

// callbackAck is the fixed acknowledgement the gateway expects
var callbackAck = map[string]interface{}{
	"ResultCode": 0,
	"ResultDesc": "Success",
}

// CallbackRequest returns the handler receiving result callbacks
//
// The gateway is always acknowledged, whatever the body contained; a
// non-zero acknowledgement would only trigger redelivery of a callback
// this handler already could not use.
func (a *MpesaAPI) CallbackRequest() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env := &mpesa.CallbackEnvelope{}
		if err := json.NewDecoder(r.Body).Decode(env); err != nil {
			a.log.Warn("undecodable callback body", log15.Ctx{"err": err})
			writeJSON(w, http.StatusOK, callbackAck)
			return
		}
		a.reconciler.OnCallback(r.Context(), env)
		writeJSON(w, http.StatusOK, callbackAck)
	})
}
