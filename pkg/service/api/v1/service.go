// Package v1 is the HTTP API of the vending daemon
package v1

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/service/mpesa"
	"github.com/rezicom/vendd/pkg/service/sms"
	"github.com/rezicom/vendd/pkg/service/vending"
	"github.com/rezicom/vendd/pkg/vendd/configstore"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	serviceVersion = "v1"
	// ServicePath is the (sub-)path under which the API service v1.x resides in
	ServicePath = "/" + serviceVersion

	statsTimeout = 5 * time.Second
)

// Service represents the API service version 1.x
type Service struct {
	log log15.Logger
}

// NewService creates a new API service
// It requires a valid service context and takes a router to which
// the service routes will be attached
func NewService(ctx *service.Context, router *mux.Router) *Service {
	s := &Service{
		log: ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/api/v1"}),
	}

	s.log.Info("registering vend API...")
	vendAPI := NewVendAPI(ctx, vending.NewIssuer(ctx), NewHeaderIdentifier(ctx))
	router.Handle(ServicePath+"/vend", vendAPI.VendRequest())

	s.log.Info("registering payment API...")
	notifier := sms.NewPaymentNotifier(sms.NewHTTPSender(*ctx.Config(), ctx.Log()), ctx.Log())
	initiator := mpesa.NewInitiator(ctx)
	if codec, err := configstore.NewCodec(ctx.Config().EncryptionPassphrase); err == nil {
		initiator.SetResolver(configstore.NewResolver(ctx.PrincipalDB(service.ReadOnly), codec))
	} else {
		s.log.Warn("error preparing setting codec, tenant credentials disabled", log15.Ctx{"err": err})
	}
	mpesaAPI := NewMpesaAPI(ctx, initiator, mpesa.NewReconciler(ctx, notifier))
	router.Handle("/mpesa/stkpush", mpesaAPI.PushRequest())
	router.Handle("/mpesa/callback", mpesaAPI.CallbackRequest())

	statsAPI := NewStatsAPI(ctx)
	router.Handle(ServicePath+"/stats", service.TimeoutHandler(s.log.Warn, statsTimeout, statsAPI.StatsRequest()))

	return s
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	ErrorCode    string `json:"error_code,omitempty"`
	ErrorDetails string `json:"error_details"`
}
