package v1

import (
	"net/http"

	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/vendd/payment"
	"github.com/rezicom/vendd/pkg/vendd/token"
	"gopkg.in/inconshreveable/log15.v2"
)

// StatsAPI serves operational counters
type StatsAPI struct {
	ctx *service.Context
	log log15.Logger
}

// NewStatsAPI creates the stats API
func NewStatsAPI(ctx *service.Context) *StatsAPI {
	return &StatsAPI{
		ctx: ctx,
		log: ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/api/v1"}),
	}
}

type statsResponse struct {
	TokenTransactions struct {
		Success int64 `json:"success"`
		Failed  int64 `json:"failed"`
	} `json:"token_transactions"`
	Payments struct {
		Confirmed int64 `json:"confirmed"`
		Failed    int64 `json:"failed"`
	} `json:"payments"`
}

// StatsRequest returns the handler reporting record counts by status
func (a *StatsAPI) StatsRequest() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		db := a.ctx.PaymentDB(service.ReadOnly)

		var resp statsResponse
		var err error
		if resp.TokenTransactions.Success, err = token.CountByStatusDB(db, token.TransactionStatusSuccess); err != nil {
			a.statsError(w, err)
			return
		}
		if resp.TokenTransactions.Failed, err = token.CountByStatusDB(db, token.TransactionStatusFailed); err != nil {
			a.statsError(w, err)
			return
		}
		if resp.Payments.Confirmed, err = payment.CountByStatusDB(db, payment.StatusConfirmed); err != nil {
			a.statsError(w, err)
			return
		}
		if resp.Payments.Failed, err = payment.CountByStatusDB(db, payment.StatusFailed); err != nil {
			a.statsError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

func (a *StatsAPI) statsError(w http.ResponseWriter, err error) {
	a.log.Error("error reading stats", log15.Ctx{"err": err})
	writeJSON(w, http.StatusInternalServerError, errorResponse{
		ErrorDetails: "internal error",
	})
}
