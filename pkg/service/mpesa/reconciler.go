package mpesa

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/vendd/payment"
	"gopkg.in/inconshreveable/log15.v2"
)

// CallbackEnvelope is the gateway's asynchronous result notification
type CallbackEnvelope struct {
	Body struct {
		StkCallback stkCallback `json:"stkCallback"`
	} `json:"Body"`
}

type stkCallback struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResultCode        int    `json:"ResultCode"`
	ResultDesc        string `json:"ResultDesc"`
	CallbackMetadata  struct {
		Item []MetadataItem `json:"Item"`
	} `json:"CallbackMetadata"`
}

// MetadataItem is one name/value pair in the callback metadata
type MetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value"`
}

// Result describes what a callback did to the payment records
type Result int

const (
	// ResultConfirmed means a new confirmed payment was recorded
	ResultConfirmed Result = iota
	// ResultFailed means a failed payment was recorded
	ResultFailed
	// ResultDuplicate means the callback matched an already recorded payment
	ResultDuplicate
	// ResultIgnored means the callback was unusable and left no record
	ResultIgnored
)

// Notifier is told about settled payments after they are committed
type Notifier interface {
	PaymentConfirmed(ctx context.Context, p *payment.Payment)
}

// Reconciler applies result callbacks to the payment records
//
// Callback processing never propagates errors to the gateway; the gateway
// retries on its own schedule and every path ends in an acknowledgement.
type Reconciler struct {
	ctx      *service.Context
	log      log15.Logger
	notifier Notifier
}

// NewReconciler creates a reconciler. The notifier may be nil.
func NewReconciler(ctx *service.Context, notifier Notifier) *Reconciler {
	return &Reconciler{
		ctx:      ctx,
		log:      ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/mpesa"}),
		notifier: notifier,
	}
}

// OnCallback processes one result callback
func (r *Reconciler) OnCallback(ctx context.Context, env *CallbackEnvelope) Result {
	cb := &env.Body.StkCallback
	log := r.log.New(log15.Ctx{
		"merchantRequestId": cb.MerchantRequestID,
		"checkoutRequestId": cb.CheckoutRequestID,
		"resultCode":        cb.ResultCode,
	})
	if cb.CheckoutRequestID == "" {
		log.Warn("callback without checkout request id ignored")
		return ResultIgnored
	}
	if cb.ResultCode != 0 {
		return r.recordFailure(ctx, cb, log)
	}
	return r.recordSuccess(ctx, cb, log)
}

func (r *Reconciler) recordSuccess(ctx context.Context, cb *stkCallback, log log15.Logger) Result {
	meta := metadataValues(cb.CallbackMetadata.Item)
	if meta.receipt == "" || meta.amount <= 0 {
		log.Warn("success callback without receipt or positive amount ignored")
		return ResultIgnored
	}

	reference := meta.accountReference
	if reference == "" {
		ref, ok, err := r.ctx.CorrelationStore().Get(ctx, cb.CheckoutRequestID)
		if err != nil {
			log.Warn("error reading account reference correlation", log15.Ctx{"err": err})
		} else if ok {
			reference = ref
		}
	}

	p := &payment.Payment{
		Created:           time.Now(),
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		Phone:             meta.phone,
		Amount:            meta.amount,
		ResultCode:        strconv.Itoa(cb.ResultCode),
		ResultDesc:        cb.ResultDesc,
		Status:            payment.StatusConfirmed,
	}
	p.SetReceiptNumber(meta.receipt)
	if reference != "" {
		p.SetAccountReference(reference)
	}

	tx, err := r.ctx.PaymentDB().Begin()
	if err != nil {
		log.Crit("error opening transaction", log15.Ctx{"err": err})
		return ResultIgnored
	}

	_, err = payment.PaymentByCheckoutOrReceiptTx(tx, cb.CheckoutRequestID, meta.receipt)
	if err == nil {
		tx.Rollback()
		log.Info("duplicate callback suppressed", log15.Ctx{"receipt": meta.receipt})
		return ResultDuplicate
	}
	if err != payment.ErrPaymentNotFound {
		tx.Rollback()
		log.Crit("error probing for duplicate payment", log15.Ctx{"err": err})
		return ResultIgnored
	}

	if err := payment.InsertPaymentTx(tx, p); err != nil {
		tx.Rollback()
		if err == payment.ErrDuplicate {
			// lost the race against a concurrent delivery of the same callback
			log.Info("duplicate callback suppressed", log15.Ctx{"receipt": meta.receipt})
			return ResultDuplicate
		}
		log.Crit("error saving payment", log15.Ctx{"err": err})
		return ResultIgnored
	}
	if err := tx.Commit(); err != nil {
		log.Crit("error committing payment", log15.Ctx{"err": err})
		return ResultIgnored
	}

	log.Info("payment confirmed", log15.Ctx{
		"paymentId": p.ID,
		"receipt":   meta.receipt,
		"amount":    p.Amount,
	})
	if r.notifier != nil {
		r.notifier.PaymentConfirmed(ctx, p)
	}
	return ResultConfirmed
}

func (r *Reconciler) recordFailure(ctx context.Context, cb *stkCallback, log log15.Logger) Result {
	desc := cb.ResultDesc
	if desc == "" {
		desc = FailureDescription(cb.ResultCode)
	}
	p := &payment.Payment{
		Created:           time.Now(),
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        strconv.Itoa(cb.ResultCode),
		ResultDesc:        desc,
		Status:            payment.StatusFailed,
	}
	if ref, ok, err := r.ctx.CorrelationStore().Get(ctx, cb.CheckoutRequestID); err != nil {
		log.Warn("error reading account reference correlation", log15.Ctx{"err": err})
	} else if ok {
		p.SetAccountReference(ref)
	}

	tx, err := r.ctx.PaymentDB().Begin()
	if err != nil {
		log.Crit("error opening transaction", log15.Ctx{"err": err})
		return ResultIgnored
	}
	if err := payment.UpsertFailedTx(tx, p); err != nil {
		tx.Rollback()
		log.Crit("error saving failed payment", log15.Ctx{"err": err})
		return ResultIgnored
	}
	if err := tx.Commit(); err != nil {
		log.Crit("error committing failed payment", log15.Ctx{"err": err})
		return ResultIgnored
	}
	log.Info("payment failure recorded", log15.Ctx{"resultDesc": p.ResultDesc})
	return ResultFailed
}

// FailureDescription maps a gateway result code to a customer readable
// failure description
func FailureDescription(code int) string {
	switch code {
	case 1, 1032:
		return "Transaction cancelled by user"
	case 2001:
		return "Wrong PIN entered"
	case 2002:
		return "Insufficient funds"
	case 2003:
		return "Transaction failed"
	default:
		return fmt.Sprintf("Transaction failed with code: %d", code)
	}
}

type metadata struct {
	amount           int64
	receipt          string
	phone            string
	accountReference string
}

func metadataValues(items []MetadataItem) metadata {
	var m metadata
	for _, item := range items {
		switch item.Name {
		case "Amount":
			switch v := item.Value.(type) {
			case float64:
				m.amount = int64(v)
			case string:
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					m.amount = int64(n)
				}
			}
		case "MpesaReceiptNumber":
			if v, ok := item.Value.(string); ok {
				m.receipt = v
			}
		case "PhoneNumber":
			switch v := item.Value.(type) {
			case float64:
				m.phone = strconv.FormatInt(int64(v), 10)
			case string:
				m.phone = v
			}
		case "AccountReference":
			if v, ok := item.Value.(string); ok {
				m.accountReference = v
			}
		}
	}
	return m
}
