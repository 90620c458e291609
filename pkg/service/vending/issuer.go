package vending

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rezicom/vendd/pkg/prism/tokenapi"
	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/vendd/meter"
	"github.com/rezicom/vendd/pkg/vendd/msgid"
	"github.com/rezicom/vendd/pkg/vendd/principal"
	"github.com/rezicom/vendd/pkg/vendd/token"
	"gopkg.in/inconshreveable/log15.v2"
)

// VendingSession is the session surface the issuer depends on
type VendingSession interface {
	Connect(ctx context.Context) error
	Authenticate(ctx context.Context) error
	IssueCreditToken(ctx context.Context, m *meter.Meter, subclass int32, amount int64) ([]*tokenapi.Token, error)
	MsgID() string
	Close()
}

// SessionFactory produces a fresh session per vend request
type SessionFactory func() VendingSession

// IssueRequest is one credit vend request
type IssueRequest struct {
	MeterID  int64
	Amount   int64
	Subclass int32
}

// Issuer drives a vend request end to end: authorization, the remote
// exchange, and the transaction record
type Issuer struct {
	ctx *service.Context
	log log15.Logger

	newSession SessionFactory
}

// NewIssuer creates an issuer using sessions configured from the service context
func NewIssuer(ctx *service.Context) *Issuer {
	cfg := ctx.Config()
	sessCfg := SessionConfig{
		Host:     cfg.Prism.Host,
		Port:     cfg.Prism.Port,
		Username: cfg.Prism.Username,
		Password: cfg.Prism.Password,
	}
	if d, err := cfg.Prism.SendTimeout.Duration(); err == nil {
		sessCfg.SendTimeout = d
	}
	if d, err := cfg.Prism.RecvTimeout.Duration(); err == nil {
		sessCfg.RecvTimeout = d
	}
	log := ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/vending"})
	return &Issuer{
		ctx: ctx,
		log: log,
		newSession: func() VendingSession {
			return NewSession(sessCfg, log)
		},
	}
}

// NewIssuerWithSessions creates an issuer with a custom session factory
func NewIssuerWithSessions(ctx *service.Context, f SessionFactory) *Issuer {
	return &Issuer{
		ctx:        ctx,
		log:        ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/vending"}),
		newSession: f,
	}
}

// Issue vends credit for the given meter on behalf of the caller
//
// The transaction record is written once the remote exchange has resolved,
// for successful and failed exchanges alike. Requests refused before a
// session is opened leave no record.
func (i *Issuer) Issue(ctx context.Context, caller principal.User, req IssueRequest) (*token.Transaction, error) {
	if req.Amount < i.ctx.Config().API.MinVendAmount {
		return nil, &Error{
			Kind:    KindValidation,
			Message: fmt.Sprintf("amount must be at least %d", i.ctx.Config().API.MinVendAmount),
		}
	}

	m, customerID, ownerUserID, err := i.loadMeter(req.MeterID)
	if err != nil {
		return nil, err
	}

	if !caller.CanVendFor(ownerUserID) {
		i.log.Warn("vend attempt on foreign meter refused", log15.Ctx{
			"meterId":     m.ID,
			"callerId":    caller.ID,
			"ownerUserId": ownerUserID,
		})
		return nil, &Error{Kind: KindAuthorization, Message: "meter does not belong to caller"}
	}

	sess := i.newSession()
	defer sess.Close()

	if err := sess.Connect(ctx); err != nil {
		return i.record(m, caller, customerID, req.Amount, nil, msgid.Generate(), err)
	}
	if err := sess.Authenticate(ctx); err != nil {
		return i.record(m, caller, customerID, req.Amount, nil, sess.MsgID(), err)
	}

	tokens, err := sess.IssueCreditToken(ctx, m, req.Subclass, req.Amount)
	if err != nil {
		return i.record(m, caller, customerID, req.Amount, nil, sess.MsgID(), err)
	}

	digits := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if d := tok.Digits(); d != "" {
			digits = append(digits, d)
		}
	}
	if len(digits) == 0 {
		err := newError(KindUpstream, "vending host returned no tokens", nil)
		return i.record(m, caller, customerID, req.Amount, nil, sess.MsgID(), err)
	}
	return i.record(m, caller, customerID, req.Amount, digits, sess.MsgID(), nil)
}

func (i *Issuer) loadMeter(meterID int64) (*meter.Meter, sql.NullInt64, int64, error) {
	var customerID sql.NullInt64
	tx, err := i.ctx.PrincipalDB(service.ReadOnly).Begin()
	if err != nil {
		return nil, customerID, 0, newError(KindPersistence, "error opening principal transaction", err)
	}
	defer tx.Rollback()

	m, err := meter.MeterByIDTx(tx, meterID)
	if err == meter.ErrMeterNotFound {
		return nil, customerID, 0, &Error{Kind: KindValidation, Message: "unknown meter"}
	}
	if err != nil {
		return nil, customerID, 0, newError(KindPersistence, "error loading meter", err)
	}
	vendor, err := principal.VendorByIDTx(tx, m.VendorID)
	if err != nil {
		return nil, customerID, 0, newError(KindPersistence, "error loading vendor", err)
	}
	customerID, err = meter.FirstCustomerIDTx(tx, m.ID)
	if err != nil {
		return nil, customerID, 0, newError(KindPersistence, "error loading customer", err)
	}
	return m, customerID, vendor.UserID, nil
}

// record persists the transaction outcome and passes vendErr through
func (i *Issuer) record(m *meter.Meter, caller principal.User, customerID sql.NullInt64, amount int64, tokens []string, msgID string, vendErr error) (*token.Transaction, error) {
	t := &token.Transaction{
		Created:      time.Now(),
		MeterID:      m.ID,
		VendorUserID: caller.ID,
		CustomerID:   customerID,
		Amount:       amount,
		Tokens:       tokens,
		MsgID:        msgID,
	}
	if vendErr == nil {
		t.Status = token.TransactionStatusSuccess
		t.Description = fmt.Sprintf("Successfully generated %d token(s).", len(tokens))
	} else {
		t.Status = token.TransactionStatusFailed
		t.Description = failureDescription(vendErr)
	}

	tx, err := i.ctx.PaymentDB().Begin()
	if err != nil {
		i.log.Crit("error opening transaction", log15.Ctx{"err": err})
		return nil, newError(KindPersistence, "error recording transaction", err)
	}
	if err := token.InsertTransactionTx(tx, t); err != nil {
		tx.Rollback()
		i.log.Crit("error saving token transaction", log15.Ctx{
			"meterId": m.ID,
			"msgId":   msgID,
			"err":     err,
		})
		return nil, newError(KindPersistence, "error recording transaction", err)
	}
	if err := tx.Commit(); err != nil {
		i.log.Crit("error committing token transaction", log15.Ctx{"err": err})
		return nil, newError(KindPersistence, "error recording transaction", err)
	}

	if vendErr != nil {
		i.log.Error("vend request failed", log15.Ctx{
			"meterId":       m.ID,
			"transactionId": t.ID,
			"msgId":         msgID,
			"kind":          KindOf(vendErr).String(),
			"err":           vendErr,
		})
		return t, vendErr
	}
	i.log.Info("vend request succeeded", log15.Ctx{
		"meterId":       m.ID,
		"transactionId": t.ID,
		"msgId":         msgID,
		"tokens":        len(tokens),
	})
	return t, nil
}

func failureDescription(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindUpstream && e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return err.Error()
}
