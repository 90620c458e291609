package vending

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"time"

	"github.com/apache/thrift/lib/go/thrift"
	"github.com/rezicom/vendd/pkg/prism/tokenapi"
	"github.com/rezicom/vendd/pkg/vendd/meter"
	"github.com/rezicom/vendd/pkg/vendd/msgid"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	// signInRealm is the authentication realm on the vending host
	signInRealm = "local"
	// tokenCarrierType for numeric STS tokens
	tokenCarrierType = 1
)

// SessionConfig holds the connection parameters for a vending session
type SessionConfig struct {
	Host     string
	Port     int
	Username string
	Password string

	SendTimeout time.Duration
	RecvTimeout time.Duration
}

// Session is one connection to the vending host
//
// A session is connect, authenticate, issue, close. Sessions are not safe
// for concurrent use; callers open one per vend request.
type Session struct {
	cfg SessionConfig
	log log15.Logger

	transport thrift.TTransport
	client    *tokenapi.Client

	accessToken string
	lastMsgID   string
}

// NewSession creates an unconnected session
func NewSession(cfg SessionConfig, log log15.Logger) *Session {
	return &Session{
		cfg: cfg,
		log: log.New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/vending"}),
	}
}

// Connect opens the TLS connection and framed protocol to the vending host
//
// The vending host presents a self-signed certificate; verification is
// disabled deliberately.
func (s *Session) Connect(ctx context.Context) error {
	conf := &thrift.TConfiguration{
		ConnectTimeout: s.cfg.SendTimeout,
		SocketTimeout:  s.cfg.RecvTimeout,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: true,
		},
	}
	sock := thrift.NewTSSLSocketConf(fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port), conf)
	transport := thrift.NewTFramedTransportConf(sock, conf)
	if err := transport.Open(); err != nil {
		s.log.Error("error connecting to vending host", log15.Ctx{
			"host": s.cfg.Host,
			"port": s.cfg.Port,
			"err":  err,
		})
		return newError(KindConnection, "could not connect to vending host", err)
	}
	prot := thrift.NewTBinaryProtocolConf(transport, conf)
	s.transport = transport
	s.client = tokenapi.NewClientFromProtocol(prot, prot)
	return nil
}

// Authenticate signs in and retains the session access token, connecting
// first when no connection is open
func (s *Session) Authenticate(ctx context.Context) error {
	if s.client == nil {
		if err := s.Connect(ctx); err != nil {
			return err
		}
	}
	id := msgid.Generate()
	s.lastMsgID = id
	s.log.Info("signing in to vending host", log15.Ctx{
		"msgId":    id,
		"username": s.cfg.Username,
	})
	resp, err := s.client.SignInWithPassword(ctx, id, signInRealm, s.cfg.Username, s.cfg.Password, &tokenapi.SessionOptions{})
	if err != nil {
		var apiErr *tokenapi.APIError
		if errors.As(err, &apiErr) {
			return &Error{
				Kind:    KindAuthentication,
				Code:    apiErr.Code,
				Message: apiErr.MessageEn,
				cause:   apiErr,
			}
		}
		return newError(KindConnection, "sign-in exchange failed", err)
	}
	s.accessToken = resp.AccessToken
	return nil
}

// IssueCreditToken requests credit tokens worth amount KES for the meter,
// signing in first when no access token is held
//
// A reopened connection invalidates the previous token on the host, so a
// missing connection always re-authenticates.
func (s *Session) IssueCreditToken(ctx context.Context, m *meter.Meter, subclass int32, amount int64) ([]*tokenapi.Token, error) {
	if s.client == nil || s.accessToken == "" {
		if err := s.Authenticate(ctx); err != nil {
			return nil, err
		}
	}
	mc := &tokenapi.MeterConfig{
		DRN:            m.Number,
		SGC:            m.SupplyGroupCode(),
		KRN:            m.KeyRevision(),
		TI:             m.TariffIndex(),
		EA:             m.EncryptionAlgorithm(),
		TCT:            tokenCarrierType,
		KEN:            m.KeyExpiry(),
		AllowKRNUpdate: false,
	}
	id := msgid.Generate()
	s.lastMsgID = id
	s.log.Info("requesting credit token", log15.Ctx{
		"msgId":  id,
		"drn":    mc.DRN,
		"amount": amount,
	})
	tokens, err := s.client.IssueCreditToken(ctx, id, s.accessToken, mc, subclass, amount, 0, 0)
	if err != nil {
		var apiErr *tokenapi.APIError
		if errors.As(err, &apiErr) {
			return nil, &Error{
				Kind:    KindUpstream,
				Code:    apiErr.Code,
				Message: apiErr.MessageEn,
				cause:   apiErr,
			}
		}
		return nil, newError(KindConnection, "token exchange failed", err)
	}
	return tokens, nil
}

// MsgID returns the message id of the last exchange
func (s *Session) MsgID() string {
	return s.lastMsgID
}

// Close closes the underlying transport. It can be called multiple times.
func (s *Session) Close() {
	if s.transport == nil {
		return
	}
	if err := s.transport.Close(); err != nil {
		s.log.Warn("error closing vending session", log15.Ctx{"err": err})
	}
	s.transport = nil
	s.client = nil
	s.accessToken = ""
}
