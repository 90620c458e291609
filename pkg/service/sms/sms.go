// Package sms sends transactional text messages through an HTTP gateway
package sms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rezicom/vendd/pkg/config"
	"gopkg.in/inconshreveable/log15.v2"
)

var (
	// ErrIncompleteConfig is returned when the gateway settings are missing
	ErrIncompleteConfig = errors.New("sms gateway configuration incomplete")
	// ErrBadRecipient is returned for numbers that cannot be normalized
	ErrBadRecipient = errors.New("recipient is not a valid msisdn")
)

const sendTimeout = 10 * time.Second

// Sender delivers one text message to one recipient
type Sender interface {
	Send(ctx context.Context, msisdn, message string) error
}

// HTTPSender sends messages through the configured SMS gateway
type HTTPSender struct {
	cfg config.Config
	log log15.Logger

	client *http.Client
}

// NewHTTPSender creates a sender for the gateway named in the configuration
func NewHTTPSender(cfg config.Config, log log15.Logger) *HTTPSender {
	return &HTTPSender{
		cfg: cfg,
		log: log.New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/sms"}),
		client: &http.Client{
			Timeout: sendTimeout,
		},
	}
}

// Send posts the message to the gateway
//
// Sending is a no-op when messaging is disabled in the configuration.
func (s *HTTPSender) Send(ctx context.Context, msisdn, message string) error {
	if !s.cfg.SMS.Enabled {
		s.log.Debug("sms disabled, message dropped", log15.Ctx{"msisdn": msisdn})
		return nil
	}
	if s.cfg.SMS.APIURL == "" || s.cfg.SMS.APIKey == "" || s.cfg.SMS.PartnerID == "" {
		return ErrIncompleteConfig
	}
	to := NormalizeMsisdn(msisdn)
	if to == "" {
		return ErrBadRecipient
	}

	form := url.Values{}
	form.Set("apikey", s.cfg.SMS.APIKey)
	form.Set("partnerID", s.cfg.SMS.PartnerID)
	form.Set("shortcode", s.cfg.SMS.Shortcode)
	form.Set("mobile", to)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.SMS.APIURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("error posting to sms gateway: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}
	s.log.Info("sms sent", log15.Ctx{"msisdn": to})
	return nil
}

// NormalizeMsisdn converts a phone number to international 254 format
//
// It returns the empty string for numbers it cannot interpret.
func NormalizeMsisdn(number string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	switch {
	case strings.HasPrefix(n, "254") && len(n) == 12:
		return n
	case strings.HasPrefix(n, "0") && len(n) == 10:
		return "254" + n[1:]
	case strings.HasPrefix(n, "7") && len(n) == 9:
		return "254" + n
	case strings.HasPrefix(n, "1") && len(n) == 9:
		return "254" + n
	default:
		return ""
	}
}
