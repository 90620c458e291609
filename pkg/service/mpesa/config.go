// Package mpesa initiates M-Pesa STK push payments and reconciles the
// asynchronous result callbacks
package mpesa

import (
	"github.com/rezicom/vendd/pkg/config"
	"github.com/rezicom/vendd/pkg/vendd/configstore"
)

const (
	// TransactionTypePayBill charges against a paybill business number
	TransactionTypePayBill = "CustomerPayBillOnline"
	// TransactionTypeBuyGoods charges against a till number
	TransactionTypeBuyGoods = "CustomerBuyGoodsOnline"

	sandboxBaseURL = "https://sandbox.safaricom.co.ke"
	liveBaseURL    = "https://api.safaricom.co.ke"
)

// GatewayConfig is the resolved set of gateway credentials for one tenant
type GatewayConfig struct {
	Env             string
	ConsumerKey     string
	ConsumerSecret  string
	Shortcode       string
	TillNo          string
	Passkey         string
	CallbackURL     string
	TransactionType string

	// baseURL overrides the environment derived origin in tests
	baseURL string
}

// GatewayConfigFromConfig builds the gateway config from the daemon configuration
func GatewayConfigFromConfig(cfg *config.Config) GatewayConfig {
	return GatewayConfig{
		Env:             cfg.Mpesa.Env,
		ConsumerKey:     cfg.Mpesa.ConsumerKey,
		ConsumerSecret:  cfg.Mpesa.ConsumerSecret,
		Shortcode:       cfg.Mpesa.Shortcode,
		TillNo:          cfg.Mpesa.TillNo,
		Passkey:         cfg.Mpesa.Passkey,
		CallbackURL:     cfg.Mpesa.CallbackURL,
		TransactionType: cfg.Mpesa.TransactionType,
	}
}

// setting names for tenant scoped gateway credentials
const (
	SettingEnv             = "mpesa_env"
	SettingConsumerKey     = "mpesa_consumer_key"
	SettingConsumerSecret  = "mpesa_consumer_secret"
	SettingShortcode       = "mpesa_shortcode"
	SettingTillNo          = "mpesa_till_no"
	SettingPasskey         = "mpesa_passkey"
	SettingTransactionType = "mpesa_transaction_type"
)

// GatewayConfigForTenant resolves the gateway credentials for a tenant
//
// Each setting falls back to the tenant's global entry and then to the
// daemon configuration. Secrets stored encrypted are decrypted by the
// resolver.
func GatewayConfigForTenant(r *configstore.Resolver, tenantID int64, base GatewayConfig) (GatewayConfig, error) {
	cfg := base
	var err error
	if cfg.Env, err = r.ValueForTenant(SettingEnv, tenantID, base.Env); err != nil {
		return cfg, err
	}
	if cfg.ConsumerKey, err = r.ValueForTenant(SettingConsumerKey, tenantID, base.ConsumerKey); err != nil {
		return cfg, err
	}
	if cfg.ConsumerSecret, err = r.ValueForTenant(SettingConsumerSecret, tenantID, base.ConsumerSecret); err != nil {
		return cfg, err
	}
	if cfg.Shortcode, err = r.ValueForTenant(SettingShortcode, tenantID, base.Shortcode); err != nil {
		return cfg, err
	}
	if cfg.TillNo, err = r.ValueForTenant(SettingTillNo, tenantID, base.TillNo); err != nil {
		return cfg, err
	}
	if cfg.Passkey, err = r.ValueForTenant(SettingPasskey, tenantID, base.Passkey); err != nil {
		return cfg, err
	}
	if cfg.TransactionType, err = r.ValueForTenant(SettingTransactionType, tenantID, base.TransactionType); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// BaseURL returns the API origin for the configured environment
func (c GatewayConfig) BaseURL() string {
	if c.baseURL != "" {
		return c.baseURL
	}
	if c.Env == "live" {
		return liveBaseURL
	}
	return sandboxBaseURL
}

// PartyB returns the receiving party for the configured transaction type
//
// Paybill payments are received on the shortcode itself, till payments on
// the till number.
func (c GatewayConfig) PartyB() string {
	if c.TransactionType == TransactionTypePayBill {
		return c.Shortcode
	}
	if c.TillNo != "" {
		return c.TillNo
	}
	return c.Shortcode
}
