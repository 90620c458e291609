package config

import (
	"encoding/json"
	"io"
	"os"
	"time"
)

// Timeout is a duration setting represented as a string in the config file
type Timeout string

// Duration parses the timeout setting
func (t Timeout) Duration() (time.Duration, error) {
	return time.ParseDuration(string(t))
}

// ServiceConfig represents a set of configuration values for an HTTP service
type ServiceConfig struct {
	Address        string
	ReadTimeout    Timeout
	WriteTimeout   Timeout
	MaxHeaderBytes int
}

// Config represents a full configuration for any vendd related applications
type Config struct {
	// Service is the HTTP service config
	Service ServiceConfig

	Database struct {
		PrincipalDSN         string
		PrincipalReadOnlyDSN string
		PaymentDSN           string
		PaymentReadOnlyDSN   string
	}

	Redis struct {
		// Address of the redis server backing the correlation store.
		// When empty, an in-process store is used.
		Address string
	}

	Prism struct {
		Host        string
		Port        int
		Username    string
		Password    string
		SendTimeout Timeout
		RecvTimeout Timeout
	}

	Mpesa struct {
		Env             string
		ConsumerKey     string
		ConsumerSecret  string
		Shortcode       string
		TillNo          string
		Passkey         string
		CallbackURL     string
		TransactionType string
	}

	SMS struct {
		Enabled   bool
		APIKey    string
		PartnerID string
		Shortcode string
		APIURL    string
	}

	API struct {
		// MinVendAmount is the minimum amount in KES accepted for a vend request
		MinVendAmount int64
	}

	// EncryptionPassphrase derives the key for encrypted configstore entries.
	// It is normally injected through the environment, not the config file.
	EncryptionPassphrase string `json:",omitempty"`
}

// environment variable names for secret overrides
const (
	EnvPrismPassword        = "VENDD_PRISM_PASSWORD"
	EnvMpesaConsumerSecret  = "VENDD_MPESA_CONSUMER_SECRET"
	EnvMpesaPasskey         = "VENDD_MPESA_PASSKEY"
	EnvSMSAPIKey            = "VENDD_SMS_APIKEY"
	EnvEncryptionPassphrase = "VENDD_ENCRYPTION_PASSPHRASE"
)

// DefaultConfig returns a default configuration
func DefaultConfig() Config {
	cfg := Config{}
	cfg.Service.Address = ":8080"
	cfg.Service.ReadTimeout = "10s"
	cfg.Service.WriteTimeout = "30s"
	cfg.Service.MaxHeaderBytes = 1 << 20

	cfg.Database.PrincipalDSN = "vendd@tcp(localhost:3306)/vendd_principal?parseTime=true"
	cfg.Database.PaymentDSN = "vendd@tcp(localhost:3306)/vendd_payment?parseTime=true"

	cfg.Prism.Host = "pt-vend.prismcrypto.co.za"
	cfg.Prism.Port = 9443
	cfg.Prism.SendTimeout = "3s"
	cfg.Prism.RecvTimeout = "15s"

	cfg.Mpesa.Env = "sandbox"
	cfg.Mpesa.TransactionType = "CustomerBuyGoodsOnline"

	cfg.SMS.Enabled = true

	cfg.API.MinVendAmount = 25

	return cfg
}

// ReadConfig reads the JSON from the given reader into a new Config
//
// Settings absent from the JSON keep their default values.
func ReadConfig(r io.Reader) (Config, error) {
	dec := json.NewDecoder(r)
	cfg := DefaultConfig()
	err := dec.Decode(&cfg)
	return cfg, err
}

// WriteConfig will write the given config to the given Writer as JSON (pretty printed)
func WriteConfig(w io.Writer, cfg Config) error {
	jsonBytes, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(jsonBytes)
	return err
}

// ApplyEnv overrides secret settings from the environment where present
func (cfg *Config) ApplyEnv() {
	if v := os.Getenv(EnvPrismPassword); v != "" {
		cfg.Prism.Password = v
	}
	if v := os.Getenv(EnvMpesaConsumerSecret); v != "" {
		cfg.Mpesa.ConsumerSecret = v
	}
	if v := os.Getenv(EnvMpesaPasskey); v != "" {
		cfg.Mpesa.Passkey = v
	}
	if v := os.Getenv(EnvSMSAPIKey); v != "" {
		cfg.SMS.APIKey = v
	}
	if v := os.Getenv(EnvEncryptionPassphrase); v != "" {
		cfg.EncryptionPassphrase = v
	}
}
