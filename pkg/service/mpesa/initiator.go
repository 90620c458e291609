package mpesa

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/vendd/configstore"
	"github.com/rezicom/vendd/pkg/vendd/correlation"
	"gopkg.in/inconshreveable/log15.v2"
)

const (
	oauthPath   = "/oauth/v1/generate?grant_type=client_credentials"
	stkPushPath = "/mpesa/stkpush/v1/processrequest"

	requestTimeout    = 30 * time.Second
	passwordTimestamp = "20060102150405"
)

// PushRequest is one STK push initiation
type PushRequest struct {
	Phone            string
	Amount           int64
	AccountReference string
	Description      string
}

// PushResponse is the gateway's synchronous acknowledgement
type PushResponse struct {
	MerchantRequestID   string `json:"MerchantRequestID"`
	CheckoutRequestID   string `json:"CheckoutRequestID"`
	ResponseCode        string `json:"ResponseCode"`
	ResponseDescription string `json:"ResponseDescription"`
	CustomerMessage     string `json:"CustomerMessage"`

	// Raw is the unmodified gateway response body
	Raw json.RawMessage `json:"-"`
}

// Initiator sends STK push requests to the gateway
type Initiator struct {
	ctx *service.Context
	log log15.Logger
	cfg GatewayConfig

	resolver *configstore.Resolver
	client   *http.Client
}

// NewInitiator creates an initiator using the daemon gateway configuration
func NewInitiator(ctx *service.Context) *Initiator {
	return &Initiator{
		ctx: ctx,
		log: ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/mpesa"}),
		cfg: GatewayConfigFromConfig(ctx.Config()),
		client: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// SetResolver attaches a setting resolver for tenant scoped credentials
func (i *Initiator) SetResolver(r *configstore.Resolver) {
	i.resolver = r
}

// Push initiates an STK push with the daemon gateway configuration
func (i *Initiator) Push(ctx context.Context, req PushRequest) (*PushResponse, error) {
	return i.PushWithConfig(ctx, i.cfg, req)
}

// PushForTenant initiates an STK push with the tenant's gateway credentials
//
// Without an attached resolver the daemon configuration applies unchanged.
func (i *Initiator) PushForTenant(ctx context.Context, tenantID int64, req PushRequest) (*PushResponse, error) {
	if i.resolver == nil {
		return i.PushWithConfig(ctx, i.cfg, req)
	}
	cfg, err := GatewayConfigForTenant(i.resolver, tenantID, i.cfg)
	if err != nil {
		return nil, fmt.Errorf("error resolving gateway settings for tenant %d: %v", tenantID, err)
	}
	return i.PushWithConfig(ctx, cfg, req)
}

// PushWithConfig initiates an STK push with an explicit gateway configuration,
// for tenant-specific credentials
func (i *Initiator) PushWithConfig(ctx context.Context, cfg GatewayConfig, req PushRequest) (*PushResponse, error) {
	if cfg.TransactionType == "" {
		cfg.TransactionType = i.cfg.TransactionType
	}
	token, err := i.accessToken(ctx, cfg)
	if err != nil {
		return nil, err
	}

	phone := NormalizePhone(req.Phone)
	timestamp := time.Now().Format(passwordTimestamp)
	password := base64.StdEncoding.EncodeToString(
		[]byte(cfg.Shortcode + cfg.Passkey + timestamp))

	body := map[string]interface{}{
		"BusinessShortCode": cfg.Shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   cfg.TransactionType,
		"Amount":            req.Amount,
		"PartyA":            phone,
		"PartyB":            cfg.PartyB(),
		"PhoneNumber":       phone,
		"CallBackURL":       cfg.CallbackURL,
		"AccountReference":  req.AccountReference,
		"TransactionDesc":   req.Description,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.BaseURL()+stkPushPath, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := i.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("error sending stk push: %v", err)
	}
	defer resp.Body.Close()

	var raw bytes.Buffer
	pushResp := &PushResponse{}
	if err := json.NewDecoder(io.TeeReader(resp.Body, &raw)).Decode(pushResp); err != nil {
		return nil, fmt.Errorf("error decoding stk push response: %v", err)
	}
	pushResp.Raw = json.RawMessage(raw.Bytes())

	if resp.StatusCode != http.StatusOK {
		i.log.Error("stk push rejected", log15.Ctx{
			"status":   resp.StatusCode,
			"respCode": pushResp.ResponseCode,
			"respDesc": pushResp.ResponseDescription,
		})
		return pushResp, fmt.Errorf("stk push rejected with status %d", resp.StatusCode)
	}

	i.log.Info("stk push accepted", log15.Ctx{
		"merchantRequestId": pushResp.MerchantRequestID,
		"checkoutRequestId": pushResp.CheckoutRequestID,
	})

	if pushResp.CheckoutRequestID != "" && req.AccountReference != "" {
		err := i.ctx.CorrelationStore().Put(ctx, pushResp.CheckoutRequestID, req.AccountReference, correlation.DefaultTTL)
		if err != nil {
			// reconciliation falls back to the callback metadata
			i.log.Warn("error storing account reference correlation", log15.Ctx{
				"checkoutRequestId": pushResp.CheckoutRequestID,
				"err":               err,
			})
		}
	}
	return pushResp, nil
}

type oauthResponse struct {
	AccessToken string `json:"access_token"`
}

func (i *Initiator) accessToken(ctx context.Context, cfg GatewayConfig) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.BaseURL()+oauthPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(cfg.ConsumerKey, cfg.ConsumerSecret)

	resp, err := i.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error requesting access token: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("access token request returned status %d", resp.StatusCode)
	}
	var oauth oauthResponse
	if err := json.NewDecoder(resp.Body).Decode(&oauth); err != nil {
		return "", fmt.Errorf("error decoding access token response: %v", err)
	}
	if oauth.AccessToken == "" {
		return "", fmt.Errorf("access token response carried no token")
	}
	return oauth.AccessToken, nil
}

// NormalizePhone converts a payer phone number to international 254 format
//
// Numbers that cannot be interpreted pass through unchanged; the gateway
// reports them in its own response.
func NormalizePhone(number string) string {
	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n := digits.String()
	switch {
	case strings.HasPrefix(n, "0") && len(n) == 10:
		return "254" + n[1:]
	case (strings.HasPrefix(n, "7") || strings.HasPrefix(n, "1")) && len(n) == 9:
		return "254" + n
	default:
		return n
	}
}
