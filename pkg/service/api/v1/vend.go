package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/rezicom/vendd/pkg/service"
	"github.com/rezicom/vendd/pkg/service/vending"
	"github.com/rezicom/vendd/pkg/vendd/principal"
	"github.com/rezicom/vendd/pkg/vendd/token"
	"gopkg.in/inconshreveable/log15.v2"
)

// TokenIssuer is the vending surface the API depends on
type TokenIssuer interface {
	Issue(ctx context.Context, caller principal.User, req vending.IssueRequest) (*token.Transaction, error)
}

// Identifier resolves the calling user from a request
type Identifier interface {
	Identify(r *http.Request) (principal.User, error)
}

// userIDHeader names the authenticated caller, set by the fronting proxy
const userIDHeader = "X-Vendd-User"

// HeaderIdentifier resolves callers from the authenticated user header
type HeaderIdentifier struct {
	ctx *service.Context
}

// NewHeaderIdentifier creates an identifier reading the user header
func NewHeaderIdentifier(ctx *service.Context) *HeaderIdentifier {
	return &HeaderIdentifier{ctx: ctx}
}

var errNoIdentity = errors.New("request carries no caller identity")

func (i *HeaderIdentifier) Identify(r *http.Request) (principal.User, error) {
	raw := r.Header.Get(userIDHeader)
	if raw == "" {
		return principal.User{}, errNoIdentity
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return principal.User{}, errNoIdentity
	}
	return principal.UserByIDDB(i.ctx.PrincipalDB(service.ReadOnly), id)
}

// VendRequest is the request body for a vend call
type VendRequest struct {
	MeterID int64 `json:"meter_id"`
	Amount  int64 `json:"amount"`
}

// VendAPI serves the token vending endpoint
type VendAPI struct {
	ctx *service.Context
	log log15.Logger

	issuer   TokenIssuer
	identify Identifier
}

// NewVendAPI creates the vend API
func NewVendAPI(ctx *service.Context, issuer TokenIssuer, identify Identifier) *VendAPI {
	return &VendAPI{
		ctx:      ctx,
		log:      ctx.Log().New(log15.Ctx{"pkg": "github.com/rezicom/vendd/pkg/service/api/v1"}),
		issuer:   issuer,
		identify: identify,
	}
}

type vendResponse struct {
	Message     string   `json:"message"`
	Transaction int64    `json:"transaction"`
	Tokens      []string `json:"tokens"`
}

// VendRequest returns the handler vending credit tokens
func (a *VendAPI) VendRequest() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		caller, err := a.identify.Identify(r)
		if err != nil {
			writeJSON(w, http.StatusForbidden, errorResponse{
				ErrorDetails: "caller could not be identified",
			})
			return
		}

		var req VendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				ErrorDetails: "could not read request",
			})
			return
		}

		trans, err := a.issuer.Issue(r.Context(), caller, vending.IssueRequest{
			MeterID: req.MeterID,
			Amount:  req.Amount,
		})
		if err != nil {
			a.writeVendError(w, err)
			return
		}

		grouped := make([]string, len(trans.Tokens))
		for i, tok := range trans.Tokens {
			grouped[i] = token.FormatGroups(tok)
		}
		writeJSON(w, http.StatusCreated, vendResponse{
			Message:     trans.Description,
			Transaction: trans.ID,
			Tokens:      grouped,
		})
	})
}

func (a *VendAPI) writeVendError(w http.ResponseWriter, err error) {
	var vendErr *vending.Error
	if !errors.As(err, &vendErr) {
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			ErrorDetails: "internal error",
		})
		return
	}
	switch vendErr.Kind {
	case vending.KindAuthorization:
		writeJSON(w, http.StatusForbidden, errorResponse{
			ErrorDetails: vendErr.Message,
		})
	case vending.KindValidation:
		writeJSON(w, http.StatusBadRequest, errorResponse{
			ErrorDetails: vendErr.Message,
		})
	case vending.KindUpstream, vending.KindConnection, vending.KindAuthentication:
		writeJSON(w, http.StatusBadGateway, errorResponse{
			ErrorCode:    vendErr.Code,
			ErrorDetails: vendErr.Message,
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			ErrorDetails: "internal error",
		})
	}
}
