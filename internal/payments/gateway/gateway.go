// Package gateway provides the payment gateway drivers used to issue billings.
package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/httpclient"
)

const providerName = "payment_gateway"

// Drivers.
const (
	DriverSandbox = "sandbox"
	DriverHTTP    = "http"
)

// ChargeRequest describes a billing to issue. IdempotencyKey makes repeated requests for
// the same order return the same charge.
type ChargeRequest struct {
	IdempotencyKey string
	CustomerID     string
	CustomerName   string
	CustomerEmail  string
	AmountInCents  int64
	Description    string
}

// Charge is a billing issued by the gateway.
type Charge struct {
	ExternalID string
	PaymentURL string
}

// Gateway issues billings.
type Gateway interface {
	CreateBilling(ctx context.Context, req ChargeRequest) (*Charge, error)
}

// Config configures a gateway driver.
type Config struct {
	Driver   string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	RetryMax int
}

// New returns the driver selected by cfg.Driver.
func New(cfg Config, logger *zap.Logger) (Gateway, error) {
	switch cfg.Driver {
	case DriverSandbox, "":
		return NewSandboxGateway(cfg.BaseURL), nil
	case DriverHTTP:
		return NewHTTPGateway(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway driver %q", cfg.Driver)
	}
}

// SandboxGateway issues deterministic charges without calling out. The external id is
// derived from the idempotency key.
type SandboxGateway struct {
	baseURL string
}

// NewSandboxGateway creates a SandboxGateway whose payment links point at baseURL.
func NewSandboxGateway(baseURL string) *SandboxGateway {
	return &SandboxGateway{baseURL: strings.TrimRight(baseURL, "/")}
}

// CreateBilling implements Gateway.
func (g *SandboxGateway) CreateBilling(ctx context.Context, req ChargeRequest) (*Charge, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewProviderError(providerName, "create_billing", err)
	}
	if req.IdempotencyKey == "" {
		return nil, apperrors.Wrap(apperrors.ErrInvalidInput, "idempotency key is required")
	}
	externalID := "sbx_" + strings.ReplaceAll(req.IdempotencyKey, "-", "")
	return &Charge{ExternalID: externalID, PaymentURL: g.baseURL + "/pay/" + externalID}, nil
}

// HTTPGateway issues charges through the gateway REST API.
type HTTPGateway struct {
	client *httpclient.Client
	apiKey string
}

// NewHTTPGateway creates an HTTPGateway.
func NewHTTPGateway(cfg Config, logger *zap.Logger) *HTTPGateway {
	return &HTTPGateway{
		client: httpclient.New(httpclient.Config{
			BaseURL:  cfg.BaseURL,
			Timeout:  cfg.Timeout,
			RetryMax: cfg.RetryMax,
		}, logger),
		apiKey: cfg.APIKey,
	}
}

type createBillingRequest struct {
	Amount      int64            `json:"amount"`
	Currency    string           `json:"currency"`
	Description string           `json:"description,omitempty"`
	Customer    customerResource `json:"customer"`
	Reference   string           `json:"reference"`
}

type customerResource struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type billingResource struct {
	ID         string `json:"id"`
	PaymentURL string `json:"paymentUrl"`
}

// CreateBilling implements Gateway. Transport faults and non-2xx responses are
// reported as ProviderError.
func (g *HTTPGateway) CreateBilling(ctx context.Context, req ChargeRequest) (*Charge, error) {
	headers := map[string]string{"Idempotency-Key": req.IdempotencyKey}
	if g.apiKey != "" {
		headers["Authorization"] = "Bearer " + g.apiKey
	}

	body := createBillingRequest{
		Amount:      req.AmountInCents,
		Currency:    "BRL",
		Description: req.Description,
		Customer:    customerResource{ID: req.CustomerID, Name: req.CustomerName, Email: req.CustomerEmail},
		Reference:   req.IdempotencyKey,
	}

	var out billingResource
	if err := g.client.DoJSON(ctx, http.MethodPost, "/v1/billings", headers, body, &out); err != nil {
		return nil, apperrors.NewProviderError(providerName, "create_billing", err)
	}
	if out.ID == "" || out.PaymentURL == "" {
		return nil, apperrors.NewProviderError(providerName, "create_billing",
			fmt.Errorf("incomplete billing response"))
	}
	return &Charge{ExternalID: out.ID, PaymentURL: out.PaymentURL}, nil
}
