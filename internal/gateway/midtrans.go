package gateway

import (
	"bytes"
	"context"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrMalformedResponse  = errors.New("malformed payment gateway response")
	ErrUnknownOrder       = errors.New("order unknown to payment gateway")
)

// Client is the part of the payment provider the orchestrator depends on.
type Client interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error)
	GetStatus(ctx context.Context, orderID string) (*StatusResponse, error)
}

type Config struct {
	ServerKey string
	SnapURL   string        // create-charge endpoint
	BaseURL   string        // status API base, without trailing slash
	Timeout   time.Duration // per request
}

type ChargeRequest struct {
	TransactionDetails TransactionDetails `json:"transaction_details"`
	CustomerDetails    CustomerDetails    `json:"customer_details"`
}

type TransactionDetails struct {
	OrderID     string `json:"order_id"`
	GrossAmount int64  `json:"gross_amount"`
}

type CustomerDetails struct {
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type ChargeResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type StatusResponse struct {
	StatusCode        string `json:"status_code"`
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"`
	GrossAmount       string `json:"gross_amount"`

	Raw json.RawMessage `json:"-"`
}

// GrossAmount converts a ledger total to the integer rupiah amount the
// provider expects.
func GrossAmount(total decimal.Decimal) int64 {
	return total.Round(0).IntPart()
}

type MidtransClient struct {
	cfg        Config
	httpClient *http.Client
}

func NewMidtransClient(cfg Config) *MidtransClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &MidtransClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// CreateCharge opens a hosted payment page for the order.
func (c *MidtransClient) CreateCharge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode charge: %w", err)
	}

	status, raw, err := c.do(ctx, http.MethodPost, c.cfg.SnapURL, body)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return nil, fmt.Errorf("%w: create charge returned %d: %s", ErrGatewayUnavailable, status, truncate(raw))
	}

	var out ChargeResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Token == "" && out.RedirectURL == "" {
		return nil, fmt.Errorf("%w: charge response has no token", ErrMalformedResponse)
	}
	return &out, nil
}

// GetStatus asks the provider for the current state of an order.
func (c *MidtransClient) GetStatus(ctx context.Context, orderID string) (*StatusResponse, error) {
	endpoint := fmt.Sprintf("%s/v2/%s/status", c.cfg.BaseURL, url.PathEscape(orderID))

	status, raw, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, fmt.Errorf("%w: status query returned %d: %s", ErrGatewayUnavailable, status, truncate(raw))
	}

	var out StatusResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	// The status API answers 200 with an inner status_code for unknown orders.
	if out.StatusCode == "404" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOrder, orderID)
	}
	if out.TransactionStatus == "" {
		return nil, fmt.Errorf("%w: transaction_status missing", ErrMalformedResponse)
	}
	out.Raw = json.RawMessage(raw)
	return &out, nil
}

func (c *MidtransClient) do(ctx context.Context, method, endpoint string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: build request: %v", ErrGatewayUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(c.cfg.ServerKey+":")))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("%w: read body: %v", ErrGatewayUnavailable, err)
	}
	return resp.StatusCode, raw, nil
}

// Signature computes the notification signature_key for an order.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature compares a received signature_key in constant time.
func VerifySignature(orderID, statusCode, grossAmount, serverKey, signature string) bool {
	want := Signature(orderID, statusCode, grossAmount, serverKey)
	return subtle.ConstantTimeCompare([]byte(want), []byte(signature)) == 1
}

func truncate(raw []byte) string {
	const max = 256
	if len(raw) > max {
		return string(raw[:max]) + "..."
	}
	return string(raw)
}
