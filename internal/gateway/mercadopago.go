package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses reported by Mercado Pago that the app reacts to. Any
// other status string is passed through to the caller unchanged.
const (
	StatusApproved = "approved"
	StatusPending  = "pending"
	StatusRejected = "rejected"
)

// Payer identifies the paying user at the gateway.
type Payer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	CPF       string `json:"-"`
}

// CreatePaymentRequest holds the fields for a payment creation call.
// Token and PaymentMethodID are set for card payments only.
type CreatePaymentRequest struct {
	Amount            decimal.Decimal
	Payer             Payer
	Description       string
	ExternalReference string
	Token             string
	PaymentMethodID   string
}

// Payment is the subset of the gateway's payment resource the app consumes.
type Payment struct {
	ID           string
	Status       string
	QRCode       string
	QRCodeBase64 string
}

// Client calls the Mercado Pago payments API. All card and PIX heavy
// lifting (tokenization, settlement, fraud) happens on the gateway side;
// this client only creates payments and reads their status.
type Client interface {
	CreatePixPayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	CreateCardPayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error)
	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
}

type client struct {
	baseURL     string
	accessToken string
	httpClient  *http.Client
}

// NewClient creates a Mercado Pago client.
func NewClient(baseURL, accessToken string) Client {
	return &client{
		baseURL:     baseURL,
		accessToken: accessToken,
		httpClient:  &http.Client{Timeout: 15 * time.Second},
	}
}

type identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type payerPayload struct {
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	Identification identification `json:"identification"`
}

type createPaymentPayload struct {
	TransactionAmount float64      `json:"transaction_amount"`
	PaymentMethodID   string       `json:"payment_method_id,omitempty"`
	Token             string       `json:"token,omitempty"`
	Installments      int          `json:"installments,omitempty"`
	Payer             payerPayload `json:"payer"`
	Description       string       `json:"description"`
	ExternalReference string       `json:"external_reference"`
}

type transactionData struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
}

type pointOfInteraction struct {
	TransactionData *transactionData `json:"transaction_data"`
}

type paymentResource struct {
	ID                 json.Number         `json:"id"`
	Status             string              `json:"status"`
	PointOfInteraction *pointOfInteraction `json:"point_of_interaction"`
}

// CreatePixPayment creates a PIX payment and returns its QR payload.
func (c *client) CreatePixPayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	payload := createPaymentPayload{
		TransactionAmount: req.Amount.InexactFloat64(),
		PaymentMethodID:   "pix",
		Payer: payerPayload{
			Email:          req.Payer.Email,
			FirstName:      req.Payer.FirstName,
			LastName:       req.Payer.LastName,
			Identification: identification{Type: "CPF", Number: req.Payer.CPF},
		},
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	}
	return c.createPayment(ctx, payload)
}

// CreateCardPayment charges a tokenized card in a single installment.
func (c *client) CreateCardPayment(ctx context.Context, req CreatePaymentRequest) (*Payment, error) {
	payload := createPaymentPayload{
		TransactionAmount: req.Amount.InexactFloat64(),
		PaymentMethodID:   req.PaymentMethodID,
		Token:             req.Token,
		Installments:      1,
		Payer: payerPayload{
			Email:          req.Payer.Email,
			FirstName:      req.Payer.FirstName,
			LastName:       req.Payer.LastName,
			Identification: identification{Type: "CPF", Number: req.Payer.CPF},
		},
		Description:       req.Description,
		ExternalReference: req.ExternalReference,
	}
	return c.createPayment(ctx, payload)
}

func (c *client) createPayment(ctx context.Context, payload createPaymentPayload) (*Payment, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payment payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payments", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	// One key per attempt keeps gateway-side retries from double charging.
	httpReq.Header.Set("X-Idempotency-Key", uuid.New().String())

	return c.do(httpReq)
}

// GetPayment fetches the current state of a payment.
func (c *client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/payments/"+paymentID, nil)
	if err != nil {
		return nil, fmt.Errorf("build payment request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	return c.do(httpReq)
}

func (c *client) do(req *http.Request) (*Payment, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body)
	}

	var resource paymentResource
	if err := json.NewDecoder(resp.Body).Decode(&resource); err != nil {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if resource.ID.String() == "" {
		return nil, fmt.Errorf("gateway response missing payment id")
	}

	payment := &Payment{
		ID:     resource.ID.String(),
		Status: resource.Status,
	}
	if resource.PointOfInteraction != nil && resource.PointOfInteraction.TransactionData != nil {
		payment.QRCode = resource.PointOfInteraction.TransactionData.QRCode
		payment.QRCodeBase64 = resource.PointOfInteraction.TransactionData.QRCodeBase64
	}
	return payment, nil
}
