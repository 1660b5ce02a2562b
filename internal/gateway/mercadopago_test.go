package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClient_CreatePixPayment(t *testing.T) {
	var captured map[string]interface{}
	var idempotencyKey, authorization string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/payments", r.URL.Path)
		idempotencyKey = r.Header.Get("X-Idempotency-Key")
		authorization = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{
			"id": 123456789,
			"status": "pending",
			"point_of_interaction": {
				"transaction_data": {
					"qr_code": "pix-copy-paste",
					"qr_code_base64": "cGl4LXFy"
				}
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TEST-TOKEN")
	payment, err := client.CreatePixPayment(context.Background(), CreatePaymentRequest{
		Amount: decimal.RequireFromString("19.90"),
		Payer: Payer{
			Email:     "maria@example.com",
			FirstName: "Maria",
			LastName:  "Silva",
			CPF:       "12345678909",
		},
		Description:       "Compra de Tip",
		ExternalReference: "user-tip",
	})

	assert.NoError(t, err)
	assert.Equal(t, "123456789", payment.ID)
	assert.Equal(t, StatusPending, payment.Status)
	assert.Equal(t, "pix-copy-paste", payment.QRCode)
	assert.Equal(t, "cGl4LXFy", payment.QRCodeBase64)

	assert.Equal(t, "Bearer TEST-TOKEN", authorization)
	assert.NotEmpty(t, idempotencyKey)

	assert.Equal(t, 19.90, captured["transaction_amount"])
	assert.Equal(t, "pix", captured["payment_method_id"])
	assert.Equal(t, "Compra de Tip", captured["description"])
	assert.Equal(t, "user-tip", captured["external_reference"])

	payer := captured["payer"].(map[string]interface{})
	assert.Equal(t, "maria@example.com", payer["email"])
	identification := payer["identification"].(map[string]interface{})
	assert.Equal(t, "CPF", identification["type"])
	assert.Equal(t, "12345678909", identification["number"])
}

func TestClient_CreateCardPayment(t *testing.T) {
	var captured map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": 777, "status": "approved"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TEST-TOKEN")
	payment, err := client.CreateCardPayment(context.Background(), CreatePaymentRequest{
		Amount: decimal.RequireFromString("19.90"),
		Payer: Payer{
			Email: "maria@example.com",
			CPF:   "12345678909",
		},
		Token:           "card-token",
		PaymentMethodID: "visa",
	})

	assert.NoError(t, err)
	assert.Equal(t, "777", payment.ID)
	assert.Equal(t, StatusApproved, payment.Status)
	assert.Empty(t, payment.QRCode)

	assert.Equal(t, "card-token", captured["token"])
	assert.Equal(t, "visa", captured["payment_method_id"])
	assert.Equal(t, float64(1), captured["installments"])
}

func TestClient_GetPayment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/payments/555", r.URL.Path)
		assert.Equal(t, "Bearer TEST-TOKEN", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 555, "status": "approved"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TEST-TOKEN")
	payment, err := client.GetPayment(context.Background(), "555")

	assert.NoError(t, err)
	assert.Equal(t, "555", payment.ID)
	assert.Equal(t, StatusApproved, payment.Status)
}

func TestClient_GatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"message": "invalid card token"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TEST-TOKEN")
	payment, err := client.GetPayment(context.Background(), "555")

	assert.Error(t, err)
	assert.Nil(t, payment)
	assert.Contains(t, err.Error(), "400")
}

func TestClient_MissingPaymentID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "pending"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "TEST-TOKEN")
	_, err := client.GetPayment(context.Background(), "555")

	assert.Error(t, err)
}
