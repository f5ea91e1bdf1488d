package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpov/teleshop/pkg/logger"
)

func newTestAdapter(apiURL string) *Adapter {
	log := logger.NewLogger("panic", &PaymentAdapterLogHook{})
	return NewAdapter(log, apiURL, "shop-1", "secret", "RUB", "https://t.me/testbot")
}

func TestCreateOrderPayment(t *testing.T) {
	var gotRequest CreatePayment
	var gotIdempotenceKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/payments", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "shop-1", user)
		assert.Equal(t, "secret", pass)

		gotIdempotenceKey = r.Header.Get("Idempotence-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		payment := Payment{
			ID:     "pay-42",
			Status: "pending",
			Amount: gotRequest.Amount,
			Confirmation: &Confirmation{
				Type:            "redirect",
				ConfirmationURL: "https://pay.example/confirm",
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payment)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)

	total, _ := decimal.NewFromString("199.9")
	payment, err := adapter.CreateOrderPayment(17, 555, total)
	require.NoError(t, err)

	assert.Equal(t, "pay-42", payment.ID)
	assert.Equal(t, "https://pay.example/confirm", payment.Confirmation.ConfirmationURL)

	// amount is serialized as a two-decimal string
	assert.Equal(t, "199.90", gotRequest.Amount.Value)
	assert.Equal(t, "RUB", gotRequest.Amount.Currency)
	assert.True(t, gotRequest.Capture)
	assert.Equal(t, "17", gotRequest.Metadata.OrderID)
	assert.Equal(t, "555", gotRequest.Metadata.UserID)
	require.NotNil(t, gotRequest.Confirmation)
	assert.Equal(t, "redirect", gotRequest.Confirmation.Type)
	assert.Equal(t, "https://t.me/testbot", gotRequest.Confirmation.ReturnURL)

	// fresh uuid per request
	assert.Len(t, gotIdempotenceKey, 36)
}

func TestCreatePaymentBadRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"description":"invalid amount"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)

	_, code, err := adapter.CreatePayment(CreatePayment{}, "key")
	assert.Error(t, err)
	assert.Equal(t, 400, code)
}

func TestGetPaymentNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	adapter := newTestAdapter(server.URL)

	_, code, err := adapter.GetPayment("missing")
	assert.Error(t, err)
	assert.Equal(t, 404, code)
}
