package payment

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type PaymentAdapterLogHook struct{}

func (h *PaymentAdapterLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "PaymentAdapter: " + entry.Message
	return nil
}

func (h *PaymentAdapterLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Metadata struct {
	OrderID string `json:"order_id"`
	UserID  string `json:"user_id"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ReturnURL       string `json:"return_url,omitempty"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
}

type Payment struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Amount       Amount        `json:"amount"`
	Description  *string       `json:"description"`
	CreatedAt    time.Time     `json:"created_at"`
	Confirmation *Confirmation `json:"confirmation"`
	Paid         bool          `json:"paid"`
	Metadata     *Metadata     `json:"metadata"`
	Test         bool          `json:"test"`
}

type CreatePayment struct {
	Amount       Amount        `json:"amount"`
	Description  *string       `json:"description"`
	Confirmation *Confirmation `json:"confirmation"`
	Capture      bool          `json:"capture"`
	Metadata     Metadata      `json:"metadata"`
}

// Notification is the gateway webhook envelope ("payment.succeeded" etc).
type Notification struct {
	Type   string  `json:"type"`
	Event  string  `json:"event"`
	Object Payment `json:"object"`
}

const (
	EventPaymentSucceeded = "payment.succeeded"
	StatusSucceeded       = "succeeded"
)

type Adapter struct {
	client    http.Client
	log       *logrus.Entry
	apiURL    string
	shopID    string
	secretKey string
	currency  string
	returnURL string
}

func NewAdapter(log *logrus.Entry, apiURL, shopID, secretKey, currency, returnURL string) *Adapter {
	c := http.Client{
		Timeout: time.Second * 10,
	}

	return &Adapter{
		client:    c,
		log:       log,
		apiURL:    apiURL,
		shopID:    shopID,
		secretKey: secretKey,
		currency:  currency,
		returnURL: returnURL,
	}
}

// CreateOrderPayment builds a hosted payment session for an order: two-decimal
// amount, a fresh uuid as the idempotence key, order/user ids in metadata.
func (p *Adapter) CreateOrderPayment(orderID uint, userID int64, total decimal.Decimal) (*Payment, error) {
	description := fmt.Sprintf("Оплата заказа №%d", orderID)
	createPayment := CreatePayment{
		Amount: Amount{
			Value:    total.StringFixed(2),
			Currency: p.currency,
		},
		Description: &description,
		Confirmation: &Confirmation{
			Type:      "redirect",
			ReturnURL: p.returnURL,
		},
		Capture: true,
		Metadata: Metadata{
			OrderID: fmt.Sprintf("%d", orderID),
			UserID:  fmt.Sprintf("%d", userID),
		},
	}

	idempotenceKey := uuid.New().String()

	payment, _, err := p.CreatePayment(createPayment, idempotenceKey)
	return payment, err
}

func (p *Adapter) CreatePayment(createPayment CreatePayment, idempotenceKey string) (*Payment, int, error) {
	createPaymentBytes, err := json.Marshal(createPayment)
	if err != nil {
		p.log.Debugf("CreatePayment: error marshal createPayment - %v", err)
		return nil, 0, fmt.Errorf("error marshal createPayment")
	}

	url := p.apiURL + "/payments"
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(createPaymentBytes))
	if err != nil {
		p.log.Errorf("CreatePayment: failed create CreatePayment request - /payments - %v", err)
		return nil, 0, fmt.Errorf("failed CreatePayment request")
	}

	req.SetBasicAuth(p.shopID, p.secretKey)
	req.Header.Set("Idempotence-Key", idempotenceKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Errorf("CreatePayment: failed CreatePayment request - %v", err)
		return nil, 0, fmt.Errorf("failed CreatePayment request")
	}
	defer resp.Body.Close()

	bts, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Debugf("CreatePayment: failed readAll body - %v", err)
		return nil, 0, fmt.Errorf("failed readAll body")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var payment Payment
		buf := bytes.NewBuffer(bts)
		err = json.NewDecoder(buf).Decode(&payment)
		if err != nil {
			p.log.Errorf("CreatePayment: failed to decode response body - %v", err)
			return nil, 500, fmt.Errorf("failed to decode response body")
		}
		return &payment, 200, nil
	case http.StatusBadRequest:
		p.log.Errorf("CreatePayment: failed CreatePayment response (StatusBadRequest) - body - %s", string(bts))
		return nil, 400, fmt.Errorf("failed CreatePayment response (StatusBadRequest)")
	case http.StatusUnauthorized:
		p.log.Errorf("CreatePayment: failed CreatePayment response (StatusUnauthorized)")
		return nil, 401, fmt.Errorf("failed CreatePayment response (StatusUnauthorized)")
	default:
		p.log.Errorf("CreatePayment: failed CreatePayment response (unexpected error) - %d, body - %s", resp.StatusCode, string(bts))
		return nil, 500, fmt.Errorf("failed CreatePayment response (unexpected error)")
	}
}

func (p *Adapter) GetPayment(paymentID string) (*Payment, int, error) {
	url := p.apiURL + "/payments/" + paymentID
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		p.log.Errorf("GetPayment: failed create GetPayment request - /payments - %v", err)
		return nil, 0, fmt.Errorf("failed GetPayment request")
	}

	req.SetBasicAuth(p.shopID, p.secretKey)

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Errorf("GetPayment: failed GetPayment request - %v", err)
		return nil, 0, fmt.Errorf("failed GetPayment request")
	}
	defer resp.Body.Close()

	bts, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Debugf("GetPayment: failed readAll body - %v", err)
		return nil, 0, fmt.Errorf("failed readAll body")
	}

	switch resp.StatusCode {
	case http.StatusOK:
		var payment Payment
		buf := bytes.NewBuffer(bts)
		err = json.NewDecoder(buf).Decode(&payment)
		if err != nil {
			p.log.Errorf("GetPayment: failed to decode response body - %v", err)
			return nil, 500, fmt.Errorf("failed to decode response body")
		}
		return &payment, 200, nil
	case http.StatusNotFound:
		return nil, 404, fmt.Errorf("GetPayment: payment not found")
	default:
		return nil, 500, fmt.Errorf("GetPayment: unexpected status code - %v, body - %s", resp.StatusCode, string(bts))
	}
}
