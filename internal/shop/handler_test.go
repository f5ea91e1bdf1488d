package shop

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpov/teleshop/internal/payment"
	"github.com/akarpov/teleshop/pkg/logger"
)

type fakePaidService struct {
	ShopService

	paidPaymentID string
	markErr       error
}

func (f *fakePaidService) MarkOrderPaid(paymentID string) (*Order, error) {
	if f.markErr != nil {
		return nil, f.markErr
	}
	f.paidPaymentID = paymentID
	order := Order{Status: StatusProcessing, PaymentID: paymentID}
	order.ID = 17
	return &order, nil
}

type fakeNotifier struct {
	telegramID int64
	orderID    uint
}

func (f *fakeNotifier) NotifyPaid(telegramID int64, orderID uint) {
	f.telegramID = telegramID
	f.orderID = orderID
}

type fakeChecker struct {
	payments map[string]*payment.Payment
	err      error
}

func (f *fakeChecker) GetPayment(paymentID string) (*payment.Payment, int, error) {
	if f.err != nil {
		return nil, 500, f.err
	}
	p, ok := f.payments[paymentID]
	if !ok {
		return nil, 404, fmt.Errorf("payment not found")
	}
	return p, 200, nil
}

func succeededPayment(id, userID string) *fakeChecker {
	return &fakeChecker{payments: map[string]*payment.Payment{
		id: {
			ID:       id,
			Status:   payment.StatusSucceeded,
			Paid:     true,
			Metadata: &payment.Metadata{OrderID: "17", UserID: userID},
		},
	}}
}

func newWebhookRouter(service ShopService, notifier PaidNotifier, checker PaymentChecker) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler := NewHandler(service, notifier, checker, logger.NewLogger("panic", &ShopLogHook{}))
	handler.Register(router)
	return router
}

func postNotification(router *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/payment/notification", strings.NewReader(body))
	router.ServeHTTP(w, req)
	return w
}

func TestPaymentNotificationMarksOrderPaid(t *testing.T) {
	service := &fakePaidService{}
	notifier := &fakeNotifier{}
	router := newWebhookRouter(service, notifier, succeededPayment("pay-123", "555"))

	body := `{
		"type": "notification",
		"event": "payment.succeeded",
		"object": {
			"id": "pay-123",
			"status": "succeeded",
			"paid": true,
			"metadata": {"order_id": "17", "user_id": "555"}
		}
	}`

	w := postNotification(router, body)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pay-123", service.paidPaymentID)
	assert.Equal(t, int64(555), notifier.telegramID)
	assert.Equal(t, uint(17), notifier.orderID)
}

func TestPaymentNotificationIgnoresOtherEvents(t *testing.T) {
	service := &fakePaidService{}
	router := newWebhookRouter(service, &fakeNotifier{}, &fakeChecker{})

	w := postNotification(router, `{"event": "payment.canceled", "object": {"id": "pay-1"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, service.paidPaymentID)
}

func TestPaymentNotificationSpoofedBody(t *testing.T) {
	// the body claims success, the gateway says the payment is pending
	service := &fakePaidService{}
	checker := &fakeChecker{payments: map[string]*payment.Payment{
		"pay-123": {ID: "pay-123", Status: "pending"},
	}}
	router := newWebhookRouter(service, &fakeNotifier{}, checker)

	w := postNotification(router, `{"event": "payment.succeeded", "object": {"id": "pay-123", "status": "succeeded"}}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, service.paidPaymentID)
}

func TestPaymentNotificationGatewayUnavailable(t *testing.T) {
	service := &fakePaidService{}
	checker := &fakeChecker{err: fmt.Errorf("connection refused")}
	router := newWebhookRouter(service, &fakeNotifier{}, checker)

	w := postNotification(router, `{"event": "payment.succeeded", "object": {"id": "pay-123"}}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, service.paidPaymentID)
}

func TestPaymentNotificationRedelivery(t *testing.T) {
	service := &fakePaidService{markErr: ErrOrderAlreadyPaid}
	notifier := &fakeNotifier{}
	router := newWebhookRouter(service, notifier, succeededPayment("pay-123", "555"))

	w := postNotification(router, `{"event": "payment.succeeded", "object": {"id": "pay-123"}}`)

	// a redelivered webhook is acknowledged but the buyer is not pinged again
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, notifier.telegramID)
}

func TestPaymentNotificationUnknownPayment(t *testing.T) {
	service := &fakePaidService{markErr: ErrOrderPaymentNotFound}
	router := newWebhookRouter(service, &fakeNotifier{}, succeededPayment("pay-unknown", "555"))

	w := postNotification(router, `{"event": "payment.succeeded", "object": {"id": "pay-unknown"}}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	router := newWebhookRouter(&fakePaidService{}, &fakeNotifier{}, &fakeChecker{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
