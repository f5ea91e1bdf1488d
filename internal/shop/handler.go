package shop

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/akarpov/teleshop/internal/payment"
)

// PaidNotifier pushes a payment confirmation back to the user through the
// messaging transport.
type PaidNotifier interface {
	NotifyPaid(telegramID int64, orderID uint)
}

// PaymentChecker looks a payment up at the gateway. The webhook body is not
// authenticated, so the order is marked paid only after the gateway itself
// confirms the payment succeeded.
type PaymentChecker interface {
	GetPayment(paymentID string) (*payment.Payment, int, error)
}

type shopHandler struct {
	log      *logrus.Entry
	service  ShopService
	notifier PaidNotifier
	checker  PaymentChecker
}

func NewHandler(service ShopService, notifier PaidNotifier, checker PaymentChecker, log *logrus.Entry) *shopHandler {
	return &shopHandler{
		log:      log,
		service:  service,
		notifier: notifier,
		checker:  checker,
	}
}

func (h *shopHandler) Register(router *gin.Engine) {
	router.GET("/health", h.health)
	router.POST("/payment/notification", h.paymentNotification)
}

func (h *shopHandler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// paymentNotification receives gateway webhook events and marks the matching
// order as paid on payment.succeeded.
func (h *shopHandler) paymentNotification(c *gin.Context) {
	var notification payment.Notification
	if err := c.ShouldBindJSON(&notification); err != nil {
		h.log.Errorf("paymentNotification: failed to decode body - %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if notification.Event != payment.EventPaymentSucceeded {
		c.Status(http.StatusOK)
		return
	}

	confirmed, _, err := h.checker.GetPayment(notification.Object.ID)
	if err != nil {
		h.log.Errorf("paymentNotification: failed to verify payment %s at gateway - %v", notification.Object.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "payment verification failed"})
		return
	}
	if confirmed.Status != payment.StatusSucceeded {
		h.log.Warnf("paymentNotification: payment %s is %s at the gateway, skipping", notification.Object.ID, confirmed.Status)
		c.Status(http.StatusOK)
		return
	}

	order, err := h.service.MarkOrderPaid(notification.Object.ID)
	if err != nil {
		switch err {
		case ErrOrderAlreadyPaid:
			c.Status(http.StatusOK)
		case ErrOrderPaymentNotFound:
			h.log.Warnf("paymentNotification: unknown payment id %s", notification.Object.ID)
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		default:
			h.log.Errorf("paymentNotification: failed to mark order paid - %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	h.log.Infof("paymentNotification: order %d paid, payment %s", order.ID, notification.Object.ID)

	if confirmed.Metadata != nil && h.notifier != nil {
		telegramID, err := strconv.ParseInt(confirmed.Metadata.UserID, 10, 64)
		if err == nil {
			h.notifier.NotifyPaid(telegramID, order.ID)
		}
	}

	c.Status(http.StatusOK)
}
