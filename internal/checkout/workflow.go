package checkout

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/akarpov/teleshop/internal/export"
	"github.com/akarpov/teleshop/internal/payment"
	"github.com/akarpov/teleshop/internal/shop"
)

type CheckoutLogHook struct{}

func (h *CheckoutLogHook) Fire(entry *logrus.Entry) error {
	entry.Message = "Checkout: " + entry.Message
	return nil
}

func (h *CheckoutLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

var (
	ErrNoActiveCheckout = errors.New("no active checkout session")
	ErrNotConfirmable   = errors.New("checkout is not awaiting confirmation")
)

// OrderStore is the slice of the shop service the workflow needs.
type OrderStore interface {
	CreateOrder(userID uint, totalPrice decimal.Decimal) (uint, error)
	UpdateOrderPaymentID(orderID uint, paymentID string) error
	CartItems(cartID uint) ([]shop.CartItem, error)
	CommitCheckout(orderID, cartID uint, delivery *shop.Delivery, items []shop.OrderItemSnapshot) error
}

type PaymentGateway interface {
	CreateOrderPayment(orderID uint, userID int64, total decimal.Decimal) (*payment.Payment, error)
}

type Ledger interface {
	AppendOrder(record export.OrderRecord) error
}

const (
	promptAddress      = "Введите адрес доставки:"
	promptPhone        = "Введите номер телефона:"
	promptPhoneRetry   = "Некорректный номер телефона. Введите номер в формате +79991234567:"
	promptComment      = "Комментарий к заказу (отправьте «-», если комментария нет):"
	promptDate         = "Введите дату доставки в формате ДД.ММ.ГГГГ:"
	promptDateRetry    = "Некорректная дата. Введите дату доставки в формате ДД.ММ.ГГГГ:"
	promptConfirmRetry = "Заказ ожидает подтверждения. Нажмите «Подтвердить заказ» или начните оформление заново."
)

// Workflow is the conversational checkout state machine. One session per
// Telegram user; transitions happen strictly in order.
type Workflow struct {
	sessions *SessionStore
	store    OrderStore
	gateway  PaymentGateway
	ledger   Ledger
	log      *logrus.Entry
}

func NewWorkflow(store OrderStore, gateway PaymentGateway, ledger Ledger, log *logrus.Entry) *Workflow {
	return &Workflow{
		sessions: NewSessionStore(),
		store:    store,
		gateway:  gateway,
		ledger:   ledger,
		log:      log,
	}
}

// Active reports whether the user has a checkout conversation in progress
// that consumes free-text input.
func (w *Workflow) Active(telegramID int64) bool {
	session, ok := w.sessions.Get(telegramID)
	return ok && session.State != StateIdle
}

// Start opens a checkout session: creates the order in state "new" with the
// cart total snapshot and asks for the delivery address. A previous stale
// session for the same user is overwritten.
func (w *Workflow) Start(telegramID int64, userID, cartID uint, total decimal.Decimal) (string, error) {
	orderID, err := w.store.CreateOrder(userID, total)
	if err != nil {
		w.log.Errorf("start: failed to create order for user %d - %v", telegramID, err)
		return "", err
	}

	w.sessions.Update(telegramID, func(s *Session) {
		*s = Session{
			State:      StateAwaitingAddress,
			OrderID:    orderID,
			CartID:     cartID,
			UserID:     userID,
			TotalPrice: total,
		}
	})

	w.log.Infof("start: order %d created for user %d, total %s", orderID, telegramID, total.StringFixed(2))
	return promptAddress, nil
}

// HandleInput feeds one free-text reply into the state machine and returns
// the next prompt. Validation failures re-prompt without advancing; input
// for a state the user has not reached is never accepted.
func (w *Workflow) HandleInput(telegramID int64, text string) (reply string, state State, err error) {
	session, ok := w.sessions.Get(telegramID)
	if !ok || session.State == StateIdle {
		return "", StateIdle, ErrNoActiveCheckout
	}

	text = strings.TrimSpace(text)

	switch session.State {
	case StateAwaitingAddress:
		if text == "" {
			return promptAddress, StateAwaitingAddress, nil
		}
		w.sessions.Update(telegramID, func(s *Session) {
			s.Address = text
			s.State = StateAwaitingPhone
		})
		return promptPhone, StateAwaitingPhone, nil

	case StateAwaitingPhone:
		if !ValidPhone(text) {
			return promptPhoneRetry, StateAwaitingPhone, nil
		}
		w.sessions.Update(telegramID, func(s *Session) {
			s.Phone = text
			s.State = StateAwaitingComment
		})
		return promptComment, StateAwaitingComment, nil

	case StateAwaitingComment:
		comment := text
		if comment == "-" {
			comment = ""
		}
		w.sessions.Update(telegramID, func(s *Session) {
			s.Comment = comment
			s.State = StateAwaitingDate
		})
		return promptDate, StateAwaitingDate, nil

	case StateAwaitingDate:
		date, err := ParseDeliveryDate(text)
		if err != nil {
			return promptDateRetry, StateAwaitingDate, nil
		}
		w.sessions.Update(telegramID, func(s *Session) {
			s.DeliveryDate = date
			s.State = StateAwaitingConfirmation
		})
		session, _ = w.sessions.Get(telegramID)
		return w.summary(session), StateAwaitingConfirmation, nil

	case StateAwaitingConfirmation:
		return promptConfirmRetry, StateAwaitingConfirmation, nil

	default:
		return "", session.State, ErrNoActiveCheckout
	}
}

func (w *Workflow) summary(s Session) string {
	comment := s.Comment
	if comment == "" {
		comment = "—"
	}
	return fmt.Sprintf(
		"Проверьте данные заказа:\n\n"+
			"Адрес: %s\n"+
			"Телефон: %s\n"+
			"Комментарий: %s\n"+
			"Дата доставки: %s\n"+
			"Сумма: %s",
		s.Address, s.Phone, comment, FormatDeliveryDate(s.DeliveryDate), s.TotalPrice.StringFixed(2))
}

// Confirm finishes the checkout: snapshots the cart, creates the payment
// session, commits delivery/status/stock/cart in one transaction, records
// the payment id and appends the audit ledger row. On success the session
// is discarded and the payment confirmation URL returned.
func (w *Workflow) Confirm(telegramID int64) (string, error) {
	session, ok := w.sessions.Get(telegramID)
	if !ok || session.State != StateAwaitingConfirmation {
		return "", ErrNotConfirmable
	}

	items, err := w.store.CartItems(session.CartID)
	if err != nil {
		w.log.Errorf("confirm: failed to read cart %d - %v", session.CartID, err)
		return "", err
	}

	// A cart emptied concurrently yields an empty snapshot: nothing to
	// decrement, the commit still goes through.
	snapshot := make([]shop.OrderItemSnapshot, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, shop.OrderItemSnapshot{
			ProductID: item.ProductID,
			Title:     item.Product.Title,
			Price:     item.Product.Price,
			Quantity:  item.Quantity,
		})
	}

	pay, err := w.gateway.CreateOrderPayment(session.OrderID, telegramID, session.TotalPrice)
	if err != nil {
		w.log.Errorf("confirm: failed to create payment for order %d - %v", session.OrderID, err)
		return "", err
	}
	if pay.Confirmation == nil || pay.Confirmation.ConfirmationURL == "" {
		w.log.Errorf("confirm: payment %s has no confirmation url", pay.ID)
		return "", fmt.Errorf("payment without confirmation url")
	}

	deliveryDate := session.DeliveryDate
	delivery := &shop.Delivery{
		Address:      session.Address,
		Phone:        session.Phone,
		Comment:      session.Comment,
		DeliveryDate: &deliveryDate,
	}

	if err := w.store.CommitCheckout(session.OrderID, session.CartID, delivery, snapshot); err != nil {
		w.log.Errorf("confirm: failed to commit order %d - %v", session.OrderID, err)
		return "", err
	}

	if err := w.store.UpdateOrderPaymentID(session.OrderID, pay.ID); err != nil {
		w.log.Errorf("confirm: failed to save payment id for order %d - %v", session.OrderID, err)
		return "", err
	}

	record := export.OrderRecord{
		OrderID:      session.OrderID,
		CreatedAt:    time.Now(),
		TelegramID:   telegramID,
		Phone:        session.Phone,
		Address:      session.Address,
		Comment:      session.Comment,
		DeliveryDate: FormatDeliveryDate(session.DeliveryDate),
		TotalPrice:   session.TotalPrice.StringFixed(2),
		Status:       shop.StatusProcessing,
		Items:        export.FormatItems(snapshot),
		PaymentID:    pay.ID,
	}
	if err := w.ledger.AppendOrder(record); err != nil {
		// record keeping is best effort, the order is already committed
		w.log.Errorf("confirm: failed to append ledger row for order %d - %v", session.OrderID, err)
	}

	w.sessions.Clear(telegramID)

	w.log.Infof("confirm: order %d committed, payment %s", session.OrderID, pay.ID)
	return pay.Confirmation.ConfirmationURL, nil
}
