package shop

import (
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type ShopService interface {
	RegisterUser(telegramID int64, username, firstName, lastName string) (*TelegramUser, error)
	GetUserByTelegramID(telegramID int64) (*TelegramUser, error)

	CategoriesPage(page int) ([]Category, bool, error)
	SubcategoriesPage(categoryID uint, page int) ([]Subcategory, bool, error)
	ProductsPage(subcategoryID uint, page int) ([]Product, bool, error)
	GetProductByID(productID uint) (*Product, error)

	GetOrCreateCart(telegramID int64) (*Cart, error)
	UpsertCartItem(cartID, productID, quantity uint) error
	CartItems(cartID uint) ([]CartItem, error)
	RemoveCartItem(itemID uint) error
	ClearCart(cartID uint) error
	CartTotal(items []CartItem) decimal.Decimal

	CreateOrder(userID uint, totalPrice decimal.Decimal) (uint, error)
	UpdateOrderPaymentID(orderID uint, paymentID string) error
	MarkOrderPaid(paymentID string) (*Order, error)
	CommitCheckout(orderID, cartID uint, delivery *Delivery, items []OrderItemSnapshot) error
}

type shopService struct {
	storage  Storage
	pageSize int
	logger   *logrus.Entry
}

func NewService(storage Storage, pageSize int, log *logrus.Entry) ShopService {
	return &shopService{
		storage:  storage,
		pageSize: pageSize,
		logger:   log,
	}
}

func (s *shopService) RegisterUser(telegramID int64, username, firstName, lastName string) (*TelegramUser, error) {
	return s.storage.GetOrCreateUser(telegramID, username, firstName, lastName)
}

func (s *shopService) GetUserByTelegramID(telegramID int64) (*TelegramUser, error) {
	return s.storage.GetUserByTelegramID(telegramID)
}

func (s *shopService) CategoriesPage(page int) ([]Category, bool, error) {
	if page < 1 {
		page = 1
	}
	return s.storage.CategoriesPage(page, s.pageSize)
}

func (s *shopService) SubcategoriesPage(categoryID uint, page int) ([]Subcategory, bool, error) {
	if page < 1 {
		page = 1
	}
	return s.storage.SubcategoriesPage(categoryID, page, s.pageSize)
}

func (s *shopService) ProductsPage(subcategoryID uint, page int) ([]Product, bool, error) {
	if page < 1 {
		page = 1
	}
	return s.storage.ProductsPage(subcategoryID, page, s.pageSize)
}

func (s *shopService) GetProductByID(productID uint) (*Product, error) {
	return s.storage.GetProductByID(productID)
}

func (s *shopService) GetOrCreateCart(telegramID int64) (*Cart, error) {
	user, err := s.storage.GetUserByTelegramID(telegramID)
	if err != nil {
		return nil, err
	}
	return s.storage.GetOrCreateCart(user.ID)
}

func (s *shopService) UpsertCartItem(cartID, productID, quantity uint) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}
	return s.storage.UpsertCartItem(cartID, productID, quantity)
}

func (s *shopService) CartItems(cartID uint) ([]CartItem, error) {
	return s.storage.CartItems(cartID)
}

func (s *shopService) RemoveCartItem(itemID uint) error {
	return s.storage.RemoveCartItem(itemID)
}

func (s *shopService) ClearCart(cartID uint) error {
	return s.storage.ClearCart(cartID)
}

// CartTotal sums price*quantity with exact decimal arithmetic.
func (s *shopService) CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (s *shopService) CreateOrder(userID uint, totalPrice decimal.Decimal) (uint, error) {
	return s.storage.CreateOrder(userID, totalPrice)
}

func (s *shopService) UpdateOrderPaymentID(orderID uint, paymentID string) error {
	return s.storage.UpdateOrderPaymentID(orderID, paymentID)
}

func (s *shopService) MarkOrderPaid(paymentID string) (*Order, error) {
	return s.storage.MarkOrderPaid(paymentID)
}

func (s *shopService) CommitCheckout(orderID, cartID uint, delivery *Delivery, items []OrderItemSnapshot) error {
	return s.storage.CommitCheckout(orderID, cartID, delivery, items)
}
