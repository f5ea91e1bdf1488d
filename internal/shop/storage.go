package shop

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Storage interface {
	GetOrCreateUser(telegramID int64, username, firstName, lastName string) (*TelegramUser, error)
	GetUserByTelegramID(telegramID int64) (*TelegramUser, error)

	CategoriesPage(page, size int) ([]Category, bool, error)
	SubcategoriesPage(categoryID uint, page, size int) ([]Subcategory, bool, error)
	ProductsPage(subcategoryID uint, page, size int) ([]Product, bool, error)
	GetProductByID(productID uint) (*Product, error)

	GetOrCreateCart(userID uint) (*Cart, error)
	UpsertCartItem(cartID, productID, quantity uint) error
	CartItems(cartID uint) ([]CartItem, error)
	RemoveCartItem(itemID uint) error
	ClearCart(cartID uint) error

	CreateOrder(userID uint, totalPrice decimal.Decimal) (uint, error)
	UpdateOrderPaymentID(orderID uint, paymentID string) error
	GetOrderByPaymentID(paymentID string) (*Order, error)
	MarkOrderPaid(paymentID string) (*Order, error)

	CommitCheckout(orderID, cartID uint, delivery *Delivery, items []OrderItemSnapshot) error
}

// OrderItemSnapshot is the cart state captured at confirmation time, used for
// the stock decrement and the audit ledger row.
type OrderItemSnapshot struct {
	ProductID uint
	Title     string
	Price     decimal.Decimal
	Quantity  uint
}

type ShopStorage struct {
	db *gorm.DB
}

func NewStorage(db *gorm.DB) Storage {
	return &ShopStorage{
		db: db,
	}
}

func (s *ShopStorage) GetOrCreateUser(telegramID int64, username, firstName, lastName string) (*TelegramUser, error) {
	var user TelegramUser
	err := s.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	user = TelegramUser{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
	}
	if err := s.db.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user - %s", err)
	}
	return &user, nil
}

func (s *ShopStorage) GetUserByTelegramID(telegramID int64) (*TelegramUser, error) {
	var user TelegramUser
	err := s.db.Where("telegram_id = ?", telegramID).First(&user).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (s *ShopStorage) CategoriesPage(page, size int) ([]Category, bool, error) {
	var categories []Category
	err := s.db.Where("is_active = ?", true).Order("id").
		Offset((page - 1) * size).Limit(size + 1).Find(&categories).Error
	if err != nil {
		return nil, false, err
	}
	return trimPage(categories, size)
}

func (s *ShopStorage) SubcategoriesPage(categoryID uint, page, size int) ([]Subcategory, bool, error) {
	var subcategories []Subcategory
	err := s.db.Where("category_id = ? AND is_active = ?", categoryID, true).Order("id").
		Offset((page - 1) * size).Limit(size + 1).Find(&subcategories).Error
	if err != nil {
		return nil, false, err
	}
	return trimPage(subcategories, size)
}

func (s *ShopStorage) ProductsPage(subcategoryID uint, page, size int) ([]Product, bool, error) {
	var products []Product
	err := s.db.Where("subcategory_id = ? AND is_active = ?", subcategoryID, true).Order("id").
		Offset((page - 1) * size).Limit(size + 1).Find(&products).Error
	if err != nil {
		return nil, false, err
	}
	return trimPage(products, size)
}

// trimPage fetches size+1 rows, so the extra row tells whether a next page exists.
func trimPage[T any](rows []T, size int) ([]T, bool, error) {
	if len(rows) > size {
		return rows[:size], true, nil
	}
	return rows, false, nil
}

func (s *ShopStorage) GetProductByID(productID uint) (*Product, error) {
	var product Product
	err := s.db.First(&product, productID).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *ShopStorage) GetOrCreateCart(userID uint) (*Cart, error) {
	var user TelegramUser
	if err := s.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var cart Cart
	err := s.db.Where("user_id = ?", userID).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	cart = Cart{UserID: userID}
	if err := s.db.Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("failed to create cart - %s", err)
	}
	return &cart, nil
}

func (s *ShopStorage) UpsertCartItem(cartID, productID, quantity uint) error {
	var item CartItem
	err := s.db.Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return err
		}
		item = CartItem{
			CartID:    cartID,
			ProductID: productID,
			Quantity:  quantity,
		}
		return s.db.Create(&item).Error
	}

	item.Quantity = quantity
	return s.db.Save(&item).Error
}

func (s *ShopStorage) CartItems(cartID uint) ([]CartItem, error) {
	var items []CartItem
	err := s.db.Preload("Product").Where("cart_id = ?", cartID).Order("id").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *ShopStorage) RemoveCartItem(itemID uint) error {
	// idempotent: deleting a missing item is a no-op
	return s.db.Delete(&CartItem{}, itemID).Error
}

func (s *ShopStorage) ClearCart(cartID uint) error {
	return s.db.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error
}

func (s *ShopStorage) CreateOrder(userID uint, totalPrice decimal.Decimal) (uint, error) {
	order := Order{
		UserID:     userID,
		Status:     StatusNew,
		TotalPrice: totalPrice,
	}
	result := s.db.Create(&order)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to create order - %s", result.Error)
	}
	return order.ID, nil
}

func (s *ShopStorage) UpdateOrderPaymentID(orderID uint, paymentID string) error {
	result := s.db.Model(&Order{}).Where("id = ?", orderID).Update("payment_id", paymentID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

func (s *ShopStorage) GetOrderByPaymentID(paymentID string) (*Order, error) {
	var order Order
	err := s.db.Where("payment_id = ?", paymentID).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrOrderPaymentNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (s *ShopStorage) MarkOrderPaid(paymentID string) (*Order, error) {
	order, err := s.GetOrderByPaymentID(paymentID)
	if err != nil {
		return nil, err
	}
	// webhooks get redelivered, the first paid_at wins
	if order.PaidAt != nil {
		return nil, ErrOrderAlreadyPaid
	}

	now := time.Now()
	result := s.db.Model(&Order{}).Where("id = ?", order.ID).Update("paid_at", now)
	if result.Error != nil {
		return nil, result.Error
	}
	order.PaidAt = &now
	return order, nil
}

// CommitCheckout runs the confirmation sequence in a single transaction:
// delivery write, new -> processing, guarded stock decrements, cart clear.
// Stock is decremented only where stock >= quantity, so a low-stock race
// fails the whole transaction with ErrInsufficientStock instead of driving
// stock negative.
func (s *ShopStorage) CommitCheckout(orderID, cartID uint, delivery *Delivery, items []OrderItemSnapshot) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		delivery.OrderID = orderID
		if err := tx.Create(delivery).Error; err != nil {
			return fmt.Errorf("failed to create delivery - %s", err)
		}

		result := tx.Model(&Order{}).Where("id = ? AND status = ?", orderID, StatusNew).
			Update("status", StatusProcessing)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrOrderNotFound
		}

		for _, item := range items {
			result := tx.Model(&Product{}).
				Where("id = ? AND stock >= ?", item.ProductID, item.Quantity).
				Update("stock", gorm.Expr("stock - ?", item.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		if err := tx.Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
			return err
		}

		return nil
	})
}
