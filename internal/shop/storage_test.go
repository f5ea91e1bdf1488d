package shop

import (
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestStorage(t *testing.T) (Storage, *gorm.DB) {
	// a named in-memory database, so every pooled connection sees the
	// same schema
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, RunMigration(db))
	return NewStorage(db), db
}

func seedProduct(t *testing.T, db *gorm.DB, title string, price decimal.Decimal, stock uint) *Product {
	product := Product{
		Title: title,
		Slug:  fmt.Sprintf("%s-%d", title, stock),
		Price: price,
		Stock: stock,
	}
	require.NoError(t, db.Create(&product).Error)
	return &product
}

func seedCheckout(t *testing.T, storage Storage) (orderID, cartID uint) {
	user, err := storage.GetOrCreateUser(555, "buyer", "Иван", "")
	require.NoError(t, err)

	cart, err := storage.GetOrCreateCart(user.ID)
	require.NoError(t, err)

	orderID, err = storage.CreateOrder(user.ID, decimal.RequireFromString("200.00"))
	require.NoError(t, err)
	return orderID, cart.ID
}

func deliveryDate(t *testing.T, value string) *time.Time {
	parsed, err := time.Parse("02.01.2006", value)
	require.NoError(t, err)
	return &parsed
}

func TestCommitCheckout(t *testing.T) {
	storage, db := newTestStorage(t)
	product := seedProduct(t, db, "tea", decimal.RequireFromString("100.00"), 5)
	orderID, cartID := seedCheckout(t, storage)
	require.NoError(t, storage.UpsertCartItem(cartID, product.ID, 2))

	delivery := &Delivery{
		Address:      "Москва, Тверская 1",
		Phone:        "+79161234567",
		DeliveryDate: deliveryDate(t, "15.05.2026"),
	}
	items := []OrderItemSnapshot{
		{ProductID: product.ID, Title: product.Title, Price: product.Price, Quantity: 2},
	}

	require.NoError(t, storage.CommitCheckout(orderID, cartID, delivery, items))

	var order Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, StatusProcessing, order.Status)

	var stored Product
	require.NoError(t, db.First(&stored, product.ID).Error)
	assert.Equal(t, uint(3), stored.Stock)

	var saved Delivery
	require.NoError(t, db.Where("order_id = ?", orderID).First(&saved).Error)
	assert.Equal(t, "Москва, Тверская 1", saved.Address)
	assert.Equal(t, "+79161234567", saved.Phone)

	remaining, err := storage.CartItems(cartID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestCommitCheckoutInsufficientStock(t *testing.T) {
	storage, db := newTestStorage(t)
	plenty := seedProduct(t, db, "tea", decimal.RequireFromString("100.00"), 5)
	scarce := seedProduct(t, db, "coffee", decimal.RequireFromString("50.00"), 1)
	orderID, cartID := seedCheckout(t, storage)
	require.NoError(t, storage.UpsertCartItem(cartID, plenty.ID, 2))
	require.NoError(t, storage.UpsertCartItem(cartID, scarce.ID, 2))

	items := []OrderItemSnapshot{
		{ProductID: plenty.ID, Title: plenty.Title, Price: plenty.Price, Quantity: 2},
		{ProductID: scarce.ID, Title: scarce.Title, Price: scarce.Price, Quantity: 2},
	}

	err := storage.CommitCheckout(orderID, cartID, &Delivery{Address: "a"}, items)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// the whole transaction rolls back, including the decrement that fit
	var stored Product
	require.NoError(t, db.First(&stored, plenty.ID).Error)
	assert.Equal(t, uint(5), stored.Stock)
	// fresh struct: gorm treats a non-zero primary key on the dest as an
	// extra query condition, so reusing `stored` would find no rows
	var storedScarce Product
	require.NoError(t, db.First(&storedScarce, scarce.ID).Error)
	assert.Equal(t, uint(1), storedScarce.Stock)

	var order Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, StatusNew, order.Status)

	var deliveries int64
	require.NoError(t, db.Model(&Delivery{}).Where("order_id = ?", orderID).Count(&deliveries).Error)
	assert.Zero(t, deliveries)

	remaining, err := storage.CartItems(cartID)
	require.NoError(t, err)
	assert.Len(t, remaining, 2)
}

func TestCommitCheckoutEmptySnapshot(t *testing.T) {
	storage, db := newTestStorage(t)
	orderID, cartID := seedCheckout(t, storage)

	require.NoError(t, storage.CommitCheckout(orderID, cartID, &Delivery{Address: "a"}, nil))

	var order Order
	require.NoError(t, db.First(&order, orderID).Error)
	assert.Equal(t, StatusProcessing, order.Status)
}

func TestCommitCheckoutRequiresNewStatus(t *testing.T) {
	storage, db := newTestStorage(t)
	orderID, cartID := seedCheckout(t, storage)
	require.NoError(t, db.Model(&Order{}).Where("id = ?", orderID).
		Update("status", StatusProcessing).Error)

	err := storage.CommitCheckout(orderID, cartID, &Delivery{Address: "a"}, nil)
	require.ErrorIs(t, err, ErrOrderNotFound)

	var deliveries int64
	require.NoError(t, db.Model(&Delivery{}).Where("order_id = ?", orderID).Count(&deliveries).Error)
	assert.Zero(t, deliveries)
}

func TestUpsertCartItemOverwritesQuantity(t *testing.T) {
	storage, db := newTestStorage(t)
	product := seedProduct(t, db, "tea", decimal.RequireFromString("100.00"), 5)
	_, cartID := seedCheckout(t, storage)

	require.NoError(t, storage.UpsertCartItem(cartID, product.ID, 2))
	require.NoError(t, storage.UpsertCartItem(cartID, product.ID, 2))

	items, err := storage.CartItems(cartID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(2), items[0].Quantity)

	// quantities overwrite, they do not accumulate
	require.NoError(t, storage.UpsertCartItem(cartID, product.ID, 5))

	items, err = storage.CartItems(cartID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, uint(5), items[0].Quantity)
}

func TestClearCartIsIdempotent(t *testing.T) {
	storage, db := newTestStorage(t)
	product := seedProduct(t, db, "tea", decimal.RequireFromString("100.00"), 5)
	_, cartID := seedCheckout(t, storage)

	require.NoError(t, storage.ClearCart(cartID))

	require.NoError(t, storage.UpsertCartItem(cartID, product.ID, 1))
	require.NoError(t, storage.ClearCart(cartID))
	require.NoError(t, storage.ClearCart(cartID))

	items, err := storage.CartItems(cartID)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, storage.RemoveCartItem(9999))
}

func TestMarkOrderPaidOnce(t *testing.T) {
	storage, _ := newTestStorage(t)
	orderID, _ := seedCheckout(t, storage)
	require.NoError(t, storage.UpdateOrderPaymentID(orderID, "pay-123"))

	order, err := storage.MarkOrderPaid("pay-123")
	require.NoError(t, err)
	require.NotNil(t, order.PaidAt)

	_, err = storage.MarkOrderPaid("pay-123")
	assert.ErrorIs(t, err, ErrOrderAlreadyPaid)
}
