package shop

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

type TelegramUser struct {
	gorm.Model
	TelegramID int64 `gorm:"uniqueIndex"`
	Username   string
	FirstName  string
	LastName   string
}

type Category struct {
	gorm.Model
	Title    string
	Slug     string `gorm:"uniqueIndex"`
	Image    string
	IsActive bool `gorm:"default:true"`
}

type Subcategory struct {
	gorm.Model
	CategoryID uint     `gorm:"index"`
	Category   Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title      string
	Slug       string `gorm:"uniqueIndex"`
	IsActive   bool   `gorm:"default:true"`
}

type Product struct {
	gorm.Model
	SubcategoryID uint        `gorm:"index"`
	Subcategory   Subcategory `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Title         string
	Slug          string `gorm:"uniqueIndex"`
	Description   string
	Image         string
	Price         decimal.Decimal `gorm:"type:numeric(10,2)"`
	Stock         uint
	IsActive      bool `gorm:"default:true"`
}

type Cart struct {
	gorm.Model
	UserID uint         `gorm:"uniqueIndex"`
	User   TelegramUser `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Items  []CartItem   `gorm:"constraint:OnDelete:CASCADE;"`
}

type CartItem struct {
	gorm.Model
	CartID    uint `gorm:"index"`
	ProductID uint
	Product   Product
	Quantity  uint
}

type Order struct {
	gorm.Model
	UserID     uint `gorm:"index"`
	User       TelegramUser
	Status     string          `gorm:"type:varchar(20);default:'new'"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2)"`
	PaymentID  string          `gorm:"index"`
	PaidAt     *time.Time
}

type Delivery struct {
	gorm.Model
	OrderID      uint  `gorm:"uniqueIndex"`
	Order        Order `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Address      string
	Phone        string
	Comment      string
	DeliveryDate *time.Time
}
