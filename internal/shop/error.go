package shop

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrCartNotFound         = errors.New("cart not found")
	ErrProductNotFound      = errors.New("product not found")
	ErrOrderNotFound        = errors.New("order not found")
	ErrInsufficientStock    = errors.New("insufficient product stock")
	ErrInvalidQuantity      = errors.New("quantity must be positive")
	ErrOrderPaymentNotFound = errors.New("order with payment id not found")
	ErrOrderAlreadyPaid     = errors.New("order already paid")
)
