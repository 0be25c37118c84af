package market

import "errors"

var (
	ErrItemNotFound      = errors.New("item not found")
	ErrLineNotFound      = errors.New("item not found in cart")
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInsufficientStock = errors.New("quantity exceeds available stock")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrInvalidCode       = errors.New("invalid code")
	ErrNotBuyer          = errors.New("not the buyer of this order")
	ErrInvalidCategory   = errors.New("invalid category")
	ErrInvalidItem       = errors.New("item name must be set and price and stock non-negative")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
)
