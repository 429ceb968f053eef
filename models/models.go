package models

import "time"

// State names the handler that should process the next message for a chat.
type State string

// The string values are what the session store actually holds. They are kept
// stable so sessions written by older deployments keep working.
const (
	StateStart       State = "START"
	StateMenu        State = "HANDLE_MENU"
	StateDescription State = "HANDLE_DESCRIPTION"
	StateCart        State = "HANDLE_CART"
	StateEmail       State = "WAITING_EMAIL"
)

// Valid reports whether s names a registered handler.
func (s State) Valid() bool {
	switch s {
	case StateStart, StateMenu, StateDescription, StateCart, StateEmail:
		return true
	}
	return false
}

// Session is one chat's conversation position. Only the Postgres session
// backend persists the full row; Redis stores the bare state string.
type Session struct {
	ChatID    int64  `gorm:"primaryKey"`
	State     string `gorm:"not null"`
	UpdatedAt time.Time
}

// Product is a catalog entry as the commerce backend reports it. Prices stay
// formatted strings end to end; the bot never does money arithmetic.
type Product struct {
	ID             string
	Name           string
	Description    string
	PriceFormatted string
	ImageFileID    string
}

// CartItem is one cart line. ID is the cart-item id (used for nothing here),
// ProductID is what remove buttons carry.
type CartItem struct {
	ID                 string
	ProductID          string
	Name               string
	Description        string
	Quantity           int
	UnitPriceFormatted string
	TotalFormatted     string
}

// CartSummary carries the cart-wide total with tax.
type CartSummary struct {
	TotalFormatted string
}

// Customer is the record created at checkout.
type Customer struct {
	ID    string
	Name  string
	Email string
}
