package rest

import (
	"fmt"
	"strings"

	"github.com/cexll/storefront-go/pkg/catalog"
)

// Credentials carries a password login request.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries the fields for creating a new account.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResult is the response to a successful registration.
type RegisterResult struct {
	UserID  catalog.ID `json:"userId"`
	Message string     `json:"message,omitempty"`
}

// AuthResult is the response shape shared by password and OAuth logins.
type AuthResult struct {
	UserID catalog.ID `json:"userId"`
	Name   string     `json:"name"`
	Token  string     `json:"token"`
}

// Profile is the account profile served by the profile endpoints. Email is
// immutable server-side.
type Profile struct {
	ID      catalog.ID `json:"id,omitempty"`
	Name    string     `json:"name"`
	Email   string     `json:"email"`
	Phone   string     `json:"phone,omitempty"`
	Address string     `json:"address,omitempty"`
	City    string     `json:"city,omitempty"`
	State   string     `json:"state,omitempty"`
	Zip     string     `json:"zip,omitempty"`
	Country string     `json:"country,omitempty"`
}

// OrderItem is one line of an order request, mapped from a cart line item.
type OrderItem struct {
	ProductID catalog.ID `json:"productId"`
	Quantity  int        `json:"quantity"`
	Price     float64    `json:"price"`
}

// ShippingAddress holds the checkout shipping form fields.
type ShippingAddress struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Country string `json:"country"`
	Phone   string `json:"phone"`
}

// Trimmed returns a copy with surrounding whitespace removed from every
// field.
func (s ShippingAddress) Trimmed() ShippingAddress {
	return ShippingAddress{
		Name:    strings.TrimSpace(s.Name),
		Address: strings.TrimSpace(s.Address),
		City:    strings.TrimSpace(s.City),
		State:   strings.TrimSpace(s.State),
		Zip:     strings.TrimSpace(s.Zip),
		Country: strings.TrimSpace(s.Country),
		Phone:   strings.TrimSpace(s.Phone),
	}
}

// MissingFields lists the required shipping fields that are blank. The order
// service rejects orders missing any of them.
func (s ShippingAddress) MissingFields() []string {
	var missing []string
	for _, field := range []struct {
		name  string
		value string
	}{
		{"name", s.Name},
		{"address", s.Address},
		{"city", s.City},
		{"state", s.State},
		{"zip", s.Zip},
		{"country", s.Country},
		{"phone", s.Phone},
	} {
		if strings.TrimSpace(field.value) == "" {
			missing = append(missing, field.name)
		}
	}
	return missing
}

// OrderRequest is the create-order payload.
type OrderRequest struct {
	UserID   catalog.ID      `json:"userId"`
	Items    []OrderItem     `json:"items"`
	Shipping ShippingAddress `json:"shipping"`
}

// OrderSummary is the response to a successful order submission.
type OrderSummary struct {
	OrderID     catalog.ID `json:"orderId"`
	TotalAmount float64    `json:"totalAmount"`
	Message     string     `json:"message,omitempty"`
}

// Order is one row from the user's order history.
type Order struct {
	ID          catalog.ID  `json:"id"`
	UserID      catalog.ID  `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	Status      string      `json:"status"`
	CreatedAt   string      `json:"created_at,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`

	ShippingName    string `json:"shipping_name,omitempty"`
	ShippingAddress string `json:"shipping_address,omitempty"`
	ShippingCity    string `json:"shipping_city,omitempty"`
	ShippingState   string `json:"shipping_state,omitempty"`
	ShippingZip     string `json:"shipping_zip,omitempty"`
	ShippingCountry string `json:"shipping_country,omitempty"`
	ShippingPhone   string `json:"shipping_phone,omitempty"`
}

// StatusPending is the only order status that allows cancellation.
const StatusPending = "pending"

// APIError is a non-2xx response from the storefront API. Message carries
// the server-provided error text, or a generic fallback when the body had
// none.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("rest: api error (status %d): %s", e.Status, e.Message)
}
