package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/cexll/storefront-go/pkg/cart"
	"github.com/cexll/storefront-go/pkg/catalog"
	"github.com/cexll/storefront-go/pkg/rest"
)

var (
	// ErrEmptyCart indicates checkout was requested with nothing in the
	// cart. Callers redirect to the product listing.
	ErrEmptyCart = errors.New("state: cart is empty")
	// ErrCheckoutInFlight indicates a submission is already running; the
	// submit control stays disabled until it resolves.
	ErrCheckoutInFlight = errors.New("state: checkout already submitting")
	// ErrIncompleteShipping indicates required shipping fields are blank.
	ErrIncompleteShipping = errors.New("state: incomplete shipping address")
)

// CheckoutState tracks the submission lifecycle. Success and failure both
// return to Idle; failure leaves the cart untouched so the action can be
// retried.
type CheckoutState int

const (
	// CheckoutIdle means no submission is running.
	CheckoutIdle CheckoutState = iota
	// CheckoutSubmitting means an order request is in flight.
	CheckoutSubmitting
)

type checkoutGuard struct {
	mu    sync.Mutex
	state CheckoutState
}

func (g *checkoutGuard) begin() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == CheckoutSubmitting {
		return false
	}
	g.state = CheckoutSubmitting
	return true
}

func (g *checkoutGuard) end() {
	g.mu.Lock()
	g.state = CheckoutIdle
	g.mu.Unlock()
}

func (g *checkoutGuard) current() CheckoutState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// CheckoutState reports whether a submission is in flight, so the view can
// disable the submit control.
func (c *Controller) CheckoutState() CheckoutState {
	return c.checkout.current()
}

// Checkout submits an order built from the current cart snapshot and the
// shipping form. Preconditions are checked before anything is sent: the
// session must be authenticated, the cart non-empty and the shipping address
// complete. On success the cart is cleared (model and store) and the order
// summary returned. On failure the cart is left exactly as it was and the
// API error is surfaced; the controller returns to Idle so the caller can
// resubmit.
func (c *Controller) Checkout(ctx context.Context, shipping rest.ShippingAddress) (rest.OrderSummary, error) {
	sess := c.sessions.Current()
	if !sess.Authenticated() {
		return rest.OrderSummary{}, ErrNotAuthenticated
	}
	items := c.cart.Items()
	if len(items) == 0 {
		return rest.OrderSummary{}, ErrEmptyCart
	}
	trimmed := shipping.Trimmed()
	if missing := trimmed.MissingFields(); len(missing) > 0 {
		return rest.OrderSummary{}, fmt.Errorf("%w: missing %s", ErrIncompleteShipping, strings.Join(missing, ", "))
	}

	if !c.checkout.begin() {
		return rest.OrderSummary{}, ErrCheckoutInFlight
	}
	defer c.checkout.end()

	summary, err := c.api.CreateOrder(ctx, buildOrderRequest(sess.UserID, items, trimmed))
	if err != nil {
		return rest.OrderSummary{}, err
	}
	if err := c.cart.Clear(); err != nil {
		// The order is already placed; a failed cart write only risks the
		// stale cart reappearing on next startup.
		c.logger.Printf("state: clear cart after order %s: %v", summary.OrderID, err)
	}
	return summary, nil
}

func buildOrderRequest(userID catalog.ID, items []cart.LineItem, shipping rest.ShippingAddress) rest.OrderRequest {
	orderItems := make([]rest.OrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, rest.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     item.Price,
		})
	}
	return rest.OrderRequest{
		UserID:   userID,
		Items:    orderItems,
		Shipping: shipping,
	}
}
