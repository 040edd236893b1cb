// Package cart implements the client-side shopping cart: an ordered list of
// line items mirrored to a persistent store on every mutation.
package cart

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/cexll/storefront-go/pkg/catalog"
	"github.com/cexll/storefront-go/pkg/store"
)

// StoreKey is the fixed persistence key for the serialized cart.
const StoreKey = "cart"

// LineItem is one product entry in the cart. The JSON shape matches the
// persisted cart blob: the raw product fields plus a quantity.
type LineItem struct {
	ProductID catalog.ID `json:"id"`
	Name      string     `json:"name"`
	Price     float64    `json:"price"`
	ImageURL  string     `json:"image_url,omitempty"`
	Quantity  int        `json:"quantity"`
}

// Subtotal returns price * quantity for the line.
func (li LineItem) Subtotal() float64 { return li.Price * float64(li.Quantity) }

// Cart holds the in-memory line items and re-serializes them to the backing
// store after every mutation. At most one line item exists per product, and
// quantity never drops below 1.
type Cart struct {
	store  store.Store
	logger *log.Logger

	mu    sync.Mutex
	items []LineItem
}

// Option customizes a Cart.
type Option func(*Cart)

// WithLogger overrides the logger used for parse-recovery messages.
func WithLogger(logger *log.Logger) Option {
	return func(c *Cart) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty cart bound to st. Call Load to pick up persisted
// state.
func New(st store.Store, opts ...Option) *Cart {
	c := &Cart{store: st, logger: log.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load initializes the cart from the store. Parsing is best-effort: a
// missing key or corrupt blob yields an empty cart, logged but never
// surfaced as an error.
func (c *Cart) Load() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	raw, ok := c.store.Get(StoreKey)
	if !ok || raw == "" {
		return
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Printf("cart: discarding unreadable persisted cart: %v", err)
		return
	}
	for i := range items {
		if items[i].Quantity < 1 {
			items[i].Quantity = 1
		}
	}
	c.items = items
}

// Add puts product in the cart. An existing line for the same product has
// its quantity incremented by 1; otherwise a new line with quantity 1 is
// appended.
func (c *Cart) Add(p catalog.Product) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == p.ID {
			c.items[i].Quantity++
			return c.persistLocked()
		}
	}
	c.items = append(c.items, LineItem{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		ImageURL:  p.ImageURL,
		Quantity:  1,
	})
	return c.persistLocked()
}

// UpdateQuantity adjusts the quantity of the line for productID by delta,
// clamped so it never drops below 1. Unknown products are a no-op; removal
// is a separate operation.
func (c *Cart) UpdateQuantity(productID catalog.ID, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			next := c.items[i].Quantity + delta
			if next < 1 {
				next = 1
			}
			c.items[i].Quantity = next
			return c.persistLocked()
		}
	}
	return nil
}

// Remove deletes the line for productID if present.
func (c *Cart) Remove(productID catalog.ID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.items {
		if c.items[i].ProductID == productID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return c.persistLocked()
		}
	}
	return nil
}

// Clear empties the cart, in memory and in the store.
func (c *Cart) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = nil
	return c.persistLocked()
}

// Drop empties the cart and removes the persisted key entirely, rather than
// writing an empty list. Used by logout, which cannot fail: removal errors
// are swallowed.
func (c *Cart) Drop() {
	c.mu.Lock()
	c.items = nil
	c.mu.Unlock()
	_ = c.store.Remove(StoreKey)
}

// Items returns a copy of the current line items in insertion order.
func (c *Cart) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]LineItem(nil), c.items...)
}

// Len returns the number of distinct line items.
func (c *Cart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Total sums price * quantity over all lines. The exact value is kept;
// rounding to currency precision happens only at presentation time.
func (c *Cart) Total() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	var total float64
	for _, item := range c.items {
		total += item.Subtotal()
	}
	return total
}

// FormatTotal renders the total rounded to two decimal places.
func (c *Cart) FormatTotal() string {
	return fmt.Sprintf("%.2f", c.Total())
}

func (c *Cart) persistLocked() error {
	items := c.items
	if items == nil {
		items = []LineItem{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart: encode: %w", err)
	}
	if err := c.store.Set(StoreKey, string(payload)); err != nil {
		return fmt.Errorf("cart: persist: %w", err)
	}
	return nil
}
