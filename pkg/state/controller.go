// Package state implements the session and cart controller: the single owner
// of the authenticated session and the shopping cart. Views read snapshots
// and request mutations through its methods; nothing else touches the
// persistent store.
package state

import (
	"context"
	"errors"
	"log"

	"github.com/cexll/storefront-go/pkg/account"
	"github.com/cexll/storefront-go/pkg/cart"
	"github.com/cexll/storefront-go/pkg/catalog"
	"github.com/cexll/storefront-go/pkg/rest"
	"github.com/cexll/storefront-go/pkg/store"
	"github.com/cexll/storefront-go/pkg/telemetry"
)

var (
	// ErrNotAuthenticated indicates the operation needs a signed-in user.
	// Callers redirect to the login view.
	ErrNotAuthenticated = errors.New("state: not authenticated")
	// ErrMissingStore indicates the controller was built without a store.
	ErrMissingStore = errors.New("state: store is required")
	// ErrMissingAPI indicates the controller was built without an API client.
	ErrMissingAPI = errors.New("state: api client is required")
)

// API is the slice of the storefront REST surface the controller drives.
// *rest.Client satisfies it.
type API interface {
	Register(ctx context.Context, reg rest.Registration) (rest.RegisterResult, error)
	Login(ctx context.Context, creds rest.Credentials) (rest.AuthResult, error)
	GoogleLogin(ctx context.Context, idToken string) (rest.AuthResult, error)
	Profile(ctx context.Context, userID catalog.ID) (rest.Profile, error)
	UpdateProfile(ctx context.Context, userID catalog.ID, profile rest.Profile) error
	CreateOrder(ctx context.Context, req rest.OrderRequest) (rest.OrderSummary, error)
	UserOrders(ctx context.Context, userID catalog.ID) ([]rest.Order, error)
	CancelOrder(ctx context.Context, orderID catalog.ID) error
}

var _ API = (*rest.Client)(nil)

// Options configures a Controller.
type Options struct {
	// Store backs session and cart persistence. Required.
	Store store.Store
	// API is the storefront REST client. Required.
	API API
	// Sessions overrides the session manager built from Store.
	Sessions *account.Manager
	// Cart overrides the cart built from Store.
	Cart *cart.Cart
	// Logger receives recovery messages. Defaults to the standard logger.
	Logger *log.Logger
}

// Controller owns the session and cart models and orchestrates their
// lifecycle against the storefront API.
type Controller struct {
	sessions *account.Manager
	cart     *cart.Cart
	api      API
	logger   *log.Logger

	checkout checkoutGuard
}

// Snapshot is the combined read-only view state.
type Snapshot struct {
	Session account.Session
	Items   []cart.LineItem
	Total   float64
}

// New builds a controller from opts.
func New(opts Options) (*Controller, error) {
	if opts.Store == nil && (opts.Sessions == nil || opts.Cart == nil) {
		return nil, ErrMissingStore
	}
	if opts.API == nil {
		return nil, ErrMissingAPI
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	sessions := opts.Sessions
	if sessions == nil {
		sessions = account.NewManager(opts.Store)
	}
	shoppingCart := opts.Cart
	if shoppingCart == nil {
		shoppingCart = cart.New(opts.Store, cart.WithLogger(logger))
	}
	return &Controller{
		sessions: sessions,
		cart:     shoppingCart,
		api:      opts.API,
		logger:   logger,
	}, nil
}

// Restore initializes session and cart from the store. Call once at startup.
func (c *Controller) Restore() Snapshot {
	c.sessions.Restore()
	c.cart.Load()
	return c.Snapshot()
}

// Session returns a snapshot of the active session.
func (c *Controller) Session() account.Session {
	return c.sessions.Current()
}

// Token implements rest.TokenSource so the API client always carries the
// active credential.
func (c *Controller) Token() string {
	return c.sessions.Token()
}

// Snapshot returns the combined state for rendering.
func (c *Controller) Snapshot() Snapshot {
	return Snapshot{
		Session: c.sessions.Current(),
		Items:   c.cart.Items(),
		Total:   c.cart.Total(),
	}
}

// Login signs in with email and password. On API failure state is unchanged
// and the error carries the server message.
func (c *Controller) Login(ctx context.Context, email, password string) (account.Session, error) {
	result, err := c.api.Login(ctx, rest.Credentials{Email: email, Password: password})
	if err != nil {
		return account.Session{}, err
	}
	return c.adoptSession(result)
}

// LoginWithGoogle signs in by exchanging a Google ID token.
func (c *Controller) LoginWithGoogle(ctx context.Context, idToken string) (account.Session, error) {
	result, err := c.api.GoogleLogin(ctx, idToken)
	if err != nil {
		return account.Session{}, err
	}
	return c.adoptSession(result)
}

func (c *Controller) adoptSession(result rest.AuthResult) (account.Session, error) {
	sess := account.Session{UserID: result.UserID, Name: result.Name, Token: result.Token}
	if err := c.sessions.Save(sess); err != nil {
		return account.Session{}, err
	}
	return sess, nil
}

// Register creates a new account. It has no session side effects; the caller
// proceeds to login afterwards.
func (c *Controller) Register(ctx context.Context, reg rest.Registration) (rest.RegisterResult, error) {
	return c.api.Register(ctx, reg)
}

// Logout clears session and cart, in memory and in the store. It cannot
// fail.
func (c *Controller) Logout() {
	c.sessions.Clear()
	c.cart.Drop()
}

// AddToCart puts product in the cart, merging with an existing line.
func (c *Controller) AddToCart(p catalog.Product) error {
	err := c.cart.Add(p)
	c.recordCartMutation("add", err)
	return err
}

// UpdateQuantity adjusts a line's quantity by delta, clamped at 1.
func (c *Controller) UpdateQuantity(productID catalog.ID, delta int) error {
	err := c.cart.UpdateQuantity(productID, delta)
	c.recordCartMutation("update_quantity", err)
	return err
}

// RemoveFromCart deletes the line for productID.
func (c *Controller) RemoveFromCart(productID catalog.ID) error {
	err := c.cart.Remove(productID)
	c.recordCartMutation("remove", err)
	return err
}

// CartItems returns a copy of the cart lines.
func (c *Controller) CartItems() []cart.LineItem { return c.cart.Items() }

// CartSize returns the number of distinct lines.
func (c *Controller) CartSize() int { return c.cart.Len() }

// CartTotal returns the exact cart total.
func (c *Controller) CartTotal() float64 { return c.cart.Total() }

// Profile fetches the signed-in user's profile.
func (c *Controller) Profile(ctx context.Context) (rest.Profile, error) {
	sess := c.sessions.Current()
	if !sess.Authenticated() {
		return rest.Profile{}, ErrNotAuthenticated
	}
	return c.api.Profile(ctx, sess.UserID)
}

// UpdateProfile replaces the signed-in user's editable profile fields.
func (c *Controller) UpdateProfile(ctx context.Context, profile rest.Profile) error {
	sess := c.sessions.Current()
	if !sess.Authenticated() {
		return ErrNotAuthenticated
	}
	return c.api.UpdateProfile(ctx, sess.UserID, profile)
}

// Orders lists the signed-in user's order history.
func (c *Controller) Orders(ctx context.Context) ([]rest.Order, error) {
	sess := c.sessions.Current()
	if !sess.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	return c.api.UserOrders(ctx, sess.UserID)
}

// CancelOrder cancels one of the user's pending orders.
func (c *Controller) CancelOrder(ctx context.Context, orderID catalog.ID) error {
	if !c.sessions.Current().Authenticated() {
		return ErrNotAuthenticated
	}
	return c.api.CancelOrder(ctx, orderID)
}

func (c *Controller) recordCartMutation(op string, err error) {
	telemetry.RecordCartMutation(context.Background(), telemetry.CartData{
		Operation: op,
		Size:      c.cart.Len(),
		Error:     err,
	})
}

var _ rest.TokenSource = (*Controller)(nil)
