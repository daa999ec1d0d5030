package dashboard

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storedash/internal/models"
	"storedash/internal/session"
)

// Backend is the slice of the store API the controller drives.
type Backend interface {
	GetStore(ctx context.Context) (*models.Store, error)
	UpdateStore(ctx context.Context, settings models.StoreSettings) error
	UpdateBank(ctx context.Context, bank models.BankDetails) error
	ListProducts(ctx context.Context) ([]models.Product, error)
	CreateProduct(ctx context.Context, in models.ProductInput) error
	UpdateProduct(ctx context.Context, id string, in models.ProductInput) error
	ListOrders(ctx context.Context) ([]models.Order, error)
	SetOrderStatus(ctx context.Context, id, status string) error
	ListPayments(ctx context.Context, status string) ([]models.Payment, error)
	GetPayment(ctx context.Context, id string) (*models.Payment, error)
	ApprovePayment(ctx context.Context, id string) error
	RejectPayment(ctx context.Context, id string) error
	PaymentProof(ctx context.Context, id string) (*models.Proof, error)
	GetAnalytics(ctx context.Context, period string) (*models.Analytics, error)
}

// Controller owns the read-through caches behind both operator surfaces.
// Every reload replaces a cache wholesale; the last fetch wins.
type Controller struct {
	api     Backend
	session *session.Session
	logger  *zap.Logger

	mu            sync.RWMutex
	store         *models.Store
	products      []models.Product
	orders        []models.Order
	payments      []models.Payment
	paymentFilter string
	period        string
	kpis          KPIPanel
}

// New creates a controller. defaultPeriod seeds the analytics period.
func New(api Backend, sess *session.Session, defaultPeriod string, logger *zap.Logger) *Controller {
	if strings.TrimSpace(defaultPeriod) == "" {
		defaultPeriod = "30d"
	}
	return &Controller{
		api:     api,
		session: sess,
		logger:  logger,
		period:  defaultPeriod,
		kpis:    KPIPanel{Period: defaultPeriod},
	}
}

// Session returns the session the controller authenticates with.
func (c *Controller) Session() *session.Session {
	return c.session
}

// ── Login / boot ──────────────────────────────────────────────────────

// Login stores token and performs the initial load. Any failure of that
// load clears the stored token and leaves the session logged out.
func (c *Controller) Login(ctx context.Context, token string) error {
	if err := c.session.Begin(ctx, token); err != nil {
		return err
	}
	if err := c.LoadAll(ctx); err != nil {
		c.logger.Warn("Login failed", zap.Error(err))
		c.session.Clear(ctx)
		c.reset()
		return err
	}
	c.session.Complete()
	c.logger.Info("Dashboard session started")
	return nil
}

// Boot logs in with the URL token if given, else with the stored token.
// It reports whether a session is now active.
func (c *Controller) Boot(ctx context.Context, urlToken string) (bool, error) {
	chosen := c.session.Resolve(ctx, urlToken)
	if chosen == "" {
		return false, nil
	}
	if err := c.Login(ctx, chosen); err != nil {
		return false, err
	}
	return true, nil
}

// Logout clears the token and drops every cache.
func (c *Controller) Logout(ctx context.Context) {
	c.session.Clear(ctx)
	c.reset()
	c.logger.Info("Dashboard session ended")
}

func (c *Controller) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = nil
	c.products = nil
	c.orders = nil
	c.payments = nil
	c.paymentFilter = ""
	c.kpis = KPIPanel{Period: c.period}
}

// LoadAll loads the store, then products and orders in parallel, then
// analytics. The payments list is refreshed too but cannot fail the load.
func (c *Controller) LoadAll(ctx context.Context) error {
	if _, err := c.LoadStore(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.LoadProducts(gctx)
		return err
	})
	g.Go(func() error {
		_, err := c.LoadOrders(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	c.LoadAnalyticsSafe(ctx)

	c.mu.RLock()
	filter := c.paymentFilter
	c.mu.RUnlock()
	if _, err := c.LoadPayments(ctx, filter); err != nil {
		c.logger.Warn("Failed to load payments", zap.Error(err))
	}
	return nil
}
