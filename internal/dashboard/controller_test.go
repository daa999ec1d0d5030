package dashboard

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storedash/internal/models"
	"storedash/internal/session"
	"storedash/internal/storeapi"
	"storedash/internal/storeapi/storeapitest"
)

const testToken = "good-token"

func floatPtr(v float64) *float64 { return &v }

type fixture struct {
	backend *storeapitest.Server
	store   session.TokenStore
	ctrl    *Controller
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := storeapitest.NewServer(testToken)
	t.Cleanup(backend.Close)

	backend.Products = []models.Product{
		{ID: "p1", Name: "Sneakers", Price: 2500, Description: "white", InStock: true, PhotoFileID: "AgAD1"},
		{ID: "p2", Name: "Cap", Price: 800, InStock: false},
	}
	backend.Orders = []models.Order{
		{ID: "o1", ProductName: "Sneakers", BuyerUsername: "ada", Qty: 1, Status: models.OrderStatusPending},
		{ID: "o2", ProductName: "Cap", Qty: 2, Status: models.OrderStatusDone},
		{ID: "o3", ProductName: "Cap", BuyerUsername: "tobi", Qty: 1, Status: models.OrderStatusPending},
	}
	backend.Payments = []models.Payment{
		{ID: "pay1", OrderID: "o1", BuyerUsername: "ada", Amount: 2500, Status: models.PaymentAwaiting, ProofType: "photo", ProofFileID: "AgADproof"},
		{ID: "pay2", OrderID: "o3", Amount: 800, Status: models.PaymentAwaiting, ProofType: "document", ProofFileID: "BQADdoc"},
		{ID: "pay3", OrderID: "o2", Amount: 1600, Status: models.PaymentConfirmed},
	}

	store := session.NewMemoryStore()
	sess := session.New(store, zap.NewNop())
	client := storeapi.New(backend.URL, 0, sess, zap.NewNop())
	ctrl := New(client, sess, "30d", zap.NewNop())

	return &fixture{backend: backend, store: store, ctrl: ctrl}
}

func (f *fixture) login(t *testing.T) {
	t.Helper()
	require.NoError(t, f.ctrl.Login(context.Background(), testToken))
}

func TestLogin_InvalidTokenClearsStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.ctrl.Login(ctx, "bad-token")
	require.Error(t, err)
	assert.Equal(t, "Unauthorized", err.Error())

	assert.False(t, f.ctrl.Session().LoggedIn())
	assert.Empty(t, f.ctrl.Session().Token())
	stored, _ := f.store.Get(ctx)
	assert.Empty(t, stored)
	assert.Nil(t, f.ctrl.StoreView())
}

func TestLogin_MissingToken(t *testing.T) {
	f := newFixture(t)
	assert.ErrorIs(t, f.ctrl.Login(context.Background(), " "), session.ErrMissingToken)
}

func TestLogin_LoadsEverything(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	assert.True(t, f.ctrl.Session().LoggedIn())
	stored, _ := f.store.Get(context.Background())
	assert.Equal(t, testToken, stored)

	require.NotNil(t, f.ctrl.StoreView())
	assert.Equal(t, "@testshop", f.ctrl.StoreView().Channel)
	assert.Len(t, f.ctrl.Products(), 2)
	assert.Len(t, f.ctrl.Orders(), 3)
	assert.Len(t, f.ctrl.Payments(), 3)
	assert.Equal(t, []string{"30d"}, f.backend.Periods())
}

func TestBoot(t *testing.T) {
	ctx := context.Background()

	t.Run("Nothing stored", func(t *testing.T) {
		f := newFixture(t)
		active, err := f.ctrl.Boot(ctx, "")
		require.NoError(t, err)
		assert.False(t, active)
	})

	t.Run("URL token wins over stored token", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Set(ctx, "stale-token"))
		active, err := f.ctrl.Boot(ctx, testToken)
		require.NoError(t, err)
		assert.True(t, active)
	})

	t.Run("Stored invalid token is cleared", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Set(ctx, "stale-token"))
		active, err := f.ctrl.Boot(ctx, "")
		require.Error(t, err)
		assert.False(t, active)
		stored, _ := f.store.Get(ctx)
		assert.Empty(t, stored)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	f.ctrl.Logout(context.Background())
	assert.False(t, f.ctrl.Session().LoggedIn())
	assert.Empty(t, f.ctrl.Products())
	assert.Nil(t, f.ctrl.StoreView())
}

func TestToggleStockTwiceRestores(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.ToggleStock(ctx, "p1"))
	p, ok := f.ctrl.cachedProduct("p1")
	require.True(t, ok)
	assert.False(t, bool(p.InStock))
	// The full record travels on every toggle.
	assert.Equal(t, "Sneakers", p.Name)
	assert.Equal(t, "AgAD1", p.PhotoFileID)

	require.NoError(t, f.ctrl.ToggleStock(ctx, "p1"))
	p, _ = f.ctrl.cachedProduct("p1")
	assert.True(t, bool(p.InStock))

	assert.ErrorIs(t, f.ctrl.ToggleStock(ctx, "nope"), ErrProductNotFound)
}

func TestAddProduct(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	err := f.ctrl.AddProduct(ctx, models.ProductInput{Name: "  ", Price: 10})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Name and numeric price are required.", verr.Msg)

	photo := "  "
	require.NoError(t, f.ctrl.AddProduct(ctx, models.ProductInput{Name: " Bag ", Price: 1200, InStock: true, PhotoFileID: &photo}))

	rows := f.ctrl.Products()
	require.Len(t, rows, 3)
	assert.Equal(t, "Bag", rows[2].Name)
	assert.Equal(t, "", rows[2].PhotoFileID)
	assert.Equal(t, "₦1200", rows[2].PriceLabel)
	assert.Equal(t, "In stock", rows[2].StockLabel)
	assert.Equal(t, 3.0, f.ctrl.KPIs().Products.Value)
}

func TestEditProduct(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	err := f.ctrl.EditProduct(ctx, "p2", models.ProductInput{Name: "Cap", Price: -1})
	assert.EqualError(t, err, "Invalid price")

	assert.ErrorIs(t, f.ctrl.EditProduct(ctx, "zzz", models.ProductInput{Name: "x"}), ErrProductNotFound)

	before := f.backend.Count("PUT /api/products/p2")
	err = f.ctrl.EditProduct(ctx, "p2", models.ProductInput{Name: "   ", Price: 900})
	assert.EqualError(t, err, "Product name is required.")
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
	assert.Equal(t, before, f.backend.Count("PUT /api/products/p2"))

	require.NoError(t, f.ctrl.EditProduct(ctx, "p2", models.ProductInput{Name: "Cap v2", Price: 900, InStock: true}))
	p, _ := f.ctrl.cachedProduct("p2")
	assert.Equal(t, "Cap v2", p.Name)
	assert.Equal(t, 900.0, p.Price)
	assert.True(t, bool(p.InStock))
}

func TestSetOrderStatus(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.ctrl.SetOrderStatus(ctx, "o1", "shipped"), ErrInvalidOrderStatus)

	require.NoError(t, f.ctrl.SetOrderStatus(ctx, "o1", models.OrderStatusDone))
	for _, o := range f.ctrl.Orders() {
		if o.ID == "o1" {
			assert.Equal(t, models.OrderStatusDone, o.Status)
		}
	}
	assert.Equal(t, 2, f.backend.Count("GET /api/orders"))
}

func TestApprovePayment(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	before := f.backend.Count("GET /api/orders")
	require.NoError(t, f.ctrl.Approve(ctx, "pay1"))

	var status string
	for _, p := range f.ctrl.Payments() {
		if p.ID == "pay1" {
			status = p.Status
			assert.Empty(t, p.Actions)
		}
	}
	assert.Equal(t, models.PaymentConfirmed, status)

	// Orders are reloaded so the backend's side effect is visible.
	assert.Equal(t, before+1, f.backend.Count("GET /api/orders"))
	for _, o := range f.ctrl.Orders() {
		if o.ID == "o1" {
			assert.Equal(t, models.OrderStatusDone, o.Status)
		}
	}

	// Terminal: a second decision is refused locally.
	assert.ErrorIs(t, f.ctrl.Approve(ctx, "pay1"), ErrNotAwaiting)
	assert.ErrorIs(t, f.ctrl.Reject(ctx, "pay1"), ErrNotAwaiting)
	assert.Equal(t, 1, f.backend.Count("PUT /api/payments/pay1/approve"))
	assert.Equal(t, 0, f.backend.Count("PUT /api/payments/pay1/reject"))
}

func TestRejectPayment(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	require.NoError(t, f.ctrl.Reject(ctx, "pay2"))
	p, ok := f.backend.Payment("pay2")
	require.True(t, ok)
	assert.Equal(t, models.PaymentRejected, p.Status)

	for _, row := range f.ctrl.Payments() {
		if row.ID == "pay2" {
			assert.Equal(t, models.PaymentRejected, row.Status)
		}
	}
}

func TestDecide_UncachedPaymentIsFetched(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	f.backend.Lock()
	f.backend.Payments = append(f.backend.Payments, models.Payment{ID: "pay9", OrderID: "o2", Amount: 10, Status: models.PaymentAwaiting})
	f.backend.Unlock()

	require.NoError(t, f.ctrl.Approve(ctx, "pay9"))
	assert.Equal(t, 1, f.backend.Count("GET /api/payments/pay9"))

	assert.ErrorIs(t, f.ctrl.Approve(ctx, "ghost"), ErrPaymentNotFound)
}

func TestPaymentRows_ActionsOnlyWhenAwaiting(t *testing.T) {
	f := newFixture(t)
	f.login(t)

	for _, row := range f.ctrl.Payments() {
		if row.Status == models.PaymentAwaiting {
			assert.Equal(t, []string{"approve", "reject"}, row.Actions)
		} else {
			assert.Empty(t, row.Actions)
		}
	}
}

func TestLoadPayments_Filter(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	payments, err := f.ctrl.LoadPayments(ctx, models.PaymentAwaiting)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	assert.Equal(t, models.PaymentAwaiting, f.ctrl.PaymentFilter())

	_, err = f.ctrl.LoadPayments(ctx, "paid")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPaymentDetail_ProofKinds(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	d, err := f.ctrl.PaymentDetail(ctx, "pay1")
	require.NoError(t, err)
	assert.Equal(t, ProofImage, d.Proof.Kind)
	assert.Equal(t, "₦2500", d.AmountLabel)

	d, err = f.ctrl.PaymentDetail(ctx, "pay2")
	require.NoError(t, err)
	assert.Equal(t, ProofFile, d.Proof.Kind)
	assert.Equal(t, "BQADdoc", d.Proof.FileID)
}

func TestAnalytics_ServerValues(t *testing.T) {
	f := newFixture(t)
	f.backend.Analytics = models.Analytics{
		OrdersTotal:      floatPtr(40),
		OrdersChangePct:  floatPtr(12.34),
		RevenueTotal:     floatPtr(125000),
		RevenueChangePct: floatPtr(-3.21),
		PendingChangePct: floatPtr(0),
		Series:           &models.Series{Labels: []string{"Mon", "Tue"}, Values: []float64{3, 5}},
	}
	f.login(t)

	k := f.ctrl.KPIs()
	assert.Equal(t, 40.0, k.Orders.Value)
	assert.Equal(t, Delta{Direction: DeltaUp, Text: "+12.3%", Available: true}, k.Orders.Delta)
	assert.Equal(t, 125000.0, k.Revenue.Value)
	assert.Equal(t, Delta{Direction: DeltaDown, Text: "-3.2%", Available: true}, k.Revenue.Delta)
	// pending_total missing: falls back to the local pending count.
	assert.Equal(t, 2.0, k.Pending.Value)
	assert.Equal(t, "0.0%", k.Pending.Delta.Text)
	assert.Equal(t, 2.0, k.Products.Value)
	assert.False(t, k.Products.Delta.Available)
	require.NotNil(t, k.Series)
	assert.Equal(t, []string{"Mon", "Tue"}, k.Series.Labels)
	assert.Empty(t, k.Message)
}

func TestAnalytics_FailureFallsBackToLocalCounts(t *testing.T) {
	f := newFixture(t)
	f.backend.FailAnalytics = true
	f.login(t)

	k := f.ctrl.KPIs()
	assert.Equal(t, 3.0, k.Orders.Value)
	assert.Equal(t, 0.0, k.Revenue.Value)
	assert.Equal(t, 2.0, k.Pending.Value)
	assert.Equal(t, 2.0, k.Products.Value)
	for _, kpi := range []KPI{k.Orders, k.Revenue, k.Pending, k.Products} {
		assert.Equal(t, "—", kpi.Delta.Text)
		assert.False(t, kpi.Delta.Available)
	}
	assert.Equal(t, "Analytics error: analytics offline", k.Message)

	// The pending KPI keeps tracking cached orders.
	require.NoError(t, f.ctrl.SetOrderStatus(context.Background(), "o2", models.OrderStatusPending))
	assert.Equal(t, 3.0, f.ctrl.KPIs().Pending.Value)
}

func TestSetPeriod_ReissuesAnalytics(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	_, err := f.ctrl.SetPeriod(ctx, "7d")
	require.NoError(t, err)
	k, err := f.ctrl.SetPeriod(ctx, "30d")
	require.NoError(t, err)

	assert.Equal(t, "30d", k.Period)
	assert.Equal(t, []string{"30d", "7d", "30d"}, f.backend.Periods())

	_, err = f.ctrl.SetPeriod(ctx, " ")
	assert.Error(t, err)
}

func TestLoadAnalyticsSafe_NoopBeforeStoreLoaded(t *testing.T) {
	f := newFixture(t)
	f.ctrl.LoadAnalyticsSafe(context.Background())
	assert.Empty(t, f.backend.Periods())
}

func TestSaveBankDetails(t *testing.T) {
	ctx := context.Background()

	t.Run("Store not loaded", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ctrl.SaveBankDetails(ctx, models.BankDetails{})
		assert.ErrorIs(t, err, ErrStoreNotLoaded)
	})

	tests := []struct {
		name    string
		in      models.BankDetails
		wantErr string
	}{
		{name: "Missing field", in: models.BankDetails{BankName: "GTB", AccountNumber: "0123456789"}, wantErr: "Please fill all bank fields."},
		{name: "Short account", in: models.BankDetails{BankName: "GTB", AccountNumber: "12345", AccountName: "Ada"}, wantErr: "Account number must be 10 digits."},
		{name: "Letters in account", in: models.BankDetails{BankName: "GTB", AccountNumber: "01234567ab", AccountName: "Ada"}, wantErr: "Account number must be 10 digits."},
		{name: "Valid", in: models.BankDetails{BankName: " GTB ", AccountNumber: " 0123456789 ", AccountName: "Ada Obi"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.login(t)

			msg, err := f.ctrl.SaveBankDetails(ctx, tt.in)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				assert.Equal(t, 0, f.backend.Count("PUT /api/store/bank"))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, BankSavedMessage, msg)

			settings, err := f.ctrl.Settings()
			require.NoError(t, err)
			assert.True(t, settings.Store.BankDetailsSet)
			assert.Equal(t, "GTB", settings.Bank.BankName)
			assert.Equal(t, "0123456789", settings.Bank.AccountNumber)
		})
	}
}

func TestUpdateStoreSettings(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	ctx := context.Background()

	assert.Error(t, f.ctrl.UpdateStoreSettings(ctx, models.StoreSettings{Name: "x"}))

	require.NoError(t, f.ctrl.UpdateStoreSettings(ctx, models.StoreSettings{Name: "New Shop", Currency: "$", DeliveryNote: "2 days"}))
	v := f.ctrl.StoreView()
	assert.Equal(t, "New Shop", v.Name)
	assert.Equal(t, "2 days", v.DeliveryNote)
}

func TestSubscriptionRequired(t *testing.T) {
	f := newFixture(t)
	f.login(t)
	f.backend.Lock()
	f.backend.Status402 = true
	f.backend.Unlock()

	_, err := f.ctrl.LoadProducts(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeapi.ErrSubscriptionRequired)
	assert.Equal(t, 402, HTTPStatus(err))
	assert.Equal(t, storeapi.SubscriptionLockMessage, storeapi.UserMessage(err))
}

func TestLoadAll_PaymentsFailureDoesNotFailLogin(t *testing.T) {
	f := newFixture(t)
	f.backend.FailPath = "/api/payments"
	f.login(t)
	assert.True(t, f.ctrl.Session().LoggedIn())
	assert.Empty(t, f.ctrl.Payments())
}

func TestLoadAll_OrdersFailureFailsLogin(t *testing.T) {
	f := newFixture(t)
	f.backend.FailPath = "/api/orders"
	err := f.ctrl.Login(context.Background(), testToken)
	require.Error(t, err)
	assert.False(t, f.ctrl.Session().LoggedIn())
}
