package dashboard

import (
	"context"
	"regexp"

	"storedash/internal/models"
)

// BankSavedMessage confirms a successful bank details update.
const BankSavedMessage = "Saved ✅ Customers will now see your bank details."

var accountNumberRx = regexp.MustCompile(`^[0-9]{10}$`)

// LoadStore refreshes the cached store record.
func (c *Controller) LoadStore(ctx context.Context) (*models.Store, error) {
	store, err := c.api.GetStore(ctx)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.store = store
	c.mu.Unlock()
	return store, nil
}

// StoreView returns the overview card, or nil before the store is loaded.
func (c *Controller) StoreView() *StoreView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.store == nil {
		return nil
	}
	v := newStoreView(c.store)
	return &v
}

// Settings returns the settings tab view.
func (c *Controller) Settings() (*SettingsView, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.store == nil {
		return nil, ErrStoreNotLoaded
	}
	return &SettingsView{
		Store: newStoreView(c.store),
		Bank: models.BankDetails{
			BankName:      c.store.BankName,
			AccountNumber: c.store.AccountNumber,
			AccountName:   c.store.AccountName,
		},
	}, nil
}

// UpdateStoreSettings saves name, currency and delivery note.
func (c *Controller) UpdateStoreSettings(ctx context.Context, in models.StoreSettings) error {
	in = in.Trimmed()
	if in.Name == "" || in.Currency == "" {
		return invalid("Store name and currency are required.")
	}
	if err := c.api.UpdateStore(ctx, in); err != nil {
		return err
	}
	_, err := c.LoadStore(ctx)
	return err
}

// SaveBankDetails validates and saves the bank transfer details shown to
// buyers, then reloads the store.
func (c *Controller) SaveBankDetails(ctx context.Context, in models.BankDetails) (string, error) {
	c.mu.RLock()
	loaded := c.store != nil
	c.mu.RUnlock()
	if !loaded {
		return "", ErrStoreNotLoaded
	}

	in = in.Trimmed()
	if in.BankName == "" || in.AccountNumber == "" || in.AccountName == "" {
		return "", invalid("Please fill all bank fields.")
	}
	if !accountNumberRx.MatchString(in.AccountNumber) {
		return "", invalid("Account number must be 10 digits.")
	}

	if err := c.api.UpdateBank(ctx, in); err != nil {
		return "", err
	}
	if _, err := c.LoadStore(ctx); err != nil {
		return "", err
	}
	return BankSavedMessage, nil
}
