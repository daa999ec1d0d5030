package models

import "strings"

// Store is the storefront record returned by GET /api/store.
type Store struct {
	Name                  string `json:"name"`
	Currency              string `json:"currency"`
	ChannelUsername       string `json:"channel_username,omitempty"`
	ChannelID             ID     `json:"channel_id,omitempty"`
	DeliveryNote          string `json:"delivery_note,omitempty"`
	BankName              string `json:"bank_name,omitempty"`
	AccountNumber         string `json:"account_number,omitempty"`
	AccountName           string `json:"account_name,omitempty"`
	SubscriptionStatus    string `json:"subscription_status,omitempty"`
	SubscriptionExpiresAt string `json:"subscription_expires_at,omitempty"`
}

// ChannelLabel renders the linked channel the way the overview shows it.
func (s *Store) ChannelLabel() string {
	if s.ChannelUsername != "" {
		return "@" + s.ChannelUsername
	}
	if s.ChannelID != "" {
		return s.ChannelID.String()
	}
	return "Not linked"
}

// BankDetailsSet reports whether customers can be shown bank details.
func (s *Store) BankDetailsSet() bool {
	return s.BankName != "" && s.AccountNumber != "" && s.AccountName != ""
}

// StoreSettings is the body of PUT /api/store.
type StoreSettings struct {
	Name         string `json:"name"`
	Currency     string `json:"currency"`
	DeliveryNote string `json:"delivery_note"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (s StoreSettings) Trimmed() StoreSettings {
	return StoreSettings{
		Name:         strings.TrimSpace(s.Name),
		Currency:     strings.TrimSpace(s.Currency),
		DeliveryNote: strings.TrimSpace(s.DeliveryNote),
	}
}

// BankDetails is the body of PUT /api/store/bank.
type BankDetails struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// Trimmed returns a copy with surrounding whitespace removed.
func (b BankDetails) Trimmed() BankDetails {
	return BankDetails{
		BankName:      strings.TrimSpace(b.BankName),
		AccountNumber: strings.TrimSpace(b.AccountNumber),
		AccountName:   strings.TrimSpace(b.AccountName),
	}
}
