package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlag_Unmarshal(t *testing.T) {
	tests := []struct {
		raw     string
		want    Flag
		wantErr bool
	}{
		{raw: `1`, want: true},
		{raw: `0`, want: false},
		{raw: `true`, want: true},
		{raw: `false`, want: false},
		{raw: `null`, want: false},
		{raw: `"1"`, want: true},
		{raw: `2`, want: true},
		{raw: `"yes"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var f Flag
			err := json.Unmarshal([]byte(tt.raw), &f)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
		})
	}
}

func TestID_Unmarshal(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    ID
		wantErr bool
	}{
		{name: "String", raw: `"pay1"`, want: "pay1"},
		{name: "Integer", raw: `123456789`, want: "123456789"},
		{name: "Negative channel id", raw: `-1001234567890`, want: "-1001234567890"},
		{name: "Null", raw: `null`, want: ""},
		{name: "Empty string", raw: `""`, want: ""},
		{name: "Object", raw: `{"id":1}`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			err := json.Unmarshal([]byte(tt.raw), &id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, id)
		})
	}
}

func TestCount_Unmarshal(t *testing.T) {
	tests := []struct {
		raw     string
		want    Count
		wantErr bool
	}{
		{raw: `3`, want: 3},
		{raw: `"2"`, want: 2},
		{raw: `2.0`, want: 2},
		{raw: `null`, want: 0},
		{raw: `"many"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			var c Count
			err := json.Unmarshal([]byte(tt.raw), &c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
}

func TestOrder_NumericIdentifiers(t *testing.T) {
	var o Order
	require.NoError(t, json.Unmarshal([]byte(`{"id":7,"product_id":"p1","buyer_id":123456789,"qty":"2","status":"pending"}`), &o))
	assert.Equal(t, ID("7"), o.ID)
	assert.Equal(t, ID("123456789"), o.BuyerID)
	assert.Equal(t, Count(2), o.Qty)

	out, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"buyer_id":"123456789"`)
}

func TestProductInput_WireShape(t *testing.T) {
	p := Product{ID: "p1", Name: "Cap", Price: 800, InStock: false}
	raw, err := json.Marshal(p.Input())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Cap","price":800,"description":"","in_stock":0,"photo_file_id":null}`, string(raw))

	p.PhotoFileID = "AgAD"
	p.InStock = true
	raw, err = json.Marshal(p.Input())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Cap","price":800,"description":"","in_stock":1,"photo_file_id":"AgAD"}`, string(raw))
}

func TestStore_ChannelLabel(t *testing.T) {
	assert.Equal(t, "@shop", (&Store{ChannelUsername: "shop", ChannelID: "-100"}).ChannelLabel())
	assert.Equal(t, "-100", (&Store{ChannelID: "-100"}).ChannelLabel())
	assert.Equal(t, "Not linked", (&Store{}).ChannelLabel())
}

func TestStore_BankDetailsSet(t *testing.T) {
	s := &Store{BankName: "GTB", AccountNumber: "0123456789"}
	assert.False(t, s.BankDetailsSet())
	s.AccountName = "Ada"
	assert.True(t, s.BankDetailsSet())
}

func TestPayment_Actionable(t *testing.T) {
	for status, want := range map[string]bool{
		PaymentAwaiting:  true,
		PaymentConfirmed: false,
		PaymentRejected:  false,
	} {
		p := Payment{Status: status}
		assert.Equal(t, want, p.Actionable(), status)
	}
	assert.True(t, ValidPaymentFilter(""))
	assert.False(t, ValidPaymentFilter("paid"))
}
