package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Flag is a boolean that travels as 0/1 on the wire. Booleans and
// numeric strings are accepted when decoding.
type Flag bool

func (f Flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(bytes.TrimSpace(data), `"`)
	switch string(data) {
	case "1", "true":
		*f = true
	case "0", "false", "", "null":
		*f = false
	default:
		var n float64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("invalid flag value %q", data)
		}
		*f = n != 0
	}
	return nil
}

// Product is a catalog entry.
type Product struct {
	ID          ID      `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	InStock     Flag    `json:"in_stock"`
	PhotoFileID string  `json:"photo_file_id,omitempty"`
}

// ProductInput is the full record sent on create and update. The backend
// never receives partial patches.
type ProductInput struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	InStock     Flag    `json:"in_stock"`
	PhotoFileID *string `json:"photo_file_id"`
}

// Input rebuilds the full record of an existing product.
func (p *Product) Input() ProductInput {
	return ProductInput{
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		InStock:     p.InStock,
		PhotoFileID: OptionalString(p.PhotoFileID),
	}
}

// OptionalString maps "" to nil so the backend stores NULL.
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
