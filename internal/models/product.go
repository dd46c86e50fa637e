package models

import "github.com/shopspring/decimal"

type Product struct {
	ID       int64           `json:"id" db:"id"`
	SKU      string          `json:"sku" db:"sku"`
	Name     string          `json:"name" db:"name"`
	Brand    string          `json:"brand" db:"brand"`
	Color    string          `json:"color" db:"color"`
	Size     string          `json:"size" db:"size"`
	MRP      decimal.Decimal `json:"mrp" db:"mrp"`
	Price    decimal.Decimal `json:"price" db:"price"`
	Quantity int             `json:"quantity" db:"quantity"`
}

// SearchFilter holds the optional search criteria. A nil field is not applied.
type SearchFilter struct {
	Brand    *string
	Color    *string
	MinPrice *float64
	MaxPrice *float64
}

// Echo of the raw query values, as received.
type SearchFilterEcho struct {
	Brand    string `json:"brand,omitempty"`
	Color    string `json:"color,omitempty"`
	MinPrice string `json:"minPrice,omitempty"`
	MaxPrice string `json:"maxPrice,omitempty"`
}

type ListProductsResponse struct {
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
	Products []*Product `json:"products"`
}

type SearchProductsResponse struct {
	Count    int              `json:"count"`
	Filters  SearchFilterEcho `json:"filters"`
	Products []*Product       `json:"products"`
}
