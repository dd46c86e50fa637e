package ingest

import (
	"strings"

	"github.com/aaravmahajanofficial/product-catalog/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// candidate carries the presence rules of a product row.
type candidate struct {
	SKU      string `validate:"required"`
	Name     string `validate:"required"`
	Brand    string `validate:"required"`
	Color    string `validate:"required"`
	Size     string `validate:"required"`
	MRP      string `validate:"required"`
	Price    string `validate:"required"`
	Quantity string `validate:"required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// quantity is stored in a postgres integer column.
var maxQuantity = decimal.NewFromInt(1<<31 - 1)

// parseNumber accepts plain decimals with an optional sign, a bare leading or
// trailing point and an exponent, so "1e3", ".5" and "+5" are all numbers.
func parseNumber(s string) (decimal.Decimal, error) {
	if rest, ok := strings.CutPrefix(s, "+"); ok && rest != "" && strings.IndexByte("0123456789.", rest[0]) >= 0 {
		s = rest
	}
	return decimal.NewFromString(s)
}

func newCandidate(r models.RawRecord) candidate {
	return candidate{
		SKU:      r.Get("sku"),
		Name:     r.Get("name"),
		Brand:    r.Get("brand"),
		Color:    r.Get("color"),
		Size:     r.Get("size"),
		MRP:      r.Get("mrp"),
		Price:    r.Get("price"),
		Quantity: r.Get("quantity"),
	}
}

// IsValid reports whether a normalized record describes a product that may be
// stored: all text fields set, mrp and price non-negative numbers with
// price <= mrp, and a positive integer quantity.
func IsValid(r models.RawRecord) bool {
	_, ok := toProduct(r)
	return ok
}

func toProduct(r models.RawRecord) (*models.Product, bool) {
	c := newCandidate(r)
	if err := validate.Struct(c); err != nil {
		return nil, false
	}

	mrp, err := parseNumber(c.MRP)
	if err != nil || mrp.IsNegative() {
		return nil, false
	}
	price, err := parseNumber(c.Price)
	if err != nil || price.IsNegative() {
		return nil, false
	}
	if price.GreaterThan(mrp) {
		return nil, false
	}

	qty, err := parseNumber(c.Quantity)
	if err != nil || !qty.IsInteger() || !qty.IsPositive() || !qty.LessThanOrEqual(maxQuantity) {
		return nil, false
	}
	quantity := int(qty.IntPart())

	return &models.Product{
		SKU:      c.SKU,
		Name:     c.Name,
		Brand:    c.Brand,
		Color:    c.Color,
		Size:     c.Size,
		MRP:      mrp,
		Price:    price,
		Quantity: quantity,
	}, true
}
