package ingest

import (
	"testing"

	"github.com/aaravmahajanofficial/product-catalog/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shirt(overrides map[string]string) models.RawRecord {
	fields := map[string]string{
		"sku": "A1", "name": "Shirt", "brand": "X", "color": "Red", "size": "M",
		"mrp": "100", "price": "80", "quantity": "5",
	}
	for k, v := range overrides {
		fields[k] = v
	}
	return models.NewRawRecord(fields)
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name      string
		overrides map[string]string
		want      bool
	}{
		{"complete row", nil, true},
		{"price equal to mrp", map[string]string{"price": "100"}, true},
		{"decimal values", map[string]string{"mrp": "99.99", "price": "49.50"}, true},
		{"free item", map[string]string{"mrp": "0", "price": "0"}, true},
		{"price above mrp", map[string]string{"price": "120"}, false},
		{"zero quantity", map[string]string{"quantity": "0"}, false},
		{"negative quantity", map[string]string{"quantity": "-3"}, false},
		{"fractional quantity", map[string]string{"quantity": "2.5"}, false},
		{"exponent mrp", map[string]string{"mrp": "1e3"}, true},
		{"leading point price", map[string]string{"price": ".5"}, true},
		{"signed quantity", map[string]string{"quantity": "+5"}, true},
		{"whole decimal quantity", map[string]string{"quantity": "5.0"}, true},
		{"exponent quantity", map[string]string{"quantity": "1e2"}, true},
		{"double sign quantity", map[string]string{"quantity": "++5"}, false},
		{"quantity beyond column", map[string]string{"quantity": "3000000000"}, false},
		{"hex mrp", map[string]string{"mrp": "0x10"}, false},
		{"infinite mrp", map[string]string{"mrp": "Infinity"}, false},
		{"negative mrp", map[string]string{"mrp": "-1", "price": "-2"}, false},
		{"non-numeric mrp", map[string]string{"mrp": "abc"}, false},
		{"non-numeric price", map[string]string{"price": "eighty"}, false},
		{"missing sku", map[string]string{"sku": ""}, false},
		{"missing name", map[string]string{"name": ""}, false},
		{"missing brand", map[string]string{"brand": ""}, false},
		{"missing color", map[string]string{"color": ""}, false},
		{"missing size", map[string]string{"size": ""}, false},
		{"missing mrp", map[string]string{"mrp": ""}, false},
		{"missing price", map[string]string{"price": ""}, false},
		{"missing quantity", map[string]string{"quantity": ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(shirt(tt.overrides)))
		})
	}
}

func TestToProductConvertsValues(t *testing.T) {
	product, ok := toProduct(shirt(map[string]string{"mrp": "99.90", "price": "80.5", "quantity": "12"}))

	require.True(t, ok)
	assert.Equal(t, "A1", product.SKU)
	assert.Equal(t, "Shirt", product.Name)
	assert.True(t, decimal.RequireFromString("99.9").Equal(product.MRP))
	assert.True(t, decimal.RequireFromString("80.5").Equal(product.Price))
	assert.Equal(t, 12, product.Quantity)
	assert.Zero(t, product.ID)
}

func TestToProductAcceptsNumberForms(t *testing.T) {
	product, ok := toProduct(shirt(map[string]string{"mrp": "1e3", "price": ".5", "quantity": "+5"}))

	require.True(t, ok)
	assert.True(t, decimal.NewFromInt(1000).Equal(product.MRP))
	assert.True(t, decimal.RequireFromString("0.5").Equal(product.Price))
	assert.Equal(t, 5, product.Quantity)
}
