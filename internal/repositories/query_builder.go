package repository

import (
	"fmt"
	"strings"

	"github.com/aaravmahajanofficial/product-catalog/internal/models"
)

const productColumns = "id, sku, name, brand, color, size, mrp, price, quantity"

const selectProducts = `SELECT ` + productColumns + ` FROM products`

// clause is one filter condition. column and operator are always constants
// of this package; only value comes from the caller.
type clause struct {
	column   string
	operator string
	value    any
}

func searchClauses(f models.SearchFilter) []clause {
	var clauses []clause

	if f.Brand != nil {
		clauses = append(clauses, clause{"brand", "=", *f.Brand})
	}
	if f.Color != nil {
		clauses = append(clauses, clause{"color", "=", *f.Color})
	}
	if f.MinPrice != nil {
		clauses = append(clauses, clause{"price", ">=", *f.MinPrice})
	}
	if f.MaxPrice != nil {
		clauses = append(clauses, clause{"price", "<=", *f.MaxPrice})
	}

	return clauses
}

// BuildSearchQuery returns the SELECT for f and its positional arguments.
// Conditions are AND-ed in the order brand, color, minPrice, maxPrice; an
// empty filter selects every product.
func BuildSearchQuery(f models.SearchFilter) (string, []any) {
	clauses := searchClauses(f)
	args := make([]any, 0, len(clauses))

	var sb strings.Builder
	sb.WriteString(selectProducts)

	for i, c := range clauses {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, c.value)
		fmt.Fprintf(&sb, "%s %s $%d", c.column, c.operator, len(args))
	}

	sb.WriteString(" ORDER BY id")

	return sb.String(), args
}
