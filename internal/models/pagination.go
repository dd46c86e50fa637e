package models

import "github.com/aaravmahajanofficial/product-catalog/internal/errors"

type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// NewPagination validates page and limit (both must be >= 1) and computes the
// row offset of the requested page.
func NewPagination(page, limit int) (Pagination, error) {
	if page < 1 || limit < 1 {
		return Pagination{}, errors.ValidationError("Invalid page or limit")
	}

	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}, nil
}
