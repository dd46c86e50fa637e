package cache

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/product-catalog/internal/models"
)

type Cache interface {
	Get(ctx context.Context, key string, value any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	Close() error
}

const ProductKeyPrefix = "product"

// GenerationKey holds the catalog generation. Every cached listing is keyed by
// the generation it was read at, so bumping it retires all of them at once.
var GenerationKey = Key(ProductKeyPrefix, "generation")

func Key(prefix string, parts ...string) string {
	return prefix + ":" + strings.Join(parts, ":")
}

func ListKey(generation int64, page models.Pagination) string {
	return Key(ProductKeyPrefix, gen(generation), "list",
		strconv.Itoa(page.Page), strconv.Itoa(page.Limit))
}

func SearchKey(generation int64, f models.SearchFilter) string {
	return Key(ProductKeyPrefix, gen(generation), "search",
		optString(f.Brand), optString(f.Color), optFloat(f.MinPrice), optFloat(f.MaxPrice))
}

func gen(generation int64) string {
	return "v" + strconv.FormatInt(generation, 10)
}

// absent values are written as "-" so that they never collide with "".
func optString(s *string) string {
	if s == nil {
		return "-"
	}
	return strconv.Quote(*s)
}

func optFloat(f *float64) string {
	if f == nil {
		return "-"
	}
	return strconv.FormatFloat(*f, 'g', -1, 64)
}
