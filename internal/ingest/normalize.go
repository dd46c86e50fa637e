package ingest

import (
	"html"
	"strings"

	"github.com/aaravmahajanofficial/product-catalog/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

const utf8BOM = "\uFEFF"

// numeric columns are never passed through the HTML policy.
var numericFields = map[string]bool{"mrp": true, "price": true, "quantity": true}

// Normalizer turns a raw CSV header and row into a RawRecord. It is safe for
// concurrent use.
type Normalizer struct {
	policy *bluemonday.Policy
}

// NewNormalizer returns a Normalizer. When sanitizeHTML is set, markup is
// stripped from the text columns before they are trimmed.
func NewNormalizer(sanitizeHTML bool) *Normalizer {
	n := &Normalizer{}
	if sanitizeHTML {
		n.policy = bluemonday.StrictPolicy()
	}
	return n
}

// NormalizeHeader trims every header cell and removes a byte-order mark from
// the start of a field name.
func NormalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		h = strings.TrimPrefix(h, utf8BOM)
		out[i] = strings.TrimSpace(h)
	}
	return out
}

// Record maps a data row onto the normalized header. Columns beyond the
// header, columns without a header and non-product columns are dropped.
func (n *Normalizer) Record(header, row []string) models.RawRecord {
	var rec models.RawRecord
	for i, field := range header {
		if i >= len(row) || !models.IsProductField(field) {
			continue
		}
		rec.Set(field, n.value(field, row[i]))
	}
	return rec
}

func (n *Normalizer) value(field, v string) string {
	v = strings.TrimSpace(v)
	if n.policy == nil || numericFields[field] || v == "" {
		return v
	}
	// StrictPolicy escapes entities; text columns are stored unescaped.
	return strings.TrimSpace(html.UnescapeString(n.policy.Sanitize(v)))
}
