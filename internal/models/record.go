package models

// ProductFields are the CSV columns a product row is built from, in declaration order.
var ProductFields = []string{"sku", "name", "brand", "color", "size", "mrp", "price", "quantity"}

// RawRecord is one normalized CSV row restricted to ProductFields.
// Values are stored positionally in ProductFields order.
type RawRecord struct {
	values [8]string
}

func fieldIndex(field string) int {
	for i, f := range ProductFields {
		if f == field {
			return i
		}
	}
	return -1
}

// IsProductField reports whether field is one of ProductFields.
func IsProductField(field string) bool {
	return fieldIndex(field) >= 0
}

// Set stores value for field. It returns false for an unrecognized field,
// which is left out of the record.
func (r *RawRecord) Set(field, value string) bool {
	i := fieldIndex(field)
	if i < 0 {
		return false
	}
	r.values[i] = value
	return true
}

// Get returns the value for field, or "" when the field is absent or unknown.
func (r RawRecord) Get(field string) string {
	i := fieldIndex(field)
	if i < 0 {
		return ""
	}
	return r.values[i]
}

func (r RawRecord) SKU() string { return r.values[0] }

// NewRawRecord builds a record from field/value pairs, ignoring unknown fields.
func NewRawRecord(fields map[string]string) RawRecord {
	var r RawRecord
	for k, v := range fields {
		r.Set(k, v)
	}
	return r
}

type RowError struct {
	SKU   string `json:"sku"`
	Error string `json:"error"`
}

type UploadResult struct {
	Total   int        `json:"total"`
	Success int        `json:"success"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors"`
}

type UploadResponse struct {
	Message string `json:"message"`
	*UploadResult
}
