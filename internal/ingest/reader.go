package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/aaravmahajanofficial/product-catalog/internal/models"
)

// ReadRecords parses a CSV stream whose first row is the header and returns one
// normalized record per data row, in file order. A stream that is not valid
// CSV fails the whole read and no records are returned.
func (n *Normalizer) ReadRecords(r io.Reader) ([]models.RawRecord, error) {
	cr := csv.NewReader(r)
	// Row width is not enforced; short rows leave the missing fields empty.
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	head, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []models.RawRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	header := NormalizeHeader(head)

	records := []models.RawRecord{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		records = append(records, n.Record(header, row))
	}

	return records, nil
}
