package ingest

import (
	"context"
	"log/slog"
	"os"

	"github.com/aaravmahajanofficial/product-catalog/internal/api/middleware"
	"github.com/aaravmahajanofficial/product-catalog/internal/errors"
	"github.com/aaravmahajanofficial/product-catalog/internal/metrics"
	"github.com/aaravmahajanofficial/product-catalog/internal/models"
)

const (
	invalidRowMessage = "Invalid input format"
	processingFailed  = "Error while processing CSV"
)

// Store is the persistence the pipeline writes accepted products to.
type Store interface {
	EnsureSchema(ctx context.Context) error
	BulkInsert(ctx context.Context, products []*models.Product) (int64, error)
}

type Pipeline struct {
	store      Store
	normalizer *Normalizer
}

func NewPipeline(store Store, normalizer *Normalizer) *Pipeline {
	return &Pipeline{store: store, normalizer: normalizer}
}

// Ingest reads the CSV file at path, stores every valid row in one batch and
// reports the rows that were rejected. The file is removed once processing
// ends, whatever the outcome.
func (p *Pipeline) Ingest(ctx context.Context, path string) (*models.UploadResult, error) {
	logger := middleware.LoggerFromContext(ctx).With(slog.String("file", path))

	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			logger.Warn("Failed to remove uploaded file", slog.String("error", err.Error()))
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		logger.Error("Failed to open uploaded file", slog.String("error", err.Error()))
		return nil, errors.IngestionError(processingFailed).WithError(err)
	}
	defer f.Close()

	records, err := p.normalizer.ReadRecords(f)
	if err != nil {
		logger.Error("Failed to parse CSV", slog.String("error", err.Error()))
		return nil, errors.IngestionError(processingFailed).WithError(err)
	}

	valid, rejected := Partition(records)

	result := &models.UploadResult{
		Total:   len(records),
		Success: len(valid),
		Failed:  len(rejected),
		Errors:  rejected,
	}

	if err := p.store.EnsureSchema(ctx); err != nil {
		logger.Error("Failed to ensure products table", slog.String("error", err.Error()))
		return nil, errors.DatabaseError(processingFailed).WithError(err)
	}

	if len(valid) > 0 {
		inserted, err := p.store.BulkInsert(ctx, valid)
		if err != nil {
			logger.Error("Failed to insert products", slog.Int("rows", len(valid)), slog.String("error", err.Error()))
			return nil, errors.DatabaseError(processingFailed).WithError(err)
		}
		logger.Info("Products inserted",
			slog.Int("candidates", len(valid)),
			slog.Int64("inserted", inserted),
			slog.Int64("skipped_duplicates", int64(len(valid))-inserted),
		)
	}

	metrics.ObserveIngestion(result.Success, result.Failed)
	logger.Info("CSV processed", slog.Int("total", result.Total), slog.Int("success", result.Success), slog.Int("failed", result.Failed))

	return result, nil
}

// Partition splits records into storable products and row errors, keeping
// file order in both.
func Partition(records []models.RawRecord) ([]*models.Product, []models.RowError) {
	valid := make([]*models.Product, 0, len(records))
	rejected := []models.RowError{}

	for _, rec := range records {
		product, ok := toProduct(rec)
		if !ok {
			rejected = append(rejected, models.RowError{SKU: rec.SKU(), Error: invalidRowMessage})
			continue
		}
		valid = append(valid, product)
	}

	return valid, rejected
}
