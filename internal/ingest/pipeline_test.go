package ingest_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	appErrors "github.com/aaravmahajanofficial/product-catalog/internal/errors"
	"github.com/aaravmahajanofficial/product-catalog/internal/ingest"
	"github.com/aaravmahajanofficial/product-catalog/internal/models"
	"github.com/aaravmahajanofficial/product-catalog/internal/repositories/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const header = "sku,name,brand,color,size,mrp,price,quantity\n"

func writeCSV(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "uploaded file should be removed after processing")
}

func TestIngest(t *testing.T) {
	t.Run("Success - Valid and invalid rows", func(t *testing.T) {
		// Arrange
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))

		path := writeCSV(t, header+
			"A1,Shirt,X,Red,M,100,80,5\n"+
			"A2,Jeans,Y,Blue,L,100,120,1\n"+
			"A3,Socks,X,White,S,10,10,3\n")

		store.On("EnsureSchema", mock.Anything).Return(nil).Once()
		store.On("BulkInsert", mock.Anything, mock.MatchedBy(func(ps []*models.Product) bool {
			return len(ps) == 2 && ps[0].SKU == "A1" && ps[1].SKU == "A3"
		})).Return(int64(2), nil).Once()

		// Act
		result, err := pipeline.Ingest(t.Context(), path)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
		assert.Equal(t, 2, result.Success)
		assert.Equal(t, 1, result.Failed)
		assert.Equal(t, []models.RowError{{SKU: "A2", Error: "Invalid input format"}}, result.Errors)
		assertRemoved(t, path)
	})

	t.Run("Success - All rows invalid skips insert", func(t *testing.T) {
		// Arrange
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))

		path := writeCSV(t, header+
			",Shirt,X,Red,M,100,80,5\n"+
			"B2,Hat,X,Red,M,10,5,0\n")

		store.On("EnsureSchema", mock.Anything).Return(nil).Once()

		// Act
		result, err := pipeline.Ingest(t.Context(), path)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
		assert.Zero(t, result.Success)
		assert.Equal(t, 2, result.Failed)
		assert.Equal(t, "", result.Errors[0].SKU)
		assert.Equal(t, "B2", result.Errors[1].SKU)
		store.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything)
		assertRemoved(t, path)
	})

	t.Run("Success - Empty file", func(t *testing.T) {
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))
		path := writeCSV(t, "")

		store.On("EnsureSchema", mock.Anything).Return(nil).Once()

		result, err := pipeline.Ingest(t.Context(), path)

		require.NoError(t, err)
		assert.Zero(t, result.Total)
		assert.Zero(t, result.Success)
		assert.Zero(t, result.Failed)
		assert.NotNil(t, result.Errors)
		store.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything)
		assertRemoved(t, path)
	})

	t.Run("Success - Duplicate skus reported as success", func(t *testing.T) {
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))
		path := writeCSV(t, header+"A1,Shirt,X,Red,M,100,80,5\nA1,Shirt,X,Red,M,100,80,5\n")

		store.On("EnsureSchema", mock.Anything).Return(nil).Once()
		store.On("BulkInsert", mock.Anything, mock.Anything).Return(int64(1), nil).Once()

		result, err := pipeline.Ingest(t.Context(), path)

		require.NoError(t, err)
		assert.Equal(t, 2, result.Success)
		assert.Zero(t, result.Failed)
	})

	t.Run("Failure - Malformed CSV", func(t *testing.T) {
		// Arrange
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))
		path := writeCSV(t, header+"A1,\"Shirt,X,Red,M,100,80,5\n")

		// Act
		result, err := pipeline.Ingest(t.Context(), path)

		// Assert
		require.Error(t, err)
		assert.Nil(t, result)

		var appErr *appErrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, appErrors.ErrCodeIngestion, appErr.Code)
		assert.Equal(t, "Error while processing CSV", appErr.Message)
		store.AssertNotCalled(t, "EnsureSchema", mock.Anything)
		assertRemoved(t, path)
	})

	t.Run("Failure - Missing file", func(t *testing.T) {
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))

		result, err := pipeline.Ingest(t.Context(), filepath.Join(t.TempDir(), "gone.csv"))

		require.Error(t, err)
		assert.Nil(t, result)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeIngestion, appErr.Code)
	})

	t.Run("Failure - Schema error", func(t *testing.T) {
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))
		path := writeCSV(t, header+"A1,Shirt,X,Red,M,100,80,5\n")
		dbError := errors.New("connection refused")

		store.On("EnsureSchema", mock.Anything).Return(dbError).Once()

		result, err := pipeline.Ingest(t.Context(), path)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, dbError)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeDatabaseError, appErr.Code)
		store.AssertNotCalled(t, "BulkInsert", mock.Anything, mock.Anything)
		assertRemoved(t, path)
	})

	t.Run("Failure - Insert error", func(t *testing.T) {
		store := mocks.NewProductRepository(t)
		pipeline := ingest.NewPipeline(store, ingest.NewNormalizer(true))
		path := writeCSV(t, header+"A1,Shirt,X,Red,M,100,80,5\n")
		dbError := errors.New("numeric field overflow")

		store.On("EnsureSchema", mock.Anything).Return(nil).Once()
		store.On("BulkInsert", mock.Anything, mock.Anything).Return(int64(0), dbError).Once()

		result, err := pipeline.Ingest(t.Context(), path)

		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, dbError)
		assert.Equal(t, 500, appErrors.StatusCode(err))
		assertRemoved(t, path)
	})
}

func TestPartitionKeepsFileOrder(t *testing.T) {
	records := []models.RawRecord{
		models.NewRawRecord(map[string]string{"sku": "bad-1"}),
		models.NewRawRecord(map[string]string{"sku": "ok-1", "name": "n", "brand": "b", "color": "c", "size": "s", "mrp": "2", "price": "1", "quantity": "1"}),
		models.NewRawRecord(map[string]string{"sku": "bad-2", "name": "n"}),
		models.NewRawRecord(map[string]string{"sku": "ok-2", "name": "n", "brand": "b", "color": "c", "size": "s", "mrp": "2", "price": "2", "quantity": "9"}),
	}

	valid, rejected := ingest.Partition(records)

	require.Len(t, valid, 2)
	assert.Equal(t, "ok-1", valid[0].SKU)
	assert.Equal(t, "ok-2", valid[1].SKU)
	require.Len(t, rejected, 2)
	assert.Equal(t, "bad-1", rejected[0].SKU)
	assert.Equal(t, "bad-2", rejected[1].SKU)
}
