package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aaravmahajanofficial/product-catalog/internal/models"
	"github.com/aaravmahajanofficial/product-catalog/internal/utils"
	"github.com/jmoiron/sqlx"
)

const createProductsTable = `
	CREATE TABLE IF NOT EXISTS products (
		id SERIAL PRIMARY KEY,
		sku VARCHAR(100) UNIQUE,
		name VARCHAR(255),
		brand VARCHAR(255),
		color VARCHAR(50),
		size VARCHAR(50),
		mrp NUMERIC(10,2),
		price NUMERIC(10,2),
		quantity INT
	)`

const insertColumns = 8

// Postgres accepts at most 65535 bind parameters per statement.
var maxRowsPerStatement = 65535 / insertColumns

type ProductRepository interface {
	EnsureSchema(ctx context.Context) error
	BulkInsert(ctx context.Context, products []*models.Product) (int64, error)
	ListProducts(ctx context.Context, page models.Pagination) ([]*models.Product, error)
	SearchProducts(ctx context.Context, filter models.SearchFilter) ([]*models.Product, error)
}

// productRepository is safe for concurrent use.
type productRepository struct {
	DB *sqlx.DB

	schemaMu    sync.Mutex
	schemaReady bool
}

func NewProductRepo(db *sqlx.DB) ProductRepository {
	return &productRepository{DB: db}
}

// EnsureSchema creates the products table on first use. A failed attempt is
// retried by the next call.
func (r *productRepository) EnsureSchema(ctx context.Context) error {
	r.schemaMu.Lock()
	defer r.schemaMu.Unlock()

	if r.schemaReady {
		return nil
	}

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	if _, err := r.DB.ExecContext(dbCtx, createProductsTable); err != nil {
		return fmt.Errorf("creating products table: %w", err)
	}

	r.schemaReady = true

	return nil
}

// BulkInsert writes products with a single multi-row INSERT. Rows whose sku
// already exists are skipped. It returns the number of rows inserted.
// Batches too large for one statement are split, inside one transaction.
func (r *productRepository) BulkInsert(ctx context.Context, products []*models.Product) (int64, error) {
	if len(products) == 0 {
		return 0, nil
	}

	dbCtx, cancel := utils.WithBulkTimeout(ctx)
	defer cancel()

	if len(products) <= maxRowsPerStatement {
		query, args := buildInsert(products)

		res, err := r.DB.ExecContext(dbCtx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("inserting products: %w", err)
		}

		return res.RowsAffected()
	}

	tx, err := r.DB.BeginTxx(dbCtx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning insert transaction: %w", err)
	}
	defer tx.Rollback()

	var inserted int64
	for start := 0; start < len(products); start += maxRowsPerStatement {
		end := min(start+maxRowsPerStatement, len(products))
		query, args := buildInsert(products[start:end])

		res, err := tx.ExecContext(dbCtx, query, args...)
		if err != nil {
			return 0, fmt.Errorf("inserting products: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		inserted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing insert transaction: %w", err)
	}

	return inserted, nil
}

func buildInsert(products []*models.Product) (string, []any) {
	var sb strings.Builder
	args := make([]any, 0, len(products)*insertColumns)

	sb.WriteString("INSERT INTO products (sku, name, brand, color, size, mrp, price, quantity) VALUES ")

	for i, p := range products {
		if i > 0 {
			sb.WriteString(", ")
		}
		n := i * insertColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7, n+8)
		args = append(args, p.SKU, p.Name, p.Brand, p.Color, p.Size, p.MRP, p.Price, p.Quantity)
	}

	sb.WriteString(" ON CONFLICT (sku) DO NOTHING")

	return sb.String(), args
}

func (r *productRepository) ListProducts(ctx context.Context, page models.Pagination) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := selectProducts + ` ORDER BY id LIMIT $1 OFFSET $2`

	products := []*models.Product{}
	if err := r.DB.SelectContext(dbCtx, &products, query, page.Limit, page.Offset); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return products, nil
}

func (r *productRepository) SearchProducts(ctx context.Context, filter models.SearchFilter) ([]*models.Product, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query, args := BuildSearchQuery(filter)

	products := []*models.Product{}
	if err := r.DB.SelectContext(dbCtx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}

	return products, nil
}
