package repository

import (
	"context"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/product-catalog/internal/config"
	"github.com/jmoiron/sqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

type Repository struct {
	DB      *sqlx.DB
	Product ProductRepository
}

// New opens the connection pool once for the whole process. Every repository
// built from it shares the pool, which is safe for concurrent use.
func New(ctx context.Context, cfg *config.Config) (*Repository, error) {

	db, err := otelsql.Open("postgres", cfg.Database.GetDSN(), otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlxDB := sqlx.NewDb(db, "postgres")

	return &Repository{
		DB:      sqlxDB,
		Product: NewProductRepo(sqlxDB),
	}, nil
}

func (p *Repository) Close() error {
	return p.DB.Close()
}
