package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aaravmahajanofficial/product-catalog/internal/config"
	"github.com/hellofresh/health-go/v5"
	"github.com/hellofresh/health-go/v5/checks/postgres"
	healthRedis "github.com/hellofresh/health-go/v5/checks/redis"
)

const Version = "1.0.0"

// NewHealthHandler reports on the database, the upload directory and, when
// enabled, Redis. Redis is optional for serving, so its failure only degrades
// the status.
func NewHealthHandler(cfg *config.Config) (*health.Health, error) {

	checks := []health.Config{
		{
			Name:      "database",
			Timeout:   3 * time.Second,
			SkipOnErr: false,
			Check: postgres.New(postgres.Config{
				DSN: cfg.Database.GetDSN(),
			}),
		},
		{
			Name:      "upload-dir",
			Timeout:   time.Second,
			SkipOnErr: false,
			Check:     uploadDirCheck(cfg.Upload.TempDir),
		},
	}

	if cfg.RedisConnect.Enabled {
		checks = append(checks, health.Config{
			Name:      "redis",
			Timeout:   2 * time.Second,
			SkipOnErr: true,
			Check: healthRedis.New(healthRedis.Config{
				DSN: cfg.RedisConnect.GetDSN(),
			}),
		})
	}

	h, err := health.New(
		health.WithComponent(health.Component{
			Name:    cfg.Otel.ServiceName,
			Version: Version,
		}),
		health.WithSystemInfo(),
		health.WithChecks(checks...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create health instance: %w", err)
	}

	return h, nil
}

func uploadDirCheck(dir string) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("upload dir unavailable: %w", err)
		}

		f, err := os.CreateTemp(dir, ".health-*")
		if err != nil {
			return fmt.Errorf("upload dir not writable: %w", err)
		}
		name := f.Name()
		f.Close()

		return os.Remove(name)
	}
}
