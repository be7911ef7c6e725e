package telemetry

import (
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterDBTracing installs the otelgorm plugin so each query becomes a child span of the request.
// Query variables are left out of spans; they can carry buyer emails.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	plugin := otelgorm.NewPlugin(
		otelgorm.WithDBName(cfg.DBName),
		otelgorm.WithoutQueryVariables(),
	)
	if err := db.Use(plugin); err != nil {
		return fmt.Errorf("register otelgorm: %w", err)
	}

	if logger != nil {
		logger.Info("Database tracing enabled", zap.String("db_name", cfg.DBName))
	}
	return nil
}

// DBTracingConfig holds configuration for database tracing
type DBTracingConfig struct {
	Enabled bool
	DBName  string
}
