package observability

import (
	"context"
	"strings"

	"github.com/riskibarqy/esports-stats/internal/config"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/uptrace/uptrace-go/uptrace"
	"go.opentelemetry.io/otel/attribute"
)

type shutdownFunc = func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// InitUptrace installs the global tracer provider when UPTRACE_ENABLED is set.
// Spans carry the store driver so memory-mode runs are easy to filter out.
func InitUptrace(cfg config.Config, logger *logging.Logger) (shutdownFunc, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if !cfg.UptraceEnabled || strings.TrimSpace(cfg.UptraceDSN) == "" {
		logger.Debug("uptrace off", "enabled", cfg.UptraceEnabled)
		return noopShutdown, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(cfg.UptraceDSN),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attribute.String("esports.store_driver", cfg.StoreDriver)),
		uptrace.WithLoggingEnabled(false),
	)

	logger.Info("uptrace exporting", "service", cfg.ServiceName, "env", cfg.AppEnv)
	return func(ctx context.Context) error {
		if err := uptrace.Shutdown(ctx); err != nil {
			return err
		}
		logger.Info("uptrace flushed")
		return nil
	}, nil
}
