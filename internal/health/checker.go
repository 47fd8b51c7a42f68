package health

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by *pgxpool.Pool and, via a thin adapter, *sql.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that the task store is reachable.
type Checker struct {
	db     Pinger
	dbName string
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

// NewChecker creates a health checker and registers its Prometheus gauge.
// dbName labels the store in responses and metrics ("postgres"/"sqlite").
func NewChecker(db Pinger, dbName string, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "taskboard",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		db:     db,
		dbName: dbName,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings every dependency and reports per-check status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult),
	}

	if err := c.db.Ping(checkCtx); err != nil {
		c.logger.Warn("store health check failed", "store", c.dbName, "error", err)
		result.Status = "down"
		result.Checks[c.dbName] = CheckResult{Status: "down", Error: err.Error()}
		c.gauge.WithLabelValues(c.dbName).Set(0)
	} else {
		result.Checks[c.dbName] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues(c.dbName).Set(1)
	}

	return result
}

// SQLPinger adapts *sql.DB's context ping to the Pinger interface.
type SQLPinger struct {
	DB interface {
		PingContext(ctx context.Context) error
	}
}

func (p SQLPinger) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}
