package pool

import (
	"runtime"
	"time"

	"go.uber.org/zap"
)

// RequeuePolicy controls where a job lands in its priority band when the
// health check evicts it from an unresponsive worker.
type RequeuePolicy int

const (
	// RequeueFront puts the evicted job back at the head of its band, so
	// it does not lose its place behind jobs that arrived while it was
	// stalled. This is the default: SPEC_FULL.md's design notes resolve
	// the re-queue-on-eviction open question in favor of preserving the
	// priority-ordering guarantee over strict insertion-order fairness.
	RequeueFront RequeuePolicy = iota
	// RequeueBack puts the evicted job back at the tail of its band.
	RequeueBack
)

// Config carries every tunable the pool's constructor accepts. Zero values
// for the sizing and interval fields are replaced by Resolve with the
// defaults named in SPEC_FULL.md's external interfaces section.
type Config struct {
	PoolSize    int
	MinPoolSize int
	MaxPoolSize int

	AutoScale        bool
	ScaleUpThreshold int
	ScaleDownDelay   time.Duration

	StrictMode bool

	HealthCheckInterval time.Duration
	MaxInactivity       time.Duration

	RequeuePolicy RequeuePolicy

	Logger *zap.Logger
}

// Resolve returns a copy of cfg with every unset field replaced by its
// default, matching a full Go-native config's usual load-and-validate step
// rather than requiring every caller to know the defaults themselves.
func (cfg Config) Resolve() Config {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = runtime.GOMAXPROCS(0)
	}
	if cfg.MinPoolSize <= 0 {
		cfg.MinPoolSize = cfg.PoolSize
	}
	if cfg.MaxPoolSize <= 0 {
		cfg.MaxPoolSize = cfg.PoolSize
	}
	if cfg.MaxPoolSize < cfg.MinPoolSize {
		cfg.MaxPoolSize = cfg.MinPoolSize
	}
	if cfg.PoolSize < cfg.MinPoolSize {
		cfg.PoolSize = cfg.MinPoolSize
	}
	if cfg.PoolSize > cfg.MaxPoolSize {
		cfg.PoolSize = cfg.MaxPoolSize
	}
	if cfg.ScaleUpThreshold <= 0 {
		cfg.ScaleUpThreshold = cfg.PoolSize
	}
	if cfg.ScaleDownDelay <= 0 {
		cfg.ScaleDownDelay = 30 * time.Second
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = 5 * time.Second
	}
	if cfg.MaxInactivity <= 0 {
		cfg.MaxInactivity = 60 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return cfg
}
