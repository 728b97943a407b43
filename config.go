package taskpool

import (
	"time"

	"github.com/osmike/taskpool/internal/pool"
	"go.uber.org/zap"
)

// RequeuePolicy controls where a job lands in its priority band when the
// health check evicts it from an unresponsive worker.
type RequeuePolicy = pool.RequeuePolicy

const (
	RequeueFront = pool.RequeueFront
	RequeueBack  = pool.RequeueBack
)

// Config configures a Pool. Every field is optional; a zero Config
// produces a pool sized to GOMAXPROCS with strict-mode validation on,
// matching a typical production default rather than the most permissive
// one.
type Config struct {
	// PoolSize is the initial worker count. Zero means GOMAXPROCS(0).
	PoolSize int

	// MinPoolSize and MaxPoolSize bound autoscaling. Zero means PoolSize
	// (autoscaling effectively disabled) for either.
	MinPoolSize int
	MaxPoolSize int

	// AutoScale enables growing the pool on sustained queue pressure and
	// shrinking it back down on sustained idleness.
	AutoScale        bool
	ScaleUpThreshold int
	ScaleDownDelay   time.Duration

	// StrictMode gates the submission-time validator. Nil means true: a
	// pointer, rather than a plain bool, so an explicit false is
	// distinguishable from "not set" and the safer default doesn't
	// silently disable itself for every caller who leaves it zero-valued.
	StrictMode *bool

	// HealthCheckInterval and MaxInactivity govern the periodic sweep for
	// unresponsive workers. Zero means 5s and 60s respectively.
	HealthCheckInterval time.Duration
	MaxInactivity       time.Duration

	// RequeuePolicy controls where a health-check-evicted job re-enters
	// its priority band. Zero value is RequeueFront.
	RequeuePolicy RequeuePolicy

	// Logger receives structured diagnostics: worker panics, crashes and
	// restarts, health-check evictions, autoscaling, and shutdown. Nil
	// means a no-op logger.
	Logger *zap.Logger
}

func (c Config) resolve() pool.Config {
	strict := true
	if c.StrictMode != nil {
		strict = *c.StrictMode
	}
	return pool.Config{
		PoolSize:            c.PoolSize,
		MinPoolSize:         c.MinPoolSize,
		MaxPoolSize:         c.MaxPoolSize,
		AutoScale:           c.AutoScale,
		ScaleUpThreshold:    c.ScaleUpThreshold,
		ScaleDownDelay:      c.ScaleDownDelay,
		StrictMode:          strict,
		HealthCheckInterval: c.HealthCheckInterval,
		MaxInactivity:       c.MaxInactivity,
		RequeuePolicy:       c.RequeuePolicy,
		Logger:              c.Logger,
	}
}

// Bool returns a pointer to v, a convenience for populating
// Config.StrictMode with a literal (e.g. taskpool.Bool(false)).
func Bool(v bool) *bool { return &v }
