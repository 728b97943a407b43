package taskpool

import "github.com/osmike/taskpool/internal/errs"

// Sentinel errors a Future can fail with. Compare using errors.Is, since a
// resolved error is always wrapped with call-site detail.
var (
	ErrValidation   = errs.ErrValidation
	ErrClosing      = errs.ErrClosing
	ErrTimeout      = errs.ErrTimeout
	ErrCancelled    = errs.ErrCancelled
	ErrWorkerCrash  = errs.ErrWorkerCrash
	ErrPoolShutdown = errs.ErrPoolShutdown
)
