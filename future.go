package taskpool

import (
	"context"
	"fmt"

	"github.com/osmike/taskpool/internal/domain"
)

// Future is a type-safe handle to a submitted job's eventual result. The
// zero value is not usable; obtain one from Submit or SubmitFunc.
type Future[R any] struct {
	job *domain.Job
}

// Wait blocks until the job resolves or ctx is done, whichever comes
// first. A result whose runtime type does not match R (only possible when
// the submitted function's return value disagrees with the type argument
// the caller chose) surfaces as an error rather than a panic.
func (f *Future[R]) Wait(ctx context.Context) (R, error) {
	var zero R
	select {
	case res := <-f.job.Done():
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Value == nil {
			return zero, nil
		}
		v, ok := res.Value.(R)
		if !ok {
			return zero, fmt.Errorf("taskpool: result type mismatch: got %T", res.Value)
		}
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Result blocks uninterruptibly until the job resolves. Equivalent to
// Wait(context.Background()) but avoids an import at call sites that have
// no other use for a context.
func (f *Future[R]) Result() (R, error) {
	return f.Wait(context.Background())
}
