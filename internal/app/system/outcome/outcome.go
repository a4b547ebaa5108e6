// Package outcome makes the critical/best-effort split explicit at the call
// site. A Critical step's error fails the request. A BestEffort step's
// error is logged and the request carries on.
package outcome

import (
	"context"

	"go.uber.org/zap"
)

// Criticality says whether a step may fail the enclosing request.
type Criticality int

const (
	Critical Criticality = iota
	BestEffort
)

func (c Criticality) String() string {
	if c == BestEffort {
		return "best-effort"
	}
	return "critical"
}

// Result is what one step produced.
type Result struct {
	Op          string
	Criticality Criticality
	Err         error
}

// OK reports whether the step succeeded.
func (r Result) OK() bool { return r.Err == nil }

// Fatal reports whether the enclosing request must fail.
func (r Result) Fatal() bool { return r.Err != nil && r.Criticality == Critical }

// Run executes fn and classifies its error. BestEffort failures are logged
// at Warn here; Critical failures are left to the caller to log and map.
func Run(ctx context.Context, log *zap.Logger, c Criticality, op string, fn func(context.Context) error) Result {
	err := fn(ctx)
	if err != nil && c == BestEffort && log != nil {
		log.Warn("best-effort step failed",
			zap.String("op", op),
			zap.Error(err))
	}
	return Result{Op: op, Criticality: c, Err: err}
}
