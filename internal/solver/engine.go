package solver

import (
	"context"
	"time"

	"milp-runner/internal/lp"
)

// Options tunes a single solve request.
type Options struct {
	// UseDual selects the dual simplex method instead of primal.
	UseDual bool
	// MIP enables branch-and-bound for integer/binary columns. When
	// false the engine solves the continuous relaxation.
	MIP bool
	// TimeLimit caps engine time; zero means no limit.
	TimeLimit time.Duration
}

// Engine is the solving collaborator: it consumes a complete model and
// returns an objective value plus variable assignments. The parser has no
// dependency on it.
type Engine interface {
	Solve(ctx context.Context, model *lp.Model, opts Options) (*Solution, error)
}
