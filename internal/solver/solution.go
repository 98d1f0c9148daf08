package solver

// Status is the outcome reported by the solving engine.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusInfeasible Status = "infeasible"
	StatusUnbounded  Status = "unbounded"
	StatusTimeLimit  Status = "time_limit"
	StatusError      Status = "error"
)

// Solution holds the result of one solve: the objective value and the
// assignment for every column of the model.
type Solution struct {
	Status     Status             `json:"status"`
	Objective  float64            `json:"objective"`
	Values     map[string]float64 `json:"values"`
	Iterations int64              `json:"iterations,omitempty"`
	Nodes      int64              `json:"nodes,omitempty"`
	SolveTime  float64            `json:"solve_time_seconds,omitempty"`
}

// IsOptimal returns true if the engine proved optimality.
func (s *Solution) IsOptimal() bool { return s.Status == StatusOptimal }

// HasSolution returns true if Values carries a usable assignment.
func (s *Solution) HasSolution() bool {
	return s.Status == StatusOptimal || s.Status == StatusTimeLimit
}

// Value returns the solution value for a variable, 0 if absent.
func (s *Solution) Value(name string) float64 { return s.Values[name] }
