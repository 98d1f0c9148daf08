package lp

import (
	"fmt"
	"math"
)

// Direction selects the optimization sense of the objective.
type Direction int

const (
	Maximize Direction = iota
	Minimize
)

func (d Direction) String() string {
	if d == Minimize {
		return "Min"
	}
	return "Max"
}

// Relation is the comparison operator tying an expression to its
// right-hand constant. The objective carries RelNone.
type Relation string

const (
	RelNone Relation = ""
	RelLE   Relation = "<="
	RelGE   Relation = ">="
	RelEQ   Relation = "="
)

// VarKind classifies a variable for the solving engine.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

func (k VarKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Binary:
		return "binary"
	default:
		return "continuous"
	}
}

// Term is one signed coefficient-variable pair of a linear expression.
// Terms referencing the same variable within one expression are kept
// separate; summing them is the solver's business.
type Term struct {
	Coeff float64
	Var   string
}

// LinearExpr is an ordered list of terms plus an optional relation and
// right-hand constant. Line is the 1-based source line it came from.
type LinearExpr struct {
	Terms []Term
	RHS   float64
	Op    Relation
	Line  int
}

// Bound is the feasible range and kind of one variable. A free variable's
// Lower/Upper are ignored by the solver.
type Bound struct {
	Lower float64
	Upper float64
	Free  bool
	Kind  VarKind
}

// DefaultBound returns the unconstrained continuous bound a variable
// receives on first reference.
func DefaultBound() Bound {
	return Bound{Lower: math.Inf(-1), Upper: math.Inf(1), Kind: Continuous}
}

// Model is the complete parsed problem, ready for handoff to a solving
// engine. VarOrder records first-reference order so that column iteration
// is deterministic across runs.
type Model struct {
	Direction   Direction
	Objective   LinearExpr
	Constraints []LinearExpr
	Bounds      map[string]Bound
	VarOrder    []string
}

// NewModel creates an empty model.
func NewModel() *Model {
	return &Model{Bounds: make(map[string]Bound)}
}

// BoundFor returns the bound record for name, materializing the default
// record (and recording the reference order) on first mention. Every
// variable touched by the parser goes through here, so the solver never
// encounters a missing column.
func (m *Model) BoundFor(name string) Bound {
	b, ok := m.Bounds[name]
	if !ok {
		b = DefaultBound()
		m.Bounds[name] = b
		m.VarOrder = append(m.VarOrder, name)
	}
	return b
}

// SetBound stores an updated bound record for name, registering the
// variable if it has not been seen before.
func (m *Model) SetBound(name string, b Bound) {
	if _, ok := m.Bounds[name]; !ok {
		m.VarOrder = append(m.VarOrder, name)
	}
	m.Bounds[name] = b
}

// NumVars returns the number of columns the solver will see.
func (m *Model) NumVars() int { return len(m.VarOrder) }

// NumConstraints returns the number of constraint rows.
func (m *Model) NumConstraints() int { return len(m.Constraints) }

// IsMIP reports whether any variable is integer or binary.
func (m *Model) IsMIP() bool {
	for _, name := range m.VarOrder {
		if m.Bounds[name].Kind != Continuous {
			return true
		}
	}
	return false
}

// Validate checks the internal consistency the solving engine relies on:
// a non-empty objective, non-empty related constraints, a bounds entry for
// every referenced variable, binary variables fixed to [0,1], and
// lower <= upper for every non-free variable.
func (m *Model) Validate() error {
	if len(m.Objective.Terms) == 0 {
		return fmt.Errorf("model has no objective")
	}
	for _, t := range m.Objective.Terms {
		if _, ok := m.Bounds[t.Var]; !ok {
			return fmt.Errorf("objective variable %q has no bounds entry", t.Var)
		}
	}
	for i, c := range m.Constraints {
		if len(c.Terms) == 0 {
			return fmt.Errorf("constraint %d (line %d) has no terms", i+1, c.Line)
		}
		if c.Op == RelNone {
			return fmt.Errorf("constraint %d (line %d) has no relational operator", i+1, c.Line)
		}
		for _, t := range c.Terms {
			if _, ok := m.Bounds[t.Var]; !ok {
				return fmt.Errorf("constraint variable %q has no bounds entry", t.Var)
			}
		}
	}
	for _, name := range m.VarOrder {
		b := m.Bounds[name]
		if b.Kind == Binary && (b.Lower != 0 || b.Upper != 1) {
			return fmt.Errorf("binary variable %q has bounds [%g, %g], want [0, 1]", name, b.Lower, b.Upper)
		}
		if !b.Free && b.Lower > b.Upper {
			return fmt.Errorf("variable %q has empty range [%g, %g]", name, b.Lower, b.Upper)
		}
	}
	return nil
}
