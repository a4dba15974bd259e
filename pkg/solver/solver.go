// Package solver provides a small mixed-integer linear programming layer:
// a branch-and-bound search over continuous relaxations solved with the
// simplex method. Problems are minimization with equality and
// less-than-or-equal constraints over non-negative variables, some of
// which may be restricted to {0, 1}.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

// Status reports how a solve terminated
type Status int

const (
	// Optimal means the search closed the tree and proved optimality.
	Optimal Status = iota
	// TimeLimited means the deadline expired; the solution is the best
	// incumbent found, not necessarily optimal.
	TimeLimited
	// Infeasible means no assignment satisfies the constraints.
	Infeasible
)

// String method for Status enum
func (s Status) String() string {
	switch s {
	case Optimal:
		return "Optimal"
	case TimeLimited:
		return "TimeLimited"
	case Infeasible:
		return "Infeasible"
	default:
		return "Unknown"
	}
}

// Problem is a minimization over non-negative variables:
//
//	min  Obj . x
//	s.t. Eq x  = EqRHS
//	     Le x <= LeRHS
//	     x[i] in {0, 1} for i in Binary
type Problem struct {
	Obj   []float64
	Eq    [][]float64
	EqRHS []float64
	Le    [][]float64
	LeRHS []float64
	// Binary lists the variable indices restricted to {0, 1}.
	Binary []int
}

// Validate checks dimensional consistency before solving
func (p Problem) Validate() error {
	n := len(p.Obj)
	if n == 0 {
		return errors.New("solver: problem has no variables")
	}
	if len(p.Eq) != len(p.EqRHS) {
		return fmt.Errorf("solver: %d equality rows but %d right-hand sides", len(p.Eq), len(p.EqRHS))
	}
	if len(p.Le) != len(p.LeRHS) {
		return fmt.Errorf("solver: %d inequality rows but %d right-hand sides", len(p.Le), len(p.LeRHS))
	}
	for i, row := range p.Eq {
		if len(row) != n {
			return fmt.Errorf("solver: equality row %d has %d coefficients, want %d", i, len(row), n)
		}
	}
	for i, row := range p.Le {
		if len(row) != n {
			return fmt.Errorf("solver: inequality row %d has %d coefficients, want %d", i, len(row), n)
		}
	}
	for _, idx := range p.Binary {
		if idx < 0 || idx >= n {
			return fmt.Errorf("solver: binary index %d out of range [0, %d)", idx, n)
		}
	}
	return nil
}

// Solution is the outcome of a solve. X is only meaningful when the status
// is Optimal or TimeLimited.
type Solution struct {
	Status    Status
	Objective float64
	X         []float64
}

// Solver solves mixed-integer linear programs
type Solver interface {
	Solve(ctx context.Context, p Problem) (Solution, error)
}

// BranchAndBound explores binary branchings depth-first, pruning nodes
// whose relaxation bound cannot beat the incumbent.
type BranchAndBound struct {
	// Tol is the simplex pivot tolerance.
	Tol float64
	// IntTol is the integrality tolerance when classifying relaxation
	// values as binary.
	IntTol float64
}

var _ Solver = (*BranchAndBound)(nil)

// NewBranchAndBound returns a solver with standard tolerances
func NewBranchAndBound() *BranchAndBound {
	return &BranchAndBound{Tol: 1e-10, IntTol: 1e-6}
}

// bound is a branching decision fixing a binary variable
type bound struct {
	index int
	value float64
}

type node struct {
	fixed []bound
}

// Solve runs the branch-and-bound search. When the context deadline expires
// mid-search, the best incumbent is returned with status TimeLimited; with
// no incumbent yet, the context error is returned.
func (b *BranchAndBound) Solve(ctx context.Context, p Problem) (Solution, error) {
	if err := p.Validate(); err != nil {
		return Solution{}, err
	}

	incumbent := Solution{Status: Infeasible, Objective: math.Inf(1)}
	haveIncumbent := false

	stack := []node{{}}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			if haveIncumbent {
				incumbent.Status = TimeLimited
				return incumbent, nil
			}
			return Solution{}, err
		}

		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		obj, x, err := b.relax(p, n.fixed)
		if err != nil {
			if errors.Is(err, lp.ErrInfeasible) {
				continue
			}
			return Solution{}, fmt.Errorf("solving relaxation: %w", err)
		}
		if haveIncumbent && obj >= incumbent.Objective {
			continue
		}

		branchIdx, fractional := b.mostFractional(p, x)
		if !fractional {
			incumbent = Solution{Status: Optimal, Objective: obj, X: roundBinaries(p, x)}
			haveIncumbent = true
			continue
		}

		// Explore the rounded-up branch first so greedy-looking
		// assignments surface early incumbents.
		stack = append(stack,
			node{fixed: append(append([]bound(nil), n.fixed...), bound{branchIdx, 0})},
			node{fixed: append(append([]bound(nil), n.fixed...), bound{branchIdx, 1})},
		)
	}

	if !haveIncumbent {
		return Solution{Status: Infeasible}, nil
	}
	return incumbent, nil
}

// relax solves the continuous relaxation of p with the given variables
// fixed. The problem is converted to simplex standard form (Ax = b, x >= 0)
// by appending one slack variable per inequality row; binary variables get
// an upper bound of one.
func (b *BranchAndBound) relax(p Problem, fixed []bound) (float64, []float64, error) {
	nVar := len(p.Obj)

	type leRow struct {
		coeffs map[int]float64
		rhs    float64
	}
	les := make([]leRow, 0, len(p.Le)+len(p.Binary)+2*len(fixed))
	for i, row := range p.Le {
		coeffs := make(map[int]float64, len(row))
		for j, c := range row {
			if c != 0 {
				coeffs[j] = c
			}
		}
		les = append(les, leRow{coeffs: coeffs, rhs: p.LeRHS[i]})
	}
	for _, idx := range p.Binary {
		les = append(les, leRow{coeffs: map[int]float64{idx: 1}, rhs: 1})
	}
	for _, f := range fixed {
		// value 0: x <= 0; value 1: -x <= -1. With x >= 0 and x <= 1
		// these pin the variable exactly.
		if f.value == 0 {
			les = append(les, leRow{coeffs: map[int]float64{f.index: 1}, rhs: 0})
		} else {
			les = append(les, leRow{coeffs: map[int]float64{f.index: -1}, rhs: -1})
		}
	}

	rows := len(p.Eq) + len(les)
	cols := nVar + len(les)
	a := mat.NewDense(rows, cols, nil)
	rhs := make([]float64, rows)
	for i, row := range p.Eq {
		for j, c := range row {
			a.Set(i, j, c)
		}
		rhs[i] = p.EqRHS[i]
	}
	for i, row := range les {
		r := len(p.Eq) + i
		for j, c := range row.coeffs {
			a.Set(r, j, c)
		}
		a.Set(r, nVar+i, 1)
		rhs[r] = row.rhs
	}

	c := make([]float64, cols)
	copy(c, p.Obj)

	obj, x, err := lp.Simplex(c, a, rhs, b.Tol, nil)
	if err != nil {
		return 0, nil, err
	}
	return obj, x[:nVar], nil
}

// mostFractional picks the binary variable farthest from integrality
func (b *BranchAndBound) mostFractional(p Problem, x []float64) (int, bool) {
	bestIdx, bestDist := -1, b.IntTol
	for _, idx := range p.Binary {
		dist := math.Abs(x[idx] - math.Round(x[idx]))
		if dist > bestDist {
			bestIdx, bestDist = idx, dist
		}
	}
	return bestIdx, bestIdx >= 0
}

// roundBinaries snaps near-integral binary values so callers can compare
// against exact zero and one.
func roundBinaries(p Problem, x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	for _, idx := range p.Binary {
		out[idx] = math.Round(out[idx])
	}
	return out
}
