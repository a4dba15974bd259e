package solver

import (
	"context"
	"math"
	"testing"
)

func TestContinuousLinearProgram(t *testing.T) {
	// min -x1 - 2*x2  s.t.  x1 + x2 <= 4, x2 <= 3  ->  x = (1, 3), obj -7
	p := Problem{
		Obj:   []float64{-1, -2},
		Le:    [][]float64{{1, 1}, {0, 1}},
		LeRHS: []float64{4, 3},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("status = %s, want Optimal", sol.Status)
	}
	if math.Abs(sol.Objective-(-7)) > 1e-9 {
		t.Errorf("objective = %f, want -7", sol.Objective)
	}
	if math.Abs(sol.X[0]-1) > 1e-9 || math.Abs(sol.X[1]-3) > 1e-9 {
		t.Errorf("x = %v, want (1, 3)", sol.X)
	}
}

func TestBinaryKnapsack(t *testing.T) {
	// Maximize value 10, 6, 4 with weights 5, 4, 3 under capacity 8.
	// The relaxation is fractional; the integer optimum picks items 1 and 3.
	p := Problem{
		Obj:    []float64{-10, -6, -4},
		Le:     [][]float64{{5, 4, 3}},
		LeRHS:  []float64{8},
		Binary: []int{0, 1, 2},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("status = %s, want Optimal", sol.Status)
	}
	if math.Abs(sol.Objective-(-14)) > 1e-6 {
		t.Errorf("objective = %f, want -14", sol.Objective)
	}
	want := []float64{1, 0, 1}
	for i, w := range want {
		if sol.X[i] != w {
			t.Errorf("x[%d] = %f, want %f", i, sol.X[i], w)
		}
	}
}

func TestAssignmentEquality(t *testing.T) {
	// Exactly one of two binary choices, cheaper one wins.
	p := Problem{
		Obj:    []float64{3, 2},
		Eq:     [][]float64{{1, 1}},
		EqRHS:  []float64{1},
		Binary: []int{0, 1},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Optimal {
		t.Fatalf("status = %s, want Optimal", sol.Status)
	}
	if sol.X[0] != 0 || sol.X[1] != 1 {
		t.Errorf("x = %v, want (0, 1)", sol.X)
	}
	if math.Abs(sol.Objective-2) > 1e-9 {
		t.Errorf("objective = %f, want 2", sol.Objective)
	}
}

func TestInfeasibleProblem(t *testing.T) {
	// A binary variable cannot equal two.
	p := Problem{
		Obj:    []float64{1},
		Eq:     [][]float64{{1}},
		EqRHS:  []float64{2},
		Binary: []int{0},
	}

	sol, err := NewBranchAndBound().Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if sol.Status != Infeasible {
		t.Errorf("status = %s, want Infeasible", sol.Status)
	}
}

func TestExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := Problem{
		Obj:    []float64{-1},
		Le:     [][]float64{{1}},
		LeRHS:  []float64{1},
		Binary: []int{0},
	}
	if _, err := NewBranchAndBound().Solve(ctx, p); err == nil {
		t.Error("expected the context error with no incumbent available")
	}
}

func TestProblemValidation(t *testing.T) {
	tests := []struct {
		name string
		p    Problem
	}{
		{"no variables", Problem{}},
		{"mismatched equality rhs", Problem{Obj: []float64{1}, Eq: [][]float64{{1}}}},
		{"mismatched inequality rhs", Problem{Obj: []float64{1}, Le: [][]float64{{1}}}},
		{"short row", Problem{Obj: []float64{1, 2}, Le: [][]float64{{1}}, LeRHS: []float64{1}}},
		{"binary index out of range", Problem{Obj: []float64{1}, Binary: []int{3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.p.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
