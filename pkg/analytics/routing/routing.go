// Package routing assigns delivery orders to (warehouse, transport mode)
// pairs at minimum cost by formulating each planning date as a small
// mixed-integer program.
package routing

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
	"github.com/nmehta/opsengine/pkg/solver"
)

// earthRadiusKm is the mean earth radius used by the haversine distance
const earthRadiusKm = 6371.0

// tieEpsilon nudges objective coefficients by mode priority so cost ties
// resolve to the mode with the lowest base cost, keeping repeated runs on
// identical input reproducible.
const tieEpsilon = 1e-6

// ModeCost describes one transport mode's cost model and limits
type ModeCost struct {
	Mode entities.TransportMode
	// BaseCost is charged once per assignment; PerKmCost scales with the
	// haversine distance from warehouse to destination.
	BaseCost  decimal.Decimal
	PerKmCost decimal.Decimal
	// Capacity is the maximum deliveries this mode can carry per planning
	// date.
	Capacity int
	// TransitDays is the typical transit time; a delivery whose window
	// from order to planned date is shorter cannot use this mode.
	TransitDays int
}

// Config holds the mode cost table and the per-date solve budget
type Config struct {
	Modes []ModeCost
	// SolveTimeout bounds each per-date solve. Zero means no limit.
	SolveTimeout time.Duration
}

// DefaultConfig returns a three-mode cost table (Road, Rail, Air)
func DefaultConfig() Config {
	return Config{
		Modes: []ModeCost{
			{Mode: "Road", BaseCost: decimal.NewFromInt(500), PerKmCost: decimal.NewFromFloat(8), Capacity: 20, TransitDays: 3},
			{Mode: "Rail", BaseCost: decimal.NewFromInt(1200), PerKmCost: decimal.NewFromFloat(5), Capacity: 30, TransitDays: 5},
			{Mode: "Air", BaseCost: decimal.NewFromInt(5000), PerKmCost: decimal.NewFromFloat(18), Capacity: 10, TransitDays: 1},
		},
		SolveTimeout: 10 * time.Second,
	}
}

// Validate checks the mode table
func (c Config) Validate() error {
	if len(c.Modes) == 0 {
		return &analytics.ConfigurationError{Component: "routing", Parameter: "modes", Reason: "at least one transport mode is required"}
	}
	seen := make(map[entities.TransportMode]bool, len(c.Modes))
	for _, m := range c.Modes {
		if m.Mode == "" {
			return &analytics.ConfigurationError{Component: "routing", Parameter: "modes", Reason: "mode name cannot be empty"}
		}
		if seen[m.Mode] {
			return &analytics.ConfigurationError{Component: "routing", Parameter: "modes", Reason: fmt.Sprintf("duplicate mode %s", m.Mode)}
		}
		seen[m.Mode] = true
		if m.BaseCost.IsNegative() || m.PerKmCost.IsNegative() {
			return &analytics.ConfigurationError{Component: "routing", Parameter: "modes", Reason: fmt.Sprintf("mode %s has negative cost", m.Mode)}
		}
		if m.Capacity <= 0 {
			return &analytics.ConfigurationError{Component: "routing", Parameter: "modes", Reason: fmt.Sprintf("mode %s capacity must be positive", m.Mode)}
		}
		if m.TransitDays < 0 {
			return &analytics.ConfigurationError{Component: "routing", Parameter: "modes", Reason: fmt.Sprintf("mode %s transit days cannot be negative", m.Mode)}
		}
	}
	if c.SolveTimeout < 0 {
		return &analytics.ConfigurationError{Component: "routing", Parameter: "solve_timeout", Reason: "cannot be negative"}
	}
	return nil
}

// Assignment is one delivery's chosen warehouse and mode
type Assignment struct {
	DeliveryID  entities.DeliveryID
	WarehouseID entities.WarehouseID
	Mode        entities.TransportMode
	DistanceKm  float64
	Cost        decimal.Decimal
}

// Plan is the optimized assignment set for one planning date
type Plan struct {
	Date        time.Time
	Status      solver.Status
	Assignments []Assignment
	TotalCost   decimal.Decimal
	Warnings    []analytics.Warning
}

// BatchResult collects per-date plans; a failed date lands in Errors and
// does not abort its siblings.
type BatchResult struct {
	Plans  []Plan
	Errors map[string]error
}

// Optimizer formulates and solves per-date delivery assignment programs
type Optimizer struct {
	cfg    Config
	solver solver.Solver
	// priority maps each mode to its rank by ascending base cost.
	priority map[entities.TransportMode]int
}

// New creates a validated Optimizer. A nil solver selects the built-in
// branch-and-bound.
func New(cfg Config, s solver.Solver) (*Optimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if s == nil {
		s = solver.NewBranchAndBound()
	}

	ranked := make([]ModeCost, len(cfg.Modes))
	copy(ranked, cfg.Modes)
	sort.SliceStable(ranked, func(i, j int) bool {
		if cmp := ranked[i].BaseCost.Cmp(ranked[j].BaseCost); cmp != 0 {
			return cmp < 0
		}
		return ranked[i].Mode < ranked[j].Mode
	})
	priority := make(map[entities.TransportMode]int, len(ranked))
	for i, m := range ranked {
		priority[m.Mode] = i
	}

	return &Optimizer{cfg: cfg, solver: s, priority: priority}, nil
}

// candidate is one feasible (delivery, warehouse, mode) triple with its
// objective coefficient and exact cost.
type candidate struct {
	delivery  int
	warehouse int
	mode      int
	distance  float64
	cost      decimal.Decimal
	coeff     float64
}

// Optimize assigns every delivery planned for the given date to a
// warehouse and mode at minimum total cost. Zero deliveries yield an empty
// optimal plan. An unsatisfiable date returns an InfeasibleError.
func (o *Optimizer) Optimize(ctx context.Context, date time.Time, deliveries []entities.DeliveryOrder, warehouses []entities.Warehouse) (*Plan, error) {
	plan := &Plan{Date: date, Status: solver.Optimal, TotalCost: decimal.Zero}
	if len(deliveries) == 0 {
		return plan, nil
	}
	if len(warehouses) == 0 {
		return nil, &analytics.ConfigurationError{Component: "routing", Parameter: "warehouses", Reason: "at least one warehouse is required"}
	}

	candidates, err := o.buildCandidates(date, deliveries, warehouses)
	if err != nil {
		return nil, err
	}

	p := o.formulate(deliveries, warehouses, candidates)

	solveCtx := ctx
	if o.cfg.SolveTimeout > 0 {
		var cancel context.CancelFunc
		solveCtx, cancel = context.WithTimeout(ctx, o.cfg.SolveTimeout)
		defer cancel()
	}

	sol, err := o.solver.Solve(solveCtx, p)
	if err != nil {
		return nil, fmt.Errorf("solving route assignment for %s: %w", date.Format("2006-01-02"), err)
	}
	switch sol.Status {
	case solver.Infeasible:
		return nil, &analytics.InfeasibleError{
			PlanningDate: date,
			Constraint:   "capacity",
			Reason:       "warehouse and mode capacities cannot cover all deliveries",
		}
	case solver.TimeLimited:
		plan.Status = solver.TimeLimited
		plan.Warnings = append(plan.Warnings, analytics.Warnf(
			analytics.WarnTimeLimited, date.Format("2006-01-02"),
			"route solve for %s hit the %s budget; assignments are best found, not proven optimal",
			date.Format("2006-01-02"), o.cfg.SolveTimeout))
	}

	for i, c := range candidates {
		if sol.X[i] != 1 {
			continue
		}
		plan.Assignments = append(plan.Assignments, Assignment{
			DeliveryID:  deliveries[c.delivery].ID,
			WarehouseID: warehouses[c.warehouse].ID,
			Mode:        o.cfg.Modes[c.mode].Mode,
			DistanceKm:  c.distance,
			Cost:        c.cost,
		})
		plan.TotalCost = plan.TotalCost.Add(c.cost)
	}
	sort.SliceStable(plan.Assignments, func(i, j int) bool {
		return plan.Assignments[i].DeliveryID < plan.Assignments[j].DeliveryID
	})
	return plan, nil
}

// OptimizeBatch groups deliveries by their planned date and solves each
// date in chronological order, checking cancellation between solves.
// Per-date failures are isolated in the result's Errors map.
func (o *Optimizer) OptimizeBatch(ctx context.Context, deliveries []entities.DeliveryOrder, warehouses []entities.Warehouse) (*BatchResult, error) {
	byDate := make(map[string][]entities.DeliveryOrder)
	for _, d := range deliveries {
		key := d.PlannedDelivery.UTC().Format("2006-01-02")
		byDate[key] = append(byDate[key], d)
	}
	dates := make([]string, 0, len(byDate))
	for key := range byDate {
		dates = append(dates, key)
	}
	sort.Strings(dates)

	result := &BatchResult{Errors: make(map[string]error)}
	for _, key := range dates {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		date, _ := time.Parse("2006-01-02", key)
		plan, err := o.Optimize(ctx, date, byDate[key], warehouses)
		if err != nil {
			result.Errors[key] = err
			continue
		}
		result.Plans = append(result.Plans, *plan)
	}
	return result, nil
}

// buildCandidates enumerates feasible (warehouse, mode) pairs per delivery.
// A mode is feasible when its transit time fits between the order date and
// the planned delivery date. A delivery with no feasible pair fails the
// date with an InfeasibleError naming it.
func (o *Optimizer) buildCandidates(date time.Time, deliveries []entities.DeliveryOrder, warehouses []entities.Warehouse) ([]candidate, error) {
	var candidates []candidate
	for di, delivery := range deliveries {
		windowDays := delivery.PlannedDelivery.Sub(delivery.OrderDate).Hours() / 24
		found := false
		for mi, mode := range o.cfg.Modes {
			if float64(mode.TransitDays) > windowDays {
				continue
			}
			for wi, wh := range warehouses {
				dist := Haversine(wh.Lat, wh.Lon, delivery.DestLat, delivery.DestLon)
				cost := mode.BaseCost.Add(mode.PerKmCost.Mul(decimal.NewFromFloat(dist)))
				candidates = append(candidates, candidate{
					delivery:  di,
					warehouse: wi,
					mode:      mi,
					distance:  dist,
					cost:      cost,
					coeff:     cost.InexactFloat64() + tieEpsilon*float64(o.priority[mode.Mode]),
				})
				found = true
			}
		}
		if !found {
			return nil, &analytics.InfeasibleError{
				PlanningDate: date,
				DeliveryID:   string(delivery.ID),
				Constraint:   "due_date",
				Reason:       fmt.Sprintf("no mode meets due date for delivery %s", delivery.ID),
			}
		}
	}
	return candidates, nil
}

// formulate builds the assignment program: one binary variable per
// candidate, an equality row per delivery, and capacity rows per warehouse
// and per mode.
func (o *Optimizer) formulate(deliveries []entities.DeliveryOrder, warehouses []entities.Warehouse, candidates []candidate) solver.Problem {
	n := len(candidates)
	p := solver.Problem{
		Obj:    make([]float64, n),
		Binary: make([]int, n),
	}
	for i, c := range candidates {
		p.Obj[i] = c.coeff
		p.Binary[i] = i
	}

	for di := range deliveries {
		row := make([]float64, n)
		for i, c := range candidates {
			if c.delivery == di {
				row[i] = 1
			}
		}
		p.Eq = append(p.Eq, row)
		p.EqRHS = append(p.EqRHS, 1)
	}

	for wi, wh := range warehouses {
		row := make([]float64, n)
		for i, c := range candidates {
			if c.warehouse == wi {
				row[i] = 1
			}
		}
		p.Le = append(p.Le, row)
		p.LeRHS = append(p.LeRHS, float64(wh.Capacity))
	}

	for mi, mode := range o.cfg.Modes {
		row := make([]float64, n)
		for i, c := range candidates {
			if c.mode == mi {
				row[i] = 1
			}
		}
		p.Le = append(p.Le, row)
		p.LeRHS = append(p.LeRHS, float64(mode.Capacity))
	}

	return p
}

// Haversine returns the great-circle distance in kilometers between two
// coordinates.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const degToRad = math.Pi / 180
	phi1, phi2 := lat1*degToRad, lat2*degToRad
	dPhi := (lat2 - lat1) * degToRad
	dLambda := (lon2 - lon1) * degToRad

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
