package routing

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
	"github.com/nmehta/opsengine/pkg/solver"
)

func mustWarehouse(t *testing.T, id string, lat, lon float64, capacity int) entities.Warehouse {
	t.Helper()
	wh, err := entities.NewWarehouse(entities.WarehouseID(id), "WH "+id, lat, lon, capacity, "Regional")
	if err != nil {
		t.Fatalf("NewWarehouse(%s): %v", id, err)
	}
	return *wh
}

func mustDelivery(t *testing.T, id string, destLat, destLon float64, ordered time.Time, windowDays int) entities.DeliveryOrder {
	t.Helper()
	d, err := entities.NewDeliveryOrder(entities.DeliveryID(id), "P1", "", destLat, destLon,
		ordered, ordered.AddDate(0, 0, windowDays), nil, 5, "", decimal.Zero, 0, entities.DeliveryPlanned)
	if err != nil {
		t.Fatalf("NewDeliveryOrder(%s): %v", id, err)
	}
	return *d
}

func testModes() []ModeCost {
	return []ModeCost{
		{Mode: "Road", BaseCost: decimal.NewFromInt(500), PerKmCost: decimal.NewFromInt(8), Capacity: 20, TransitDays: 3},
		{Mode: "Express", BaseCost: decimal.NewFromInt(900), PerKmCost: decimal.NewFromInt(10), Capacity: 20, TransitDays: 2},
		{Mode: "Air", BaseCost: decimal.NewFromInt(5000), PerKmCost: decimal.NewFromInt(18), Capacity: 10, TransitDays: 1},
	}
}

func TestHaversine(t *testing.T) {
	// Mumbai to Delhi is roughly 1150 km great-circle.
	got := Haversine(19.0760, 72.8777, 28.7041, 77.1025)
	if math.Abs(got-1150) > 20 {
		t.Errorf("Haversine(Mumbai, Delhi) = %.1f km, want about 1150", got)
	}
	if Haversine(10, 20, 10, 20) != 0 {
		t.Error("distance from a point to itself should be zero")
	}
}

func TestSingleFeasiblePairSelected(t *testing.T) {
	// One warehouse and a one-day window: only Air is feasible, so it must
	// be chosen regardless of being the most expensive mode.
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	warehouses := []entities.Warehouse{mustWarehouse(t, "WH1", 19.0760, 72.8777, 10)}
	deliveries := []entities.DeliveryOrder{mustDelivery(t, "D123", 28.7041, 77.1025, date, 1)}

	opt, err := New(Config{Modes: testModes()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	plan, err := opt.Optimize(context.Background(), date, deliveries, warehouses)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	if plan.Status != solver.Optimal {
		t.Fatalf("status = %s, want Optimal", plan.Status)
	}
	if len(plan.Assignments) != 1 {
		t.Fatalf("got %d assignments, want 1", len(plan.Assignments))
	}
	got := plan.Assignments[0]
	if got.Mode != "Air" || got.WarehouseID != "WH1" || got.DeliveryID != "D123" {
		t.Errorf("assignment = %+v, want D123 via Air from WH1", got)
	}
	if !plan.TotalCost.Equal(got.Cost) {
		t.Errorf("total cost %s != assignment cost %s", plan.TotalCost, got.Cost)
	}
}

func TestCheapestModeWinsWhenAllFeasible(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	warehouses := []entities.Warehouse{mustWarehouse(t, "WH1", 19.0760, 72.8777, 10)}
	deliveries := []entities.DeliveryOrder{mustDelivery(t, "D1", 18.5204, 73.8567, date, 10)}

	opt, _ := New(Config{Modes: testModes()}, nil)
	plan, err := opt.Optimize(context.Background(), date, deliveries, warehouses)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if plan.Assignments[0].Mode != "Road" {
		t.Errorf("mode = %s, want Road (lowest cost)", plan.Assignments[0].Mode)
	}
}

func TestModeCapacityRespected(t *testing.T) {
	// Three deliveries but Road can only carry two per date; one must
	// overflow onto the next cheapest feasible mode.
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	modes := []ModeCost{
		{Mode: "Road", BaseCost: decimal.NewFromInt(500), PerKmCost: decimal.NewFromInt(8), Capacity: 2, TransitDays: 3},
		{Mode: "Express", BaseCost: decimal.NewFromInt(900), PerKmCost: decimal.NewFromInt(10), Capacity: 20, TransitDays: 2},
	}
	warehouses := []entities.Warehouse{mustWarehouse(t, "WH1", 19.0760, 72.8777, 10)}
	deliveries := []entities.DeliveryOrder{
		mustDelivery(t, "D1", 18.5204, 73.8567, date, 10),
		mustDelivery(t, "D2", 18.9, 73.5, date, 10),
		mustDelivery(t, "D3", 19.2, 73.1, date, 10),
	}

	opt, _ := New(Config{Modes: modes}, nil)
	plan, err := opt.Optimize(context.Background(), date, deliveries, warehouses)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	counts := make(map[entities.TransportMode]int)
	for _, a := range plan.Assignments {
		counts[a.Mode]++
	}
	if counts["Road"] > 2 {
		t.Errorf("Road carries %d deliveries, capacity is 2", counts["Road"])
	}
	if counts["Road"]+counts["Express"] != 3 {
		t.Errorf("assignments by mode = %v, want all 3 deliveries assigned", counts)
	}
}

func TestDueDateInfeasibility(t *testing.T) {
	// A same-day delivery window fits no mode's transit time.
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	warehouses := []entities.Warehouse{mustWarehouse(t, "WH1", 19.0760, 72.8777, 10)}
	deliveries := []entities.DeliveryOrder{mustDelivery(t, "D123", 28.7041, 77.1025, date, 0)}

	opt, _ := New(Config{Modes: testModes()}, nil)
	_, err := opt.Optimize(context.Background(), date, deliveries, warehouses)

	var infErr *analytics.InfeasibleError
	if !errors.As(err, &infErr) {
		t.Fatalf("error = %v, want InfeasibleError", err)
	}
	if infErr.DeliveryID != "D123" || infErr.Constraint != "due_date" {
		t.Errorf("error names %s/%s, want D123/due_date", infErr.DeliveryID, infErr.Constraint)
	}
}

func TestCapacityInfeasibility(t *testing.T) {
	// Two deliveries but total system capacity is one.
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	modes := []ModeCost{
		{Mode: "Road", BaseCost: decimal.NewFromInt(500), PerKmCost: decimal.NewFromInt(8), Capacity: 1, TransitDays: 3},
	}
	warehouses := []entities.Warehouse{mustWarehouse(t, "WH1", 19.0760, 72.8777, 10)}
	deliveries := []entities.DeliveryOrder{
		mustDelivery(t, "D1", 18.5204, 73.8567, date, 10),
		mustDelivery(t, "D2", 18.9, 73.5, date, 10),
	}

	opt, _ := New(Config{Modes: modes}, nil)
	_, err := opt.Optimize(context.Background(), date, deliveries, warehouses)

	var infErr *analytics.InfeasibleError
	if !errors.As(err, &infErr) {
		t.Fatalf("error = %v, want InfeasibleError", err)
	}
	if infErr.Constraint != "capacity" {
		t.Errorf("constraint = %s, want capacity", infErr.Constraint)
	}
}

func TestZeroDeliveriesIsEmptyPlan(t *testing.T) {
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	opt, _ := New(Config{Modes: testModes()}, nil)

	plan, err := opt.Optimize(context.Background(), date, nil, nil)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(plan.Assignments) != 0 || !plan.TotalCost.IsZero() {
		t.Errorf("plan = %+v, want empty with zero cost", plan)
	}
	if plan.Status != solver.Optimal {
		t.Errorf("status = %s, want Optimal", plan.Status)
	}
}

func TestBatchIsolatesPerDateFailures(t *testing.T) {
	day1 := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	warehouses := []entities.Warehouse{mustWarehouse(t, "WH1", 19.0760, 72.8777, 10)}
	deliveries := []entities.DeliveryOrder{
		mustDelivery(t, "D-OK", 18.5204, 73.8567, day1.AddDate(0, 0, -10), 10),
		// Same-day window: infeasible for every mode.
		mustDelivery(t, "D-BAD", 28.7041, 77.1025, day2, 0),
	}

	opt, _ := New(Config{Modes: testModes()}, nil)
	result, err := opt.OptimizeBatch(context.Background(), deliveries, warehouses)
	if err != nil {
		t.Fatalf("OptimizeBatch: %v", err)
	}

	if len(result.Plans) != 1 {
		t.Fatalf("got %d plans, want 1", len(result.Plans))
	}
	if result.Plans[0].Assignments[0].DeliveryID != "D-OK" {
		t.Errorf("planned delivery = %s, want D-OK", result.Plans[0].Assignments[0].DeliveryID)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("got %d errors, want 1", len(result.Errors))
	}
	var infErr *analytics.InfeasibleError
	if !errors.As(result.Errors["2025-06-02"], &infErr) {
		t.Errorf("error for 2025-06-02 = %v, want InfeasibleError", result.Errors["2025-06-02"])
	}
}

func TestBatchStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	warehouses := []entities.Warehouse{mustWarehouse(t, "WH1", 19.0760, 72.8777, 10)}
	deliveries := []entities.DeliveryOrder{mustDelivery(t, "D1", 18.5204, 73.8567, day, 10)}

	opt, _ := New(Config{Modes: testModes()}, nil)
	result, err := opt.OptimizeBatch(ctx, deliveries, warehouses)
	if err == nil {
		t.Fatal("expected the context error")
	}
	if len(result.Plans) != 0 {
		t.Errorf("got %d plans after cancellation, want 0", len(result.Plans))
	}
}

func TestDeliveryPerformance(t *testing.T) {
	ordered := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	onTime := ordered.AddDate(0, 0, 3)
	late := ordered.AddDate(0, 0, 6)

	mk := func(id string, actual *time.Time, mode entities.TransportMode, cost int64) entities.DeliveryOrder {
		d, err := entities.NewDeliveryOrder(entities.DeliveryID(id), "P1", "WH1", 18.5, 73.8,
			ordered, ordered.AddDate(0, 0, 4), actual, 5, mode, decimal.NewFromInt(cost), 120, entities.DeliveryDelivered)
		if err != nil {
			t.Fatalf("NewDeliveryOrder(%s): %v", id, err)
		}
		return *d
	}

	kpis := Performance([]entities.DeliveryOrder{
		mk("D1", &onTime, "Road", 1000),
		mk("D2", &late, "Road", 1100),
		mk("D3", &onTime, "Air", 6000),
		mk("D4", nil, "Road", 0),
	})

	if kpis.TotalOrders != 4 || kpis.DeliveredOrders != 3 {
		t.Errorf("orders = %d/%d, want 4 total, 3 delivered", kpis.TotalOrders, kpis.DeliveredOrders)
	}
	if math.Abs(kpis.OnTimeRate-2.0/3) > 1e-9 {
		t.Errorf("on-time rate = %f, want 2/3", kpis.OnTimeRate)
	}
	if want := decimal.NewFromInt(8100); !kpis.TotalCost.Equal(want) {
		t.Errorf("total cost = %s, want %s", kpis.TotalCost, want)
	}
	if road := kpis.ByMode["Road"]; road.Orders != 2 || math.Abs(road.OnTimeRate-0.5) > 1e-9 {
		t.Errorf("Road KPIs = %+v, want 2 orders at 50%% on time", road)
	}
	if len(kpis.Warnings) != 1 || kpis.Warnings[0].Key != "D4" {
		t.Errorf("warnings = %v, want one for D4", kpis.Warnings)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no modes", func(c *Config) { c.Modes = nil }},
		{"duplicate mode", func(c *Config) { c.Modes = append(c.Modes, c.Modes[0]) }},
		{"empty mode name", func(c *Config) { c.Modes[0].Mode = "" }},
		{"negative cost", func(c *Config) { c.Modes[0].BaseCost = decimal.NewFromInt(-1) }},
		{"zero capacity", func(c *Config) { c.Modes[0].Capacity = 0 }},
		{"negative transit days", func(c *Config) { c.Modes[0].TransitDays = -1 }},
		{"negative timeout", func(c *Config) { c.SolveTimeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Modes: testModes()}
			tt.mutate(&cfg)
			var cfgErr *analytics.ConfigurationError
			if _, err := New(cfg, nil); !errors.As(err, &cfgErr) {
				t.Errorf("error = %v, want ConfigurationError", err)
			}
		})
	}
}
