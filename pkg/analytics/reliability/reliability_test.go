package reliability

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

func mustAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("Expected default config to validate: %v", err)
	}
	return a
}

func event(id string, eq entities.EquipmentID, start time.Time, downtimeHours float64, cost int64) entities.DowntimeEvent {
	return entities.DowntimeEvent{
		ID:          id,
		EquipmentID: eq,
		FailureAt:   start,
		RepairStart: start,
		RepairEnd:   start.Add(time.Duration(downtimeHours * float64(time.Hour))),
		FailureType: "Mechanical",
		RepairCost:  decimal.NewFromInt(cost),
	}
}

func TestAnalyze_ThirtyDayScenario(t *testing.T) {
	// 3 events for EQ1 over a 30-day window, downtime [5, 3, 2] hours,
	// repair cost [1000, 500, 1500].
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := analytics.Window{Start: start, End: start.AddDate(0, 0, 30)}

	equipment := []entities.Equipment{{ID: "EQ1", Type: "CNC"}}
	events := []entities.DowntimeEvent{
		event("DT1", "EQ1", start.AddDate(0, 0, 3), 5, 1000),
		event("DT2", "EQ1", start.AddDate(0, 0, 12), 3, 500),
		event("DT3", "EQ1", start.AddDate(0, 0, 25), 2, 1500),
	}

	result, err := mustAnalyzer(t).Analyze(context.Background(), equipment, events, window)
	if err != nil {
		t.Fatalf("Expected analysis to succeed: %v", err)
	}
	if len(result.Metrics) != 1 {
		t.Fatalf("Expected 1 metric row, got %d", len(result.Metrics))
	}

	m := result.Metrics[0]
	if m.FailureCount != 3 {
		t.Errorf("Expected failure count 3, got %d", m.FailureCount)
	}
	if m.TotalDowntimeHours != 10 {
		t.Errorf("Expected 10 total downtime hours, got %g", m.TotalDowntimeHours)
	}
	if math.Abs(m.MTTRHours-3.33) > 0.01 {
		t.Errorf("Expected MTTR 3.33h (±0.01), got %g", m.MTTRHours)
	}
	if !m.TotalRepairCost.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("Expected total repair cost 3000, got %s", m.TotalRepairCost)
	}

	windowHours := 30.0 * 24
	wantAvailability := (windowHours - 10) / windowHours
	if math.Abs(m.Availability-wantAvailability) > 1e-9 {
		t.Errorf("Expected availability %g, got %g", wantAvailability, m.Availability)
	}
	if m.MTBFHours == nil {
		t.Fatal("Expected MTBF for equipment with failures")
	}
	wantMTBF := (windowHours - 10) / 3
	if math.Abs(*m.MTBFHours-wantMTBF) > 1e-9 {
		t.Errorf("Expected MTBF %g, got %g", wantMTBF, *m.MTBFHours)
	}
}

func TestAnalyze_NoFailureEquipment(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := analytics.Window{Start: start, End: start.AddDate(0, 0, 30)}

	equipment := []entities.Equipment{
		{ID: "EQ1", Type: "CNC"},
		{ID: "EQ2", Type: "Pump"},
	}
	events := []entities.DowntimeEvent{event("DT1", "EQ1", start.AddDate(0, 0, 5), 4, 800)}

	result, err := mustAnalyzer(t).Analyze(context.Background(), equipment, events, window)
	if err != nil {
		t.Fatalf("Expected analysis to succeed: %v", err)
	}

	var quiet *EquipmentMetrics
	for i := range result.Metrics {
		if result.Metrics[i].EquipmentID == "EQ2" {
			quiet = &result.Metrics[i]
		}
	}
	if quiet == nil {
		t.Fatal("Equipment without failures must still be reported")
	}
	if quiet.MTBFHours != nil {
		t.Error("Expected nil MTBF for equipment with no failures")
	}
	if quiet.Availability != 1.0 {
		t.Errorf("Expected availability 1.0, got %g", quiet.Availability)
	}
	if !quiet.NoFailureHistory {
		t.Error("Expected no-failure flag to be set")
	}

	found := false
	for _, w := range result.Warnings {
		if w.Code == analytics.WarnNoFailureHistory && w.Key == "EQ2" {
			found = true
		}
	}
	if !found {
		t.Error("Expected a no-failure-history warning for EQ2")
	}
}

func TestAnalyze_RiskRankingAndTieBreak(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	window := analytics.Window{Start: start, End: start.AddDate(0, 0, 30)}

	equipment := []entities.Equipment{
		{ID: "EQ1", Type: "CNC"},
		{ID: "EQ2", Type: "CNC"},
		{ID: "EQ3", Type: "CNC"},
	}
	// EQ1 and EQ2 have identical failure counts and downtime; EQ2's higher
	// repair cost must rank it above EQ1. EQ3 is clearly the worst.
	events := []entities.DowntimeEvent{
		event("A1", "EQ1", start.AddDate(0, 0, 2), 3, 500),
		event("B1", "EQ2", start.AddDate(0, 0, 2), 3, 900),
		event("C1", "EQ3", start.AddDate(0, 0, 1), 8, 2000),
		event("C2", "EQ3", start.AddDate(0, 0, 9), 8, 2000),
		event("C3", "EQ3", start.AddDate(0, 0, 20), 8, 2000),
	}

	result, err := mustAnalyzer(t).Analyze(context.Background(), equipment, events, window)
	if err != nil {
		t.Fatalf("Expected analysis to succeed: %v", err)
	}

	if result.Metrics[0].EquipmentID != "EQ3" {
		t.Errorf("Expected EQ3 ranked first, got %s", result.Metrics[0].EquipmentID)
	}
	if result.Metrics[1].EquipmentID != "EQ2" {
		t.Errorf("Expected EQ2 above EQ1 on repair cost tie-break, got %s", result.Metrics[1].EquipmentID)
	}
	if result.Metrics[0].RiskScore != 100 {
		t.Errorf("Expected the worst equipment to score 100, got %g", result.Metrics[0].RiskScore)
	}
}

func TestAnalyze_DanglingEquipmentReference(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []entities.DowntimeEvent{event("DT1", "GHOST", start, 2, 100)}

	_, err := mustAnalyzer(t).Analyze(context.Background(), nil, events, analytics.Window{})
	var integrity *analytics.DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("Expected DataIntegrityError, got %v", err)
	}
	if integrity.Entity != "downtime_event" {
		t.Errorf("Expected downtime_event entity, got %s", integrity.Entity)
	}
}

func TestAnalyze_DerivedWindow(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	equipment := []entities.Equipment{{ID: "EQ1", Type: "CNC"}}
	events := []entities.DowntimeEvent{
		event("DT1", "EQ1", start, 2, 100),
		event("DT2", "EQ1", start.AddDate(0, 0, 10), 4, 100),
	}

	result, err := mustAnalyzer(t).Analyze(context.Background(), equipment, events, analytics.Window{})
	if err != nil {
		t.Fatalf("Expected analysis to succeed: %v", err)
	}
	if !result.Window.Start.Equal(start) {
		t.Errorf("Expected derived window start %v, got %v", start, result.Window.Start)
	}
	wantEnd := start.AddDate(0, 0, 10).Add(4 * time.Hour)
	if !result.Window.End.Equal(wantEnd) {
		t.Errorf("Expected derived window end %v, got %v", wantEnd, result.Window.End)
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"negative weight", func(c *Config) { c.Weights.RepairCost = -0.1 }, true},
		{"all-zero weights", func(c *Config) { c.Weights = Weights{} }, true},
		{"performance above one", func(c *Config) { c.PerformanceFactor = 1.5 }, true},
		{"negative top n", func(c *Config) { c.TopN = -1 }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Expected wantErr=%v, got err=%v", tc.wantErr, err)
			}
			if tc.wantErr {
				var confErr *analytics.ConfigurationError
				if !errors.As(err, &confErr) {
					t.Errorf("Expected ConfigurationError, got %T", err)
				}
			}
		})
	}
}
