// Package reliability computes per-equipment reliability statistics
// (MTBF, MTTR, availability, OEE) and a composite risk ranking from
// downtime history.
package reliability

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// Weights are the risk score factor weights
type Weights struct {
	FailureCount float64
	RepairCost   float64
	Downtime     float64
}

// Config holds the analyzer parameters. OEE performance and quality
// factors default to 1.0 since neither input exists in the data model.
type Config struct {
	Weights           Weights
	PerformanceFactor float64
	QualityFactor     float64
	TopN              int
}

// DefaultConfig returns the analyzer defaults (0.4/0.3/0.3 weights, top 10)
func DefaultConfig() Config {
	return Config{
		Weights:           Weights{FailureCount: 0.4, RepairCost: 0.3, Downtime: 0.3},
		PerformanceFactor: 1.0,
		QualityFactor:     1.0,
		TopN:              10,
	}
}

// Validate checks the configuration before any computation starts
func (c Config) Validate() error {
	if c.Weights.FailureCount < 0 || c.Weights.RepairCost < 0 || c.Weights.Downtime < 0 {
		return &analytics.ConfigurationError{Component: "reliability", Parameter: "weights", Reason: "must be non-negative"}
	}
	if c.Weights.FailureCount+c.Weights.RepairCost+c.Weights.Downtime == 0 {
		return &analytics.ConfigurationError{Component: "reliability", Parameter: "weights", Reason: "must not all be zero"}
	}
	if c.PerformanceFactor < 0 || c.PerformanceFactor > 1 {
		return &analytics.ConfigurationError{Component: "reliability", Parameter: "performance_factor", Reason: "must be in [0, 1]"}
	}
	if c.QualityFactor < 0 || c.QualityFactor > 1 {
		return &analytics.ConfigurationError{Component: "reliability", Parameter: "quality_factor", Reason: "must be in [0, 1]"}
	}
	if c.TopN < 0 {
		return &analytics.ConfigurationError{Component: "reliability", Parameter: "top_n", Reason: "must be non-negative"}
	}
	return nil
}

// Criticality quadrant labels from the MTBF/MTTR median split
const (
	CriticalityLowRisk       = "Low Risk"
	CriticalityHighFrequency = "High Frequency"
	CriticalityLongRepair    = "Long Repair"
	CriticalityCritical      = "Critical"
)

// EquipmentMetrics is the per-equipment reliability row
type EquipmentMetrics struct {
	EquipmentID        entities.EquipmentID
	Name               string
	Type               string
	FailureCount       int
	TotalDowntimeHours float64
	MTTRHours          float64
	// MTBFHours is nil for equipment with no failures in the window,
	// the "no-failure" sentinel rather than a computational error.
	MTBFHours        *float64
	TotalRepairCost  decimal.Decimal
	Availability     float64
	OEE              float64
	RiskScore        float64
	Criticality      string
	NoFailureHistory bool
}

// Result is the analyzer output: all rows ranked by risk, the top-N
// high-risk slice, and accumulated warnings.
type Result struct {
	Window   analytics.Window
	Metrics  []EquipmentMetrics
	HighRisk []EquipmentMetrics
	Warnings []analytics.Warning
}

// Analyzer computes reliability metrics for an equipment population
type Analyzer struct {
	cfg Config
}

// New creates a validated Analyzer
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Analyzer{cfg: cfg}, nil
}

// Analyze computes per-equipment metrics over the window. Events referencing
// unknown equipment fail the run with a DataIntegrityError.
func (a *Analyzer) Analyze(ctx context.Context, equipment []entities.Equipment, events []entities.DowntimeEvent, window analytics.Window) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byID := make(map[entities.EquipmentID]int, len(equipment))
	for i, eq := range equipment {
		byID[eq.ID] = i
	}
	for _, ev := range events {
		if _, ok := byID[ev.EquipmentID]; !ok {
			return nil, &analytics.DataIntegrityError{Entity: "downtime_event", ID: ev.ID, Field: "equipment_id", Reason: "references unknown equipment " + string(ev.EquipmentID)}
		}
	}

	if window.IsZero() {
		window = spanOf(events)
	}
	windowHours := window.Hours()

	inWindow := make(map[entities.EquipmentID][]entities.DowntimeEvent)
	for _, ev := range events {
		if ev.FailureAt.Before(window.Start) || ev.FailureAt.After(window.End) {
			continue
		}
		inWindow[ev.EquipmentID] = append(inWindow[ev.EquipmentID], ev)
	}

	result := &Result{Window: window, Metrics: make([]EquipmentMetrics, 0, len(equipment))}

	for _, eq := range equipment {
		m := EquipmentMetrics{
			EquipmentID:     eq.ID,
			Name:            eq.Name,
			Type:            eq.Type,
			TotalRepairCost: decimal.Zero,
			Availability:    1.0,
		}

		evs := inWindow[eq.ID]
		if len(evs) == 0 {
			m.NoFailureHistory = true
			m.OEE = a.cfg.PerformanceFactor * a.cfg.QualityFactor
			result.Warnings = append(result.Warnings, analytics.Warnf(
				analytics.WarnNoFailureHistory, string(eq.ID), "equipment %s has no failure history in window", eq.ID))
			result.Metrics = append(result.Metrics, m)
			continue
		}

		m.FailureCount = len(evs)
		for _, ev := range evs {
			m.TotalDowntimeHours += ev.DowntimeHours()
			m.TotalRepairCost = m.TotalRepairCost.Add(ev.RepairCost)
		}
		m.MTTRHours = m.TotalDowntimeHours / float64(m.FailureCount)

		operating := windowHours - m.TotalDowntimeHours
		if operating < 0 {
			operating = 0
		}
		if windowHours > 0 {
			m.Availability = operating / windowHours
		}
		mtbf := operating / float64(m.FailureCount)
		m.MTBFHours = &mtbf
		m.OEE = m.Availability * a.cfg.PerformanceFactor * a.cfg.QualityFactor

		result.Metrics = append(result.Metrics, m)
	}

	a.scoreRisk(result.Metrics)
	classifyCriticality(result.Metrics)

	sort.SliceStable(result.Metrics, func(i, j int) bool {
		mi, mj := result.Metrics[i], result.Metrics[j]
		if mi.RiskScore != mj.RiskScore {
			return mi.RiskScore > mj.RiskScore
		}
		// Higher total repair cost wins ties in rank.
		if cmp := mi.TotalRepairCost.Cmp(mj.TotalRepairCost); cmp != 0 {
			return cmp > 0
		}
		return mi.EquipmentID < mj.EquipmentID
	})

	topN := a.cfg.TopN
	if topN > len(result.Metrics) {
		topN = len(result.Metrics)
	}
	result.HighRisk = result.Metrics[:topN]

	return result, nil
}

// scoreRisk assigns the 0-100 weighted composite from min-max normalized
// failure count, repair cost, and downtime against the full population.
func (a *Analyzer) scoreRisk(metrics []EquipmentMetrics) {
	if len(metrics) == 0 {
		return
	}

	var failures, costs, downtimes []float64
	for _, m := range metrics {
		failures = append(failures, float64(m.FailureCount))
		costs = append(costs, m.TotalRepairCost.InexactFloat64())
		downtimes = append(downtimes, m.TotalDowntimeHours)
	}

	w := a.cfg.Weights
	totalWeight := w.FailureCount + w.RepairCost + w.Downtime
	for i := range metrics {
		score := w.FailureCount*minMax(failures[i], failures) +
			w.RepairCost*minMax(costs[i], costs) +
			w.Downtime*minMax(downtimes[i], downtimes)
		metrics[i].RiskScore = score / totalWeight * 100
	}
}

// classifyCriticality labels each equipment by its MTBF/MTTR quadrant
// relative to the population medians. No-failure equipment is Low Risk.
func classifyCriticality(metrics []EquipmentMetrics) {
	var mtbfs, mttrs []float64
	for _, m := range metrics {
		if m.MTBFHours != nil {
			mtbfs = append(mtbfs, *m.MTBFHours)
			mttrs = append(mttrs, m.MTTRHours)
		}
	}
	if len(mtbfs) == 0 {
		for i := range metrics {
			metrics[i].Criticality = CriticalityLowRisk
		}
		return
	}

	mtbfMedian := median(mtbfs)
	mttrMedian := median(mttrs)

	for i := range metrics {
		m := &metrics[i]
		if m.MTBFHours == nil {
			m.Criticality = CriticalityLowRisk
			continue
		}
		switch {
		case *m.MTBFHours >= mtbfMedian && m.MTTRHours <= mttrMedian:
			m.Criticality = CriticalityLowRisk
		case *m.MTBFHours < mtbfMedian && m.MTTRHours > mttrMedian:
			m.Criticality = CriticalityCritical
		case *m.MTBFHours < mtbfMedian:
			m.Criticality = CriticalityHighFrequency
		default:
			m.Criticality = CriticalityLongRepair
		}
	}
}

func spanOf(events []entities.DowntimeEvent) analytics.Window {
	var w analytics.Window
	for _, ev := range events {
		if w.Start.IsZero() || ev.FailureAt.Before(w.Start) {
			w.Start = ev.FailureAt
		}
		if ev.RepairEnd.After(w.End) {
			w.End = ev.RepairEnd
		}
	}
	return w
}

func minMax(v float64, population []float64) float64 {
	lo, hi := population[0], population[0]
	for _, p := range population {
		if p < lo {
			lo = p
		}
		if p > hi {
			hi = p
		}
	}
	if hi == lo {
		return 0
	}
	return (v - lo) / (hi - lo)
}

func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
