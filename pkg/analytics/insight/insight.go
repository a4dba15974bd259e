// Package insight correlates the outputs of the analytics components into
// cross-cutting findings: KPI correlations, trends, anomaly flags,
// composite KPIs, and a ranked alert list. It consumes component results
// only, never raw entity data.
package insight

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/analytics/invplan"
	"github.com/nmehta/opsengine/pkg/analytics/reliability"
	"github.com/nmehta/opsengine/pkg/analytics/routing"
	"github.com/nmehta/opsengine/pkg/analytics/supplier"
)

// Severity of an alert
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

// String method for Severity enum
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	default:
		return "Unknown"
	}
}

// CompositionRule selects how composite KPIs combine their sub-rates
type CompositionRule int

const (
	// ComposeProduct multiplies sub-rates (a miss anywhere hurts the whole).
	ComposeProduct CompositionRule = iota
	// ComposeMean averages sub-rates.
	ComposeMean
	// ComposeWeakest takes the minimum sub-rate.
	ComposeWeakest
)

// String method for CompositionRule enum
func (r CompositionRule) String() string {
	switch r {
	case ComposeProduct:
		return "Product"
	case ComposeMean:
		return "Mean"
	case ComposeWeakest:
		return "Weakest"
	default:
		return "Unknown"
	}
}

// Config holds the aggregator thresholds
type Config struct {
	// AnomalyZ is the z-score magnitude above which a value is flagged.
	AnomalyZ float64
	// Composition selects the composite KPI formula.
	Composition CompositionRule
	// MinSeriesLen is the smallest population for correlation and anomaly
	// detection to be meaningful.
	MinSeriesLen int
}

// DefaultConfig returns the standard thresholds (z = 3, product composition)
func DefaultConfig() Config {
	return Config{AnomalyZ: 3, Composition: ComposeProduct, MinSeriesLen: 3}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.AnomalyZ <= 0 {
		return &analytics.ConfigurationError{Component: "insight", Parameter: "anomaly_z", Reason: "must be positive"}
	}
	if c.Composition < ComposeProduct || c.Composition > ComposeWeakest {
		return &analytics.ConfigurationError{Component: "insight", Parameter: "composition", Reason: "unknown composition rule"}
	}
	if c.MinSeriesLen < 2 {
		return &analytics.ConfigurationError{Component: "insight", Parameter: "min_series_len", Reason: "must be at least 2"}
	}
	return nil
}

// Correlation is a Pearson coefficient between two KPI series
type Correlation struct {
	XMetric     string
	YMetric     string
	Coefficient float64
	N           int
}

// Trend is the fitted direction of an ordered KPI series
type Trend struct {
	Metric    string
	Slope     float64
	Direction string
	N         int
}

// Trend directions
const (
	TrendRising  = "Rising"
	TrendFalling = "Falling"
	TrendFlat    = "Flat"
)

// Anomaly is a value far from its population mean
type Anomaly struct {
	Metric string
	Key    string
	Value  float64
	ZScore float64
}

// Alert is one ranked, human-readable finding
type Alert struct {
	ID        string
	Source    string
	Severity  Severity
	Metric    string
	Key       string
	Magnitude float64
	Reason    string
}

// CompositeKPIs are cross-component rates
type CompositeKPIs struct {
	// PerfectOrderRate combines supplier on-time, delivery on-time, and
	// stock availability sub-rates under the configured composition rule.
	PerfectOrderRate  float64
	SupplierOnTime    float64
	DeliveryOnTime    float64
	StockAvailability float64
}

// Report is the aggregated insight output
type Report struct {
	Correlations []Correlation
	Trends       []Trend
	Anomalies    []Anomaly
	KPIs         CompositeKPIs
	Alerts       []Alert
	Warnings     []analytics.Warning
}

// Aggregator derives cross-component insights
type Aggregator struct {
	cfg Config
	// newID is swappable in tests for deterministic alert IDs.
	newID func() string
}

// New creates a validated Aggregator
func New(cfg Config) (*Aggregator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{cfg: cfg, newID: func() string { return uuid.NewString() }}, nil
}

// Aggregate builds the insight report from component outputs. Any input
// may be nil; the corresponding findings are simply absent.
func (a *Aggregator) Aggregate(ctx context.Context, rel *reliability.Result, inv *invplan.Result, sup *supplier.Result, kpis *routing.DeliveryKPIs, plans []routing.Plan) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{}
	a.correlate(report, rel, inv)
	a.trend(report, plans)
	a.detectAnomalies(report, rel, inv, sup)
	a.compose(report, sup, kpis, inv)
	a.alert(report, rel, inv, sup, plans)

	sort.SliceStable(report.Alerts, func(i, j int) bool {
		if report.Alerts[i].Severity != report.Alerts[j].Severity {
			return report.Alerts[i].Severity > report.Alerts[j].Severity
		}
		if report.Alerts[i].Magnitude != report.Alerts[j].Magnitude {
			return report.Alerts[i].Magnitude > report.Alerts[j].Magnitude
		}
		return report.Alerts[i].Key < report.Alerts[j].Key
	})
	return report, nil
}

// correlate computes Pearson coefficients between paired per-key series
func (a *Aggregator) correlate(report *Report, rel *reliability.Result, inv *invplan.Result) {
	if rel != nil && len(rel.Metrics) >= a.cfg.MinSeriesLen {
		var failures, downtime, cost []float64
		for _, m := range rel.Metrics {
			failures = append(failures, float64(m.FailureCount))
			downtime = append(downtime, m.TotalDowntimeHours)
			cost = append(cost, m.TotalRepairCost.InexactFloat64())
		}
		report.Correlations = append(report.Correlations,
			pearson("equipment_downtime_hours", "equipment_repair_cost", downtime, cost),
			pearson("equipment_failure_count", "equipment_downtime_hours", failures, downtime),
		)
	}
	if inv != nil && len(inv.Plans) >= a.cfg.MinSeriesLen {
		var demand, stockouts []float64
		for _, p := range inv.Plans {
			demand = append(demand, p.AnnualDemand)
			stockouts = append(stockouts, float64(p.StockoutCount))
		}
		report.Correlations = append(report.Correlations,
			pearson("part_annual_demand", "part_stockout_count", demand, stockouts))
	}
}

func pearson(xName, yName string, x, y []float64) Correlation {
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		r = 0
	}
	return Correlation{XMetric: xName, YMetric: yName, Coefficient: r, N: len(x)}
}

// trend fits daily plan cost over the batch's planning dates
func (a *Aggregator) trend(report *Report, plans []routing.Plan) {
	if len(plans) < a.cfg.MinSeriesLen {
		return
	}
	ordered := make([]routing.Plan, len(plans))
	copy(ordered, plans)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Date.Before(ordered[j].Date) })

	xs := make([]float64, len(ordered))
	ys := make([]float64, len(ordered))
	for i, p := range ordered {
		xs[i] = float64(i)
		ys[i] = p.TotalCost.InexactFloat64()
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)

	direction := TrendFlat
	// Flat inside one part in a thousand of the series mean per step.
	mean := stat.Mean(ys, nil)
	if math.Abs(slope) > math.Abs(mean)*1e-3 {
		if slope > 0 {
			direction = TrendRising
		} else {
			direction = TrendFalling
		}
	}
	report.Trends = append(report.Trends, Trend{
		Metric:    "daily_delivery_cost",
		Slope:     slope,
		Direction: direction,
		N:         len(ordered),
	})
}

// detectAnomalies flags values beyond the z threshold within their
// population
func (a *Aggregator) detectAnomalies(report *Report, rel *reliability.Result, inv *invplan.Result, sup *supplier.Result) {
	if rel != nil {
		keys := make([]string, 0, len(rel.Metrics))
		values := make([]float64, 0, len(rel.Metrics))
		for _, m := range rel.Metrics {
			keys = append(keys, string(m.EquipmentID))
			values = append(values, m.TotalDowntimeHours)
		}
		a.flagOutliers(report, "equipment_downtime_hours", keys, values)
	}
	if inv != nil {
		keys := make([]string, 0, len(inv.Plans))
		values := make([]float64, 0, len(inv.Plans))
		for _, p := range inv.Plans {
			keys = append(keys, string(p.PartID))
			values = append(values, p.ConsumptionValue.InexactFloat64())
		}
		a.flagOutliers(report, "part_consumption_value", keys, values)
	}
	if sup != nil {
		keys := make([]string, 0, len(sup.Scores))
		values := make([]float64, 0, len(sup.Scores))
		for _, s := range sup.Scores {
			keys = append(keys, string(s.SupplierID))
			values = append(values, s.LeadTimeStdDays)
		}
		a.flagOutliers(report, "supplier_lead_time_std", keys, values)
	}
}

func (a *Aggregator) flagOutliers(report *Report, metric string, keys []string, values []float64) {
	if len(values) < a.cfg.MinSeriesLen {
		return
	}
	mean, std := stat.MeanStdDev(values, nil)
	if std == 0 || math.IsNaN(std) {
		return
	}
	for i, v := range values {
		z := (v - mean) / std
		if math.Abs(z) > a.cfg.AnomalyZ {
			report.Anomalies = append(report.Anomalies, Anomaly{
				Metric: metric,
				Key:    keys[i],
				Value:  v,
				ZScore: z,
			})
		}
	}
}

// compose builds the composite KPIs from component sub-rates
func (a *Aggregator) compose(report *Report, sup *supplier.Result, kpis *routing.DeliveryKPIs, inv *invplan.Result) {
	var rates []float64

	if sup != nil {
		var delivered int
		var sum float64
		for _, s := range sup.Scores {
			if s.DeliveredOrders == 0 {
				continue
			}
			sum += s.OnTimeRate * float64(s.DeliveredOrders)
			delivered += s.DeliveredOrders
		}
		if delivered > 0 {
			report.KPIs.SupplierOnTime = sum / float64(delivered)
			rates = append(rates, report.KPIs.SupplierOnTime)
		}
	}
	if kpis != nil && kpis.DeliveredOrders > 0 {
		report.KPIs.DeliveryOnTime = kpis.OnTimeRate
		rates = append(rates, kpis.OnTimeRate)
	}
	if inv != nil && len(inv.Plans) > 0 {
		known, out := 0, 0
		for _, p := range inv.Plans {
			if p.CurrentStock == nil {
				continue
			}
			known++
			if p.StockStatus == invplan.StatusStockOut {
				out++
			}
		}
		if known > 0 {
			report.KPIs.StockAvailability = 1 - float64(out)/float64(known)
			rates = append(rates, report.KPIs.StockAvailability)
		}
	}

	if len(rates) == 0 {
		return
	}
	switch a.cfg.Composition {
	case ComposeMean:
		report.KPIs.PerfectOrderRate = stat.Mean(rates, nil)
	case ComposeWeakest:
		min := rates[0]
		for _, r := range rates[1:] {
			if r < min {
				min = r
			}
		}
		report.KPIs.PerfectOrderRate = min
	default:
		product := 1.0
		for _, r := range rates {
			product *= r
		}
		report.KPIs.PerfectOrderRate = product
	}
}

// alert turns threshold breaches and anomalies into ranked findings
func (a *Aggregator) alert(report *Report, rel *reliability.Result, inv *invplan.Result, sup *supplier.Result, plans []routing.Plan) {
	for _, anomaly := range report.Anomalies {
		severity := SeverityMedium
		if math.Abs(anomaly.ZScore) > 2*a.cfg.AnomalyZ {
			severity = SeverityHigh
		}
		report.Alerts = append(report.Alerts, Alert{
			ID:        a.newID(),
			Source:    "insight",
			Severity:  severity,
			Metric:    anomaly.Metric,
			Key:       anomaly.Key,
			Magnitude: math.Abs(anomaly.ZScore),
			Reason:    fmt.Sprintf("%s for %s is %.1f, %.1f standard deviations from the population mean", anomaly.Metric, anomaly.Key, anomaly.Value, anomaly.ZScore),
		})
	}

	if rel != nil {
		for _, m := range rel.HighRisk {
			severity := SeverityHigh
			if m.Criticality == reliability.CriticalityCritical {
				severity = SeverityCritical
			}
			report.Alerts = append(report.Alerts, Alert{
				ID:        a.newID(),
				Source:    "reliability",
				Severity:  severity,
				Metric:    "risk_score",
				Key:       string(m.EquipmentID),
				Magnitude: m.RiskScore,
				Reason:    fmt.Sprintf("equipment %s has risk score %.1f (%s quadrant) with %d failures", m.EquipmentID, m.RiskScore, m.Criticality, m.FailureCount),
			})
		}
	}

	if inv != nil {
		for _, p := range inv.Plans {
			if p.StockStatus != invplan.StatusStockOut {
				continue
			}
			severity := SeverityHigh
			if p.ABCClass == "A" {
				severity = SeverityCritical
			}
			report.Alerts = append(report.Alerts, Alert{
				ID:        a.newID(),
				Source:    "inventory",
				Severity:  severity,
				Metric:    "stock_status",
				Key:       string(p.PartID),
				Magnitude: p.ConsumptionValue.InexactFloat64(),
				Reason:    fmt.Sprintf("part %s (class %s) is out of stock; reorder point %.0f", p.PartID, p.ABCClass, p.ReorderPoint),
			})
		}
	}

	if sup != nil {
		for _, s := range sup.Ranked() {
			if s.RiskCategory != supplier.CategoryCritical && s.RiskCategory != supplier.CategoryHigh {
				continue
			}
			severity := SeverityMedium
			if s.RiskCategory == supplier.CategoryCritical {
				severity = SeverityHigh
			}
			report.Alerts = append(report.Alerts, Alert{
				ID:        a.newID(),
				Source:    "supplier",
				Severity:  severity,
				Metric:    "supplier_risk",
				Key:       string(s.SupplierID),
				Magnitude: s.RiskScore,
				Reason:    fmt.Sprintf("supplier %s scores %.1f (%s) with %.0f%% on-time delivery", s.SupplierID, s.RiskScore, s.RiskCategory, s.OnTimeRate*100),
			})
		}
	}

	for _, p := range plans {
		for _, w := range p.Warnings {
			if w.Code != analytics.WarnTimeLimited {
				continue
			}
			report.Alerts = append(report.Alerts, Alert{
				ID:       a.newID(),
				Source:   "routing",
				Severity: SeverityLow,
				Metric:   "solve_status",
				Key:      p.Date.Format("2006-01-02"),
				Reason:   w.Message,
			})
		}
	}
}
