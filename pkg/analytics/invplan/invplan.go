// Package invplan classifies spare parts (ABC by consumption value, XYZ by
// demand variability) and derives replenishment policy: EOQ, safety stock,
// reorder point, and current stock status.
package invplan

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// Stock status labels, checked in this exact precedence order
const (
	StatusStockOut     = "Stock Out"
	StatusBelowReorder = "Below Reorder Point"
	StatusHealthy      = "Healthy"
	StatusUnknown      = "Unknown"
)

// Movement categories from annualized turnover
const (
	MovementFast   = "Fast Moving"
	MovementMedium = "Medium Moving"
	MovementSlow   = "Slow Moving"
	MovementNoData = "No Data"
)

// Config holds classification thresholds and replenishment cost parameters.
// Thresholds are configuration, not business logic baked into the algorithm.
type Config struct {
	// ABC cumulative-value boundaries: <= ThresholdA is A, <= ThresholdB is B.
	ABCThresholdA float64
	ABCThresholdB float64
	// XYZ coefficient-of-variation boundaries: CV <= LowCV is X, > HighCV is Z.
	XYZLowCV  float64
	XYZHighCV float64
	// OrderCost is the fixed cost per order; HoldingCostRate is the annual
	// holding cost as a fraction of unit cost. Neither exists in the raw
	// entity set, so both must come from the caller.
	OrderCost       float64
	HoldingCostRate float64
	// ServiceLevelZ is the safety stock z-score (default ~95% service level).
	ServiceLevelZ float64
	// Turnover boundaries for movement categories.
	FastTurnover float64
	SlowTurnover float64
}

// DefaultConfig returns the planner defaults (80/95 ABC split, 0.5/1.0 CV
// split, 95% service level).
func DefaultConfig() Config {
	return Config{
		ABCThresholdA:   0.80,
		ABCThresholdB:   0.95,
		XYZLowCV:        0.5,
		XYZHighCV:       1.0,
		OrderCost:       500,
		HoldingCostRate: 0.20,
		ServiceLevelZ:   1.645,
		FastTurnover:    12,
		SlowTurnover:    4,
	}
}

// Validate checks the configuration before any computation starts
func (c Config) Validate() error {
	if c.ABCThresholdA <= 0 || c.ABCThresholdA >= 1 {
		return &analytics.ConfigurationError{Component: "invplan", Parameter: "abc_threshold_a", Reason: "must be in (0, 1)"}
	}
	if c.ABCThresholdB <= c.ABCThresholdA || c.ABCThresholdB > 1 {
		return &analytics.ConfigurationError{Component: "invplan", Parameter: "abc_threshold_b", Reason: "must be above threshold A and at most 1"}
	}
	if c.XYZLowCV < 0 || c.XYZHighCV <= c.XYZLowCV {
		return &analytics.ConfigurationError{Component: "invplan", Parameter: "xyz_thresholds", Reason: "require 0 <= low < high"}
	}
	if c.OrderCost <= 0 {
		return &analytics.ConfigurationError{Component: "invplan", Parameter: "order_cost", Reason: "must be positive"}
	}
	if c.HoldingCostRate <= 0 {
		return &analytics.ConfigurationError{Component: "invplan", Parameter: "holding_cost_rate", Reason: "must be positive"}
	}
	if c.ServiceLevelZ < 0 {
		return &analytics.ConfigurationError{Component: "invplan", Parameter: "service_level_z", Reason: "must be non-negative"}
	}
	if c.SlowTurnover < 0 || c.FastTurnover <= c.SlowTurnover {
		return &analytics.ConfigurationError{Component: "invplan", Parameter: "turnover_thresholds", Reason: "require 0 <= slow < fast"}
	}
	return nil
}

// PartPlan is the per-part classification and replenishment row
type PartPlan struct {
	PartID   entities.PartID
	Name     string
	Category string

	ConsumptionValue   decimal.Decimal
	CumulativeValuePct float64
	ABCClass           string

	DemandCV float64
	XYZClass string

	AnnualDemand   float64
	AvgDailyDemand float64
	StdDailyDemand float64
	EOQ            float64
	SafetyStock    float64
	ReorderPoint   float64

	// CurrentStock is nil for a part with no transaction history.
	CurrentStock *int64
	StockStatus  string
	StockValue   decimal.Decimal

	TurnoverRatio    float64
	MovementCategory string
	StockoutCount    int
}

// Result holds the plans in ABC traversal order (consumption value
// descending) plus accumulated warnings.
type Result struct {
	Window   analytics.Window
	Plans    []PartPlan
	Warnings []analytics.Warning
}

// Planner computes inventory classifications and replenishment policy
type Planner struct {
	cfg Config
}

// New creates a validated Planner
func New(cfg Config) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Planner{cfg: cfg}, nil
}

// Plan classifies every part and derives its replenishment policy from the
// trailing window of transactions. Transactions referencing unknown parts
// fail the run with a DataIntegrityError.
func (p *Planner) Plan(ctx context.Context, parts []entities.SparePart, transactions []entities.InventoryTransaction, window analytics.Window) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byID := make(map[entities.PartID]int, len(parts))
	for i, part := range parts {
		byID[part.ID] = i
	}

	byPart := make(map[entities.PartID][]entities.InventoryTransaction)
	for _, tx := range transactions {
		if _, ok := byID[tx.PartID]; !ok {
			return nil, &analytics.DataIntegrityError{Entity: "inventory_transaction", ID: tx.ID, Field: "part_id", Reason: "references unknown part " + string(tx.PartID)}
		}
		byPart[tx.PartID] = append(byPart[tx.PartID], tx)
	}
	for _, txs := range byPart {
		sort.SliceStable(txs, func(i, j int) bool {
			if txs[i].Date.Equal(txs[j].Date) {
				return txs[i].ID < txs[j].ID
			}
			return txs[i].Date.Before(txs[j].Date)
		})
	}

	if window.IsZero() {
		window = transactionSpan(transactions)
	}
	spanDays := window.Days()

	result := &Result{Window: window, Plans: make([]PartPlan, 0, len(parts))}

	for _, part := range parts {
		plan := PartPlan{
			PartID:           part.ID,
			Name:             part.Name,
			Category:         part.Category,
			ConsumptionValue: decimal.Zero,
			StockValue:       decimal.Zero,
		}

		txs := byPart[part.ID]
		if len(txs) == 0 {
			// New parts legitimately have no history; current stock is
			// undefined, never an error.
			plan.StockStatus = StatusUnknown
			plan.MovementCategory = MovementNoData
			plan.XYZClass = "X"
			result.Warnings = append(result.Warnings, analytics.Warnf(
				analytics.WarnNoTransactions, string(part.ID), "part %s has no transaction history", part.ID))
			result.Plans = append(result.Plans, plan)
			continue
		}

		p.fillDemand(&plan, part, txs, window, spanDays, result)
		p.fillReplenishment(&plan, part)
		p.fillStock(&plan, part, txs)

		result.Plans = append(result.Plans, plan)
	}

	classifyABC(result.Plans, p.cfg)

	return result, nil
}

// fillDemand computes consumption value, daily demand statistics, and the
// XYZ class from the part's issue transactions inside the window.
func (p *Planner) fillDemand(plan *PartPlan, part entities.SparePart, txs []entities.InventoryTransaction, window analytics.Window, spanDays int, result *Result) {
	daily := make([]float64, spanDays)
	monthly := make(map[string]float64)
	var totalIssued int64

	for _, tx := range txs {
		if tx.Type != entities.Issue || !window.Contains(tx.Date) {
			continue
		}
		totalIssued += tx.Quantity
		dayIdx := int(tx.Date.Sub(window.Start).Hours() / 24)
		if dayIdx >= 0 && dayIdx < spanDays {
			daily[dayIdx] += float64(tx.Quantity)
		}
		monthly[tx.Date.UTC().Format("2006-01")] += float64(tx.Quantity)
	}

	plan.ConsumptionValue = part.UnitCost.Mul(decimal.NewFromInt(totalIssued))
	plan.AvgDailyDemand, plan.StdDailyDemand = stat.MeanStdDev(daily, nil)
	if math.IsNaN(plan.StdDailyDemand) {
		plan.StdDailyDemand = 0
	}
	plan.AnnualDemand = float64(totalIssued) / float64(spanDays) * 365

	plan.DemandCV, plan.XYZClass = p.classifyXYZ(monthlySeries(monthly, window))
	if math.IsNaN(plan.DemandCV) {
		result.Warnings = append(result.Warnings, analytics.Warnf(
			analytics.WarnInsufficientHistory, string(part.ID),
			"part %s has under two months of demand history; variability defaulted to stable", part.ID))
		plan.DemandCV = 0
	}
}

// fillReplenishment computes EOQ, safety stock, and the reorder point
func (p *Planner) fillReplenishment(plan *PartPlan, part entities.SparePart) {
	holdingCost := part.UnitCost.InexactFloat64() * p.cfg.HoldingCostRate
	if holdingCost > 0 && plan.AnnualDemand > 0 {
		plan.EOQ = math.Sqrt(2 * plan.AnnualDemand * p.cfg.OrderCost / holdingCost)
	}

	leadTime := float64(part.LeadTimeDays)
	plan.SafetyStock = p.cfg.ServiceLevelZ * plan.StdDailyDemand * math.Sqrt(leadTime)
	plan.ReorderPoint = plan.AvgDailyDemand*leadTime + plan.SafetyStock
}

// fillStock resolves current stock from the latest transaction and applies
// the status precedence: stock-out before reorder-point before healthy.
func (p *Planner) fillStock(plan *PartPlan, part entities.SparePart, txs []entities.InventoryTransaction) {
	last := txs[len(txs)-1]
	current := last.StockAfter
	plan.CurrentStock = &current
	plan.StockValue = part.UnitCost.Mul(decimal.NewFromInt(current))

	switch {
	case current == 0:
		plan.StockStatus = StatusStockOut
	case current <= part.ReorderPoint:
		plan.StockStatus = StatusBelowReorder
	default:
		plan.StockStatus = StatusHealthy
	}

	var stockSum float64
	for _, tx := range txs {
		stockSum += float64(tx.StockAfter)
		if tx.StockAfter == 0 {
			plan.StockoutCount++
		}
	}
	avgStock := stockSum / float64(len(txs))
	if avgStock > 0 && plan.AnnualDemand > 0 {
		plan.TurnoverRatio = plan.AnnualDemand / avgStock
		switch {
		case plan.TurnoverRatio >= p.cfg.FastTurnover:
			plan.MovementCategory = MovementFast
		case plan.TurnoverRatio >= p.cfg.SlowTurnover:
			plan.MovementCategory = MovementMedium
		default:
			plan.MovementCategory = MovementSlow
		}
	} else {
		plan.MovementCategory = MovementNoData
	}
}

// classifyXYZ buckets the monthly demand coefficient of variation.
// Returns NaN CV when fewer than two months of history exist.
func (p *Planner) classifyXYZ(monthly []float64) (float64, string) {
	if len(monthly) < 2 {
		return math.NaN(), "X"
	}
	mean, std := stat.MeanStdDev(monthly, nil)
	if mean == 0 {
		return math.NaN(), "X"
	}
	cv := std / mean
	switch {
	case cv <= p.cfg.XYZLowCV:
		return cv, "X"
	case cv <= p.cfg.XYZHighCV:
		return cv, "Y"
	default:
		return cv, "Z"
	}
}

// classifyABC ranks plans by consumption value descending (ties by part id
// for determinism) and assigns classes at the cumulative-value thresholds.
func classifyABC(plans []PartPlan, cfg Config) {
	sort.SliceStable(plans, func(i, j int) bool {
		if cmp := plans[i].ConsumptionValue.Cmp(plans[j].ConsumptionValue); cmp != 0 {
			return cmp > 0
		}
		return plans[i].PartID < plans[j].PartID
	})

	total := decimal.Zero
	for _, plan := range plans {
		total = total.Add(plan.ConsumptionValue)
	}
	if total.IsZero() {
		for i := range plans {
			plans[i].ABCClass = "C"
			plans[i].CumulativeValuePct = 100
		}
		return
	}

	cumulative := decimal.Zero
	for i := range plans {
		cumulative = cumulative.Add(plans[i].ConsumptionValue)
		pct := cumulative.Div(total).InexactFloat64()
		plans[i].CumulativeValuePct = pct * 100
		switch {
		case pct <= cfg.ABCThresholdA:
			plans[i].ABCClass = "A"
		case pct <= cfg.ABCThresholdB:
			plans[i].ABCClass = "B"
		default:
			plans[i].ABCClass = "C"
		}
	}
}

func transactionSpan(transactions []entities.InventoryTransaction) analytics.Window {
	var w analytics.Window
	for _, tx := range transactions {
		if w.Start.IsZero() || tx.Date.Before(w.Start) {
			w.Start = tx.Date
		}
		if tx.Date.After(w.End) {
			w.End = tx.Date
		}
	}
	return w
}

// monthlySeries zero-fills the months covered by the window so quiet months
// count toward variability.
func monthlySeries(monthly map[string]float64, window analytics.Window) []float64 {
	if window.IsZero() {
		return nil
	}
	var series []float64
	cursor := time.Date(window.Start.Year(), window.Start.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(window.End.Year(), window.End.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cursor.After(end) {
		series = append(series, monthly[cursor.Format("2006-01")])
		cursor = cursor.AddDate(0, 1, 0)
	}
	return series
}
