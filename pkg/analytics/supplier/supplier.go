// Package supplier scores supplier risk from delivery performance, lead
// time consistency, and the supplier's own rating.
package supplier

import (
	"context"
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// Risk categories assigned at the configured score boundaries
const (
	CategoryLow      = "Low Risk"
	CategoryModerate = "Moderate Risk"
	CategoryHigh     = "High Risk"
	CategoryCritical = "Critical Risk"
)

// Config holds the risk weights and category boundaries
type Config struct {
	// Component weights; the score is normalized by their sum so they do
	// not have to add to one.
	TimelinessWeight  float64
	ConsistencyWeight float64
	RatingWeight      float64
	// LeadTimeVarCap caps the lead time standard deviation (in days) so a
	// single chaotic supplier cannot compress everyone else's scores.
	LeadTimeVarCap float64
	// MinOrders is the delivered-order count below which a supplier is
	// flagged as having insufficient data.
	MinOrders int
	// Category boundaries on the 0 to 100 score.
	LowMax      float64
	ModerateMax float64
	HighMax     float64
}

// DefaultConfig returns the standard weighting (0.4 timeliness, 0.3
// consistency, 0.3 rating) and 20/40/60 category boundaries.
func DefaultConfig() Config {
	return Config{
		TimelinessWeight:  0.4,
		ConsistencyWeight: 0.3,
		RatingWeight:      0.3,
		LeadTimeVarCap:    30,
		MinOrders:         5,
		LowMax:            20,
		ModerateMax:       40,
		HighMax:           60,
	}
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.TimelinessWeight < 0 || c.ConsistencyWeight < 0 || c.RatingWeight < 0 {
		return &analytics.ConfigurationError{Component: "supplier", Parameter: "weights", Reason: "must be non-negative"}
	}
	if c.TimelinessWeight+c.ConsistencyWeight+c.RatingWeight == 0 {
		return &analytics.ConfigurationError{Component: "supplier", Parameter: "weights", Reason: "must not all be zero"}
	}
	if c.LeadTimeVarCap <= 0 {
		return &analytics.ConfigurationError{Component: "supplier", Parameter: "lead_time_var_cap", Reason: "must be positive"}
	}
	if c.MinOrders < 1 {
		return &analytics.ConfigurationError{Component: "supplier", Parameter: "min_orders", Reason: "must be at least 1"}
	}
	if c.LowMax <= 0 || c.ModerateMax <= c.LowMax || c.HighMax <= c.ModerateMax {
		return &analytics.ConfigurationError{Component: "supplier", Parameter: "category_boundaries", Reason: "require 0 < low < moderate < high"}
	}
	return nil
}

// Score is the per-supplier risk assessment
type Score struct {
	SupplierID entities.SupplierID
	Name       string

	DeliveredOrders int
	OnTimeRate      float64
	AvgLeadTimeDays float64
	LeadTimeStdDays float64
	TotalSpend      decimal.Decimal
	Rating          float64

	RiskScore    float64
	RiskCategory string

	// InsufficientData marks suppliers under the delivered-order minimum.
	// Their scores are still computed but excluded from Ranked.
	InsufficientData bool
}

// Result holds every supplier's score plus accumulated warnings
type Result struct {
	Scores   []Score
	Warnings []analytics.Warning
}

// Ranked returns the scores with enough history, highest risk first
func (r *Result) Ranked() []Score {
	ranked := make([]Score, 0, len(r.Scores))
	for _, s := range r.Scores {
		if !s.InsufficientData {
			ranked = append(ranked, s)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].RiskScore != ranked[j].RiskScore {
			return ranked[i].RiskScore > ranked[j].RiskScore
		}
		return ranked[i].SupplierID < ranked[j].SupplierID
	})
	return ranked
}

// Scorer computes supplier risk scores
type Scorer struct {
	cfg Config
}

// New creates a validated Scorer
func New(cfg Config) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{cfg: cfg}, nil
}

// Score assesses every supplier from its delivered purchase orders. Orders
// without an actual delivery date are excluded from performance metrics and
// reported as warnings. Orders referencing unknown suppliers fail the run.
func (s *Scorer) Score(ctx context.Context, suppliers []entities.Supplier, orders []entities.PurchaseOrder, window analytics.Window) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	known := make(map[entities.SupplierID]bool, len(suppliers))
	for _, sup := range suppliers {
		known[sup.ID] = true
	}

	type perf struct {
		delivered int
		onTime    int
		leadTimes []float64
		spend     decimal.Decimal
	}
	bySupplier := make(map[entities.SupplierID]*perf, len(suppliers))
	for _, sup := range suppliers {
		bySupplier[sup.ID] = &perf{spend: decimal.Zero}
	}

	var warnings []analytics.Warning
	for _, order := range orders {
		p, ok := bySupplier[order.SupplierID]
		if !ok {
			return nil, &analytics.DataIntegrityError{Entity: "purchase_order", ID: string(order.ID), Field: "supplier_id", Reason: "references unknown supplier " + string(order.SupplierID)}
		}
		if !window.IsZero() && !window.Contains(order.OrderDate) {
			continue
		}
		if !order.Delivered() {
			warnings = append(warnings, analytics.Warnf(
				analytics.WarnUndeliveredOrder, string(order.ID),
				"purchase order %s has no actual delivery date and is excluded from performance metrics", order.ID))
			continue
		}
		p.delivered++
		if order.OnTime() {
			p.onTime++
		}
		p.leadTimes = append(p.leadTimes, order.ActualDelivery.Sub(order.OrderDate).Hours()/24)
		p.spend = p.spend.Add(order.TotalCost())
	}

	result := &Result{Warnings: warnings, Scores: make([]Score, 0, len(suppliers))}
	totalWeight := s.cfg.TimelinessWeight + s.cfg.ConsistencyWeight + s.cfg.RatingWeight

	for _, sup := range suppliers {
		p := bySupplier[sup.ID]
		score := Score{
			SupplierID:      sup.ID,
			Name:            sup.Name,
			DeliveredOrders: p.delivered,
			TotalSpend:      p.spend,
			Rating:          sup.Rating,
		}

		if p.delivered > 0 {
			score.OnTimeRate = float64(p.onTime) / float64(p.delivered)
			score.AvgLeadTimeDays, score.LeadTimeStdDays = stat.MeanStdDev(p.leadTimes, nil)
			if math.IsNaN(score.LeadTimeStdDays) {
				score.LeadTimeStdDays = 0
			}
		}
		if p.delivered < s.cfg.MinOrders {
			score.InsufficientData = true
			result.Warnings = append(result.Warnings, analytics.Warnf(
				analytics.WarnNoQualifyingOrders, string(sup.ID),
				"supplier %s has %d delivered orders, below the %d needed for a reliable score",
				sup.ID, p.delivered, s.cfg.MinOrders))
		}

		timeliness := 1 - score.OnTimeRate
		consistency := math.Min(score.LeadTimeStdDays, s.cfg.LeadTimeVarCap) / s.cfg.LeadTimeVarCap
		// Rating runs 0 to 5; a top rating contributes zero risk.
		rating := 1 - sup.Rating/5

		score.RiskScore = 100 * (s.cfg.TimelinessWeight*timeliness +
			s.cfg.ConsistencyWeight*consistency +
			s.cfg.RatingWeight*rating) / totalWeight
		score.RiskCategory = s.categorize(score.RiskScore)

		result.Scores = append(result.Scores, score)
	}

	sort.SliceStable(result.Scores, func(i, j int) bool {
		return result.Scores[i].SupplierID < result.Scores[j].SupplierID
	})
	return result, nil
}

func (s *Scorer) categorize(score float64) string {
	switch {
	case score <= s.cfg.LowMax:
		return CategoryLow
	case score <= s.cfg.ModerateMax:
		return CategoryModerate
	case score <= s.cfg.HighMax:
		return CategoryHigh
	default:
		return CategoryCritical
	}
}
