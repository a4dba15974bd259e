package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/analytics/insight"
	"github.com/nmehta/opsengine/pkg/analytics/routing"
	"github.com/nmehta/opsengine/pkg/application/services"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// fileConfig mirrors the YAML tuning file. Every scalar is a pointer so
// an absent key keeps the built-in default instead of zeroing it.
type fileConfig struct {
	Window struct {
		Start string `yaml:"start"`
		End   string `yaml:"end"`
	} `yaml:"window"`
	Reliability struct {
		FailureCountWeight *float64 `yaml:"failure_count_weight"`
		RepairCostWeight   *float64 `yaml:"repair_cost_weight"`
		DowntimeWeight     *float64 `yaml:"downtime_weight"`
		PerformanceFactor  *float64 `yaml:"performance_factor"`
		QualityFactor      *float64 `yaml:"quality_factor"`
		TopN               *int     `yaml:"top_n"`
	} `yaml:"reliability"`
	Inventory struct {
		ABCThresholdA   *float64 `yaml:"abc_threshold_a"`
		ABCThresholdB   *float64 `yaml:"abc_threshold_b"`
		XYZLowCV        *float64 `yaml:"xyz_low_cv"`
		XYZHighCV       *float64 `yaml:"xyz_high_cv"`
		OrderCost       *float64 `yaml:"order_cost"`
		HoldingCostRate *float64 `yaml:"holding_cost_rate"`
		ServiceLevelZ   *float64 `yaml:"service_level_z"`
		FastTurnover    *float64 `yaml:"fast_turnover"`
		SlowTurnover    *float64 `yaml:"slow_turnover"`
	} `yaml:"inventory"`
	Supplier struct {
		TimelinessWeight  *float64 `yaml:"timeliness_weight"`
		ConsistencyWeight *float64 `yaml:"consistency_weight"`
		RatingWeight      *float64 `yaml:"rating_weight"`
		LeadTimeVarCap    *float64 `yaml:"lead_time_var_cap"`
		MinOrders         *int     `yaml:"min_orders"`
		LowMax            *float64 `yaml:"low_max"`
		ModerateMax       *float64 `yaml:"moderate_max"`
		HighMax           *float64 `yaml:"high_max"`
	} `yaml:"supplier"`
	Routing struct {
		Modes []struct {
			Mode        string  `yaml:"mode"`
			BaseCost    float64 `yaml:"base_cost"`
			PerKmCost   float64 `yaml:"per_km_cost"`
			Capacity    int     `yaml:"capacity"`
			TransitDays int     `yaml:"transit_days"`
		} `yaml:"modes"`
		SolveTimeoutSeconds *int `yaml:"solve_timeout_seconds"`
	} `yaml:"routing"`
	Insight struct {
		AnomalyZ     *float64 `yaml:"anomaly_z"`
		Composition  string   `yaml:"composition"`
		MinSeriesLen *int     `yaml:"min_series_len"`
	} `yaml:"insight"`
}

// loadServiceConfig starts from the engine defaults and overlays the YAML
// file at path, if any.
func loadServiceConfig(path string) (services.Config, error) {
	cfg := services.DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return cfg, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	if fc.Window.Start != "" || fc.Window.End != "" {
		window, err := parseWindow(fc.Window.Start, fc.Window.End)
		if err != nil {
			return cfg, err
		}
		cfg.Window = window
	}

	setFloat(&cfg.Reliability.Weights.FailureCount, fc.Reliability.FailureCountWeight)
	setFloat(&cfg.Reliability.Weights.RepairCost, fc.Reliability.RepairCostWeight)
	setFloat(&cfg.Reliability.Weights.Downtime, fc.Reliability.DowntimeWeight)
	setFloat(&cfg.Reliability.PerformanceFactor, fc.Reliability.PerformanceFactor)
	setFloat(&cfg.Reliability.QualityFactor, fc.Reliability.QualityFactor)
	setInt(&cfg.Reliability.TopN, fc.Reliability.TopN)

	setFloat(&cfg.Inventory.ABCThresholdA, fc.Inventory.ABCThresholdA)
	setFloat(&cfg.Inventory.ABCThresholdB, fc.Inventory.ABCThresholdB)
	setFloat(&cfg.Inventory.XYZLowCV, fc.Inventory.XYZLowCV)
	setFloat(&cfg.Inventory.XYZHighCV, fc.Inventory.XYZHighCV)
	setFloat(&cfg.Inventory.OrderCost, fc.Inventory.OrderCost)
	setFloat(&cfg.Inventory.HoldingCostRate, fc.Inventory.HoldingCostRate)
	setFloat(&cfg.Inventory.ServiceLevelZ, fc.Inventory.ServiceLevelZ)
	setFloat(&cfg.Inventory.FastTurnover, fc.Inventory.FastTurnover)
	setFloat(&cfg.Inventory.SlowTurnover, fc.Inventory.SlowTurnover)

	setFloat(&cfg.Supplier.TimelinessWeight, fc.Supplier.TimelinessWeight)
	setFloat(&cfg.Supplier.ConsistencyWeight, fc.Supplier.ConsistencyWeight)
	setFloat(&cfg.Supplier.RatingWeight, fc.Supplier.RatingWeight)
	setFloat(&cfg.Supplier.LeadTimeVarCap, fc.Supplier.LeadTimeVarCap)
	setInt(&cfg.Supplier.MinOrders, fc.Supplier.MinOrders)
	setFloat(&cfg.Supplier.LowMax, fc.Supplier.LowMax)
	setFloat(&cfg.Supplier.ModerateMax, fc.Supplier.ModerateMax)
	setFloat(&cfg.Supplier.HighMax, fc.Supplier.HighMax)

	if len(fc.Routing.Modes) > 0 {
		modes := make([]routing.ModeCost, len(fc.Routing.Modes))
		for i, m := range fc.Routing.Modes {
			modes[i] = routing.ModeCost{
				Mode:        entities.TransportMode(m.Mode),
				BaseCost:    decimal.NewFromFloat(m.BaseCost),
				PerKmCost:   decimal.NewFromFloat(m.PerKmCost),
				Capacity:    m.Capacity,
				TransitDays: m.TransitDays,
			}
		}
		cfg.Routing.Modes = modes
	}
	if fc.Routing.SolveTimeoutSeconds != nil {
		cfg.Routing.SolveTimeout = time.Duration(*fc.Routing.SolveTimeoutSeconds) * time.Second
	}

	setFloat(&cfg.Insight.AnomalyZ, fc.Insight.AnomalyZ)
	setInt(&cfg.Insight.MinSeriesLen, fc.Insight.MinSeriesLen)
	if fc.Insight.Composition != "" {
		rule, err := parseComposition(fc.Insight.Composition)
		if err != nil {
			return cfg, err
		}
		cfg.Insight.Composition = rule
	}

	return cfg, nil
}

// parseWindow builds an observation window from two YYYY-MM-DD strings.
// Both must be present together.
func parseWindow(start, end string) (analytics.Window, error) {
	if start == "" || end == "" {
		return analytics.Window{}, fmt.Errorf("window requires both start and end dates")
	}
	s, err := time.Parse("2006-01-02", start)
	if err != nil {
		return analytics.Window{}, fmt.Errorf("invalid window start %q: %w", start, err)
	}
	e, err := time.Parse("2006-01-02", end)
	if err != nil {
		return analytics.Window{}, fmt.Errorf("invalid window end %q: %w", end, err)
	}
	if !e.After(s) {
		return analytics.Window{}, fmt.Errorf("window end %s must be after start %s", end, start)
	}
	return analytics.Window{Start: s, End: e}, nil
}

func parseComposition(name string) (insight.CompositionRule, error) {
	switch name {
	case "product":
		return insight.ComposeProduct, nil
	case "mean":
		return insight.ComposeMean, nil
	case "weakest":
		return insight.ComposeWeakest, nil
	default:
		return 0, fmt.Errorf("unknown composition rule %q (want product, mean, or weakest)", name)
	}
}

func setFloat(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}
