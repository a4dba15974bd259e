package routing

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// DeliveryKPIs summarizes historical delivery performance from completed
// orders. Undelivered orders are excluded and reported as warnings.
type DeliveryKPIs struct {
	TotalOrders     int
	DeliveredOrders int
	OnTimeRate      float64
	AvgLeadTimeDays float64
	StdLeadTimeDays float64
	AvgDistanceKm   float64
	TotalCost       decimal.Decimal
	ByMode          map[entities.TransportMode]ModeKPIs
	Warnings        []analytics.Warning
}

// ModeKPIs is the per-transport-mode performance breakdown
type ModeKPIs struct {
	Orders     int
	OnTimeRate float64
	TotalCost  decimal.Decimal
}

// Performance computes delivery KPIs from an order history
func Performance(deliveries []entities.DeliveryOrder) DeliveryKPIs {
	kpis := DeliveryKPIs{
		TotalOrders: len(deliveries),
		TotalCost:   decimal.Zero,
		ByMode:      make(map[entities.TransportMode]ModeKPIs),
	}

	type modeAgg struct {
		orders, onTime int
		cost           decimal.Decimal
	}
	modes := make(map[entities.TransportMode]*modeAgg)

	var onTime int
	var leadTimes []float64
	var distanceSum float64
	for _, d := range deliveries {
		if d.ActualDelivery == nil {
			kpis.Warnings = append(kpis.Warnings, analytics.Warnf(
				analytics.WarnUndeliveredOrder, string(d.ID),
				"delivery %s has no actual delivery date and is excluded from performance metrics", d.ID))
			continue
		}
		kpis.DeliveredOrders++
		if d.OnTime() {
			onTime++
		}
		leadTimes = append(leadTimes, d.ActualDelivery.Sub(d.OrderDate).Hours()/24)
		distanceSum += d.DistanceKm
		kpis.TotalCost = kpis.TotalCost.Add(d.Cost)

		agg := modes[d.Mode]
		if agg == nil {
			agg = &modeAgg{cost: decimal.Zero}
			modes[d.Mode] = agg
		}
		agg.orders++
		if d.OnTime() {
			agg.onTime++
		}
		agg.cost = agg.cost.Add(d.Cost)
	}

	if kpis.DeliveredOrders > 0 {
		kpis.OnTimeRate = float64(onTime) / float64(kpis.DeliveredOrders)
		kpis.AvgLeadTimeDays, kpis.StdLeadTimeDays = stat.MeanStdDev(leadTimes, nil)
		if math.IsNaN(kpis.StdLeadTimeDays) {
			kpis.StdLeadTimeDays = 0
		}
		kpis.AvgDistanceKm = distanceSum / float64(kpis.DeliveredOrders)
	}
	for mode, agg := range modes {
		kpis.ByMode[mode] = ModeKPIs{
			Orders:     agg.orders,
			OnTimeRate: float64(agg.onTime) / float64(agg.orders),
			TotalCost:  agg.cost,
		}
	}
	return kpis
}
