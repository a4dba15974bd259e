package dto

import (
	"time"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/analytics/insight"
	"github.com/nmehta/opsengine/pkg/analytics/invplan"
	"github.com/nmehta/opsengine/pkg/analytics/reliability"
	"github.com/nmehta/opsengine/pkg/analytics/routing"
	"github.com/nmehta/opsengine/pkg/analytics/supplier"
)

// OperationsReport contains the complete output of one analysis run.
// Component fields are nil when the component failed; the failure is
// recorded in ComponentErrors under the component's name.
type OperationsReport struct {
	GeneratedAt time.Time
	Window      analytics.Window

	Reliability  *reliability.Result
	Inventory    *invplan.Result
	Suppliers    *supplier.Result
	Routes       *routing.BatchResult
	DeliveryKPIs *routing.DeliveryKPIs
	Insights     *insight.Report

	// ComponentErrors isolates per-component failures; a failed component
	// never aborts its siblings.
	ComponentErrors map[string]error
}

// Warnings collects every component's non-fatal findings in one slice
func (r *OperationsReport) Warnings() []analytics.Warning {
	var out []analytics.Warning
	if r.Reliability != nil {
		out = append(out, r.Reliability.Warnings...)
	}
	if r.Inventory != nil {
		out = append(out, r.Inventory.Warnings...)
	}
	if r.Suppliers != nil {
		out = append(out, r.Suppliers.Warnings...)
	}
	if r.Routes != nil {
		for _, plan := range r.Routes.Plans {
			out = append(out, plan.Warnings...)
		}
	}
	if r.DeliveryKPIs != nil {
		out = append(out, r.DeliveryKPIs.Warnings...)
	}
	if r.Insights != nil {
		out = append(out, r.Insights.Warnings...)
	}
	return out
}
