package events

import (
	"github.com/nmehta/opsengine/pkg/analytics/insight"
)

// Event types emitted by an analysis run
const (
	AnalysisStartedEvent   = "analysis.started"
	AnalysisCompletedEvent = "analysis.completed"

	ComponentCompletedEvent = "component.completed"
	ComponentFailedEvent    = "component.failed"

	PlanningDateFailedEvent = "routing.date_failed"
	AlertRaisedEvent        = "insight.alert_raised"
)

// RunStream is the stream ID for run-level events
const RunStream = "analysis"

type AnalysisStarted struct {
	Equipment  int `json:"equipment"`
	Parts      int `json:"parts"`
	Suppliers  int `json:"suppliers"`
	Warehouses int `json:"warehouses"`
	Deliveries int `json:"deliveries"`
}

type AnalysisCompleted struct {
	Failures int    `json:"failures"`
	Warnings int    `json:"warnings"`
	Elapsed  string `json:"elapsed"`
}

type ComponentCompleted struct {
	Component string `json:"component"`
	Results   int    `json:"results"`
}

type ComponentFailed struct {
	Component string `json:"component"`
	Error     string `json:"error"`
}

type PlanningDateFailed struct {
	Date  string `json:"date"`
	Error string `json:"error"`
}

type AlertRaised struct {
	Alert insight.Alert `json:"alert"`
}

func NewAnalysisStartedEvent(equipment, parts, suppliers, warehouses, deliveries int) Event {
	return NewEvent(AnalysisStartedEvent, RunStream, AnalysisStarted{
		Equipment:  equipment,
		Parts:      parts,
		Suppliers:  suppliers,
		Warehouses: warehouses,
		Deliveries: deliveries,
	})
}

func NewAnalysisCompletedEvent(failures, warnings int, elapsed string) Event {
	return NewEvent(AnalysisCompletedEvent, RunStream, AnalysisCompleted{
		Failures: failures,
		Warnings: warnings,
		Elapsed:  elapsed,
	})
}

func NewComponentCompletedEvent(component string, results int) Event {
	return NewEvent(ComponentCompletedEvent, component, ComponentCompleted{
		Component: component,
		Results:   results,
	})
}

func NewComponentFailedEvent(component string, err error) Event {
	return NewEvent(ComponentFailedEvent, component, ComponentFailed{
		Component: component,
		Error:     err.Error(),
	})
}

func NewPlanningDateFailedEvent(date string, err error) Event {
	return NewEvent(PlanningDateFailedEvent, date, PlanningDateFailed{
		Date:  date,
		Error: err.Error(),
	})
}

func NewAlertRaisedEvent(alert insight.Alert) Event {
	return NewEvent(AlertRaisedEvent, alert.ID, AlertRaised{Alert: alert})
}
