// Package services orchestrates the analytics components into full
// analysis runs.
package services

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/analytics/dataset"
	"github.com/nmehta/opsengine/pkg/analytics/insight"
	"github.com/nmehta/opsengine/pkg/analytics/invplan"
	"github.com/nmehta/opsengine/pkg/analytics/reliability"
	"github.com/nmehta/opsengine/pkg/analytics/routing"
	"github.com/nmehta/opsengine/pkg/analytics/supplier"
	"github.com/nmehta/opsengine/pkg/application/dto"
	"github.com/nmehta/opsengine/pkg/domain/entities"
	"github.com/nmehta/opsengine/pkg/infrastructure/events"
)

// Component names used as ComponentErrors keys and log fields
const (
	ComponentReliability = "reliability"
	ComponentInventory   = "inventory"
	ComponentSupplier    = "supplier"
	ComponentRouting     = "routing"
	ComponentInsight     = "insight"
)

// Config aggregates the component configurations for one service instance
type Config struct {
	// Window bounds the observation period; the zero value lets each
	// component derive it from its own history.
	Window      analytics.Window
	Reliability reliability.Config
	Inventory   invplan.Config
	Supplier    supplier.Config
	Routing     routing.Config
	Insight     insight.Config
}

// DefaultConfig returns every component's defaults
func DefaultConfig() Config {
	return Config{
		Reliability: reliability.DefaultConfig(),
		Inventory:   invplan.DefaultConfig(),
		Supplier:    supplier.DefaultConfig(),
		Routing:     routing.DefaultConfig(),
		Insight:     insight.DefaultConfig(),
	}
}

// AnalyticsService runs the full analysis pipeline: dataset validation,
// the four independent components in parallel, then the insight pass over
// their outputs. The service holds no state between runs.
type AnalyticsService struct {
	cfg    Config
	logger *logrus.Logger
	audit  events.EventStore

	analyzer  *reliability.Analyzer
	planner   *invplan.Planner
	scorer    *supplier.Scorer
	optimizer *routing.Optimizer
	insights  *insight.Aggregator
}

// NewAnalyticsService validates every component configuration up front.
// A nil logger discards log output.
func NewAnalyticsService(cfg Config, logger *logrus.Logger) (*AnalyticsService, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}

	analyzer, err := reliability.New(cfg.Reliability)
	if err != nil {
		return nil, fmt.Errorf("building reliability analyzer: %w", err)
	}
	planner, err := invplan.New(cfg.Inventory)
	if err != nil {
		return nil, fmt.Errorf("building inventory planner: %w", err)
	}
	scorer, err := supplier.New(cfg.Supplier)
	if err != nil {
		return nil, fmt.Errorf("building supplier scorer: %w", err)
	}
	optimizer, err := routing.New(cfg.Routing, nil)
	if err != nil {
		return nil, fmt.Errorf("building route optimizer: %w", err)
	}
	insights, err := insight.New(cfg.Insight)
	if err != nil {
		return nil, fmt.Errorf("building insight aggregator: %w", err)
	}

	return &AnalyticsService{
		cfg:       cfg,
		logger:    logger,
		analyzer:  analyzer,
		planner:   planner,
		scorer:    scorer,
		optimizer: optimizer,
		insights:  insights,
	}, nil
}

// SetEventStore enables the audit trail. Every run then appends its
// lifecycle, component outcomes, and raised alerts to the store.
func (s *AnalyticsService) SetEventStore(store events.EventStore) {
	s.audit = store
}

func (s *AnalyticsService) emit(streamID string, event events.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Append(streamID, event); err != nil {
		s.logger.WithError(err).Warn("appending audit event failed")
	}
}

// Run executes one full analysis over the given collections. Dataset
// validation failures are fatal; component failures are isolated in the
// report's ComponentErrors and do not abort siblings.
func (s *AnalyticsService) Run(ctx context.Context, collections dataset.Collections) (*dto.OperationsReport, error) {
	started := time.Now()
	ds, err := dataset.Build(collections)
	if err != nil {
		return nil, fmt.Errorf("validating dataset: %w", err)
	}
	s.logger.WithFields(logrus.Fields{
		"equipment":    len(ds.Equipment),
		"parts":        len(ds.Parts),
		"suppliers":    len(ds.Suppliers),
		"transactions": len(ds.Transactions),
		"deliveries":   len(ds.Deliveries),
	}).Info("dataset validated")
	s.emit(events.RunStream, events.NewAnalysisStartedEvent(
		len(ds.Equipment), len(ds.Parts), len(ds.Suppliers), len(ds.Warehouses), len(ds.Deliveries)))

	report := &dto.OperationsReport{
		GeneratedAt:     started,
		Window:          s.cfg.Window,
		ComponentErrors: make(map[string]error),
	}

	// The four components are independent: each reads its own slice of
	// the immutable dataset and writes a disjoint report field.
	var (
		wg      sync.WaitGroup
		relErr  error
		invErr  error
		supErr  error
		routErr error
	)
	wg.Add(4)
	go func() {
		defer wg.Done()
		report.Reliability, relErr = s.analyzer.Analyze(ctx, ds.Equipment, ds.DowntimeEvents, s.cfg.Window)
	}()
	go func() {
		defer wg.Done()
		report.Inventory, invErr = s.planner.Plan(ctx, ds.Parts, ds.Transactions, s.cfg.Window)
	}()
	go func() {
		defer wg.Done()
		report.Suppliers, supErr = s.scorer.Score(ctx, ds.Suppliers, ds.PurchaseOrders, s.cfg.Window)
	}()
	go func() {
		defer wg.Done()
		kpis := routing.Performance(ds.Deliveries)
		report.DeliveryKPIs = &kpis
		report.Routes, routErr = s.optimizer.OptimizeBatch(ctx, pendingDeliveries(ds.Deliveries), ds.Warehouses)
	}()
	wg.Wait()

	var relCount, invCount, supCount, routCount int
	if report.Reliability != nil {
		relCount = len(report.Reliability.Metrics)
	}
	if report.Inventory != nil {
		invCount = len(report.Inventory.Plans)
	}
	if report.Suppliers != nil {
		supCount = len(report.Suppliers.Scores)
	}
	if report.Routes != nil {
		routCount = len(report.Routes.Plans)
	}
	s.recordComponent(report, ComponentReliability, relErr, relCount)
	s.recordComponent(report, ComponentInventory, invErr, invCount)
	s.recordComponent(report, ComponentSupplier, supErr, supCount)
	s.recordComponent(report, ComponentRouting, routErr, routCount)
	if routErr != nil {
		report.Routes = nil
	}
	if report.Routes != nil {
		for date, planErr := range report.Routes.Errors {
			s.logger.WithFields(logrus.Fields{
				"component": ComponentRouting,
				"date":      date,
			}).WithError(planErr).Warn("planning date failed")
			s.emit(date, events.NewPlanningDateFailedEvent(date, planErr))
		}
	}

	var plans []routing.Plan
	if report.Routes != nil {
		plans = report.Routes.Plans
	}
	report.Insights, err = s.insights.Aggregate(ctx, report.Reliability, report.Inventory, report.Suppliers, report.DeliveryKPIs, plans)
	var alertCount int
	if report.Insights != nil {
		alertCount = len(report.Insights.Alerts)
	}
	s.recordComponent(report, ComponentInsight, err, alertCount)
	if report.Insights != nil {
		for _, alert := range report.Insights.Alerts {
			s.emit(alert.ID, events.NewAlertRaisedEvent(alert))
		}
	}

	s.emit(events.RunStream, events.NewAnalysisCompletedEvent(
		len(report.ComponentErrors), len(report.Warnings()), time.Since(started).String()))
	s.logger.WithFields(logrus.Fields{
		"elapsed":  time.Since(started).String(),
		"failures": len(report.ComponentErrors),
		"warnings": len(report.Warnings()),
	}).Info("analysis run complete")
	return report, nil
}

func (s *AnalyticsService) recordComponent(report *dto.OperationsReport, name string, err error, results int) {
	if err == nil {
		s.emit(name, events.NewComponentCompletedEvent(name, results))
		return
	}
	report.ComponentErrors[name] = err
	s.logger.WithField("component", name).WithError(err).Error("component failed")
	s.emit(name, events.NewComponentFailedEvent(name, err))
}

// pendingDeliveries filters to the orders still awaiting dispatch
func pendingDeliveries(deliveries []entities.DeliveryOrder) []entities.DeliveryOrder {
	var out []entities.DeliveryOrder
	for _, d := range deliveries {
		if d.Status == entities.DeliveryPlanned {
			out = append(out, d)
		}
	}
	return out
}
