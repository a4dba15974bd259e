package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/nmehta/opsengine/pkg/analytics/routing"
	"github.com/nmehta/opsengine/pkg/application/dto"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
}

// Generate creates output in the specified format
func Generate(report *dto.OperationsReport, config Config) error {
	switch config.Format {
	case "text":
		return generateTextOutput(report, config)
	case "json":
		return generateJSONOutput(report, config)
	case "csv":
		return generateCSVOutput(report, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(report *dto.OperationsReport, config Config) error {
	var output string

	output += "═══════════════════════════════════════════════════════════════\n"
	output += "              OPERATIONS ANALYTICS REPORT\n"
	output += "═══════════════════════════════════════════════════════════════\n\n"

	output += "📊 SUMMARY\n"
	output += fmt.Sprintf("  Generated At: %s\n", report.GeneratedAt.Format(time.RFC3339))
	if !report.Window.IsZero() {
		output += fmt.Sprintf("  Window: %s to %s\n",
			report.Window.Start.Format("2006-01-02"),
			report.Window.End.Format("2006-01-02"))
	}
	if report.Reliability != nil {
		output += fmt.Sprintf("  Equipment Analyzed: %d\n", len(report.Reliability.Metrics))
	}
	if report.Inventory != nil {
		output += fmt.Sprintf("  Parts Planned: %d\n", len(report.Inventory.Plans))
	}
	if report.Suppliers != nil {
		output += fmt.Sprintf("  Suppliers Scored: %d\n", len(report.Suppliers.Scores))
	}
	if report.Routes != nil {
		output += fmt.Sprintf("  Route Plans: %d\n", len(report.Routes.Plans))
	}
	output += fmt.Sprintf("  Warnings: %d\n", len(report.Warnings()))
	output += "\n"

	if len(report.ComponentErrors) > 0 {
		output += "❌ COMPONENT ERRORS\n"
		output += "────────────────────────────────────────────────────────────────\n"
		names := make([]string, 0, len(report.ComponentErrors))
		for name := range report.ComponentErrors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			output += fmt.Sprintf("  %s: %v\n", name, report.ComponentErrors[name])
		}
		output += "\n"
	}

	if report.Reliability != nil && len(report.Reliability.HighRisk) > 0 {
		output += "⚠️  HIGH RISK EQUIPMENT\n"
		output += "────────────────────────────────────────────────────────────────\n"
		for _, m := range report.Reliability.HighRisk {
			output += fmt.Sprintf("%-12s %-24s Risk: %6.1f  %s\n",
				m.EquipmentID, m.Name, m.RiskScore, m.Criticality)
			mtbf := "n/a"
			if m.MTBFHours != nil {
				mtbf = fmt.Sprintf("%.1fh", *m.MTBFHours)
			}
			output += fmt.Sprintf("  Failures: %d  MTBF: %s  MTTR: %.1fh  Availability: %.1f%%\n",
				m.FailureCount, mtbf, m.MTTRHours, m.Availability*100)
		}
		output += "\n"
	}

	if report.Inventory != nil {
		var attention []string
		for _, p := range report.Inventory.Plans {
			if p.StockStatus == "Stock Out" || p.StockStatus == "Below Reorder Point" {
				attention = append(attention, fmt.Sprintf(
					"%-12s %-24s %s%s  %s  ROP: %.0f",
					p.PartID, p.Name, p.ABCClass, p.XYZClass, p.StockStatus, p.ReorderPoint))
			}
		}
		if len(attention) > 0 {
			output += "📦 PARTS NEEDING REPLENISHMENT\n"
			output += "────────────────────────────────────────────────────────────────\n"
			for _, line := range attention {
				output += line + "\n"
			}
			output += "\n"
		}
	}

	if report.Suppliers != nil {
		ranked := report.Suppliers.Ranked()
		if len(ranked) > 0 {
			output += "🏭 SUPPLIER RISK RANKING\n"
			output += "────────────────────────────────────────────────────────────────\n"
			for _, s := range ranked {
				output += fmt.Sprintf("%-12s %-24s Risk: %5.1f  %-10s OnTime: %.0f%%\n",
					s.SupplierID, s.Name, s.RiskScore, s.RiskCategory, s.OnTimeRate*100)
			}
			output += "\n"
		}
	}

	if report.Routes != nil && len(report.Routes.Plans) > 0 {
		output += "🚚 ROUTE PLANS\n"
		output += "────────────────────────────────────────────────────────────────\n"
		for _, plan := range report.Routes.Plans {
			output += fmt.Sprintf("Date: %s  Status: %s  Total Cost: %s\n",
				plan.Date.Format("2006-01-02"), plan.Status, plan.TotalCost.StringFixed(2))
			for _, a := range plan.Assignments {
				output += fmt.Sprintf("  %-12s from %-12s via %-6s %7.1f km  %s\n",
					a.DeliveryID, a.WarehouseID, a.Mode, a.DistanceKm, a.Cost.StringFixed(2))
			}
		}
		if len(report.Routes.Errors) > 0 {
			dates := make([]string, 0, len(report.Routes.Errors))
			for date := range report.Routes.Errors {
				dates = append(dates, date)
			}
			sort.Strings(dates)
			for _, date := range dates {
				output += fmt.Sprintf("  [!] %s: %v\n", date, report.Routes.Errors[date])
			}
		}
		output += "\n"
	}

	if report.DeliveryKPIs != nil && report.DeliveryKPIs.DeliveredOrders > 0 {
		k := report.DeliveryKPIs
		output += "📈 DELIVERY PERFORMANCE\n"
		output += "────────────────────────────────────────────────────────────────\n"
		output += fmt.Sprintf("  Delivered: %d/%d  On Time: %.0f%%  Avg Lead: %.1fd  Total Cost: %s\n",
			k.DeliveredOrders, k.TotalOrders, k.OnTimeRate*100, k.AvgLeadTimeDays, k.TotalCost.StringFixed(2))
		output += "\n"
	}

	if report.Insights != nil {
		output += "💡 INSIGHTS\n"
		output += "────────────────────────────────────────────────────────────────\n"
		kpis := report.Insights.KPIs
		output += fmt.Sprintf("  Perfect Order Rate: %.1f%%  (supplier %.0f%%, delivery %.0f%%, stock %.0f%%)\n",
			kpis.PerfectOrderRate*100, kpis.SupplierOnTime*100, kpis.DeliveryOnTime*100, kpis.StockAvailability*100)
		for _, t := range report.Insights.Trends {
			output += fmt.Sprintf("  Trend: %-28s %s\n", t.Metric, t.Direction)
		}
		for _, a := range report.Insights.Alerts {
			output += fmt.Sprintf("  [%s] %s\n", a.Severity, a.Reason)
		}
		output += "\n"
	}

	output += "═══════════════════════════════════════════════════════════════\n"

	if config.OutputDir != "" {
		if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
		filename := filepath.Join(config.OutputDir, "operations_report.txt")
		if err := os.WriteFile(filename, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write text output: %w", err)
		}
		if config.Verbose {
			fmt.Printf("📄 Text output written to: %s\n", filename)
		}
	} else {
		fmt.Print(output)
	}

	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(report *dto.OperationsReport, config Config) error {
	// Error values do not marshal, so component and per-date route errors
	// are flattened to strings first.
	jsonReport := struct {
		*dto.OperationsReport
		ComponentErrors map[string]string `json:"component_errors,omitempty"`
		RouteErrors     map[string]string `json:"route_errors,omitempty"`
	}{OperationsReport: report}

	if len(report.ComponentErrors) > 0 {
		jsonReport.ComponentErrors = make(map[string]string, len(report.ComponentErrors))
		for name, err := range report.ComponentErrors {
			jsonReport.ComponentErrors[name] = err.Error()
		}
	}
	if report.Routes != nil && len(report.Routes.Errors) > 0 {
		jsonReport.RouteErrors = make(map[string]string, len(report.Routes.Errors))
		for date, err := range report.Routes.Errors {
			jsonReport.RouteErrors[date] = err.Error()
		}
	}

	jsonBytes, err := json.MarshalIndent(jsonReport, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		fmt.Printf("%s\n", jsonBytes)
		return nil
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "operations_report.json")
	if err := os.WriteFile(filename, jsonBytes, 0644); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	if config.Verbose {
		fmt.Printf("📄 JSON output written to: %s\n", filename)
	}

	return nil
}

// generateCSVOutput creates CSV output files
func generateCSVOutput(report *dto.OperationsReport, config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("CSV output requires an output directory (-output)")
	}
	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if report.Reliability != nil && len(report.Reliability.Metrics) > 0 {
		filename := filepath.Join(config.OutputDir, "equipment_metrics.csv")
		if err := writeEquipmentCSV(report, filename); err != nil {
			return fmt.Errorf("failed to write equipment metrics CSV: %w", err)
		}
		if config.Verbose {
			fmt.Printf("📄 Equipment metrics CSV written to: %s\n", filename)
		}
	}

	if report.Inventory != nil && len(report.Inventory.Plans) > 0 {
		filename := filepath.Join(config.OutputDir, "inventory_plans.csv")
		if err := writeInventoryCSV(report, filename); err != nil {
			return fmt.Errorf("failed to write inventory plans CSV: %w", err)
		}
		if config.Verbose {
			fmt.Printf("📄 Inventory plans CSV written to: %s\n", filename)
		}
	}

	if report.Suppliers != nil && len(report.Suppliers.Scores) > 0 {
		filename := filepath.Join(config.OutputDir, "supplier_scores.csv")
		if err := writeSupplierCSV(report, filename); err != nil {
			return fmt.Errorf("failed to write supplier scores CSV: %w", err)
		}
		if config.Verbose {
			fmt.Printf("📄 Supplier scores CSV written to: %s\n", filename)
		}
	}

	if report.Routes != nil && len(report.Routes.Plans) > 0 {
		filename := filepath.Join(config.OutputDir, "route_assignments.csv")
		if err := writeRouteCSV(report.Routes.Plans, filename); err != nil {
			return fmt.Errorf("failed to write route assignments CSV: %w", err)
		}
		if config.Verbose {
			fmt.Printf("📄 Route assignments CSV written to: %s\n", filename)
		}
	}

	if report.Insights != nil && len(report.Insights.Alerts) > 0 {
		filename := filepath.Join(config.OutputDir, "alerts.csv")
		if err := writeAlertsCSV(report, filename); err != nil {
			return fmt.Errorf("failed to write alerts CSV: %w", err)
		}
		if config.Verbose {
			fmt.Printf("📄 Alerts CSV written to: %s\n", filename)
		}
	}

	return nil
}

func writeEquipmentCSV(report *dto.OperationsReport, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"equipment_id", "name", "type", "failure_count", "downtime_hours", "mttr_hours", "mtbf_hours", "repair_cost", "availability", "oee", "risk_score", "criticality"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, m := range report.Reliability.Metrics {
		mtbf := ""
		if m.MTBFHours != nil {
			mtbf = strconv.FormatFloat(*m.MTBFHours, 'f', 2, 64)
		}
		record := []string{
			string(m.EquipmentID),
			m.Name,
			m.Type,
			strconv.Itoa(m.FailureCount),
			strconv.FormatFloat(m.TotalDowntimeHours, 'f', 2, 64),
			strconv.FormatFloat(m.MTTRHours, 'f', 2, 64),
			mtbf,
			m.TotalRepairCost.String(),
			strconv.FormatFloat(m.Availability, 'f', 4, 64),
			strconv.FormatFloat(m.OEE, 'f', 4, 64),
			strconv.FormatFloat(m.RiskScore, 'f', 2, 64),
			m.Criticality,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeInventoryCSV(report *dto.OperationsReport, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"part_id", "name", "abc_class", "xyz_class", "consumption_value", "annual_demand", "eoq", "safety_stock", "reorder_point", "current_stock", "stock_status", "turnover_ratio", "movement"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, p := range report.Inventory.Plans {
		stock := ""
		if p.CurrentStock != nil {
			stock = strconv.FormatInt(*p.CurrentStock, 10)
		}
		record := []string{
			string(p.PartID),
			p.Name,
			p.ABCClass,
			p.XYZClass,
			p.ConsumptionValue.String(),
			strconv.FormatFloat(p.AnnualDemand, 'f', 2, 64),
			strconv.FormatFloat(p.EOQ, 'f', 2, 64),
			strconv.FormatFloat(p.SafetyStock, 'f', 2, 64),
			strconv.FormatFloat(p.ReorderPoint, 'f', 2, 64),
			stock,
			p.StockStatus,
			strconv.FormatFloat(p.TurnoverRatio, 'f', 2, 64),
			p.MovementCategory,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeSupplierCSV(report *dto.OperationsReport, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"supplier_id", "name", "delivered_orders", "on_time_rate", "avg_lead_time_days", "lead_time_std_days", "total_spend", "rating", "risk_score", "risk_category", "insufficient_data"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, s := range report.Suppliers.Scores {
		record := []string{
			string(s.SupplierID),
			s.Name,
			strconv.Itoa(s.DeliveredOrders),
			strconv.FormatFloat(s.OnTimeRate, 'f', 4, 64),
			strconv.FormatFloat(s.AvgLeadTimeDays, 'f', 2, 64),
			strconv.FormatFloat(s.LeadTimeStdDays, 'f', 2, 64),
			s.TotalSpend.String(),
			strconv.FormatFloat(s.Rating, 'f', 1, 64),
			strconv.FormatFloat(s.RiskScore, 'f', 2, 64),
			s.RiskCategory,
			strconv.FormatBool(s.InsufficientData),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}

func writeRouteCSV(plans []routing.Plan, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"date", "status", "delivery_id", "warehouse_id", "mode", "distance_km", "cost"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, plan := range plans {
		for _, a := range plan.Assignments {
			record := []string{
				plan.Date.Format("2006-01-02"),
				plan.Status.String(),
				string(a.DeliveryID),
				string(a.WarehouseID),
				string(a.Mode),
				strconv.FormatFloat(a.DistanceKm, 'f', 1, 64),
				a.Cost.StringFixed(2),
			}
			if err := writer.Write(record); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeAlertsCSV(report *dto.OperationsReport, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"id", "severity", "source", "metric", "key", "magnitude", "reason"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, a := range report.Insights.Alerts {
		record := []string{
			a.ID,
			a.Severity.String(),
			a.Source,
			a.Metric,
			a.Key,
			strconv.FormatFloat(a.Magnitude, 'f', 2, 64),
			a.Reason,
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	return nil
}
