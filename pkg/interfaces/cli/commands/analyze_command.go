package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/nmehta/opsengine/pkg/analytics/dataset"
	"github.com/nmehta/opsengine/pkg/application/services"
	"github.com/nmehta/opsengine/pkg/infrastructure/events"
	"github.com/nmehta/opsengine/pkg/infrastructure/repositories/csv"
	"github.com/nmehta/opsengine/pkg/infrastructure/repositories/memory"
	"github.com/nmehta/opsengine/pkg/interfaces/cli/output"
)

// Config holds configuration for the analyze command
type Config struct {
	DataDir     string
	ConfigFile  string
	OutputDir   string
	Format      string
	WindowStart string
	WindowEnd   string
	Verbose     bool
	Help        bool
}

// AnalyzeCommand handles the main analysis execution logic
type AnalyzeCommand struct {
	config Config
}

// NewAnalyzeCommand creates a new analyze command with the given configuration
func NewAnalyzeCommand(config Config) *AnalyzeCommand {
	return &AnalyzeCommand{
		config: config,
	}
}

// Execute runs the analyze command
func (c *AnalyzeCommand) Execute(ctx context.Context) error {
	if c.config.Help {
		c.showHelp()
		return nil
	}

	if c.config.DataDir == "" {
		return fmt.Errorf("must specify a -data directory containing the CSV files")
	}

	files, err := c.resolveInputFiles()
	if err != nil {
		return fmt.Errorf("failed to resolve input files: %w", err)
	}

	serviceConfig, err := loadServiceConfig(c.config.ConfigFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Window flags take precedence over the config file.
	if c.config.WindowStart != "" || c.config.WindowEnd != "" {
		window, err := parseWindow(c.config.WindowStart, c.config.WindowEnd)
		if err != nil {
			return err
		}
		serviceConfig.Window = window
	}

	if c.config.Verbose {
		c.printHeader(files)
	}

	collections, err := c.loadCollections(files)
	if err != nil {
		return err
	}

	if c.config.Verbose {
		fmt.Printf("Data loaded:\n")
		fmt.Printf("  Equipment: %d\n", len(collections.Equipment))
		fmt.Printf("  Downtime Events: %d\n", len(collections.DowntimeEvents))
		fmt.Printf("  Parts: %d\n", len(collections.Parts))
		fmt.Printf("  Transactions: %d\n", len(collections.Transactions))
		fmt.Printf("  Suppliers: %d\n", len(collections.Suppliers))
		fmt.Printf("  Purchase Orders: %d\n", len(collections.PurchaseOrders))
		fmt.Printf("  Warehouses: %d\n", len(collections.Warehouses))
		fmt.Printf("  Deliveries: %d\n", len(collections.Deliveries))
		fmt.Println()
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if c.config.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}

	service, err := services.NewAnalyticsService(serviceConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to build analytics service: %w", err)
	}
	audit := events.NewInMemoryEventStore()
	service.SetEventStore(audit)

	report, err := service.Run(ctx, collections)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if c.config.Verbose {
		printAuditTrail(audit)
	}

	outputConfig := output.Config{
		Format:    c.config.Format,
		OutputDir: c.config.OutputDir,
		Verbose:   c.config.Verbose,
	}
	if err := output.Generate(report, outputConfig); err != nil {
		return fmt.Errorf("error generating output: %w", err)
	}

	return nil
}

// loadCollections reads every CSV table and stages it through the in-memory
// repositories, which reject duplicate ids before the service's cross-table
// validation runs.
func (c *AnalyzeCommand) loadCollections(files map[string]string) (dataset.Collections, error) {
	loader := csv.NewLoader()
	var collections dataset.Collections

	equipment, err := loader.LoadEquipment(files["Equipment"])
	if err != nil {
		return collections, fmt.Errorf("error loading equipment: %w", err)
	}
	downtime, err := loader.LoadDowntimeEvents(files["Downtime"])
	if err != nil {
		return collections, fmt.Errorf("error loading downtime events: %w", err)
	}
	parts, err := loader.LoadParts(files["Parts"])
	if err != nil {
		return collections, fmt.Errorf("error loading parts: %w", err)
	}
	transactions, err := loader.LoadTransactions(files["Transactions"])
	if err != nil {
		return collections, fmt.Errorf("error loading transactions: %w", err)
	}
	suppliers, err := loader.LoadSuppliers(files["Suppliers"])
	if err != nil {
		return collections, fmt.Errorf("error loading suppliers: %w", err)
	}
	orders, err := loader.LoadPurchaseOrders(files["PurchaseOrders"])
	if err != nil {
		return collections, fmt.Errorf("error loading purchase orders: %w", err)
	}
	warehouses, err := loader.LoadWarehouses(files["Warehouses"])
	if err != nil {
		return collections, fmt.Errorf("error loading warehouses: %w", err)
	}
	deliveries, err := loader.LoadDeliveries(files["Deliveries"])
	if err != nil {
		return collections, fmt.Errorf("error loading deliveries: %w", err)
	}

	equipmentRepo := memory.NewEquipmentRepository(len(equipment))
	if err := equipmentRepo.LoadEquipment(equipment); err != nil {
		return collections, fmt.Errorf("failed to load equipment into repository: %w", err)
	}
	downtimeRepo := memory.NewDowntimeRepository(len(downtime))
	if err := downtimeRepo.LoadEvents(downtime); err != nil {
		return collections, fmt.Errorf("failed to load downtime events into repository: %w", err)
	}
	partRepo := memory.NewPartRepository(len(parts))
	if err := partRepo.LoadParts(parts); err != nil {
		return collections, fmt.Errorf("failed to load parts into repository: %w", err)
	}
	transactionRepo := memory.NewTransactionRepository(len(transactions))
	if err := transactionRepo.LoadTransactions(transactions); err != nil {
		return collections, fmt.Errorf("failed to load transactions into repository: %w", err)
	}
	supplierRepo := memory.NewSupplierRepository(len(suppliers))
	if err := supplierRepo.LoadSuppliers(suppliers); err != nil {
		return collections, fmt.Errorf("failed to load suppliers into repository: %w", err)
	}
	orderRepo := memory.NewPurchaseOrderRepository(len(orders))
	if err := orderRepo.LoadOrders(orders); err != nil {
		return collections, fmt.Errorf("failed to load purchase orders into repository: %w", err)
	}
	warehouseRepo := memory.NewWarehouseRepository(len(warehouses))
	if err := warehouseRepo.LoadWarehouses(warehouses); err != nil {
		return collections, fmt.Errorf("failed to load warehouses into repository: %w", err)
	}
	deliveryRepo := memory.NewDeliveryRepository(len(deliveries))
	if err := deliveryRepo.LoadDeliveries(deliveries); err != nil {
		return collections, fmt.Errorf("failed to load deliveries into repository: %w", err)
	}

	collections.Equipment, err = collect(equipmentRepo.GetAllEquipment)
	if err != nil {
		return collections, err
	}
	collections.DowntimeEvents, err = collect(downtimeRepo.GetAllEvents)
	if err != nil {
		return collections, err
	}
	collections.Parts, err = collect(partRepo.GetAllParts)
	if err != nil {
		return collections, err
	}
	collections.Transactions, err = collect(transactionRepo.GetAllTransactions)
	if err != nil {
		return collections, err
	}
	collections.Suppliers, err = collect(supplierRepo.GetAllSuppliers)
	if err != nil {
		return collections, err
	}
	collections.PurchaseOrders, err = collect(orderRepo.GetAllOrders)
	if err != nil {
		return collections, err
	}
	collections.Warehouses, err = collect(warehouseRepo.GetAllWarehouses)
	if err != nil {
		return collections, err
	}
	collections.Deliveries, err = collect(deliveryRepo.GetAllDeliveries)
	if err != nil {
		return collections, err
	}
	return collections, nil
}

// printAuditTrail dumps the run's event log in append order
func printAuditTrail(store events.EventStore) {
	all, err := store.ReadAll(0)
	if err != nil || len(all) == 0 {
		return
	}
	fmt.Println("Audit trail:")
	for _, event := range all {
		fmt.Printf("  %s  %-24s %s\n",
			event.Timestamp().Format("15:04:05.000"), event.Type(), event.StreamID())
	}
	fmt.Println()
}

// collect drains a repository accessor into a value slice
func collect[T any](getAll func() ([]*T, error)) ([]T, error) {
	items, err := getAll()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = *item
	}
	return out, nil
}

// resolveInputFiles determines the actual file paths to use
func (c *AnalyzeCommand) resolveInputFiles() (map[string]string, error) {
	files := map[string]string{
		"Equipment":      filepath.Join(c.config.DataDir, "equipment.csv"),
		"Downtime":       filepath.Join(c.config.DataDir, "downtime_events.csv"),
		"Parts":          filepath.Join(c.config.DataDir, "parts.csv"),
		"Transactions":   filepath.Join(c.config.DataDir, "transactions.csv"),
		"Suppliers":      filepath.Join(c.config.DataDir, "suppliers.csv"),
		"PurchaseOrders": filepath.Join(c.config.DataDir, "purchase_orders.csv"),
		"Warehouses":     filepath.Join(c.config.DataDir, "warehouses.csv"),
		"Deliveries":     filepath.Join(c.config.DataDir, "deliveries.csv"),
	}

	for name, path := range files {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("%s file not found: %s", name, path)
		}
	}

	return files, nil
}

// printHeader prints the command header information
func (c *AnalyzeCommand) printHeader(files map[string]string) {
	fmt.Printf("Operations Analytics Engine\n")
	fmt.Printf("Data directory: %s\n", c.config.DataDir)
	if c.config.ConfigFile != "" {
		fmt.Printf("Config file: %s\n", c.config.ConfigFile)
	}
	fmt.Printf("Output format: %s\n", c.config.Format)
	if c.config.OutputDir != "" {
		fmt.Printf("Output directory: %s\n", c.config.OutputDir)
	}
	fmt.Println()
}

// showHelp displays the help message
func (c *AnalyzeCommand) showHelp() {
	fmt.Printf(`Operations Analytics Engine - reliability, inventory, supplier and routing analysis

USAGE:
    opsengine -data <directory> [options]

OPTIONS:
    -data <dir>         Path to directory containing the CSV data files
    -config <file>      YAML file with analysis parameters (optional)
    -start <date>       Observation window start, YYYY-MM-DD (optional)
    -end <date>         Observation window end, YYYY-MM-DD (optional)
    -output <dir>       Output directory for results (optional)
    -format <fmt>       Output format: text, json, csv (default: text)
    -verbose            Enable verbose output
    -help               Show this help message

DATA DIRECTORY STRUCTURE:
    plant_data/
    ├── equipment.csv        # Machine master data
    ├── downtime_events.csv  # Failure and repair history
    ├── parts.csv            # Spare part master data
    ├── transactions.csv     # Inventory movement history
    ├── suppliers.csv        # Supplier master data
    ├── purchase_orders.csv  # Procurement history
    ├── warehouses.csv       # Warehouse locations and capacities
    └── deliveries.csv       # Delivery orders, past and planned

CSV FILE FORMATS:

equipment.csv:
    id,name,type,location,install_date,status
    EQ-001,Hydraulic Press,Press,Pune,2019-03-01,Operational

downtime_events.csv:
    id,equipment_id,failure_timestamp,repair_start,repair_end,failure_type,repair_cost
    DT-001,EQ-001,2025-01-12 08:30:00,2025-01-12 09:00:00,2025-01-12 14:00:00,Mechanical,12500

parts.csv:
    id,name,category,unit_cost,lead_time_days,reorder_point,reorder_quantity,supplier_id
    PT-001,Spindle Bearing,Bearings,850,14,40,120,SUP-001

transactions.csv:
    id,part_id,date,type,quantity,stock_after
    TX-001,PT-001,2025-01-05,Issue,4,96

suppliers.csv:
    id,name,location,rating,average_lead_time
    SUP-001,Precision Components Ltd,Mumbai,4.5,12

purchase_orders.csv:
    id,supplier_id,part_id,order_date,quantity,unit_price,expected_delivery_date,actual_delivery_date,status
    PO-001,SUP-001,PT-001,2025-01-02,120,850,2025-01-16,2025-01-15,Delivered

warehouses.csv:
    id,name,lat,lon,capacity,type
    WH-001,Mumbai Central,19.0760,72.8777,50000,Regional

deliveries.csv:
    id,part_id,source_warehouse_id,dest_lat,dest_lon,order_date,planned_delivery,actual_delivery,quantity,mode,cost,distance_km,status
    DL-001,PT-001,WH-001,18.5204,73.8567,2025-02-01,2025-02-05,2025-02-04,10,Road,1850,149.2,Delivered

EXAMPLES:
    # Analyze a plant dataset with defaults
    opsengine -data plant_data -verbose

    # Bound the observation window
    opsengine -data plant_data -start 2025-01-01 -end 2025-07-01

    # Tune parameters from a YAML file and emit JSON
    opsengine -data plant_data -config tuning.yaml -format json -output results/
`)
}
