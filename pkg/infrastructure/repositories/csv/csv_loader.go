// Package csv loads the engine's entity tables from CSV files. This is
// collaborator-layer I/O; the analytics components themselves never touch
// disk.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// Loader handles loading operations data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// readTable opens a CSV file, validates its header, and returns the data
// rows. Row errors reference the one-based file line for easier fixing.
func readTable(filename, table string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", table, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", table, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", table)
	}
	if !validateHeader(records[0], expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", table, expectedHeader, records[0])
	}
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", table, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

// LoadEquipment loads equipment master data from a CSV file
func (l *Loader) LoadEquipment(filename string) ([]*entities.Equipment, error) {
	header := []string{"id", "name", "type", "location", "install_date", "status"}
	rows, err := readTable(filename, "equipment", header)
	if err != nil {
		return nil, err
	}

	var equipment []*entities.Equipment
	for i, record := range rows {
		installDate, err := parseDate(record[4])
		if err != nil {
			return nil, fmt.Errorf("equipment CSV row %d: invalid install_date: %w", i+2, err)
		}
		status, err := parseEquipmentStatus(record[5])
		if err != nil {
			return nil, fmt.Errorf("equipment CSV row %d: %w", i+2, err)
		}
		e, err := entities.NewEquipment(entities.EquipmentID(record[0]), record[1], record[2], record[3], installDate, status)
		if err != nil {
			return nil, fmt.Errorf("equipment CSV row %d: %w", i+2, err)
		}
		equipment = append(equipment, e)
	}
	return equipment, nil
}

// LoadDowntimeEvents loads downtime events from a CSV file
func (l *Loader) LoadDowntimeEvents(filename string) ([]*entities.DowntimeEvent, error) {
	header := []string{"id", "equipment_id", "failure_timestamp", "repair_start", "repair_end", "failure_type", "repair_cost"}
	rows, err := readTable(filename, "downtime events", header)
	if err != nil {
		return nil, err
	}

	var events []*entities.DowntimeEvent
	for i, record := range rows {
		failureAt, err := parseTimestamp(record[2])
		if err != nil {
			return nil, fmt.Errorf("downtime events CSV row %d: invalid failure_timestamp: %w", i+2, err)
		}
		repairStart, err := parseTimestamp(record[3])
		if err != nil {
			return nil, fmt.Errorf("downtime events CSV row %d: invalid repair_start: %w", i+2, err)
		}
		repairEnd, err := parseTimestamp(record[4])
		if err != nil {
			return nil, fmt.Errorf("downtime events CSV row %d: invalid repair_end: %w", i+2, err)
		}
		cost, err := decimal.NewFromString(record[6])
		if err != nil {
			return nil, fmt.Errorf("downtime events CSV row %d: invalid repair_cost: %s", i+2, record[6])
		}
		e, err := entities.NewDowntimeEvent(record[0], entities.EquipmentID(record[1]), failureAt, repairStart, repairEnd, record[5], cost)
		if err != nil {
			return nil, fmt.Errorf("downtime events CSV row %d: %w", i+2, err)
		}
		events = append(events, e)
	}
	return events, nil
}

// LoadParts loads spare part master data from a CSV file
func (l *Loader) LoadParts(filename string) ([]*entities.SparePart, error) {
	header := []string{"id", "name", "category", "unit_cost", "lead_time_days", "reorder_point", "reorder_quantity", "supplier_id"}
	rows, err := readTable(filename, "parts", header)
	if err != nil {
		return nil, err
	}

	var parts []*entities.SparePart
	for i, record := range rows {
		unitCost, err := decimal.NewFromString(record[3])
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: invalid unit_cost: %s", i+2, record[3])
		}
		leadTimeDays, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: invalid lead_time_days: %s", i+2, record[4])
		}
		reorderPoint, err := strconv.ParseInt(record[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: invalid reorder_point: %s", i+2, record[5])
		}
		reorderQty, err := strconv.ParseInt(record[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: invalid reorder_quantity: %s", i+2, record[6])
		}
		p, err := entities.NewSparePart(entities.PartID(record[0]), record[1], record[2], unitCost, leadTimeDays, reorderPoint, reorderQty, entities.SupplierID(record[7]))
		if err != nil {
			return nil, fmt.Errorf("parts CSV row %d: %w", i+2, err)
		}
		parts = append(parts, p)
	}
	return parts, nil
}

// LoadTransactions loads inventory transactions from a CSV file
func (l *Loader) LoadTransactions(filename string) ([]*entities.InventoryTransaction, error) {
	header := []string{"id", "part_id", "date", "type", "quantity", "stock_after"}
	rows, err := readTable(filename, "transactions", header)
	if err != nil {
		return nil, err
	}

	var transactions []*entities.InventoryTransaction
	for i, record := range rows {
		date, err := parseDate(record[2])
		if err != nil {
			return nil, fmt.Errorf("transactions CSV row %d: invalid date: %w", i+2, err)
		}
		txType, err := entities.ParseTransactionType(record[3])
		if err != nil {
			return nil, fmt.Errorf("transactions CSV row %d: %w", i+2, err)
		}
		quantity, err := strconv.ParseInt(record[4], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transactions CSV row %d: invalid quantity: %s", i+2, record[4])
		}
		stockAfter, err := strconv.ParseInt(record[5], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("transactions CSV row %d: invalid stock_after: %s", i+2, record[5])
		}
		tx, err := entities.NewInventoryTransaction(record[0], entities.PartID(record[1]), date, txType, quantity, stockAfter)
		if err != nil {
			return nil, fmt.Errorf("transactions CSV row %d: %w", i+2, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// LoadSuppliers loads supplier master data from a CSV file
func (l *Loader) LoadSuppliers(filename string) ([]*entities.Supplier, error) {
	header := []string{"id", "name", "location", "rating", "average_lead_time"}
	rows, err := readTable(filename, "suppliers", header)
	if err != nil {
		return nil, err
	}

	var suppliers []*entities.Supplier
	for i, record := range rows {
		rating, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("suppliers CSV row %d: invalid rating: %s", i+2, record[3])
		}
		leadTime, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("suppliers CSV row %d: invalid average_lead_time: %s", i+2, record[4])
		}
		s, err := entities.NewSupplier(entities.SupplierID(record[0]), record[1], record[2], rating, leadTime)
		if err != nil {
			return nil, fmt.Errorf("suppliers CSV row %d: %w", i+2, err)
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, nil
}

// LoadPurchaseOrders loads purchase orders from a CSV file.
// actual_delivery_date may be empty for orders not yet received.
func (l *Loader) LoadPurchaseOrders(filename string) ([]*entities.PurchaseOrder, error) {
	header := []string{"id", "part_id", "supplier_id", "order_date", "expected_delivery_date", "actual_delivery_date", "quantity_ordered", "quantity_received", "unit_price"}
	rows, err := readTable(filename, "purchase orders", header)
	if err != nil {
		return nil, err
	}

	var orders []*entities.PurchaseOrder
	for i, record := range rows {
		orderDate, err := parseDate(record[3])
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: invalid order_date: %w", i+2, err)
		}
		expected, err := parseDate(record[4])
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: invalid expected_delivery_date: %w", i+2, err)
		}
		actual, err := parseOptionalDate(record[5])
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: invalid actual_delivery_date: %w", i+2, err)
		}
		qtyOrdered, err := strconv.ParseInt(record[6], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: invalid quantity_ordered: %s", i+2, record[6])
		}
		qtyReceived, err := strconv.ParseInt(record[7], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: invalid quantity_received: %s", i+2, record[7])
		}
		unitPrice, err := decimal.NewFromString(record[8])
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: invalid unit_price: %s", i+2, record[8])
		}
		o, err := entities.NewPurchaseOrder(entities.OrderID(record[0]), entities.PartID(record[1]), entities.SupplierID(record[2]), orderDate, expected, actual, qtyOrdered, qtyReceived, unitPrice)
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: %w", i+2, err)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// LoadWarehouses loads warehouse master data from a CSV file
func (l *Loader) LoadWarehouses(filename string) ([]*entities.Warehouse, error) {
	header := []string{"id", "name", "lat", "lon", "capacity", "type"}
	rows, err := readTable(filename, "warehouses", header)
	if err != nil {
		return nil, err
	}

	var warehouses []*entities.Warehouse
	for i, record := range rows {
		lat, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, fmt.Errorf("warehouses CSV row %d: invalid lat: %s", i+2, record[2])
		}
		lon, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("warehouses CSV row %d: invalid lon: %s", i+2, record[3])
		}
		capacity, err := strconv.Atoi(record[4])
		if err != nil {
			return nil, fmt.Errorf("warehouses CSV row %d: invalid capacity: %s", i+2, record[4])
		}
		w, err := entities.NewWarehouse(entities.WarehouseID(record[0]), record[1], lat, lon, capacity, record[5])
		if err != nil {
			return nil, fmt.Errorf("warehouses CSV row %d: %w", i+2, err)
		}
		warehouses = append(warehouses, w)
	}
	return warehouses, nil
}

// LoadDeliveries loads delivery orders from a CSV file.
// actual_delivery_date may be empty for deliveries still in flight.
func (l *Loader) LoadDeliveries(filename string) ([]*entities.DeliveryOrder, error) {
	header := []string{"id", "part_id", "source_warehouse_id", "dest_lat", "dest_lon", "order_date", "planned_delivery_date", "actual_delivery_date", "quantity", "transport_mode", "delivery_cost", "distance_km", "status"}
	rows, err := readTable(filename, "deliveries", header)
	if err != nil {
		return nil, err
	}

	var deliveries []*entities.DeliveryOrder
	for i, record := range rows {
		destLat, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid dest_lat: %s", i+2, record[3])
		}
		destLon, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid dest_lon: %s", i+2, record[4])
		}
		orderDate, err := parseDate(record[5])
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid order_date: %w", i+2, err)
		}
		planned, err := parseDate(record[6])
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid planned_delivery_date: %w", i+2, err)
		}
		actual, err := parseOptionalDate(record[7])
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid actual_delivery_date: %w", i+2, err)
		}
		quantity, err := strconv.ParseInt(record[8], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid quantity: %s", i+2, record[8])
		}
		cost, err := decimal.NewFromString(record[10])
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid delivery_cost: %s", i+2, record[10])
		}
		distance, err := strconv.ParseFloat(record[11], 64)
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: invalid distance_km: %s", i+2, record[11])
		}
		status, err := parseDeliveryStatus(record[12])
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: %w", i+2, err)
		}
		d, err := entities.NewDeliveryOrder(entities.DeliveryID(record[0]), entities.PartID(record[1]), entities.WarehouseID(record[2]), destLat, destLon, orderDate, planned, actual, quantity, entities.TransportMode(record[9]), cost, distance, status)
		if err != nil {
			return nil, fmt.Errorf("deliveries CSV row %d: %w", i+2, err)
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, nil
}

// Helper functions for parsing CSV records

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// parseTimestamp accepts a full timestamp or a bare date
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%s (expected YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)", s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseEquipmentStatus(s string) (entities.EquipmentStatus, error) {
	switch strings.ToLower(s) {
	case "operational":
		return entities.Operational, nil
	case "undermaintenance", "under_maintenance":
		return entities.UnderMaintenance, nil
	case "decommissioned":
		return entities.Decommissioned, nil
	default:
		return entities.Operational, fmt.Errorf("invalid status: %s (expected: Operational, UnderMaintenance, or Decommissioned)", s)
	}
}

func parseDeliveryStatus(s string) (entities.DeliveryStatus, error) {
	switch strings.ToLower(s) {
	case "planned":
		return entities.DeliveryPlanned, nil
	case "intransit", "in_transit":
		return entities.DeliveryInTransit, nil
	case "delivered":
		return entities.DeliveryDelivered, nil
	case "cancelled":
		return entities.DeliveryCancelled, nil
	default:
		return entities.DeliveryPlanned, fmt.Errorf("invalid status: %s (expected: Planned, InTransit, Delivered, or Cancelled)", s)
	}
}
