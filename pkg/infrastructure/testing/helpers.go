package testing

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmehta/opsengine/pkg/analytics/dataset"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// BuildPlantTestData builds a small but complete plant scenario: three
// machines with failure history, four parts with a year of transactions,
// two suppliers with order history, and two warehouses with deliveries.
// Tests across packages share it so end-to-end expectations stay in one
// place.
func BuildPlantTestData() dataset.Collections {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	day := func(n int) time.Time { return base.AddDate(0, 0, n) }

	equipment := []entities.Equipment{
		{ID: "EQ-PRESS", Name: "Hydraulic Press", Type: "Press", Location: "Line A", InstallDate: base.AddDate(-5, 0, 0), Status: entities.Operational},
		{ID: "EQ-LATHE", Name: "CNC Lathe", Type: "Lathe", Location: "Line A", InstallDate: base.AddDate(-3, 0, 0), Status: entities.Operational},
		{ID: "EQ-PUMP", Name: "Coolant Pump", Type: "Pump", Location: "Line B", InstallDate: base.AddDate(-8, 0, 0), Status: entities.UnderMaintenance},
	}

	event := func(id string, eq entities.EquipmentID, startDay int, repairHours int, failureType string, cost int64) entities.DowntimeEvent {
		at := day(startDay).Add(8 * time.Hour)
		return entities.DowntimeEvent{
			ID: id, EquipmentID: eq,
			FailureAt: at, RepairStart: at, RepairEnd: at.Add(time.Duration(repairHours) * time.Hour),
			FailureType: failureType, RepairCost: decimal.NewFromInt(cost),
		}
	}
	events := []entities.DowntimeEvent{
		// The pump fails often and expensively; it should rank first.
		event("DT1", "EQ-PUMP", 5, 8, "Mechanical", 2000),
		event("DT2", "EQ-PUMP", 40, 12, "Mechanical", 3500),
		event("DT3", "EQ-PUMP", 90, 6, "Electrical", 1500),
		event("DT4", "EQ-PRESS", 30, 4, "Hydraulic", 1200),
		event("DT5", "EQ-PRESS", 150, 3, "Hydraulic", 900),
		// EQ-LATHE has no failures and must surface as a flagged,
		// defined result rather than an error.
	}

	suppliers := []entities.Supplier{
		{ID: "SUP-RELIABLE", Name: "Precision Components", Location: "Pune", Rating: 4.5, AverageLeadTime: 7},
		{ID: "SUP-FLAKY", Name: "Budget Industrial", Location: "Surat", Rating: 2.0, AverageLeadTime: 14},
	}

	parts := []entities.SparePart{
		{ID: "PT-BEARING", Name: "Spindle Bearing", Category: "Mechanical", UnitCost: decimal.NewFromInt(80), LeadTimeDays: 7, ReorderPoint: 20, ReorderQty: 50, SupplierID: "SUP-RELIABLE"},
		{ID: "PT-SEAL", Name: "Hydraulic Seal", Category: "Mechanical", UnitCost: decimal.NewFromInt(15), LeadTimeDays: 5, ReorderPoint: 30, ReorderQty: 100, SupplierID: "SUP-FLAKY"},
		{ID: "PT-FILTER", Name: "Coolant Filter", Category: "Consumable", UnitCost: decimal.NewFromInt(8), LeadTimeDays: 3, ReorderPoint: 40, ReorderQty: 200, SupplierID: "SUP-FLAKY"},
		// A newly added part with no history at all.
		{ID: "PT-NEW", Name: "Spare Motor", Category: "Electrical", UnitCost: decimal.NewFromInt(600), LeadTimeDays: 21, ReorderPoint: 2, ReorderQty: 4, SupplierID: "SUP-RELIABLE"},
	}

	var transactions []entities.InventoryTransaction
	txID := 0
	tx := func(part entities.PartID, d int, txType entities.TransactionType, qty, after int64) {
		txID++
		transactions = append(transactions, entities.InventoryTransaction{
			ID: "TX" + strconv.Itoa(txID), PartID: part, Date: day(d), Type: txType, Quantity: qty, StockAfter: after,
		})
	}
	// Bearings: steady monthly issues, healthy stock.
	tx("PT-BEARING", 0, entities.Receipt, 100, 100)
	for m := 0; m < 6; m++ {
		tx("PT-BEARING", m*30+10, entities.Issue, 10, 100-int64((m+1)*10))
	}
	// Seals: erratic issues ending in a stock-out.
	tx("PT-SEAL", 0, entities.Receipt, 120, 120)
	tx("PT-SEAL", 20, entities.Issue, 80, 40)
	tx("PT-SEAL", 75, entities.Issue, 5, 35)
	tx("PT-SEAL", 130, entities.Issue, 35, 0)
	// Filters: frequent small issues, currently below reorder point.
	tx("PT-FILTER", 0, entities.Receipt, 200, 200)
	for w := 0; w < 16; w++ {
		tx("PT-FILTER", w*10+3, entities.Issue, 10, 200-int64((w+1)*10))
	}

	po := func(id string, part entities.PartID, sup entities.SupplierID, orderDay, leadDays, lateDays int, qty int64, price int64) entities.PurchaseOrder {
		expected := day(orderDay + leadDays - lateDays)
		actual := day(orderDay + leadDays)
		return entities.PurchaseOrder{
			ID: entities.OrderID(id), PartID: part, SupplierID: sup,
			OrderDate: day(orderDay), ExpectedDelivery: expected, ActualDelivery: &actual,
			QtyOrdered: qty, QtyReceived: qty, UnitPrice: decimal.NewFromInt(price),
		}
	}
	orders := []entities.PurchaseOrder{
		po("PO1", "PT-BEARING", "SUP-RELIABLE", 10, 7, 0, 50, 80),
		po("PO2", "PT-BEARING", "SUP-RELIABLE", 70, 7, 0, 50, 80),
		po("PO3", "PT-BEARING", "SUP-RELIABLE", 130, 7, 0, 50, 80),
		po("PO4", "PT-NEW", "SUP-RELIABLE", 160, 8, 0, 2, 600),
		po("PO5", "PT-BEARING", "SUP-RELIABLE", 190, 7, 0, 50, 80),
		po("PO6", "PT-SEAL", "SUP-FLAKY", 15, 14, 4, 100, 15),
		po("PO7", "PT-SEAL", "SUP-FLAKY", 60, 20, 8, 100, 15),
		po("PO8", "PT-FILTER", "SUP-FLAKY", 100, 10, 0, 200, 8),
		po("PO9", "PT-FILTER", "SUP-FLAKY", 150, 25, 12, 200, 8),
		po("PO10", "PT-SEAL", "SUP-FLAKY", 200, 16, 5, 100, 15),
	}

	warehouses := []entities.Warehouse{
		{ID: "WH-MUMBAI", Name: "Mumbai DC", Lat: 19.0760, Lon: 72.8777, Capacity: 20, Type: "Regional"},
		{ID: "WH-NAGPUR", Name: "Nagpur Hub", Lat: 21.1458, Lon: 79.0882, Capacity: 15, Type: "Central"},
	}

	delivered := day(224)
	deliveries := []entities.DeliveryOrder{
		{ID: "DL1", PartID: "PT-BEARING", SourceWarehouseID: "WH-MUMBAI", DestLat: 18.5204, DestLon: 73.8567,
			OrderDate: day(220), PlannedDelivery: day(225), ActualDelivery: &delivered, Quantity: 10,
			Mode: "Road", Cost: decimal.NewFromInt(1460), DistanceKm: 120, Status: entities.DeliveryDelivered},
		{ID: "DL2", PartID: "PT-SEAL", SourceWarehouseID: "WH-NAGPUR", DestLat: 28.7041, DestLon: 77.1025,
			OrderDate: day(230), PlannedDelivery: day(235), ActualDelivery: nil, Quantity: 20,
			Mode: "Rail", Cost: decimal.NewFromInt(6200), DistanceKm: 1000, Status: entities.DeliveryInTransit},
		{ID: "DL3", PartID: "PT-FILTER", SourceWarehouseID: "WH-MUMBAI", DestLat: 19.9975, DestLon: 73.7898,
			OrderDate: day(232), PlannedDelivery: day(236), ActualDelivery: nil, Quantity: 40,
			Mode: "Road", Cost: decimal.NewFromInt(1900), DistanceKm: 170, Status: entities.DeliveryPlanned},
	}

	return dataset.Collections{
		Equipment:      equipment,
		DowntimeEvents: events,
		Parts:          parts,
		Transactions:   transactions,
		PurchaseOrders: orders,
		Suppliers:      suppliers,
		Warehouses:     warehouses,
		Deliveries:     deliveries,
	}
}
