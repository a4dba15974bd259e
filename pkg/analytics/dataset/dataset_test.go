package dataset

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

func day(d int) time.Time {
	return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)
}

func TestBuild_IndexesAndLastTransaction(t *testing.T) {
	ds, err := Build(Collections{
		Suppliers: []entities.Supplier{{ID: "SUP1", Rating: 4}},
		Parts:     []entities.SparePart{{ID: "P1", UnitCost: decimal.NewFromInt(10), SupplierID: "SUP1"}},
		Transactions: []entities.InventoryTransaction{
			{ID: "TX2", PartID: "P1", Date: day(2), Type: entities.Issue, Quantity: 30, StockAfter: 70},
			{ID: "TX1", PartID: "P1", Date: day(1), Type: entities.Receipt, Quantity: 100, StockAfter: 100},
			{ID: "TX3", PartID: "P1", Date: day(5), Type: entities.Issue, Quantity: 70, StockAfter: 0},
		},
	})
	if err != nil {
		t.Fatalf("Expected build to succeed: %v", err)
	}

	last, ok := ds.LastTransaction["P1"]
	if !ok {
		t.Fatal("Expected last transaction for P1")
	}
	if last.ID != "TX3" || last.StockAfter != 0 {
		t.Errorf("Expected TX3 with stock 0 as last transaction, got %s stock %d", last.ID, last.StockAfter)
	}

	txs := ds.TransactionsByPart["P1"]
	if len(txs) != 3 || txs[0].ID != "TX1" || txs[2].ID != "TX3" {
		t.Errorf("Expected transactions ordered by date, got %v", []string{txs[0].ID, txs[1].ID, txs[2].ID})
	}
}

func TestBuild_StockChainViolation(t *testing.T) {
	_, err := Build(Collections{
		Suppliers: []entities.Supplier{{ID: "SUP1"}},
		Parts:     []entities.SparePart{{ID: "P1", SupplierID: "SUP1"}},
		Transactions: []entities.InventoryTransaction{
			{ID: "TX1", PartID: "P1", Date: day(1), Type: entities.Receipt, Quantity: 100, StockAfter: 100},
			{ID: "TX2", PartID: "P1", Date: day(2), Type: entities.Issue, Quantity: 30, StockAfter: 75},
		},
	})
	var integrity *analytics.DataIntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("Expected DataIntegrityError, got %v", err)
	}
	if integrity.ID != "TX2" || integrity.Field != "stock_after" {
		t.Errorf("Expected violation on TX2 stock_after, got %s %s", integrity.ID, integrity.Field)
	}
}

func TestBuild_FirstTransactionFromZeroBaseline(t *testing.T) {
	_, err := Build(Collections{
		Suppliers: []entities.Supplier{{ID: "SUP1"}},
		Parts:     []entities.SparePart{{ID: "P1", SupplierID: "SUP1"}},
		Transactions: []entities.InventoryTransaction{
			{ID: "TX1", PartID: "P1", Date: day(1), Type: entities.Receipt, Quantity: 100, StockAfter: 90},
		},
	})
	if err == nil {
		t.Fatal("Expected error when first stock_after does not equal its own signed quantity")
	}
}

func TestBuild_DanglingReferences(t *testing.T) {
	testCases := []struct {
		name string
		c    Collections
	}{
		{
			"downtime event with unknown equipment",
			Collections{DowntimeEvents: []entities.DowntimeEvent{{ID: "DT1", EquipmentID: "GHOST"}}},
		},
		{
			"transaction with unknown part",
			Collections{Transactions: []entities.InventoryTransaction{{ID: "TX1", PartID: "GHOST", Quantity: 1, StockAfter: 1}}},
		},
		{
			"purchase order with unknown supplier",
			Collections{PurchaseOrders: []entities.PurchaseOrder{{ID: "PO1", SupplierID: "GHOST", QtyOrdered: 1}}},
		},
		{
			"delivery with unknown warehouse",
			Collections{Deliveries: []entities.DeliveryOrder{{ID: "D1", SourceWarehouseID: "GHOST"}}},
		},
		{
			"part with unknown supplier",
			Collections{Parts: []entities.SparePart{{ID: "P1", SupplierID: "GHOST"}}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Build(tc.c)
			var integrity *analytics.DataIntegrityError
			if !errors.As(err, &integrity) {
				t.Fatalf("Expected DataIntegrityError, got %v", err)
			}
		})
	}
}

func TestBuild_DuplicateIDs(t *testing.T) {
	_, err := Build(Collections{
		Equipment: []entities.Equipment{{ID: "EQ1", Type: "CNC"}, {ID: "EQ1", Type: "Lathe"}},
	})
	if err == nil {
		t.Fatal("Expected error for duplicate equipment id")
	}
}

func TestDeliveriesOn(t *testing.T) {
	ds, err := Build(Collections{
		Warehouses: []entities.Warehouse{{ID: "WH1", Capacity: 10}},
		Deliveries: []entities.DeliveryOrder{
			{ID: "D1", SourceWarehouseID: "WH1", OrderDate: day(3), Quantity: 1},
			{ID: "D2", SourceWarehouseID: "WH1", OrderDate: day(4), Quantity: 1},
			{ID: "D3", SourceWarehouseID: "WH1", OrderDate: day(3).Add(10 * time.Hour), Quantity: 1},
		},
	})
	if err != nil {
		t.Fatalf("Expected build to succeed: %v", err)
	}

	got := ds.DeliveriesOn("2025-01-03")
	if len(got) != 2 {
		t.Fatalf("Expected 2 deliveries on 2025-01-03, got %d", len(got))
	}
}
