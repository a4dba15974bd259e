package memory

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nmehta/opsengine/pkg/domain/entities"
)

func TestEquipmentRepository(t *testing.T) {
	repo := NewEquipmentRepository(2)

	eq1, _ := entities.NewEquipment("EQ1", "Press 1", "Press", "Line A", time.Now(), entities.Operational)
	eq2, _ := entities.NewEquipment("EQ2", "Lathe 1", "Lathe", "Line B", time.Now(), entities.UnderMaintenance)
	if err := repo.LoadEquipment([]*entities.Equipment{eq1, eq2}); err != nil {
		t.Fatalf("LoadEquipment: %v", err)
	}

	got, err := repo.GetEquipment("EQ1")
	if err != nil {
		t.Fatalf("GetEquipment: %v", err)
	}
	if got.Name != "Press 1" {
		t.Errorf("name = %s, want Press 1", got.Name)
	}

	if _, err := repo.GetEquipment("MISSING"); err == nil {
		t.Error("expected an error for unknown equipment")
	}

	all, _ := repo.GetAllEquipment()
	if len(all) != 2 {
		t.Errorf("got %d equipment, want 2", len(all))
	}

	if err := repo.LoadEquipment([]*entities.Equipment{eq1}); err == nil {
		t.Error("expected an error for duplicate equipment id")
	}
}

func TestDowntimeRepositoryGroupsByEquipment(t *testing.T) {
	repo := NewDowntimeRepository(3)

	at := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	mk := func(id, equipmentID string, offset int) *entities.DowntimeEvent {
		e, err := entities.NewDowntimeEvent(id, entities.EquipmentID(equipmentID),
			at.AddDate(0, 0, offset), at.AddDate(0, 0, offset), at.AddDate(0, 0, offset).Add(2*time.Hour),
			"Mechanical", decimal.NewFromInt(500))
		if err != nil {
			t.Fatalf("NewDowntimeEvent(%s): %v", id, err)
		}
		return e
	}
	if err := repo.LoadEvents([]*entities.DowntimeEvent{mk("DT1", "EQ1", 0), mk("DT2", "EQ2", 1), mk("DT3", "EQ1", 2)}); err != nil {
		t.Fatalf("LoadEvents: %v", err)
	}

	forEQ1, _ := repo.GetEventsForEquipment("EQ1")
	if len(forEQ1) != 2 {
		t.Errorf("got %d events for EQ1, want 2", len(forEQ1))
	}
	all, _ := repo.GetAllEvents()
	if len(all) != 3 {
		t.Errorf("got %d events, want 3", len(all))
	}
}

func TestTransactionRepositoryOrdersByDate(t *testing.T) {
	repo := NewTransactionRepository(3)

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, offset int, stockAfter int64) *entities.InventoryTransaction {
		tx, err := entities.NewInventoryTransaction(id, "P1", at.AddDate(0, 0, offset), entities.Receipt, 10, stockAfter)
		if err != nil {
			t.Fatalf("NewInventoryTransaction(%s): %v", id, err)
		}
		return tx
	}
	// Loaded out of date order on purpose.
	if err := repo.LoadTransactions([]*entities.InventoryTransaction{mk("T3", 5, 30), mk("T1", 1, 10), mk("T2", 3, 20)}); err != nil {
		t.Fatalf("LoadTransactions: %v", err)
	}

	txs, err := repo.GetTransactionsForPart("P1")
	if err != nil {
		t.Fatalf("GetTransactionsForPart: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	for i := 1; i < len(txs); i++ {
		if txs[i].Date.Before(txs[i-1].Date) {
			t.Errorf("transactions out of date order: %s before %s", txs[i].ID, txs[i-1].ID)
		}
	}
}

func TestPurchaseOrderRepository(t *testing.T) {
	repo := NewPurchaseOrderRepository(2)

	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	o1, _ := entities.NewPurchaseOrder("PO1", "P1", "SUP1", at, at.AddDate(0, 0, 7), nil, 10, 0, decimal.NewFromInt(50))
	o2, _ := entities.NewPurchaseOrder("PO2", "P1", "SUP2", at, at.AddDate(0, 0, 7), nil, 5, 0, decimal.NewFromInt(80))
	if err := repo.LoadOrders([]*entities.PurchaseOrder{o1, o2}); err != nil {
		t.Fatalf("LoadOrders: %v", err)
	}

	forSup1, _ := repo.GetOrdersForSupplier("SUP1")
	if len(forSup1) != 1 || forSup1[0].ID != "PO1" {
		t.Errorf("orders for SUP1 = %v, want [PO1]", forSup1)
	}
	all, _ := repo.GetAllOrders()
	if len(all) != 2 {
		t.Errorf("got %d orders, want 2", len(all))
	}
}

func TestWarehouseAndDeliveryRepositories(t *testing.T) {
	warehouses := NewWarehouseRepository(1)
	wh, _ := entities.NewWarehouse("WH1", "Mumbai DC", 19.0760, 72.8777, 50, "Regional")
	if err := warehouses.LoadWarehouses([]*entities.Warehouse{wh}); err != nil {
		t.Fatalf("LoadWarehouses: %v", err)
	}
	if _, err := warehouses.GetWarehouse("WH1"); err != nil {
		t.Errorf("GetWarehouse: %v", err)
	}
	if _, err := warehouses.GetWarehouse("MISSING"); err == nil {
		t.Error("expected an error for unknown warehouse")
	}

	deliveries := NewDeliveryRepository(1)
	at := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	d, _ := entities.NewDeliveryOrder("D1", "P1", "WH1", 18.5, 73.8, at, at.AddDate(0, 0, 3), nil, 5, "Road", decimal.NewFromInt(1000), 120, entities.DeliveryPlanned)
	if err := deliveries.LoadDeliveries([]*entities.DeliveryOrder{d}); err != nil {
		t.Fatalf("LoadDeliveries: %v", err)
	}
	if err := deliveries.LoadDeliveries([]*entities.DeliveryOrder{d}); err == nil {
		t.Error("expected an error for duplicate delivery id")
	}
	got, err := deliveries.GetDelivery("D1")
	if err != nil {
		t.Fatalf("GetDelivery: %v", err)
	}
	if got.Mode != "Road" {
		t.Errorf("mode = %s, want Road", got.Mode)
	}
}
