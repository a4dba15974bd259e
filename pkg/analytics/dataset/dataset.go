// Package dataset validates and normalizes the raw operational tables into
// the indexed, immutable snapshot the computation components consume.
package dataset

import (
	"sort"

	"github.com/nmehta/opsengine/pkg/analytics"
	"github.com/nmehta/opsengine/pkg/domain/entities"
)

// Collections is the raw tabular input for one analysis run
type Collections struct {
	Equipment      []entities.Equipment
	DowntimeEvents []entities.DowntimeEvent
	Parts          []entities.SparePart
	Transactions   []entities.InventoryTransaction
	PurchaseOrders []entities.PurchaseOrder
	Suppliers      []entities.Supplier
	Warehouses     []entities.Warehouse
	Deliveries     []entities.DeliveryOrder
}

// Dataset is a validated snapshot with id indexes and a materialized
// last-transaction-per-part index. It is read-only after Build returns.
type Dataset struct {
	Collections

	EquipmentByID  map[entities.EquipmentID]int
	PartsByID      map[entities.PartID]int
	SuppliersByID  map[entities.SupplierID]int
	WarehousesByID map[entities.WarehouseID]int

	// TransactionsByPart holds each part's transactions ordered by date.
	TransactionsByPart map[entities.PartID][]entities.InventoryTransaction
	// LastTransaction resolves the latest transaction per part in one lookup.
	LastTransaction map[entities.PartID]entities.InventoryTransaction
}

// Build validates the collections and materializes the indexes. A dangling
// foreign reference or violated invariant returns a DataIntegrityError; the
// engine fails fast rather than silently dropping rows.
func Build(c Collections) (*Dataset, error) {
	ds := &Dataset{
		Collections:        c,
		EquipmentByID:      make(map[entities.EquipmentID]int, len(c.Equipment)),
		PartsByID:          make(map[entities.PartID]int, len(c.Parts)),
		SuppliersByID:      make(map[entities.SupplierID]int, len(c.Suppliers)),
		WarehousesByID:     make(map[entities.WarehouseID]int, len(c.Warehouses)),
		TransactionsByPart: make(map[entities.PartID][]entities.InventoryTransaction),
		LastTransaction:    make(map[entities.PartID]entities.InventoryTransaction),
	}

	for i, eq := range c.Equipment {
		if _, dup := ds.EquipmentByID[eq.ID]; dup {
			return nil, &analytics.DataIntegrityError{Entity: "equipment", ID: string(eq.ID), Field: "id", Reason: "duplicate equipment id"}
		}
		ds.EquipmentByID[eq.ID] = i
	}
	for i, s := range c.Suppliers {
		if _, dup := ds.SuppliersByID[s.ID]; dup {
			return nil, &analytics.DataIntegrityError{Entity: "supplier", ID: string(s.ID), Field: "id", Reason: "duplicate supplier id"}
		}
		ds.SuppliersByID[s.ID] = i
	}
	for i, p := range c.Parts {
		if _, dup := ds.PartsByID[p.ID]; dup {
			return nil, &analytics.DataIntegrityError{Entity: "spare_part", ID: string(p.ID), Field: "id", Reason: "duplicate part id"}
		}
		ds.PartsByID[p.ID] = i
		if _, ok := ds.SuppliersByID[p.SupplierID]; !ok && string(p.SupplierID) != "" {
			return nil, &analytics.DataIntegrityError{Entity: "spare_part", ID: string(p.ID), Field: "supplier_id", Reason: "references unknown supplier " + string(p.SupplierID)}
		}
	}
	for i, w := range c.Warehouses {
		if _, dup := ds.WarehousesByID[w.ID]; dup {
			return nil, &analytics.DataIntegrityError{Entity: "warehouse", ID: string(w.ID), Field: "id", Reason: "duplicate warehouse id"}
		}
		ds.WarehousesByID[w.ID] = i
	}

	for _, ev := range c.DowntimeEvents {
		if _, ok := ds.EquipmentByID[ev.EquipmentID]; !ok {
			return nil, &analytics.DataIntegrityError{Entity: "downtime_event", ID: ev.ID, Field: "equipment_id", Reason: "references unknown equipment " + string(ev.EquipmentID)}
		}
	}
	for _, po := range c.PurchaseOrders {
		if _, ok := ds.SuppliersByID[po.SupplierID]; !ok {
			return nil, &analytics.DataIntegrityError{Entity: "purchase_order", ID: string(po.ID), Field: "supplier_id", Reason: "references unknown supplier " + string(po.SupplierID)}
		}
		if po.QtyReceived > po.QtyOrdered && !po.OverReceipt {
			return nil, &analytics.DataIntegrityError{Entity: "purchase_order", ID: string(po.ID), Field: "quantity_received", Reason: "exceeds quantity ordered without over-receipt flag"}
		}
	}
	for _, d := range c.Deliveries {
		if _, ok := ds.WarehousesByID[d.SourceWarehouseID]; !ok {
			return nil, &analytics.DataIntegrityError{Entity: "delivery_order", ID: string(d.ID), Field: "source_warehouse_id", Reason: "references unknown warehouse " + string(d.SourceWarehouseID)}
		}
	}

	if err := ds.indexTransactions(); err != nil {
		return nil, err
	}

	return ds, nil
}

// indexTransactions groups transactions per part, orders them by date, and
// verifies the running stock_after chain from a zero baseline.
func (ds *Dataset) indexTransactions() error {
	for _, tx := range ds.Transactions {
		if _, ok := ds.PartsByID[tx.PartID]; !ok {
			return &analytics.DataIntegrityError{Entity: "inventory_transaction", ID: tx.ID, Field: "part_id", Reason: "references unknown part " + string(tx.PartID)}
		}
		ds.TransactionsByPart[tx.PartID] = append(ds.TransactionsByPart[tx.PartID], tx)
	}

	for partID, txs := range ds.TransactionsByPart {
		sort.SliceStable(txs, func(i, j int) bool {
			if txs[i].Date.Equal(txs[j].Date) {
				return txs[i].ID < txs[j].ID
			}
			return txs[i].Date.Before(txs[j].Date)
		})

		var running int64
		for _, tx := range txs {
			running += tx.SignedQuantity()
			if tx.StockAfter != running {
				return &analytics.DataIntegrityError{
					Entity: "inventory_transaction",
					ID:     tx.ID,
					Field:  "stock_after",
					Reason: "non-monotonic stock_after sequence for part " + string(partID),
				}
			}
		}
		ds.LastTransaction[partID] = txs[len(txs)-1]
	}

	return nil
}

// Equipment row lookup by id; second return is false for unknown ids.
func (ds *Dataset) EquipmentRow(id entities.EquipmentID) (entities.Equipment, bool) {
	i, ok := ds.EquipmentByID[id]
	if !ok {
		return entities.Equipment{}, false
	}
	return ds.Collections.Equipment[i], true
}

// Part row lookup by id
func (ds *Dataset) Part(id entities.PartID) (entities.SparePart, bool) {
	i, ok := ds.PartsByID[id]
	if !ok {
		return entities.SparePart{}, false
	}
	return ds.Parts[i], true
}

// Supplier row lookup by id
func (ds *Dataset) Supplier(id entities.SupplierID) (entities.Supplier, bool) {
	i, ok := ds.SuppliersByID[id]
	if !ok {
		return entities.Supplier{}, false
	}
	return ds.Suppliers[i], true
}

// Warehouse row lookup by id
func (ds *Dataset) Warehouse(id entities.WarehouseID) (entities.Warehouse, bool) {
	i, ok := ds.WarehousesByID[id]
	if !ok {
		return entities.Warehouse{}, false
	}
	return ds.Warehouses[i], true
}

// DeliveriesOn returns the deliveries whose order date falls on the given
// calendar day (UTC), the unit of work for one route optimization.
func (ds *Dataset) DeliveriesOn(day string) []entities.DeliveryOrder {
	var out []entities.DeliveryOrder
	for _, d := range ds.Deliveries {
		if d.OrderDate.UTC().Format("2006-01-02") == day {
			out = append(out, d)
		}
	}
	return out
}
