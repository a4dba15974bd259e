package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PartID represents a unique spare part identifier
type PartID string

// SupplierID represents a unique supplier identifier
type SupplierID string

// SparePart represents a spare part master record
type SparePart struct {
	ID           PartID
	Name         string
	Category     string
	UnitCost     decimal.Decimal
	LeadTimeDays int
	ReorderPoint int64
	ReorderQty   int64
	SupplierID   SupplierID
}

// NewSparePart creates a validated SparePart
func NewSparePart(id PartID, name, category string, unitCost decimal.Decimal, leadTimeDays int, reorderPoint, reorderQty int64, supplierID SupplierID) (*SparePart, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if unitCost.IsNegative() {
		return nil, fmt.Errorf("unit cost cannot be negative, got %s", unitCost)
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("lead time days cannot be negative, got %d", leadTimeDays)
	}
	if reorderPoint < 0 {
		return nil, fmt.Errorf("reorder point cannot be negative, got %d", reorderPoint)
	}

	return &SparePart{
		ID:           id,
		Name:         name,
		Category:     category,
		UnitCost:     unitCost,
		LeadTimeDays: leadTimeDays,
		ReorderPoint: reorderPoint,
		ReorderQty:   reorderQty,
		SupplierID:   supplierID,
	}, nil
}

// TransactionType represents the type of an inventory transaction
type TransactionType int

const (
	Receipt TransactionType = iota
	Issue
	Adjustment
)

// String method for TransactionType enum
func (t TransactionType) String() string {
	switch t {
	case Receipt:
		return "Receipt"
	case Issue:
		return "Issue"
	case Adjustment:
		return "Adjustment"
	default:
		return "Unknown"
	}
}

// ParseTransactionType parses a transaction type name
func ParseTransactionType(s string) (TransactionType, error) {
	switch s {
	case "Receipt":
		return Receipt, nil
	case "Issue":
		return Issue, nil
	case "Adjustment":
		return Adjustment, nil
	default:
		return 0, fmt.Errorf("unknown transaction type: %s", s)
	}
}

// InventoryTransaction represents a single stock movement for a part.
// Quantity is stored as a magnitude; the sign is derived from the type.
type InventoryTransaction struct {
	ID         string
	PartID     PartID
	Date       time.Time
	Type       TransactionType
	Quantity   int64
	StockAfter int64
}

// NewInventoryTransaction creates a validated InventoryTransaction
func NewInventoryTransaction(id string, partID PartID, date time.Time, txType TransactionType, quantity, stockAfter int64) (*InventoryTransaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction id cannot be empty")
	}
	if string(partID) == "" {
		return nil, fmt.Errorf("part id cannot be empty")
	}
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %d", quantity)
	}
	if stockAfter < 0 {
		return nil, fmt.Errorf("stock after transaction cannot be negative, got %d", stockAfter)
	}

	return &InventoryTransaction{
		ID:         id,
		PartID:     partID,
		Date:       date,
		Type:       txType,
		Quantity:   quantity,
		StockAfter: stockAfter,
	}, nil
}

// SignedQuantity returns the quantity with its sign applied by type:
// issues are negative, receipts and adjustments positive.
func (t *InventoryTransaction) SignedQuantity() int64 {
	if t.Type == Issue {
		return -t.Quantity
	}
	return t.Quantity
}
