package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderID represents a unique purchase order identifier
type OrderID string

// PurchaseOrder represents a purchase order placed with a supplier.
// ActualDelivery is nil until the order has been received.
type PurchaseOrder struct {
	ID               OrderID
	PartID           PartID
	SupplierID       SupplierID
	OrderDate        time.Time
	ExpectedDelivery time.Time
	ActualDelivery   *time.Time
	QtyOrdered       int64
	QtyReceived      int64
	UnitPrice        decimal.Decimal
	OverReceipt      bool
}

// NewPurchaseOrder creates a validated PurchaseOrder
func NewPurchaseOrder(id OrderID, partID PartID, supplierID SupplierID, orderDate, expectedDelivery time.Time, actualDelivery *time.Time, qtyOrdered, qtyReceived int64, unitPrice decimal.Decimal) (*PurchaseOrder, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("purchase order id cannot be empty")
	}
	if string(supplierID) == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}
	if qtyOrdered <= 0 {
		return nil, fmt.Errorf("quantity ordered must be positive, got %d", qtyOrdered)
	}
	if unitPrice.IsNegative() {
		return nil, fmt.Errorf("unit price cannot be negative, got %s", unitPrice)
	}

	return &PurchaseOrder{
		ID:               id,
		PartID:           partID,
		SupplierID:       supplierID,
		OrderDate:        orderDate,
		ExpectedDelivery: expectedDelivery,
		ActualDelivery:   actualDelivery,
		QtyOrdered:       qtyOrdered,
		QtyReceived:      qtyReceived,
		UnitPrice:        unitPrice,
		OverReceipt:      qtyReceived > qtyOrdered,
	}, nil
}

// Delivered reports whether the order has been received
func (o *PurchaseOrder) Delivered() bool {
	return o.ActualDelivery != nil
}

// OnTime reports whether the order arrived on or before the expected date.
// Always false for undelivered orders.
func (o *PurchaseOrder) OnTime() bool {
	return o.ActualDelivery != nil && !o.ActualDelivery.After(o.ExpectedDelivery)
}

// TotalCost returns quantity ordered times unit price
func (o *PurchaseOrder) TotalCost() decimal.Decimal {
	return o.UnitPrice.Mul(decimal.NewFromInt(o.QtyOrdered))
}

// Supplier represents a supplier master record.
// Rating is a 0-5 prior where higher is better.
type Supplier struct {
	ID              SupplierID
	Name            string
	Location        string
	Rating          float64
	AverageLeadTime float64
}

// NewSupplier creates a validated Supplier
func NewSupplier(id SupplierID, name, location string, rating, averageLeadTime float64) (*Supplier, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("supplier id cannot be empty")
	}
	if rating < 0 || rating > 5 {
		return nil, fmt.Errorf("rating must be between 0 and 5, got %g", rating)
	}
	if averageLeadTime < 0 {
		return nil, fmt.Errorf("average lead time cannot be negative, got %g", averageLeadTime)
	}

	return &Supplier{
		ID:              id,
		Name:            name,
		Location:        location,
		Rating:          rating,
		AverageLeadTime: averageLeadTime,
	}, nil
}
