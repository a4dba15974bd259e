package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseID represents a unique warehouse identifier
type WarehouseID string

// DeliveryID represents a unique delivery order identifier
type DeliveryID string

// TransportMode represents a delivery transport mode (e.g. Road, Rail, Air)
type TransportMode string

// DeliveryStatus represents the state of a delivery order
type DeliveryStatus int

const (
	DeliveryPlanned DeliveryStatus = iota
	DeliveryInTransit
	DeliveryDelivered
	DeliveryCancelled
)

// String method for DeliveryStatus enum
func (s DeliveryStatus) String() string {
	switch s {
	case DeliveryPlanned:
		return "Planned"
	case DeliveryInTransit:
		return "InTransit"
	case DeliveryDelivered:
		return "Delivered"
	case DeliveryCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Warehouse represents a source warehouse with daily dispatch capacity
type Warehouse struct {
	ID       WarehouseID
	Name     string
	Lat      float64
	Lon      float64
	Capacity int
	Type     string
}

// NewWarehouse creates a validated Warehouse
func NewWarehouse(id WarehouseID, name string, lat, lon float64, capacity int, warehouseType string) (*Warehouse, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("warehouse id cannot be empty")
	}
	if lat < -90 || lat > 90 {
		return nil, fmt.Errorf("latitude must be between -90 and 90, got %g", lat)
	}
	if lon < -180 || lon > 180 {
		return nil, fmt.Errorf("longitude must be between -180 and 180, got %g", lon)
	}
	if capacity <= 0 {
		return nil, fmt.Errorf("capacity must be positive, got %d", capacity)
	}

	return &Warehouse{
		ID:       id,
		Name:     name,
		Lat:      lat,
		Lon:      lon,
		Capacity: capacity,
		Type:     warehouseType,
	}, nil
}

// DeliveryOrder represents an outbound spare-part delivery.
// ActualDelivery is nil until the delivery completes.
type DeliveryOrder struct {
	ID                DeliveryID
	PartID            PartID
	SourceWarehouseID WarehouseID
	DestLat           float64
	DestLon           float64
	OrderDate         time.Time
	PlannedDelivery   time.Time
	ActualDelivery    *time.Time
	Quantity          int64
	Mode              TransportMode
	Cost              decimal.Decimal
	DistanceKm        float64
	Status            DeliveryStatus
}

// NewDeliveryOrder creates a validated DeliveryOrder
func NewDeliveryOrder(id DeliveryID, partID PartID, source WarehouseID, destLat, destLon float64, orderDate, plannedDelivery time.Time, actualDelivery *time.Time, quantity int64, mode TransportMode, cost decimal.Decimal, distanceKm float64, status DeliveryStatus) (*DeliveryOrder, error) {
	if string(id) == "" {
		return nil, fmt.Errorf("delivery id cannot be empty")
	}
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}
	if plannedDelivery.Before(orderDate) {
		return nil, fmt.Errorf("planned delivery %v cannot precede order date %v", plannedDelivery, orderDate)
	}
	if distanceKm < 0 {
		return nil, fmt.Errorf("distance cannot be negative, got %g", distanceKm)
	}

	return &DeliveryOrder{
		ID:                id,
		PartID:            partID,
		SourceWarehouseID: source,
		DestLat:           destLat,
		DestLon:           destLon,
		OrderDate:         orderDate,
		PlannedDelivery:   plannedDelivery,
		ActualDelivery:    actualDelivery,
		Quantity:          quantity,
		Mode:              mode,
		Cost:              cost,
		DistanceKm:        distanceKm,
		Status:            status,
	}, nil
}

// OnTime reports whether the delivery arrived on or before the planned date.
// Always false for undelivered orders.
func (d *DeliveryOrder) OnTime() bool {
	return d.ActualDelivery != nil && !d.ActualDelivery.After(d.PlannedDelivery)
}
