package memory

import (
	"fmt"

	"github.com/nmehta/opsengine/pkg/domain/entities"
	"github.com/nmehta/opsengine/pkg/domain/repositories"
)

// WarehouseRepository provides in-memory warehouse storage
type WarehouseRepository struct {
	warehouses    []entities.Warehouse
	warehousesMap map[entities.WarehouseID]int
}

// NewWarehouseRepository creates a new in-memory warehouse repository
func NewWarehouseRepository(expected int) *WarehouseRepository {
	return &WarehouseRepository{
		warehouses:    make([]entities.Warehouse, 0, expected),
		warehousesMap: make(map[entities.WarehouseID]int, expected),
	}
}

// Verify interface compliance
var _ repositories.WarehouseRepository = (*WarehouseRepository)(nil)

// LoadWarehouses loads warehouses into the repository
func (r *WarehouseRepository) LoadWarehouses(warehouses []*entities.Warehouse) error {
	for _, w := range warehouses {
		if _, exists := r.warehousesMap[w.ID]; exists {
			return fmt.Errorf("duplicate warehouse id: %s", w.ID)
		}
		r.warehousesMap[w.ID] = len(r.warehouses)
		r.warehouses = append(r.warehouses, *w)
	}
	return nil
}

// GetWarehouse returns warehouse master data by id
func (r *WarehouseRepository) GetWarehouse(id entities.WarehouseID) (*entities.Warehouse, error) {
	index, exists := r.warehousesMap[id]
	if !exists {
		return nil, fmt.Errorf("warehouse not found: %s", id)
	}
	return &r.warehouses[index], nil
}

// GetAllWarehouses returns all warehouses
func (r *WarehouseRepository) GetAllWarehouses() ([]*entities.Warehouse, error) {
	var out []*entities.Warehouse
	for i := range r.warehouses {
		out = append(out, &r.warehouses[i])
	}
	return out, nil
}

// DeliveryRepository provides in-memory delivery order storage
type DeliveryRepository struct {
	deliveries    []entities.DeliveryOrder
	deliveriesMap map[entities.DeliveryID]int
}

// NewDeliveryRepository creates a new in-memory delivery repository
func NewDeliveryRepository(expected int) *DeliveryRepository {
	return &DeliveryRepository{
		deliveries:    make([]entities.DeliveryOrder, 0, expected),
		deliveriesMap: make(map[entities.DeliveryID]int, expected),
	}
}

// Verify interface compliance
var _ repositories.DeliveryRepository = (*DeliveryRepository)(nil)

// LoadDeliveries loads delivery orders into the repository
func (r *DeliveryRepository) LoadDeliveries(deliveries []*entities.DeliveryOrder) error {
	for _, d := range deliveries {
		if _, exists := r.deliveriesMap[d.ID]; exists {
			return fmt.Errorf("duplicate delivery id: %s", d.ID)
		}
		r.deliveriesMap[d.ID] = len(r.deliveries)
		r.deliveries = append(r.deliveries, *d)
	}
	return nil
}

// GetDelivery returns a delivery order by id
func (r *DeliveryRepository) GetDelivery(id entities.DeliveryID) (*entities.DeliveryOrder, error) {
	index, exists := r.deliveriesMap[id]
	if !exists {
		return nil, fmt.Errorf("delivery not found: %s", id)
	}
	return &r.deliveries[index], nil
}

// GetAllDeliveries returns all delivery orders
func (r *DeliveryRepository) GetAllDeliveries() ([]*entities.DeliveryOrder, error) {
	var out []*entities.DeliveryOrder
	for i := range r.deliveries {
		out = append(out, &r.deliveries[i])
	}
	return out, nil
}
