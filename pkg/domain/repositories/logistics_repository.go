package repositories

import "github.com/nmehta/opsengine/pkg/domain/entities"

// WarehouseRepository provides access to warehouse master data
type WarehouseRepository interface {
	GetWarehouse(id entities.WarehouseID) (*entities.Warehouse, error)
	GetAllWarehouses() ([]*entities.Warehouse, error)
	LoadWarehouses(warehouses []*entities.Warehouse) error
}

// DeliveryRepository provides access to delivery order history
type DeliveryRepository interface {
	GetDelivery(id entities.DeliveryID) (*entities.DeliveryOrder, error)
	GetAllDeliveries() ([]*entities.DeliveryOrder, error)
	LoadDeliveries(deliveries []*entities.DeliveryOrder) error
}
