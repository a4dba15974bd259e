package repositories

import "github.com/nmehta/opsengine/pkg/domain/entities"

// SupplierRepository provides access to supplier master data
type SupplierRepository interface {
	GetSupplier(id entities.SupplierID) (*entities.Supplier, error)
	GetAllSuppliers() ([]*entities.Supplier, error)
	LoadSuppliers(suppliers []*entities.Supplier) error
}

// PurchaseOrderRepository provides access to purchase order history
type PurchaseOrderRepository interface {
	GetOrdersForSupplier(id entities.SupplierID) ([]*entities.PurchaseOrder, error)
	GetAllOrders() ([]*entities.PurchaseOrder, error)
	LoadOrders(orders []*entities.PurchaseOrder) error
}
