package memory

import (
	"fmt"

	"github.com/nmehta/opsengine/pkg/domain/entities"
	"github.com/nmehta/opsengine/pkg/domain/repositories"
)

// SupplierRepository provides in-memory supplier storage
type SupplierRepository struct {
	suppliers    []entities.Supplier
	suppliersMap map[entities.SupplierID]int
}

// NewSupplierRepository creates a new in-memory supplier repository
func NewSupplierRepository(expected int) *SupplierRepository {
	return &SupplierRepository{
		suppliers:    make([]entities.Supplier, 0, expected),
		suppliersMap: make(map[entities.SupplierID]int, expected),
	}
}

// Verify interface compliance
var _ repositories.SupplierRepository = (*SupplierRepository)(nil)

// LoadSuppliers loads suppliers into the repository
func (r *SupplierRepository) LoadSuppliers(suppliers []*entities.Supplier) error {
	for _, s := range suppliers {
		if _, exists := r.suppliersMap[s.ID]; exists {
			return fmt.Errorf("duplicate supplier id: %s", s.ID)
		}
		r.suppliersMap[s.ID] = len(r.suppliers)
		r.suppliers = append(r.suppliers, *s)
	}
	return nil
}

// GetSupplier returns supplier master data by id
func (r *SupplierRepository) GetSupplier(id entities.SupplierID) (*entities.Supplier, error) {
	index, exists := r.suppliersMap[id]
	if !exists {
		return nil, fmt.Errorf("supplier not found: %s", id)
	}
	return &r.suppliers[index], nil
}

// GetAllSuppliers returns all suppliers
func (r *SupplierRepository) GetAllSuppliers() ([]*entities.Supplier, error) {
	var out []*entities.Supplier
	for i := range r.suppliers {
		out = append(out, &r.suppliers[i])
	}
	return out, nil
}

// PurchaseOrderRepository provides in-memory purchase order storage
type PurchaseOrderRepository struct {
	orders     []entities.PurchaseOrder
	bySupplier map[entities.SupplierID][]int
}

// NewPurchaseOrderRepository creates a new in-memory purchase order repository
func NewPurchaseOrderRepository(expected int) *PurchaseOrderRepository {
	return &PurchaseOrderRepository{
		orders:     make([]entities.PurchaseOrder, 0, expected),
		bySupplier: make(map[entities.SupplierID][]int),
	}
}

// Verify interface compliance
var _ repositories.PurchaseOrderRepository = (*PurchaseOrderRepository)(nil)

// LoadOrders loads purchase orders into the repository
func (r *PurchaseOrderRepository) LoadOrders(orders []*entities.PurchaseOrder) error {
	for _, o := range orders {
		r.bySupplier[o.SupplierID] = append(r.bySupplier[o.SupplierID], len(r.orders))
		r.orders = append(r.orders, *o)
	}
	return nil
}

// GetOrdersForSupplier returns a supplier's purchase orders
func (r *PurchaseOrderRepository) GetOrdersForSupplier(id entities.SupplierID) ([]*entities.PurchaseOrder, error) {
	var out []*entities.PurchaseOrder
	for _, idx := range r.bySupplier[id] {
		out = append(out, &r.orders[idx])
	}
	return out, nil
}

// GetAllOrders returns all purchase orders
func (r *PurchaseOrderRepository) GetAllOrders() ([]*entities.PurchaseOrder, error) {
	var out []*entities.PurchaseOrder
	for i := range r.orders {
		out = append(out, &r.orders[i])
	}
	return out, nil
}
