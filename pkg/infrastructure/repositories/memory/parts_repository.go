package memory

import (
	"fmt"
	"sort"

	"github.com/nmehta/opsengine/pkg/domain/entities"
	"github.com/nmehta/opsengine/pkg/domain/repositories"
)

// PartRepository provides in-memory spare part storage
type PartRepository struct {
	parts    []entities.SparePart
	partsMap map[entities.PartID]int
}

// NewPartRepository creates a new in-memory part repository
func NewPartRepository(expected int) *PartRepository {
	return &PartRepository{
		parts:    make([]entities.SparePart, 0, expected),
		partsMap: make(map[entities.PartID]int, expected),
	}
}

// Verify interface compliance
var _ repositories.PartRepository = (*PartRepository)(nil)

// LoadParts loads parts into the repository
func (r *PartRepository) LoadParts(parts []*entities.SparePart) error {
	for _, p := range parts {
		if _, exists := r.partsMap[p.ID]; exists {
			return fmt.Errorf("duplicate part id: %s", p.ID)
		}
		r.partsMap[p.ID] = len(r.parts)
		r.parts = append(r.parts, *p)
	}
	return nil
}

// GetPart returns part master data by id
func (r *PartRepository) GetPart(id entities.PartID) (*entities.SparePart, error) {
	index, exists := r.partsMap[id]
	if !exists {
		return nil, fmt.Errorf("part not found: %s", id)
	}
	return &r.parts[index], nil
}

// GetAllParts returns all parts
func (r *PartRepository) GetAllParts() ([]*entities.SparePart, error) {
	var out []*entities.SparePart
	for i := range r.parts {
		out = append(out, &r.parts[i])
	}
	return out, nil
}

// TransactionRepository provides in-memory transaction storage.
// Per-part transactions are kept in date order.
type TransactionRepository struct {
	transactions []entities.InventoryTransaction
	byPart       map[entities.PartID][]int
}

// NewTransactionRepository creates a new in-memory transaction repository
func NewTransactionRepository(expected int) *TransactionRepository {
	return &TransactionRepository{
		transactions: make([]entities.InventoryTransaction, 0, expected),
		byPart:       make(map[entities.PartID][]int),
	}
}

// Verify interface compliance
var _ repositories.TransactionRepository = (*TransactionRepository)(nil)

// LoadTransactions loads transactions into the repository
func (r *TransactionRepository) LoadTransactions(transactions []*entities.InventoryTransaction) error {
	for _, tx := range transactions {
		r.byPart[tx.PartID] = append(r.byPart[tx.PartID], len(r.transactions))
		r.transactions = append(r.transactions, *tx)
	}
	for _, indices := range r.byPart {
		sort.SliceStable(indices, func(i, j int) bool {
			return r.transactions[indices[i]].Date.Before(r.transactions[indices[j]].Date)
		})
	}
	return nil
}

// GetTransactionsForPart returns a part's transactions in date order
func (r *TransactionRepository) GetTransactionsForPart(id entities.PartID) ([]*entities.InventoryTransaction, error) {
	var out []*entities.InventoryTransaction
	for _, idx := range r.byPart[id] {
		out = append(out, &r.transactions[idx])
	}
	return out, nil
}

// GetAllTransactions returns all transactions
func (r *TransactionRepository) GetAllTransactions() ([]*entities.InventoryTransaction, error) {
	var out []*entities.InventoryTransaction
	for i := range r.transactions {
		out = append(out, &r.transactions[i])
	}
	return out, nil
}
