package repositories

import "github.com/nmehta/opsengine/pkg/domain/entities"

// PartRepository provides access to spare part master data
type PartRepository interface {
	GetPart(id entities.PartID) (*entities.SparePart, error)
	GetAllParts() ([]*entities.SparePart, error)
	LoadParts(parts []*entities.SparePart) error
}

// TransactionRepository provides access to inventory transaction history
type TransactionRepository interface {
	GetTransactionsForPart(id entities.PartID) ([]*entities.InventoryTransaction, error)
	GetAllTransactions() ([]*entities.InventoryTransaction, error)
	LoadTransactions(transactions []*entities.InventoryTransaction) error
}
