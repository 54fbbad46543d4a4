package workorder

import "context"

// Store is the persistence contract for work orders. Repo implements it on
// GORM; MemStore implements it in process for the "memory" driver and for
// tests. All results come back newest-created first, ties broken by id
// descending.
type Store interface {
	Create(ctx context.Context, wo *WorkOrder) error
	GetByID(ctx context.Context, id int64) (*WorkOrder, error)
	List(ctx context.Context, query string) ([]WorkOrder, error)
	Update(ctx context.Context, wo *WorkOrder) error
	Delete(ctx context.Context, id int64) (bool, error)
}
