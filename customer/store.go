package customer

import (
	"context"

	"github.com/recordrx/radix/id"
)

// Store is the persistence interface for customers.
type Store interface {
	Create(ctx context.Context, c *Customer) error
	Get(ctx context.Context, custID id.CustomerID) (*Customer, error)
	GetByNumber(ctx context.Context, number string) (*Customer, error)
	List(ctx context.Context, opts ListOpts) ([]*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Count(ctx context.Context) (int64, error)
}

// ListOpts filters and pages customer listings.
type ListOpts struct {
	Status Status
	Search string // matches name, email, or customer number
	Limit  int
	Offset int
}
