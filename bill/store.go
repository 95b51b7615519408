package bill

import (
	"context"
	"time"

	"github.com/recordrx/radix/id"
)

// Store is the persistence interface for bills.
type Store interface {
	Create(ctx context.Context, b *Bill) error
	Get(ctx context.Context, billID id.BillID) (*Bill, error)
	List(ctx context.Context, opts ListOpts) ([]*Bill, error)
	Update(ctx context.Context, b *Bill) error
	ListByCustomer(ctx context.Context, custID id.CustomerID) ([]*Bill, error)
}

// ListOpts filters and pages bill listings.
type ListOpts struct {
	Status     Status
	CustomerID id.CustomerID
	Start      *time.Time // issue date lower bound
	End        *time.Time // issue date upper bound
	Limit      int
	Offset     int
}

// Rate returns a pointer to a tax rate, for building line items.
func Rate(percent float64) *float64 { return &percent }
