package payment

import (
	"context"
	"time"

	"github.com/recordrx/radix/id"
)

// Store persists payments.
type Store interface {
	Create(ctx context.Context, p *Payment) error
	Get(ctx context.Context, paymentID id.PaymentID) (*Payment, error)
	List(ctx context.Context, opts ListOpts) ([]*Payment, error)
	Update(ctx context.Context, p *Payment) error
	ListByBill(ctx context.Context, billID id.BillID) ([]*Payment, error)
}

// ListOpts filters List results. Zero values mean "no filter".
type ListOpts struct {
	Status      Status
	ReconStatus ReconStatus
	CustomerID  id.CustomerID
	Start       *time.Time
	End         *time.Time
	Limit       int
	Offset      int
}
