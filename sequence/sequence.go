// Package sequence allocates the human-readable, date-prefixed sequential
// identifiers used on Radix documents: bill numbers, invoice numbers,
// payment IDs, and customer IDs.
//
// Formats are fixed for compatibility with previously issued documents:
//
//	CUST00001          customer (count-scoped, 5-digit suffix)
//	BILL20250001       bill (year-scoped, 4-digit suffix)
//	INV/2025/0001      invoice (year-scoped, 4-digit suffix)
//	PAY2508310001      payment (day-scoped, 4-digit suffix)
//
// Allocation reads the lexicographically greatest issued identifier sharing
// the prefix and increments its numeric suffix. The allocator serializes
// allocations per prefix in-process; the storage layer's unique constraints
// are the backstop for allocations racing across processes, and callers are
// expected to retry creation on a duplicate.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// ErrExhausted is returned when a prefix window has no identifiers left.
// An implementation must fail rather than silently wrap past the suffix width.
var ErrExhausted = errors.New("sequence: suffix range exhausted for prefix")

// Kind selects the identifier scheme to allocate.
type Kind string

// Identifier kinds.
const (
	KindCustomer Kind = "customer"
	KindBill     Kind = "bill"
	KindInvoice  Kind = "invoice"
	KindPayment  Kind = "payment"
)

// suffix widths per kind
const (
	customerWidth = 5
	defaultWidth  = 4
)

// Source supplies the persisted state the allocator increments over.
// store.Store satisfies this interface.
type Source interface {
	// MaxIdentifier returns the lexicographically greatest issued identifier
	// of the given kind that shares prefix, or "" when none exists.
	MaxIdentifier(ctx context.Context, kind Kind, prefix string) (string, error)

	// CountCustomers returns the total number of customers ever created.
	// Customer IDs are count-based rather than date-based.
	CountCustomers(ctx context.Context) (int64, error)
}

// Prefix builds the identifier prefix for a kind on a given date.
// Bill and invoice numbers key by calendar year; payment IDs key by day.
func Prefix(kind Kind, date time.Time) string {
	switch kind {
	case KindBill:
		return "BILL" + date.Format("2006")
	case KindInvoice:
		return "INV/" + date.Format("2006") + "/"
	case KindPayment:
		return "PAY" + date.Format("060102")
	case KindCustomer:
		return "CUST"
	default:
		return ""
	}
}

// Width returns the fixed numeric suffix width for a kind.
func Width(kind Kind) int {
	if kind == KindCustomer {
		return customerWidth
	}
	return defaultWidth
}

// Allocator issues sequential identifiers over a Source.
// Safe for concurrent use; allocations for the same prefix are serialized.
type Allocator struct {
	source Source

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an Allocator backed by the given source.
func New(source Source) *Allocator {
	return &Allocator{
		source: source,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Allocate returns the next identifier of the given kind for the given date.
// The returned identifier is not reserved in storage: the caller must create
// the record under a unique constraint and retry on conflict.
func (a *Allocator) Allocate(ctx context.Context, kind Kind, date time.Time) (string, error) {
	prefix := Prefix(kind, date)
	if prefix == "" {
		return "", fmt.Errorf("sequence: unknown kind %q", kind)
	}

	lock := a.prefixLock(prefix)
	lock.Lock()
	defer lock.Unlock()

	if kind == KindCustomer {
		return a.allocateCounted(ctx, prefix)
	}
	return a.allocateDated(ctx, kind, prefix)
}

// allocateDated increments the greatest issued suffix under prefix.
func (a *Allocator) allocateDated(ctx context.Context, kind Kind, prefix string) (string, error) {
	last, err := a.source.MaxIdentifier(ctx, kind, prefix)
	if err != nil {
		return "", fmt.Errorf("sequence: read max identifier for %q: %w", prefix, err)
	}

	next := int64(1)
	if last != "" {
		suffix, err := ParseSuffix(last, Width(kind))
		if err != nil {
			return "", fmt.Errorf("sequence: malformed identifier %q: %w", last, err)
		}
		next = suffix + 1
	}

	return Format(prefix, next, Width(kind))
}

// allocateCounted derives the next customer identifier from the total count.
func (a *Allocator) allocateCounted(ctx context.Context, prefix string) (string, error) {
	count, err := a.source.CountCustomers(ctx)
	if err != nil {
		return "", fmt.Errorf("sequence: count customers: %w", err)
	}

	return Format(prefix, count+1, customerWidth)
}

// Format composes prefix + zero-padded suffix, guarding the suffix width.
func Format(prefix string, n int64, width int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("sequence: non-positive suffix %d", n)
	}

	limit := int64(1)
	for i := 0; i < width; i++ {
		limit *= 10
	}
	if n >= limit {
		return "", fmt.Errorf("%w: %s", ErrExhausted, prefix)
	}

	return fmt.Sprintf("%s%0*d", prefix, width, n), nil
}

// ParseSuffix extracts the trailing fixed-width numeric suffix of an
// identifier.
func ParseSuffix(identifier string, width int) (int64, error) {
	if len(identifier) < width {
		return 0, fmt.Errorf("identifier shorter than suffix width %d", width)
	}

	suffix := identifier[len(identifier)-width:]
	n, err := strconv.ParseInt(suffix, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric suffix %q", suffix)
	}

	return n, nil
}

// prefixLock returns the mutex serializing allocations for a prefix.
func (a *Allocator) prefixLock(prefix string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()

	lock, ok := a.locks[prefix]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[prefix] = lock
	}
	return lock
}
