package sequence_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/recordrx/radix/sequence"
)

// fakeSource mimics the storage layer: it tracks issued identifiers and
// enforces a uniqueness constraint on claim, the way a store's unique
// index would.
type fakeSource struct {
	mu            sync.Mutex
	issued        map[string]bool
	customerCount int64
}

func newFakeSource() *fakeSource {
	return &fakeSource{issued: make(map[string]bool)}
}

func (s *fakeSource) MaxIdentifier(_ context.Context, _ sequence.Kind, prefix string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	maxID := ""
	for id := range s.issued {
		if len(id) >= len(prefix) && id[:len(prefix)] == prefix && id > maxID {
			maxID = id
		}
	}
	return maxID, nil
}

func (s *fakeSource) CountCustomers(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customerCount, nil
}

var errDuplicate = errors.New("duplicate identifier")

// claim registers an identifier, failing on duplicates.
func (s *fakeSource) claim(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.issued[id] {
		return errDuplicate
	}
	s.issued[id] = true
	return nil
}

func TestPrefix(t *testing.T) {
	date := time.Date(2025, 8, 31, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		kind sequence.Kind
		want string
	}{
		{sequence.KindBill, "BILL2025"},
		{sequence.KindInvoice, "INV/2025/"},
		{sequence.KindPayment, "PAY250831"},
		{sequence.KindCustomer, "CUST"},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := sequence.Prefix(tt.kind, date); got != tt.want {
				t.Errorf("Prefix(%s) = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestAllocateSequential(t *testing.T) {
	src := newFakeSource()
	alloc := sequence.New(src)
	ctx := context.Background()
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	want := []string{"BILL20250001", "BILL20250002", "BILL20250003"}
	for _, expected := range want {
		got, err := alloc.Allocate(ctx, sequence.KindBill, date)
		if err != nil {
			t.Fatalf("Allocate failed: %v", err)
		}
		if got != expected {
			t.Errorf("got %q, want %q", got, expected)
		}
		if err := src.claim(got); err != nil {
			t.Fatalf("claim failed: %v", err)
		}
	}
}

func TestAllocateInvoiceFormat(t *testing.T) {
	src := newFakeSource()
	alloc := sequence.New(src)
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	got, err := alloc.Allocate(context.Background(), sequence.KindInvoice, date)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if got != "INV/2025/0001" {
		t.Errorf("got %q, want INV/2025/0001", got)
	}
}

func TestAllocatePaymentResumesFromMax(t *testing.T) {
	src := newFakeSource()
	if err := src.claim("PAY2503150041"); err != nil {
		t.Fatal(err)
	}

	alloc := sequence.New(src)
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	got, err := alloc.Allocate(context.Background(), sequence.KindPayment, date)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if got != "PAY2503150042" {
		t.Errorf("got %q, want PAY2503150042", got)
	}
}

func TestAllocateCustomerCountBased(t *testing.T) {
	src := newFakeSource()
	src.customerCount = 7

	alloc := sequence.New(src)

	got, err := alloc.Allocate(context.Background(), sequence.KindCustomer, time.Now())
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if got != "CUST00008" {
		t.Errorf("got %q, want CUST00008", got)
	}
}

func TestAllocateExhausted(t *testing.T) {
	src := newFakeSource()
	if err := src.claim("BILL20259999"); err != nil {
		t.Fatal(err)
	}

	alloc := sequence.New(src)
	date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := alloc.Allocate(context.Background(), sequence.KindBill, date)
	if !errors.Is(err, sequence.ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestParseSuffix(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		width   int
		want    int64
		wantErr bool
	}{
		{"bill", "BILL20250042", 4, 42, false},
		{"invoice with slashes", "INV/2025/0123", 4, 123, false},
		{"customer", "CUST00008", 5, 8, false},
		{"too short", "X1", 4, 0, true},
		{"non-numeric", "BILL2025ABCD", 4, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sequence.ParseSuffix(tt.input, tt.width)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSuffix(%q) failed: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

// TestConcurrentAllocationUniqueness drives the documented allocation
// protocol (allocate, claim under a uniqueness constraint, retry on
// conflict) from many goroutines and verifies no identifier is ever
// issued twice.
func TestConcurrentAllocationUniqueness(t *testing.T) {
	const workers = 100

	src := newFakeSource()
	alloc := sequence.New(src)
	ctx := context.Background()
	date := time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed = make([]string, 0, workers)
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				id, err := alloc.Allocate(ctx, sequence.KindPayment, date)
				if err != nil {
					t.Errorf("Allocate failed: %v", err)
					return
				}
				if err := src.claim(id); err != nil {
					continue // lost the race, re-allocate
				}
				mu.Lock()
				claimed = append(claimed, id)
				mu.Unlock()
				return
			}
		}()
	}
	wg.Wait()

	seen := make(map[string]bool, len(claimed))
	for _, id := range claimed {
		if seen[id] {
			t.Errorf("identifier issued twice: %s", id)
		}
		seen[id] = true
	}
	if len(claimed) != workers {
		t.Errorf("claimed %d identifiers, want %d", len(claimed), workers)
	}
}
