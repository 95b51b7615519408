// Package mongo implements store.Store on MongoDB via the official driver.
// Business numbers carry unique indexes so concurrent allocators collide
// instead of silently duplicating.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/recordrx/radix"
	"github.com/recordrx/radix/bill"
	"github.com/recordrx/radix/customer"
	"github.com/recordrx/radix/id"
	"github.com/recordrx/radix/payment"
	"github.com/recordrx/radix/sequence"
	"github.com/recordrx/radix/store"
	"github.com/recordrx/radix/types"
)

// Collection name constants.
const (
	colCustomers = "radix_customers"
	colBills     = "radix_bills"
	colPayments  = "radix_payments"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

// Store implements store.Store using MongoDB.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// New wraps an existing client and database name.
func New(client *mongo.Client, database string) *Store {
	return &Store{client: client, db: client.Database(database)}
}

// Open connects to the MongoDB deployment at uri.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("radix/mongo: ping: %w", err)
	}
	return New(client, database), nil
}

// Migrate creates indexes for all collections.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if _, err := s.db.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("%w: %s indexes: %v", radix.ErrMigrationFailed, col, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects from the database.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// ==================== Customer Store ====================

func (s *Store) CreateCustomer(ctx context.Context, c *customer.Customer) error {
	_, err := s.db.Collection(colCustomers).InsertOne(ctx, toCustomerModel(c))
	if mongo.IsDuplicateKeyError(err) {
		return radix.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("radix/mongo: create customer: %w", err)
	}
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, customerID id.CustomerID) (*customer.Customer, error) {
	var m customerModel
	err := s.db.Collection(colCustomers).FindOne(ctx, bson.M{"_id": customerID.String()}).Decode(&m)
	if isNoDocuments(err) {
		return nil, radix.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: get customer: %w", err)
	}
	return fromCustomerModel(&m)
}

func (s *Store) GetCustomerByNumber(ctx context.Context, number string) (*customer.Customer, error) {
	var m customerModel
	err := s.db.Collection(colCustomers).FindOne(ctx, bson.M{"number": number}).Decode(&m)
	if isNoDocuments(err) {
		return nil, radix.ErrCustomerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: get customer by number: %w", err)
	}
	return fromCustomerModel(&m)
}

func (s *Store) ListCustomers(ctx context.Context, opts customer.ListOpts) ([]*customer.Customer, error) {
	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if opts.Search != "" {
		q := bson.M{"$regex": regexp.QuoteMeta(opts.Search), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": q}, bson.M{"email": q}, bson.M{"number": q}, bson.M{"phone": q},
		}
	}

	findOpts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	if opts.Limit > 0 {
		findOpts = findOpts.SetLimit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		findOpts = findOpts.SetSkip(int64(opts.Offset))
	}

	cur, err := s.db.Collection(colCustomers).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: list customers: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*customer.Customer, 0)
	for cur.Next(ctx) {
		var m customerModel
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		c, err := fromCustomerModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, cur.Err()
}

func (s *Store) UpdateCustomer(ctx context.Context, c *customer.Customer) error {
	m := toCustomerModel(c)
	res, err := s.db.Collection(colCustomers).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("radix/mongo: update customer: %w", err)
	}
	if res.MatchedCount == 0 {
		return radix.ErrCustomerNotFound
	}
	return nil
}

func (s *Store) CountCustomers(ctx context.Context) (int64, error) {
	n, err := s.db.Collection(colCustomers).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("radix/mongo: count customers: %w", err)
	}
	return n, nil
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	_, err := s.db.Collection(colBills).InsertOne(ctx, toBillModel(b))
	if mongo.IsDuplicateKeyError(err) {
		return radix.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("radix/mongo: create bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	var m billModel
	err := s.db.Collection(colBills).FindOne(ctx, bson.M{"_id": billID.String()}).Decode(&m)
	if isNoDocuments(err) {
		return nil, radix.ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: get bill: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if !opts.CustomerID.IsNil() {
		filter["customer_id"] = opts.CustomerID.String()
	}
	if opts.Start != nil || opts.End != nil {
		rng := bson.M{}
		if opts.Start != nil {
			rng["$gte"] = *opts.Start
		}
		if opts.End != nil {
			rng["$lte"] = *opts.End
		}
		filter["issue_date"] = rng
	}
	return s.findBills(ctx, filter, opts.Limit, opts.Offset)
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	m := toBillModel(b)
	res, err := s.db.Collection(colBills).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("radix/mongo: update bill: %w", err)
	}
	if res.MatchedCount == 0 {
		return radix.ErrBillNotFound
	}
	return nil
}

func (s *Store) ListBillsByCustomer(ctx context.Context, customerID id.CustomerID) ([]*bill.Bill, error) {
	return s.findBills(ctx, bson.M{"customer_id": customerID.String()}, 0, 0)
}

func (s *Store) findBills(ctx context.Context, filter bson.M, limit, offset int) ([]*bill.Bill, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	if limit > 0 {
		findOpts = findOpts.SetLimit(int64(limit))
	}
	if offset > 0 {
		findOpts = findOpts.SetSkip(int64(offset))
	}

	cur, err := s.db.Collection(colBills).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: list bills: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*bill.Bill, 0)
	for cur.Next(ctx) {
		var m billModel
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		b, err := fromBillModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, cur.Err()
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	_, err := s.db.Collection(colPayments).InsertOne(ctx, toPaymentModel(p))
	if mongo.IsDuplicateKeyError(err) {
		return radix.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("radix/mongo: create payment: %w", err)
	}
	return nil
}

func (s *Store) GetPayment(ctx context.Context, paymentID id.PaymentID) (*payment.Payment, error) {
	var m paymentModel
	err := s.db.Collection(colPayments).FindOne(ctx, bson.M{"_id": paymentID.String()}).Decode(&m)
	if isNoDocuments(err) {
		return nil, radix.ErrPaymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: get payment: %w", err)
	}
	return fromPaymentModel(&m)
}

func (s *Store) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	filter := bson.M{}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if opts.ReconStatus != "" {
		filter["reconciliation.status"] = string(opts.ReconStatus)
	}
	if !opts.CustomerID.IsNil() {
		filter["customer_id"] = opts.CustomerID.String()
	}
	if opts.Start != nil || opts.End != nil {
		rng := bson.M{}
		if opts.Start != nil {
			rng["$gte"] = *opts.Start
		}
		if opts.End != nil {
			rng["$lte"] = *opts.End
		}
		filter["payment_date"] = rng
	}
	return s.findPayments(ctx, filter, opts.Limit, opts.Offset)
}

func (s *Store) UpdatePayment(ctx context.Context, p *payment.Payment) error {
	m := toPaymentModel(p)
	res, err := s.db.Collection(colPayments).ReplaceOne(ctx, bson.M{"_id": m.ID}, m)
	if err != nil {
		return fmt.Errorf("radix/mongo: update payment: %w", err)
	}
	if res.MatchedCount == 0 {
		return radix.ErrPaymentNotFound
	}
	return nil
}

func (s *Store) ListPaymentsByBill(ctx context.Context, billID id.BillID) ([]*payment.Payment, error) {
	return s.findPayments(ctx, bson.M{"bill_id": billID.String()}, 0, 0)
}

func (s *Store) findPayments(ctx context.Context, filter bson.M, limit, offset int) ([]*payment.Payment, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "number", Value: 1}})
	if limit > 0 {
		findOpts = findOpts.SetLimit(int64(limit))
	}
	if offset > 0 {
		findOpts = findOpts.SetSkip(int64(offset))
	}

	cur, err := s.db.Collection(colPayments).Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: list payments: %w", err)
	}
	defer cur.Close(ctx)

	result := make([]*payment.Payment, 0)
	for cur.Next(ctx) {
		var m paymentModel
		if err := cur.Decode(&m); err != nil {
			return nil, err
		}
		p, err := fromPaymentModel(&m)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, cur.Err()
}

// ==================== Sequence source ====================

func (s *Store) MaxIdentifier(ctx context.Context, kind sequence.Kind, prefix string) (string, error) {
	var col, field string
	switch kind {
	case sequence.KindCustomer:
		col, field = colCustomers, "number"
	case sequence.KindBill:
		col, field = colBills, "number"
	case sequence.KindInvoice:
		col, field = colBills, "invoice_number"
	case sequence.KindPayment:
		col, field = colPayments, "number"
	default:
		return "", nil
	}

	// Numbers are fixed width and zero padded, so a descending sort on the
	// field yields the numeric max within a prefix.
	filter := bson.M{field: bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	opts := options.FindOne().
		SetSort(bson.D{{Key: field, Value: -1}}).
		SetProjection(bson.M{field: 1})

	var doc bson.M
	err := s.db.Collection(col).FindOne(ctx, filter, opts).Decode(&doc)
	if isNoDocuments(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("radix/mongo: max identifier: %w", err)
	}
	if v, ok := doc[field].(string); ok {
		return v, nil
	}
	return "", nil
}

// ==================== Stats ====================

func (s *Store) Stats(ctx context.Context, now time.Time) (*store.Stats, error) {
	st := &store.Stats{
		TotalBilled:      types.INR(0),
		TotalCollected:   types.INR(0),
		TotalOutstanding: types.INR(0),
	}

	var err error
	if st.TotalCustomers, err = s.db.Collection(colCustomers).CountDocuments(ctx, bson.M{}); err != nil {
		return nil, fmt.Errorf("radix/mongo: stats: %w", err)
	}
	if st.ActiveCustomers, err = s.db.Collection(colCustomers).CountDocuments(ctx, bson.M{"status": "active"}); err != nil {
		return nil, fmt.Errorf("radix/mongo: stats: %w", err)
	}

	cur, err := s.db.Collection(colBills).Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: "$total_amount"}}},
			{Key: "paid", Value: bson.D{{Key: "$sum", Value: "$paid_amount"}}},
			{Key: "balance", Value: bson.D{{Key: "$sum", Value: "$balance_due"}}},
		}}},
	})
	if err != nil {
		return nil, fmt.Errorf("radix/mongo: stats: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var row struct {
			ID      string `bson:"_id"`
			Count   int64  `bson:"count"`
			Total   int64  `bson:"total"`
			Paid    int64  `bson:"paid"`
			Balance int64  `bson:"balance"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		st.TotalBills += row.Count
		switch bill.Status(row.ID) {
		case bill.StatusPending, bill.StatusPartial:
			st.PendingBills += row.Count
		case bill.StatusOverdue:
			st.OverdueBills += row.Count
		case bill.StatusPaid:
			st.PaidBills += row.Count
		}
		st.TotalBilled.Amount += row.Total
		st.TotalCollected.Amount += row.Paid
		st.TotalOutstanding.Amount += row.Balance
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	if st.PaymentsThisMonth, err = s.db.Collection(colPayments).CountDocuments(ctx,
		bson.M{"payment_date": bson.M{"$gte": monthStart}}); err != nil {
		return nil, fmt.Errorf("radix/mongo: stats: %w", err)
	}
	if st.UnreconciledCount, err = s.db.Collection(colPayments).CountDocuments(ctx,
		bson.M{"reconciliation.status": bson.M{"$nin": bson.A{"matched", "resolved"}}}); err != nil {
		return nil, fmt.Errorf("radix/mongo: stats: %w", err)
	}

	return st, nil
}

// ==================== Helpers ====================

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colCustomers: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colBills: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "invoice_number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "customer_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		colPayments: {
			{
				Keys:    bson.D{{Key: "number", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "bill_id", Value: 1}}},
			{Keys: bson.D{{Key: "customer_id", Value: 1}}},
			{Keys: bson.D{{Key: "reconciliation.status", Value: 1}}},
		},
	}
}
