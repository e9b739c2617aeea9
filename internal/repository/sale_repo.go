package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
)

// SaleFilter narrows history queries. Zero times mean unbounded.
type SaleFilter struct {
	Start   time.Time
	End     time.Time
	ShiftID string
	Cashier string
}

// SaleRepository is the read side of the sale ledger plus the delete used
// inside the refund transaction.
type SaleRepository interface {
	FindByID(ctx context.Context, id string) (*model.Sale, error)
	List(ctx context.Context, f SaleFilter) ([]model.Sale, error)
	// SumTotalByShift re-sums the ledger for a shift; shift close trusts this
	// figure over the incrementally maintained counter.
	SumTotalByShift(ctx context.Context, shiftID string) (decimal.Decimal, error)
	// Delete removes the sale document (refund transaction only).
	Delete(ctx context.Context, id string) error
}

type saleRepo struct{ col *mongo.Collection }

func NewSaleRepository(db *infra.Mongo) SaleRepository {
	return &saleRepo{col: db.Collection(infra.ColSales)}
}

func (r *saleRepo) FindByID(ctx context.Context, id string) (*model.Sale, error) {
	var s model.Sale
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *saleRepo) List(ctx context.Context, f SaleFilter) ([]model.Sale, error) {
	filter := bson.M{}
	if f.ShiftID != "" {
		filter["shiftId"] = f.ShiftID
	}
	if f.Cashier != "" {
		filter["cashier"] = f.Cashier
	}
	ts := bson.M{}
	if !f.Start.IsZero() {
		ts["$gte"] = f.Start
	}
	if !f.End.IsZero() {
		ts["$lte"] = f.End
	}
	if len(ts) > 0 {
		filter["timestamp"] = ts
	}

	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Sale
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *saleRepo) SumTotalByShift(ctx context.Context, shiftID string) (decimal.Decimal, error) {
	// Summed in-process rather than with an aggregation pipeline so that
	// legacy documents holding doubles and current Decimal128 documents add
	// up through the same codec path.
	sales, err := r.List(ctx, SaleFilter{ShiftID: shiftID})
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, s := range sales {
		sum = sum.Add(s.Total)
	}
	return sum, nil
}

func (r *saleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return apierror.ErrNotFound
	}
	return nil
}
