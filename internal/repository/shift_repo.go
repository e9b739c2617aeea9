package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
)

// ShiftRepository reads shifts (normalizing legacy documents) and carries the
// two write paths that bypass the gateway: the transactional open, and the
// income adjustment inside the refund transaction.
type ShiftRepository interface {
	FindByID(ctx context.Context, id string) (*model.Shift, error)
	FindOpenByCashier(ctx context.Context, cashierName string) (*model.Shift, error)
	FindLatestOpen(ctx context.Context) (*model.Shift, error)
	List(ctx context.Context, cashierName string) ([]model.Shift, error)
	CountOpenByCashier(ctx context.Context, cashierName string) (int64, error)
	// Create inserts directly. The unique index on open shifts turns a lost
	// duplicate race into a duplicate-key error, surfaced as ErrInvariant;
	// the CountOpenByCashier pre-check only gives the friendlier early answer.
	Create(ctx context.Context, s *model.Shift) error
	// AddIncome atomically adds delta to totalIncome (refund transaction).
	AddIncome(ctx context.Context, id string, delta decimal.Decimal) error
}

type shiftRepo struct{ col *mongo.Collection }

func NewShiftRepository(db *infra.Mongo) ShiftRepository {
	return &shiftRepo{col: db.Collection(infra.ColShifts)}
}

func (r *shiftRepo) decodeOne(res *mongo.SingleResult) (*model.Shift, error) {
	var s model.Shift
	err := res.Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	s.Normalize()
	return &s, nil
}

func (r *shiftRepo) FindByID(ctx context.Context, id string) (*model.Shift, error) {
	return r.decodeOne(r.col.FindOne(ctx, bson.M{"_id": id}))
}

func (r *shiftRepo) FindOpenByCashier(ctx context.Context, cashierName string) (*model.Shift, error) {
	filter := bson.M{"cashierName": cashierName, "status": model.ShiftOpen}
	opts := options.FindOne().SetSort(bson.D{{Key: "startTime", Value: -1}})
	return r.decodeOne(r.col.FindOne(ctx, filter, opts))
}

func (r *shiftRepo) FindLatestOpen(ctx context.Context) (*model.Shift, error) {
	filter := bson.M{"status": model.ShiftOpen}
	opts := options.FindOne().SetSort(bson.D{{Key: "startTime", Value: -1}})
	return r.decodeOne(r.col.FindOne(ctx, filter, opts))
}

func (r *shiftRepo) List(ctx context.Context, cashierName string) ([]model.Shift, error) {
	filter := bson.M{}
	if cashierName != "" {
		filter["cashierName"] = cashierName
	}
	opts := options.Find().SetSort(bson.D{{Key: "startTime", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Shift
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Normalize()
	}
	return out, nil
}

func (r *shiftRepo) CountOpenByCashier(ctx context.Context, cashierName string) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"cashierName": cashierName, "status": model.ShiftOpen})
}

func (r *shiftRepo) Create(ctx context.Context, s *model.Shift) error {
	_, err := r.col.InsertOne(ctx, s)
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s already has an open shift", apierror.ErrInvariant, s.CashierName)
	}
	return err
}

func (r *shiftRepo) AddIncome(ctx context.Context, id string, delta decimal.Decimal) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"totalIncome": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apierror.ErrNotFound
	}
	return nil
}
