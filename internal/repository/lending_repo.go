package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
)

// LendingRepository reads credit sales. Lending mutations (creation, payment
// merges) are single-document writes and go through the gateway.
type LendingRepository interface {
	FindByID(ctx context.Context, id string) (*model.Lending, error)
	// ListOpenByBorrower returns unreturned lendings for one borrower,
	// oldest first, so payments settle the oldest debt first.
	ListOpenByBorrower(ctx context.Context, borrowerName string) ([]model.Lending, error)
	// ListOpen returns all unreturned lendings for the borrower overview.
	ListOpen(ctx context.Context) ([]model.Lending, error)
}

type lendingRepo struct{ col *mongo.Collection }

func NewLendingRepository(db *infra.Mongo) LendingRepository {
	return &lendingRepo{col: db.Collection(infra.ColLendings)}
}

func (r *lendingRepo) FindByID(ctx context.Context, id string) (*model.Lending, error) {
	var l model.Lending
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *lendingRepo) ListOpenByBorrower(ctx context.Context, borrowerName string) ([]model.Lending, error) {
	filter := bson.M{"borrowerName": borrowerName, "returned": false}
	return r.find(ctx, filter)
}

func (r *lendingRepo) ListOpen(ctx context.Context) ([]model.Lending, error) {
	return r.find(ctx, bson.M{"returned": false})
}

func (r *lendingRepo) find(ctx context.Context, filter bson.M) ([]model.Lending, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Lending
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
