package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
)

// ProductRepository is the read side of the catalog plus the stock increment
// used inside the refund transaction. Ordinary catalog writes go through the
// gateway, not through this interface.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByNameUnit(ctx context.Context, name, unit string) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]model.Product, error)
	ExistsNameUnit(ctx context.Context, name, unit string) (bool, error)
	// IncrementStock atomically adds delta to the product's stock. Only the
	// refund transaction uses it; sale commits write the floored stock value
	// through the gateway instead.
	IncrementStock(ctx context.Context, id string, delta decimal.Decimal) error
}

type productRepo struct{ col *mongo.Collection }

func NewProductRepository(db *infra.Mongo) ProductRepository {
	return &productRepo{col: db.Collection(infra.ColProducts)}
}

func (r *productRepo) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) FindByNameUnit(ctx context.Context, name, unit string) (*model.Product, error) {
	var p model.Product
	err := r.col.FindOne(ctx, bson.M{"name": name, "unit": unit}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *productRepo) List(ctx context.Context) ([]model.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Product
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *productRepo) ListLowStock(ctx context.Context, threshold decimal.Decimal) ([]model.Product, error) {
	products, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.Product
	for _, p := range products {
		if p.Stock.LessThan(threshold) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *productRepo) ExistsNameUnit(ctx context.Context, name, unit string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"name": name, "unit": unit}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *productRepo) IncrementStock(ctx context.Context, id string, delta decimal.Decimal) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"stock": delta}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apierror.ErrNotFound
	}
	return nil
}
