package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/MILO-debug/POS/internal/apierror"
	"github.com/MILO-debug/POS/internal/infra"
	"github.com/MILO-debug/POS/internal/model"
)

// ── Categories ───────────────────────────────────────────────────────────────

type CategoryRepository interface {
	FindByID(ctx context.Context, id string) (*model.Category, error)
	List(ctx context.Context) ([]model.Category, error)
	ExistsName(ctx context.Context, name string) (bool, error)
}

type categoryRepo struct{ col *mongo.Collection }

func NewCategoryRepository(db *infra.Mongo) CategoryRepository {
	return &categoryRepo{col: db.Collection(infra.ColCategories)}
}

func (r *categoryRepo) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var c model.Category
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *categoryRepo) List(ctx context.Context) ([]model.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Category
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *categoryRepo) ExistsName(ctx context.Context, name string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	return n > 0, err
}

// ── Employees ────────────────────────────────────────────────────────────────

type EmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*model.Employee, error)
	List(ctx context.Context) ([]model.Employee, error)
	ExistsName(ctx context.Context, name string) (bool, error)
	FindByUsername(ctx context.Context, username string) (*model.Employee, error)
}

type employeeRepo struct{ col *mongo.Collection }

func NewEmployeeRepository(db *infra.Mongo) EmployeeRepository {
	return &employeeRepo{col: db.Collection(infra.ColEmployees)}
}

func (r *employeeRepo) FindByID(ctx context.Context, id string) (*model.Employee, error) {
	var e model.Employee
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *employeeRepo) List(ctx context.Context) ([]model.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Employee
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *employeeRepo) ExistsName(ctx context.Context, name string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"name": name}, options.Count().SetLimit(1))
	return n > 0, err
}

func (r *employeeRepo) FindByUsername(ctx context.Context, username string) (*model.Employee, error) {
	var e model.Employee
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ── Expenses ─────────────────────────────────────────────────────────────────

type ExpenseRepository interface {
	ListRange(ctx context.Context, start, end time.Time) ([]model.Expense, error)
}

type expenseRepo struct{ col *mongo.Collection }

func NewExpenseRepository(db *infra.Mongo) ExpenseRepository {
	return &expenseRepo{col: db.Collection(infra.ColExpenses)}
}

func (r *expenseRepo) ListRange(ctx context.Context, start, end time.Time) ([]model.Expense, error) {
	filter := bson.M{"timestamp": bson.M{"$gte": start, "$lte": end}}
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []model.Expense
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ── Users ────────────────────────────────────────────────────────────────────

type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type userRepo struct{ col *mongo.Collection }

func NewUserRepository(db *infra.Mongo) UserRepository {
	return &userRepo{col: db.Collection(infra.ColUsers)}
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apierror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) Create(ctx context.Context, u *model.User) error {
	_, err := r.col.InsertOne(ctx, u)
	return err
}
