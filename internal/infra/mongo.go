package infra

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/bsonrw"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/MILO-debug/POS/internal/model"
)

// Collection names of the remote document store.
const (
	ColProducts   = "products"
	ColCategories = "categories"
	ColShifts     = "shifts"
	ColSales      = "sales"
	ColLendings   = "lendings"
	ColExpenses   = "expenses"
	ColEmployees  = "employees"
	ColUsers      = "users"
)

// Mongo wraps the remote document store connection. All money fields are
// stored as Decimal128 via the registry below, so documents written by this
// service and by the legacy client (plain doubles) both decode cleanly.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongo configures the client and, when the store is reachable, ensures
// the indexes the query paths rely on. An unreachable store is not a boot
// failure — the terminal starts offline and the drain loop reconciles later.
func NewMongo(ctx context.Context, uri, dbName string) (*Mongo, error) {
	opts := options.Client().ApplyURI(uri).SetRegistry(Registry())

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	m := &Mongo{Client: client, DB: client.Database(dbName)}
	if err := client.Ping(ctx, nil); err != nil {
		log.Warn().Err(err).Msg("mongo unreachable at boot, starting offline")
		return m, nil
	}
	if err := m.ensureIndexes(ctx); err != nil {
		log.Warn().Err(err).Msg("mongo index creation failed")
	}
	return m, nil
}

func (m *Mongo) ensureIndexes(ctx context.Context) error {
	shiftIdx := []mongo.IndexModel{
		// At most one open shift per cashier. Transactions take no predicate
		// locks on the count query, so two concurrent opens can both read
		// zero; this index makes the second insert fail instead.
		{
			Keys: bson.D{{Key: "cashierName", Value: 1}},
			Options: options.Index().
				SetName("uniq_open_shift_per_cashier").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": model.ShiftOpen}),
		},
		{Keys: bson.D{{Key: "cashierName", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "startTime", Value: -1}}},
	}
	if _, err := m.DB.Collection(ColShifts).Indexes().CreateMany(ctx, shiftIdx); err != nil {
		return err
	}
	saleIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "shiftId", Value: 1}}},
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	if _, err := m.DB.Collection(ColSales).Indexes().CreateMany(ctx, saleIdx); err != nil {
		return err
	}
	lendingIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "borrowerName", Value: 1}, {Key: "returned", Value: 1}}},
	}
	if _, err := m.DB.Collection(ColLendings).Indexes().CreateMany(ctx, lendingIdx); err != nil {
		return err
	}
	expenseIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
	}
	_, err := m.DB.Collection(ColExpenses).Indexes().CreateMany(ctx, expenseIdx)
	return err
}

func (m *Mongo) Collection(name string) *mongo.Collection {
	return m.DB.Collection(name)
}

// WithTransaction runs fn inside a multi-document transaction. Used only
// where the contract demands atomicity: shift-open uniqueness and refunds.
func (m *Mongo) WithTransaction(ctx context.Context, fn func(sc mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	session, err := m.Client.StartSession()
	if err != nil {
		return nil, err
	}
	defer session.EndSession(ctx)
	return session.WithTransaction(ctx, fn)
}

// RunTransaction is the plain-context form of WithTransaction. Repositories
// take context.Context, so the session context threads through unchanged.
func (m *Mongo) RunTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := m.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	})
	return err
}

// ── Write surface for the gateway ────────────────────────────────────────────

// Insert stores doc under docID. The payload is flattened to a document and
// its _id overwritten, so queued replays and live writes take the same path.
func (m *Mongo) Insert(ctx context.Context, collection, docID string, doc interface{}) error {
	d, err := toDocument(doc)
	if err != nil {
		return err
	}
	d["_id"] = docID
	_, err = m.DB.Collection(collection).InsertOne(ctx, d)
	return err
}

// Update applies a partial field merge to the document with docID.
func (m *Mongo) Update(ctx context.Context, collection, docID string, fields interface{}) error {
	d, err := toDocument(fields)
	if err != nil {
		return err
	}
	delete(d, "_id")
	_, err = m.DB.Collection(collection).UpdateByID(ctx, docID, bson.M{"$set": d})
	return err
}

// Delete removes the document with docID. Deleting a missing document is not
// an error — replayed deletes must be idempotent.
func (m *Mongo) Delete(ctx context.Context, collection, docID string) error {
	_, err := m.DB.Collection(collection).DeleteOne(ctx, bson.M{"_id": docID})
	return err
}

func toDocument(v interface{}) (bson.M, error) {
	if d, ok := v.(bson.M); ok {
		return d, nil
	}
	raw, err := bson.MarshalWithRegistry(Registry(), v)
	if err != nil {
		return nil, err
	}
	var d bson.M
	if err := bson.UnmarshalWithRegistry(Registry(), raw, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// ── Canonical document codec ─────────────────────────────────────────────────

// ExtJSONCodec encodes queue payloads as canonical extended JSON so that
// Decimal128 values survive the round trip through the local queue.
type ExtJSONCodec struct{}

func (ExtJSONCodec) Marshal(v interface{}) ([]byte, error) {
	return bson.MarshalExtJSONWithRegistry(Registry(), v, true, false)
}

func (ExtJSONCodec) Unmarshal(data []byte) (interface{}, error) {
	var d bson.M
	if err := bson.UnmarshalExtJSONWithRegistry(Registry(), data, true, &d); err != nil {
		return nil, err
	}
	return d, nil
}

// ── decimal.Decimal <-> BSON registry ────────────────────────────────────────

var (
	tDecimal = reflect.TypeOf(decimal.Decimal{})
	registry = buildRegistry()
)

// Registry returns the BSON codec registry with decimal.Decimal support.
func Registry() *bsoncodec.Registry { return registry }

func buildRegistry() *bsoncodec.Registry {
	reg := bson.NewRegistry()
	reg.RegisterTypeEncoder(tDecimal, bsoncodec.ValueEncoderFunc(encodeDecimal))
	reg.RegisterTypeDecoder(tDecimal, bsoncodec.ValueDecoderFunc(decodeDecimal))
	return reg
}

func encodeDecimal(_ bsoncodec.EncodeContext, vw bsonrw.ValueWriter, val reflect.Value) error {
	if !val.IsValid() || val.Type() != tDecimal {
		return bsoncodec.ValueEncoderError{Name: "encodeDecimal", Types: []reflect.Type{tDecimal}, Received: val}
	}
	dec := val.Interface().(decimal.Decimal)
	d128, err := primitive.ParseDecimal128(dec.String())
	if err != nil {
		return err
	}
	return vw.WriteDecimal128(d128)
}

// decodeDecimal accepts Decimal128 (our writes), doubles and ints (documents
// written by the legacy client), strings, and null.
func decodeDecimal(_ bsoncodec.DecodeContext, vr bsonrw.ValueReader, val reflect.Value) error {
	if !val.CanSet() || val.Type() != tDecimal {
		return bsoncodec.ValueDecoderError{Name: "decodeDecimal", Types: []reflect.Type{tDecimal}, Received: val}
	}

	var dec decimal.Decimal
	switch vr.Type() {
	case bson.TypeDecimal128:
		d128, err := vr.ReadDecimal128()
		if err != nil {
			return err
		}
		dec, err = decimal.NewFromString(d128.String())
		if err != nil {
			return err
		}
	case bson.TypeDouble:
		f, err := vr.ReadDouble()
		if err != nil {
			return err
		}
		dec = decimal.NewFromFloat(f)
	case bson.TypeInt32:
		i, err := vr.ReadInt32()
		if err != nil {
			return err
		}
		dec = decimal.NewFromInt(int64(i))
	case bson.TypeInt64:
		i, err := vr.ReadInt64()
		if err != nil {
			return err
		}
		dec = decimal.NewFromInt(i)
	case bson.TypeString:
		s, err := vr.ReadString()
		if err != nil {
			return err
		}
		dec, err = decimal.NewFromString(s)
		if err != nil {
			return err
		}
	case bson.TypeNull:
		if err := vr.ReadNull(); err != nil {
			return err
		}
		dec = decimal.Zero
	default:
		return fmt.Errorf("cannot decode %v into decimal.Decimal", vr.Type())
	}

	val.Set(reflect.ValueOf(dec))
	return nil
}
