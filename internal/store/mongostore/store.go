// Package mongostore implements the store contract on MongoDB using the
// collection layout of the existing shop database.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/store"
)

const (
	colProducts   = "products"
	colOrders     = "orders"
	colRatings    = "rating"
	colUsers      = "users"
	colAuth       = "auth"
	colCarts      = "carts"
	colWishlists  = "wishlists"
	colCategories = "categories"
)

type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

var _ store.Store = (*MongoStore)(nil)

// Open connects and pings the server. opTimeout bounds every single operation
// when positive.
func Open(ctx context.Context, uri, dbName string, opTimeout time.Duration) (*MongoStore, error) {
	if uri == "" {
		return nil, fmt.Errorf("MONGODB_URI is empty")
	}
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second)
	if opTimeout > 0 {
		opts.SetTimeout(opTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoStore{client: client, db: client.Database(dbName)}, nil
}

type indexSpec struct {
	col   string
	model mongo.IndexModel
	// required indexes back a store guarantee: the unique ones make the
	// cart merge retry and tracking number regeneration safe.
	required bool
}

func indexSpecs() []indexSpec {
	unique := options.Index().SetUnique(true)
	return []indexSpec{
		{colAuth, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}, true},
		{colAuth, mongo.IndexModel{Keys: bson.D{{Key: "emailVerifyToken", Value: 1}}, Options: options.Index().SetSparse(true)}, false},
		{colUsers, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}, true},
		{colCarts, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}, true},
		{colWishlists, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique}, true},
		{colOrders, mongo.IndexModel{Keys: bson.D{{Key: "trackingNumber", Value: 1}}, Options: unique}, true},
		{colOrders, mongo.IndexModel{Keys: bson.D{{Key: "email", Value: 1}, {Key: "createdAt", Value: -1}}}, false},
		{colRatings, mongo.IndexModel{Keys: bson.D{{Key: "productId", Value: 1}, {Key: "createdAt", Value: -1}}}, false},
		{colProducts, mongo.IndexModel{Keys: bson.D{{Key: "category", Value: 1}}}, false},
		{colProducts, mongo.IndexModel{Keys: bson.D{{Key: "createdAt", Value: -1}}}, false},
	}
}

// EnsureIndexes creates the indexes the store relies on. A unique index that
// cannot be built, usually because legacy data holds duplicates, fails the
// call; lookup indexes are only logged.
func (s *MongoStore) EnsureIndexes(ctx context.Context, l *slog.Logger) error {
	for _, spec := range indexSpecs() {
		if _, err := s.db.Collection(spec.col).Indexes().CreateOne(ctx, spec.model); err != nil {
			if spec.required {
				l.Error("mongo_index_failed", "collection", spec.col, "error", err)
				return fmt.Errorf("create %s index: %w", spec.col, err)
			}
			l.Warn("mongo_index_failed", "collection", spec.col, "error", err)
		}
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) col(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(store.ErrDuplicate, err)
	default:
		return err
	}
}

// idFilter matches a document by its ObjectID. Malformed ids match nothing.
func idFilter(id string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, store.ErrNotFound
	}
	return bson.M{"_id": oid}, nil
}

func insertedID(res *mongo.InsertOneResult) string {
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		return oid.Hex()
	}
	return fmt.Sprint(res.InsertedID)
}

func decodeAll[T any](ctx context.Context, cur *mongo.Cursor) ([]T, error) {
	defer cur.Close(ctx)
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
