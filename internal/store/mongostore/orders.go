package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (s *MongoStore) CreateOrder(ctx context.Context, o *models.Order) error {
	o.ID = ""
	res, err := s.col(colOrders).InsertOne(ctx, o)
	if err != nil {
		return mapErr(err)
	}
	o.ID = insertedID(res)
	return nil
}

func (s *MongoStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	return s.findOrder(ctx, filter)
}

func (s *MongoStore) GetOrderByTracking(ctx context.Context, trackingNumber string) (*models.Order, error) {
	return s.findOrder(ctx, bson.M{"trackingNumber": trackingNumber})
}

func (s *MongoStore) findOrder(ctx context.Context, filter bson.M) (*models.Order, error) {
	var o models.Order
	if err := s.col(colOrders).FindOne(ctx, filter).Decode(&o); err != nil {
		return nil, mapErr(err)
	}
	return &o, nil
}

func (s *MongoStore) ListOrders(ctx context.Context, f store.OrderFilter) ([]models.Order, error) {
	filter := bson.M{}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cur, err := s.col(colOrders).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Order](ctx, cur)
}

func (s *MongoStore) AppendStatus(ctx context.Context, id string, entry models.StatusEntry, trackingNumber string) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}
	set := bson.M{"status": entry.Status, "updatedAt": entry.Date}
	if trackingNumber != "" {
		set["trackingNumber"] = trackingNumber
	}
	res, err := s.col(colOrders).UpdateOne(ctx, filter, bson.M{
		"$set":  set,
		"$push": bson.M{"statusHistory": entry},
	})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteOrder(ctx context.Context, id string) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}
	res, err := s.col(colOrders).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}
