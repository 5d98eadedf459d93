package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (s *MongoStore) CreateRating(ctx context.Context, r *models.Rating) error {
	r.ID = ""
	res, err := s.col(colRatings).InsertOne(ctx, r)
	if err != nil {
		return mapErr(err)
	}
	r.ID = insertedID(res)
	return nil
}

func (s *MongoStore) ListRatings(ctx context.Context, productID string) ([]models.Rating, error) {
	filter := bson.M{}
	if productID != "" {
		filter["productId"] = productID
	}
	cur, err := s.col(colRatings).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Rating](ctx, cur)
}

type ratingGroup struct {
	Average float64 `bson:"average"`
	Total   int64   `bson:"total"`
}

func (s *MongoStore) RatingStats(ctx context.Context, productID string) (store.RatingStats, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"productId": productID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"total":   bson.M{"$sum": 1},
		}}},
	}
	cur, err := s.col(colRatings).Aggregate(ctx, pipeline)
	if err != nil {
		return store.RatingStats{}, err
	}
	rows, err := decodeAll[ratingGroup](ctx, cur)
	if err != nil || len(rows) == 0 {
		return store.RatingStats{}, err
	}
	return store.RatingStats{Average: rows[0].Average, Total: rows[0].Total}, nil
}

func (s *MongoStore) DeleteRating(ctx context.Context, id string) (*models.Rating, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	var r models.Rating
	if err := s.col(colRatings).FindOneAndDelete(ctx, filter).Decode(&r); err != nil {
		return nil, mapErr(err)
	}
	return &r, nil
}
