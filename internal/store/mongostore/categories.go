package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/models"
)

func (s *MongoStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := s.col(colCategories).Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Category](ctx, cur)
}

func (s *MongoStore) CreateCategory(ctx context.Context, c *models.Category) error {
	c.ID = ""
	res, err := s.col(colCategories).InsertOne(ctx, c)
	if err != nil {
		return mapErr(err)
	}
	c.ID = insertedID(res)
	return nil
}
