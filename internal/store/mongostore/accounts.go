package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (s *MongoStore) CreateAuth(ctx context.Context, a *models.Auth) error {
	a.ID = ""
	res, err := s.col(colAuth).InsertOne(ctx, a)
	if err != nil {
		return mapErr(err)
	}
	a.ID = insertedID(res)
	return nil
}

func (s *MongoStore) GetAuthByEmail(ctx context.Context, email string) (*models.Auth, error) {
	var a models.Auth
	if err := s.col(colAuth).FindOne(ctx, bson.M{"email": email}).Decode(&a); err != nil {
		return nil, mapErr(err)
	}
	return &a, nil
}

func (s *MongoStore) RedeemVerifyToken(ctx context.Context, token string, now time.Time) (string, error) {
	filter := bson.M{
		"emailVerifyToken":   token,
		"emailVerifyExpires": bson.M{"$gt": now},
	}
	update := bson.M{
		"$set":   bson.M{"emailVerified": true, "updatedAt": now},
		"$unset": bson.M{"emailVerifyToken": "", "emailVerifyExpires": ""},
	}
	var a models.Auth
	err := s.col(colAuth).FindOneAndUpdate(ctx, filter, update, options.FindOneAndUpdate().SetReturnDocument(options.Before)).Decode(&a)
	if err != nil {
		return "", mapErr(err)
	}
	return a.Email, nil
}

func (s *MongoStore) SetVerifyToken(ctx context.Context, email, token string, expires time.Time) error {
	res, err := s.col(colAuth).UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{
		"emailVerifyToken":   token,
		"emailVerifyExpires": expires,
		"updatedAt":          time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteAuth(ctx context.Context, email string) (bool, error) {
	res, err := s.col(colAuth).DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
