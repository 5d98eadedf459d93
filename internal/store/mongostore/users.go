package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) error {
	u.ID = ""
	res, err := s.col(colUsers).InsertOne(ctx, u)
	if err != nil {
		return mapErr(err)
	}
	u.ID = insertedID(res)
	return nil
}

func (s *MongoStore) UpsertUser(ctx context.Context, u *models.User) error {
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}
	for field, v := range map[string]string{
		"name":        u.Name,
		"displayName": u.DisplayName,
		"phone":       u.Phone,
		"address":     u.Address,
		"photoURL":    u.PhotoURL,
	} {
		if v != "" {
			set[field] = v
		}
	}
	onInsert := bson.M{"role": u.Role, "createdAt": now}
	if u.Active != nil {
		onInsert["active"] = *u.Active
	}

	_, err := s.col(colUsers).UpdateOne(ctx,
		bson.M{"email": u.Email},
		bson.M{"$set": set, "$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	return mapErr(err)
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.col(colUsers).FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, mapErr(err)
	}
	return &u, nil
}

func (s *MongoStore) ListUsers(ctx context.Context, f store.UserFilter) ([]models.User, error) {
	filter := bson.M{}
	if f.Active != nil {
		if *f.Active {
			filter["active"] = bson.M{"$ne": false}
		} else {
			filter["active"] = false
		}
	}
	cur, err := s.col(colUsers).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.User](ctx, cur)
}

func (s *MongoStore) SetUserRole(ctx context.Context, email, role string) error {
	return s.setUserFields(ctx, email, bson.M{"role": role})
}

func (s *MongoStore) SetUserActive(ctx context.Context, email string, active bool) error {
	return s.setUserFields(ctx, email, bson.M{"active": active})
}

func (s *MongoStore) setUserFields(ctx context.Context, email string, set bson.M) error {
	set["updatedAt"] = time.Now().UTC()
	res, err := s.col(colUsers).UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteUser(ctx context.Context, email string) (bool, error) {
	res, err := s.col(colUsers).DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
