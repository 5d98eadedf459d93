package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (s *MongoStore) GetWishlist(ctx context.Context, email string) (*models.Wishlist, error) {
	var w models.Wishlist
	if err := s.col(colWishlists).FindOne(ctx, bson.M{"email": email}).Decode(&w); err != nil {
		return nil, mapErr(err)
	}
	if w.Items == nil {
		w.Items = []string{}
	}
	return &w, nil
}

func (s *MongoStore) wishlistItems(ctx context.Context, email string) ([]string, error) {
	w, err := s.GetWishlist(ctx, email)
	if err != nil {
		return nil, err
	}
	return w.Items, nil
}

func (s *MongoStore) AddWishlistItem(ctx context.Context, email, productID string) ([]string, error) {
	for attempt := 0; attempt < mergeAttempts; attempt++ {
		now := time.Now().UTC()
		_, err := s.col(colWishlists).UpdateOne(ctx,
			bson.M{"email": email},
			bson.M{
				"$addToSet":    bson.M{"items": productID},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return s.wishlistItems(ctx, email)
		}
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
	}
	return nil, store.ErrDuplicate
}

func (s *MongoStore) RemoveWishlistItem(ctx context.Context, email, productID string) ([]string, error) {
	res, err := s.col(colWishlists).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$pull": bson.M{"items": productID}, "$set": bson.M{"updatedAt": time.Now().UTC()}},
	)
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, store.ErrNotFound
	}
	return s.wishlistItems(ctx, email)
}

func (s *MongoStore) DeleteWishlist(ctx context.Context, email string) error {
	_, err := s.col(colWishlists).DeleteOne(ctx, bson.M{"email": email})
	return err
}
