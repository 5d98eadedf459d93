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

// mergeAttempts bounds the increment-or-push loop when concurrent writers
// race on the same cart.
const mergeAttempts = 3

// lineMatch selects a cart line. A nil variation matches null or missing.
func lineMatch(productID string, variation *string) bson.M {
	var v any
	if variation = models.NormalizeVariation(variation); variation != nil {
		v = *variation
	}
	return bson.M{"productId": productID, "variation": v}
}

func (s *MongoStore) GetCart(ctx context.Context, email string) (*models.Cart, error) {
	var cart models.Cart
	if err := s.col(colCarts).FindOne(ctx, bson.M{"email": email}).Decode(&cart); err != nil {
		return nil, mapErr(err)
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return &cart, nil
}

func (s *MongoStore) cartItems(ctx context.Context, email string) ([]models.CartItem, error) {
	cart, err := s.GetCart(ctx, email)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (s *MongoStore) AddCartItem(ctx context.Context, email string, item models.CartItem) ([]models.CartItem, error) {
	item.Variation = models.NormalizeVariation(item.Variation)
	match := lineMatch(item.ProductID, item.Variation)
	carts := s.col(colCarts)

	for attempt := 0; attempt < mergeAttempts; attempt++ {
		now := time.Now().UTC()
		res, err := carts.UpdateOne(ctx,
			bson.M{"email": email, "items": bson.M{"$elemMatch": match}},
			bson.M{
				"$inc": bson.M{"items.$.quantity": item.Quantity},
				"$set": bson.M{"updatedAt": now},
			},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount > 0 {
			return s.cartItems(ctx, email)
		}

		_, err = carts.UpdateOne(ctx,
			bson.M{"email": email, "items": bson.M{"$not": bson.M{"$elemMatch": match}}},
			bson.M{
				"$push":        bson.M{"items": item},
				"$set":         bson.M{"updatedAt": now},
				"$setOnInsert": bson.M{"createdAt": now},
			},
			options.Update().SetUpsert(true),
		)
		if err == nil {
			return s.cartItems(ctx, email)
		}
		// The line appeared between the two updates; merge into it instead.
		if !mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
	}
	return nil, store.ErrDuplicate
}

func (s *MongoStore) SetCartItemQuantity(ctx context.Context, email, productID string, variation *string, qty int) ([]models.CartItem, error) {
	now := time.Now().UTC()
	match := lineMatch(productID, variation)
	carts := s.col(colCarts)

	if qty <= 0 {
		res, err := carts.UpdateOne(ctx,
			bson.M{"email": email},
			bson.M{"$pull": bson.M{"items": match}, "$set": bson.M{"updatedAt": now}},
		)
		if err != nil {
			return nil, err
		}
		if res.MatchedCount == 0 {
			return nil, store.ErrNotFound
		}
		return s.cartItems(ctx, email)
	}

	_, err := carts.UpdateOne(ctx,
		bson.M{"email": email, "items": bson.M{"$elemMatch": match}},
		bson.M{"$set": bson.M{"items.$.quantity": qty, "updatedAt": now}},
	)
	if err != nil {
		return nil, err
	}
	return s.cartItems(ctx, email)
}

func (s *MongoStore) RemoveCartItem(ctx context.Context, email, productID string, variation *string) ([]models.CartItem, error) {
	return s.SetCartItemQuantity(ctx, email, productID, variation, 0)
}

func (s *MongoStore) ClearCart(ctx context.Context, email string) error {
	_, err := s.col(colCarts).UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{"$set": bson.M{"items": bson.A{}, "updatedAt": time.Now().UTC()}},
	)
	return err
}

func (s *MongoStore) DeleteCart(ctx context.Context, email string) error {
	_, err := s.col(colCarts).DeleteOne(ctx, bson.M{"email": email})
	return err
}
