package mongostore

import (
	"context"
	"regexp"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Skotchmaster/droneshop/internal/models"
	"github.com/Skotchmaster/droneshop/internal/store"
)

func (s *MongoStore) CreateProduct(ctx context.Context, p *models.Product) error {
	p.ID = ""
	res, err := s.col(colProducts).InsertOne(ctx, p)
	if err != nil {
		return mapErr(err)
	}
	p.ID = insertedID(res)
	return nil
}

func (s *MongoStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	filter, err := idFilter(id)
	if err != nil {
		return nil, err
	}
	var p models.Product
	if err := s.col(colProducts).FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func productFilter(q store.ProductQuery) bson.M {
	filter := bson.M{}
	if q.Category != "" {
		filter["category"] = q.Category
	}
	if q.Search != "" {
		rx := primitiveRegex(q.Search)
		filter["$or"] = bson.A{
			bson.M{"title": rx},
			bson.M{"description": rx},
		}
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		price := bson.M{}
		if q.MinPrice != nil {
			price["$gte"] = *q.MinPrice
		}
		if q.MaxPrice != nil {
			price["$lte"] = *q.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

func primitiveRegex(term string) bson.M {
	return bson.M{"$regex": regexp.QuoteMeta(term), "$options": "i"}
}

func (s *MongoStore) ListProducts(ctx context.Context, q store.ProductQuery) ([]models.Product, int64, error) {
	filter := productFilter(q)

	total, err := s.col(colProducts).CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sortBy := q.SortBy
	if !store.ProductSortFields[sortBy] {
		sortBy = "createdAt"
	}
	dir := 1
	if q.Desc {
		dir = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: sortBy, Value: dir}, {Key: "_id", Value: dir}}).
		SetSkip(int64(q.Offset)).
		SetLimit(int64(q.Limit))
	cur, err := s.col(colProducts).Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	items, err := decodeAll[models.Product](ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// FeaturedProducts treats documents without the flag as featured.
func (s *MongoStore) FeaturedProducts(ctx context.Context, limit int) ([]models.Product, error) {
	return s.findProducts(ctx, bson.M{"featured": bson.M{"$ne": false}}, limit)
}

func (s *MongoStore) LatestProducts(ctx context.Context, limit int) ([]models.Product, error) {
	return s.findProducts(ctx, bson.M{}, limit)
}

func (s *MongoStore) findProducts(ctx context.Context, filter bson.M, limit int) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}).SetLimit(int64(limit))
	cur, err := s.col(colProducts).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Product](ctx, cur)
}

func (s *MongoStore) UpdateProduct(ctx context.Context, id string, patch models.ProductPatch) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}

	set := bson.M{"updatedAt": time.Now().UTC()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Img != nil {
		set["img"] = *patch.Img
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.OriginalPrice != nil {
		set["originalPrice"] = *patch.OriginalPrice
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Stock != nil {
		set["stock"] = *patch.Stock
	}
	if patch.Featured != nil {
		set["featured"] = *patch.Featured
	}
	if patch.Variations != nil {
		set["variations"] = *patch.Variations
	}

	res, err := s.col(colProducts).UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteProduct(ctx context.Context, id string) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}
	res, err := s.col(colProducts).DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MongoStore) IncrementViews(ctx context.Context, id string) error {
	return s.updateProductByID(ctx, id, bson.M{"$inc": bson.M{"views": 1}})
}

func (s *MongoStore) IncrementSales(ctx context.Context, id string, qty int) error {
	return s.updateProductByID(ctx, id, bson.M{"$inc": bson.M{"sales": qty}})
}

func (s *MongoStore) SetRatingSummary(ctx context.Context, id string, stats store.RatingStats) error {
	return s.updateProductByID(ctx, id, bson.M{"$set": bson.M{
		"averageRating": stats.Average,
		"totalRatings":  stats.Total,
	}})
}

func (s *MongoStore) updateProductByID(ctx context.Context, id string, update bson.M) error {
	filter, err := idFilter(id)
	if err != nil {
		return err
	}
	res, err := s.col(colProducts).UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *MongoStore) DistinctCategories(ctx context.Context) ([]string, error) {
	raw, err := s.col(colProducts).Distinct(ctx, "category", bson.M{"category": bson.M{"$nin": bson.A{nil, ""}}})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if name, ok := v.(string); ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}
