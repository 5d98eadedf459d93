package models

import "time"

type Variation struct {
	Name  string  `json:"name" bson:"name"`
	Price float64 `json:"price" bson:"price"`
}

type Product struct {
	ID            string      `gorm:"primaryKey;size:24"          json:"_id"                     bson:"_id,omitempty"`
	Title         string      `gorm:"not null"                    json:"title"                   bson:"title"`
	Description   string      `                                   json:"description"             bson:"description"`
	Img           string      `                                   json:"img"                     bson:"img"`
	Price         float64     `gorm:"not null;index"              json:"price"                   bson:"price"`
	OriginalPrice float64     `                                   json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Category      string      `gorm:"index"                       json:"category"                bson:"category"`
	Stock         int         `                                   json:"stock"                   bson:"stock"`
	Featured      bool        `gorm:"index"                       json:"featured"                bson:"featured"`
	Variations    []Variation `gorm:"serializer:json;type:text"   json:"variations,omitempty"    bson:"variations,omitempty"`
	Views         int64       `gorm:"not null"                    json:"views"                   bson:"views"`
	Sales         int64       `gorm:"not null"                    json:"sales"                   bson:"sales"`
	AverageRating float64     `                                   json:"averageRating"           bson:"averageRating"`
	TotalRatings  int64       `                                   json:"totalRatings"            bson:"totalRatings"`
	CreatedAt     time.Time   `gorm:"index"                       json:"createdAt"               bson:"createdAt"`
	UpdatedAt     time.Time   `                                   json:"updatedAt"               bson:"updatedAt"`
}

// PriceFor returns the price of the named variation, or the base price when
// the variation is absent or unknown.
func (p *Product) PriceFor(variation *string) float64 {
	if variation == nil {
		return p.Price
	}
	for _, v := range p.Variations {
		if v.Name == *variation {
			return v.Price
		}
	}
	return p.Price
}

// ProductPatch carries a partial product update. Nil fields are left untouched.
type ProductPatch struct {
	Title         *string
	Description   *string
	Img           *string
	Price         *float64
	OriginalPrice *float64
	Category      *string
	Stock         *int
	Featured      *bool
	Variations    *[]Variation
}

func (p ProductPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Img == nil && p.Price == nil &&
		p.OriginalPrice == nil && p.Category == nil && p.Stock == nil && p.Featured == nil &&
		p.Variations == nil
}

type Rating struct {
	ID        string    `gorm:"primaryKey;size:24" json:"_id"                 bson:"_id,omitempty"`
	ProductID string    `gorm:"index"              json:"productId,omitempty" bson:"productId,omitempty"`
	Name      string    `                          json:"name"                bson:"name"`
	Email     string    `                          json:"email,omitempty"     bson:"email,omitempty"`
	Img       string    `                          json:"img,omitempty"       bson:"img,omitempty"`
	Text      string    `                          json:"text"                bson:"text"`
	Rating    float64   `gorm:"not null"           json:"rating"              bson:"rating"`
	CreatedAt time.Time `gorm:"index"              json:"createdAt"           bson:"createdAt"`
}

func (Rating) TableName() string { return "rating" }

type Category struct {
	ID          string `gorm:"primaryKey;size:24"     json:"_id,omitempty"         bson:"_id,omitempty"`
	Name        string `gorm:"not null"               json:"name"                  bson:"name"`
	Slug        string `gorm:"uniqueIndex;not null"   json:"slug"                  bson:"slug"`
	Description string `                              json:"description,omitempty" bson:"description,omitempty"`
}
