package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"ecommerce-api/pkg/imaging"
)

// Product represents a catalog item
type Product struct {
	ID                uint                   `json:"id" gorm:"primaryKey"`
	Title             string                 `json:"title" gorm:"size:100;not null;index"`
	Description       string                 `json:"description" gorm:"type:text;not null"`
	Price             float64                `json:"price" gorm:"not null"`
	Discount          *float64               `json:"discount,omitempty"`
	Stock             int                    `json:"stock" gorm:"not null;default:0"`
	Sizes             StringList             `json:"sizes,omitempty" gorm:"serializer:json"`
	Gender            string                 `json:"gender,omitempty" gorm:"size:10"`
	Images            []imaging.MediaRecord  `json:"images,omitempty" gorm:"serializer:json"`
	AITags            map[string]interface{} `json:"aiTags,omitempty" gorm:"serializer:json"`
	AIDescription     string                 `json:"aiDescription,omitempty" gorm:"size:1000"`
	AIRecommendations map[string]interface{} `json:"aiRecommendations,omitempty" gorm:"serializer:json"`
	VectorEmbedding   []float64              `json:"vectorEmbedding,omitempty" gorm:"serializer:json"`
	CategoryID        *uint                  `json:"categoryId,omitempty" gorm:"index"`
	PublishedAt       *time.Time             `json:"publishedAt,omitempty" gorm:"index"`
	CreatedAt         time.Time              `json:"createdAt"`
	UpdatedAt         time.Time              `json:"updatedAt"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// DiscountedPrice returns price*(1-discount/100) when a discount is set.
func (p *Product) DiscountedPrice() (float64, bool) {
	if p.Discount == nil {
		return 0, false
	}
	return p.Price * (1 - *p.Discount/100), true
}

func (p *Product) String() string {
	return fmt.Sprintf("Product{ID: %d, Title: %s, Price: %.2f, Stock: %d}", p.ID, p.Title, p.Price, p.Stock)
}

// Category groups products
type Category struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Slug      string    `json:"slug" gorm:"size:120;not null;uniqueIndex"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string {
	return "categories"
}

// ProductInput is a product payload. Nil fields were absent from the request.
type ProductInput struct {
	Title             *string               `json:"title"`
	Description       *string               `json:"description"`
	Price             *float64              `json:"price"`
	Discount          *float64              `json:"discount"`
	Stock             *float64              `json:"stock"`
	Sizes             StringList            `json:"sizes"`
	Gender            *string               `json:"gender"`
	Images            []imaging.MediaRecord `json:"images"`
	AITags            json.RawMessage       `json:"aiTags"`
	AIDescription     *string               `json:"aiDescription"`
	AIRecommendations json.RawMessage       `json:"aiRecommendations"`
	VectorEmbedding   json.RawMessage       `json:"vectorEmbedding"`
	CategoryID        *uint                 `json:"categoryId"`
}

// ApplyTo copies every present field onto p.
func (in *ProductInput) ApplyTo(p *Product) error {
	if in.Title != nil {
		p.Title = *in.Title
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Discount != nil {
		d := *in.Discount
		p.Discount = &d
	}
	if in.Stock != nil {
		p.Stock = int(*in.Stock)
	}
	if in.Sizes != nil {
		p.Sizes = in.Sizes
	}
	if in.Gender != nil {
		p.Gender = *in.Gender
	}
	if in.Images != nil {
		p.Images = in.Images
	}
	if in.AIDescription != nil {
		p.AIDescription = *in.AIDescription
	}
	if in.CategoryID != nil {
		id := *in.CategoryID
		p.CategoryID = &id
	}
	if present(in.AITags) {
		if err := json.Unmarshal(in.AITags, &p.AITags); err != nil {
			return fmt.Errorf("aiTags: %w", err)
		}
	}
	if present(in.AIRecommendations) {
		if err := json.Unmarshal(in.AIRecommendations, &p.AIRecommendations); err != nil {
			return fmt.Errorf("aiRecommendations: %w", err)
		}
	}
	if present(in.VectorEmbedding) {
		if err := json.Unmarshal(in.VectorEmbedding, &p.VectorEmbedding); err != nil {
			return fmt.Errorf("vectorEmbedding: %w", err)
		}
	}
	return nil
}

// present reports whether a raw JSON field carried a value other than null.
func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// StringList decodes either a single string or a list of strings.
type StringList []string

func (s *StringList) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StringList{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = list
	return nil
}
