package fixtures

import (
	"encoding/json"
	"time"

	"ecommerce-api/internal/domain"
	"ecommerce-api/pkg/imaging"
)

func ptr[T any](v T) *T {
	return &v
}

// Product fixtures

// ValidProductInput returns a product payload that passes every rule
func ValidProductInput() *domain.ProductInput {
	return &domain.ProductInput{
		Title:       ptr("Classic Linen Shirt"),
		Description: ptr("Breathable linen shirt cut for warm days."),
		Price:       ptr(49.99),
		Discount:    ptr(10.0),
		Stock:       ptr(25.0),
		Sizes:       domain.StringList{"m"},
		Gender:      ptr("men"),
		Images:      []imaging.MediaRecord{CloudinaryImage()},
		AITags:      json.RawMessage(`{"style":"casual"}`),
	}
}

// ValidProduct returns a stored, published product
func ValidProduct() *domain.Product {
	published := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &domain.Product{
		ID:          1,
		Title:       "Classic Linen Shirt",
		Description: "Breathable linen shirt cut for warm days.",
		Price:       50,
		Discount:    ptr(20.0),
		Stock:       25,
		Sizes:       domain.StringList{"m"},
		Images:      []imaging.MediaRecord{CloudinaryImage()},
		PublishedAt: &published,
	}
}

// InvalidProductPayload is the request body rejected with one detail per field
func InvalidProductPayload() map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"title":       "AB",
			"description": "Short",
			"price":       -10,
			"stock":       -5,
		},
	}
}

// Image fixtures

// CloudinaryImage returns a media record hosted on Cloudinary
func CloudinaryImage() imaging.MediaRecord {
	return imaging.MediaRecord{
		ID:       7,
		URL:      "https://res.cloudinary.com/shop/image/upload/v1712345678/products/linen-shirt.jpg",
		Width:    2000,
		Height:   2000,
		Mime:     "image/jpeg",
		Ext:      ".jpg",
		Provider: "cloudinary",
	}
}

// Cart fixtures

// ValidCartInput returns a cart payload that passes every rule
func ValidCartInput() *domain.CartInput {
	return &domain.CartInput{
		SessionID: ptr("cart-session-0001"),
		Items: []domain.CartItem{
			{Product: 1, Quantity: 2, Size: "M", Color: "navy", Price: 49.99},
			{Product: 2, Quantity: 1, Size: "L", Color: "white", Price: 19.5},
		},
	}
}

// Order fixtures

// ValidOrderInput returns an order payload that passes every rule
func ValidOrderInput() *domain.OrderInput {
	return &domain.OrderInput{
		OrderNumber: ptr("ord-20240501"),
		TotalAmount: ptr(119.48),
		Items: []domain.OrderItem{
			{Product: 1, Quantity: 2, Size: "M", Color: "navy", Price: 49.99},
			{Product: 2, Quantity: 1, Size: "L", Color: "white", Price: 19.5},
		},
	}
}
