package service

import (
	"bytes"
	"encoding/json"
	"math"
	"slices"
	"strings"
	"unicode/utf8"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/errs"
	"ecommerce-api/pkg/validator"
)

const (
	minTitleLength         = 3
	maxTitleLength         = 100
	minDescriptionLength   = 10
	maxDescriptionLength   = 2000
	minProductPrice        = 0.01
	maxProductPrice        = 999999.99
	maxStock               = 99999
	maxImages              = 10
	maxAIDescriptionLength = 1000
	highDiscount           = 50
	lowPrice               = 1
)

// ProductSizes lists the sizes a product may be offered in, compared case-insensitively
var ProductSizes = []string{"s", "m", "l", "xl", "xxl"}

// ValidateProductData checks the semantic rules of a product payload. Only present
// fields are checked, except that a new product needs a title, description and price.
func ValidateProductData(in *domain.ProductInput, action Action) error {
	v := validator.Violations{}

	if action == ActionCreate {
		if in.Title == nil {
			v.Add("title", "Title is required")
		}
		if in.Description == nil {
			v.Add("description", "Description is required")
		}
		if in.Price == nil {
			v.Add("price", "Price is required")
		}
	}

	if in.Title != nil {
		if utf8.RuneCountInString(strings.TrimSpace(*in.Title)) < minTitleLength {
			v.Add("title", "Title must be at least 3 characters long")
		}
		if utf8.RuneCountInString(*in.Title) > maxTitleLength {
			v.Add("title", "Title must not exceed 100 characters")
		}
	}

	if in.Description != nil {
		if utf8.RuneCountInString(strings.TrimSpace(*in.Description)) < minDescriptionLength {
			v.Add("description", "Description must be at least 10 characters long")
		}
		if utf8.RuneCountInString(*in.Description) > maxDescriptionLength {
			v.Add("description", "Description must not exceed 2000 characters")
		}
	}

	if in.Price != nil {
		if *in.Price < minProductPrice {
			v.Add("price", "Price must be at least $0.01")
		}
		if *in.Price > maxProductPrice {
			v.Add("price", "Price must not exceed $999,999.99")
		}
	}

	if in.Discount != nil {
		if *in.Discount < 0 {
			v.Add("discount", "Discount cannot be negative")
		}
		if *in.Discount > 100 {
			v.Add("discount", "Discount cannot exceed 100%")
		}
	}

	if in.Stock != nil {
		if *in.Stock < 0 {
			v.Add("stock", "Stock cannot be negative")
		}
		if *in.Stock > maxStock {
			v.Add("stock", "Stock cannot exceed 99,999 units")
		}
	}

	for _, size := range in.Sizes {
		if !slices.Contains(ProductSizes, strings.ToLower(size)) {
			v.Add("sizes", "Size must be one of: s, m, l, xl, xxl")
			break
		}
	}

	if in.Images != nil {
		if len(in.Images) == 0 {
			v.Add("images", "At least one image is required")
		}
		if len(in.Images) > maxImages {
			v.Add("images", "Maximum 10 images allowed per product")
		}
	}

	if present(in.AITags) && !isJSONObject(in.AITags) {
		v.Add("aiTags", "AI Tags must be a valid JSON object")
	}
	if in.AIDescription != nil && utf8.RuneCountInString(*in.AIDescription) > maxAIDescriptionLength {
		v.Add("aiDescription", "AI Description must not exceed 1000 characters")
	}
	if present(in.AIRecommendations) && !isJSONObject(in.AIRecommendations) {
		v.Add("aiRecommendations", "AI Recommendations must be a valid JSON object")
	}

	if present(in.VectorEmbedding) {
		var embedding []json.RawMessage
		if err := json.Unmarshal(in.VectorEmbedding, &embedding); err != nil {
			v.Add("vectorEmbedding", "Vector Embedding must be an array")
		} else if len(embedding) == 0 {
			v.Add("vectorEmbedding", "Vector Embedding cannot be empty")
		}
	}

	if in.Price != nil && in.Discount != nil && *in.Price > 0 && *in.Discount > 0 {
		if *in.Price*(1-*in.Discount/100) < minProductPrice {
			v.Add("discount", "Discounted price cannot be less than $0.01")
		}
	}

	if len(v) == 0 {
		return nil
	}
	return errs.Validation("Product validation failed", v)
}

// ProductWarnings applies the business rules that are logged rather than enforced.
func ProductWarnings(in *domain.ProductInput) []string {
	var warnings []string

	if in.Stock != nil && *in.Stock == 0 {
		warnings = append(warnings, "Product is out of stock")
	}
	if in.Discount != nil && *in.Discount > highDiscount {
		warnings = append(warnings, "High discount detected (>50%)")
	}
	if in.Price != nil && *in.Price > 0 && *in.Price < lowPrice {
		warnings = append(warnings, "Very low price detected (<$1)")
	}

	return warnings
}

// SanitizeProductData trims text fields, rounds money to cents and floors the stock.
func SanitizeProductData(in domain.ProductInput) domain.ProductInput {
	out := in

	out.Title = trimmed(in.Title)
	out.Description = trimmed(in.Description)
	out.AIDescription = trimmed(in.AIDescription)

	if in.Price != nil {
		price := roundCents(*in.Price)
		out.Price = &price
	}
	if in.Discount != nil {
		discount := roundCents(*in.Discount)
		out.Discount = &discount
	}
	if in.Stock != nil {
		stock := math.Floor(*in.Stock)
		out.Stock = &stock
	}

	return out
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

func present(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && !bytes.Equal(t, []byte("null"))
}

func isJSONObject(raw json.RawMessage) bool {
	var obj map[string]interface{}
	return json.Unmarshal(raw, &obj) == nil
}
