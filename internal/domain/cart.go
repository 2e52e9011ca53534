package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cart is a shopping cart owned by a guest session or a user
type Cart struct {
	ID        uint       `json:"id" gorm:"primaryKey"`
	SessionID string     `json:"sessionId" gorm:"size:100;not null;uniqueIndex"`
	UserID    *uint      `json:"userId,omitempty" gorm:"index"`
	Items     []CartItem `json:"items" gorm:"serializer:json"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one line of a cart
type CartItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Size     string     `json:"size"`
	Color    string     `json:"color,omitempty"`
	Price    float64    `json:"price,omitempty"`
}

// Key identifies the line by product, size and color. Surrounding whitespace in the
// color does not make a distinct line.
func (i CartItem) Key() string {
	return fmt.Sprintf("%d-%s-%s", i.Product, i.Size, strings.TrimSpace(i.Color))
}

// CartInput is a cart payload. Nil fields were absent from the request.
type CartInput struct {
	SessionID *string    `json:"sessionId"`
	Items     []CartItem `json:"items"`
}

// ApplyTo copies every present field onto c.
func (in *CartInput) ApplyTo(c *Cart) {
	if in.SessionID != nil {
		c.SessionID = *in.SessionID
	}
	if in.Items != nil {
		c.Items = in.Items
	}
}

// ProductRef references a product by id. It decodes from 12, "12" or {"id": 12}.
type ProductRef uint

func (r ProductRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(uint(r))
}

func (r *ProductRef) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}

	if strings.HasPrefix(raw, "{") {
		var obj struct {
			ID ProductRef `json:"id"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		*r = obj.ID
		return nil
	}

	id, err := strconv.ParseUint(strings.Trim(raw, `"`), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid product reference %s", raw)
	}
	*r = ProductRef(id)
	return nil
}
