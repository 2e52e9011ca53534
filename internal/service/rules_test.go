package service

import (
	"encoding/json"
	"strings"
	"testing"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/errs"
	"ecommerce-api/pkg/imaging"
	"ecommerce-api/pkg/validator"
	"ecommerce-api/tests/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

// violations extracts the per-field messages of a validation or business logic error
func violations(t *testing.T, err error) validator.Violations {
	t.Helper()
	appErr, ok := errs.As(err)
	require.True(t, ok, "expected an AppError, got %v", err)
	v, ok := appErr.Details().(validator.Violations)
	require.True(t, ok, "expected Violations details, got %T", appErr.Details())
	return v
}

func TestValidateCartData(t *testing.T) {
	item := func(product uint, size, color string, qty int) domain.CartItem {
		return domain.CartItem{Product: domain.ProductRef(product), Size: size, Color: color, Quantity: qty}
	}

	tests := []struct {
		name   string
		input  *domain.CartInput
		action Action
		want   map[string][]string
	}{
		{
			name:   "valid cart",
			input:  fixtures.ValidCartInput(),
			action: ActionCreate,
		},
		{
			name:   "missing session on create",
			input:  &domain.CartInput{Items: []domain.CartItem{item(1, "M", "red", 1)}},
			action: ActionCreate,
			want:   map[string][]string{"sessionId": {"Session ID is required"}},
		},
		{
			name:   "bad session id",
			input:  &domain.CartInput{SessionID: ptr("abc_def")},
			action: ActionUpdate,
			want: map[string][]string{"sessionId": {
				"Session ID must be at least 10 characters",
				"Session ID must contain only letters, numbers, and dashes",
			}},
		},
		{
			name: "item problems",
			input: &domain.CartInput{Items: []domain.CartItem{
				item(1, "", "r", 0),
				item(2, "XXS", "blue", 100),
			}},
			action: ActionUpdate,
			want: map[string][]string{"items": {
				"Item 1: Quantity must be at least 1",
				"Item 1: Size is required",
				"Item 1: Color must be at least 2 characters",
				"Item 2: Quantity cannot exceed 99",
				"Item 2: Invalid size",
			}},
		},
		{
			name: "duplicate lines are rejected",
			input: &domain.CartInput{Items: []domain.CartItem{
				item(1, "M", "red", 1),
				item(1, "M", "red", 2),
			}},
			action: ActionUpdate,
			want:   map[string][]string{"items": {"Cart contains duplicate items"}},
		},
		{
			name: "colors differing only in whitespace are duplicates",
			input: &domain.CartInput{Items: []domain.CartItem{
				item(1, "M", "Red", 1),
				item(1, "M", " Red ", 1),
			}},
			action: ActionUpdate,
			want:   map[string][]string{"items": {"Cart contains duplicate items"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCartData(tt.input, tt.action)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			kind, _ := errs.KindOf(err)
			assert.Equal(t, errs.KindValidation, kind)
			assert.Equal(t, validator.Violations(tt.want), violations(t, err))
		})
	}

	t.Run("too many items", func(t *testing.T) {
		items := make([]domain.CartItem, MaxCartItems+1)
		for i := range items {
			items[i] = item(uint(i+1), "M", "red", 1)
		}
		err := ValidateCartData(&domain.CartInput{Items: items}, ActionUpdate)
		assert.Contains(t, violations(t, err)["items"], "Cart cannot contain more than 20 items")
	})
}

func TestValidateCartItemAddition(t *testing.T) {
	existing := []domain.CartItem{{Product: 1, Size: "M", Color: "red", Quantity: 90}}

	assert.NoError(t, ValidateCartItemAddition(existing, domain.CartItem{Product: 1, Size: "M", Color: "red", Quantity: 9}))

	err := ValidateCartItemAddition(existing, domain.CartItem{Product: 1, Size: "M", Color: "red", Quantity: 10})
	kind, _ := errs.KindOf(err)
	assert.Equal(t, errs.KindBusinessLogic, kind)
	assert.Equal(t, []string{"Total quantity for this item cannot exceed 99"}, violations(t, err)["quantity"])

	full := make([]domain.CartItem, MaxCartItems)
	for i := range full {
		full[i] = domain.CartItem{Product: domain.ProductRef(i + 1), Size: "S", Color: "red", Quantity: 1}
	}
	err = ValidateCartItemAddition(full, domain.CartItem{Product: 99, Size: "S", Color: "red", Quantity: 1})
	assert.Equal(t, []string{"Cart is full (maximum 20 items)"}, violations(t, err)["items"])

	// a line already in a full cart only grows
	assert.NoError(t, ValidateCartItemAddition(full, domain.CartItem{Product: 1, Size: "S", Color: "red", Quantity: 1}))
}

func TestMergeCartItems(t *testing.T) {
	existing := []domain.CartItem{
		{Product: 1, Size: "M", Color: "red", Quantity: 60},
		{Product: 2, Size: "L", Color: "blue", Quantity: 1},
	}
	incoming := []domain.CartItem{
		{Product: 1, Size: "M", Color: "red", Quantity: 60},
		{Product: 3, Size: "S", Color: "green", Quantity: 2},
	}

	merged := MergeCartItems(existing, incoming)

	require.Len(t, merged, 3)
	assert.Equal(t, MaxCartItemQuantity, merged[0].Quantity)
	assert.Equal(t, 1, merged[1].Quantity)
	assert.Equal(t, domain.ProductRef(3), merged[2].Product)
	assert.Equal(t, 60, existing[0].Quantity, "inputs are not modified")
}

func TestSanitizeCartData(t *testing.T) {
	in := domain.CartInput{
		SessionID: ptr("  cart-abc-123 "),
		Items:     []domain.CartItem{{Product: 1, Size: "M", Color: " red ", Quantity: 0}},
	}

	once := SanitizeCartData(in)
	assert.Equal(t, "CART-ABC-123", *once.SessionID)
	assert.Equal(t, "red", once.Items[0].Color)
	assert.Equal(t, 1, once.Items[0].Quantity)
	assert.Equal(t, " red ", in.Items[0].Color, "input is not modified")

	assert.Equal(t, once, SanitizeCartData(once))
}

func TestCartHelpers(t *testing.T) {
	id := GenerateSessionID()
	assert.True(t, strings.HasPrefix(id, "CART-"))
	assert.NoError(t, ValidateCartData(&domain.CartInput{SessionID: &id}, ActionCreate))
	assert.NotEqual(t, id, GenerateSessionID())

	assert.Equal(t, 119.48, CalculateCartTotal(fixtures.ValidCartInput().Items))
	assert.Equal(t, 0.0, CalculateCartTotal(nil))

	assert.Equal(t, []string{"Cart is empty"}, CartWarnings(domain.CartInput{Items: []domain.CartItem{}}))
	assert.Empty(t, CartWarnings(*fixtures.ValidCartInput()))
}

func TestValidateOrderData(t *testing.T) {
	tests := []struct {
		name   string
		input  *domain.OrderInput
		action Action
		want   map[string][]string
	}{
		{
			name:   "valid order",
			input:  fixtures.ValidOrderInput(),
			action: ActionCreate,
		},
		{
			name: "invalid enums and amounts",
			input: &domain.OrderInput{
				OrderStatus:   ptr(domain.OrderStatus("lost")),
				PaymentStatus: ptr(domain.PaymentStatus("maybe")),
				TotalAmount:   ptr(0.0),
			},
			action: ActionUpdate,
			want: map[string][]string{
				"orderStatus":   {"Invalid order status"},
				"paymentStatus": {"Invalid payment status"},
				"totalAmount":   {"Total amount must be at least $0.01"},
			},
		},
		{
			name:   "tracking and order numbers",
			input:  &domain.OrderInput{TrackingNumber: ptr("AB-1"), OrderNumber: ptr("ORD_1")},
			action: ActionUpdate,
			want: map[string][]string{
				"trackingNumber": {
					"Tracking number must be at least 5 characters",
					"Tracking number must contain only letters and numbers",
				},
				"orderNumber": {
					"Order number must be at least 8 characters",
					"Order number must contain only letters, numbers, and dashes",
				},
			},
		},
		{
			name:   "create needs items",
			input:  &domain.OrderInput{OrderNumber: ptr("ORD-12345678"), TotalAmount: ptr(10.0)},
			action: ActionCreate,
			want:   map[string][]string{"items": {"Order must contain at least one item"}},
		},
		{
			name: "item bounds",
			input: &domain.OrderInput{Items: []domain.OrderItem{
				{Product: 1, Quantity: 1000},
			}},
			action: ActionUpdate,
			want: map[string][]string{"items": {
				"Item 1: Quantity cannot exceed 999",
				"Item 1: Size is required",
			}},
		},
		{
			name: "cross-field rules",
			input: &domain.OrderInput{
				OrderStatus:   ptr(domain.OrderStatusDelivered),
				PaymentStatus: ptr(domain.PaymentStatusPaid),
			},
			action: ActionUpdate,
			want:   map[string][]string{"trackingNumber": {"Delivered orders must have a tracking number"}},
		},
		{
			name: "paid but pending",
			input: &domain.OrderInput{
				OrderStatus:   ptr(domain.OrderStatusPending),
				PaymentStatus: ptr(domain.PaymentStatusPaid),
			},
			action: ActionUpdate,
			want:   map[string][]string{"orderStatus": {"Paid orders cannot have pending status"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateOrderData(tt.input, tt.action)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, validator.Violations(tt.want), violations(t, err))
		})
	}
}

func TestValidateOrderWorkflow(t *testing.T) {
	type transition struct{ from, to domain.OrderStatus }

	allowed := map[transition]bool{
		{domain.OrderStatusPending, domain.OrderStatusConfirmed}:    true,
		{domain.OrderStatusPending, domain.OrderStatusCancelled}:    true,
		{domain.OrderStatusConfirmed, domain.OrderStatusProcessing}: true,
		{domain.OrderStatusConfirmed, domain.OrderStatusCancelled}:  true,
		{domain.OrderStatusProcessing, domain.OrderStatusShipped}:   true,
		{domain.OrderStatusProcessing, domain.OrderStatusCancelled}: true,
		{domain.OrderStatusShipped, domain.OrderStatusDelivered}:    true,
	}

	// the workflow table and the expectations above must describe the same graph
	for from, targets := range orderTransitions {
		for _, to := range targets {
			assert.True(t, allowed[transition{from, to}], "unexpected transition %s->%s", from, to)
		}
	}

	for _, from := range domain.OrderStatuses {
		for _, to := range domain.OrderStatuses {
			tr := transition{from, to}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				err := ValidateOrderWorkflow(tr.from, tr.to)
				if allowed[tr] {
					assert.NoError(t, err)
					return
				}
				appErr, ok := errs.As(err)
				require.True(t, ok)
				assert.Equal(t, errs.KindBusinessLogic, appErr.Kind())
				assert.Equal(t, "Invalid status transition from "+string(from)+" to "+string(to), appErr.Message())
			})
		}
	}

	t.Run("delivered cannot go back to processing", func(t *testing.T) {
		err := ValidateOrderWorkflow(domain.OrderStatusDelivered, domain.OrderStatusProcessing)
		appErr, ok := errs.As(err)
		require.True(t, ok)
		assert.Equal(t, map[string]interface{}{
			"from":    "delivered",
			"to":      "processing",
			"allowed": []domain.OrderStatus{},
		}, appErr.Details())
	})
}

func TestSanitizeOrderData(t *testing.T) {
	in := domain.OrderInput{
		OrderNumber:    ptr(" ord-abc12345 "),
		TrackingNumber: ptr("1z999aa1"),
		TotalAmount:    ptr(10.456),
	}

	once := SanitizeOrderData(in)
	assert.Equal(t, "ORD-ABC12345", *once.OrderNumber)
	assert.Equal(t, "1Z999AA1", *once.TrackingNumber)
	assert.Equal(t, 10.46, *once.TotalAmount)

	assert.Equal(t, once, SanitizeOrderData(once))
}

func TestOrderHelpers(t *testing.T) {
	number := GenerateOrderNumber()
	assert.True(t, strings.HasPrefix(number, "ORD-"))
	assert.LessOrEqual(t, len(number), 20)
	assert.NoError(t, ValidateOrderData(&domain.OrderInput{OrderNumber: &number}, ActionUpdate))

	assert.Equal(t, 119.48, CalculateOrderTotal(fixtures.ValidOrderInput().Items))

	warnings := OrderWarnings(domain.OrderInput{
		TotalAmount: ptr(20000.0),
		Items:       []domain.OrderItem{{Product: 1, Quantity: 1, Size: "M", Price: 10}},
	})
	assert.Len(t, warnings, 2)
	assert.Contains(t, warnings, "High order value detected (>$10,000)")
}

func TestValidateProductData(t *testing.T) {
	tests := []struct {
		name   string
		input  *domain.ProductInput
		action Action
		want   map[string][]string
	}{
		{
			name:   "valid product",
			input:  fixtures.ValidProductInput(),
			action: ActionCreate,
		},
		{
			name:   "create needs the basics",
			input:  &domain.ProductInput{},
			action: ActionCreate,
			want: map[string][]string{
				"title":       {"Title is required"},
				"description": {"Description is required"},
				"price":       {"Price is required"},
			},
		},
		{
			name: "bounds",
			input: &domain.ProductInput{
				Title:       ptr("  AB  "),
				Description: ptr("Short"),
				Price:       ptr(-10.0),
				Stock:       ptr(-5.0),
				Discount:    ptr(120.0),
			},
			action: ActionUpdate,
			want: map[string][]string{
				"title":       {"Title must be at least 3 characters long"},
				"description": {"Description must be at least 10 characters long"},
				"price":       {"Price must be at least $0.01"},
				"stock":       {"Stock cannot be negative"},
				"discount":    {"Discount cannot exceed 100%"},
			},
		},
		{
			name: "sizes and images",
			input: &domain.ProductInput{
				Sizes:  domain.StringList{"M", "huge"},
				Images: []imaging.MediaRecord{},
			},
			action: ActionUpdate,
			want: map[string][]string{
				"sizes":  {"Size must be one of: s, m, l, xl, xxl"},
				"images": {"At least one image is required"},
			},
		},
		{
			name: "ai fields",
			input: &domain.ProductInput{
				AITags:            json.RawMessage(`["a"]`),
				AIRecommendations: json.RawMessage(`"text"`),
				VectorEmbedding:   json.RawMessage(`[]`),
				AIDescription:     ptr(strings.Repeat("x", 1001)),
			},
			action: ActionUpdate,
			want: map[string][]string{
				"aiTags":            {"AI Tags must be a valid JSON object"},
				"aiRecommendations": {"AI Recommendations must be a valid JSON object"},
				"vectorEmbedding":   {"Vector Embedding cannot be empty"},
				"aiDescription":     {"AI Description must not exceed 1000 characters"},
			},
		},
		{
			name:   "embedding must be an array",
			input:  &domain.ProductInput{VectorEmbedding: json.RawMessage(`{"a":1}`)},
			action: ActionUpdate,
			want:   map[string][]string{"vectorEmbedding": {"Vector Embedding must be an array"}},
		},
		{
			name:   "null ai fields are ignored",
			input:  &domain.ProductInput{AITags: json.RawMessage(`null`)},
			action: ActionUpdate,
		},
		{
			name:   "discounted price floor",
			input:  &domain.ProductInput{Price: ptr(0.01), Discount: ptr(60.0)},
			action: ActionUpdate,
			want:   map[string][]string{"discount": {"Discounted price cannot be less than $0.01"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProductData(tt.input, tt.action)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, validator.Violations(tt.want), violations(t, err))
		})
	}
}

func TestProductWarnings(t *testing.T) {
	warnings := ProductWarnings(&domain.ProductInput{
		Stock:    ptr(0.0),
		Discount: ptr(60.0),
		Price:    ptr(0.5),
	})

	assert.Equal(t, []string{
		"Product is out of stock",
		"High discount detected (>50%)",
		"Very low price detected (<$1)",
	}, warnings)
	assert.Empty(t, ProductWarnings(fixtures.ValidProductInput()))
}

func TestSanitizeProductData(t *testing.T) {
	in := domain.ProductInput{
		Title:         ptr("  Linen Shirt "),
		Description:   ptr(" Breathable linen shirt "),
		Price:         ptr(19.999),
		Discount:      ptr(12.346),
		Stock:         ptr(7.9),
		AIDescription: ptr(" generated "),
	}

	once := SanitizeProductData(in)
	assert.Equal(t, "Linen Shirt", *once.Title)
	assert.Equal(t, "Breathable linen shirt", *once.Description)
	assert.Equal(t, 20.0, *once.Price)
	assert.Equal(t, 12.35, *once.Discount)
	assert.Equal(t, 7.0, *once.Stock)
	assert.Equal(t, "generated", *once.AIDescription)
	assert.Equal(t, "  Linen Shirt ", *in.Title, "input is not modified")

	assert.Equal(t, once, SanitizeProductData(once))
}
