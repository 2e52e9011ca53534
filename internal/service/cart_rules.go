package service

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/errs"
	"ecommerce-api/pkg/validator"

	"github.com/oklog/ulid/v2"
)

const (
	MaxCartItems        = 20
	MaxCartItemQuantity = 99

	minSessionIDLength = 10
	maxSessionIDLength = 100
	minColorLength     = 2
	cartLimitWarnAt    = 18
	largeQuantity      = 50
)

// CartSizes lists the sizes a cart line may carry
var CartSizes = []string{"XS", "S", "M", "L", "XL", "XXL", "XXXL"}

var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidateCartData checks the semantic rules of a cart payload. Only present fields are
// checked. Lines sharing product, size and color are rejected, never merged.
func ValidateCartData(in *domain.CartInput, action Action) error {
	v := validator.Violations{}

	if in.SessionID == nil && action == ActionCreate {
		v.Add("sessionId", "Session ID is required")
	}
	if in.SessionID != nil {
		id := *in.SessionID
		if len(id) < minSessionIDLength {
			v.Add("sessionId", "Session ID must be at least 10 characters")
		}
		if len(id) > maxSessionIDLength {
			v.Add("sessionId", "Session ID must not exceed 100 characters")
		}
		if !identifierPattern.MatchString(id) {
			v.Add("sessionId", "Session ID must contain only letters, numbers, and dashes")
		}
	}

	if in.Items != nil {
		if len(in.Items) > MaxCartItems {
			v.Add("items", "Cart cannot contain more than 20 items")
		}
		for i, item := range in.Items {
			for _, msg := range cartItemProblems(item) {
				v.Add("items", fmt.Sprintf("Item %d: %s", i+1, msg))
			}
		}
		if hasDuplicateLines(in.Items) {
			v.Add("items", "Cart contains duplicate items")
		}
	}

	if len(v) == 0 {
		return nil
	}
	return errs.Validation("Cart validation failed", v)
}

func cartItemProblems(item domain.CartItem) []string {
	var problems []string
	if item.Quantity < 1 {
		problems = append(problems, "Quantity must be at least 1")
	}
	if item.Quantity > MaxCartItemQuantity {
		problems = append(problems, "Quantity cannot exceed 99")
	}
	if item.Size == "" {
		problems = append(problems, "Size is required")
	} else if !slices.Contains(CartSizes, item.Size) {
		problems = append(problems, "Invalid size")
	}
	if len(strings.TrimSpace(item.Color)) < minColorLength {
		problems = append(problems, "Color must be at least 2 characters")
	}
	return problems
}

func hasDuplicateLines(items []domain.CartItem) bool {
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		key := item.Key()
		if _, ok := seen[key]; ok {
			return true
		}
		seen[key] = struct{}{}
	}
	return false
}

// ValidateCartItemAddition checks that newItem can be added to a cart holding items.
func ValidateCartItemAddition(items []domain.CartItem, newItem domain.CartItem) error {
	v := validator.Violations{}

	existing := findLine(items, newItem.Key())
	if existing < 0 && len(items) >= MaxCartItems {
		v.Add("items", "Cart is full (maximum 20 items)")
	}
	if existing >= 0 && items[existing].Quantity+newItem.Quantity > MaxCartItemQuantity {
		v.Add("quantity", "Total quantity for this item cannot exceed 99")
	}
	if newItem.Quantity > MaxCartItemQuantity {
		v.Add("quantity", "Item quantity cannot exceed 99")
	}

	if len(v) == 0 {
		return nil
	}
	return errs.BusinessLogic("Cart item validation failed", v)
}

// MergeCartItems folds incoming lines into existing ones, summing the quantity of lines
// with the same key and capping it at 99. Neither argument is modified.
func MergeCartItems(existing, incoming []domain.CartItem) []domain.CartItem {
	merged := make([]domain.CartItem, len(existing), len(existing)+len(incoming))
	copy(merged, existing)

	for _, item := range incoming {
		if i := findLine(merged, item.Key()); i >= 0 {
			merged[i].Quantity += item.Quantity
			if merged[i].Quantity > MaxCartItemQuantity {
				merged[i].Quantity = MaxCartItemQuantity
			}
			continue
		}
		merged = append(merged, item)
	}

	return merged
}

func findLine(items []domain.CartItem, key string) int {
	for i, item := range items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// SanitizeCartData normalizes the session id and item colors. A missing quantity becomes 1.
func SanitizeCartData(in domain.CartInput) domain.CartInput {
	out := in

	if in.SessionID != nil {
		id := strings.ToUpper(strings.TrimSpace(*in.SessionID))
		out.SessionID = &id
	}

	if in.Items != nil {
		out.Items = make([]domain.CartItem, len(in.Items))
		for i, item := range in.Items {
			item.Color = strings.TrimSpace(item.Color)
			if item.Quantity == 0 {
				item.Quantity = 1
			}
			out.Items[i] = item
		}
	}

	return out
}

// CartWarnings lists conditions worth logging that do not block the request.
func CartWarnings(in domain.CartInput) []string {
	var warnings []string

	if in.Items != nil && len(in.Items) == 0 {
		warnings = append(warnings, "Cart is empty")
	}
	if len(in.Items) >= cartLimitWarnAt && len(in.Items) <= MaxCartItems {
		warnings = append(warnings, fmt.Sprintf("Cart is close to the %d item limit", MaxCartItems))
	}
	for i, item := range in.Items {
		if item.Quantity >= largeQuantity {
			warnings = append(warnings, fmt.Sprintf("Item %d: Unusually large quantity (%d)", i+1, item.Quantity))
		}
	}

	return warnings
}

// GenerateSessionID returns a new guest cart session id
func GenerateSessionID() string {
	return "CART-" + ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// CalculateCartTotal sums price times quantity over the lines
func CalculateCartTotal(items []domain.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return roundCents(total)
}
