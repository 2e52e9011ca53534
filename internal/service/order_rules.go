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
	MaxOrderItems        = 50
	MaxOrderItemQuantity = 999

	minOrderAmount       = 0.01
	maxOrderAmount       = 999999.99
	minTrackingLength    = 5
	maxTrackingLength    = 50
	minOrderNumberLength = 8
	maxOrderNumberLength = 20
	highOrderValue       = 10000
)

var trackingPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// orderTransitions is the order status workflow. Delivered and cancelled are terminal.
var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:    {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed:  {domain.OrderStatusProcessing, domain.OrderStatusCancelled},
	domain.OrderStatusProcessing: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:    {domain.OrderStatusDelivered},
	domain.OrderStatusDelivered:  {},
	domain.OrderStatusCancelled:  {},
}

// ValidateOrderData checks the semantic rules of an order payload. Only present fields
// are checked, except that a new order must carry items.
func ValidateOrderData(in *domain.OrderInput, action Action) error {
	v := validator.Violations{}

	if in.OrderStatus != nil && !slices.Contains(domain.OrderStatuses, *in.OrderStatus) {
		v.Add("orderStatus", "Invalid order status")
	}
	if in.PaymentStatus != nil && !slices.Contains(domain.PaymentStatuses, *in.PaymentStatus) {
		v.Add("paymentStatus", "Invalid payment status")
	}

	if in.TotalAmount != nil {
		if *in.TotalAmount < minOrderAmount {
			v.Add("totalAmount", "Total amount must be at least $0.01")
		}
		if *in.TotalAmount > maxOrderAmount {
			v.Add("totalAmount", "Total amount must not exceed $999,999.99")
		}
	}

	if in.TrackingNumber != nil && *in.TrackingNumber != "" {
		tracking := *in.TrackingNumber
		if len(tracking) < minTrackingLength {
			v.Add("trackingNumber", "Tracking number must be at least 5 characters")
		}
		if len(tracking) > maxTrackingLength {
			v.Add("trackingNumber", "Tracking number must not exceed 50 characters")
		}
		if !trackingPattern.MatchString(tracking) {
			v.Add("trackingNumber", "Tracking number must contain only letters and numbers")
		}
	}

	if in.OrderNumber != nil {
		number := *in.OrderNumber
		if len(number) < minOrderNumberLength {
			v.Add("orderNumber", "Order number must be at least 8 characters")
		}
		if len(number) > maxOrderNumberLength {
			v.Add("orderNumber", "Order number must not exceed 20 characters")
		}
		if !identifierPattern.MatchString(number) {
			v.Add("orderNumber", "Order number must contain only letters, numbers, and dashes")
		}
	}

	if in.Items != nil || action == ActionCreate {
		if len(in.Items) == 0 {
			v.Add("items", "Order must contain at least one item")
		}
		if len(in.Items) > MaxOrderItems {
			v.Add("items", "Order cannot contain more than 50 items")
		}
		for i, item := range in.Items {
			if item.Quantity < 1 {
				v.Add("items", fmt.Sprintf("Item %d: Quantity must be at least 1", i+1))
			}
			if item.Quantity > MaxOrderItemQuantity {
				v.Add("items", fmt.Sprintf("Item %d: Quantity cannot exceed 999", i+1))
			}
			if item.Size == "" {
				v.Add("items", fmt.Sprintf("Item %d: Size is required", i+1))
			}
		}
	}

	if in.OrderStatus != nil && *in.OrderStatus == domain.OrderStatusDelivered &&
		(in.TrackingNumber == nil || *in.TrackingNumber == "") {
		v.Add("trackingNumber", "Delivered orders must have a tracking number")
	}
	if in.PaymentStatus != nil && *in.PaymentStatus == domain.PaymentStatusPaid &&
		in.OrderStatus != nil && *in.OrderStatus == domain.OrderStatusPending {
		v.Add("orderStatus", "Paid orders cannot have pending status")
	}

	if len(v) == 0 {
		return nil
	}
	return errs.Validation("Order validation failed", v)
}

// ValidateOrderWorkflow reports whether an order may move from current to next.
func ValidateOrderWorkflow(current, next domain.OrderStatus) error {
	if slices.Contains(orderTransitions[current], next) {
		return nil
	}
	return errs.BusinessLogic(
		fmt.Sprintf("Invalid status transition from %s to %s", current, next),
		map[string]interface{}{
			"from":    string(current),
			"to":      string(next),
			"allowed": orderTransitions[current],
		},
	)
}

// SanitizeOrderData upper-cases the order and tracking numbers and rounds the total to cents.
func SanitizeOrderData(in domain.OrderInput) domain.OrderInput {
	out := in

	if in.TrackingNumber != nil {
		tracking := strings.ToUpper(strings.TrimSpace(*in.TrackingNumber))
		out.TrackingNumber = &tracking
	}
	if in.OrderNumber != nil {
		number := strings.ToUpper(strings.TrimSpace(*in.OrderNumber))
		out.OrderNumber = &number
	}
	if in.TotalAmount != nil {
		total := roundCents(*in.TotalAmount)
		out.TotalAmount = &total
	}

	return out
}

// OrderWarnings lists conditions worth logging that do not block the request.
func OrderWarnings(in domain.OrderInput) []string {
	var warnings []string

	if in.TotalAmount != nil && len(in.Items) > 0 {
		if computed := CalculateOrderTotal(in.Items); computed > 0 && computed != roundCents(*in.TotalAmount) {
			warnings = append(warnings, fmt.Sprintf("Total amount %.2f does not match item total %.2f", *in.TotalAmount, computed))
		}
	}
	if in.TotalAmount != nil && *in.TotalAmount > highOrderValue {
		warnings = append(warnings, "High order value detected (>$10,000)")
	}
	if in.OrderStatus != nil && *in.OrderStatus == domain.OrderStatusCancelled &&
		in.PaymentStatus != nil && *in.PaymentStatus == domain.PaymentStatusPaid {
		warnings = append(warnings, "Cancelled order is still marked as paid")
	}

	return warnings
}

// GenerateOrderNumber returns a new order number: ORD- followed by the ULID time part
// and five random characters.
func GenerateOrderNumber() string {
	id := ulid.MustNew(ulid.Now(), rand.Reader).String()
	return "ORD-" + id[:10] + id[21:]
}

// CalculateOrderTotal sums price times quantity over the lines
func CalculateOrderTotal(items []domain.OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += item.Price * float64(item.Quantity)
	}
	return roundCents(total)
}

// orderSnapshot describes o as a fully populated payload so the cross-field rules can
// be checked after an update is applied.
func orderSnapshot(o *domain.Order) *domain.OrderInput {
	status := o.OrderStatus
	payment := o.PaymentStatus
	return &domain.OrderInput{
		OrderNumber:    &o.OrderNumber,
		TotalAmount:    &o.TotalAmount,
		Items:          o.Items,
		OrderStatus:    &status,
		PaymentStatus:  &payment,
		TrackingNumber: &o.TrackingNumber,
	}
}
