package http

import (
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/service"
	"ecommerce-api/pkg/validator"
)

// Field rule tables applied to the "data" object of write requests. Update tables never
// require a field.
var (
	productCreateRules = validator.RuleSet{
		validator.Required("title", validator.LengthBetween(3, 100)),
		validator.Required("description", validator.LengthBetween(10, 2000)),
		validator.Required("price", validator.Between(0.01, 999999.99)),
		validator.Required("stock", validator.Between(0, 99999)),
		validator.Optional("discount", validator.Between(0, 100)),
		validator.Optional("sizes", validator.OneOf(service.ProductSizes...)),
		validator.Optional("gender", validator.OneOf("men", "women", "unisex")),
		validator.Optional("images", validator.ItemsBetween(1, 10)),
	}
	productUpdateRules = productCreateRules.Partial()

	cartCreateRules = validator.RuleSet{
		validator.Required("sessionId", validator.LengthBetween(10, 100)),
		validator.Required("items", validator.MinItems(1)),
	}
	cartUpdateRules = validator.RuleSet{
		validator.Optional("items", validator.MinItems(1)),
	}

	orderCreateRules = validator.RuleSet{
		validator.Required("orderNumber", validator.LengthBetween(8, 20)),
		validator.Required("totalAmount", validator.Between(0.01, 999999.99)),
		validator.Required("items", validator.MinItems(1)),
		validator.Optional("orderStatus", validator.OneOf(orderStatuses()...)),
		validator.Optional("paymentStatus", validator.OneOf(paymentStatuses()...)),
	}
	orderUpdateRules = validator.RuleSet{
		validator.Optional("totalAmount", validator.Between(0.01, 999999.99)),
		validator.Optional("orderStatus", validator.OneOf(orderStatuses()...)),
		validator.Optional("paymentStatus", validator.OneOf(paymentStatuses()...)),
	}

	addressCreateRules = validator.RuleSet{
		validator.Required("street", validator.LengthBetween(5, 200)),
		validator.Required("city", validator.LengthBetween(2, 100)),
		validator.Required("postalCode", validator.LengthBetween(5, 10)),
		validator.Required("country", validator.LengthBetween(2, 50)),
	}
	addressUpdateRules = addressCreateRules.Partial()

	reviewCreateRules = validator.RuleSet{
		validator.Required("rating", validator.Between(1, 5)),
		validator.Optional("comment", validator.LengthBetween(10, 1000)),
	}
	reviewUpdateRules = reviewCreateRules.Partial()

	cartItemRules = validator.RuleSet{
		validator.Required("product"),
		validator.Required("quantity", validator.Between(1, service.MaxCartItemQuantity)),
		validator.Required("size", validator.OneOf(service.CartSizes...)),
	}
)

func orderStatuses() []string {
	out := make([]string, len(domain.OrderStatuses))
	for i, s := range domain.OrderStatuses {
		out[i] = string(s)
	}
	return out
}

func paymentStatuses() []string {
	out := make([]string, len(domain.PaymentStatuses))
	for i, s := range domain.PaymentStatuses {
		out[i] = string(s)
	}
	return out
}
