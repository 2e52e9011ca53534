package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every order status in workflow order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusComplete PaymentStatus = "complete"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusComplete,
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

// Order is a placed order
type Order struct {
	ID                uint          `json:"id" gorm:"primaryKey"`
	OrderNumber       string        `json:"orderNumber" gorm:"size:20;not null;uniqueIndex"`
	UserID            *uint         `json:"userId,omitempty" gorm:"index"`
	Items             []OrderItem   `json:"items" gorm:"serializer:json"`
	TotalAmount       float64       `json:"totalAmount" gorm:"not null"`
	OrderStatus       OrderStatus   `json:"orderStatus" gorm:"size:20;not null;default:pending;index"`
	PaymentStatus     PaymentStatus `json:"paymentStatus" gorm:"size:20;not null;default:pending"`
	TrackingNumber    string        `json:"trackingNumber,omitempty" gorm:"size:50"`
	ShippingAddressID *uint         `json:"shippingAddressId,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order, priced at checkout
type OrderItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
	Size     string     `json:"size"`
	Color    string     `json:"color,omitempty"`
	Price    float64    `json:"price"`
}

// OrderInput is an order payload. Nil fields were absent from the request.
type OrderInput struct {
	OrderNumber       *string        `json:"orderNumber"`
	TotalAmount       *float64       `json:"totalAmount"`
	Items             []OrderItem    `json:"items"`
	OrderStatus       *OrderStatus   `json:"orderStatus"`
	PaymentStatus     *PaymentStatus `json:"paymentStatus"`
	TrackingNumber    *string        `json:"trackingNumber"`
	ShippingAddressID *uint          `json:"shippingAddressId"`
}

// ApplyTo copies every present field onto o.
func (in *OrderInput) ApplyTo(o *Order) {
	if in.OrderNumber != nil {
		o.OrderNumber = *in.OrderNumber
	}
	if in.TotalAmount != nil {
		o.TotalAmount = *in.TotalAmount
	}
	if in.Items != nil {
		o.Items = in.Items
	}
	if in.OrderStatus != nil {
		o.OrderStatus = *in.OrderStatus
	}
	if in.PaymentStatus != nil {
		o.PaymentStatus = *in.PaymentStatus
	}
	if in.TrackingNumber != nil {
		o.TrackingNumber = *in.TrackingNumber
	}
	if in.ShippingAddressID != nil {
		id := *in.ShippingAddressID
		o.ShippingAddressID = &id
	}
}
