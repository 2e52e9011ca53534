package domain

import "time"

// Role types recognised by the permission checks
const (
	RoleTypePublic        = "public"
	RoleTypeAuthenticated = "authenticated"
	RoleTypeAdmin         = "admin"
)

// Address is a shipping or billing address
type Address struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     *uint     `json:"userId,omitempty" gorm:"index"`
	Street     string    `json:"street" gorm:"size:200;not null"`
	City       string    `json:"city" gorm:"size:100;not null"`
	PostalCode string    `json:"postalCode" gorm:"size:10;not null"`
	Country    string    `json:"country" gorm:"size:50;not null"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Address) TableName() string {
	return "addresses"
}

type AddressInput struct {
	Street     *string `json:"street"`
	City       *string `json:"city"`
	PostalCode *string `json:"postalCode"`
	Country    *string `json:"country"`
}

func (in *AddressInput) ApplyTo(a *Address) {
	if in.Street != nil {
		a.Street = *in.Street
	}
	if in.City != nil {
		a.City = *in.City
	}
	if in.PostalCode != nil {
		a.PostalCode = *in.PostalCode
	}
	if in.Country != nil {
		a.Country = *in.Country
	}
}

// Review is a customer rating of a product
type Review struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ProductID *uint     `json:"productId,omitempty" gorm:"index"`
	UserID    *uint     `json:"userId,omitempty" gorm:"index"`
	Rating    int       `json:"rating" gorm:"not null"`
	Comment   string    `json:"comment,omitempty" gorm:"size:1000"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Review) TableName() string {
	return "reviews"
}

type ReviewInput struct {
	ProductID *uint    `json:"productId"`
	Rating    *float64 `json:"rating"`
	Comment   *string  `json:"comment"`
}

func (in *ReviewInput) ApplyTo(r *Review) {
	if in.ProductID != nil {
		id := *in.ProductID
		r.ProductID = &id
	}
	if in.Rating != nil {
		r.Rating = int(*in.Rating)
	}
	if in.Comment != nil {
		r.Comment = *in.Comment
	}
}

// Permission is an action a role may perform, e.g. "api::product.product.create"
type Permission struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Action string `json:"action" gorm:"size:200;not null;uniqueIndex"`
}

func (Permission) TableName() string {
	return "permissions"
}

// Role groups permissions
type Role struct {
	ID          uint         `json:"id" gorm:"primaryKey"`
	Name        string       `json:"name" gorm:"size:100;not null;uniqueIndex"`
	Type        string       `json:"type" gorm:"size:50;not null;uniqueIndex"`
	Description string       `json:"description,omitempty" gorm:"size:255"`
	Permissions []Permission `json:"permissions,omitempty" gorm:"many2many:role_permissions"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

func (Role) TableName() string {
	return "roles"
}

// User is an account holder
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:100;not null;uniqueIndex"`
	Email     string    `json:"email" gorm:"size:255;not null;uniqueIndex"`
	RoleID    *uint     `json:"roleId,omitempty" gorm:"index"`
	Role      *Role     `json:"role,omitempty"`
	Blocked   bool      `json:"blocked"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

// ErrorReport is an archived failure forwarded by the API to the monitoring queue
type ErrorReport struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	RequestID    string    `json:"requestId" gorm:"size:64;not null;uniqueIndex"`
	ErrorName    string    `json:"errorName" gorm:"size:100"`
	ErrorMessage string    `json:"errorMessage" gorm:"type:text"`
	Method       string    `json:"method" gorm:"size:10"`
	URL          string    `json:"url" gorm:"size:2048"`
	UserAgent    string    `json:"userAgent,omitempty" gorm:"size:512"`
	IP           string    `json:"ip,omitempty" gorm:"size:64"`
	UserID       string    `json:"userId,omitempty" gorm:"size:64"`
	OccurredAt   time.Time `json:"occurredAt" gorm:"index"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (ErrorReport) TableName() string {
	return "error_reports"
}

// Models lists every persisted model for migrations
func Models() []interface{} {
	return []interface{}{
		&Category{},
		&Product{},
		&Cart{},
		&Order{},
		&Address{},
		&Review{},
		&Permission{},
		&Role{},
		&User{},
		&ErrorReport{},
	}
}
