package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"ecommerce-api/internal/domain"
	"ecommerce-api/pkg/database"
	"ecommerce-api/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

// StoreTestSuite runs the repositories against SQLite in memory
type StoreTestSuite struct {
	suite.Suite
	conn     *database.Connection
	products *GormStore[domain.Product]
	carts    *GormStore[domain.Cart]
	roles    *GormRoleRepository
	reports  *GormReportArchive
	ctx      context.Context
}

func TestStoreTestSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

// SetupTest opens a fresh database for each test
func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()

	conn, err := database.OpenMemory(&logger.Logger{Logger: zap.NewNop()})
	s.Require().NoError(err)
	s.Require().NoError(conn.Migrate(domain.Models()...))

	s.conn = conn
	s.products = NewStore[domain.Product](conn.DB, "product")
	s.carts = NewStore[domain.Cart](conn.DB, "cart")
	s.roles = NewRoleRepository(conn.DB)
	s.reports = NewReportArchive(conn.DB)
}

func (s *StoreTestSuite) TearDownTest() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
}

func (s *StoreTestSuite) createProduct(title string, published bool) *domain.Product {
	product := &domain.Product{
		Title:       title,
		Description: "A sturdy everyday product",
		Price:       19.99,
		Stock:       4,
		Sizes:       domain.StringList{"m", "l"},
	}
	if published {
		now := time.Now().UTC()
		product.PublishedAt = &now
	}
	s.Require().NoError(s.products.Create(s.ctx, product))
	return product
}

func (s *StoreTestSuite) TestCreateAndFindOne() {
	created := s.createProduct("Linen Shirt", true)
	s.NotZero(created.ID)

	found, err := s.products.FindOne(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("Linen Shirt", found.Title)
	s.Equal(domain.StringList{"m", "l"}, found.Sizes)
}

func (s *StoreTestSuite) TestFindOne_NotFound() {
	_, err := s.products.FindOne(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestSave() {
	product := s.createProduct("Wool Socks", false)
	product.Stock = 0

	s.Require().NoError(s.products.Save(s.ctx, product))

	found, err := s.products.FindOne(s.ctx, product.ID)
	s.Require().NoError(err)
	s.Equal(0, found.Stock)
}

func (s *StoreTestSuite) TestDelete() {
	product := s.createProduct("Scarf", true)

	s.Require().NoError(s.products.Delete(s.ctx, product.ID))
	s.ErrorIs(s.products.Delete(s.ctx, product.ID), ErrNotFound)
}

func (s *StoreTestSuite) TestFind_PaginatesAndFilters() {
	for _, title := range []string{"Cap", "Belt", "Boots"} {
		s.createProduct(title, true)
	}
	s.createProduct("Draft Jacket", false)

	page, err := s.products.Find(s.ctx, Query{
		Page:       1,
		PageSize:   2,
		Conditions: []Condition{Where("published_at IS NOT NULL")},
		Order:      "title ASC",
	})
	s.Require().NoError(err)

	s.Equal(int64(3), page.Total)
	s.Equal(2, page.PageCount())
	s.Require().Len(page.Items, 2)
	s.Equal("Belt", page.Items[0].Title)
	s.Equal("Boots", page.Items[1].Title)
}

func (s *StoreTestSuite) TestCreate_DuplicateSession() {
	s.Require().NoError(s.carts.Create(s.ctx, &domain.Cart{SessionID: "CART-ABCDEF1234"}))

	err := s.carts.Create(s.ctx, &domain.Cart{SessionID: "CART-ABCDEF1234"})
	s.ErrorIs(err, ErrAlreadyExists)
	s.True(database.IsDuplicate(err))
}

func (s *StoreTestSuite) TestFindBy() {
	s.Require().NoError(s.carts.Create(s.ctx, &domain.Cart{
		SessionID: "CART-SESSION-01",
		Items:     []domain.CartItem{{Product: 1, Quantity: 2, Size: "M"}},
	}))

	cart, err := s.carts.FindBy(s.ctx, Where("session_id = ?", "CART-SESSION-01"))
	s.Require().NoError(err)
	s.Require().Len(cart.Items, 1)
	s.Equal(2, cart.Items[0].Quantity)

	_, err = s.carts.FindBy(s.ctx, Where("session_id = ?", "missing"))
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestTransaction_RollsBack() {
	boom := errors.New("boom")

	err := s.carts.Transaction(s.ctx, func(tx Store[domain.Cart]) error {
		if err := tx.Create(s.ctx, &domain.Cart{SessionID: "CART-ROLLBACK"}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	_, err = s.carts.FindBy(s.ctx, Where("session_id = ?", "CART-ROLLBACK"))
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestRoles() {
	role := &domain.Role{
		Name: "Editor",
		Type: "editor",
		Permissions: []domain.Permission{
			{Action: "api::product.product.create"},
			{Action: "api::product.product.update"},
		},
	}
	s.Require().NoError(s.roles.CreateRole(s.ctx, role))

	user := &domain.User{Username: "jane", Email: "jane@example.com"}
	s.Require().NoError(s.conn.DB.Create(user).Error)

	assigned, err := s.roles.AssignRole(s.ctx, user.ID, role.ID)
	s.Require().NoError(err)
	s.Require().NotNil(assigned.Role)
	s.Len(assigned.Role.Permissions, 2)

	users, err := s.roles.UsersByRole(s.ctx, role.ID)
	s.Require().NoError(err)
	s.Len(users, 1)

	roles, err := s.roles.ListRoles(s.ctx)
	s.Require().NoError(err)
	s.Len(roles, 1)

	_, err = s.roles.AssignRole(s.ctx, 999, role.ID)
	s.ErrorIs(err, ErrNotFound)

	_, err = s.roles.UsersByRole(s.ctx, 999)
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestReportArchive_IgnoresRepeats() {
	report := &domain.ErrorReport{
		RequestID:    "req-1",
		ErrorName:    "Error",
		ErrorMessage: "boom",
		Method:       "GET",
		URL:          "/api/v1/products",
		OccurredAt:   time.Now().UTC(),
	}
	s.Require().NoError(s.reports.Archive(s.ctx, report))

	again := *report
	again.ID = 0
	s.Require().NoError(s.reports.Archive(s.ctx, &again))

	recent, err := s.reports.Recent(s.ctx, 10)
	s.Require().NoError(err)
	s.Len(recent, 1)
}

func TestCategoryLookup(t *testing.T) {
	conn, err := database.OpenMemory(&logger.Logger{Logger: zap.NewNop()})
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.Migrate(&domain.Category{}))

	category := &domain.Category{Name: "Shirts", Slug: "shirts"}
	require.NoError(t, conn.DB.Create(category).Error)

	lookup := NewCategoryLookup(conn.DB, time.Second)

	found, err := lookup.Category(context.Background(), category.ID)
	require.NoError(t, err)
	assert.Equal(t, "shirts", found.Slug)

	_, err = lookup.Category(context.Background(), 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"deadline", context.DeadlineExceeded, ErrQueryTimeout},
		{"connection", errors.New("dial tcp: connection refused"), ErrDatabaseConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := handleError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}
