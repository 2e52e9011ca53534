package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ecommerce-api/internal/auth"
	"ecommerce-api/internal/config"
	"ecommerce-api/internal/domain"
	"ecommerce-api/internal/envelope"
	"ecommerce-api/internal/repository"
	"ecommerce-api/internal/service"
	"ecommerce-api/internal/transport/mq"
	"ecommerce-api/internal/usecase"
	"ecommerce-api/pkg/database"
	"ecommerce-api/pkg/logger"
	"ecommerce-api/pkg/validator"
	"ecommerce-api/tests/fixtures"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

const linenShirtURL = "https://res.cloudinary.com/shop/image/upload/v1712345678/products/linen-shirt.jpg"

type errorBody struct {
	Status     string                 `json:"status"`
	StatusCode int                    `json:"statusCode"`
	ErrorCode  string                 `json:"errorCode"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details"`
	Path       string                 `json:"path"`
	RequestID  string                 `json:"requestId"`
	Meta       struct {
		Suggestions   []string `json:"suggestions"`
		Documentation string   `json:"documentation"`
	} `json:"meta"`
}

type dataBody struct {
	Data json.RawMessage        `json:"data"`
	Meta map[string]interface{} `json:"meta"`
}

// ServerTestSuite drives the full middleware chain against SQLite in memory
type ServerTestSuite struct {
	suite.Suite
	conn     *database.Connection
	reporter *mq.MockReporter
	tokens   *auth.TokenProvider
	server   *echo.Echo
}

func TestServerTestSuite(t *testing.T) {
	suite.Run(t, new(ServerTestSuite))
}

func (s *ServerTestSuite) SetupTest() {
	log := &logger.Logger{Logger: zap.NewNop()}

	conn, err := database.OpenMemory(log)
	s.Require().NoError(err)
	s.Require().NoError(conn.Migrate(domain.Models()...))
	s.conn = conn

	s.server = s.newServer(s.testConfig())
}

func (s *ServerTestSuite) TearDownTest() {
	if s.conn != nil {
		s.conn.Close()
	}
}

func (s *ServerTestSuite) testConfig() *config.Config {
	return &config.Config{
		App:    config.AppConfig{Name: "ecommerce-api", Version: "test", Environment: "staging"},
		Server: config.ServerConfig{BodyLimit: "1M"},
		Auth:   config.AuthConfig{JWTSecret: "test-secret", Issuer: "ecommerce-api", TokenTTL: time.Hour},
		Media:  config.MediaConfig{CloudName: "shop"},
	}
}

func (s *ServerTestSuite) newServer(cfg *config.Config) *echo.Echo {
	nop := zap.NewNop()
	db := s.conn.DB

	tokens, err := auth.NewTokenProvider(cfg.Auth)
	s.Require().NoError(err)
	s.tokens = tokens

	catalog, err := envelope.DefaultCatalog()
	s.Require().NoError(err)

	s.reporter = mq.NewMockReporter(nop)
	v := validator.New()

	products := service.NewProductService(repository.NewStore[domain.Product](db, "product"), nop)
	productUseCase := usecase.NewProductUseCase(products, repository.NewCategoryLookup(db, time.Second), cfg.Media.AccountName(), nop)

	return NewServer(ServerOptions{
		Config:    cfg,
		Logger:    &logger.Logger{Logger: nop},
		Formatter: envelope.NewFormatter(catalog, cfg.IsProduction()),
		Reporter:  s.reporter,
		Tokens:    tokens,
	},
		NewProductHandler(productUseCase),
		NewCartHandler(service.NewCartService(repository.NewStore[domain.Cart](db, "cart"), nop), v),
		NewOrderHandler(service.NewOrderService(repository.NewStore[domain.Order](db, "order"), nop)),
		NewAddressHandler(service.NewAddressService(repository.NewStore[domain.Address](db, "address"), nop)),
		NewReviewHandler(service.NewReviewService(repository.NewStore[domain.Review](db, "review"), nop)),
		NewUserHandler(service.NewRoleService(repository.NewRoleRepository(db), nop), v),
		NewHealthHandler(s.conn, cfg.App.Version, nop),
	)
}

func (s *ServerTestSuite) token(userID uint, role string) string {
	token, err := s.tokens.Sign(userID, role)
	s.Require().NoError(err)
	return token
}

func (s *ServerTestSuite) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)
	return rec
}

func (s *ServerTestSuite) decodeError(rec *httptest.ResponseRecorder) errorBody {
	var body errorBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func (s *ServerTestSuite) decodeData(rec *httptest.ResponseRecorder, out interface{}) dataBody {
	var body dataBody
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	if out != nil {
		s.Require().NoError(json.Unmarshal(body.Data, out))
	}
	return body
}

func productPayload() map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"title":       "Classic Linen Shirt",
			"description": "Breathable linen shirt cut for warm days.",
			"price":       50,
			"discount":    20,
			"stock":       10,
			"sizes":       []string{"m", "l"},
			"gender":      "men",
			"images":      []map[string]interface{}{{"id": 7, "url": linenShirtURL}},
		},
	}
}

func (s *ServerTestSuite) createProduct() uint {
	rec := s.do(http.MethodPost, "/api/v1/products", productPayload(), s.token(1, auth.RoleAuthenticated))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var product domain.Product
	s.decodeData(rec, &product)
	return product.ID
}

func (s *ServerTestSuite) TestCreateProduct_InvalidPayload() {
	rec := s.do(http.MethodPost, "/api/v1/products", fixtures.InvalidProductPayload(), s.token(1, auth.RoleAuthenticated))

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Equal("VALIDATION_ERROR", rec.Header().Get(HeaderErrorCode))

	body := s.decodeError(rec)
	s.Equal("error", body.Status)
	s.Equal("VALIDATION_ERROR", body.ErrorCode)
	s.Equal("Validation failed", body.Message)
	s.Len(body.Details, 4)
	s.Equal([]interface{}{"must be at least 3 characters"}, body.Details["title"])
	s.Equal([]interface{}{"must be at least 10 characters"}, body.Details["description"])
	s.Equal([]interface{}{"must be at least 0.01"}, body.Details["price"])
	s.Equal([]interface{}{"must be at least 0"}, body.Details["stock"])
	s.NotEmpty(body.RequestID)
	s.Equal(rec.Header().Get(HeaderRequestID), body.RequestID)
	s.Equal("/docs/validation", body.Meta.Documentation)
	s.NotEmpty(body.Meta.Suggestions)

	// validation failures are answered before the monitoring interceptor
	s.Empty(s.reporter.Reports())
}

func (s *ServerTestSuite) TestGetProduct_NotFound() {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/999", nil)
	req.Header.Set(HeaderRequestID, "req-404")
	rec := httptest.NewRecorder()
	s.server.ServeHTTP(rec, req)

	s.Equal(http.StatusNotFound, rec.Code)
	s.Equal("NOT_FOUND_ERROR", rec.Header().Get(HeaderErrorCode))
	s.Equal("req-404", rec.Header().Get(HeaderRequestID))

	body := s.decodeError(rec)
	s.Equal("NOT_FOUND_ERROR", body.ErrorCode)
	s.Equal("Product not found", body.Message)
	s.Equal("req-404", body.RequestID)
	s.Equal("/api/v1/products/999", body.Path)
	s.NotEmpty(body.Meta.Suggestions)
	s.Equal("/docs/error-codes", body.Meta.Documentation)

	reports := s.reporter.Reports()
	s.Require().Len(reports, 1)
	s.Equal("req-404", reports[0].RequestID)
	s.Equal("NOT_FOUND_ERROR", reports[0].ErrorName)
	s.Equal(http.MethodGet, reports[0].Method)
	s.Equal("/api/v1/products/999", reports[0].URL)
}

func (s *ServerTestSuite) TestMonitoringSkippedInDevelopment() {
	cfg := s.testConfig()
	cfg.App.Environment = "development"
	s.server = s.newServer(cfg)

	rec := s.do(http.MethodGet, "/api/v1/products/999", nil, "")

	s.Equal(http.StatusNotFound, rec.Code)
	s.Empty(s.reporter.Reports())
}

func (s *ServerTestSuite) TestAuthFailures() {
	tests := []struct {
		name    string
		token   string
		header  string
		status  int
		code    string
		message string
	}{
		{
			name:    "anonymous",
			status:  http.StatusUnauthorized,
			code:    "AUTHENTICATION_ERROR",
			message: "Authentication required to create products",
		},
		{
			name:    "public role",
			token:   s.token(2, auth.RolePublic),
			status:  http.StatusForbidden,
			code:    "AUTHORIZATION_ERROR",
			message: "Insufficient permissions to create products",
		},
		{
			name:    "garbage token",
			header:  "Bearer not-a-token",
			status:  http.StatusUnauthorized,
			code:    "AUTHENTICATION_ERROR",
			message: "Invalid or expired token",
		},
		{
			name:    "wrong scheme",
			header:  "Basic dXNlcjpwYXNz",
			status:  http.StatusUnauthorized,
			code:    "AUTHENTICATION_ERROR",
			message: "Invalid or expired token",
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			raw, err := json.Marshal(productPayload())
			s.Require().NoError(err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/products", bytes.NewReader(raw))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			switch {
			case tt.header != "":
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			case tt.token != "":
				req.Header.Set(echo.HeaderAuthorization, "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			s.server.ServeHTTP(rec, req)

			s.Equal(tt.status, rec.Code)
			body := s.decodeError(rec)
			s.Equal(tt.code, body.ErrorCode)
			s.Equal(tt.message, body.Message)
		})
	}
}

func (s *ServerTestSuite) TestCreateProduct_MissingDataWrapper() {
	rec := s.do(http.MethodPost, "/api/v1/products", map[string]interface{}{"title": "Shirt"}, s.token(1, auth.RoleAdmin))

	s.Equal(http.StatusBadRequest, rec.Code)
	body := s.decodeError(rec)
	s.Equal([]interface{}{"is required"}, body.Details["data"])
}

func (s *ServerTestSuite) TestProductLifecycle() {
	id := s.createProduct()
	s.NotZero(id)

	rec := s.do(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, "")
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var view struct {
		Title           string                   `json:"title"`
		DiscountedPrice *float64                 `json:"discountedPrice"`
		Images          []map[string]interface{} `json:"images"`
	}
	s.decodeData(rec, &view)
	s.Equal("Classic Linen Shirt", view.Title)
	s.Require().NotNil(view.DiscountedPrice)
	s.InDelta(40.0, *view.DiscountedPrice, 0.001)
	s.Require().Len(view.Images, 1)
	s.Contains(view.Images[0]["thumbnail"], "res.cloudinary.com/shop/image/upload/w_150,h_150,c_fill")

	rec = s.do(http.MethodGet, "/api/v1/products?page=1&pageSize=10", nil, "")
	s.Require().Equal(http.StatusOK, rec.Code)
	list := s.decodeData(rec, nil)
	pagination, ok := list.Meta["pagination"].(map[string]interface{})
	s.Require().True(ok)
	s.Equal(float64(1), pagination["total"])

	rec = s.do(http.MethodPut, fmt.Sprintf("/api/v1/products/%d", id),
		map[string]interface{}{"data": map[string]interface{}{"stock": 3}}, s.token(1, auth.RoleAdmin))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	updated := s.decodeData(rec, nil)
	s.Equal("Product updated successfully", updated.Meta["message"])

	rec = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", id), nil, s.token(1, auth.RoleAdmin))
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`null`, string(s.decodeData(rec, nil).Data))

	rec = s.do(http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, "")
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *ServerTestSuite) TestCartEndpoints() {
	token := s.token(5, auth.RoleAuthenticated)

	rec := s.do(http.MethodPost, "/api/v1/carts", map[string]interface{}{
		"data": map[string]interface{}{
			"sessionId": "guest-session-01",
			"items":     []map[string]interface{}{{"product": 1, "quantity": 2, "size": "M", "color": "navy"}},
		},
	}, token)
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var cart domain.Cart
	body := s.decodeData(rec, &cart)
	s.Equal("Cart created successfully", body.Meta["message"])
	s.Equal("GUEST-SESSION-01", cart.SessionID)

	s.Run("add item merges quantities", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/api/v1/carts/%d/items", cart.ID), map[string]interface{}{
			"data": map[string]interface{}{"product": 1, "quantity": 3, "size": "M", "color": "navy"},
		}, token)
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var updated domain.Cart
		s.decodeData(rec, &updated)
		s.Require().Len(updated.Items, 1)
		s.Equal(5, updated.Items[0].Quantity)
	})

	s.Run("add item rejects an unknown size", func() {
		rec := s.do(http.MethodPost, fmt.Sprintf("/api/v1/carts/%d/items", cart.ID), map[string]interface{}{
			"data": map[string]interface{}{"product": 2, "quantity": 1, "size": "XXS"},
		}, token)
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(s.decodeError(rec).Details, "size")
	})

	s.Run("merge validates the session id with the struct validator", func() {
		rec := s.do(http.MethodPost, "/api/v1/carts/merge", map[string]interface{}{"sessionId": "bad id!"}, token)
		s.Equal(http.StatusBadRequest, rec.Code)

		body := s.decodeError(rec)
		issues, ok := body.Details["sessionId"].([]interface{})
		s.Require().True(ok, rec.Body.String())
		issue := issues[0].(map[string]interface{})
		s.Equal("session_id", issue["code"])
		s.Equal("must contain only letters, numbers, and dashes", issue["message"])
	})

	s.Run("merge hands the guest cart to the caller", func() {
		rec := s.do(http.MethodPost, "/api/v1/carts/merge", map[string]interface{}{"sessionId": "guest-session-01"},
			s.token(9, auth.RoleAuthenticated))
		s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

		var merged domain.Cart
		s.decodeData(rec, &merged)
		s.Require().NotNil(merged.UserID)
		s.Equal(uint(9), *merged.UserID)
	})
}

func (s *ServerTestSuite) TestOrderAndAccountValidation() {
	token := s.token(3, auth.RoleAuthenticated)

	tests := []struct {
		name   string
		path   string
		body   map[string]interface{}
		fields []string
	}{
		{
			name:   "order",
			path:   "/api/v1/orders",
			body:   map[string]interface{}{"data": map[string]interface{}{"orderNumber": "A1", "orderStatus": "lost"}},
			fields: []string{"items", "orderNumber", "orderStatus", "totalAmount"},
		},
		{
			name:   "address",
			path:   "/api/v1/addresses",
			body:   map[string]interface{}{"data": map[string]interface{}{"street": "Main", "country": "X"}},
			fields: []string{"city", "country", "postalCode", "street"},
		},
		{
			name:   "review",
			path:   "/api/v1/reviews",
			body:   map[string]interface{}{"data": map[string]interface{}{"rating": 9, "comment": "meh"}},
			fields: []string{"comment", "rating"},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			rec := s.do(http.MethodPost, tt.path, tt.body, token)
			s.Equal(http.StatusBadRequest, rec.Code)
			s.Equal(tt.fields, envelope.FieldNames(s.decodeError(rec).Details))
		})
	}
}

func (s *ServerTestSuite) TestCreateAddress() {
	rec := s.do(http.MethodPost, "/api/v1/addresses", map[string]interface{}{
		"data": map[string]interface{}{
			"street":     "  12 Harbour Road ",
			"city":       "Bristol",
			"postalCode": "BS1 4RB",
			"country":    "UK",
		},
	}, s.token(3, auth.RoleAuthenticated))
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())

	var address domain.Address
	body := s.decodeData(rec, &address)
	s.Equal("Address created successfully", body.Meta["message"])
	s.Require().NotNil(address.UserID)
	s.Equal(uint(3), *address.UserID)
}

func (s *ServerTestSuite) TestRoleEndpoints() {
	admin := s.token(1, auth.RoleAdmin)

	rec := s.do(http.MethodPost, "/api/v1/users/roles", map[string]interface{}{
		"name":    "Editors",
		"type":    "editor",
		"actions": []string{"api::product.product.update"},
	}, admin)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/v1/users/roles", map[string]interface{}{"type": "x"}, admin)
	s.Equal(http.StatusBadRequest, rec.Code)
	body := s.decodeError(rec)
	s.Contains(body.Details, "name")
	s.Contains(body.Details, "type")

	rec = s.do(http.MethodPost, "/api/v1/users/roles", map[string]interface{}{"name": "Editors", "type": "editor"},
		s.token(2, auth.RoleAuthenticated))
	s.Equal(http.StatusForbidden, rec.Code)

	rec = s.do(http.MethodGet, "/api/v1/users/42/permissions", nil, s.token(2, auth.RoleAuthenticated))
	s.Equal(http.StatusForbidden, rec.Code)
}

func (s *ServerTestSuite) TestFrameworkErrors() {
	s.Run("unknown route", func() {
		rec := s.do(http.MethodGet, "/api/v1/unknown", nil, "")
		s.Equal(http.StatusNotFound, rec.Code)

		body := s.decodeError(rec)
		s.Equal("NOT_FOUND_ERROR", body.ErrorCode)
		s.Equal("/docs/api-reference", body.Meta.Documentation)
	})

	s.Run("head request gets headers only", func() {
		rec := s.do(http.MethodHead, "/api/v1/products/1", nil, "")
		s.Equal(http.StatusMethodNotAllowed, rec.Code)
		s.Equal("NOT_FOUND_ERROR", rec.Header().Get(HeaderErrorCode))
		s.Empty(rec.Body.Bytes())
	})

	s.Run("invalid id", func() {
		rec := s.do(http.MethodGet, "/api/v1/products/abc", nil, "")
		s.Equal(http.StatusBadRequest, rec.Code)
		s.Contains(s.decodeError(rec).Details, "id")
	})
}

func (s *ServerTestSuite) TestRateLimit() {
	cfg := s.testConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerSecond: 0.001, Burst: 1, ExpiresIn: time.Minute}
	s.server = s.newServer(cfg)

	first := s.do(http.MethodGet, "/api/v1/health", nil, "")
	s.Equal(http.StatusOK, first.Code)

	second := s.do(http.MethodGet, "/api/v1/health", nil, "")
	s.Equal(http.StatusTooManyRequests, second.Code)
	s.Equal("RATE_LIMIT_ERROR", s.decodeError(second).ErrorCode)
}

func (s *ServerTestSuite) TestHealth() {
	rec := s.do(http.MethodGet, "/api/v1/health", nil, "")

	s.Equal(http.StatusOK, rec.Code)
	s.JSONEq(`{"status":"ok","database":"up","version":"test"}`, rec.Body.String())
}
