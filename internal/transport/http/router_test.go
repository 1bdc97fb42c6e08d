package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/domain"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/memory"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/repository/session"
	"github.com/muhammad-umar-9/GIK-BuyHub/internal/service"
	transporthttp "github.com/muhammad-umar-9/GIK-BuyHub/internal/transport/http"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/metrics"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/utils"
	"github.com/muhammad-umar-9/GIK-BuyHub/pkg/validator"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type RouterSuite struct {
	suite.Suite
	store *memory.Store
	app   *fiber.App
}

func newApp(store repository.Store, cfg transporthttp.Config) *fiber.App {
	logger := zap.NewNop()
	m := metrics.New()

	jwt, err := utils.NewJWTManager("access", "refresh", time.Minute, time.Hour)
	if err != nil {
		panic(err)
	}

	services := transporthttp.Services{
		Health:    service.NewHealthService(store),
		Shops:     service.NewShopService(store, logger),
		Products:  service.NewProductService(store, logger),
		Customers: service.NewCustomerService(store, logger),
		Orders:    service.NewOrderService(store, m, logger),
		Delivery:  service.NewDeliveryService(store, m, logger),
		Reports:   service.NewReportService(store),
		Auth:      service.NewAuthService(store, session.NewMemorySessionRepository(), jwt, validator.NewValidator(), logger),
	}

	return transporthttp.NewApp(cfg, transporthttp.NewHandlers(services, logger, 5*time.Second), jwt, m, logger)
}

func (s *RouterSuite) SetupTest() {
	s.store = memory.New(zap.NewNop())
	s.app = newApp(s.store, transporthttp.Config{})
}

// do sends body as JSON and decodes the response into out when out is not nil.
func (s *RouterSuite) do(app *fiber.App, method, path string, body any, token string, out any) int {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	s.Require().NoError(err)
	defer resp.Body.Close()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		s.Require().NoError(err)
		s.Require().NoError(json.Unmarshal(raw, out), string(raw))
	}

	return resp.StatusCode
}

func (s *RouterSuite) call(method, path string, body any, out any) int {
	return s.do(s.app, method, path, body, "", out)
}

type seeded struct {
	shopID, productID, customerID int64
}

func (s *RouterSuite) seed() seeded {
	var shop domain.Shop
	s.Require().Equal(http.StatusCreated, s.call("POST", "/api/shops", fiber.Map{"name": "Raju Canteen", "shop_type": "Food"}, &shop))

	var product domain.Product
	s.Require().Equal(http.StatusCreated, s.call("POST", "/api/products", fiber.Map{
		"shop_id": shop.ID, "name": "Zinger", "price": 350.5,
	}, &product))
	s.True(product.IsAvailable)

	var customer domain.Customer
	s.Require().Equal(http.StatusCreated, s.call("POST", "/api/orders/customers", fiber.Map{
		"first_name": "Hamza", "last_name": "Ali", "email": "",
	}, &customer))
	s.Nil(customer.Email)

	return seeded{shopID: shop.ID, productID: product.ID, customerID: customer.ID}
}

func (s *RouterSuite) placeOrder(ids seeded, quantity int) domain.Order {
	var order domain.Order
	s.Require().Equal(http.StatusCreated, s.call("POST", "/api/orders", fiber.Map{
		"customer_id":    ids.customerID,
		"products":       []fiber.Map{{"product_id": ids.productID, "quantity": quantity}},
		"payment_method": "Cash",
	}, &order))
	return order
}

func (s *RouterSuite) TestTestDB() {
	var body map[string]any
	s.Equal(http.StatusOK, s.call("GET", "/api/test-db", nil, &body))
	s.Equal("Database connected successfully", body["message"])
	s.NotEmpty(body["time"])
}

func (s *RouterSuite) TestShopCRUD() {
	ids := s.seed()
	path := fmt.Sprintf("/api/shops/%d", ids.shopID)

	var shop domain.Shop
	s.Equal(http.StatusOK, s.call("GET", path, nil, &shop))
	s.Equal("Raju Canteen", shop.Name)

	s.Equal(http.StatusOK, s.call("PUT", path, fiber.Map{"location": "Near FCSE"}, &shop))
	s.Equal("Near FCSE", shop.Location)
	s.Equal("Raju Canteen", shop.Name)

	var products []domain.Product
	s.Equal(http.StatusOK, s.call("GET", path+"/products", nil, &products))
	s.Len(products, 1)

	var errBody map[string]any
	s.Equal(http.StatusBadRequest, s.call("GET", "/api/shops/abc", nil, &errBody))
	s.Equal("id is invalid", errBody["error"])

	s.Equal(http.StatusNotFound, s.call("GET", "/api/shops/9999", nil, nil))
	s.Equal(http.StatusNoContent, s.call("DELETE", path, nil, nil))
	s.Equal(http.StatusNotFound, s.call("GET", path, nil, nil))
}

func (s *RouterSuite) TestValidationErrors() {
	var body struct {
		Error map[string]string `json:"error"`
	}
	s.Equal(http.StatusBadRequest, s.call("POST", "/api/shops", fiber.Map{"shop_type": "Food"}, &body))
	s.Contains(body.Error, "name")

	s.Equal(http.StatusBadRequest, s.call("POST", "/api/products", fiber.Map{"shop_id": 1, "name": "X"}, &body))
	s.Contains(body.Error, "price")

	s.Equal(http.StatusBadRequest, s.call("GET", "/api/products?shop_id=x", nil, nil))
}

func (s *RouterSuite) TestInputBoundsMatchColumns() {
	ids := s.seed()

	var errBody map[string]any
	s.Equal(http.StatusBadRequest, s.call("POST", "/api/products", fiber.Map{
		"shop_id": ids.shopID, "name": "Gold Zinger", "price": 1e9,
	}, &errBody))
	s.Equal(domain.ErrInvalidPrice.Error(), errBody["error"])
	s.Equal(http.StatusBadRequest, s.call("PUT", fmt.Sprintf("/api/products/%d", ids.productID), fiber.Map{"price": 1e8}, nil))

	s.Equal(http.StatusBadRequest, s.call("POST", "/api/orders", fiber.Map{
		"customer_id":    ids.customerID,
		"products":       []fiber.Map{{"product_id": ids.productID, "quantity": int64(3_000_000_000)}},
		"payment_method": "Cash",
	}, &errBody))
	s.Contains(errBody["error"], domain.ErrInvalidQuantity.Error())

	var tagErr struct {
		Error map[string]string `json:"error"`
	}
	s.Equal(http.StatusBadRequest, s.call("POST", "/api/orders", fiber.Map{
		"customer_id":    ids.customerID,
		"products":       []fiber.Map{{"product_id": ids.productID, "quantity": 1}},
		"payment_method": strings.Repeat("x", 40),
	}, &tagErr))
	s.Contains(tagErr.Error, "payment_method")

	s.Equal(http.StatusBadRequest, s.call("POST", "/api/shops", fiber.Map{
		"name": "Night Canteen", "location": strings.Repeat("b", 101), "opening_time": "07:00 in the morning",
	}, &tagErr))
	s.Contains(tagErr.Error, "location")
	s.Contains(tagErr.Error, "opening_time")

	s.Equal(http.StatusBadRequest, s.call("POST", "/api/orders/customers", fiber.Map{
		"first_name": "Hamza", "last_name": "Ali", "email": strings.Repeat("a", 60) + "@" + strings.Repeat("b", 40) + ".pk",
	}, &tagErr))
	s.Contains(tagErr.Error, "email")

	var big domain.Order
	s.Equal(http.StatusCreated, s.call("POST", "/api/orders", fiber.Map{
		"customer_id": ids.customerID,
		"products":    []fiber.Map{{"product_id": ids.productID, "quantity": domain.MaxQuantity}},
	}, &big))
	s.Equal("350500", big.TotalAmount.String())

	var orders []domain.Order
	s.Equal(http.StatusOK, s.call("GET", "/api/orders?status=all", nil, &orders))
	s.Len(orders, 1)
}

func (s *RouterSuite) TestProductFiltersAndCategories() {
	ids := s.seed()

	var categories []domain.Category
	s.Equal(http.StatusOK, s.call("GET", "/api/products/categories", nil, &categories))
	s.Len(categories, len(domain.DefaultCategories))

	var products []domain.Product
	s.Equal(http.StatusOK, s.call("GET", fmt.Sprintf("/api/products?shop_id=%d", ids.shopID), nil, &products))
	s.Len(products, 1)

	s.Equal(http.StatusOK, s.call("GET", fmt.Sprintf("/api/products?shop_id=%d", ids.shopID+1), nil, &products))
	s.Empty(products)
}

func (s *RouterSuite) TestOrderLifecycle() {
	ids := s.seed()
	order := s.placeOrder(ids, 2)
	s.Equal(domain.OrderStatusPending, order.Status)
	s.Equal("701", order.TotalAmount.String())

	var errBody map[string]any
	s.Equal(http.StatusBadRequest, s.call("POST", "/api/orders", fiber.Map{"customer_id": ids.customerID, "products": []fiber.Map{}}, &errBody))
	s.Equal(domain.ErrEmptyOrder.Error(), errBody["error"])

	s.Equal(http.StatusNotFound, s.call("POST", "/api/orders", fiber.Map{
		"customer_id": ids.customerID + 10,
		"products":    []fiber.Map{{"product_id": ids.productID, "quantity": 1}},
	}, nil))

	var active []domain.Order
	s.Equal(http.StatusOK, s.call("GET", "/api/orders/active", nil, &active))
	s.Len(active, 1)

	var items []domain.OrderItem
	s.Equal(http.StatusOK, s.call("GET", fmt.Sprintf("/api/orders/%d/items", order.ID), nil, &items))
	s.Require().Len(items, 1)
	s.Equal("Zinger", items[0].ProductName)

	path := fmt.Sprintf("/api/orders/%d", order.ID)
	s.Equal(http.StatusBadRequest, s.call("PATCH", path+"/status", fiber.Map{"status": "Shipped"}, nil))
	s.Equal(http.StatusConflict, s.call("PATCH", path+"/status", fiber.Map{"status": "Completed"}, nil))

	var cancelled struct {
		Message string       `json:"message"`
		Order   domain.Order `json:"order"`
	}
	s.Equal(http.StatusOK, s.call("POST", path+"/cancel", fiber.Map{"cancellation_reason": "late"}, &cancelled))
	s.Equal("Order cancelled successfully", cancelled.Message)
	s.Equal(domain.OrderStatusCancelled, cancelled.Order.Status)
	s.Require().NotNil(cancelled.Order.CancellationReason)
	s.Equal("late", *cancelled.Order.CancellationReason)

	s.Equal(http.StatusConflict, s.call("POST", path+"/cancel", nil, nil))

	var filtered []domain.Order
	s.Equal(http.StatusOK, s.call("GET", "/api/orders?status=Cancelled", nil, &filtered))
	s.Len(filtered, 1)
	s.Equal(http.StatusBadRequest, s.call("GET", "/api/orders?status=Bogus", nil, nil))

	var customers []domain.Customer
	s.Equal(http.StatusOK, s.call("GET", "/api/orders/customers/all", nil, &customers))
	s.Len(customers, 1)
}

func (s *RouterSuite) TestCancelCompletedOrderConflicts() {
	ids := s.seed()
	order := s.placeOrder(ids, 1)
	path := fmt.Sprintf("/api/orders/%d", order.ID)

	s.Require().Equal(http.StatusOK, s.call("PATCH", path+"/status", fiber.Map{"status": "Processing"}, nil))
	s.Require().Equal(http.StatusOK, s.call("PATCH", path+"/status", fiber.Map{"status": "Completed"}, nil))

	var errBody map[string]any
	s.Equal(http.StatusConflict, s.call("POST", path+"/cancel", fiber.Map{"cancellation_reason": "too late"}, &errBody))
	s.Contains(errBody["error"], domain.ErrInvalidOrderTransition.Error())

	var got domain.Order
	s.Require().Equal(http.StatusOK, s.call("GET", path, nil, &got))
	s.Equal(domain.OrderStatusCompleted, got.Status)
	s.Nil(got.CancellationReason)
	s.Require().NotNil(got.DeliveryStatus)
	s.Equal(domain.DeliveryStatusPending, *got.DeliveryStatus)
}

func (s *RouterSuite) TestDeliveryLifecycle() {
	ids := s.seed()
	order := s.placeOrder(ids, 1)
	s.Require().NotNil(order.DeliveryID)
	path := fmt.Sprintf("/api/delivery/%d", *order.DeliveryID)

	var rider domain.Employee
	s.Require().Equal(http.StatusCreated, s.call("POST", "/api/delivery/personnel", fiber.Map{
		"first_name": "Bilal", "last_name": "Shah", "role": "Delivery",
	}, &rider))
	s.Equal(http.StatusBadRequest, s.call("POST", "/api/delivery/personnel", fiber.Map{
		"first_name": "X", "last_name": "Y", "role": "Pilot",
	}, nil))

	var personnel []domain.Employee
	s.Equal(http.StatusOK, s.call("GET", "/api/delivery/personnel/available", nil, &personnel))
	s.Len(personnel, 1)

	s.Equal(http.StatusConflict, s.call("POST", path+"/complete", nil, nil))
	s.Equal(http.StatusNotFound, s.call("POST", path+"/assign", fiber.Map{"employee_id": rider.ID + 5}, nil))

	var assigned struct {
		Message  string          `json:"message"`
		Delivery domain.Delivery `json:"delivery"`
	}
	s.Equal(http.StatusOK, s.call("POST", path+"/assign", fiber.Map{"employee_id": rider.ID}, &assigned))
	s.Equal(domain.DeliveryStatusAssigned, assigned.Delivery.Status)

	var moved domain.Delivery
	s.Equal(http.StatusOK, s.call("PATCH", path+"/location", fiber.Map{"delivery_location": "Hostel 7 gate"}, &moved))
	s.Equal("Hostel 7 gate", moved.DeliveryLocation)

	s.Equal(http.StatusOK, s.call("POST", path+"/dispatch", nil, nil))
	s.Equal(http.StatusConflict, s.call("POST", fmt.Sprintf("/api/orders/%d/cancel", order.ID), nil, nil))
	s.Equal(http.StatusOK, s.call("POST", path+"/complete", fiber.Map{"delivery_notes": "handed over"}, nil))

	var got domain.Delivery
	s.Equal(http.StatusOK, s.call("GET", path, nil, &got))
	s.Equal(domain.DeliveryStatusDelivered, got.Status)
	s.Equal("handed over", got.DeliveryNotes)
	s.Require().NotNil(got.DeliveryPerson)
	s.Equal("Bilal Shah", *got.DeliveryPerson)

	var list []domain.Delivery
	s.Equal(http.StatusOK, s.call("GET", "/api/delivery?status=Delivered,Cancelled", nil, &list))
	s.Len(list, 1)
	s.Equal(http.StatusBadRequest, s.call("GET", "/api/delivery?status=Lost", nil, nil))

	s.Equal(http.StatusConflict, s.call("POST", fmt.Sprintf("/api/delivery/create-for-order/%d", order.ID), nil, nil))
	s.Equal(http.StatusNotFound, s.call("POST", "/api/delivery/create-for-order/999", nil, nil))
}

func (s *RouterSuite) TestDeleteReferencedConflicts() {
	ids := s.seed()
	s.placeOrder(ids, 1)

	s.Equal(http.StatusConflict, s.call("DELETE", fmt.Sprintf("/api/shops/%d", ids.shopID), nil, nil))
	s.Equal(http.StatusConflict, s.call("DELETE", fmt.Sprintf("/api/products/%d", ids.productID), nil, nil))
}

func (s *RouterSuite) TestReports() {
	ids := s.seed()
	s.placeOrder(ids, 3)

	today := time.Now().Format("2006-01-02")
	var sales domain.ShopSales
	s.Equal(http.StatusOK, s.call("GET", fmt.Sprintf("/api/shops/%d/sales?start_date=%s&end_date=%s", ids.shopID, today, today), nil, &sales))
	s.Equal(int64(1), sales.OrderCount)
	s.Equal("1051.5", sales.TotalSales.String())

	s.Equal(http.StatusBadRequest, s.call("GET", fmt.Sprintf("/api/shops/%d/sales?start_date=yesterday", ids.shopID), nil, nil))

	var popular []domain.PopularProduct
	s.Equal(http.StatusOK, s.call("GET", fmt.Sprintf("/api/shops/%d/popular-products?limit=3", ids.shopID), nil, &popular))
	s.Require().Len(popular, 1)
	s.Equal(int64(3), popular[0].QuantitySold)

	s.Equal(http.StatusBadRequest, s.call("GET", fmt.Sprintf("/api/shops/%d/popular-products?limit=500", ids.shopID), nil, nil))
}

func (s *RouterSuite) TestAuthFlow() {
	s.Equal(http.StatusCreated, s.call("POST", "/api/auth/signup", fiber.Map{"username": "hamza", "password": "passw0rd1"}, nil))
	s.Equal(http.StatusConflict, s.call("POST", "/api/auth/signup", fiber.Map{"username": "hamza", "password": "passw0rd1"}, nil))
	s.Equal(http.StatusBadRequest, s.call("POST", "/api/auth/signup", fiber.Map{"username": "sana", "password": "short"}, nil))
	s.Equal(http.StatusUnauthorized, s.call("POST", "/api/auth/login", fiber.Map{"username": "hamza", "password": "nope12345"}, nil))

	var tokens struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
	}
	s.Require().Equal(http.StatusOK, s.call("POST", "/api/auth/login", fiber.Map{"username": "hamza", "password": "passw0rd1"}, &tokens))

	var me domain.User
	s.Equal(http.StatusOK, s.do(s.app, "GET", "/api/auth/me", nil, tokens.AccessToken, &me))
	s.Equal("hamza", me.Username)
	s.Equal(domain.UserRoleStudent, me.Role)
	s.Equal(http.StatusUnauthorized, s.call("GET", "/api/auth/me", nil, nil))

	old := tokens.RefreshToken
	s.Require().Equal(http.StatusOK, s.call("POST", "/api/auth/refresh", fiber.Map{"refresh_token": old}, &tokens))
	s.Equal(http.StatusUnauthorized, s.call("POST", "/api/auth/refresh", fiber.Map{"refresh_token": old}, nil))
	s.Equal(http.StatusOK, s.call("POST", "/api/auth/logout", fiber.Map{"refresh_token": tokens.RefreshToken}, nil))
}

func (s *RouterSuite) TestProtectAdmin() {
	app := newApp(s.store, transporthttp.Config{ProtectAdmin: true})

	s.Equal(http.StatusCreated, s.do(app, "POST", "/api/auth/signup", fiber.Map{"username": "student1", "password": "passw0rd1"}, "", nil))
	s.Equal(http.StatusCreated, s.do(app, "POST", "/api/auth/signup", fiber.Map{"username": "owner1", "password": "passw0rd1", "role": "owner"}, "", nil))

	login := func(username string) string {
		var tokens struct {
			AccessToken string `json:"access_token"`
		}
		s.Require().Equal(http.StatusOK, s.do(app, "POST", "/api/auth/login", fiber.Map{"username": username, "password": "passw0rd1"}, "", &tokens))
		return tokens.AccessToken
	}

	shop := fiber.Map{"name": "Guarded"}
	s.Equal(http.StatusUnauthorized, s.do(app, "POST", "/api/shops", shop, "", nil))
	s.Equal(http.StatusForbidden, s.do(app, "POST", "/api/shops", shop, login("student1"), nil))
	s.Equal(http.StatusCreated, s.do(app, "POST", "/api/shops", shop, login("owner1"), nil))

	s.Equal(http.StatusOK, s.do(app, "GET", "/api/shops", nil, "", nil))
}

func TestRouter(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}
