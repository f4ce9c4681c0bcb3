package httpapi_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "greek-irini/internal/api/http"
	"greek-irini/internal/domain"
	"greek-irini/internal/mocks"
	"greek-irini/internal/service"
	"greek-irini/internal/storage"
)

func setupTestRouter(svc httpapi.Services) *mux.Router {
	handler := httpapi.NewHandler(svc)
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func newSessions(t *testing.T) *storage.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewRedisStore(client, time.Hour)
}

func TestHandler_healthCheck(t *testing.T) {
	router := setupTestRouter(httpapi.Services{})

	req := httptest.NewRequest("GET", "/health", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"healthy"`)
}

func TestHandler_language(t *testing.T) {
	router := setupTestRouter(httpapi.Services{Sessions: newSessions(t)})

	tests := []struct {
		name         string
		method       string
		payload      string
		expectedCode int
		expectedBody string
	}{
		{name: "default_dutch", method: "GET", expectedCode: http.StatusOK, expectedBody: `"language":"nl"`},
		{name: "set_greek", method: "PUT", payload: `{"language":"el"}`, expectedCode: http.StatusOK, expectedBody: `"language":"el"`},
		{name: "greek_remembered", method: "GET", expectedCode: http.StatusOK, expectedBody: `"language":"el"`},
		{name: "unsupported", method: "PUT", payload: `{"language":"fr"}`, expectedCode: http.StatusBadRequest, expectedBody: "unsupported language fr"},
		{name: "invalid_json", method: "PUT", payload: `bad json`, expectedCode: http.StatusBadRequest},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			req := httptest.NewRequest(testCase.method, "/api/sessions/s-1/language", bytes.NewBufferString(testCase.payload))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.Contains(t, recorder.Body.String(), testCase.expectedBody)
			}
		})
	}
}

func TestHandler_addCartItem(t *testing.T) {
	mockCart := mocks.NewCartServiceInterface(t)
	router := setupTestRouter(httpapi.Services{Cart: mockCart})

	lines := []domain.CartLine{{MenuItemID: "moussaka", Quantity: 1}}

	tests := []struct {
		name         string
		target       string
		payload      string
		prepareMocks func()
		expectedCode int
		expectedBody string
	}{
		{
			name:    "quantity_defaults_to_one",
			target:  "/api/sessions/s-1/cart/items",
			payload: `{"id":"moussaka"}`,
			prepareMocks: func() {
				mockCart.On("Add", mock.Anything, "s-1", "moussaka", 1).Return(lines, nil).Once()
				mockCart.On("Quote", mock.Anything, "s-1", domain.DeliveryTypeDelivery).Return(service.Quote{ItemCount: 1}, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `"id":"moussaka"`,
		},
		{
			name:    "pickup_quote",
			target:  "/api/sessions/s-1/cart/items?delivery_type=pickup",
			payload: `{"id":"gyros","quantity":3}`,
			prepareMocks: func() {
				mockCart.On("Add", mock.Anything, "s-1", "gyros", 3).Return(lines, nil).Once()
				mockCart.On("Quote", mock.Anything, "s-1", domain.DeliveryTypePickup).Return(service.Quote{ItemCount: 3}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:    "unknown_item",
			target:  "/api/sessions/s-1/cart/items",
			payload: `{"id":"pizza"}`,
			prepareMocks: func() {
				mockCart.On("Add", mock.Anything, "s-1", "pizza", 1).Return(nil, service.ErrNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
		},
		{
			name:         "invalid_json",
			target:       "/api/sessions/s-1/cart/items",
			payload:      `{`,
			prepareMocks: func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			req := httptest.NewRequest("POST", testCase.target, bytes.NewBufferString(testCase.payload))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.Contains(t, recorder.Body.String(), testCase.expectedBody)
			}
		})
	}
}

func TestHandler_getCart_Empty(t *testing.T) {
	mockCart := mocks.NewCartServiceInterface(t)
	router := setupTestRouter(httpapi.Services{Cart: mockCart})

	mockCart.On("Get", mock.Anything, "s-2").Return(nil, nil).Once()
	mockCart.On("Quote", mock.Anything, "s-2", domain.DeliveryTypeDelivery).Return(service.Quote{}, nil).Once()

	req := httptest.NewRequest("GET", "/api/sessions/s-2/cart", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"lines":[]`)
}

func TestHandler_checkoutErrors(t *testing.T) {
	mockCheckout := mocks.NewCheckoutServiceInterface(t)
	router := setupTestRouter(httpapi.Services{Checkout: mockCheckout})

	paymentView := service.CheckoutView{SessionID: "s-1", Step: service.StepPayment}

	tests := []struct {
		name         string
		method       string
		target       string
		payload      string
		prepareMocks func()
		expectedCode int
		expectedBody []string
	}{
		{
			name:   "confirmed",
			method: "POST",
			target: "/api/sessions/s-1/checkout/confirm",
			prepareMocks: func() {
				mockCheckout.On("Confirm", mock.Anything, "s-1").
					Return(service.CheckoutView{SessionID: "s-1", Step: service.StepOrderCreated}, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: []string{`"step":"order_created"`},
		},
		{
			name:   "payment_failed",
			method: "POST",
			target: "/api/sessions/s-1/checkout/confirm",
			prepareMocks: func() {
				mockCheckout.On("Confirm", mock.Anything, "s-1").Return(paymentView, service.ErrPaymentFailed).Once()
			},
			expectedCode: http.StatusPaymentRequired,
			expectedBody: []string{`"step":"payment"`, `"error":"payment failed"`},
		},
		{
			name:   "busy",
			method: "POST",
			target: "/api/sessions/s-1/checkout/back",
			prepareMocks: func() {
				mockCheckout.On("Back", mock.Anything, "s-1").
					Return(service.CheckoutView{Step: service.StepProcessing}, service.ErrCheckoutBusy).Once()
			},
			expectedCode: http.StatusConflict,
			expectedBody: []string{`"step":"processing"`},
		},
		{
			name:    "invalid_fields",
			method:  "POST",
			target:  "/api/sessions/s-1/checkout/details",
			payload: `{"name":"Eleni","email":"eleni@"}`,
			prepareMocks: func() {
				err := &service.ValidationError{Fields: service.FieldErrors{service.FieldEmail: service.ErrInvalidEmail}}
				mockCheckout.On("SubmitDetails", mock.Anything, "s-1", domain.CustomerInfo{Name: "Eleni", Email: "eleni@"}).
					Return(service.CheckoutView{Step: service.StepDetails}, err).Once()
			},
			expectedCode: http.StatusUnprocessableEntity,
			expectedBody: []string{`"fields":{"email":"invalid email address"}`},
		},
		{
			name:    "method_unavailable",
			method:  "PUT",
			target:  "/api/sessions/s-1/checkout/payment-method",
			payload: `{"payment_method":"bancontact"}`,
			prepareMocks: func() {
				mockCheckout.On("SetPaymentMethod", mock.Anything, "s-1", domain.PaymentBancontact).
					Return(paymentView, service.ErrPaymentMethodUnavailable).Once()
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:   "unexpected_error_hidden",
			method: "GET",
			target: "/api/sessions/s-1/checkout",
			prepareMocks: func() {
				mockCheckout.On("View", mock.Anything, "s-1").
					Return(service.CheckoutView{}, errors.New("redis: connection refused")).Once()
			},
			expectedCode: http.StatusInternalServerError,
			expectedBody: []string{`"error":"internal error"`},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			req := httptest.NewRequest(testCase.method, testCase.target, bytes.NewBufferString(testCase.payload))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			for _, want := range testCase.expectedBody {
				assert.Contains(t, recorder.Body.String(), want)
			}
		})
	}
}

func TestHandler_getOrder(t *testing.T) {
	mockOrders := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(httpapi.Services{Orders: mockOrders})

	order := domain.Order{ID: "ORD-LX2K9A-1F3C", Status: domain.StatusPending}

	tests := []struct {
		name         string
		target       string
		prepareMocks func()
		expectedCode int
		expectedType string
	}{
		{
			name:   "found",
			target: "/api/orders/ORD-LX2K9A-1F3C",
			prepareMocks: func() {
				mockOrders.On("Get", mock.Anything, order.ID).Return(order, nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedType: "application/json",
		},
		{
			name:   "not_found",
			target: "/api/orders/ORD-NOPE",
			prepareMocks: func() {
				mockOrders.On("Get", mock.Anything, "ORD-NOPE").Return(domain.Order{}, service.ErrNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
			expectedType: "application/json",
		},
		{
			name:   "qrcode",
			target: "/api/orders/ORD-LX2K9A-1F3C/qrcode",
			prepareMocks: func() {
				mockOrders.On("Get", mock.Anything, order.ID).Return(order, nil).Once()
				mockOrders.On("QRCode", order.ID).Return([]byte("\x89PNG"), nil).Once()
			},
			expectedCode: http.StatusOK,
			expectedType: "image/png",
		},
		{
			name:   "qrcode_unknown_order",
			target: "/api/orders/ORD-NOPE/qrcode",
			prepareMocks: func() {
				mockOrders.On("Get", mock.Anything, "ORD-NOPE").Return(domain.Order{}, service.ErrNotFound).Once()
			},
			expectedCode: http.StatusNotFound,
			expectedType: "application/json",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			req := httptest.NewRequest("GET", testCase.target, nil)
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			assert.Equal(t, testCase.expectedType, recorder.Header().Get("Content-Type"))
		})
	}
}

func TestHandler_getOrder_Body(t *testing.T) {
	mockOrders := mocks.NewOrderServiceInterface(t)
	router := setupTestRouter(httpapi.Services{Orders: mockOrders})

	mockOrders.On("Get", mock.Anything, "ORD-1").
		Return(domain.Order{ID: "ORD-1", Status: domain.StatusPreparing}, nil).Once()

	req := httptest.NewRequest("GET", "/api/orders/ORD-1", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	var got domain.Order
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
	assert.Equal(t, "ORD-1", got.ID)
	assert.Equal(t, domain.StatusPreparing, got.Status)
}
