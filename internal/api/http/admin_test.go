package httpapi_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	httpapi "greek-irini/internal/api/http"
	"greek-irini/internal/domain"
	"greek-irini/internal/mocks"
	"greek-irini/internal/service"
)

var testSecret = []byte("irini-test-secret")

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return signed
}

func TestRequireAdmin(t *testing.T) {
	mockOrders := mocks.NewOrderServiceInterface(t)
	router := httpapi.NewRouter(httpapi.NewHandler(httpapi.Services{Orders: mockOrders}), testSecret)

	expiry := time.Now().Add(time.Hour).Unix()

	tests := []struct {
		name         string
		header       string
		prepareMocks func()
		expectedCode int
		expectedBody string
	}{
		{
			name:         "no_token",
			prepareMocks: func() {},
			expectedCode: http.StatusUnauthorized,
			expectedBody: "token required",
		},
		{
			name:         "garbage_token",
			header:       "Bearer not-a-jwt",
			prepareMocks: func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "wrong_secret",
			header:       "Bearer " + signToken(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"role": "admin", "exp": expiry}),
			prepareMocks: func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "expired",
			header:       "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"role": "admin", "exp": time.Now().Add(-time.Hour).Unix()}),
			prepareMocks: func() {},
			expectedCode: http.StatusUnauthorized,
		},
		{
			name:         "customer_role",
			header:       "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"role": "customer", "exp": expiry}),
			prepareMocks: func() {},
			expectedCode: http.StatusForbidden,
			expectedBody: "admin only",
		},
		{
			name:   "admin",
			header: "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"role": "admin", "sub": "anna", "exp": expiry}),
			prepareMocks: func() {
				mockOrders.On("List", service.OrderQuery{View: service.ViewActive}).
					Return([]domain.Order{{ID: "ORD-1"}}).Once()
			},
			expectedCode: http.StatusOK,
			expectedBody: `"id":"ORD-1"`,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			req := httptest.NewRequest("GET", "/api/admin/orders?view=active", nil)
			if testCase.header != "" {
				req.Header.Set("Authorization", testCase.header)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
			if testCase.expectedBody != "" {
				assert.Contains(t, recorder.Body.String(), testCase.expectedBody)
			}
		})
	}
}

func TestRequireAdmin_OpenWithoutSecret(t *testing.T) {
	mockOrders := mocks.NewOrderServiceInterface(t)
	router := httpapi.NewRouter(httpapi.NewHandler(httpapi.Services{Orders: mockOrders}), nil)

	mockOrders.On("AddStaffNote", mock.Anything, "ORD-1", "extra tzatziki", "staff").
		Return(domain.Order{ID: "ORD-1"}, nil).Once()

	req := httptest.NewRequest("POST", "/api/admin/orders/ORD-1/notes", bytes.NewBufferString(`{"text":"extra tzatziki"}`))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_addStaffNote_AuthorFromToken(t *testing.T) {
	mockOrders := mocks.NewOrderServiceInterface(t)
	router := httpapi.NewRouter(httpapi.NewHandler(httpapi.Services{Orders: mockOrders}), testSecret)

	mockOrders.On("AddStaffNote", mock.Anything, "ORD-1", "call at the door", "anna").
		Return(domain.Order{ID: "ORD-1"}, nil).Once()

	req := httptest.NewRequest("POST", "/api/admin/orders/ORD-1/notes", bytes.NewBufferString(`{"text":"call at the door"}`))
	req.Header.Set("Authorization", "Bearer "+signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"role": "admin", "sub": "anna"}))
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestHandler_updateOrderStatus(t *testing.T) {
	mockOrders := mocks.NewOrderServiceInterface(t)
	router := httpapi.NewRouter(httpapi.NewHandler(httpapi.Services{Orders: mockOrders}), nil)

	tests := []struct {
		name         string
		payload      string
		prepareMocks func()
		expectedCode int
	}{
		{
			name:    "success",
			payload: `{"status":"preparing"}`,
			prepareMocks: func() {
				mockOrders.On("UpdateStatus", mock.Anything, "ORD-1", domain.StatusPreparing).
					Return(domain.Order{ID: "ORD-1", Status: domain.StatusPreparing}, nil).Once()
			},
			expectedCode: http.StatusOK,
		},
		{
			name:    "unknown_status",
			payload: `{"status":"eaten"}`,
			prepareMocks: func() {
				mockOrders.On("UpdateStatus", mock.Anything, "ORD-1", domain.OrderStatus("eaten")).
					Return(domain.Order{}, service.ErrInvalidStatus).Once()
			},
			expectedCode: http.StatusBadRequest,
		},
		{
			name:    "transition_refused",
			payload: `{"status":"pending"}`,
			prepareMocks: func() {
				mockOrders.On("UpdateStatus", mock.Anything, "ORD-1", domain.StatusPending).
					Return(domain.Order{}, service.ErrInvalidTransition).Once()
			},
			expectedCode: http.StatusUnprocessableEntity,
		},
		{
			name:         "invalid_json",
			payload:      `{"status":`,
			prepareMocks: func() {},
			expectedCode: http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			testCase.prepareMocks()
			req := httptest.NewRequest("PUT", "/api/admin/orders/ORD-1/status", bytes.NewBufferString(testCase.payload))
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, testCase.expectedCode, recorder.Code)
		})
	}
}

func TestHandler_printReceipt(t *testing.T) {
	mockOrders := mocks.NewOrderServiceInterface(t)
	mockPrinter := mocks.NewReceiptPrinterInterface(t)
	router := httpapi.NewRouter(httpapi.NewHandler(httpapi.Services{Orders: mockOrders, Printer: mockPrinter}), nil)

	mockOrders.On("Get", mock.Anything, "ORD-1").Return(domain.Order{ID: "ORD-1"}, nil).Once()
	mockPrinter.On("Start", "ORD-1").
		Return(service.PrintJob{ID: "job-1", OrderID: "ORD-1", Status: service.PrintPending}).Once()

	req := httptest.NewRequest("POST", "/api/admin/orders/ORD-1/print", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusAccepted, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `"status":"pending"`)

	mockPrinter.On("Cancel", "job-404").Return(service.PrintJob{}, service.ErrNotFound).Once()

	req = httptest.NewRequest("DELETE", "/api/admin/print-jobs/job-404", nil)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHandler_getAnalytics_BadPeriod(t *testing.T) {
	router := httpapi.NewRouter(httpapi.NewHandler(httpapi.Services{}), nil)

	req := httptest.NewRequest("GET", "/api/admin/analytics?period=yearly", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "period must be")
}
