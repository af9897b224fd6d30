package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/harborbank/ledger-service/internal/ledger"
	"github.com/harborbank/ledger-service/internal/models"
)

// ---- mock implementation ----

type mockLedger struct {
	openFn     func(holderName string, initialBalance decimal.Decimal) (*models.Account, error)
	getFn      func(id int64) (*models.Account, error)
	depositFn  func(id int64, amount decimal.Decimal) (*models.Account, error)
	withdrawFn func(id int64, amount decimal.Decimal) (*models.Account, error)
	listFn     func() ([]models.Account, error)
	deleteFn   func(id int64) error
}

func (m *mockLedger) OpenAccount(_ context.Context, holderName string, initialBalance decimal.Decimal) (*models.Account, error) {
	if m.openFn != nil {
		return m.openFn(holderName, initialBalance)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLedger) GetAccount(_ context.Context, id int64) (*models.Account, error) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLedger) Deposit(_ context.Context, id int64, amount decimal.Decimal) (*models.Account, error) {
	if m.depositFn != nil {
		return m.depositFn(id, amount)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLedger) Withdraw(_ context.Context, id int64, amount decimal.Decimal) (*models.Account, error) {
	if m.withdrawFn != nil {
		return m.withdrawFn(id, amount)
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLedger) ListAccounts(_ context.Context) ([]models.Account, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return nil, fmt.Errorf("not configured")
}
func (m *mockLedger) DeleteAccount(_ context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(id)
	}
	return fmt.Errorf("not configured")
}

// ---- helpers ----

func newAccountTestRouter(l LedgerService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewAccountHandler(l)
	api := r.Group("/api/accounts")
	api.POST("", h.OpenAccount)
	api.GET("", h.ListAccounts)
	api.GET("/:id", h.GetAccount)
	api.PUT("/:id/deposit", h.Deposit)
	api.PUT("/:id/withdraw", h.Withdraw)
	api.DELETE("/:id", h.DeleteAccount)
	return r
}

func doRequest(router *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, url, nil)
	if body != nil {
		b, _ := json.Marshal(body)
		req, _ = http.NewRequest(method, url, strings.NewReader(string(b)))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// ---- test data ----

func testAccount(balance string) *models.Account {
	return &models.Account{
		ID:         1,
		HolderName: "John Doe",
		Balance:    decimal.RequireFromString(balance),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// ---- tests ----

func TestOpenAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		openFn         func(string, decimal.Decimal) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "success - open account",
			body: map[string]interface{}{"holderName": "John Doe", "initialBalance": 1000.0},
			openFn: func(string, decimal.Decimal) (*models.Account, error) {
				return testAccount("1000"), nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing holder name",
			body:           map[string]interface{}{"initialBalance": 1000.0},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "bad request - body is not an object",
			body:           "not an account",
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - negative opening balance",
			body: map[string]interface{}{"holderName": "John Doe", "initialBalance": -5.0},
			openFn: func(string, decimal.Decimal) (*models.Account, error) {
				return nil, ledger.ErrInvalidAmount
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "storage failure",
			body: map[string]interface{}{"holderName": "John Doe"},
			openFn: func(string, decimal.Decimal) (*models.Account, error) {
				return nil, ledger.ErrStorage
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockLedger{openFn: tt.openFn})
			w := doRequest(router, http.MethodPost, "/api/accounts", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestGetAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		getFn          func(int64) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "success",
			url:  "/api/accounts/1",
			getFn: func(id int64) (*models.Account, error) {
				return testAccount("100"), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			url:  "/api/accounts/404",
			getFn: func(int64) (*models.Account, error) {
				return nil, ledger.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - non-numeric id",
			url:            "/api/accounts/abc",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockLedger{getFn: tt.getFn})
			w := doRequest(router, http.MethodGet, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDepositHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		depositFn      func(int64, decimal.Decimal) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]interface{}{"amount": 500.0},
			depositFn: func(int64, decimal.Decimal) (*models.Account, error) {
				return testAccount("1500"), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "invalid amount",
			body: map[string]interface{}{"amount": -1.0},
			depositFn: func(int64, decimal.Decimal) (*models.Account, error) {
				return nil, ledger.ErrInvalidAmount
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "account not found",
			body: map[string]interface{}{"amount": 500.0},
			depositFn: func(int64, decimal.Decimal) (*models.Account, error) {
				return nil, ledger.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockLedger{depositFn: tt.depositFn})
			w := doRequest(router, http.MethodPut, "/api/accounts/1/deposit", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestWithdrawHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		withdrawFn     func(int64, decimal.Decimal) (*models.Account, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]interface{}{"amount": 300.0},
			withdrawFn: func(int64, decimal.Decimal) (*models.Account, error) {
				return testAccount("700"), nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "insufficient funds",
			body: map[string]interface{}{"amount": 2000.0},
			withdrawFn: func(int64, decimal.Decimal) (*models.Account, error) {
				return nil, ledger.ErrInsufficientFunds
			},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name: "account not found",
			body: map[string]interface{}{"amount": 300.0},
			withdrawFn: func(int64, decimal.Decimal) (*models.Account, error) {
				return nil, ledger.ErrAccountNotFound
			},
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockLedger{withdrawFn: tt.withdrawFn})
			w := doRequest(router, http.MethodPut, "/api/accounts/1/withdraw", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListAccountsHandler(t *testing.T) {
	router := newAccountTestRouter(&mockLedger{
		listFn: func() ([]models.Account, error) {
			return []models.Account{*testAccount("1200")}, nil
		},
	})
	w := doRequest(router, http.MethodGet, "/api/accounts", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp ListAccountsResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Accounts) != 1 || resp.Accounts[0].ID != 1 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if !resp.Accounts[0].Balance.Equal(decimal.RequireFromString("1200")) {
		t.Errorf("expected balance 1200, got %s", resp.Accounts[0].Balance)
	}
}

func TestListAccountsHandlerStorageFailure(t *testing.T) {
	router := newAccountTestRouter(&mockLedger{
		listFn: func() ([]models.Account, error) {
			return nil, ledger.ErrStorage
		},
	})
	w := doRequest(router, http.MethodGet, "/api/accounts", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", w.Code)
	}
}

func TestDeleteAccountHandler(t *testing.T) {
	tests := []struct {
		name           string
		deleteFn       func(int64) error
		expectedStatus int
	}{
		{
			name:           "success",
			deleteFn:       func(int64) error { return nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			deleteFn:       func(int64) error { return ledger.ErrAccountNotFound },
			expectedStatus: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newAccountTestRouter(&mockLedger{deleteFn: tt.deleteFn})
			w := doRequest(router, http.MethodDelete, "/api/accounts/1", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d (%s)", tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
