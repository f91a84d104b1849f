package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/gnzdotmx/okane-track-sub000/internal/exchange"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
	"github.com/gnzdotmx/okane-track-sub000/internal/validator"
)

const (
	testUserID    = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b"
	testAccountID = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5c"
	testTxID      = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5d"
	testCatID     = "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5e"
)

// --- mock services ---

type mockUserService struct {
	createUserFn   func(email, password, firstName, lastName string) (*models.User, error)
	getUserByIDFn  func(id string) (*models.User, error)
	attemptLoginFn func(email, password string) (*models.User, error)
}

func (m *mockUserService) CreateUser(_ context.Context, email, password, firstName, lastName string) (*models.User, error) {
	if m.createUserFn != nil {
		return m.createUserFn(email, password, firstName, lastName)
	}
	return &models.User{}, nil
}

func (m *mockUserService) GetUserByID(_ context.Context, id string) (*models.User, error) {
	if m.getUserByIDFn != nil {
		return m.getUserByIDFn(id)
	}
	return &models.User{}, nil
}

func (m *mockUserService) AttemptLogin(_ context.Context, email, password string) (*models.User, error) {
	if m.attemptLoginFn != nil {
		return m.attemptLoginFn(email, password)
	}
	return &models.User{}, nil
}

type mockAccountService struct {
	createAccountFn   func(userID string, input services.AccountInput) (*models.Account, error)
	getUserAccountsFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error)
	getAccountByIDFn  func(userID, accountID string) (*models.Account, error)
}

func (m *mockAccountService) CreateAccount(_ context.Context, userID string, input services.AccountInput) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(userID, input)
	}
	return &models.Account{}, nil
}

func (m *mockAccountService) GetUserAccounts(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.Account], error) {
	if m.getUserAccountsFn != nil {
		return m.getUserAccountsFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.Account{}, 1, 20, 0)
	return &resp, nil
}

func (m *mockAccountService) GetAccountByID(_ context.Context, userID, accountID string) (*models.Account, error) {
	if m.getAccountByIDFn != nil {
		return m.getAccountByIDFn(userID, accountID)
	}
	return &models.Account{}, nil
}

type mockBalanceService struct {
	recalculateFn func(userID, accountID string, initial *decimal.Decimal) (*services.BalanceResult, error)
}

func (m *mockBalanceService) RecomputeAccountBalance(ctx context.Context, userID, accountID string) (decimal.Decimal, error) {
	result, err := m.RecalculateAccountBalance(ctx, userID, accountID, nil)
	if err != nil {
		return decimal.Zero, err
	}
	return result.CalculatedBalance, nil
}

func (m *mockBalanceService) RecalculateAccountBalance(_ context.Context, userID, accountID string, initial *decimal.Decimal) (*services.BalanceResult, error) {
	if m.recalculateFn != nil {
		return m.recalculateFn(userID, accountID, initial)
	}
	return &services.BalanceResult{}, nil
}

func (m *mockBalanceService) RebaseAccountBalance(ctx context.Context, userID, accountID string, start decimal.Decimal) (*services.BalanceResult, error) {
	return m.RecalculateAccountBalance(ctx, userID, accountID, &start)
}

type mockBudgetService struct {
	createBudgetFn         func(userID, categoryID string, year int, starting decimal.Decimal) (*models.Budget, error)
	getUserBudgetsFn       func(userID string, year *int) ([]models.Budget, error)
	recomputeUserBudgetsFn func(userID string, year int) ([]models.Budget, error)
}

func (m *mockBudgetService) RecomputeBudgetBalance(context.Context, string, string, int) (*models.Budget, error) {
	return nil, nil
}

func (m *mockBudgetService) RecomputeUserBudgets(_ context.Context, userID string, year int) ([]models.Budget, error) {
	if m.recomputeUserBudgetsFn != nil {
		return m.recomputeUserBudgetsFn(userID, year)
	}
	return []models.Budget{}, nil
}

func (m *mockBudgetService) CreateBudget(_ context.Context, userID, categoryID string, year int, starting decimal.Decimal) (*models.Budget, error) {
	if m.createBudgetFn != nil {
		return m.createBudgetFn(userID, categoryID, year, starting)
	}
	return &models.Budget{}, nil
}

func (m *mockBudgetService) GetUserBudgets(_ context.Context, userID string, year *int) ([]models.Budget, error) {
	if m.getUserBudgetsFn != nil {
		return m.getUserBudgetsFn(userID, year)
	}
	return []models.Budget{}, nil
}

type mockCurrencyService struct {
	convertFn        func(amount decimal.Decimal, from, to string) (decimal.Decimal, error)
	convertToBaseFn  func(amount decimal.Decimal, code string) (decimal.Decimal, error)
	updateRatesFn    func() (*services.RateUpdateSummary, error)
	createCurrencyFn func(code, name, symbol string, rate decimal.Decimal) (*models.Currency, error)
	listFn           func() ([]models.Currency, error)
	baseFn           func() (*models.Currency, error)
}

func (m *mockCurrencyService) Convert(_ context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if m.convertFn != nil {
		return m.convertFn(amount, from, to)
	}
	return amount, nil
}

func (m *mockCurrencyService) ConvertToBaseCurrency(_ context.Context, amount decimal.Decimal, code string) (decimal.Decimal, error) {
	if m.convertToBaseFn != nil {
		return m.convertToBaseFn(amount, code)
	}
	return amount, nil
}

func (m *mockCurrencyService) FetchExchangeRates(context.Context, string) *exchange.RateSet {
	return nil
}

func (m *mockCurrencyService) UpdateExchangeRates(context.Context) (*services.RateUpdateSummary, error) {
	if m.updateRatesFn != nil {
		return m.updateRatesFn()
	}
	return &services.RateUpdateSummary{}, nil
}

func (m *mockCurrencyService) CreateCurrency(_ context.Context, code, name, symbol string, rate decimal.Decimal) (*models.Currency, error) {
	if m.createCurrencyFn != nil {
		return m.createCurrencyFn(code, name, symbol, rate)
	}
	return &models.Currency{Code: code}, nil
}

func (m *mockCurrencyService) ListCurrencies(context.Context) ([]models.Currency, error) {
	if m.listFn != nil {
		return m.listFn()
	}
	return []models.Currency{}, nil
}

func (m *mockCurrencyService) BaseCurrency(context.Context) (*models.Currency, error) {
	if m.baseFn != nil {
		return m.baseFn()
	}
	return &models.Currency{Code: "MXN", IsBase: true}, nil
}

type mockTransactionService struct {
	createFn  func(userID string, input services.TransactionInput) (*models.Transaction, error)
	updateFn  func(userID, transactionID string, input services.TransactionInput) (*models.Transaction, error)
	deleteFn  func(userID, transactionID string) error
	getByIDFn func(userID, transactionID string) (*models.Transaction, error)
	listFn    func(userID string, page pagination.PageRequest, filter repository.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockTransactionService) CreateTransaction(_ context.Context, userID string, input services.TransactionInput) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) UpdateTransaction(_ context.Context, userID, transactionID string, input services.TransactionInput) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, transactionID, input)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) DeleteTransaction(_ context.Context, userID, transactionID string) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, transactionID)
	}
	return nil
}

func (m *mockTransactionService) GetTransactionByID(_ context.Context, userID, transactionID string) (*models.Transaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(_ context.Context, userID string, page pagination.PageRequest, filter repository.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, 1, 20, 0)
	return &resp, nil
}

type mockImportService struct {
	importFn  func(req services.ImportRequest) (*services.ImportResult, error)
	historyFn func(userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ImportHistory], error)
}

func (m *mockImportService) ImportTransactions(_ context.Context, req services.ImportRequest) (*services.ImportResult, error) {
	if m.importFn != nil {
		return m.importFn(req)
	}
	return &services.ImportResult{Success: true}, nil
}

func (m *mockImportService) GetImportHistory(_ context.Context, userID string, page pagination.PageRequest) (*pagination.PageResponse[models.ImportHistory], error) {
	if m.historyFn != nil {
		return m.historyFn(userID, page)
	}
	resp := pagination.NewPageResponse([]models.ImportHistory{}, 1, 20, 0)
	return &resp, nil
}

type mockExportService struct {
	exportFn func(userID string, filter repository.TransactionFilter) ([]byte, error)
}

func (m *mockExportService) ExportTransactions(_ context.Context, userID string, filter repository.TransactionFilter) ([]byte, error) {
	if m.exportFn != nil {
		return m.exportFn(userID, filter)
	}
	return []byte{}, nil
}

type mockReportService struct {
	summarizeFn func(userID string, from, to time.Time) (*services.Summary, error)
}

func (m *mockReportService) Summarize(_ context.Context, userID string, from, to time.Time) (*services.Summary, error) {
	if m.summarizeFn != nil {
		return m.summarizeFn(userID, from, to)
	}
	return &services.Summary{}, nil
}

type mockLookupService struct{}

func (mockLookupService) ListCategories(context.Context) ([]models.BudgetCategory, error) {
	return []models.BudgetCategory{{Name: "Necesidades"}, {Name: "Otros"}}, nil
}

func (mockLookupService) ListExpenseTypes(context.Context) ([]models.ExpenseType, error) {
	return []models.ExpenseType{{Name: "Comida"}}, nil
}

type auditEntry struct {
	userID, action, resourceType, resourceID string
	changes                                  map[string]interface{}
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(userID, action, resourceType, resourceID, _ string, changes map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{userID, action, resourceType, resourceID, changes})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.action
	}
	return out
}

// verify interface compliance
var (
	_ services.UserServicer        = (*mockUserService)(nil)
	_ services.AccountServicer     = (*mockAccountService)(nil)
	_ services.BalanceServicer     = (*mockBalanceService)(nil)
	_ services.BudgetServicer      = (*mockBudgetService)(nil)
	_ services.CurrencyServicer    = (*mockCurrencyService)(nil)
	_ services.TransactionServicer = (*mockTransactionService)(nil)
	_ services.ImportServicer      = (*mockImportService)(nil)
	_ services.ExportServicer      = (*mockExportService)(nil)
	_ services.ReportServicer      = (*mockReportService)(nil)
	_ services.LookupServicer      = mockLookupService{}
	_ services.AuditServicer       = (*mockAuditService)(nil)
)

// --- test helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectUserID(uid string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", uid)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
