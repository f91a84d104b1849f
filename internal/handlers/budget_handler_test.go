package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("", injectUserID(testUserID))
	auth.POST("/budgets", handler.CreateBudget)
	auth.GET("/budgets", handler.GetUserBudgets)
	auth.POST("/budgets/recompute", handler.RecomputeBudgets)
	return r
}

func TestBudgetHandler_CreateBudget(t *testing.T) {
	t.Run("returns 201", func(t *testing.T) {
		var gotYear int
		var gotStart decimal.Decimal
		budgetSvc := &mockBudgetService{
			createBudgetFn: func(_, categoryID string, year int, starting decimal.Decimal) (*models.Budget, error) {
				gotYear, gotStart = year, starting
				return &models.Budget{CategoryID: categoryID, Year: year, StartingBalance: starting, CurrentBalance: starting}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, audit))

		rec := doRequest(r, http.MethodPost, "/budgets", `{"category_id":"`+testCatID+`","year":2024,"starting_balance":"1000"}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotYear != 2024 || !gotStart.Equal(decimal.NewFromInt(1000)) {
			t.Errorf("unexpected input year=%d start=%s", gotYear, gotStart)
		}
		if _, ok := parseJSON(t, rec)["budget"]; !ok {
			t.Error("expected budget in response")
		}
		if actions := audit.actions(); len(actions) != 1 || actions[0] != "CREATE_BUDGET" {
			t.Errorf("expected audit entry, got %v", actions)
		}
	})

	t.Run("validates_payload", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		for _, body := range []string{
			`{"year":2024}`,
			`{"category_id":"nope","year":2024}`,
			`{"category_id":"` + testCatID + `","year":12}`,
		} {
			rec := doRequest(r, http.MethodPost, "/budgets", body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("%s: expected 400, got %d", body, rec.Code)
			}
		}
	})

	t.Run("unknown_category", func(t *testing.T) {
		budgetSvc := &mockBudgetService{
			createBudgetFn: func(string, string, int, decimal.Decimal) (*models.Budget, error) {
				return nil, apperrors.ErrCategoryNotFound
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

		rec := doRequest(r, http.MethodPost, "/budgets", `{"category_id":"`+testCatID+`","year":2024}`)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetUserBudgets(t *testing.T) {
	var gotYear *int
	budgetSvc := &mockBudgetService{
		getUserBudgetsFn: func(_ string, year *int) ([]models.Budget, error) {
			gotYear = year
			return []models.Budget{{Year: 2024}}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc, &mockAuditService{}))

	rec := doRequest(r, http.MethodGet, "/budgets?year=2024", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if gotYear == nil || *gotYear != 2024 {
		t.Errorf("expected year filter 2024, got %v", gotYear)
	}

	rec = doRequest(r, http.MethodGet, "/budgets", "")
	if rec.Code != http.StatusOK || gotYear != nil {
		t.Errorf("expected unfiltered list, got %d year=%v", rec.Code, gotYear)
	}

	if rec := doRequest(r, http.MethodGet, "/budgets?year=last", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestBudgetHandler_RecomputeBudgets(t *testing.T) {
	var gotYear int
	budgetSvc := &mockBudgetService{
		recomputeUserBudgetsFn: func(_ string, year int) ([]models.Budget, error) {
			gotYear = year
			return []models.Budget{{Year: year}}, nil
		},
	}
	audit := &mockAuditService{}
	r := setupBudgetRouter(NewBudgetHandler(budgetSvc, audit))

	rec := doRequest(r, http.MethodPost, "/budgets/recompute", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if gotYear != time.Now().UTC().Year() {
		t.Errorf("expected current year, got %d", gotYear)
	}

	rec = doRequest(r, http.MethodPost, "/budgets/recompute", `{"year":2023}`)
	if rec.Code != http.StatusOK || gotYear != 2023 {
		t.Errorf("expected 2023, got %d (status %d)", gotYear, rec.Code)
	}
	if len(audit.actions()) != 2 {
		t.Errorf("expected 2 audit entries, got %v", audit.actions())
	}
}
