package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/testutil"
)

func TestRecomputeBudgetBalance(t *testing.T) {
	ctx := context.Background()
	inYear := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("filters_non_budget_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
		category := testutil.Category(t, db, "Necesidades")
		testutil.CreateTestBudget(t, db, user.ID, category.ID, 2024, "1000")

		opts := func(typ, amount, tag string) testutil.TxOpts {
			return testutil.TxOpts{Type: typ, Amount: amount, Date: inYear, CategoryID: category.ID, ExpenseTag: tag}
		}
		testutil.CreateTestTransaction(t, db, account, opts(models.TransactionTypeIncome, "100", ""))
		testutil.CreateTestTransaction(t, db, account, opts(models.TransactionTypeExpense, "50", "Transferencia Entre Cuentas"))
		testutil.CreateTestTransaction(t, db, account, opts(models.TransactionTypeReimbursement, "30", ""))
		testutil.CreateTestTransaction(t, db, account, opts(models.TransactionTypeAccountTransferIn, "20", ""))

		budget, err := svc.RecomputeBudgetBalance(ctx, user.ID, category.ID, 2024)
		testutil.AssertNoError(t, err)
		if budget == nil {
			t.Fatal("expected a budget")
		}
		testutil.AssertDecimal(t, "1100", budget.CurrentBalance, "current balance")

		var stored models.Budget
		db.First(&stored, "id = ?", budget.ID)
		testutil.AssertDecimal(t, "1100", stored.CurrentBalance, "stored current balance")
	})

	t.Run("expenses_and_transfers_subtract", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
		category := testutil.Category(t, db, "Deseos")
		testutil.CreateTestBudget(t, db, user.ID, category.ID, 2024, "500")

		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeExpense, Amount: "120", Date: inYear, CategoryID: category.ID, ExpenseTag: "Comida"})
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeTransfer, Amount: "80", Date: inYear, CategoryID: category.ID})

		budget, err := svc.RecomputeBudgetBalance(ctx, user.ID, category.ID, 2024)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "300", budget.CurrentBalance, "current balance")
	})

	t.Run("only_the_budget_year_counts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
		category := testutil.Category(t, db, "Ahorro")
		testutil.CreateTestBudget(t, db, user.ID, category.ID, 2024, "0")

		edges := []time.Time{
			time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
			time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		}
		for _, d := range edges {
			testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeIncome, Amount: "10", Date: d, CategoryID: category.ID})
		}

		budget, err := svc.RecomputeBudgetBalance(ctx, user.ID, category.ID, 2024)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "20", budget.CurrentBalance, "current balance")
	})

	t.Run("converts_to_base_and_rounds", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		usd := testutil.CreateTestCurrency(t, db, "USD", "0.06")
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{CurrencyID: usd.ID})
		category := testutil.Category(t, db, "Otros")
		testutil.CreateTestBudget(t, db, user.ID, category.ID, 2024, "1000")

		// 10 USD at 0.06 per MXN is 166.666... MXN
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeExpense, Amount: "10", Date: inYear})

		budget, err := svc.RecomputeBudgetBalance(ctx, user.ID, category.ID, 2024)
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "833.33", budget.CurrentBalance, "current balance")
	})

	t.Run("no_budget_is_noop", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.Category(t, db, "Otros")

		budget, err := svc.RecomputeBudgetBalance(ctx, user.ID, category.ID, 2024)
		testutil.AssertNoError(t, err)
		if budget != nil {
			t.Errorf("expected nil budget, got %+v", budget)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
		category := testutil.Category(t, db, "Otros")
		testutil.CreateTestBudget(t, db, user.ID, category.ID, 2024, "100")
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeExpense, Amount: "40", Date: inYear})

		first, err := svc.RecomputeBudgetBalance(ctx, user.ID, category.ID, 2024)
		testutil.AssertNoError(t, err)
		second, err := svc.RecomputeBudgetBalance(ctx, user.ID, category.ID, 2024)
		testutil.AssertNoError(t, err)
		if !first.CurrentBalance.Equal(second.CurrentBalance) {
			t.Errorf("expected identical balances, got %s then %s", first.CurrentBalance, second.CurrentBalance)
		}
	})
}

func TestCreateBudget(t *testing.T) {
	ctx := context.Background()

	t.Run("reconciles_existing_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
		category := testutil.Category(t, db, "Otros")
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{
			Type: models.TransactionTypeExpense, Amount: "25", Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		})

		budget, err := svc.CreateBudget(ctx, user.ID, category.ID, 2024, decimal.NewFromInt(200))
		testutil.AssertNoError(t, err)
		testutil.AssertDecimal(t, "200", budget.StartingBalance, "starting balance")
		testutil.AssertDecimal(t, "175", budget.CurrentBalance, "current balance")
	})

	t.Run("duplicate", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		category := testutil.Category(t, db, "Otros")

		_, err := svc.CreateBudget(ctx, user.ID, category.ID, 2024, decimal.Zero)
		testutil.AssertNoError(t, err)
		_, err = svc.CreateBudget(ctx, user.ID, category.ID, 2024, decimal.Zero)
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})

	t.Run("unknown_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewBudgetService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(ctx, user.ID, "00000000-0000-7000-8000-000000000000", 2024, decimal.Zero)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestRecomputeUserBudgets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := NewBudgetService(repository.NewStore(db))
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
	needs := testutil.Category(t, db, "Necesidades")
	wants := testutil.Category(t, db, "Deseos")
	testutil.CreateTestBudget(t, db, user.ID, needs.ID, 2024, "100")
	testutil.CreateTestBudget(t, db, user.ID, wants.ID, 2024, "100")
	testutil.CreateTestBudget(t, db, user.ID, wants.ID, 2023, "100")

	date := time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC)
	testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeExpense, Amount: "10", Date: date, CategoryID: needs.ID})

	budgets, err := svc.RecomputeUserBudgets(context.Background(), user.ID, 2024)
	testutil.AssertNoError(t, err)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}
	for _, b := range budgets {
		want := "100"
		if b.CategoryID == needs.ID {
			want = "90"
		}
		testutil.AssertDecimal(t, want, b.CurrentBalance, "current balance")
	}
}
