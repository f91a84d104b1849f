package services

import (
	"context"
	"testing"
	"time"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/testutil"
)

func TestSummarize(t *testing.T) {
	ctx := context.Background()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC)

	t.Run("totals_in_base_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewReportService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
		usd := testutil.CreateTestCurrency(t, db, "USD", "0.05")
		mid := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeIncome, Amount: "1000", Date: mid})
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeExpense, Amount: "200", Date: mid})
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeExpense, Amount: "10", Date: mid, CurrencyID: usd.ID})
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeReimbursement, Amount: "50", Date: mid})
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeTransfer, Amount: "70", Date: mid, ExpenseTag: "Transferencia Entre Cuentas"})
		testutil.CreateTestTransaction(t, db, account, testutil.TxOpts{Type: models.TransactionTypeIncome, Amount: "999", Date: mid.AddDate(0, 1, 0)})

		summary, err := svc.Summarize(ctx, user.ID, from, to)
		testutil.AssertNoError(t, err)

		testutil.AssertDecimal(t, "1000", summary.Income, "income")
		testutil.AssertDecimal(t, "400", summary.Expenses, "expenses")
		testutil.AssertDecimal(t, "600", summary.Net, "net")
		if summary.Transactions != 5 || summary.ExcludedCount != 2 {
			t.Errorf("expected 5 transactions with 2 excluded, got %d/%d", summary.Transactions, summary.ExcludedCount)
		}
		if summary.BaseCurrency != testutil.DefaultBaseCurrency {
			t.Errorf("expected base %s, got %s", testutil.DefaultBaseCurrency, summary.BaseCurrency)
		}
	})

	t.Run("inverted_range", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewReportService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Summarize(ctx, user.ID, to, from)
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("no_base_currency", func(t *testing.T) {
		db := testutil.SetupTestDBWithBase(t, "")
		svc := NewReportService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.Summarize(ctx, user.ID, from, to)
		testutil.AssertAppError(t, err, "BASE_CURRENCY_NOT_CONFIGURED")
	})
}
