package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/pagination"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/testutil"
)

func TestCreateAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults_to_base_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAccountService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)

		account, err := svc.CreateAccount(ctx, user.ID, AccountInput{Name: " Wallet ", InitialBalance: decimal.NewFromInt(250)})
		testutil.AssertNoError(t, err)

		if account.Name != "Wallet" || account.Type != models.AccountTypeChecking {
			t.Errorf("unexpected account %+v", account)
		}
		if account.Currency == nil || account.Currency.Code != testutil.DefaultBaseCurrency {
			t.Errorf("expected base currency, got %+v", account.Currency)
		}
		stored := testutil.ReloadAccount(t, db, account.ID)
		testutil.AssertDecimal(t, "250", stored.Balance, "balance")
		if !stored.InitialBalance.Valid {
			t.Fatal("expected initial balance to be set")
		}
		testutil.AssertDecimal(t, "250", stored.InitialBalance.Decimal, "initial balance")
	})

	t.Run("explicit_currency", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewAccountService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)
		usd := testutil.CreateTestCurrency(t, db, "USD", "0.05")

		account, err := svc.CreateAccount(ctx, user.ID, AccountInput{Name: "Dollars", Type: models.AccountTypeSavings, CurrencyCode: "usd"})
		testutil.AssertNoError(t, err)
		if account.CurrencyID != usd.ID {
			t.Errorf("expected USD account, got currency %s", account.CurrencyID)
		}
	})

	t.Run("errors", func(t *testing.T) {
		db := testutil.SetupTestDBWithBase(t, "")
		svc := NewAccountService(repository.NewStore(db))
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateAccount(ctx, user.ID, AccountInput{Name: "  "})
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateAccount(ctx, user.ID, AccountInput{Name: "No base"})
		testutil.AssertAppError(t, err, "BASE_CURRENCY_NOT_CONFIGURED")

		_, err = svc.CreateAccount(ctx, user.ID, AccountInput{Name: "Bad code", CurrencyCode: "XYZ"})
		testutil.AssertAppError(t, err, "CURRENCY_NOT_FOUND")
	})
}

func TestGetUserAccounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewAccountService(repository.NewStore(db))
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)

	for i := 0; i < 3; i++ {
		testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})
	}
	testutil.CreateTestAccount(t, db, other.ID, testutil.AccountOpts{})

	page, err := svc.GetUserAccounts(ctx, user.ID, pagination.PageRequest{Page: 1, PageSize: 2})
	testutil.AssertNoError(t, err)
	if page.TotalItems != 3 || len(page.Data) != 2 {
		t.Errorf("unexpected page %+v", page)
	}
}

func TestGetAccountByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewAccountService(repository.NewStore(db))
	user := testutil.CreateTestUser(t, db)
	other := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{})

	t.Run("owner", func(t *testing.T) {
		got, err := svc.GetAccountByID(ctx, user.ID, account.ID)
		testutil.AssertNoError(t, err)
		if got.ID != account.ID {
			t.Errorf("expected %s, got %s", account.ID, got.ID)
		}
	})

	t.Run("other_user", func(t *testing.T) {
		_, err := svc.GetAccountByID(ctx, other.ID, account.ID)
		testutil.AssertAppError(t, err, "ACCOUNT_NOT_FOUND")
	})
}
