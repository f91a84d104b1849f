package services

import (
	"context"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/testutil"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(repository.NewStore(db))

		user, err := svc.CreateUser(ctx, " Alice@Example.com ", "password123", "Alice", "Smith")
		testutil.AssertNoError(t, err)

		if user.ID == "" {
			t.Fatal("expected user ID to be assigned")
		}
		if user.Email != "alice@example.com" {
			t.Errorf("expected normalised email, got %s", user.Email)
		}
		if !user.IsActive {
			t.Error("expected user to be active")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")); err != nil {
			t.Error("expected password to be stored as a bcrypt hash")
		}
	})

	t.Run("duplicate_email", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(repository.NewStore(db))

		_, err := svc.CreateUser(ctx, "dup@example.com", "password123", "", "")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateUser(ctx, "DUP@example.com", "password456", "", "")
		testutil.AssertAppError(t, err, "DUPLICATE_EMAIL")
	})

	t.Run("missing_fields", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := NewUserService(repository.NewStore(db))

		_, err := svc.CreateUser(ctx, "", "password123", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateUser(ctx, "a@example.com", "", "", "")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})
}

func TestGetUserByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewUserService(repository.NewStore(db))
	user := testutil.CreateTestUser(t, db)

	t.Run("found", func(t *testing.T) {
		got, err := svc.GetUserByID(ctx, user.ID)
		testutil.AssertNoError(t, err)
		if got.Email != user.Email {
			t.Errorf("expected %s, got %s", user.Email, got.Email)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		_, err := svc.GetUserByID(ctx, "00000000-0000-7000-8000-000000000000")
		testutil.AssertAppError(t, err, "USER_NOT_FOUND")
	})
}

func TestAttemptLogin(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)
	svc := NewUserService(repository.NewStore(db))
	user := testutil.CreateTestUser(t, db)

	t.Run("valid_credentials", func(t *testing.T) {
		got, err := svc.AttemptLogin(ctx, user.Email, "password123")
		testutil.AssertNoError(t, err)
		if got.ID != user.ID {
			t.Errorf("expected %s, got %s", user.ID, got.ID)
		}
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := svc.AttemptLogin(ctx, user.Email, "nope")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("unknown_email", func(t *testing.T) {
		_, err := svc.AttemptLogin(ctx, "ghost@example.com", "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})

	t.Run("inactive_user", func(t *testing.T) {
		inactive := testutil.CreateTestUser(t, db)
		db.Model(inactive).Update("is_active", false)

		_, err := svc.AttemptLogin(ctx, inactive.Email, "password123")
		testutil.AssertAppError(t, err, "INVALID_CREDENTIALS")
	})
}
