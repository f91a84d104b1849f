package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/app"
	"github.com/gnzdotmx/okane-track-sub000/internal/config"
	"github.com/gnzdotmx/okane-track-sub000/internal/importer"
	"github.com/gnzdotmx/okane-track-sub000/internal/middleware"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
	"github.com/gnzdotmx/okane-track-sub000/internal/testutil"
)

// useTestApp points the commands at an in-memory database and captures their
// output.
func useTestApp(t *testing.T) (*gorm.DB, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := &config.Config{BaseCurrency: testutil.DefaultBaseCurrency, RatesTimeout: time.Second}

	prevOpen, prevOut, prevErr := openApp, stdout, stderr
	var out, errOut bytes.Buffer
	openApp = func() (*app.App, error) {
		return &app.App{Config: cfg, DB: db, Services: app.NewServices(db, app.NewFetcher(cfg), importer.DefaultRules())}, nil
	}
	stdout, stderr = &out, &errOut
	t.Cleanup(func() { openApp, stdout, stderr = prevOpen, prevOut, prevErr })

	return db, &out, &errOut
}

func execute(t *testing.T, cmd subcommands.Command, args ...string) subcommands.ExitStatus {
	t.Helper()
	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse(args))
	return cmd.Execute(context.Background(), fs)
}

func TestImportAndRecalcCommands(t *testing.T) {
	db, out, errOut := useTestApp(t)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID, testutil.AccountOpts{Balance: "500", InitialBalance: "500"})

	file := filepath.Join(t.TempDir(), "march.csv")
	require.NoError(t, os.WriteFile(file, []byte(
		"date,amount,type,description\n"+
			"2024-03-01,1000,INCOME,Salary\n"+
			"2024-03-02,100,EXPENSE,Groceries\n"+
			"2024-03-03,abc,EXPENSE,Broken\n"), 0o600))

	status := execute(t, &importCmd{}, "-email", user.Email, "-password", "password123", "-account", account.ID, "-file", file)
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, float64(2), result["inserted_count"])
	assert.Equal(t, float64(1), result["error_count"])
	testutil.AssertDecimal(t, "1400", testutil.ReloadAccount(t, db, account.ID).Balance, "balance after import")

	var audits int64
	db.Model(&models.AuditLog{}).Where("action = ?", "IMPORT_TRANSACTIONS").Count(&audits)
	assert.Equal(t, int64(1), audits)

	t.Run("recalc_with_explicit_initial", func(t *testing.T) {
		out.Reset()
		status := execute(t, &recalcCmd{}, "-email", user.Email, "-password", "password123", "-account", account.ID, "-initial", "0")
		require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
		testutil.AssertDecimal(t, "900", testutil.ReloadAccount(t, db, account.ID).Balance, "balance after recalc")
	})

	t.Run("export_to_stdout", func(t *testing.T) {
		out.Reset()
		status := execute(t, &exportCmd{}, "-email", user.Email, "-password", "password123")
		require.Equal(t, subcommands.ExitSuccess, status, errOut.String())
		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		assert.Len(t, lines, 3)
	})
}

func TestCommandErrors(t *testing.T) {
	db, _, errOut := useTestApp(t)
	user := testutil.CreateTestUser(t, db)

	t.Run("missing_file_flag", func(t *testing.T) {
		assert.Equal(t, subcommands.ExitUsageError, execute(t, &importCmd{}))
	})

	t.Run("bad_initial", func(t *testing.T) {
		assert.Equal(t, subcommands.ExitUsageError, execute(t, &recalcCmd{}, "-account", "x", "-initial", "lots"))
	})

	t.Run("wrong_password", func(t *testing.T) {
		errOut.Reset()
		status := execute(t, &budgetsCmd{}, "-email", user.Email, "-password", "nope")
		assert.Equal(t, subcommands.ExitFailure, status)
		assert.Contains(t, errOut.String(), "INVALID_CREDENTIALS")
	})

	t.Run("open_failure", func(t *testing.T) {
		prev := openApp
		openApp = func() (*app.App, error) { return nil, errors.New("no database") }
		defer func() { openApp = prev }()

		errOut.Reset()
		assert.Equal(t, subcommands.ExitFailure, execute(t, &ratesCmd{}))
		assert.Contains(t, errOut.String(), "no database")
	})
}

func TestUserCommand(t *testing.T) {
	_, out, errOut := useTestApp(t)

	status := execute(t, &userCmd{}, "-email", "New@Example.com", "-password", "s3cret-pass", "-first", "Ana")
	require.Equal(t, subcommands.ExitSuccess, status, errOut.String())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	claims, err := middleware.ParseToken(lines[1])
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", claims.Email)
	assert.Contains(t, lines[0], claims.UserID)
}
