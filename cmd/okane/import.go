package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/subcommands"

	"github.com/gnzdotmx/okane-track-sub000/internal/app"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
)

type importCmd struct {
	credentials
	account string
	file    string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "imports transactions from a CSV file" }
func (*importCmd) Usage() string {
	return `import -email <email> -password <password> -file <statement.csv> [-account <id>]

Validates every row, inserts the valid ones, skips rows imported before and
reconciles the affected accounts and budgets. Prints the import summary.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.setFlags(f)
	f.StringVar(&c.account, "account", "", "account ID applied to every row")
	f.StringVar(&c.file, "file", "", "path of the CSV file")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		fmt.Fprintln(stderr, "Error: -file is required.")
		return subcommands.ExitUsageError
	}

	return run(ctx, func(ctx context.Context, a *app.App) error {
		user, err := c.login(ctx, a)
		if err != nil {
			return err
		}
		content, err := os.ReadFile(c.file)
		if err != nil {
			return err
		}

		result, err := a.Services.Imports.ImportTransactions(ctx, services.ImportRequest{
			UserID:    user.ID,
			AccountID: c.account,
			FileName:  filepath.Base(c.file),
			Content:   content,
		})
		if err != nil {
			return err
		}
		a.Services.Audit.Log(user.ID, "IMPORT_TRANSACTIONS", "import", result.ImportID, "cli",
			map[string]interface{}{"file_name": filepath.Base(c.file), "inserted": result.InsertedCount, "errors": result.ErrorCount})
		return printJSON(result)
	})
}

type exportCmd struct {
	credentials
	account string
	out     string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "exports transactions to CSV" }
func (*exportCmd) Usage() string {
	return `export -email <email> -password <password> [-account <id>] [-out <file.csv>]

Writes the user's transactions, oldest first, in the import format. Without
-out the CSV goes to stdout.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.setFlags(f)
	f.StringVar(&c.account, "account", "", "only export this account")
	f.StringVar(&c.out, "out", "", "output file (default stdout)")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app.App) error {
		user, err := c.login(ctx, a)
		if err != nil {
			return err
		}

		var filter repository.TransactionFilter
		if c.account != "" {
			filter.AccountID = &c.account
		}
		data, err := a.Services.Exports.ExportTransactions(ctx, user.ID, filter)
		if err != nil {
			return err
		}

		if c.out == "" {
			_, err = stdout.Write(data)
			return err
		}
		return os.WriteFile(c.out, data, 0o600)
	})
}
