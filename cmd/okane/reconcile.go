package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"github.com/gnzdotmx/okane-track-sub000/internal/app"
)

type recalcCmd struct {
	credentials
	account string
	initial string
}

func (*recalcCmd) Name() string     { return "recalc" }
func (*recalcCmd) Synopsis() string { return "recalculates an account balance from its transactions" }
func (*recalcCmd) Usage() string {
	return `recalc -email <email> -password <password> -account <id> [-initial <amount>]

Rewrites the account balance as the initial balance plus the signed sum of its
transactions. With -initial the initial balance is replaced first; without it
a missing initial balance is inferred from the stored balance.
`
}

func (c *recalcCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.setFlags(f)
	f.StringVar(&c.account, "account", "", "account ID")
	f.StringVar(&c.initial, "initial", "", "explicit initial balance")
}

func (c *recalcCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}
	var initial *decimal.Decimal
	if c.initial != "" {
		d, err := decimal.NewFromString(c.initial)
		if err != nil {
			fmt.Fprintf(stderr, "Error: invalid -initial %q\n", c.initial)
			return subcommands.ExitUsageError
		}
		initial = &d
	}

	return run(ctx, func(ctx context.Context, a *app.App) error {
		user, err := c.login(ctx, a)
		if err != nil {
			return err
		}
		result, err := a.Services.Balances.RecalculateAccountBalance(ctx, user.ID, c.account, initial)
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}

type budgetsCmd struct {
	credentials
	year int
}

func (*budgetsCmd) Name() string     { return "budgets" }
func (*budgetsCmd) Synopsis() string { return "recomputes every budget of a year" }
func (*budgetsCmd) Usage() string {
	return `budgets -email <email> -password <password> [-year <yyyy>]
`
}

func (c *budgetsCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.setFlags(f)
	f.IntVar(&c.year, "year", time.Now().UTC().Year(), "budget year")
}

func (c *budgetsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app.App) error {
		user, err := c.login(ctx, a)
		if err != nil {
			return err
		}
		budgets, err := a.Services.Budgets.RecomputeUserBudgets(ctx, user.ID, c.year)
		if err != nil {
			return err
		}
		return printJSON(budgets)
	})
}

type ratesCmd struct{}

func (*ratesCmd) Name() string     { return "rates" }
func (*ratesCmd) Synopsis() string { return "refreshes exchange rates from the configured providers" }
func (*ratesCmd) Usage() string {
	return `rates

Fetches rates against the base currency from the primary provider, falling back
to the secondary one, and stores them. Rates no provider returns are kept.
`
}

func (*ratesCmd) SetFlags(*flag.FlagSet) {}

func (*ratesCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app.App) error {
		summary, err := a.Services.Currencies.UpdateExchangeRates(ctx)
		if err != nil {
			return err
		}
		return printJSON(summary)
	})
}
