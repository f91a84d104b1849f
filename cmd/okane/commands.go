package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"

	"github.com/gnzdotmx/okane-track-sub000/internal/app"
	"github.com/gnzdotmx/okane-track-sub000/internal/config"
	apperrors "github.com/gnzdotmx/okane-track-sub000/internal/errors"
	"github.com/gnzdotmx/okane-track-sub000/internal/models"
)

var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr

	openApp = func() (*app.App, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		return app.Open(cfg)
	}
)

var commands = []subcommands.Command{
	&importCmd{},
	&exportCmd{},
	&recalcCmd{},
	&budgetsCmd{},
	&ratesCmd{},
}

// credentials identifies the user a command acts for.
type credentials struct {
	email    string
	password string
}

func (c *credentials) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.email, "email", os.Getenv("OKANE_EMAIL"), "user email (default $OKANE_EMAIL)")
	f.StringVar(&c.password, "password", os.Getenv("OKANE_PASSWORD"), "user password (default $OKANE_PASSWORD)")
}

func (c *credentials) login(ctx context.Context, a *app.App) (*models.User, error) {
	if c.email == "" || c.password == "" {
		return nil, errors.New("-email and -password are required")
	}
	return a.Services.Users.AttemptLogin(ctx, c.email, c.password)
}

// run opens the application and reports fn's error on stderr.
func run(ctx context.Context, fn func(context.Context, *app.App) error) subcommands.ExitStatus {
	a, err := openApp()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fn(ctx, a); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			fmt.Fprintf(stderr, "Error: %s (%s)\n", appErr.Message, appErr.Code)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
