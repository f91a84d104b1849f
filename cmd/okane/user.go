package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"github.com/gnzdotmx/okane-track-sub000/internal/app"
	"github.com/gnzdotmx/okane-track-sub000/internal/middleware"
)

type userCmd struct {
	credentials
	firstName string
	lastName  string
}

func (*userCmd) Name() string     { return "user" }
func (*userCmd) Synopsis() string { return "creates a user and prints an API token" }
func (*userCmd) Usage() string {
	return `user -email <email> -password <password> [-first <name>] [-last <name>]
`
}

func (c *userCmd) SetFlags(f *flag.FlagSet) {
	c.credentials.setFlags(f)
	f.StringVar(&c.firstName, "first", "", "first name")
	f.StringVar(&c.lastName, "last", "", "last name")
}

func (c *userCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return run(ctx, func(ctx context.Context, a *app.App) error {
		user, err := a.Services.Users.CreateUser(ctx, c.email, c.password, c.firstName, c.lastName)
		if err != nil {
			return err
		}
		token, err := middleware.GenerateToken(user)
		if err != nil {
			return err
		}
		a.Services.Audit.Log(user.ID, "REGISTER", "user", user.ID, "cli", nil)
		fmt.Fprintf(stdout, "created user %s\n%s\n", user.ID, token)
		return nil
	})
}
