package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/ecotrajet/carpool/internal/session"
)

func (a *App) loginCommand() *Command {
	var token string
	return &Command{
		Name:    "login",
		Summary: "Store the bearer token issued by the identity provider",
		Usage:   "ecotrajet login --token <jwt>",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&token, "token", "", "access token (JWT)")
			return fs
		},
		Run: func(_ context.Context, _ []string) error {
			token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
			if token == "" {
				return errors.New("--token is required")
			}
			user, err := session.UserFromToken(token)
			if err != nil {
				return fmt.Errorf("token rejected: %w", err)
			}
			if err := a.session.Save(token); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", describeUser(user.DisplayName(), user.Username))
			return nil
		},
	}
}

func (a *App) logoutCommand() *Command {
	return &Command{
		Name:    "logout",
		Summary: "Forget the stored token",
		Run: func(_ context.Context, _ []string) error {
			if err := a.session.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}
}

func (a *App) whoamiCommand() *Command {
	return &Command{
		Name:    "whoami",
		Summary: "Show the user named by the stored token",
		Run: func(_ context.Context, _ []string) error {
			user, err := a.currentUser()
			if err != nil {
				return err
			}
			if user.Anonymous() {
				fmt.Fprintln(a.out, "Not logged in")
				return nil
			}
			fmt.Fprintf(a.out, "%s (id %s)\n", describeUser(user.DisplayName(), user.Username), user.ID)
			return nil
		},
	}
}

func describeUser(name, username string) string {
	if username == "" || username == name {
		return name
	}
	return fmt.Sprintf("%s (@%s)", name, username)
}
