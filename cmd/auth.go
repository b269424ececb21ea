package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"github.com/google/subcommands"
)

// loginCmd holds the flags for the 'login' subcommand.
type loginCmd struct {
	credential string
	sub        string
	email      string
	name       string
}

func (*loginCmd) Name() string     { return "login" }
func (*loginCmd) Synopsis() string { return "switch to the ledger of a user" }
func (*loginCmd) Usage() string {
	return `smallbatch login -credential <id token>
smallbatch login -sub <id> [-email <email>] [-name <name>]

  Selects the ledger of a user. The credential is a Google Sign-In ID token,
  only its subject, email and name are read. Each user has a separate ledger;
  the guest ledger is used when nobody is logged in.
`
}

func (c *loginCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.credential, "credential", "", "Google Sign-In ID token")
	f.StringVar(&c.sub, "sub", "", "user id")
	f.StringVar(&c.email, "email", "", "user email")
	f.StringVar(&c.name, "name", "", "user display name")
}

func (c *loginCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	var u *ledger.User
	switch {
	case c.credential != "":
		var err error
		if u, err = ledger.ParseGoogleCredential(c.credential); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case c.sub != "":
		u = &ledger.User{Sub: c.sub, Email: c.email, Name: c.name}
	default:
		fmt.Fprintln(os.Stderr, "Error: -credential or -sub is required")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		if err := a.Session.SetActiveUser(u); err != nil {
			return err
		}
		// Loads, migrates or seeds the user ledger right away.
		if _, err := a.Store.Document(); err != nil {
			return err
		}
		fmt.Printf("Logged in as %s (%s)\n", displayName(u), a.Store.Namespace())
		return nil
	})
}

func displayName(u *ledger.User) string {
	if u == nil {
		return "guest"
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.Sub
}

type logoutCmd struct{}

func (*logoutCmd) Name() string     { return "logout" }
func (*logoutCmd) Synopsis() string { return "switch back to the guest ledger" }
func (*logoutCmd) Usage() string {
	return `smallbatch logout
`
}
func (*logoutCmd) SetFlags(*flag.FlagSet) {}

func (*logoutCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		return a.Session.SignOut()
	})
}

type whoamiCmd struct{}

func (*whoamiCmd) Name() string     { return "whoami" }
func (*whoamiCmd) Synopsis() string { return "print the active user and ledger namespace" }
func (*whoamiCmd) Usage() string {
	return `smallbatch whoami
`
}
func (*whoamiCmd) SetFlags(*flag.FlagSet) {}

func (*whoamiCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		u := a.Session.ActiveUser()
		fmt.Printf("%s\t%s\n", displayName(u), a.Store.Namespace())
		return nil
	})
}
