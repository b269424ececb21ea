package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/belisario-afk/cakepop-ledger/gist"
	"github.com/google/subcommands"
)

// maskToken hides all but the last 4 characters of a token.
func maskToken(token string) string {
	if token == "" {
		return "(none)"
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", len(token)-4) + token[len(token)-4:]
}

// gistConfigCmd holds the flags for the 'gist-config' subcommand.
type gistConfigCmd struct {
	token    string
	gistID   string
	interval int
}

func (*gistConfigCmd) Name() string     { return "gist-config" }
func (*gistConfigCmd) Synopsis() string { return "show or change the GitHub gist backup configuration" }
func (*gistConfigCmd) Usage() string {
	return `smallbatch gist-config [-token <token>] [-gist <id>] [-interval <minutes>]

  Without flags, prints the current configuration. The token needs the 'gist'
  scope. Leave the gist id empty to create a new gist on the next backup.
  An interval of 0 disables automatic backups.
`
}

func (c *gistConfigCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.token, "token", "", "GitHub personal access token")
	f.StringVar(&c.gistID, "gist", "", "id of an existing gist")
	f.IntVar(&c.interval, "interval", -1, "minutes between automatic backups, 0 disables them")
}

func (c *gistConfigCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	return withApp(func(a *App) error {
		cfg := gist.LoadConfig(a.KV)
		if set["token"] {
			cfg.Token = c.token
		}
		if set["gist"] {
			cfg.GistID = c.gistID
		}
		if set["interval"] {
			if c.interval < 0 {
				return fmt.Errorf("invalid interval %d", c.interval)
			}
			cfg.Interval = c.interval
		}
		if len(set) > 0 {
			if err := gist.SaveConfig(a.KV, cfg); err != nil {
				return err
			}
		}

		last := "never"
		if cfg.LastBackup != 0 {
			last = cfg.LastBackup.String()
		}
		fmt.Printf("token:       %s\n", maskToken(cfg.Token))
		fmt.Printf("gist:        %s\n", cfg.GistID)
		fmt.Printf("interval:    %d min\n", cfg.Interval)
		fmt.Printf("last backup: %s\n", last)
		return nil
	})
}

// backupCmd holds the flags for the 'backup' subcommand.
type backupCmd struct {
	watch bool
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "back up the active ledger to a GitHub gist" }
func (*backupCmd) Usage() string {
	return `smallbatch backup [-watch]

  Pushes the active ledger to its private gist, creating it on first use.
  With -watch, keeps running and backs up at the configured interval until
  interrupted.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.watch, "watch", false, "keep backing up at the configured interval")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		s := gist.NewSyncer(&gist.Client{}, a.KV, a.Store)
		res, err := s.Backup(ctx)
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		if res.Created {
			fmt.Printf("Created gist %s\n", res.GistID)
		} else {
			fmt.Printf("Updated gist %s\n", res.GistID)
		}
		if !c.watch {
			return nil
		}
		if gist.LoadConfig(a.KV).Interval <= 0 {
			return fmt.Errorf("automatic backups are disabled, set an interval with 'gist-config -interval'")
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		if err := s.Auto(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		return nil
	})
}

type restoreCmd struct{}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the active ledger with its gist backup" }
func (*restoreCmd) Usage() string {
	return `smallbatch restore

  Downloads the ledger from the configured gist and replaces the active ledger with it.
`
}
func (*restoreCmd) SetFlags(*flag.FlagSet) {}

func (*restoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		if err := gist.NewSyncer(&gist.Client{}, a.KV, a.Store).Restore(ctx); err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Println("Restored from gist")
		return nil
	})
}
