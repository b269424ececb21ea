package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"github.com/belisario-afk/cakepop-ledger/vault"
	"github.com/google/subcommands"
)

// password returns p, or the SMALLBATCH_PASSWORD environment variable.
func password(p string) (string, error) {
	if p == "" {
		p = os.Getenv("SMALLBATCH_PASSWORD")
	}
	if p == "" {
		return "", errors.New("a password is required: use -password or SMALLBATCH_PASSWORD")
	}
	return p, nil
}

// writeOutput writes data to the named file, or to stdout when name is empty or "-".
func writeOutput(name string, data []byte) error {
	if name == "" || name == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o644)
}

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	output   string
	encrypt  bool
	password string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the active ledger as a JSON snapshot" }
func (*exportCmd) Usage() string {
	return `smallbatch export [-o <file>] [-encrypt [-password <password>]]

  Writes the whole active ledger as JSON. With -encrypt the snapshot is sealed
  with a password and can only be imported back with the same password.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, stdout when empty")
	f.BoolVar(&c.encrypt, "encrypt", false, "encrypt the snapshot")
	f.StringVar(&c.password, "password", "", "encryption password, defaults to $SMALLBATCH_PASSWORD")
}

func (c *exportCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		snapshot, err := a.Store.ExportSnapshot()
		if err != nil {
			return err
		}
		data := []byte(snapshot + "\n")
		if c.encrypt {
			pwd, err := password(c.password)
			if err != nil {
				return err
			}
			if data, err = vault.Encrypt([]byte(snapshot), pwd); err != nil {
				return err
			}
			data = append(data, '\n')
		}
		if err := writeOutput(c.output, data); err != nil {
			return fmt.Errorf("cannot write export: %w", err)
		}
		return a.Store.MarkExported()
	})
}

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	password string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace the active ledger with a JSON snapshot" }
func (*importCmd) Usage() string {
	return `smallbatch import [-password <password>] <file>

  Replaces the whole active ledger with a snapshot made by 'export'. Encrypted
  snapshots are detected and need their password. Use '-' to read stdin.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.password, "password", "", "decryption password, defaults to $SMALLBATCH_PASSWORD")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting a single <file>")
		return subcommands.ExitUsageError
	}
	var data []byte
	var err error
	if f.Arg(0) == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(f.Arg(0))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	if vault.IsEncrypted(data) {
		pwd, err := password(c.password)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		if data, err = vault.Decrypt(data, pwd); err != nil {
			fmt.Fprintf(os.Stderr, "Error decrypting snapshot: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return withApp(func(a *App) error {
		return a.Store.ImportDocument(data)
	})
}

// exportCSVCmd holds the flags for the 'export-csv' subcommand.
type exportCSVCmd struct {
	output string
}

func (*exportCSVCmd) Name() string     { return "export-csv" }
func (*exportCSVCmd) Synopsis() string { return "export sales as CSV" }
func (*exportCSVCmd) Usage() string {
	return `smallbatch export-csv [-o <file>]
`
}

func (c *exportCSVCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, stdout when empty")
}

func (c *exportCSVCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := ledger.EncodeSalesCSV(&buf, d); err != nil {
			return err
		}
		return writeOutput(c.output, buf.Bytes())
	})
}

// resetCmd holds the flags for the 'reset' subcommand.
type resetCmd struct {
	force bool
}

func (*resetCmd) Name() string     { return "reset" }
func (*resetCmd) Synopsis() string { return "replace the active ledger with the sample data" }
func (*resetCmd) Usage() string {
	return `smallbatch reset -force

  Erases every product, ingredient, recipe, sale and expense of the active
  ledger and loads the sample catalog again.
`
}

func (c *resetCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "force", false, "confirm the reset")
}

func (c *resetCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if !c.force {
		fmt.Fprintln(os.Stderr, "Error: reset erases all data, use -force to confirm")
		return subcommands.ExitUsageError
	}
	return withApp(func(a *App) error {
		return a.Store.ResetAll()
	})
}

type settingsCmd struct{}

func (*settingsCmd) Name() string     { return "settings" }
func (*settingsCmd) Synopsis() string { return "show or replace the settings blob" }
func (*settingsCmd) Usage() string {
	return `smallbatch settings [<json>]

  Without argument, prints the settings of the active ledger. With an argument,
  replaces them. Settings are free JSON kept with the ledger.
`
}
func (*settingsCmd) SetFlags(*flag.FlagSet) {}

func (*settingsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expecting at most one <json> argument")
		return subcommands.ExitUsageError
	}
	if f.NArg() == 1 {
		raw := strings.TrimSpace(f.Arg(0))
		if !json.Valid([]byte(raw)) {
			fmt.Fprintln(os.Stderr, "Error: settings must be valid JSON")
			return subcommands.ExitUsageError
		}
		return withApp(func(a *App) error {
			return a.Store.SaveSettings(json.RawMessage(raw))
		})
	}
	return withApp(func(a *App) error {
		d, err := a.Store.Document()
		if err != nil {
			return err
		}
		if len(d.Settings) == 0 {
			fmt.Println("null")
			return nil
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, d.Settings, "", "  "); err != nil {
			return err
		}
		fmt.Println(buf.String())
		return nil
	})
}
