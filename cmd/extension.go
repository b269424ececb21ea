package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/google/subcommands"
)

// Environment variables passed to extensions, holding the resolved global flags.
const (
	EnvStore    = "SMALLBATCH_STORE"
	EnvCurrency = "SMALLBATCH_CURRENCY"
)

// Registered reports whether commander has a command called name.
func Registered(commander *subcommands.Commander, name string) bool {
	found := false
	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		found = found || c.Name() == name
	})
	return found
}

// storePath returns the resolved storage location.
func storePath() string {
	if *storeLocation != "" {
		return *storeLocation
	}
	return env(EnvStore, ".smallbatch")
}

// RunExtension attempts to find and execute an external smallbatch-<subcommand> binary.
// It returns (true, exitCode) if an extension was found and executed,
// and (false, 0) if no extension was found.
func RunExtension(subcommand string, args []string) (bool, int) {
	name := "smallbatch-" + subcommand
	lp, err := exec.LookPath(name)
	if err != nil {
		return false, 0
	}

	cmd := exec.Command(lp, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = append(os.Environ(),
		EnvStore+"="+storePath(),
		EnvCurrency+"="+currency(),
	)

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return true, exitErr.ExitCode()
		}
		fmt.Fprintf(os.Stderr, "Error executing external command %q: %v\n", name, err)
		return true, 1
	}
	return true, 0
}
