// Command witflovault is the harness CLI for exercising a workspace:
// initializing it, unlocking it, and managing vaults and notes inside
// it. It is a thin cobra wrapper over the core packages, grounded in
// the teacher's cobra-based vlt CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/witflo/fyndo-core/cliutil"
	"github.com/witflo/fyndo-core/clierror"
)

var (
	iostreams = cliutil.NewDefaultIOStreams()
	rootFlags struct {
		root    string
		verbose bool
	}
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "witflovault",
		Short: "Inspect and manage a witflo workspace",
		Long:  "witflovault is a command-line harness over the witflo vault core: it initializes workspaces, manages vaults, and reads/writes notes for testing and local administration.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			iostreams.Verbose = rootFlags.verbose
			clierror.DebugMode(rootFlags.verbose)
		},
	}

	root.PersistentFlags().StringVarP(&rootFlags.root, "root", "r", defaultWorkspaceRoot(), "path to the workspace root directory")
	root.PersistentFlags().BoolVarP(&rootFlags.verbose, "verbose", "v", false, "enable verbose output")

	root.AddCommand(newInitCmd())
	root.AddCommand(newVaultCmd())
	root.AddCommand(newNoteCmd())

	return root
}

func defaultWorkspaceRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".witflo"
	}

	return home + "/.witflo"
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
