package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/witflo/fyndo-core/cliutil"
	"github.com/witflo/fyndo-core/clierror"
	"github.com/witflo/fyndo-core/storage"
	"github.com/witflo/fyndo-core/workspace"
)

const minMasterPasswordLen = 12

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a new workspace at --root",
		RunE: func(_ *cobra.Command, _ []string) error {
			return clierror.Check(runInit())
		},
	}
}

func runInit() error {
	pass, err := cliutil.PromptNewMasterPassword(iostreams.Out, int(fd(iostreams.In)), minMasterPasswordLen)
	if err != nil {
		return err
	}

	p := storage.NewNativeProvider()

	sess, err := workspace.Initialize(p, rootFlags.root, pass)
	if err != nil {
		return err
	}

	defer sess.Lock()

	id, err := sess.AddVault("Default")
	if err != nil {
		return err
	}

	fmt.Fprintf(iostreams.Out, "Workspace created at %s with vault %s\n", rootFlags.root, id)

	return nil
}

func unlockWorkspace() (*workspace.Session, error) {
	pass, err := cliutil.PromptMasterPassword(iostreams.Out, int(fd(iostreams.In)))
	if err != nil {
		return nil, err
	}

	return workspace.Unlock(storage.NewNativeProvider(), rootFlags.root, pass)
}

func fd(r cliutil.FdReader) uintptr { return r.Fd() }
