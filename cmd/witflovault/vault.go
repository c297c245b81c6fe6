package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/witflo/fyndo-core/cliutil"
	"github.com/witflo/fyndo-core/clierror"
)

func newVaultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage vaults within the workspace",
	}

	cmd.AddCommand(newVaultListCmd())
	cmd.AddCommand(newVaultAddCmd())
	cmd.AddCommand(newVaultImportLegacyCmd())

	return cmd
}

func newVaultListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every vault in the workspace",
		RunE: func(_ *cobra.Command, _ []string) error {
			return clierror.Check(runVaultList())
		},
	}
}

func runVaultList() error {
	sess, err := unlockWorkspace()
	if err != nil {
		return err
	}

	defer sess.Lock()

	for _, id := range sess.VaultIDs() {
		fmt.Fprintln(iostreams.Out, id)
	}

	return nil
}

func newVaultAddCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a new vault to the workspace",
		RunE: func(_ *cobra.Command, _ []string) error {
			return clierror.Check(runVaultAdd(displayName))
		},
	}

	cmd.Flags().StringVarP(&displayName, "name", "n", "New vault", "display name for the new vault")

	return cmd
}

func runVaultAdd(displayName string) error {
	sess, err := unlockWorkspace()
	if err != nil {
		return err
	}

	defer sess.Lock()

	id, err := sess.AddVault(displayName)
	if err != nil {
		return err
	}

	fmt.Fprintln(iostreams.Out, id)

	return nil
}

func newVaultImportLegacyCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "import-legacy <vault-id>",
		Short: "Import a v1 per-vault-password vault already present under vaults/<vault-id>",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return clierror.Check(runVaultImportLegacy(args[0], displayName))
		},
	}

	cmd.Flags().StringVarP(&displayName, "name", "n", "Imported vault", "display name for the imported vault")

	return cmd
}

func runVaultImportLegacy(vaultID, displayName string) error {
	sess, err := unlockWorkspace()
	if err != nil {
		return err
	}

	defer sess.Lock()

	legacyPassword, err := cliutil.PromptMasterPassword(iostreams.Out, int(fd(iostreams.In)))
	if err != nil {
		return err
	}

	return sess.ImportLegacyVault(vaultID, displayName, legacyPassword)
}
