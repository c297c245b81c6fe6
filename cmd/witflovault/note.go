package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/witflo/fyndo-core/clierror"
	"github.com/witflo/fyndo-core/repository"
	"github.com/witflo/fyndo-core/util"
)

func newNoteCmd() *cobra.Command {
	var vaultID string

	cmd := &cobra.Command{
		Use:   "note",
		Short: "Manage notes within a vault",
	}

	cmd.PersistentFlags().StringVar(&vaultID, "vault", "", "vault id to operate on")

	cmd.AddCommand(newNoteListCmd(&vaultID))
	cmd.AddCommand(newNoteAddCmd(&vaultID))

	return cmd
}

func newNoteListCmd(vaultID *string) *cobra.Command {
	var tag string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every note in a vault",
		RunE: func(_ *cobra.Command, _ []string) error {
			return clierror.Check(runNoteList(*vaultID, tag))
		},
	}

	cmd.Flags().StringVar(&tag, "tag", "", "only list notes carrying this tag")

	return cmd
}

func runNoteList(vaultID, tag string) error {
	sess, err := unlockWorkspace()
	if err != nil {
		return err
	}

	defer sess.Lock()

	vlt, err := sess.OpenVault(vaultID)
	if err != nil {
		return err
	}

	defer vlt.Lock()

	repo := repository.NewNoteRepository(vlt)

	var notes []repository.NoteMetadata
	if tag != "" {
		notes, err = repo.ListByTag(tag)
	} else {
		notes, err = repo.ListAll()
	}

	if err != nil {
		return err
	}

	for _, n := range notes {
		fmt.Fprintf(iostreams.Out, "%s\t%s\n", n.ID, n.Title)
	}

	return nil
}

func newNoteAddCmd(vaultID *string) *cobra.Command {
	var title, body, tags string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a note in a vault",
		RunE: func(_ *cobra.Command, _ []string) error {
			return clierror.Check(runNoteAdd(*vaultID, title, body, tags))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "note title")
	cmd.Flags().StringVar(&body, "body", "", "note body")
	cmd.Flags().StringVar(&tags, "tags", "", "comma-separated tags")

	return cmd
}

func runNoteAdd(vaultID, title, body, tags string) error {
	sess, err := unlockWorkspace()
	if err != nil {
		return err
	}

	defer sess.Lock()

	vlt, err := sess.OpenVault(vaultID)
	if err != nil {
		return err
	}

	defer vlt.Lock()

	n := repository.Note{
		ID:        uuid.NewString(),
		Title:     title,
		Body:      body,
		Tags:      util.ParseCommaSeparated(tags),
		CreatedAt: time.Now(),
	}

	if err := repository.NewNoteRepository(vlt).Save(n); err != nil {
		return err
	}

	fmt.Fprintln(iostreams.Out, n.ID)

	return nil
}
