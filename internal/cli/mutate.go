package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruslan-rv-ua/sagittadb"
)

// NewUpdateCommand creates the update command.
func NewUpdateCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <filter> <changes>",
		Short: "Partially update documents matching a filter",
		Long: "Sets each field named in changes on every matching document,\n" +
			"leaving other fields untouched. Null values are rejected.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter([]byte(args[0]))
			if err != nil {
				return err
			}
			changesObj, err := parseDocument([]byte(args[1]))
			if err != nil {
				return fmt.Errorf("parse changes: %w", err)
			}

			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Update(cmd.Context(), filter, sagittadb.Changes(changesObj))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated %d documents\n", n)
			return nil
		},
	}
	return cmd
}

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <filter>",
		Short: "Delete documents matching a filter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter([]byte(args[0]))
			if err != nil {
				return err
			}

			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Remove(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d documents\n", n)
			return nil
		},
	}
	return cmd
}

// NewPurgeCommand creates the purge command.
func NewPurgeCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete ALL documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("purge deletes every document; re-run with --yes")
			}

			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Purge(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "store purged")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm purging all documents")
	return cmd
}

// NewIndexCommand creates the index command.
func NewIndexCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index <field...>",
		Short: "Ensure secondary indexes on document fields",
		Long:  "Index creation is idempotent: ensuring an existing index is a no-op.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			for _, field := range args {
				if err := db.CreateIndex(cmd.Context(), field); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "index ensured on %s\n", field)
			}
			return nil
		},
	}
	return cmd
}
