package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ruslan-rv-ua/sagittadb"
	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

// pageFlags adds the shared --limit/--offset pagination flags.
func pageFlags(cmd *cobra.Command, limit *int, offset *int) {
	cmd.Flags().IntVarP(limit, "limit", "l", sagittadb.NoLimit, "maximum documents to return (-1 for unbounded)")
	cmd.Flags().IntVarP(offset, "offset", "o", 0, "documents to skip")
}

// NewAllCommand creates the all command.
func NewAllCommand(opts *RootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "all",
		Short: "List documents in storage order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = printDocs(cmd.OutOrStdout(), opts.Format, db.All(cmd.Context(), limit, offset))
			return err
		},
	}
	pageFlags(cmd, &limit, &offset)
	return cmd
}

// NewSearchCommand creates the search command.
func NewSearchCommand(opts *RootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "search <filter>",
		Short: "List documents matching an equality filter",
		Long:  `Filter is a JSON object of field/value equality constraints, e.g. '{"city": "Chicago", "active": true}'.`,
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

			_, err = printDocs(cmd.OutOrStdout(), opts.Format, db.Search(cmd.Context(), filter, limit, offset))
			return err
		},
	}
	pageFlags(cmd, &limit, &offset)
	return cmd
}

// NewGrepCommand creates the grep command (regex pattern search).
func NewGrepCommand(opts *RootOptions) *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "grep <field> <pattern>",
		Short: "List documents whose field matches a regex pattern",
		Long: "Pattern matching is unanchored, case-sensitive substring search\n" +
			"over string values; anchor explicitly with ^ and $ when needed.\n" +
			"Without --limit, at most 100 documents are returned.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = printDocs(cmd.OutOrStdout(), opts.Format,
				db.SearchPattern(cmd.Context(), args[0], args[1], limit, offset))
			return err
		},
	}
	pageFlags(cmd, &limit, &offset)
	return cmd
}

// NewFindCommand creates the find command (membership search).
func NewFindCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find <field> <value...>",
		Short: "List documents whose field equals any of the given JSON values",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make([]sagittadb.Value, 0, len(args)-1)
			for _, arg := range args[1:] {
				v, err := document.Decode([]byte(arg))
				if err != nil {
					return fmt.Errorf("parse value %q: %w", arg, err)
				}
				values = append(values, v)
			}

			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			_, err = printDocs(cmd.OutOrStdout(), opts.Format, db.FindAny(cmd.Context(), args[0], values))
			return err
		},
	}
	return cmd
}

// NewCountCommand creates the count command.
func NewCountCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [filter]",
		Short: "Count documents, optionally matching a filter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter sagittadb.Filter
			if len(args) == 1 {
				f, err := parseFilter([]byte(args[0]))
				if err != nil {
					return err
				}
				filter = f
			}

			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.Count(cmd.Context(), filter)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		},
	}
	return cmd
}
