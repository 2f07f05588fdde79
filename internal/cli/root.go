// Package cli implements the sagitta command line tool: demo and ops
// tooling around the document store (insert, search, backup, an
// interactive shell). The store engine itself lives in the root
// package; nothing here adds semantics.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ruslan-rv-ua/sagittadb"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	DBPath     string
	ConfigPath string
	Verbose    bool
	Format     string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the sagitta CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "sagitta",
		Short:         "SagittaDB - a lightweight document store on SQLite",
		Long:          "Embedded, schema-less document store: JSON documents, equality and regex search, secondary indexes, on a single SQLite file.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			level := slog.LevelWarn
			if opts.Verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database file (overrides config; use :memory: for volatile)")
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default sagitta.yaml if present)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewInsertCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewAllCommand(opts))
	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewGrepCommand(opts))
	cmd.AddCommand(NewFindCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewRemoveCommand(opts))
	cmd.AddCommand(NewPurgeCommand(opts))
	cmd.AddCommand(NewIndexCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewShellCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openStore resolves configuration and opens the store, ensuring any
// configured indexes exist.
func openStore(cmd *cobra.Command, opts *RootOptions) (*sagittadb.DB, error) {
	cfg, err := LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	path := cfg.DB
	if opts.DBPath != "" {
		path = opts.DBPath
	}
	if path == "" {
		path = "sagitta.db"
	}

	db, err := sagittadb.Open(path, sagittadb.WithLogger(slog.Default()))
	if err != nil {
		return nil, err
	}

	for _, field := range cfg.Indexes {
		if err := db.CreateIndex(cmd.Context(), field); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure index %q: %w", field, err)
		}
	}

	return db, nil
}
