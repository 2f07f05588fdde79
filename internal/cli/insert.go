package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ruslan-rv-ua/sagittadb"
)

// NewInsertCommand creates the insert command.
func NewInsertCommand(opts *RootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "insert [document...]",
		Short: "Insert documents given as JSON arguments or from a file",
		Long: "Insert one document per argument, or all documents from --file.\n" +
			"Input is HuJSON: comments and trailing commas are allowed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" && len(args) == 0 {
				return fmt.Errorf("nothing to insert: pass documents or --file")
			}

			var docs []sagittadb.Object
			for _, arg := range args {
				doc, err := parseDocument([]byte(arg))
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}
			if file != "" {
				data, err := os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("read %s: %w", file, err)
				}
				fromFile, err := parseDocuments(data)
				if err != nil {
					return err
				}
				docs = append(docs, fromFile...)
			}

			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			if len(docs) == 1 {
				id, err := db.Insert(cmd.Context(), docs[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), id)
				return nil
			}

			n, err := db.InsertMany(cmd.Context(), slices.Values(docs))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d documents\n", n)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "read documents from a HuJSON file (object or array)")
	return cmd
}
