package cli

import (
	"fmt"
	"iter"
	"math/rand"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ruslan-rv-ua/sagittadb"
)

var seedCities = []string{"NYC", "LA", "Chicago", "Houston", "Phoenix"}
var seedDepartments = []string{"engineering", "sales", "support", "ops"}

// NewSeedCommand creates the seed command, which fills the store with
// generated sample documents for demos and benchmarking.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <count>",
		Short: "Insert generated sample documents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[0])
			if err != nil || count < 1 {
				return fmt.Errorf("count must be a positive integer, got %q", args[0])
			}

			db, err := openStore(cmd, opts)
			if err != nil {
				return err
			}
			defer db.Close()

			n, err := db.InsertMany(cmd.Context(), seedDocuments(count))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d documents\n", n)
			return nil
		},
	}
	return cmd
}

// seedDocuments lazily generates count sample documents.
func seedDocuments(count int) iter.Seq[sagittadb.Object] {
	return func(yield func(sagittadb.Object) bool) {
		for i := 0; i < count; i++ {
			doc := sagittadb.Object{
				"key":        sagittadb.String(uuid.NewString()),
				"name":       sagittadb.String(fmt.Sprintf("user-%04d", i)),
				"age":        sagittadb.Int(18 + rand.Intn(50)),
				"city":       sagittadb.String(seedCities[rand.Intn(len(seedCities))]),
				"department": sagittadb.String(seedDepartments[rand.Intn(len(seedDepartments))]),
				"active":     sagittadb.Bool(i%2 == 0),
			}
			if !yield(doc) {
				return
			}
		}
	}
}
