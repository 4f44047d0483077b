package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarryql/quarry/internal/engine"
)

var checkOperation string

var checkCmd = &cobra.Command{
	Use:   "check [query-text]",
	Short: "Validate a query against the schema without executing it",
	Long: `Compiles a query against the configured schema and reports validation
errors. The query is taken from the argument, or from stdin when absent.
With no query, only the schema file itself is checked.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sch, err := loadSchema()
		if err != nil {
			return err
		}

		queryText := ""
		if len(args) == 1 {
			queryText = args[0]
		} else if stat, _ := os.Stdin.Stat(); stat != nil && stat.Mode()&os.ModeCharDevice == 0 {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading query from stdin: %w", err)
			}
			queryText = string(data)
		}
		if queryText == "" {
			fmt.Println("Schema OK")
			return nil
		}

		eng := engine.New(sch)
		if _, err := eng.Compile(queryText, checkOperation); err != nil {
			return err
		}
		fmt.Println("Query OK")
		return nil
	},
}

func init() {
	checkCmd.Flags().StringVarP(&checkOperation, "operation", "o", "", "operation name to check")
}
