package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarryql/quarry/internal/schema"
	"github.com/quarryql/quarry/internal/schemadef"
)

var (
	queryOperation string
	queryVarsJSON  string
)

var queryCmd = &cobra.Command{
	Use:   "query [query-text]",
	Short: "Run a single query and print the result",
	Long: `Runs one query against the configured data source and prints the JSON
result. The query is taken from the argument, or from stdin when absent.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		queryText := ""
		if len(args) == 1 {
			queryText = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading query from stdin: %w", err)
			}
			queryText = string(data)
		}
		if queryText == "" {
			return fmt.Errorf("empty query")
		}

		vars := map[string]any{}
		if queryVarsJSON != "" {
			if err := json.Unmarshal([]byte(queryVarsJSON), &vars); err != nil {
				return fmt.Errorf("invalid --variables JSON: %w", err)
			}
		}

		eng, src, closeSource, err := buildEngine()
		if err != nil {
			return err
		}
		defer closeSource()

		root, err := src.Root(cmd.Context())
		if err != nil {
			return fmt.Errorf("loading data: %w", err)
		}

		result := eng.Execute(cmd.Context(), queryText, queryOperation, vars, root)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
		if len(result.Errors) > 0 {
			return fmt.Errorf("query completed with %d error(s)", len(result.Errors))
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVarP(&queryOperation, "operation", "o", "", "operation name to run")
	queryCmd.Flags().StringVar(&queryVarsJSON, "variables", "", "query variables as JSON")
}

func loadSchema() (*schema.Schema, error) {
	sch, err := schemadef.Load(cfg.Schema)
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}
	return sch, nil
}
