// Package cli implements the quarry command-line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/quarryql/quarry/internal/config"
)

var (
	configPath string
	schemaFlag string
	dataFlag   string
	sqliteFlag string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "quarry",
	Short: "Quarry - a schema-backed query engine",
	Long: `Quarry compiles field-selection queries against a schema and projects
hierarchical data into request-shaped JSON responses.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		switch cmd.Name() {
		case "help", "version", "completion":
			return nil
		}
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}
		// Flags override the config file.
		if schemaFlag != "" {
			cfg.Schema = schemaFlag
		}
		if dataFlag != "" {
			cfg.Data.File = dataFlag
			cfg.Data.SQLite = ""
		}
		if sqliteFlag != "" {
			cfg.Data.SQLite = sqliteFlag
			cfg.Data.File = ""
		}
		if cfg.Schema == "" {
			return fmt.Errorf("no schema configured: pass --schema or set 'schema' in the config file")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&schemaFlag, "schema", "", "path to schema definition file")
	rootCmd.PersistentFlags().StringVar(&dataFlag, "data", "", "path to YAML/JSON data file")
	rootCmd.PersistentFlags().StringVar(&sqliteFlag, "sqlite", "", "path to SQLite database")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(checkCmd)
}

// Execute runs the CLI.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
