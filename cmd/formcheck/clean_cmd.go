package main

import (
	"fmt"
	"os"

	"github.com/formcheck/formcheck"
	"github.com/formcheck/formcheck/dataset/csv"
	"github.com/formcheck/formcheck/filter"
	"github.com/formcheck/formcheck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type cleanCmdConfig struct {
	*rootCmdConfig
	dataInput   string
	schemaInput string
	output      string
	sqlTable    string
	maxDBConns  int
}

func cleanCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &cleanCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Clean a training table and dump it as CSV",
		Long: `Clean a labeled training table the way the analysis would: drop its
window-summary rows, its bookkeeping columns and its near-zero-variance
columns, and dump the cleaned table as CSV.`,
		Run: func(cmd *cobra.Command, args []string) {
			if config.schemaInput == "" {
				fmt.Fprintln(os.Stderr, "required metadata flag was not set")
				os.Exit(1)
			}
			sc, err := schema.ReadFile(config.schemaInput)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			config.Logf("loading table from %s...\n", config.dataInput)
			t, err := formcheck.LoadTable(config.dataInput, config.sqlTable, config.maxDBConns, sc)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(3)
			}
			result, err := filter.Filter(t, sc, filter.Config{
				FrequencyCutoff: viper.GetFloat64("frequency_cutoff"),
				UniqueCutoff:    viper.GetFloat64("unique_cutoff"),
			})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			config.Logf("cleaned table keeps %d of %d rows and %d feature columns\n", result.Table.Count(), t.Count(), result.Selection.Len())
			var f *os.File
			if config.output == "" {
				f = os.Stdout
			} else {
				f, err = os.Create(config.output)
				if err != nil {
					fmt.Fprintf(os.Stderr, "creating output file %s: %v\n", config.output, err)
					os.Exit(5)
				}
				defer f.Close()
			}
			if err := csv.WriteTable(f, result.Table); err != nil {
				fmt.Fprintf(os.Stderr, "dumping cleaned table: %v\n", err)
				os.Exit(6)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the training table (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.schemaInput), "metadata", "m", "", "path to a YML file describing the columns of the table (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the cleaned table will be written as CSV (defaults to STDOUT)")
	cmd.PersistentFlags().StringVar(&(config.sqlTable), "sql-table", "observations", "name of the database table with the observations, for SQL inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}
