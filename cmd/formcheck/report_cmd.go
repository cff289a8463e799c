package main

import (
	"fmt"
	"os"

	"github.com/formcheck/formcheck"
	"github.com/formcheck/formcheck/report"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type reportCmdConfig struct {
	*rootCmdConfig
	trainingInput string
	testingInput  string
	schemaInput   string
	output        string
	plotDir       string
	sqlTable      string
	maxDBConns    int
}

func reportCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &reportCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Run the full analysis and render its report",
		Long: `Run the full analysis over a labeled training table and an unlabeled
testing table and render the markdown report: data cleaning, exploratory
summaries, a cross-validated classification tree, a random forest and
the testing-set predictions.`,
		Run: func(cmd *cobra.Command, args []string) {
			err := config.Validate()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			result, err := formcheck.Run(cmd.Context(), config.pipelineConfig())
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			var f *os.File
			if config.output == "" {
				f = os.Stdout
			} else {
				f, err = os.Create(config.output)
				if err != nil {
					fmt.Fprintf(os.Stderr, "creating report file %s: %v\n", config.output, err)
					os.Exit(3)
				}
				defer f.Close()
			}
			if err := report.Write(f, result); err != nil {
				fmt.Fprintf(os.Stderr, "writing report: %v\n", err)
				os.Exit(4)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.trainingInput), "training", "t", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the labeled training table (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.testingInput), "testing", "T", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the unlabeled testing table (required)")
	cmd.PersistentFlags().StringVarP(&(config.schemaInput), "metadata", "m", "", "path to a YML file describing the columns of the tables (required)")
	cmd.PersistentFlags().StringVarP(&(config.output), "output", "o", "", "path to a file to which the markdown report will be written (defaults to STDOUT)")
	cmd.PersistentFlags().StringVar(&(config.plotDir), "plots", "", "directory to render histogram PNGs into (no PNGs are rendered when unset)")
	cmd.PersistentFlags().StringVar(&(config.sqlTable), "sql-table", "observations", "name of the database table with the observations, for SQL inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	cmd.PersistentFlags().Int("folds", formcheck.DefaultFolds, "fold count for the tree's cross-validation")
	cmd.PersistentFlags().Int("trees", 0, "number of trees in the forest (defaults to 500)")
	_ = viper.BindPFlag("folds", cmd.PersistentFlags().Lookup("folds"))
	_ = viper.BindPFlag("trees", cmd.PersistentFlags().Lookup("trees"))
	return cmd
}

func (rcc *reportCmdConfig) Validate() error {
	if rcc.schemaInput == "" {
		return fmt.Errorf("required metadata flag was not set")
	}
	if rcc.testingInput == "" {
		return fmt.Errorf("required testing flag was not set")
	}
	return nil
}

func (rcc *reportCmdConfig) pipelineConfig() *formcheck.Config {
	cfg := analysisConfig(rcc.rootCmdConfig)
	cfg.TrainingInput = rcc.trainingInput
	cfg.TestingInput = rcc.testingInput
	cfg.SchemaPath = rcc.schemaInput
	cfg.SQLTable = rcc.sqlTable
	cfg.MaxDBConns = rcc.maxDBConns
	cfg.PlotDir = rcc.plotDir
	return cfg
}
