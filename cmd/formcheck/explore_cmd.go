package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/formcheck/formcheck"
	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/explore"
	"github.com/formcheck/formcheck/feature"
	"github.com/formcheck/formcheck/filter"
	"github.com/formcheck/formcheck/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type exploreCmdConfig struct {
	*rootCmdConfig
	dataInput   string
	schemaInput string
	columns     []string
	plotDir     string
	sqlTable    string
	maxDBConns  int
}

func exploreCmd(rootConfig *rootCmdConfig) *cobra.Command {
	config := &exploreCmdConfig{rootCmdConfig: rootConfig}
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Summarize a cleaned training table",
		Long: `Clean a labeled training table and print its exploratory summaries:
the subject-against-label cross-tabulation and histograms of the given
continuous columns, optionally rendered as PNGs.`,
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
			result, err := filter.Filter(t, sc, filter.Config{})
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(4)
			}
			cleaned := result.Table
			if err := config.printCrossTab(cleaned, sc); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(5)
			}
			if err := config.printHistograms(cleaned); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(6)
			}
		},
	}
	cmd.PersistentFlags().StringVarP(&(config.dataInput), "input", "i", "", "path to a CSV (.csv) or SQLite3 (.db) file, or a PostgreSQL DB connection URL with the training table (defaults to STDIN, interpreted as CSV)")
	cmd.PersistentFlags().StringVarP(&(config.schemaInput), "metadata", "m", "", "path to a YML file describing the columns of the table (required)")
	cmd.PersistentFlags().StringSliceVarP(&(config.columns), "column", "c", nil, "continuous column to summarize as a histogram (can be repeated, defaults to the first two)")
	cmd.PersistentFlags().StringVar(&(config.plotDir), "plots", "", "directory to render histogram PNGs into (no PNGs are rendered when unset)")
	cmd.PersistentFlags().StringVar(&(config.sqlTable), "sql-table", "observations", "name of the database table with the observations, for SQL inputs")
	cmd.PersistentFlags().IntVar(&(config.maxDBConns), "max-db-conns", 0, "limit to DB connections opened at a time (defaults to 0: no limit)")
	return cmd
}

func (ecc *exploreCmdConfig) printCrossTab(t *dataset.Table, sc *schema.Schema) error {
	subject, sok := t.Feature(sc.Subject).(*feature.DiscreteFeature)
	label, lok := t.Feature(sc.Label.Column).(*feature.DiscreteFeature)
	if !sok || !lok {
		return nil
	}
	ct, err := explore.NewCrossTab(t, subject, label)
	if err != nil {
		return err
	}
	fmt.Println(ct)
	return nil
}

func (ecc *exploreCmdConfig) printHistograms(t *dataset.Table) error {
	columns := ecc.columns
	if len(columns) == 0 {
		for _, f := range t.Features() {
			if _, ok := f.(*feature.ContinuousFeature); ok {
				columns = append(columns, f.Name())
				if len(columns) == 2 {
					break
				}
			}
		}
	}
	for _, column := range columns {
		cf, ok := t.Feature(column).(*feature.ContinuousFeature)
		if !ok {
			return fmt.Errorf("table has no continuous column %s to summarize", column)
		}
		h, err := explore.NewHistogram(t, cf, viper.GetInt("bins"))
		if err != nil {
			return err
		}
		fmt.Println(h)
		if ecc.plotDir != "" {
			path := filepath.Join(ecc.plotDir, fmt.Sprintf("histogram_%s.png", column))
			if err := h.SavePNG(path); err != nil {
				return err
			}
			ecc.Logf("rendered %s\n", path)
		}
	}
	return nil
}
