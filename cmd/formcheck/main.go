package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/formcheck/formcheck"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootCmdConfig struct {
	verbose    bool
	configFile string
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := cliParser().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func cliParser() *cobra.Command {
	config := &rootCmdConfig{}
	rootCmd := &cobra.Command{
		Use:   "formcheck",
		Short: "formcheck analyzes exercise execution quality from sensor data",
		Long: `A tool to clean labeled sensor measurement tables, fit classification
trees and random forests on them, and predict how well an exercise was
executed on unlabeled measurements.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(config)
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&(config.verbose), "verbose", "v", false, "")
	rootCmd.PersistentFlags().StringVar(&(config.configFile), "config", "", "path to a YAML config file with analysis tunables (defaults to ./formcheck.yaml if present)")
	rootCmd.AddCommand(versionCmd(), reportCmd(config), exploreCmd(config), cleanCmd(config))
	return rootCmd
}

func initConfig(config *rootCmdConfig) error {
	viper.SetDefault("folds", formcheck.DefaultFolds)
	viper.SetDefault("tree_seed", formcheck.DefaultTreeSeed)
	viper.SetDefault("forest_seed", formcheck.DefaultForestSeed)
	viper.SetDefault("trees", 0)
	viper.SetDefault("features_per_split", 0)
	viper.SetDefault("frequency_cutoff", 0.0)
	viper.SetDefault("unique_cutoff", 0.0)
	viper.SetDefault("bins", formcheck.DefaultBins)

	if config.configFile != "" {
		viper.SetConfigFile(config.configFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName("formcheck")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("FORMCHECK")
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config file: %v", err)
		}
	}
	return nil
}

/*
analysisConfig builds the tunables section of a pipeline
configuration from the resolved viper settings.
*/
func analysisConfig(config *rootCmdConfig) *formcheck.Config {
	return &formcheck.Config{
		Folds:             viper.GetInt("folds"),
		TreeSeed:          viper.GetInt64("tree_seed"),
		ForestSeed:        viper.GetInt64("forest_seed"),
		Trees:             viper.GetInt("trees"),
		FeaturesPerSplit:  viper.GetInt("features_per_split"),
		FrequencyCutoff:   viper.GetFloat64("frequency_cutoff"),
		UniqueCutoff:      viper.GetFloat64("unique_cutoff"),
		Bins:              viper.GetInt("bins"),
		HistogramFeatures: viper.GetStringSlice("histogram_features"),
		Logger:            config.Logf,
	}
}
