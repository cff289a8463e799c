/*
Package formcheck runs the whole exercise-quality analysis as one
batch pipeline: load the labeled training table and the unlabeled
testing table, clean them, summarize them, fit a cross-validated
classification tree and a bagged forest, evaluate both and predict
the testing samples.

Each stage consumes the outputs of the previous ones and produces
new values; no stage mutates its inputs, so a failed run leaves
nothing half-transformed behind.
*/
package formcheck

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/dataset/csv"
	"github.com/formcheck/formcheck/dataset/sqldataset"
	"github.com/formcheck/formcheck/dataset/sqldataset/pgadapter"
	"github.com/formcheck/formcheck/dataset/sqldataset/sqlite3adapter"
	"github.com/formcheck/formcheck/eval"
	"github.com/formcheck/formcheck/explore"
	"github.com/formcheck/formcheck/feature"
	"github.com/formcheck/formcheck/filter"
	"github.com/formcheck/formcheck/forest"
	"github.com/formcheck/formcheck/schema"
	"github.com/formcheck/formcheck/tree"
)

// Default tunables of the analysis. The seeds and fold count are
// fixed so that two runs over the same data produce the same
// models and the same report.
const (
	DefaultFolds      = 10
	DefaultTreeSeed   = 1337
	DefaultForestSeed = 1984
	DefaultBins       = 10
)

/*
Logf is the logging function the pipeline reports its progress
through.
*/
type Logf func(format string, v ...interface{})

/*
StageError is the error returned when a pipeline stage fails. It
names the stage and wraps its cause; the stages after the failed
one are not attempted.
*/
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

/*
Config gathers every input and tunable of an analysis run.
*/
type Config struct {
	// TrainingInput and TestingInput locate the observation tables:
	// a postgresql:// URL, a .db SQLite3 file or a CSV filepath
	// (empty reads STDIN).
	TrainingInput string
	TestingInput  string
	// SchemaPath locates the YAML column-role description.
	SchemaPath string
	// SQLTable is the database table name for SQL inputs.
	SQLTable string
	// MaxDBConns caps the connections opened against SQL inputs.
	MaxDBConns int

	// Folds is the fold count of the tree's cross-validation.
	Folds int
	// TreeSeed derives the cross-validation fold assignment.
	TreeSeed int64
	// ForestSeed derives the forest's bootstrap resamples.
	ForestSeed int64
	// Trees is the forest size.
	Trees int
	// FeaturesPerSplit caps the features each forest split
	// considers. Zero picks the square-root default.
	FeaturesPerSplit int
	// GainGrid is the information-gain grid the cross-validation
	// tries. Nil tries the default grid.
	GainGrid []float64

	// FrequencyCutoff and UniqueCutoff tune the near-zero-variance
	// column drop. Zero values pick the defaults.
	FrequencyCutoff float64
	UniqueCutoff    float64

	// HistogramFeatures names the continuous columns to summarize
	// as histograms. Empty picks the first two of the selection.
	HistogramFeatures []string
	// Bins is the histogram bin count. Zero picks the default.
	Bins int
	// PlotDir, when not empty, is the directory histogram PNGs are
	// rendered into.
	PlotDir string

	// Logger reports progress. Nil disables logging.
	Logger Logf
}

func (c *Config) withDefaults() *Config {
	cfg := &Config{}
	if c != nil {
		*cfg = *c
	}
	if cfg.Folds == 0 {
		cfg.Folds = DefaultFolds
	}
	if cfg.TreeSeed == 0 {
		cfg.TreeSeed = DefaultTreeSeed
	}
	if cfg.ForestSeed == 0 {
		cfg.ForestSeed = DefaultForestSeed
	}
	if cfg.Bins == 0 {
		cfg.Bins = DefaultBins
	}
	if cfg.Logger == nil {
		cfg.Logger = func(string, ...interface{}) {}
	}
	return cfg
}

/*
Result gathers everything an analysis run produced, ready for the
report to render.
*/
type Result struct {
	Schema *schema.Schema

	// TrainingRows and TestingRows are the loaded row counts before
	// any cleaning.
	TrainingRows int
	TestingRows  int

	// Filter is the outcome of cleaning the training table.
	Filter *filter.Result
	// Testing is the testing table narrowed to the training
	// selection.
	Testing *dataset.Table

	// CrossTab tabulates subject against label, when the schema
	// declares a subject column. Nil otherwise.
	CrossTab *explore.CrossTab
	// Histograms summarize the configured continuous columns.
	Histograms []*explore.Histogram
	// PlotPaths are the rendered histogram PNGs, index-aligned with
	// Histograms. Empty when no plot directory was configured.
	PlotPaths []string

	// Tree is the cross-validated classification tree and CV its
	// trial outcomes.
	Tree *tree.Tree
	CV   *tree.CVResult
	// TreeMatrix is the tree's in-sample confusion matrix and
	// TreeFailed the training samples it declined to classify.
	TreeMatrix *eval.ConfusionMatrix
	TreeFailed int

	// Forest is the bagged ensemble, OOB its out-of-bag assessment
	// and ForestMatrix its in-sample confusion matrix.
	Forest       *forest.Forest
	OOB          *forest.OOBEvaluation
	ForestMatrix *eval.ConfusionMatrix
	ForestFailed int

	// TestPredictions are the forest's predicted classes for the
	// testing samples, in table order. Samples the forest cannot
	// classify are empty strings.
	TestPredictions []string
}

/*
Run takes a context and a configuration and executes the full
analysis, returning its result or a *StageError naming the first
stage that failed.
*/
func Run(ctx context.Context, cfg *Config) (*Result, error) {
	cfg = cfg.withDefaults()
	result := &Result{}

	cfg.Logger("reading schema from %s...\n", cfg.SchemaPath)
	sc, err := schema.ReadFile(cfg.SchemaPath)
	if err != nil {
		return nil, &StageError{"loading schema", err}
	}
	result.Schema = sc

	cfg.Logger("loading training table from %s...\n", cfg.TrainingInput)
	training, err := LoadTable(cfg.TrainingInput, cfg.SQLTable, cfg.MaxDBConns, sc)
	if err != nil {
		return nil, &StageError{"loading training table", err}
	}
	result.TrainingRows = training.Count()
	cfg.Logger("loading testing table from %s...\n", cfg.TestingInput)
	testing, err := LoadTable(cfg.TestingInput, cfg.SQLTable, cfg.MaxDBConns, sc)
	if err != nil {
		return nil, &StageError{"loading testing table", err}
	}
	result.TestingRows = testing.Count()

	cfg.Logger("cleaning tables...\n")
	result.Filter, err = filter.Filter(training, sc, filter.Config{
		FrequencyCutoff: cfg.FrequencyCutoff,
		UniqueCutoff:    cfg.UniqueCutoff,
	})
	if err != nil {
		return nil, &StageError{"cleaning training table", err}
	}
	testingRaw, err := filter.RawRows(testing, sc)
	if err != nil {
		return nil, &StageError{"cleaning testing table", err}
	}
	result.Testing, err = result.Filter.Selection.Apply(testingRaw)
	if err != nil {
		return nil, &StageError{"cleaning testing table", err}
	}
	cleaned := result.Filter.Table
	cfg.Logger("cleaned training table has %d rows and %d feature columns\n", cleaned.Count(), result.Filter.Selection.Len())

	if err := summarize(result, cfg, sc, cleaned); err != nil {
		return nil, &StageError{"exploring training table", err}
	}

	label := sc.LabelFeature()
	modelFeatures := result.Filter.Selection.Features()

	cfg.Logger("fitting classification tree with %d-fold cross-validation...\n", cfg.Folds)
	result.Tree, result.CV, err = tree.GrowCV(ctx, cleaned, label, modelFeatures, cfg.Folds, cfg.TreeSeed, cfg.GainGrid)
	if err != nil {
		return nil, &StageError{"fitting tree", err}
	}
	result.TreeMatrix, result.TreeFailed, err = eval.Evaluate(result.Tree, cleaned, label)
	if err != nil {
		return nil, &StageError{"evaluating tree", err}
	}
	cfg.Logger("tree in-sample error rate: %.4f\n", result.TreeMatrix.ErrorRate())

	cfg.Logger("fitting random forest...\n")
	result.Forest, err = forest.Fit(ctx, cleaned, label, modelFeatures, &forest.Config{
		Trees:            cfg.Trees,
		Seed:             cfg.ForestSeed,
		FeaturesPerSplit: cfg.FeaturesPerSplit,
	})
	if err != nil {
		return nil, &StageError{"fitting forest", err}
	}
	result.OOB, err = result.Forest.OOBEvaluate()
	if err != nil {
		return nil, &StageError{"evaluating forest", err}
	}
	result.ForestMatrix, result.ForestFailed, err = eval.Evaluate(result.Forest, cleaned, label)
	if err != nil {
		return nil, &StageError{"evaluating forest", err}
	}
	cfg.Logger("forest out-of-bag error rate: %.4f\n", result.OOB.ErrorRate())

	cfg.Logger("predicting %d testing samples...\n", result.Testing.Count())
	result.TestPredictions, err = predictAll(result.Forest, result.Testing)
	if err != nil {
		return nil, &StageError{"predicting testing table", err}
	}
	return result, nil
}

/*
LoadTable takes an input locator, a database table name, a limit
for open database connections and a schema, and returns the table
read from the input: a PostgreSQL database for postgresql:// URLs,
a SQLite3 database for .db filepaths and a CSV file otherwise (an
empty locator reads CSV from STDIN).
*/
func LoadTable(input, sqlTable string, maxDBConns int, sc *schema.Schema) (*dataset.Table, error) {
	switch {
	case strings.HasPrefix(input, "postgresql://"), strings.HasPrefix(input, "postgres://"):
		adapter, err := pgadapter.New(input, maxDBConns)
		if err != nil {
			return nil, err
		}
		return sqldataset.ReadTable(adapter, sqlTable, sc)
	case strings.HasSuffix(input, ".db"):
		adapter, err := sqlite3adapter.New(input, maxDBConns)
		if err != nil {
			return nil, err
		}
		return sqldataset.ReadTable(adapter, sqlTable, sc)
	default:
		return csv.ReadTableFromFilePath(input, sc)
	}
}

/*
summarize fills the exploratory section of the result: the
subject-against-label cross-tabulation and the configured
histograms, rendered to PNG when a plot directory is set.
*/
func summarize(result *Result, cfg *Config, sc *schema.Schema, t *dataset.Table) error {
	label := t.Feature(sc.Label.Column)
	if subject := t.Feature(sc.Subject); subject != nil && label != nil {
		sf, sok := subject.(*feature.DiscreteFeature)
		lf, lok := label.(*feature.DiscreteFeature)
		if sok && lok {
			ct, err := explore.NewCrossTab(t, sf, lf)
			if err != nil {
				return err
			}
			result.CrossTab = ct
		}
	}

	names := cfg.HistogramFeatures
	if len(names) == 0 {
		for _, f := range t.Features() {
			if _, ok := f.(*feature.ContinuousFeature); ok {
				names = append(names, f.Name())
				if len(names) == 2 {
					break
				}
			}
		}
	}
	for _, name := range names {
		f := t.Feature(name)
		if f == nil {
			return fmt.Errorf("table has no column %s to summarize", name)
		}
		cf, ok := f.(*feature.ContinuousFeature)
		if !ok {
			return fmt.Errorf("column %s is not continuous, cannot summarize it as a histogram", name)
		}
		h, err := explore.NewHistogram(t, cf, cfg.Bins)
		if err != nil {
			return err
		}
		result.Histograms = append(result.Histograms, h)
		if cfg.PlotDir != "" {
			path := filepath.Join(cfg.PlotDir, fmt.Sprintf("histogram_%s.png", name))
			if err := h.SavePNG(path); err != nil {
				return err
			}
			result.PlotPaths = append(result.PlotPaths, path)
		}
	}
	return nil
}

func predictAll(f *forest.Forest, t *dataset.Table) ([]string, error) {
	predictions := make([]string, 0, t.Count())
	for _, sample := range t.Samples() {
		value, err := f.Classify(sample)
		if err != nil {
			if err == tree.ErrCannotPredictFromSample {
				predictions = append(predictions, "")
				continue
			}
			return nil, err
		}
		predictions = append(predictions, value)
	}
	return predictions, nil
}
