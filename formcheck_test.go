package formcheck_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formcheck/formcheck"
	"github.com/formcheck/formcheck/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchemaYML = `
label:
  column: classe
  classes: [A, B, C]
subject: user_name
window:
  column: new_window
  raw_value: "no"
drop: [X, cvtd_timestamp]
`

// writeFixtures lays out a schema, a labeled training CSV and an
// unlabeled testing CSV in dir. The training table has 60 raw
// rows, 20 per class, with a measurement column that fully
// separates the classes, plus 6 window-summary rows and the
// bookkeeping and constant columns the cleaning must drop.
func writeFixtures(t *testing.T, dir string) (schemaPath, trainingPath, testingPath string) {
	t.Helper()
	schemaPath = filepath.Join(dir, "schema.yml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(testSchemaYML), 0644))

	var training strings.Builder
	training.WriteString("X,user_name,cvtd_timestamp,new_window,const_col,belt_roll,classe\n")
	row := 0
	for c, class := range []string{"A", "B", "C"} {
		for i := 0; i < 20; i++ {
			row++
			subject := "maria"
			if i%2 == 1 {
				subject = "pedro"
			}
			fmt.Fprintf(&training, "%d,%s,01/12/2025 13:30,no,1,%.1f,%s\n", row, subject, float64(10*(c+1))+0.2*float64(i), class)
		}
	}
	for i := 0; i < 6; i++ {
		row++
		fmt.Fprintf(&training, "%d,maria,01/12/2025 13:30,yes,1,#DIV/0!,A\n", row)
	}
	trainingPath = filepath.Join(dir, "training.csv")
	require.NoError(t, os.WriteFile(trainingPath, []byte(training.String()), 0644))

	testing := `X,user_name,cvtd_timestamp,new_window,const_col,belt_roll
1,maria,01/12/2025 13:30,no,1,12.0
2,pedro,01/12/2025 13:30,no,1,25.0
3,maria,01/12/2025 13:30,no,1,33.0
`
	testingPath = filepath.Join(dir, "testing.csv")
	require.NoError(t, os.WriteFile(testingPath, []byte(testing), 0644))
	return schemaPath, trainingPath, testingPath
}

func testConfig(t *testing.T) *formcheck.Config {
	schemaPath, trainingPath, testingPath := writeFixtures(t, t.TempDir())
	return &formcheck.Config{
		TrainingInput: trainingPath,
		TestingInput:  testingPath,
		SchemaPath:    schemaPath,
		Trees:         15,
		GainGrid:      []float64{0},
	}
}

func TestRun(t *testing.T) {
	result, err := formcheck.Run(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, 66, result.TrainingRows)
	assert.Equal(t, 3, result.TestingRows)

	assert.Equal(t, 6, result.Filter.RowsDropped)
	assert.Equal(t, 60, result.Filter.Table.Count())
	assert.ElementsMatch(t, []string{"X", "cvtd_timestamp", "new_window"}, result.Filter.MetadataDropped)
	assert.Equal(t, []string{"const_col"}, result.Filter.NearZeroVarianceDropped)
	assert.Equal(t, []string{"user_name", "belt_roll"}, result.Filter.Selection.Names())
	assert.Equal(t, 3, result.Testing.Count())

	require.NotNil(t, result.CrossTab)
	assert.Equal(t, 10, result.CrossTab.Count("maria", "A"))
	assert.Equal(t, 10, result.CrossTab.Count("pedro", "B"))
	require.Len(t, result.Histograms, 1)
	assert.Equal(t, "belt_roll", result.Histograms[0].Feature)

	require.NotNil(t, result.CV)
	require.Len(t, result.CV.Trials, 1)
	assert.Zero(t, result.CV.Trials[0].MeanError, "the measurement separates the classes perfectly")
	assert.Zero(t, result.TreeMatrix.ErrorRate())
	assert.Zero(t, result.TreeFailed)

	require.Len(t, result.Forest.Trees, 15)
	assert.LessOrEqual(t, result.OOB.ErrorRate(), 0.1)
	assert.Equal(t, 60, result.OOB.ConfusionMatrix.Total()+result.OOB.Unvoted)
	assert.Zero(t, result.ForestMatrix.ErrorRate())

	assert.Equal(t, []string{"A", "B", "C"}, result.TestPredictions)
}

// TestRunSyntheticScenario runs the pipeline over 100 rows with 5
// balanced classes and 20 feature columns, 2 of them constant.
// One measurement separates A and B from everything else, while C,
// D and E rows come in feature-identical triplets, so no model can
// tell those three classes apart.
func TestRunSyntheticScenario(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "schema.yml")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`
label:
  column: classe
  classes: [A, B, C, D, E]
`), 0644))

	var header strings.Builder
	header.WriteString("classe")
	for k := 1; k <= 18; k++ {
		fmt.Fprintf(&header, ",f%02d", k)
	}
	header.WriteString(",c19,c20")

	var training strings.Builder
	training.WriteString(header.String() + "\n")
	for c, class := range []string{"A", "B", "C", "D", "E"} {
		for i := 0; i < 20; i++ {
			training.WriteString(class)
			separating := 50.0 + 0.1*float64(i%20)
			if c < 2 {
				separating = float64(10+20*c) + 0.1*float64(i)
			}
			fmt.Fprintf(&training, ",%.1f", separating)
			for k := 2; k <= 18; k++ {
				fmt.Fprintf(&training, ",%d", ((i%20)*31+k*17)%97)
			}
			training.WriteString(",1,7\n")
		}
	}
	trainingPath := filepath.Join(dir, "training.csv")
	require.NoError(t, os.WriteFile(trainingPath, []byte(training.String()), 0644))

	var testingTable strings.Builder
	testingTable.WriteString(strings.TrimPrefix(header.String(), "classe,") + "\n")
	testingTable.WriteString("12.0")
	for k := 2; k <= 18; k++ {
		testingTable.WriteString(",3")
	}
	testingTable.WriteString(",1,7\n")
	testingPath := filepath.Join(dir, "testing.csv")
	require.NoError(t, os.WriteFile(testingPath, []byte(testingTable.String()), 0644))

	result, err := formcheck.Run(context.Background(), &formcheck.Config{
		TrainingInput: trainingPath,
		TestingInput:  testingPath,
		SchemaPath:    schemaPath,
		Trees:         30,
		GainGrid:      []float64{0},
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"c19", "c20"}, result.Filter.NearZeroVarianceDropped, "exactly the constant columns are dropped")
	assert.Equal(t, 18, result.Filter.Selection.Len())

	assert.Equal(t, 100, result.TreeMatrix.Total(), "the tree's confusion matrix counts every training row")
	assert.InDelta(t, 0.4, result.TreeMatrix.ErrorRate(), 1e-9, "A and B separate, the C/D/E triplets cannot")

	assert.Greater(t, result.OOB.ErrorRate(), 0.0)
	assert.Less(t, result.OOB.ErrorRate(), 1.0)
	assert.Equal(t, 100, result.OOB.ConfusionMatrix.Total()+result.OOB.Unvoted)

	require.Len(t, result.TestPredictions, 1)
	assert.Equal(t, "A", result.TestPredictions[0])
}

func TestRunIsReproducible(t *testing.T) {
	first, err := formcheck.Run(context.Background(), testConfig(t))
	require.NoError(t, err)
	second, err := formcheck.Run(context.Background(), testConfig(t))
	require.NoError(t, err)

	assert.Equal(t, first.Tree.String(), second.Tree.String())
	assert.Equal(t, first.OOB.ErrorRate(), second.OOB.ErrorRate())
	assert.Equal(t, first.TestPredictions, second.TestPredictions)
}

func TestRunStageErrors(t *testing.T) {
	cfg := testConfig(t)
	cfg.TrainingInput = filepath.Join(t.TempDir(), "missing.csv")

	_, err := formcheck.Run(context.Background(), cfg)
	require.Error(t, err)
	var stageErr *formcheck.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "loading training table", stageErr.Stage)
}

func TestRunMissingSchema(t *testing.T) {
	cfg := testConfig(t)
	cfg.SchemaPath = filepath.Join(t.TempDir(), "missing.yml")

	_, err := formcheck.Run(context.Background(), cfg)
	var stageErr *formcheck.StageError
	require.True(t, errors.As(err, &stageErr))
	assert.Equal(t, "loading schema", stageErr.Stage)
}

func TestReportWrite(t *testing.T) {
	result, err := formcheck.Run(context.Background(), testConfig(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, report.Write(&buf, result))
	rendered := buf.String()

	for _, section := range []string{
		"# Exercise execution quality",
		"## Data",
		"## Exploration",
		"## Classification tree",
		"## Random forest",
		"## Testing-set predictions",
		"## Conclusion",
	} {
		assert.Contains(t, rendered, section)
	}
	assert.Contains(t, rendered, "| 1 | A |")
	assert.Contains(t, rendered, "| 2 | B |")
	assert.Contains(t, rendered, "| 3 | C |")
	assert.Less(t, strings.Index(rendered, "## Data"), strings.Index(rendered, "## Classification tree"), "sections appear in pipeline order")
}
