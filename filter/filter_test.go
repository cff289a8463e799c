package filter

import (
	"fmt"
	"testing"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Label:   schema.Label{Column: "classe", Classes: []string{"A", "B"}},
		Subject: "user_name",
		Window:  schema.Window{Column: "new_window", RawValue: "no"},
		Drop:    []string{"X", "cvtd_timestamp"},
		Missing: []string{"", "NA", "#DIV/0!"},
	}
}

// trainingTable builds a table with 40 raw rows and 2
// window-summary rows: a row-id column, the subject, a timestamp,
// the window indicator, a constant column, a nearly-constant
// column (39 zeros and a one: frequency ratio 39, 5% distinct),
// an informative measurement and the label.
func trainingTable(t *testing.T) *dataset.Table {
	header := []string{"X", "user_name", "cvtd_timestamp", "new_window", "const_col", "skewed_col", "belt_roll", "classe"}
	var records [][]string
	for i := 0; i < 40; i++ {
		subject, class := "maria", "A"
		if i%2 == 1 {
			subject, class = "pedro", "B"
		}
		skewed := "0"
		if i == 0 {
			skewed = "1"
		}
		records = append(records, []string{
			fmt.Sprintf("%d", i+1), subject, "01/12/2025 13:30", "no", "1", skewed, fmt.Sprintf("%d.5", 10+i), class,
		})
	}
	records = append(records,
		[]string{"41", "maria", "01/12/2025 13:30", "yes", "1", "0", "#DIV/0!", "A"},
		[]string{"42", "pedro", "01/12/2025 13:30", "yes", "1", "0", "#DIV/0!", "B"},
	)
	table, err := dataset.FromRecords("test", header, records, testSchema())
	require.NoError(t, err)
	return table
}

func TestFilter(t *testing.T) {
	table := trainingTable(t)
	result, err := Filter(table, testSchema(), Config{})
	require.NoError(t, err)

	assert.Equal(t, 2, result.RowsDropped, "window-summary rows are dropped")
	assert.Equal(t, 40, result.Table.Count())
	assert.ElementsMatch(t, []string{"X", "cvtd_timestamp", "new_window"}, result.MetadataDropped)
	assert.ElementsMatch(t, []string{"const_col", "skewed_col"}, result.NearZeroVarianceDropped)
	assert.Equal(t, []string{"user_name", "belt_roll"}, result.Selection.Names(), "selection keeps training-table column order")

	names := make([]string, 0)
	for _, f := range result.Table.Features() {
		names = append(names, f.Name())
	}
	assert.Equal(t, []string{"user_name", "belt_roll", "classe"}, names, "the cleaned table keeps the label, the selection does not")
}

func TestFilterSubjectExemptFromNearZeroVariance(t *testing.T) {
	// All rows but one belong to the same subject: the column
	// would qualify as near-zero-variance, the subject role
	// exempts it.
	header := []string{"user_name", "belt_roll", "classe"}
	var records [][]string
	for i := 0; i < 50; i++ {
		subject := "maria"
		if i == 0 {
			subject = "pedro"
		}
		class := "A"
		if i%2 == 1 {
			class = "B"
		}
		records = append(records, []string{subject, fmt.Sprintf("%d", i), class})
	}
	table, err := dataset.FromRecords("test", header, records, testSchema())
	require.NoError(t, err)

	result, err := Filter(table, testSchema(), Config{})
	require.NoError(t, err)
	assert.Contains(t, result.Selection.Names(), "user_name")
	assert.Empty(t, result.NearZeroVarianceDropped)
}

func TestFilterIdempotent(t *testing.T) {
	table := trainingTable(t)
	first, err := Filter(table, testSchema(), Config{})
	require.NoError(t, err)
	second, err := Filter(first.Table, testSchema(), Config{})
	require.NoError(t, err)

	assert.Equal(t, first.Selection.Names(), second.Selection.Names())
	assert.Equal(t, first.Table.Count(), second.Table.Count())
	assert.Zero(t, second.RowsDropped)
	assert.Empty(t, second.NearZeroVarianceDropped)
}

func TestRawRowsWithoutWindowColumn(t *testing.T) {
	header := []string{"belt_roll", "classe"}
	table, err := dataset.FromRecords("test", header, [][]string{{"1", "A"}, {"2", "B"}}, testSchema())
	require.NoError(t, err)

	rows, err := RawRows(table, testSchema())
	require.NoError(t, err)
	assert.Equal(t, table.Count(), rows.Count(), "tables without the window column are returned unchanged")
}

func TestSelectionApply(t *testing.T) {
	table := trainingTable(t)
	result, err := Filter(table, testSchema(), Config{})
	require.NoError(t, err)

	// A testing table with the selected columns plus extras, in a
	// different order.
	testing, err := dataset.FromRecords("testing", []string{"belt_roll", "extra", "user_name"}, [][]string{
		{"12.5", "x", "maria"},
	}, testSchema())
	require.NoError(t, err)

	applied, err := result.Selection.Apply(testing)
	require.NoError(t, err)
	names := make([]string, 0)
	for _, f := range applied.Features() {
		names = append(names, f.Name())
	}
	assert.Equal(t, result.Selection.Names(), names, "applying a selection reorders columns to match it")
}

func TestSelectionApplyMissingColumn(t *testing.T) {
	table := trainingTable(t)
	result, err := Filter(table, testSchema(), Config{})
	require.NoError(t, err)

	testing, err := dataset.FromRecords("testing", []string{"user_name"}, [][]string{{"maria"}}, testSchema())
	require.NoError(t, err)

	_, err = result.Selection.Apply(testing)
	require.Error(t, err)
	var mismatch *SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "belt_roll", mismatch.Column)
}
