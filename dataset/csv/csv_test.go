package csv

import (
	"bytes"
	"strings"
	"testing"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchema() *schema.Schema {
	return &schema.Schema{
		Label:   schema.Label{Column: "classe", Classes: []string{"A", "B"}},
		Missing: []string{"", "NA", "#DIV/0!"},
	}
}

func TestReadTable(t *testing.T) {
	input := `user_name,belt_roll,classe
maria,1.5,A
pedro,#DIV/0!,B
maria,-2,A
`
	table, err := ReadTable(strings.NewReader(input), "test.csv", testSchema())
	require.NoError(t, err)

	assert.Equal(t, 3, table.Count())
	require.NotNil(t, table.Feature("belt_roll"))
	v, err := table.Samples()[1].ValueFor(table.Feature("belt_roll"))
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestReadTableMalformedCSV(t *testing.T) {
	input := "user_name,classe\nmaria,\"A\npedro"
	_, err := ReadTable(strings.NewReader(input), "test.csv", testSchema())
	require.Error(t, err)
	var fe *dataset.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "test.csv", fe.Source)
}

func TestReadTableRaggedRow(t *testing.T) {
	input := "belt_roll,classe\n1,A\n2,B,extra\n"
	_, err := ReadTable(strings.NewReader(input), "test.csv", testSchema())
	require.Error(t, err)
	var fe *dataset.FormatError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 3, fe.Line)
}

func TestWriteTable(t *testing.T) {
	input := `belt_roll,classe
1.5,A
NA,B
`
	table, err := ReadTable(strings.NewReader(input), "test.csv", testSchema())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, table))
	assert.Equal(t, "belt_roll,classe\n1.5,A\n,B\n", buf.String(), "undefined values dump as empty fields")
}

func TestReadTableFromFilePathMissingFile(t *testing.T) {
	_, err := ReadTableFromFilePath("no-such-table.csv", testSchema())
	assert.Error(t, err)
}
