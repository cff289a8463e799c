package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validSchema = `
label:
  column: classe
  classes: [A, B, C, D, E]
subject: user_name
window:
  column: new_window
  raw_value: "no"
drop: [X, cvtd_timestamp]
`

func TestRead(t *testing.T) {
	sc, err := Read([]byte(validSchema))
	require.NoError(t, err)

	assert.Equal(t, "classe", sc.Label.Column)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, sc.Label.Classes)
	assert.Equal(t, "user_name", sc.Subject)
	assert.Equal(t, "new_window", sc.Window.Column)
	assert.Equal(t, "no", sc.Window.RawValue)
	assert.True(t, sc.Dropped("X"))
	assert.True(t, sc.Dropped("cvtd_timestamp"))
	assert.False(t, sc.Dropped("user_name"))
}

func TestReadDefaultMissingTokens(t *testing.T) {
	sc, err := Read([]byte(validSchema))
	require.NoError(t, err)

	for _, token := range []string{"", "?", "NA", "#DIV/0!"} {
		assert.True(t, sc.MissingToken(token), "token %q", token)
	}
	assert.False(t, sc.MissingToken("A"))
	assert.False(t, sc.MissingToken("0"))
}

func TestReadDeclaredMissingTokens(t *testing.T) {
	sc, err := Read([]byte(validSchema + "missing: [null]\n"))
	require.NoError(t, err)

	assert.True(t, sc.MissingToken("null"))
	assert.False(t, sc.MissingToken("NA"))
}

func TestReadInvalidSchemas(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{
			name: "no label column",
			yml: `
subject: user_name
`,
		},
		{
			name: "single class",
			yml: `
label:
  column: classe
  classes: [A]
`,
		},
		{
			name: "window without raw value",
			yml: `
label:
  column: classe
  classes: [A, B]
window:
  column: new_window
`,
		},
		{
			name: "dropping the label column",
			yml: `
label:
  column: classe
  classes: [A, B]
drop: [classe]
`,
		},
		{
			name: "dropping the subject column",
			yml: `
label:
  column: classe
  classes: [A, B]
subject: user_name
drop: [user_name]
`,
		},
		{
			name: "malformed yml",
			yml:  "label: [",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read([]byte(tt.yml))
			assert.Error(t, err)
		})
	}
}

func TestLabelFeature(t *testing.T) {
	sc, err := Read([]byte(validSchema))
	require.NoError(t, err)

	label := sc.LabelFeature()
	assert.Equal(t, "classe", label.Name())
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, label.AvailableValues())

	ok, err := label.Valid("C")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = label.Valid("F")
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestReadFileMissingFile(t *testing.T) {
	_, err := ReadFile("no-such-schema.yml")
	assert.Error(t, err)
}
