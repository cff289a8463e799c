/*
Package schema provides methods to parse the description of a
measurement table, also known as metadata, from YAML documents.

The description assigns roles to the columns the analysis cares
about: the label column with its classes, the subject column, the
window-indicator column with the sentinel value marking raw
measurement rows, and the bookkeeping columns to drop before any
model sees the data.
*/
package schema

import (
	"fmt"
	"os"

	"github.com/formcheck/formcheck/feature"
	yaml "gopkg.in/yaml.v2"
)

// Missing-value tokens used when the metadata does not declare its
// own. The division-error token shows up in window-summary rows of
// exported sensor logs.
var defaultMissingTokens = []string{"", "?", "NA", "#DIV/0!"}

/*
Schema describes the columns of a measurement table.
*/
type Schema struct {
	// Label declares the execution-quality column and its classes.
	// It is present on training tables only.
	Label Label `yaml:"label"`
	// Subject is the name of the column identifying who performed
	// the exercise. It is kept as a feature.
	Subject string `yaml:"subject"`
	// Window declares the column distinguishing raw measurement
	// rows from pre-aggregated window-summary rows.
	Window Window `yaml:"window"`
	// Drop lists bookkeeping columns (row identifiers, timestamps,
	// window counters) removed before modeling.
	Drop []string `yaml:"drop"`
	// Missing lists the tokens parsed as undefined values.
	Missing []string `yaml:"missing"`
}

/*
Label declares the name of the label column and the closed set of
classes it can take.
*/
type Label struct {
	Column  string   `yaml:"column"`
	Classes []string `yaml:"classes"`
}

/*
Window declares the name of the window-indicator column and the
sentinel value its raw (not window-summary) rows carry.
*/
type Window struct {
	Column   string `yaml:"column"`
	RawValue string `yaml:"raw_value"`
}

/*
Read takes a slice of bytes with a schema specification in YAML
and returns the parsed schema or an error.
*/
func Read(md []byte) (*Schema, error) {
	s := &Schema{}
	err := yaml.Unmarshal(md, s)
	if err != nil {
		return nil, fmt.Errorf("parsing yml schema: %v", err)
	}
	if len(s.Missing) == 0 {
		s.Missing = defaultMissingTokens
	}
	err = s.validate()
	if err != nil {
		return nil, err
	}
	return s, nil
}

/*
ReadFile takes a filepath string, reads its contents and uses Read
to parse it and return a schema or an error. It will return an
error if the file cannot be opened for reading.
*/
func ReadFile(filepath string) (*Schema, error) {
	md, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("reading schema yml file %s: %v", filepath, err)
	}
	s, err := Read(md)
	if err != nil {
		err = fmt.Errorf("parsing schema yml file %s: %v", filepath, err)
	}
	return s, err
}

/*
LabelFeature returns the discrete feature for the label column.
*/
func (s *Schema) LabelFeature() *feature.DiscreteFeature {
	return feature.NewDiscreteFeature(s.Label.Column, s.Label.Classes)
}

/*
MissingToken takes a raw column value string and returns whether
it is one of the schema's undefined-value tokens.
*/
func (s *Schema) MissingToken(v string) bool {
	for _, t := range s.Missing {
		if t == v {
			return true
		}
	}
	return false
}

/*
Dropped takes a column name and returns whether the schema
declares it a bookkeeping column to remove.
*/
func (s *Schema) Dropped(name string) bool {
	for _, d := range s.Drop {
		if d == name {
			return true
		}
	}
	return false
}

func (s *Schema) validate() error {
	if s.Label.Column == "" {
		return fmt.Errorf("schema declares no label column")
	}
	if len(s.Label.Classes) < 2 {
		return fmt.Errorf("schema declares %d classes for label %s, at least 2 are needed", len(s.Label.Classes), s.Label.Column)
	}
	if s.Window.Column != "" && s.Window.RawValue == "" {
		return fmt.Errorf("schema declares window column %s without a raw-row value", s.Window.Column)
	}
	for _, d := range s.Drop {
		if d == s.Label.Column {
			return fmt.Errorf("schema drops its own label column %s", d)
		}
		if d == s.Subject {
			return fmt.Errorf("schema drops its own subject column %s", d)
		}
	}
	return nil
}
