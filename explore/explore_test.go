package explore

import (
	"strings"
	"testing"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCrossTab(t *testing.T) {
	subject := feature.NewDiscreteFeature("user_name", []string{"maria", "pedro"})
	label := feature.NewDiscreteFeature("classe", []string{"A", "B"})
	table := dataset.New([]feature.Feature{subject, label}, []dataset.Sample{
		dataset.NewSample(map[string]interface{}{"user_name": "maria", "classe": "A"}),
		dataset.NewSample(map[string]interface{}{"user_name": "maria", "classe": "A"}),
		dataset.NewSample(map[string]interface{}{"user_name": "maria", "classe": "B"}),
		dataset.NewSample(map[string]interface{}{"user_name": "pedro", "classe": "B"}),
		dataset.NewSample(map[string]interface{}{"user_name": "pedro"}),
	})

	ct, err := NewCrossTab(table, subject, label)
	require.NoError(t, err)

	assert.Equal(t, []string{"maria", "pedro"}, ct.RowValues)
	assert.Equal(t, []string{"A", "B"}, ct.ColValues)
	assert.Equal(t, 2, ct.Count("maria", "A"))
	assert.Equal(t, 1, ct.Count("maria", "B"))
	assert.Equal(t, 0, ct.Count("pedro", "A"))
	assert.Equal(t, 1, ct.Count("pedro", "B"), "samples with an undefined value are left out")

	rendered := ct.String()
	assert.True(t, strings.HasPrefix(rendered, "user_name \\ classe"))
	assert.Contains(t, rendered, "maria")
}

func TestNewHistogram(t *testing.T) {
	roll := feature.NewContinuousFeature("belt_roll")
	samples := make([]dataset.Sample, 0, 11)
	for _, v := range []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10} {
		samples = append(samples, dataset.NewSample(map[string]interface{}{"belt_roll": v}))
	}
	samples = append(samples, dataset.NewSample(map[string]interface{}{}))
	table := dataset.New([]feature.Feature{roll}, samples)

	h, err := NewHistogram(table, roll, 5)
	require.NoError(t, err)

	assert.Equal(t, 0.0, h.Min)
	assert.Equal(t, 10.0, h.Max)
	require.Len(t, h.Counts, 5)
	assert.Equal(t, []int{2, 2, 2, 2, 3}, h.Counts, "the maximum falls in the last bin")
	assert.Equal(t, 0.0, h.Edge(0))
	assert.Equal(t, 2.0, h.Edge(1))

	total := 0
	for _, c := range h.Counts {
		total += c
	}
	assert.Equal(t, 11, total, "undefined values are left out")
}

func TestNewHistogramSingleValue(t *testing.T) {
	roll := feature.NewContinuousFeature("belt_roll")
	table := dataset.New([]feature.Feature{roll}, []dataset.Sample{
		dataset.NewSample(map[string]interface{}{"belt_roll": 3.0}),
		dataset.NewSample(map[string]interface{}{"belt_roll": 3.0}),
	})

	h, err := NewHistogram(table, roll, 4)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0, 0, 2}, h.Counts, "zero-width histograms put everything in the last bin")
}

func TestNewHistogramErrors(t *testing.T) {
	roll := feature.NewContinuousFeature("belt_roll")
	empty := dataset.New([]feature.Feature{roll}, nil)

	_, err := NewHistogram(empty, roll, 5)
	assert.Error(t, err)
	_, err = NewHistogram(empty, roll, 0)
	assert.Error(t, err)
}
