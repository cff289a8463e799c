package explore

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

/*
SavePNG renders the histogram to a PNG file at the given path.
*/
func (h *Histogram) SavePNG(path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Distribution of %s", h.Feature)
	p.X.Label.Text = h.Feature
	p.Y.Label.Text = "count"

	values := make(plotter.Values, len(h.values))
	copy(values, h.values)
	hist, err := plotter.NewHist(values, len(h.Counts))
	if err != nil {
		return fmt.Errorf("building histogram plot for %s: %v", h.Feature, err)
	}
	p.Add(hist)

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("saving histogram plot for %s to %s: %v", h.Feature, path, err)
	}
	return nil
}
