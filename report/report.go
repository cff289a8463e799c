/*
Package report renders the result of an analysis run as a markdown
document: data summary, exploratory tables, the two fitted models
with their evaluations and the testing-set predictions.
*/
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/formcheck/formcheck"
)

/*
Write takes an io.Writer and an analysis result and renders the
result to the writer as markdown. Sections appear in pipeline
order, so the document reads as the analysis ran.
*/
func Write(w io.Writer, r *formcheck.Result) error {
	sections := []func(io.Writer, *formcheck.Result) error{
		writeIntroduction,
		writeDataSummary,
		writeExploration,
		writeTreeSection,
		writeForestSection,
		writePredictions,
		writeConclusion,
	}
	for _, section := range sections {
		if err := section(w, r); err != nil {
			return err
		}
	}
	return nil
}

func writeIntroduction(w io.Writer, r *formcheck.Result) error {
	_, err := fmt.Fprintf(w, `# Exercise execution quality

Sensor measurements taken while subjects performed an exercise,
labeled %s with how well each repetition was executed. The
analysis below cleans the measurements, fits a cross-validated
classification tree and a bagged forest of trees on the labeled
table, and predicts the label of the unlabeled testing samples.

`, quotedClasses(r.Schema.Label.Classes))
	return err
}

func writeDataSummary(w io.Writer, r *formcheck.Result) error {
	_, err := fmt.Fprintf(w, `## Data

The training table has %d rows and the testing table %d.
Window-summary rows are dropped (%d in training), along with the
bookkeeping columns (%s) and the near-zero-variance columns. The
cleaned training table keeps %d rows and %d feature columns plus
the %s label.

`,
		r.TrainingRows, r.TestingRows,
		r.Filter.RowsDropped,
		strings.Join(r.Filter.MetadataDropped, ", "),
		r.Filter.Table.Count(), r.Filter.Selection.Len(),
		r.Schema.Label.Column)
	if err != nil {
		return err
	}
	if len(r.Filter.NearZeroVarianceDropped) > 0 {
		_, err = fmt.Fprintf(w, "Near-zero-variance columns dropped: %s.\n\n",
			strings.Join(r.Filter.NearZeroVarianceDropped, ", "))
	}
	return err
}

func writeExploration(w io.Writer, r *formcheck.Result) error {
	if _, err := fmt.Fprint(w, "## Exploration\n\n"); err != nil {
		return err
	}
	if r.CrossTab != nil {
		_, err := fmt.Fprintf(w, "How the %s classes distribute per %s:\n\n```\n%s```\n\n",
			r.CrossTab.ColFeature, r.CrossTab.RowFeature, r.CrossTab)
		if err != nil {
			return err
		}
	}
	for i, h := range r.Histograms {
		if i < len(r.PlotPaths) {
			if _, err := fmt.Fprintf(w, "![Distribution of %s](%s)\n\n", h.Feature, r.PlotPaths[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "```\n%s```\n\n", h); err != nil {
			return err
		}
	}
	return nil
}

func writeTreeSection(w io.Writer, r *formcheck.Result) error {
	_, err := fmt.Fprintf(w, `## Classification tree

The tree is grown on the cleaned training table, with its
complexity chosen by cross-validation over a grid of
information-gain thresholds:

`)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "| gain threshold | mean CV error |\n|---|---|\n"); err != nil {
		return err
	}
	for _, trial := range r.CV.Trials {
		if _, err := fmt.Fprintf(w, "| %g | %.4f |\n", trial.Gain, trial.MeanError); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, `
The chosen threshold is %g. The final tree, grown on the full
training table with it, has %d nodes and depth %d.

`, r.CV.Gain, r.Tree.NodeCount(), r.Tree.Depth())
	if err != nil {
		return err
	}
	if splits := r.Tree.FeatureSplits(); len(splits) > 0 {
		if _, err := fmt.Fprint(w, "Splits per feature:\n\n"); err != nil {
			return err
		}
		for _, f := range r.Filter.Selection.Names() {
			if n, ok := splits[f]; ok {
				if _, err := fmt.Fprintf(w, "- %s: %d\n", f, n); err != nil {
					return err
				}
			}
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "In-sample confusion matrix (error rate %.4f, %d samples unclassifiable):\n\n```\n%s```\n\n",
		r.TreeMatrix.ErrorRate(), r.TreeFailed, r.TreeMatrix)
	return err
}

func writeForestSection(w io.Writer, r *formcheck.Result) error {
	_, err := fmt.Fprintf(w, `## Random forest

The forest bags %d trees, each grown unpruned on a bootstrap
resample of the training table and considering a random subset of
features at each split. Its out-of-bag error rate, the estimate of
generalization error, is %.4f (%d samples without out-of-bag
votes).

`, len(r.Forest.Trees), r.OOB.ErrorRate(), r.OOB.Unvoted)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Out-of-bag confusion matrix:\n\n```\n%s```\n\n", r.OOB.ConfusionMatrix)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "In-sample confusion matrix (error rate %.4f, %d samples unclassifiable):\n\n```\n%s```\n\n",
		r.ForestMatrix.ErrorRate(), r.ForestFailed, r.ForestMatrix)
	return err
}

func writePredictions(w io.Writer, r *formcheck.Result) error {
	_, err := fmt.Fprintf(w, `## Testing-set predictions

The forest's predictions for the %d testing samples, in table
order:

`, len(r.TestPredictions))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "| sample | predicted |\n|---|---|\n"); err != nil {
		return err
	}
	for i, p := range r.TestPredictions {
		if p == "" {
			p = "(unclassifiable)"
		}
		if _, err := fmt.Fprintf(w, "| %d | %s |\n", i+1, p); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(w)
	return err
}

func writeConclusion(w io.Writer, r *formcheck.Result) error {
	treeError := r.TreeMatrix.ErrorRate()
	oobError := r.OOB.ErrorRate()
	comparison := "The forest's out-of-bag error is below the tree's in-sample error, and the out-of-bag estimate is the honest one of the two, so the forest's predictions are the ones reported above."
	if oobError >= treeError {
		comparison = "The single tree matches the forest here, but the forest's out-of-bag error is the honest estimate of the two, so its predictions are the ones reported above."
	}
	_, err := fmt.Fprintf(w, `## Conclusion

The cross-validated tree misclassifies %.1f%% of the training
samples it was fit on; the forest's out-of-bag estimate puts its
generalization error at %.1f%%. %s
`, 100*treeError, 100*oobError, comparison)
	return err
}

func quotedClasses(classes []string) string {
	quoted := make([]string, len(classes))
	for i, c := range classes {
		quoted[i] = fmt.Sprintf("`%s`", c)
	}
	return strings.Join(quoted, ", ")
}
