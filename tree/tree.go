/*
Package tree grows and applies classification trees over
observation tables, splitting on the feature partition of highest
information gain the way ID3-family learners do.
*/
package tree

import (
	"fmt"
	"strings"

	"github.com/formcheck/formcheck/dataset"
	"github.com/formcheck/formcheck/feature"
)

/*
Tree represents a classification tree: its root node and the label
feature it predicts.
*/
type Tree struct {
	Root  *Node
	Label feature.Feature
}

/*
New takes a root Node and a label feature and returns the tree
composed of the nodes under the root that predicts the given
feature.
*/
func New(root *Node, label feature.Feature) *Tree {
	return &Tree{root, label}
}

/*
Predict takes a sample and returns a prediction according to the
tree, or an error if the prediction could not be made.

At every split the sample descends into the subtree whose
criterion it satisfies; an undefined-feature subtree, when
present, catches samples with no defined value for the split
feature.
*/
func (t *Tree) Predict(s dataset.Sample) (*Prediction, error) {
	if t == nil || t.Root == nil {
		return nil, fmt.Errorf("nil tree cannot predict samples")
	}
	n := t.Root
	for !n.Leaf() {
		var selected *Node
		for _, subtree := range n.Subtrees {
			if subtree.FeatureCriterion == nil {
				continue
			}
			ok, err := subtree.FeatureCriterion.SatisfiedBy(s)
			if err != nil {
				return nil, err
			}
			if ok {
				selected = subtree
				if _, undefined := subtree.FeatureCriterion.(feature.UndefinedCriterion); !undefined {
					break
				}
			}
		}
		if selected == nil {
			return nil, ErrCannotPredictFromSample
		}
		n = selected
	}
	if n.Prediction == nil {
		return nil, ErrCannotPredictFromSample
	}
	return n.Prediction, nil
}

/*
Classify takes a sample and returns the most probable label value
for it according to the tree, or an error if the tree cannot
predict it.
*/
func (t *Tree) Classify(s dataset.Sample) (string, error) {
	p, err := t.Predict(s)
	if err != nil {
		return "", err
	}
	value, _ := p.PredictedValue()
	return value, nil
}

/*
NodeCount returns the number of nodes of the tree.
*/
func (t *Tree) NodeCount() int {
	return countNodes(t.Root)
}

func countNodes(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, subtree := range n.Subtrees {
		count += countNodes(subtree)
	}
	return count
}

/*
Depth returns the number of splits on the longest path from the
root to a leaf.
*/
func (t *Tree) Depth() int {
	return depth(t.Root)
}

func depth(n *Node) int {
	if n == nil || n.Leaf() {
		return 0
	}
	deepest := 0
	for _, subtree := range n.Subtrees {
		if d := depth(subtree); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

/*
FeatureSplits returns a map of feature names to the number of
nodes splitting on each: the per-feature split information of the
tree, usable to tell which measurements the model leans on.
*/
func (t *Tree) FeatureSplits() map[string]int {
	splits := make(map[string]int)
	collectSplits(t.Root, splits)
	return splits
}

func collectSplits(n *Node, splits map[string]int) {
	if n == nil || n.Leaf() {
		return
	}
	splits[n.SubtreeFeature.Name()]++
	for _, subtree := range n.Subtrees {
		collectSplits(subtree, splits)
	}
}

func (t *Tree) String() string {
	return subtreeString(t.Root)
}

func subtreeString(n *Node) string {
	var b strings.Builder
	if n.FeatureCriterion != nil {
		fmt.Fprintf(&b, "{ %v }\n", n.FeatureCriterion)
	}
	if n.Prediction != nil {
		fmt.Fprintf(&b, "{ %v }\n", n.Prediction)
	}
	if len(n.Subtrees) > 0 {
		b.WriteString("|\n")
	}
	for _, subtree := range n.Subtrees {
		for j, line := range strings.Split(subtreeString(subtree), "\n") {
			if len(line) == 0 {
				continue
			}
			if j == 0 {
				fmt.Fprintf(&b, "|__%s\n", line)
			} else {
				fmt.Fprintf(&b, "|  %s\n", line)
			}
		}
	}
	return b.String()
}
