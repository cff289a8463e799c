package tree

import (
	"github.com/formcheck/formcheck/feature"
)

/*
Node is a node of the tree
*/
type Node struct {
	// The prediction for samples that satisfied node constraints
	// from the root of the tree up to this node. It is nil for
	// nodes grown from branches no training sample reached.
	Prediction *Prediction
	// The constraint this node imposes on samples: the criterion
	// that, satisfied by a sample being classified, selects this
	// node to continue (unless it is an undefined-feature
	// constraint, then it is the last criterion to test).
	FeatureCriterion feature.Criterion
	// The feature on which nodes directly under this node impose
	// their constraints: the feature to ask about next on the
	// sample being classified. It is nil on leaves.
	SubtreeFeature feature.Feature
	// The nodes directly under this node.
	Subtrees []*Node
}

/*
Leaf returns whether the node splits no further.
*/
func (n *Node) Leaf() bool {
	return n.SubtreeFeature == nil
}
