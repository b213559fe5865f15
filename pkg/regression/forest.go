package regression

import "fmt"

const leaf = -1

// Tree is one regression tree in scikit-learn's parallel-array layout.
// Node i is a leaf when ChildrenLeft[i] == -1.
type Tree struct {
	ChildrenLeft  []int     `json:"children_left"`
	ChildrenRight []int     `json:"children_right"`
	Feature       []int     `json:"feature"`
	Threshold     []float64 `json:"threshold"`
	Value         []float64 `json:"value"`
}

func (t *Tree) validate(nFeatures int) error {
	n := len(t.ChildrenLeft)
	if n == 0 {
		return fmt.Errorf("empty tree")
	}
	if len(t.ChildrenRight) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("node arrays differ in length")
	}
	for i := 0; i < n; i++ {
		l, r := t.ChildrenLeft[i], t.ChildrenRight[i]
		if l == leaf {
			if r != leaf {
				return fmt.Errorf("node %d has only one child", i)
			}
			continue
		}
		// Children always come after their parent, which also rules out cycles.
		if l <= i || l >= n || r <= i || r >= n {
			return fmt.Errorf("node %d has child out of range", i)
		}
		if f := t.Feature[i]; f < 0 || f >= nFeatures {
			return fmt.Errorf("node %d splits on feature %d", i, f)
		}
	}
	return nil
}

func (t *Tree) predict(x []float64) float64 {
	node := 0
	for t.ChildrenLeft[node] != leaf {
		if x[t.Feature[node]] <= t.Threshold[node] {
			node = t.ChildrenLeft[node]
		} else {
			node = t.ChildrenRight[node]
		}
	}
	return t.Value[node]
}

// Forest averages the output of its trees.
type Forest struct {
	nFeatures int
	trees     []Tree
}

// NumFeatures implements Model.
func (f *Forest) NumFeatures() int { return f.nFeatures }

// Predict implements Model.
func (f *Forest) Predict(features []float64) (float64, error) {
	if err := checkWidth(features, f.nFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for i := range f.trees {
		sum += f.trees[i].predict(features)
	}
	return sum / float64(len(f.trees)), nil
}
