package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Node is one entry of a flattened decision tree.
// Leaves have Feature = -1 and carry the class id.
type Node struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Class     int     `json:"class"`
}

// Tree is a flattened decision tree rooted at Nodes[0]
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Forest is an ensemble of trees combined by majority vote
type Forest struct {
	Trees    []Tree `json:"trees"`
	Features int    `json:"n_features,omitempty"`
}

var errInvalidTree = errors.New("invalid tree structure")

// LoadForest decodes a JSON forest artifact
func LoadForest(data []byte) (*Forest, error) {
	var f Forest
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse forest: %w", err)
	}
	if err := f.check(); err != nil {
		return nil, err
	}
	return &f, nil
}

// LoadTree decodes a single JSON tree artifact as a one-tree forest
func LoadTree(data []byte) (*Forest, error) {
	var t Tree
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse tree: %w", err)
	}
	f := &Forest{Trees: []Tree{t}}
	if err := f.check(); err != nil {
		return nil, err
	}
	return f, nil
}

func (f *Forest) check() error {
	if len(f.Trees) == 0 {
		return ErrEmptyModel
	}
	for i, t := range f.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d: %w", i, ErrEmptyModel)
		}
		for j, n := range t.Nodes {
			if n.Feature < 0 {
				continue
			}
			if n.Left <= 0 || n.Left >= len(t.Nodes) || n.Right <= 0 || n.Right >= len(t.Nodes) {
				return fmt.Errorf("tree %d node %d: %w", i, j, errInvalidTree)
			}
		}
	}
	return nil
}

// Predict runs every tree and returns the most voted class.
// Ties go to the lowest class id.
func (f *Forest) Predict(ctx context.Context, features []float64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if f.Features > 0 && len(features) != f.Features {
		return 0, fmt.Errorf("forest expects %d features, got %d", f.Features, len(features))
	}

	votes := make(map[int]int)
	for i := range f.Trees {
		class, err := f.Trees[i].predict(features)
		if err != nil {
			return 0, fmt.Errorf("tree %d: %w", i, err)
		}
		votes[class]++
	}

	best, bestVotes := 0, -1
	for class, n := range votes {
		if n > bestVotes || (n == bestVotes && class < best) {
			best, bestVotes = class, n
		}
	}
	return best, nil
}

func (t *Tree) predict(features []float64) (int, error) {
	idx := 0
	// a well formed tree never visits more nodes than it has
	for steps := 0; steps <= len(t.Nodes); steps++ {
		node := t.Nodes[idx]
		if node.Feature < 0 {
			return node.Class, nil
		}
		if node.Feature >= len(features) {
			return 0, fmt.Errorf("feature index %d out of range", node.Feature)
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
		if idx <= 0 || idx >= len(t.Nodes) {
			return 0, errInvalidTree
		}
	}
	return 0, errInvalidTree
}

// Info describes the forest
func (f *Forest) Info() map[string]interface{} {
	nodes := 0
	for _, t := range f.Trees {
		nodes += len(t.Nodes)
	}
	return map[string]interface{}{
		"kind":  KindForest,
		"trees": len(f.Trees),
		"nodes": nodes,
	}
}
