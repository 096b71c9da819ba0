// Package plan builds the ordered array-unnesting dependency graph implied
// by a set of resolved fields and assigns stable flatten aliases.
package plan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/snowq-dev/snowq/internal/condition"
)

// FlattenNode is one array-unnesting step. Nodes are emitted in topological
// order: a node's parent always carries a lower sequence number, so the
// generated clause can reference the parent's alias.
type FlattenNode struct {
	// ArrayPath is the array's full dotted path. Empty for the synthetic
	// root-array node (the document itself is an array).
	ArrayPath string `json:"array_path"`

	// Alias is the stable short name (f1, f2, ...) in planner order.
	Alias string `json:"alias"`

	// ParentAlias references the enclosing array's node, "" for roots.
	ParentAlias string `json:"parent_alias,omitempty"`

	// RelativePath is ArrayPath with the parent's prefix stripped, or the
	// whole path relative to the document root when there is no parent.
	RelativePath string `json:"relative_path"`
}

// Projection is one SELECT entry: a rendered expression and its alias.
type Projection struct {
	Expr  string `json:"expr"`
	Alias string `json:"alias"`
}

// Predicate is one WHERE entry with its joining logic operator.
type Predicate struct {
	Expr  string          `json:"expr"`
	Logic condition.Logic `json:"logic"`
}

// QueryPlan is the complete compiled plan handed to the code generator.
type QueryPlan struct {
	Projections  []Projection  `json:"projections"`
	FlattenChain []FlattenNode `json:"flatten_chain,omitempty"`
	Predicates   []Predicate   `json:"predicates,omitempty"`
}

// BuildFlattenChain computes the minimal ordered flatten chain covering the
// given ancestor array paths. Two paths are parent/child iff one is a
// dot-prefix of the other with exactly one more segment anywhere below it;
// the chain places every parent strictly before its children.
//
// The returned map resolves array paths (the empty root path included) to
// their assigned aliases.
func BuildFlattenChain(arrayPaths []string, rootArray bool) ([]FlattenNode, map[string]string, error) {
	distinct := make(map[string]bool)
	for _, p := range arrayPaths {
		if p != "" {
			distinct[p] = true
		}
	}

	paths := make([]string, 0, len(distinct))
	for p := range distinct {
		paths = append(paths, p)
	}
	// Depth-first order: shallower arrays first, lexicographic within a
	// depth. Parents are strict prefixes, so they always sort earlier.
	sort.Slice(paths, func(i, j int) bool {
		di, dj := segmentCount(paths[i]), segmentCount(paths[j])
		if di != dj {
			return di < dj
		}
		return paths[i] < paths[j]
	})

	var chain []FlattenNode
	aliases := make(map[string]string)
	next := 1

	if rootArray {
		alias := flattenAlias(next)
		next++
		chain = append(chain, FlattenNode{ArrayPath: "", Alias: alias})
		aliases[""] = alias
	}

	for _, path := range paths {
		alias := flattenAlias(next)
		next++

		node := FlattenNode{ArrayPath: path, Alias: alias, RelativePath: path}
		if parent := nearestParent(path, chain); parent != nil {
			node.ParentAlias = parent.Alias
			if parent.ArrayPath == "" {
				node.RelativePath = path
			} else {
				node.RelativePath = path[len(parent.ArrayPath)+1:]
			}
		}

		if aliases[path] != "" {
			return nil, nil, fmt.Errorf("duplicate flatten alias for array path %q", path)
		}
		chain = append(chain, node)
		aliases[path] = alias
	}

	return chain, aliases, nil
}

// nearestParent finds the deepest already-planned node whose array path
// encloses the given one. The synthetic root node encloses everything.
func nearestParent(path string, chain []FlattenNode) *FlattenNode {
	for i := len(chain) - 1; i >= 0; i-- {
		node := &chain[i]
		if node.ArrayPath == "" {
			return node
		}
		if strings.HasPrefix(path, node.ArrayPath+".") {
			return node
		}
	}
	return nil
}

// DeepestAlias returns the alias of the deepest flatten node covering the
// given array hierarchy, plus the covered array path. Returns "" when the
// hierarchy is empty and no root-array node exists.
func DeepestAlias(hierarchy []string, aliases map[string]string, rootArray bool) (alias, arrayPath string) {
	for i := len(hierarchy) - 1; i >= 0; i-- {
		if a, ok := aliases[hierarchy[i]]; ok {
			return a, hierarchy[i]
		}
	}
	if rootArray {
		return aliases[""], ""
	}
	return "", ""
}

func flattenAlias(n int) string {
	return fmt.Sprintf("f%d", n)
}

func segmentCount(path string) int {
	return strings.Count(path, ".") + 1
}
