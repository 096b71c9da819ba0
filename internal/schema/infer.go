package schema

import (
	"sort"
	"strings"

	"github.com/snowq-dev/snowq/internal/docval"
)

// Default traversal bounds. MaxDepth guards against maliciously deep or
// cyclic-looking structures; ElementSamples bounds per-array fan-out.
const (
	DefaultMaxDepth       = 10
	DefaultElementSamples = 3
	DefaultSampleLiterals = 5
)

// PathInfo describes one distinct dotted path within a schema.
//
// FullPath is the dot-joined key sequence from the document root. Array
// indices are never embedded; arrays contribute an ArrayHierarchy entry for
// their descendants instead. Multiple PathInfo entries sharing a final
// segment (user.name, user.address.name) are normal - disambiguation happens
// in the resolver, not here.
type PathInfo struct {
	FullPath       string   `json:"full_path"`
	Kind           Kind     `json:"kind"`
	ElemKind       Kind     `json:"elem_kind,omitempty"`
	ArrayHierarchy []string `json:"array_hierarchy,omitempty"`
	Depth          int      `json:"depth"`
	Queryable      bool     `json:"is_queryable"`
	FoundIn        int      `json:"found_in"`
	Samples        []string `json:"sample_values,omitempty"`
}

// PathSchema is the merged schema of one or more sample documents.
// It is built fresh per Infer call; the inferencer holds no state across
// calls and the same inputs always produce the same schema.
type PathSchema struct {
	Paths        map[string]*PathInfo `json:"paths"`
	TotalSamples int                  `json:"total_samples"`
	RootArray    bool                 `json:"root_array,omitempty"`
}

// Frequency returns the fraction of samples the path was found in.
func (s *PathSchema) Frequency(path string) float64 {
	info, ok := s.Paths[path]
	if !ok || s.TotalSamples == 0 {
		return 0
	}
	return float64(info.FoundIn) / float64(s.TotalSamples)
}

// SortedPaths returns all paths in ascending order.
func (s *PathSchema) SortedPaths() []string {
	paths := make([]string, 0, len(s.Paths))
	for p := range s.Paths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Lookup returns the PathInfo for an exact path, or nil.
func (s *PathSchema) Lookup(path string) *PathInfo {
	return s.Paths[path]
}

// Inferencer drives the walker across sample documents and unifies the
// observations into a single PathSchema. The zero value is not usable;
// call NewInferencer for one with default bounds.
type Inferencer struct {
	MaxDepth       int
	ElementSamples int
	SampleLiterals int
}

// NewInferencer returns an Inferencer with the default traversal bounds.
func NewInferencer() *Inferencer {
	return &Inferencer{
		MaxDepth:       DefaultMaxDepth,
		ElementSamples: DefaultElementSamples,
		SampleLiterals: DefaultSampleLiterals,
	}
}

// Infer merges observations from every document into one PathSchema.
//
// The merge is commutative and associative (see mergeKind), so the final
// kinds and hierarchies do not depend on document order. A document that is
// not a structured value contributes zero observations rather than aborting
// the batch.
func (inf *Inferencer) Infer(docs []docval.Value) *PathSchema {
	s := &PathSchema{
		Paths:        make(map[string]*PathInfo),
		TotalSamples: len(docs),
	}

	for _, doc := range docs {
		w := &walker{maxDepth: inf.MaxDepth, elementSamples: inf.ElementSamples}
		w.document(doc)
		if w.rootArray {
			s.RootArray = true
		}

		seen := make(map[string]bool, len(w.obs))
		for _, ob := range w.obs {
			inf.mergeObservation(s, ob)
			if !seen[ob.path] {
				seen[ob.path] = true
				s.Paths[ob.path].FoundIn++
			}
		}
	}

	for _, info := range s.Paths {
		info.Queryable = queryable(info)
	}
	return s
}

// mergeObservation folds one observation into the schema, applying the
// type-conflict lattice and keeping the hierarchy choice order-independent.
func (inf *Inferencer) mergeObservation(s *PathSchema, ob observation) {
	info, ok := s.Paths[ob.path]
	if !ok {
		info = &PathInfo{
			FullPath:       ob.path,
			Kind:           ob.kind,
			ElemKind:       ob.elemKind,
			ArrayHierarchy: ob.arrays,
			Depth:          pathDepth(ob.path),
		}
		s.Paths[ob.path] = info
	} else {
		info.Kind = mergeKind(info.Kind, ob.kind)
		info.ElemKind = mergeKind(info.ElemKind, ob.elemKind)
		info.ArrayHierarchy = mergeHierarchy(info.ArrayHierarchy, ob.arrays)
	}

	if ob.literal != "" && len(info.Samples) < inf.SampleLiterals && !contains(info.Samples, ob.literal) {
		info.Samples = append(info.Samples, ob.literal)
	}
}

// mergeHierarchy picks between two observed array hierarchies for the same
// path. Disagreement is rare (it needs the same path reached through
// different array nestings across samples); the shallower hierarchy wins,
// with a lexicographic tiebreak, so the choice is order-independent.
func mergeHierarchy(a, b []string) []string {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return a
		}
		return b
	}
	if strings.Join(b, ".") < strings.Join(a, ".") {
		return b
	}
	return a
}

// queryable reports whether a path is directly selectable: scalar leaves
// (variant included) and arrays of known scalar kind. Object nodes and
// arrays of objects are structural.
func queryable(info *PathInfo) bool {
	if info.Kind.IsScalar() {
		return true
	}
	return info.Kind == KindArray && info.ElemKind != KindUnknown && info.ElemKind.IsScalar()
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
