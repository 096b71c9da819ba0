package schema

import (
	"strings"

	"github.com/snowq-dev/snowq/internal/docval"
)

// observation is one raw (path, kind, array-context) fact produced by the
// walker. Observations are merged into PathInfo entries by the inferencer.
type observation struct {
	path     string
	kind     Kind
	elemKind Kind // merged scalar element kind for arrays, KindUnknown otherwise
	arrays   []string
	literal  string
}

// walker traverses a single document and collects observations.
//
// Array indices never enter paths: every sampled element of an array is
// visited under the array's own path, and the array contributes an entry to
// the array context of its descendants instead. This is what keeps sample
// artifacts like "sample_0.id" out of the schema.
type walker struct {
	maxDepth       int
	elementSamples int

	obs       []observation
	rootArray bool
}

// document walks one document from the root.
//
// A root-level array is the zero-length-path array context: its element
// fields keep their bare paths and an empty array hierarchy, and the walker
// records the root-array fact for the planner. A document that is neither an
// object nor an array contributes zero observations.
func (w *walker) document(doc docval.Value) {
	switch val := doc.(type) {
	case docval.Object:
		w.visit(val, "", nil, 0)
	case docval.Array:
		if len(val) == 0 {
			return
		}
		w.rootArray = true
		n := min(len(val), w.elementSamples)
		for i := 0; i < n; i++ {
			if elem, ok := val[i].(docval.Object); ok {
				w.visit(elem, "", nil, 1)
			}
		}
	}
}

// visit emits one observation per object key and recurses into composite
// values. Branches deeper than maxDepth are truncated silently: a too-deep
// path is simply absent from the schema.
func (w *walker) visit(v docval.Value, path string, arrays []string, depth int) {
	if depth > w.maxDepth {
		return
	}

	obj, ok := v.(docval.Object)
	if !ok {
		if arr, isArr := v.(docval.Array); isArr {
			w.visitArray(arr, path, arrays, depth)
		}
		return
	}

	for _, key := range obj.SortedKeys() {
		child := obj[key]
		childPath := joinPath(path, key)

		ob := observation{
			path:     childPath,
			kind:     classify(child),
			elemKind: KindNull, // bottom of the merge lattice: no element info
			arrays:   snapshot(arrays),
			literal:  docval.Literal(child),
		}
		if arr, isArr := child.(docval.Array); isArr {
			ob.elemKind = scalarElemKind(arr, w.elementSamples)
		}
		w.obs = append(w.obs, ob)

		switch c := child.(type) {
		case docval.Object:
			w.visit(c, childPath, arrays, depth+1)
		case docval.Array:
			w.visitArray(c, childPath, arrays, depth+1)
		}
	}
}

// visitArray samples up to elementSamples elements of a non-empty array,
// visiting each under the array's own path with the array appended to the
// context for its descendants.
func (w *walker) visitArray(arr docval.Array, path string, arrays []string, depth int) {
	if depth > w.maxDepth || len(arr) == 0 {
		return
	}

	childArrays := arrays
	if path != "" && (len(arrays) == 0 || arrays[len(arrays)-1] != path) {
		childArrays = append(snapshot(arrays), path)
	}

	n := min(len(arr), w.elementSamples)
	for i := 0; i < n; i++ {
		switch elem := arr[i].(type) {
		case docval.Object:
			w.visit(elem, path, childArrays, depth+1)
		case docval.Array:
			w.visitArray(elem, path, childArrays, depth+1)
		}
	}
}

// scalarElemKind returns the merged kind of an array's sampled scalar
// elements. KindNull means the array is empty (no element info yet);
// KindUnknown means composite elements or scalars of conflicting kinds.
func scalarElemKind(arr docval.Array, sampleLimit int) Kind {
	if len(arr) == 0 {
		return KindNull
	}
	elem := KindNull
	n := min(len(arr), sampleLimit)
	for i := 0; i < n; i++ {
		k := classify(arr[i])
		if !k.IsScalar() {
			return KindUnknown
		}
		elem = mergeKind(elem, k)
	}
	return elem
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func snapshot(arrays []string) []string {
	if len(arrays) == 0 {
		return nil
	}
	out := make([]string, len(arrays))
	copy(out, arrays)
	return out
}

func pathDepth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".") + 1
}
