// Package resolve maps user-supplied field tokens (simple names or dotted
// paths) onto inferred schema paths.
//
// Ambiguity is surfaced as breadth, not silently narrowed: a simple name
// occurring under several parents resolves to every occurrence, each with
// its own generated alias. Picking "the first" match produced wrong results
// often enough that the policy is deliberate.
package resolve

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/snowq-dev/snowq/internal/schema"
)

// ResolvedField is one schema path bound to a user field token.
type ResolvedField struct {
	Token           string
	FullPath        string
	Info            *schema.PathInfo
	Alias           string
	MultiOccurrence bool
	Note            string // human-readable resolution note, "" for exact matches
}

// Field resolves a token against the schema.
//
// Policy, in order: exact queryable path match; all queryable paths whose
// final segment equals the token; case-insensitive substring match as a last
// resort. An empty result means "field not found" - the caller reports it
// and moves on, the batch never aborts.
func Field(token string, s *schema.PathSchema) []ResolvedField {
	token = strings.TrimSpace(norm.NFC.String(token))
	if token == "" {
		return nil
	}

	// A dotted token names one path unambiguously. A bare token is never
	// short-circuited on an exact match: a top-level "name" must not shadow
	// deeper occurrences of the same field.
	if info := s.Lookup(token); info != nil && info.Queryable && strings.Contains(token, ".") {
		return []ResolvedField{{
			Token:    token,
			FullPath: token,
			Info:     info,
			Alias:    strings.ReplaceAll(token, ".", "_"),
		}}
	}

	candidates := matchFinalSegment(token, s)
	if len(candidates) == 0 {
		candidates = matchSubstring(token, s)
		for i := range candidates {
			candidates[i].Note = fmt.Sprintf("matched %q by substring", candidates[i].FullPath)
		}
	}

	switch len(candidates) {
	case 0:
		return nil
	case 1:
		f := &candidates[0]
		f.Alias = leafSegment(f.FullPath)
		if f.Note == "" && f.FullPath != token {
			f.Note = fmt.Sprintf("resolved to %q", f.FullPath)
		}
		return candidates
	}

	assignAliases(candidates)
	for i := range candidates {
		candidates[i].MultiOccurrence = true
	}
	return candidates
}

// matchFinalSegment collects every queryable path whose last dotted segment
// equals the token, in deterministic path order.
func matchFinalSegment(token string, s *schema.PathSchema) []ResolvedField {
	var out []ResolvedField
	for _, path := range s.SortedPaths() {
		info := s.Paths[path]
		if !info.Queryable || leafSegment(path) != token {
			continue
		}
		out = append(out, ResolvedField{Token: token, FullPath: path, Info: info})
	}
	return out
}

// matchSubstring is the last-resort fallback: queryable paths containing
// the token case-insensitively.
func matchSubstring(token string, s *schema.PathSchema) []ResolvedField {
	lower := strings.ToLower(token)
	var out []ResolvedField
	for _, path := range s.SortedPaths() {
		info := s.Paths[path]
		if !info.Queryable || !strings.Contains(strings.ToLower(path), lower) {
			continue
		}
		out = append(out, ResolvedField{Token: token, FullPath: path, Info: info})
	}
	return out
}

// assignAliases generates a deterministic, descriptive alias per occurrence
// of a multi-level field: the nearest enclosing array (singularized) wins,
// then the parent object, then the bare leaf. Collisions get a numeric
// suffix in path order.
func assignAliases(fields []ResolvedField) {
	sort.SliceStable(fields, func(i, j int) bool { return fields[i].FullPath < fields[j].FullPath })

	used := make(map[string]int)
	for i := range fields {
		base := describeOccurrence(&fields[i])
		used[base]++
		if n := used[base]; n > 1 {
			fields[i].Alias = fmt.Sprintf("%s_%d", base, n)
		} else {
			fields[i].Alias = base
		}
	}
}

func describeOccurrence(f *ResolvedField) string {
	leaf := leafSegment(f.FullPath)

	if h := f.Info.ArrayHierarchy; len(h) > 0 {
		arrayName := leafSegment(h[len(h)-1])
		return fmt.Sprintf("%s_in_each_%s", leaf, singularize(arrayName))
	}

	if parent := parentSegment(f.FullPath); parent != "" {
		return fmt.Sprintf("%s_under_%s", leaf, parent)
	}
	return leaf
}

func leafSegment(path string) string {
	if idx := strings.LastIndexByte(path, '.'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

func parentSegment(path string) string {
	idx := strings.LastIndexByte(path, '.')
	if idx < 0 {
		return ""
	}
	return leafSegment(path[:idx])
}

// singularize applies just enough English to make array-derived aliases
// read naturally: contacts -> contact, categories -> category.
func singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies") && len(name) > 3:
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "ses") && len(name) > 3:
		return name[:len(name)-2]
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss") && len(name) > 1:
		return name[:len(name)-1]
	default:
		return name
	}
}
