package schema

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

const maxSuggestions = 8

// Suggestions proposes condition strings for an inferred schema: always-null
// checks on high-frequency fields, IN lists for low-cardinality strings, and
// threshold filters on numeric fields. Output order is deterministic.
func Suggestions(s *PathSchema) []string {
	type ranked struct {
		path string
		info *PathInfo
	}

	var fields []ranked
	for _, path := range s.SortedPaths() {
		info := s.Paths[path]
		if info.Queryable && info.Kind.IsScalar() {
			fields = append(fields, ranked{path, info})
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].info.FoundIn > fields[j].info.FoundIn
	})

	var suggestions []string
	var frequent []string

	for _, f := range fields {
		if s.Frequency(f.path) > 0.7 {
			frequent = append(frequent, f.path)
			if len(suggestions) < 3 {
				suggestions = append(suggestions, f.path+"[IS NOT NULL]")
			}
		}
	}

	categorical := 0
	for _, f := range fields {
		if categorical >= 3 || f.info.Kind != KindString {
			continue
		}
		vals := distinctShortValues(f.info.Samples)
		switch {
		case len(vals) == 1:
			suggestions = append(suggestions, fmt.Sprintf("%s[=:%s]", f.path, vals[0]))
			categorical++
		case len(vals) > 1 && len(vals) <= 3:
			suggestions = append(suggestions, fmt.Sprintf("%s[IN:%s]", f.path, strings.Join(vals, "|")))
			categorical++
		}
	}

	numeric := 0
	for _, f := range fields {
		if numeric >= 2 || (f.info.Kind != KindInteger && f.info.Kind != KindFloat) {
			continue
		}
		if avg, ok := sampleAverage(f.info.Samples); ok {
			suggestions = append(suggestions, fmt.Sprintf("%s[>:%.0f]", f.path, avg))
			numeric++
		}
	}

	if len(frequent) >= 2 {
		suggestions = append(suggestions, fmt.Sprintf("%s[IS NOT NULL], %s[IS NOT NULL]", frequent[0], frequent[1]))
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}

// distinctShortValues filters sample literals down to short distinct values
// suitable for an IN list.
func distinctShortValues(samples []string) []string {
	var out []string
	for _, v := range samples {
		if v == "" || v == "NULL" || len(v) >= 20 || contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// sampleAverage averages the numeric sample literals, if any.
func sampleAverage(samples []string) (float64, bool) {
	var sum float64
	var n int
	for _, v := range samples {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		sum += f
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
