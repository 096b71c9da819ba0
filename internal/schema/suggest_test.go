package schema

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/snowq-dev/snowq/internal/docval"
)

func TestSuggestions(t *testing.T) {
	statuses := []string{"active", "active", "active", "inactive", "inactive"}
	docs := make([]docval.Value, len(statuses))
	for i, status := range statuses {
		docs[i] = docval.Object{
			"age":    docval.Int(int64((i + 1) * 10)),
			"status": docval.String(status),
		}
	}

	s := NewInferencer().Infer(docs)
	got := Suggestions(s)

	assert.Equal(t, []string{
		"age[IS NOT NULL]",
		"status[IS NOT NULL]",
		"status[IN:active|inactive]",
		"age[>:30]",
		"age[IS NOT NULL], status[IS NOT NULL]",
	}, got)
}

func TestSuggestions_SingleValueBecomesEquality(t *testing.T) {
	s := NewInferencer().Infer([]docval.Value{
		docval.Object{"env": docval.String("prod")},
	})

	got := Suggestions(s)
	assert.Contains(t, got, "env[=:prod]")
}

func TestSuggestions_CappedAtMax(t *testing.T) {
	doc := docval.Object{}
	for i := 0; i < 20; i++ {
		doc[fmt.Sprintf("field_%02d", i)] = docval.String("v")
	}

	got := Suggestions(NewInferencer().Infer([]docval.Value{doc}))
	assert.LessOrEqual(t, len(got), maxSuggestions)
}

func TestSuggestions_EmptySchema(t *testing.T) {
	s := NewInferencer().Infer([]docval.Value{docval.Object{}})
	assert.Empty(t, Suggestions(s))
}
