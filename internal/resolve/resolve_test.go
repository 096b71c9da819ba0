package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowq-dev/snowq/internal/docval"
	"github.com/snowq-dev/snowq/internal/schema"
)

func inferSchema(t *testing.T, raw string) *schema.PathSchema {
	t.Helper()
	doc, err := docval.Decode([]byte(raw))
	require.NoError(t, err)
	return schema.NewInferencer().Infer([]docval.Value{doc})
}

func TestField_ExactPathMatch(t *testing.T) {
	s := inferSchema(t, `{"name":"A","profile":{"name":"B"}}`)

	fields := Field("profile.name", s)
	require.Len(t, fields, 1)
	assert.Equal(t, "profile.name", fields[0].FullPath)
	assert.Equal(t, "profile_name", fields[0].Alias)
	assert.False(t, fields[0].MultiOccurrence)
	assert.Empty(t, fields[0].Note)
}

// A simple name occurring at several levels resolves to every occurrence,
// each with its own alias. Narrowing to "the first match" is exactly the
// behavior this package exists to avoid.
func TestField_MultiLevelName(t *testing.T) {
	s := inferSchema(t, `{"name":"A","profile":{"name":"B"}}`)

	fields := Field("name", s)
	require.Len(t, fields, 2)

	assert.Equal(t, "name", fields[0].FullPath)
	assert.Equal(t, "profile.name", fields[1].FullPath)
	assert.True(t, fields[0].MultiOccurrence)
	assert.True(t, fields[1].MultiOccurrence)

	assert.Equal(t, "name", fields[0].Alias)
	assert.Equal(t, "name_under_profile", fields[1].Alias)
	assert.NotEqual(t, fields[0].Alias, fields[1].Alias)
}

func TestField_ArrayOccurrenceAlias(t *testing.T) {
	s := inferSchema(t, `{"name":"acme","contacts":[{"name":"Ada"}]}`)

	fields := Field("name", s)
	require.Len(t, fields, 2)

	assert.Equal(t, "contacts.name", fields[0].FullPath)
	assert.Equal(t, "name_in_each_contact", fields[0].Alias)
	assert.Equal(t, "name", fields[1].FullPath)
	assert.Equal(t, "name", fields[1].Alias)
}

func TestField_AliasCollisionGetsSuffix(t *testing.T) {
	s := inferSchema(t, `{"a":{"name":"x"},"b":{"name":"y"},"name":"z"}`)

	fields := Field("name", s)
	require.Len(t, fields, 3)

	seen := make(map[string]bool)
	for _, f := range fields {
		assert.False(t, seen[f.Alias], "alias %q assigned twice", f.Alias)
		seen[f.Alias] = true
	}
	assert.Equal(t, "name_under_a", fields[0].Alias)
	assert.Equal(t, "name_under_b", fields[1].Alias)
	assert.Equal(t, "name", fields[2].Alias)
}

func TestField_SingleSegmentMatch(t *testing.T) {
	s := inferSchema(t, `{"user":{"email":"a@b.c"}}`)

	fields := Field("email", s)
	require.Len(t, fields, 1)
	assert.Equal(t, "user.email", fields[0].FullPath)
	assert.Equal(t, "email", fields[0].Alias)
	assert.False(t, fields[0].MultiOccurrence)
	assert.Contains(t, fields[0].Note, `resolved to "user.email"`)
}

func TestField_SubstringFallback(t *testing.T) {
	s := inferSchema(t, `{"customer_email_address":"a@b.c"}`)

	fields := Field("email", s)
	require.Len(t, fields, 1)
	assert.Equal(t, "customer_email_address", fields[0].FullPath)
	assert.Contains(t, fields[0].Note, "substring")
}

func TestField_NotFound(t *testing.T) {
	s := inferSchema(t, `{"name":"A"}`)
	assert.Empty(t, Field("missing", s))
	assert.Empty(t, Field("", s))
	assert.Empty(t, Field("   ", s))
}

func TestField_ObjectNodeFallsThroughToChildren(t *testing.T) {
	// "profile" is an object node and never selectable itself; the substring
	// fallback lands on its queryable child instead.
	s := inferSchema(t, `{"profile":{"name":"B"}}`)

	fields := Field("profile", s)
	require.Len(t, fields, 1)
	assert.Equal(t, "profile.name", fields[0].FullPath)
	assert.Contains(t, fields[0].Note, "substring")
}

func TestSingularize(t *testing.T) {
	testCases := []struct{ in, want string }{
		{"contacts", "contact"},
		{"categories", "category"},
		{"addresses", "address"},
		{"items", "item"},
		{"status", "statu"}, // naive, but deterministic
		{"class", "class"},
		{"s", "s"},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, singularize(tc.in), tc.in)
	}
}
