package engine

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snowq-dev/snowq/internal/docval"
	"github.com/snowq-dev/snowq/internal/schema"
)

func sampleSchema(t *testing.T, raws ...string) *schema.PathSchema {
	t.Helper()
	docs := make([]docval.Value, len(raws))
	for i, raw := range raws {
		doc, err := docval.Decode([]byte(raw))
		require.NoError(t, err)
		docs[i] = doc
	}
	return schema.NewInferencer().Infer(docs)
}

const orderDoc = `{
	"id": 1,
	"age": 30,
	"status": "active",
	"profile": {"name": "Ada"},
	"orders": [{"total": 10.5, "items": [{"sku": "a1", "qty": 2}]}]
}`

func TestGenerate_NestedArrays(t *testing.T) {
	res := Generate(Request{
		Table:      "events",
		Column:     "data",
		Conditions: "age[>:18],sku[=:a1:OR]",
		Schema:     sampleSchema(t, orderDoc),
	})

	require.Nil(t, res.Failure)
	assert.Equal(t, StateDone, res.State)
	assert.NotEmpty(t, res.TraceID)

	// The one warning notes how the bare "sku" token resolved.
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], `resolved to "orders.items.sku"`)

	require.NotNil(t, res.Plan)
	require.Len(t, res.Plan.FlattenChain, 2)
	assert.Equal(t, "orders", res.Plan.FlattenChain[0].ArrayPath)
	assert.Equal(t, "orders.items", res.Plan.FlattenChain[1].ArrayPath)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "nested_arrays", []byte(res.SQL))
}

func TestGenerate_MultiOccurrenceFieldExpands(t *testing.T) {
	res := Generate(Request{
		Table:      "accounts",
		Column:     "doc",
		Conditions: "name[=:acme]",
		Schema:     sampleSchema(t, `{"name":"acme","profile":{"name":"Ada"}}`),
	})

	require.Nil(t, res.Failure)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "expanded to 2 columns")

	require.Len(t, res.Plan.Projections, 2)
	assert.Equal(t, "name", res.Plan.Projections[0].Alias)
	assert.Equal(t, "name_under_profile", res.Plan.Projections[1].Alias)

	// Every occurrence is filtered, not just projected.
	require.Len(t, res.Plan.Predicates, 2)
	assert.Contains(t, res.SQL, "doc:name::VARCHAR = 'acme'")
	assert.Contains(t, res.SQL, "doc:profile.name::VARCHAR = 'acme'")
}

func TestGenerate_RootArrayDocuments(t *testing.T) {
	res := Generate(Request{
		Table:      "events",
		Column:     "data",
		Conditions: "id[>:0]",
		Schema:     sampleSchema(t, `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`),
	})

	require.Nil(t, res.Failure)
	require.Len(t, res.Plan.FlattenChain, 1)
	assert.Equal(t, "", res.Plan.FlattenChain[0].ArrayPath)
	assert.Contains(t, res.SQL, "LATERAL FLATTEN(input => data) f1")
	assert.Contains(t, res.SQL, "f1.value:id::NUMBER > 0")
}

func TestGenerate_ExistsProjectsWithoutFiltering(t *testing.T) {
	res := Generate(Request{
		Table:      "events",
		Column:     "data",
		Conditions: "status,age[>:18]",
		Schema:     sampleSchema(t, orderDoc),
	})

	require.Nil(t, res.Failure)
	require.Len(t, res.Plan.Projections, 2)
	require.Len(t, res.Plan.Predicates, 1)
	assert.NotContains(t, res.SQL, "EXISTS")
}

func TestGenerate_UnknownFieldIsWarningNotFailure(t *testing.T) {
	res := Generate(Request{
		Table:      "events",
		Column:     "data",
		Conditions: "nonexistent[=:x],age[>:18]",
		Schema:     sampleSchema(t, orderDoc),
	})

	require.Nil(t, res.Failure)
	assert.Equal(t, StateDone, res.State)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "FIELD_NOT_FOUND")
	assert.Contains(t, res.Warnings[0], "nonexistent")
	require.Len(t, res.Plan.Projections, 1)
}

func TestGenerate_IncompatibleOperatorKeepsProjection(t *testing.T) {
	res := Generate(Request{
		Table:      "events",
		Column:     "data",
		Conditions: "age[LIKE:%1%]",
		Schema:     sampleSchema(t, orderDoc),
	})

	require.Nil(t, res.Failure)
	assert.Equal(t, StateDone, res.State)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "OPERATOR_INCOMPATIBLE")

	require.Len(t, res.Plan.Projections, 1)
	assert.Empty(t, res.Plan.Predicates)
	assert.NotContains(t, res.SQL, "WHERE")
}

func TestGenerate_Failures(t *testing.T) {
	valid := sampleSchema(t, orderDoc)

	testCases := []struct {
		name string
		req  Request
		code ErrorCode
	}{
		{
			name: "missing table",
			req:  Request{Column: "data", Conditions: "age[>:18]", Schema: valid},
			code: ErrCodeNoInput,
		},
		{
			name: "missing schema",
			req:  Request{Table: "events", Column: "data", Conditions: "age[>:18]"},
			code: ErrCodeNoInput,
		},
		{
			name: "empty conditions",
			req:  Request{Table: "events", Column: "data", Conditions: "", Schema: valid},
			code: ErrCodeNoInput,
		},
		{
			name: "unbalanced brackets",
			req:  Request{Table: "events", Column: "data", Conditions: "age[>:18", Schema: valid},
			code: ErrCodeParse,
		},
		{
			name: "nothing resolves",
			req:  Request{Table: "events", Column: "data", Conditions: "ghost[=:x]", Schema: valid},
			code: ErrCodeNoQueryableFields,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res := Generate(tc.req)
			assert.Equal(t, StateFailed, res.State)
			require.NotNil(t, res.Failure)
			assert.Equal(t, tc.code, res.Failure.Code)

			// Failures surface as diagnostic comment text, never as SQL.
			assert.True(t, strings.HasPrefix(res.SQL, "-- Error:"), "got %q", res.SQL)
			assert.NotEmpty(t, res.TraceID)
		})
	}
}

func TestGenerate_TraceIDsAreUnique(t *testing.T) {
	s := sampleSchema(t, orderDoc)
	req := Request{Table: "events", Column: "data", Conditions: "age[>:18]", Schema: s}

	first := Generate(req)
	second := Generate(req)
	assert.NotEqual(t, first.TraceID, second.TraceID)
}

func TestGenerate_SanitizedInputs(t *testing.T) {
	res := Generate(Request{
		Table:      "events; DROP TABLE users",
		Column:     "data",
		Conditions: "status[=:act've]",
		Schema:     sampleSchema(t, orderDoc),
	})

	require.Nil(t, res.Failure)
	assert.Contains(t, res.SQL, "FROM events DROP TABLE users")
	assert.Contains(t, res.SQL, "'act''ve'")
	assert.NotContains(t, res.SQL[:len(res.SQL)-1], ";")
}

func TestGenerateError_FieldScoped(t *testing.T) {
	assert.True(t, NewFieldNotFoundError("x").FieldScoped())
	assert.False(t, NewNoInputError("x").FieldScoped())
	assert.False(t, NewNoQueryableFieldsError().FieldScoped())
	assert.True(t, IsFieldNotFound(NewFieldNotFoundError("x")))
	assert.False(t, IsFieldNotFound(NewNoInputError("x")))
}
