package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSchema = Schema{
	"id":         {Column: "product_id", Kind: KindString},
	"name":       {Column: "name", Kind: KindString},
	"categoryId": {Column: "category_id", Kind: KindString},
	"hidden":     {Column: "hidden", Kind: KindBool},
}

func TestParseFilter_Empty(t *testing.T) {
	f, err := ParseFilter("")
	require.NoError(t, err)
	assert.True(t, f.Where.IsEmpty())
	assert.Zero(t, f.Limit)
	assert.Zero(t, f.Skip)
}

func TestParseFilter_Full(t *testing.T) {
	f, err := ParseFilter(`{"where":{"name":"Mug","hidden":{"neq":true}},"order":["name DESC","id"],"limit":5,"skip":10,"fields":{"name":true}}`)
	require.NoError(t, err)

	assert.Equal(t, []Predicate{
		{Field: "hidden", Op: OpNeq, Value: true},
		{Field: "name", Op: OpEq, Value: "Mug"},
	}, f.Where.Predicates)
	assert.Equal(t, []Order{{Field: "name", Desc: true}, {Field: "id"}}, f.Order)
	assert.Equal(t, int64(5), f.Limit)
	assert.Equal(t, int64(10), f.Skip)
}

func TestParseFilter_OffsetAlias(t *testing.T) {
	f, err := ParseFilter(`{"offset":3,"order":"name"}`)
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.Skip)
	assert.Equal(t, []Order{{Field: "name"}}, f.Order)
}

func TestParseFilter_Errors(t *testing.T) {
	cases := []string{
		`not json`,
		`{"where":[]}`,
		`{"where":{"name":{"regexp":"x"}}}`,
		`{"where":{"name":{}}}`,
		`{"where":{"or":{"name":"x"}}}`,
		`{"order":"name SIDEWAYS"}`,
		`{"order":7}`,
		`{"limit":-1}`,
		`{"limit":1.5}`,
	}
	for _, raw := range cases {
		_, err := ParseFilter(raw)
		assert.ErrorIs(t, err, ErrInvalidFilter, raw)
	}
}

func TestParseWhere_NestedGroups(t *testing.T) {
	w, err := ParseWhere(`{"and":[{"hidden":false}],"or":[{"name":"a"},{"name":{"like":"b%"}}]}`)
	require.NoError(t, err)

	require.Len(t, w.And, 1)
	require.Len(t, w.Or, 2)
	assert.Equal(t, Predicate{Field: "name", Op: OpLike, Value: "b%"}, w.Or[1].Predicates[0])
}

func TestWhere_With(t *testing.T) {
	base := Where{Predicates: []Predicate{{Field: "name", Op: OpEq, Value: "a"}}}
	extended := base.With(Predicate{Field: "hidden", Op: OpEq, Value: false})

	assert.Len(t, base.Predicates, 1)
	assert.Len(t, extended.Predicates, 2)
}

func TestSchema_NormalizeCoercesValues(t *testing.T) {
	w, err := ParseWhere(`{"hidden":"false","id":{"inq":["a","b"]}}`)
	require.NoError(t, err)

	nw, err := testSchema.Normalize(w)
	require.NoError(t, err)
	assert.Equal(t, false, nw.Predicates[0].Value)
	assert.Equal(t, []string{"a", "b"}, nw.Predicates[1].Value)
}

func TestSchema_NormalizeRejects(t *testing.T) {
	cases := []string{
		`{"color":"red"}`,
		`{"hidden":"maybe"}`,
		`{"name":5}`,
		`{"hidden":{"like":"t%"}}`,
		`{"name":{"inq":"a"}}`,
		`{"or":[{"nope":1}]}`,
	}
	for _, raw := range cases {
		w, err := ParseWhere(raw)
		require.NoError(t, err, raw)
		_, err = testSchema.Normalize(w)
		assert.ErrorIs(t, err, ErrInvalidFilter, raw)
	}
}

func TestSchema_Apply(t *testing.T) {
	f, err := ParseFilter(`{"where":{"hidden":false,"or":[{"name":"a"},{"categoryId":null}]},"order":"name DESC","limit":2}`)
	require.NoError(t, err)

	b, err := testSchema.Apply(From("products").Select("product_id"), f)
	require.NoError(t, err)
	stmt := b.Build()

	assert.Equal(t,
		"SELECT product_id FROM products WHERE (hidden = @p0 AND (name = @p1 OR category_id IS NULL)) ORDER BY name DESC LIMIT @limit",
		stmt.SQL)
	assert.Equal(t, map[string]interface{}{"p0": false, "p1": "a", "limit": int64(2)}, stmt.Params)
}

func TestSchema_ApplyRejectsUnknownOrder(t *testing.T) {
	_, err := testSchema.Apply(From("products"), &Filter{Order: []Order{{Field: "price"}}})
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestWhere_Match(t *testing.T) {
	doc := map[string]interface{}{"id": "p1", "name": "Blue Mug", "hidden": false}
	get := func(field string) interface{} { return doc[field] }

	tests := []struct {
		where string
		want  bool
	}{
		{`{}`, true},
		{`{"name":"Blue Mug"}`, true},
		{`{"name":"Red Mug"}`, false},
		{`{"hidden":false}`, true},
		{`{"hidden":{"neq":false}}`, false},
		{`{"name":{"like":"Blue%"}}`, true},
		{`{"name":{"like":"blue%"}}`, false},
		{`{"name":{"like":"Blue_Mug"}}`, true},
		{`{"name":{"gt":"A","lt":"C"}}`, true},
		{`{"id":{"inq":["p1","p2"]}}`, true},
		{`{"id":{"nin":["p1"]}}`, false},
		{`{"categoryId":null}`, true},
		{`{"categoryId":{"neq":null}}`, false},
		{`{"categoryId":{"neq":"x"}}`, false},
		{`{"or":[{"name":"nope"},{"hidden":false}]}`, true},
		{`{"or":[{"name":"nope"},{"hidden":true}]}`, false},
		{`{"and":[{"hidden":false},{"name":"nope"}]}`, false},
	}
	for _, tt := range tests {
		w, err := ParseWhere(tt.where)
		require.NoError(t, err, tt.where)
		nw, err := testSchema.Normalize(w)
		require.NoError(t, err, tt.where)
		assert.Equal(t, tt.want, nw.Match(get), tt.where)
	}
}

func TestCompare(t *testing.T) {
	c, ok := Compare("a", "b")
	assert.True(t, ok)
	assert.Equal(t, -1, c)

	c, ok = Compare(true, false)
	assert.True(t, ok)
	assert.Equal(t, 1, c)

	c, ok = Compare(int64(3), 3.0)
	assert.True(t, ok)
	assert.Equal(t, 0, c)

	_, ok = Compare("a", true)
	assert.False(t, ok)
}

func TestLikeRegexp_Escape(t *testing.T) {
	assert.True(t, likeRegexp(`100\%`).MatchString("100%"))
	assert.False(t, likeRegexp(`100\%`).MatchString("1000"))
	assert.True(t, likeRegexp(`a.b`).MatchString("a.b"))
	assert.False(t, likeRegexp(`a.b`).MatchString("axb"))
}
