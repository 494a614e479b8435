package metadata

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapRecord map[string]any

func newMapRecord() mapRecord { return mapRecord{} }

func (m mapRecord) Get(field string) any { return m[field] }

func (m mapRecord) Set(field string, value any) error {
	m[field] = value
	return nil
}

func (m mapRecord) Values() map[string]any { return m }

func prepared(t *testing.T, s Setter) *Setter {
	t.Helper()
	require.NoError(t, s.prepare())
	return &s
}

func TestSetter_InvokeAssignsField(t *testing.T) {
	s := prepared(t, Setter{Name: "setTitle", Params: []Param{{Name: "title", Type: "string"}}})
	rec := newMapRecord()

	require.NoError(t, s.Invoke(rec, []any{"Hello"}))
	require.Equal(t, "Hello", rec["title"])
}

func TestSetter_InvokeRejectsWrongType(t *testing.T) {
	s := prepared(t, Setter{Name: "setViews", Params: []Param{{Name: "views", Type: "int"}}})

	err := s.Invoke(newMapRecord(), []any{"12"})
	require.EqualError(t, err, `argument "views" of setViews must be of type int, string given`)
}

func TestSetter_InvokeWidensIntToFloat(t *testing.T) {
	s := prepared(t, Setter{Name: "setRating", Params: []Param{{Name: "rating", Type: "float"}}})
	rec := newMapRecord()

	require.NoError(t, s.Invoke(rec, []any{int64(4)}))
	require.Equal(t, float64(4), rec["rating"])
}

func TestSetter_InvokeAnyParam(t *testing.T) {
	s := prepared(t, Setter{Name: "setPayload", Params: []Param{{Name: "payload", Type: "any"}}})
	rec := newMapRecord()

	require.NoError(t, s.Invoke(rec, []any{true}))
	require.Equal(t, true, rec["payload"])
}

func TestSetter_Assertion(t *testing.T) {
	s := prepared(t, Setter{
		Name:    "setTitle",
		Params:  []Param{{Name: "title", Type: "string"}},
		Assert:  "len(value) <= 5",
		Message: "Title is too long",
	})
	rec := newMapRecord()

	require.NoError(t, s.Invoke(rec, []any{"short"}))
	require.EqualError(t, s.Invoke(rec, []any{"much too long"}), "Title is too long")
	require.Equal(t, "short", rec["title"])
}

func TestSetter_AssertionSeesRecord(t *testing.T) {
	s := prepared(t, Setter{
		Name:   "setPrice",
		Params: []Param{{Name: "price", Type: "float"}},
		Assert: "value >= record.cost",
	})
	rec := mapRecord{"cost": 10.0}

	require.NoError(t, s.Invoke(rec, []any{12.5}))
	err := s.Invoke(rec, []any{2.0})
	require.ErrorContains(t, err, "value rejected by setPrice")
}

func TestSetter_PrepareRejectsBadAssertion(t *testing.T) {
	s := Setter{Name: "setTitle", Params: []Param{{Name: "t", Type: "string"}}, Assert: "value +"}
	require.Error(t, s.prepare())
}

func TestSetter_DefaultField(t *testing.T) {
	cases := map[string]string{
		"setTitle":       "title",
		"setPublishedAt": "published_at",
		"setURL":         "url",
		"setHTMLTitle":   "html_title",
		"setSeoURLSlug":  "seo_url_slug",
		"setLine2Text":   "line2_text",
	}
	for name, want := range cases {
		s := prepared(t, Setter{Name: name})
		require.Equal(t, want, s.Field, name)
	}
}

func TestSetter_BoundFuncTakesPrecedence(t *testing.T) {
	var got []any
	s := prepared(t, Setter{
		Name:   "setRange",
		Params: []Param{{Name: "from", Type: "int"}, {Name: "to", Type: "int"}},
		Func: func(rec Mutable, args []any) error {
			got = args
			return rec.Set("range", fmt.Sprint(args...))
		},
	})
	rec := newMapRecord()

	require.NoError(t, s.Invoke(rec, []any{1, 2}))
	require.Equal(t, []any{1, 2}, got)
}

func TestMarker_String(t *testing.T) {
	require.Equal(t, "attribute", MarkerAttribute.String())
	require.Equal(t, "legacy-doc", MarkerLegacyDoc.String())
	require.Equal(t, "none", MarkerNone.String())
}
