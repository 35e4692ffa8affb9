package hook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/fieldconf/internal/record"
)

func TestResultFieldOperations(t *testing.T) {
	rec := record.New(nil)
	field := &stubField{alias: "email"}

	for _, r := range []Result{
		SetDescription("contact address"),
		SetRequired(true),
		SetForcedValue("fixed"),
		SetAllowedValues("a", "b"),
		SetError("E1"),
	} {
		_, err := r.Apply(rec, field, nil)
		require.NoError(t, err, r.String())
	}

	assert.Equal(t, "contact address", field.Description())
	assert.True(t, field.Required())
	assert.Equal(t, "fixed", field.ForcedValue())
	assert.Equal(t, []any{"a", "b"}, field.Values())
	msg, ok := field.Error()
	assert.True(t, ok)
	assert.Equal(t, "E1", msg)
}

func TestResultDefaults(t *testing.T) {
	rec := record.New(nil)
	field := &stubField{alias: "email", forced: "x", values: []any{"a"}}

	for _, op := range []string{"description", "error", "forcedvalue", "required", "values"} {
		r, err := ParseResult(":field", op, nil)
		require.NoError(t, err)
		_, err = r.Apply(rec, field, nil)
		require.NoError(t, err)
	}

	assert.Equal(t, "", field.Description())
	msg, _ := field.Error()
	assert.Equal(t, DefaultError, msg)
	assert.Nil(t, field.ForcedValue())
	assert.True(t, field.Required())
	assert.Empty(t, field.Values())
}

func TestResultValueDerivation(t *testing.T) {
	rec := record.New(map[string]any{"first": "Ada", "last": "Lovelace"})

	v, err := DeriveValue(Literal("fixed")).Apply(rec, nil, "typed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", v)

	full := DeriveValue(Derive(func(rec record.Record, _ Field) (any, error) {
		return ToString(rec.Get("first")) + " " + ToString(rec.Get("last")), nil
	}))
	v, err = full.Apply(rec, nil, "typed")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", v)

	parsed, err := ParseResult(":value", "", "literal")
	require.NoError(t, err)
	v, err = parsed.Apply(rec, nil, "typed")
	require.NoError(t, err)
	assert.Equal(t, "literal", v)
}

func TestResultErrors(t *testing.T) {
	rec := record.New(map[string]any{"other": "x"})

	r, err := ParseResult(":field:other", "required", true)
	require.NoError(t, err)
	_, err = r.Apply(rec, &stubField{}, nil)
	assert.ErrorIs(t, err, ErrUnsupportedFieldMutation)

	_, err = ParseResult(":field", "explode", nil)
	assert.ErrorIs(t, err, ErrUnknownOperation)

	_, err = ParseResult(":record", "required", nil)
	assert.ErrorIs(t, err, ErrUnknownResultType)

	bad := Result{subject: FieldSelf(), operation: Operation("explode")}
	_, err = bad.Apply(rec, &stubField{}, nil)
	assert.ErrorIs(t, err, ErrUnknownOperation)

	r, err = ParseResult(":field", "values", "not-a-list")
	require.NoError(t, err)
	_, err = r.Apply(rec, &stubField{}, nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestResultPossibleValues(t *testing.T) {
	assert.Equal(t, []any{"a", "b"}, SetAllowedValues("a", "b").PossibleValues())
	assert.Nil(t, DeriveValue(Literal("x")).PossibleValues())
	self, err := ParseResult(":field", "value", "x")
	require.NoError(t, err)
	assert.Equal(t, []any{"x"}, self.PossibleValues())
	assert.Nil(t, DeriveValue(Derive(func(record.Record, Field) (any, error) { return "y", nil })).PossibleValues())
	assert.Nil(t, SetError("E").PossibleValues())

	r, err := ParseResult(":field", "values", []string{"c", "d"})
	require.NoError(t, err)
	assert.Equal(t, []any{"c", "d"}, r.PossibleValues())
	assert.True(t, strings.HasPrefix(r.String(), "Hook Result :field values"))
}
