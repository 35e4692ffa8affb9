package hook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/fieldconf/internal/record"
)

func TestHookRunAppliesResultsInOrder(t *testing.T) {
	rec := record.New(map[string]any{"country": "FR"})
	field := &stubField{alias: "zip"}

	h := New().
		Condition(":field:country", "=", "FR").
		Result(":field", "required", true).
		Result(":field", "error", "first").
		Result(":field", "error", "second")
	require.NoError(t, h.Err())

	fired, err := h.Run(rec, field)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.True(t, field.Required())
	msg, _ := field.Error()
	assert.Equal(t, "second", msg)
}

func TestHookRunDoesNotFireWhenAConditionFails(t *testing.T) {
	rec := record.New(map[string]any{"country": "DE", "kind": "pro"})
	field := &stubField{alias: "vat"}

	h := New().
		Condition(":field:kind", "=", "pro").
		Condition(":field:country", "=", "FR").
		Result(":field", "required", true)

	fired, err := h.Run(rec, field)
	require.NoError(t, err)
	assert.False(t, fired)
	assert.False(t, field.Required())
}

func TestHookConditionsShortCircuit(t *testing.T) {
	rec := record.New(map[string]any{"kind": "personal"})

	// The second condition references an attribute the record lacks; it is never
	// evaluated because the first condition already failed.
	h := New().
		Condition(":field:kind", "=", "pro").
		Condition(":field:company", "=", "ACME").
		Result(":field", "required", true)

	fired, err := h.Run(rec, &stubField{})
	require.NoError(t, err)
	assert.False(t, fired)

	_, fired, err = h.RunUpdate(rec, nil, "v")
	require.NoError(t, err)
	assert.False(t, fired)

	// Once the first condition holds the second one is reached and fails loudly.
	rec.Set("kind", "pro")
	_, err = h.Run(rec, &stubField{})
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestHookRunUpdateDerivesValue(t *testing.T) {
	rec := record.New(nil)
	h := New().
		Condition(":field", "=", "").
		Then(DeriveValue(Literal("n/a")))

	v, fired, err := h.RunUpdate(rec, nil, "")
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, "n/a", v)

	v, fired, err = h.RunUpdate(rec, nil, "given")
	require.NoError(t, err)
	assert.False(t, fired)
	assert.Equal(t, "given", v)
}

func TestHookRunUpdateUsesOwnerStateWithoutField(t *testing.T) {
	owner := &stubOwner{template: stubField{alias: "code", required: true}}
	h := New().Then(DeriveValue(Derive(func(_ record.Record, f Field) (any, error) {
		return f.Alias() + "-derived", nil
	})))
	h.owner = owner

	v, fired, err := h.RunUpdate(record.New(nil), nil, "x")
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, "code-derived", v)
	assert.Equal(t, 1, owner.issued)
}

func TestHookBuilderCollectsErrors(t *testing.T) {
	h := New().
		Condition(":field", "nope", "x").
		Result(":field", "explode", nil)

	err := h.Err()
	assert.ErrorIs(t, err, ErrUnknownOperator)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestHookCloneAndNamespace(t *testing.T) {
	h := New().Condition(":field:country", "=", "FR").Result(":field", "required", true).Bypass()
	c := h.Clone().AddNamespace("billing")

	assert.Equal(t, "country", h.Conditions()[0].Subject().Alias)
	assert.Equal(t, "billing_country", c.Conditions()[0].Subject().Alias)
	assert.True(t, c.Bypassed())
	assert.Len(t, c.Results(), 1)
}
