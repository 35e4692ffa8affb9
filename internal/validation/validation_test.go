package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/fieldconf/internal/record"
)

func TestCheckNamedRules(t *testing.T) {
	v := New("user").
		Rule("name", RuleNotEmpty).
		Rule("plan", RuleRegex, `^(free|pro)?$`)

	ok, err := v.Check(record.New(map[string]any{"name": "", "plan": "gold"}))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{
		"jconfig/user/name.not_empty",
		"jconfig/user/plan.regex",
	}, v.Errors().Paths())

	ok, err = v.Check(record.New(map[string]any{"name": "Ada", "plan": ""}))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, v.Errors().Empty())
}

func TestCheckStopsAtFirstFailurePerField(t *testing.T) {
	calls := 0
	v := New("user").
		Rule("email", RuleNotEmpty).
		Callback("email", func(*Validation, string, any, record.Record) (bool, error) {
			calls++
			return true, nil
		})

	_, err := v.Check(record.New(map[string]any{"email": nil}))
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Len(t, v.Errors().Field("email"), 1)
}

func TestCallbackReportsThroughContainer(t *testing.T) {
	v := New("order").Callback("qty", func(v *Validation, alias string, value any, _ record.Record) (bool, error) {
		v.Error(alias, "value_not_allowed", map[string]string{":allowedvalues": "1, 2"})
		return false, nil
	})

	ok, err := v.Check(record.New(map[string]any{"qty": 3}))
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, v.Errors(), 1)
	fe := v.Errors()[0]
	assert.Equal(t, "jconfig/order/qty.value_not_allowed", fe.Path())
	assert.Equal(t, "1, 2", fe.Params[":allowedvalues"])
}

func TestCheckPropagatesConfigurationErrors(t *testing.T) {
	boom := errors.New("boom")
	v := New("user").Callback("name", func(*Validation, string, any, record.Record) (bool, error) {
		return false, boom
	})
	_, err := v.Check(record.New(nil))
	assert.ErrorIs(t, err, boom)

	_, err = New("user").Rule("name", "luhn").Check(record.New(nil))
	assert.ErrorIs(t, err, ErrUnknownRule)

	_, err = New("user").Rule("name", RuleRegex, "(").Check(record.New(nil))
	assert.Error(t, err)
}

func TestExternalErrors(t *testing.T) {
	v := New("user").Rule("email", RuleNotEmpty)
	v.AddExternal("email", "unique", nil)

	ok, err := v.Check(record.New(map[string]any{"email": "a@b.c"}))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"jconfig/user/_external.email.unique"}, v.Errors().Paths())
}

func TestFieldsKeepRegistrationOrder(t *testing.T) {
	v := New("m").Rule("b", RuleNotEmpty).Rule("a", RuleNotEmpty).Rule("b", RuleRegex, ".")
	assert.Equal(t, []string{"b", "a"}, v.Fields())
	assert.Len(t, v.Rules("b"), 2)
	assert.Equal(t, "m", v.Namespace())
}

func TestCheckUsesReader(t *testing.T) {
	v := New("order").
		Rule("tags", RuleNotEmpty).
		Rule("tags", RuleRegex, `^[0-9,]+$`).
		Reader("tags", func(rec record.Record) (any, error) {
			keys, err := rec.RelatedKeys("tags")
			if err != nil {
				return nil, err
			}
			return strings.Join(keys, ","), nil
		})

	rec := record.New(nil)
	rec.SetRelated("tags", "3", "7")
	ok, err := v.Check(rec)
	require.NoError(t, err)
	assert.True(t, ok)

	rec.SetRelated("tags")
	ok, err = v.Check(rec)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, []string{"jconfig/order/tags.not_empty"}, v.Errors().Paths())

	_, err = v.Check(record.New(nil))
	assert.ErrorIs(t, err, record.ErrUnknownAttribute)
}
