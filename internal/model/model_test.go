package model

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/fieldconf/internal/field"
	"github.com/creamcroissant/fieldconf/internal/hook"
	"github.com/creamcroissant/fieldconf/internal/metrics"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/source"
	"github.com/creamcroissant/fieldconf/internal/support/logging"
)

func userBlock() source.Block {
	return source.Block{
		Alias:     "user",
		TableName: "users",
		Fields: []source.FieldEntry{
			{Alias: "email", Config: field.Config{Label: "Email Address", Required: true}},
			{Alias: "plan", Config: field.Config{
				Label:  "Plan",
				Values: []any{"free", "pro"},
				FormoParams: map[string]any{
					field.ParamScripts: map[string]string{"plans": "js/plans.js"},
					field.ParamJSCode:  "plans();",
				},
				Hooks: map[hook.Phase][]*hook.Hook{
					hook.PhaseValidation: {
						hook.New().Condition(":field:company", "!=", "").Then(hook.SetForcedValue("pro")),
					},
				},
			}},
			{Alias: "company", Config: field.Config{
				Label:       "Company",
				FormoParams: map[string]any{field.ParamJSCode: "company();"},
			}},
		},
	}
}

func slugBlock() source.Block {
	lower := hook.Derive(func(rec record.Record, _ hook.Field) (any, error) {
		return strings.ToLower(hook.ToString(rec.Get("title"))), nil
	})
	return source.Block{
		Alias: "post",
		Fields: []source.FieldEntry{
			{Alias: "slug", Config: field.Config{
				Label: "Slug",
				Hooks: map[hook.Phase][]*hook.Hook{
					hook.PhaseUpdate: {hook.New().Condition(":field:title", "!=", "").Then(hook.DeriveValue(lower))},
				},
			}},
			{Alias: "title", Config: field.Config{
				Label: "Title",
				Hooks: map[hook.Phase][]*hook.Hook{
					hook.PhaseUpdate: {hook.New().Condition(":field", "^=", " ").Then(hook.DeriveValue(hook.Literal("Hello")))},
				},
			}},
		},
	}
}

func testOptions() Options {
	return Options{Logger: logging.Discard()}
}

func TestLoad(t *testing.T) {
	src := source.NewStatic(userBlock())

	c, err := Load("user", src, testOptions())
	require.NoError(t, err)
	assert.True(t, c.Loaded())
	assert.Equal(t, "users", c.TableName())
	assert.Equal(t, []string{"email", "plan", "company"}, c.Fields())
	require.NoError(t, c.Load())

	_, err = Load("order", src, testOptions())
	assert.ErrorIs(t, err, ErrModelConfigNotFound)
	assert.ErrorIs(t, err, source.ErrNotFound)

	dup := source.NewStatic(source.Block{Alias: "dup", Fields: []source.FieldEntry{{Alias: "a"}, {Alias: "a"}}})
	_, err = Load("dup", dup, testOptions())
	assert.ErrorIs(t, err, ErrDuplicateField)

	_, err = c.Field("phone")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestValidate(t *testing.T) {
	reg := prometheus.NewRegistry()
	opts := testOptions()
	opts.Metrics = metrics.New(metrics.Config{}, reg)
	c, err := Load("user", source.NewStatic(userBlock()), opts)
	require.NoError(t, err)

	errs, err := c.Validate(record.New(map[string]any{"email": "", "plan": "free", "company": "ACME"}))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"jconfig/user/email.required",
		"jconfig/user/plan.mismatching_forced_value",
	}, errs.Paths())
	assert.Equal(t, "pro", errs.Field("plan")[0].Params[":forcedvalue"])

	errs, err = c.Validate(record.New(map[string]any{"email": "a@b.c", "plan": "gold", "company": ""}))
	require.NoError(t, err)
	assert.Equal(t, []string{"jconfig/user/plan.value_not_allowed"}, errs.Paths())

	errs, err = c.Validate(record.New(map[string]any{"email": "", "plan": "gold", "company": ""}), "email")
	require.NoError(t, err)
	assert.Equal(t, []string{"jconfig/user/email.required"}, errs.Paths())

	errs, err = c.Validate(record.New(map[string]any{"email": "a@b.c", "plan": "pro", "company": "ACME"}))
	require.NoError(t, err)
	assert.True(t, errs.Empty())

	assert.Equal(t, 1, testutil.CollectAndCount(reg, "fieldconf_engine_model_loads_total"))
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "fieldconf_engine_validations_total"))
}

func TestValidateSurfacesConfigurationErrors(t *testing.T) {
	block := source.Block{Alias: "broken", Fields: []source.FieldEntry{{
		Alias: "vat",
		Config: field.Config{Hooks: map[hook.Phase][]*hook.Hook{
			hook.PhaseValidation: {hook.New().Condition(":field:country", "=", "FR")},
		}},
	}}}
	c, err := Load("broken", source.NewStatic(block), testOptions())
	require.NoError(t, err)

	_, err = c.Validate(record.New(map[string]any{"vat": "x"}))
	assert.ErrorIs(t, err, hook.ErrMissingField)
}

func TestUpdateValuesTwoPasses(t *testing.T) {
	c, err := Load("post", source.NewStatic(slugBlock()), testOptions())
	require.NoError(t, err)

	rec := record.New(map[string]any{"title": "", "slug": ""})
	require.NoError(t, c.UpdateValues(rec, map[string]any{
		"slug":   "",
		"title":  "  padded",
		"ignore": "me",
	}))

	assert.Equal(t, "Hello", rec.Get("title"))
	assert.Equal(t, "hello", rec.Get("slug"))
	assert.False(t, rec.Has("ignore"))
}

func TestFormoFieldsAndValues(t *testing.T) {
	c, err := Load("user", source.NewStatic(userBlock()), testOptions())
	require.NoError(t, err)
	rec := record.New(map[string]any{"email": "a@b.c", "plan": "free", "company": "ACME"})

	views, err := c.FormoFields(rec, "plan", "email")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "plan", views[0].Alias)
	assert.False(t, views[0].Editable)
	assert.Equal(t, "pro", views[0].Value)
	assert.True(t, views[1].Required)

	_, err = c.FormoFields(rec, "phone")
	assert.ErrorIs(t, err, ErrUnknownField)

	values, err := c.FormoValues(rec, "email", "phone")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "a@b.c"}, values)

	all, err := c.FormoFields(rec)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestTranslateError(t *testing.T) {
	c, err := Load("user", source.NewStatic(userBlock()), testOptions())
	require.NoError(t, err)

	tests := []struct {
		lang, path, want string
	}{
		{"en-US", "jconfig/user/email.required", "Email Address must not be empty"},
		{"fr-FR", "jconfig/user/email.required", "Email Address ne doit pas être vide"},
		{"en-US", "jconfig/user/plan.value_not_allowed", "Plan cannot have this value"},
		{"en-US", "jconfig/user/plan.mismatching_forced_value", "Plan cannot have this value"},
		{"fr", "jconfig/user/_external.email.unique", "Email Address doit être unique"},
		{"en-US", "jconfig/user/email.E1", "E1"},
		{"en-US", "something else", "something else"},
	}
	for _, tt := range tests {
		got, err := c.TranslateError(tt.lang, tt.path)
		require.NoError(t, err, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}

	_, err = c.TranslateError("en-US", "jconfig/user/phone.required")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestDefinitionsScriptsAndJSCode(t *testing.T) {
	c, err := Load("user", source.NewStatic(userBlock()), testOptions())
	require.NoError(t, err)

	defs := c.Definitions()
	require.Len(t, defs, 3)
	assert.Equal(t, "Email Address", defs[0].Name)

	assert.Equal(t, map[string]string{"plans": "js/plans.js"}, c.Scripts())
	assert.Equal(t, "plans();company();", c.JSCode())
	assert.Equal(t, "company();", c.JSCode("company"))
}

func TestValidateRelationalFields(t *testing.T) {
	src := source.NewStatic(source.Block{
		Alias: "order",
		Fields: []source.FieldEntry{
			{Alias: "owner", Config: field.Config{Label: "Owner", Kind: field.BelongsTo, Required: true}},
			{Alias: "tags", Config: field.Config{Label: "Tags", Kind: field.ManyToMany, Values: []any{"1,2", "3"}}},
		},
	})
	c, err := Load("order", src, testOptions())
	require.NoError(t, err)

	rec := record.New(nil)
	require.NoError(t, c.UpdateValues(rec, map[string]any{"owner": "u1", "tags": "1, 2"}))

	values, err := c.FormoValues(rec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"owner": "u1", "tags": "1,2"}, values)

	errs, err := c.Validate(rec)
	require.NoError(t, err)
	assert.True(t, errs.Empty(), "unexpected errors: %v", errs.Paths())

	rec.SetRelated("tags", "9")
	errs, err = c.Validate(rec)
	require.NoError(t, err)
	assert.Equal(t, []string{"jconfig/order/tags.value_not_allowed"}, errs.Paths())

	errs, err = c.Validate(record.New(nil))
	require.NoError(t, err)
	assert.Equal(t, []string{"jconfig/order/owner.required"}, errs.Paths())
}

func TestValidateEmptyOptionalValue(t *testing.T) {
	c, err := Load("user", source.NewStatic(userBlock()), testOptions())
	require.NoError(t, err)

	errs, err := c.Validate(record.New(map[string]any{"email": "a@b.c", "plan": "", "company": ""}))
	require.NoError(t, err)
	assert.True(t, errs.Empty(), "unexpected errors: %v", errs.Paths())
}
