package registry

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creamcroissant/fieldconf/internal/cache"
	"github.com/creamcroissant/fieldconf/internal/field"
	"github.com/creamcroissant/fieldconf/internal/model"
	"github.com/creamcroissant/fieldconf/internal/record"
	"github.com/creamcroissant/fieldconf/internal/source"
	"github.com/creamcroissant/fieldconf/internal/support/logging"
	"github.com/creamcroissant/fieldconf/internal/validation"
)

type countingSource struct {
	source.Source
	calls atomic.Int32
}

func (s *countingSource) Block(alias string) (source.Block, error) {
	s.calls.Add(1)
	return s.Source.Block(alias)
}

func newSource() *countingSource {
	return &countingSource{Source: source.NewStatic(
		source.Block{Alias: "user", Fields: []source.FieldEntry{
			{Alias: "email", Config: field.Config{Label: "Email Address", Required: true}},
			{Alias: "name", Config: field.Config{Label: "Name"}},
		}},
		source.Block{Alias: "order", Fields: []source.FieldEntry{
			{Alias: "qty", Config: field.Config{Label: "Quantity", Values: []any{1, 2, 3}}},
		}},
	)}
}

func TestLoadIsMemoized(t *testing.T) {
	src := newSource()
	r := New(src, WithLogger(logging.Discard()))

	assert.False(t, r.Loaded("user"))

	var wg sync.WaitGroup
	models := make([]*model.Config, 8)
	for i := range models {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			m, err := r.Load("user")
			assert.NoError(t, err)
			models[i] = m
		}(i)
	}
	wg.Wait()

	assert.EqualValues(t, 1, src.calls.Load())
	for _, m := range models {
		assert.Same(t, models[0], m)
	}
	assert.True(t, r.Loaded("user"))
	assert.Equal(t, []string{"user"}, r.Aliases())
}

func TestFailedLoadsAreNotRemembered(t *testing.T) {
	src := newSource()
	r := New(src, WithLogger(logging.Discard()))

	_, err := r.Load("invoice")
	assert.ErrorIs(t, err, model.ErrModelConfigNotFound)
	_, err = r.Load("invoice")
	assert.ErrorIs(t, err, model.ErrModelConfigNotFound)
	assert.EqualValues(t, 2, src.calls.Load())
	assert.False(t, r.Loaded("invoice"))
}

func TestPreload(t *testing.T) {
	r := New(newSource(), WithLogger(logging.Discard()))
	// countingSource hides the Lister of the wrapped Static source.
	require.NoError(t, r.Preload())
	assert.Empty(t, r.Aliases())

	require.NoError(t, r.Preload("user", "order"))
	assert.Equal(t, []string{"order", "user"}, r.Aliases())

	listed := New(source.NewStatic(source.Block{Alias: "tag"}), WithLogger(logging.Discard()))
	require.NoError(t, listed.Preload())
	assert.True(t, listed.Loaded("tag"))

	err := r.Preload("nope")
	assert.ErrorIs(t, err, model.ErrModelConfigNotFound)
}

func TestSharedStore(t *testing.T) {
	store := cache.NewStore(cache.Options{Prefix: "fieldconf"})
	r := New(newSource(), WithStore(store), WithLogger(logging.Discard()))
	_, err := r.Load("order")
	require.NoError(t, err)
	assert.Equal(t, []string{"models:order"}, store.Keys())
}

func TestTranslateAndParseErrors(t *testing.T) {
	r := New(newSource(), WithLogger(logging.Discard()))

	msg, err := r.TranslateError("en-US", "jconfig/user/email.required")
	require.NoError(t, err)
	assert.Equal(t, "Email Address must not be empty", msg)

	msg, err = r.TranslateError("en-US", "validation.custom")
	require.NoError(t, err)
	assert.Equal(t, "validation.custom", msg)

	_, err = r.TranslateError("en-US", "jconfig/invoice/total.required")
	assert.ErrorIs(t, err, model.ErrModelConfigNotFound)

	errs, err := r.Validate("order", record.New(map[string]any{"qty": 9}))
	require.NoError(t, err)
	errs = append(errs, validation.FieldError{Namespace: "user", Field: "email", Code: "unique", External: true})
	errs = append(errs, validation.FieldError{Namespace: "user", Field: "email", Code: "required"})

	grouped, err := r.ParseErrors("en-US", errs)
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"qty":   {"Quantity cannot have this value"},
		"email": {"Email Address must be unique", "Email Address must not be empty"},
	}, grouped)
}

func TestDelegatingOperations(t *testing.T) {
	r := New(newSource(), WithLogger(logging.Discard()))
	rec := record.New(map[string]any{"email": "", "name": "Ada"})

	v, err := r.GetValidationRules("user", "email")
	require.NoError(t, err)
	assert.Equal(t, []string{"email"}, v.Fields())

	views, err := r.FormoFields("user", rec, "name")
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Name", views[0].Label)

	values, err := r.FormoValues("user", rec)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"email": "", "name": "Ada"}, values)

	require.NoError(t, r.UpdateValues("user", rec, map[string]any{"email": "a@b.c"}))
	assert.Equal(t, "a@b.c", rec.Get("email"))

	_, err = r.Validate("missing", rec)
	assert.ErrorIs(t, err, model.ErrModelConfigNotFound)
}
