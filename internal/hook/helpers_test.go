package hook

type stubField struct {
	alias       string
	required    bool
	description string
	err         string
	hasErr      bool
	forced      any
	values      []any
}

func (f *stubField) Alias() string { return f.alias }
func (f *stubField) Required() bool { return f.required }
func (f *stubField) SetRequired(r bool) { f.required = r }
func (f *stubField) Description() string { return f.description }
func (f *stubField) SetDescription(d string) { f.description = d }
func (f *stubField) Error() (string, bool) { return f.err, f.hasErr }
func (f *stubField) SetError(msg string) { f.err, f.hasErr = msg, true }
func (f *stubField) ForcedValue() any { return f.forced }
func (f *stubField) SetForcedValue(v any) { f.forced = v }
func (f *stubField) Values() []any { return f.values }
func (f *stubField) SetValues(values []any) { f.values = values }

// stubOwner hands out a fresh copy of its template on every State call.
type stubOwner struct {
	template stubField
	issued   int
}

func (o *stubOwner) Alias() string { return o.template.alias }

func (o *stubOwner) State() Field {
	o.issued++
	f := o.template
	f.values = append([]any(nil), o.template.values...)
	return &f
}

type reported struct {
	alias  string
	code   string
	params map[string]string
}

type stubReporter struct {
	errors []reported
}

func (r *stubReporter) Error(alias, code string, params map[string]string) {
	r.errors = append(r.errors, reported{alias: alias, code: code, params: params})
}
