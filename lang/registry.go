package lang

import (
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"sync"

	"github.com/sahilm/fuzzy"
)

// FilterFunc implements a filter. The filtered value is args[0].
type FilterFunc = Func

// TestFunc implements a test. The tested value is args[0].
type TestFunc func(args []Value, kwargs *Object, env *Environment) (bool, error)

// Category distinguishes the three registry namespaces.
type Category int

const (
	CategoryFilter Category = iota
	CategoryTest
	CategoryGlobal
)

func (c Category) String() string {
	switch c {
	case CategoryFilter:
		return "filter"
	case CategoryTest:
		return "test"
	case CategoryGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Signature describes a registered name for documentation and completion.
type Signature struct {
	Name   string
	Doc    string
	Params []Param
}

// String formats the signature as name(a, b=default).
func (s Signature) String() string {
	b := []byte(s.Name)
	b = append(b, '(')

	for i, p := range s.Params {
		if i > 0 {
			b = append(b, ", "...)
		}

		b = append(b, p.Name...)

		if p.Default != nil {
			b = append(b, '=')
			b = append(b, Repr(p.Default)...)
		}
	}

	return string(append(b, ')'))
}

// Registry holds the filters, tests and global values available to
// templates. It is safe for concurrent use.
type Registry struct {
	filters    map[string]FilterFunc
	tests      map[string]TestFunc
	globals    map[string]Value
	signatures [3]map[string]Signature
	mu         sync.RWMutex
}

// NewRegistry returns a registry holding every built-in filter, test and
// global.
func NewRegistry() *Registry {
	return builtins().Clone()
}

// EmptyRegistry returns a registry with no entries.
func EmptyRegistry() *Registry {
	r := &Registry{
		filters: make(map[string]FilterFunc),
		tests:   make(map[string]TestFunc),
		globals: make(map[string]Value),
	}

	for i := range r.signatures {
		r.signatures[i] = make(map[string]Signature)
	}

	return r
}

var (
	builtinOnce     sync.Once
	builtinRegistry *Registry
)

// builtins returns the shared registry of built-ins, building it on first
// use.
func builtins() *Registry {
	builtinOnce.Do(func() {
		r := EmptyRegistry()
		registerFilters(r)
		registerTests(r)
		registerGlobals(r)

		builtinRegistry = r
	})

	return builtinRegistry
}

// DefaultRegistry returns the shared registry of built-ins used when no
// registry is configured. Callers that register their own entries should
// start from [NewRegistry] instead.
func DefaultRegistry() *Registry { return builtins() }

// Clone returns an independent copy of r.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c := &Registry{
		filters: maps.Clone(r.filters),
		tests:   maps.Clone(r.tests),
		globals: maps.Clone(r.globals),
	}

	for i := range r.signatures {
		c.signatures[i] = maps.Clone(r.signatures[i])
	}

	return c
}

// RegisterFilter adds or replaces a filter. params documents the arguments
// following the filtered value.
func (r *Registry) RegisterFilter(name string, fn FilterFunc, params ...Param) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.filters[name] = fn
	r.signatures[CategoryFilter][name] = Signature{Name: name, Params: params}
}

// RegisterTest adds or replaces a test.
func (r *Registry) RegisterTest(name string, fn TestFunc, params ...Param) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tests[name] = fn
	r.signatures[CategoryTest][name] = Signature{Name: name, Params: params}
}

// RegisterGlobal adds or replaces a global value.
func (r *Registry) RegisterGlobal(name string, v Value, params ...Param) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.globals[name] = v
	r.signatures[CategoryGlobal][name] = Signature{Name: name, Params: params}
}

// Document attaches a description to a registered name.
func (r *Registry) Document(c Category, name, doc string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.signatures[c][name]; ok {
		s.Doc = doc
		r.signatures[c][name] = s
	}
}

// Filter returns the filter registered as name.
func (r *Registry) Filter(name string) (FilterFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.filters[name]

	return fn, ok
}

// Test returns the test registered as name.
func (r *Registry) Test(name string) (TestFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.tests[name]

	return fn, ok
}

// Global returns the global registered as name.
func (r *Registry) Global(name string) (Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.globals[name]

	return v, ok
}

// Filters returns the registered filter names, sorted.
func (r *Registry) Filters() []string { return r.names(CategoryFilter) }

// Tests returns the registered test names, sorted.
func (r *Registry) Tests() []string { return r.names(CategoryTest) }

// Globals returns the registered global names, sorted.
func (r *Registry) Globals() []string { return r.names(CategoryGlobal) }

func (r *Registry) names(c Category) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.signatures[c]))
}

// Signature returns the signature registered for name in category c.
func (r *Registry) Signature(c Category, name string) (Signature, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.signatures[c][name]

	return s, ok
}

// Suggest returns the registered name in category c that best matches name.
func (r *Registry) Suggest(c Category, name string) (string, bool) {
	matches := fuzzy.Find(name, r.names(c))
	if len(matches) == 0 {
		return "", false
	}

	return matches[0].Str, true
}

// unknown builds the error for an unresolved filter or test name.
func (r *Registry) unknown(c Category, name string) error {
	kind := ErrUnknownFilter
	if c == CategoryTest {
		kind = ErrUnknownTest
	}

	detail := "no " + c.String() + " named " + strconv.Quote(name)

	attrs := []slog.Attr{slog.String("name", name)}

	if s, ok := r.Suggest(c, name); ok {
		detail += " (did you mean " + strconv.Quote(s) + "?)"
		attrs = append(attrs, slog.String("suggestion", s))
	}

	return runtimeError(kind, detail, attrs...)
}

// builtin registers a native function whose arguments are bound against
// params before fn runs.
type builtin struct {
	fn     func(args []Value, env *Environment) (Value, error)
	doc    string
	params []Param
}

func (b builtin) bind(name string) Func {
	return func(args []Value, kwargs *Object, env *Environment) (Value, error) {
		bound, err := BindArgs(name, args, kwargs, b.params)
		if err != nil {
			return nil, err
		}

		return b.fn(bound, env)
	}
}

// defineFilter registers b under each of names. The first parameter is the
// filtered value and is omitted from the signature.
func (r *Registry) defineFilter(b builtin, names ...string) {
	for _, name := range names {
		r.RegisterFilter(name, b.bind(name), b.params[1:]...)
		r.Document(CategoryFilter, name, b.doc)
	}
}

func (r *Registry) defineTest(b builtin, names ...string) {
	for _, name := range names {
		fn := b.bind(name)
		r.RegisterTest(name, func(args []Value, kwargs *Object, env *Environment) (bool, error) {
			v, err := fn(args, kwargs, env)

			return Truthy(v), err
		}, b.params[1:]...)
		r.Document(CategoryTest, name, b.doc)
	}
}

func (r *Registry) defineGlobal(b builtin, name string) {
	r.RegisterGlobal(name, NewFunction(name, b.bind(name)), b.params...)
	r.Document(CategoryGlobal, name, b.doc)
}
