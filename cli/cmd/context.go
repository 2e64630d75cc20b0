package cmd

import (
	"context"
	"log/slog"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/jinja/host"
	"github.com/ardnew/jinja/lang"
	"github.com/ardnew/jinja/log"
)

// ContextFlags holds the flags shared by commands that render templates.
type ContextFlags struct {
	Context []string `help:"Context file (.yaml, .yml, .json, .toml or '-' for stdin). Later files override earlier ones." placeholder:"FILE" short:"c"`
	Set     []string `help:"Set a context value: key.path=expression. Expressions that fail to evaluate are taken as strings." placeholder:"KEY=EXPR"`
}

// load reads the context files and applies the --set assignments.
func (f ContextFlags) load(ctx context.Context) (*lang.Object, error) {
	paths, err := uniqueSources(f.Context)
	if err != nil {
		return nil, err
	}

	data := lang.NewObject(0)

	for _, path := range paths {
		obj, err := decodeContext(ctx, path)
		if err != nil {
			return nil, err
		}

		log.TraceContext(ctx, "loaded context file",
			slog.String("file", path),
			slog.Int("keys", obj.Len()),
		)

		data = merge(data, obj)
	}

	for _, assignment := range f.Set {
		if data, err = set(data, assignment); err != nil {
			return nil, err
		}
	}

	return data, nil
}

// decodeContext reads one context file. YAML is assumed for standard input
// and unknown extensions; JSON documents are valid YAML.
func decodeContext(ctx context.Context, path string) (*lang.Object, error) {
	src, err := readSource(ctx, path)
	if err != nil {
		return nil, ErrReadContext.Wrap(err).With(slog.String("file", path))
	}

	var native any

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		native, err = decodeTOML(string(src))
	case ".yaml", ".yml", ".json", "":
		err = yaml.UnmarshalWithOptions(src, &native, yaml.UseOrderedMap())
	default:
		return nil, ErrContextType.With(slog.String("file", path), slog.String("ext", ext))
	}

	if err != nil {
		return nil, ErrReadContext.Wrap(err).With(slog.String("file", path))
	}

	v, err := lang.ValueOf(native)
	if err != nil {
		return nil, ErrReadContext.Wrap(err).With(slog.String("file", path))
	}

	switch v := v.(type) {
	case *lang.Object:
		return v, nil
	case lang.Null:
		return lang.NewObject(0), nil
	}

	return nil, ErrContextType.
		With(slog.String("file", path), slog.String("reason", "top-level value is not a mapping"))
}

// decodeTOML decodes src keeping the key order of the document.
func decodeTOML(src string) (any, error) {
	var m map[string]any

	md, err := toml.Decode(src, &m)
	if err != nil {
		return nil, err
	}

	order := make(map[string][]string)

	for _, key := range md.Keys() {
		parent := strings.Join(key[:len(key)-1], ".")
		if name := key[len(key)-1]; !slices.Contains(order[parent], name) {
			order[parent] = append(order[parent], name)
		}
	}

	return orderTOML(m, "", order), nil
}

func orderTOML(v any, path string, order map[string][]string) any {
	switch v := v.(type) {
	case map[string]any:
		keys := order[path]
		for _, k := range slices.Sorted(maps.Keys(v)) {
			if !slices.Contains(keys, k) {
				keys = append(keys, k)
			}
		}

		out := make(yaml.MapSlice, 0, len(v))

		for _, k := range keys {
			if e, ok := v[k]; ok {
				out = append(out, yaml.MapItem{Key: k, Value: orderTOML(e, join(path, k), order)})
			}
		}

		return out
	case []map[string]any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = orderTOML(e, path, order)
		}

		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = orderTOML(e, path, order)
		}

		return out
	case time.Time:
		return v.Format(time.RFC3339Nano)
	}

	return v
}

func join(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}

// merge returns base with every key of over applied. Nested objects are
// merged recursively; any other value in over replaces the one in base.
func merge(base, over *lang.Object) *lang.Object {
	for k, v := range over.All() {
		if sub, ok := v.(*lang.Object); ok {
			if prev, ok := base.Get(k); ok {
				if prevObj, ok := prev.(*lang.Object); ok {
					v = merge(prevObj, sub)
				}
			}
		}

		base = base.With(k, v)
	}

	return base
}

// set applies one key.path=expression assignment to data. The expression is
// evaluated with expr-lang against the context loaded so far.
func set(data *lang.Object, assignment string) (*lang.Object, error) {
	key, src, ok := strings.Cut(assignment, "=")
	path := strings.Split(strings.TrimSpace(key), ".")

	if !ok || slices.Contains(path, "") {
		return nil, ErrSetValue.With(slog.String("value", assignment))
	}

	native, _ := lang.ToNative(data).(map[string]any)

	v, err := host.Eval(src, native)
	if err != nil {
		v = lang.String(src)
	}

	return setPath(data, path, v), nil
}

func setPath(obj *lang.Object, path []string, v lang.Value) *lang.Object {
	if len(path) > 1 {
		sub, _ := obj.Get(path[0])

		subObj, ok := sub.(*lang.Object)
		if !ok {
			subObj = lang.NewObject(0)
		}

		v = setPath(subObj, path[1:], v)
	}

	return obj.With(path[0], v)
}
