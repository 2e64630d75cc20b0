package cmd

import (
	"context"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/jinja/log"
	"github.com/ardnew/jinja/profile"
)

// defaultConfigIndent is the indent width of the generated configuration.
const defaultConfigIndent = 2

// Init writes the YAML configuration file from the current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	confPath := kongVar(ctx, ConfigIdentifier)
	if confPath == "" {
		panic("internal error: configuration path undefined")
	}

	if _, err := os.Stat(confPath); err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath), slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	data, err := yaml.MarshalWithOptions(i.config(ctx), yaml.Indent(defaultConfigIndent))
	if err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	if err := os.WriteFile(confPath, data, 0o600); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(ctx, "initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// config collects the top-level flags and their current values, in
// declaration order.
func (i *Init) config(ctx context.Context) yaml.MapSlice {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return yaml.MapSlice{}
	}

	prefixIgnore := []string{"help", "version", profile.Tag}
	out := yaml.MapSlice{}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		if v := flagValue(ktx, flag); v != nil {
			out = append(out, yaml.MapItem{Key: flag.Name, Value: v})
		}
	}

	return out
}

// flagValue returns the value of flag as plain data, or nil if it is unset
// or empty.
func flagValue(ktx *kong.Context, flag *kong.Flag) any {
	val := ktx.FlagValue(flag)
	if val == nil {
		return nil
	}

	rv := reflect.ValueOf(val)

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		if rv.Len() == 0 {
			return nil
		}

		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	case reflect.Slice:
		if rv.Len() == 0 {
			return nil
		}

		out := make([]any, 0, rv.Len())
		for j := range rv.Len() {
			out = append(out, rv.Index(j).Interface())
		}

		return out
	}

	return nil
}
