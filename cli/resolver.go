package cli

import (
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/jinja/cli/cmd"
)

// loadYAML is a [kong.ConfigurationLoader] for YAML configuration files.
//
// Nested mappings are flattened by joining keys with hyphens, so the
// following two documents are equivalent:
//
//	log:
//	  level: debug
//	  pretty: false
//	render:
//	  trim-blocks: true
//
//	log-level: debug
//	log-pretty: false
//	render-trim-blocks: true
//
// Underscores may be used in place of hyphens. Flags of a command are looked
// up under the command name first, then at the top level. Command-line flags
// override configuration values.
func loadYAML(r io.Reader) (kong.Resolver, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, cmd.ErrReadConfig.Wrap(err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, cmd.ErrReadConfig.Wrap(err).With(slog.String("format", "yaml"))
	}

	c := make(config)
	c.flatten("", doc)

	return c, nil
}

// config implements [kong.Resolver] over a flattened configuration document.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(prefix+k, "_", "-")

		if sub, ok := v.(map[string]any); ok {
			c.flatten(key+"-", sub)

			continue
		}

		c[key] = flagValue(v)
	}
}

// flagValue converts a decoded value to a form kong can decode into a flag.
// Kong parses numbers from strings.
func flagValue(v any) any {
	switch v := v.(type) {
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = flagValue(e)
		}

		return out
	}

	return v
}

// Validate implements [kong.Resolver].
func (c config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, parent *kong.Path, flag *kong.Flag) (any, error) {
	if parent != nil && parent.Command != nil {
		if v, ok := c[parent.Command.Name+"-"+flag.Name]; ok {
			return v, nil
		}
	}

	return c[flag.Name], nil
}

