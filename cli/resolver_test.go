package cli

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jinja/cli/cmd"
)

const testConfig = `
log:
  level: debug
  pretty: false
render:
  max_depth: 64
  trim-blocks: true
context:
  - a.yaml
  - b.toml
ratio: 0.5
`

func TestLoadYAMLFlatten(t *testing.T) {
	t.Parallel()

	r, err := loadYAML(strings.NewReader(testConfig))
	if err != nil {
		t.Fatal(err)
	}

	c, ok := r.(config)
	if !ok {
		t.Fatalf("loadYAML() returned %T", r)
	}

	want := config{
		"log-level":          "debug",
		"log-pretty":         false,
		"render-max-depth":   "64",
		"render-trim-blocks": true,
		"context":            []any{"a.yaml", "b.toml"},
		"ratio":              "0.5",
	}

	if !reflect.DeepEqual(c, want) {
		t.Errorf("loadYAML() = %#v\nwant %#v", c, want)
	}
}

func TestLoadYAMLError(t *testing.T) {
	t.Parallel()

	_, err := loadYAML(strings.NewReader("log: [unterminated"))
	if !errors.Is(err, cmd.ErrReadConfig) {
		t.Errorf("loadYAML() error = %v, want ErrReadConfig", err)
	}
}

type resolveApp struct {
	Level  string
	Render struct {
		MaxDepth   int  `name:"max-depth"`
		TrimBlocks bool `name:"trim-blocks"`
	} `cmd:""`
	Parse struct {
		MaxDepth int `name:"max-depth"`
	} `cmd:""`
}

func parseWith(t *testing.T, r kong.Resolver, args ...string) resolveApp {
	t.Helper()

	var app resolveApp

	parser, err := kong.New(&app, kong.Resolvers(r), kong.Exit(func(int) {}))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := parser.Parse(args); err != nil {
		t.Fatal(err)
	}

	return app
}

func TestResolve(t *testing.T) {
	t.Parallel()

	r, err := loadYAML(strings.NewReader(`
level: warn
max-depth: 8
render:
  max-depth: 64
  trim-blocks: true
`))
	if err != nil {
		t.Fatal(err)
	}

	app := parseWith(t, r, "render")

	if app.Level != "warn" {
		t.Errorf("Level = %q, want warn", app.Level)
	}

	if app.Render.MaxDepth != 64 || !app.Render.TrimBlocks {
		t.Errorf("Render = %+v, want command-scoped values", app.Render)
	}

	if app = parseWith(t, r, "parse"); app.Parse.MaxDepth != 8 {
		t.Errorf("Parse.MaxDepth = %d, want top-level value 8", app.Parse.MaxDepth)
	}
}

func TestCommandLineOverridesConfig(t *testing.T) {
	t.Parallel()

	r, err := loadYAML(strings.NewReader("level: warn\n"))
	if err != nil {
		t.Fatal(err)
	}

	if app := parseWith(t, r, "--level=error", "render"); app.Level != "error" {
		t.Errorf("Level = %q, want error", app.Level)
	}
}
