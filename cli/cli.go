package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/jinja/cli/cmd"
	"github.com/ardnew/jinja/pkg"
)

// CLI is the top-level command-line interface for jinja.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Render  cmd.Render  `cmd:"" default:"withargs" help:"Render a template (default)."`
	Parse   cmd.Parse   `cmd:""                    help:"Print the syntax tree or tokens of a template."`
	Repl    cmd.Repl    `cmd:""                    help:"Start an interactive template session."`
	Init    cmd.Init    `cmd:""                    help:"Write the configuration file from the current flags."`
	Version cmd.Version `cmd:""                    help:"Print the version."`
}

// Run executes the jinja CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	yamlPath := configPath(baseConfig + extYAML)

	vars := kong.Vars{
		cmd.ConfigIdentifier: yamlPath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logging flags are applied before parsing so that errors reported by
	// the parser are already formatted as requested.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(loadYAML, yamlPath),
		kong.Configuration(kong.JSON, configPath(baseConfig+extJSON)),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
