// Package cmd implements the jinja subcommands: render, parse, repl, init and
// version.
//
// Commands receive a [context.Context] from kong. [WithContext] stores the
// parsed [kong.Context] in it so that commands can reach kong variables, and
// [WithStreams] substitutes standard input and output (used by tests).
//
// Template data comes from context files and --set assignments:
//
//	jinja render page.j2 -c site.yaml -c local.toml --set page.title='"Home"'
//
// Context files are merged in order, nested mappings key by key. A --set
// value is an expr-lang expression evaluated against the data loaded so far;
// if it does not evaluate, the raw text is used as a string.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the YAML configuration file.
	ConfigIdentifier = "config"
)
