// Package cli contains the command line interface for jinja.
//
// # Usage
//
//	jinja [flags] [template]                  render (default command)
//	jinja render page.j2 -c data.yaml -o out
//	jinja parse [tree|json|yaml|tokens] page.j2
//	jinja repl -c data.yaml --host
//	jinja init
//
// # Configuration
//
// Flag defaults are read from config.yaml and config.json in the user
// configuration directory (for example ~/.config/jinja). The YAML file may
// nest keys; see [loadYAML]. "jinja init" writes config.yaml from the flags
// given on its command line.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: output format (text, json)
//   - --log-time-layout: timestamp layout name, custom layout or "none"
//   - --log-caller: include the source location of each record
//   - --log-pretty: colorize text output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o jinja .
//
//   - --pprof-mode: profile to record (cpu, heap, allocs, ...)
//   - --pprof-dir: output directory (default: ~/.cache/jinja/pprof)
package cli
