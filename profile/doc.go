// Package profile starts optional runtime profiling with
// [github.com/pkg/profile].
//
// Profiling is compiled in only with the pprof build tag:
//
//	go build -tags pprof .
//	jinja --pprof-mode=cpu render page.j2 -c data.yaml
//
// Without the tag [Modes] is empty and [Profiler.Start] never profiles.
// Profiles are written under the configured directory with names matching
// the mode, for example cpu.pprof, and are read with go tool pprof.
package profile

// Tag is the build tag required to enable profiling.
const Tag = `pprof`
