package host

import (
	"log/slog"
	"maps"
	"os"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/jinja/lang"
)

// exprEnv is built once per process and cloned for every evaluation so that
// callers may add variables without touching the shared copy.
var exprEnv = sync.OnceValue(func() map[string]any {
	platform, target := Platform(), GNU()

	return map[string]any{
		"platform": map[string]any{"os": platform.OS, "arch": platform.Arch},
		"target":   map[string]any{"os": target.OS, "arch": target.Arch},
		"hostname": Hostname(),
		"shell":    Shell(),
		"cwd":      Cwd,
		"env":      os.Getenv,
		"file": map[string]any{
			"exists":    exists,
			"isDir":     isDir,
			"isRegular": isRegular,
			"isSymlink": isSymlink,
		},
		"path": map[string]any{
			"abs": abs,
			"rel": rel,
		},
	}
})

// Eval evaluates the expr-lang expression src and converts the result to a
// template value. Entries of vars shadow the built-in host helpers (platform,
// target, hostname, shell, cwd, env, file.*, path.*).
func Eval(src string, vars map[string]any) (lang.Value, error) {
	env := maps.Clone(exprEnv())
	maps.Copy(env, vars)

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, lang.ErrRuntime.Wrap(lang.ErrArgument.Wrap(err)).
			With(slog.String("source", src))
	}

	result, err := vm.Run(program, env)
	if err != nil {
		return nil, lang.ErrRuntime.Wrap(lang.ErrArgument.Wrap(err)).
			With(slog.String("source", src))
	}

	v, err := lang.ValueOf(result)
	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("source", src))
	}

	return v, nil
}
