package host

import (
	"bufio"
	"os"
	"os/user"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/ardnew/jinja/lang"
)

// Target identifies an operating system and instruction set architecture.
// The naming convention depends on where the value came from.
type Target struct {
	OS   string
	Arch string
}

// Object returns t as a template object with keys os and arch.
func (t Target) Object() *lang.Object {
	return lang.ObjectOf("os", t.OS, "arch", t.Arch)
}

// Platform returns the host target using Go conventions.
//
// [Go conventions]:
// https://cs.opensource.google/go/go/+/master:src/cmd/dist/build.go
func Platform() Target {
	var (
		o, a string
		ok   bool
	)

	if o, ok = os.LookupEnv("GOHOSTOS"); !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	if a, ok = os.LookupEnv("GOHOSTARCH"); !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return Target{OS: o, Arch: a}
}

// GNU returns the host target using GNU GCC/LLVM naming conventions.
func GNU() Target {
	return gnu(Platform())
}

func gnu(t Target) Target {
	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		if arm, ok := os.LookupEnv("GOARM"); ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch arm = strings.TrimSpace(arm); arm {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// Hostname returns the host name reported by the kernel, or "".
func Hostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

var currentUser = sync.OnceValue(func() *user.User {
	u, err := user.Current()
	if err != nil {
		return nil
	}

	return u
})

// User returns the current user as an object with keys username, name, uid,
// gid and home, or None if the user cannot be determined.
func User() lang.Value {
	u := currentUser()
	if u == nil {
		return lang.Null{}
	}

	return lang.ObjectOf(
		"username", u.Username,
		"name", u.Name,
		"uid", u.Uid,
		"gid", u.Gid,
		"home", u.HomeDir,
	)
}

// Shell returns $SHELL, falling back to the login shell recorded in
// /etc/passwd.
func Shell() string {
	if shell, ok := os.LookupEnv("SHELL"); ok {
		return shell
	}

	u := currentUser()
	if u == nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}

	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		e := strings.Split(s.Text(), ":")
		if len(e) > 6 && e[0] == u.Username {
			return e[6]
		}
	}

	return ""
}

// Cwd returns the working directory, or the absolute form of "." if the
// directory cannot be determined.
func Cwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return abs(".")
	}

	return cwd
}

// Environ returns the process environment as an object ordered by name.
func Environ() *lang.Object {
	env := os.Environ()
	slices.Sort(env)

	pairs := make([]any, 0, 2*len(env))

	for _, entry := range env {
		if k, v, ok := strings.Cut(entry, "="); ok && k != "" {
			pairs = append(pairs, k, v)
		}
	}

	return lang.ObjectOf(pairs...)
}

// Register adds the host globals, filters and tests to r.
func Register(r *lang.Registry) {
	registerGlobals(r)
	registerPaths(r)
}

func registerGlobals(r *lang.Registry) {
	r.RegisterGlobal("env", lang.NewFunction("env", env),
		lang.Param{Name: "name", Default: lang.Null{}},
		lang.Param{Name: "default", Default: lang.String("")})
	r.Document(lang.CategoryGlobal, "env",
		"Return the environment variable name, or default if it is unset. Without a name, return all variables.")

	r.RegisterGlobal("cwd", lang.NewFunction("cwd", func([]lang.Value, *lang.Object, *lang.Environment) (lang.Value, error) {
		return lang.String(Cwd()), nil
	}))
	r.Document(lang.CategoryGlobal, "cwd", "Return the current working directory.")

	r.RegisterGlobal("platform", Platform().Object())
	r.Document(lang.CategoryGlobal, "platform", "The host os and arch using Go naming.")

	r.RegisterGlobal("target", GNU().Object())
	r.Document(lang.CategoryGlobal, "target", "The host os and arch using GNU naming.")

	r.RegisterGlobal("hostname", lang.String(Hostname()))
	r.Document(lang.CategoryGlobal, "hostname", "The host name.")

	r.RegisterGlobal("user", User())
	r.Document(lang.CategoryGlobal, "user", "The current user: username, name, uid, gid and home.")

	r.RegisterGlobal("shell", lang.String(Shell()))
	r.Document(lang.CategoryGlobal, "shell", "The user's shell.")

	r.RegisterGlobal("expr", lang.NewFunction("expr", exprGlobal),
		lang.Param{Name: "source"})
	r.Document(lang.CategoryGlobal, "expr",
		"Evaluate an expr-lang expression. Keyword arguments become variables of the expression.")
}

func env(args []lang.Value, kwargs *lang.Object, _ *lang.Environment) (lang.Value, error) {
	a, err := lang.BindArgs("env", args, kwargs, []lang.Param{
		{Name: "name", Default: lang.Null{}},
		{Name: "default", Default: lang.String("")},
	})
	if err != nil {
		return nil, err
	}

	if _, ok := a[0].(lang.Null); ok {
		return Environ(), nil
	}

	if v, ok := os.LookupEnv(lang.Stringify(a[0])); ok {
		return lang.String(v), nil
	}

	return a[1], nil
}

func exprGlobal(args []lang.Value, kwargs *lang.Object, _ *lang.Environment) (lang.Value, error) {
	if len(args) != 1 {
		return nil, lang.ErrRuntime.Wrap(lang.ErrArgument.Detail("expr: expected exactly one positional argument"))
	}

	src, ok := args[0].(lang.String)
	if !ok {
		return nil, lang.ErrRuntime.Wrap(lang.ErrTypeMismatch.Detail("expr: source must be a string"))
	}

	vars := make(map[string]any, kwargs.Len())
	for k, v := range kwargs.All() {
		vars[k] = lang.ToNative(v)
	}

	return Eval(string(src), vars)
}
