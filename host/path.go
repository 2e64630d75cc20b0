package host

import (
	"os"
	"path/filepath"

	"github.com/ardnew/mung"

	"github.com/ardnew/jinja/lang"
)

func registerPaths(r *lang.Registry) {
	r.RegisterFilter("path_abs", pathFilter("path_abs", nil, func(a []string) string { return abs(a[0]) }))
	r.Document(lang.CategoryFilter, "path_abs", "Return the absolute form of path.")

	r.RegisterFilter("path_join", pathJoin, lang.Param{Name: "*elem"})
	r.Document(lang.CategoryFilter, "path_join",
		"Join path with the positional arguments, or join the elements of a list.")

	r.RegisterFilter("path_rel", pathFilter("path_rel", []lang.Param{{Name: "base"}},
		func(a []string) string { return rel(a[1], a[0]) }),
		lang.Param{Name: "base"})
	r.Document(lang.CategoryFilter, "path_rel", "Return path relative to base.")

	r.RegisterFilter("path_prefix", pathPrefix,
		lang.Param{Name: "items"},
		lang.Param{Name: "only_existing", Default: lang.Bool(false)})
	r.Document(lang.CategoryFilter, "path_prefix",
		"Prepend items to a PATH-like list, removing duplicates. With only_existing, keep only existing directories.")

	for name, fn := range map[string]func(string) bool{
		"exists":       exists,
		"directory":    isDir,
		"regular_file": isRegular,
		"symlink":      isSymlink,
	} {
		r.RegisterTest(name, fileTest(name, fn))
	}

	r.Document(lang.CategoryTest, "exists", "Check whether the path exists.")
	r.Document(lang.CategoryTest, "directory", "Check whether the path is a directory.")
	r.Document(lang.CategoryTest, "regular_file", "Check whether the path is a regular file.")
	r.Document(lang.CategoryTest, "symlink", "Check whether the path is a symbolic link.")
}

// pathFilter binds the filtered path and params as strings and applies fn.
func pathFilter(name string, params []lang.Param, fn func([]string) string) lang.FilterFunc {
	params = append([]lang.Param{{Name: "path"}}, params...)

	return func(args []lang.Value, kwargs *lang.Object, _ *lang.Environment) (lang.Value, error) {
		a, err := lang.BindArgs(name, args, kwargs, params)
		if err != nil {
			return nil, err
		}

		s := make([]string, len(a))
		for i, v := range a {
			s[i] = lang.Stringify(v)
		}

		return lang.String(fn(s)), nil
	}
}

func pathJoin(args []lang.Value, kwargs *lang.Object, _ *lang.Environment) (lang.Value, error) {
	if kwargs.Len() > 0 {
		return nil, lang.ErrRuntime.Wrap(lang.ErrArgument.Detail("path_join: unexpected keyword argument"))
	}

	if len(args) == 1 {
		if list, ok := args[0].(lang.Array); ok {
			args = list
		}
	}

	return lang.String(filepath.Join(stringsOf(args)...)), nil
}

func pathPrefix(args []lang.Value, kwargs *lang.Object, _ *lang.Environment) (lang.Value, error) {
	a, err := lang.BindArgs("path_prefix", args, kwargs, []lang.Param{
		{Name: "list"},
		{Name: "items"},
		{Name: "only_existing", Default: lang.Bool(false)},
	})
	if err != nil {
		return nil, err
	}

	items, ok := a[1].(lang.Array)
	if !ok {
		items = lang.Array{a[1]}
	}

	keep := func(string) bool { return true }
	if lang.Truthy(a[2]) {
		keep = isDir
	}

	return lang.String(mung.Make(
		mung.WithSubjectItems(lang.Stringify(a[0])),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(stringsOf(items)...),
		mung.WithFilter(keep),
	).String()), nil
}

func fileTest(name string, fn func(string) bool) lang.TestFunc {
	return func(args []lang.Value, kwargs *lang.Object, _ *lang.Environment) (bool, error) {
		a, err := lang.BindArgs(name, args, kwargs, []lang.Param{{Name: "path"}})
		if err != nil {
			return false, err
		}

		s, ok := a[0].(lang.String)

		return ok && fn(string(s)), nil
	}
}

func stringsOf(vs []lang.Value) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = lang.Stringify(v)
	}

	return out
}

func exists(path string) bool {
	_, err := os.Stat(path)

	return err == nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func isRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func isSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func abs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

// rel returns target relative to base, or the two joined when no relative
// path exists.
func rel(base, target string) string {
	p, err := filepath.Rel(abs(base), abs(target))
	if err != nil {
		return filepath.Join(base, target)
	}

	return p
}
