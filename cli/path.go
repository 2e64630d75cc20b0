package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/jinja/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// Configuration file extensions.
const (
	extYAML = ".yaml"
	extJSON = ".json"
)

var defaultDirMode os.FileMode = 0o700

// basePrefix returns the name used for the configuration and cache
// directories: the base name of the executable without its extension.
//
// Debugger builds ("__debug_bin1234") map to [pkg.Name], and leading dots are
// removed.
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		id = filepath.Base(id)
		id = strings.TrimSuffix(id, filepath.Ext(id))

		for rex, rep := range map[*regexp.Regexp]string{
			regexp.MustCompile(`^__debug_bin\d+$`): pkg.Name,
			regexp.MustCompile(`^\.+`):             "",
		} {
			id = rex.ReplaceAllString(id, rep)
		}

		if id == "" {
			id = pkg.Name
		}

		return id
	},
)

// userDir joins basePrefix to the directory returned by base, or to
// $HOME/fallback, or to the working directory.
func userDir(base func() (string, error), fallback string) string {
	dir, err := base()
	if err != nil {
		if dir, err = os.UserHomeDir(); err == nil {
			dir = filepath.Join(dir, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(func() string {
	return userDir(os.UserConfigDir, ".config")
})

// cacheDir returns the directory for history files and profiles.
var cacheDir = sync.OnceValue(func() string {
	return userDir(os.UserCacheDir, ".cache")
})

// configPath joins elem to the configuration directory.
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// mkdirAllRequired creates the configuration and cache directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
