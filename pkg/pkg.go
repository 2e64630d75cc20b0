// Package pkg holds the identity of the jinja module: its name, version and
// authors.
//
//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the semantic version embedded from the VERSION file.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It is also the default base name of the
	// configuration and cache directories.
	Name = "jinja"
	// Description is the one-line summary shown in help output.
	Description = "Jinja template renderer"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// Author lists the primary author(s) of the project.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
