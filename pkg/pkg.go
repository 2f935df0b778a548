//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// Version is the semantic version of the lent module embedded at build time.
//
//go:embed VERSION
var Version string

const (
	// Name is the canonical command and module identifier. It names the
	// binary, the config and cache directories, and the environment prefix.
	Name = "lent"
	// Description is the one-line summary shown in help output.
	Description = "Localization entity compiler"
)

// Banner is the version line printed by the CLI --version flag, followed by
// one author credit per line.
func Banner() string {
	var b strings.Builder

	b.WriteString(Name + " " + strings.TrimSpace(Version))

	for _, author := range Author {
		b.WriteString("\n" + author.String())
	}

	return b.String()
}

// AuthorInfo is an author's name and contact email address.
type AuthorInfo struct {
	Name  string
	Email string
}

// String renders the author as "name <email>", omitting whichever part is
// unset.
func (a AuthorInfo) String() string {
	switch {
	case a.Name != "" && a.Email != "":
		return a.Name + " <" + a.Email + ">"
	case a.Email != "":
		return "<" + a.Email + ">"
	default:
		return a.Name
	}
}

// Author lists the project authors.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
