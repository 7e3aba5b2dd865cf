package forward

import (
	"go/token"
	"strings"

	"github.com/cottand/sanehint/herr"
)

// IsIdentifier reports whether name is a syntactically valid dotted
// identifier: one or more identifier segments joined by "."
func IsIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for _, seg := range strings.Split(name, ".") {
		if !token.IsIdentifier(seg) {
			return false
		}
	}
	return true
}

// checkIdentifier fails with an identifier-syntax error naming what the
// identifier was meant to be ("forward reference", "forward scope name")
func checkIdentifier(name, what string) error {
	if IsIdentifier(name) {
		return nil
	}
	return herr.New(herr.NewBadIdentifier{Name: name, What: what})
}
