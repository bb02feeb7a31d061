package closure

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode"
)

// IsCandidateName reports whether s could name a class: every rune is a
// Java identifier part or the '/' package separator. It accepts any pool
// string of that shape, including ones that are not class references.
func IsCandidateName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '/' && !isIdentifierPart(r) {
			return false
		}
	}
	return true
}

func isIdentifierPart(r rune) bool {
	switch {
	case r == '$' || r == '_':
		return true
	case r <= 0x08, r >= 0x0E && r <= 0x1B, r >= 0x7F && r <= 0x9F:
		// Identifier-ignorable controls.
		return true
	}
	return unicode.In(r, unicode.L, unicode.Nd, unicode.Nl, unicode.Sc,
		unicode.Pc, unicode.Mn, unicode.Mc, unicode.Cf)
}

// ReadRoots reads root class names, one per line. Blank lines and lines
// starting with '#' are skipped and a trailing .class is removed.
func ReadRoots(r io.Reader) ([]string, error) {
	var roots []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimSuffix(line, ".class")
		roots = append(roots, strings.ReplaceAll(line, `\`, "/"))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read roots: %w", err)
	}
	return roots, nil
}

// SplitClasspath splits a list-separator delimited classpath, dropping
// empty elements.
func SplitClasspath(cp string) []string {
	var paths []string
	for _, p := range filepath.SplitList(cp) {
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}
