package closure

import (
	"fmt"

	ignore "github.com/sabhiram/go-gitignore"
)

// CompileExclude builds a matcher from gitignore-style patterns given
// inline and, if file is not empty, read from file. Patterns are matched
// against internal class names such as java/lang/Object. It returns nil
// when there is nothing to exclude.
func CompileExclude(patterns []string, file string) (*ignore.GitIgnore, error) {
	if file != "" {
		gi, err := ignore.CompileIgnoreFileAndLines(file, patterns...)
		if err != nil {
			return nil, fmt.Errorf("read exclude file %s: %w", file, err)
		}
		return gi, nil
	}
	if len(patterns) == 0 {
		return nil, nil
	}
	return ignore.CompileIgnoreLines(patterns...), nil
}
