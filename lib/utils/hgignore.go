package utils

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	ignore "github.com/sabhiram/go-gitignore"
)

// FindHgIgnore loads <rootDir>/.hgignore and returns a matcher for paths relative to
// rootDir. Returns nil if the file does not exist.
func FindHgIgnore(rootDir string) (func(relativePath string) bool, error) {
	path := filepath.Join(rootDir, ".hgignore")

	exists, err := FileExists(path)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading %v", path)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err = scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "error reading %v", path)
	}

	return CompileHgIgnore(lines), nil
}

// CompileHgIgnore understands the glob, rootglob and regexp syntaxes, both as section
// switches (syntax: glob) and as per line prefixes (glob:*.o). regexp is the default.
// Regexps that RE2 cannot compile are skipped.
func CompileHgIgnore(lines []string) func(relativePath string) bool {
	var globs []string
	var res []*regexp.Regexp

	syntax := "regexp"
	for _, line := range lines {
		if i := strings.Index(line, "#"); i >= 0 && (i == 0 || line[i-1] != '\\') {
			line = line[:i]
		}
		line = strings.TrimRight(line, " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if strings.HasPrefix(line, "syntax:") {
			syntax = normalizeHgIgnoreSyntax(strings.TrimSpace(strings.TrimPrefix(line, "syntax:")))
			continue
		}

		lineSyntax := syntax
		for _, prefix := range []string{"glob", "rootglob", "regexp", "re"} {
			if strings.HasPrefix(line, prefix+":") {
				lineSyntax = normalizeHgIgnoreSyntax(prefix)
				line = strings.TrimPrefix(line, prefix+":")
				break
			}
		}

		switch lineSyntax {
		case "glob":
			// hg globs are never rooted
			if !strings.HasPrefix(line, "**/") {
				line = "**/" + strings.TrimPrefix(line, "/")
			}
			globs = append(globs, line)
		case "rootglob":
			globs = append(globs, "/"+strings.TrimPrefix(line, "/"))
		default:
			re, err := regexp.Compile(line)
			if err == nil {
				res = append(res, re)
			}
		}
	}

	gi := ignore.CompileIgnoreLines(globs...)

	return func(relativePath string) bool {
		relativePath = filepath.ToSlash(relativePath)

		if gi.MatchesPath(relativePath) {
			return true
		}

		for _, re := range res {
			if re.MatchString(relativePath) {
				return true
			}
		}

		return false
	}
}

func normalizeHgIgnoreSyntax(syntax string) string {
	switch syntax {
	case "re", "regexp":
		return "regexp"
	case "glob", "relglob":
		return "glob"
	case "rootglob":
		return "rootglob"
	default:
		return syntax
	}
}
