package hg

import (
	"github.com/pescuma/hgblame/lib/model"
)

// reconcile maps the parsed lines onto the number of lines of the file.
//
// hg does not blame the last line of a file when it is empty, but the source viewer still
// counts it, so a single missing line is filled with a copy of the last blamed one.
// Any other difference is an error.
func reconcile(file string, lines []model.BlameLine, expected int) ([]model.BlameLine, error) {
	parsed := len(lines)

	switch {
	case parsed == expected:
		return lines, nil

	case parsed == 0 && expected == 1:
		// An empty file always has an empty last line
		return lines, nil

	case parsed > 0 && parsed == expected-1:
		result := make([]model.BlameLine, parsed, expected)
		copy(result, lines)
		return append(result, lines[parsed-1]), nil

	default:
		return nil, &LineCountMismatchError{
			File:     file,
			Expected: expected,
			Parsed:   parsed,
		}
	}
}
