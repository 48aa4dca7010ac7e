package utils

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aquilax/truncate"
	"github.com/go-enry/go-enry/v2"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

func Min[T constraints.Ordered](a T, bs ...T) T {
	result := a
	for _, b := range bs {
		if result > b {
			result = b
		}
	}
	return result
}

func Max[T constraints.Ordered](a T, bs ...T) T {
	result := a
	for _, b := range bs {
		if result < b {
			result = b
		}
	}
	return result
}

func Coalesce[T comparable](vs ...T) T {
	var def T

	for _, v := range vs {
		if v != def {
			return v
		}
	}

	return def
}

func PathAbs(path string) (string, error) {
	if strings.HasPrefix(filepath.ToSlash(path), "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}

		path = filepath.Join(home, path[2:])
	}

	path, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	return path, nil
}

func FileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return true, nil

	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil

	} else {
		return false, err
	}
}

func DirExists(path string) (bool, error) {
	if stat, err := os.Stat(path); err == nil {
		return stat.IsDir(), nil

	} else if errors.Is(err, os.ErrNotExist) {
		return false, nil

	} else {
		return false, err
	}
}

func TruncateFilename(path string) string {
	return truncate.Truncate(filepath.ToSlash(path), 40, "...", truncate.PositionMiddle)
}

// IsTextFile samples the start of the file and checks enry's binary heuristic.
func IsTextFile(path string) (bool, error) {
	file, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer file.Close()

	sample := make([]byte, 8000)
	n, err := io.ReadFull(file, sample)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return false, errors.Wrapf(err, "error reading %v", path)
	}

	return !enry.IsBinary(sample[:n]), nil
}

func IsVendorFile(relativePath string) bool {
	return enry.IsVendor(filepath.ToSlash(relativePath))
}

// CountLines counts lines the way the source viewer does: an empty file has no lines and
// a trailing newline starts one more (empty) line.
func CountLines(path string) (int, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return 0, errors.Wrapf(err, "error counting lines of %v", path)
	}

	return CountContentLines(contents), nil
}

func CountContentLines(contents []byte) int {
	if len(contents) == 0 {
		return 0
	}

	return bytes.Count(contents, []byte{'\n'}) + 1
}
