package hg

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"

	"github.com/pescuma/hgblame/lib/model"
	"github.com/pescuma/hgblame/lib/utils"
)

const markerDir = ".hg"

// IsRepository returns true if dir is the root of a Mercurial repository.
func IsRepository(dir string) bool {
	exists, err := utils.DirExists(filepath.Join(dir, markerDir))
	return err == nil && exists
}

// FindRootDirs returns all Mercurial repositories inside baseDirs, sorted.
func FindRootDirs(baseDirs []string) ([]string, error) {
	found := set.New[string](100)

	for _, baseDir := range baseDirs {
		baseDir, err := utils.PathAbs(baseDir)
		if err != nil {
			return nil, err
		}

		err = filepath.WalkDir(baseDir, func(path string, entry fs.DirEntry, err error) error {
			switch {
			case err != nil:
				return nil

			case entry.IsDir() && entry.Name() == markerDir:
				rootDir, err := utils.PathAbs(filepath.Dir(path))
				if err != nil {
					return err
				}

				found.Insert(rootDir)
				return filepath.SkipDir

			case entry.IsDir() && strings.HasPrefix(entry.Name(), ".") && path != baseDir:
				return filepath.SkipDir
			}

			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	result := found.Slice()
	sort.Strings(result)
	return result, nil
}

type FileFilterOptions struct {
	Include         []string
	Exclude         []string
	RespectHgignore bool
	SkipVendor      bool
}

// ListFilesToBlame walks rootDir and creates a request for every text file that passes the
// filters. Nested repositories are not entered.
func ListFilesToBlame(rootDir string, opts *FileFilterOptions) ([]model.FileBlameRequest, error) {
	if opts == nil {
		opts = &FileFilterOptions{}
	}

	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("invalid glob: %v", p)
		}
	}

	var ignored func(string) bool
	if opts.RespectHgignore {
		var err error
		ignored, err = utils.FindHgIgnore(rootDir)
		if err != nil {
			return nil, err
		}
	}

	var result []model.FileBlameRequest

	err := filepath.WalkDir(rootDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if path == rootDir {
			return nil
		}

		relativePath, err := filepath.Rel(rootDir, path)
		if err != nil {
			return err
		}
		relativePath = filepath.ToSlash(relativePath)

		if entry.IsDir() {
			switch {
			case strings.HasPrefix(entry.Name(), "."):
				return filepath.SkipDir
			case IsRepository(path):
				return filepath.SkipDir
			case ignored != nil && ignored(relativePath+"/"):
				return filepath.SkipDir
			}
			return nil
		}

		if !entry.Type().IsRegular() {
			return nil
		}
		if ignored != nil && ignored(relativePath) {
			return nil
		}
		if !matchesGlobs(relativePath, opts.Include, opts.Exclude) {
			return nil
		}
		if opts.SkipVendor && utils.IsVendorFile(relativePath) {
			return nil
		}

		isText, err := utils.IsTextFile(path)
		if err != nil {
			return err
		}
		if !isText {
			return nil
		}

		lines, err := utils.CountLines(path)
		if err != nil {
			return err
		}

		result = append(result, model.NewFileBlameRequest(relativePath, lines))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	return result, nil
}

func matchesGlobs(relativePath string, include []string, exclude []string) bool {
	for _, p := range exclude {
		if ok, _ := doublestar.Match(p, relativePath); ok {
			return false
		}
	}

	if len(include) == 0 {
		return true
	}

	for _, p := range include {
		if ok, _ := doublestar.Match(p, relativePath); ok {
			return true
		}
	}

	return false
}
