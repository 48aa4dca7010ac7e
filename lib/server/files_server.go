package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/pescuma/hgblame/lib/model"
)

const noBlameData = "no blame data available"

func (s *server) initFiles(r *gin.Engine) {
	r.GET("/api/files", getP[ListParams](s.filesList))
	r.GET("/api/files/blame", getP[BlameParams](s.fileBlame))
}

func (s *server) filesList(params *ListParams) (any, error) {
	files, err := s.listFiles(&params.Filters)
	if err != nil {
		return nil, err
	}

	err = s.sortFiles(files, params.Sort, params.Asc)
	if err != nil {
		return nil, err
	}

	total := len(files)

	files = paginate(files, params.Offset, params.Limit)

	return gin.H{
		"data":  lo.Map(files, func(f *model.FileBlame, _ int) gin.H { return s.toFile(f) }),
		"total": total,
	}, nil
}

func (s *server) fileBlame(params *BlameParams) (any, error) {
	file, err := s.storage.LoadFileBlame(params.Root, params.Path)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return nil, errors.Wrapf(errorNotFound, "%v", params.Path)
	}

	result := s.toFile(file)

	if !file.Succeeded() {
		result["error"] = noBlameData
		return result, nil
	}

	result["lines"] = lo.Map(file.Lines, func(l model.BlameLine, i int) gin.H {
		return gin.H{
			"line":     i + 1,
			"revision": l.Revision,
			"date":     encodeDate(l.Date),
			"author":   l.Author,
		}
	})

	return result, nil
}

func (s *server) listFiles(filters *Filters) ([]*model.FileBlame, error) {
	files, err := s.storage.ListFileBlames()
	if err != nil {
		return nil, err
	}

	root := prepareToSearch(filters.FilterRoot)
	path := prepareToSearch(filters.FilterPath)

	var status *model.BlameStatus
	if filters.FilterStatus != "" {
		parsed, err := model.ParseBlameStatus(prepareToSearch(filters.FilterStatus))
		if err != nil {
			return nil, errors.Wrapf(errorBadRequest, "%v", err)
		}
		status = &parsed
	}

	return lo.Filter(files, func(f *model.FileBlame, _ int) bool {
		if root != "" && !strings.Contains(strings.ToLower(f.RootDir), root) {
			return false
		}
		if path != "" && !strings.Contains(strings.ToLower(f.Request.Path), path) {
			return false
		}
		if status != nil && f.Status != *status {
			return false
		}
		return true
	}), nil
}

func (s *server) sortFiles(col []*model.FileBlame, field string, asc *bool) error {
	if field == "" {
		field = "path"
	}
	if asc == nil {
		asc = lo.ToPtr(true)
	}

	switch field {
	case "root":
		sortBy(col, func(f *model.FileBlame) string { return f.RootDir }, *asc)
	case "path":
		sortBy(col, func(f *model.FileBlame) string { return f.Request.Path }, *asc)
	case "expectedLines":
		sortBy(col, func(f *model.FileBlame) int { return f.Request.Lines }, *asc)
	case "status":
		sortBy(col, func(f *model.FileBlame) string { return f.Status.String() }, *asc)
	case "blamedAt":
		sortBy(col, func(f *model.FileBlame) int64 { return f.BlamedAt.UnixNano() }, *asc)
	default:
		return errors.Wrapf(errorBadRequest, "unknown sort field: %v", field)
	}

	return nil
}

func (s *server) toFile(f *model.FileBlame) gin.H {
	result := gin.H{
		"root":          f.RootDir,
		"path":          f.Request.Path,
		"expectedLines": f.Request.Lines,
		"status":        f.Status.String(),
		"runID":         f.RunID,
		"blamedAt":      encodeDate(&f.BlamedAt),
	}

	if f.Failed() {
		result["diagnostic"] = f.Diagnostic()
	}

	return result
}
