package server

import (
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/pescuma/hgblame/lib/model"
	"github.com/pescuma/hgblame/lib/storages"
)

func (s *server) initStats(r *gin.Engine) {
	r.GET("/api/stats/authors", get(s.statsAuthors))
	r.GET("/api/stats/files", getP[Filters](s.statsFiles))
}

func (s *server) statsAuthors() (any, error) {
	authors, err := s.storage.QueryBlamePerAuthor()
	if err != nil {
		return nil, err
	}

	return lo.Map(authors, func(a *storages.BlamePerAuthor, _ int) gin.H {
		return gin.H{
			"author":    a.Author,
			"lines":     a.Lines,
			"files":     a.Files,
			"revisions": a.Revisions,
			"firstDate": encodeDate(a.FirstDate),
			"lastDate":  encodeDate(a.LastDate),
		}
	}), nil
}

func (s *server) statsFiles(filters *Filters) (any, error) {
	files, err := s.listFiles(filters)
	if err != nil {
		return nil, err
	}

	succeeded := 0
	failed := 0
	lines := 0
	for _, f := range files {
		switch f.Status {
		case model.BlameSucceeded:
			succeeded++
			lines += f.Request.Lines
		case model.BlameFailed:
			failed++
		}
	}

	return gin.H{
		"succeeded": succeeded,
		"failed":    failed,
		"lines":     lines,
	}, nil
}
