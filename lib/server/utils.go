package server

import (
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

type GridParams struct {
	Sort   string `form:"sort"`
	Asc    *bool  `form:"asc"`
	Offset *int   `form:"offset"`
	Limit  *int   `form:"limit"`
}

var (
	errorNotFound   = errors.New("not found")
	errorBadRequest = errors.New("bad request")
)

func sendError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errorNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, errorBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func get(f func() (any, error)) func(c *gin.Context) {
	return func(c *gin.Context) {
		result, err := f()
		if err != nil {
			sendError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func getP[P any](f func(*P) (any, error)) func(c *gin.Context) {
	return func(c *gin.Context) {
		var params P

		err := c.ShouldBindQuery(&params)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := f(&params)
		if err != nil {
			sendError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

func sortBy[T any, R constraints.Ordered](col []T, get func(T) R, asc bool) {
	if asc {
		sort.SliceStable(col, func(i, j int) bool {
			return get(col[i]) < get(col[j])
		})
	} else {
		sort.SliceStable(col, func(i, j int) bool {
			return get(col[i]) > get(col[j])
		})
	}
}

func paginate[T any](col []T, offset, limit *int) []T {
	if offset != nil && *offset > 0 {
		if *offset > len(col) {
			return []T{}
		}

		col = col[*offset:]
	}

	if limit != nil && *limit < len(col) {
		col = col[:*limit]
	}

	return col
}

func prepareToSearch(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return s
}

func encodeDate(v *time.Time) *string {
	if v == nil {
		return nil
	}

	s := v.Format(time.RFC3339)
	return &s
}
