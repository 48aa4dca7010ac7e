package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bloomberg/go-testgroup"
	"github.com/gin-gonic/gin"

	"github.com/pescuma/hgblame/lib/consoles"
	"github.com/pescuma/hgblame/lib/model"
	"github.com/pescuma/hgblame/lib/storages/orm"
)

func TestServer(t *testing.T) {
	gin.SetMode(gin.TestMode)

	testgroup.RunInParallel(t, &ServerTests{})
}

type ServerTests struct {
}

func (g *ServerTests) create(t *testgroup.T) *gin.Engine {
	var out bytes.Buffer
	storage, err := orm.NewGormStorage(orm.WithSqliteInMemory(), consoles.NewWriterConsole(&out, &out))
	t.Require.NoError(err)
	t.Cleanup(func() { _ = storage.Close() })

	date := time.Date(2014, 11, 4, 11, 1, 10, 0, time.UTC)

	ok := model.NewFileBlame("/repo", model.NewFileBlameRequest("src/foo.xoo", 2))
	ok.Start()
	ok.Succeed([]model.BlameLine{
		model.NewBlameLine("d45dafac0d9a", &date, "julien.henry@sonarsource.com"),
		model.NewBlameLine("d45dafac0d9b", nil, "julien.henry"),
	})
	t.Require.NoError(storage.WriteFileBlame(ok))

	failed := model.NewFileBlame("/repo", model.NewFileBlameRequest("src/new.xoo", 3))
	failed.Start()
	failed.Fail(errors.New("abandon : src/new.xoo: no such file in rev 000000000000"))
	t.Require.NoError(storage.WriteFileBlame(failed))

	return newServer(storage, nil).routes()
}

func (g *ServerTests) get(t *testgroup.T, r *gin.Engine, url string) (int, map[string]any) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)

	var result map[string]any
	if w.Code == http.StatusOK || w.Body.Len() > 0 && w.Body.Bytes()[0] == '{' {
		t.Require.NoError(json.Unmarshal(w.Body.Bytes(), &result))
	}
	return w.Code, result
}

func (g *ServerTests) ListFiles(t *testgroup.T) {
	r := g.create(t)

	code, result := g.get(t, r, "/api/files")

	t.Equal(http.StatusOK, code)
	t.Equal(float64(2), result["total"])

	data := result["data"].([]any)
	t.Require.Len(data, 2)
	t.Equal("src/foo.xoo", data[0].(map[string]any)["path"])
	t.Equal("succeeded", data[0].(map[string]any)["status"])
	t.Equal("failed", data[1].(map[string]any)["status"])
}

func (g *ServerTests) ListFilesFilteredAndSorted(t *testgroup.T) {
	r := g.create(t)

	code, result := g.get(t, r, "/api/files?status=failed")
	t.Equal(http.StatusOK, code)
	t.Equal(float64(1), result["total"])

	code, result = g.get(t, r, "/api/files?sort=expectedLines&asc=false&limit=1")
	t.Equal(http.StatusOK, code)
	t.Equal(float64(2), result["total"])
	data := result["data"].([]any)
	t.Require.Len(data, 1)
	t.Equal("src/new.xoo", data[0].(map[string]any)["path"])

	code, _ = g.get(t, r, "/api/files?sort=xyz")
	t.Equal(http.StatusBadRequest, code)

	code, _ = g.get(t, r, "/api/files?status=done")
	t.Equal(http.StatusBadRequest, code)
}

func (g *ServerTests) Blame(t *testgroup.T) {
	r := g.create(t)

	code, result := g.get(t, r, "/api/files/blame?root=/repo&path=src/foo.xoo")

	t.Equal(http.StatusOK, code)
	t.Equal(float64(2), result["expectedLines"])
	lines := result["lines"].([]any)
	t.Require.Len(lines, 2)

	first := lines[0].(map[string]any)
	t.Equal(float64(1), first["line"])
	t.Equal("d45dafac0d9a", first["revision"])
	t.Equal("julien.henry@sonarsource.com", first["author"])
	t.Equal("2014-11-04T11:01:10Z", first["date"])

	second := lines[1].(map[string]any)
	t.Nil(second["date"])
}

func (g *ServerTests) BlameOfFailedFile(t *testgroup.T) {
	r := g.create(t)

	code, result := g.get(t, r, "/api/files/blame?root=/repo&path=src/new.xoo")

	t.Equal(http.StatusOK, code)
	t.Equal(float64(3), result["expectedLines"])
	t.Equal("no blame data available", result["error"])
	t.Contains(result["diagnostic"], "no such file in rev 000000000000")
	t.Nil(result["lines"])
}

func (g *ServerTests) BlameNotFound(t *testgroup.T) {
	r := g.create(t)

	code, _ := g.get(t, r, "/api/files/blame?root=/repo&path=nope")
	t.Equal(http.StatusNotFound, code)

	code, _ = g.get(t, r, "/api/files/blame?root=/repo")
	t.Equal(http.StatusBadRequest, code)
}

func (g *ServerTests) Authors(t *testgroup.T) {
	r := g.create(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/stats/authors", nil))
	t.Require.Equal(http.StatusOK, w.Code)

	var authors []map[string]any
	t.Require.NoError(json.Unmarshal(w.Body.Bytes(), &authors))
	t.Require.Len(authors, 2)
	t.Equal("julien.henry", authors[0]["author"])
	t.Equal(float64(1), authors[0]["lines"])
	t.Nil(authors[0]["firstDate"])
	t.Equal("julien.henry@sonarsource.com", authors[1]["author"])
}

func (g *ServerTests) FileStats(t *testgroup.T) {
	r := g.create(t)

	code, result := g.get(t, r, "/api/stats/files?root=repo")

	t.Equal(http.StatusOK, code)
	t.Equal(float64(1), result["succeeded"])
	t.Equal(float64(1), result["failed"])
	t.Equal(float64(2), result["lines"])
}
