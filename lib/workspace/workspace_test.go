package workspace

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bloomberg/go-testgroup"

	"github.com/pescuma/hgblame/lib/consoles"
	"github.com/pescuma/hgblame/lib/importers/hg"
	"github.com/pescuma/hgblame/lib/storages/orm"
)

type recordingExecutor struct {
	mutex    sync.Mutex
	commands []*hg.Command
}

func (e *recordingExecutor) Run(_ context.Context, command *hg.Command) (*hg.CommandOutput, error) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	e.commands = append(e.commands, command)

	if command.Args[len(command.Args)-1] == "new.txt" {
		return &hg.CommandOutput{
			Stderr:   []string{"abandon : new.txt: no such file in rev 000000000000"},
			ExitCode: 255,
		}, nil
	}

	return &hg.CommandOutput{
		Stdout: []string{
			"Julien Henry <julien.henry@sonarsource.com> d45dafac0d9a Tue Nov 04 11:01:10 2014 +0100: foo",
			"julien.henry d45dafac0d9b Tue Nov 04 11:01:10 2014 +0100: bar",
		},
	}, nil
}

func TestWorkspace(t *testing.T) {
	testgroup.RunInParallel(t, &WorkspaceTests{})
}

type WorkspaceTests struct {
}

func (g *WorkspaceTests) create(t *testgroup.T) (*Workspace, *recordingExecutor) {
	var out bytes.Buffer
	console := consoles.NewWriterConsole(&out, &out)

	storage, err := orm.NewGormStorage(orm.WithSqliteInMemory(), console)
	t.Require.NoError(err)

	executor := &recordingExecutor{}
	ws := New(console, storage, executor)
	t.Cleanup(func() { _ = ws.Close() })

	return ws, executor
}

func (g *WorkspaceTests) createRepo(t *testgroup.T) string {
	root := t.TempDir()
	t.Require.NoError(os.MkdirAll(filepath.Join(root, ".hg"), 0o700))
	t.Require.NoError(os.WriteFile(filepath.Join(root, "a.txt"), []byte("foo\nbar\n"), 0o600))
	t.Require.NoError(os.WriteFile(filepath.Join(root, "new.txt"), []byte("x\n"), 0o600))
	t.Require.NoError(os.WriteFile(filepath.Join(root, "empty.txt"), []byte(""), 0o600))
	return root
}

func (g *WorkspaceTests) Blame(t *testgroup.T) {
	ws, executor := g.create(t)
	root := g.createRepo(t)

	summary, err := ws.Blame(context.Background(), []string{root}, nil)

	t.Require.NoError(err)
	t.Equal(1, summary.Repos)
	t.Equal(2, summary.Succeeded)
	t.Equal(1, summary.Failed)
	t.Len(executor.commands, 2)

	blame, err := ws.LoadFileBlame(filepath.Join(root, "a.txt"))
	t.Require.NoError(err)
	t.True(blame.Succeeded())
	t.Require.Len(blame.Lines, 3)
	t.Equal(blame.Lines[1], blame.Lines[2])
	t.Equal(summary.RunID, blame.RunID)

	blame, err = ws.LoadFileBlame(filepath.Join(root, "new.txt"))
	t.Require.NoError(err)
	t.True(blame.Failed())
	t.Contains(blame.Diagnostic(), "no such file in rev 000000000000")

	blame, err = ws.LoadFileBlame(filepath.Join(root, "empty.txt"))
	t.Require.NoError(err)
	t.True(blame.Succeeded())
	t.Empty(blame.Lines)
}

func (g *WorkspaceTests) BlameUsesConfig(t *testgroup.T) {
	ws, executor := g.create(t)
	root := g.createRepo(t)

	_, err := ws.SetConfigParameter(ConfigHgExecutable, "/opt/hg")
	t.Require.NoError(err)
	_, err = ws.SetConfigParameter(ConfigHgTimeout, "5s")
	t.Require.NoError(err)

	maxFiles := 1
	_, err = ws.Blame(context.Background(), []string{root}, &hg.ImportOptions{MaxFiles: &maxFiles})
	t.Require.NoError(err)

	t.Require.Len(executor.commands, 1)
	t.Equal("/opt/hg", executor.commands[0].Name)
	t.Equal(5*time.Second, executor.commands[0].Timeout)
	t.Equal(root, executor.commands[0].Dir)
}

func (g *WorkspaceTests) LoadFileStartingWithDots(t *testgroup.T) {
	ws, _ := g.create(t)
	root := g.createRepo(t)
	t.Require.NoError(os.WriteFile(filepath.Join(root, "..config"), []byte("x"), 0o600))

	_, err := ws.Blame(context.Background(), []string{root}, nil)
	t.Require.NoError(err)

	blame, err := ws.LoadFileBlame(filepath.Join(root, "..config"))

	t.Require.NoError(err)
	t.Equal("..config", blame.Request.Path)
}

func (g *WorkspaceTests) InsideRoot(t *testgroup.T) {
	t.True(isInsideRoot("a.txt"))
	t.True(isInsideRoot("..config"))
	t.True(isInsideRoot(filepath.Join("src", "..a")))
	t.False(isInsideRoot("."))
	t.False(isInsideRoot(".."))
	t.False(isInsideRoot(filepath.Join("..", "other", "a.txt")))
}

func (g *WorkspaceTests) LoadUnknownFile(t *testgroup.T) {
	ws, _ := g.create(t)

	_, err := ws.LoadFileBlame(filepath.Join(t.TempDir(), "a.txt"))

	t.Require.NotNil(err)
	t.Contains(err.Error(), "run 'blame' first")
}

func (g *WorkspaceTests) Config(t *testgroup.T) {
	ws, _ := g.create(t)

	changed, err := ws.SetConfigParameter(ConfigBlameWorkers, "3")
	t.Require.NoError(err)
	t.True(changed)

	changed, err = ws.SetConfigParameter(ConfigBlameWorkers, "3")
	t.Require.NoError(err)
	t.False(changed)

	cfg, err := ws.LoadConfig()
	t.Require.NoError(err)
	workers, err := cfg.Workers()
	t.Require.NoError(err)
	t.Equal(3, workers)

	changed, err = ws.UnsetConfigParameter(ConfigBlameWorkers)
	t.Require.NoError(err)
	t.True(changed)

	cfg, err = ws.LoadConfig()
	t.Require.NoError(err)
	_, ok := cfg.Get(ConfigBlameWorkers)
	t.False(ok)
}

func (g *WorkspaceTests) InvalidConfig(t *testgroup.T) {
	ws, _ := g.create(t)

	_, err := ws.SetConfigParameter("nope", "1")
	t.NotNil(err)

	_, err = ws.SetConfigParameter(ConfigHgTimeout, "forever")
	t.NotNil(err)

	_, err = ws.SetConfigParameter(ConfigBlameWorkers, "0")
	t.NotNil(err)
}

func (g *WorkspaceTests) ApplyToKeepsExplicitOptions(t *testgroup.T) {
	cfg := &Config{values: map[string]string{
		ConfigHgExecutable: "/opt/hg",
		ConfigHgTimeout:    "5s",
		ConfigBlameWorkers: "7",
	}}

	opts, err := cfg.ApplyTo(hg.BlameOptions{Executable: "hg2"})

	t.Require.NoError(err)
	t.Equal("hg2", opts.Executable)
	t.Equal(5*time.Second, opts.Timeout)
	t.Equal(7, opts.Workers)

	opts, err = (&Config{values: map[string]string{}}).ApplyTo(hg.BlameOptions{})

	t.Require.NoError(err)
	t.Equal(hg.DefaultExecutable, opts.Executable)
	t.Equal(hg.DefaultTimeout, opts.Timeout)
}
