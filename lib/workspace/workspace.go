package workspace

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/abiosoft/lineprefix"
	"github.com/pkg/errors"

	"github.com/pescuma/hgblame/lib/consoles"
	"github.com/pescuma/hgblame/lib/importers/hg"
	"github.com/pescuma/hgblame/lib/model"
	"github.com/pescuma/hgblame/lib/server"
	"github.com/pescuma/hgblame/lib/storages"
	"github.com/pescuma/hgblame/lib/storages/orm"
	"github.com/pescuma/hgblame/lib/utils"
)

type Workspace struct {
	console  consoles.Console
	storage  storages.Storage
	executor hg.Executor
}

func NewWorkspace(file string) (*Workspace, error) {
	if file == "" {
		if _, err := os.Stat("./.hgblame"); err == nil {
			file = "./.hgblame/hgblame.sqlite"
		} else {
			file = "~/.hgblame/hgblame.sqlite"
		}
	}

	console := consoles.NewStdOutConsole()

	var storage storages.Storage
	var err error
	switch {
	case file == ":memory:":
		storage, err = orm.NewGormStorage(orm.WithSqliteInMemory(), console)

	case strings.HasSuffix(file, ".sqlite"):
		file, err = utils.PathAbs(file)
		if err != nil {
			return nil, err
		}

		err = createWorkspaceDir(file)
		if err != nil {
			return nil, err
		}

		storage, err = orm.NewGormStorage(orm.WithSqlite(file), console)

	default:
		return nil, fmt.Errorf("unknown storage type for file %v", file)
	}
	if err != nil {
		return nil, err
	}

	return New(console, storage, hg.NewProcessExecutor()), nil
}

func New(console consoles.Console, storage storages.Storage, executor hg.Executor) *Workspace {
	return &Workspace{
		console:  console,
		storage:  storage,
		executor: executor,
	}
}

func createWorkspaceDir(file string) error {
	path := filepath.Dir(file)

	if _, err := os.Stat(path); err != nil {
		fmt.Printf("Creating workspace at %v\n", path)
		err = os.MkdirAll(path, 0o700)
		if err != nil {
			return err
		}
	}

	return nil
}

func (w *Workspace) Close() error {
	return w.storage.Close()
}

func (w *Workspace) Console() consoles.Console {
	return w.console
}

// Blame blames every file of the repositories found in dirs. Options left empty are
// filled from the workspace config.
func (w *Workspace) Blame(ctx context.Context, dirs []string, opts *hg.ImportOptions) (*hg.ImportSummary, error) {
	if opts == nil {
		opts = &hg.ImportOptions{}
	}

	cfg, err := w.LoadConfig()
	if err != nil {
		return nil, err
	}

	o := *opts
	o.BlameOptions, err = cfg.ApplyTo(o.BlameOptions)
	if err != nil {
		return nil, err
	}

	importer := hg.NewBlameImporter(w.console, w.storage, w.executor)
	return importer.Import(ctx, dirs, &o)
}

// LoadFileBlame finds the blame of a file, given its absolute path.
func (w *Workspace) LoadFileBlame(file string) (*model.FileBlame, error) {
	file, err := utils.PathAbs(file)
	if err != nil {
		return nil, err
	}

	rootDirs, err := w.storage.ListRootDirs()
	if err != nil {
		return nil, err
	}

	for _, rootDir := range rootDirs {
		rel, err := filepath.Rel(rootDir, file)
		if err != nil || !isInsideRoot(rel) {
			continue
		}

		result, err := w.storage.LoadFileBlame(rootDir, filepath.ToSlash(rel))
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	return nil, errors.Errorf("no blame data available for %v. run 'blame' first", file)
}

// isInsideRoot expects a path relative to the root, as returned by filepath.Rel.
func isInsideRoot(rel string) bool {
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Workspace) StartServer(opts *server.Options) error {
	return server.Run(w.console, w.storage, opts)
}

// RunHg runs hg with args in every repository already blamed.
func (w *Workspace) RunHg(args ...string) error {
	cfg, err := w.LoadConfig()
	if err != nil {
		return err
	}

	rootDirs, err := w.storage.ListRootDirs()
	if err != nil {
		return err
	}

	for _, rootDir := range rootDirs {
		cmd := exec.Command(cfg.Executable(), args...)
		cmd.Dir = rootDir

		w.console.Printf("%v: Executing '%v'\n", rootDir, strings.Join(cmd.Args, "' '"))
		w.console.PushPrefix("%v: ", rootDir)

		prefix := lineprefix.PrefixFunc(func() string {
			return w.console.Prepare("")
		})

		cmd.Stdin = os.Stdin
		cmd.Stdout = lineprefix.New(lineprefix.Writer(os.Stdout), prefix)
		cmd.Stderr = lineprefix.New(lineprefix.Writer(os.Stderr), prefix)

		_ = cmd.Run()

		w.console.PopPrefix()
	}

	return nil
}
