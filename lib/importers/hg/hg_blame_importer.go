package hg

import (
	"context"
	"time"

	"github.com/gertd/go-pluralize"

	"github.com/pescuma/hgblame/lib/consoles"
	"github.com/pescuma/hgblame/lib/model"
	"github.com/pescuma/hgblame/lib/storages"
	"github.com/pescuma/hgblame/lib/utils"
)

type BlameImporter struct {
	console  consoles.Console
	storage  storages.Storage
	executor Executor
	plural   *pluralize.Client
}

type ImportOptions struct {
	BlameOptions
	FileFilterOptions

	MaxFiles *int
}

type ImportSummary struct {
	RunID     model.UUID
	Repos     int
	Succeeded int
	Failed    int
}

func NewBlameImporter(console consoles.Console, storage storages.Storage, executor Executor) *BlameImporter {
	return &BlameImporter{
		console:  console,
		storage:  storage,
		executor: executor,
		plural:   pluralize.NewClient(),
	}
}

// Import blames the files of all repositories found inside dirs and writes the results
// to storage, including the failed ones.
func (i *BlameImporter) Import(ctx context.Context, dirs []string, opts *ImportOptions) (*ImportSummary, error) {
	if opts == nil {
		opts = &ImportOptions{}
	}

	rootDirs, err := FindRootDirs(dirs)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{
		RunID: model.NewRunID(),
	}

	if len(rootDirs) == 0 {
		i.console.Printf("No mercurial repository found\n")
		return summary, nil
	}

	command := NewBlameCommand(i.console, i.executor, &opts.BlameOptions)

	for _, rootDir := range rootDirs {
		i.console.PushPrefix("%v: ", rootDir)

		err = i.importRepository(ctx, command, rootDir, opts, summary)

		i.console.PopPrefix()

		if err != nil {
			return summary, err
		}

		summary.Repos++
	}

	i.console.Printf("Blamed %v, %v failed\n",
		i.plural.Pluralize("file", summary.Succeeded+summary.Failed, true), summary.Failed)

	return summary, nil
}

func (i *BlameImporter) importRepository(ctx context.Context, command *BlameCommand, rootDir string, opts *ImportOptions, summary *ImportSummary) error {
	i.console.Printf("Finding files to blame...\n")

	requests, err := ListFilesToBlame(rootDir, &opts.FileFilterOptions)
	if err != nil {
		return err
	}

	if opts.MaxFiles != nil {
		remaining := utils.Max(*opts.MaxFiles-summary.Succeeded-summary.Failed, 0)
		requests = requests[:utils.Min(len(requests), remaining)]
	}

	if len(requests) == 0 {
		return nil
	}

	i.console.Printf("Blaming %v...\n", i.plural.Pluralize("file", len(requests), true))

	bar := utils.NewProgressBar(len(requests), "blame")
	start := time.Now()

	err = command.Blame(ctx, rootDir, requests, ResultSinkFunc(func(blame *model.FileBlame) error {
		blame.RunID = summary.RunID

		err := i.storage.WriteFileBlame(blame)
		if err != nil {
			return err
		}

		if blame.Succeeded() {
			summary.Succeeded++
		} else {
			summary.Failed++
		}

		bar.Describe(utils.TruncateFilename(blame.Request.Path))
		_ = bar.Add(1)

		return nil
	}))

	_ = bar.Finish()

	if err != nil {
		return err
	}

	i.console.Printf("Blamed %v in %v\n", i.plural.Pluralize("file", len(requests), true),
		time.Since(start).Round(time.Millisecond))

	return nil
}
