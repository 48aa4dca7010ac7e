package hg

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pescuma/hgblame/lib/consoles"
	"github.com/pescuma/hgblame/lib/model"
	"github.com/pescuma/hgblame/lib/utils"
)

const (
	DefaultExecutable = "hg"
	DefaultTimeout    = time.Minute
)

// ResultSink receives the outcome of each file of a batch. Accept is called from the
// goroutine running the batch, one file at a time, in completion order.
type ResultSink interface {
	Accept(blame *model.FileBlame) error
}

type ResultSinkFunc func(blame *model.FileBlame) error

func (f ResultSinkFunc) Accept(blame *model.FileBlame) error {
	return f(blame)
}

type BlameOptions struct {
	Executable string
	Timeout    time.Duration
	Workers    int
}

type BlameCommand struct {
	console  consoles.Console
	executor Executor
	opts     BlameOptions
}

func NewBlameCommand(console consoles.Console, executor Executor, opts *BlameOptions) *BlameCommand {
	o := BlameOptions{}
	if opts != nil {
		o = *opts
	}
	if o.Executable == "" {
		o.Executable = DefaultExecutable
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}

	return &BlameCommand{
		console:  console,
		executor: executor,
		opts:     o,
	}
}

// Blame blames all requested files of the repository at rootDir, in parallel, and sends
// each outcome to sink. A file that fails does not stop the others; the returned error is
// only about the batch itself (cancelled context or sink error).
func (b *BlameCommand) Blame(ctx context.Context, rootDir string, requests []model.FileBlameRequest, sink ResultSink) error {
	group := utils.ParallelFor(requests, func(request model.FileBlameRequest) (*model.FileBlame, error) {
		return b.BlameFile(ctx, rootDir, request)
	}, utils.ParallelOptions{
		Routines: b.opts.Workers,
	})

	for result := range group.Output {
		if group.Aborted() {
			continue
		}

		err := sink.Accept(result)
		if err != nil {
			group.Abort(err)
		}
	}

	return group.Error()
}

// BlameFile blames a single file. Problems with the file are reported in the returned
// FileBlame; an error is returned only if ctx was cancelled.
func (b *BlameCommand) BlameFile(ctx context.Context, rootDir string, request model.FileBlameRequest) (*model.FileBlame, error) {
	result := model.NewFileBlame(rootDir, request)

	result.Start()

	if request.Lines == 0 {
		result.Succeed(nil)
		return result, nil
	}

	command := b.newCommand(rootDir, request.Path)

	output, err := b.executor.Run(ctx, command)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		result.Fail(&ToolExecutionError{
			File:     request.Path,
			Command:  command.String(),
			ExitCode: -1,
			TimedOut: true,
			Timeout:  command.Timeout,
			Err:      err,
		})

	case err != nil:
		result.Fail(&ToolExecutionError{
			File:     request.Path,
			Command:  command.String(),
			ExitCode: -1,
			Err:      err,
		})

	case output.ExitCode != 0:
		result.Fail(&ToolExecutionError{
			File:     request.Path,
			Command:  command.String(),
			ExitCode: output.ExitCode,
			Stderr:   output.Stderr,
		})

	default:
		lines, err := b.parse(request, output.Stdout)
		if err != nil {
			result.Fail(err)
		} else {
			result.Succeed(lines)
		}
	}

	if result.Failed() {
		b.logFailure(command, result.Err)
	}

	return result, nil
}

func (b *BlameCommand) parse(request model.FileBlameRequest, stdout []string) ([]model.BlameLine, error) {
	parser := newBlameParser(request.Path)

	for _, line := range stdout {
		err := parser.ConsumeLine(line)
		if err != nil {
			return nil, err
		}
	}

	for _, w := range parser.Warnings() {
		b.console.Warnf("Skipping date of %v line %v: unable to parse '%v' with layout '%v': %v\n",
			w.File, w.Line, w.Raw, w.Layout, w.Err)
	}

	return reconcile(request.Path, parser.Lines(), request.Lines)
}

func (b *BlameCommand) logFailure(command *Command, err error) {
	var toolErr *ToolExecutionError
	var mismatchErr *LineCountMismatchError

	switch {
	case errors.As(err, &toolErr) && toolErr.TimedOut:
		b.console.Errorf("The mercurial blame command [%v] timed out after %v\n", command, toolErr.Timeout)

	case errors.As(err, &toolErr):
		b.console.Errorf("The mercurial blame command [%v] failed: %v\n", command,
			utils.Coalesce(strings.Join(toolErr.Stderr, "\n"), errorText(toolErr.Err)))

	case errors.As(err, &mismatchErr):
		b.console.Errorf("LINE COUNT MISMATCH: %v. Not guessing which lines are missing, %v will have no blame data\n",
			err, mismatchErr.File)

	default:
		b.console.Errorf("%v\n", err)
	}
}

func (b *BlameCommand) newCommand(rootDir string, file string) *Command {
	return &Command{
		Name: b.opts.Executable,
		Args: []string{"blame", "-w", "-v", "--user", "--date", "--changeset", "--", filepath.FromSlash(file)},
		Dir:  rootDir,
		// Ignore user configuration that could change the output format
		Env:     []string{"HGPLAIN=1"},
		Timeout: b.opts.Timeout,
	}
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
