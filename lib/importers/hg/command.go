package hg

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/pescuma/hgblame/lib/utils"
)

type Command struct {
	// Name of the executable, as passed to exec.Command.
	Name string
	Args []string
	// Working directory.
	Dir string
	// Added to the current process environment.
	Env []string
	// The process is killed after this. No limit if 0.
	Timeout time.Duration
}

func (c *Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

type CommandOutput struct {
	Stdout   []string
	Stderr   []string
	ExitCode int
}

// Executor runs a command until it exits and returns its whole output.
//
// A non-zero exit code is not an error. If the command timed out the returned error wraps
// context.DeadlineExceeded.
type Executor interface {
	Run(ctx context.Context, command *Command) (*CommandOutput, error)
}

type processExecutor struct {
	waitDelay time.Duration
}

func NewProcessExecutor() Executor {
	return &processExecutor{
		waitDelay: 5 * time.Second,
	}
}

func (e *processExecutor) Run(ctx context.Context, command *Command) (*CommandOutput, error) {
	if command.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir
	if len(command.Env) > 0 {
		cmd.Env = append(os.Environ(), command.Env...)
	}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Don't hang on pipes kept open by children of a killed process
	cmd.WaitDelay = e.waitDelay

	err := cmd.Run()

	output := &CommandOutput{}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return output, errors.Wrapf(ctxErr, "error executing %v", command)
	}

	var exitErr *exec.ExitError
	switch {
	case errors.As(err, &exitErr):
		output.ExitCode = exitErr.ExitCode()

	case err != nil:
		return nil, errors.Wrapf(err, "error executing %v", command)
	}

	output.Stdout, err = splitLines(stdout.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "error reading stdout of %v", command)
	}

	output.Stderr, err = splitLines(stderr.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "error reading stderr of %v", command)
	}

	return output, nil
}

func splitLines(data []byte) ([]string, error) {
	return scanLines(bytes.NewReader(data), len(data)+1)
}

func scanLines(r io.Reader, maxLine int) ([]string, error) {
	var result []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, utils.Min(64*1024, maxLine)), maxLine)
	for scanner.Scan() {
		result = append(result, scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
