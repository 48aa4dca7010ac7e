package hg

import (
	"fmt"
	"strings"
	"time"
)

// FormatError means hg printed a line we don't understand. The whole file is aborted,
// since it usually means an unsupported hg version or configuration.
type FormatError struct {
	File string
	Line int
	Text string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unable to blame file %v: unrecognized blame info at line %v: %v", e.File, e.Line, e.Text)
}

// TimestampParseError is a warning: the line is kept, without a date.
type TimestampParseError struct {
	File   string
	Line   int
	Raw    string
	Layout string
	Err    error
}

func (e *TimestampParseError) Error() string {
	return fmt.Sprintf("%v:%v: unable to parse date '%v' with layout '%v': %v", e.File, e.Line, e.Raw, e.Layout, e.Err)
}

func (e *TimestampParseError) Unwrap() error {
	return e.Err
}

type ToolExecutionError struct {
	File     string
	Command  string
	ExitCode int
	Stderr   []string
	TimedOut bool
	Timeout  time.Duration
	Err      error
}

func (e *ToolExecutionError) Error() string {
	switch {
	case e.TimedOut:
		return fmt.Sprintf("the mercurial blame command [%v] timed out after %v", e.Command, e.Timeout)
	case e.Err != nil:
		return fmt.Sprintf("the mercurial blame command [%v] failed: %v", e.Command, e.Err)
	default:
		return fmt.Sprintf("the mercurial blame command [%v] failed with exit code %v: %v", e.Command, e.ExitCode, strings.Join(e.Stderr, "\n"))
	}
}

func (e *ToolExecutionError) Unwrap() error {
	return e.Err
}

// LineCountMismatchError is raised when hg output can't be mapped to the file lines with
// the trailing empty line rule. No other heuristic is attempted.
type LineCountMismatchError struct {
	File     string
	Expected int
	Parsed   int
}

func (e *LineCountMismatchError) Error() string {
	return fmt.Sprintf("unable to blame file %v: hg returned %v lines but the file has %v", e.File, e.Parsed, e.Expected)
}
