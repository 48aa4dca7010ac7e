package hg

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolExecutionErrorMessage(t *testing.T) {
	t.Parallel()

	err := &ToolExecutionError{
		File:     "src/foo.xoo",
		Command:  "hg blame -w -v --user --date --changeset src/foo.xoo",
		ExitCode: 255,
		Stderr:   []string{"abandon : src/foo.xoo: no such file in rev 000000000000"},
	}
	assert.Equal(t, "the mercurial blame command [hg blame -w -v --user --date --changeset src/foo.xoo] failed with exit code 255: "+
		"abandon : src/foo.xoo: no such file in rev 000000000000", err.Error())

	err = &ToolExecutionError{
		Command:  "hg blame a",
		ExitCode: -1,
		TimedOut: true,
		Timeout:  time.Minute,
		Err:      context.DeadlineExceeded,
	}
	assert.Equal(t, "the mercurial blame command [hg blame a] timed out after 1m0s", err.Error())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestLineCountMismatchErrorMessage(t *testing.T) {
	t.Parallel()

	var err error = &LineCountMismatchError{File: "a", Expected: 5, Parsed: 3}

	var mismatch *LineCountMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, "unable to blame file a: hg returned 3 lines but the file has 5", err.Error())
}
