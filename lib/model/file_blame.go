package model

import (
	"fmt"
	"path/filepath"
	"time"
)

type FileBlameRequest struct {
	// Path relative to the repository root, using forward slashes.
	Path string
	// Lines is the number of lines the source viewer counts for the file.
	Lines int
}

func NewFileBlameRequest(path string, lines int) FileBlameRequest {
	return FileBlameRequest{
		Path:  filepath.ToSlash(path),
		Lines: lines,
	}
}

// FileBlame is the outcome of blaming one file. Once it reaches a terminal status either
// Lines (succeeded) or Err (failed) is set, never both.
type FileBlame struct {
	RootDir  string
	Request  FileBlameRequest
	Status   BlameStatus
	Lines    []BlameLine
	Err      error
	RunID    UUID
	BlamedAt time.Time
}

func NewFileBlame(rootDir string, request FileBlameRequest) *FileBlame {
	return &FileBlame{
		RootDir: rootDir,
		Request: request,
		Status:  BlameNotStarted,
	}
}

func (f *FileBlame) AbsolutePath() string {
	return filepath.Join(f.RootDir, filepath.FromSlash(f.Request.Path))
}

func (f *FileBlame) Start() {
	f.transition(BlameNotStarted, BlameRunning)
}

func (f *FileBlame) Succeed(lines []BlameLine) {
	if lines == nil {
		lines = []BlameLine{}
	}

	f.transitionToTerminal(BlameSucceeded)
	f.Lines = lines
	f.Err = nil
}

func (f *FileBlame) Fail(err error) {
	f.transitionToTerminal(BlameFailed)
	f.Lines = nil
	f.Err = err
}

func (f *FileBlame) Succeeded() bool {
	return f.Status == BlameSucceeded
}

func (f *FileBlame) Failed() bool {
	return f.Status == BlameFailed
}

// Diagnostic returns the failure text, or an empty string for files that did not fail.
func (f *FileBlame) Diagnostic() string {
	if f.Err == nil {
		return ""
	}

	return f.Err.Error()
}

func (f *FileBlame) transitionToTerminal(to BlameStatus) {
	f.transition(BlameRunning, to)
	f.BlamedAt = time.Now()
}

func (f *FileBlame) transition(from BlameStatus, to BlameStatus) {
	if f.Status != from {
		panic(fmt.Sprintf("%v: invalid blame transition from %v to %v", f.Request.Path, f.Status, to))
	}

	f.Status = to
}
