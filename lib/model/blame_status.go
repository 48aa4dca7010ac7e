package model

import (
	"fmt"

	"github.com/pkg/errors"
)

type BlameStatus int

const (
	BlameNotStarted BlameStatus = iota
	BlameRunning
	BlameSucceeded
	BlameFailed
)

func (s BlameStatus) String() string {
	switch s {
	case BlameNotStarted:
		return "not started"
	case BlameRunning:
		return "running"
	case BlameSucceeded:
		return "succeeded"
	case BlameFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown (%d)", int(s))
	}
}

func (s BlameStatus) IsTerminal() bool {
	return s == BlameSucceeded || s == BlameFailed
}

func ParseBlameStatus(s string) (BlameStatus, error) {
	for _, status := range []BlameStatus{BlameNotStarted, BlameRunning, BlameSucceeded, BlameFailed} {
		if status.String() == s {
			return status, nil
		}
	}

	return BlameNotStarted, errors.Errorf("unknown blame status: %v", s)
}
