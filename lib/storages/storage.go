package storages

import (
	"time"

	"github.com/pescuma/hgblame/lib/model"
)

type Storage interface {
	LoadConfig() (*map[string]string, error)
	WriteConfig() error

	LoadFileBlame(rootDir string, path string) (*model.FileBlame, error)
	ListFileBlames() ([]*model.FileBlame, error)
	WriteFileBlame(blame *model.FileBlame) error
	ListRootDirs() ([]string, error)
	QueryBlamePerAuthor() ([]*BlamePerAuthor, error)

	Close() error
}

type BlamePerAuthor struct {
	Author    string
	Lines     int
	Files     int
	Revisions int
	FirstDate *time.Time
	LastDate  *time.Time
}
