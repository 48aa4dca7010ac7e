package orm

import (
	"time"

	"github.com/pescuma/hgblame/lib/model"
)

type sqlBlameLine struct {
	FileID string `gorm:"primaryKey"`
	Line   int    `gorm:"primaryKey;autoIncrement:false"`

	Revision string `gorm:"index"`
	Date     *time.Time
	Author   string `gorm:"index"`
}

func newSqlBlameLine(fileID string, line int, l model.BlameLine) *sqlBlameLine {
	return &sqlBlameLine{
		FileID:   fileID,
		Line:     line,
		Revision: l.Revision,
		Date:     l.Date,
		Author:   l.Author,
	}
}

func (s *sqlBlameLine) ToModel() model.BlameLine {
	return model.NewBlameLine(s.Revision, s.Date, s.Author)
}
