package model

import (
	"time"
)

// BlameLine is the attribution of one source line. It is never changed after creation.
type BlameLine struct {
	Revision string
	Date     *time.Time
	Author   string
}

func NewBlameLine(revision string, date *time.Time, author string) BlameLine {
	return BlameLine{
		Revision: revision,
		Date:     date,
		Author:   author,
	}
}

func (l BlameLine) HasDate() bool {
	return l.Date != nil
}
