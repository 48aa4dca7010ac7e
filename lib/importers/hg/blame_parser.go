package hg

import (
	"regexp"
	"strings"
	"time"

	"github.com/pescuma/hgblame/lib/model"
)

const (
	// <author> [<<email>> ]<changeset> <date>:<line contents>
	// The date has exactly two colons, so it takes three colon separated fields.
	hgBlamePattern    = `^(.*?) (?:<(.*)> )?([0-9a-f]{12}) ([^:]+:[^:]+:[^:]+):.*$`
	hgTimestampLayout = "Mon Jan _2 15:04:05 2006 -0700"
)

type blameLineMatch struct {
	author   string
	email    string
	hasEmail bool
	revision string
	date     string
}

// blameParser consumes the output of hg blame for one file, one line at a time.
// It is not safe for concurrent use; create one per file.
type blameParser struct {
	file    string
	pattern *regexp.Regexp
	layout  string

	lines    []model.BlameLine
	warnings []*TimestampParseError
}

func newBlameParser(file string) *blameParser {
	return &blameParser{
		file:    file,
		pattern: regexp.MustCompile(hgBlamePattern),
		layout:  hgTimestampLayout,
	}
}

// ConsumeLine parses the next line of output. A FormatError is fatal for the file: no
// more lines should be consumed after it.
func (p *blameParser) ConsumeLine(line string) error {
	result, warning, err := p.parseLine(len(p.lines)+1, line)
	if err != nil {
		return err
	}

	if warning != nil {
		p.warnings = append(p.warnings, warning)
	}

	p.lines = append(p.lines, result)
	return nil
}

func (p *blameParser) Lines() []model.BlameLine {
	return p.lines
}

func (p *blameParser) Warnings() []*TimestampParseError {
	return p.warnings
}

func (p *blameParser) parseLine(lineNumber int, line string) (model.BlameLine, *TimestampParseError, error) {
	trimmed := strings.TrimSpace(line)

	m, ok := p.match(trimmed)
	if !ok {
		return model.BlameLine{}, nil, &FormatError{
			File: p.file,
			Line: lineNumber,
			Text: trimmed,
		}
	}

	author := m.author
	if m.hasEmail {
		author = m.email
	}

	var warning *TimestampParseError
	var date *time.Time

	parsed, err := time.Parse(p.layout, m.date)
	if err != nil {
		warning = &TimestampParseError{
			File:   p.file,
			Line:   lineNumber,
			Raw:    m.date,
			Layout: p.layout,
			Err:    err,
		}
	} else {
		date = &parsed
	}

	return model.NewBlameLine(m.revision, date, author), warning, nil
}

func (p *blameParser) match(line string) (blameLineMatch, bool) {
	idx := p.pattern.FindStringSubmatchIndex(line)
	if idx == nil {
		return blameLineMatch{}, false
	}

	group := func(i int) string {
		if idx[2*i] < 0 {
			return ""
		}
		return line[idx[2*i]:idx[2*i+1]]
	}

	return blameLineMatch{
		author:   group(1),
		email:    group(2),
		hasEmail: idx[4] >= 0,
		revision: group(3),
		date:     group(4),
	}, true
}
