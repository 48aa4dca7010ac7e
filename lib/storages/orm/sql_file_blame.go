package orm

import (
	"time"

	"github.com/pescuma/hgblame/lib/model"
)

type sqlFileBlame struct {
	ID         string `gorm:"primaryKey"`
	RootDir    string `gorm:"index"`
	Path       string
	Lines      int
	Status     model.BlameStatus
	Diagnostic string
	RunID      model.UUID `gorm:"index"`
	BlamedAt   time.Time

	CreatedAt time.Time
	UpdatedAt time.Time

	BlameLines []sqlBlameLine `gorm:"foreignKey:FileID"`
}

func newSqlFileBlame(f *model.FileBlame) *sqlFileBlame {
	return &sqlFileBlame{
		ID:         fileBlameID(f.RootDir, f.Request.Path),
		RootDir:    f.RootDir,
		Path:       f.Request.Path,
		Lines:      f.Request.Lines,
		Status:     f.Status,
		Diagnostic: f.Diagnostic(),
		RunID:      f.RunID,
		BlamedAt:   f.BlamedAt,
	}
}

func (s *sqlFileBlame) ToModel() *model.FileBlame {
	result := model.NewFileBlame(s.RootDir, model.NewFileBlameRequest(s.Path, s.Lines))
	result.Status = s.Status
	result.Err = decodeDiagnostic(s.Diagnostic)
	result.RunID = s.RunID
	result.BlamedAt = s.BlamedAt
	return result
}

func (s *sqlFileBlame) CacheKey() string {
	return s.ID
}

func fileBlameID(rootDir string, path string) string {
	return compositeKey(rootDir, path)
}
