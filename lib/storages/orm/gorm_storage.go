package orm

import (
	"log"
	"os"
	"reflect"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/pescuma/hgblame/lib/consoles"
	"github.com/pescuma/hgblame/lib/model"
	"github.com/pescuma/hgblame/lib/storages"
)

type sqlTable interface {
	CacheKey() string
}

type gormStorage struct {
	mutex   sync.RWMutex
	db      *gorm.DB
	console consoles.Console

	config *map[string]string

	sqlConfigs map[string]*sqlConfig
}

func NewGormStorage(d gorm.Dialector, console consoles.Console) (storages.Storage, error) {
	l := logger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(d, &gorm.Config{
		NamingStrategy: &NamingStrategy{},
		Logger:         l,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "error opening database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrapf(err, "error opening database")
	}
	// sqlite serializes writes anyway, and each :memory: connection is a different database
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&sqlConfig{},
		&sqlFileBlame{},
		&sqlBlameLine{},
	)
	if err != nil {
		return nil, errors.Wrapf(err, "error migrating database")
	}

	return &gormStorage{
		db:         db,
		console:    console,
		sqlConfigs: map[string]*sqlConfig{},
	}, nil
}

func (s *gormStorage) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}

func createCache[T sqlTable](rows []T) map[string]T {
	return lo.Associate(rows, func(i T) (string, T) {
		return i.CacheKey(), i
	})
}

func (s *gormStorage) LoadConfig() (*map[string]string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.config != nil {
		return s.config, nil
	}

	var sqlConfigs []*sqlConfig
	err := s.db.Find(&sqlConfigs).Error
	if err != nil {
		return nil, err
	}

	s.sqlConfigs = createCache(sqlConfigs)

	result := make(map[string]string, len(sqlConfigs))
	for _, sc := range sqlConfigs {
		result[sc.Key] = sc.Value
	}

	s.config = &result
	return &result, nil
}

func (s *gormStorage) WriteConfig() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.config == nil {
		return nil
	}

	var changed []*sqlConfig
	for k, v := range *s.config {
		sc := newSqlConfig(k, v)
		if prepareChange(&s.sqlConfigs, sc) {
			changed = append(changed, sc)
		}
	}

	var deleted []string
	for k := range s.sqlConfigs {
		if _, ok := (*s.config)[k]; !ok {
			deleted = append(deleted, k)
		}
	}

	if len(changed) == 0 && len(deleted) == 0 {
		return nil
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if len(changed) > 0 {
			err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&changed).Error
			if err != nil {
				return err
			}
		}

		if len(deleted) > 0 {
			err := tx.Where(clause.IN{Column: clause.Column{Name: "key"}, Values: lo.ToAnySlice(deleted)}).
				Delete(&sqlConfig{}).Error
			if err != nil {
				return err
			}

			for _, k := range deleted {
				delete(s.sqlConfigs, k)
			}
		}

		return nil
	})
}

func (s *gormStorage) LoadFileBlame(rootDir string, path string) (*model.FileBlame, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var sf sqlFileBlame
	err := s.db.Where("id = ?", fileBlameID(rootDir, path)).Limit(1).Find(&sf).Error
	if err != nil {
		return nil, err
	}
	if sf.ID == "" {
		return nil, nil
	}

	result := sf.ToModel()

	if result.Succeeded() {
		var lines []*sqlBlameLine
		err = s.db.Where("file_id = ?", sf.ID).Order("line").Find(&lines).Error
		if err != nil {
			return nil, err
		}

		result.Lines = make([]model.BlameLine, 0, len(lines))
		for i, sl := range lines {
			if sl.Line != i+1 {
				return nil, errors.Errorf("invalid line number: %v (should be %v)", sl.Line, i+1)
			}

			result.Lines = append(result.Lines, sl.ToModel())
		}
	}

	return result, nil
}

// ListFileBlames returns all known files, without their lines.
func (s *gormStorage) ListFileBlames() ([]*model.FileBlame, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var sfs []*sqlFileBlame
	err := s.db.Find(&sfs).Error
	if err != nil {
		return nil, err
	}

	sort.Slice(sfs, func(i, j int) bool {
		return sfs[i].ID < sfs[j].ID
	})

	return lo.Map(sfs, func(sf *sqlFileBlame, _ int) *model.FileBlame { return sf.ToModel() }), nil
}

func (s *gormStorage) WriteFileBlame(blame *model.FileBlame) error {
	if !blame.Status.IsTerminal() {
		return errors.Errorf("%v: can't store blame with status %v", blame.Request.Path, blame.Status)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	sf := newSqlFileBlame(blame)

	sqlLines := make([]*sqlBlameLine, 0, len(blame.Lines))
	for i, l := range blame.Lines {
		sqlLines = append(sqlLines, newSqlBlameLine(sf.ID, i+1, l))
	}

	now := time.Now().Local()
	db := s.db.Session(&gorm.Session{
		NowFunc:         func() time.Time { return now },
		CreateBatchSize: 300,
	})

	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(sf).Error
		if err != nil {
			return err
		}

		if len(sqlLines) > 0 {
			err = tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&sqlLines).Error
			if err != nil {
				return err
			}
		}

		return tx.Where("file_id = ? and line > ?", sf.ID, len(sqlLines)).Delete(&sqlBlameLine{}).Error
	})
}

func (s *gormStorage) ListRootDirs() ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var result []string
	err := s.db.Model(&sqlFileBlame{}).Distinct().Order("root_dir").Pluck("root_dir", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *gormStorage) QueryBlamePerAuthor() ([]*storages.BlamePerAuthor, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var lines []*sqlBlameLine
	err := s.db.Select("file_id", "revision", "date", "author").Find(&lines).Error
	if err != nil {
		return nil, err
	}

	type authorStats struct {
		storages.BlamePerAuthor
		files     *set.Set[string]
		revisions *set.Set[string]
	}

	byAuthor := map[string]*authorStats{}
	for _, l := range lines {
		a, ok := byAuthor[l.Author]
		if !ok {
			a = &authorStats{
				BlamePerAuthor: storages.BlamePerAuthor{Author: l.Author},
				files:          set.New[string](10),
				revisions:      set.New[string](10),
			}
			byAuthor[l.Author] = a
		}

		a.Lines++
		a.files.Insert(l.FileID)
		a.revisions.Insert(l.Revision)

		if l.Date != nil {
			if a.FirstDate == nil || l.Date.Before(*a.FirstDate) {
				a.FirstDate = l.Date
			}
			if a.LastDate == nil || l.Date.After(*a.LastDate) {
				a.LastDate = l.Date
			}
		}
	}

	result := lo.MapToSlice(byAuthor, func(_ string, a *authorStats) *storages.BlamePerAuthor {
		a.Files = a.files.Size()
		a.Revisions = a.revisions.Size()
		return &a.BlamePerAuthor
	})

	sort.Slice(result, func(i, j int) bool {
		if result[i].Lines != result[j].Lines {
			return result[i].Lines > result[j].Lines
		}
		return result[i].Author < result[j].Author
	})

	return result, nil
}

func prepareChange[T sqlTable](byID *map[string]T, n T) bool {
	o, ok := (*byID)[n.CacheKey()]
	if ok {
		ro := reflect.Indirect(reflect.ValueOf(o))
		rn := reflect.Indirect(reflect.ValueOf(n))

		rn.FieldByName("CreatedAt").Set(ro.FieldByName("CreatedAt"))
		rn.FieldByName("UpdatedAt").Set(ro.FieldByName("UpdatedAt"))
	}

	if reflect.DeepEqual(n, o) {
		return false
	} else {
		(*byID)[n.CacheKey()] = n
		return true
	}
}
