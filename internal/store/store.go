// Package store persists player settings and run history in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Garsondee/Rail-Shooter/internal/game"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const settingsID = 1

// Store wraps the database connection.
type Store struct {
	DB     *gorm.DB
	SqlDB  *sql.DB
	Path   string
	Logger zerolog.Logger
}

// Open connects to the SQLite file at path, or to a private in-memory
// database when path is empty, and migrates the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	dsn := path
	if path == "" {
		dsn = "file::memory:"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql interface: %w", err)
	}
	if path == "" {
		// every new connection to :memory: is a fresh empty database
		sqlDB.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA user_version = 1;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA temp_store = MEMORY;",
	}
	for _, pragma := range pragmas {
		if err := db.Exec(pragma).Error; err != nil {
			return nil, fmt.Errorf("error setting PRAGMA: %w", err)
		}
	}

	s := &Store{DB: db, SqlDB: sqlDB, Path: path, Logger: log}
	if err := s.Setup(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if path == "" {
		log.Info().Msg("Using in-memory SQLite DB")
	} else {
		log.Info().Str("path", path).Msg("Using local SQLite DB")
	}
	return s, nil
}

// Setup migrates tables and creates the settings row if it doesn't exist.
func (s *Store) Setup() error {
	if err := s.DB.AutoMigrate(Models...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	var count int64
	if err := s.DB.Model(&Settings{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count settings: %w", err)
	}
	if count == 0 {
		def := Settings{ID: settingsID, InvertY: game.DefaultAimConfig().InvertY}
		if err := s.DB.Create(&def).Error; err != nil {
			return fmt.Errorf("failed to create settings entry: %w", err)
		}
	}
	return nil
}

// Close releases the connection.
func (s *Store) Close() error {
	return s.SqlDB.Close()
}

// LoadSettings returns the stored settings.
func (s *Store) LoadSettings() (Settings, error) {
	var st Settings
	if err := s.DB.First(&st, settingsID).Error; err != nil {
		return Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return st, nil
}

// SaveSettings overwrites the stored settings.
func (s *Store) SaveSettings(st Settings) error {
	st.ID = settingsID
	if err := s.DB.Save(&st).Error; err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// SetInvertY stores the invert-Y option and reports whether it changed.
func (s *Store) SetInvertY(inverted bool) (bool, error) {
	st, err := s.LoadSettings()
	if err != nil {
		return false, err
	}
	if st.InvertY == inverted {
		return false, nil
	}
	st.InvertY = inverted
	if err := s.SaveSettings(st); err != nil {
		return false, err
	}
	s.Logger.Info().Bool("invertY", inverted).Msg("Inverted Y-axis changed")
	return true, nil
}

// RecordRun stores a finished session.
func (s *Store) RecordRun(course string, seed int64, sum game.RunSummary) (RunResult, error) {
	r := RunResult{
		Course:          course,
		Seed:            seed,
		Outcome:         sum.Outcome.String(),
		Rings:           sum.Rings,
		Score:           sum.Score,
		ShotsFired:      sum.ShotsFired,
		EnemiesDefeated: sum.EnemiesDefeated,
		Elapsed:         sum.Elapsed,
		Distance:        sum.Distance,
		PathLength:      sum.PathLength,
	}
	if err := s.DB.Create(&r).Error; err != nil {
		return RunResult{}, fmt.Errorf("recording run: %w", err)
	}
	return r, nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(n int) ([]RunResult, error) {
	var runs []RunResult
	if err := s.DB.Order("id desc").Limit(n).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Best returns the highest scoring run on course; ties go to the earlier run.
func (s *Store) Best(course string) (RunResult, bool, error) {
	var r RunResult
	err := s.DB.Where("course = ?", course).Order("score desc").Order("id asc").First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RunResult{}, false, nil
	}
	if err != nil {
		return RunResult{}, false, fmt.Errorf("finding best run: %w", err)
	}
	return r, true, nil
}
