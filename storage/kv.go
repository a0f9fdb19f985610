package storage

import (
	"errors"
	"os"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// KV is the persistence collaborator: a named entry per collection, each
// holding the serialized array of that collection. Writes are synchronous
// from the caller's point of view.
type KV interface {
	// Load returns the raw value for key; ok is false when the key is absent.
	Load(key string) (value []byte, ok bool, err error)
	// Save overwrites the value for key.
	Save(key string, value []byte) error
}

// Entry is one persisted collection.
type Entry struct {
	Key   string         `gorm:"primaryKey"`
	Value datatypes.JSON `gorm:"not null"`
}

func (Entry) TableName() string { return "kv_entries" }

type gormKV struct {
	db *gorm.DB
}

// Open connects to the configured backend. DATABASE_URL selects Postgres;
// otherwise a local SQLite file is used (SQLITE_PATH, default
// facturation.db), which is the expected single-device setup.
func Open(log zerolog.Logger) (KV, error) {
	var dialector gorm.Dialector
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		dialector = postgres.Open(dsn)
	} else {
		path := os.Getenv("SQLITE_PATH")
		if path == "" {
			path = "facturation.db"
		}
		dialector = sqlite.Open(path)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, err
	}

	log.Info().Str("dialect", db.Dialector.Name()).Msg("storage ready")
	return &gormKV{db: db}, nil
}

func (s *gormKV) Load(key string) ([]byte, bool, error) {
	var e Entry
	err := s.db.First(&e, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(e.Value), true, nil
}

func (s *gormKV) Save(key string, value []byte) error {
	e := Entry{Key: key, Value: datatypes.JSON(value)}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&e).Error
}
