package kvstore

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	ledger "github.com/belisario-afk/cakepop-ledger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Entry is one row of the kv_entries table.
type Entry struct {
	Key       string `gorm:"primaryKey;size:255"`
	Value     []byte
	UpdatedAt time.Time
}

func (Entry) TableName() string { return "kv_entries" }

// SQL stores keys in a single table of a SQL database.
type SQL struct {
	db *gorm.DB
}

// OpenSQL connects to the database behind dialector and creates the table if needed.
func OpenSQL(dialector gorm.Dialector) (*SQL, error) {
	gormLogger := logger.New(
		log.New(os.Stderr, "[gorm] ", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("cannot create kv table: %w", err)
	}
	return &SQL{db: db}, nil
}

func (s *SQL) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, ledger.ErrNotFound // a zero Entry condition would match any row
	}
	var e Entry
	err := s.db.Where(&Entry{Key: key}).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ledger.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read %q: %w", key, err)
	}
	return e.Value, nil
}

func (s *SQL) Set(key string, value []byte) error {
	e := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&e).Error
	if err != nil {
		return fmt.Errorf("cannot write %q: %w", key, err)
	}
	return nil
}

func (s *SQL) Delete(key string) error {
	if key == "" {
		return nil
	}
	if err := s.db.Delete(&Entry{Key: key}).Error; err != nil {
		return fmt.Errorf("cannot delete %q: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys in sorted order.
func (s *SQL) Keys() ([]string, error) {
	var keys []string
	if err := s.db.Model(&Entry{}).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Pluck("key", &keys).Error; err != nil {
		return nil, fmt.Errorf("cannot list keys: %w", err)
	}
	return keys, nil
}

// Close releases the database connection.
func (s *SQL) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
