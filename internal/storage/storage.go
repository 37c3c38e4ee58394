package storage

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

// Storage keys for the persisted session fields. They mirror the fixed names
// used by the browser client this store replaces.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyRole  = "role"
)

// Item is a single persisted key/value pair.
type Item struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

func (Item) TableName() string {
	return "credentials"
}

// Store is the durable local key/value store backing the session. Writes are
// committed to the database file before returning.
type Store struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewStore(path string, logger *logrus.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	if err := db.AutoMigrate(&Item{}); err != nil {
		return nil, fmt.Errorf("failed to migrate credential store: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Set writes a value, replacing any existing one for the key.
func (s *Store) Set(key, value string) error {
	item := Item{Key: key, Value: value}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&item).Error
	if err != nil {
		return fmt.Errorf("failed to persist %q: %w", key, err)
	}
	return nil
}

// Get returns the value for key and whether it was present.
func (s *Store) Get(key string) (string, bool, error) {
	var item Item
	err := s.db.First(&item, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %q: %w", key, err)
	}
	return item.Value, true, nil
}

// Delete removes a key. Deleting a missing key is not an error.
func (s *Store) Delete(key string) error {
	if err := s.db.Delete(&Item{}, "key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete %q: %w", key, err)
	}
	return nil
}

// Clear erases every persisted field.
func (s *Store) Clear() error {
	if err := s.db.Where("1 = 1").Delete(&Item{}).Error; err != nil {
		return fmt.Errorf("failed to clear credential store: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
