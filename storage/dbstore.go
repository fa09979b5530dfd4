package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type LogLevel int

const (
	LogLevelSilent LogLevel = iota + 1
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

type Entry struct {
	Key       string    `gorm:"primaryKey;size:191;column:entry_key"`
	Value     string    `gorm:"type:text;not null;column:entry_value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Entry) TableName() string {
	return "ess_kv_entries"
}

// DBStore is a Store backed by a single gorm table.
type DBStore struct {
	DB *gorm.DB
}

func dialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case DriverSQLite:
		return sqlite.Open(dsn), nil
	case DriverMySQL:
		return mysql.Open(dsn), nil
	case DriverPostgres:
		return postgres.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", driver)
}

// OpenDB opens the store and migrates its table.
func OpenDB(driver, dsn string, level LogLevel) (*DBStore, error) {
	d, err := dialector(driver, dsn)
	if err != nil {
		return nil, err
	}

	// Map local LogLevel to GORM LogLevel
	gormLogLevel := logger.Silent
	switch level {
	case LogLevelError:
		gormLogLevel = logger.Error
	case LogLevelWarn:
		gormLogLevel = logger.Warn
	case LogLevelInfo:
		gormLogLevel = logger.Info
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == DriverSQLite {
		// an in-memory sqlite database exists per connection
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(5)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}

	return &DBStore{DB: db}, nil
}

// Open returns the Store selected by driver.
func Open(driver, dsn string, level LogLevel) (Store, func() error, error) {
	if driver == DriverMemory {
		return NewMemoryStore(), func() error { return nil }, nil
	}
	s, err := OpenDB(driver, dsn, level)
	if err != nil {
		return nil, nil, err
	}
	return s, s.Close, nil
}

func (s *DBStore) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *DBStore) Get(ctx context.Context, key string) (string, error) {
	var entry Entry
	err := s.DB.WithContext(ctx).Where(&Entry{Key: key}).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return entry.Value, nil
}

func (s *DBStore) Set(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entry_key"}}, // conflict key
		DoUpdates: clause.AssignmentColumns([]string{"entry_value", "updated_at"}),
	}).Create(&entry).Error
}

func (s *DBStore) Delete(ctx context.Context, key string) error {
	return s.DB.WithContext(ctx).Delete(&Entry{Key: key}).Error
}
