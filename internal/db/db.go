package db

import (
	"context"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/xDhruboVai/BRACU-Student-Routine-Management-System/internal/models"
)

// Store owns the database handle. Every public operation opens one
// transaction, performs its reads/writes and commits or rolls back before
// returning; nothing is held across calls.
type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the schema.
func Open(dsn string) (*Store, error) {
	return New(postgres.Open(dsn))
}

// New builds a Store on any gorm dialector. Tests use this with sqlite.
func New(dialector gorm.Dialector) (*Store, error) {
	gdb, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	err = gdb.AutoMigrate(
		&models.User{},
		&models.Student{},
		&models.Faculty{},
		&models.Classroom{},
		&models.Enrollment{},
		&models.Teaching{},
		&models.Course{},
		&models.AssessmentGroup{},
		&models.Mark{},
		&models.MarkAttribution{},
		&models.Event{},
		&models.EventClassroomLink{},
		&models.Resource{},
		&models.ResourceUploadLink{},
		&models.OtpChallenge{},
	)
	if err != nil {
		return nil, err
	}

	log.Println("✅ Database connected and migrated")
	return &Store{db: gdb}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func (s *Store) tx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
