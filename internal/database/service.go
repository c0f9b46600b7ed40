package database

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// ErrSessionNotFound is returned when no session exists for an id.
var ErrSessionNotFound = errors.New("database: session not found")

type Service struct {
	db *gorm.DB
}

// NewService creates a new database service using ServiceMySQLConfig
func NewService(config *ServiceMySQLConfig) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("MySQL configuration is required")
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid MySQL configuration: %w", err)
	}

	// Build MySQL DSN (Data Source Name)
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		config.User, config.Password, config.Host, config.Port, config.Database)

	// Connect to MySQL database
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	service := &Service{db: db}

	// Auto-migrate models
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return service, nil
}

// GetDB returns the database instance
func (s *Service) GetDB() *gorm.DB {
	return s.db
}

// CreateSession persists a new session record.
func (s *Service) CreateSession(session *Session) error {
	return s.db.Create(session).Error
}

// GetSession retrieves a session by id.
func (s *Service) GetSession(id string) (*Session, error) {
	var session Session
	if err := s.db.Where("id = ?", id).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// SaveSession updates an existing session record, typically after a token
// refresh.
func (s *Service) SaveSession(session *Session) error {
	return s.db.Save(session).Error
}

// DeleteSession removes a session by id. Deleting a missing session is not
// an error.
func (s *Service) DeleteSession(id string) error {
	return s.db.Where("id = ?", id).Delete(&Session{}).Error
}

// DeleteSessionsExpiredBefore removes sessions whose token expiry is older
// than the cutoff and returns how many were removed. A purged user simply
// signs in again.
func (s *Service) DeleteSessionsExpiredBefore(cutoff time.Time) (int64, error) {
	res := s.db.Where("expiry < ?", cutoff).Delete(&Session{})
	return res.RowsAffected, res.Error
}

// Close closes the database connection
func (s *Service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
