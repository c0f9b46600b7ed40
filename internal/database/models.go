package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Session stores the Google OAuth2 grant backing one browser session. The
// session row is the only artifact this system persists; file bytes and
// listings are always fetched fresh.
type Session struct {
	ID           string    `json:"id" gorm:"primarykey;size:36"`
	AccessToken  string    `json:"access_token" gorm:"not null"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type" gorm:"default:Bearer"`
	Expiry       time.Time `json:"expiry"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Session) TableName() string {
	return "dv_sessions"
}

// AutoMigrate creates or updates the database schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Session{})
}

// ServiceMySQLConfig represents MySQL database configuration for the
// database service.
type ServiceMySQLConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// Validate validates the MySQL configuration.
func (c *ServiceMySQLConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("host is required")
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.User == "" {
		return fmt.Errorf("user is required")
	}
	if c.Database == "" {
		return fmt.Errorf("database is required")
	}
	return nil
}
