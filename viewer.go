// Package driveview assembles a secure read-only viewer backend for Google
// Drive: OAuth sign-in, allowlist-filtered folder listings, and a streaming
// proxy that answers HTTP range requests over Drive's whole-file download
// API.
package driveview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vfa-khuongdv/driveview/internal/auth"
	"github.com/vfa-khuongdv/driveview/internal/database"
	"github.com/vfa-khuongdv/driveview/internal/listing"
	"github.com/vfa-khuongdv/driveview/internal/scheduler"
	"github.com/vfa-khuongdv/driveview/internal/server"
	"github.com/vfa-khuongdv/driveview/internal/stream"
	"github.com/vfa-khuongdv/driveview/pkg/gdrive"
	"github.com/vfa-khuongdv/driveview/pkg/notification"
)

// Manager is the main entry point wiring storage, auth, the Drive gateway
// and the HTTP server together.
type Manager struct {
	dbService        *database.Service
	authService      *auth.Service
	driveService     *gdrive.Service
	serverService    *server.Server
	schedulerService *scheduler.Service
	config           *Config
}

// Config holds the configuration for the viewer manager
type Config struct {
	// Google OAuth2 credentials
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// SessionSecret signs browser session cookies; must be stable across
	// restarts
	SessionSecret string

	// ListenAddr is the HTTP listen address (default ":8080")
	ListenAddr string

	// MySQL database configuration for storing sessions
	DatabaseConfig *database.ServiceMySQLConfig

	// PurgeSchedule is a cron expression (with seconds) for expired-session
	// cleanup (default daily at 3 AM)
	PurgeSchedule string

	// SessionRetention is how long expired grants are kept before purging
	// (default 7 days)
	SessionRetention time.Duration

	// Optional Slack-compatible webhook for maintenance notifications
	SlackWebhookURL string
	SlackChannel    string

	// Logger for the HTTP layer (default slog.Default())
	Logger *slog.Logger
}

// NewMySQLConfig creates a new MySQL configuration
func NewMySQLConfig(host, port, user, password, db string) *database.ServiceMySQLConfig {
	return &database.ServiceMySQLConfig{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		Database: db,
	}
}

// NewManager creates a new viewer manager instance
func NewManager(config *Config) (*Manager, error) {
	if config == nil {
		return nil, fmt.Errorf("configuration is required")
	}

	if config.ClientID == "" || config.ClientSecret == "" || config.RedirectURL == "" {
		return nil, fmt.Errorf("google OAuth2 ClientID, ClientSecret, and RedirectURL are required")
	}

	if config.SessionSecret == "" {
		return nil, fmt.Errorf("session secret is required")
	}

	if config.DatabaseConfig == nil {
		return nil, fmt.Errorf("MySQL configuration is required")
	}

	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.PurgeSchedule == "" {
		config.PurgeSchedule = "0 0 3 * * *"
	}
	if config.SessionRetention <= 0 {
		config.SessionRetention = 7 * 24 * time.Hour
	}

	dbService, err := database.NewService(config.DatabaseConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database service: %w", err)
	}

	authService := auth.NewService(
		config.ClientID,
		config.ClientSecret,
		config.RedirectURL,
		[]byte(config.SessionSecret),
		dbService,
	)

	driveService := gdrive.NewService()
	listingService := listing.NewService(driveService)
	streamService := stream.NewTranslator(driveService)

	serverService := server.New(config.ListenAddr, authService, listingService, streamService, config.Logger)

	var notifier notification.Notifier
	if config.SlackWebhookURL != "" {
		notifier = notification.NewSlackNotifier(config.SlackWebhookURL, config.SlackChannel)
	}

	schedulerService := scheduler.NewService(dbService, notifier, config.SessionRetention)
	if err := schedulerService.Schedule(config.PurgeSchedule); err != nil {
		return nil, err
	}

	return &Manager{
		dbService:        dbService,
		authService:      authService,
		driveService:     driveService,
		serverService:    serverService,
		schedulerService: schedulerService,
		config:           config,
	}, nil
}

// Start runs the maintenance scheduler and the HTTP server, blocking until
// the server stops.
func (m *Manager) Start() error {
	m.schedulerService.Start()
	return m.serverService.Start()
}

// Stop shuts everything down in reverse order of Start.
func (m *Manager) Stop(ctx context.Context) error {
	m.schedulerService.Stop()
	if err := m.serverService.Shutdown(ctx); err != nil {
		return err
	}
	return m.dbService.Close()
}
