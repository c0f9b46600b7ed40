package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	driveview "github.com/vfa-khuongdv/driveview"
)

type envConfig struct {
	GoogleClientID     string `envconfig:"GOOGLE_CLIENT_ID" required:"true"`
	GoogleClientSecret string `envconfig:"GOOGLE_CLIENT_SECRET" required:"true"`
	OAuthRedirectURL   string `envconfig:"OAUTH_REDIRECT_URL" default:"http://localhost:8080/auth/callback"`
	SessionSecret      string `envconfig:"SESSION_SECRET" required:"true"`
	ListenAddr         string `envconfig:"LISTEN_ADDR" default:":8080"`

	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"3306"`
	DBUser     string `envconfig:"DB_USER" default:"driveview"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"driveview"`

	PurgeSchedule   string `envconfig:"PURGE_SCHEDULE" default:"0 0 3 * * *"`
	SlackWebhookURL string `envconfig:"SLACK_WEBHOOK_URL"`
	SlackChannel    string `envconfig:"SLACK_CHANNEL"`
}

func main() {
	_ = godotenv.Load()

	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	manager, err := driveview.NewManager(&driveview.Config{
		ClientID:       env.GoogleClientID,
		ClientSecret:   env.GoogleClientSecret,
		RedirectURL:    env.OAuthRedirectURL,
		SessionSecret:  env.SessionSecret,
		ListenAddr:     env.ListenAddr,
		DatabaseConfig: driveview.NewMySQLConfig(env.DBHost, env.DBPort, env.DBUser, env.DBPassword, env.DBName),
		PurgeSchedule:  env.PurgeSchedule,

		SlackWebhookURL: env.SlackWebhookURL,
		SlackChannel:    env.SlackChannel,
	})
	if err != nil {
		log.Fatalf("Failed to initialize viewer: %v", err)
	}

	// Shut down cleanly on Ctrl-C or SIGTERM
	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := manager.Stop(ctx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := manager.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
