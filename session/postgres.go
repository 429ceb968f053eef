package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Sam1808/Fish-shop-bot/models"
)

// PostgresStore keeps session state in Postgres via GORM, for deployments
// that already run a database and do not want a separate Redis.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore opens the database and migrates the sessions table.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(&models.Session{}); err != nil {
		return nil, fmt.Errorf("migrate sessions: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Get returns the stored state, or ErrNotFound for a fresh chat.
func (s *PostgresStore) Get(ctx context.Context, chatID int64) (models.State, error) {
	var row models.Session
	err := s.db.WithContext(ctx).First(&row, "chat_id = ?", chatID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("select session: %w", err)
	}
	return models.State(row.State), nil
}

// Set upserts the chat's state.
func (s *PostgresStore) Set(ctx context.Context, chatID int64, state models.State) error {
	row := models.Session{ChatID: chatID, State: string(state), UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Ping reports store reachability for the health endpoint.
func (s *PostgresStore) Ping(ctx context.Context) error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.PingContext(ctx)
}
