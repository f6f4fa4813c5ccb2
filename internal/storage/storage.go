package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"talentscope/internal/config"
)

// Storage aggregates every storage backend the application talks to.
type Storage struct {
	// Object storage for resume files and extracted text.
	MinIO *MinIO

	// Message queue driving the bulk ingestion pipeline.
	RabbitMQ *RabbitMQ

	// Relational database.
	MySQL *MySQL

	// Key-value store for sessions, dedup records and caches.
	Redis *Redis
}

// NewStorage initializes every configured backend. A single backend
// failing to come up is logged and tolerated; only a full wipeout is
// fatal, so the API can still serve from whatever survived.
func NewStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	storage := &Storage{}
	var err error
	var initErrors []string

	var minioLogger *log.Logger
	if cfg.Logger.Level == "debug" {
		minioLogger = log.New(os.Stderr, "[MinIOStorage] ", log.LstdFlags|log.Lshortfile)
	} else {
		minioLogger = log.New(io.Discard, "", 0)
	}

	storage.MinIO, err = NewMinIO(&cfg.MinIO, minioLogger)
	if err != nil {
		log.Printf("warning: MinIO init failed: %v", err)
		initErrors = append(initErrors, fmt.Sprintf("MinIO: %v", err))
	}

	if cfg.RabbitMQ.URL != "" {
		storage.RabbitMQ, err = NewRabbitMQ(&cfg.RabbitMQ)
		if err != nil {
			log.Printf("warning: RabbitMQ init failed: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("RabbitMQ: %v", err))
		}
	}

	if cfg.MySQL.Host != "" {
		storage.MySQL, err = NewMySQL(&cfg.MySQL)
		if err != nil {
			log.Printf("warning: MySQL init failed: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("MySQL: %v", err))
		}
	}

	if cfg.Redis.Address != "" {
		storage.Redis, err = NewRedis(&cfg.Redis)
		if err != nil {
			log.Printf("warning: Redis init failed: %v", err)
			initErrors = append(initErrors, fmt.Sprintf("Redis: %v", err))
		}
	} else {
		log.Printf("Redis not configured, skipping")
	}

	if storage.MinIO == nil && storage.RabbitMQ == nil && storage.MySQL == nil && storage.Redis == nil {
		return nil, fmt.Errorf("all storage backends failed to initialize: %s", strings.Join(initErrors, "; "))
	}

	if len(initErrors) > 0 {
		log.Printf("warning: some storage backends failed to initialize: %s", strings.Join(initErrors, "; "))
	}

	return storage, nil
}

// Close tears down every open connection.
func (s *Storage) Close() {
	if s.RabbitMQ != nil {
		if err := s.RabbitMQ.Close(); err != nil {
			log.Printf("closing RabbitMQ connection: %v", err)
		}
	}

	if s.MySQL != nil {
		if err := s.MySQL.Close(); err != nil {
			log.Printf("closing MySQL connection: %v", err)
		}
	}

	if s.Redis != nil {
		if err := s.Redis.Close(); err != nil {
			log.Printf("closing Redis connection: %v", err)
		}
	}
	// The MinIO client keeps no long-lived connection worth closing.
}
