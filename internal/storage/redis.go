package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"talentscope/internal/config"
	"talentscope/internal/constants"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned when a key is not found in Redis.
// It wraps the underlying redis.Nil error for abstraction.
var ErrNotFound = redis.Nil

// Redis wraps the Redis client.
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedis creates a Redis client with tracing instrumentation.
func NewRedis(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config cannot be nil")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,

		MaxRetries:      cfg.MaxRetries,
		MinRetryBackoff: time.Duration(cfg.MinRetryBackoffMS) * time.Millisecond,
		MaxRetryBackoff: time.Duration(cfg.MaxRetryBackoffMS) * time.Millisecond,

		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime: time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute,
	}

	client := redis.NewClient(opt)

	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("instrumenting Redis with OpenTelemetry: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connecting to Redis at %s: %w", cfg.Address, err)
	}

	return &Redis{
		Client: client,
		config: cfg,
	}, nil
}

// Close closes the Redis client connection.
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping checks the Redis connection.
func (r *Redis) Ping(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}

// ---- sessions ----

// SessionTTL returns the configured session lifetime.
func (r *Redis) SessionTTL() time.Duration {
	minutes := r.config.SessionTTLMinutes
	if minutes <= 0 {
		minutes = 720
	}
	return time.Duration(minutes) * time.Minute
}

// SetSession maps a session token to a user id with the configured TTL.
func (r *Redis) SetSession(ctx context.Context, token, userID string) error {
	key := fmt.Sprintf(constants.KeySession, token)
	return r.Client.Set(ctx, key, userID, r.SessionTTL()).Err()
}

// GetSession resolves a session token to a user id. Missing or expired
// tokens return ErrNotFound.
func (r *Redis) GetSession(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf(constants.KeySession, token)
	return r.Client.Get(ctx, key).Result()
}

// RefreshSession slides the session expiry forward.
func (r *Redis) RefreshSession(ctx context.Context, token string) error {
	key := fmt.Sprintf(constants.KeySession, token)
	return r.Client.Expire(ctx, key, r.SessionTTL()).Err()
}

// DeleteSession invalidates a session token.
func (r *Redis) DeleteSession(ctx context.Context, token string) error {
	key := fmt.Sprintf(constants.KeySession, token)
	return r.Client.Del(ctx, key).Err()
}

// ---- duplicate detection ----

// MD5ExpireDuration returns the configured lifetime of dedup records.
func (r *Redis) MD5ExpireDuration() time.Duration {
	days := r.config.MD5RecordExpireDays
	if days <= 0 {
		days = 365
	}
	return time.Duration(days) * 24 * time.Hour
}

// AddRawFileMD5 records a raw resume file hash in the dedup set and
// keeps the set's expiry without overwriting an existing one.
func (r *Redis) AddRawFileMD5(ctx context.Context, md5Hex string) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	pipe := r.Client.Pipeline()
	pipe.SAdd(ctx, constants.KeyFileMD5Set, md5Hex)
	pipe.ExpireNX(ctx, constants.KeyFileMD5Set, r.MD5ExpireDuration())
	_, err := pipe.Exec(ctx)
	return err
}

// CheckRawFileMD5Exists reports whether a raw file hash was seen before.
func (r *Redis) CheckRawFileMD5Exists(ctx context.Context, md5Hex string) (bool, error) {
	if r.Client == nil {
		return false, fmt.Errorf("redis client is not initialized")
	}
	return r.Client.SIsMember(ctx, constants.KeyFileMD5Set, md5Hex).Result()
}

// RemoveRawFileMD5 drops a raw file hash, used to roll back failed ingestions.
func (r *Redis) RemoveRawFileMD5(ctx context.Context, md5Hex string) error {
	return r.Client.SRem(ctx, constants.KeyFileMD5Set, md5Hex).Err()
}

// SetTextMD5Candidate maps an extracted-text hash to the candidate that
// first produced it.
func (r *Redis) SetTextMD5Candidate(ctx context.Context, md5Hex, candidateID string) error {
	key := fmt.Sprintf(constants.KeyTextMD5ToCandidate, md5Hex)
	return r.Client.Set(ctx, key, candidateID, r.MD5ExpireDuration()).Err()
}

// GetTextMD5Candidate resolves an extracted-text hash to a candidate id.
// An unseen hash returns ErrNotFound.
func (r *Redis) GetTextMD5Candidate(ctx context.Context, md5Hex string) (string, error) {
	key := fmt.Sprintf(constants.KeyTextMD5ToCandidate, md5Hex)
	return r.Client.Get(ctx, key).Result()
}

// ---- chatbot conversation history ----

// ChatMessage is one turn of a chatbot conversation.
type ChatMessage struct {
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// AppendChatMessage pushes one turn onto the user's history, trimming
// the list to the configured maximum.
func (r *Redis) AppendChatMessage(ctx context.Context, userID string, msg ChatMessage) error {
	key := fmt.Sprintf(constants.KeyChatHistory, userID)

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling chat message: %w", err)
	}

	max := int64(r.config.ChatHistoryMax)
	if max <= 0 {
		max = 20
	}

	pipe := r.Client.Pipeline()
	pipe.RPush(ctx, key, data)
	pipe.LTrim(ctx, key, -max, -1)
	pipe.Expire(ctx, key, r.SessionTTL())
	_, err = pipe.Exec(ctx)
	return err
}

// GetChatHistory returns the user's conversation turns, oldest first.
func (r *Redis) GetChatHistory(ctx context.Context, userID string) ([]ChatMessage, error) {
	key := fmt.Sprintf(constants.KeyChatHistory, userID)

	raw, err := r.Client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			continue // skip corrupt entries rather than failing the whole history
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ClearChatHistory wipes the user's conversation.
func (r *Redis) ClearChatHistory(ctx context.Context, userID string) error {
	key := fmt.Sprintf(constants.KeyChatHistory, userID)
	return r.Client.Del(ctx, key).Err()
}

// ---- dashboard cache ----

// CacheDashboardStats stores the serialized aggregate snapshot briefly.
func (r *Redis) CacheDashboardStats(ctx context.Context, payload []byte) error {
	seconds := r.config.StatsCacheSeconds
	if seconds <= 0 {
		seconds = 60
	}
	return r.Client.Set(ctx, constants.KeyDashboardStats, payload, time.Duration(seconds)*time.Second).Err()
}

// GetCachedDashboardStats returns the cached snapshot, or ErrNotFound.
func (r *Redis) GetCachedDashboardStats(ctx context.Context) ([]byte, error) {
	return r.Client.Get(ctx, constants.KeyDashboardStats).Bytes()
}
