package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/blake2b"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
)

// SessionStore maps bearer tokens to the session they authenticate.
type SessionStore interface {
	Create(ctx context.Context, sess models.Session) (string, error)
	Validate(ctx context.Context, token string) (models.Session, bool, error)
	Invalidate(ctx context.Context, token string) error
}

func newSessionToken() (string, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(tokenBytes), nil
}

// sessionKey hashes the token so raw bearer tokens never reach Redis.
func sessionKey(token string) string {
	sum := blake2b.Sum256([]byte(token))
	return SessionKeyPrefix + hex.EncodeToString(sum[:])
}

// RedisSessionStore keeps sessions in Redis with a fixed 7-day TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: SessionDuration}
}

func (s *RedisSessionStore) Create(ctx context.Context, sess models.Session) (string, error) {
	if !sess.Valid() {
		return "", ErrNotAuthenticated
	}
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, sessionKey(token), data, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisSessionStore) Validate(ctx context.Context, token string) (models.Session, bool, error) {
	if token == "" {
		return models.Session{}, false, nil
	}

	data, err := s.client.Get(ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Session{}, false, nil
	}
	if err != nil {
		return models.Session{}, false, err
	}

	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return models.Session{}, false, err
	}
	return sess, sess.Valid(), nil
}

func (s *RedisSessionStore) Invalidate(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.client.Del(ctx, sessionKey(token)).Err()
}

type memorySession struct {
	sess      models.Session
	expiresAt time.Time
}

// MemorySessionStore is used in development and tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]memorySession
	now      func() time.Time
}

func NewMemorySessionStore(now func() time.Time) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
		now:      nowOrDefault(now),
	}
}

func (s *MemorySessionStore) Create(_ context.Context, sess models.Session) (string, error) {
	if !sess.Valid() {
		return "", ErrNotAuthenticated
	}
	token, err := newSessionToken()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionKey(token)] = memorySession{sess: sess, expiresAt: s.now().Add(SessionDuration)}
	return token, nil
}

func (s *MemorySessionStore) Validate(_ context.Context, token string) (models.Session, bool, error) {
	if token == "" {
		return models.Session{}, false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sessionKey(token)
	ms, ok := s.sessions[key]
	if !ok {
		return models.Session{}, false, nil
	}
	if !s.now().Before(ms.expiresAt) {
		delete(s.sessions, key)
		return models.Session{}, false, nil
	}
	return ms.sess, true, nil
}

func (s *MemorySessionStore) Invalidate(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(token))
	return nil
}
