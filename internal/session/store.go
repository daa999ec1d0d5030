package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"

	"storedash/internal/repository"
)

// TokenKey is the fixed name the token is persisted under.
const TokenKey = "cysb_token"

// TokenStore persists the operator's bearer token between runs.
// Get returns "" when nothing is stored.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// ── memory ────────────────────────────────────────────────────────────

type memoryStore struct {
	mu    sync.Mutex
	token string
}

// NewMemoryStore keeps the token for the process lifetime only.
func NewMemoryStore() TokenStore {
	return &memoryStore{}
}

func (s *memoryStore) Get(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memoryStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *memoryStore) Clear(_ context.Context) error {
	return s.Set(context.Background(), "")
}

// ── file ──────────────────────────────────────────────────────────────

type fileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore keeps the token in a single 0600 file.
func NewFileStore(path string) TokenStore {
	return &fileStore{path: path}
}

func (s *fileStore) Get(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *fileStore) Set(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

func (s *fileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// ── redis ─────────────────────────────────────────────────────────────

type redisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore keeps the token under storedash:<TokenKey>.
func NewRedisStore(client *redis.Client) TokenStore {
	return &redisStore{client: client, key: "storedash:" + TokenKey}
}

func (s *redisStore) Get(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get token: %w", err)
	}
	return strings.TrimSpace(token), nil
}

func (s *redisStore) Set(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set token: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis clear token: %w", err)
	}
	return nil
}

// ── sql ───────────────────────────────────────────────────────────────

type settingStore struct {
	repo *repository.SettingRepository
}

// NewSettingStore keeps the token in the dashboard_settings table.
func NewSettingStore(repo *repository.SettingRepository) TokenStore {
	return &settingStore{repo: repo}
}

func (s *settingStore) Get(ctx context.Context) (string, error) {
	token, err := s.repo.Get(ctx, TokenKey)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *settingStore) Set(ctx context.Context, token string) error {
	return s.repo.Set(ctx, TokenKey, token)
}

func (s *settingStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, TokenKey)
}
