// Package preferences persists the few per-user values that outlive a
// session. Theme is the only one today.
package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// KeyValueStore is the durable key-value capability.
type KeyValueStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// MemoryStore keeps values in process.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

func (m *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *MemoryStore) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// PostgresStore keeps values in a single key/value table.
type PostgresStore struct {
	db *sql.DB
}

const createTableSQL = `CREATE TABLE IF NOT EXISTS user_preferences (
	pref_key   TEXT PRIMARY KEY,
	pref_value TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Migrate creates the preferences table when missing.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("failed to create preferences table: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := p.db.QueryRowContext(ctx,
		`SELECT pref_value FROM user_preferences WHERE pref_key = $1`, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (p *PostgresStore) Set(ctx context.Context, key, value string) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO user_preferences (pref_key, pref_value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (pref_key) DO UPDATE SET pref_value = EXCLUDED.pref_value, updated_at = NOW()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// Theme values.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

var ErrUnknownTheme = errors.New("theme must be light or dark")

func themeKey(email string) string {
	return "theme:" + strings.ToLower(email)
}

// Theme returns the stored theme for a user, light when none was saved.
func Theme(ctx context.Context, store KeyValueStore, email string) (string, error) {
	v, ok, err := store.Get(ctx, themeKey(email))
	if err != nil {
		return ThemeLight, err
	}
	if !ok || (v != ThemeLight && v != ThemeDark) {
		return ThemeLight, nil
	}
	return v, nil
}

func SetTheme(ctx context.Context, store KeyValueStore, email, theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return ErrUnknownTheme
	}
	return store.Set(ctx, themeKey(email), theme)
}

// ToggleTheme flips the stored theme and returns the new value.
func ToggleTheme(ctx context.Context, store KeyValueStore, email string) (string, error) {
	current, err := Theme(ctx, store, email)
	if err != nil {
		return current, err
	}
	next := ThemeDark
	if current == ThemeDark {
		next = ThemeLight
	}
	return next, SetTheme(ctx, store, email, next)
}
