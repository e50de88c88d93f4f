package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/jwebster45206/stage-engine/pkg/storage"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS save_slots (
	id         TEXT PRIMARY KEY,
	script     TEXT NOT NULL,
	step       INTEGER NOT NULL,
	properties TEXT NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStorage implements the Storage interface using a SQLite file for save
// slots and filesystem for scripts
type SQLiteStorage struct {
	db      *sql.DB
	logger  *slog.Logger
	scripts scriptDir
}

// Ensure SQLiteStorage implements Storage interface
var _ storage.Storage = (*SQLiteStorage)(nil)

// OpenSQLiteStorage opens (creating if needed) the save database at path.
func OpenSQLiteStorage(path string, dataDir string, logger *slog.Logger) (*SQLiteStorage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if dataDir == "" {
		dataDir = "./data"
	}

	return &SQLiteStorage{
		db:      db,
		logger:  logger,
		scripts: scriptDir{dataDir: dataDir, logger: logger},
	}, nil
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping failed: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) SaveGame(ctx context.Context, save *scenario.SaveData) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if save == nil {
		return errors.New("save data cannot be nil")
	}
	save.UpdatedAt = time.Now().UTC()

	props, err := json.Marshal(save.Properties)
	if err != nil {
		return fmt.Errorf("failed to marshal properties: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO save_slots (id, script, step, properties, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   script = excluded.script,
		   step = excluded.step,
		   properties = excluded.properties,
		   updated_at = excluded.updated_at`,
		save.ID.String(), save.Script, save.Step, string(props), save.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		s.logger.Error("Failed to save game", "uuid", save.ID, "error", err)
		return fmt.Errorf("failed to save game: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) LoadGame(ctx context.Context, id uuid.UUID) (*scenario.SaveData, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		save      = scenario.SaveData{ID: id}
		props     string
		updatedAt int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT script, step, properties, updated_at FROM save_slots WHERE id = ?`,
		id.String(),
	).Scan(&save.Script, &save.Step, &props, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Save not found", "uuid", id)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	if err := json.Unmarshal([]byte(props), &save.Properties); err != nil {
		return nil, fmt.Errorf("failed to unmarshal properties: %w", err)
	}
	save.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return &save, nil
}

func (s *SQLiteStorage) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM save_slots WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) ListGames(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM save_slots ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan save id: %w", err)
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			s.logger.Warn("Skipping malformed save id", "id", raw)
			continue
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLiteStorage) ListScripts(ctx context.Context) (map[string]string, error) {
	return s.scripts.listScripts()
}

func (s *SQLiteStorage) GetScript(ctx context.Context, filename string) (*scenario.Script, error) {
	return s.scripts.getScript(filename)
}
