package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
)

// Storage defines a unified interface for all storage operations
// This interface combines save slot persistence (Redis or SQLite) with script loading (filesystem)
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Save slot operations
	SaveGame(ctx context.Context, save *scenario.SaveData) error
	LoadGame(ctx context.Context, id uuid.UUID) (*scenario.SaveData, error)
	DeleteGame(ctx context.Context, id uuid.UUID) error
	ListGames(ctx context.Context) ([]uuid.UUID, error)

	// Script operations (filesystem-backed)
	ListScripts(ctx context.Context) (map[string]string, error)
	GetScript(ctx context.Context, filename string) (*scenario.Script, error)
}
