package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/stage-engine/internal/config"
	"github.com/jwebster45206/stage-engine/internal/logger"
	internalstorage "github.com/jwebster45206/stage-engine/internal/storage"
	"github.com/jwebster45206/stage-engine/pkg/assets"
	"github.com/jwebster45206/stage-engine/pkg/command"
	"github.com/jwebster45206/stage-engine/pkg/engine"
	"github.com/jwebster45206/stage-engine/pkg/presentation"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/jwebster45206/stage-engine/pkg/storage"
)

// app holds the collaborators shared by every subcommand.
type app struct {
	log      *slog.Logger
	store    storage.Storage
	assets   command.AssetResolver
	registry *command.Registry
	out      io.Writer
}

// openApp loads config from the environment and connects to storage.
func openApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.Setup(cfg)

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	log.Debug("Storage connection established", "backend", cfg.StorageBackend)

	return &app{
		log:      log,
		store:    store,
		assets:   assets.NewDirResolver(cfg.AssetDir, log),
		registry: command.DefaultRegistry(),
		out:      out,
	}, nil
}

// openStorage opens the configured backend and checks it is reachable. Redis
// gets a few attempts since it is often started alongside the CLI.
func openStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, error) {
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		store, err := internalstorage.OpenSQLiteStorage(cfg.SQLitePath, cfg.DataDir, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite storage: %w", err)
		}
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		return store, nil
	default:
		store, err := internalstorage.NewRedisStorage(cfg.RedisURL, cfg.DataDir, cfg.SaveTTL, log)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis storage: %w", err)
		}
		if err := store.WaitForConnection(ctx, cfg.RedisAttempts, cfg.RedisDelay); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to connect to storage: %w", err)
		}
		return store, nil
	}
}

func (a *app) Close() error {
	return a.store.Close()
}

// stage builds a fresh widget for script and an engine bound to it.
func (a *app) stage(script *scenario.Script) (*engine.Engine, *presentation.Widget) {
	widget := presentation.NewWidgetFromStage(script.Stage)
	return engine.New(a.registry, widget, a.assets, a.log), widget
}

func (a *app) runScript(ctx context.Context, filename string, save bool) (*scenario.SaveData, *presentation.Widget, error) {
	script, err := a.store.GetScript(ctx, filename)
	if err != nil {
		return nil, nil, err
	}

	eng, widget := a.stage(script)
	steps, runErr := eng.Run(ctx, script)

	data := eng.Snapshot(scenario.NewSaveData(script.FileName), steps)
	if save && runErr == nil {
		if err := a.store.SaveGame(ctx, data); err != nil {
			return nil, widget, err
		}
		logger.WithSaveID(a.log, data.ID).Info("Game saved", "script", script.FileName, "steps", steps)
	}
	return data, widget, runErr
}

func (a *app) previewScript(ctx context.Context, filename string, step int) (*presentation.Widget, error) {
	script, err := a.store.GetScript(ctx, filename)
	if err != nil {
		return nil, err
	}
	if step < 0 {
		step = len(script.Commands) - 1
	}

	eng, widget := a.stage(script)
	return widget, eng.Preview(script, step)
}

func (a *app) restoreGame(ctx context.Context, id uuid.UUID) (*scenario.SaveData, *presentation.Widget, error) {
	data, err := a.store.LoadGame(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if data == nil {
		return nil, nil, fmt.Errorf("save %s not found", id)
	}

	script, err := a.store.GetScript(ctx, data.Script)
	if err != nil {
		return data, nil, err
	}

	log := logger.WithSaveID(a.log, id)
	eng, widget := a.stage(script)
	if err := eng.Restore(ctx, data); err != nil {
		logger.WithError(log, err).Warn("Save could not be restored", "script", script.FileName)
		return data, widget, err
	}
	log.Info("Save restored", "script", script.FileName, "properties", len(data.Properties))
	return data, widget, nil
}
