package storage

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/jwebster45206/stage-engine/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func writeScripts(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	scriptsDir := filepath.Join(dataDir, "scripts")
	require.NoError(t, os.MkdirAll(scriptsDir, 0755))

	require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, "intro.json"), []byte(`{
		"name": "Intro",
		"stage": {"images": [{"name": "Portrait", "material": "dynamic"}]},
		"commands": [{"command": "ChangeTextureParameter", "args": {"Target": "Image"}}]
	}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, "finale.yaml"), []byte("name: Finale\ncommands: []\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, "broken.json"), []byte(`{not json`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(scriptsDir, "notes.txt"), []byte("ignored"), 0644))
	return dataDir
}

func setupRedis(t *testing.T, ttl time.Duration) (*RedisStorage, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	s, err := NewRedisStorage(mr.Addr(), writeScripts(t), ttl, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func setupSQLite(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := OpenSQLiteStorage(filepath.Join(t.TempDir(), "saves.db"), writeScripts(t), testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleSave() *scenario.SaveData {
	save := scenario.NewSaveData("intro.json")
	save.Step = 2
	save.Properties = []scenario.Property{
		{Namespace: "ChangeTextureParameter", Key: `Image::Scene\:Left::BaseColor`, Value: "/Game/T_Face"},
		{Namespace: "ChangeTextureParameter", Key: "RetainerBox::Blur::Mask", Value: "None"},
	}
	return save
}

// exerciseSaves runs the same save slot checks against any backend.
func exerciseSaves(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))

	save := sampleSave()
	require.NoError(t, s.SaveGame(ctx, save))
	assert.False(t, save.UpdatedAt.IsZero())

	loaded, err := s.LoadGame(ctx, save.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, save.ID, loaded.ID)
	assert.Equal(t, "intro.json", loaded.Script)
	assert.Equal(t, 2, loaded.Step)
	assert.Equal(t, save.Properties, loaded.Properties)

	save.Step = 3
	require.NoError(t, s.SaveGame(ctx, save))
	loaded, err = s.LoadGame(ctx, save.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Step)

	other := sampleSave()
	require.NoError(t, s.SaveGame(ctx, other))
	ids, err := s.ListGames(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{save.ID, other.ID}, ids)

	require.NoError(t, s.DeleteGame(ctx, save.ID))
	loaded, err = s.LoadGame(ctx, save.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	missing, err := s.LoadGame(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	assert.Error(t, s.SaveGame(ctx, nil))
}

func exerciseScripts(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	scripts, err := s.ListScripts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"Intro": "intro.json", "Finale": "finale.yaml"}, scripts)

	script, err := s.GetScript(ctx, "intro.json")
	require.NoError(t, err)
	assert.Equal(t, "Intro", script.Name)
	assert.Equal(t, "intro.json", script.FileName)
	assert.Len(t, script.Commands, 1)

	_, err = s.GetScript(ctx, "nope.json")
	assert.ErrorContains(t, err, "script not found")

	_, err = s.GetScript(ctx, "broken.json")
	assert.Error(t, err)
}

func TestRedisStorage_Saves(t *testing.T) {
	s, _ := setupRedis(t, 0)
	exerciseSaves(t, s)
}

func TestRedisStorage_Scripts(t *testing.T) {
	s, _ := setupRedis(t, 0)
	exerciseScripts(t, s)
}

func TestRedisStorage_TTL(t *testing.T) {
	s, mr := setupRedis(t, time.Minute)
	ctx := context.Background()

	save := sampleSave()
	require.NoError(t, s.SaveGame(ctx, save))
	assert.Equal(t, time.Minute, mr.TTL(saveKey(save.ID)))

	mr.FastForward(2 * time.Minute)
	loaded, err := s.LoadGame(ctx, save.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_ListGamesSkipsForeignKeys(t *testing.T) {
	s, mr := setupRedis(t, 0)
	require.NoError(t, mr.Set("save:not-a-uuid", "{}"))
	require.NoError(t, mr.Set("other:key", "x"))

	save := sampleSave()
	require.NoError(t, s.SaveGame(context.Background(), save))

	ids, err := s.ListGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{save.ID}, ids)
}

func TestRedisStorage_CorruptSave(t *testing.T) {
	s, mr := setupRedis(t, 0)
	id := uuid.New()
	require.NoError(t, mr.Set(saveKey(id), "{broken"))

	_, err := s.LoadGame(context.Background(), id)
	assert.ErrorContains(t, err, "failed to unmarshal save data")
}

func TestRedisStorage_URL(t *testing.T) {
	mr := miniredis.RunT(t)
	s, err := NewRedisStorage("redis://"+mr.Addr(), "", 0, testLogger())
	require.NoError(t, err)
	defer s.Close()
	assert.NoError(t, s.Ping(context.Background()))

	_, err = NewRedisStorage("redis://%zz", "", 0, testLogger())
	assert.Error(t, err)
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	s, mr := setupRedis(t, 0)
	ctx := context.Background()

	require.NoError(t, s.WaitForConnection(ctx, 1, time.Millisecond))

	mr.SetError("ERR server not ready")
	err := s.WaitForConnection(ctx, 3, time.Millisecond)
	assert.ErrorContains(t, err, "redis unavailable after 3 attempts")

	// Comes back while we are still retrying.
	time.AfterFunc(30*time.Millisecond, func() { mr.SetError("") })
	assert.NoError(t, s.WaitForConnection(ctx, 100, 10*time.Millisecond))
}

func TestRedisStorage_WaitForConnectionCancelled(t *testing.T) {
	s, mr := setupRedis(t, 0)
	mr.SetError("ERR server not ready")

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	err := s.WaitForConnection(ctx, 10, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Minute)
}

func TestSQLiteStorage_Saves(t *testing.T) {
	exerciseSaves(t, setupSQLite(t))
}

func TestSQLiteStorage_Scripts(t *testing.T) {
	exerciseScripts(t, setupSQLite(t))
}

func TestSQLiteStorage_RequiresPath(t *testing.T) {
	_, err := OpenSQLiteStorage("  ", "", testLogger())
	assert.ErrorContains(t, err, "storage path is required")
}

func TestSQLiteStorage_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saves.db")
	s, err := OpenSQLiteStorage(path, "", testLogger())
	require.NoError(t, err)

	save := sampleSave()
	require.NoError(t, s.SaveGame(context.Background(), save))
	require.NoError(t, s.Close())

	s, err = OpenSQLiteStorage(path, "", testLogger())
	require.NoError(t, err)
	defer s.Close()

	loaded, err := s.LoadGame(context.Background(), save.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, save.Properties, loaded.Properties)
}
