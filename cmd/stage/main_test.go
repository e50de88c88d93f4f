package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jwebster45206/stage-engine/internal/config"
	"github.com/jwebster45206/stage-engine/pkg/assets"
	"github.com/jwebster45206/stage-engine/pkg/command"
	"github.com/jwebster45206/stage-engine/pkg/scenario"
	"github.com/jwebster45206/stage-engine/pkg/storage"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00, 0x00, 0x0D}

func introScript() *scenario.Script {
	return &scenario.Script{
		Name:     "Intro",
		FileName: "intro.json",
		Stage: scenario.Stage{
			Images: []scenario.ImageSpec{{Name: "Portrait", Material: "dynamic"}},
		},
		Commands: []scenario.Command{
			{Name: command.ChangeTextureParameterName, Args: map[string]string{
				"Target": "Image", "TargetName": "Portrait", "ParameterName": "BaseColor", "Texture": "/Game/T_Face",
			}},
		},
	}
}

func useTestApp(t *testing.T) *storage.MockStorage {
	t.Helper()
	return useTestAppLogging(t, io.Discard)
}

func useTestAppLogging(t *testing.T, logs io.Writer) *storage.MockStorage {
	t.Helper()
	store := storage.NewMockStorage()
	store.AddScript("intro.json", introScript())

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/Game/T_Face.png", pngBytes, 0644))
	log := slog.New(slog.NewTextHandler(logs, nil))

	prev := appFactory
	appFactory = func(ctx context.Context, out io.Writer) (*app, error) {
		return &app{
			log:      log,
			store:    store,
			assets:   assets.NewResolver(fs, log),
			registry: command.DefaultRegistry(),
			out:      out,
		}, nil
	}
	t.Cleanup(func() { appFactory = prev })
	return store
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRunThenRestore(t *testing.T) {
	store := useTestApp(t)

	out, err := execute(t, "run", "intro.json")
	require.NoError(t, err)
	assert.Contains(t, out, "BaseColor=/Game/T_Face")

	ids, err := store.ListGames(context.Background())
	require.NoError(t, err)
	require.Len(t, ids, 1)

	save, err := store.LoadGame(context.Background(), ids[0])
	require.NoError(t, err)
	assert.Equal(t, []scenario.Property{{
		Namespace: command.ChangeTextureParameterName,
		Key:       "Image::Portrait::BaseColor",
		Value:     "/Game/T_Face",
	}}, save.Properties)

	out, err = execute(t, "restore", ids[0].String())
	require.NoError(t, err)
	assert.Contains(t, out, "BaseColor=/Game/T_Face")
	assert.Contains(t, out, "Restored 1 properties from intro.json")

	out, err = execute(t, "saves")
	require.NoError(t, err)
	assert.Contains(t, out, ids[0].String())

	_, err = execute(t, "delete", ids[0].String())
	require.NoError(t, err)
	ids, _ = store.ListGames(context.Background())
	assert.Empty(t, ids)
}

func TestSaveIDIsLogged(t *testing.T) {
	var logs bytes.Buffer
	store := useTestAppLogging(t, &logs)

	_, err := execute(t, "run", "intro.json")
	require.NoError(t, err)
	ids, _ := store.ListGames(context.Background())
	require.Len(t, ids, 1)
	assert.Contains(t, logs.String(), "msg=\"Game saved\" save_id="+ids[0].String())

	logs.Reset()
	_, err = execute(t, "restore", ids[0].String())
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "msg=\"Save restored\" save_id="+ids[0].String())
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		StorageBackend: config.BackendRedis,
		RedisURL:       mr.Addr(),
		RedisAttempts:  2,
		RedisDelay:     time.Millisecond,
		DataDir:        t.TempDir(),
	}
	store, err := openStorage(ctx, cfg, log)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	mr.SetError("ERR server not ready")
	_, err = openStorage(ctx, cfg, log)
	assert.ErrorContains(t, err, "failed to connect to storage")

	store, err = openStorage(ctx, &config.Config{
		StorageBackend: config.BackendSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "saves.db"),
		DataDir:        t.TempDir(),
	}, log)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestRunNoSave(t *testing.T) {
	store := useTestApp(t)

	_, err := execute(t, "run", "--no-save", "intro.json")
	require.NoError(t, err)

	ids, _ := store.ListGames(context.Background())
	assert.Empty(t, ids)
}

func TestRunFailureDoesNotSave(t *testing.T) {
	store := useTestApp(t)
	broken := introScript()
	broken.Commands[0].Args["TargetName"] = "Nobody"
	store.AddScript("broken.json", broken)

	_, err := execute(t, "run", "broken.json")
	require.Error(t, err)
	assert.True(t, strings.HasSuffix(err.Error(), "Failed to change texture parameter. Target Nobody is not found."))

	ids, _ := store.ListGames(context.Background())
	assert.Empty(t, ids)
}

func TestPreview(t *testing.T) {
	store := useTestApp(t)

	out, err := execute(t, "preview", "intro.json", "--step", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "BaseColor=/Game/T_Face")
	assert.Contains(t, out, "Preview complete")

	ids, _ := store.ListGames(context.Background())
	assert.Empty(t, ids)
}

func TestRestoreErrors(t *testing.T) {
	useTestApp(t)

	_, err := execute(t, "restore", "not-a-uuid")
	assert.ErrorContains(t, err, "invalid save ID")

	_, err = execute(t, "restore", "1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assert.ErrorContains(t, err, "not found")
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`name: Good
commands:
  - command: ChangeTextureParameter
    args: {Target: Image, TargetName: Portrait, ParameterName: BaseColor, Texture: None}
`), 0644))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"name":"Bad","commands":[
		{"command":"PlaySound"},
		{"command":"ChangeTextureParameter","args":{"Target":"Button"}}
	]}`), 0644))

	out, err := execute(t, "validate", good)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")

	_, err = execute(t, "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown command "PlaySound"`)
	assert.Contains(t, err.Error(), `unsupported target "Button"`)
	assert.Contains(t, err.Error(), "missing TargetName")
}
