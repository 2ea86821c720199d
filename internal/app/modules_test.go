package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/teilomillet/cardsplit/config"
	"github.com/teilomillet/cardsplit/notes"
	"github.com/teilomillet/cardsplit/splitter"
	"github.com/teilomillet/cardsplit/utils"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestOptionsBuildsGraph(t *testing.T) {
	dir := t.TempDir()
	cfg := config.NewConfig()
	config.ApplyOptions(cfg,
		config.SetConfigPath(writeFile(t, dir, "config.json", `{"06_provider": "openai", "model": "legacy-model"}`)),
		config.SetNotesPath(writeFile(t, dir, "notes.json", `{"notes": []}`)),
		config.SetProvider("gemini"),
		config.SetLogger(utils.NewNopLogger()),
	)

	var (
		settings *config.Settings
		runner   *splitter.Runner
		store    *notes.Store
	)
	app := fxtest.New(t, Options(cfg), fx.Populate(&settings, &runner, &store))
	app.RequireStart()
	defer app.RequireStop()

	require.NotNil(t, runner)
	require.NotNil(t, store)
	assert.Equal(t, config.ProviderGemini, settings.Provider)
	assert.Equal(t, "legacy-model", settings.Model, "legacy keys apply to the overriding provider")
	assert.Equal(t, "GEMINI_API_KEY", settings.APIKeyEnv)
}

func TestOptionsMissingSettingsFile(t *testing.T) {
	cfg := config.NewConfig()
	config.ApplyOptions(cfg,
		config.SetConfigPath(filepath.Join(t.TempDir(), "missing.json")),
		config.SetLogger(utils.NewNopLogger()),
	)

	var settings *config.Settings
	app := fx.New(Options(cfg), fx.Populate(&settings))
	assert.Error(t, app.Err())
}

func TestNewLoggerFormats(t *testing.T) {
	lc := fxtest.NewLifecycle(t)

	cfg := config.NewConfig()
	logger, err := NewLogger(lc, cfg)
	require.NoError(t, err)
	assert.IsType(t, &utils.DefaultLogger{}, logger)

	cfg.LogFormat = "json"
	logger, err = NewLogger(lc, cfg)
	require.NoError(t, err)
	assert.IsType(t, &utils.ZapLogger{}, logger)

	cfg.LogFormat = "xml"
	_, err = NewLogger(lc, cfg)
	assert.Error(t, err)
}
