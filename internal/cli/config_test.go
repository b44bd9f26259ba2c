package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/puppyjudge/internal/model"
)

func TestWriteDefaultConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	path, err := writeDefaultConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.yaml"), path)

	v := viper.New()
	setDefaults(v, *model.DefaultConfig())
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, *model.DefaultConfig(), cfg)
	assert.NoError(t, model.NewValidator().Struct(cfg))
}

func TestWriteDefaultConfig_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()

	_, err := writeDefaultConfig(dir)
	require.NoError(t, err)

	_, err = writeDefaultConfig(dir)
	assert.ErrorContains(t, err, "already exists")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PUPPYJUDGE_LLM_PROVIDER", "ollama")
	t.Setenv("PUPPYJUDGE_COURT_APPEAL_WINDOW", "5m")
	t.Setenv("PUPPYJUDGE_COURT_DEFAULT_PERSONA", "toxic")

	v := viper.New()
	setDefaults(v, *model.DefaultConfig())
	v.SetEnvPrefix("PUPPYJUDGE")
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, 5*time.Minute, cfg.Court.AppealWindow)
	assert.Equal(t, model.PersonaToxic, cfg.Court.DefaultPersona)
	assert.Equal(t, "layered", cfg.Storage.Backend)
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"dishes":          "dishes",
		"who forgot/why":  "who-forgot_why",
		"  ..hidden..  ":  "hidden",
		"":                "case",
		"a:b*c?d":         "a_b_c_d",
		"周末 谁洗碗":          "周末-谁洗碗",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}
