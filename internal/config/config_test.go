package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/gymwatch/internal/fsutil"
)

func validConfig() Config {
	cfg := Default()
	cfg.AuthService = "ptc"
	cfg.Username = "trainer"
	cfg.Password = "secret"
	cfg.Location = "Berlin, Germany"
	cfg.ServiceURL = "http://localhost:9090/rpc"
	return cfg
}

func TestLoad(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("config.json", []byte(
		`{"auth_service":"google","username":"trainer","location":"Berlin","delay_seconds":5}`), 0644))

	cfg, err := Load(fs, "config.json", false)
	require.NoError(t, err)

	assert.Equal(t, "google", cfg.AuthService)
	assert.Equal(t, "trainer", cfg.Username)
	assert.Equal(t, "Berlin", cfg.Location)
	assert.Equal(t, 5.0, cfg.DelaySeconds)
	// Fields absent from the file keep their defaults.
	assert.Equal(t, DefaultDataDir, cfg.DataDir)
	assert.Equal(t, DefaultWebDir, cfg.WebDir)
}

func TestLoadMissingFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	// The default path may simply not exist.
	cfg, err := Load(fs, DefaultConfigPath, false)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	// An explicitly named file must.
	_, err = Load(fs, "missing.json", true)
	assert.Error(t, err)
}

func TestLoadRejectsNonJSONPath(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()

	_, err := Load(fs, "config.yaml", false)
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("config.json", []byte(`{"username":`), 0644))

	_, err := Load(fs, "config.json", false)
	assert.Error(t, err)
}

func TestMergeFlagBeatsFile(t *testing.T) {
	cfg := validConfig()
	cfg.Merge(Config{Location: "Paris", DelaySeconds: 10})

	assert.Equal(t, "Paris", cfg.Location)
	assert.Equal(t, 10.0, cfg.DelaySeconds)
	// Unset overrides leave file values alone.
	assert.Equal(t, "trainer", cfg.Username)
}

func TestValidate(t *testing.T) {
	cfg := validConfig()
	require.NoError(t, cfg.Validate())

	missing := cfg
	missing.Location = ""
	assert.True(t, errors.Is(missing.Validate(), ErrInvalidConfig))

	badAuth := cfg
	badAuth.AuthService = "facebook"
	assert.True(t, errors.Is(badAuth.Validate(), ErrInvalidConfig))

	noUser := cfg
	noUser.Username = ""
	assert.True(t, errors.Is(noUser.Validate(), ErrInvalidConfig))

	negDelay := cfg
	negDelay.DelaySeconds = -1
	assert.True(t, errors.Is(negDelay.Validate(), ErrInvalidConfig))

	noService := cfg
	noService.ServiceURL = ""
	assert.True(t, errors.Is(noService.Validate(), ErrInvalidConfig))
}

func TestValidateOffline(t *testing.T) {
	// Offline replay needs no credentials or location.
	cfg := Default()
	require.NoError(t, cfg.ValidateOffline())

	cfg.DataDir = ""
	assert.True(t, errors.Is(cfg.ValidateOffline(), ErrInvalidConfig))
}

func TestDelay(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 2*time.Second, cfg.Delay())

	cfg.DelaySeconds = 0.5
	assert.Equal(t, 500*time.Millisecond, cfg.Delay())
}
