package configloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Server struct {
		Port    int           `koanf:"port"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"server"`
	Store struct {
		Path string `koanf:"path"`
	} `koanf:"store"`
}

var errInvalidPort = errors.New("invalid port")

func (c *testConfig) Validate() error {
	if c.Server.Port <= 0 {
		return errInvalidPort
	}
	return nil
}

var testDefaults = map[string]any{
	"server.port":    8000,
	"server.timeout": 5 * time.Second,
	"store.path":     "data/db.json",
}

// inTempDir runs the test from an empty directory so no stray config.yaml or .env is picked up.
func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func Test_Load_Defaults(t *testing.T) {
	// given
	inTempDir(t)

	// when
	cfg, err := Load[*testConfig]("loadertest", testDefaults)

	// then
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "data/db.json", cfg.Store.Path)
}

func Test_Load_Precedence(t *testing.T) {
	testCases := []struct {
		name         string
		yaml         string
		dotEnv       string
		env          map[string]string
		expectedPort int
		expectedPath string
	}{
		{
			name:         "yaml overrides defaults",
			yaml:         "server:\n  port: 9000\n",
			expectedPort: 9000,
			expectedPath: "data/db.json",
		},
		{
			name:         ".env overrides yaml",
			yaml:         "server:\n  port: 9000\nstore:\n  path: yaml.json\n",
			dotEnv:       "LOADERTEST_SERVER_PORT=9100\nUNRELATED_VALUE=1\n",
			expectedPort: 9100,
			expectedPath: "yaml.json",
		},
		{
			name:         "environment overrides .env",
			dotEnv:       "LOADERTEST_SERVER_PORT=9100\n",
			env:          map[string]string{"LOADERTEST_SERVER_PORT": "9200", "LOADERTEST_STORE_PATH": "env.json"},
			expectedPort: 9200,
			expectedPath: "env.json",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			dir := inTempDir(t)
			if tc.yaml != "" {
				writeFile(t, dir, "config.yaml", tc.yaml)
			}
			if tc.dotEnv != "" {
				writeFile(t, dir, ".env", tc.dotEnv)
			}
			for k, v := range tc.env {
				t.Setenv(k, v)
			}

			// when
			cfg, err := Load[*testConfig]("loadertest", testDefaults)

			// then
			require.NoError(t, err)
			assert.Equal(t, tc.expectedPort, cfg.Server.Port)
			assert.Equal(t, tc.expectedPath, cfg.Store.Path)
		})
	}
}

func Test_Load_ConfigFileFromEnv(t *testing.T) {
	// given
	dir := inTempDir(t)
	writeFile(t, dir, "custom.yaml", "server:\n  timeout: 30s\n")
	t.Setenv("LOADERTEST_CONFIG_FILE", filepath.Join(dir, "custom.yaml"))

	// when
	cfg, err := Load[*testConfig]("loadertest", testDefaults)

	// then
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
}

func Test_Load_ValidationError(t *testing.T) {
	// given
	inTempDir(t)
	t.Setenv("LOADERTEST_SERVER_PORT", "0")

	// when
	_, err := Load[*testConfig]("loadertest", testDefaults)

	// then
	assert.ErrorIs(t, err, errInvalidPort)
}
