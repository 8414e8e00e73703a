package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, StorageTypeJSON, cfg.Storage.Type)
	assert.NotEmpty(t, cfg.Storage.JSONPath)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 512, cfg.QRSize)
	assert.False(t, cfg.WatchClipboard)
	assert.Equal(t, 3306, cfg.Storage.MySQL.Port)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
  "storage": {"type": "json", "json_path": "/tmp/qrtool-data"},
  "log": {"level": "debug"},
  "qr_size": 256,
  "watch_clipboard": true
}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/qrtool-data", cfg.Storage.JSONPath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 256, cfg.QRSize)
	assert.True(t, cfg.WatchClipboard)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("QRTOOL_LOG_LEVEL", "warn")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_ValidatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storage": {"type": "redis"}}`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestAppConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  AppConfig
		wantErr bool
	}{
		{
			name:    "json storage",
			config:  AppConfig{Storage: StorageConfig{Type: StorageTypeJSON}},
			wantErr: false,
		},
		{
			name: "mysql storage",
			config: AppConfig{Storage: StorageConfig{
				Type:  StorageTypeMySQL,
				MySQL: MySQLConfig{Host: "localhost", Port: 3306, Database: "qrtool"},
			}},
			wantErr: false,
		},
		{
			name: "mysql without database",
			config: AppConfig{Storage: StorageConfig{
				Type:  StorageTypeMySQL,
				MySQL: MySQLConfig{Host: "localhost", Port: 3306},
			}},
			wantErr: true,
		},
		{
			name: "mysql invalid port",
			config: AppConfig{Storage: StorageConfig{
				Type:  StorageTypeMySQL,
				MySQL: MySQLConfig{Host: "localhost", Port: 70000, Database: "qrtool"},
			}},
			wantErr: true,
		},
		{
			name:    "unknown storage",
			config:  AppConfig{Storage: StorageConfig{Type: "redis"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("AppConfig.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMySQLConfig_DSN(t *testing.T) {
	c := MySQLConfig{Host: "db", Port: 3307, User: "u", Password: "p", Database: "d"}
	assert.Equal(t, "u:p@tcp(db:3307)/d?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())
}
