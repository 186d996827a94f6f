// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML and TOML loading, env var expansion, env-only mode and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "123:abc"
  admin_id: 987654321
  poll_timeout: "30s"
  request_timeout: "5s"

store:
  backend: "redis"
  timeout: "2s"
  redis:
    addr: "redis:6379"
    db: 2
    key_prefix: "relay:"

liveness:
  addr: "0.0.0.0:8081"
  body: "ok"

metrics:
  enabled: true
  addr: "127.0.0.1:9100"
  path: "/metrics"

messages:
  admin_reply: "Support: {{.Text}}"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.Token != "123:abc" {
		t.Errorf("Telegram.Token = %q, want %q", cfg.Telegram.Token, "123:abc")
	}
	if cfg.Telegram.AdminID != 987654321 {
		t.Errorf("Telegram.AdminID = %d, want %d", cfg.Telegram.AdminID, 987654321)
	}
	if cfg.Telegram.PollTimeout != 30*time.Second {
		t.Errorf("Telegram.PollTimeout = %v, want %v", cfg.Telegram.PollTimeout, 30*time.Second)
	}
	if cfg.Telegram.RequestTimeout != 5*time.Second {
		t.Errorf("Telegram.RequestTimeout = %v, want %v", cfg.Telegram.RequestTimeout, 5*time.Second)
	}
	if cfg.Store.Backend != BackendRedis {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendRedis)
	}
	if cfg.Store.Timeout != 2*time.Second {
		t.Errorf("Store.Timeout = %v, want %v", cfg.Store.Timeout, 2*time.Second)
	}
	if cfg.Store.Redis.Addr != "redis:6379" || cfg.Store.Redis.DB != 2 || cfg.Store.Redis.KeyPrefix != "relay:" {
		t.Errorf("Store.Redis = %+v", cfg.Store.Redis)
	}
	if cfg.Liveness.Addr != "0.0.0.0:8081" || cfg.Liveness.Body != "ok" {
		t.Errorf("Liveness = %+v", cfg.Liveness)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Addr != "127.0.0.1:9100" {
		t.Errorf("Metrics = %+v", cfg.Metrics)
	}
	if cfg.Messages.AdminReply != "Support: {{.Text}}" {
		t.Errorf("Messages.AdminReply = %q", cfg.Messages.AdminReply)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_ValidTOML(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[telegram]
token = "123:abc"
admin_id = 42

[store]
backend = "pebble"

[store.pebble]
path = "/tmp/relay.pebble"

[logging]
level = "warn"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Telegram.AdminID != 42 {
		t.Errorf("Telegram.AdminID = %d, want 42", cfg.Telegram.AdminID)
	}
	if cfg.Store.Backend != BackendPebble {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendPebble)
	}
	if cfg.Store.Pebble.Path != "/tmp/relay.pebble" {
		t.Errorf("Store.Pebble.Path = %q", cfg.Store.Pebble.Path)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
}

func TestLoad_TOMLQuotedAdminID(t *testing.T) {
	path := writeConfig(t, "config.toml", `
[telegram]
token = "t"
admin_id = "77"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.AdminID != 77 {
		t.Errorf("Telegram.AdminID = %d, want 77", cfg.Telegram.AdminID)
	}
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "t"
  admin_id: 1
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendSQLite)
	}
	if cfg.Store.SQLite.Path != "support-relay.db" {
		t.Errorf("Store.SQLite.Path = %q", cfg.Store.SQLite.Path)
	}
	if cfg.Store.Timeout != 5*time.Second {
		t.Errorf("Store.Timeout = %v, want 5s", cfg.Store.Timeout)
	}
	if cfg.Telegram.PollTimeout != 60*time.Second {
		t.Errorf("Telegram.PollTimeout = %v, want 60s", cfg.Telegram.PollTimeout)
	}
	if cfg.Liveness.Addr != "0.0.0.0:8080" {
		t.Errorf("Liveness.Addr = %q, want 0.0.0.0:8080", cfg.Liveness.Addr)
	}
	if cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled should default to false")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BOT_TOKEN", "from-env")
	t.Setenv("TEST_ADMIN_ID", "555")

	path := writeConfig(t, "config.yaml", `
telegram:
  token: "${TEST_BOT_TOKEN}"
  admin_id: ${TEST_ADMIN_ID}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Telegram.Token != "from-env" {
		t.Errorf("Telegram.Token = %q, want %q", cfg.Telegram.Token, "from-env")
	}
	if cfg.Telegram.AdminID != 555 {
		t.Errorf("Telegram.AdminID = %d, want 555", cfg.Telegram.AdminID)
	}
}

func TestLoad_UnsetEnvVarFailsValidation(t *testing.T) {
	path := writeConfig(t, "config.yaml", `
telegram:
  token: "${SUPPORT_RELAY_TEST_UNSET_VAR}"
  admin_id: 1
`)

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "telegram.token") {
		t.Errorf("Load() error = %v, want telegram.token error", err)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing admin",
			content: "telegram:\n  token: t\n",
			wantErr: "telegram.admin_id",
		},
		{
			name:    "bad admin id",
			content: "telegram:\n  token: t\n  admin_id: abc\n",
			wantErr: "invalid chat id",
		},
		{
			name:    "bad duration",
			content: "telegram:\n  token: t\n  admin_id: 1\n  poll_timeout: soon\n",
			wantErr: "poll_timeout",
		},
		{
			name:    "unknown backend",
			content: "telegram:\n  token: t\n  admin_id: 1\nstore:\n  backend: mongo\n",
			wantErr: "store.backend",
		},
		{
			name:    "firebase without url",
			content: "telegram:\n  token: t\n  admin_id: 1\nstore:\n  backend: firebase\n",
			wantErr: "store.firebase.database_url",
		},
		{
			name:    "firebase missing credentials file",
			content: "telegram:\n  token: t\n  admin_id: 1\nstore:\n  backend: firebase\n  firebase:\n    database_url: https://x.firebaseio.com\n    credentials_file: /nonexistent/key.json\n",
			wantErr: "credentials_file",
		},
		{
			name:    "metrics on liveness addr",
			content: "telegram:\n  token: t\n  admin_id: 1\nliveness:\n  addr: 0.0.0.0:8080\nmetrics:\n  enabled: true\n  addr: 0.0.0.0:8080\n",
			wantErr: "metrics.addr",
		},
		{
			name:    "bad log level",
			content: "telegram:\n  token: t\n  admin_id: 1\nlogging:\n  level: loud\n",
			wantErr: "logging.level",
		},
		{
			name:    "bad yaml",
			content: "telegram: [",
			wantErr: "parsing config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "config.yaml", tt.content)
			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_FirebaseWithCredentials(t *testing.T) {
	keyPath := writeConfig(t, "key.json", `{}`)
	path := writeConfig(t, "config.yaml", `
telegram:
  token: t
  admin_id: 1
store:
  backend: firebase
  firebase:
    database_url: https://x.firebaseio.com
    credentials_file: `+keyPath+`
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Store.Firebase.CredentialsFile != keyPath {
		t.Errorf("Store.Firebase.CredentialsFile = %q, want %q", cfg.Store.Firebase.CredentialsFile, keyPath)
	}
}

func TestLoadEnv(t *testing.T) {
	keyPath := writeConfig(t, "serviceAccountKey.json", `{}`)
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("ADMIN_ID", "12345")
	t.Setenv("FIREBASE_DB_URL", "https://x.firebaseio.com")
	t.Setenv("FIREBASE_CREDENTIALS", keyPath)
	t.Setenv("PORT", "3000")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if cfg.Telegram.Token != "env-token" {
		t.Errorf("Telegram.Token = %q", cfg.Telegram.Token)
	}
	if cfg.Telegram.AdminID != 12345 {
		t.Errorf("Telegram.AdminID = %d, want 12345", cfg.Telegram.AdminID)
	}
	if cfg.Store.Backend != BackendFirebase {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendFirebase)
	}
	if cfg.Liveness.Addr != "0.0.0.0:3000" {
		t.Errorf("Liveness.Addr = %q, want 0.0.0.0:3000", cfg.Liveness.Addr)
	}
}

func TestLoadEnv_WithoutFirebaseUsesSQLite(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("ADMIN_ID", "12345")
	t.Setenv("FIREBASE_DB_URL", "")
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("PORT", "")
	t.Setenv("SQLITE_PATH", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}
	if cfg.Store.Backend != BackendSQLite {
		t.Errorf("Store.Backend = %q, want %q", cfg.Store.Backend, BackendSQLite)
	}
}

func TestLoadEnv_BadAdminID(t *testing.T) {
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("ADMIN_ID", "admin")

	if _, err := LoadEnv(); err == nil {
		t.Fatal("LoadEnv() expected error for non-numeric ADMIN_ID")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("SR_TEST_A", "alpha")

	got := expandEnvVars("a=${SR_TEST_A} b=${SR_TEST_UNSET_B}")
	if got != "a=alpha b=" {
		t.Errorf("expandEnvVars() = %q, want %q", got, "a=alpha b=")
	}
}
