// Package config handles configuration loading for support-relay.
//
// # Overview
//
// Configuration is loaded from a YAML or TOML file with environment variable
// expansion, or built from environment variables alone when no file exists.
// A .env file in the working directory is loaded first in both cases.
//
// # Configuration File
//
// Locations (in order):
//
//  1. Path from the --config flag
//  2. Path from SUPPORT_RELAY_CONFIG environment variable
//  3. ./config.yaml, then ./config.toml
//  4. $XDG_CONFIG_HOME/support-relay/config.yaml (~/.config when unset)
//
// Files ending in .toml are decoded as TOML; anything else is YAML.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	telegram:
//	  token: "${BOT_TOKEN}"
//	  admin_id: ${ADMIN_ID}
//
// # Environment-only Mode
//
// Without a config file, LoadEnv reads BOT_TOKEN, ADMIN_ID, FIREBASE_DB_URL,
// FIREBASE_CREDENTIALS (default serviceAccountKey.json) and PORT. Setting
// FIREBASE_DB_URL selects the firebase store.
//
// # Configuration Sections
//
// Telegram:
//
//	telegram:
//	  token: "${BOT_TOKEN}"
//	  admin_id: 123456789
//	  poll_timeout: "60s"
//	  request_timeout: "10s"
//
// Store (backend is one of firebase, sqlite, redis, pebble, memory):
//
//	store:
//	  backend: "sqlite"
//	  timeout: "5s"
//	  sqlite:
//	    path: "/var/lib/support-relay/relay.db"
//	  redis:
//	    addr: "localhost:6379"
//	    key_prefix: "support-relay:"
//	  firebase:
//	    database_url: "https://example.firebaseio.com"
//	    credentials_file: "serviceAccountKey.json"
//
// Liveness and metrics:
//
//	liveness:
//	  addr: "0.0.0.0:8080"
//	metrics:
//	  enabled: true
//	  addr: "127.0.0.1:9090"
//	  path: "/metrics"
//
// Messages are Go text/template strings with .Name, .UserID and .Text:
//
//	messages:
//	  admin_reply: "Support: {{.Text}}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
