// Package config loads runtime configuration for the StillAlive CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the sync authority
//	-k string   auth token
//	-d string   path to the local database file
//	-s int      auto-sync interval (seconds)
//	-i int      online status check interval (seconds)
//
// # JSON schema
//
// The JSON loader uses timex.Duration for intervals, so values can be either
// strings like "5m" or integer nanoseconds:
//
//	{
//	  "server_endpoint_addr": "http://127.0.0.1:8080",
//	  "auth_token": "device token",
//	  "database_path": "stillalive.db",
//	  "sync_interval": "5m",
//	  "online_check_interval": "30s",
//	  "request_timeout": "10s",
//	  "max_retries": 3
//	}
//
// Note: This package does not read environment variables directly; use the
// JSON file or flags to configure values.
package config
