package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/wh131462/stillalive/internal/flagx"
	"github.com/wh131462/stillalive/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so intervals can be written either as strings like "5m" or
// as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	AuthToken           string         `json:"auth_token"`
	DatabasePath        string         `json:"database_path"`
	SyncInterval        timex.Duration `json:"sync_interval"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	MaxRetries          *int           `json:"max_retries"`
}

// parseJson overlays Config with values loaded from a JSON file selected via
// the -c or -config flag. Absent fields leave the current value in place.
// Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.AuthToken != "" {
		cfg.AuthToken = jc.AuthToken
	}
	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
	if jc.OnlineCheckInterval.Duration != 0 {
		cfg.OnlineCheckInterval = time.Duration(jc.OnlineCheckInterval.Duration)
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
}
