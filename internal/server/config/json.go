package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avdeev/todolist/internal/flagx"
)

// JsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Duration fields are strings in time.ParseDuration format ("12h",
// "90s"). After unmarshalling, non-empty fields are copied into the runtime
// Config.
type JsonConfig struct {
	EndpointAddr                 string `json:"endpoint_addr"`
	DatabaseDSN                  string `json:"database_dsn"`
	SecretKey                    string `json:"secret_key"`
	SessionTokenValidityDuration string `json:"session_token_validity_duration"`
	SessionCookieName            string `json:"session_cookie_name"`
	BcryptCost                   int    `json:"bcrypt_cost"`
	HashWorkers                  int    `json:"hash_workers"`
	StoreTimeout                 string `json:"store_timeout"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. An unreadable or invalid
// file panics: a half-applied config is worse than a crash at startup.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.SessionTokenValidityDuration != "" {
		d, err := time.ParseDuration(c.SessionTokenValidityDuration)
		if err != nil {
			panic(err)
		}
		config.SessionTokenValidityDuration = d
	}
	if c.SessionCookieName != "" {
		config.SessionCookieName = c.SessionCookieName
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.HashWorkers != 0 {
		config.HashWorkers = c.HashWorkers
	}
	if c.StoreTimeout != "" {
		d, err := time.ParseDuration(c.StoreTimeout)
		if err != nil {
			panic(err)
		}
		config.StoreTimeout = d
	}
}
