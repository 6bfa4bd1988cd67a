package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/flagx"
	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files; its fields are copied into the runtime Config afterwards.
type JsonConfig struct {
	EndpointAddrHTTP      string         `json:"endpoint_addr_http"`
	DatabaseDSN           string         `json:"database_dsn"`
	SecretKey             string         `json:"secret_key"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	SessionIdleExpiry     timex.Duration `json:"session_idle_expiry"`
	EncryptionKeyHex      string         `json:"encryption_key_hex"`
	GoogleClientID        string         `json:"google_client_id"`
	GoogleClientSecret    string         `json:"google_client_secret"`
	GoogleRedirectURL     string         `json:"google_redirect_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; when neither is set, no JSON file is loaded. An unreadable or
// invalid file panics: configuration errors must stop startup.
func parseJson(config *Config) {

	// try flags
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

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.TokenValidityDuration = time.Duration(c.TokenValidityDuration.Duration)
	config.SessionIdleExpiry = time.Duration(c.SessionIdleExpiry.Duration)
	config.EncryptionKeyHex = c.EncryptionKeyHex
	config.GoogleClientID = c.GoogleClientID
	config.GoogleClientSecret = c.GoogleClientSecret
	config.GoogleRedirectURL = c.GoogleRedirectURL
}
