package config

import (
	"encoding/json"
	"os"

	"github.com/techasish/accountd/internal/flagx"
	"github.com/techasish/accountd/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for interval fields, which allows
// parsing both string values such as "168h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	SMTPAddr                     string         `json:"smtp_addr"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	SenderEmail                  string         `json:"sender_email"`
	SecureCookies                bool           `json:"secure_cookies"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; if
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	// Seed the DTO from the current config so fields the file omits keep
	// their defaults.
	c := &JsonConfig{
		EndpointAddrHTTP:             config.EndpointAddrHTTP,
		DatabaseDSN:                  config.DatabaseDSN,
		SecretKey:                    config.SecretKey,
		SessionTokenValidityDuration: timex.Duration{Duration: config.SessionTokenValidityDuration},
		SMTPAddr:                     config.SMTPAddr,
		SMTPUser:                     config.SMTPUser,
		SMTPPassword:                 config.SMTPPassword,
		SenderEmail:                  config.SenderEmail,
		SecureCookies:                config.SecureCookies,
	}

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
	config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	config.SMTPAddr = c.SMTPAddr
	config.SMTPUser = c.SMTPUser
	config.SMTPPassword = c.SMTPPassword
	config.SenderEmail = c.SenderEmail
	config.SecureCookies = c.SecureCookies
}
