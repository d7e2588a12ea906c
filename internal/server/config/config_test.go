package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if cfg.EndpointAddrHTTP != ":8080" {
		t.Fatalf("unexpected default addr: %q", cfg.EndpointAddrHTTP)
	}
	if cfg.SessionTokenValidityDuration != 7*24*time.Hour {
		t.Fatalf("unexpected default session validity: %v", cfg.SessionTokenValidityDuration)
	}
	if cfg.SecureCookies {
		t.Fatalf("secure cookies must default to off")
	}
	if cfg.SecretKey == "" || cfg.DatabaseDSN == "" {
		t.Fatalf("defaults must be non-empty")
	}
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	os.Args = []string{"server", "-a", ":9999", "-s", "flag-secret", "-t", "24", "-k"}

	cfg := LoadConfig()

	if cfg.EndpointAddrHTTP != ":9999" {
		t.Fatalf("flag addr not applied: %q", cfg.EndpointAddrHTTP)
	}
	if cfg.SecretKey != "flag-secret" {
		t.Fatalf("flag secret not applied: %q", cfg.SecretKey)
	}
	if cfg.SessionTokenValidityDuration != 24*time.Hour {
		t.Fatalf("flag validity not applied: %v", cfg.SessionTokenValidityDuration)
	}
	if !cfg.SecureCookies {
		t.Fatalf("secure cookie flag not applied")
	}
}

func TestLoadConfig_JsonOverlay(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	content := `{
		"endpoint_addr_http": ":7070",
		"database_dsn": "postgres://u:p@h:5432/db",
		"secret_key": "json-secret",
		"session_token_validity_duration": "48h",
		"smtp_addr": "mail:25",
		"sender_email": "noreply@example.com",
		"secure_cookies": true
	}`
	path := filepath.Join(t.TempDir(), "conf.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Args = []string{"server", "-c", path}

	cfg := LoadConfig()

	if cfg.EndpointAddrHTTP != ":7070" {
		t.Fatalf("json addr not applied: %q", cfg.EndpointAddrHTTP)
	}
	if cfg.SecretKey != "json-secret" {
		t.Fatalf("json secret not applied: %q", cfg.SecretKey)
	}
	if cfg.SessionTokenValidityDuration != 48*time.Hour {
		t.Fatalf("json validity not applied: %v", cfg.SessionTokenValidityDuration)
	}
	if cfg.SMTPAddr != "mail:25" || cfg.SenderEmail != "noreply@example.com" {
		t.Fatalf("json smtp settings not applied: %+v", cfg)
	}
	if !cfg.SecureCookies {
		t.Fatalf("json secure cookie setting not applied")
	}
}

func TestLoadConfig_PartialJsonKeepsDefaults(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	content := `{"secret_key": "json-secret"}`
	path := filepath.Join(t.TempDir(), "conf.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Args = []string{"server", "-c", path}

	cfg := LoadConfig()

	if cfg.SecretKey != "json-secret" {
		t.Fatalf("json secret not applied: %q", cfg.SecretKey)
	}
	if cfg.EndpointAddrHTTP != ":8080" {
		t.Fatalf("omitted addr must keep its default, got %q", cfg.EndpointAddrHTTP)
	}
	if cfg.DatabaseDSN == "" {
		t.Fatalf("omitted dsn must keep its default")
	}
	if cfg.SessionTokenValidityDuration != 7*24*time.Hour {
		t.Fatalf("omitted validity must keep its default, got %v", cfg.SessionTokenValidityDuration)
	}
	if cfg.SenderEmail == "" {
		t.Fatalf("omitted sender must keep its default")
	}
}

func TestLoadConfig_FlagsWinOverJson(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()

	content := `{"endpoint_addr_http": ":7070", "secret_key": "json-secret"}`
	path := filepath.Join(t.TempDir(), "conf.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	os.Args = []string{"server", "-c", path, "-a", ":6060"}

	cfg := LoadConfig()

	if cfg.EndpointAddrHTTP != ":6060" {
		t.Fatalf("flag must win over json, got %q", cfg.EndpointAddrHTTP)
	}
	if cfg.SecretKey != "json-secret" {
		t.Fatalf("untouched json value must survive, got %q", cfg.SecretKey)
	}
}
