package internal

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestDataConfig_Paths(t *testing.T) {
	c := DataConfig{Path: "data", URLsFile: "urls.txt"}
	if got := c.URLsPath(); got != filepath.Join("data", "urls.txt") {
		t.Errorf("URLsPath = %q", got)
	}
	if got := c.ArticlesDir(); got != filepath.Join("data", "articles") {
		t.Errorf("ArticlesDir = %q", got)
	}
	c.URLsFile = "/etc/podlex/urls.txt"
	if got := c.URLsPath(); got != "/etc/podlex/urls.txt" {
		t.Errorf("absolute URLsPath = %q", got)
	}
}

func TestFetchConfig_TimeoutRequired(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Fetch.Timeout = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("zero fetch timeout should fail validation")
	}
}

func TestScheduleConfig(t *testing.T) {
	ok := ScheduleConfig{SyncCron: "0 6 * * *", Timezone: "UTC"}
	if err := ok.Validate(); err != nil {
		t.Errorf("valid schedule rejected: %v", err)
	}
	disabled := ScheduleConfig{}
	if err := disabled.Validate(); err != nil {
		t.Errorf("empty schedule rejected: %v", err)
	}
	bad := ScheduleConfig{SyncCron: "every day", Timezone: "UTC"}
	if err := bad.Validate(); err == nil {
		t.Error("invalid cron expression accepted")
	}
	badTZ := ScheduleConfig{SyncCron: "@daily", Timezone: "Mars/Olympus"}
	if err := badTZ.Validate(); err == nil {
		t.Error("invalid timezone accepted")
	}
}
