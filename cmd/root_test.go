// ABOUTME: Tests for the root command and global flag handling
// ABOUTME: Verifies environment variable and flag configuration

package cmd

import (
	"testing"
	"time"
)

func TestGetAPIURL_Default(t *testing.T) {
	t.Setenv("INSIGHT_API_URL", "")
	apiURL = ""

	if url := GetAPIURL(); url != "http://localhost:5000" {
		t.Errorf("expected default URL http://localhost:5000, got %s", url)
	}
}

func TestGetAPIURL_FromEnv(t *testing.T) {
	t.Setenv("INSIGHT_API_URL", "http://backend.example.com")
	apiURL = ""

	if url := GetAPIURL(); url != "http://backend.example.com" {
		t.Errorf("expected http://backend.example.com, got %s", url)
	}
}

func TestGetAPIURL_FlagOverridesEnv(t *testing.T) {
	t.Setenv("INSIGHT_API_URL", "http://backend.example.com")
	apiURL = "http://flag-override.example.com"
	defer func() { apiURL = "" }()

	if url := GetAPIURL(); url != "http://flag-override.example.com" {
		t.Errorf("expected flag to override env, got %s", url)
	}
}

func TestJSONOutput(t *testing.T) {
	jsonOutput = true
	defer func() { jsonOutput = false }()

	if !IsJSONOutput() {
		t.Error("expected IsJSONOutput to return true")
	}
}

func TestLoadConfig_FlagsApplied(t *testing.T) {
	t.Setenv("INSIGHT_CONFIG_DIR", t.TempDir())
	apiURL = "http://flag.example.com/"
	timeout = 5 * time.Second
	defer func() {
		apiURL = ""
		timeout = 0
	}()

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.APIURL != "http://flag.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.APIURL)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %s", cfg.Timeout)
	}
}

func TestLoadConfig_TimeoutFlagRaisesBranchTimeout(t *testing.T) {
	tests := []struct {
		flag time.Duration
		want time.Duration
	}{
		{10 * time.Second, 240 * time.Second},
		{5 * time.Minute, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.flag.String(), func(t *testing.T) {
			t.Setenv("INSIGHT_CONFIG_DIR", t.TempDir())
			t.Setenv("INSIGHT_BRANCH_CREATE_TIMEOUT", "")
			t.Setenv("INSIGHT_API_URL", "")
			timeout = tt.flag
			defer func() { timeout = 0 }()

			cfg, err := loadConfig()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cfg.Timeout != tt.flag {
				t.Errorf("expected %s timeout, got %s", tt.flag, cfg.Timeout)
			}
			if cfg.BranchCreationTimeout != tt.want {
				t.Errorf("expected %s branch creation timeout, got %s", tt.want, cfg.BranchCreationTimeout)
			}
		})
	}
}

func TestLoadConfig_InvalidURL(t *testing.T) {
	t.Setenv("INSIGHT_CONFIG_DIR", t.TempDir())
	apiURL = "backend-without-scheme"
	defer func() { apiURL = "" }()

	if _, err := loadConfig(); err == nil {
		t.Error("expected validation error")
	}
}
