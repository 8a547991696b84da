package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.RateLimit.RequestsPerHour <= 0 {
		t.Errorf("expected a positive default requests_per_hour, got %d", cfg.RateLimit.RequestsPerHour)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default logging level 'info', got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected default logging format 'text', got %q", cfg.Logging.Format)
	}
}

func TestParse_ValidConfig(t *testing.T) {
	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "service-*"
  - "shared-lib"
auth:
  username: "ci-bot"
  password: "s3cr3t"
logging:
  level: "debug"
  format: "json"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RepoOwner != "myteam" {
		t.Errorf("expected repo_owner = 'myteam', got '%s'", cfg.RepoOwner)
	}
	if len(cfg.RepoSlugs) != 2 || cfg.RepoSlugs[0] != "service-*" || cfg.RepoSlugs[1] != "shared-lib" {
		t.Errorf("unexpected repo_slugs: %+v", cfg.RepoSlugs)
	}
	if cfg.Auth.Username != "ci-bot" || cfg.Auth.Password != "s3cr3t" {
		t.Errorf("unexpected auth: %+v", cfg.Auth)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	os.Setenv("GATEKEEPER_TEST_PASSWORD", "from-env")
	defer os.Unsetenv("GATEKEEPER_TEST_PASSWORD")

	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "ci-bot"
  password: "${GATEKEEPER_TEST_PASSWORD}"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.Password != "from-env" {
		t.Errorf("expected password substituted from env, got '%s'", cfg.Auth.Password)
	}
}

func TestParse_UnsetEnvVar(t *testing.T) {
	os.Unsetenv("GATEKEEPER_TEST_UNSET_VAR")

	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "ci-bot"
  password: "${GATEKEEPER_TEST_UNSET_VAR}"
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected validation error when an unset env var expands to an empty password")
	}
	if !strings.Contains(err.Error(), "auth.password") {
		t.Errorf("expected error to mention auth.password, got: %v", err)
	}
}

func TestParse_MissingRepoOwner(t *testing.T) {
	yaml := `
repo_slugs:
  - "shared-lib"
auth:
  username: "user"
  password: "pass"
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for missing repo_owner")
	}
	if !strings.Contains(err.Error(), "repo_owner") {
		t.Errorf("expected error to mention repo_owner, got: %v", err)
	}
}

func TestParse_MissingRepoSlugs(t *testing.T) {
	yaml := `
repo_owner: "myteam"
auth:
  username: "user"
  password: "pass"
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for missing repo_slugs")
	}
	if !strings.Contains(err.Error(), "repo_slugs") {
		t.Errorf("expected error to mention repo_slugs, got: %v", err)
	}
}

func TestParse_MissingAuth(t *testing.T) {
	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for missing auth credentials")
	}
	if !strings.Contains(err.Error(), "auth.username") || !strings.Contains(err.Error(), "auth.password") {
		t.Errorf("expected error to mention auth.username and auth.password, got: %v", err)
	}
}

func TestParse_InvalidLoggingLevel(t *testing.T) {
	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "user"
  password: "pass"
logging:
  level: "trace"
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level")
	}
	if !strings.Contains(err.Error(), "logging.level") {
		t.Errorf("expected error to mention logging.level, got: %v", err)
	}
}

func TestParse_InvalidLoggingFormat(t *testing.T) {
	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "user"
  password: "pass"
logging:
  format: "xml"
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log format")
	}
	if !strings.Contains(err.Error(), "logging.format") {
		t.Errorf("expected error to mention logging.format, got: %v", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	yaml := `
repo_owner: [invalid
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate_NegativeRateLimit(t *testing.T) {
	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "user"
  password: "pass"
rate_limit:
  requests_per_hour: -1
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for negative rate limit")
	}
	if !strings.Contains(err.Error(), "rate_limit.requests_per_hour") {
		t.Errorf("expected error to mention rate_limit.requests_per_hour, got: %v", err)
	}
}

func TestValidate_ZeroBurstSize(t *testing.T) {
	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "user"
  password: "pass"
rate_limit:
  requests_per_hour: 900
  burst_size: 0
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for zero burst size")
	}
	if !strings.Contains(err.Error(), "rate_limit.burst_size") {
		t.Errorf("expected error to mention rate_limit.burst_size, got: %v", err)
	}
}

func TestParse_ReportPath(t *testing.T) {
	yaml := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "user"
  password: "pass"
report:
  json_path: "/tmp/gatekeeper-report.json"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Report.JSONPath != "/tmp/gatekeeper-report.json" {
		t.Errorf("expected report.json_path, got '%s'", cfg.Report.JSONPath)
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Fatal("expected error for nonexistent file")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	content := `
repo_owner: "myteam"
repo_slugs:
  - "shared-lib"
auth:
  username: "fileuser"
  password: "filepass"
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.RepoOwner != "myteam" {
		t.Errorf("expected repo_owner = 'myteam', got '%s'", cfg.RepoOwner)
	}
	if cfg.Auth.Username != "fileuser" {
		t.Errorf("expected auth.username = 'fileuser', got '%s'", cfg.Auth.Username)
	}
}

func TestToRateLimiterConfig(t *testing.T) {
	cfg := Default()
	cfg.RateLimit.RequestsPerHour = 1200
	cfg.RateLimit.BurstSize = 20

	rl := cfg.ToRateLimiterConfig()
	if rl.RequestsPerHour != 1200 || rl.BurstSize != 20 {
		t.Errorf("unexpected rate limiter config: %+v", rl)
	}
}
