package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hyperengineering/nurture/internal/catalog"
)

// Helper to clear all config-related env vars
func clearEnv(t *testing.T) {
	t.Helper()
	envVars := []string{
		"NURTURE_PORT",
		"NURTURE_READ_TIMEOUT",
		"NURTURE_WRITE_TIMEOUT",
		"NURTURE_SHUTDOWN_TIMEOUT",
		"NURTURE_DB_PATH",
		"NURTURE_JWT_SECRET",
		"NURTURE_JWT_ISSUER",
		"NURTURE_TOKEN_TTL",
		"NURTURE_CODE_RESEND_COOLDOWN",
		"NURTURE_LOGIN_DELAY",
		"NURTURE_CATALOG_DEFAULT_MILESTONES",
		"NURTURE_CATALOG_DIR",
		"NURTURE_CATALOG_WATCH",
		"NURTURE_MEDICAL_VISIBILITY_MONTHS",
		"NURTURE_CHALLENGE_SWEEP_INTERVAL",
		"NURTURE_CHALLENGE_MAX_AGE",
		"NURTURE_LOG_LEVEL",
		"NURTURE_LOG_FORMAT",
		"NURTURE_CONFIG_PATH",
		"NURTURE_DEV_MODE",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

// Helper to set dev mode for testing
func setDevModeEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NURTURE_DEV_MODE", "true")
}

// Helper to set production env vars (secret required)
func setProdEnv(t *testing.T) {
	t.Helper()
	t.Setenv("NURTURE_JWT_SECRET", "test-secret")
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nurture.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

// dur converts Duration to time.Duration for comparison
func dur(d Duration) time.Duration {
	return time.Duration(d)
}

// Test: Default values when no config file and no env vars (dev mode)
func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("NURTURE_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if dur(cfg.Server.ReadTimeout) != 30*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 30s", cfg.Server.ReadTimeout)
	}
	if dur(cfg.Server.ShutdownTimeout) != 15*time.Second {
		t.Errorf("Server.ShutdownTimeout = %v, want 15s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.Path != "data/nurture.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "data/nurture.db")
	}
	if cfg.Auth.Issuer != "nurture" {
		t.Errorf("Auth.Issuer = %q, want nurture", cfg.Auth.Issuer)
	}
	if dur(cfg.Auth.CodeResend) != 60*time.Second {
		t.Errorf("Auth.CodeResend = %v, want 60s", cfg.Auth.CodeResend)
	}
	if cfg.Catalog.DefaultMilestones != catalog.EnhancedMilestones {
		t.Errorf("Catalog.DefaultMilestones = %q, want %q", cfg.Catalog.DefaultMilestones, catalog.EnhancedMilestones)
	}
	if cfg.Catalog.Watch {
		t.Error("Catalog.Watch should default to false")
	}
	if cfg.Selection.MedicalVisibilityMonths != 3 {
		t.Errorf("Selection.MedicalVisibilityMonths = %d, want 3", cfg.Selection.MedicalVisibilityMonths)
	}
	if dur(cfg.Worker.ChallengeSweepInterval) != 10*time.Minute {
		t.Errorf("Worker.ChallengeSweepInterval = %v, want 10m", cfg.Worker.ChallengeSweepInterval)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want info/json", cfg.Log)
	}
}

func TestLoad_ValidationFailsWithoutSecret(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	if err == nil {
		t.Fatal("Load() should fail without NURTURE_JWT_SECRET")
	}
	if !strings.Contains(err.Error(), "NURTURE_JWT_SECRET") {
		t.Errorf("error = %v, want mention of NURTURE_JWT_SECRET", err)
	}
}

func TestLoad_ValidationPassesWithSecret(t *testing.T) {
	clearEnv(t)
	setProdEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if string(cfg.SigningSecret()) != "test-secret" {
		t.Errorf("SigningSecret() = %q, want test-secret", cfg.SigningSecret())
	}
}

func TestLoad_DevModeBypassesValidation(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.DevMode {
		t.Error("DevMode = false, want true")
	}
	if len(cfg.SigningSecret()) == 0 {
		t.Error("dev mode should provide a signing secret")
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	clearEnv(t)
	setProdEnv(t)
	t.Setenv("NURTURE_PORT", "9090")
	t.Setenv("NURTURE_DB_PATH", "/tmp/test.db")
	t.Setenv("NURTURE_LOGIN_DELAY", "0s")
	t.Setenv("NURTURE_CATALOG_DIR", "/etc/nurture/catalogs")
	t.Setenv("NURTURE_CATALOG_WATCH", "true")
	t.Setenv("NURTURE_MEDICAL_VISIBILITY_MONTHS", "6")
	t.Setenv("NURTURE_LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database.Path = %q, want /tmp/test.db", cfg.Database.Path)
	}
	if cfg.Auth.LoginDelay != 0 {
		t.Errorf("Auth.LoginDelay = %v, want 0", cfg.Auth.LoginDelay)
	}
	if cfg.Catalog.OverrideDir != "/etc/nurture/catalogs" || !cfg.Catalog.Watch {
		t.Errorf("Catalog = %+v, want override dir and watch", cfg.Catalog)
	}
	if cfg.Selection.MedicalVisibilityMonths != 6 {
		t.Errorf("MedicalVisibilityMonths = %d, want 6", cfg.Selection.MedicalVisibilityMonths)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_EmptyEnvVarDoesNotOverride(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("NURTURE_DB_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != "data/nurture.db" {
		t.Errorf("Database.Path = %q, want default", cfg.Database.Path)
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)
	t.Setenv("NURTURE_TOKEN_TTL", "forever")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail for an unparseable duration")
	}
}

func TestLoadFromFile_ValidYAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeConfig(t, `
server:
  port: 3000
  read_timeout: 10s
database:
  path: /var/lib/nurture.db
auth:
  issuer: nurture-staging
  token_ttl: 12h
catalog:
  default_milestones: milestones/official
  policies:
    milestones/official:
      lookahead_months: 2
      grace_months: 6
      overdue_grace_months: 3
selection:
  medical_visibility_months: 1
worker:
  challenge_sweep_interval: 1m
  challenge_max_age: 5m
log:
  level: warn
  format: text
`)

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}

	if cfg.Server.Port != 3000 || dur(cfg.Server.ReadTimeout) != 10*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if dur(cfg.Server.WriteTimeout) != 30*time.Second {
		t.Errorf("unset WriteTimeout should keep default, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Database.Path != "/var/lib/nurture.db" {
		t.Errorf("Database.Path = %q", cfg.Database.Path)
	}
	if cfg.Auth.Issuer != "nurture-staging" || dur(cfg.Auth.TokenTTL) != 12*time.Hour {
		t.Errorf("Auth = %+v", cfg.Auth)
	}
	if cfg.Catalog.DefaultMilestones != catalog.OfficialMilestones {
		t.Errorf("DefaultMilestones = %q", cfg.Catalog.DefaultMilestones)
	}
	want := catalog.Policy{LookaheadMonths: 2, GraceMonths: 6, OverdueGraceMonths: 3}
	if got := cfg.Catalog.Policies[catalog.OfficialMilestones]; got != want {
		t.Errorf("policy = %+v, want %+v", got, want)
	}
	if dur(cfg.Worker.ChallengeMaxAge) != 5*time.Minute {
		t.Errorf("ChallengeMaxAge = %v, want 5m", cfg.Worker.ChallengeMaxAge)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Log.Format = %q, want text", cfg.Log.Format)
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeConfig(t, "server:\n  port: 3000\nlog:\n  level: warn\n")
	t.Setenv("NURTURE_CONFIG_PATH", path)
	t.Setenv("NURTURE_PORT", "4000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 4000 {
		t.Errorf("Server.Port = %d, want env override 4000", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want YAML value warn", cfg.Log.Level)
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeConfig(t, "server: [unterminated")
	if _, err := LoadFromFile(path); err == nil {
		t.Fatal("LoadFromFile() should fail on invalid YAML")
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("LoadFromFile() should fail when the file is missing")
	}
}

func TestLoadFromFile_InvalidDuration(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeConfig(t, "auth:\n  token_ttl: soon\n")
	_, err := LoadFromFile(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("LoadFromFile() error = %v, want invalid duration", err)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	path := writeConfig(t, `
server:
  port: 0
catalog:
  policies:
    milestones/enhanced:
      lookahead_months: -1
log:
  format: xml
`)
	_, err := LoadFromFile(path)
	if err == nil {
		t.Fatal("LoadFromFile() should fail validation")
	}
	for _, want := range []string{"server.port", "catalog.policies", "log.format"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %s", err, want)
		}
	}
}

func TestConfig_SecretsNotInYAML(t *testing.T) {
	clearEnv(t)
	setDevModeEnv(t)

	// A secret placed in YAML is ignored.
	path := writeConfig(t, "auth:\n  secret: from-yaml\n")
	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile() error = %v", err)
	}
	if cfg.Auth.Secret != "" {
		t.Errorf("Auth.Secret = %q, want empty", cfg.Auth.Secret)
	}

	cfg.Auth.Secret = "super-secret"
	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml.Marshal() error = %v", err)
	}
	if strings.Contains(string(out), "super-secret") {
		t.Error("marshalled config must not contain the secret")
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("90s")); err != nil {
		t.Fatalf("UnmarshalText() error = %v", err)
	}
	if d.Std() != 90*time.Second {
		t.Errorf("Std() = %v, want 90s", d.Std())
	}
	if err := d.UnmarshalText([]byte("ninety")); err == nil {
		t.Error("UnmarshalText() should reject invalid durations")
	}
}
