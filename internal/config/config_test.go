package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv("CE_TOOLING_ENABLE_SHELL", "true")
	t.Setenv("CE_CURRICULUM_TARGET_SUCCESS", "0.65")
	t.Setenv("CE_RATE_LIMITS_MAX_TASKS_PER_MINUTE", "5")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Tooling.EnableShell {
		t.Fatalf("expected shell tool enabled from env override")
	}
	if cfg.Curriculum.TargetSuccess != 0.65 {
		t.Fatalf("expected target success 0.65, got %v", cfg.Curriculum.TargetSuccess)
	}
	if cfg.RateLimits.MaxTasksPerMinute != 5 {
		t.Fatalf("expected 5 tasks per minute, got %d", cfg.RateLimits.MaxTasksPerMinute)
	}
}

func TestLoadFromFileMergesWithDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{"rewards": {"weight_novelty": 0.4}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	cfg, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if cfg.Rewards.WeightNovelty != 0.4 {
		t.Fatalf("expected overridden weight_novelty 0.4, got %v", cfg.Rewards.WeightNovelty)
	}
	if cfg.Tooling.TimeoutSeconds != 30 {
		t.Fatalf("expected default timeout_seconds to survive merge, got %d", cfg.Tooling.TimeoutSeconds)
	}
}

func TestValidateRejectsUnknownDomain(t *testing.T) {
	cfg := Default()
	cfg.Curriculum.Domains = []string{"math", "chemistry"}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for unknown domain")
	}
}

func TestValidateRejectsBadEpsilon(t *testing.T) {
	cfg := Default()
	cfg.Curriculum.Epsilon = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for epsilon out of range")
	}
}

func TestValidateRejectsZeroTimeout(t *testing.T) {
	cfg := Default()
	cfg.Tooling.TimeoutSeconds = 0
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for zero timeout")
	}
}
