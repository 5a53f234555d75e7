// Package config provides configuration management for the co-evolution
// core.
//
// Configuration can be loaded from multiple sources (in order of
// precedence):
//  1. Environment variables (highest priority)
//  2. Configuration file (JSON)
//  3. Default values (lowest priority)
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config is the complete, recognized configuration surface from spec §6.
type Config struct {
	Models        ModelsConfig        `json:"models"`
	Resources     ResourcesConfig     `json:"resources"`
	Tooling       ToolingConfig       `json:"tooling"`
	Rewards       RewardsConfig       `json:"rewards"`
	Curriculum    CurriculumConfig    `json:"curriculum"`
	Verification  VerificationConfig `json:"verification"`
	Router        RouterConfig       `json:"router"`
	Embedding     EmbeddingConfig    `json:"embedding"`
	RateLimits    RateLimitsConfig   `json:"rate_limits"`
	ResourceLimits ResourceLimitsConfig `json:"resource_limits"`
}

// ModelSettings configures one side (teacher or student) of the dual-agent
// loop.
type ModelSettings struct {
	Backend            string  `json:"backend"`
	Model              string  `json:"model"`
	Host               string  `json:"host"`
	ContextLength      int     `json:"context_length"`
	Temperature        float64 `json:"temperature"`
	TopP               float64 `json:"top_p"`
	UncertaintySamples int     `json:"uncertainty_samples"`
}

// ModelsConfig groups teacher/student model settings.
type ModelsConfig struct {
	Teacher ModelSettings `json:"teacher"`
	Student ModelSettings `json:"student"`
}

// ResourcesConfig controls compute resource hints for the inference
// endpoint (advisory only; the core never enforces these itself).
type ResourcesConfig struct {
	Device            string `json:"device"`
	MaxGPUMemoryGB    int    `json:"max_gpu_memory_gb"`
	NumThreads        int    `json:"num_threads"`
	MaxTokensPerTask  int    `json:"max_tokens_per_task"`
}

// ToolingConfig controls which built-in tools are enabled and how they run.
type ToolingConfig struct {
	EnablePython   bool     `json:"enable_python"`
	EnableShell    bool     `json:"enable_shell"`
	EnableMath     bool     `json:"enable_math"`
	EnableTests    bool     `json:"enable_tests"`
	TimeoutSeconds int      `json:"timeout_seconds"`
	Workdir        string   `json:"workdir"`
	AllowedShell   []string `json:"allowed_shell"`
}

// RewardsConfig holds the reward engine's weights and thresholds.
type RewardsConfig struct {
	WeightUncertainty           float64 `json:"weight_uncertainty"`
	WeightToolUse               float64 `json:"weight_tool_use"`
	WeightNovelty                float64 `json:"weight_novelty"`
	WeightCorrectness            float64 `json:"weight_correctness"`
	TargetSuccessRate           float64 `json:"target_success_rate"`
	RepetitionSimilarityThreshold float64 `json:"repetition_similarity_threshold"`
}

// CurriculumConfig controls the frontier scheduler.
type CurriculumConfig struct {
	EnableFrontier  bool     `json:"enable_frontier"`
	TargetSuccess   float64  `json:"target_success"`
	FrontierWindow  float64  `json:"frontier_window"`
	Domains         []string `json:"domains"`
	WindowSize      int      `json:"window_size"`
	Epsilon         float64  `json:"epsilon"`
}

// VerificationConfig controls solver self-verification.
type VerificationConfig struct {
	Enable             bool    `json:"enable"`
	NumSamples         int     `json:"num_samples"`
	ConfidenceThreshold float64 `json:"confidence_threshold"`
	EnableCoT          bool    `json:"enable_cot"`
}

// RouterConfig controls the optional pre-step cache-serving wrapper (an
// external collaborator; the core only reads these settings to decide
// whether to consult it).
type RouterConfig struct {
	Enable                   bool    `json:"enable"`
	CloudConfidenceThreshold float64 `json:"cloud_confidence_threshold"`
	LocalConfidenceThreshold float64 `json:"local_confidence_threshold"`
	CachePath                string  `json:"cache_path"`
}

// EmbeddingConfig controls the novelty index's embedding source.
type EmbeddingConfig struct {
	UseTransformer bool   `json:"use_transformer"`
	ModelName      string `json:"model_name"`
}

// RateLimitsConfig bounds task throughput.
type RateLimitsConfig struct {
	MaxTasksPerMinute int `json:"max_tasks_per_minute"`
	MaxTasksPerHour   int `json:"max_tasks_per_hour"`
}

// ResourceLimitsConfig is advisory only; enforced insofar as the tool
// runner can (wall-clock timeout is the one hard limit it can enforce).
type ResourceLimitsConfig struct {
	MaxMemoryMB  int `json:"max_memory_mb"`
	MaxCPUSeconds int `json:"max_cpu_seconds"`
	MaxOutputKB  int `json:"max_output_kb"`
}

// Default returns the spec's default configuration.
func Default() *Config {
	return &Config{
		Models: ModelsConfig{
			Teacher: ModelSettings{Backend: "local", Model: "teacher-model", ContextLength: 8192, Temperature: 0.7, TopP: 0.9, UncertaintySamples: 3},
			Student: ModelSettings{Backend: "local", Model: "student-model", ContextLength: 8192, Temperature: 0.2, TopP: 0.9, UncertaintySamples: 3},
		},
		Resources: ResourcesConfig{Device: "cpu", NumThreads: 4, MaxTokensPerTask: 2048},
		Tooling: ToolingConfig{
			EnablePython:   true,
			EnableShell:    false,
			EnableMath:     true,
			EnableTests:    false,
			TimeoutSeconds: 30,
			Workdir:        "runs/work",
			AllowedShell:   []string{"echo", "cat", "ls"},
		},
		Rewards: RewardsConfig{
			WeightUncertainty:             0.5,
			WeightToolUse:                 0.3,
			WeightNovelty:                 0.2,
			WeightCorrectness:             0.3,
			TargetSuccessRate:             0.5,
			RepetitionSimilarityThreshold: 0.9,
		},
		Curriculum: CurriculumConfig{
			EnableFrontier: true,
			TargetSuccess:  0.5,
			FrontierWindow: 0.1,
			Domains:        []string{"math", "logic", "code"},
			WindowSize:     20,
			Epsilon:        0.2,
		},
		Verification: VerificationConfig{
			Enable:              false,
			NumSamples:          3,
			ConfidenceThreshold: 0.7,
			EnableCoT:           false,
		},
		Router: RouterConfig{Enable: false, CloudConfidenceThreshold: 0.8, LocalConfidenceThreshold: 0.5, CachePath: "runs/router_cache.json"},
		Embedding: EmbeddingConfig{UseTransformer: false, ModelName: "fallback-ngram-hash"},
		RateLimits: RateLimitsConfig{MaxTasksPerMinute: 30, MaxTasksPerHour: 1000},
		ResourceLimits: ResourceLimitsConfig{MaxMemoryMB: 512, MaxCPUSeconds: 30, MaxOutputKB: 64},
	}
}

// Load loads configuration from environment variables on top of defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads a JSON configuration file, then applies environment
// overrides on top of it.
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromEnv applies CE_<SECTION>_<KEY> environment overrides, following
// the teacher's UT_<SECTION>_<KEY> convention.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("CE_TOOLING_ENABLE_SHELL"); v != "" {
		c.Tooling.EnableShell = parseBool(v)
	}
	if v := os.Getenv("CE_TOOLING_ENABLE_TESTS"); v != "" {
		c.Tooling.EnableTests = parseBool(v)
	}
	if v := os.Getenv("CE_TOOLING_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Tooling.TimeoutSeconds = n
		}
	}
	if v := os.Getenv("CE_CURRICULUM_ENABLE_FRONTIER"); v != "" {
		c.Curriculum.EnableFrontier = parseBool(v)
	}
	if v := os.Getenv("CE_CURRICULUM_TARGET_SUCCESS"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			c.Curriculum.TargetSuccess = n
		}
	}
	if v := os.Getenv("CE_VERIFICATION_ENABLE"); v != "" {
		c.Verification.Enable = parseBool(v)
	}
	if v := os.Getenv("CE_RATE_LIMITS_MAX_TASKS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimits.MaxTasksPerMinute = n
		}
	}
	if v := os.Getenv("CE_RATE_LIMITS_MAX_TASKS_PER_HOUR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RateLimits.MaxTasksPerHour = n
		}
	}
	return nil
}

// Validate checks the configuration for internal consistency, mirroring
// the teacher's Validate() shape (descriptive errors, fail closed).
func (c *Config) Validate() error {
	for _, d := range c.Curriculum.Domains {
		switch d {
		case "math", "logic", "code":
		default:
			return fmt.Errorf("curriculum.domains: unknown domain %q", d)
		}
	}
	if c.Curriculum.WindowSize < 1 {
		return fmt.Errorf("curriculum.window_size must be >= 1")
	}
	if c.Curriculum.Epsilon < 0 || c.Curriculum.Epsilon > 1 {
		return fmt.Errorf("curriculum.epsilon must be in [0,1]")
	}
	if c.Verification.NumSamples < 1 {
		return fmt.Errorf("verification.num_samples must be >= 1")
	}
	if c.Tooling.TimeoutSeconds < 1 {
		return fmt.Errorf("tooling.timeout_seconds must be >= 1")
	}
	if c.RateLimits.MaxTasksPerMinute < 0 || c.RateLimits.MaxTasksPerHour < 0 {
		return fmt.Errorf("rate_limits must be non-negative")
	}
	return nil
}

// parseBool parses a boolean from string, matching the teacher's lenient
// set of truthy spellings.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}

// ToJSON serializes the configuration to indented JSON.
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
