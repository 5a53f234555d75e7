// Package main provides the entry point for the co-evolution coordinator
// loop: load configuration, construct every component, and repeatedly
// call Coordinator.RunOnce until the requested number of steps complete.
//
// This binary is the whole external surface of the core: the CLI/launch
// scripts, process supervision, GUI dashboards, the PEFT fine-tuning
// trainer, and the cloud/local routing layer are all out of scope (spec
// §1) and are expected to wrap or replace this loop, not live inside it.
//
// Environment variables:
//   - DEBUG: set to "true" to enable debug logging.
//   - CE_*: configuration overrides, see internal/config.
package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"path/filepath"

	"coevolve/internal/config"
	"coevolve/internal/coordinator"
	"coevolve/internal/curriculum"
	"coevolve/internal/embeddings"
	"coevolve/internal/inference"
	"coevolve/internal/logging"
	"coevolve/internal/novelty"
	"coevolve/internal/persist"
	"coevolve/internal/ratelimit"
	"coevolve/internal/reward"
	"coevolve/internal/solver"
	"coevolve/internal/taskgen"
	"coevolve/internal/tools"
	"coevolve/internal/types"
	"coevolve/internal/uncertainty"
	"coevolve/internal/verifier"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON configuration file (optional)")
	steps := flag.Int("steps", 1, "number of evolution steps to run")
	runsDir := flag.String("runs-dir", "runs", "directory for trajectories.jsonl, security_events.jsonl, router_cache.json")
	flag.Parse()

	logger := logging.New()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	if err := os.MkdirAll(*runsDir, 0o755); err != nil {
		log.Fatalf("failed to create runs directory: %v", err)
	}

	registry := tools.NewRegistry(&cfg.Tooling)

	domains := make([]types.Domain, 0, len(cfg.Curriculum.Domains))
	for _, d := range cfg.Curriculum.Domains {
		domains = append(domains, types.Domain(d))
	}
	sched := curriculum.New(curriculum.Config{
		EnableFrontier: cfg.Curriculum.EnableFrontier,
		TargetSuccess:  cfg.Curriculum.TargetSuccess,
		Domains:        domains,
		WindowSize:     cfg.Curriculum.WindowSize,
		Epsilon:        cfg.Curriculum.Epsilon,
		Stride:         5,
		Band:           cfg.Curriculum.FrontierWindow,
	}, rand.New(rand.NewSource(1)))

	gen := taskgen.New()

	endpoint := inference.NewScripted(nil, "Answer: 0")
	slv := solver.New(endpoint, registry, solver.Config{
		MaxToolRetries:        1,
		EnableVerification:    cfg.Verification.Enable,
		VerificationSamples:   cfg.Verification.NumSamples,
		VerificationThreshold: cfg.Verification.ConfidenceThreshold,
	})

	vf := verifier.New(registry)
	unc := uncertainty.New(endpoint, cfg.Models.Student.UncertaintySamples)

	embedder := embeddings.NewNgramHashEmbedder(64, 3)
	nov := novelty.New(embedder)

	rw := reward.New(reward.WeightsFromConfig(cfg.Rewards))

	trajWriter := persist.NewTrajectoryWriter(filepath.Join(*runsDir, "trajectories.jsonl"))
	secLog := persist.NewSecurityLog(filepath.Join(*runsDir, "security_events.jsonl"))
	if auditDB, err := persist.OpenAuditDB(filepath.Join(*runsDir, "security_events.db")); err != nil {
		logger.Warnf("audit db unavailable, continuing with JSONL-only security log", map[string]interface{}{"err": err})
	} else {
		secLog = secLog.WithAuditDB(auditDB)
		defer auditDB.Close()
	}

	var limiter *ratelimit.Limiter
	if cfg.RateLimits.MaxTasksPerMinute > 0 || cfg.RateLimits.MaxTasksPerHour > 0 {
		limiter = ratelimit.New(cfg.RateLimits.MaxTasksPerMinute, cfg.RateLimits.MaxTasksPerHour)
	}

	coord := coordinator.New(sched, gen, slv, vf, unc, nov, rw, trajWriter, secLog, limiter, logger)

	ctx := context.Background()
	for i := 0; i < *steps; i++ {
		traj := coord.RunOnce(ctx, coordinator.Overrides{})
		if traj == nil {
			logger.Infof("step skipped", map[string]interface{}{"step": i})
			continue
		}
		logger.Infof("step complete", map[string]interface{}{
			"step": i, "task_id": traj.Task.TaskID, "domain": traj.Task.Domain,
			"success": traj.Success, "reward_total": traj.Reward.Total,
		})
	}

	report := coord.CalibrationReport()
	logger.Infof("calibration report", map[string]interface{}{
		"total_samples": report.TotalSamples, "bias": report.Bias, "bias_magnitude": report.BiasMagnitude,
	})
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromFile(path)
}
