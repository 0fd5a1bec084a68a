package main

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/fluentband/fluentband/internal/config"
	"github.com/fluentband/fluentband/internal/generation"
	"github.com/fluentband/fluentband/internal/llm"
	"github.com/fluentband/fluentband/internal/pipeline"
	"github.com/fluentband/fluentband/internal/store"
	"github.com/fluentband/fluentband/internal/synthesis"
)

// deps bundles everything a command needs after wiring.
type deps struct {
	cfg          *config.Config
	tasks        *store.GormTaskStore
	orchestrator *pipeline.Orchestrator
	engine       *llm.CopilotEngine
}

// buildDeps loads config from the working directory and wires the full
// pipeline: SQLite store, Copilot engine, Polly speech, S3 storage. A non-nil
// override runs after loading, letting commands apply flag values on top of
// the file config.
func buildDeps(ctx context.Context, override func(*config.Config)) (*deps, error) {
	cfg, err := config.Load(".")
	if err != nil {
		return nil, err
	}
	if override != nil {
		override(cfg)
	}

	tasks, err := store.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Audio.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	engine := llm.NewCopilotEngineBuilder(cfg.Generation.Model, nil).Build()

	scripts := generation.NewScriptGenerator(engine, cfg.Generation.Model)
	questions := generation.NewQuestionGenerator(engine, cfg.Generation.Model)
	audio := synthesis.New(
		polly.NewFromConfig(awsCfg),
		s3.NewFromConfig(awsCfg),
		cfg.Audio.Bucket,
		cfg.Audio.Region,
	)

	orchestrator := pipeline.New(tasks, scripts, questions, audio, pipeline.Options{
		CacheTTL:   time.Duration(cfg.Pipeline.CacheTTLSeconds) * time.Second,
		Difficulty: cfg.Generation.Difficulty,
		UserLevel:  cfg.Generation.UserLevel,
		TargetBand: cfg.Generation.TargetBand,
	})

	return &deps{
		cfg:          cfg,
		tasks:        tasks,
		orchestrator: orchestrator,
		engine:       engine,
	}, nil
}

// shutdown releases the LLM engine. Safe to call even if the engine never
// started.
func (d *deps) shutdown(ctx context.Context) {
	_ = d.engine.Shutdown(ctx)
}
