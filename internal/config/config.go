// Package config provides the Config struct and loader for .fluentband.yaml
// project-level configuration files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for configuration. These are the single source of truth;
// New() references them and no other code should duplicate them.
const (
	DefaultDatabasePath = "fluentband.db"

	DefaultModel      = "claude-sonnet-4.6"
	DefaultDifficulty = "medium"
	DefaultUserLevel  = 6.0
	DefaultTargetBand = 7.0

	DefaultAudioBucket = "fluentband-audio"
	DefaultAudioRegion = "eu-west-2"

	DefaultServerPort = 8080

	DefaultCacheTTLSeconds = 300
	DefaultPregenWorkers   = 3
)

// DatabaseConfig holds persistence settings.
type DatabaseConfig struct {
	Path string `yaml:"path,omitempty"`
}

// GenerationConfig holds LLM generation parameters.
type GenerationConfig struct {
	Model      string  `yaml:"model,omitempty"`
	Difficulty string  `yaml:"difficulty,omitempty"`
	UserLevel  float64 `yaml:"user_level,omitempty"`
	TargetBand float64 `yaml:"target_band,omitempty"`
}

// AudioConfig holds speech synthesis and storage settings.
type AudioConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	Region string `yaml:"region,omitempty"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port,omitempty"`
}

// PipelineConfig holds orchestration settings.
type PipelineConfig struct {
	CacheTTLSeconds int `yaml:"cache_ttl_seconds,omitempty"`
	PregenWorkers   int `yaml:"pregen_workers,omitempty"`
}

// Config is the top-level configuration loaded from .fluentband.yaml.
type Config struct {
	Database   DatabaseConfig   `yaml:"database,omitempty"`
	Generation GenerationConfig `yaml:"generation,omitempty"`
	Audio      AudioConfig      `yaml:"audio,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Pipeline   PipelineConfig   `yaml:"pipeline,omitempty"`
}

// New returns a Config with all hard-coded defaults populated.
func New() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: DefaultDatabasePath,
		},
		Generation: GenerationConfig{
			Model:      DefaultModel,
			Difficulty: DefaultDifficulty,
			UserLevel:  DefaultUserLevel,
			TargetBand: DefaultTargetBand,
		},
		Audio: AudioConfig{
			Bucket: DefaultAudioBucket,
			Region: DefaultAudioRegion,
		},
		Server: ServerConfig{
			Port: DefaultServerPort,
		},
		Pipeline: PipelineConfig{
			CacheTTLSeconds: DefaultCacheTTLSeconds,
			PregenWorkers:   DefaultPregenWorkers,
		},
	}
}

// Load finds .fluentband.yaml by walking up from startDir (max 10 levels),
// unmarshals it, and fills in missing fields with defaults. If no config
// file is found, returns defaults with a nil error. Real I/O errors (e.g.
// permission denied) are returned to the caller.
func Load(startDir string) (*Config, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("loading .fluentband.yaml: %w", err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .fluentband.yaml: %w", err)
	}

	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .fluentband.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found.
func findConfigFile(dir string) ([]byte, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".fluentband.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *Config) {
	if src.Database.Path != "" {
		dst.Database.Path = src.Database.Path
	}

	if src.Generation.Model != "" {
		dst.Generation.Model = src.Generation.Model
	}
	if src.Generation.Difficulty != "" {
		dst.Generation.Difficulty = src.Generation.Difficulty
	}
	if src.Generation.UserLevel != 0 {
		dst.Generation.UserLevel = src.Generation.UserLevel
	}
	if src.Generation.TargetBand != 0 {
		dst.Generation.TargetBand = src.Generation.TargetBand
	}

	if src.Audio.Bucket != "" {
		dst.Audio.Bucket = src.Audio.Bucket
	}
	if src.Audio.Region != "" {
		dst.Audio.Region = src.Audio.Region
	}

	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}

	if src.Pipeline.CacheTTLSeconds != 0 {
		dst.Pipeline.CacheTTLSeconds = src.Pipeline.CacheTTLSeconds
	}
	if src.Pipeline.PregenWorkers != 0 {
		dst.Pipeline.PregenWorkers = src.Pipeline.PregenWorkers
	}
}
