//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package metric

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config bundles the weights and thresholds for one evaluation. It is built
// once, before evaluation starts, and passed explicitly; nothing mutates it
// afterwards.
type Config struct {
	// Weights for the overall score.
	Weights Weights `json:"weights" yaml:"weights"`
	// Thresholds for flexible-mode success.
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds"`
}

// DefaultConfig returns a config populated with the default weights and
// thresholds.
func DefaultConfig() Config {
	return Config{
		Weights:    DefaultWeights(),
		Thresholds: DefaultThresholds(),
	}
}

// Resolve returns a usable copy of the config. Invalid weights or thresholds
// are replaced by their defaults; the returned bool is false when any field
// was replaced.
func (c Config) Resolve() (Config, bool) {
	weights, weightsOK := ResolveWeights(&c.Weights)
	thresholds, thresholdsOK := ResolveThresholds(&c.Thresholds)
	return Config{Weights: weights, Thresholds: thresholds}, weightsOK && thresholdsOK
}

// LoadFile reads a Config from a YAML or JSON file. The format is chosen by
// file extension: ".json" decodes as JSON, ".yaml" and ".yml" as YAML. Other
// extensions are rejected. Fields absent from the file keep their defaults.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	cfg := DefaultConfig()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode json config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("decode yaml config %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q", filepath.Ext(path))
	}
	return &cfg, nil
}
