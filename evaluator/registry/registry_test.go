//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package registry

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"trpc.group/trpc-go/trpc-tooleval-go/evaluator/trajectory"
	"trpc.group/trpc-go/trpc-tooleval-go/match"
	"trpc.group/trpc-go/trpc-tooleval-go/metric"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
)

type stubEvaluator struct {
	name        string
	description string
}

func (s *stubEvaluator) Name() string {
	return s.name
}

func (s *stubEvaluator) Description() string {
	return s.description
}

func (s *stubEvaluator) Evaluate(ctx context.Context, groundTruth, prediction []*taskset.ToolCall,
	mode match.Mode, cfg *metric.Config) (*report.TaskResult, error) {
	if ctx == nil {
		return nil, errors.New("context is nil")
	}
	return &report.TaskResult{MatchType: mode, OverallScore: 1.0, Success: true}, nil
}

func TestRegistryDefaults(t *testing.T) {
	reg := New()

	defaultEval, err := reg.Get(trajectory.Name)
	assert.NoError(t, err)
	assert.NotNil(t, defaultEval)
	assert.Equal(t, trajectory.Name, defaultEval.Name())
	assert.Equal(t, []string{trajectory.Name}, reg.List())
}

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := New()
	custom := &stubEvaluator{name: "custom", description: "custom evaluator"}

	err := reg.Register("custom", custom)
	assert.NoError(t, err)

	got, err := reg.Get("custom")
	assert.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestRegistryOverwrite(t *testing.T) {
	reg := New()
	first := &stubEvaluator{name: "duplicate"}
	err := reg.Register("duplicate", first)
	assert.NoError(t, err)

	second := &stubEvaluator{name: "duplicate"}
	err = reg.Register("duplicate", second)
	assert.NoError(t, err)

	got, err := reg.Get("duplicate")
	assert.NoError(t, err)
	assert.Equal(t, second, got)
}

func TestRegistryRegisterDeriveName(t *testing.T) {
	reg := New()
	custom := &stubEvaluator{name: "derived"}

	err := reg.Register("", custom)
	assert.NoError(t, err)

	got, err := reg.Get("derived")
	assert.NoError(t, err)
	assert.Equal(t, custom, got)
}

func TestRegistryRegisterErrors(t *testing.T) {
	reg := New()

	err := reg.Register("nil", nil)
	assert.Error(t, err)

	err = reg.Register("", &stubEvaluator{})
	assert.Error(t, err)
}

func TestRegistryGetMissing(t *testing.T) {
	reg := New()

	_, err := reg.Get("missing")
	assert.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing")
}

func TestRegistryListSorted(t *testing.T) {
	reg := New()
	assert.NoError(t, reg.Register("zeta", &stubEvaluator{name: "zeta"}))
	assert.NoError(t, reg.Register("alpha", &stubEvaluator{name: "alpha"}))

	assert.Equal(t, []string{"alpha", trajectory.Name, "zeta"}, reg.List())
}
