//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package tooleval

import (
	"trpc.group/trpc-go/trpc-tooleval-go/evaluator"
	"trpc.group/trpc-go/trpc-tooleval-go/evaluator/registry"
	"trpc.group/trpc-go/trpc-tooleval-go/evaluator/trajectory"
	"trpc.group/trpc-go/trpc-tooleval-go/metric"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
	reportinmemory "trpc.group/trpc-go/trpc-tooleval-go/report/inmemory"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
	tasksetinmemory "trpc.group/trpc-go/trpc-tooleval-go/taskset/inmemory"
)

// options is the options for the batch evaluator.
type options struct {
	taskSetManager taskset.Manager
	reportManager  report.Manager
	registry       registry.Registry
	evaluator      evaluator.Evaluator
	evaluatorName  string
	config         *metric.Config
	parallelism    int
}

// newOptions applies the given options over the defaults: in-memory managers,
// the default registry, the trajectory evaluator and serial execution.
func newOptions(opt ...Option) *options {
	opts := &options{
		taskSetManager: tasksetinmemory.New(),
		reportManager:  reportinmemory.New(),
		registry:       registry.New(),
		evaluatorName:  trajectory.Name,
		parallelism:    1,
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is the option for the batch evaluator.
type Option func(*options)

// WithTaskSetManager sets the task set manager.
func WithTaskSetManager(manager taskset.Manager) Option {
	return func(opts *options) {
		opts.taskSetManager = manager
	}
}

// WithReportManager sets the report manager.
func WithReportManager(manager report.Manager) Option {
	return func(opts *options) {
		opts.reportManager = manager
	}
}

// WithRegistry sets the evaluator registry.
func WithRegistry(r registry.Registry) Option {
	return func(opts *options) {
		opts.registry = r
	}
}

// WithEvaluatorName selects the evaluator to resolve from the registry.
// Empty names are ignored.
func WithEvaluatorName(name string) Option {
	return func(opts *options) {
		if name != "" {
			opts.evaluatorName = name
		}
	}
}

// WithEvaluator sets the evaluator directly, bypassing the registry lookup.
func WithEvaluator(e evaluator.Evaluator) Option {
	return func(opts *options) {
		opts.evaluator = e
	}
}

// WithConfig sets the scoring weights and success thresholds.
func WithConfig(cfg metric.Config) Option {
	return func(opts *options) {
		opts.config = &cfg
	}
}

// WithWeights sets the weights for the overall score, keeping any thresholds
// set by other options.
func WithWeights(weights metric.Weights) Option {
	return func(opts *options) {
		opts.ensureConfig().Weights = weights
	}
}

// WithThresholds sets the success thresholds for flexible matching, keeping
// any weights set by other options.
func WithThresholds(thresholds metric.Thresholds) Option {
	return func(opts *options) {
		opts.ensureConfig().Thresholds = thresholds
	}
}

// WithParallelism sets the number of tasks evaluated concurrently. Values
// below two keep the serial path.
func WithParallelism(parallelism int) Option {
	return func(opts *options) {
		if parallelism > 0 {
			opts.parallelism = parallelism
		}
	}
}

func (o *options) ensureConfig() *metric.Config {
	if o.config == nil {
		cfg := metric.DefaultConfig()
		o.config = &cfg
	}
	return o.config
}
