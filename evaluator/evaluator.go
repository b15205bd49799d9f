//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package evaluator defines the interface for task evaluators.
package evaluator

import (
	"context"

	"trpc.group/trpc-go/trpc-tooleval-go/match"
	"trpc.group/trpc-go/trpc-tooleval-go/metric"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
)

// Evaluator scores one task's predicted tool calls against the ground truth.
type Evaluator interface {
	// Name returns the name of this evaluator.
	Name() string
	// Description returns a description of what this evaluator does.
	Description() string
	// Evaluate scores the predicted tool calls against the ground-truth calls
	// under the given matching regime. A nil config selects the default
	// weights and thresholds.
	Evaluate(ctx context.Context, groundTruth, prediction []*taskset.ToolCall,
		mode match.Mode, cfg *metric.Config) (*report.TaskResult, error)
}
