//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package trajectory provides tool trajectory-based evaluation.
package trajectory

import (
	"context"
	"fmt"

	"trpc.group/trpc-go/trpc-tooleval-go/evaluator"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/lcs"
	"trpc.group/trpc-go/trpc-tooleval-go/log"
	"trpc.group/trpc-go/trpc-tooleval-go/match"
	"trpc.group/trpc-go/trpc-tooleval-go/metric"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
)

// Name is the name the trajectory evaluator registers under.
const Name = "tool_trajectory"

// trajectoryEvaluator is the default tool trajectory evaluator implementation.
type trajectoryEvaluator struct {
	comparator *match.Comparator
}

// New creates a new trajectory evaluator.
func New(opt ...Option) evaluator.Evaluator {
	opts := newOptions(opt...)
	return &trajectoryEvaluator{comparator: opts.comparator}
}

// Name returns the name of this evaluator.
func (e *trajectoryEvaluator) Name() string {
	return Name
}

// Description returns a description of what this evaluator does.
func (e *trajectoryEvaluator) Description() string {
	return "Evaluates the accuracy of the predicted tool usage trajectory including names, parameters and order"
}

// Evaluate scores the predicted tool calls against the ground-truth calls
// under the given matching regime. Missing or empty sequences are scored
// through the empty-sequence conventions rather than rejected; only an
// unknown mode is an error.
func (e *trajectoryEvaluator) Evaluate(ctx context.Context, groundTruth, prediction []*taskset.ToolCall,
	mode match.Mode, cfg *metric.Config) (*report.TaskResult, error) {
	if mode != match.ModeStrict && mode != match.ModeFlexible {
		return nil, fmt.Errorf("unknown match mode %d", int(mode))
	}
	weights, thresholds := resolveConfig(cfg)
	gtNames := taskset.ToolNames(groundTruth)
	predNames := taskset.ToolNames(prediction)
	result := &report.TaskResult{
		MatchType:            mode,
		GroundTruthToolCount: len(groundTruth),
		PredictionToolCount:  len(prediction),
		CountMatch:           len(groundTruth) == len(prediction),
		MissingTools:         nameSetDiff(gtNames, predNames),
		ExtraTools:           nameSetDiff(predNames, gtNames),
		ParamMatches:         []*report.ParamMatch{},
		OrderScore:           orderScore(gtNames, predNames),
		Weights:              weights,
		Thresholds:           thresholds,
	}
	nameCounts := countNames(gtNames)
	zipLen := min(len(groundTruth), len(prediction))
	for position := 0; position < zipLen; position++ {
		if gtNames[position] != predNames[position] {
			continue
		}
		result.NameMatches++
		score, mismatches := e.comparator.Params(
			toolParameters(groundTruth[position]), toolParameters(prediction[position]), mode)
		if score == 1.0 {
			result.ExactMatches++
		}
		result.ParamMatches = append(result.ParamMatches, &report.ParamMatch{
			Position:   position,
			ToolName:   gtNames[position],
			Key:        paramMatchKey(gtNames[position], position, nameCounts),
			Score:      score,
			Mismatches: mismatches,
		})
	}
	result.ToolNameScore = ratioScore(result.NameMatches, len(groundTruth), len(prediction))
	result.ParamMatchScore = paramScore(result.ParamMatches, len(groundTruth), len(prediction))
	result.OverallScore = weights.Name*result.ToolNameScore +
		weights.Params*result.ParamMatchScore +
		weights.Order*result.OrderScore
	result.Success = successFor(result, mode, thresholds, len(groundTruth), len(prediction))
	return result, nil
}

// successFor judges the task under the given regime. Two empty sequences are
// an unconditional success in either regime. Strict success demands perfect
// parameter reproduction at every position, no extra calls and perfect order.
// Flexible success tolerates extra calls and gates the parameter and order
// scores on the configured thresholds instead.
func successFor(result *report.TaskResult, mode match.Mode,
	thresholds metric.Thresholds, gtLen, predLen int) bool {
	if gtLen == 0 && predLen == 0 {
		return true
	}
	if mode == match.ModeStrict {
		return result.ExactMatches == gtLen &&
			len(result.ExtraTools) == 0 &&
			result.OrderScore == 1.0
	}
	if result.NameMatches != gtLen {
		return false
	}
	for _, paramMatch := range result.ParamMatches {
		if paramMatch.Score < thresholds.FlexibleParam {
			return false
		}
	}
	return result.OrderScore >= thresholds.FlexibleOrder
}

// resolveConfig returns the weights and thresholds to apply. Invalid values
// fall back to the defaults with a logged warning, never an error.
func resolveConfig(cfg *metric.Config) (metric.Weights, metric.Thresholds) {
	if cfg == nil {
		return metric.DefaultWeights(), metric.DefaultThresholds()
	}
	weights, valid := metric.ResolveWeights(&cfg.Weights)
	if !valid {
		log.Warnf("score weights %+v do not sum to 1.0, using defaults", cfg.Weights)
	}
	thresholds, valid := metric.ResolveThresholds(&cfg.Thresholds)
	if !valid {
		log.Warnf("success thresholds %+v out of range, using defaults", cfg.Thresholds)
	}
	return weights, thresholds
}

// ratioScore scales a positional match count by the ground-truth length,
// applying the empty-sequence conventions.
func ratioScore(matches, gtLen, predLen int) float64 {
	if gtLen == 0 {
		if predLen == 0 {
			return 1.0
		}
		return 0.0
	}
	return float64(matches) / float64(gtLen)
}

// paramScore averages the per-position parameter scores over the
// name-matching positions. A non-empty ground truth with no name-matching
// positions scores zero.
func paramScore(paramMatches []*report.ParamMatch, gtLen, predLen int) float64 {
	if gtLen == 0 {
		if predLen == 0 {
			return 1.0
		}
		return 0.0
	}
	if len(paramMatches) == 0 {
		return 0.0
	}
	total := 0.0
	for _, paramMatch := range paramMatches {
		total += paramMatch.Score
	}
	return total / float64(len(paramMatches))
}

// orderScore scores ordering fidelity: the longest common subsequence length
// of the name sequences over the ground-truth length. Two empty sequences are
// in perfect vacuous order.
func orderScore(gtNames, predNames []string) float64 {
	if len(gtNames) == 0 && len(predNames) == 0 {
		return 1.0
	}
	denominator := len(gtNames)
	if denominator < 1 {
		denominator = 1
	}
	return float64(lcs.Length(gtNames, predNames)) / float64(denominator)
}

// nameSetDiff returns the names from want that never appear in have, in
// first-appearance order. The diff is a set difference by name, independent
// of position; repeated names are reported once.
func nameSetDiff(want, have []string) []string {
	haveSet := make(map[string]struct{}, len(have))
	for _, name := range have {
		haveSet[name] = struct{}{}
	}
	diff := []string{}
	reported := make(map[string]struct{}, len(want))
	for _, name := range want {
		if _, ok := reported[name]; ok {
			continue
		}
		reported[name] = struct{}{}
		if _, ok := haveSet[name]; !ok {
			diff = append(diff, name)
		}
	}
	return diff
}

// countNames counts the occurrences of each name.
func countNames(names []string) map[string]int {
	counts := make(map[string]int, len(names))
	for _, name := range names {
		counts[name]++
	}
	return counts
}

// paramMatchKey disambiguates repeated tools: the bare tool name when it
// occurs once in the ground truth, otherwise the name suffixed with the
// position.
func paramMatchKey(name string, position int, nameCounts map[string]int) string {
	if nameCounts[name] == 1 {
		return name
	}
	return fmt.Sprintf("%s_%d", name, position)
}

// toolParameters returns the call's parameter map, tolerating nil calls.
func toolParameters(call *taskset.ToolCall) map[string]any {
	if call == nil {
		return nil
	}
	return call.ToolParameters
}
