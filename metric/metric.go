//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package metric provides the scoring configuration for tool-call evaluation.
package metric

import (
	"fmt"
	"math"
)

// Default scoring policy values. They mirror the reference scoring policy and
// are used whenever the caller supplies no configuration or an invalid one.
const (
	// DefaultNameWeight is the default contribution of the tool-name score.
	DefaultNameWeight = 0.4
	// DefaultParamsWeight is the default contribution of the parameter-match score.
	DefaultParamsWeight = 0.4
	// DefaultOrderWeight is the default contribution of the order score.
	DefaultOrderWeight = 0.2
	// DefaultFlexibleParamThreshold is the minimum per-position parameter score
	// required for flexible success.
	DefaultFlexibleParamThreshold = 0.6
	// DefaultFlexibleOrderThreshold is the minimum order score required for
	// flexible success.
	DefaultFlexibleOrderThreshold = 0.5
	// WeightSumTolerance is the allowed deviation of a weight sum from 1.0.
	WeightSumTolerance = 0.001
)

// Weights control how the three component scores combine into the overall
// score. They must sum to 1.0 within WeightSumTolerance.
type Weights struct {
	// Name weights the position-wise tool-name score.
	Name float64 `json:"name" yaml:"name"`
	// Params weights the parameter-match score.
	Params float64 `json:"params" yaml:"params"`
	// Order weights the sequence-order score.
	Order float64 `json:"order" yaml:"order"`
}

// DefaultWeights returns the default score weights.
func DefaultWeights() Weights {
	return Weights{
		Name:   DefaultNameWeight,
		Params: DefaultParamsWeight,
		Order:  DefaultOrderWeight,
	}
}

// Sum returns the sum of the three weights.
func (w Weights) Sum() float64 {
	return w.Name + w.Params + w.Order
}

// Validate checks that the weights sum to 1.0 within WeightSumTolerance.
func (w Weights) Validate() error {
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightSumTolerance {
		return fmt.Errorf("weights sum to %v, want 1.0 (tolerance %v)", sum, WeightSumTolerance)
	}
	return nil
}

// ResolveWeights returns the weights to use for an evaluation. A nil input
// selects the defaults. Invalid weights also fall back to the defaults; the
// returned bool is false in that case so the caller can surface a warning.
// Invalid weights are never an error.
func ResolveWeights(w *Weights) (Weights, bool) {
	if w == nil {
		return DefaultWeights(), true
	}
	if err := w.Validate(); err != nil {
		return DefaultWeights(), false
	}
	return *w, true
}

// Thresholds are the minimum per-metric scores required for a flexible-mode
// task to be judged successful. Strict success does not consult them.
type Thresholds struct {
	// FlexibleParam is the minimum per-position parameter score.
	FlexibleParam float64 `json:"flexible_param" yaml:"flexible_param"`
	// FlexibleOrder is the minimum order score.
	FlexibleOrder float64 `json:"flexible_order" yaml:"flexible_order"`
}

// DefaultThresholds returns the default flexible-mode thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		FlexibleParam: DefaultFlexibleParamThreshold,
		FlexibleOrder: DefaultFlexibleOrderThreshold,
	}
}

// Validate checks that both thresholds lie in [0, 1].
func (t Thresholds) Validate() error {
	if t.FlexibleParam < 0 || t.FlexibleParam > 1 {
		return fmt.Errorf("flexible param threshold %v out of [0, 1]", t.FlexibleParam)
	}
	if t.FlexibleOrder < 0 || t.FlexibleOrder > 1 {
		return fmt.Errorf("flexible order threshold %v out of [0, 1]", t.FlexibleOrder)
	}
	return nil
}

// ResolveThresholds returns the thresholds to use for an evaluation. A nil
// input selects the defaults. Out-of-range thresholds fall back to the
// defaults; the returned bool is false in that case.
func ResolveThresholds(t *Thresholds) (Thresholds, bool) {
	if t == nil {
		return DefaultThresholds(), true
	}
	if err := t.Validate(); err != nil {
		return DefaultThresholds(), false
	}
	return *t, true
}
