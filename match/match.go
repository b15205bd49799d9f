//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package match decides whether tool-call values and parameter maps match
// under the strict or flexible regime.
package match

// Named policy constants for the matching tolerances. The values reproduce
// the reference scoring behavior; override them through WithTolerance.
const (
	// DefaultStrictEpsilon bounds the absolute difference of two floats in
	// strict mode.
	DefaultStrictEpsilon = 1e-6
	// DefaultFlexibleAbsTolerance bounds the absolute difference of two small
	// floats in flexible mode.
	DefaultFlexibleAbsTolerance = 0.2
	// DefaultFlexibleRelTolerance bounds the relative difference of two large
	// floats in flexible mode.
	DefaultFlexibleRelTolerance = 0.2
	// DefaultSmallValueCutoff is the magnitude below which relative error is
	// meaningless and the absolute tolerance applies instead.
	DefaultSmallValueCutoff = 1.0
	// DefaultPartialCredit is the flexible-mode credit for a parameter that is
	// present but fails the value comparison.
	DefaultPartialCredit = 0.5
)

// Tolerance names the numeric matching policy.
type Tolerance struct {
	// StrictEpsilon for strict float comparison.
	StrictEpsilon float64 `json:"strict_epsilon"`
	// FlexibleAbs for flexible comparison of small floats.
	FlexibleAbs float64 `json:"flexible_abs"`
	// FlexibleRel for flexible comparison of large floats.
	FlexibleRel float64 `json:"flexible_rel"`
	// SmallValueCutoff separates the absolute rule from the relative rule.
	SmallValueCutoff float64 `json:"small_value_cutoff"`
	// PartialCredit for present-but-mismatched parameters in flexible scoring.
	PartialCredit float64 `json:"partial_credit"`
}

// DefaultTolerance returns the reference tolerance policy.
func DefaultTolerance() Tolerance {
	return Tolerance{
		StrictEpsilon:    DefaultStrictEpsilon,
		FlexibleAbs:      DefaultFlexibleAbsTolerance,
		FlexibleRel:      DefaultFlexibleRelTolerance,
		SmallValueCutoff: DefaultSmallValueCutoff,
		PartialCredit:    DefaultPartialCredit,
	}
}

// Comparator compares normalized values and parameter maps under a Mode.
// The zero value is not usable; construct with New.
type Comparator struct {
	tolerance Tolerance
}

// New creates a comparator.
func New(opt ...Option) *Comparator {
	opts := newOptions(opt...)
	return &Comparator{tolerance: opts.tolerance}
}

// Tolerance returns the tolerance policy the comparator applies.
func (c *Comparator) Tolerance() Tolerance {
	return c.tolerance
}

// options configures a Comparator.
type options struct {
	tolerance Tolerance
}

// newOptions applies provided options for a Comparator.
func newOptions(opt ...Option) *options {
	opts := &options{
		tolerance: DefaultTolerance(),
	}
	for _, o := range opt {
		o(opts)
	}
	return opts
}

// Option is a function that configures a Comparator.
type Option func(*options)

// WithTolerance sets the tolerance policy.
func WithTolerance(tolerance Tolerance) Option {
	return func(o *options) {
		o.tolerance = tolerance
	}
}
