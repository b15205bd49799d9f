//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package trajectory

import "trpc.group/trpc-go/trpc-tooleval-go/match"

// options configures the trajectory evaluator.
type options struct {
	comparator *match.Comparator
}

// newOptions applies provided options for the trajectory evaluator.
func newOptions(opt ...Option) *options {
	opts := &options{
		comparator: match.New(),
	}
	for _, o := range opt {
		o(opts)
	}
	if opts.comparator == nil {
		opts.comparator = match.New()
	}
	return opts
}

// Option is a function that configures the trajectory evaluator.
type Option func(*options)

// WithComparator sets the comparator used for value and parameter matching.
func WithComparator(c *match.Comparator) Option {
	return func(o *options) {
		o.comparator = c
	}
}
