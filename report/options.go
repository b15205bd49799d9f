//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package report

// defaultBaseDir is the default base directory for batch report files.
const defaultBaseDir = "batch_reports"

// Options configure the local batch report manager.
type Options struct {
	BaseDir string  // BaseDir is the base directory for batch report files.
	Locator Locator // Locator is the locator for batch report files.
}

// NewOptions constructs Options with the default values.
func NewOptions(opts ...Option) *Options {
	options := &Options{
		BaseDir: defaultBaseDir,
		Locator: &locator{},
	}
	for _, o := range opts {
		o(options)
	}
	return options
}

// Option is a functional option for configuring the batch report manager.
type Option func(*Options)

// WithBaseDir sets the root directory for storing batch report JSON files.
func WithBaseDir(dir string) Option {
	return func(o *Options) {
		o.BaseDir = dir
	}
}

// WithLocator sets the locator.
func WithLocator(l Locator) Option {
	return func(o *Options) {
		o.Locator = l
	}
}
