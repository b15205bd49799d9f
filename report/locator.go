//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// defaultReportFileSuffix is the default suffix for batch report files.
const defaultReportFileSuffix = ".batchreport.json"

// Locator provides Build and List methods for locating batch report files.
type Locator interface {
	// Build builds the path of a batch report file for the given appName and reportID.
	Build(baseDir, appName, reportID string) string
	// List lists all batch report IDs for the given appName.
	List(baseDir, appName string) ([]string, error)
}

// locator is the default Locator implementation.
type locator struct {
}

// Build builds the path of a batch report file.
func (l *locator) Build(baseDir, appName, reportID string) string {
	return filepath.Join(baseDir, appName, reportID+defaultReportFileSuffix)
}

// List lists all batch report IDs for the given appName.
func (l *locator) List(baseDir, appName string) ([]string, error) {
	dir := filepath.Join(baseDir, appName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}
	var results []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), defaultReportFileSuffix) {
			name := strings.TrimSuffix(entry.Name(), defaultReportFileSuffix)
			results = append(results, name)
		}
	}
	return results, nil
}
