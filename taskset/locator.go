//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package taskset

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// defaultTaskSetFileSuffix is the default suffix for task set files.
const defaultTaskSetFileSuffix = ".tasks.json"

// Locator provides Build and List methods for locating task set files.
type Locator interface {
	// Build builds the path of a task set file for the given appName and setID.
	Build(baseDir, appName, setID string) string
	// List lists all task set IDs for the given appName.
	List(baseDir, appName string) ([]string, error)
}

// locator is the default Locator implementation.
type locator struct {
}

// Build builds the path of a task set file.
func (l *locator) Build(baseDir, appName, setID string) string {
	return filepath.Join(baseDir, appName, setID+defaultTaskSetFileSuffix)
}

// List lists all task set IDs for the given appName.
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
		if strings.HasSuffix(entry.Name(), defaultTaskSetFileSuffix) {
			name := strings.TrimSuffix(entry.Name(), defaultTaskSetFileSuffix)
			results = append(results, name)
		}
	}
	return results, nil
}
