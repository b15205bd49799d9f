//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage manager implementation for task sets.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/clone"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// manager implements taskset.Manager backed by the local filesystem.
type manager struct {
	mu      sync.RWMutex
	baseDir string
	locator taskset.Locator
}

// New creates a local file task set manager.
func New(opt ...taskset.Option) taskset.Manager {
	opts := taskset.NewOptions(opt...)
	return &manager{
		baseDir: opts.BaseDir,
		locator: opts.Locator,
	}
}

// Get gets the task set identified by setID.
// Returns an error if the task set does not exist.
func (m *manager) Get(_ context.Context, appName, setID string) (*taskset.Set, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, err := m.load(appName, setID)
	if err != nil {
		return nil, fmt.Errorf("load task set %s.%s: %w", appName, setID, err)
	}
	return set, nil
}

// Create creates an empty task set.
// Returns an error if the task set already exists.
func (m *manager) Create(_ context.Context, appName, setID string) (*taskset.Set, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(appName, setID); err == nil {
		return nil, fmt.Errorf("task set %s.%s already exists", appName, setID)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load task set %s.%s: %w", appName, setID, err)
	}
	set := &taskset.Set{
		SetID:             setID,
		Name:              setID,
		Records:           []*taskset.Record{},
		CreationTimestamp: &epochtime.EpochTime{Time: time.Now()},
	}
	if err := m.store(appName, set); err != nil {
		return nil, fmt.Errorf("store task set %s.%s: %w", appName, setID, err)
	}
	return set, nil
}

// Delete deletes the task set identified by setID.
// Returns an error if the task set does not exist.
func (m *manager) Delete(_ context.Context, appName, setID string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if setID == "" {
		return errors.New("set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.load(appName, setID); err != nil {
		return fmt.Errorf("load task set %s.%s: %w", appName, setID, err)
	}
	if err := m.remove(appName, setID); err != nil {
		return fmt.Errorf("remove task set %s.%s: %w", appName, setID, err)
	}
	return nil
}

// List lists all task set IDs for the given appName.
func (m *manager) List(_ context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	setIDs, err := m.locator.List(m.baseDir, appName)
	if err != nil {
		return nil, fmt.Errorf("list task sets for app %s: %w", appName, err)
	}
	return setIDs, nil
}

// GetRecord gets a task record.
// Returns an error if the record does not exist.
func (m *manager) GetRecord(_ context.Context, appName, setID, taskID string) (*taskset.Record, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	if taskID == "" {
		return nil, errors.New("task id is empty")
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, err := m.load(appName, setID)
	if err != nil {
		return nil, fmt.Errorf("load task set %s.%s: %w", appName, setID, err)
	}
	for _, r := range set.Records {
		if r != nil && r.TaskID == taskID {
			return r, nil
		}
	}
	return nil, fmt.Errorf("task record %s.%s.%s not found: %w", appName, setID, taskID, os.ErrNotExist)
}

// AddRecord adds the given record to an existing task set identified by setID.
// If the task set does not exist or the record already exists, returns an error.
func (m *manager) AddRecord(_ context.Context, appName, setID string, record *taskset.Record) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if setID == "" {
		return errors.New("set id is empty")
	}
	if record == nil {
		return errors.New("record is nil")
	}
	if record.TaskID == "" {
		return errors.New("record.TaskID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, err := m.load(appName, setID)
	if err != nil {
		return fmt.Errorf("load task set %s.%s: %w", appName, setID, err)
	}
	for _, r := range set.Records {
		if r != nil && r.TaskID == record.TaskID {
			return fmt.Errorf("task record %s.%s.%s already exists", appName, setID, record.TaskID)
		}
	}
	cloned, err := clone.Clone(record)
	if err != nil {
		return fmt.Errorf("clone record: %w", err)
	}
	if cloned.CreationTimestamp == nil {
		cloned.CreationTimestamp = &epochtime.EpochTime{Time: time.Now()}
	}
	set.Records = append(set.Records, cloned)
	if err := m.store(appName, set); err != nil {
		return fmt.Errorf("store task set %s.%s: %w", appName, setID, err)
	}
	return nil
}

// UpdateRecord updates an existing record.
// If the task set does not exist or the record does not exist, returns an error.
func (m *manager) UpdateRecord(_ context.Context, appName, setID string, record *taskset.Record) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if setID == "" {
		return errors.New("set id is empty")
	}
	if record == nil {
		return errors.New("record is nil")
	}
	if record.TaskID == "" {
		return errors.New("record.TaskID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, err := m.load(appName, setID)
	if err != nil {
		return fmt.Errorf("load task set %s.%s: %w", appName, setID, err)
	}
	for i, r := range set.Records {
		if r != nil && r.TaskID == record.TaskID {
			set.Records[i] = record
			if err := m.store(appName, set); err != nil {
				return fmt.Errorf("store task set %s.%s: %w", appName, setID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("task record %s.%s.%s not found: %w", appName, setID, record.TaskID, os.ErrNotExist)
}

// DeleteRecord deletes the given record.
// If the task set does not exist or the record does not exist, returns an error.
func (m *manager) DeleteRecord(_ context.Context, appName, setID, taskID string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if setID == "" {
		return errors.New("set id is empty")
	}
	if taskID == "" {
		return errors.New("task id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	set, err := m.load(appName, setID)
	if err != nil {
		return fmt.Errorf("load task set %s.%s: %w", appName, setID, err)
	}
	for i, r := range set.Records {
		if r != nil && r.TaskID == taskID {
			set.Records = append(set.Records[:i], set.Records[i+1:]...)
			if err := m.store(appName, set); err != nil {
				return fmt.Errorf("store task set %s.%s: %w", appName, setID, err)
			}
			return nil
		}
	}
	return fmt.Errorf("task record %s.%s.%s not found: %w", appName, setID, taskID, os.ErrNotExist)
}

// Close releases resources held by the manager.
func (m *manager) Close() error {
	return nil
}

// taskSetPath builds the path to the task set file.
func (m *manager) taskSetPath(appName, setID string) string {
	return m.locator.Build(m.baseDir, appName, setID)
}

// load loads the task set from the file system.
func (m *manager) load(appName, setID string) (*taskset.Set, error) {
	path := m.taskSetPath(appName, setID)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}
	var set taskset.Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("unmarshal file %s: %w", path, err)
	}
	if set.Records == nil {
		set.Records = []*taskset.Record{}
	}
	return &set, nil
}

// store stores the task set to the file system.
func (m *manager) store(appName string, set *taskset.Set) error {
	if set == nil {
		return errors.New("set is nil")
	}
	path := m.taskSetPath(appName, set.SetID)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return fmt.Errorf("mkdir all %s: %w", dir, err)
	}
	tmp := path + defaultTempFileSuffix
	file, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFilePermission)
	if err != nil {
		return fmt.Errorf("open file %s: %w", tmp, err)
	}
	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(set); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("encode file %s: %w", tmp, err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename file %s to %s: %w", tmp, path, err)
	}
	return nil
}

// remove removes the task set from the file system.
func (m *manager) remove(appName string, setID string) error {
	path := m.taskSetPath(appName, setID)
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove file %s: %w", path, err)
	}
	return nil
}
