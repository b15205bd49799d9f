//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory storage implementation for task sets.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/clone"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
)

// manager implements the taskset.Manager interface using in-memory storage.
//
// The manager keeps an in-memory copy of all task sets. Each API returns
// deep-cloned objects to avoid accidental mutation by callers.
type manager struct {
	mu      sync.RWMutex
	sets    map[string]map[string]*taskset.Set
	records map[string]map[string]map[string]*taskset.Record
}

// New creates a new in-memory task set manager.
func New() taskset.Manager {
	return &manager{
		sets:    make(map[string]map[string]*taskset.Set),
		records: make(map[string]map[string]map[string]*taskset.Record),
	}
}

func (m *manager) ensureApp(appName string) {
	if _, ok := m.sets[appName]; !ok {
		m.sets[appName] = make(map[string]*taskset.Set)
		m.records[appName] = make(map[string]map[string]*taskset.Record)
	}
}

// Get returns the task set identified by setID. If the set does not exist,
// os.ErrNotExist is returned.
func (m *manager) Get(ctx context.Context, appName, setID string) (*taskset.Set, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	setsByApp, ok := m.sets[appName]
	if !ok {
		return nil, fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	set, ok := setsByApp[setID]
	if !ok {
		return nil, fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	cloned, err := clone.Clone(set)
	if err != nil {
		return nil, fmt.Errorf("clone task set %s: %w", setID, err)
	}
	return cloned, nil
}

// Create creates and returns an empty task set given the setID.
func (m *manager) Create(ctx context.Context, appName, setID string) (*taskset.Set, error) {
	_ = ctx
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureApp(appName)
	if _, ok := m.sets[appName][setID]; ok {
		return nil, fmt.Errorf("task set %s.%s already exists", appName, setID)
	}
	set := &taskset.Set{
		SetID:             setID,
		Name:              setID,
		Records:           []*taskset.Record{},
		CreationTimestamp: &epochtime.EpochTime{Time: time.Now().UTC()},
	}
	m.sets[appName][setID] = set
	m.records[appName][setID] = make(map[string]*taskset.Record)
	cloned, err := clone.Clone(set)
	if err != nil {
		return nil, fmt.Errorf("clone task set %s: %w", setID, err)
	}
	return cloned, nil
}

// Delete deletes the task set identified by setID.
func (m *manager) Delete(ctx context.Context, appName, setID string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	setsByApp, ok := m.sets[appName]
	if !ok {
		return fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	if _, ok := setsByApp[setID]; !ok {
		return fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	delete(m.sets[appName], setID)
	delete(m.records[appName], setID)
	return nil
}

// List lists all task set IDs for the given appName.
func (m *manager) List(ctx context.Context, appName string) ([]string, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	setsByApp, ok := m.sets[appName]
	if !ok {
		return []string{}, nil
	}
	ids := make([]string, 0, len(setsByApp))
	for id := range setsByApp {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// GetRecord returns the task record identified by taskID.
func (m *manager) GetRecord(ctx context.Context, appName, setID, taskID string) (*taskset.Record, error) {
	_ = ctx
	m.mu.RLock()
	defer m.mu.RUnlock()
	recordsByApp, ok := m.records[appName]
	if !ok {
		return nil, fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	recordsBySet, ok := recordsByApp[setID]
	if !ok {
		return nil, fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	record, ok := recordsBySet[taskID]
	if !ok {
		return nil, fmt.Errorf("%w: task record %s", os.ErrNotExist, taskID)
	}
	cloned, err := clone.Clone(record)
	if err != nil {
		return nil, fmt.Errorf("clone task record %s: %w", taskID, err)
	}
	return cloned, nil
}

// AddRecord adds the given record to an existing task set identified by setID.
func (m *manager) AddRecord(ctx context.Context, appName, setID string, record *taskset.Record) error {
	_ = ctx
	if record == nil {
		return errors.New("record is nil")
	}
	if record.TaskID == "" {
		return errors.New("record.TaskID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureApp(appName)
	set, ok := m.sets[appName][setID]
	if !ok {
		return fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	if _, exists := m.records[appName][setID][record.TaskID]; exists {
		return fmt.Errorf("task record %s.%s.%s already exists", appName, setID, record.TaskID)
	}
	cloned, err := clone.Clone(record)
	if err != nil {
		return fmt.Errorf("clone task record %s: %w", record.TaskID, err)
	}
	if cloned.CreationTimestamp == nil {
		cloned.CreationTimestamp = &epochtime.EpochTime{Time: time.Now().UTC()}
	}
	m.records[appName][setID][record.TaskID] = cloned
	set.Records = append(set.Records, cloned)
	return nil
}

// UpdateRecord updates an existing record given the setID.
func (m *manager) UpdateRecord(ctx context.Context, appName, setID string, record *taskset.Record) error {
	_ = ctx
	if record == nil {
		return errors.New("record is nil")
	}
	if record.TaskID == "" {
		return errors.New("record.TaskID is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureApp(appName)
	set, ok := m.sets[appName][setID]
	if !ok {
		return fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	if _, exists := m.records[appName][setID][record.TaskID]; !exists {
		return fmt.Errorf("%w: task record %s", os.ErrNotExist, record.TaskID)
	}
	cloned, err := clone.Clone(record)
	if err != nil {
		return fmt.Errorf("clone task record %s: %w", record.TaskID, err)
	}
	m.records[appName][setID][record.TaskID] = cloned
	for i, r := range set.Records {
		if r != nil && r.TaskID == record.TaskID {
			set.Records[i] = cloned
			return nil
		}
	}
	return fmt.Errorf("%w: task record %s", os.ErrNotExist, record.TaskID)
}

// DeleteRecord deletes the given record identified by setID and taskID.
func (m *manager) DeleteRecord(ctx context.Context, appName, setID, taskID string) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ensureApp(appName)
	set, ok := m.sets[appName][setID]
	if !ok {
		return fmt.Errorf("%w: task set %s", os.ErrNotExist, setID)
	}
	if _, exists := m.records[appName][setID][taskID]; !exists {
		return fmt.Errorf("%w: task record %s", os.ErrNotExist, taskID)
	}
	delete(m.records[appName][setID], taskID)
	filtered := set.Records[:0]
	for _, r := range set.Records {
		if r != nil && r.TaskID != taskID {
			filtered = append(filtered, r)
		}
	}
	set.Records = filtered
	return nil
}

// Close releases resources held by the manager.
func (m *manager) Close() error {
	return nil
}
