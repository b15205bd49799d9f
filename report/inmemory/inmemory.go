//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package inmemory provides an in-memory batch report manager.
package inmemory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/clone"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
)

// manager stores batch reports in memory, keyed by app name and report ID.
type manager struct {
	mu      sync.RWMutex
	reports map[string]map[string]*report.BatchReport
}

// New creates an in-memory report manager.
func New() report.Manager {
	return &manager{
		reports: make(map[string]map[string]*report.BatchReport),
	}
}

// Save stores a clone of the report and returns its ID, generating one
// when the report does not carry an ID yet.
func (m *manager) Save(
	ctx context.Context,
	appName string,
	batchReport *report.BatchReport,
) (string, error) {
	if appName == "" {
		return "", errors.New("app name is empty")
	}
	if batchReport == nil {
		return "", errors.New("batch report is nil")
	}
	stored, err := clone.Clone(batchReport)
	if err != nil {
		return "", fmt.Errorf("failed to clone batch report: %w", err)
	}
	if stored.ReportID == "" {
		stored.ReportID = newReportID(appName, stored.GroundTruthSetID)
	}
	if stored.CreationTimestamp == nil {
		stored.CreationTimestamp = &epochtime.EpochTime{Time: time.Now()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	byID, ok := m.reports[appName]
	if !ok {
		byID = make(map[string]*report.BatchReport)
		m.reports[appName] = byID
	}
	byID[stored.ReportID] = stored
	return stored.ReportID, nil
}

// Get returns a clone of the stored report.
func (m *manager) Get(
	ctx context.Context,
	appName string,
	reportID string,
) (*report.BatchReport, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if reportID == "" {
		return nil, errors.New("report id is empty")
	}

	m.mu.RLock()
	stored, ok := m.reports[appName][reportID]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: batch report %s", os.ErrNotExist, reportID)
	}
	return clone.Clone(stored)
}

// List returns the report IDs stored for the app, sorted lexicographically.
func (m *manager) List(ctx context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.reports[appName]))
	for id := range m.reports[appName] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Close releases resources held by the manager.
func (m *manager) Close() error {
	return nil
}

func newReportID(appName, setID string) string {
	if setID == "" {
		return fmt.Sprintf("%s_%s", appName, uuid.New().String())
	}
	return fmt.Sprintf("%s_%s_%s", appName, setID, uuid.New().String())
}
