//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package local provides a local file storage implementation for batch reports.
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

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/clone"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
)

const (
	defaultTempFileSuffix = ".tmp"
	defaultDirPermission  = 0o755
	defaultFilePermission = 0o644
)

// manager implements the report.Manager interface using local file storage.
type manager struct {
	baseDir string
	locator report.Locator
	mu      sync.Mutex
}

// NewManager creates a local file batch report manager.
// Use functional options to override the default directory.
func NewManager(opt ...report.Option) report.Manager {
	opts := report.NewOptions(opt...)
	return &manager{
		baseDir: opts.BaseDir,
		locator: opts.Locator,
	}
}

// Save writes the report to a file under the app directory and returns its
// ID, generating one when the report does not carry an ID yet.
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
	if err := m.store(appName, stored); err != nil {
		return "", err
	}
	return stored.ReportID, nil
}

// Get retrieves a batch report by reportID from local file.
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
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(appName, reportID)
}

// List returns all batch report IDs stored for the app.
func (m *manager) List(ctx context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locator.List(m.baseDir, appName)
}

// Close releases resources held by the manager.
func (m *manager) Close() error {
	return nil
}

func (m *manager) store(appName string, batchReport *report.BatchReport) error {
	path := m.locator.Build(m.baseDir, appName, batchReport.ReportID)
	if err := os.MkdirAll(filepath.Dir(path), defaultDirPermission); err != nil {
		return err
	}
	tmp := path + defaultTempFileSuffix
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, defaultFilePermission)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(batchReport); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

func (m *manager) load(appName, reportID string) (*report.BatchReport, error) {
	path := m.locator.Build(m.baseDir, appName, reportID)
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: batch report %s", os.ErrNotExist, reportID)
		}
		return nil, err
	}
	defer f.Close()
	var batchReport report.BatchReport
	if err := json.NewDecoder(f).Decode(&batchReport); err != nil {
		return nil, err
	}
	return &batchReport, nil
}

func newReportID(appName, setID string) string {
	if setID == "" {
		return fmt.Sprintf("%s_%s", appName, uuid.New().String())
	}
	return fmt.Sprintf("%s_%s_%s", appName, setID, uuid.New().String())
}
