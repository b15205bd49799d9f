//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/mysqldb"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
	storage "trpc.group/trpc-go/trpc-tooleval-go/storage/mysql"
)

var _ report.Manager = (*manager)(nil)

type manager struct {
	opts   options
	db     storage.Client
	tables mysqldb.Tables
}

// New creates a MySQL-backed batch report manager.
func New(opts ...Option) (report.Manager, error) {
	options := newOptions(opts...)
	db, err := mysqldb.BuildClient(options.dsn, options.instanceName, options.extraOptions)
	if err != nil {
		return nil, fmt.Errorf("create mysql client failed: %w", err)
	}
	tables := mysqldb.BuildTables(options.tablePrefix)
	m := &manager{
		opts:   *options,
		db:     db,
		tables: tables,
	}
	if !options.skipDBInit {
		ctx, cancel := context.WithTimeout(context.Background(), options.initTimeout)
		defer cancel()
		if err := mysqldb.EnsureSchema(ctx, db, tables, mysqldb.SchemaReports); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init database failed: %w", err)
		}
	}
	return m, nil
}

// Close implements report.Manager.
func (m *manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// Save upserts a batch report into MySQL and returns its ID, generating one
// when the report does not carry an ID yet.
func (m *manager) Save(ctx context.Context, appName string, batchReport *report.BatchReport) (string, error) {
	if appName == "" {
		return "", errors.New("app name is empty")
	}
	if batchReport == nil {
		return "", errors.New("batch report is nil")
	}
	reportID := batchReport.ReportID
	if reportID == "" {
		if batchReport.GroundTruthSetID == "" {
			reportID = fmt.Sprintf("%s_%s", appName, uuid.New().String())
		} else {
			reportID = fmt.Sprintf("%s_%s_%s", appName, batchReport.GroundTruthSetID, uuid.New().String())
		}
	}
	taskResults := batchReport.TaskResults
	if taskResults == nil {
		taskResults = map[string]*report.TaskReport{}
	}
	taskPayload, err := json.Marshal(taskResults)
	if err != nil {
		return "", fmt.Errorf("marshal task results: %w", err)
	}
	var statsPayload any
	if batchReport.OverallStats != nil {
		statsBytes, err := json.Marshal(batchReport.OverallStats)
		if err != nil {
			return "", fmt.Errorf("marshal overall stats: %w", err)
		}
		statsPayload = statsBytes
	}
	query := fmt.Sprintf(
		`INSERT INTO %s (app_name, report_id, gt_set_id, pred_set_id, total_tasks, overall_stats, task_results)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE
		   gt_set_id = VALUES(gt_set_id),
		   pred_set_id = VALUES(pred_set_id),
		   total_tasks = VALUES(total_tasks),
		   overall_stats = VALUES(overall_stats),
		   task_results = VALUES(task_results),
		   updated_at = CURRENT_TIMESTAMP(6)`,
		m.tables.Reports,
	)
	if _, err := m.db.Exec(
		ctx, query,
		appName, reportID, batchReport.GroundTruthSetID, batchReport.PredictionSetID,
		batchReport.TotalTasks, statsPayload, taskPayload,
	); err != nil {
		return "", fmt.Errorf("store batch report %s.%s: %w", appName, reportID, err)
	}
	return reportID, nil
}

// Get loads a batch report from MySQL.
func (m *manager) Get(ctx context.Context, appName, reportID string) (*report.BatchReport, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if reportID == "" {
		return nil, errors.New("report id is empty")
	}
	var (
		gtSetID     string
		predSetID   string
		totalTasks  int
		stats       sql.NullString
		taskPayload []byte
		createdAt   time.Time
	)
	query := fmt.Sprintf(
		"SELECT gt_set_id, pred_set_id, total_tasks, overall_stats, task_results, created_at FROM %s WHERE app_name = ? AND report_id = ?",
		m.tables.Reports,
	)
	if err := m.db.QueryRow(
		ctx,
		[]any{&gtSetID, &predSetID, &totalTasks, &stats, &taskPayload, &createdAt},
		query, appName, reportID,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("batch report %s.%s not found: %w", appName, reportID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("load batch report %s.%s: %w", appName, reportID, err)
	}
	var taskResults map[string]*report.TaskReport
	if err := json.Unmarshal(taskPayload, &taskResults); err != nil {
		return nil, fmt.Errorf("unmarshal task results %s.%s: %w", appName, reportID, err)
	}
	if taskResults == nil {
		taskResults = map[string]*report.TaskReport{}
	}
	var statsObj *report.OverallStats
	if stats.Valid && stats.String != "" {
		var s report.OverallStats
		if err := json.Unmarshal([]byte(stats.String), &s); err != nil {
			return nil, fmt.Errorf("unmarshal overall stats %s.%s: %w", appName, reportID, err)
		}
		statsObj = &s
	}
	return &report.BatchReport{
		ReportID:          reportID,
		GroundTruthSetID:  gtSetID,
		PredictionSetID:   predSetID,
		TotalTasks:        totalTasks,
		OverallStats:      statsObj,
		TaskResults:       taskResults,
		CreationTimestamp: &epochtime.EpochTime{Time: createdAt},
	}, nil
}

// List lists batch report IDs for the given app from MySQL, newest first.
func (m *manager) List(ctx context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	query := fmt.Sprintf(
		"SELECT report_id FROM %s WHERE app_name = ? ORDER BY created_at DESC",
		m.tables.Reports,
	)
	var ids []string
	if err := m.db.Query(ctx, func(rows *sql.Rows) error {
		var id string
		if err := rows.Scan(&id); err != nil {
			return err
		}
		ids = append(ids, id)
		return nil
	}, query, appName); err != nil {
		return nil, fmt.Errorf("list batch reports for app %s: %w", appName, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}
