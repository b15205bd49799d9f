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

	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/clone"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/mysqldb"
	storage "trpc.group/trpc-go/trpc-tooleval-go/storage/mysql"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
)

var _ taskset.Manager = (*manager)(nil)

type manager struct {
	opts   options
	db     storage.Client
	tables mysqldb.Tables
}

// New creates a MySQL-backed task set manager.
func New(opts ...Option) (taskset.Manager, error) {
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
		if err := mysqldb.EnsureSchema(ctx, db, tables, mysqldb.SchemaTaskSets|mysqldb.SchemaTaskRecords); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("init database failed: %w", err)
		}
	}
	return m, nil
}

// Close implements taskset.Manager.
func (m *manager) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

// ensureTaskSetExists checks whether the specified task set exists in MySQL.
func (m *manager) ensureTaskSetExists(ctx context.Context, appName, setID string) error {
	var one int
	err := m.db.QueryRow(ctx, []any{&one},
		fmt.Sprintf("SELECT 1 FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets),
		appName, setID,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("task set %s.%s not found: %w", appName, setID, os.ErrNotExist)
		}
		return err
	}
	return nil
}

// Get retrieves a task set and its records from MySQL.
func (m *manager) Get(ctx context.Context, appName, setID string) (*taskset.Set, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	var (
		name       string
		desc       sql.NullString
		createdAt  time.Time
		records    []*taskset.Record
		taskSetSQL = fmt.Sprintf(
			"SELECT name, description, created_at FROM %s WHERE app_name = ? AND set_id = ?",
			m.tables.TaskSets,
		)
	)
	if err := m.db.QueryRow(ctx, []any{&name, &desc, &createdAt}, taskSetSQL, appName, setID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task set %s.%s not found: %w", appName, setID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("get task set %s.%s: %w", appName, setID, err)
	}
	recordsSQL := fmt.Sprintf(
		"SELECT record FROM %s WHERE app_name = ? AND set_id = ? ORDER BY id ASC",
		m.tables.TaskRecords,
	)
	if err := m.db.Query(ctx, func(rows *sql.Rows) error {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return err
		}
		var r taskset.Record
		if err := json.Unmarshal(payload, &r); err != nil {
			return fmt.Errorf("unmarshal task record: %w", err)
		}
		records = append(records, &r)
		return nil
	}, recordsSQL, appName, setID); err != nil {
		return nil, fmt.Errorf("list task records for task set %s.%s: %w", appName, setID, err)
	}
	if records == nil {
		records = []*taskset.Record{}
	}
	return &taskset.Set{
		SetID:             setID,
		Name:              name,
		Description:       desc.String,
		Records:           records,
		CreationTimestamp: &epochtime.EpochTime{Time: createdAt},
	}, nil
}

// Create creates a new task set in MySQL.
func (m *manager) Create(ctx context.Context, appName, setID string) (*taskset.Set, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (app_name, set_id, name, description) VALUES (?, ?, ?, ?)",
		m.tables.TaskSets,
	)
	if _, err := m.db.Exec(ctx, query, appName, setID, setID, ""); err != nil {
		if mysqldb.IsDuplicateEntry(err) {
			return nil, fmt.Errorf("task set %s.%s already exists", appName, setID)
		}
		return nil, fmt.Errorf("create task set %s.%s: %w", appName, setID, err)
	}
	now := time.Now()
	return &taskset.Set{
		SetID:             setID,
		Name:              setID,
		Records:           []*taskset.Record{},
		CreationTimestamp: &epochtime.EpochTime{Time: now},
	}, nil
}

// List lists task set IDs for the given app from MySQL.
func (m *manager) List(ctx context.Context, appName string) ([]string, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	query := fmt.Sprintf(
		"SELECT set_id FROM %s WHERE app_name = ? ORDER BY set_id ASC",
		m.tables.TaskSets,
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
		return nil, fmt.Errorf("list task sets for app %s: %w", appName, err)
	}
	if ids == nil {
		ids = []string{}
	}
	return ids, nil
}

// Delete deletes a task set and its records from MySQL.
func (m *manager) Delete(ctx context.Context, appName, setID string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if setID == "" {
		return errors.New("set id is empty")
	}
	return m.db.Transaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskRecords),
			appName, setID,
		)
		if err != nil {
			return fmt.Errorf("delete task records failed: %w", err)
		}
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets),
			appName, setID,
		)
		if err != nil {
			return fmt.Errorf("delete task set failed: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected failed: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("task set %s.%s not found: %w", appName, setID, os.ErrNotExist)
		}
		return nil
	})
}

// GetRecord retrieves a task record from MySQL.
func (m *manager) GetRecord(ctx context.Context, appName, setID, taskID string) (*taskset.Record, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	if setID == "" {
		return nil, errors.New("set id is empty")
	}
	if taskID == "" {
		return nil, errors.New("task id is empty")
	}
	if err := m.ensureTaskSetExists(ctx, appName, setID); err != nil {
		return nil, err
	}
	var payload []byte
	query := fmt.Sprintf(
		"SELECT record FROM %s WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	if err := m.db.QueryRow(ctx, []any{&payload}, query, appName, setID, taskID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task record %s.%s.%s not found: %w", appName, setID, taskID, os.ErrNotExist)
		}
		return nil, fmt.Errorf("get task record %s.%s.%s: %w", appName, setID, taskID, err)
	}
	var r taskset.Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("unmarshal task record %s.%s.%s: %w", appName, setID, taskID, err)
	}
	return &r, nil
}

// AddRecord adds a new task record to MySQL.
func (m *manager) AddRecord(ctx context.Context, appName, setID string, record *taskset.Record) error {
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
		return errors.New("record task id is empty")
	}
	if err := m.ensureTaskSetExists(ctx, appName, setID); err != nil {
		return err
	}
	cloned, err := clone.Clone(record)
	if err != nil {
		return fmt.Errorf("clone record: %w", err)
	}
	if cloned.CreationTimestamp == nil {
		cloned.CreationTimestamp = &epochtime.EpochTime{Time: time.Now()}
	}
	payload, err := json.Marshal(cloned)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	query := fmt.Sprintf(
		"INSERT INTO %s (app_name, set_id, task_id, record) VALUES (?, ?, ?, ?)",
		m.tables.TaskRecords,
	)
	if _, err := m.db.Exec(ctx, query, appName, setID, cloned.TaskID, payload); err != nil {
		if mysqldb.IsDuplicateEntry(err) {
			return fmt.Errorf("task record %s.%s.%s already exists", appName, setID, cloned.TaskID)
		}
		return fmt.Errorf("add task record %s.%s.%s: %w", appName, setID, cloned.TaskID, err)
	}
	return nil
}

// UpdateRecord updates an existing task record in MySQL.
func (m *manager) UpdateRecord(ctx context.Context, appName, setID string, record *taskset.Record) error {
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
		return errors.New("record task id is empty")
	}
	if err := m.ensureTaskSetExists(ctx, appName, setID); err != nil {
		return err
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	query := fmt.Sprintf(
		"UPDATE %s SET record = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	res, err := m.db.Exec(ctx, query, payload, appName, setID, record.TaskID)
	if err != nil {
		return fmt.Errorf("update task record %s.%s.%s: %w", appName, setID, record.TaskID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task record %s.%s.%s not found: %w", appName, setID, record.TaskID, os.ErrNotExist)
	}
	return nil
}

// DeleteRecord deletes a task record from MySQL.
func (m *manager) DeleteRecord(ctx context.Context, appName, setID, taskID string) error {
	if appName == "" {
		return errors.New("app name is empty")
	}
	if setID == "" {
		return errors.New("set id is empty")
	}
	if taskID == "" {
		return errors.New("task id is empty")
	}
	if err := m.ensureTaskSetExists(ctx, appName, setID); err != nil {
		return err
	}
	query := fmt.Sprintf(
		"DELETE FROM %s WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	res, err := m.db.Exec(ctx, query, appName, setID, taskID)
	if err != nil {
		return fmt.Errorf("delete task record %s.%s.%s: %w", appName, setID, taskID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected failed: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("task record %s.%s.%s not found: %w", appName, setID, taskID, os.ErrNotExist)
	}
	return nil
}
