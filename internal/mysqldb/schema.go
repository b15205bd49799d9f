//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package mysqldb

import (
	"context"
	"errors"
	"fmt"
	"strings"

	storage "trpc.group/trpc-go/trpc-tooleval-go/storage/mysql"
)

const (
	// TableNameTaskSets is the base table name for task sets.
	TableNameTaskSets = "tooleval_task_sets"
	// TableNameTaskRecords is the base table name for task records.
	TableNameTaskRecords = "tooleval_task_records"
	// TableNameReports is the base table name for batch reports.
	TableNameReports = "tooleval_batch_reports"
)

// Tables holds fully qualified table names with the configured prefix applied.
type Tables struct {
	TaskSets    string
	TaskRecords string
	Reports     string
}

type tableDefinition struct {
	name     string
	template string
}

type indexDefinition struct {
	table    string
	name     string
	template string
}

type indexSpec struct {
	name     string
	template string
}

type schemaSpec struct {
	target    SchemaTarget
	tableName func(Tables) string
	tableSQL  string
	indexes   []indexSpec
}

var schemaSpecs = []schemaSpec{
	{
		target:    SchemaTaskSets,
		tableName: func(t Tables) string { return t.TaskSets },
		tableSQL:  sqlCreateTaskSetsTable,
		indexes: []indexSpec{
			{name: "uniq_task_sets_app_set", template: sqlCreateTaskSetsUniqueIndex},
			{name: "idx_task_sets_app_created", template: sqlCreateTaskSetsAppCreatedIndex},
		},
	},
	{
		target:    SchemaTaskRecords,
		tableName: func(t Tables) string { return t.TaskRecords },
		tableSQL:  sqlCreateTaskRecordsTable,
		indexes: []indexSpec{
			{name: "uniq_task_records_app_set_task", template: sqlCreateTaskRecordsUniqueIndex},
			{name: "idx_task_records_app_set", template: sqlCreateTaskRecordsAppSetIndex},
		},
	},
	{
		target:    SchemaReports,
		tableName: func(t Tables) string { return t.Reports },
		tableSQL:  sqlCreateReportsTable,
		indexes: []indexSpec{
			{name: "uniq_reports_app_report_id", template: sqlCreateReportsUniqueIndex},
			{name: "idx_reports_app_created", template: sqlCreateReportsAppCreatedIndex},
			{name: "idx_reports_app_gt_set_created", template: sqlCreateReportsAppSetCreatedIndex},
		},
	},
}

// SchemaTarget selects which tables should be ensured.
type SchemaTarget uint8

const (
	// SchemaTaskSets ensures the task sets table.
	SchemaTaskSets SchemaTarget = 1 << iota
	// SchemaTaskRecords ensures the task records table.
	SchemaTaskRecords
	// SchemaReports ensures the batch reports table.
	SchemaReports

	// SchemaAll ensures all tables.
	SchemaAll = SchemaTaskSets | SchemaTaskRecords | SchemaReports
)

// BuildTables builds table names with the given prefix.
func BuildTables(prefix string) Tables {
	return Tables{
		TaskSets:    BuildTableName(prefix, TableNameTaskSets),
		TaskRecords: BuildTableName(prefix, TableNameTaskRecords),
		Reports:     BuildTableName(prefix, TableNameReports),
	}
}

// EnsureSchema creates selected MySQL tables if they do not exist.
func EnsureSchema(ctx context.Context, db storage.Client, tables Tables, target SchemaTarget) error {
	if target == 0 {
		return errors.New("no schema target specified")
	}

	tableDefs := []tableDefinition{}
	indexDefs := []indexDefinition{}

	for _, spec := range schemaSpecs {
		if target&spec.target == 0 {
			continue
		}
		tableName := spec.tableName(tables)
		tableDefs = append(tableDefs, tableDefinition{
			name:     tableName,
			template: spec.tableSQL,
		})
		for _, idx := range spec.indexes {
			indexDefs = append(indexDefs, indexDefinition{
				table:    tableName,
				name:     idx.name,
				template: idx.template,
			})
		}
	}

	for _, tableDef := range tableDefs {
		query := strings.ReplaceAll(tableDef.template, "{{TABLE_NAME}}", tableDef.name)
		if _, err := db.Exec(ctx, query); err != nil {
			return fmt.Errorf("create table %s failed: %w", tableDef.name, err)
		}
	}

	for _, indexDef := range indexDefs {
		query := strings.ReplaceAll(indexDef.template, "{{TABLE_NAME}}", indexDef.table)
		query = strings.ReplaceAll(query, "{{INDEX_NAME}}", indexDef.name)
		if _, err := db.Exec(ctx, query); err != nil {
			if IsDuplicateKeyName(err) {
				continue
			}
			return fmt.Errorf("create index %s on table %s failed: %w", indexDef.name, indexDef.table, err)
		}
	}
	return nil
}

const (
	sqlCreateTaskSetsTable = `
		CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
			id BIGINT NOT NULL AUTO_INCREMENT,
			app_name VARCHAR(255) NOT NULL,
			set_id VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			description TEXT DEFAULT NULL,
			created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

	sqlCreateTaskSetsUniqueIndex = `
		CREATE UNIQUE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, set_id)`

	sqlCreateTaskSetsAppCreatedIndex = `
		CREATE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, created_at)`

	sqlCreateTaskRecordsTable = `
		CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
			id BIGINT NOT NULL AUTO_INCREMENT,
			app_name VARCHAR(255) NOT NULL,
			set_id VARCHAR(255) NOT NULL,
			task_id VARCHAR(255) NOT NULL,
			record JSON NOT NULL,
			created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

	sqlCreateTaskRecordsUniqueIndex = `
		CREATE UNIQUE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, set_id, task_id)`

	sqlCreateTaskRecordsAppSetIndex = `
		CREATE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, set_id)`

	sqlCreateReportsTable = `
		CREATE TABLE IF NOT EXISTS {{TABLE_NAME}} (
			id BIGINT NOT NULL AUTO_INCREMENT,
			app_name VARCHAR(255) NOT NULL,
			report_id VARCHAR(255) NOT NULL,
			gt_set_id VARCHAR(255) NOT NULL DEFAULT '',
			pred_set_id VARCHAR(255) NOT NULL DEFAULT '',
			total_tasks INT NOT NULL DEFAULT 0,
			overall_stats JSON DEFAULT NULL,
			task_results JSON NOT NULL,
			created_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			updated_at TIMESTAMP(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
			PRIMARY KEY (id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`

	sqlCreateReportsUniqueIndex = `
		CREATE UNIQUE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, report_id)`

	sqlCreateReportsAppCreatedIndex = `
		CREATE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, created_at)`

	sqlCreateReportsAppSetCreatedIndex = `
		CREATE INDEX {{INDEX_NAME}} ON {{TABLE_NAME}}(app_name, gt_set_id, created_at)`
)
