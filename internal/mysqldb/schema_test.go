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
	"database/sql"
	"strings"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	storage "trpc.group/trpc-go/trpc-tooleval-go/storage/mysql"
)

type dummyResult struct{}

func (dummyResult) LastInsertId() (int64, error) { return 0, nil }

func (dummyResult) RowsAffected() (int64, error) { return 0, nil }

type recordingClient struct {
	queries  []string
	indexErr error
}

func (c *recordingClient) Exec(_ context.Context, query string, _ ...any) (sql.Result, error) {
	c.queries = append(c.queries, query)
	if c.indexErr != nil && strings.Contains(query, "CREATE INDEX") {
		return nil, c.indexErr
	}
	if c.indexErr != nil && strings.Contains(query, "CREATE UNIQUE INDEX") {
		return nil, c.indexErr
	}
	return dummyResult{}, nil
}

func (c *recordingClient) Query(_ context.Context, _ storage.NextFunc, _ string, _ ...any) error {
	return nil
}

func (c *recordingClient) QueryRow(_ context.Context, _ []any, _ string, _ ...any) error {
	return nil
}

func (c *recordingClient) Transaction(_ context.Context, _ storage.TxFunc, _ ...storage.TxOption) error {
	return nil
}

func (c *recordingClient) Close() error { return nil }

func containsCreateForTable(queries []string, table string) bool {
	needle := "CREATE TABLE IF NOT EXISTS " + table
	for _, q := range queries {
		if strings.Contains(q, needle) {
			return true
		}
	}
	return false
}

func TestEnsureSchema_TargetSelection(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{}
	tables := BuildTables("test_")

	err := EnsureSchema(ctx, client, tables, SchemaReports)
	assert.NoError(t, err)
	assert.True(t, containsCreateForTable(client.queries, tables.Reports))
	assert.False(t, containsCreateForTable(client.queries, tables.TaskSets))
	assert.False(t, containsCreateForTable(client.queries, tables.TaskRecords))
}

func TestEnsureSchema_AllTargets(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{}
	tables := BuildTables("test_")

	err := EnsureSchema(ctx, client, tables, SchemaAll)
	assert.NoError(t, err)
	assert.True(t, containsCreateForTable(client.queries, tables.TaskSets))
	assert.True(t, containsCreateForTable(client.queries, tables.TaskRecords))
	assert.True(t, containsCreateForTable(client.queries, tables.Reports))
}

func TestEnsureSchema_NoTarget(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{}
	tables := BuildTables("test_")

	err := EnsureSchema(ctx, client, tables, 0)
	assert.Error(t, err)
}

func TestEnsureSchema_DuplicateIndexSkipped(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{indexErr: &mysql.MySQLError{Number: MySQLErrDuplicateKeyName}}
	tables := BuildTables("")

	err := EnsureSchema(ctx, client, tables, SchemaReports)
	assert.NoError(t, err)
}

func TestEnsureSchema_IndexErrorPropagates(t *testing.T) {
	ctx := context.Background()
	client := &recordingClient{indexErr: &mysql.MySQLError{Number: 1064}}
	tables := BuildTables("")

	err := EnsureSchema(ctx, client, tables, SchemaReports)
	assert.Error(t, err)
}
