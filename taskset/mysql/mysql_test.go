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
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"trpc.group/trpc-go/trpc-tooleval-go/internal/mysqldb"
	storage "trpc.group/trpc-go/trpc-tooleval-go/storage/mysql"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"
)

// recordPayloadMatcher checks the stored record carries a creation timestamp.
type recordPayloadMatcher struct {
	t *testing.T
}

func (m recordPayloadMatcher) Match(v driver.Value) bool {
	var payload []byte
	switch typed := v.(type) {
	case []byte:
		payload = typed
	case string:
		payload = []byte(typed)
	default:
		return false
	}
	var r taskset.Record
	if err := json.Unmarshal(payload, &r); err != nil {
		return false
	}
	if r.TaskID != "task" {
		return false
	}
	return r.CreationTimestamp != nil
}

func newTaskSetManager(t *testing.T) (*manager, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)

	m := &manager{
		db:     storage.WrapSQLDB(db),
		tables: mysqldb.BuildTables("test_"),
	}
	return m, db, mock
}

func TestNew_SkipDBInit(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)

	oldBuilder := storage.GetClientBuilder()
	storage.SetClientBuilder(func(builderOpts ...storage.ClientBuilderOpt) (storage.Client, error) {
		o := &storage.ClientBuilderOpts{}
		for _, opt := range builderOpts {
			opt(o)
		}
		assert.Equal(t, "dsn", o.DSN)
		return storage.WrapSQLDB(db), nil
	})
	t.Cleanup(func() { storage.SetClientBuilder(oldBuilder) })

	m, err := New(
		WithMySQLClientDSN("dsn"),
		WithSkipDBInit(true),
		WithTablePrefix("test_"),
		WithInitTimeout(-1),
	)
	assert.NoError(t, err)
	mock.ExpectClose()
	assert.NoError(t, m.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNew_BuildClientError(t *testing.T) {
	oldBuilder := storage.GetClientBuilder()
	storage.SetClientBuilder(func(builderOpts ...storage.ClientBuilderOpt) (storage.Client, error) {
		return nil, errors.New("boom")
	})
	t.Cleanup(func() { storage.SetClientBuilder(oldBuilder) })

	_, err := New(WithMySQLClientDSN("dsn"), WithSkipDBInit(true))
	assert.Error(t, err)
}

func TestNew_DBInitFailureClosesClient(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	assert.NoError(t, err)

	oldBuilder := storage.GetClientBuilder()
	storage.SetClientBuilder(func(builderOpts ...storage.ClientBuilderOpt) (storage.Client, error) {
		return storage.WrapSQLDB(db), nil
	})
	t.Cleanup(func() { storage.SetClientBuilder(oldBuilder) })

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS\\s+" + regexp.QuoteMeta("test_tooleval_task_sets")).
		WillReturnError(errors.New("boom"))
	mock.ExpectClose()

	_, err = New(WithMySQLClientDSN("dsn"), WithTablePrefix("test_"))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClose_NilClient(t *testing.T) {
	m := &manager{}
	assert.NoError(t, m.Close())
}

func TestOptions(t *testing.T) {
	opts := newOptions(
		WithMySQLClientDSN("dsn"),
		WithMySQLInstance("instance"),
		WithExtraOptions("x"),
		WithSkipDBInit(true),
		WithTablePrefix("test_"),
		WithTablePrefix(""),
		WithInitTimeout(time.Second),
		WithInitTimeout(-1),
	)
	assert.Equal(t, "dsn", opts.dsn)
	assert.Equal(t, "instance", opts.instanceName)
	assert.Equal(t, []any{"x"}, opts.extraOptions)
	assert.True(t, opts.skipDBInit)
	assert.Equal(t, "", opts.tablePrefix)
	assert.Equal(t, time.Second, opts.initTimeout)
}

func TestValidationErrors(t *testing.T) {
	ctx := context.Background()
	m := &manager{}

	_, err := m.Get(ctx, "", "set")
	assert.Error(t, err)

	_, err = m.Get(ctx, "app", "")
	assert.Error(t, err)

	_, err = m.Create(ctx, "", "set")
	assert.Error(t, err)

	_, err = m.Create(ctx, "app", "")
	assert.Error(t, err)

	_, err = m.List(ctx, "")
	assert.Error(t, err)

	err = m.Delete(ctx, "", "set")
	assert.Error(t, err)

	err = m.Delete(ctx, "app", "")
	assert.Error(t, err)

	_, err = m.GetRecord(ctx, "", "set", "task")
	assert.Error(t, err)

	err = m.AddRecord(ctx, "", "set", &taskset.Record{TaskID: "task"})
	assert.Error(t, err)

	err = m.AddRecord(ctx, "app", "", &taskset.Record{TaskID: "task"})
	assert.Error(t, err)

	err = m.AddRecord(ctx, "app", "set", nil)
	assert.Error(t, err)

	err = m.AddRecord(ctx, "app", "set", &taskset.Record{})
	assert.Error(t, err)

	err = m.UpdateRecord(ctx, "", "set", &taskset.Record{TaskID: "task"})
	assert.Error(t, err)

	err = m.UpdateRecord(ctx, "app", "set", nil)
	assert.Error(t, err)

	err = m.UpdateRecord(ctx, "app", "set", &taskset.Record{})
	assert.Error(t, err)

	err = m.DeleteRecord(ctx, "", "set", "task")
	assert.Error(t, err)

	err = m.DeleteRecord(ctx, "app", "set", "")
	assert.Error(t, err)
}

func TestCreateAndList(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	createSQL := fmt.Sprintf(
		"INSERT INTO %s (app_name, set_id, name, description) VALUES (?, ?, ?, ?)",
		m.tables.TaskSets,
	)
	mock.ExpectExec(regexp.QuoteMeta(createSQL)).
		WithArgs("app", "set", "set", "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	created, err := m.Create(ctx, "app", "set")
	assert.NoError(t, err)
	assert.Equal(t, "set", created.SetID)

	listSQL := fmt.Sprintf(
		"SELECT set_id FROM %s WHERE app_name = ? ORDER BY set_id ASC",
		m.tables.TaskSets,
	)
	listRows := sqlmock.NewRows([]string{"set_id"}).
		AddRow("set")
	mock.ExpectQuery(regexp.QuoteMeta(listSQL)).
		WithArgs("app").
		WillReturnRows(listRows)

	ids, err := m.List(ctx, "app")
	assert.NoError(t, err)
	assert.Equal(t, []string{"set"}, ids)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEntry(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	createSQL := fmt.Sprintf(
		"INSERT INTO %s (app_name, set_id, name, description) VALUES (?, ?, ?, ?)",
		m.tables.TaskSets,
	)
	mock.ExpectExec(regexp.QuoteMeta(createSQL)).
		WithArgs("app", "set", "set", "").
		WillReturnError(&mysql.MySQLError{Number: mysqldb.MySQLErrDuplicateEntry, Message: "Duplicate entry"})

	_, err := m.Create(ctx, "app", "set")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_ReturnsSetAndRecords(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	getSQL := fmt.Sprintf(
		"SELECT name, description, created_at FROM %s WHERE app_name = ? AND set_id = ?",
		m.tables.TaskSets,
	)
	createdAt := time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)
	setRows := sqlmock.NewRows([]string{"name", "description", "created_at"}).
		AddRow("set-name", "desc", createdAt)
	mock.ExpectQuery(regexp.QuoteMeta(getSQL)).
		WithArgs("app", "set").
		WillReturnRows(setRows)

	recordPayload, err := json.Marshal(&taskset.Record{
		TaskID:    "task",
		ToolCalls: []*taskset.ToolCall{{ToolName: "search"}},
	})
	assert.NoError(t, err)
	recordsSQL := fmt.Sprintf(
		"SELECT record FROM %s WHERE app_name = ? AND set_id = ? ORDER BY id ASC",
		m.tables.TaskRecords,
	)
	recordRows := sqlmock.NewRows([]string{"record"}).
		AddRow(recordPayload)
	mock.ExpectQuery(regexp.QuoteMeta(recordsSQL)).
		WithArgs("app", "set").
		WillReturnRows(recordRows)

	got, err := m.Get(ctx, "app", "set")
	assert.NoError(t, err)
	assert.Equal(t, "set", got.SetID)
	assert.Equal(t, "set-name", got.Name)
	assert.Equal(t, "desc", got.Description)
	assert.Len(t, got.Records, 1)
	assert.Equal(t, "task", got.Records[0].TaskID)
	assert.NotNil(t, got.CreationTimestamp)
	assert.Equal(t, createdAt, got.CreationTimestamp.Time)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureTaskSetExists_NotFound(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	existsSQL := fmt.Sprintf("SELECT 1 FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets)
	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnError(sql.ErrNoRows)

	err := m.ensureTaskSetExists(ctx, "app", "set")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_SuccessCommits(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf("DELETE FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskRecords))).
		WithArgs("app", "set").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf("DELETE FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets))).
		WithArgs("app", "set").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := m.Delete(ctx, "app", "set")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFoundRollsBack(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf("DELETE FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskRecords))).
		WithArgs("app", "set").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(fmt.Sprintf("DELETE FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets))).
		WithArgs("app", "set").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := m.Delete(ctx, "app", "set")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordCRUD(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	existsSQL := fmt.Sprintf("SELECT 1 FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets)
	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	getRecordSQL := fmt.Sprintf(
		"SELECT record FROM %s WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	recordPayload, err := json.Marshal(&taskset.Record{TaskID: "task"})
	assert.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(getRecordSQL)).
		WithArgs("app", "set", "task").
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow(recordPayload))

	r, err := m.GetRecord(ctx, "app", "set", "task")
	assert.NoError(t, err)
	assert.Equal(t, "task", r.TaskID)

	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	addSQL := fmt.Sprintf(
		"INSERT INTO %s (app_name, set_id, task_id, record) VALUES (?, ?, ?, ?)",
		m.tables.TaskRecords,
	)
	mock.ExpectExec(regexp.QuoteMeta(addSQL)).
		WithArgs("app", "set", "task", recordPayloadMatcher{t: t}).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err = m.AddRecord(ctx, "app", "set", &taskset.Record{
		TaskID: "task",
		ToolCalls: []*taskset.ToolCall{
			{ToolName: "search", ToolParameters: map[string]any{"q": "cats"}},
		},
	})
	assert.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	updateSQL := fmt.Sprintf(
		"UPDATE %s SET record = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs(sqlmock.AnyArg(), "app", "set", "task").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = m.UpdateRecord(ctx, "app", "set", &taskset.Record{TaskID: "task"})
	assert.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	deleteSQL := fmt.Sprintf(
		"DELETE FROM %s WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
		WithArgs("app", "set", "task").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = m.DeleteRecord(ctx, "app", "set", "task")
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRecord_NotFoundAndBadJSON(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	existsSQL := fmt.Sprintf("SELECT 1 FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets)
	getRecordSQL := fmt.Sprintf(
		"SELECT record FROM %s WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)

	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(getRecordSQL)).
		WithArgs("app", "set", "missing").
		WillReturnError(sql.ErrNoRows)

	_, err := m.GetRecord(ctx, "app", "set", "missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta(getRecordSQL)).
		WithArgs("app", "set", "bad").
		WillReturnRows(sqlmock.NewRows([]string{"record"}).AddRow([]byte("{not-json")))

	_, err = m.GetRecord(ctx, "app", "set", "bad")
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRecord_DuplicateEntry(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	existsSQL := fmt.Sprintf("SELECT 1 FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets)
	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	addSQL := fmt.Sprintf(
		"INSERT INTO %s (app_name, set_id, task_id, record) VALUES (?, ?, ?, ?)",
		m.tables.TaskRecords,
	)
	mock.ExpectExec(regexp.QuoteMeta(addSQL)).
		WithArgs("app", "set", "task", sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: mysqldb.MySQLErrDuplicateEntry, Message: "Duplicate entry"})

	err := m.AddRecord(ctx, "app", "set", &taskset.Record{TaskID: "task"})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAndDeleteRecord_NotFound(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	existsSQL := fmt.Sprintf("SELECT 1 FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets)

	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	updateSQL := fmt.Sprintf(
		"UPDATE %s SET record = ?, updated_at = CURRENT_TIMESTAMP(6) WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	mock.ExpectExec(regexp.QuoteMeta(updateSQL)).
		WithArgs(sqlmock.AnyArg(), "app", "set", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := m.UpdateRecord(ctx, "app", "set", &taskset.Record{TaskID: "missing"})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	deleteSQL := fmt.Sprintf(
		"DELETE FROM %s WHERE app_name = ? AND set_id = ? AND task_id = ?",
		m.tables.TaskRecords,
	)
	mock.ExpectExec(regexp.QuoteMeta(deleteSQL)).
		WithArgs("app", "set", "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = m.DeleteRecord(ctx, "app", "set", "missing")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddRecord_PropagatesEnsureError(t *testing.T) {
	ctx := context.Background()
	m, db, mock := newTaskSetManager(t)
	t.Cleanup(func() { _ = db.Close() })

	existsSQL := fmt.Sprintf("SELECT 1 FROM %s WHERE app_name = ? AND set_id = ?", m.tables.TaskSets)
	mock.ExpectQuery(regexp.QuoteMeta(existsSQL)).
		WithArgs("app", "set").
		WillReturnError(sql.ErrNoRows)

	err := m.AddRecord(ctx, "app", "set", &taskset.Record{TaskID: "task"})
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}
