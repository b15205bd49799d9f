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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecordsArray(t *testing.T) {
	input := `[
		{"task_id":"t1","tool_calls":[{"tool_name":"a"}]},
		{"id":"t2","tool_calls":[{"tool_name":"b","tool_parameters":{"x":1}}]}
	]`
	records, err := DecodeRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "t1", records[0].TaskID)
	assert.Equal(t, "t2", records[1].TaskID)
	assert.Equal(t, map[string]any{"x": float64(1)}, records[1].ToolCalls[0].ToolParameters)
}

func TestDecodeRecordsLines(t *testing.T) {
	input := `{"task_id":"t1","tool_calls":[{"tool_name":"a"}]}

{"task_id":"t2","tool_calls":[]}
`
	records, err := DecodeRecords(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "t1", records[0].TaskID)
	assert.Equal(t, "t2", records[1].TaskID)
}

func TestDecodeRecordsEmptyInput(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader("  \n\t"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDecodeRecordsMalformedLineContinues(t *testing.T) {
	input := `{"task_id":"t1"}
not json
{"task_id":"t3"}
`
	records, err := DecodeRecords(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
	require.Len(t, records, 2)
	assert.Equal(t, "t1", records[0].TaskID)
	assert.Equal(t, "t3", records[1].TaskID)
}

func TestDecodeRecordsMissingTaskID(t *testing.T) {
	input := `[{"task_id":"t1"},{"tool_calls":[]}]`
	records, err := DecodeRecords(strings.NewReader(input))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	require.Len(t, records, 1)
	assert.Equal(t, "t1", records[0].TaskID)
}

func TestDecodeRecordsInvalidArray(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(`[{"task_id":`))
	assert.Error(t, err)
	assert.Nil(t, records)
}

func TestLoadRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pred.jsonl")
	content := `{"task_id":"t1","tool_calls":[{"name":"a","arguments":{"k":"v"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := LoadRecords(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "a", records[0].ToolCalls[0].ToolName)
	assert.Equal(t, map[string]any{"k": "v"}, records[0].ToolCalls[0].ToolParameters)
}

func TestLoadRecordsMissingFile(t *testing.T) {
	records, err := LoadRecords(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
	assert.Nil(t, records)
}
