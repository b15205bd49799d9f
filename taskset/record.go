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
	"encoding/json"
	"fmt"

	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
)

// Record represents the ordered tool calls of a single task.
type Record struct {
	// TaskID uniquely identifies this task record.
	TaskID string `json:"task_id"`
	// ToolCalls contains the tool calls in invocation order.
	ToolCalls []*ToolCall `json:"tool_calls,omitempty"`
	// CreationTimestamp when this record was created.
	CreationTimestamp *epochtime.EpochTime `json:"creation_timestamp,omitempty"`
}

// ToolCall represents a single tool invocation with decoded parameters.
type ToolCall struct {
	// ToolName is the name of the invoked tool.
	ToolName string `json:"tool_name"`
	// ToolParameters maps parameter names to decoded JSON values.
	ToolParameters map[string]any `json:"tool_parameters,omitempty"`
}

// recordJSON mirrors Record and carries the alternate identifier keys.
type recordJSON struct {
	TaskID            string               `json:"task_id,omitempty"`
	ID                string               `json:"id,omitempty"`
	Name              string               `json:"name,omitempty"`
	ToolCalls         []*ToolCall          `json:"tool_calls,omitempty"`
	CreationTimestamp *epochtime.EpochTime `json:"creation_timestamp,omitempty"`
}

// UnmarshalJSON unmarshals a record, resolving the task identifier from
// task_id, id or name, in that order.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw recordJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	r.TaskID = raw.TaskID
	if r.TaskID == "" {
		r.TaskID = raw.ID
	}
	if r.TaskID == "" {
		r.TaskID = raw.Name
	}
	r.ToolCalls = raw.ToolCalls
	r.CreationTimestamp = raw.CreationTimestamp
	return nil
}

// toolCallJSON mirrors ToolCall and carries the alternate field keys.
type toolCallJSON struct {
	ToolName       string         `json:"tool_name,omitempty"`
	Name           string         `json:"name,omitempty"`
	ToolParameters map[string]any `json:"tool_parameters,omitempty"`
	Arguments      map[string]any `json:"arguments,omitempty"`
}

// UnmarshalJSON unmarshals a tool call, accepting name for tool_name and
// arguments for tool_parameters.
func (t *ToolCall) UnmarshalJSON(data []byte) error {
	var raw toolCallJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("unmarshal tool call: %w", err)
	}
	t.ToolName = raw.ToolName
	if t.ToolName == "" {
		t.ToolName = raw.Name
	}
	t.ToolParameters = raw.ToolParameters
	if t.ToolParameters == nil {
		t.ToolParameters = raw.Arguments
	}
	return nil
}

// ToolNames returns the tool names of the given calls in invocation order.
// A nil call yields an empty name so positions stay aligned with calls.
func ToolNames(calls []*ToolCall) []string {
	names := make([]string, len(calls))
	for i, call := range calls {
		if call == nil {
			continue
		}
		names[i] = call.ToolName
	}
	return names
}
