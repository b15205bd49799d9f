//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package report provides evaluation report types and storage for tool-call evaluation.
package report

import (
	"context"

	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/match"
	"trpc.group/trpc-go/trpc-tooleval-go/metric"
)

// ParamMatch records the parameter comparison outcome at one ground-truth position.
type ParamMatch struct {
	// Position is the zero-based position in the ground-truth call list.
	Position int `json:"position"`
	// ToolName is the tool called at this position.
	ToolName string `json:"tool_name"`
	// Key is the disambiguated tool key: the bare tool name when it is unique
	// in the ground truth, otherwise "{tool_name}_{position}".
	Key string `json:"key"`
	// Score is the parameter match score at this position.
	Score float64 `json:"score"`
	// Mismatches maps parameter names to their mismatched value pairs.
	Mismatches map[string]*match.Mismatch `json:"mismatches,omitempty"`
}

// TaskResult is the evaluation outcome of one task under one matching regime.
// Results are created fresh per task per regime and never mutated after return.
type TaskResult struct {
	// MatchType is the matching regime this result was produced under.
	MatchType match.Mode `json:"match_type"`
	// GroundTruthToolCount is the number of ground-truth tool calls.
	GroundTruthToolCount int `json:"gt_tool_count"`
	// PredictionToolCount is the number of predicted tool calls.
	PredictionToolCount int `json:"pred_tool_count"`
	// CountMatch reports whether both call lists have the same length.
	CountMatch bool `json:"count_match"`
	// NameMatches counts positions where the tool names agree.
	NameMatches int `json:"name_matches"`
	// ExactMatches counts positions whose names agree with a perfect parameter score.
	ExactMatches int `json:"exact_matches"`
	// MissingTools lists ground-truth tool names absent from the prediction.
	MissingTools []string `json:"missing_tools"`
	// ExtraTools lists predicted tool names absent from the ground truth.
	ExtraTools []string `json:"extra_tools"`
	// ParamMatches holds the per-position parameter comparison outcomes.
	ParamMatches []*ParamMatch `json:"param_matches"`
	// ToolNameScore is the fraction of positions with agreeing tool names.
	ToolNameScore float64 `json:"tool_name_score"`
	// ParamMatchScore is the mean parameter score over name-matching positions.
	ParamMatchScore float64 `json:"param_match_score"`
	// OrderScore is the sequence alignment score over the tool name sequences.
	OrderScore float64 `json:"order_score"`
	// OverallScore is the weighted blend of the three scores above.
	OverallScore float64 `json:"overall_score"`
	// Success reports whether the task passed under this regime.
	Success bool `json:"success"`
	// Weights are the score weights used to blend the overall score.
	Weights metric.Weights `json:"weights"`
	// Thresholds are the flexible success gates used.
	Thresholds metric.Thresholds `json:"thresholds"`
}

// TaskReport combines the strict and flexible results of a single task.
type TaskReport struct {
	// TaskID identifies the task.
	TaskID string `json:"task_id"`
	// Strict is the result under the strict regime.
	Strict *TaskResult `json:"strict"`
	// Flexible is the result under the flexible regime.
	Flexible *TaskResult `json:"flexible"`
	// MissingTools lists ground-truth tool names absent from the prediction.
	// Taken from the strict run since the diagnostic is regime-agnostic.
	MissingTools []string `json:"missing_tools"`
	// ExtraTools lists predicted tool names absent from the ground truth.
	ExtraTools []string `json:"extra_tools"`
	// ParamMismatches maps disambiguated tool keys to their mismatched parameters.
	ParamMismatches map[string]map[string]*match.Mismatch `json:"param_mismatches,omitempty"`
}

// NewTaskReport assembles the combined report for one task from its
// per-regime results, lifting the regime-agnostic diagnostics out of the
// strict result.
func NewTaskReport(taskID string, strict, flexible *TaskResult) *TaskReport {
	taskReport := &TaskReport{
		TaskID:       taskID,
		Strict:       strict,
		Flexible:     flexible,
		MissingTools: []string{},
		ExtraTools:   []string{},
	}
	if strict == nil {
		return taskReport
	}
	if strict.MissingTools != nil {
		taskReport.MissingTools = strict.MissingTools
	}
	if strict.ExtraTools != nil {
		taskReport.ExtraTools = strict.ExtraTools
	}
	for _, paramMatch := range strict.ParamMatches {
		if paramMatch == nil || len(paramMatch.Mismatches) == 0 {
			continue
		}
		if taskReport.ParamMismatches == nil {
			taskReport.ParamMismatches = make(map[string]map[string]*match.Mismatch)
		}
		taskReport.ParamMismatches[paramMatch.Key] = paramMatch.Mismatches
	}
	return taskReport
}

// ModeStats aggregates task outcomes for one matching regime.
type ModeStats struct {
	// SuccessfulTasks counts tasks judged successful.
	SuccessfulTasks int `json:"successful_tasks"`
	// SuccessRate is successful tasks over evaluated tasks.
	SuccessRate float64 `json:"success_rate"`
	// AverageScore is the mean overall score.
	AverageScore float64 `json:"average_score"`
	// ToolNameAccuracy is the mean tool name score.
	ToolNameAccuracy float64 `json:"tool_name_accuracy"`
	// ParamMatchAccuracy is the mean parameter match score.
	ParamMatchAccuracy float64 `json:"param_match_accuracy"`
	// OrderScore is the mean order score.
	OrderScore float64 `json:"order_score"`
}

// OverallStats aggregates task outcomes per matching regime.
type OverallStats struct {
	// Strict holds aggregates for the strict regime.
	Strict *ModeStats `json:"strict"`
	// Flexible holds aggregates for the flexible regime.
	Flexible *ModeStats `json:"flexible"`
}

// BatchReport is the full evaluation report for one batch invocation.
type BatchReport struct {
	// ReportID uniquely identifies this report.
	ReportID string `json:"report_id,omitempty"`
	// GroundTruthSetID identifies the ground-truth task set, when evaluated from storage.
	GroundTruthSetID string `json:"gt_set_id,omitempty"`
	// PredictionSetID identifies the prediction task set, when evaluated from storage.
	PredictionSetID string `json:"pred_set_id,omitempty"`
	// TotalTasks is the number of tasks evaluated (present in both collections).
	TotalTasks int `json:"total_tasks"`
	// OverallStats holds the per-regime aggregate statistics.
	OverallStats *OverallStats `json:"overall_stats"`
	// TaskResults maps task IDs to their combined per-task reports.
	TaskResults map[string]*TaskReport `json:"task_results"`
	// CreationTimestamp when this report was created.
	CreationTimestamp *epochtime.EpochTime `json:"creation_timestamp,omitempty"`
}

// Manager defines the interface for managing batch reports.
type Manager interface {
	// Save stores a batch report and returns its report ID.
	Save(ctx context.Context, appName string, batchReport *BatchReport) (string, error)
	// Get retrieves a batch report by reportID.
	Get(ctx context.Context, appName, reportID string) (*BatchReport, error)
	// List returns all available report IDs for the given appName.
	List(ctx context.Context, appName string) ([]string, error)
	// Close releases resources held by the manager.
	Close() error
}
