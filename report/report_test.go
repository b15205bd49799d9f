//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"trpc.group/trpc-go/trpc-tooleval-go/match"
	"trpc.group/trpc-go/trpc-tooleval-go/metric"
)

func TestBatchReportJSONShape(t *testing.T) {
	batchReport := &BatchReport{
		ReportID:   "r1",
		TotalTasks: 1,
		OverallStats: &OverallStats{
			Strict:   &ModeStats{SuccessfulTasks: 1, SuccessRate: 1.0, AverageScore: 1.0},
			Flexible: &ModeStats{SuccessfulTasks: 1, SuccessRate: 1.0, AverageScore: 1.0},
		},
		TaskResults: map[string]*TaskReport{
			"t1": NewTaskReport("t1",
				&TaskResult{MatchType: match.ModeStrict, Success: true, OverallScore: 1.0},
				&TaskResult{MatchType: match.ModeFlexible, Success: true, OverallScore: 1.0},
			),
		},
	}
	data, err := json.Marshal(batchReport)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "overall_stats")
	assert.Contains(t, decoded, "task_results")

	stats, ok := decoded["overall_stats"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, stats, "strict")
	assert.Contains(t, stats, "flexible")

	strict, ok := stats["strict"].(map[string]any)
	require.True(t, ok)
	for _, key := range []string{
		"successful_tasks", "success_rate", "average_score",
		"tool_name_accuracy", "param_match_accuracy", "order_score",
	} {
		assert.Contains(t, strict, key)
	}
}

func TestTaskResultJSONRoundTrip(t *testing.T) {
	result := &TaskResult{
		MatchType:            match.ModeFlexible,
		GroundTruthToolCount: 2,
		PredictionToolCount:  3,
		CountMatch:           false,
		NameMatches:          2,
		ExactMatches:         1,
		MissingTools:         []string{},
		ExtraTools:           []string{"extra"},
		ParamMatches: []*ParamMatch{
			{
				Position: 0,
				ToolName: "search",
				Key:      "search",
				Score:    0.5,
				Mismatches: map[string]*match.Mismatch{
					"q": {GroundTruth: "cats", Prediction: "dogs"},
				},
			},
		},
		ToolNameScore:   1.0,
		ParamMatchScore: 0.75,
		OrderScore:      1.0,
		OverallScore:    0.9,
		Success:         true,
		Weights:         metric.DefaultWeights(),
		Thresholds:      metric.DefaultThresholds(),
	}
	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded TaskResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, match.ModeFlexible, decoded.MatchType)
	assert.Equal(t, result.ParamMatches[0].Key, decoded.ParamMatches[0].Key)
	assert.Equal(t, "cats", decoded.ParamMatches[0].Mismatches["q"].GroundTruth)
	assert.Equal(t, result.Weights, decoded.Weights)
}

func TestNewTaskReportSharedDiagnostics(t *testing.T) {
	strict := &TaskResult{
		MatchType:    match.ModeStrict,
		MissingTools: []string{"lookup"},
		ExtraTools:   []string{"extra"},
		ParamMatches: []*ParamMatch{
			{Position: 0, ToolName: "x", Key: "x_0", Score: 0.0,
				Mismatches: map[string]*match.Mismatch{"a": {GroundTruth: 1.0, Prediction: 2.0}}},
			{Position: 1, ToolName: "x", Key: "x_1", Score: 1.0},
		},
	}
	flexible := &TaskResult{MatchType: match.ModeFlexible}

	taskReport := NewTaskReport("t1", strict, flexible)
	assert.Equal(t, "t1", taskReport.TaskID)
	assert.Equal(t, []string{"lookup"}, taskReport.MissingTools)
	assert.Equal(t, []string{"extra"}, taskReport.ExtraTools)
	require.Len(t, taskReport.ParamMismatches, 1)
	assert.Contains(t, taskReport.ParamMismatches, "x_0")
}

func TestNewTaskReportNilStrict(t *testing.T) {
	taskReport := NewTaskReport("t1", nil, &TaskResult{})
	assert.Empty(t, taskReport.MissingTools)
	assert.Empty(t, taskReport.ExtraTools)
	assert.Nil(t, taskReport.ParamMismatches)
}

func TestSummarize(t *testing.T) {
	taskReports := map[string]*TaskReport{
		"t1": {
			TaskID:   "t1",
			Strict:   &TaskResult{Success: true, OverallScore: 1.0, ToolNameScore: 1.0, ParamMatchScore: 1.0, OrderScore: 1.0},
			Flexible: &TaskResult{Success: true, OverallScore: 1.0, ToolNameScore: 1.0, ParamMatchScore: 1.0, OrderScore: 1.0},
		},
		"t2": {
			TaskID:   "t2",
			Strict:   &TaskResult{Success: false, OverallScore: 0.5, ToolNameScore: 0.5, ParamMatchScore: 0.5, OrderScore: 0.5},
			Flexible: &TaskResult{Success: true, OverallScore: 0.8, ToolNameScore: 1.0, ParamMatchScore: 0.7, OrderScore: 0.5},
		},
	}
	stats := Summarize(taskReports)
	require.NotNil(t, stats.Strict)
	require.NotNil(t, stats.Flexible)

	assert.Equal(t, 1, stats.Strict.SuccessfulTasks)
	assert.InDelta(t, 0.5, stats.Strict.SuccessRate, 1e-9)
	assert.InDelta(t, 0.75, stats.Strict.AverageScore, 1e-9)
	assert.InDelta(t, 0.75, stats.Strict.ToolNameAccuracy, 1e-9)

	assert.Equal(t, 2, stats.Flexible.SuccessfulTasks)
	assert.InDelta(t, 1.0, stats.Flexible.SuccessRate, 1e-9)
	assert.InDelta(t, 0.9, stats.Flexible.AverageScore, 1e-9)
	assert.InDelta(t, 0.85, stats.Flexible.ParamMatchAccuracy, 1e-9)
	assert.InDelta(t, 0.75, stats.Flexible.OrderScore, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	stats := Summarize(nil)
	require.NotNil(t, stats.Strict)
	require.NotNil(t, stats.Flexible)
	assert.Zero(t, stats.Strict.SuccessfulTasks)
	assert.Zero(t, stats.Strict.SuccessRate)
	assert.Zero(t, stats.Flexible.AverageScore)
}
