//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package report

import "sort"

// Summarize computes the per-regime aggregate statistics over the given task
// reports. An empty input yields zeroed statistics, which is the valid shape
// for a batch where no task IDs joined.
// Results are folded in sorted task order so equal inputs always produce
// identical statistics.
func Summarize(taskReports map[string]*TaskReport) *OverallStats {
	taskIDs := make([]string, 0, len(taskReports))
	for taskID := range taskReports {
		taskIDs = append(taskIDs, taskID)
	}
	sort.Strings(taskIDs)
	strict := make([]*TaskResult, 0, len(taskReports))
	flexible := make([]*TaskResult, 0, len(taskReports))
	for _, taskID := range taskIDs {
		taskReport := taskReports[taskID]
		if taskReport == nil {
			continue
		}
		if taskReport.Strict != nil {
			strict = append(strict, taskReport.Strict)
		}
		if taskReport.Flexible != nil {
			flexible = append(flexible, taskReport.Flexible)
		}
	}
	return &OverallStats{
		Strict:   summarizeMode(strict),
		Flexible: summarizeMode(flexible),
	}
}

// summarizeMode folds per-task results of one regime into ModeStats.
func summarizeMode(results []*TaskResult) *ModeStats {
	stats := &ModeStats{}
	if len(results) == 0 {
		return stats
	}
	var successes int
	var overall, name, params, order float64
	for _, result := range results {
		if result.Success {
			successes++
		}
		overall += result.OverallScore
		name += result.ToolNameScore
		params += result.ParamMatchScore
		order += result.OrderScore
	}
	total := float64(len(results))
	stats.SuccessfulTasks = successes
	stats.SuccessRate = float64(successes) / total
	stats.AverageScore = overall / total
	stats.ToolNameAccuracy = name / total
	stats.ParamMatchAccuracy = params / total
	stats.OrderScore = order / total
	return stats
}
