//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

// Package tooleval scores predicted tool-call trajectories against ground-truth task sets.
package tooleval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"trpc.group/trpc-go/trpc-tooleval-go/epochtime"
	"trpc.group/trpc-go/trpc-tooleval-go/evaluator"
	"trpc.group/trpc-go/trpc-tooleval-go/evaluator/registry"
	"trpc.group/trpc-go/trpc-tooleval-go/log"
	"trpc.group/trpc-go/trpc-tooleval-go/match"
	"trpc.group/trpc-go/trpc-tooleval-go/metric"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
	"trpc.group/trpc-go/trpc-tooleval-go/taskset"

	"github.com/panjf2000/ants/v2"
)

// BatchEvaluator evaluates batches of predicted tool-call trajectories
// against their ground truth and persists the resulting reports.
type BatchEvaluator interface {
	// EvaluateBatch evaluates the prediction records against the ground-truth
	// records, joining the two collections by task ID.
	EvaluateBatch(ctx context.Context, groundTruth, prediction []*taskset.Record) (*report.BatchReport, error)
	// EvaluateSets evaluates two stored task sets against each other.
	EvaluateSets(ctx context.Context, groundTruthSetID, predictionSetID string) (*report.BatchReport, error)
	// Close closes the evaluator and releases owned resources.
	Close() error
}

// New creates a BatchEvaluator for the given app with the supplied options.
func New(appName string, opt ...Option) (BatchEvaluator, error) {
	if appName == "" {
		return nil, errors.New("app name is empty")
	}
	opts := newOptions(opt...)
	e := &batchEvaluator{
		appName:        appName,
		taskSetManager: opts.taskSetManager,
		reportManager:  opts.reportManager,
		registry:       opts.registry,
		evaluator:      opts.evaluator,
		parallelism:    opts.parallelism,
	}
	if e.taskSetManager == nil {
		return nil, errors.New("task set manager is nil")
	}
	if e.reportManager == nil {
		return nil, errors.New("report manager is nil")
	}
	if e.registry == nil {
		return nil, errors.New("registry is nil")
	}
	if e.evaluator == nil {
		defaultEvaluator, err := e.registry.Get(opts.evaluatorName)
		if err != nil {
			return nil, fmt.Errorf("resolve evaluator: %w", err)
		}
		e.evaluator = defaultEvaluator
	}
	if opts.config != nil {
		// Resolve once up front so a bad config warns a single time instead
		// of once per evaluated task.
		resolved, valid := opts.config.Resolve()
		if !valid {
			log.Warnf("invalid scoring config %+v, replaced invalid fields with defaults", *opts.config)
		}
		e.cfg = &resolved
	}
	if e.parallelism > 1 {
		pool, err := createTaskEvalPool(e.parallelism)
		if err != nil {
			return nil, fmt.Errorf("create task evaluation pool: %w", err)
		}
		e.pool = pool
	}
	return e, nil
}

// batchEvaluator is the default implementation of BatchEvaluator.
type batchEvaluator struct {
	appName        string
	taskSetManager taskset.Manager
	reportManager  report.Manager
	registry       registry.Registry
	evaluator      evaluator.Evaluator
	cfg            *metric.Config
	parallelism    int
	pool           *ants.PoolWithFunc
}

// joinedTask pairs one task's ground-truth and predicted call lists.
type joinedTask struct {
	taskID      string
	groundTruth []*taskset.ToolCall
	prediction  []*taskset.ToolCall
}

// EvaluateBatch evaluates the prediction records against the ground-truth
// records. Task IDs present in only one collection are skipped with a logged
// warning; a batch where nothing joins yields a valid empty report.
func (e *batchEvaluator) EvaluateBatch(ctx context.Context, groundTruth,
	prediction []*taskset.Record) (*report.BatchReport, error) {
	return e.evaluateRecords(ctx, groundTruth, prediction, "", "")
}

// EvaluateSets loads the two task sets from the task set manager and
// evaluates them against each other.
func (e *batchEvaluator) EvaluateSets(ctx context.Context, groundTruthSetID,
	predictionSetID string) (*report.BatchReport, error) {
	if groundTruthSetID == "" {
		return nil, errors.New("ground truth set id is empty")
	}
	if predictionSetID == "" {
		return nil, errors.New("prediction set id is empty")
	}
	groundTruthSet, err := e.taskSetManager.Get(ctx, e.appName, groundTruthSetID)
	if err != nil {
		return nil, fmt.Errorf("get ground truth task set: %w", err)
	}
	predictionSet, err := e.taskSetManager.Get(ctx, e.appName, predictionSetID)
	if err != nil {
		return nil, fmt.Errorf("get prediction task set: %w", err)
	}
	return e.evaluateRecords(ctx, groundTruthSet.Records, predictionSet.Records,
		groundTruthSetID, predictionSetID)
}

// Close closes the evaluator and releases owned resources.
func (e *batchEvaluator) Close() error {
	var overallErr error
	if e.pool != nil {
		e.pool.Release()
	}
	if e.taskSetManager != nil {
		if err := e.taskSetManager.Close(); err != nil {
			overallErr = errors.Join(overallErr, fmt.Errorf("close task set manager: %w", err))
		}
	}
	if e.reportManager != nil {
		if err := e.reportManager.Close(); err != nil {
			overallErr = errors.Join(overallErr, fmt.Errorf("close report manager: %w", err))
		}
	}
	return overallErr
}

// evaluateRecords joins the two collections by task ID, scores every joined
// task under both regimes, aggregates the statistics and persists the report.
func (e *batchEvaluator) evaluateRecords(ctx context.Context, groundTruth,
	prediction []*taskset.Record, groundTruthSetID, predictionSetID string) (*report.BatchReport, error) {
	joined := joinRecords(groundTruth, prediction)
	taskReports, err := e.evaluateTasks(ctx, joined)
	if err != nil {
		return nil, err
	}
	taskResults := make(map[string]*report.TaskReport, len(taskReports))
	for _, taskReport := range taskReports {
		taskResults[taskReport.TaskID] = taskReport
	}
	batchReport := &report.BatchReport{
		GroundTruthSetID:  groundTruthSetID,
		PredictionSetID:   predictionSetID,
		TotalTasks:        len(joined),
		OverallStats:      report.Summarize(taskResults),
		TaskResults:       taskResults,
		CreationTimestamp: &epochtime.EpochTime{Time: time.Now()},
	}
	reportID, err := e.reportManager.Save(ctx, e.appName, batchReport)
	if err != nil {
		return nil, fmt.Errorf("save batch report: %w", err)
	}
	batchReport.ReportID = reportID
	return batchReport, nil
}

// evaluateTasks scores the joined tasks, in parallel when a pool is configured.
func (e *batchEvaluator) evaluateTasks(ctx context.Context, tasks []joinedTask) ([]*report.TaskReport, error) {
	if e.pool != nil {
		return e.evaluateTasksParallel(ctx, tasks)
	}
	return e.evaluateTasksSerial(ctx, tasks)
}

func (e *batchEvaluator) evaluateTasksSerial(ctx context.Context, tasks []joinedTask) ([]*report.TaskReport, error) {
	taskReports := make([]*report.TaskReport, 0, len(tasks))
	for _, task := range tasks {
		taskReport, err := e.evaluateTask(ctx, task)
		if err != nil {
			return nil, err
		}
		taskReports = append(taskReports, taskReport)
	}
	return taskReports, nil
}

// evaluateTask runs the configured evaluator twice, once per matching regime,
// and combines the two results into the per-task report.
func (e *batchEvaluator) evaluateTask(ctx context.Context, task joinedTask) (*report.TaskReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	strict, err := e.evaluator.Evaluate(ctx, task.groundTruth, task.prediction, match.ModeStrict, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("evaluate task %s in strict mode: %w", task.taskID, err)
	}
	flexible, err := e.evaluator.Evaluate(ctx, task.groundTruth, task.prediction, match.ModeFlexible, e.cfg)
	if err != nil {
		return nil, fmt.Errorf("evaluate task %s in flexible mode: %w", task.taskID, err)
	}
	return report.NewTaskReport(task.taskID, strict, flexible), nil
}

// joinRecords indexes both collections by task ID and pairs the IDs present
// in both, in sorted ID order. One-sided IDs are skipped with a warning and
// do not affect the aggregate denominators.
func joinRecords(groundTruth, prediction []*taskset.Record) []joinedTask {
	gtIndex := indexRecords(groundTruth, "ground truth")
	predIndex := indexRecords(prediction, "prediction")
	joined := make([]joinedTask, 0, min(len(gtIndex), len(predIndex)))
	for _, taskID := range sortedIDs(gtIndex) {
		predRecord, ok := predIndex[taskID]
		if !ok {
			log.Warnf("task %s present only in the ground truth collection, skipping", taskID)
			continue
		}
		joined = append(joined, joinedTask{
			taskID:      taskID,
			groundTruth: gtIndex[taskID].ToolCalls,
			prediction:  predRecord.ToolCalls,
		})
	}
	for _, taskID := range sortedIDs(predIndex) {
		if _, ok := gtIndex[taskID]; !ok {
			log.Warnf("task %s present only in the prediction collection, skipping", taskID)
		}
	}
	return joined
}

// indexRecords maps records by task ID. Records without an identifier cannot
// be joined and are skipped with a warning; duplicated IDs keep the last
// record seen.
func indexRecords(records []*taskset.Record, side string) map[string]*taskset.Record {
	index := make(map[string]*taskset.Record, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		if record.TaskID == "" {
			log.Warnf("skipping %s record with no task identifier", side)
			continue
		}
		index[record.TaskID] = record
	}
	return index
}

func sortedIDs(index map[string]*taskset.Record) []string {
	ids := make([]string, 0, len(index))
	for id := range index {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
