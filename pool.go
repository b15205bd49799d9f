//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package tooleval

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"trpc.group/trpc-go/trpc-tooleval-go/report"

	"github.com/panjf2000/ants/v2"
)

// taskEvalParam is the parameter for the task evaluation pool.
type taskEvalParam struct {
	idx     int
	ctx     context.Context
	task    joinedTask
	engine  *batchEvaluator
	reports []*report.TaskReport
	errs    []error
	wg      *sync.WaitGroup
}

// reset clears the param for reuse.
func (p *taskEvalParam) reset() {
	p.idx = 0
	p.ctx = nil
	p.task = joinedTask{}
	p.engine = nil
	p.reports = nil
	p.errs = nil
	p.wg = nil
}

// taskEvalParamPool caches taskEvalParam objects to reduce allocation.
var taskEvalParamPool = sync.Pool{
	New: func() any {
		return &taskEvalParam{}
	},
}

// createTaskEvalPool creates a goroutine pool for parallel task evaluation.
func createTaskEvalPool(size int) (*ants.PoolWithFunc, error) {
	if size <= 0 {
		return nil, errors.New("pool size must be greater than 0")
	}
	return ants.NewPoolWithFunc(size, func(args any) {
		param, ok := args.(*taskEvalParam)
		if !ok {
			panic("task evaluation pool args type error")
		}
		defer func() {
			param.wg.Done()
			param.reset()
			taskEvalParamPool.Put(param)
		}()
		taskReport, err := param.engine.evaluateTask(param.ctx, param.task)
		if err != nil {
			param.errs[param.idx] = err
			return
		}
		param.reports[param.idx] = taskReport
	})
}

// evaluateTasksParallel distributes the joined tasks over the pool. Slots in
// the result slices are owned by index, so workers never contend.
func (e *batchEvaluator) evaluateTasksParallel(ctx context.Context, tasks []joinedTask) ([]*report.TaskReport, error) {
	taskReports := make([]*report.TaskReport, len(tasks))
	errs := make([]error, len(tasks))
	var wg sync.WaitGroup
	for idx, task := range tasks {
		wg.Add(1)
		param := taskEvalParamPool.Get().(*taskEvalParam)
		param.idx = idx
		param.ctx = ctx
		param.task = task
		param.engine = e
		param.reports = taskReports
		param.errs = errs
		param.wg = &wg
		if err := e.pool.Invoke(param); err != nil {
			wg.Done()
			errs[idx] = fmt.Errorf("submit evaluation for task %s: %w", task.taskID, err)
			param.reset()
			taskEvalParamPool.Put(param)
		}
	}
	wg.Wait()
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return taskReports, nil
}
