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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskEvalPoolValidatesSize(t *testing.T) {
	_, err := createTaskEvalPool(0)
	require.ErrorContains(t, err, "pool size must be greater than 0")

	pool, err := createTaskEvalPool(2)
	require.NoError(t, err)
	require.NotNil(t, pool)
	pool.Release()
}

func TestTaskEvalParamReset(t *testing.T) {
	param := &taskEvalParam{
		idx:  3,
		task: joinedTask{taskID: "t1"},
	}
	param.reset()
	assert.Zero(t, param.idx)
	assert.Empty(t, param.task.taskID)
	assert.Nil(t, param.engine)
	assert.Nil(t, param.wg)
}
