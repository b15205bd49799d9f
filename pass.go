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
	"errors"
	"fmt"
	"math"

	"trpc.group/trpc-go/trpc-tooleval-go/match"
	"trpc.group/trpc-go/trpc-tooleval-go/report"
)

// PassAtK computes the unbiased pass@k estimator over n evaluation runs of
// the same task, of which c succeeded:
//
//	pass@k = 1 - C(n-c, k) / C(n, k)
//
// It is the probability that at least one of k runs drawn without
// replacement from the n recorded runs succeeds. The combination ratio is
// computed in log space through the log-gamma function so large n do not
// overflow.
//
// Requires n > 0, 0 <= c <= n and 1 <= k <= n.
func PassAtK(n, c, k int) (float64, error) {
	if n <= 0 {
		return 0, errors.New("n must be positive")
	}
	if c < 0 || c > n {
		return 0, fmt.Errorf("c must be in [0, n], got c=%d n=%d", c, n)
	}
	if k <= 0 || k > n {
		return 0, fmt.Errorf("k must be in [1, n], got k=%d n=%d", k, n)
	}
	if c == 0 {
		return 0, nil
	}
	if n-c < k {
		// Every size-k draw contains at least one success.
		return 1, nil
	}
	logP := logCombination(n-c, k) - logCombination(n, k)
	return -math.Expm1(logP), nil
}

// PassHatK computes the biased pass^k estimator, the probability that k
// independent runs all succeed when each succeeds with the observed rate c/n:
//
//	pass^k = (c / n)^k
//
// Unlike PassAtK it models draws with replacement, so k may exceed n.
//
// Requires n > 0, 0 <= c <= n and k >= 1.
func PassHatK(n, c, k int) (float64, error) {
	if n <= 0 {
		return 0, errors.New("n must be positive")
	}
	if c < 0 || c > n {
		return 0, fmt.Errorf("c must be in [0, n], got c=%d n=%d", c, n)
	}
	if k <= 0 {
		return 0, fmt.Errorf("k must be positive, got k=%d", k)
	}
	if c == 0 {
		return 0, nil
	}
	if c == n {
		return 1, nil
	}
	return math.Exp(float64(k) * math.Log(float64(c)/float64(n))), nil
}

// PassCounts tallies the pass@k inputs for one task from repeated batch
// reports: n is the number of reports and c the number of reports in which
// the task succeeded under the given matching regime. A report that does not
// contain the task counts as a failed run.
func PassCounts(reports []*report.BatchReport, taskID string, mode match.Mode) (n, c int, err error) {
	if len(reports) == 0 {
		return 0, 0, errors.New("no batch reports")
	}
	if taskID == "" {
		return 0, 0, errors.New("task id is empty")
	}
	for _, batchReport := range reports {
		if batchReport == nil {
			return 0, 0, errors.New("batch report is nil")
		}
		n++
		taskReport, ok := batchReport.TaskResults[taskID]
		if !ok || taskReport == nil {
			continue
		}
		var result *report.TaskResult
		switch mode {
		case match.ModeStrict:
			result = taskReport.Strict
		case match.ModeFlexible:
			result = taskReport.Flexible
		default:
			return 0, 0, fmt.Errorf("unknown match mode %d", int(mode))
		}
		if result != nil && result.Success {
			c++
		}
	}
	return n, c, nil
}

// logCombination returns ln(C(n, k)) computed through the log-gamma function.
func logCombination(n, k int) float64 {
	lgN, _ := math.Lgamma(float64(n + 1))
	lgK, _ := math.Lgamma(float64(k + 1))
	lgNK, _ := math.Lgamma(float64(n - k + 1))
	return lgN - lgK - lgNK
}
