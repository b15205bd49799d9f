//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package match

import "reflect"

// Mismatch records a parameter whose ground-truth and predicted values were
// both present but failed the comparison.
type Mismatch struct {
	// GroundTruth is the expected value.
	GroundTruth any `json:"gt_value"`
	// Prediction is the value the agent produced.
	Prediction any `json:"pred_value"`
}

// Params scores a predicted parameter map against the ground truth under the
// given mode. The score lies in [0, 1]. The mismatch map holds an entry for
// every parameter present in both maps that failed the comparison; absent
// parameters are the caller's accounting, not recorded here.
//
// Strict mode answers "did you reproduce my call exactly": every ground-truth
// key must be present and pass the strict comparison for full score. Flexible
// mode answers "did you capture the essential intent": only important
// parameters count, a present-but-wrong value earns partial credit, and
// omitting an unimportant parameter costs nothing.
func (c *Comparator) Params(groundTruth, prediction map[string]any, mode Mode) (float64, map[string]*Mismatch) {
	if mode == ModeFlexible {
		return c.flexibleParams(groundTruth, prediction)
	}
	return c.strictParams(groundTruth, prediction)
}

func (c *Comparator) strictParams(groundTruth, prediction map[string]any) (float64, map[string]*Mismatch) {
	mismatches := make(map[string]*Mismatch)
	if len(groundTruth) == 0 {
		return 1.0, mismatches
	}
	matched := 0
	for key, gtValue := range groundTruth {
		predValue, present := prediction[key]
		if !present {
			continue
		}
		if c.Values(gtValue, predValue, ModeStrict) {
			matched++
			continue
		}
		mismatches[key] = &Mismatch{GroundTruth: gtValue, Prediction: predValue}
	}
	return float64(matched) / float64(len(groundTruth)), mismatches
}

func (c *Comparator) flexibleParams(groundTruth, prediction map[string]any) (float64, map[string]*Mismatch) {
	mismatches := make(map[string]*Mismatch)
	important := 0
	credits := 0.0
	for key, gtValue := range groundTruth {
		if !importantValue(gtValue) {
			continue
		}
		important++
		predValue, present := prediction[key]
		if !present {
			continue
		}
		if c.Values(gtValue, predValue, ModeFlexible) {
			credits += 1.0
			continue
		}
		credits += c.tolerance.PartialCredit
		mismatches[key] = &Mismatch{GroundTruth: gtValue, Prediction: predValue}
	}
	if important == 0 {
		return 1.0, mismatches
	}
	return credits / float64(important), mismatches
}

// importantValue reports whether a ground-truth parameter participates in
// flexible scoring: non-nil and, for strings, lists and maps, non-empty.
func importantValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len() > 0
		default:
			return true
		}
	}
}
