//
// Tencent is pleased to support the open source community by making trpc-tooleval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-tooleval-go is licensed under the Apache License Version 2.0.
//
//

package match

import (
	"math"
	"reflect"
	"strings"
)

// Values reports whether two values match under the given mode. Both inputs
// are normalized first, so callers may pass raw wire values.
//
// Two numbers compare within the tolerance policy. Two strings compare by
// case-insensitive substring containment in flexible mode only. Everything
// else requires exact equality after normalization, regardless of mode.
func (c *Comparator) Values(a, b any, mode Mode) bool {
	normalizedA := Normalize(a)
	normalizedB := Normalize(b)
	floatA, aIsFloat := normalizedA.(float64)
	floatB, bIsFloat := normalizedB.(float64)
	if aIsFloat && bIsFloat {
		return c.floatsMatch(floatA, floatB, mode)
	}
	if mode == ModeFlexible {
		stringA, aIsString := normalizedA.(string)
		stringB, bIsString := normalizedB.(string)
		if aIsString && bIsString {
			return strings.Contains(stringA, stringB) || strings.Contains(stringB, stringA)
		}
	}
	return reflect.DeepEqual(normalizedA, normalizedB)
}

// floatsMatch applies the numeric tolerance policy. Flexible comparison uses
// the absolute tolerance when either magnitude falls below the cutoff because
// relative error is meaningless near zero, and the relative tolerance
// otherwise.
func (c *Comparator) floatsMatch(a, b float64, mode Mode) bool {
	diff := math.Abs(a - b)
	if mode == ModeStrict {
		return diff < c.tolerance.StrictEpsilon
	}
	magnitudeA := math.Abs(a)
	magnitudeB := math.Abs(b)
	if magnitudeA < c.tolerance.SmallValueCutoff || magnitudeB < c.tolerance.SmallValueCutoff {
		return diff < c.tolerance.FlexibleAbs
	}
	return diff/math.Max(magnitudeA, magnitudeB) < c.tolerance.FlexibleRel
}
