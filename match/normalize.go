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
	"reflect"
	"strings"
)

// Normalize canonicalizes a value before comparison. Strings are trimmed and
// lower-cased, numbers are coerced to float64, lists and maps are normalized
// element-wise (map keys included), and everything else is returned unchanged.
// Normalize is total and mode-independent; only the comparison that follows
// is mode-dependent.
func Normalize(value any) any {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int8:
		return float64(v)
	case int16:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case uint:
		return float64(v)
	case uint8:
		return float64(v)
	case uint16:
		return float64(v)
	case uint32:
		return float64(v)
	case uint64:
		return float64(v)
	case []any:
		normalized := make([]any, len(v))
		for i := range v {
			normalized[i] = Normalize(v[i])
		}
		return normalized
	case map[string]any:
		normalized := make(map[string]any, len(v))
		for key, val := range v {
			normalizedKey, _ := Normalize(key).(string)
			normalized[normalizedKey] = Normalize(val)
		}
		return normalized
	case nil:
		return nil
	default:
		return normalizeReflect(value)
	}
}

// normalizeReflect handles typed slices and string-keyed maps that JSON
// decoding never produces but programmatic callers may pass, e.g. []string.
func normalizeReflect(value any) any {
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		normalized := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			normalized[i] = Normalize(rv.Index(i).Interface())
		}
		return normalized
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return value
		}
		normalized := make(map[string]any, rv.Len())
		for _, key := range rv.MapKeys() {
			normalizedKey, _ := Normalize(key.String()).(string)
			normalized[normalizedKey] = Normalize(rv.MapIndex(key).Interface())
		}
		return normalized
	default:
		return value
	}
}
