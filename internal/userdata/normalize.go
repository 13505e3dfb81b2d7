package userdata

import (
	types "github.com/yungbote/healthyback-backend/internal/domain"
)

// Normalize repairs historical schema drift so consumers always see the
// canonical shape per type: sequences default to empty sequences, weights to
// an empty map, and history entries written before the exerciseType field
// existed get exerciseType "time" with a nil strength block. Entries that
// already declare exerciseType pass through unchanged.
func Normalize(data map[types.DataType]any) map[types.DataType]any {
	normalized := map[types.DataType]any{}
	for _, dataType := range types.DataTypes {
		if dataType == types.TypeWeights {
			normalized[dataType] = asObject(data[dataType])
			continue
		}
		normalized[dataType] = asSequence(data[dataType])
	}
	normalized[types.TypeHistory] = repairHistory(normalized[types.TypeHistory].([]any))
	return normalized
}

func asSequence(v any) []any {
	if arr, ok := v.([]any); ok {
		return arr
	}
	return []any{}
}

func asObject(v any) map[string]any {
	if obj, ok := v.(map[string]any); ok {
		return obj
	}
	return map[string]any{}
}

func repairHistory(entries []any) []any {
	out := make([]any, 0, len(entries))
	for _, entry := range entries {
		obj, ok := entry.(map[string]any)
		if !ok {
			out = append(out, entry)
			continue
		}
		if hasExerciseType(obj) {
			out = append(out, obj)
			continue
		}
		repaired := make(map[string]any, len(obj)+2)
		for k, v := range obj {
			repaired[k] = v
		}
		repaired["exerciseType"] = "time"
		if _, ok := repaired["strength"]; !ok {
			repaired["strength"] = nil
		}
		out = append(out, repaired)
	}
	return out
}

func hasExerciseType(obj map[string]any) bool {
	v, ok := obj["exerciseType"]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return s != ""
	}
	return true
}
