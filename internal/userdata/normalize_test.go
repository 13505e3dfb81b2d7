package userdata

import (
	"reflect"
	"testing"

	types "github.com/yungbote/healthyback-backend/internal/domain"
)

func TestNormalizeDefaults(t *testing.T) {
	got := Normalize(map[types.DataType]any{})

	for _, dataType := range types.DataTypes {
		if dataType == types.TypeWeights {
			obj, ok := got[dataType].(map[string]any)
			if !ok || len(obj) != 0 {
				t.Fatalf("%s: expected empty map, got %#v", dataType, got[dataType])
			}
			continue
		}
		seq, ok := got[dataType].([]any)
		if !ok || len(seq) != 0 {
			t.Fatalf("%s: expected empty sequence, got %#v", dataType, got[dataType])
		}
	}
}

func TestNormalizeWrongShapes(t *testing.T) {
	got := Normalize(map[types.DataType]any{
		types.TypeWeights:  []any{float64(1)},
		types.TypeHistory:  map[string]any{"not": "a list"},
		types.TypePainLogs: nil,
	})

	if obj := got[types.TypeWeights].(map[string]any); len(obj) != 0 {
		t.Fatalf("weights: expected empty map for sequence input, got %#v", obj)
	}
	if seq := got[types.TypeHistory].([]any); len(seq) != 0 {
		t.Fatalf("history: expected empty sequence for object input, got %#v", seq)
	}
	if seq := got[types.TypePainLogs].([]any); len(seq) != 0 {
		t.Fatalf("painLogs: expected empty sequence for null input, got %#v", seq)
	}
}

func TestNormalizeRepairsHistoryEntries(t *testing.T) {
	strength := map[string]any{"weight": float64(10), "sets": float64(3), "reps": float64(8), "restSec": float64(60)}
	got := Normalize(map[types.DataType]any{
		types.TypeHistory: []any{
			map[string]any{"id": float64(1), "exerciseType": "reps", "strength": strength},
			map[string]any{"id": float64(2)},
		},
	})

	history := got[types.TypeHistory].([]any)
	want := []any{
		map[string]any{"id": float64(1), "exerciseType": "reps", "strength": strength},
		map[string]any{"id": float64(2), "exerciseType": "time", "strength": nil},
	}
	if !reflect.DeepEqual(history, want) {
		t.Fatalf("history repair mismatch:\n got  %#v\n want %#v", history, want)
	}
}

func TestNormalizePassesMalformedEntriesThrough(t *testing.T) {
	got := Normalize(map[types.DataType]any{
		types.TypeHistory: []any{"not-an-object", float64(7)},
	})
	history := got[types.TypeHistory].([]any)
	if !reflect.DeepEqual(history, []any{"not-an-object", float64(7)}) {
		t.Fatalf("malformed entries should pass through, got %#v", history)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	input := map[types.DataType]any{
		types.TypeHistory: []any{
			map[string]any{"id": float64(1)},
			map[string]any{"id": float64(2), "exerciseType": "reps", "strength": map[string]any{"weight": float64(5)}},
		},
		types.TypeWeights:      map[string]any{"squat": float64(10)},
		types.TypeAchievements: "garbage",
	}

	once := Normalize(input)
	twice := Normalize(once)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("Normalize not idempotent:\n once  %#v\n twice %#v", once, twice)
	}
}
