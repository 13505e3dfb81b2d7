package userdata

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/yungbote/healthyback-backend/internal/data/store/storetest"
	types "github.com/yungbote/healthyback-backend/internal/domain"
)

func newTestResolver(t *testing.T, ms *storetest.MemStore, sink ErrorSink) *Resolver {
	t.Helper()
	log := testLogger(t)
	return NewResolver(ms, NewVerifier(ms, log), log, sink)
}

func seedEnvelope(t *testing.T, ms *storetest.MemStore, ownerKey string, dataType types.DataType, payload any) {
	t.Helper()
	env, err := Wrap(payload, nil)
	if err != nil {
		t.Fatalf("Wrap: %v", err)
	}
	b, err := json.Marshal(env)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	ms.Seed(ownerKey, string(dataType), string(b))
}

func TestConsolidatedBackfillsFromLegacy(t *testing.T) {
	ms := storetest.NewMemStore()
	// Legacy record in bare pre-envelope form.
	ms.Seed("legacy@example.com", string(types.TypeHistory), `[{"id":1}]`)

	resolver := newTestResolver(t, ms, nil)
	got, err := resolver.GetConsolidated(context.Background(), "current-1", "legacy@example.com")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}

	wantHistory := []any{map[string]any{"id": float64(1), "exerciseType": "time", "strength": nil}}
	if !reflect.DeepEqual(got.Data[types.TypeHistory], wantHistory) {
		t.Fatalf("history mismatch:\n got  %#v\n want %#v", got.Data[types.TypeHistory], wantHistory)
	}
	if got.Meta[types.TypeHistory].Source != types.SourceLegacy {
		t.Fatalf("expected legacy source, got %q", got.Meta[types.TypeHistory].Source)
	}
	if got.Meta[types.TypePainLogs].Source != types.SourcePrimary {
		t.Fatalf("untouched type should report primary source")
	}
	if got.LegacyKeyNotFound {
		t.Fatalf("legacyKeyNotFound must be false when something migrated")
	}

	resolver.Wait()

	// Copy-forward persisted under the current key.
	raw, ok := ms.Raw("current-1", string(types.TypeHistory))
	if !ok {
		t.Fatalf("migrated record not persisted under current key")
	}
	payload, meta := Unwrap(raw)
	if meta == nil {
		t.Fatalf("migrated record should be enveloped")
	}
	if !reflect.DeepEqual(payload, wantHistory) {
		t.Fatalf("migrated payload mismatch: %#v", payload)
	}

	// The legacy partition is a read-only source and stays untouched.
	if raw, _ := ms.Raw("legacy@example.com", string(types.TypeHistory)); raw != `[{"id":1}]` {
		t.Fatalf("legacy partition mutated: %q", raw)
	}
	if partition := ms.Partition("legacy@example.com"); len(partition) != 1 {
		t.Fatalf("legacy partition grew: %#v", partition)
	}
}

func TestConsolidatedPrimaryDataWins(t *testing.T) {
	ms := storetest.NewMemStore()
	seedEnvelope(t, ms, "current-1", types.TypeHistory, []any{map[string]any{"id": float64(9), "exerciseType": "reps"}})
	ms.Seed("legacy@example.com", string(types.TypeHistory), `[{"id":1}]`)

	resolver := newTestResolver(t, ms, nil)
	got, err := resolver.GetConsolidated(context.Background(), "current-1", "legacy@example.com")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}
	resolver.Wait()

	history := got.Data[types.TypeHistory].([]any)
	if len(history) != 1 || history[0].(map[string]any)["id"] != float64(9) {
		t.Fatalf("primary data clobbered by legacy: %#v", history)
	}
	if got.Meta[types.TypeHistory].Source != types.SourcePrimary {
		t.Fatalf("expected primary source, got %q", got.Meta[types.TypeHistory].Source)
	}
}

func TestConsolidatedEmptyWithTimestampIsAuthoritative(t *testing.T) {
	ms := storetest.NewMemStore()
	// A deliberate reset-to-empty: enveloped empty sequence with a timestamp.
	seedEnvelope(t, ms, "current-1", types.TypeHistory, []any{})
	ms.Seed("legacy@example.com", string(types.TypeHistory), `[{"id":1}]`)

	resolver := newTestResolver(t, ms, nil)
	got, err := resolver.GetConsolidated(context.Background(), "current-1", "legacy@example.com")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}
	resolver.Wait()

	if len(got.Data[types.TypeHistory].([]any)) != 0 {
		t.Fatalf("reset-to-empty type must not be backfilled: %#v", got.Data[types.TypeHistory])
	}
	if got.Meta[types.TypeHistory].Source != types.SourcePrimary {
		t.Fatalf("expected primary source after reset-to-empty")
	}
}

func TestConsolidatedLegacyKeyNotFound(t *testing.T) {
	ms := storetest.NewMemStore()
	resolver := newTestResolver(t, ms, nil)

	got, err := resolver.GetConsolidated(context.Background(), "current-1", "legacy@example.com")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}
	if !got.LegacyKeyNotFound {
		t.Fatalf("expected legacyKeyNotFound when every type needed legacy and none migrated")
	}

	// Without a legacy key there is no migration attempt to report on.
	got, err = resolver.GetConsolidated(context.Background(), "current-1", "")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}
	if got.LegacyKeyNotFound {
		t.Fatalf("legacyKeyNotFound must be false when no legacy key was checked")
	}
}

func TestConsolidatedIgnoresSameLegacyKey(t *testing.T) {
	ms := storetest.NewMemStore()
	resolver := newTestResolver(t, ms, nil)

	got, err := resolver.GetConsolidated(context.Background(), "current-1", "current-1")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}
	if got.LegacyKeyNotFound {
		t.Fatalf("identical keys must not count as a legacy check")
	}
}

func TestConsolidatedIdempotent(t *testing.T) {
	ms := storetest.NewMemStore()
	ms.Seed("legacy@example.com", string(types.TypeHistory), `[{"id":1}]`)
	ms.Seed("legacy@example.com", string(types.TypeWeights), `{"squat":10}`)

	resolver := newTestResolver(t, ms, nil)
	ctx := context.Background()

	first, err := resolver.GetConsolidated(ctx, "current-1", "legacy@example.com")
	if err != nil {
		t.Fatalf("GetConsolidated (1): %v", err)
	}
	resolver.Wait()
	upsertsAfterFirst := ms.Upserts

	second, err := resolver.GetConsolidated(ctx, "current-1", "legacy@example.com")
	if err != nil {
		t.Fatalf("GetConsolidated (2): %v", err)
	}
	resolver.Wait()

	if !reflect.DeepEqual(first.Data, second.Data) {
		t.Fatalf("consolidated data diverged between calls:\n first  %#v\n second %#v", first.Data, second.Data)
	}
	if second.Meta[types.TypeHistory].Source != types.SourcePrimary {
		t.Fatalf("second read should be served from the current key")
	}
	if ms.Upserts != upsertsAfterFirst {
		t.Fatalf("second read triggered further migration writes")
	}
}

func TestConsolidatedSkipsUnknownTypes(t *testing.T) {
	ms := storetest.NewMemStore()
	ms.Seed("current-1", "mysteryType", `{"x":1}`)
	seedEnvelope(t, ms, "current-1", types.TypeWeights, map[string]any{"squat": float64(10)})

	resolver := newTestResolver(t, ms, nil)
	got, err := resolver.GetConsolidated(context.Background(), "current-1", "")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}
	if len(got.Data) != len(types.DataTypes) {
		t.Fatalf("unknown types must not leak into the result: %#v", got.Data)
	}
	if got.Data[types.TypeWeights].(map[string]any)["squat"] != float64(10) {
		t.Fatalf("weights payload lost: %#v", got.Data[types.TypeWeights])
	}
}

func TestConsolidatedMigrationFailureReachesSink(t *testing.T) {
	ms := storetest.NewMemStore()
	ms.Seed("legacy@example.com", string(types.TypeHistory), `[{"id":1}]`)
	// Copy-forward writes into the current partition fail; the scans that
	// feed the read are unaffected.
	ms.UpsertErr = errors.New("store unavailable")
	ms.UpsertErrFor = "current-1"

	var mu sync.Mutex
	var sunk []types.DataType
	sink := func(ownerKey string, dataType types.DataType, err error) {
		mu.Lock()
		defer mu.Unlock()
		sunk = append(sunk, dataType)
	}

	resolver := newTestResolver(t, ms, sink)
	got, err := resolver.GetConsolidated(context.Background(), "current-1", "legacy@example.com")
	if err != nil {
		t.Fatalf("GetConsolidated: %v", err)
	}
	resolver.Wait()

	// The read still returned the backfilled data.
	if len(got.Data[types.TypeHistory].([]any)) != 1 {
		t.Fatalf("read result must not depend on migration write: %#v", got.Data[types.TypeHistory])
	}

	mu.Lock()
	defer mu.Unlock()
	if len(sunk) != 1 || sunk[0] != types.TypeHistory {
		t.Fatalf("expected one sunk migration fault for history, got %v", sunk)
	}
}
