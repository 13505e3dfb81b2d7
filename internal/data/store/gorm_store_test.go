package store_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/healthyback-backend/internal/data/repos/testutil"
	"github.com/yungbote/healthyback-backend/internal/data/store"
)

func payloadOf(t *testing.T, rs *store.ResultSet, idx int) (string, string) {
	t.Helper()
	if rs == nil || idx >= len(rs.Rows) {
		t.Fatalf("result set has no row %d: %#v", idx, rs)
	}
	record := store.FormatRow(rs.Rows[idx], rs.Columns)
	dataType, _ := record["type"].(string)
	payload, _ := record["payload"].(string)
	return dataType, payload
}

func TestGormStoreUpsertGetRoundTrip(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	gs := store.NewGormStore(tx, testutil.Logger(t))
	ctx := context.Background()
	ownerKey := uuid.NewString()

	if err := gs.Upsert(ctx, ownerKey, "history", `[{"id":1}]`); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rs, err := gs.Get(ctx, ownerKey, "history")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(rs.Rows) != 1 {
		t.Fatalf("expected the written row back in the same session, got %d rows", len(rs.Rows))
	}
	dataType, payload := payloadOf(t, rs, 0)
	if dataType != "history" || payload != `[{"id":1}]` {
		t.Fatalf("unexpected row: type=%q payload=%q", dataType, payload)
	}
}

func TestGormStoreUpsertOverwrites(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	gs := store.NewGormStore(tx, testutil.Logger(t))
	ctx := context.Background()
	ownerKey := uuid.NewString()

	if err := gs.Upsert(ctx, ownerKey, "weights", `{"squat":10}`); err != nil {
		t.Fatalf("Upsert (1): %v", err)
	}
	if err := gs.Upsert(ctx, ownerKey, "weights", `{"squat":20}`); err != nil {
		t.Fatalf("Upsert (2): %v", err)
	}

	rs, err := gs.Get(ctx, ownerKey, "weights")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(rs.Rows) != 1 {
		t.Fatalf("expected exactly one row per (owner, type), got %d", len(rs.Rows))
	}
	if _, payload := payloadOf(t, rs, 0); payload != `{"squat":20}` {
		t.Fatalf("expected latest payload, got %q", payload)
	}
}

func TestGormStoreScanReturnsOwnerPartition(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	gs := store.NewGormStore(tx, testutil.Logger(t))
	ctx := context.Background()
	ownerKey := uuid.NewString()
	otherKey := uuid.NewString()

	if err := gs.Upsert(ctx, ownerKey, "history", `[]`); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := gs.Upsert(ctx, ownerKey, "weights", `{}`); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := gs.Upsert(ctx, otherKey, "history", `[{"id":99}]`); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	rs, err := gs.Scan(ctx, ownerKey)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(rs.Rows) != 2 {
		t.Fatalf("expected 2 rows for owner, got %d", len(rs.Rows))
	}
	// Rows come back ordered by type.
	if dataType, _ := payloadOf(t, rs, 0); dataType != "history" {
		t.Fatalf("expected history first, got %q", dataType)
	}
	if dataType, _ := payloadOf(t, rs, 1); dataType != "weights" {
		t.Fatalf("expected weights second, got %q", dataType)
	}
}

func TestGormStoreGetMissingReturnsEmpty(t *testing.T) {
	tx := testutil.Tx(t, testutil.DB(t))
	gs := store.NewGormStore(tx, testutil.Logger(t))

	rs, err := gs.Get(context.Background(), uuid.NewString(), "history")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(rs.Rows) != 0 {
		t.Fatalf("expected empty result set, got %d rows", len(rs.Rows))
	}
}
