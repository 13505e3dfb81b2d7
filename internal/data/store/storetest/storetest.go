// Package storetest provides an in-memory RecordStore for engine and service
// tests, with knobs for simulating the store faults the sync core must
// tolerate.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/yungbote/healthyback-backend/internal/data/store"
)

type MemStore struct {
	mu   sync.Mutex
	data map[string]map[string]string

	// DropReads simulates the observed failure mode where the store returns
	// an empty result set on a read immediately after a write.
	DropReads bool

	GetErr  error
	ScanErr error

	// UpsertErr fails upserts; when UpsertErrFor is set, only upserts into
	// that owner's partition fail.
	UpsertErr    error
	UpsertErrFor string

	Upserts int
}

var _ store.RecordStore = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{data: map[string]map[string]string{}}
}

func (ms *MemStore) Seed(ownerKey, dataType, payload string) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.set(ownerKey, dataType, payload)
}

// Raw returns the stored payload without going through the wire shape.
func (ms *MemStore) Raw(ownerKey, dataType string) (string, bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	partition, ok := ms.data[ownerKey]
	if !ok {
		return "", false
	}
	payload, ok := partition[dataType]
	return payload, ok
}

// Partition returns a copy of an owner's records keyed by type.
func (ms *MemStore) Partition(ownerKey string) map[string]string {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	out := map[string]string{}
	for dataType, payload := range ms.data[ownerKey] {
		out[dataType] = payload
	}
	return out
}

func (ms *MemStore) Get(ctx context.Context, ownerKey string, dataType string) (*store.ResultSet, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.GetErr != nil {
		return nil, ms.GetErr
	}
	rs := emptyResultSet()
	if ms.DropReads {
		return rs, nil
	}
	if payload, ok := ms.data[ownerKey][dataType]; ok {
		rs.Rows = append(rs.Rows, rowFor(dataType, payload))
	}
	return rs, nil
}

func (ms *MemStore) Scan(ctx context.Context, ownerKey string) (*store.ResultSet, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.ScanErr != nil {
		return nil, ms.ScanErr
	}
	rs := emptyResultSet()
	if ms.DropReads {
		return rs, nil
	}
	dataTypes := make([]string, 0, len(ms.data[ownerKey]))
	for dataType := range ms.data[ownerKey] {
		dataTypes = append(dataTypes, dataType)
	}
	sort.Strings(dataTypes)
	for _, dataType := range dataTypes {
		rs.Rows = append(rs.Rows, rowFor(dataType, ms.data[ownerKey][dataType]))
	}
	return rs, nil
}

func (ms *MemStore) Upsert(ctx context.Context, ownerKey string, dataType string, payload string) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.UpsertErr != nil && (ms.UpsertErrFor == "" || ms.UpsertErrFor == ownerKey) {
		return ms.UpsertErr
	}
	ms.set(ownerKey, dataType, payload)
	ms.Upserts++
	return nil
}

func (ms *MemStore) set(ownerKey, dataType, payload string) {
	partition, ok := ms.data[ownerKey]
	if !ok {
		partition = map[string]string{}
		ms.data[ownerKey] = partition
	}
	partition[dataType] = payload
}

func emptyResultSet() *store.ResultSet {
	return &store.ResultSet{Columns: []store.Column{{Name: "type"}, {Name: "payload"}}}
}

func rowFor(dataType, payload string) store.Row {
	return store.Row{Items: []store.Cell{store.TextCell(dataType), store.TextCell(payload)}}
}
