package userdata

import (
	"context"
	gosync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/healthyback-backend/internal/data/store"
	types "github.com/yungbote/healthyback-backend/internal/domain"
	"github.com/yungbote/healthyback-backend/internal/pkg/checksum"
	pkgerrors "github.com/yungbote/healthyback-backend/internal/pkg/errors"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
)

// ErrorSink receives copy-forward migration failures. They are observability
// signals only; a failed copy-forward never fails the read that triggered it.
type ErrorSink func(ownerKey string, dataType types.DataType, err error)

// Consolidated is the result of a migration-resolved read: normalized data
// for every consumer-facing type plus per-type metadata naming the
// authoritative side.
type Consolidated struct {
	Data map[types.DataType]any
	Meta map[types.DataType]types.TypeMeta
	// LegacyKeyNotFound means a legacy lookup was attempted, every type
	// needed one, and the legacy partition had nothing to offer. Upstream
	// uses it to tell a new user apart from a missing migration source.
	LegacyKeyNotFound bool
}

type Resolver struct {
	store    store.RecordStore
	verifier *Verifier
	log      *logger.Logger
	sink     ErrorSink
	wg       gosync.WaitGroup
}

func NewResolver(recordStore store.RecordStore, verifier *Verifier, baseLog *logger.Logger, sink ErrorSink) *Resolver {
	resolverLog := baseLog.With("service", "MigrationResolver")
	return &Resolver{store: recordStore, verifier: verifier, log: resolverLog, sink: sink}
}

// GetConsolidated reads the current partition and, per type, backfills from
// the legacy partition when the current side is empty and has never been
// written. Adopted types are copied forward asynchronously; the legacy
// partition is never mutated, so repeated calls converge on the same result.
func (r *Resolver) GetConsolidated(ctx context.Context, currentKey, legacyKey string) (*Consolidated, error) {
	primaryData, primaryMeta, err := r.scanParsed(ctx, currentKey)
	if err != nil {
		return nil, err
	}

	needsLegacy := map[types.DataType]bool{}
	needed := 0
	for _, dataType := range types.DataTypes {
		if isEmptyValue(primaryData[dataType]) && !hasTimestamp(primaryMeta[dataType]) {
			needsLegacy[dataType] = true
			needed++
		}
	}

	source := map[types.DataType]string{}
	var migrated []types.DataType
	legacyChecked := false

	if needed > 0 && legacyKey != "" && legacyKey != currentKey {
		legacyChecked = true
		legacyData, legacyMeta, err := r.scanParsed(ctx, legacyKey)
		if err != nil {
			return nil, err
		}
		for _, dataType := range types.DataTypes {
			if !needsLegacy[dataType] {
				continue
			}
			if isEmptyValue(legacyData[dataType]) && !hasTimestamp(legacyMeta[dataType]) {
				continue
			}
			primaryData[dataType] = legacyData[dataType]
			primaryMeta[dataType] = legacyMeta[dataType]
			source[dataType] = types.SourceLegacy
			migrated = append(migrated, dataType)
		}
	}

	normalized := Normalize(primaryData)

	if len(migrated) > 0 {
		r.copyForward(ctx, currentKey, migrated, normalized, primaryMeta)
	}

	meta := map[types.DataType]types.TypeMeta{}
	for _, dataType := range types.DataTypes {
		tm := types.TypeMeta{Source: types.SourcePrimary}
		if src, ok := source[dataType]; ok {
			tm.Source = src
		}
		if em := primaryMeta[dataType]; em != nil {
			tm.Checksum = em.Checksum
			tm.LastUpdatedAt = em.LastUpdatedAt
		}
		if tm.Checksum == "" {
			if sum, err := checksum.Sum(normalized[dataType]); err == nil {
				tm.Checksum = sum
			}
		}
		meta[dataType] = tm
	}

	return &Consolidated{
		Data:              normalized,
		Meta:              meta,
		LegacyKeyNotFound: legacyChecked && len(migrated) == 0 && needed == len(types.DataTypes),
	}, nil
}

// Wait blocks until in-flight copy-forward writes finish. Used on shutdown
// and by tests; request handling never calls it.
func (r *Resolver) Wait() {
	r.wg.Wait()
}

func (r *Resolver) scanParsed(ctx context.Context, ownerKey string) (map[types.DataType]any, map[types.DataType]*types.EnvelopeMeta, error) {
	rs, err := r.store.Scan(ctx, ownerKey)
	if err != nil {
		return nil, nil, err
	}
	data := map[types.DataType]any{}
	meta := map[types.DataType]*types.EnvelopeMeta{}
	if rs == nil {
		return data, meta, nil
	}
	for _, row := range rs.Rows {
		record := store.FormatRow(row, rs.Columns)
		typeStr, _ := record["type"].(string)
		dataType := types.DataType(typeStr)
		if !types.IsKnown(dataType) {
			continue
		}
		raw, ok := record["payload"].(string)
		if !ok {
			continue
		}
		payload, envelopeMeta := Unwrap(raw)
		data[dataType] = payload
		meta[dataType] = envelopeMeta
	}
	return data, meta, nil
}

// copyForward persists adopted legacy payloads under the current key,
// detached from the request so read latency is not coupled to migration
// write latency.
func (r *Resolver) copyForward(ctx context.Context, currentKey string, migrated []types.DataType, normalized map[types.DataType]any, metas map[types.DataType]*types.EnvelopeMeta) {
	detached := context.WithoutCancel(ctx)
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		var g errgroup.Group
		for _, dataType := range migrated {
			dataType := dataType
			payload := normalized[dataType]
			envMeta := &types.EnvelopeMeta{}
			if em := metas[dataType]; em != nil {
				envMeta.LastUpdatedAt = em.LastUpdatedAt
			}
			g.Go(func() error {
				result, err := r.verifier.SaveVerified(detached, currentKey, dataType, payload, envMeta)
				if err == nil && !result.Verified {
					err = pkgerrors.ErrWriteMismatch
				}
				if err != nil {
					r.log.Warn("Legacy migration write failed", "owner_key", currentKey, "type", string(dataType), "error", err)
					if r.sink != nil {
						r.sink(currentKey, dataType, err)
					}
				}
				return nil
			})
		}
		_ = g.Wait()
	}()
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	default:
		return false
	}
}

func hasTimestamp(meta *types.EnvelopeMeta) bool {
	return meta != nil && meta.LastUpdatedAt != 0
}
