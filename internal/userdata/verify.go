package userdata

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/yungbote/healthyback-backend/internal/data/store"
	types "github.com/yungbote/healthyback-backend/internal/domain"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
)

// SaveResult reports whether a write was observably durable. Verified false
// means the read-back inside the same session came up empty; "write
// succeeded" and "write observably succeeded" are not the same event with
// this store, and callers must treat unverified writes as failures.
type SaveResult struct {
	Verified    bool
	ReadPayload any
}

type Verifier struct {
	store store.RecordStore
	log   *logger.Logger
}

func NewVerifier(recordStore store.RecordStore, baseLog *logger.Logger) *Verifier {
	verifierLog := baseLog.With("service", "WriteVerifier")
	return &Verifier{store: recordStore, log: verifierLog}
}

// SaveVerified upserts the payload for (ownerKey, dataType) and immediately
// reads it back in the same session. The legacy sentinel type is stored bare;
// everything else is enveloped.
func (v *Verifier) SaveVerified(ctx context.Context, ownerKey string, dataType types.DataType, payload any, meta *types.EnvelopeMeta) (SaveResult, error) {
	var serialized []byte
	if dataType == types.TypeLegacyMeta {
		b, err := json.Marshal(payload)
		if err != nil {
			return SaveResult{}, fmt.Errorf("serialize payload: %w", err)
		}
		serialized = b
	} else {
		env, err := Wrap(payload, meta)
		if err != nil {
			return SaveResult{}, fmt.Errorf("wrap payload: %w", err)
		}
		b, err := json.Marshal(env)
		if err != nil {
			return SaveResult{}, fmt.Errorf("serialize envelope: %w", err)
		}
		serialized = b
	}

	if err := v.store.Upsert(ctx, ownerKey, string(dataType), string(serialized)); err != nil {
		return SaveResult{}, err
	}

	rs, err := v.store.Get(ctx, ownerKey, string(dataType))
	if err != nil {
		return SaveResult{}, err
	}
	raw, ok := firstPayload(rs)
	if !ok {
		v.log.Warn("Read-back after upsert returned no record", "owner_key", ownerKey, "type", string(dataType))
		return SaveResult{Verified: false}, nil
	}

	readPayload, _ := Unwrap(raw)
	return SaveResult{Verified: true, ReadPayload: readPayload}, nil
}

func firstPayload(rs *store.ResultSet) (string, bool) {
	if rs == nil || len(rs.Rows) == 0 {
		return "", false
	}
	record := store.FormatRow(rs.Rows[0], rs.Columns)
	raw, ok := record["payload"].(string)
	return raw, ok
}
