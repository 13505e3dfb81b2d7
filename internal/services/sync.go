package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/healthyback-backend/internal/domain"
	"github.com/yungbote/healthyback-backend/internal/pkg/checksum"
	pkgerrors "github.com/yungbote/healthyback-backend/internal/pkg/errors"
	"github.com/yungbote/healthyback-backend/internal/platform/apierr"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
	"github.com/yungbote/healthyback-backend/internal/requestdata"
	"github.com/yungbote/healthyback-backend/internal/userdata"
)

// ReadAllResult is the consolidated sync snapshot handed to clients.
type ReadAllResult struct {
	Data              map[types.DataType]any
	Meta              map[types.DataType]types.TypeMeta
	LegacyKeyNotFound bool
}

// WriteResult confirms a verified write. ItemCount is nil for map-shaped
// payloads, where element counting has no meaning.
type WriteResult struct {
	Success     bool   `json:"success"`
	Type        string `json:"type"`
	SavedAt     int64  `json:"savedAt"`
	PayloadSize int    `json:"payloadSize"`
	ItemCount   *int   `json:"itemCount"`
	Checksum    string `json:"checksum"`
}

type SyncService interface {
	ReadAll(ctx context.Context) (*ReadAllResult, error)
	WriteOne(ctx context.Context, dataType string, payload any) (*WriteResult, error)
}

type syncService struct {
	log      *logger.Logger
	resolver *userdata.Resolver
	verifier *userdata.Verifier
	locker   WriteLocker
	tracer   trace.Tracer
}

func NewSyncService(baseLog *logger.Logger, resolver *userdata.Resolver, verifier *userdata.Verifier, locker WriteLocker) SyncService {
	serviceLog := baseLog.With("service", "SyncService")
	return &syncService{
		log:      serviceLog,
		resolver: resolver,
		verifier: verifier,
		locker:   locker,
		tracer:   otel.Tracer("services/sync"),
	}
}

func (ss *syncService) ReadAll(ctx context.Context) (*ReadAllResult, error) {
	ctx, span := ss.tracer.Start(ctx, "sync.read_all")
	defer span.End()

	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.OwnerKey == "" {
		return nil, fmt.Errorf("no authenticated user on request: %w", pkgerrors.ErrUnauthorized)
	}

	consolidated, err := ss.resolver.GetConsolidated(ctx, rd.OwnerKey, rd.LegacyOwnerKey)
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeStoreFault, fmt.Errorf("read user data: %w", err))
	}

	return &ReadAllResult{
		Data:              consolidated.Data,
		Meta:              consolidated.Meta,
		LegacyKeyNotFound: consolidated.LegacyKeyNotFound,
	}, nil
}

// WriteOne persists one data type and confirms it by re-reading what was
// stored. The confirmation compares checksum and, for sequences, element
// count; any divergence is reported as a write_mismatch rather than a
// success, so clients never trust a write the store cannot show back.
func (ss *syncService) WriteOne(ctx context.Context, dataType string, payload any) (*WriteResult, error) {
	ctx, span := ss.tracer.Start(ctx, "sync.write_one",
		trace.WithAttributes(attribute.String("data.type", dataType)))
	defer span.End()

	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.OwnerKey == "" {
		return nil, fmt.Errorf("no authenticated user on request: %w", pkgerrors.ErrUnauthorized)
	}

	parsedType := types.DataType(dataType)
	if !types.IsKnown(parsedType) {
		return nil, apierr.New(http.StatusBadRequest, apierr.CodeInvalidType, fmt.Errorf("unknown data type %q", dataType))
	}

	// Round-trip through the canonical serialization so the intended
	// checksum is computed over exactly what will be stored and read back.
	serialized, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("serialize payload: %w", pkgerrors.ErrInvalidArgument)
	}
	var canonical any
	if err := json.Unmarshal(serialized, &canonical); err != nil {
		return nil, fmt.Errorf("serialize payload: %w", pkgerrors.ErrInvalidArgument)
	}
	intendedSum, err := checksum.Sum(canonical)
	if err != nil {
		return nil, fmt.Errorf("checksum payload: %w", err)
	}

	var itemCount *int
	if seq, ok := canonical.([]any); ok {
		n := len(seq)
		itemCount = &n
	}

	release, err := ss.locker.Acquire(ctx, rd.OwnerKey+"/"+dataType)
	if err != nil {
		return nil, fmt.Errorf("acquire write lock: %w", err)
	}
	defer release()

	savedAt := types.NowMillis()
	result, err := ss.verifier.SaveVerified(ctx, rd.OwnerKey, parsedType, canonical, &types.EnvelopeMeta{
		Checksum:      intendedSum,
		LastUpdatedAt: savedAt,
	})
	if err != nil {
		return nil, apierr.New(http.StatusInternalServerError, apierr.CodeStoreFault, fmt.Errorf("save %s: %w", dataType, err))
	}
	if !result.Verified {
		return nil, ss.writeMismatch(rd.OwnerKey, dataType, "read-back returned no record")
	}

	readSum, err := checksum.Sum(result.ReadPayload)
	if err != nil {
		return nil, fmt.Errorf("checksum read-back: %w", err)
	}
	if readSum != intendedSum {
		return nil, ss.writeMismatch(rd.OwnerKey, dataType, "read-back checksum diverged")
	}
	if itemCount != nil {
		readSeq, ok := result.ReadPayload.([]any)
		if !ok || len(readSeq) != *itemCount {
			return nil, ss.writeMismatch(rd.OwnerKey, dataType, "read-back item count diverged")
		}
	}

	return &WriteResult{
		Success:     true,
		Type:        dataType,
		SavedAt:     savedAt,
		PayloadSize: len(serialized),
		ItemCount:   itemCount,
		Checksum:    intendedSum,
	}, nil
}

func (ss *syncService) writeMismatch(ownerKey, dataType, reason string) error {
	ss.log.Warn("Write verification failed", "owner_key", ownerKey, "type", dataType, "reason", reason)
	return apierr.New(http.StatusConflict, apierr.CodeWriteMismatch, fmt.Errorf("%s: %w", reason, pkgerrors.ErrWriteMismatch))
}
