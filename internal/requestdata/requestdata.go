package requestdata

import (
	"context"

	"github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData carries the authenticated identity for one request. OwnerKey is
// the stable partition key for the user's records; LegacyOwnerKey is the
// historical email-derived key that records may still live under.
type RequestData struct {
	TokenString    string
	UserID         uuid.UUID
	OwnerKey       string
	LegacyOwnerKey string
}
