package userdata

import (
	"encoding/json"

	types "github.com/yungbote/healthyback-backend/internal/domain"
	"github.com/yungbote/healthyback-backend/internal/pkg/checksum"
)

// Wrap builds the persisted envelope for a payload. When meta does not supply
// a checksum it is computed from the canonical serialization of the payload;
// the timestamp defaults to now.
func Wrap(payload any, meta *types.EnvelopeMeta) (types.Envelope, error) {
	env := types.Envelope{Data: payload}
	if meta != nil {
		env.Checksum = meta.Checksum
		env.LastUpdatedAt = meta.LastUpdatedAt
	}
	if env.Checksum == "" {
		sum, err := checksum.Sum(payload)
		if err != nil {
			return types.Envelope{}, err
		}
		env.Checksum = sum
	}
	if env.LastUpdatedAt == 0 {
		env.LastUpdatedAt = types.NowMillis()
	}
	return env, nil
}

// Unwrap parses a stored record. An object carrying a data field is treated
// as an envelope; anything else is a bare legacy payload (nil meta). A record
// that fails to parse comes back as its raw text so one corrupt record cannot
// abort the read of a user's other types.
func Unwrap(raw string) (any, *types.EnvelopeMeta) {
	var parsed any
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return raw, nil
	}
	if obj, ok := parsed.(map[string]any); ok {
		if data, present := obj["data"]; present {
			meta := &types.EnvelopeMeta{}
			if sum, ok := obj["checksum"].(string); ok {
				meta.Checksum = sum
			}
			if ts, ok := obj["lastUpdatedAt"].(float64); ok {
				meta.LastUpdatedAt = int64(ts)
			}
			return data, meta
		}
	}
	return parsed, nil
}
