package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Sum returns the sha256 hex digest of the canonical JSON serialization of
// payload. The same serialization routine is used when persisting envelopes,
// so a stored checksum is always comparable with a recomputed one.
func Sum(payload any) (string, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return SumBytes(b), nil
}

func SumBytes(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
