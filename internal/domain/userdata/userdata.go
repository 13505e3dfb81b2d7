package userdata

import (
	"time"

	"gorm.io/datatypes"
)

// DataType enumerates the per-user payload categories. The set is closed;
// rows with unknown types are treated as opaque and skipped on read.
type DataType string

const (
	TypeHistory       DataType = "history"
	TypePainLogs      DataType = "painLogs"
	TypeWeights       DataType = "weights"
	TypeAchievements  DataType = "achievements"
	TypeReadinessLogs DataType = "readinessLogs"

	// TypeLegacyMeta is a reserved sentinel used only for legacy aggregate
	// metadata rows. It is never wrapped in an envelope and is excluded from
	// the consumer-facing set.
	TypeLegacyMeta DataType = "legacyMeta"
)

// Types lists the consumer-facing data types in their canonical order.
var Types = []DataType{
	TypeHistory,
	TypePainLogs,
	TypeWeights,
	TypeAchievements,
	TypeReadinessLogs,
}

func IsKnown(t DataType) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// IsSequence reports whether the type's payload is a sequence. weights is the
// only map-shaped type.
func IsSequence(t DataType) bool {
	return t != TypeWeights
}

const (
	SourcePrimary = "primary"
	SourceLegacy  = "legacy"
)

// Envelope is the persisted wrapper around a payload. Records written before
// the envelope format existed store the bare payload instead; both shapes
// must stay parseable.
type Envelope struct {
	Data          any    `json:"data"`
	Checksum      string `json:"checksum"`
	LastUpdatedAt int64  `json:"lastUpdatedAt"`
}

// EnvelopeMeta is the integrity metadata carried alongside a payload.
type EnvelopeMeta struct {
	Checksum      string
	LastUpdatedAt int64
}

// TypeMeta is the per-type read metadata returned by a consolidated read.
type TypeMeta struct {
	LastUpdatedAt int64  `json:"lastUpdatedAt,omitempty"`
	Checksum      string `json:"checksum,omitempty"`
	Source        string `json:"source"`
}

// DataRecord is the persisted unit: one serialized envelope (or bare legacy
// payload) per (owner key, data type).
type DataRecord struct {
	OwnerKey string         `gorm:"primaryKey;column:user_id" json:"user_id"`
	DataType string         `gorm:"primaryKey;column:type" json:"type"`
	Payload  datatypes.JSON `gorm:"column:payload" json:"payload"`

	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (DataRecord) TableName() string { return "user_data" }

func NowMillis() int64 {
	return time.Now().UnixMilli()
}
