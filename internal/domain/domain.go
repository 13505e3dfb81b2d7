package domain

import (
	"github.com/yungbote/healthyback-backend/internal/domain/user"
	"github.com/yungbote/healthyback-backend/internal/domain/userdata"
)

type (
	User = user.User

	DataType     = userdata.DataType
	DataRecord   = userdata.DataRecord
	Envelope     = userdata.Envelope
	EnvelopeMeta = userdata.EnvelopeMeta
	TypeMeta     = userdata.TypeMeta
)

const (
	TypeHistory       = userdata.TypeHistory
	TypePainLogs      = userdata.TypePainLogs
	TypeWeights       = userdata.TypeWeights
	TypeAchievements  = userdata.TypeAchievements
	TypeReadinessLogs = userdata.TypeReadinessLogs
	TypeLegacyMeta    = userdata.TypeLegacyMeta

	SourcePrimary = userdata.SourcePrimary
	SourceLegacy  = userdata.SourceLegacy
)

var (
	DataTypes  = userdata.Types
	IsKnown    = userdata.IsKnown
	IsSequence = userdata.IsSequence
	NowMillis  = userdata.NowMillis
)
