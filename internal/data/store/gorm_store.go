package store

import (
	"context"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/healthyback-backend/internal/domain"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
)

type gormStore struct {
	db  *gorm.DB
	log *logger.Logger
}

// NewGormStore returns a RecordStore backed by the relational user_data
// table. Results come back in the columnar wire shape so readers go through
// the same row-formatting path regardless of backend.
func NewGormStore(db *gorm.DB, baseLog *logger.Logger) RecordStore {
	storeLog := baseLog.With("store", "GormRecordStore")
	return &gormStore{db: db, log: storeLog}
}

func (gs *gormStore) Get(ctx context.Context, ownerKey string, dataType string) (*ResultSet, error) {
	var records []types.DataRecord
	if err := gs.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", ownerKey, dataType).
		Limit(1).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return recordResultSet(records), nil
}

func (gs *gormStore) Scan(ctx context.Context, ownerKey string) (*ResultSet, error) {
	var records []types.DataRecord
	if err := gs.db.WithContext(ctx).
		Where("user_id = ?", ownerKey).
		Order("type").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return recordResultSet(records), nil
}

func (gs *gormStore) Upsert(ctx context.Context, ownerKey string, dataType string, payload string) error {
	record := types.DataRecord{
		OwnerKey:  ownerKey,
		DataType:  dataType,
		Payload:   datatypes.JSON([]byte(payload)),
		UpdatedAt: time.Now().UTC(),
	}
	return gs.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "type"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&record).Error
}

func recordResultSet(records []types.DataRecord) *ResultSet {
	rs := &ResultSet{
		Columns: []Column{{Name: "type"}, {Name: "payload"}},
		Rows:    make([]Row, 0, len(records)),
	}
	for _, record := range records {
		rs.Rows = append(rs.Rows, Row{Items: []Cell{
			TextCell(record.DataType),
			TextCell(string(record.Payload)),
		}})
	}
	return rs
}
