package store

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mymilios/mymilios-backend/internal/pkg/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormWatermarkStore struct {
	db *gorm.DB
}

func NewGormWatermarkStore(db *gorm.DB) *GormWatermarkStore {
	return &GormWatermarkStore{db: db}
}

func (s *GormWatermarkStore) Migrate() error {
	return s.db.AutoMigrate(&model.Watermark{})
}

func (s *GormWatermarkStore) Load(ctx context.Context, player common.Address) (uint64, error) {
	var watermarks []model.Watermark
	result := s.db.
		WithContext(ctx).
		Model(&model.Watermark{}).
		Where("player_address = ?", playerKey(player)).
		Limit(1).
		Find(&watermarks)

	if result.Error != nil {
		return 0, result.Error
	}
	if len(watermarks) == 0 {
		return 0, nil
	}
	return watermarks[0].BlockNumber, nil
}

func (s *GormWatermarkStore) Save(ctx context.Context, player common.Address, block uint64) error {
	w := model.Watermark{
		PlayerAddress: playerKey(player),
		BlockNumber:   block,
		UpdatedAt:     time.Now().UTC(),
	}

	result := s.db.
		WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "player_address"}},
			DoUpdates: clause.Assignments(map[string]any{
				"block_number": gorm.Expr("GREATEST(event_watermark.block_number, EXCLUDED.block_number)"),
				"updated_at":   w.UpdatedAt,
			}),
		}).
		Create(&w)

	return result.Error
}
