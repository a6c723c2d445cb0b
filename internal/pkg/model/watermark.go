package model

import "time"

// Watermark is the last block through which GameResolved logs were fetched for a player.
type Watermark struct {
	PlayerAddress string `gorm:"primaryKey"`
	BlockNumber   uint64
	UpdatedAt     time.Time
}

func (Watermark) TableName() string {
	return "event_watermark"
}
