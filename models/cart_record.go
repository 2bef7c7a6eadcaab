package models

import "time"

// CartRecord stores one serialized cart under a fixed key.
type CartRecord struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Payload   []byte    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (r *CartRecord) TableName() string {
	return "cart_records"
}
