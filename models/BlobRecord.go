package models

import "time"

// BlobRecord stores a single opaque payload under a unique key.
type BlobRecord struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Payload   []byte    `gorm:"not null" json:"payload"`
	UpdatedAt time.Time `json:"updated_at"`
}
