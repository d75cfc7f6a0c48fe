package models

import (
	"time"

	"gorm.io/gorm"
)

// SavedGame is a durable snapshot of one session's game state.
type SavedGame struct {
	SessionID string         `gorm:"primaryKey;size:64" json:"session_id"`
	StateJSON string         `gorm:"type:text" json:"-"` // Serialized GameState
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
