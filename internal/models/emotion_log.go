package models

import (
	"time"

	"github.com/google/uuid"
)

// EmotionLogEntry records one analysis of user input. Entries are never updated.
type EmotionLogEntry struct {
	ID              uuid.UUID `json:"id"`
	Text            string    `json:"text"`
	Sentiment       string    `json:"sentiment"`
	DetectedEmotion string    `json:"detectedEmotion"`
	Score           *float64  `json:"score,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
