package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

// EmotionLogRepository stores analysis log entries. Entries are append-only.
type EmotionLogRepository struct {
	db *DB
}

// NewEmotionLogRepository creates a new emotion log repository
func NewEmotionLogRepository(db *DB) *EmotionLogRepository {
	return &EmotionLogRepository{db: db}
}

// Create inserts entry and fills in its id and creation time.
func (r *EmotionLogRepository) Create(ctx context.Context, entry *models.EmotionLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	var score sql.NullFloat64
	if entry.Score != nil {
		score = sql.NullFloat64{Float64: *entry.Score, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO emotion_logs (id, text, sentiment, detected_emotion, score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, entry.ID, entry.Text, entry.Sentiment, entry.DetectedEmotion, score, time.Now()).Scan(&entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create emotion log: %w", err)
	}
	return nil
}

// ListRecent returns entries newest first. A non-positive limit means no limit.
func (r *EmotionLogRepository) ListRecent(ctx context.Context, limit int) ([]*models.EmotionLogEntry, error) {
	query := `
		SELECT id, text, sentiment, detected_emotion, score, created_at
		FROM emotion_logs
		ORDER BY created_at DESC
	`
	var args []any
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list emotion logs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []*models.EmotionLogEntry
	for rows.Next() {
		var (
			e     models.EmotionLogEntry
			score sql.NullFloat64
		)
		if err := rows.Scan(&e.ID, &e.Text, &e.Sentiment, &e.DetectedEmotion, &score, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan emotion log: %w", err)
		}
		if score.Valid {
			e.Score = &score.Float64
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate emotion logs: %w", err)
	}
	return entries, nil
}
