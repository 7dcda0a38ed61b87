package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrTaskNotFound is returned when a task id does not exist.
var ErrTaskNotFound = errors.New("task not found")

// ErrEmptyFilter guards against a bulk delete with no predicate at all.
var ErrEmptyFilter = errors.New("refusing to delete without a filter")

const taskColumns = `id, title, start_time, end_time, emotion, notes, created_at`

// TaskRepository handles task database operations
type TaskRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTaskRepository creates a new task repository
func NewTaskRepository(db *DB, logger *zap.Logger) *TaskRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskRepository{db: db, logger: logger}
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

// Create inserts a task, assigning an id when it has none.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	if err := insertTask(ctx, r.db, task); err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// CreateBatch inserts all tasks in one transaction. Either every task is
// stored or none is.
func (r *TaskRepository) CreateBatch(ctx context.Context, tasks []*models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, task := range tasks {
			if err := insertTask(ctx, tx, task); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create task batch: %w", err)
	}
	r.logger.Debug("task_batch_created", zap.Int("count", len(tasks)))
	return nil
}

func insertTask(ctx context.Context, q rowQuerier, task *models.Task) error {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	return q.QueryRowContext(ctx, `
		INSERT INTO tasks (id, title, start_time, end_time, emotion, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`,
		task.ID,
		task.Title,
		task.Start,
		task.End,
		nullString(task.Emotion),
		nullString(task.Notes),
		time.Now(),
	).Scan(&task.CreatedAt)
}

// GetByID retrieves a task by ID
func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return task, nil
}

// ListByStart returns every task ordered by start time, earliest first.
func (r *TaskRepository) ListByStart(ctx context.Context) ([]*models.Task, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY start_time ASC, created_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var tasks []*models.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// Update applies a partial update and returns the stored task.
func (r *TaskRepository) Update(ctx context.Context, id uuid.UUID, update models.TaskUpdate) (*models.Task, error) {
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	set, args := buildTaskUpdate(update)
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = $%d RETURNING %s`, set, len(args), taskColumns)

	task, err := scanTask(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Delete removes a task by ID
func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteMatching removes every task matching filter and returns how many
// rows went. Deleting rows that are already gone matches nothing and is
// not an error, so repeating a command is safe.
func (r *TaskRepository) DeleteMatching(ctx context.Context, filter models.TaskFilter) (int64, error) {
	where, args := buildTaskFilter(filter)
	if where == "" {
		return 0, ErrEmptyFilter
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete matching tasks: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	r.logger.Debug("tasks_deleted_by_filter",
		zap.Int64("count", n),
		zap.String("where", where),
	)
	return n, nil
}

func buildTaskUpdate(u models.TaskUpdate) (string, []any) {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if u.Title != nil {
		add("title", *u.Title)
	}
	if u.Start != nil {
		add("start_time", *u.Start)
	}
	if u.End != nil {
		add("end_time", *u.End)
	}
	if u.Emotion != nil {
		add("emotion", nullString(u.Emotion))
	}
	if u.Notes != nil {
		add("notes", nullString(u.Notes))
	}
	return strings.Join(sets, ", "), args
}

// buildTaskFilter renders filter as a WHERE clause. Titles match by
// case-insensitive substring; bounds are inclusive and apply to start_time.
func buildTaskFilter(f models.TaskFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if title := strings.TrimSpace(f.TitleContains); title != "" {
		args = append(args, "%"+escapeLike(title)+"%")
		conds = append(conds, fmt.Sprintf(`title ILIKE $%d ESCAPE '\'`, len(args)))
	}
	if f.From != nil {
		args = append(args, *f.From)
		conds = append(conds, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if f.To != nil {
		args = append(args, *f.To)
		conds = append(conds, fmt.Sprintf("start_time <= $%d", len(args)))
	}
	return strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func scanTask(s scanner) (*models.Task, error) {
	var (
		task    models.Task
		emotion sql.NullString
		notes   sql.NullString
	)
	if err := s.Scan(
		&task.ID,
		&task.Title,
		&task.Start,
		&task.End,
		&emotion,
		&notes,
		&task.CreatedAt,
	); err != nil {
		return nil, err
	}
	if emotion.Valid {
		task.Emotion = &emotion.String
	}
	if notes.Valid {
		task.Notes = &notes.String
	}
	return &task, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
