package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/maheshrc27/crosspost/internal/models"
)

type ScheduledPostRepository interface {
	Create(ctx context.Context, post *models.ScheduledPostRecord) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ScheduledPostRecord, error)
	ListByStatus(ctx context.Context, status string) ([]*models.ScheduledPostRecord, error)
	List(ctx context.Context) ([]*models.ScheduledPostRecord, error)
	UpdateStatus(ctx context.Context, id int64, status string) (bool, error)
	UpdateScheduledTime(ctx context.Context, id int64, scheduledTime string) (bool, error)
	Remove(ctx context.Context, id int64) (bool, error)
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

const scheduledPostColumns = `id, content, platforms, scheduled_time, status, created_at, media_paths, post_mode`

func (r *scheduledPostRepository) Create(ctx context.Context, post *models.ScheduledPostRecord) (int64, error) {
	query := `
		INSERT INTO scheduled_posts (content, platforms, scheduled_time, status, created_at, media_paths, post_mode)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		post.Content, post.Platforms, post.ScheduledTime, post.Status, post.CreatedAt, post.MediaPaths, post.PostMode,
	).Scan(&id)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func (r *scheduledPostRepository) GetByID(ctx context.Context, id int64) (*models.ScheduledPostRecord, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE id = $1`

	post, err := scanScheduledPost(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return post, nil
}

func (r *scheduledPostRepository) ListByStatus(ctx context.Context, status string) ([]*models.ScheduledPostRecord, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts WHERE status = $1`
	return r.list(ctx, query, status)
}

func (r *scheduledPostRepository) List(ctx context.Context) ([]*models.ScheduledPostRecord, error) {
	query := `SELECT ` + scheduledPostColumns + ` FROM scheduled_posts ORDER BY scheduled_time DESC`
	return r.list(ctx, query)
}

func (r *scheduledPostRepository) list(ctx context.Context, query string, args ...any) ([]*models.ScheduledPostRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPostRecord
	for rows.Next() {
		post, err := scanScheduledPost(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, post)
	}

	if err = rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return posts, nil
}

// UpdateStatus reports false when no row has the given id.
func (r *scheduledPostRepository) UpdateStatus(ctx context.Context, id int64, status string) (bool, error) {
	query := `UPDATE scheduled_posts SET status = $1 WHERE id = $2`
	return r.exec(ctx, query, status, id)
}

func (r *scheduledPostRepository) UpdateScheduledTime(ctx context.Context, id int64, scheduledTime string) (bool, error) {
	query := `UPDATE scheduled_posts SET scheduled_time = $1 WHERE id = $2`
	return r.exec(ctx, query, scheduledTime, id)
}

func (r *scheduledPostRepository) Remove(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM scheduled_posts WHERE id = $1`
	return r.exec(ctx, query, id)
}

func (r *scheduledPostRepository) exec(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	affectedRows, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}

	return affectedRows > 0, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanScheduledPost(row rowScanner) (*models.ScheduledPostRecord, error) {
	var post models.ScheduledPostRecord
	err := row.Scan(
		&post.ID,
		&post.Content,
		&post.Platforms,
		&post.ScheduledTime,
		&post.Status,
		&post.CreatedAt,
		&post.MediaPaths,
		&post.PostMode,
	)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
