// media-service/internal/store/postgres_media_store.go
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"media-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq" // Для обработки ошибок PostgreSQL
)

const mediaColumns = `id, title, type, director, budget, location, duration, year, created_at, updated_at`

const searchCondition = `(LOWER(title) LIKE $1 ESCAPE '\' OR LOWER(director) LIKE $1 ESCAPE '\' OR LOWER(location) LIKE $1 ESCAPE '\')`

// PostgresMediaStore реализует MediaStore для PostgreSQL через sqlx.
type PostgresMediaStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewPostgresMediaStore создает новый экземпляр PostgresMediaStore.
func NewPostgresMediaStore(db *sqlx.DB, logger *slog.Logger) (*PostgresMediaStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &PostgresMediaStore{db: db, logger: logger}, nil
}

// pqAttrs добавляет код и ограничение из pq.Error, если ошибка пришла от PostgreSQL.
func pqAttrs(err error) []any {
	attrs := []any{slog.String("error", err.Error())}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		attrs = append(attrs, slog.String("pg_code", string(pqErr.Code)), slog.String("constraint", pqErr.Constraint))
	}
	return attrs
}

// Create создает новую запись в базе данных.
func (s *PostgresMediaStore) Create(ctx context.Context, media *domain.Media) error {
	query := `INSERT INTO media (` + mediaColumns + `)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	media.ID = uuid.NewString()
	media.CreatedAt = storeNow()
	media.UpdatedAt = media.CreatedAt

	s.logger.DebugContext(ctx, "Executing Create media query", slog.String("mediaID", media.ID), slog.String("title", media.Title))
	_, err := s.db.ExecContext(ctx, query,
		media.ID, media.Title, string(media.Type), media.Director, media.Budget,
		media.Location, media.Duration, media.Year, media.CreatedAt, media.UpdatedAt,
	)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create media in DB", pqAttrs(err)...)
		return fmt.Errorf("failed to create media: %w", err)
	}
	s.logger.InfoContext(ctx, "Media created successfully in DB", slog.String("mediaID", media.ID))
	return nil
}

// GetByID находит запись по ID.
func (s *PostgresMediaStore) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	query := `SELECT ` + mediaColumns + ` FROM media WHERE id = $1`
	var media domain.Media

	s.logger.DebugContext(ctx, "Executing GetMediaByID query", slog.String("mediaID", id))
	if err := s.db.GetContext(ctx, &media, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "Media not found by ID in DB", slog.String("mediaID", id))
			return nil, ErrMediaNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get media by ID from DB", append(pqAttrs(err), slog.String("mediaID", id))...)
		return nil, fmt.Errorf("failed to get media by ID: %w", err)
	}
	return &media, nil
}

// List возвращает страницу записей и общее количество подходящих под фильтр.
func (s *PostgresMediaStore) List(ctx context.Context, params MediaListParams) ([]*domain.Media, int, error) {
	params = params.Normalize()

	countQuery := `SELECT COUNT(*) FROM media`
	selectQuery := `SELECT ` + mediaColumns + ` FROM media`

	var args []any
	if params.Search != "" {
		countQuery += ` WHERE ` + searchCondition
		selectQuery += ` WHERE ` + searchCondition
		args = append(args, likePattern(params.Search))
	}

	var total int
	s.logger.DebugContext(ctx, "Executing List media count query", slog.String("query", countQuery), slog.Any("args", args))
	if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to count media in DB", pqAttrs(err)...)
		return nil, 0, fmt.Errorf("failed to count media: %w", err)
	}
	if total == 0 {
		return []*domain.Media{}, 0, nil
	}

	n := len(args)
	selectQuery += fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, params.PageSize, params.Offset())

	media := make([]*domain.Media, 0, params.PageSize)
	s.logger.DebugContext(ctx, "Executing List media select query", slog.String("query", selectQuery), slog.Any("args", args))
	if err := s.db.SelectContext(ctx, &media, selectQuery, args...); err != nil {
		s.logger.ErrorContext(ctx, "Failed to list media from DB", pqAttrs(err)...)
		return nil, 0, fmt.Errorf("failed to list media: %w", err)
	}
	return media, total, nil
}

// Update заменяет все изменяемые поля записи.
func (s *PostgresMediaStore) Update(ctx context.Context, media *domain.Media) error {
	query := `UPDATE media
              SET title = $1, type = $2, director = $3, budget = $4, location = $5, duration = $6, year = $7, updated_at = $8
              WHERE id = $9
              RETURNING created_at`
	media.UpdatedAt = storeNow()

	s.logger.DebugContext(ctx, "Executing Update media query", slog.String("mediaID", media.ID))
	err := s.db.QueryRowxContext(ctx, query,
		media.Title, string(media.Type), media.Director, media.Budget, media.Location,
		media.Duration, media.Year, media.UpdatedAt, media.ID,
	).Scan(&media.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.WarnContext(ctx, "No media found to update in DB", slog.String("mediaID", media.ID))
			return ErrMediaNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to update media in DB", append(pqAttrs(err), slog.String("mediaID", media.ID))...)
		return fmt.Errorf("failed to update media: %w", err)
	}
	s.logger.InfoContext(ctx, "Media updated successfully in DB", slog.String("mediaID", media.ID))
	return nil
}

// Delete удаляет запись.
func (s *PostgresMediaStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to delete media in DB", append(pqAttrs(err), slog.String("mediaID", id))...)
		return fmt.Errorf("failed to delete media: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if rowsAffected == 0 {
		s.logger.WarnContext(ctx, "No media found to delete in DB", slog.String("mediaID", id))
		return ErrMediaNotFound
	}
	s.logger.InfoContext(ctx, "Media deleted successfully in DB", slog.String("mediaID", id))
	return nil
}

// Count возвращает общее число записей.
func (s *PostgresMediaStore) Count(ctx context.Context) (int, error) {
	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM media`); err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return total, nil
}

// Ping проверяет соединение с БД.
func (s *PostgresMediaStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *PostgresMediaStore) Close() error {
	return s.db.Close()
}
