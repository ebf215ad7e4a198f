// media-service/internal/store/gorm_media_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"media-service/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMediaStore реализует MediaStore поверх gorm.
type GormMediaStore struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewGormMediaStore создает новый экземпляр GormMediaStore.
func NewGormMediaStore(db *gorm.DB, logger *slog.Logger) (*GormMediaStore, error) {
	if db == nil {
		return nil, errors.New("database connection (db) cannot be nil")
	}
	return &GormMediaStore{db: db, logger: logger}, nil
}

// searchScope добавляет OR-фильтр по title, director и location.
func searchScope(search string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if search == "" {
			return db
		}
		pattern := likePattern(search)
		return db.Where(
			`LOWER(title) LIKE ? ESCAPE '\' OR LOWER(director) LIKE ? ESCAPE '\' OR LOWER(location) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern,
		)
	}
}

// Create сохраняет новую запись, выставляя ID и временные метки.
func (s *GormMediaStore) Create(ctx context.Context, media *domain.Media) error {
	media.ID = uuid.NewString()
	media.CreatedAt = storeNow()
	media.UpdatedAt = media.CreatedAt

	s.logger.DebugContext(ctx, "Creating media", slog.String("mediaID", media.ID), slog.String("title", media.Title))
	if err := s.db.WithContext(ctx).Create(media).Error; err != nil {
		s.logger.ErrorContext(ctx, "Failed to create media in DB", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create media: %w", err)
	}
	s.logger.InfoContext(ctx, "Media created successfully in DB", slog.String("mediaID", media.ID))
	return nil
}

// GetByID находит запись по ID.
func (s *GormMediaStore) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	var media domain.Media
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&media).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.WarnContext(ctx, "Media not found by ID in DB", slog.String("mediaID", id))
			return nil, ErrMediaNotFound
		}
		s.logger.ErrorContext(ctx, "Failed to get media by ID from DB", slog.String("mediaID", id), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to get media by ID: %w", err)
	}
	return &media, nil
}

// List возвращает страницу записей (новые сначала) и общее число подходящих под фильтр.
func (s *GormMediaStore) List(ctx context.Context, params MediaListParams) ([]*domain.Media, int, error) {
	params = params.Normalize()

	var total int64
	err := s.db.WithContext(ctx).
		Model(&domain.Media{}).
		Scopes(searchScope(params.Search)).
		Count(&total).Error
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to count media in DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to count media: %w", err)
	}
	if total == 0 {
		return []*domain.Media{}, 0, nil
	}

	media := make([]*domain.Media, 0, params.PageSize)
	err = s.db.WithContext(ctx).
		Scopes(searchScope(params.Search)).
		Order("created_at DESC").
		Order("id DESC").
		Offset(params.Offset()).
		Limit(params.PageSize).
		Find(&media).Error
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to list media from DB", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("failed to list media: %w", err)
	}

	s.logger.DebugContext(ctx, "Media listed", slog.Int("returned", len(media)), slog.Int64("total", total), slog.String("search", params.Search))
	return media, int(total), nil
}

// Update полностью заменяет изменяемые поля записи.
func (s *GormMediaStore) Update(ctx context.Context, media *domain.Media) error {
	updatedAt := storeNow()

	result := s.db.WithContext(ctx).
		Model(&domain.Media{}).
		Where("id = ?", media.ID).
		Updates(map[string]any{
			"title":      media.Title,
			"type":       media.Type,
			"director":   media.Director,
			"budget":     media.Budget,
			"location":   media.Location,
			"duration":   media.Duration,
			"year":       media.Year,
			"updated_at": updatedAt,
		})
	if result.Error != nil {
		s.logger.ErrorContext(ctx, "Failed to update media in DB", slog.String("mediaID", media.ID), slog.String("error", result.Error.Error()))
		return fmt.Errorf("failed to update media: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.WarnContext(ctx, "No media found to update in DB", slog.String("mediaID", media.ID))
		return ErrMediaNotFound
	}

	stored, err := s.GetByID(ctx, media.ID)
	if err != nil {
		return err
	}
	*media = *stored
	s.logger.InfoContext(ctx, "Media updated successfully in DB", slog.String("mediaID", media.ID))
	return nil
}

// Delete удаляет запись.
func (s *GormMediaStore) Delete(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Media{})
	if result.Error != nil {
		s.logger.ErrorContext(ctx, "Failed to delete media in DB", slog.String("mediaID", id), slog.String("error", result.Error.Error()))
		return fmt.Errorf("failed to delete media: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		s.logger.WarnContext(ctx, "No media found to delete in DB", slog.String("mediaID", id))
		return ErrMediaNotFound
	}
	s.logger.InfoContext(ctx, "Media deleted successfully in DB", slog.String("mediaID", id))
	return nil
}

// Count возвращает общее число записей.
func (s *GormMediaStore) Count(ctx context.Context) (int, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&domain.Media{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count media: %w", err)
	}
	return int(total), nil
}

// Ping проверяет соединение с БД.
func (s *GormMediaStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает пул соединений.
func (s *GormMediaStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB from gorm: %w", err)
	}
	return sqlDB.Close()
}
