// media-service/internal/store/media_store.go
package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"media-service/internal/domain"

	"github.com/google/uuid"
)

// timestampPrecision совпадает с точностью TIMESTAMPTZ в PostgreSQL.
const timestampPrecision = time.Microsecond

// storeNow возвращает текущее время UTC с точностью, которую сохраняет база.
func storeNow() time.Time {
	return time.Now().UTC().Truncate(timestampPrecision)
}

var (
	ErrMediaNotFound = errors.New("media not found")
)

// Значения пагинации по умолчанию.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MediaListParams параметры выборки списка.
type MediaListParams struct {
	Page     int
	PageSize int
	Search   string // подстрока без учета регистра по title, director, location
}

// Normalize подставляет значения по умолчанию для нулевых или отрицательных полей.
func (p MediaListParams) Normalize() MediaListParams {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset возвращает число пропускаемых записей.
func (p MediaListParams) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// MediaStore определяет операции с записями каталога.
type MediaStore interface {
	Create(ctx context.Context, media *domain.Media) error
	GetByID(ctx context.Context, id string) (*domain.Media, error)
	List(ctx context.Context, params MediaListParams) ([]*domain.Media, int, error)
	Update(ctx context.Context, media *domain.Media) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// MockMediaStore хранит записи в памяти. Используется в тестах и для локального запуска без БД.
type MockMediaStore struct {
	mu     sync.RWMutex
	media  map[string]*domain.Media
	now    func() time.Time
	logger *slog.Logger

	// FailWith, если задан, возвращается из всех операций (для проверки ошибок хранилища).
	FailWith error
}

// NewMockMediaStore создает пустое in-memory хранилище.
func NewMockMediaStore(logger *slog.Logger) *MockMediaStore {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &MockMediaStore{
		media:  make(map[string]*domain.Media),
		now:    storeNow,
		logger: logger,
	}
}

// SetFailure задает ошибку для всех операций под блокировкой; nil снимает сбой.
func (m *MockMediaStore) SetFailure(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailWith = err
}

// SetClock подменяет источник времени.
func (m *MockMediaStore) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *MockMediaStore) Create(ctx context.Context, media *domain.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}

	media.ID = uuid.NewString()
	media.CreatedAt = m.now().Truncate(timestampPrecision)
	media.UpdatedAt = media.CreatedAt

	mediaCopy := *media
	m.media[media.ID] = &mediaCopy
	m.logger.DebugContext(ctx, "[MOCK STORE] media created", slog.String("mediaID", media.ID))
	return nil
}

func (m *MockMediaStore) GetByID(ctx context.Context, id string) (*domain.Media, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	media, ok := m.media[id]
	if !ok {
		return nil, ErrMediaNotFound
	}
	mediaCopy := *media
	return &mediaCopy, nil
}

func (m *MockMediaStore) List(ctx context.Context, params MediaListParams) ([]*domain.Media, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return nil, 0, m.FailWith
	}
	params = params.Normalize()

	query := strings.ToLower(params.Search)
	filtered := make([]domain.Media, 0, len(m.media))
	for _, media := range m.media {
		if query != "" && !matchesSearch(media, query) {
			continue
		}
		filtered = append(filtered, *media)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].CreatedAt.Equal(filtered[j].CreatedAt) {
			return filtered[i].ID > filtered[j].ID
		}
		return filtered[i].CreatedAt.After(filtered[j].CreatedAt)
	})

	total := len(filtered)
	start := params.Offset()
	if start >= total {
		return []*domain.Media{}, total, nil
	}
	end := start + params.PageSize
	if end > total {
		end = total
	}

	page := make([]*domain.Media, 0, end-start)
	for i := start; i < end; i++ {
		mediaCopy := filtered[i]
		page = append(page, &mediaCopy)
	}
	return page, total, nil
}

func matchesSearch(media *domain.Media, query string) bool {
	return strings.Contains(strings.ToLower(media.Title), query) ||
		strings.Contains(strings.ToLower(media.Director), query) ||
		strings.Contains(strings.ToLower(media.Location), query)
}

func (m *MockMediaStore) Update(ctx context.Context, media *domain.Media) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}

	existing, ok := m.media[media.ID]
	if !ok {
		return ErrMediaNotFound
	}
	media.CreatedAt = existing.CreatedAt
	media.UpdatedAt = m.now().Truncate(timestampPrecision)

	mediaCopy := *media
	m.media[media.ID] = &mediaCopy
	return nil
}

func (m *MockMediaStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWith != nil {
		return m.FailWith
	}

	if _, ok := m.media[id]; !ok {
		return ErrMediaNotFound
	}
	delete(m.media, id)
	return nil
}

func (m *MockMediaStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.FailWith != nil {
		return 0, m.FailWith
	}
	return len(m.media), nil
}

func (m *MockMediaStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.FailWith
}

func (m *MockMediaStore) Close() error { return nil }

// likePattern строит шаблон LIKE для поиска подстроки без учета регистра.
// Символы %, _ и \ во входной строке экранируются (ESCAPE '\').
func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(search))
	return "%" + escaped + "%"
}
