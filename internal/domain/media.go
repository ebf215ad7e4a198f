// media-service/internal/domain/media.go
package domain

import (
	"time"
)

// MediaType определяет допустимые типы записей каталога.
// Перечисление проверяется на уровне приложения, в базе это обычный text.
type MediaType string

const (
	MediaTypeMovie  MediaType = "Movie"
	MediaTypeTVShow MediaType = "TVShow"
)

// MediaTypes возвращает все допустимые значения MediaType.
func MediaTypes() []MediaType {
	return []MediaType{MediaTypeMovie, MediaTypeTVShow}
}

// Valid сообщает, входит ли значение в перечисление.
func (t MediaType) Valid() bool {
	for _, known := range MediaTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Media представляет запись каталога (фильм или сериал).
// Budget, Duration и Year хранятся как есть, без разбора: "$160M", "49 min/ep", "2011-2019".
type Media struct {
	ID        string    `json:"id" db:"id" gorm:"primaryKey;type:text"`
	Title     string    `json:"title" db:"title" gorm:"not null"`
	Type      MediaType `json:"type" db:"type" gorm:"type:text;not null"`
	Director  string    `json:"director" db:"director" gorm:"not null"`
	Budget    string    `json:"budget" db:"budget" gorm:"not null"`
	Location  string    `json:"location" db:"location" gorm:"not null"`
	Duration  string    `json:"duration" db:"duration" gorm:"not null"`
	Year      string    `json:"year" db:"year" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// TableName фиксирует имя таблицы для gorm.
func (Media) TableName() string {
	return "media"
}

// MediaRequest определяет тело запроса для создания и полной замены записи.
type MediaRequest struct {
	Title    string    `json:"title" validate:"required"`
	Type     MediaType `json:"type" validate:"required,oneof=Movie TVShow"`
	Director string    `json:"director" validate:"required"`
	Budget   string    `json:"budget" validate:"required"`
	Location string    `json:"location" validate:"required"`
	Duration string    `json:"duration" validate:"required"`
	Year     string    `json:"year" validate:"required"`
}

// ToMedia строит новую запись из запроса. ID и временные метки выставляет хранилище.
func (r MediaRequest) ToMedia() *Media {
	m := &Media{}
	r.ApplyTo(m)
	return m
}

// ApplyTo заменяет все изменяемые поля записи значениями из запроса.
func (r MediaRequest) ApplyTo(m *Media) {
	m.Title = r.Title
	m.Type = r.Type
	m.Director = r.Director
	m.Budget = r.Budget
	m.Location = r.Location
	m.Duration = r.Duration
	m.Year = r.Year
}
