// media-service/internal/store/sample.go
package store

import (
	"context"
	"fmt"

	"media-service/internal/domain"
)

// SampleMedia возвращает стартовый набор записей каталога.
func SampleMedia() []domain.MediaRequest {
	return []domain.MediaRequest{
		{
			Title:    "Inception",
			Type:     domain.MediaTypeMovie,
			Director: "Christopher Nolan",
			Budget:   "$160M",
			Location: "LA, Paris",
			Duration: "148 min",
			Year:     "2010",
		},
		{
			Title:    "Breaking Bad",
			Type:     domain.MediaTypeTVShow,
			Director: "Vince Gilligan",
			Budget:   "$3M/ep",
			Location: "Albuquerque",
			Duration: "49 min/ep",
			Year:     "2008-2013",
		},
		{
			Title:    "The Shawshank Redemption",
			Type:     domain.MediaTypeMovie,
			Director: "Frank Darabont",
			Budget:   "$25M",
			Location: "Mansfield, Ohio",
			Duration: "142 min",
			Year:     "1994",
		},
		{
			Title:    "Game of Thrones",
			Type:     domain.MediaTypeTVShow,
			Director: "David Benioff, D.B. Weiss",
			Budget:   "$6M/ep",
			Location: "Northern Ireland, Croatia",
			Duration: "57 min/ep",
			Year:     "2011-2019",
		},
	}
}

// Seed создает записи по одной и возвращает созданные. Останавливается на первой ошибке.
func Seed(ctx context.Context, s MediaStore, requests []domain.MediaRequest) ([]*domain.Media, error) {
	created := make([]*domain.Media, 0, len(requests))
	for _, req := range requests {
		media := req.ToMedia()
		if err := s.Create(ctx, media); err != nil {
			return created, fmt.Errorf("seed %q: %w", req.Title, err)
		}
		created = append(created, media)
	}
	return created, nil
}
