package ports

import (
	"context"

	"github.com/yamdb/review-api/internal/core/domain"
)

// CategoryRepository persists categories. Deleting a category detaches it
// from its titles.
type CategoryRepository interface {
	List(ctx context.Context, search string, page PageRequest) (Page[domain.Category], error)
	Create(ctx context.Context, c *domain.Category) error
	FindBySlug(ctx context.Context, slug string) (*domain.Category, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

// GenreRepository persists genres.
type GenreRepository interface {
	List(ctx context.Context, search string, page PageRequest) (Page[domain.Genre], error)
	Create(ctx context.Context, g *domain.Genre) error
	// FindBySlugs returns domain.ErrGenreNotFound if any slug is unknown.
	FindBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error)
	DeleteBySlug(ctx context.Context, slug string) error
}

// TitleFilter narrows title listings. Zero fields do not filter.
type TitleFilter struct {
	Genre    string
	Category string
	Name     string
	Year     int
}

// TitleRepository persists titles with their genre and category links.
// Returned titles never carry a Rating.
type TitleRepository interface {
	List(ctx context.Context, filter TitleFilter, page PageRequest) (Page[domain.Title], error)
	FindByID(ctx context.Context, id string) (*domain.Title, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, t *domain.Title) error
	Update(ctx context.Context, t *domain.Title) error
	Delete(ctx context.Context, id string) error
}
