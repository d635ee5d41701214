package ports

import (
	"context"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
)

// TitleInput creates a title. Genre and Category are slugs.
type TitleInput struct {
	Name        string
	Year        int
	Description string
	Genre       []string
	Category    string
}

// TitlePatch partially updates a title; nil fields are left unchanged.
type TitlePatch struct {
	Name        *string
	Year        *int
	Description *string
	Genre       *[]string
	Category    *string
}

// CatalogService manages categories, genres and titles.
type CatalogService interface {
	ListCategories(ctx context.Context, search string, page PageRequest) (Page[domain.Category], error)
	CreateCategory(ctx context.Context, actor policy.Actor, name, slug string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, actor policy.Actor, slug string) error

	ListGenres(ctx context.Context, search string, page PageRequest) (Page[domain.Genre], error)
	CreateGenre(ctx context.Context, actor policy.Actor, name, slug string) (*domain.Genre, error)
	DeleteGenre(ctx context.Context, actor policy.Actor, slug string) error

	ListTitles(ctx context.Context, filter TitleFilter, page PageRequest) (Page[domain.Title], error)
	GetTitle(ctx context.Context, id string) (*domain.Title, error)
	CreateTitle(ctx context.Context, actor policy.Actor, in TitleInput) (*domain.Title, error)
	UpdateTitle(ctx context.Context, actor policy.Actor, id string, patch TitlePatch) (*domain.Title, error)
	DeleteTitle(ctx context.Context, actor policy.Actor, id string) error
}
