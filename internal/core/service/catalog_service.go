package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/core/ports"
)

// CatalogService manages categories, genres and titles. Titles are returned
// with their derived rating filled in.
type CatalogService struct {
	categories ports.CategoryRepository
	genres     ports.GenreRepository
	titles     ports.TitleRepository
	ratings    ports.RatingProvider
	log        zerolog.Logger
	now        func() time.Time
}

func NewCatalogService(
	categories ports.CategoryRepository,
	genres ports.GenreRepository,
	titles ports.TitleRepository,
	ratings ports.RatingProvider,
	log zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		categories: categories,
		genres:     genres,
		titles:     titles,
		ratings:    ratings,
		log:        log,
		now:        time.Now,
	}
}

// ── Categories ───────────────────────────────────────────────────────────────

func (s *CatalogService) ListCategories(ctx context.Context, search string, page ports.PageRequest) (ports.Page[domain.Category], error) {
	return s.categories.List(ctx, search, page.Normalize())
}

func (s *CatalogService) CreateCategory(ctx context.Context, actor policy.Actor, name, slug string) (*domain.Category, error) {
	if err := policy.Catalog.Authorize(actor, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := errors.Join(domain.ValidateCatalogName(name), domain.ValidateSlug(slug)); err != nil {
		return nil, err
	}
	c := &domain.Category{ID: uuid.NewString(), Name: name, Slug: slug}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, actor policy.Actor, slug string) error {
	if err := policy.Catalog.Authorize(actor, policy.ActionDelete); err != nil {
		return err
	}
	return s.categories.DeleteBySlug(ctx, slug)
}

// ── Genres ───────────────────────────────────────────────────────────────────

func (s *CatalogService) ListGenres(ctx context.Context, search string, page ports.PageRequest) (ports.Page[domain.Genre], error) {
	return s.genres.List(ctx, search, page.Normalize())
}

func (s *CatalogService) CreateGenre(ctx context.Context, actor policy.Actor, name, slug string) (*domain.Genre, error) {
	if err := policy.Catalog.Authorize(actor, policy.ActionCreate); err != nil {
		return nil, err
	}
	if err := errors.Join(domain.ValidateCatalogName(name), domain.ValidateSlug(slug)); err != nil {
		return nil, err
	}
	g := &domain.Genre{ID: uuid.NewString(), Name: name, Slug: slug}
	if err := s.genres.Create(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *CatalogService) DeleteGenre(ctx context.Context, actor policy.Actor, slug string) error {
	if err := policy.Catalog.Authorize(actor, policy.ActionDelete); err != nil {
		return err
	}
	return s.genres.DeleteBySlug(ctx, slug)
}

// ── Titles ───────────────────────────────────────────────────────────────────

func (s *CatalogService) ListTitles(ctx context.Context, filter ports.TitleFilter, page ports.PageRequest) (ports.Page[domain.Title], error) {
	res, err := s.titles.List(ctx, filter, page.Normalize())
	if err != nil {
		return res, err
	}

	ids := make([]string, len(res.Results))
	for i, t := range res.Results {
		ids[i] = t.ID
	}
	ratings, err := s.ratings.Ratings(ctx, ids)
	if err != nil {
		return ports.Page[domain.Title]{}, err
	}
	for i := range res.Results {
		res.Results[i].Rating = ratings[res.Results[i].ID]
	}
	return res, nil
}

func (s *CatalogService) GetTitle(ctx context.Context, id string) (*domain.Title, error) {
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Rating, err = s.ratings.Rating(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) CreateTitle(ctx context.Context, actor policy.Actor, in ports.TitleInput) (*domain.Title, error) {
	if err := policy.Catalog.Authorize(actor, policy.ActionCreate); err != nil {
		return nil, err
	}
	t := &domain.Title{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Year:        in.Year,
		Description: in.Description,
	}
	if err := s.validateTitle(t); err != nil {
		return nil, err
	}
	if err := s.attach(ctx, t, &in.Genre, &in.Category); err != nil {
		return nil, err
	}
	if err := s.titles.Create(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info().Str("title_id", t.ID).Str("actor", actor.Username).Msg("title created")
	return t, nil
}

func (s *CatalogService) UpdateTitle(ctx context.Context, actor policy.Actor, id string, patch ports.TitlePatch) (*domain.Title, error) {
	if err := policy.Catalog.Authorize(actor, policy.ActionUpdate); err != nil {
		return nil, err
	}
	t, err := s.titles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		t.Name = *patch.Name
	}
	if patch.Year != nil {
		t.Year = *patch.Year
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if err := s.validateTitle(t); err != nil {
		return nil, err
	}
	if err := s.attach(ctx, t, patch.Genre, patch.Category); err != nil {
		return nil, err
	}
	if err := s.titles.Update(ctx, t); err != nil {
		return nil, err
	}
	if t.Rating, err = s.ratings.Rating(ctx, id); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *CatalogService) DeleteTitle(ctx context.Context, actor policy.Actor, id string) error {
	if err := policy.Catalog.Authorize(actor, policy.ActionDelete); err != nil {
		return err
	}
	if err := s.titles.Delete(ctx, id); err != nil {
		return err
	}
	s.ratings.Invalidate(ctx, id)
	s.log.Info().Str("title_id", id).Str("actor", actor.Username).Msg("title deleted")
	return nil
}

func (s *CatalogService) validateTitle(t *domain.Title) error {
	errs := []error{domain.ValidateCatalogName(t.Name), domain.ValidateYear(t.Year, s.now())}
	if len(t.Description) > domain.MaxDescriptionLen {
		errs = append(errs, fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, domain.MaxDescriptionLen))
	}
	return errors.Join(errs...)
}

// attach resolves genre and category slugs. A nil pointer keeps the current
// value; an empty category slug clears it. Unknown slugs are input errors
// here, so they are reported as validation failures.
func (s *CatalogService) attach(ctx context.Context, t *domain.Title, genres *[]string, category *string) error {
	if genres != nil {
		if len(*genres) == 0 {
			return fmt.Errorf("%w: at least one genre is required", domain.ErrValidation)
		}
		found, err := s.genres.FindBySlugs(ctx, *genres)
		if err != nil {
			return asInputError(err, domain.ErrGenreNotFound)
		}
		t.Genres = found
	}
	if category != nil {
		if *category == "" {
			t.Category = nil
			return nil
		}
		c, err := s.categories.FindBySlug(ctx, *category)
		if err != nil {
			return asInputError(err, domain.ErrCategoryNotFound)
		}
		t.Category = c
	}
	return nil
}

func asInputError(err, notFound error) error {
	if errors.Is(err, notFound) {
		return errors.Join(domain.ErrValidation, err)
	}
	return err
}
