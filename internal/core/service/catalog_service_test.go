package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/core/ports"
)

type catalogFixture struct {
	svc        *CatalogService
	categories *stubCategoryRepo
	genres     *stubGenreRepo
	titles     *stubTitleRepo
	reviews    *stubReviewRepo
	cache      *stubRatingCache
}

func newCatalogFixture() *catalogFixture {
	f := &catalogFixture{
		categories: &stubCategoryRepo{bySlug: map[string]*domain.Category{
			"movie": {ID: "c1", Name: "Movie", Slug: "movie"},
		}},
		genres: &stubGenreRepo{bySlug: map[string]*domain.Genre{
			"drama":  {ID: "g1", Name: "Drama", Slug: "drama"},
			"comedy": {ID: "g2", Name: "Comedy", Slug: "comedy"},
		}},
		titles:  newStubTitleRepo(),
		reviews: newStubReviewRepo(),
		cache:   newStubRatingCache(),
	}
	ratings := NewRatingAggregator(f.reviews, f.cache, zerolog.Nop())
	f.svc = NewCatalogService(f.categories, f.genres, f.titles, ratings, zerolog.Nop())
	f.svc.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }
	return f
}

func TestCatalogService_CategoryWritesRequireAdmin(t *testing.T) {
	tests := []struct {
		name  string
		actor policy.Actor
		want  error
	}{
		{"admin", admin, nil},
		{"superuser", superuser, nil},
		{"moderator", moderator, domain.ErrForbidden},
		{"user", alice, domain.ErrForbidden},
		{"anonymous", policy.Anonymous(), domain.ErrUnauthenticated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			_, err := f.svc.CreateCategory(context.Background(), tt.actor, "Book", "book")
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCatalogService_CategoryValidation(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateCategory(ctx, admin, "Book", "no spaces"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for bad slug, got %v", err)
	}
	if _, err := f.svc.CreateCategory(ctx, admin, "", "book"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for empty name, got %v", err)
	}
	if _, err := f.svc.CreateCategory(ctx, admin, "Film", "movie"); !errors.Is(err, domain.ErrDuplicateSlug) {
		t.Errorf("expected ErrDuplicateSlug, got %v", err)
	}
}

func TestCatalogService_GenreLifecycle(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()

	g, err := f.svc.CreateGenre(ctx, admin, "Horror", "horror")
	if err != nil || g.Slug != "horror" {
		t.Fatalf("CreateGenre: %v %+v", err, g)
	}
	if err := f.svc.DeleteGenre(ctx, alice, "horror"); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.DeleteGenre(ctx, admin, "horror"); err != nil {
		t.Fatalf("DeleteGenre: %v", err)
	}
	if err := f.svc.DeleteGenre(ctx, admin, "horror"); !errors.Is(err, domain.ErrGenreNotFound) {
		t.Fatalf("expected ErrGenreNotFound, got %v", err)
	}
}

func TestCatalogService_CreateTitle(t *testing.T) {
	f := newCatalogFixture()

	title, err := f.svc.CreateTitle(context.Background(), admin, ports.TitleInput{
		Name:     "Solaris",
		Year:     1972,
		Genre:    []string{"drama"},
		Category: "movie",
	})
	if err != nil {
		t.Fatalf("CreateTitle: %v", err)
	}
	if title.Category == nil || title.Category.Slug != "movie" {
		t.Errorf("category not attached: %+v", title.Category)
	}
	if len(title.Genres) != 1 || title.Genres[0].Slug != "drama" {
		t.Errorf("genres not attached: %+v", title.Genres)
	}
	if title.Rating != nil {
		t.Errorf("new title should have no rating")
	}
}

func TestCatalogService_CreateTitleErrors(t *testing.T) {
	tests := []struct {
		name string
		in   ports.TitleInput
		want error
	}{
		{"future year", ports.TitleInput{Name: "X", Year: 2030, Genre: []string{"drama"}}, domain.ErrValidation},
		{"too old", ports.TitleInput{Name: "X", Year: 1899, Genre: []string{"drama"}}, domain.ErrValidation},
		{"no genres", ports.TitleInput{Name: "X", Year: 2000}, domain.ErrValidation},
		{"unknown genre", ports.TitleInput{Name: "X", Year: 2000, Genre: []string{"jazz"}}, domain.ErrGenreNotFound},
		{"unknown category", ports.TitleInput{Name: "X", Year: 2000, Genre: []string{"drama"}, Category: "game"}, domain.ErrCategoryNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newCatalogFixture()
			if _, err := f.svc.CreateTitle(context.Background(), admin, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCatalogService_UpdateTitlePartial(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	created, _ := f.svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "Solaris", Year: 1972, Genre: []string{"drama"}, Category: "movie"})

	name := "Solaris (remaster)"
	genres := []string{"drama", "comedy"}
	updated, err := f.svc.UpdateTitle(ctx, admin, created.ID, ports.TitlePatch{Name: &name, Genre: &genres})
	if err != nil {
		t.Fatalf("UpdateTitle: %v", err)
	}
	if updated.Name != name || updated.Year != 1972 {
		t.Errorf("unexpected fields: %+v", updated)
	}
	if len(updated.Genres) != 2 || updated.Category == nil {
		t.Errorf("genres replaced and category kept expected: %+v", updated)
	}

	none := ""
	updated, err = f.svc.UpdateTitle(ctx, admin, created.ID, ports.TitlePatch{Category: &none})
	if err != nil || updated.Category != nil {
		t.Fatalf("empty category slug should clear it: %v %+v", err, updated.Category)
	}
}

func TestCatalogService_TitlesCarryRating(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	t1, _ := f.svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "A", Year: 2000, Genre: []string{"drama"}})
	t2, _ := f.svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "B", Year: 2001, Genre: []string{"drama"}})
	seedReview(f.reviews, "r1", t1.ID, "u1", 3)
	seedReview(f.reviews, "r2", t1.ID, "u2", 6)

	got, err := f.svc.GetTitle(ctx, t1.ID)
	if err != nil {
		t.Fatalf("GetTitle: %v", err)
	}
	if got.Rating == nil || *got.Rating != 4.5 {
		t.Fatalf("expected rating 4.5, got %v", got.Rating)
	}

	page, err := f.svc.ListTitles(ctx, ports.TitleFilter{}, ports.PageRequest{})
	if err != nil {
		t.Fatalf("ListTitles: %v", err)
	}
	for _, title := range page.Results {
		switch title.ID {
		case t1.ID:
			if title.Rating == nil || *title.Rating != 4.5 {
				t.Errorf("expected listed rating 4.5, got %v", title.Rating)
			}
		case t2.ID:
			if title.Rating != nil {
				t.Errorf("expected nil rating for unreviewed title, got %v", *title.Rating)
			}
		}
	}
}

func TestCatalogService_DeleteTitleInvalidatesRating(t *testing.T) {
	f := newCatalogFixture()
	ctx := context.Background()
	title, _ := f.svc.CreateTitle(ctx, admin, ports.TitleInput{Name: "A", Year: 2000, Genre: []string{"drama"}})

	if err := f.svc.DeleteTitle(ctx, moderator, title.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := f.svc.DeleteTitle(ctx, admin, title.ID); err != nil {
		t.Fatalf("DeleteTitle: %v", err)
	}
	if len(f.cache.invalidated) != 1 || f.cache.invalidated[0] != title.ID {
		t.Fatalf("expected rating invalidated for %s, got %v", title.ID, f.cache.invalidated)
	}
	if _, err := f.svc.GetTitle(ctx, title.ID); !errors.Is(err, domain.ErrTitleNotFound) {
		t.Fatalf("expected ErrTitleNotFound, got %v", err)
	}
}
