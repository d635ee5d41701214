package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/domain"
)

func seedReview(r *stubReviewRepo, id, titleID, authorID string, score int) {
	_ = r.Create(context.Background(), &domain.Review{ID: id, TitleID: titleID, AuthorID: authorID, Score: score})
}

func TestRatingAggregator_ExactMean(t *testing.T) {
	reviews := newStubReviewRepo()
	seedReview(reviews, "r1", "t1", "a", 7)
	seedReview(reviews, "r2", "t1", "b", 8)
	seedReview(reviews, "r3", "t1", "c", 10)
	a := NewRatingAggregator(reviews, nil, zerolog.Nop())

	got, err := a.Rating(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if got == nil || *got != 25.0/3.0 {
		t.Fatalf("expected %v, got %v", 25.0/3.0, got)
	}
}

func TestRatingAggregator_NoReviewsIsNil(t *testing.T) {
	a := NewRatingAggregator(newStubReviewRepo(), newStubRatingCache(), zerolog.Nop())

	got, err := a.Rating(context.Background(), "t1")
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil rating, got %v", *got)
	}
}

func TestRatingAggregator_Batch(t *testing.T) {
	reviews := newStubReviewRepo()
	seedReview(reviews, "r1", "t1", "a", 2)
	seedReview(reviews, "r2", "t2", "a", 9)
	a := NewRatingAggregator(reviews, newStubRatingCache(), zerolog.Nop())

	got, err := a.Ratings(context.Background(), []string{"t1", "t2", "t3"})
	if err != nil {
		t.Fatalf("Ratings: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected every id in result, got %v", got)
	}
	if *got["t1"] != 2 || *got["t2"] != 9 || got["t3"] != nil {
		t.Fatalf("unexpected ratings: t1=%v t2=%v t3=%v", got["t1"], got["t2"], got["t3"])
	}
}

func TestRatingAggregator_ServesFromCache(t *testing.T) {
	reviews := newStubReviewRepo()
	seedReview(reviews, "r1", "t1", "a", 6)
	cache := newStubRatingCache()
	a := NewRatingAggregator(reviews, cache, zerolog.Nop())
	ctx := context.Background()

	if _, err := a.Rating(ctx, "t1"); err != nil {
		t.Fatalf("first Rating: %v", err)
	}
	if _, err := a.Rating(ctx, "t1"); err != nil {
		t.Fatalf("second Rating: %v", err)
	}
	if reviews.avgCalls != 1 {
		t.Fatalf("expected one store query, got %d", reviews.avgCalls)
	}

	// An empty title is cached as nil too.
	_, _ = a.Rating(ctx, "t2")
	_, _ = a.Rating(ctx, "t2")
	if reviews.avgCalls != 2 {
		t.Fatalf("expected nil rating to be cached, got %d store queries", reviews.avgCalls)
	}
}

func TestRatingAggregator_InvalidateForcesRecompute(t *testing.T) {
	reviews := newStubReviewRepo()
	seedReview(reviews, "r1", "t1", "a", 6)
	a := NewRatingAggregator(reviews, newStubRatingCache(), zerolog.Nop())
	ctx := context.Background()

	assertRating(t, a, "t1", 6)
	seedReview(reviews, "r2", "t1", "b", 10)
	a.Invalidate(ctx, "t1")
	assertRating(t, a, "t1", 8)

	_ = reviews.Delete(ctx, "t1", "r1")
	_ = reviews.Delete(ctx, "t1", "r2")
	a.Invalidate(ctx, "t1")
	got, _ := a.Rating(ctx, "t1")
	if got != nil {
		t.Fatalf("expected nil after last review deleted, got %v", *got)
	}
}

func TestRatingAggregator_CacheFailureFallsBack(t *testing.T) {
	reviews := newStubReviewRepo()
	seedReview(reviews, "r1", "t1", "a", 4)
	cache := newStubRatingCache()
	cache.lookupErr = errors.New("redis down")
	a := NewRatingAggregator(reviews, cache, zerolog.Nop())

	assertRating(t, a, "t1", 4)
}

func TestRatingAggregator_StaleStoreAfterInvalidateIsDropped(t *testing.T) {
	reviews := newStubReviewRepo()
	seedReview(reviews, "r1", "t1", "a", 2)
	cache := newStubRatingCache()
	a := NewRatingAggregator(reviews, cache, zerolog.Nop())
	ctx := context.Background()

	// A writer commits and invalidates between the read of the average and
	// the cache store.
	reviews.afterAverage = func() {
		reviews.afterAverage = nil
		seedReview(reviews, "r2", "t1", "b", 10)
		a.Invalidate(ctx, "t1")
	}
	got, err := a.Rating(ctx, "t1")
	if err != nil {
		t.Fatalf("Rating: %v", err)
	}
	if got == nil || *got != 2 {
		t.Fatalf("in-flight read should return the value it computed, got %v", got)
	}
	if cache.rejected != 1 {
		t.Fatalf("expected the stale store to be rejected, got %d rejections", cache.rejected)
	}

	assertRating(t, a, "t1", 6)
	if reviews.avgCalls != 2 {
		t.Fatalf("expected recompute after invalidation, got %d store queries", reviews.avgCalls)
	}
}
