package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/core/ports"
	"github.com/yamdb/review-api/internal/pkg/metrics"
)

// RatingAggregator derives a title's rating as the mean score of its current
// reviews. The cache is an optimisation only: every review mutation must
// call Invalidate, and any cache failure falls back to the store.
type RatingAggregator struct {
	reviews ports.ReviewRepository
	cache   ports.RatingCache
	log     zerolog.Logger
}

// NewRatingAggregator returns an aggregator. cache may be nil.
func NewRatingAggregator(reviews ports.ReviewRepository, cache ports.RatingCache, log zerolog.Logger) *RatingAggregator {
	return &RatingAggregator{reviews: reviews, cache: cache, log: log}
}

// Rating returns the mean review score of a title, or nil without reviews.
func (a *RatingAggregator) Rating(ctx context.Context, titleID string) (*float64, error) {
	ratings, err := a.Ratings(ctx, []string{titleID})
	if err != nil {
		return nil, err
	}
	return ratings[titleID], nil
}

// Ratings resolves many titles at once: cache hits first, then one
// aggregate query for the rest. Every requested id is present in the result.
func (a *RatingAggregator) Ratings(ctx context.Context, titleIDs []string) (map[string]*float64, error) {
	out := make(map[string]*float64, len(titleIDs))
	if len(titleIDs) == 0 {
		return out, nil
	}

	missing := titleIDs
	var versions map[string]int64
	if a.cache != nil {
		snap, err := a.cache.Lookup(ctx, titleIDs)
		if err != nil {
			metrics.RatingCacheLookupsTotal.WithLabelValues("error").Inc()
			a.log.Warn().Err(err).Msg("rating cache lookup failed, reading from store")
		} else {
			versions = snap.Versions
			missing = missing[:0:0]
			for _, id := range titleIDs {
				if r, ok := snap.Hits[id]; ok {
					out[id] = r
					metrics.RatingCacheLookupsTotal.WithLabelValues("hit").Inc()
					continue
				}
				missing = append(missing, id)
				metrics.RatingCacheLookupsTotal.WithLabelValues("miss").Inc()
			}
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	avgs, err := a.reviews.AverageScores(ctx, missing)
	if err != nil {
		return nil, fmt.Errorf("average scores: %w", err)
	}
	for _, id := range missing {
		var r *float64
		if v, ok := avgs[id]; ok {
			r = &v
		}
		out[id] = r
		if v, ok := versions[id]; ok {
			a.store(ctx, id, r, v)
		}
	}
	return out, nil
}

// Invalidate drops the cached rating of a title.
func (a *RatingAggregator) Invalidate(ctx context.Context, titleID string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Invalidate(ctx, titleID); err != nil {
		a.log.Error().Err(err).Str("title_id", titleID).Msg("failed to invalidate rating cache")
	}
}

func (a *RatingAggregator) store(ctx context.Context, titleID string, r *float64, version int64) {
	if err := a.cache.Store(ctx, titleID, r, version); err != nil {
		a.log.Warn().Err(err).Str("title_id", titleID).Msg("failed to cache rating")
	}
}
