package domain

import (
	"fmt"
	"time"
)

const (
	MinScore = 1
	MaxScore = 10
)

// Review is a user's scored opinion on a title. At most one review exists
// per (author, title).
type Review struct {
	ID       string    `json:"id"`
	TitleID  string    `json:"title"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	Score    int       `json:"score"`
	PubDate  time.Time `json:"pub_date"`
}

func (r *Review) OwnerID() string { return r.AuthorID }

// Comment is a reply attached to a review.
type Comment struct {
	ID       string    `json:"id"`
	ReviewID string    `json:"-"`
	AuthorID string    `json:"-"`
	Author   string    `json:"author"`
	Text     string    `json:"text"`
	PubDate  time.Time `json:"pub_date"`
}

func (c *Comment) OwnerID() string { return c.AuthorID }

// ValidateScore checks MinScore <= score <= MaxScore.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("%w: score must be between %d and %d", ErrValidation, MinScore, MaxScore)
	}
	return nil
}

// ValidateText rejects empty review and comment bodies.
func ValidateText(text string) error {
	if text == "" {
		return fmt.Errorf("%w: text is required", ErrValidation)
	}
	return nil
}
