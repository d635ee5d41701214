package domain

import (
	"fmt"
	"regexp"
	"time"
)

const (
	MinTitleYear      = 1900
	MaxCatalogNameLen = 256
	MaxSlugLen        = 50
	MaxDescriptionLen = 300
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// Category groups titles (film, book, music...). Deleting a category
// leaves its titles uncategorised.
type Category struct {
	ID   string `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Genre is a many-to-many tag on titles.
type Genre struct {
	ID   string `json:"-"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Title is a catalog work open for reviews. Rating is derived from the
// current reviews and is nil when there are none.
type Title struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Year        int       `json:"year"`
	Description string    `json:"description"`
	Genres      []Genre   `json:"genre"`
	Category    *Category `json:"category"`
	Rating      *float64  `json:"rating"`
}

// ValidateYear checks MinTitleYear <= year <= now.Year().
func ValidateYear(year int, now time.Time) error {
	if year < MinTitleYear || year > now.Year() {
		return fmt.Errorf("%w: year must be between %d and %d", ErrValidation, MinTitleYear, now.Year())
	}
	return nil
}

// ValidateSlug enforces the slug charset and length.
func ValidateSlug(slug string) error {
	if slug == "" || len(slug) > MaxSlugLen || !slugPattern.MatchString(slug) {
		return fmt.Errorf("%w: slug must be 1-%d characters of letters, digits, '-' or '_'", ErrValidation, MaxSlugLen)
	}
	return nil
}

// ValidateCatalogName enforces a non-empty name of bounded length.
func ValidateCatalogName(name string) error {
	if name == "" || len(name) > MaxCatalogNameLen {
		return fmt.Errorf("%w: name must be 1-%d characters", ErrValidation, MaxCatalogNameLen)
	}
	return nil
}
