package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/ports"
)

// ── Categories ───────────────────────────────────────────────────────────────

// CategoryRepository implements ports.CategoryRepository.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context, search string, page ports.PageRequest) (ports.Page[domain.Category], error) {
	var rows []categoryModel
	count, err := listNamed(ctx, r.db, &categoryModel{}, search, page, &rows)
	if err != nil {
		return ports.Page[domain.Category]{}, fmt.Errorf("list categories: %w", err)
	}
	out := ports.Page[domain.Category]{Count: count, Results: make([]domain.Category, 0, len(rows))}
	for _, row := range rows {
		out.Results = append(out.Results, row.toEntity())
	}
	return out, nil
}

func (r *CategoryRepository) Create(ctx context.Context, c *domain.Category) error {
	row := categoryModel{ID: c.ID, Name: c.Name, Slug: c.Slug}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("create category: %w", err)
	}
	return nil
}

func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*domain.Category, error) {
	var row categoryModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCategoryNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	c := row.toEntity()
	return &c, nil
}

// DeleteBySlug removes the category and leaves its titles uncategorised.
func (r *CategoryRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row categoryModel
		if err := tx.Where("slug = ?", slug).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrCategoryNotFound
			}
			return fmt.Errorf("find category: %w", err)
		}
		if err := tx.Model(&titleModel{}).Where("category_id = ?", row.ID).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("detach titles: %w", err)
		}
		if err := tx.Delete(&row).Error; err != nil {
			return fmt.Errorf("delete category: %w", err)
		}
		return nil
	})
}

// ── Genres ───────────────────────────────────────────────────────────────────

// GenreRepository implements ports.GenreRepository.
type GenreRepository struct {
	db *gorm.DB
}

func NewGenreRepository(db *gorm.DB) *GenreRepository {
	return &GenreRepository{db: db}
}

func (r *GenreRepository) List(ctx context.Context, search string, page ports.PageRequest) (ports.Page[domain.Genre], error) {
	var rows []genreModel
	count, err := listNamed(ctx, r.db, &genreModel{}, search, page, &rows)
	if err != nil {
		return ports.Page[domain.Genre]{}, fmt.Errorf("list genres: %w", err)
	}
	out := ports.Page[domain.Genre]{Count: count, Results: make([]domain.Genre, 0, len(rows))}
	for _, row := range rows {
		out.Results = append(out.Results, row.toEntity())
	}
	return out, nil
}

func (r *GenreRepository) Create(ctx context.Context, g *domain.Genre) error {
	row := genreModel{ID: g.ID, Name: g.Name, Slug: g.Slug}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSlug
		}
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func (r *GenreRepository) FindBySlugs(ctx context.Context, slugs []string) ([]domain.Genre, error) {
	unique := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		unique[s] = struct{}{}
	}

	var rows []genreModel
	if err := r.db.WithContext(ctx).Where("slug IN ?", slugs).Order("slug").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find genres: %w", err)
	}
	if len(rows) != len(unique) {
		return nil, domain.ErrGenreNotFound
	}
	out := make([]domain.Genre, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// DeleteBySlug removes the genre and its title links.
func (r *GenreRepository) DeleteBySlug(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row genreModel
		if err := tx.Where("slug = ?", slug).First(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrGenreNotFound
			}
			return fmt.Errorf("find genre: %w", err)
		}
		if err := tx.Exec("DELETE FROM genre_titles WHERE genre_id = ?", row.ID).Error; err != nil {
			return fmt.Errorf("unlink genre: %w", err)
		}
		if err := tx.Delete(&row).Error; err != nil {
			return fmt.Errorf("delete genre: %w", err)
		}
		return nil
	})
}

// listNamed pages a name/slug table ordered by name, optionally filtered by
// a case-insensitive name search.
func listNamed(ctx context.Context, db *gorm.DB, model any, search string, page ports.PageRequest, dest any) (int64, error) {
	page = page.Normalize()
	q := db.WithContext(ctx).Model(model)
	if search != "" {
		q = q.Where("name ILIKE ?", likePattern(search))
	}
	q = q.Session(&gorm.Session{})

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, err
	}
	if err := q.Order("name").Order("slug").Limit(page.Limit).Offset(page.Offset).Find(dest).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ── Titles ───────────────────────────────────────────────────────────────────

// TitleRepository implements ports.TitleRepository.
type TitleRepository struct {
	db *gorm.DB
}

func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

func (r *TitleRepository) List(ctx context.Context, filter ports.TitleFilter, page ports.PageRequest) (ports.Page[domain.Title], error) {
	page = page.Normalize()
	db := r.db.WithContext(ctx)
	q := db.Model(&titleModel{})
	if filter.Genre != "" {
		q = q.Where("titles.id IN (?)", db.Table("genre_titles").
			Select("genre_titles.title_id").
			Joins("JOIN genres ON genres.id = genre_titles.genre_id").
			Where("genres.slug = ?", filter.Genre))
	}
	if filter.Category != "" {
		q = q.Where("titles.category_id IN (?)", db.Model(&categoryModel{}).
			Select("id").
			Where("slug = ?", filter.Category))
	}
	if filter.Name != "" {
		q = q.Where("titles.name ILIKE ?", likePattern(filter.Name))
	}
	if filter.Year != 0 {
		q = q.Where("titles.year = ?", filter.Year)
	}
	q = q.Session(&gorm.Session{})

	var out ports.Page[domain.Title]
	if err := q.Count(&out.Count).Error; err != nil {
		return out, fmt.Errorf("count titles: %w", err)
	}
	var rows []titleModel
	err := q.Preload("Genres", func(tx *gorm.DB) *gorm.DB { return tx.Order("genres.slug") }).
		Preload("Category").
		Order("titles.name").Order("titles.id").
		Limit(page.Limit).Offset(page.Offset).
		Find(&rows).Error
	if err != nil {
		return out, fmt.Errorf("list titles: %w", err)
	}
	out.Results = make([]domain.Title, 0, len(rows))
	for _, row := range rows {
		out.Results = append(out.Results, row.toEntity())
	}
	return out, nil
}

func (r *TitleRepository) FindByID(ctx context.Context, id string) (*domain.Title, error) {
	if !validID(id) {
		return nil, domain.ErrTitleNotFound
	}
	var row titleModel
	err := r.db.WithContext(ctx).
		Preload("Genres", func(tx *gorm.DB) *gorm.DB { return tx.Order("genres.slug") }).
		Preload("Category").
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrTitleNotFound
		}
		return nil, fmt.Errorf("find title: %w", err)
	}
	t := row.toEntity()
	return &t, nil
}

func (r *TitleRepository) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var n int64
	if err := r.db.WithContext(ctx).Model(&titleModel{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("title exists: %w", err)
	}
	return n > 0, nil
}

// Create inserts the title and its genre links. Genres and category must
// already exist; they are referenced, never upserted.
func (r *TitleRepository) Create(ctx context.Context, t *domain.Title) error {
	row := titleModelFromEntity(t)
	err := r.db.WithContext(ctx).Omit("Category", "Genres.*").Create(&row).Error
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrCategoryNotFound
		}
		return fmt.Errorf("create title: %w", err)
	}
	return nil
}

func (r *TitleRepository) Update(ctx context.Context, t *domain.Title) error {
	if !validID(t.ID) {
		return domain.ErrTitleNotFound
	}
	row := titleModelFromEntity(t)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&titleModel{ID: t.ID}).
			Select("name", "year", "description", "category_id").
			Updates(&row)
		if res.Error != nil {
			if isForeignKeyViolation(res.Error) {
				return domain.ErrCategoryNotFound
			}
			return fmt.Errorf("update title: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrTitleNotFound
		}
		if err := tx.Model(&titleModel{ID: t.ID}).Omit("Genres.*").Association("Genres").Replace(row.Genres); err != nil {
			return fmt.Errorf("replace title genres: %w", err)
		}
		return nil
	})
}

// Delete removes the title; its genre links, reviews and comments go with it.
func (r *TitleRepository) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return domain.ErrTitleNotFound
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM genre_titles WHERE title_id = ?", id).Error; err != nil {
			return fmt.Errorf("unlink title genres: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&titleModel{})
		if res.Error != nil {
			return fmt.Errorf("delete title: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrTitleNotFound
		}
		return nil
	})
}
