package postgres

import (
	"time"

	"github.com/yamdb/review-api/internal/core/domain"
)

type userModel struct {
	ID               string    `gorm:"column:id;type:uuid;primaryKey"`
	Username         string    `gorm:"column:username;size:150;not null;uniqueIndex"`
	Email            string    `gorm:"column:email;size:254;not null;uniqueIndex"`
	FirstName        string    `gorm:"column:first_name;size:150"`
	LastName         string    `gorm:"column:last_name;size:150"`
	Bio              string    `gorm:"column:bio;type:text"`
	Role             string    `gorm:"column:role;size:16;not null;default:user;check:chk_users_role,role IN ('user','moderator','admin')"`
	Superuser        bool      `gorm:"column:is_superuser;not null;default:false"`
	ConfirmationCode string    `gorm:"column:confirmation_code;size:72"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (userModel) TableName() string { return "users" }

func userModelFromEntity(u *domain.User) userModel {
	return userModel{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		Bio:              u.Bio,
		Role:             string(u.Role),
		Superuser:        u.Superuser,
		ConfirmationCode: u.ConfirmationCodeHash,
		CreatedAt:        u.CreatedAt.UTC(),
		UpdatedAt:        u.UpdatedAt.UTC(),
	}
}

func (m userModel) toEntity() *domain.User {
	return &domain.User{
		ID:                   m.ID,
		Username:             m.Username,
		Email:                m.Email,
		FirstName:            m.FirstName,
		LastName:             m.LastName,
		Bio:                  m.Bio,
		Role:                 domain.Role(m.Role),
		Superuser:            m.Superuser,
		ConfirmationCodeHash: m.ConfirmationCode,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}

type categoryModel struct {
	ID   string `gorm:"column:id;type:uuid;primaryKey"`
	Name string `gorm:"column:name;size:256;not null"`
	Slug string `gorm:"column:slug;size:50;not null;uniqueIndex"`
}

func (categoryModel) TableName() string { return "categories" }

func (m categoryModel) toEntity() domain.Category {
	return domain.Category{ID: m.ID, Name: m.Name, Slug: m.Slug}
}

type genreModel struct {
	ID   string `gorm:"column:id;type:uuid;primaryKey"`
	Name string `gorm:"column:name;size:256;not null"`
	Slug string `gorm:"column:slug;size:50;not null;uniqueIndex"`
}

func (genreModel) TableName() string { return "genres" }

func (m genreModel) toEntity() domain.Genre {
	return domain.Genre{ID: m.ID, Name: m.Name, Slug: m.Slug}
}

type titleModel struct {
	ID          string         `gorm:"column:id;type:uuid;primaryKey"`
	Name        string         `gorm:"column:name;size:256;not null;index"`
	Year        int            `gorm:"column:year;not null;index"`
	Description string         `gorm:"column:description;size:300"`
	CategoryID  *string        `gorm:"column:category_id;type:uuid;index"`
	Category    *categoryModel `gorm:"constraint:OnDelete:SET NULL"`
	Genres      []genreModel   `gorm:"many2many:genre_titles;joinForeignKey:TitleID;joinReferences:GenreID;constraint:OnDelete:CASCADE"`
}

func (titleModel) TableName() string { return "titles" }

func titleModelFromEntity(t *domain.Title) titleModel {
	row := titleModel{
		ID:          t.ID,
		Name:        t.Name,
		Year:        t.Year,
		Description: t.Description,
	}
	if t.Category != nil {
		id := t.Category.ID
		row.CategoryID = &id
	}
	for _, g := range t.Genres {
		row.Genres = append(row.Genres, genreModel{ID: g.ID, Name: g.Name, Slug: g.Slug})
	}
	return row
}

func (m titleModel) toEntity() domain.Title {
	t := domain.Title{
		ID:          m.ID,
		Name:        m.Name,
		Year:        m.Year,
		Description: m.Description,
		Genres:      make([]domain.Genre, 0, len(m.Genres)),
	}
	for _, g := range m.Genres {
		t.Genres = append(t.Genres, g.toEntity())
	}
	if m.Category != nil {
		c := m.Category.toEntity()
		t.Category = &c
	}
	return t
}

// reviewModel carries the (author, title) uniqueness and score bounds that
// settle concurrent submissions.
type reviewModel struct {
	ID       string      `gorm:"column:id;type:uuid;primaryKey"`
	TitleID  string      `gorm:"column:title_id;type:uuid;not null;uniqueIndex:idx_reviews_author_title,priority:2"`
	Title    *titleModel `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID string      `gorm:"column:author_id;type:uuid;not null;uniqueIndex:idx_reviews_author_title,priority:1"`
	Author   *userModel  `gorm:"constraint:OnDelete:CASCADE"`
	Text     string      `gorm:"column:text;type:text;not null"`
	Score    int         `gorm:"column:score;not null;check:chk_reviews_score,score BETWEEN 1 AND 10"`
	PubDate  time.Time   `gorm:"column:pub_date;not null;index"`
}

func (reviewModel) TableName() string { return "reviews" }

func reviewModelFromEntity(r *domain.Review) reviewModel {
	return reviewModel{
		ID:       r.ID,
		TitleID:  r.TitleID,
		AuthorID: r.AuthorID,
		Text:     r.Text,
		Score:    r.Score,
		PubDate:  r.PubDate.UTC(),
	}
}

func (m reviewModel) toEntity() domain.Review {
	r := domain.Review{
		ID:       m.ID,
		TitleID:  m.TitleID,
		AuthorID: m.AuthorID,
		Text:     m.Text,
		Score:    m.Score,
		PubDate:  m.PubDate,
	}
	if m.Author != nil {
		r.Author = m.Author.Username
	}
	return r
}

type commentModel struct {
	ID       string       `gorm:"column:id;type:uuid;primaryKey"`
	ReviewID string       `gorm:"column:review_id;type:uuid;not null;index"`
	Review   *reviewModel `gorm:"constraint:OnDelete:CASCADE"`
	AuthorID string       `gorm:"column:author_id;type:uuid;not null"`
	Author   *userModel   `gorm:"constraint:OnDelete:CASCADE"`
	Text     string       `gorm:"column:text;type:text;not null"`
	PubDate  time.Time    `gorm:"column:pub_date;not null;index"`
}

func (commentModel) TableName() string { return "comments" }

func commentModelFromEntity(c *domain.Comment) commentModel {
	return commentModel{
		ID:       c.ID,
		ReviewID: c.ReviewID,
		AuthorID: c.AuthorID,
		Text:     c.Text,
		PubDate:  c.PubDate.UTC(),
	}
}

func (m commentModel) toEntity() domain.Comment {
	c := domain.Comment{
		ID:       m.ID,
		ReviewID: m.ReviewID,
		AuthorID: m.AuthorID,
		Text:     m.Text,
		PubDate:  m.PubDate,
	}
	if m.Author != nil {
		c.Author = m.Author.Username
	}
	return c
}
