package handler

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/core/ports"
)

var alice = policy.Actor{ID: "u-alice", Username: "alice", Role: domain.RoleUser}

// newContext builds an echo context with the API validator installed. A
// non-empty body is sent as JSON.
func newContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// asActor stores the actor the way Authenticate does.
func asActor(c echo.Context, a policy.Actor) {
	c.Set("actor", a)
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != code {
		t.Fatalf("expected HTTP %d error, got %v", code, err)
	}
}

// --- Stubs ---

type stubAuthService struct {
	signUpFn     func(ctx context.Context, username, email string) (*domain.User, error)
	issueTokenFn func(ctx context.Context, username, code string) (string, error)
}

func (s *stubAuthService) SignUp(ctx context.Context, username, email string) (*domain.User, error) {
	return s.signUpFn(ctx, username, email)
}

func (s *stubAuthService) IssueToken(ctx context.Context, username, code string) (string, error) {
	return s.issueTokenFn(ctx, username, code)
}

type stubCatalogService struct {
	ports.CatalogService

	listCategoriesFn func(search string, page ports.PageRequest) (ports.Page[domain.Category], error)
	createCategoryFn func(actor policy.Actor, name, slug string) (*domain.Category, error)
	deleteGenreFn    func(actor policy.Actor, slug string) error
	listTitlesFn     func(filter ports.TitleFilter, page ports.PageRequest) (ports.Page[domain.Title], error)
	getTitleFn       func(id string) (*domain.Title, error)
	createTitleFn    func(actor policy.Actor, in ports.TitleInput) (*domain.Title, error)
	updateTitleFn    func(actor policy.Actor, id string, patch ports.TitlePatch) (*domain.Title, error)
}

func (s *stubCatalogService) ListCategories(_ context.Context, search string, page ports.PageRequest) (ports.Page[domain.Category], error) {
	return s.listCategoriesFn(search, page)
}

func (s *stubCatalogService) CreateCategory(_ context.Context, actor policy.Actor, name, slug string) (*domain.Category, error) {
	return s.createCategoryFn(actor, name, slug)
}

func (s *stubCatalogService) DeleteGenre(_ context.Context, actor policy.Actor, slug string) error {
	return s.deleteGenreFn(actor, slug)
}

func (s *stubCatalogService) ListTitles(_ context.Context, filter ports.TitleFilter, page ports.PageRequest) (ports.Page[domain.Title], error) {
	return s.listTitlesFn(filter, page)
}

func (s *stubCatalogService) GetTitle(_ context.Context, id string) (*domain.Title, error) {
	return s.getTitleFn(id)
}

func (s *stubCatalogService) CreateTitle(_ context.Context, actor policy.Actor, in ports.TitleInput) (*domain.Title, error) {
	return s.createTitleFn(actor, in)
}

func (s *stubCatalogService) UpdateTitle(_ context.Context, actor policy.Actor, id string, patch ports.TitlePatch) (*domain.Title, error) {
	return s.updateTitleFn(actor, id, patch)
}

type stubReviewService struct {
	ports.ReviewService

	createFn func(actor policy.Actor, titleID string, in ports.ReviewInput) (*domain.Review, error)
	updateFn func(actor policy.Actor, titleID, reviewID string, patch ports.ReviewPatch) (*domain.Review, error)
	deleteFn func(actor policy.Actor, titleID, reviewID string) error
}

func (s *stubReviewService) CreateReview(_ context.Context, actor policy.Actor, titleID string, in ports.ReviewInput) (*domain.Review, error) {
	return s.createFn(actor, titleID, in)
}

func (s *stubReviewService) UpdateReview(_ context.Context, actor policy.Actor, titleID, reviewID string, patch ports.ReviewPatch) (*domain.Review, error) {
	return s.updateFn(actor, titleID, reviewID, patch)
}

func (s *stubReviewService) DeleteReview(_ context.Context, actor policy.Actor, titleID, reviewID string) error {
	return s.deleteFn(actor, titleID, reviewID)
}

type stubCommentService struct {
	ports.CommentService

	listFn   func(titleID, reviewID string, page ports.PageRequest) (ports.Page[domain.Comment], error)
	createFn func(actor policy.Actor, titleID, reviewID, text string) (*domain.Comment, error)
}

func (s *stubCommentService) ListComments(_ context.Context, titleID, reviewID string, page ports.PageRequest) (ports.Page[domain.Comment], error) {
	return s.listFn(titleID, reviewID, page)
}

func (s *stubCommentService) CreateComment(_ context.Context, actor policy.Actor, titleID, reviewID, text string) (*domain.Comment, error) {
	return s.createFn(actor, titleID, reviewID, text)
}

type stubUserService struct {
	ports.UserService

	meFn       func(actor policy.Actor) (*domain.User, error)
	updateMeFn func(actor policy.Actor, patch ports.UserPatch) (*domain.User, error)
	createFn   func(actor policy.Actor, in ports.UserInput) (*domain.User, error)
}

func (s *stubUserService) Me(_ context.Context, actor policy.Actor) (*domain.User, error) {
	return s.meFn(actor)
}

func (s *stubUserService) UpdateMe(_ context.Context, actor policy.Actor, patch ports.UserPatch) (*domain.User, error) {
	return s.updateMeFn(actor, patch)
}

func (s *stubUserService) CreateUser(_ context.Context, actor policy.Actor, in ports.UserInput) (*domain.User, error) {
	return s.createFn(actor, in)
}
