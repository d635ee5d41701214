package service

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type stubUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // by username
	seq   int
	// onDelete stands in for the FK cascade from users to their content.
	onDelete func(u *domain.User)
}

func newStubUserRepo(seed ...*domain.User) *stubUserRepo {
	r := &stubUserRepo{users: make(map[string]*domain.User)}
	for _, u := range seed {
		r.users[u.Username] = cloneUser(u)
	}
	return r
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) UpsertPendingCode(_ context.Context, username, email, codeHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		if u.Email != email {
			return nil, domain.ErrAccountConflict
		}
		u.ConfirmationCodeHash = codeHash
		return cloneUser(u), nil
	}
	for _, u := range r.users {
		if u.Email == email {
			return nil, domain.ErrAccountConflict
		}
	}
	r.seq++
	u := &domain.User{
		ID:                   "user-" + username,
		Username:             username,
		Email:                email,
		Role:                 domain.RoleUser,
		ConfirmationCodeHash: codeHash,
	}
	r.users[username] = u
	return cloneUser(u), nil
}

func (r *stubUserRepo) ClearPendingCode(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == userID {
			u.ConfirmationCodeHash = ""
			return nil
		}
	}
	return domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[username]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrAccountConflict
		}
	}
	r.users[user.Username] = cloneUser(user)
	return cloneUser(user), nil
}

func (r *stubUserRepo) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, u := range r.users {
		if u.ID == user.ID {
			delete(r.users, name)
			r.users[user.Username] = cloneUser(user)
			return cloneUser(user), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Delete(_ context.Context, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[username]
	if !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, username)
	if r.onDelete != nil {
		r.onDelete(u)
	}
	return nil
}

func (r *stubUserRepo) List(_ context.Context, search string, _ ports.PageRequest) (ports.Page[*domain.User], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.User
	for _, u := range r.users {
		if strings.Contains(u.Username, search) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return ports.Page[*domain.User]{Count: int64(len(out)), Results: out}, nil
}

func (r *stubUserRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users)
}

// ---------------------------------------------------------------------------
// Collaborators
// ---------------------------------------------------------------------------

type stubQueue struct {
	mu   sync.Mutex
	sent []ports.Notification
}

func (q *stubQueue) Enqueue(n ports.Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.sent = append(q.sent, n)
}

func (q *stubQueue) last() ports.Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sent[len(q.sent)-1]
}

type stubAudit struct {
	err    error
	events []ports.AuthEvent
}

func (a *stubAudit) Record(_ context.Context, e ports.AuthEvent) error {
	if a.err != nil {
		return a.err
	}
	a.events = append(a.events, e)
	return nil
}

type stubMinter struct {
	minted []*domain.User
}

func (m *stubMinter) Mint(u *domain.User) (string, error) {
	m.minted = append(m.minted, cloneUser(u))
	return "token-for-" + u.Username + "-" + string(u.Role), nil
}

// ---------------------------------------------------------------------------
// Catalog
// ---------------------------------------------------------------------------

type stubTitleRepo struct {
	mu     sync.Mutex
	titles map[string]*domain.Title
}

func newStubTitleRepo(ids ...string) *stubTitleRepo {
	r := &stubTitleRepo{titles: make(map[string]*domain.Title)}
	for _, id := range ids {
		r.titles[id] = &domain.Title{ID: id, Name: "Title " + id, Year: 2000}
	}
	return r
}

func (r *stubTitleRepo) List(_ context.Context, _ ports.TitleFilter, _ ports.PageRequest) (ports.Page[domain.Title], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Title
	for _, t := range r.titles {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return ports.Page[domain.Title]{Count: int64(len(out)), Results: out}, nil
}

func (r *stubTitleRepo) FindByID(_ context.Context, id string) (*domain.Title, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.titles[id]
	if !ok {
		return nil, domain.ErrTitleNotFound
	}
	clone := *t
	return &clone, nil
}

func (r *stubTitleRepo) Exists(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.titles[id]
	return ok, nil
}

func (r *stubTitleRepo) Create(_ context.Context, t *domain.Title) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *t
	r.titles[t.ID] = &clone
	return nil
}

func (r *stubTitleRepo) Update(ctx context.Context, t *domain.Title) error {
	return r.Create(ctx, t)
}

func (r *stubTitleRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.titles[id]; !ok {
		return domain.ErrTitleNotFound
	}
	delete(r.titles, id)
	return nil
}

type stubCategoryRepo struct {
	bySlug map[string]*domain.Category
}

func (r *stubCategoryRepo) List(context.Context, string, ports.PageRequest) (ports.Page[domain.Category], error) {
	var out []domain.Category
	for _, c := range r.bySlug {
		out = append(out, *c)
	}
	return ports.Page[domain.Category]{Count: int64(len(out)), Results: out}, nil
}

func (r *stubCategoryRepo) Create(_ context.Context, c *domain.Category) error {
	if _, ok := r.bySlug[c.Slug]; ok {
		return domain.ErrDuplicateSlug
	}
	r.bySlug[c.Slug] = c
	return nil
}

func (r *stubCategoryRepo) FindBySlug(_ context.Context, slug string) (*domain.Category, error) {
	c, ok := r.bySlug[slug]
	if !ok {
		return nil, domain.ErrCategoryNotFound
	}
	return c, nil
}

func (r *stubCategoryRepo) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := r.bySlug[slug]; !ok {
		return domain.ErrCategoryNotFound
	}
	delete(r.bySlug, slug)
	return nil
}

type stubGenreRepo struct {
	bySlug map[string]*domain.Genre
}

func (r *stubGenreRepo) List(context.Context, string, ports.PageRequest) (ports.Page[domain.Genre], error) {
	var out []domain.Genre
	for _, g := range r.bySlug {
		out = append(out, *g)
	}
	return ports.Page[domain.Genre]{Count: int64(len(out)), Results: out}, nil
}

func (r *stubGenreRepo) Create(_ context.Context, g *domain.Genre) error {
	if _, ok := r.bySlug[g.Slug]; ok {
		return domain.ErrDuplicateSlug
	}
	r.bySlug[g.Slug] = g
	return nil
}

func (r *stubGenreRepo) FindBySlugs(_ context.Context, slugs []string) ([]domain.Genre, error) {
	out := make([]domain.Genre, 0, len(slugs))
	for _, s := range slugs {
		g, ok := r.bySlug[s]
		if !ok {
			return nil, domain.ErrGenreNotFound
		}
		out = append(out, *g)
	}
	return out, nil
}

func (r *stubGenreRepo) DeleteBySlug(_ context.Context, slug string) error {
	if _, ok := r.bySlug[slug]; !ok {
		return domain.ErrGenreNotFound
	}
	delete(r.bySlug, slug)
	return nil
}

// ---------------------------------------------------------------------------
// Reviews
// ---------------------------------------------------------------------------

// stubReviewRepo enforces (author, title) uniqueness atomically under its
// mutex, the way the storage constraint does.
type stubReviewRepo struct {
	mu       sync.Mutex
	reviews  map[string]*domain.Review
	avgCalls int
	// beforeCreate runs after ExistsByAuthor and before Create takes the lock.
	beforeCreate func()
	// afterAverage runs once AverageScores has computed its result.
	afterAverage func()
}

func newStubReviewRepo() *stubReviewRepo {
	return &stubReviewRepo{reviews: make(map[string]*domain.Review)}
}

func (r *stubReviewRepo) Create(_ context.Context, rv *domain.Review) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.TitleID == rv.TitleID && existing.AuthorID == rv.AuthorID {
			return domain.ErrDuplicateReview
		}
	}
	clone := *rv
	r.reviews[rv.ID] = &clone
	return nil
}

func (r *stubReviewRepo) ExistsByAuthor(_ context.Context, titleID, authorID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rv := range r.reviews {
		if rv.TitleID == titleID && rv.AuthorID == authorID {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubReviewRepo) FindByID(_ context.Context, titleID, reviewID string) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[reviewID]
	if !ok || rv.TitleID != titleID {
		return nil, domain.ErrReviewNotFound
	}
	clone := *rv
	return &clone, nil
}

func (r *stubReviewRepo) List(_ context.Context, titleID string, _ ports.PageRequest) (ports.Page[domain.Review], error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Review
	for _, rv := range r.reviews {
		if rv.TitleID == titleID {
			out = append(out, *rv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PubDate.After(out[j].PubDate) })
	return ports.Page[domain.Review]{Count: int64(len(out)), Results: out}, nil
}

func (r *stubReviewRepo) Update(_ context.Context, rv *domain.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reviews[rv.ID]; !ok {
		return domain.ErrReviewNotFound
	}
	clone := *rv
	r.reviews[rv.ID] = &clone
	return nil
}

func (r *stubReviewRepo) Delete(_ context.Context, titleID, reviewID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rv, ok := r.reviews[reviewID]
	if !ok || rv.TitleID != titleID {
		return domain.ErrReviewNotFound
	}
	delete(r.reviews, reviewID)
	return nil
}

func (r *stubReviewRepo) TitleIDsByAuthor(_ context.Context, authorID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, rv := range r.reviews {
		if rv.AuthorID == authorID && !seen[rv.TitleID] {
			seen[rv.TitleID] = true
			out = append(out, rv.TitleID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// deleteByAuthor mimics the cascade from users to reviews.
func (r *stubReviewRepo) deleteByAuthor(authorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, rv := range r.reviews {
		if rv.AuthorID == authorID {
			delete(r.reviews, id)
		}
	}
}

func (r *stubReviewRepo) AverageScores(_ context.Context, titleIDs []string) (map[string]float64, error) {
	out := r.averages(titleIDs)
	if r.afterAverage != nil {
		r.afterAverage()
	}
	return out, nil
}

func (r *stubReviewRepo) averages(titleIDs []string) map[string]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.avgCalls++
	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, rv := range r.reviews {
		sums[rv.TitleID] += rv.Score
		counts[rv.TitleID]++
	}
	out := make(map[string]float64)
	for _, id := range titleIDs {
		if counts[id] > 0 {
			out[id] = float64(sums[id]) / float64(counts[id])
		}
	}
	return out
}

type stubCommentRepo struct {
	comments map[string]*domain.Comment
}

func newStubCommentRepo() *stubCommentRepo {
	return &stubCommentRepo{comments: make(map[string]*domain.Comment)}
}

func (r *stubCommentRepo) Create(_ context.Context, c *domain.Comment) error {
	clone := *c
	r.comments[c.ID] = &clone
	return nil
}

func (r *stubCommentRepo) FindByID(_ context.Context, reviewID, commentID string) (*domain.Comment, error) {
	c, ok := r.comments[commentID]
	if !ok || c.ReviewID != reviewID {
		return nil, domain.ErrCommentNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCommentRepo) List(_ context.Context, reviewID string, _ ports.PageRequest) (ports.Page[domain.Comment], error) {
	var out []domain.Comment
	for _, c := range r.comments {
		if c.ReviewID == reviewID {
			out = append(out, *c)
		}
	}
	return ports.Page[domain.Comment]{Count: int64(len(out)), Results: out}, nil
}

func (r *stubCommentRepo) Update(_ context.Context, c *domain.Comment) error {
	clone := *c
	r.comments[c.ID] = &clone
	return nil
}

func (r *stubCommentRepo) Delete(_ context.Context, reviewID, commentID string) error {
	if _, err := r.FindByID(context.Background(), reviewID, commentID); err != nil {
		return err
	}
	delete(r.comments, commentID)
	return nil
}

// stubRatingCache is an in-memory RatingCache with the same generation
// check as the redis adapter.
type stubRatingCache struct {
	mu          sync.Mutex
	entries     map[string]*float64
	versions    map[string]int64
	lookupErr   error
	invalidated []string
	rejected    int
}

func newStubRatingCache() *stubRatingCache {
	return &stubRatingCache{entries: make(map[string]*float64), versions: make(map[string]int64)}
}

func (c *stubRatingCache) Lookup(_ context.Context, ids []string) (ports.RatingSnapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lookupErr != nil {
		return ports.RatingSnapshot{}, c.lookupErr
	}
	snap := ports.RatingSnapshot{Hits: make(map[string]*float64), Versions: make(map[string]int64)}
	for _, id := range ids {
		snap.Versions[id] = c.versions[id]
		if v, ok := c.entries[id]; ok {
			snap.Hits[id] = v
		}
	}
	return snap, nil
}

func (c *stubRatingCache) Store(_ context.Context, id string, r *float64, version int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[id] != version {
		c.rejected++
		return nil
	}
	c.entries[id] = r
	return nil
}

func (c *stubRatingCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[id]++
	delete(c.entries, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}
