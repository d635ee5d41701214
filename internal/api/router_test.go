package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/yamdb/review-api/internal/api/handler"
	"github.com/yamdb/review-api/internal/core/domain"
	"github.com/yamdb/review-api/internal/core/policy"
	"github.com/yamdb/review-api/internal/core/ports"
	"github.com/yamdb/review-api/internal/pkg/token"
)

type routeAuth struct{ ports.AuthService }

func (routeAuth) SignUp(_ context.Context, username, email string) (*domain.User, error) {
	return &domain.User{Username: username, Email: email}, nil
}

func (routeAuth) IssueToken(_ context.Context, username, _ string) (string, error) {
	return "token-for-" + username, nil
}

type routeCatalog struct{ ports.CatalogService }

func (routeCatalog) ListTitles(context.Context, ports.TitleFilter, ports.PageRequest) (ports.Page[domain.Title], error) {
	return ports.Page[domain.Title]{}, nil
}

type routeUsers struct{ ports.UserService }

func (routeUsers) Me(_ context.Context, a policy.Actor) (*domain.User, error) {
	return &domain.User{ID: a.ID, Username: a.Username, Role: a.Role}, nil
}

func newTestRouter(t *testing.T) (*echo.Echo, *token.Signer) {
	t.Helper()
	signer := token.NewSigner("test-secret", time.Hour)
	e := NewRouter(Deps{
		Auth:     routeAuth{},
		Catalog:  routeCatalog{},
		Users:    routeUsers{},
		Tokens:   signer,
		Health:   map[string]handler.HealthCheck{"postgres": func(context.Context) error { return nil }},
		Log:      zerolog.Nop(),
		Registry: prometheus.NewRegistry(),
	})
	return e, signer
}

func TestRouter_Authorization(t *testing.T) {
	e, signer := newTestRouter(t)

	mint := func(role domain.Role) string {
		raw, err := signer.Mint(&domain.User{ID: "u-" + string(role), Username: string(role) + "1", Role: role})
		if err != nil {
			t.Fatalf("mint: %v", err)
		}
		return "Bearer " + raw
	}
	user := mint(domain.RoleUser)
	expired := expiredToken(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		auth   string
		code   int
	}{
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK},
		{"readiness", http.MethodGet, "/health/ready", "", "", http.StatusOK},
		{"anonymous catalog read", http.MethodGet, "/v1/titles", "", "", http.StatusOK},
		{"trailing slash", http.MethodGet, "/v1/titles/", "", "", http.StatusOK},
		{"anonymous catalog write", http.MethodPost, "/v1/categories", `{"name":"Film","slug":"film"}`, "", http.StatusUnauthorized},
		{"user catalog write", http.MethodPost, "/v1/categories", `{"name":"Film","slug":"film"}`, user, http.StatusForbidden},
		{"anonymous review write", http.MethodPost, "/v1/titles/t-1/reviews", `{"text":"x","score":5}`, "", http.StatusUnauthorized},
		{"user lists accounts", http.MethodGet, "/v1/users", "", user, http.StatusForbidden},
		{"anonymous profile", http.MethodGet, "/v1/users/me", "", "", http.StatusUnauthorized},
		{"own profile", http.MethodGet, "/v1/users/me", "", user, http.StatusOK},
		{"garbage token", http.MethodGet, "/v1/titles", "", "Bearer not-a-jwt", http.StatusUnauthorized},
		{"malformed header", http.MethodGet, "/v1/titles", "", "Token abc", http.StatusUnauthorized},
		{"sign-up is open", http.MethodPost, "/v1/auth/signup", `{"username":"carol","email":"carol@example.com"}`, "", http.StatusOK},
		{"expired token", http.MethodGet, "/v1/titles", "", expired, http.StatusUnauthorized},
		{"sign-up ignores garbage token", http.MethodPost, "/v1/auth/signup", `{"username":"carol","email":"carol@example.com"}`, "Bearer not-a-jwt", http.StatusOK},
		{"sign-up ignores expired token", http.MethodPost, "/v1/auth/signup", `{"username":"carol","email":"carol@example.com"}`, expired, http.StatusOK},
		{"token exchange is open", http.MethodPost, "/v1/auth/token", `{"username":"carol","confirmation_code":"123456"}`, "", http.StatusCreated},
		{"token exchange ignores expired token", http.MethodPost, "/v1/auth/token", `{"username":"carol","confirmation_code":"123456"}`, expired, http.StatusCreated},
		{"token exchange ignores malformed header", http.MethodPost, "/v1/auth/token", `{"username":"carol","confirmation_code":"123456"}`, "Token abc", http.StatusCreated},
		{"sign-up validation", http.MethodPost, "/v1/auth/signup", `{"username":"me","email":"me@example.com"}`, "", http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/nowhere", "", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			}
			if tt.auth != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.auth)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.code {
				t.Fatalf("%s %s: expected %d, got %d (%s)", tt.method, tt.path, tt.code, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	e, _ := newTestRouter(t)

	// Prime the request counter.
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "yamdb_requests_total") {
		t.Fatalf("http metrics not exposed:\n%s", rec.Body.String())
	}
}

func TestRouter_InvalidTokenBodyHasNoDetail(t *testing.T) {
	e, _ := newTestRouter(t)

	for _, header := range []string{"Bearer not-a-jwt", "Token abc", expiredToken(t)} {
		req := httptest.NewRequest(http.MethodGet, "/v1/titles", nil)
		req.Header.Set(echo.HeaderAuthorization, header)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("%q: expected 401, got %d", header, rec.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("%q: decode body: %v", header, err)
		}
		if body["error"] != domain.ErrInvalidToken.Error() {
			t.Fatalf("%q: expected bare %q, got %v", header, domain.ErrInvalidToken.Error(), body["error"])
		}
	}
}

// expiredToken is signed with the router's secret but expired a minute ago.
func expiredToken(t *testing.T) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, token.Claims{
		Username: "alice",
		Role:     string(domain.RoleUser),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-user",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	raw, err := tok.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + raw
}
