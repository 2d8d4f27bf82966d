package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/reliefhub/internal/actorctx"
	"github.com/geocoder89/reliefhub/internal/auth"
	"github.com/geocoder89/reliefhub/internal/http/middlewares"
	"github.com/geocoder89/reliefhub/internal/store"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeVerifier struct {
	verifyFn func(token string) (auth.Claims, error)
}

func (f *fakeVerifier) Verify(token string) (auth.Claims, error) {
	return f.verifyFn(token)
}

type fakeUsers struct {
	findOneFn func(ctx context.Context, filter store.Filter) (store.Document, error)
}

func (f *fakeUsers) FindOne(ctx context.Context, filter store.Filter) (store.Document, error) {
	return f.findOneFn(ctx, filter)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json %q: %v", w.Body.String(), err)
	}
	return body
}

func okVerifier() *fakeVerifier {
	return &fakeVerifier{verifyFn: func(token string) (auth.Claims, error) {
		if token != "good" {
			return nil, auth.ErrInvalidToken
		}
		return auth.Claims{"email": "a@x.org"}, nil
	}}
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing_header", header: "", want: http.StatusUnauthorized},
		{name: "single_field", header: "good", want: http.StatusUnauthorized},
		{name: "bad_token", header: "Bearer nope", want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer good", want: http.StatusOK},
		{name: "any_scheme_word", header: "Token good", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/p", middlewares.NewAuthMiddleware(okVerifier()).RequireAuth(), func(c *gin.Context) {
				claims, ok := middlewares.ClaimsFromContext(c)
				email, _ := actorctx.EmailFrom(c.Request.Context())
				if !ok || claims.Email() != "a@x.org" || email != "a@x.org" {
					c.Status(http.StatusTeapot)
					return
				}
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("got %d, want %d", w.Code, tt.want)
			}
			if tt.want == http.StatusUnauthorized {
				body := decodeBody(t, w)
				if body["error"] != true || body["message"] != "unauthorized access" {
					t.Fatalf("unexpected body %v", body)
				}
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name    string
		findFn  func(ctx context.Context, filter store.Filter) (store.Document, error)
		want    int
		message string
	}{
		{
			name: "admin",
			findFn: func(ctx context.Context, filter store.Filter) (store.Document, error) {
				if filter["email"] != "a@x.org" {
					return nil, store.ErrNotFound
				}
				return store.Document{"email": "a@x.org", "role": "admin"}, nil
			},
			want: http.StatusOK,
		},
		{
			name: "plain_user",
			findFn: func(ctx context.Context, filter store.Filter) (store.Document, error) {
				return store.Document{"email": "a@x.org"}, nil
			},
			want:    http.StatusForbidden,
			message: "forbidden message",
		},
		{
			name: "unknown_user",
			findFn: func(ctx context.Context, filter store.Filter) (store.Document, error) {
				return nil, store.ErrNotFound
			},
			want:    http.StatusForbidden,
			message: "forbidden message",
		},
		{
			name: "store_down",
			findFn: func(ctx context.Context, filter store.Filter) (store.Document, error) {
				return nil, errors.New("boom")
			},
			want:    http.StatusInternalServerError,
			message: "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/admin",
				middlewares.NewAuthMiddleware(okVerifier()).RequireAuth(),
				middlewares.RequireAdmin(&fakeUsers{findOneFn: tt.findFn}),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.Header.Set("Authorization", "Bearer good")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Fatalf("got %d, want %d", w.Code, tt.want)
			}
			if tt.message != "" {
				if body := decodeBody(t, w); body["message"] != tt.message || body["error"] != true {
					t.Fatalf("unexpected body %v", body)
				}
			}
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/", func(c *gin.Context) {
		id, _ := actorctx.RequestIDFrom(c.Request.Context())
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Body.String() != "abc" || w.Header().Get("X-Request-Id") != "abc" {
		t.Fatalf("got body %q header %q", w.Body.String(), w.Header().Get("X-Request-Id"))
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Body.String() == "" || w.Body.String() != w.Header().Get("X-Request-Id") {
		t.Fatalf("generated id mismatch: body %q header %q", w.Body.String(), w.Header().Get("X-Request-Id"))
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    string
	}{
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.example", want: "*"},
		{name: "listed", allowed: []string{"https://app.example"}, origin: "https://app.example", want: "https://app.example"},
		{name: "not_listed", allowed: []string{"https://app.example"}, origin: "https://evil.example", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.CORSMiddleware(tt.allowed))
			r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Fatalf("allow-origin: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"*"}))
	r.POST("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("got %d", w.Code)
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.MaxBodyBytes(8))
	r.POST("/", func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":"0123456789"}`)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("oversized body: got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("small body: got %d", w.Code)
	}
}
