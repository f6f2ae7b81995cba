package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/api"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/logger"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/metrics"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/middleware"
	"github.com/EgehanKilicarslan/recipe-api/backend-go/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db := testutil.SetupTestDB(t)
	cfg := testutil.TestConfig()
	log := logger.Discard()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := middleware.NewRateLimiterWithClient(client, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow, log)
	t.Cleanup(func() { _ = limiter.Close() })

	m := metrics.New()
	app, err := api.NewApp(db, cfg, limiter, m, log)
	require.NoError(t, err)

	return &testServer{
		router: api.SetupRouter(app.Handlers, app.AuthMiddleware, m, log),
		db:     db,
		redis:  mr,
	}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates an account and returns an access token for it.
func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()

	w := s.do(t, http.MethodPost, "/api/v1/user/create", "", gin.H{
		"email": email, "password": "testpass123", "name": "Test Name",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/api/v1/user/token", "", gin.H{
		"email": email, "password": "testpass123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var tokens map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tokens))
	return tokens["token"].(string)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// ==================== HEALTH & METRICS ====================

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","database":"up"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	w := s.do(t, http.MethodGet, "/api/v1/metrics", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ==================== USER API ====================

func TestCreateUser(t *testing.T) {
	tests := []struct {
		name           string
		body           any
		expectedStatus int
		expectedField  string
	}{
		{
			name:           "success",
			body:           gin.H{"email": "test@example.com", "password": "testpass123", "name": "Test Name"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "password too short",
			body:           gin.H{"email": "test@example.com", "password": "pw", "name": "Test Name"},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "password",
		},
		{
			name:           "invalid email",
			body:           gin.H{"email": "not-an-email", "password": "testpass123", "name": "Test Name"},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "email",
		},
		{
			name:           "missing name",
			body:           gin.H{"email": "test@example.com", "password": "testpass123"},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "name",
		},
		{
			name:           "malformed json",
			body:           "{not json",
			expectedStatus: http.StatusBadRequest,
			expectedField:  "non_field_errors",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)

			w := s.do(t, http.MethodPost, "/api/v1/user/create", "", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus == http.StatusCreated {
				body := decode[map[string]any](t, w)
				assert.Equal(t, "test@example.com", body["email"])
				assert.NotContains(t, body, "password")
				return
			}

			body := decode[map[string]any](t, w)
			assert.Contains(t, body["fields"], tt.expectedField)
			assert.Equal(t, int64(0), testutil.CountRows(t, s.db, "users"))
		})
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestServer(t)
	payload := gin.H{"email": "test@example.com", "password": "testpass123", "name": "Test Name"}

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/user/create", "", payload).Code)

	w := s.do(t, http.MethodPost, "/api/v1/user/create", "", payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "email")
	assert.Equal(t, int64(1), testutil.CountRows(t, s.db, "users"))
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "test@example.com")

	tests := []struct {
		name           string
		body           any
		expectedStatus int
	}{
		{"success", gin.H{"email": "test@example.com", "password": "testpass123"}, http.StatusOK},
		{"bad password", gin.H{"email": "test@example.com", "password": "wrong"}, http.StatusBadRequest},
		{"unknown email", gin.H{"email": "nobody@example.com", "password": "testpass123"}, http.StatusBadRequest},
		{"blank password", gin.H{"email": "test@example.com", "password": ""}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodPost, "/api/v1/user/token", "", tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			body := decode[map[string]any](t, w)
			if tt.expectedStatus == http.StatusOK {
				assert.NotEmpty(t, body["token"])
				assert.NotEmpty(t, body["refresh_token"])
				assert.Equal(t, "Bearer", body["token_type"])
			} else {
				assert.NotContains(t, body, "token")
			}
		})
	}
}

func TestLogin_RateLimited(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "test@example.com")

	bad := gin.H{"email": "test@example.com", "password": "wrong"}
	for i := 0; i < 3; i++ {
		w := s.do(t, http.MethodPost, "/api/v1/user/token", "", bad)
		require.Equal(t, http.StatusBadRequest, w.Code)
	}

	// Even the correct password is refused once the window is exhausted
	w := s.do(t, http.MethodPost, "/api/v1/user/token", "", gin.H{"email": "test@example.com", "password": "testpass123"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	s.redis.FastForward(2 * testutil.TestConfig().LoginAttemptWindow)

	w = s.do(t, http.MethodPost, "/api/v1/user/token", "", gin.H{"email": "test@example.com", "password": "testpass123"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRefreshAndLogout(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "test@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/user/token", "", gin.H{"email": "test@example.com", "password": "testpass123"})
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[map[string]any](t, w)

	w = s.do(t, http.MethodPost, "/api/v1/user/token/refresh", "", gin.H{"refresh_token": first["refresh_token"]})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	second := decode[map[string]any](t, w)
	assert.NotEqual(t, first["refresh_token"], second["refresh_token"])

	// The rotated token is spent
	w = s.do(t, http.MethodPost, "/api/v1/user/token/refresh", "", gin.H{"refresh_token": first["refresh_token"]})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/user/token/logout", "", gin.H{"refresh_token": second["refresh_token"]})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/user/token/refresh", "", gin.H{"refresh_token": second["refresh_token"]})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	s := newTestServer(t)

	t.Run("requires auth", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/user/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = s.do(t, http.MethodGet, "/api/v1/user/me", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	token := s.register(t, "me@example.com")

	t.Run("retrieve profile", func(t *testing.T) {
		w := s.do(t, http.MethodGet, "/api/v1/user/me", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"email":"me@example.com","name":"Test Name"}`, w.Body.String())
	})

	t.Run("token scheme accepted", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/user/me", nil)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("post not allowed", func(t *testing.T) {
		w := s.do(t, http.MethodPost, "/api/v1/user/me", token, gin.H{})
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	})

	t.Run("patch profile", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, "/api/v1/user/me", token, gin.H{"name": "Updated name", "password": "newpassword123"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "Updated name")

		w = s.do(t, http.MethodPost, "/api/v1/user/token", "", gin.H{"email": "me@example.com", "password": "newpassword123"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("put requires every field", func(t *testing.T) {
		w := s.do(t, http.MethodPut, "/api/v1/user/me", token, gin.H{"name": "Only name"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

// ==================== RECIPE API ====================

func createRecipe(t *testing.T, s *testServer, token string, payload gin.H) map[string]any {
	t.Helper()
	body := gin.H{"title": "Sample recipe", "duration": 10, "price": "5.00"}
	for k, v := range payload {
		body[k] = v
	}
	w := s.do(t, http.MethodPost, "/api/v1/recipe/recipes", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[map[string]any](t, w)
}

func recipePath(recipe map[string]any) string {
	return fmt.Sprintf("/api/v1/recipe/recipes/%.0f", recipe["id"].(float64))
}

func TestRecipes_RequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/recipe/recipes", "/api/v1/recipe/tags", "/api/v1/recipe/ingredients"} {
		w := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestRecipes_CreateWithNestedTags(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	recipe := createRecipe(t, s, token, gin.H{
		"title":       "Thai Prawn Curry",
		"tags":        []gin.H{{"name": "Thai"}, {"name": "Dinner"}},
		"ingredients": []gin.H{{"name": "Prawns"}},
		"user":        999,
	})

	assert.Equal(t, "Thai Prawn Curry", recipe["title"])
	assert.Equal(t, "5.00", recipe["price"])
	assert.Len(t, recipe["tags"], 2)
	assert.Len(t, recipe["ingredients"], 1)
	assert.NotContains(t, recipe, "user")

	w := s.do(t, http.MethodGet, "/api/v1/recipe/tags", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[[]map[string]any](t, w)
	require.Len(t, tags, 2)
	assert.Equal(t, "Thai", tags[0]["name"])
	assert.Equal(t, "Dinner", tags[1]["name"])
}

func TestRecipes_InvalidNestedTagWritesNothing(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	w := s.do(t, http.MethodPost, "/api/v1/recipe/recipes", token, gin.H{
		"title": "Sample", "duration": 10, "price": "5.00",
		"tags": []gin.H{{"name": "Fine"}, {"name": "  "}},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "tags[1].name")
	assert.Equal(t, int64(0), testutil.CountRows(t, s.db, "recipes"))
	assert.Equal(t, int64(0), testutil.CountRows(t, s.db, "tags"))
}

func TestRecipes_InvalidPrice(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	for _, price := range []any{"1.234", "1000.00", "abc"} {
		w := s.do(t, http.MethodPost, "/api/v1/recipe/recipes", token, gin.H{
			"title": "Sample", "duration": 10, "price": price,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "price %v", price)
	}
}

func TestRecipes_OutOfRangeNumbers(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	bodies := []string{
		`{"title":"x","duration":1,"price":1e-20000000}`,
		`{"title":"x","duration":1,"price":1e20000000}`,
		`{"title":"x","duration":3000000000,"price":"1.00"}`,
	}

	for _, body := range bodies {
		start := time.Now()
		w := s.do(t, http.MethodPost, "/api/v1/recipe/recipes", token, body)

		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Less(t, time.Since(start), time.Second, body)
	}
	assert.Equal(t, int64(0), testutil.CountRows(t, s.db, "recipes"))
}

func TestRecipes_ListIsOwnerScoped(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	createRecipe(t, s, alice, gin.H{"title": "First"})
	createRecipe(t, s, alice, gin.H{"title": "Second"})
	createRecipe(t, s, bob, gin.H{"title": "Bob's"})

	w := s.do(t, http.MethodGet, "/api/v1/recipe/recipes", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	recipes := decode[[]map[string]any](t, w)
	require.Len(t, recipes, 2)
	assert.Equal(t, "Second", recipes[0]["title"])
	assert.Equal(t, "First", recipes[1]["title"])
	assert.NotContains(t, recipes[0], "description")
}

func TestRecipes_OtherUsersRecipeIsNotFound(t *testing.T) {
	s := newTestServer(t)
	alice := s.register(t, "alice@example.com")
	bob := s.register(t, "bob@example.com")

	recipe := createRecipe(t, s, alice, nil)
	path := recipePath(recipe)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, bob, nil).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, path, bob, gin.H{"title": "Mine"}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, path, bob, nil).Code)

	assert.Equal(t, int64(1), testutil.CountRows(t, s.db, "recipes"))

	w := s.do(t, http.MethodGet, path, alice, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Sample recipe", decode[map[string]any](t, w)["title"])
}

func TestRecipes_MalformedIDIsNotFound(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	w := s.do(t, http.MethodGet, "/api/v1/recipe/recipes/abc", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipes_UpdateFlows(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	recipe := createRecipe(t, s, token, gin.H{
		"link": "https://example.com/recipe.pdf",
		"tags": []gin.H{{"name": "Thai"}},
	})
	path := recipePath(recipe)

	t.Run("patch keeps omitted fields and ignores user", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, path, token, gin.H{"title": "New title", "user": 42})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode[map[string]any](t, w)
		assert.Equal(t, "New title", body["title"])
		assert.Equal(t, "https://example.com/recipe.pdf", body["link"])
		assert.Len(t, body["tags"], 1)
		assert.Equal(t, int64(1), testutil.CountRows(t, s.db, "recipes", "title = ?", "New title"))
	})

	t.Run("patch replaces tags", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, path, token, gin.H{"tags": []gin.H{{"name": "Lunch"}}})
		require.Equal(t, http.StatusOK, w.Code)

		tags := decode[map[string]any](t, w)["tags"].([]any)
		require.Len(t, tags, 1)
		assert.Equal(t, "Lunch", tags[0].(map[string]any)["name"])
	})

	t.Run("patch with empty list clears", func(t *testing.T) {
		w := s.do(t, http.MethodPatch, path, token, gin.H{"tags": []gin.H{}})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, decode[map[string]any](t, w)["tags"])
	})

	t.Run("put requires every required field", func(t *testing.T) {
		w := s.do(t, http.MethodPut, path, token, gin.H{"title": "Only title"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("full update", func(t *testing.T) {
		w := s.do(t, http.MethodPut, path, token, gin.H{
			"title": "Full", "duration": 25, "price": 2.5, "description": "Updated", "link": "",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		body := decode[map[string]any](t, w)
		assert.Equal(t, "Full", body["title"])
		assert.Equal(t, float64(25), body["duration"])
		assert.Equal(t, "2.50", body["price"])
		assert.Equal(t, "Updated", body["description"])
		assert.Equal(t, "", body["link"])
	})
}

func TestRecipes_Delete(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	recipe := createRecipe(t, s, token, gin.H{"tags": []gin.H{{"name": "Keep"}}})

	w := s.do(t, http.MethodDelete, recipePath(recipe), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, int64(0), testutil.CountRows(t, s.db, "recipes"))
	assert.Equal(t, int64(1), testutil.CountRows(t, s.db, "tags"))
}

// ==================== TAG & INGREDIENT API ====================

func TestAttributes_CRUD(t *testing.T) {
	for _, kind := range []string{"tags", "ingredients"} {
		t.Run(kind, func(t *testing.T) {
			s := newTestServer(t)
			token := s.register(t, "user@example.com")
			other := s.register(t, "other@example.com")
			base := "/api/v1/recipe/" + kind

			w := s.do(t, http.MethodPost, base, token, gin.H{"name": "Vegan"})
			require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
			created := decode[map[string]any](t, w)
			path := fmt.Sprintf("%s/%.0f", base, created["id"].(float64))

			w = s.do(t, http.MethodPost, base, token, gin.H{"name": "  "})
			assert.Equal(t, http.StatusBadRequest, w.Code)

			w = s.do(t, http.MethodGet, path, other, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = s.do(t, http.MethodPatch, path, token, gin.H{})
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, "Vegan", decode[map[string]any](t, w)["name"])

			w = s.do(t, http.MethodPatch, path, token, nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())

			w = s.do(t, http.MethodPut, path, token, gin.H{})
			assert.Equal(t, http.StatusBadRequest, w.Code)

			w = s.do(t, http.MethodPatch, path, token, gin.H{"name": "Plant based"})
			require.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "Plant based", decode[map[string]any](t, w)["name"])

			w = s.do(t, http.MethodGet, base, other, nil)
			require.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, decode[[]map[string]any](t, w))

			w = s.do(t, http.MethodDelete, path, other, nil)
			assert.Equal(t, http.StatusNotFound, w.Code)

			w = s.do(t, http.MethodDelete, path, token, nil)
			assert.Equal(t, http.StatusNoContent, w.Code)
		})
	}
}

func TestAttributes_DeleteTagKeepsRecipe(t *testing.T) {
	s := newTestServer(t)
	token := s.register(t, "user@example.com")

	recipe := createRecipe(t, s, token, gin.H{"tags": []gin.H{{"name": "Breakfast"}}})
	tag := recipe["tags"].([]any)[0].(map[string]any)

	w := s.do(t, http.MethodDelete, fmt.Sprintf("/api/v1/recipe/tags/%.0f", tag["id"].(float64)), token, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, recipePath(recipe), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[map[string]any](t, w)["tags"])
	assert.True(t, strings.Contains(w.Body.String(), "Sample recipe"))
}
