package e2e

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cliptube/internal/database"
	"cliptube/internal/domain"
	"cliptube/internal/middleware"
	"cliptube/internal/modules/auth"
	"cliptube/internal/modules/channel"
	"cliptube/internal/modules/media"
	jwtsvc "cliptube/internal/pkg/jwt"
	"cliptube/internal/repository"
)

type TestResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   *ErrorDetail           `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type suite struct {
	router *gin.Engine
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func setupSuite(t *testing.T) *suite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.Connect(":memory:")
	require.NoError(t, err, "Failed to connect to test database")

	// in-memory sqlite lives per connection
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Subscription{},
		&domain.Upload{},
	))

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	uploadRepo := repository.NewUploadRepository(db)

	j := jwtsvc.New("e2e-access-secret", "e2e-refresh-secret", 15*time.Minute, 24*time.Hour)

	mediaService := media.NewService(uploadRepo, t.TempDir(), "/static/uploads", 10<<20)
	authService := auth.NewService(userRepo, mediaService, j)
	cookies := auth.NewCookieConfig(false, "Lax", "/", 15*time.Minute, 24*time.Hour)
	authHandler := auth.NewHandler(authService, cookies)

	channelService := channel.NewService(userRepo, subscriptionRepo)
	channelHandler := channel.NewHandler(channelService)

	router := gin.New()
	router.Use(middleware.ErrorLogger(), middleware.CORS())

	v1 := router.Group("/api/v1")
	{
		authHandler.RegisterPublicRoutes(v1)

		viewer := v1.Group("/")
		viewer.Use(middleware.OptionalJWTAuth(j))
		{
			channelHandler.RegisterViewerRoutes(viewer)
		}

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			channelHandler.RegisterProtectedRoutes(protected)
		}
	}

	return &suite{router: router}
}

func (s *suite) register(t *testing.T, username, email, password string) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("fullName", "Test User"))
	require.NoError(t, w.WriteField("username", username))
	require.NoError(t, w.WriteField("email", email))
	require.NoError(t, w.WriteField("password", password))
	fw, err := w.CreateFormFile("avatar", "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write(pngBytes)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/v1/users/register", body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *suite) postJSON(t *testing.T, path string, payload any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	return s.doJSON(t, "POST", path, payload, cookies...)
}

func (s *suite) doJSON(t *testing.T, method, path string, payload any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func parseResponse(t *testing.T, rec *httptest.ResponseRecorder) TestResponse {
	t.Helper()
	var resp TestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp
}

func authCookies(t *testing.T, rec *httptest.ResponseRecorder) (access, refresh *http.Cookie) {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case "accessToken":
			access = c
		case "refreshToken":
			refresh = c
		}
	}
	return access, refresh
}

func TestAuthFlow(t *testing.T) {
	s := setupSuite(t)

	// register
	rec := s.register(t, "alice", "alice@x.com", "pw123456")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	resp := parseResponse(t, rec)
	assert.True(t, resp.Success)
	assert.NotZero(t, resp.Data["user_id"])

	// duplicate username
	rec = s.register(t, "alice", "other@x.com", "pw123456")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// duplicate email
	rec = s.register(t, "alice2", "alice@x.com", "pw123456")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// login with username
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	access, refresh := authCookies(t, rec)
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	assert.True(t, access.HttpOnly)
	assert.True(t, refresh.HttpOnly)
	assert.NotEmpty(t, access.Value)
	assert.NotEmpty(t, refresh.Value)

	// login with email works too
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"email": "alice@x.com", "password": "pw123456"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// wrong password
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "wrongpw"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// unknown user
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "ghost", "password": "pw123456"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// authenticated request with the access cookie
	rec = s.doJSON(t, "GET", "/api/v1/users/me", nil, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "alice")
}

func TestRefreshRotation(t *testing.T) {
	s := setupSuite(t)

	rec := s.register(t, "alice", "alice@x.com", "pw123456")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, first := authCookies(t, rec)
	require.NotNil(t, first)

	// rotate: first refresh succeeds
	rec = s.postJSON(t, "/api/v1/users/refresh-token", nil, first)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	_, second := authCookies(t, rec)
	require.NotNil(t, second)
	assert.NotEqual(t, first.Value, second.Value)

	// the rotated-out token is permanently unusable
	rec = s.postJSON(t, "/api/v1/users/refresh-token", nil, first)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// the new one works exactly once
	rec = s.postJSON(t, "/api/v1/users/refresh-token", nil, second)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.postJSON(t, "/api/v1/users/refresh-token", nil, second)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// token can also come from the body
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	_, current := authCookies(t, rec)
	rec = s.postJSON(t, "/api/v1/users/refresh-token", gin.H{"refresh_token": current.Value})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// no token at all
	rec = s.postJSON(t, "/api/v1/users/refresh-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	s := setupSuite(t)

	rec := s.register(t, "alice", "alice@x.com", "pw123456")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	access, refresh := authCookies(t, rec)

	rec = s.postJSON(t, "/api/v1/users/logout", nil, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// cleared cookies come back expired
	clearedAccess, clearedRefresh := authCookies(t, rec)
	require.NotNil(t, clearedAccess)
	require.NotNil(t, clearedRefresh)
	assert.Empty(t, clearedAccess.Value)
	assert.Empty(t, clearedRefresh.Value)

	// the last issued refresh token is dead even though it has not expired
	rec = s.postJSON(t, "/api/v1/users/refresh-token", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// logout twice is fine
	rec = s.postJSON(t, "/api/v1/users/logout", nil, access)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChangePasswordRevokesSession(t *testing.T) {
	s := setupSuite(t)

	rec := s.register(t, "alice", "alice@x.com", "pw123456")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	access, refresh := authCookies(t, rec)

	// wrong old password
	rec = s.postJSON(t, "/api/v1/users/change-password", gin.H{"old_password": "nope", "new_password": "newpw12345"}, access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// correct old password
	rec = s.postJSON(t, "/api/v1/users/change-password", gin.H{"old_password": "pw123456", "new_password": "newpw12345"}, access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// session was revoked with the password change
	rec = s.postJSON(t, "/api/v1/users/refresh-token", nil, refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// old password no longer works, new one does
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "pw123456"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "newpw12345"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChannelProfile(t *testing.T) {
	s := setupSuite(t)

	require.Equal(t, http.StatusCreated, s.register(t, "alice", "alice@x.com", "pw123456").Code)
	require.Equal(t, http.StatusCreated, s.register(t, "bob", "bob@x.com", "pw123456").Code)

	rec := s.postJSON(t, "/api/v1/users/login", gin.H{"username": "bob", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	bobAccess, _ := authCookies(t, rec)

	// bob subscribes to alice
	rec = s.postJSON(t, "/api/v1/channels/alice/subscription", nil, bobAccess)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// subscribing twice is a no-op
	rec = s.postJSON(t, "/api/v1/channels/alice/subscription", nil, bobAccess)
	assert.Equal(t, http.StatusOK, rec.Code)

	// bob sees the aggregated profile with is_subscribed
	rec = s.doJSON(t, "GET", "/api/v1/channels/alice", nil, bobAccess)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := parseResponse(t, rec)
	profile := resp.Data["channel"].(map[string]interface{})
	assert.Equal(t, float64(1), profile["subscriber_count"])
	assert.Equal(t, true, profile["is_subscribed"])

	// anonymous viewer gets the same counts without is_subscribed
	rec = s.doJSON(t, "GET", "/api/v1/channels/alice", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = parseResponse(t, rec)
	profile = resp.Data["channel"].(map[string]interface{})
	assert.Equal(t, float64(1), profile["subscriber_count"])
	assert.Equal(t, false, profile["is_subscribed"])

	// self-subscription is rejected
	rec = s.postJSON(t, "/api/v1/users/login", gin.H{"username": "alice", "password": "pw123456"})
	require.Equal(t, http.StatusOK, rec.Code)
	aliceAccess, _ := authCookies(t, rec)
	rec = s.postJSON(t, "/api/v1/channels/alice/subscription", nil, aliceAccess)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// unknown channel
	rec = s.doJSON(t, "GET", "/api/v1/channels/ghost", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// unsubscribe drops the count
	rec = s.doJSON(t, "DELETE", "/api/v1/channels/alice/subscription", nil, bobAccess)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.doJSON(t, "GET", "/api/v1/channels/alice", nil)
	resp = parseResponse(t, rec)
	profile = resp.Data["channel"].(map[string]interface{})
	assert.Equal(t, float64(0), profile["subscriber_count"])
}

func TestRegisterValidation(t *testing.T) {
	s := setupSuite(t)

	// missing avatar
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("fullName", "Test User"))
	require.NoError(t, w.WriteField("username", "alice"))
	require.NoError(t, w.WriteField("email", "alice@x.com"))
	require.NoError(t, w.WriteField("password", "pw123456"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/api/v1/users/register", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "AVATAR_REQUIRED")

	// missing fields
	rec = s.register(t, "", "not-an-email", "x")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
