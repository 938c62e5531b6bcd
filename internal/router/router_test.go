package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"researchnett/internal/auth"
	"researchnett/internal/cache"
	"researchnett/internal/config"
	"researchnett/internal/db/dbtest"
	"researchnett/internal/eligibility"
	"researchnett/internal/handler"
	"researchnett/internal/mailer"
	"researchnett/internal/metrics"
	"researchnett/internal/notify"
	"researchnett/internal/repository"
	"researchnett/internal/service"
	"researchnett/internal/session"
)

const testKey = "public-key"

type server struct {
	e      *echo.Echo
	admins repository.AdminRepository
	users  repository.UserRepository
}

func newServer(t *testing.T, cfg *config.Config) *server {
	t.Helper()
	gdb := dbtest.New(t)
	mr := miniredis.RunT(t)
	c := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })

	hub := session.NewHub()
	t.Cleanup(hub.Close)
	m := metrics.New()

	users := repository.NewUserRepository(gdb)
	admins := repository.NewAdminRepository(gdb)
	profileRepo := repository.NewProfileRepository(gdb)
	callRepo := repository.NewCallRepository(gdb)
	engageRepo := repository.NewEngagementRepository(gdb)
	founderRepo := repository.NewFounderRepository(gdb)
	feedbackRepo := repository.NewFeedbackRepository(gdb)

	jwtService := auth.NewJWTService("test-secret")
	tokens := auth.NewTokenStore(c)
	drafts := auth.NewDraftStore(c)
	resolver := session.NewResolver(admins, c)
	resolver.Watch(hub)

	profiles := service.NewProfileService(profileRepo, drafts, c)
	calls := service.NewCallService(callRepo, profileRepo, engageRepo, m)
	engagement := service.NewEngagementService(callRepo, engageRepo, m)
	authService := service.NewAuthService(users, profiles, jwtService, tokens, drafts,
		mailer.NewLogMailer(), eligibility.New(cfg.InstitutionDomain), hub,
		service.AuthOptions{AppURL: cfg.AppURL, RequireEmailConfirmation: cfg.RequireEmailConfirmation})

	e := echo.New()
	Register(e, cfg, Deps{JWT: jwtService, Tokens: tokens, Resolver: resolver, Metrics: m}, Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Profile:      handler.NewProfileHandler(profiles),
		Call:         handler.NewCallHandler(calls, engagement),
		Notification: handler.NewNotificationHandler(service.NewNotificationService(callRepo, engageRepo, profileRepo, notify.NewCursorStore(c))),
		Ad:           handler.NewAdHandler(service.NewAdService(repository.NewAdRepository(gdb), profileRepo)),
		Feedback:     handler.NewFeedbackHandler(service.NewFeedbackService(feedbackRepo)),
		Founder:      handler.NewFounderHandler(service.NewFounderService(founderRepo, profileRepo, m)),
		Admin:        handler.NewAdminHandler(service.NewAdminService(admins, users, founderRepo, feedbackRepo, hub)),
		Seed:         handler.NewSeedHandler(service.NewSeedService(users, admins, profiles, calls)),
	})
	return &server{e: e, admins: admins, users: users}
}

func testConfig() *config.Config {
	return &config.Config{
		AppURL:            "https://researchnett.example",
		CORSOrigins:       []string{"https://researchnett.example"},
		InstitutionDomain: "nitt.edu",
	}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set(APIKeyHeader, testKey)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

// signUp registers an active account and returns its session.
func (s *server) signUp(t *testing.T, email, name string) service.Session {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":         email,
		"password":      "password123",
		"confirm":       "password123",
		"full_name":     name,
		"department":    "Physics",
		"institute_url": "nitt.edu/~" + name,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res service.SignUpResult
	decode(t, rec, &res)
	require.Equal(t, service.SignUpActive, res.Status)
	require.NotNil(t, res.Session)
	return *res.Session
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t, testConfig())

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `researchnett_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestAPIKey(t *testing.T) {
	cfg := testConfig()
	cfg.PublicAPIKey = testKey
	s := newServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req.Header.Set(APIKeyHeader, "wrong")
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid api key")

	// A valid key passes through to the bearer check.
	rec = s.do(t, http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid or missing token")
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t, testConfig())

	rec := s.do(t, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    "someone@gmail.com",
		"password": "password123",
		"confirm":  "password123",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR")

	sess := s.signUp(t, "asha@nitt.edu", "Asha")

	rec = s.do(t, http.MethodGet, "/api/me", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me handler.MeResponse
	decode(t, rec, &me)
	assert.Equal(t, "asha@nitt.edu", me.Email)
	assert.Equal(t, "asha", me.Username)
	assert.False(t, me.IsAdmin)

	// The sign-up draft became the profile.
	rec = s.do(t, http.MethodGet, "/api/profiles/me", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"full_name":"Asha"`)
	assert.Contains(t, rec.Body.String(), "https://nitt.edu/~Asha")

	// Refresh tokens are not accepted as bearer tokens.
	rec = s.do(t, http.MethodGet, "/api/me", sess.RefreshToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": sess.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)
	var refreshed handler.RefreshResponse
	decode(t, rec, &refreshed)
	assert.NotEmpty(t, refreshed.AccessToken)

	rec = s.do(t, http.MethodPost, "/api/auth/logout", sess.AccessToken, map[string]string{"refresh_token": sess.RefreshToken})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/me", sess.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "token has been revoked")

	rec = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{"refresh_token": sess.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCallbackRequiresCodeOrTokens(t *testing.T) {
	s := newServer(t, testConfig())

	rec := s.do(t, http.MethodPost, "/api/auth/callback", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")

	rec = s.do(t, http.MethodPost, "/api/auth/callback", "", map[string]string{"code": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CODE")
}

func TestCallsAndNotifications(t *testing.T) {
	s := newServer(t, testConfig())
	owner := s.signUp(t, "owner@nitt.edu", "Owner")
	fan := s.signUp(t, "fan@nitt.edu", "Fan")

	// Keywords may arrive as a single comma separated string.
	rec := s.do(t, http.MethodPost, "/api/calls", owner.AccessToken, map[string]interface{}{
		"title":             "Graphene sensors",
		"summary":           "Looking for a co-author.",
		"collaboration_for": "research",
		"keywords":          "Graphene, Sensors",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created service.CallWriteResult
	decode(t, rec, &created)
	assert.ElementsMatch(t, []string{"graphene", "sensors"}, created.Call.Keywords)
	callPath := "/api/calls/" + created.Call.ID.String()

	rec = s.do(t, http.MethodPost, "/api/calls", owner.AccessToken, map[string]interface{}{
		"title":             "x",
		"summary":           "y",
		"collaboration_for": "party",
		"keywords":          []string{"a"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/calls?q=sensors", fan.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []service.CallView
	decode(t, rec, &found)
	require.Len(t, found, 1)
	assert.Equal(t, "Owner", found[0].AuthorName)

	rec = s.do(t, http.MethodPut, callPath, fan.AccessToken, map[string]interface{}{
		"title": "Hijack", "summary": "no", "keywords": []string{"x"},
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/calls/not-a-uuid", fan.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, callPath+"/interest", fan.AccessToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, callPath+"/interest", fan.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(t, http.MethodPost, callPath+"/bookmark", fan.AccessToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/history", fan.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history service.History
	decode(t, rec, &history)
	require.Len(t, history.Interests, 1)
	assert.Equal(t, "Graphene sensors", history.Interests[0].Title)
	assert.Len(t, history.Bookmarks, 1)

	rec = s.do(t, http.MethodGet, "/api/notifications/summary", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary notify.Result
	decode(t, rec, &summary)
	assert.Equal(t, 1, summary.Unseen)
	assert.True(t, summary.ShowToast)

	rec = s.do(t, http.MethodPost, "/api/notifications/seen", owner.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(t, http.MethodGet, "/api/notifications/summary", owner.AccessToken, nil)
	decode(t, rec, &summary)
	assert.Equal(t, 0, summary.Unseen)

	rec = s.do(t, http.MethodDelete, callPath, owner.AccessToken, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodGet, callPath, owner.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	s := newServer(t, testConfig())
	member := s.signUp(t, "member@nitt.edu", "Member")
	boss := s.signUp(t, "boss@nitt.edu", "Boss")

	rec := s.do(t, http.MethodGet, "/api/admin", member.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "FORBIDDEN")

	require.NoError(t, s.admins.Grant(context.Background(), boss.User.ID))

	rec = s.do(t, http.MethodPost, "/api/founders", member.AccessToken, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(t, http.MethodPost, "/api/founders", member.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = s.do(t, http.MethodPost, "/api/feedback", member.AccessToken, map[string]string{
		"kind": "bug", "message": "Search is slow", "page_path": "/calls",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/api/admin", boss.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash service.Dashboard
	decode(t, rec, &dash)
	assert.Equal(t, int64(1), dash.PendingFounders)
	assert.Equal(t, int64(1), dash.FeedbackCount)

	rec = s.do(t, http.MethodGet, "/api/admin/founders?status=pending", boss.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []struct {
		ID string `json:"id"`
	}
	decode(t, rec, &pending)
	require.Len(t, pending, 1)

	rec = s.do(t, http.MethodPost, "/api/admin/founders/"+pending[0].ID+"/approve", boss.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"approved"`)
	rec = s.do(t, http.MethodPost, "/api/admin/founders/"+pending[0].ID+"/reject", boss.AccessToken, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/seed", boss.AccessToken, map[string]interface{}{
		"users": []map[string]interface{}{{
			"email":    "demo@nitt.edu",
			"password": "password123",
			"profile": map[string]string{
				"full_name": "Demo", "department": "Chemistry", "institute_url": "nitt.edu/~demo",
			},
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report service.SeedReport
	decode(t, rec, &report)
	assert.Equal(t, 1, report.UsersCreated)
	assert.Equal(t, 1, report.ProfilesCreated)

	rec = s.do(t, http.MethodPost, "/api/admin/seed", boss.AccessToken, map[string]string{"source": "/etc/passwd"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func countLimited(t *testing.T, s *server, forwardedFor func(i int) string) int {
	t.Helper()
	limited := 0
	for i := 0; i < 30; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", bytes.NewBufferString(`{}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		req.RemoteAddr = "192.0.2.1:4321"
		if xff := forwardedFor(i); xff != "" {
			req.Header.Set(echo.HeaderXForwardedFor, xff)
		}
		rec := httptest.NewRecorder()
		s.e.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
		}
	}
	return limited
}

func rotatingForwardedFor(i int) string {
	return fmt.Sprintf("203.0.113.%d", i+1)
}

func TestAuthRateLimit_IgnoresForwardedForFromClients(t *testing.T) {
	s := newServer(t, testConfig())

	limited := countLimited(t, s, rotatingForwardedFor)
	assert.GreaterOrEqual(t, limited, 15)
}

func TestAuthRateLimit_TrustedProxyForwardsClientIP(t *testing.T) {
	cfg := testConfig()
	cfg.TrustedProxies = []string{"192.0.2.0/24"}
	s := newServer(t, cfg)

	// Each request comes from a different client behind the proxy.
	assert.Equal(t, 0, countLimited(t, s, rotatingForwardedFor))

	// One client behind the proxy is still limited.
	limited := countLimited(t, s, func(int) string { return "203.0.113.200" })
	assert.GreaterOrEqual(t, limited, 15)
}
