package routes

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/clientdesk/backend/internal/config"
	"github.com/clientdesk/backend/internal/handlers"
	"github.com/clientdesk/backend/internal/metrics"
	"github.com/clientdesk/backend/internal/models"
	"github.com/clientdesk/backend/internal/services"
	"github.com/clientdesk/backend/internal/testutil"
	"github.com/clientdesk/backend/internal/token"
	"github.com/clientdesk/backend/internal/validation"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiKey = "test-api-key"

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type env struct {
	app    *fiber.App
	users  *testutil.UserRepository
	issuer *token.Issuer
	admin  models.User
	client models.User
	dbErr  error
}

func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		admin:  models.User{ID: uuid.New(), Email: "admin@example.com", Name: "Admin", Password: "hash:Adm1nPass!", IsAdmin: true},
		client: models.User{ID: uuid.New(), Email: "client@example.com", Name: "Client", Password: "hash:Cl1entPass!"},
	}
	e.users = testutil.NewUserRepository(e.admin, e.client)

	cfg := &config.Config{
		APIKey:        apiKey,
		APIKeyHeader:  "X-API-Key",
		AuthRateLimit: 1000,
	}
	e.issuer = token.NewIssuer(token.Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	})

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	svc := services.NewAccountService(e.users, testutil.HasherStub{}, e.issuer, testutil.NewNotifier(), logger, services.AccountServiceConfig{}).
		WithObserver(m)
	t.Cleanup(svc.Wait)

	v := validation.New()
	e.app = fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	e.app.Use(m.Middleware())
	Setup(e.app, cfg, e.issuer, Handlers{
		Auth:    handlers.NewAuthHandler(svc, v),
		Clients: handlers.NewClientHandler(svc, v),
		Health: handlers.NewHealthHandler(pingerFunc(func(context.Context) error {
			return e.dbErr
		})),
		Metrics: metrics.Handler(reg),
	})
	return e
}

func (e *env) do(t *testing.T, method, path, body string, headers map[string]string) (int, map[string]interface{}) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := map[string]interface{}{}
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &out))
	} else if len(raw) > 0 {
		out["raw"] = string(raw)
	}
	return resp.StatusCode, out
}

func (e *env) bearer(t *testing.T, u models.User) map[string]string {
	t.Helper()
	pair, err := e.issuer.IssuePair(u.ID, u.IsAdmin)
	require.NoError(t, err)
	return map[string]string{"Authorization": "Bearer " + pair.AccessToken}
}

var withKey = map[string]string{"X-API-Key": apiKey}

func TestAuthRequiresAPIKey(t *testing.T) {
	e := newEnv(t)
	body := `{"email":"client@example.com","password":"Cl1entPass!"}`

	status, _ := e.do(t, http.MethodPost, "/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodPost, "/auth/login", body, map[string]string{"X-API-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodPost, "/auth/login", body, withKey)
	assert.Equal(t, http.StatusOK, status)
}

func TestRegister(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"Ada@Example.com","password":"Passw0rd!","businessType":"retail"}`, withKey)
	require.Equal(t, http.StatusCreated, status)

	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, "retail", user["businessType"])
	assert.NotContains(t, user, "password")
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])
	assert.NotEqual(t, body["accessToken"], body["refreshToken"])

	status, body = e.do(t, http.MethodPost, "/auth/register",
		`{"name":"Ada","email":"ada@example.com","password":"Passw0rd!"}`, withKey)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email address already exists, please login to continue", body["message"])
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)

	cases := map[string]string{
		"weak password":  `{"name":"Ada","email":"ada@example.com","password":"password123"}`,
		"missing name":   `{"email":"ada@example.com","password":"Passw0rd!"}`,
		"bad email":      `{"name":"Ada","email":"nope","password":"Passw0rd!"}`,
		"malformed json": `{"name":`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			status, body := e.do(t, http.MethodPost, "/auth/register", payload, withKey)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, true, body["error"])
			assert.Contains(t, body, "details")
		})
	}
	assert.Equal(t, 2, e.users.Len())
}

func TestLogin(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, http.MethodPost, "/auth/login", `{"email":"client@example.com","password":"Cl1entPass!"}`, withKey)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, e.client.ID.String(), body["user"].(map[string]interface{})["id"])

	for _, payload := range []string{
		`{"email":"client@example.com","password":"Wr0ngPass!"}`,
		`{"email":"ghost@example.com","password":"Cl1entPass!"}`,
	} {
		status, body = e.do(t, http.MethodPost, "/auth/login", payload, withKey)
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "Email Or Password Incorrect", body["message"])
	}
}

func TestLoginDisabled(t *testing.T) {
	e := newEnv(t)
	disabled := models.User{Email: "off@example.com", Name: "Off", Password: "hash:Passw0rd!", Status: models.StatusInactive}
	require.NoError(t, e.users.Create(context.Background(), &disabled))

	status, body := e.do(t, http.MethodPost, "/auth/login", `{"email":"off@example.com","password":"Passw0rd!"}`, withKey)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Your account has been disabled. Please contact support.", body["message"])
}

func TestAdminGate(t *testing.T) {
	e := newEnv(t)

	status, _ := e.do(t, http.MethodGet, "/admin/clients", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodGet, "/admin/clients", "", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = e.do(t, http.MethodGet, "/admin/clients", "", e.bearer(t, e.client))
	assert.Equal(t, http.StatusForbidden, status)

	pair, err := e.issuer.IssuePair(e.admin.ID, true)
	require.NoError(t, err)
	status, _ = e.do(t, http.MethodGet, "/admin/clients", "", map[string]string{"Authorization": "Bearer " + pair.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, status, "refresh token must not pass as access token")
}

func TestAdminListClients(t *testing.T) {
	e := newEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/clients", nil)
	for k, v := range e.bearer(t, e.admin) {
		req.Header.Set(k, v)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var clients []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&clients))
	require.Len(t, clients, 1)
	assert.Equal(t, "client@example.com", clients[0]["email"])
	assert.NotContains(t, clients[0], "password")
}

func TestAdminUpdateClient(t *testing.T) {
	e := newEnv(t)
	auth := e.bearer(t, e.admin)

	status, body := e.do(t, http.MethodPut, "/admin/clients/"+e.client.ID.String(), `{"name":"Renamed"}`, auth)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Renamed", body["name"])
	assert.Equal(t, "client@example.com", body["email"])

	status, body = e.do(t, http.MethodPut, "/admin/clients/"+e.admin.ID.String(), `{"name":"Hijacked"}`, auth)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Client not found or cannot update admin.", body["message"])
	stored, _ := e.users.Get(e.admin.ID)
	assert.Equal(t, "Admin", stored.Name)

	status, _ = e.do(t, http.MethodPut, "/admin/clients/"+e.client.ID.String(), `{"email":"not-an-email"}`, auth)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAdminDeleteClient(t *testing.T) {
	e := newEnv(t)
	auth := e.bearer(t, e.admin)

	status, body := e.do(t, http.MethodDelete, "/admin/clients/"+e.admin.ID.String(), "", auth)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Client not found or cannot delete admin.", body["message"])

	status, body = e.do(t, http.MethodDelete, "/admin/clients/"+e.client.ID.String(), "", auth)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Client deleted successfully.", body["message"])
	assert.Equal(t, 1, e.users.Len())
}

func TestHealth(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, http.MethodGet, "/actuator/health", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Server Okay and database connection OK", body["message"])
	assert.Equal(t, "http://example.com/actuator/health", body["info"].(map[string]interface{})["url"])

	e.dbErr = errors.New("connection refused")
	status, body = e.do(t, http.MethodGet, "/actuator/health", "", nil)
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "Database connection failed", body["message"])
	assert.Equal(t, "connection refused", body["error"])
}

func TestUnknownRoute(t *testing.T) {
	e := newEnv(t)

	status, body := e.do(t, http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "The route you are trying to reach (/nope) does not exist", body["message"])
}

func TestMetricsEndpoint(t *testing.T) {
	e := newEnv(t)
	e.do(t, http.MethodGet, "/actuator/health", "", nil)

	status, body := e.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, body["raw"], "/actuator/health")
}
