package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/avdeev/authgate/internal/application/auth"
	infraauth "github.com/avdeev/authgate/internal/infrastructure/auth"
	"github.com/avdeev/authgate/internal/infrastructure/http/handlers"
	"github.com/avdeev/authgate/internal/infrastructure/http/middleware"
	"github.com/avdeev/authgate/internal/infrastructure/lockout"
	"github.com/avdeev/authgate/internal/infrastructure/persistence/memory"
	"github.com/avdeev/authgate/internal/infrastructure/security"
)

type testEnv struct {
	users  *memory.UserRepository
	issuer *infraauth.TokenIssuer
	router http.Handler
}

// newTestEnv wires the full stack against the in-memory store. ratePerIP ""
// disables rate limiting.
func newTestEnv(t *testing.T, ratePerIP string) *testEnv {
	t.Helper()

	users := memory.NewUserRepository()
	hasher := security.NewBcryptHasher(bcrypt.MinCost, 2)
	issuer := infraauth.NewTokenIssuer([]byte("test-secret"), "authgate", time.Hour)
	failures := lockout.NewMemoryStore(0, time.Minute)
	log := zerolog.Nop()

	authHandler := handlers.NewAuthHandler(
		auth.NewRegister(users, hasher, issuer),
		auth.NewLogin(users, hasher, issuer, failures),
		auth.NewGetProfile(users),
		auth.NewUpdateProfile(users),
		log,
	)

	rateLimit, err := middleware.NewIPRateLimiter(ratePerIP)
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		AuthHandler:   authHandler,
		RequireJWT:    middleware.NewAuthValidator(issuer).Handler,
		Log:           log,
		AuthRateLimit: rateLimit,
	})
	return &testEnv{users: users, issuer: issuer, router: router}
}

func (e *testEnv) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func validRegisterBody() map[string]string {
	return map[string]string{
		"email":     "test@example.com",
		"password":  "SecurePass123!",
		"firstName": "John",
		"lastName":  "Doe",
	}
}

func TestRegister_Created(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	rec := env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody())
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "test@example.com", user["email"])
	assert.Equal(t, "John", user["firstName"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "passwordHash")
	assert.NotContains(t, rec.Body.String(), "$2")
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody()).Code)

	rec := env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody())
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "email already exists")
}

func TestRegister_WeakPassword(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	payload := validRegisterBody()
	payload["password"] = "123"
	rec := env.do(http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "8 characters")
}

func TestRegister_InvalidEmails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	for _, email := range []string{"invalid", "@example.com", "test@", "test.example.com"} {
		payload := validRegisterBody()
		payload["email"] = email
		rec := env.do(http.MethodPost, "/api/auth/register", "", payload)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "email %q should be rejected", email)
		body := decodeBody(t, rec)
		assert.NotEmpty(t, body["error"])
	}
}

func TestRegister_MissingFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	rec := env.do(http.MethodPost, "/api/auth/register", "", map[string]string{"email": "test@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["error"])
}

func TestRegister_SanitizesMarkup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	payload := validRegisterBody()
	payload["firstName"] = `<script>alert("xss")</script>`
	rec := env.do(http.MethodPost, "/api/auth/register", "", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	user := body["user"].(map[string]interface{})
	assert.NotContains(t, user["firstName"], "<script>")
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody()).Code)

	rec := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "SecurePass123!",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.NotEmpty(t, user["lastLogin"])
}

func TestLogin_FailuresIndistinguishable(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	require.Equal(t, http.StatusCreated, env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody()).Code)

	wrongPassword := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "test@example.com",
		"password": "wrongpassword1",
	})
	unknownEmail := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "SecurePass123!",
	})

	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestProfile_Get(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	reg := env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody())
	require.Equal(t, http.StatusCreated, reg.Code)
	token := decodeBody(t, reg)["token"].(string)

	first := env.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, first.Code)
	user := decodeBody(t, first)["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.NotContains(t, user, "password")

	// Idempotent: same token, same payload.
	second := env.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestProfile_Unauthenticated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")

	rec := env.do(http.MethodGet, "/api/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["error"])

	rec = env.do(http.MethodGet, "/api/auth/profile", "invalid-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["error"])
}

func TestProfile_TokenForDeletedUserStillUnauthenticated(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	token, err := env.issuer.Issue("0b2d7a1e-0a63-4df4-b2a4-90cbd6bb1abc")
	require.NoError(t, err)

	rec := env.do(http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProfile_Update(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	reg := env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody())
	require.Equal(t, http.StatusCreated, reg.Code)
	token := decodeBody(t, reg)["token"].(string)

	rec := env.do(http.MethodPut, "/api/auth/profile", token, map[string]string{
		"firstName": "Jane",
		"lastName":  "Smith",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	user := decodeBody(t, rec)["user"].(map[string]interface{})
	assert.Equal(t, "Jane", user["firstName"])
	assert.Equal(t, "Smith", user["lastName"])
}

func TestProfile_UpdateEmailRejected(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	reg := env.do(http.MethodPost, "/api/auth/register", "", validRegisterBody())
	require.Equal(t, http.StatusCreated, reg.Code)
	token := decodeBody(t, reg)["token"].(string)

	rec := env.do(http.MethodPut, "/api/auth/profile", token, map[string]string{
		"email": "newemail@example.com",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Stored email is unchanged.
	stored, err := env.users.GetByEmail(t.Context(), "test@example.com")
	require.NoError(t, err)
	require.NotNil(t, stored)
	stolen, err := env.users.GetByEmail(t.Context(), "newemail@example.com")
	require.NoError(t, err)
	assert.Nil(t, stolen)
}

func TestProfile_UpdateWithoutToken(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	rec := env.do(http.MethodPut, "/api/auth/profile", "", map[string]string{"firstName": "Jane"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthEndpoints_RateLimited(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "5-M")
	sawTooMany := false
	for i := 0; i < 10; i++ {
		rec := env.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "nonexistent@example.com",
			"password": "wrongpass1",
		})
		if rec.Code == http.StatusTooManyRequests {
			sawTooMany = true
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		}
	}
	assert.True(t, sawTooMany, "expected at least one 429 after exceeding the limit")
}

func TestHealth(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	rec := env.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}
