package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"iot-connector/internal/models"
)

func protectedHandler(enabled bool) http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(enabled)(ok)
}

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "client-1",
		"exp": expiresAt.Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestAuthDisabled_PassesThrough(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	rec := httptest.NewRecorder()

	protectedHandler(false).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEnabled_MissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	rec := httptest.NewRecorder()

	protectedHandler(true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusUnauthorized, body.Error.Code)
	require.Len(t, body.Error.Details, 1)
	assert.Equal(t, "Authorization", body.Error.Details[0].Field)
	assert.NotEmpty(t, body.Error.Details[0].Error)
}

func TestAuthEnabled_MalformedTokenDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	req.Header.Set("Authorization", "Bearer !!!.not.base64")
	rec := httptest.NewRecorder()

	protectedHandler(true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body models.ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Error.Details, 1)
	assert.Equal(t, "Authorization", body.Error.Details[0].Field)
}

func TestAuthEnabled_MalformedToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	rec := httptest.NewRecorder()

	protectedHandler(true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthEnabled_ExpiredToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()

	protectedHandler(true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthEnabled_ValidToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()

	protectedHandler(true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEnabled_HealthBypassed(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	protectedHandler(true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthEnabled_PreflightBypassed(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/locations", nil)
	rec := httptest.NewRecorder()

	protectedHandler(true).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCORSHeaders(t *testing.T) {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/locations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflight(t *testing.T) {
	handler := CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("preflight must not reach the handler")
	}))

	req := httptest.NewRequest(http.MethodOptions, "/locations", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
