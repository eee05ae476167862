// Package integration provides end-to-end tests for the key management API.
// Tests run the full HTTP stack against an in-memory key store.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergencyconnect/kms/internal/app"
	"github.com/emergencyconnect/kms/internal/config"
	kmsDTO "github.com/emergencyconnect/kms/internal/kms/http/dto"
)

// integrationTestContext holds all dependencies and state for integration testing.
type integrationTestContext struct {
	container  *app.Container
	server     *httptest.Server
	adminToken string
}

// makeRequest performs an HTTP request and returns the response and body.
func (ctx *integrationTestContext) makeRequest(
	t *testing.T,
	method, path string,
	body interface{},
	token string,
) (*http.Response, []byte) {
	t.Helper()

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		require.NoError(t, err, "failed to marshal request body")
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ctx.server.URL+path, bodyReader)
	require.NoError(t, err, "failed to create request")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	require.NoError(t, err, "failed to perform request")

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err, "failed to read response body")
	require.NoError(t, resp.Body.Close())

	return resp, respBody
}

// issueToken obtains a signed token for the given subject through the API.
func (ctx *integrationTestContext) issueToken(t *testing.T, body map[string]interface{}) kmsDTO.IssueTokenResponse {
	t.Helper()

	resp, respBody := ctx.makeRequest(t, http.MethodPost, "/v1/tokens", body, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(respBody))

	var issued kmsDTO.IssueTokenResponse
	require.NoError(t, json.Unmarshal(respBody, &issued))
	require.NotEmpty(t, issued.Token)

	return issued
}

// setupIntegrationTest builds the full application over an in-memory key
// store and starts an HTTP test server.
func setupIntegrationTest(t *testing.T) *integrationTestContext {
	t.Helper()

	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment:       "production",
		ServerHost:        "127.0.0.1",
		ServerPort:        0,
		LogLevel:          "error",
		KMSMasterKey:      strings.Repeat("integration-master-secret.", 3),
		KMSDerivationSalt: "integration-derivation-salt",
		TokenExpiration:   24 * time.Hour,
		RotationInterval:  24 * time.Hour,
	}

	container := app.NewContainer(cfg)

	httpServer, err := container.HTTPServer()
	require.NoError(t, err, "failed to build http server")

	server := httptest.NewServer(httpServer.GetHandler())

	ctx := &integrationTestContext{
		container: container,
		server:    server,
	}

	ctx.adminToken = ctx.issueToken(t, map[string]interface{}{
		"id":       1000,
		"username": "dispatch-admin",
		"role":     "admin",
	}).Token

	t.Cleanup(func() {
		server.Close()
		require.NoError(t, container.Shutdown(context.Background()))
	})

	return ctx
}

func TestAPIHealth(t *testing.T) {
	ctx := setupIntegrationTest(t)

	resp, body := ctx.makeRequest(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"healthy"}`, string(body))
}

func TestAPITokenIssuance(t *testing.T) {
	ctx := setupIntegrationTest(t)

	t.Run("issues a token for an ambulance unit", func(t *testing.T) {
		issued := ctx.issueToken(t, map[string]interface{}{
			"id":          42,
			"username":    "unit-42",
			"role":        "ambulance",
			"ambulanceId": 42,
		})

		assert.Regexp(t, `^kms_production_\d+_[0-9a-f]{8}$`, issued.KeyID)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), issued.ExpiresAt, time.Minute)
	})

	t.Run("honors a custom expiry", func(t *testing.T) {
		issued := ctx.issueToken(t, map[string]interface{}{
			"id":               42,
			"username":         "unit-42",
			"role":             "ambulance",
			"expiresInSeconds": 3600,
		})

		assert.WithinDuration(t, time.Now().Add(time.Hour), issued.ExpiresAt, time.Minute)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/tokens", map[string]interface{}{
			"id":       42,
			"username": "unit-42",
			"role":     "firefighter",
		}, "")

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, string(body), "role")
	})

	t.Run("rejects a missing id", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/tokens", map[string]interface{}{
			"username": "unit-42",
			"role":     "ambulance",
		}, "")

		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestAPIAdminAuthorization(t *testing.T) {
	ctx := setupIntegrationTest(t)

	t.Run("rejects missing credentials", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/kms/metrics", nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects a garbage token", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/kms/metrics", nil, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("rejects a non-admin subject", func(t *testing.T) {
		hospitalToken := ctx.issueToken(t, map[string]interface{}{
			"id":         7,
			"username":   "mercy-general",
			"role":       "hospital",
			"hospitalId": 7,
		}).Token

		resp, _ := ctx.makeRequest(t, http.MethodGet, "/v1/kms/metrics", nil, hospitalToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}

func TestAPICacheMetrics(t *testing.T) {
	ctx := setupIntegrationTest(t)

	ctx.issueToken(t, map[string]interface{}{
		"id":       42,
		"username": "unit-42",
		"role":     "ambulance",
	})

	resp, body := ctx.makeRequest(t, http.MethodGet, "/v1/kms/metrics", nil, ctx.adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var metrics kmsDTO.MetricsResponse
	require.NoError(t, json.Unmarshal(body, &metrics))

	// One key per subject: the admin and the ambulance unit
	assert.Equal(t, 2, metrics.TotalKeys)
	assert.Equal(t, 2, metrics.KeysByType["user"])
	assert.Equal(t, "production", metrics.Environment)
}

func TestAPIRevocation(t *testing.T) {
	ctx := setupIntegrationTest(t)

	t.Run("revokes a user's keys and keeps their tokens verifiable", func(t *testing.T) {
		userToken := ctx.issueToken(t, map[string]interface{}{
			"id":       55,
			"username": "unit-55",
			"role":     "ambulance",
		}).Token

		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/kms/revoke-user/55", nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var revoked kmsDTO.RevokeResponse
		require.NoError(t, json.Unmarshal(body, &revoked))
		assert.Equal(t, 1, revoked.RevokedKeys)

		// Keys re-derive deterministically, so the issued token still verifies
		resp, _ = ctx.makeRequest(t, http.MethodGet, "/v1/kms/metrics", nil, userToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("reports zero for an unknown user", func(t *testing.T) {
		resp, body := ctx.makeRequest(t, http.MethodPost, "/v1/kms/revoke-user/999999", nil, ctx.adminToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var revoked kmsDTO.RevokeResponse
		require.NoError(t, json.Unmarshal(body, &revoked))
		assert.Equal(t, 0, revoked.RevokedKeys)
	})

	t.Run("rejects a non-numeric user id", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/kms/revoke-user/not-a-number", nil, ctx.adminToken)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		resp, _ := ctx.makeRequest(t, http.MethodPost, "/v1/kms/revoke-role/firefighter", nil, ctx.adminToken)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	})
}
