package httputil

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/emergencyconnect/kms/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)
	return c, recorder
}

func TestHandleErrorGin(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "not found maps to 404",
			err:        apperrors.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantError:  "not_found",
		},
		{
			name:       "invalid input maps to 422",
			err:        apperrors.Wrap(apperrors.ErrInvalidInput, "user id must be numeric"),
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "invalid_input",
		},
		{
			name:       "unauthorized maps to 401",
			err:        apperrors.Wrap(apperrors.ErrUnauthorized, "invalid or expired token"),
			wantStatus: http.StatusUnauthorized,
			wantError:  "unauthorized",
		},
		{
			name:       "forbidden maps to 403",
			err:        apperrors.Wrap(apperrors.ErrForbidden, "admin role required"),
			wantStatus: http.StatusForbidden,
			wantError:  "forbidden",
		},
		{
			name:       "unknown errors map to 500",
			err:        io.ErrUnexpectedEOF,
			wantStatus: http.StatusInternalServerError,
			wantError:  "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, recorder := newTestContext()

			HandleErrorGin(c, tt.err, testLogger())

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var response ErrorResponse
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
			assert.Equal(t, tt.wantError, response.Error)
		})
	}

	t.Run("unauthorized message does not leak the cause", func(t *testing.T) {
		c, recorder := newTestContext()

		HandleErrorGin(c, apperrors.Wrap(apperrors.ErrUnauthorized, "signature mismatch"), testLogger())

		var response ErrorResponse
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.NotContains(t, response.Message, "signature")
	})

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, recorder := newTestContext()

		HandleErrorGin(c, nil, testLogger())

		assert.Empty(t, recorder.Body.String())
	})
}

func TestHandleValidationErrorGin(t *testing.T) {
	c, recorder := newTestContext()

	HandleValidationErrorGin(c, io.ErrUnexpectedEOF, testLogger())

	assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)

	var response ErrorResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "validation_error", response.Error)
}

func TestHandleBadRequestGin(t *testing.T) {
	c, recorder := newTestContext()

	HandleBadRequestGin(c, io.ErrUnexpectedEOF, testLogger())

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}
