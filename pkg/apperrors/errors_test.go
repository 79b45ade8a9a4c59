package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAppError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("record not found")
	appErr := ErrNotFound(cause)

	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
	assert.True(t, errors.Is(appErr, cause))
	assert.Contains(t, appErr.Error(), "record not found")
}

func TestAppError_WithDetailsDoesNotMutateShared(t *testing.T) {
	withDetails := ErrInvalidCredentials.WithDetails("extra")

	assert.Equal(t, "extra", withDetails.Details)
	assert.Nil(t, ErrInvalidCredentials.Details)
}

func TestAppError_MarshalHidesCause(t *testing.T) {
	appErr := InternalError(errors.New("secret dsn"))

	raw, err := json.Marshal(appErr)
	require.NoError(t, err)

	assert.NotContains(t, string(raw), "secret dsn")
	assert.Contains(t, string(raw), string(CodeInternalError))
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"app error keeps its status", ErrThreadAccessDenied, http.StatusForbidden, CodeForbidden},
		{"plain error becomes 500", errors.New("boom"), http.StatusInternalServerError, CodeInternalError},
		{"wrapped app error is found", errors.Join(errors.New("ctx"), ErrCreditAlreadyUsed), http.StatusBadRequest, CodeInvalidOperation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var body struct {
				Error struct {
					Code ErrorCode `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestFieldError(t *testing.T) {
	appErr := FieldError("password", "Passwords do not match")

	assert.Equal(t, http.StatusBadRequest, appErr.HTTPCode)
	assert.Equal(t, map[string]string{"password": "Passwords do not match"}, appErr.Details)
}
