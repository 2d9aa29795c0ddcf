package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"threadsnet/service"
)

func TestHandleServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"validation", service.NewError(service.KindValidation, "text is required"), http.StatusBadRequest, "text is required"},
		{"not found", service.NewError(service.KindNotFound, "Post not found"), http.StatusNotFound, "Post not found"},
		{"unauthorized", service.NewError(service.KindUnauthorized, "Invalid credentials"), http.StatusUnauthorized, "Invalid credentials"},
		{"forbidden", service.NewError(service.KindForbidden, "Account is locked"), http.StatusForbidden, "Account is locked"},
		{"conflict", service.NewError(service.KindConflict, "Username already taken"), http.StatusConflict, "Username already taken"},
		{"internal hides cause", errors.New("pq: connection refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HandleServiceError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["message"])
		})
	}
}

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Created(c, "Post created", "post", gin.H{"text": "hi"})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Post created","post":{"text":"hi"}}`, w.Body.String())
}
