package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func requestIDRouter(seen *string) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) {
		*seen = RequestIDFrom(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestRequestIDReusesIncoming(t *testing.T) {
	var seen string
	r := requestIDRouter(&seen)

	incoming := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, incoming)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, incoming, seen)
	require.Equal(t, incoming, w.Header().Get(RequestIDHeader))
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var seen string
	r := requestIDRouter(&seen)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	require.Equal(t, seen, w.Header().Get(RequestIDHeader))
}
