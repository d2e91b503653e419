package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/futig/launchpad-backend/internal/config"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func corsRouter(cfg config.CORSConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(CORS(cfg))
	r.Get("/projects", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	return r
}

func TestCORS_Preflight(t *testing.T) {
	h := corsRouter(config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}, MaxAge: 300})

	req := httptest.NewRequest(http.MethodOptions, "/projects", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Less(t, rec.Code, 300)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodGet)
}

func TestCORS_RejectsUnknownOrigin(t *testing.T) {
	h := corsRouter(config.CORSConfig{AllowedOrigins: []string{"https://app.example.com"}})

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_PlainOptionsReachesRouter(t *testing.T) {
	h := corsRouter(config.CORSConfig{AllowedOrigins: []string{"*"}})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodOptions, "/projects", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// waitForDeadline writes one event, then reports the context error the way
// the streaming handler does.
func waitForDeadline(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("stream") == "true" {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "event: chunk\n\n")
		<-r.Context().Done()
		fmt.Fprintf(w, "event: error\ndata: %s\n\n", r.Context().Err())
		return
	}
	<-r.Context().Done()
}

func TestTimeout_StreamReportsInBand(t *testing.T) {
	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(waitForDeadline))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/p/messages?stream=true", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "event: error")
	assert.Contains(t, rec.Body.String(), "context deadline exceeded")
}

func TestTimeout_PlainRequestGets504(t *testing.T) {
	h := Timeout(20 * time.Millisecond)(http.HandlerFunc(waitForDeadline))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/projects/p/messages", nil))

	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}
