package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kanban-backend/internal/preference/usecase"
	"kanban-backend/pkg/kvstore"

	"github.com/gin-gonic/gin"
)

func newPreferenceRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewPreferenceHandler(usecase.NewPreferenceUsecase(kvstore.NewMemoryStore()))
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/api/preferences", h.All)
	r.GET("/api/preferences/:key", h.Get)
	r.PUT("/api/preferences/:key", h.Put)
	r.DELETE("/api/preferences/:key", h.Delete)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestPreferenceRoundTrip(t *testing.T) {
	r := newPreferenceRouter()

	if w := do(r, http.MethodGet, "/api/preferences/current_view", ""); w.Code != http.StatusNotFound {
		t.Fatalf("unset GET status = %d, want 404", w.Code)
	}
	if w := do(r, http.MethodPut, "/api/preferences/current_view", `"calendar"`); w.Code != http.StatusOK {
		t.Fatalf("PUT status = %d: %s", w.Code, w.Body.String())
	}

	w := do(r, http.MethodGet, "/api/preferences/current_view", "")
	if w.Code != http.StatusOK || w.Body.String() != `"calendar"` {
		t.Errorf("GET = %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/preferences", "")
	if !strings.Contains(w.Body.String(), `"current_view":"calendar"`) {
		t.Errorf("All body = %s", w.Body.String())
	}

	if w := do(r, http.MethodDelete, "/api/preferences/current_view", ""); w.Code != http.StatusOK {
		t.Errorf("DELETE status = %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/preferences/current_view", ""); w.Code != http.StatusNotFound {
		t.Errorf("GET after delete status = %d, want 404", w.Code)
	}
}

func TestPreferenceRejectsBadInput(t *testing.T) {
	r := newPreferenceRouter()

	tests := []struct {
		name string
		path string
		body string
	}{
		{"unknown key", "/api/preferences/theme_colour", `"dark"`},
		{"invalid json", "/api/preferences/quick_notes", `{notes`},
		{"wrong shape", "/api/preferences/notification_settings", `{"enabled":"yes"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(r, http.MethodPut, tt.path, tt.body); w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400: %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"http://app.test"})

	req := httptest.NewRequest(http.MethodGet, "/api/ws", nil)
	if !check(req) {
		t.Error("requests without Origin should pass")
	}
	req.Header.Set("Origin", "http://app.test")
	if !check(req) {
		t.Error("configured origin rejected")
	}
	req.Header.Set("Origin", "http://evil.test")
	if check(req) {
		t.Error("foreign origin accepted")
	}

	req.Header.Set("Origin", "http://anything.test")
	if !originChecker([]string{"*"})(req) {
		t.Error("wildcard should accept any origin")
	}
}

func TestTopicName(t *testing.T) {
	if got := topicName("projects/p/topics/kanban-events"); got != "kanban-events" {
		t.Errorf("topicName(full) = %q", got)
	}
	if got := topicName("kanban-events"); got != "kanban-events" {
		t.Errorf("topicName(short) = %q", got)
	}
}
