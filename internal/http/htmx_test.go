package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWantsPartial(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, WantsPartial(r))

	r.Header.Set("Hx-Request", "true")
	assert.True(t, IsHTMX(r))
	assert.True(t, WantsPartial(r))

	r.Header.Set("Hx-Boosted", "true")
	assert.False(t, WantsPartial(r), "boosted navigations get the whole page")
}

func TestNavigate(t *testing.T) {
	t.Run("browser", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Navigate(rec, httptest.NewRequest(http.MethodPost, "/auth/login", nil), "/dashboard")
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})

	t.Run("htmx", func(t *testing.T) {
		rec := httptest.NewRecorder()
		Navigate(rec, asHTMX(httptest.NewRequest(http.MethodPost, "/auth/login", nil)), "/dashboard")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "/dashboard", rec.Header().Get("Hx-Redirect"))
		assert.Empty(t, rec.Header().Get("Location"))
	})
}

func TestSetHXTrigger(t *testing.T) {
	rec := httptest.NewRecorder()
	SetHXTrigger(rec, "override-sent", nil)
	assert.JSONEq(t, `{"override-sent":true}`, rec.Header().Get("Hx-Trigger"))

	rec = httptest.NewRecorder()
	SetHXTrigger(rec, "override-done", map[string]string{"state": "accepted"})
	assert.JSONEq(t, `{"override-done":{"state":"accepted"}}`, rec.Header().Get("Hx-Trigger"))
}
