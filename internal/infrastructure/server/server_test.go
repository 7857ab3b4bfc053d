package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/config"
	"github.com/GriffinCanCode/zvenigorodok/internal/infrastructure/logging"
	"github.com/GriffinCanCode/zvenigorodok/internal/ssr"
)

func TestMain(m *testing.M) {
	ssr.MustInitialize()
	os.Exit(m.Run())
}

const clientBundle = `var SSR = {
	App: function (p) {
		var params = JSON.parse(p);
		return "<!doctype html><html><body><main data-location=\"" + params.location + "\">Звенигородок</main></body></html>";
	}
};`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newClientDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ssr", "index.js"), clientBundle)
	writeFile(t, filepath.Join(dir, "ssr", "styles", "app.css"), "main{color:red}")
	writeFile(t, filepath.Join(dir, "ssr", "images", "logo.svg"), "<svg></svg>")
	writeFile(t, filepath.Join(dir, "client", "main.js"), "console.log(1)")
	return dir
}

func testConfig(dir string) *config.Config {
	cfg := config.Default()
	cfg.Server.ClientDir = dir
	cfg.Server.Host = "127.0.0.1"
	cfg.Logging.Development = true
	cfg.RateLimit.Enabled = false
	return cfg
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	srv, err := NewServer(context.Background(), testConfig(newClientDir(t)), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = srv.Close() })
	return srv
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestPageRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := get(t, srv.Handler(), "/services/cleaning?from=menu")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("X-Trace-ID"))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	main := doc.Find("main")
	assert.Equal(t, "Звенигородок", main.Text())
	location, _ := main.Attr("data-location")
	assert.Equal(t, "/services/cleaning?from=menu", location)

	assert.Equal(t, []string{"App"}, srv.Renderer().Exports())
}

func TestStaticRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path   string
		status int
		body   string
	}{
		{"/styles/app.css", http.StatusOK, "main{color:red}"},
		{"/images/logo.svg", http.StatusOK, "<svg></svg>"},
		{"/scripts/main.js", http.StatusOK, "console.log(1)"},
		{"/styles/missing.css", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := get(t, srv.Handler(), tt.path)
			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.body, rec.Body.String())
				assert.Equal(t, "public, max-age=31536000", rec.Header().Get("Cache-Control"))
			} else {
				assert.NotContains(t, rec.Body.String(), "Звенигородок")
			}
		})
	}

	rec := get(t, srv.Handler(), "/styles/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app.css")
}

func TestReviewRoutes(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/add_review",
		strings.NewReader(`{"text":"Быстро и аккуратно","user":"Мария","target":"CLEANING"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "review added", rec.Body.String())

	rec = get(t, srv.Handler(), "/api/get_reviews?target=Cleaning")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Быстро и аккуратно")

	rec = get(t, srv.Handler(), "/api/get_reviews?target=Unknown")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetricsAndHealthRoutes(t *testing.T) {
	srv := newTestServer(t)

	get(t, srv.Handler(), "/")

	rec := get(t, srv.Handler(), "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ssr_renders_total{outcome="ok"} 1`)
	assert.Contains(t, rec.Body.String(), "ssr_render_slots")

	rec = get(t, srv.Handler(), "/health")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
}

func TestUnknownNonGetRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/anything", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewServerMissingBundle(t *testing.T) {
	_, err := NewServer(context.Background(), testConfig(t.TempDir()), logging.NewNop())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewServerInvalidBundle(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ssr", "index.js"), "var SSR = {")

	_, err := NewServer(context.Background(), testConfig(dir), logging.NewNop())
	assert.ErrorIs(t, err, ssr.ErrInvalidBundle)
}

func TestNewServerMissingCertificate(t *testing.T) {
	cfg := testConfig(newClientDir(t))
	cfg.TLS.KeyFile = filepath.Join(t.TempDir(), "key.pem")
	cfg.TLS.CertFile = filepath.Join(t.TempDir(), "cert.pem")

	_, err := NewServer(context.Background(), cfg, logging.NewNop())
	assert.ErrorContains(t, err, "load TLS certificate")
}

func TestRunStopsOnCancel(t *testing.T) {
	cfg := testConfig(newClientDir(t))
	cfg.Server.Port = "0"
	cfg.Server.ShutdownTimeout = time.Second

	srv, err := NewServer(context.Background(), cfg, logging.NewNop())
	require.NoError(t, err)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
