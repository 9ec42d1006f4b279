package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"postline/internal/config"
	"postline/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-session-secret-0123456789abcdef"

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	mr     *miniredis.Miniredis
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Port:                 "0",
		Env:                  "test",
		SessionSecret:        testSecret,
		SessionTTLHours:      1,
		FeatureFlags:         "sign_up=on,post_images=on",
		UploadDir:            t.TempDir(),
		ImageMaxUploadSizeMB: 2,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := testConfig(t)
	for _, m := range mutate {
		m(cfg)
	}

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)
	return &testEnv{server: s, app: s.App(), db: db, mr: mr}
}

// browser replays cookies between requests the way a user agent would.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.app, cookies: map[string]string{}}
}

func (b *browser) do(req *http.Request) *http.Response {
	b.t.Helper()
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)
	for _, c := range resp.Cookies() {
		if c.Value == "" || c.MaxAge < 0 {
			delete(b.cookies, c.Name)
			continue
		}
		b.cookies[c.Name] = c.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	b.t.Helper()
	return b.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (b *browser) postForm(path string, values url.Values) *http.Response {
	b.t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

func (b *browser) postMultipart(path string, fields map[string]string, fileField, fileName string, content []byte) *http.Response {
	b.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(b.t, w.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := w.CreateFormFile(fileField, fileName)
		require.NoError(b.t, err)
		_, err = fw.Write(content)
		require.NoError(b.t, err)
	}
	require.NoError(b.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

// logIn signs in through the form with testutil.DefaultPassword.
func (b *browser) logIn(username string) {
	b.t.Helper()
	resp := b.postForm("/log_in/", url.Values{"username": {username}, "password": {testutil.DefaultPassword}})
	defer func() { _ = resp.Body.Close() }()
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	require.Contains(b.t, b.cookies, "postline_session")
}

type decodedView struct {
	Template    string         `json:"template"`
	CurrentUser map[string]any `json:"current_user"`
	Messages    []Message      `json:"messages"`
	Context     map[string]any `json:"context"`
}

func readView(t *testing.T, resp *http.Response) decodedView {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var v decodedView
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func formErrors(t *testing.T, v decodedView) map[string]any {
	t.Helper()
	form, ok := v.Context["form"].(map[string]any)
	require.True(t, ok, "view has no form")
	errs, _ := form["errors"].(map[string]any)
	return errs
}

func formValues(t *testing.T, v decodedView) map[string]any {
	t.Helper()
	form, ok := v.Context["form"].(map[string]any)
	require.True(t, ok, "view has no form")
	values, _ := form["values"].(map[string]any)
	return values
}

func location(resp *http.Response) string {
	_ = resp.Body.Close()
	return resp.Header.Get("Location")
}
