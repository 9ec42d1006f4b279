package server

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"postline/internal/config"
	"postline/internal/models"
	"postline/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func viewPosts(t *testing.T, v decodedView, key string) []map[string]any {
	t.Helper()
	raw, ok := v.Context[key].([]any)
	require.True(t, ok, "context[%q] is not a list", key)
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		out = append(out, item.(map[string]any))
	}
	return out
}

func postTitles(posts []map[string]any) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p["title"].(string))
	}
	return out
}

func TestFeed_NewestFirstWithAuthors(t *testing.T) {
	env := newTestEnv(t)
	john := testutil.CreateUser(t, env.db, "@johndoe")
	jane := testutil.CreateUser(t, env.db, "@janedoe")
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	testutil.CreatePost(t, env.db, john, "first", "", base)
	testutil.CreatePost(t, env.db, jane, "second", "", base.Add(time.Minute))
	testutil.CreatePost(t, env.db, john, "third", "", base.Add(2*time.Minute))

	b := env.browser(t)
	b.logIn("@johndoe")

	v := readView(t, b.get("/feed/"))
	assert.Equal(t, "feed.html", v.Template)
	posts := viewPosts(t, v, "posts")
	assert.Equal(t, []string{"third", "second", "first"}, postTitles(posts))
	author := posts[1]["author"].(map[string]any)
	assert.Equal(t, "@janedoe", author["username"])
	assert.Equal(t, true, v.Context["images_enabled"])

	v = readView(t, b.get("/feed/?limit=1&offset=1"))
	assert.Equal(t, []string{"second"}, postTitles(viewPosts(t, v, "posts")))
}

func TestNewPost_GetIsForbidden(t *testing.T) {
	env := newTestEnv(t)
	resp := env.browser(t).get("/new_post/")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestNewPost_RequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	resp := env.browser(t).postForm("/new_post/", url.Values{"title": {"Hello"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(location(resp), "/log_in/"))
}

func TestNewPost_TextOnly(t *testing.T) {
	env := newTestEnv(t)
	john := testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)
	b.logIn("@johndoe")

	resp := b.postForm("/new_post/", url.Values{"title": {"  Hello  "}, "body": {"World"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/feed/", location(resp))

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Equal(t, john.ID, post.AuthorID)
	assert.Equal(t, "Hello", post.Title)
	assert.Empty(t, post.Image)
}

func TestNewPost_InvalidReRendersFeed(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)
	b.logIn("@johndoe")

	resp := b.postForm("/new_post/", url.Values{"title": {"   "}, "body": {"Kept body"}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	v := readView(t, resp)
	assert.Equal(t, "feed.html", v.Template)
	assert.Contains(t, formErrors(t, v), "title")
	assert.Equal(t, "Kept body", formValues(t, v)["body"])

	var n int64
	require.NoError(t, env.db.Model(&models.Post{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestNewPost_WithImage(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)
	b.logIn("@johndoe")

	resp := b.postMultipart("/new_post/", map[string]string{"title": "Picture"}, "image", "pic.png", testutil.PNGBytes(t, 40, 20))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_ = resp.Body.Close()

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	require.NotEmpty(t, post.Image)
	assert.FileExists(t, filepath.Join(env.server.config.UploadDir, post.Image))

	posts := viewPosts(t, readView(t, b.get("/feed/")), "posts")
	require.Len(t, posts, 1)
	imageURL := posts[0]["image_url"].(string)
	assert.Equal(t, "/media/"+post.Image, imageURL)

	media := b.get(imageURL)
	_ = media.Body.Close()
	assert.Equal(t, http.StatusOK, media.StatusCode)
}

func TestNewPost_RejectsNonImage(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)
	b.logIn("@johndoe")

	resp := b.postMultipart("/new_post/", map[string]string{"title": "Picture"}, "image", "notes.png", []byte("plain text, not an image"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	v := readView(t, resp)
	assert.Contains(t, formErrors(t, v), "image")

	entries, err := os.ReadDir(env.server.config.UploadDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestNewPost_ImagesFlagOffIgnoresUpload(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.FeatureFlags = "sign_up=on,post_images=off" })
	testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)
	b.logIn("@johndoe")

	resp := b.postMultipart("/new_post/", map[string]string{"title": "Picture"}, "image", "pic.png", testutil.PNGBytes(t, 10, 10))
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	_ = resp.Body.Close()

	var post models.Post
	require.NoError(t, env.db.First(&post).Error)
	assert.Empty(t, post.Image)

	v := readView(t, b.get("/feed/"))
	assert.Equal(t, false, v.Context["images_enabled"])
}
