package server

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"postline/internal/config"
	"postline/internal/models"
	"postline/internal/testutil"
	"postline/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signUpValues() url.Values {
	return url.Values{
		"first_name":       {"John"},
		"last_name":        {"Doe"},
		"username":         {"@johndoe"},
		"email":            {"johndoe@example.org"},
		"bio":              {"My bio"},
		"password":         {"Password123"},
		"confirm_password": {"Password123"},
	}
}

func countUsers(t *testing.T, env *testEnv) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.db.Model(&models.User{}).Count(&n).Error)
	return n
}

func TestHome_Anonymous(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.get("/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	v := readView(t, resp)
	assert.Equal(t, "home.html", v.Template)
	assert.Nil(t, v.CurrentUser)
	assert.Empty(t, v.Messages)
}

func TestSignUp_CreatesUserAndLogsIn(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.postForm("/sign_up/", signUpValues())
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/feed/", location(resp))
	assert.Contains(t, b.cookies, "postline_session")
	assert.EqualValues(t, 1, countUsers(t, env))

	v := readView(t, b.get("/feed/"))
	assert.Equal(t, "feed.html", v.Template)
	require.NotNil(t, v.CurrentUser)
	assert.Equal(t, "@johndoe", v.CurrentUser["username"])
	assert.NotContains(t, v.CurrentUser, "password")
}

func TestSignUp_InvalidFormReRenders(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	values := signUpValues()
	values.Set("confirm_password", "WrongPassword123")
	resp := b.postForm("/sign_up/", values)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	v := readView(t, resp)
	assert.Equal(t, "sign_up.html", v.Template)
	assert.Contains(t, formErrors(t, v), "confirm_password")
	assert.Equal(t, "@johndoe", formValues(t, v)["username"])
	assert.NotContains(t, formValues(t, v), "password")
	assert.NotContains(t, b.cookies, "postline_session")
	assert.Zero(t, countUsers(t, env))
}

func TestSignUp_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe", func(u *models.User) { u.Email = "other@example.org" })
	b := env.browser(t)

	v := readView(t, b.postForm("/sign_up/", signUpValues()))
	assert.Equal(t, "sign_up.html", v.Template)
	assert.Contains(t, formErrors(t, v), "username")
	assert.EqualValues(t, 1, countUsers(t, env))
}

func TestSignUp_ClosedByFlag(t *testing.T) {
	env := newTestEnv(t, func(c *config.Config) { c.FeatureFlags = "sign_up=off" })
	b := env.browser(t)

	resp := b.get("/sign_up/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/log_in/", location(resp))

	resp = b.postForm("/sign_up/", signUpValues())
	assert.Equal(t, "/log_in/", location(resp))
	assert.Zero(t, countUsers(t, env))

	v := readView(t, b.get("/log_in/"))
	require.NotEmpty(t, v.Messages)
	assert.Equal(t, LevelWarning, v.Messages[0].Level)
}

func TestLogIn_Success(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)

	resp := b.postForm("/log_in/", url.Values{"username": {"@johndoe"}, "password": {testutil.DefaultPassword}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/feed/", location(resp))
	assert.Contains(t, b.cookies, "postline_session")
}

func TestLogIn_RedirectsToNext(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")

	tests := []struct {
		name string
		next string
		want string
	}{
		{"local path", "/search/?query=doe", "/search/?query=doe"},
		{"protocol relative", "//evil.example.org/", "/feed/"},
		{"absolute url", "https://evil.example.org/", "/feed/"},
		{"empty", "", "/feed/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := env.browser(t)
			resp := b.postForm("/log_in/", url.Values{
				"username": {"@johndoe"},
				"password": {testutil.DefaultPassword},
				"next":     {tt.next},
			})
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, tt.want, location(resp))
		})
	}
}

func TestLogIn_Rejected(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	inactive := testutil.CreateUser(t, env.db, "@petra")
	require.NoError(t, env.db.Model(inactive).Update("is_active", false).Error)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "@johndoe", "WrongPassword123"},
		{"unknown user", "@nobody", testutil.DefaultPassword},
		{"inactive user", "@petra", testutil.DefaultPassword},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := env.browser(t)
			resp := b.postForm("/log_in/", url.Values{"username": {tt.username}, "password": {tt.password}})
			assert.Equal(t, http.StatusOK, resp.StatusCode)

			v := readView(t, resp)
			assert.Equal(t, "log_in.html", v.Template)
			require.Len(t, v.Messages, 1)
			assert.Equal(t, Message{Level: LevelError, Text: validation.MsgInvalidLogin}, v.Messages[0])
			assert.Empty(t, formValues(t, v))
			assert.NotContains(t, b.cookies, "postline_session")
		})
	}
}

func TestLogIn_IncompleteFormIsRejected(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")

	for _, form := range []url.Values{
		{"username": {"@johndoe"}},
		{"password": {testutil.DefaultPassword}},
		{},
	} {
		b := env.browser(t)
		resp := b.postForm("/log_in/", form)
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		v := readView(t, resp)
		assert.Equal(t, "log_in.html", v.Template)
		require.Len(t, v.Messages, 1)
		assert.Equal(t, Message{Level: LevelError, Text: validation.MsgInvalidLogin}, v.Messages[0])
		assert.Empty(t, formValues(t, v))
		assert.Empty(t, formErrors(t, v))
		assert.NotContains(t, b.cookies, "postline_session")
	}
}

func TestGuards(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")

	anon := env.browser(t)
	for _, path := range []string{"/feed/", "/profile/@johndoe", "/edit_profile/", "/change_password/", "/log_out/", "/search/?query=x"} {
		resp := anon.get(path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/log_in/?next="+url.QueryEscape(path), location(resp), path)
	}

	b := env.browser(t)
	b.logIn("@johndoe")
	for _, path := range []string{"/sign_up/", "/log_in/"} {
		resp := b.get(path)
		assert.Equal(t, http.StatusFound, resp.StatusCode, path)
		assert.Equal(t, "/feed/", location(resp), path)
	}
}

func TestLogOut_RevokesSession(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)
	b.logIn("@johndoe")
	token := b.cookies["postline_session"]

	resp := b.get("/log_out/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/", location(resp))
	assert.NotContains(t, b.cookies, "postline_session")

	revoked := 0
	for _, k := range env.mr.Keys() {
		if strings.HasPrefix(k, "session:revoked:") {
			revoked++
		}
	}
	assert.Equal(t, 1, revoked)

	// A copy of the old cookie no longer authenticates.
	replay := env.browser(t)
	replay.cookies["postline_session"] = token
	resp = replay.get("/feed/")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.True(t, strings.HasPrefix(location(resp), "/log_in/"))
	assert.NotContains(t, replay.cookies, "postline_session")
}

func TestSession_GarbageCookieIsCleared(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)
	b.cookies["postline_session"] = "not-a-token"

	v := readView(t, b.get("/"))
	assert.Nil(t, v.CurrentUser)
	assert.NotContains(t, b.cookies, "postline_session")
}

func TestEditProfile(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	testutil.CreateUser(t, env.db, "@janedoe")
	b := env.browser(t)
	b.logIn("@johndoe")

	v := readView(t, b.get("/edit_profile/"))
	assert.Equal(t, "edit_profile.html", v.Template)
	assert.Equal(t, "johndoe@example.org", formValues(t, v)["email"])

	t.Run("email taken", func(t *testing.T) {
		v := readView(t, b.postForm("/edit_profile/", url.Values{
			"first_name": {"John"},
			"last_name":  {"Doe"},
			"email":      {"janedoe@example.org"},
		}))
		assert.Equal(t, "edit_profile.html", v.Template)
		assert.Contains(t, formErrors(t, v), "email")
	})

	t.Run("updated", func(t *testing.T) {
		resp := b.postForm("/edit_profile/", url.Values{
			"first_name": {"Johnny"},
			"last_name":  {"Doe"},
			"email":      {"johnny@example.org"},
			"bio":        {"New bio"},
		})
		assert.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/feed/", location(resp))

		v := readView(t, b.get("/feed/"))
		assert.Equal(t, []Message{{Level: LevelSuccess, Text: "Profile updated!"}}, v.Messages)
		assert.Equal(t, "Johnny", v.CurrentUser["first_name"])
		assert.Equal(t, "New bio", v.CurrentUser["bio"])

		// Flash messages are shown once.
		v = readView(t, b.get("/feed/"))
		assert.Empty(t, v.Messages)
	})
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)
	testutil.CreateUser(t, env.db, "@johndoe")
	b := env.browser(t)
	b.logIn("@johndoe")

	v := readView(t, b.postForm("/change_password/", url.Values{
		"password":              {"WrongPassword123"},
		"new_password":          {"NewPassword123"},
		"password_confirmation": {"NewPassword123"},
	}))
	assert.Equal(t, "change_password.html", v.Template)
	assert.Contains(t, formErrors(t, v), "password")
	assert.Empty(t, formValues(t, v))

	resp := b.postForm("/change_password/", url.Values{
		"password":              {testutil.DefaultPassword},
		"new_password":          {"NewPassword123"},
		"password_confirmation": {"NewPassword123"},
	})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/feed/", location(resp))

	// The session survives the change.
	v = readView(t, b.get("/feed/"))
	assert.Equal(t, []Message{{Level: LevelSuccess, Text: "Password updated!"}}, v.Messages)

	fresh := env.browser(t)
	resp = fresh.postForm("/log_in/", url.Values{"username": {"@johndoe"}, "password": {"NewPassword123"}})
	assert.Equal(t, "/feed/", location(resp))
}
