package server

import (
	"encoding/base64"
	"encoding/json"
	"time"

	"postline/internal/models"
	"postline/internal/service"
	"postline/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const flashCookie = "postline_flash"

// Message levels.
const (
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "danger"
)

// Message is a one-line notice shown above a page.
type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// View is the rendered page: a template name plus everything it needs.
type View struct {
	Template    string       `json:"template"`
	CurrentUser *models.User `json:"current_user,omitempty"`
	Messages    []Message    `json:"messages"`
	Context     fiber.Map    `json:"context"`
}

// PostView adds the public image URL to a post.
type PostView struct {
	models.Post
	ImageURL string `json:"image_url,omitempty"`
}

// FormView carries submitted values and field errors back to a template.
type FormView struct {
	Values map[string]string       `json:"values"`
	Errors validation.FieldErrors `json:"errors"`
}

func newForm(values map[string]string, errs validation.FieldErrors) FormView {
	if values == nil {
		values = map[string]string{}
	}
	if errs == nil {
		errs = validation.FieldErrors{}
	}
	return FormView{Values: values, Errors: errs}
}

func presentPosts(posts []models.Post) []PostView {
	out := make([]PostView, 0, len(posts))
	for _, p := range posts {
		out = append(out, PostView{Post: p, ImageURL: service.URL(p.Image)})
	}
	return out
}

// render writes the view with status, draining pending flash messages.
func (s *Server) render(c *fiber.Ctx, status int, template string, ctx fiber.Map, extra ...Message) error {
	if ctx == nil {
		ctx = fiber.Map{}
	}
	messages := append(s.takeFlash(c), extra...)
	return c.Status(status).JSON(View{
		Template:    template,
		CurrentUser: currentUser(c),
		Messages:    messages,
		Context:     ctx,
	})
}

// flash queues a message for the next rendered page.
func (s *Server) flash(c *fiber.Ctx, level, text string) {
	messages := append(readFlash(c), Message{Level: level, Text: text})
	raw, err := json.Marshal(messages)
	if err != nil {
		return
	}
	c.Cookie(&fiber.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (s *Server) takeFlash(c *fiber.Ctx) []Message {
	messages := readFlash(c)
	if c.Cookies(flashCookie) != "" {
		c.Cookie(&fiber.Cookie{
			Name:    flashCookie,
			Value:   "",
			Path:    "/",
			Expires: time.Unix(0, 0),
			MaxAge:  -1,
		})
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages
}

func readFlash(c *fiber.Ctx) []Message {
	raw := c.Cookies(flashCookie)
	if raw == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var messages []Message
	if err := json.Unmarshal(decoded, &messages); err != nil {
		return nil
	}
	return messages
}
