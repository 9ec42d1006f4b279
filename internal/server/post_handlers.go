package server

import (
	"io"

	"postline/internal/middleware"
	"postline/internal/models"
	"postline/internal/service"
	"postline/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Feed handles GET /feed/
// @Summary Post feed
// @Description Every post, newest first, with an empty post form.
// @Tags posts
// @Produce json
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} View
// @Success 302 "Redirect to /log_in/ when anonymous"
// @Router /feed/ [get]
func (s *Server) Feed(c *fiber.Ctx) error {
	return s.renderFeed(c, newForm(nil, nil))
}

func (s *Server) renderFeed(c *fiber.Ctx, form FormView) error {
	page := parsePagination(c, defaultPageSize)
	posts, err := s.posts.Feed(c.UserContext(), page.Limit, page.Offset)
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "feed.html", fiber.Map{
		"posts":          presentPosts(posts),
		"form":           form,
		"pagination":     page,
		"images_enabled": s.imagesEnabled(c),
	})
}

func (s *Server) imagesEnabled(c *fiber.Ctx) bool {
	var id uint
	if u := currentUser(c); u != nil {
		id = u.ID
	}
	return s.featureFlags.Enabled(FlagPostImages, id)
}

// NewPostForbidden handles GET /new_post/
// @Summary Posts are created with POST only
// @Tags posts
// @Failure 403 {object} models.ErrorResponse
// @Router /new_post/ [get]
func (s *Server) NewPostForbidden(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusForbidden,
		models.NewForbiddenError("Posts can only be created from the feed"))
}

// NewPost handles POST /new_post/
// @Summary Create a post
// @Description Title is required. Body and image are optional. Invalid input re-renders the feed with errors.
// @Tags posts
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param body formData string false "Body"
// @Param image formData file false "Image"
// @Success 200 {object} View "Feed with form errors"
// @Success 302 "Redirect to /feed/"
// @Failure 429 {object} object{error=string}
// @Router /new_post/ [post]
func (s *Server) NewPost(c *fiber.Ctx) error {
	var form validation.PostForm
	if err := c.BodyParser(&form); err != nil {
		form = validation.PostForm{}
	}

	upload, err := s.readUpload(c)
	if err != nil {
		return err
	}

	_, errs, err := s.posts.CreatePost(c.UserContext(), currentUser(c).ID, form, upload)
	if err != nil {
		return err
	}
	if errs.Any() {
		return s.renderFeed(c, newForm(form.Values(), errs))
	}
	return c.Redirect("/feed/", fiber.StatusFound)
}

// readUpload returns the attached image, or nil when there is none or
// images are switched off.
func (s *Server) readUpload(c *fiber.Ctx) (*service.ImageUpload, error) {
	fh, err := c.FormFile("image")
	if err != nil || fh == nil || fh.Size == 0 {
		return nil, nil
	}
	if !s.imagesEnabled(c) {
		middleware.Logger.InfoContext(c.UserContext(), "ignoring post image, post_images flag is off")
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &service.ImageUpload{Filename: fh.Filename, Content: content}, nil
}
