package server

import (
	"errors"

	"postline/internal/observability"
	"postline/internal/service"
	"postline/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Home handles GET /
// @Summary Landing page
// @Tags pages
// @Produce json
// @Success 200 {object} View
// @Router / [get]
func (s *Server) Home(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "home.html", nil)
}

func (s *Server) signUpOpen(c *fiber.Ctx) bool {
	if s.featureFlags.Enabled(FlagSignUp, 0) {
		return true
	}
	s.flash(c, LevelWarning, "Registration is currently closed.")
	return false
}

// SignUpPage handles GET /sign_up/
// @Summary Sign-up form
// @Tags auth
// @Produce json
// @Success 200 {object} View
// @Success 302 "Already logged in, or registration closed"
// @Router /sign_up/ [get]
func (s *Server) SignUpPage(c *fiber.Ctx) error {
	if !s.signUpOpen(c) {
		return c.Redirect("/log_in/", fiber.StatusFound)
	}
	return s.render(c, fiber.StatusOK, "sign_up.html", fiber.Map{"form": newForm(nil, nil)})
}

// SignUp handles POST /sign_up/
// @Summary Register a new account
// @Description Creates the account, logs it in and redirects to the feed. Invalid input re-renders the form with field errors.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param username formData string true "Username, @ followed by at least three word characters"
// @Param email formData string true "Email"
// @Param bio formData string false "Bio"
// @Param password formData string true "Password"
// @Param confirm_password formData string true "Password confirmation"
// @Success 200 {object} View "Form with errors"
// @Success 302 "Redirect to /feed/"
// @Failure 429 {object} object{error=string}
// @Router /sign_up/ [post]
func (s *Server) SignUp(c *fiber.Ctx) error {
	if !s.signUpOpen(c) {
		return c.Redirect("/log_in/", fiber.StatusFound)
	}

	var form validation.SignUpForm
	if err := c.BodyParser(&form); err != nil {
		errs := validation.FieldErrors{}
		errs.Add(validation.NonFieldErrors, "Invalid form submission.")
		return s.render(c, fiber.StatusBadRequest, "sign_up.html", fiber.Map{"form": newForm(nil, errs)})
	}

	user, errs, err := s.accounts.SignUp(c.UserContext(), form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return s.render(c, fiber.StatusOK, "sign_up.html", fiber.Map{"form": newForm(form.Values(), errs)})
	}

	if err := s.logIn(c, user); err != nil {
		return err
	}
	return c.Redirect("/feed/", fiber.StatusFound)
}

// LogInPage handles GET /log_in/
// @Summary Log-in form
// @Tags auth
// @Produce json
// @Param next query string false "Local path to continue to after logging in"
// @Success 200 {object} View
// @Router /log_in/ [get]
func (s *Server) LogInPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "log_in.html", fiber.Map{
		"form": newForm(nil, nil),
		"next": c.Query("next"),
	})
}

// LogIn handles POST /log_in/
// @Summary Start a session
// @Description Valid credentials set the session cookie and redirect to next or the feed. Incomplete forms, bad credentials and inactive accounts all get the same message and a blank form.
// @Tags auth
// @Accept x-www-form-urlencoded
// @Produce json
// @Param username formData string true "Username"
// @Param password formData string true "Password"
// @Param next formData string false "Local path to continue to"
// @Success 200 {object} View "Form with error message"
// @Success 302 "Redirect to next or /feed/"
// @Failure 429 {object} object{error=string}
// @Router /log_in/ [post]
func (s *Server) LogIn(c *fiber.Ctx) error {
	next := c.FormValue("next", c.Query("next"))

	var form validation.LogInForm
	if err := c.BodyParser(&form); err != nil {
		form = validation.LogInForm{}
	}
	if form.Validate().Any() {
		observability.RecordAuth("log_in", observability.OutcomeInvalid)
		return s.rejectLogIn(c, next)
	}

	user, err := s.accounts.Authenticate(c.UserContext(), form.Username, form.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return s.rejectLogIn(c, next)
		}
		return err
	}

	if err := s.logIn(c, user); err != nil {
		return err
	}
	return c.Redirect(safeNext(next, "/feed/"), fiber.StatusFound)
}

// rejectLogIn re-renders a blank form. Every failed attempt gets the same
// message.
func (s *Server) rejectLogIn(c *fiber.Ctx, next string) error {
	return s.render(c, fiber.StatusOK, "log_in.html", fiber.Map{
		"form": newForm(nil, nil),
		"next": next,
	}, Message{Level: LevelError, Text: validation.MsgInvalidLogin})
}

// LogOut handles GET /log_out/
// @Summary End the session
// @Tags auth
// @Success 302 "Redirect to /"
// @Router /log_out/ [get]
func (s *Server) LogOut(c *fiber.Ctx) error {
	if err := s.sessions.Revoke(c.UserContext(), sessionClaims(c)); err != nil {
		observability.RecordAuth("log_out", observability.OutcomeError)
		return err
	}
	s.clearSessionCookie(c)
	observability.RecordAuth("log_out", observability.OutcomeSuccess)
	return c.Redirect("/", fiber.StatusFound)
}

// EditProfilePage handles GET /edit_profile/
// @Summary Profile edit form
// @Tags account
// @Produce json
// @Success 200 {object} View
// @Router /edit_profile/ [get]
func (s *Server) EditProfilePage(c *fiber.Ctx) error {
	user := currentUser(c)
	form := validation.EditProfileForm{
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Bio:       user.Bio,
	}
	return s.render(c, fiber.StatusOK, "edit_profile.html", fiber.Map{"form": newForm(form.Values(), nil)})
}

// EditProfile handles POST /edit_profile/
// @Summary Update the profile
// @Tags account
// @Accept x-www-form-urlencoded
// @Produce json
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param email formData string true "Email"
// @Param bio formData string false "Bio"
// @Success 200 {object} View "Form with errors"
// @Success 302 "Redirect to /feed/"
// @Router /edit_profile/ [post]
func (s *Server) EditProfile(c *fiber.Ctx) error {
	var form validation.EditProfileForm
	if err := c.BodyParser(&form); err != nil {
		form = validation.EditProfileForm{}
	}

	_, errs, err := s.accounts.UpdateProfile(c.UserContext(), currentUser(c).ID, form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return s.render(c, fiber.StatusOK, "edit_profile.html", fiber.Map{"form": newForm(form.Values(), errs)})
	}

	s.flash(c, LevelSuccess, "Profile updated!")
	return c.Redirect("/feed/", fiber.StatusFound)
}

// ChangePasswordPage handles GET /change_password/
// @Summary Password change form
// @Tags account
// @Produce json
// @Success 200 {object} View
// @Router /change_password/ [get]
func (s *Server) ChangePasswordPage(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "change_password.html", fiber.Map{"form": newForm(nil, nil)})
}

// ChangePassword handles POST /change_password/
// @Summary Change the password
// @Description Requires the current password. The session stays valid.
// @Tags account
// @Accept x-www-form-urlencoded
// @Produce json
// @Param password formData string true "Current password"
// @Param new_password formData string true "New password"
// @Param password_confirmation formData string true "New password again"
// @Success 200 {object} View "Form with errors"
// @Success 302 "Redirect to /feed/"
// @Router /change_password/ [post]
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var form validation.ChangePasswordForm
	if err := c.BodyParser(&form); err != nil {
		form = validation.ChangePasswordForm{}
	}

	errs, err := s.accounts.ChangePassword(c.UserContext(), currentUser(c).ID, form)
	if err != nil {
		return err
	}
	if errs.Any() {
		return s.render(c, fiber.StatusOK, "change_password.html", fiber.Map{"form": newForm(nil, errs)})
	}

	s.flash(c, LevelSuccess, "Password updated!")
	return c.Redirect("/feed/", fiber.StatusFound)
}
