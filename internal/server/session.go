package server

import (
	"errors"
	"net/url"
	"time"

	"postline/internal/middleware"
	"postline/internal/models"
	"postline/internal/session"

	"github.com/gofiber/fiber/v2"
)

const (
	localUser   = "currentUser"
	localClaims = "sessionClaims"
	localUserID = "userID"
)

// LoadSession resolves the session cookie into the current user. Invalid,
// revoked or orphaned sessions are cleared and the request continues as
// anonymous.
func (s *Server) LoadSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(session.CookieName)
		if raw == "" {
			return c.Next()
		}

		ctx := c.UserContext()
		claims, err := s.sessions.Parse(ctx, raw)
		if err != nil {
			if errors.Is(err, session.ErrInvalidToken) || errors.Is(err, session.ErrRevoked) {
				s.clearSessionCookie(c)
			} else {
				middleware.Logger.WarnContext(ctx, "session lookup failed", "error", err.Error())
			}
			return c.Next()
		}

		userID, err := claims.UserID()
		if err != nil {
			s.clearSessionCookie(c)
			return c.Next()
		}
		user, err := s.accounts.GetUser(ctx, userID)
		if err != nil || !user.IsActive {
			if err != nil && !models.IsNotFound(err) {
				middleware.Logger.WarnContext(ctx, "session user lookup failed", "error", err.Error())
			}
			s.clearSessionCookie(c)
			return c.Next()
		}

		c.Locals(localUser, user)
		c.Locals(localClaims, claims)
		c.Locals(localUserID, user.ID)
		c.SetUserContext(middleware.WithUserID(ctx, user.ID))
		return c.Next()
	}
}

// LoginRequired redirects anonymous requests to the log-in page, carrying
// the original URL in next.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Redirect("/log_in/?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}

// LoginProhibited sends authenticated users to their feed.
func (s *Server) LoginProhibited() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) != nil {
			return c.Redirect("/feed/", fiber.StatusFound)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localUser).(*models.User)
	return user
}

func sessionClaims(c *fiber.Ctx) *session.Claims {
	claims, _ := c.Locals(localClaims).(*session.Claims)
	return claims
}

// logIn issues a session for user and sets the cookie.
func (s *Server) logIn(c *fiber.Ctx, user *models.User) error {
	token, _, err := s.sessions.Issue(user.ID, user.Username)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(s.sessions.TTL()),
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (s *Server) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   s.config.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
