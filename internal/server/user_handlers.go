package server

import (
	"context"
	"errors"

	"postline/internal/models"
	"postline/internal/service"

	"github.com/gofiber/fiber/v2"
)

// redirectIfMissing sends unknown usernames back to the feed.
func redirectIfMissing(c *fiber.Ctx, err error) (bool, error) {
	if errors.Is(err, service.ErrUserNotFound) {
		return true, c.Redirect("/feed/", fiber.StatusFound)
	}
	return false, err
}

// ShowProfile handles GET /profile/:username
// @Summary User profile
// @Description The user, follower and following counts, whether the viewer follows them, and their posts newest first. Unknown users redirect to the feed.
// @Tags users
// @Produce json
// @Param username path string true "Username including the leading @"
// @Success 200 {object} View
// @Success 302 "Redirect to /feed/ for unknown users"
// @Router /profile/{username} [get]
func (s *Server) ShowProfile(c *fiber.Ctx) error {
	profile, err := s.follows.Profile(c.UserContext(), currentUser(c).ID, c.Params("username"))
	if err != nil {
		if handled, rerr := redirectIfMissing(c, err); handled {
			return rerr
		}
		return err
	}

	return s.render(c, fiber.StatusOK, "profile.html", fiber.Map{
		"user":            profile.User,
		"full_name":       profile.FullName,
		"post_count":      profile.PostCount,
		"follower_count":  profile.FollowerCount,
		"following_count": profile.FollowingCount,
		"is_following":    profile.IsFollowing,
		"is_self":         profile.IsSelf,
		"posts":           presentPosts(profile.Posts),
	})
}

// FollowToggle handles GET /follow_toggle/:username
// @Summary Follow or unfollow a user
// @Description Flips whether the current user follows username. Toggling oneself changes nothing.
// @Tags users
// @Param username path string true "Username including the leading @"
// @Success 302 "Redirect to the profile, or /feed/ for unknown users"
// @Router /follow_toggle/{username} [get]
func (s *Server) FollowToggle(c *fiber.Ctx) error {
	target, err := s.follows.ResolveUsername(c.UserContext(), c.Params("username"))
	if err != nil {
		if handled, rerr := redirectIfMissing(c, err); handled {
			return rerr
		}
		return err
	}

	if _, err := s.follows.Toggle(c.UserContext(), currentUser(c).ID, target.ID); err != nil {
		return err
	}
	return c.Redirect("/profile/"+target.Username, fiber.StatusFound)
}

// Followers handles GET /followers/:username
// @Summary Followers of a user
// @Tags users
// @Produce json
// @Param username path string true "Username including the leading @"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} View
// @Router /followers/{username} [get]
func (s *Server) Followers(c *fiber.Ctx) error {
	return s.followList(c, "followers", s.follows.Followers)
}

// Following handles GET /following/:username
// @Summary Users a user follows
// @Tags users
// @Produce json
// @Param username path string true "Username including the leading @"
// @Param limit query int false "Page size" default(20)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} View
// @Router /following/{username} [get]
func (s *Server) Following(c *fiber.Ctx) error {
	return s.followList(c, "following", s.follows.Following)
}

type followLister func(ctx context.Context, username string, limit, offset int) (*models.User, []models.User, error)

func (s *Server) followList(c *fiber.Ctx, kind string, list followLister) error {
	page := parsePagination(c, defaultPageSize)
	user, users, err := list(c.UserContext(), c.Params("username"), page.Limit, page.Offset)
	if err != nil {
		if handled, rerr := redirectIfMissing(c, err); handled {
			return rerr
		}
		return err
	}
	if users == nil {
		users = []models.User{}
	}
	return s.render(c, fiber.StatusOK, "follow_list.html", fiber.Map{
		"kind":       kind,
		"user":       user,
		"users":      users,
		"pagination": page,
	})
}

// Search handles GET /search/
// @Summary Search users and posts
// @Description Case-insensitive substring match on username, first and last name, and on post title and body. A blank query returns nothing.
// @Tags search
// @Produce json
// @Param query query string false "Search text"
// @Success 200 {object} View
// @Router /search/ [get]
func (s *Server) Search(c *fiber.Ctx) error {
	result, err := s.search.Search(c.UserContext(), c.Query("query"))
	if err != nil {
		return err
	}
	return s.render(c, fiber.StatusOK, "search_results.html", fiber.Map{
		"query": result.Query,
		"users": result.Users,
		"posts": presentPosts(result.Posts),
	})
}
