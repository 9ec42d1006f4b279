package service

import (
	"context"
	"strings"

	"postline/internal/models"
	"postline/internal/observability"
	"postline/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// SearchLimit caps each result list.
const SearchLimit = 50

// SearchResult holds the matches for one query.
type SearchResult struct {
	Query string        `json:"query"`
	Users []models.User `json:"users"`
	Posts []models.Post `json:"posts"`
}

type SearchService struct {
	users repository.UserRepository
	posts repository.PostRepository
}

func NewSearchService(users repository.UserRepository, posts repository.PostRepository) *SearchService {
	return &SearchService{users: users, posts: posts}
}

// Search finds users by username, first or last name and posts by title or
// body. A blank query matches nothing.
func (s *SearchService) Search(ctx context.Context, query string) (_ *SearchResult, err error) {
	query = strings.TrimSpace(query)
	result := &SearchResult{Query: query, Users: []models.User{}, Posts: []models.Post{}}
	if query == "" {
		return result, nil
	}

	ctx, span := observability.StartSpan(ctx, "search", "run", attribute.String("query", query))
	defer func() { observability.EndSpan(span, err) }()

	if result.Users, err = s.users.Search(ctx, query, SearchLimit); err != nil {
		return nil, err
	}
	if result.Posts, err = s.posts.Search(ctx, query, SearchLimit); err != nil {
		return nil, err
	}

	observability.SearchResults.WithLabelValues("users").Observe(float64(len(result.Users)))
	observability.SearchResults.WithLabelValues("posts").Observe(float64(len(result.Posts)))
	return result, nil
}
