package server

import (
	"errors"
	"net/http"
	"strings"

	"postline/internal/models"
	"postline/internal/service"
	"postline/internal/session"

	"github.com/gofiber/fiber/v2"
)

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

const (
	defaultPageSize    = 20
	maxPaginationLimit = 100
)

// parsePagination extracts limit and offset query parameters with the given default limit.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// safeNext accepts only local absolute paths, falling back otherwise.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}

// mapServiceError maps service and session errors onto an HTTP status and
// the error written to the client.
func mapServiceError(err error) (int, error) {
	var appErr *models.AppError
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, &models.AppError{Code: "NOT_FOUND", Message: "User not found"}
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, session.ErrRevoked):
		return http.StatusUnauthorized, models.NewUnauthorizedError(err.Error())
	case errors.As(err, &appErr):
		switch appErr.Code {
		case "NOT_FOUND":
			return http.StatusNotFound, appErr
		case "VALIDATION_ERROR":
			return http.StatusBadRequest, appErr
		case "UNAUTHORIZED":
			return http.StatusUnauthorized, appErr
		case "FORBIDDEN":
			return http.StatusForbidden, appErr
		}
		return http.StatusInternalServerError, appErr
	}
	return http.StatusInternalServerError, models.NewInternalError(err)
}
