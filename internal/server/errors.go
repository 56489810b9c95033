package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/sitemap-creator/internal/config"
	"github.com/jonathan/sitemap-creator/internal/pipeline"
	"github.com/jonathan/sitemap-creator/internal/storage"
)

var (
	// ErrRunInProgress is returned when a generation is requested while one is running.
	ErrRunInProgress = errors.New("a sitemap run is already in progress")
	// ErrNotConfigured is returned for endpoints whose backing service was not provided.
	ErrNotConfigured = errors.New("not configured")
)

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var cfgErr *config.ConfigError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrInvalidName), errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.Is(err, ErrRunInProgress):
		return http.StatusConflict
	case errors.Is(err, ErrNotConfigured):
		return http.StatusNotImplemented
	case errors.Is(err, pipeline.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
