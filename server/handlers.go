package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/IvanBrykalov/memocache/registry"
)

// ClearResponse is the body of POST /cache/clear.
type ClearResponse struct {
	Cleared []string `json:"cleared"`
	Errors  []string `json:"errors"`
}

// InvalidateResponse is the body of POST /cache/invalidate.
type InvalidateResponse struct {
	Pattern string `json:"pattern"`
	Cache   string `json:"cache,omitempty"`
	Removed int    `json:"removed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GET /health
func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// GET /cache/stats
func (s *Server) allStats(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"caches": s.reg.AllStats()})
}

// GET /cache/stats/:name
func (s *Server) stats(c echo.Context) error {
	snap, err := s.reg.Stats(c.Param("name"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, snap)
}

// GET /cache/config
func (s *Server) config(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"caches": s.configs.All()})
}

// POST /cache/clear[?name=]
func (s *Server) clear(c echo.Context) error {
	var res registry.ClearResult
	if name := c.QueryParam("name"); name != "" {
		res = s.reg.Clear(name)
	} else {
		res = s.reg.ClearAll()
	}

	body := ClearResponse{Cleared: res.Cleared, Errors: make([]string, 0, len(res.Errors))}
	if body.Cleared == nil {
		body.Cleared = []string{}
	}
	for _, err := range res.Errors {
		body.Errors = append(body.Errors, err.Error())
	}

	status := http.StatusOK
	switch {
	case res.OK():
	case len(res.Errors) == 1 && errors.Is(res.Errors[0], registry.ErrNotFound):
		status = http.StatusNotFound
	default:
		s.log.Warn("cache clear failed", "error", res.Err())
		status = http.StatusInternalServerError
	}
	return c.JSON(status, body)
}

// POST /cache/invalidate?pattern=[&name=]
func (s *Server) invalidate(c echo.Context) error {
	pattern := c.QueryParam("pattern")
	if pattern == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "pattern is required"})
	}

	var (
		n    int
		err  error
		name = c.QueryParam("name")
	)
	if name != "" {
		n, err = s.reg.ClearByPatternIn(name, pattern)
	} else {
		n, err = s.reg.ClearByPattern(pattern)
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, InvalidateResponse{Pattern: pattern, Cache: name, Removed: n})
}

func (s *Server) fail(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, registry.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, registry.ErrInvalidPattern):
		status = http.StatusBadRequest
	}
	return c.JSON(status, errorResponse{Error: err.Error()})
}
