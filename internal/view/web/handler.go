// Package web is the browser view: it serves the search page and exposes one
// session per mounted page over JSON and Server-Sent Events.
package web

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/session"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

//go:embed templates/*.html
var templatesFS embed.FS

type Handler struct {
	e        *echo.Echo
	registry *Registry
	host     string
	index    *template.Template
}

func NewHandler(e *echo.Echo, registry *Registry, host string) (*Handler, error) {
	index, err := template.ParseFS(templatesFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}

	return &Handler{
		e:        e,
		registry: registry,
		host:     host,
		index:    index,
	}, nil
}

func (h *Handler) Bind() {
	h.e.GET("/", h.indexHandler)

	api := h.e.Group("/api/sessions")
	api.POST("", h.createHandler)
	api.GET("/:id", h.snapshotHandler)
	api.POST("/:id/search", h.searchHandler)
	api.POST("/:id/more", h.moreHandler)
	api.GET("/:id/events", h.eventsHandler)
	api.DELETE("/:id", h.closeHandler)
	api.POST("/:id/close", h.closeHandler)
}

type indexData struct {
	Query string
	Host  string
}

func (h *Handler) indexHandler(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return h.index.Execute(c.Response(), indexData{
		Query: c.QueryParam("q"),
		Host:  h.host,
	})
}

func (h *Handler) createHandler(c echo.Context) error {
	id, sess := h.registry.Create()
	return c.JSON(http.StatusCreated, NewSnapshotDTO(id, h.host, sess.Snapshot()))
}

func (h *Handler) snapshotHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sess, ok := h.registry.Get(id)
	if !ok {
		return errSessionNotFound
	}
	return c.JSON(http.StatusOK, NewSnapshotDTO(id, h.host, sess.Snapshot()))
}

func (h *Handler) searchHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sess, ok := h.registry.Get(id)
	if !ok {
		return errSessionNotFound
	}

	var req SearchRequest
	if err := c.Bind(&req); err != nil {
		return apperr.NewValidationWrap("invalid search request", err)
	}

	sess.Submit(req.Query)
	return c.JSON(http.StatusAccepted, NewSnapshotDTO(id, h.host, sess.Snapshot()))
}

func (h *Handler) moreHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sess, ok := h.registry.Get(id)
	if !ok {
		return errSessionNotFound
	}

	sess.LoadMore()
	return c.JSON(http.StatusAccepted, NewSnapshotDTO(id, h.host, sess.Snapshot()))
}

func (h *Handler) eventsHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	sess, detach, ok := h.registry.Attach(id)
	if !ok {
		return errSessionNotFound
	}
	defer detach()

	updates, unsubscribe := sess.Subscribe()
	defer unsubscribe()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := h.writeEvent(w, id, sess.Snapshot()); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-updates:
			if !ok {
				slog.Debug("Session closed, ending event stream", "session", id)
				return nil
			}
			if err := h.writeEvent(w, id, snap); err != nil {
				slog.Debug("Event stream write failed", "session", id, "error", err)
				return nil
			}
		}
	}
}

func (h *Handler) closeHandler(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if !h.registry.Close(id) {
		return errSessionNotFound
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) writeEvent(w *echo.Response, id uuid.UUID, snap session.Snapshot) error {
	data, err := json.Marshal(NewSnapshotDTO(id, h.host, snap))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	w.Flush()
	return nil
}

var errSessionNotFound = echo.NewHTTPError(http.StatusNotFound, "session not found")

func parseID(c echo.Context) (uuid.UUID, error) {
	raw := c.Param("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperr.NewValidationWrap("invalid session id", err)
	}
	return id, nil
}
