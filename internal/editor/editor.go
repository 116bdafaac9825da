// Package editor serves the browser editor: the page, its live WebSocket
// channel and the JSON API over a workspace.
package editor

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ziadkadry99/vizlab/internal/workspace"
)

// apiTimeout bounds API requests, which include provider round-trips.
const apiTimeout = 120 * time.Second

// Editor provides the editor page and its API.
type Editor struct {
	ws         *workspace.Workspace
	background string
	markdown   *markdownRenderer
}

// New creates an Editor over ws. background is the page colour used for PNG
// export when the page does not send one.
func New(ws *workspace.Workspace, background string) *Editor {
	if background == "" {
		background = "white"
	}
	return &Editor{
		ws:         ws,
		background: background,
		markdown:   newMarkdownRenderer(),
	}
}

// RegisterRoutes mounts all editor routes onto the given router.
func (e *Editor) RegisterRoutes(r chi.Router) {
	r.Get("/", e.ServeIndex)
	r.Get("/ws", e.handleLive)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(apiTimeout))

		r.Get("/state", e.handleState)
		r.Put("/text", e.handleSetText)
		r.Get("/options", e.handleChoices)
		r.Put("/options", e.handleSetOptions)

		r.Post("/generate", e.handleGenerate)
		r.Post("/repair", e.handleRepair)
		r.Post("/suggest", e.handleSuggest)

		r.Post("/save", e.handleSave)
		r.Post("/load", e.handleLoad)

		r.Get("/export/svg", e.handleExportSVG)
		r.Get("/export/png", e.handleExportPNG)
	})
}
