package editor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ziadkadry99/vizlab/internal/assist"
	"github.com/ziadkadry99/vizlab/internal/export"
	"github.com/ziadkadry99/vizlab/internal/render"
	"github.com/ziadkadry99/vizlab/internal/snapshot"
	"github.com/ziadkadry99/vizlab/internal/workspace"
)

type textRequest struct {
	Text string `json:"text"`
}

// optionsRequest changes the options that are set; nil fields are left alone.
type optionsRequest struct {
	Theme                *render.Theme `json:"theme,omitempty"`
	FontFamily           *string       `json:"font_family,omitempty"`
	FlowchartUseMaxWidth *bool         `json:"flowchart_use_max_width,omitempty"`
}

type choicesResponse struct {
	Themes  []render.Theme `json:"themes"`
	Fonts   []render.Font  `json:"fonts"`
	Current render.Options `json:"current"`
}

type generateRequest struct {
	Description string `json:"description"`
}

type generateResponse struct {
	Code string `json:"code"`
}

type repairResponse struct {
	Code            string        `json:"code,omitempty"`
	Explanation     string        `json:"explanation,omitempty"`
	ExplanationHTML string        `json:"explanation_html,omitempty"`
	Status          assist.Status `json:"status"`
	Error           string        `json:"error,omitempty"`
}

type suggestRequest struct {
	CodePrefix string `json:"code_prefix"`
}

type suggestResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (e *Editor) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, e.ws.State())
}

func (e *Editor) handleSetText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e.ws.SetText(req.Text)
	writeJSON(w, http.StatusAccepted, e.ws.State())
}

func (e *Editor) handleChoices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, choicesResponse{
		Themes:  render.Themes,
		Fonts:   render.Fonts,
		Current: e.ws.State().Options,
	})
}

func (e *Editor) handleSetOptions(w http.ResponseWriter, r *http.Request) {
	var req optionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := e.applyOptions(r.Context(), req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, e.ws.State())
}

// applyOptions applies each set option in turn; every change renders once.
func (e *Editor) applyOptions(ctx context.Context, req optionsRequest) error {
	if req.Theme != nil {
		if err := e.ws.SetTheme(ctx, *req.Theme); err != nil {
			return err
		}
	}
	if req.FontFamily != nil {
		if err := e.ws.SetFontFamily(ctx, *req.FontFamily); err != nil {
			return err
		}
	}
	if req.FlowchartUseMaxWidth != nil {
		if err := e.ws.SetFlowchartUseMaxWidth(ctx, *req.FlowchartUseMaxWidth); err != nil {
			return err
		}
	}
	return nil
}

func (e *Editor) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	out, err := e.ws.Generate(r.Context(), req.Description)
	if err != nil {
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, generateResponse{Code: out.Code})
}

func (e *Editor) handleRepair(w http.ResponseWriter, r *http.Request) {
	out, status, err := e.ws.Repair(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), repairResponse{Status: status, Error: publicMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, repairResponse{
		Code:            out.RepairedCode,
		Explanation:     out.Explanation,
		ExplanationHTML: e.markdown.HTML(out.Explanation),
		Status:          status,
	})
}

func (e *Editor) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req suggestRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	out, err := e.ws.Suggest(r.Context(), req.CodePrefix)
	if err != nil {
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	suggestions := out.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	writeJSON(w, http.StatusOK, suggestResponse{Suggestions: suggestions})
}

func (e *Editor) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := e.ws.Save(r.Context()); err != nil {
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (e *Editor) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := e.ws.Load(r.Context()); err != nil {
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, e.ws.State())
}

func (e *Editor) handleExportSVG(w http.ResponseWriter, r *http.Request) {
	d, err := e.ws.ExportSVG()
	if err != nil {
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeDownload(w, d)
}

func (e *Editor) handleExportPNG(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	background := q.Get("background")
	if background == "" {
		background = e.background
	}
	var scale float64
	if s := q.Get("scale"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 || v > export.MaxScale {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("scale must be a number in (0, %g]", export.MaxScale))
			return
		}
		scale = v
	}

	d, err := e.ws.ExportPNG(background, scale)
	if err != nil {
		writeError(w, statusFor(err), publicMessage(err))
		return
	}
	writeDownload(w, d)
}

// statusFor maps workspace errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, assist.ErrEmptyInput), errors.Is(err, workspace.ErrEmptyText):
		return http.StatusBadRequest
	case errors.Is(err, snapshot.ErrNoSnapshot), errors.Is(err, export.ErrNoGraphic):
		return http.StatusNotFound
	case errors.Is(err, workspace.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, export.ErrTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, workspace.ErrAssistUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, assist.ErrFlowFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage hides provider details behind a generic message.
func publicMessage(err error) string {
	if errors.Is(err, assist.ErrFlowFailed) {
		return "the AI request failed"
	}
	return err.Error()
}

func writeDownload(w http.ResponseWriter, d export.Download) {
	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(d.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(d.Data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
