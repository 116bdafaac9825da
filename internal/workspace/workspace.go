// Package workspace holds the editor session: the diagram text, the
// rendering options, the render loop and the notices produced by user
// actions. One Workspace serves every connected page.
package workspace

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ziadkadry99/vizlab/internal/assist"
	"github.com/ziadkadry99/vizlab/internal/debounce"
	"github.com/ziadkadry99/vizlab/internal/export"
	"github.com/ziadkadry99/vizlab/internal/render"
	"github.com/ziadkadry99/vizlab/internal/snapshot"
)

// DefaultDebounce is the quiet period between the last edit and a render.
const DefaultDebounce = 500 * time.Millisecond

var (
	// ErrBusy is returned for actions that are unavailable while a render
	// cycle is in progress.
	ErrBusy = errors.New("workspace: a render is in progress")
	// ErrEmptyText is returned when saving an empty diagram.
	ErrEmptyText = errors.New("workspace: diagram text is empty")
	// ErrAssistUnavailable is returned by the AI actions when no provider
	// is configured.
	ErrAssistUnavailable = errors.New("workspace: no AI provider configured")
)

// subscriberBuffer bounds the events queued for one subscriber.
const subscriberBuffer = 64

// Config holds the collaborators of a Workspace.
type Config struct {
	Canvas *render.Canvas
	Store  *snapshot.Store
	// Assistant may be nil, in which case the AI actions fail with
	// ErrAssistUnavailable.
	Assistant *assist.Assistant
	Debounce  time.Duration
	// PNGScale is the default raster scale for PNG export.
	PNGScale float64
}

// Workspace coordinates editing, rendering, persistence and the AI flows.
type Workspace struct {
	canvas    *render.Canvas
	store     *snapshot.Store
	assistant *assist.Assistant
	pngScale  float64
	debouncer *debounce.Debouncer[string]

	mu       sync.Mutex
	text     string
	rendered string
	opts     render.Options

	// restored is set when the workspace was seeded from a saved diagram.
	restored bool

	subsMu sync.Mutex
	subs   map[int]chan Event
	nextID int
}

// New creates a workspace and restores the last saved diagram, if any.
func New(ctx context.Context, cfg Config) (*Workspace, error) {
	if cfg.Canvas == nil || cfg.Store == nil {
		return nil, errors.New("workspace: canvas and store are required")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	w := &Workspace{
		canvas:    cfg.Canvas,
		store:     cfg.Store,
		assistant: cfg.Assistant,
		pngScale:  cfg.PNGScale,
		subs:      make(map[int]chan Event),
	}
	w.debouncer = debounce.New(ctx, cfg.Debounce, w.renderSettled)
	w.canvas.OnChange(w.publishCanvas)

	opts, err := w.store.LoadOptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading options: %w", err)
	}
	w.opts = opts

	snap, err := w.store.Load(ctx)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshot):
	case err != nil:
		return nil, fmt.Errorf("restoring diagram: %w", err)
	default:
		w.mu.Lock()
		w.text = snap.Text
		w.rendered = snap.Text
		w.restored = true
		w.canvas.Trigger(w.rendered, w.opts)
		w.mu.Unlock()
	}
	return w, nil
}

// RestoreNotice returns the notice a newly opened page shows when the
// workspace started from a saved diagram.
func (w *Workspace) RestoreNotice() (Notice, bool) {
	if !w.restored {
		return Notice{}, false
	}
	return newNotice(VariantDefault, noticeRestored), true
}

// Close stops pending renders.
func (w *Workspace) Close() {
	w.debouncer.Stop()
	w.canvas.Close()

	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for id, ch := range w.subs {
		close(ch)
		delete(w.subs, id)
	}
}

// State returns the current state.
func (w *Workspace) State() State {
	w.mu.Lock()
	text, opts := w.text, w.opts
	w.mu.Unlock()

	snap := w.canvas.Snapshot()
	rendering := snap.State == render.StateRendering
	return State{
		Text:      text,
		Options:   opts,
		Canvas:    snap,
		CanSave:   text != "" && !rendering,
		CanExport: snap.HasGraphic(),
	}
}

// Subscribe returns a channel of events and a function that ends the
// subscription. Events are dropped for a subscriber that falls behind.
func (w *Workspace) Subscribe() (<-chan Event, func()) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()

	id := w.nextID
	w.nextID++
	ch := make(chan Event, subscriberBuffer)
	w.subs[id] = ch

	return ch, func() {
		w.subsMu.Lock()
		defer w.subsMu.Unlock()
		if c, ok := w.subs[id]; ok {
			close(c)
			delete(w.subs, id)
		}
	}
}

func (w *Workspace) publish(ev Event) {
	w.subsMu.Lock()
	defer w.subsMu.Unlock()
	for id, ch := range w.subs {
		select {
		case ch <- ev:
		default:
			log.Printf("workspace: subscriber %d is behind, dropping %s event", id, ev.Kind)
		}
	}
}

// publishCanvas runs under the canvas lock.
func (w *Workspace) publishCanvas(s render.Snapshot) {
	w.publish(Event{Kind: EventCanvas, Canvas: &s})
}

func (w *Workspace) publishText() {
	w.mu.Lock()
	ts := TextState{Text: w.text, Options: w.opts}
	w.mu.Unlock()
	w.publish(Event{Kind: EventText, Text: &ts})
}

func newNotice(v Variant, n noticeText) Notice {
	return Notice{
		ID:          uuid.NewString(),
		Variant:     v,
		Title:       n.title,
		Description: n.description,
		CreatedAt:   time.Now().UTC(),
	}
}

func (w *Workspace) notify(v Variant, n noticeText) {
	notice := newNotice(v, n)
	w.publish(Event{Kind: EventNotice, Notice: &notice})
}

// SetText records an edit. The render follows once edits settle.
func (w *Workspace) SetText(text string) {
	w.mu.Lock()
	w.text = text
	w.mu.Unlock()
	w.debouncer.Push(text)
}

// replaceText sets text produced on the server side and tells every page.
func (w *Workspace) replaceText(text string) {
	w.SetText(text)
	w.publishText()
}

// renderSettled is the debouncer callback.
func (w *Workspace) renderSettled(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rendered = text
	w.canvas.Trigger(text, w.opts)
}

// setOption validates, persists and applies an option change, then starts
// exactly one render of the settled text.
func (w *Workspace) setOption(ctx context.Context, apply func(*render.Options), persist func(context.Context) error) error {
	w.mu.Lock()
	next := w.opts
	apply(&next)
	if err := next.Validate(); err != nil {
		w.mu.Unlock()
		return err
	}
	if err := persist(ctx); err != nil {
		w.mu.Unlock()
		return err
	}
	w.opts = next
	w.canvas.Trigger(w.rendered, next)
	w.mu.Unlock()

	w.publishText()
	return nil
}

// SetTheme switches the diagram theme.
func (w *Workspace) SetTheme(ctx context.Context, theme render.Theme) error {
	err := w.setOption(ctx,
		func(o *render.Options) { o.Theme = theme },
		func(ctx context.Context) error { return w.store.SetTheme(ctx, theme) },
	)
	if err != nil {
		return err
	}
	w.notify(VariantDefault, noticeTheme(string(theme)))
	return nil
}

// SetFontFamily switches the diagram font.
func (w *Workspace) SetFontFamily(ctx context.Context, font string) error {
	err := w.setOption(ctx,
		func(o *render.Options) { o.FontFamily = font },
		func(ctx context.Context) error { return w.store.SetFontFamily(ctx, font) },
	)
	if err != nil {
		return err
	}
	w.notify(VariantDefault, noticeFont(font))
	return nil
}

// SetFlowchartUseMaxWidth toggles whether flowcharts fit the available width.
func (w *Workspace) SetFlowchartUseMaxWidth(ctx context.Context, on bool) error {
	err := w.setOption(ctx,
		func(o *render.Options) { o.FlowchartUseMaxWidth = on },
		func(ctx context.Context) error { return w.store.SetFlowchartUseMaxWidth(ctx, on) },
	)
	if err != nil {
		return err
	}
	w.notify(VariantDefault, noticeMaxWidth(on))
	return nil
}

// Save persists the current text and options.
func (w *Workspace) Save(ctx context.Context) error {
	if w.canvas.Snapshot().State == render.StateRendering {
		return ErrBusy
	}
	w.mu.Lock()
	text, opts := w.text, w.opts
	w.mu.Unlock()
	if text == "" {
		return ErrEmptyText
	}

	// Render what is being saved without waiting for the quiet period.
	w.debouncer.Flush()

	if err := w.store.Save(ctx, text, opts); err != nil {
		return err
	}
	w.notify(VariantDefault, noticeSaved)
	return nil
}

// Load replaces the text and options with the saved ones. When nothing was
// saved the state is left untouched and a destructive notice is emitted.
func (w *Workspace) Load(ctx context.Context) error {
	if w.canvas.Snapshot().State == render.StateRendering {
		return ErrBusy
	}
	snap, err := w.store.Load(ctx)
	if errors.Is(err, snapshot.ErrNoSnapshot) {
		w.notify(VariantDestructive, noticeLoadError)
		return err
	}
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.opts = snap.Options
	w.mu.Unlock()
	w.replaceText(snap.Text)
	w.notify(VariantDefault, noticeLoaded)
	return nil
}

// Generate replaces the text with a diagram generated from description.
func (w *Workspace) Generate(ctx context.Context, description string) (*assist.GenerateOutput, error) {
	if strings.TrimSpace(description) == "" {
		w.notify(VariantDestructive, noticeEmptyPrompt)
		return nil, assist.ErrEmptyInput
	}
	if w.assistant == nil {
		w.notify(VariantDestructive, noticeAssistDisabled)
		return nil, ErrAssistUnavailable
	}

	out, err := w.assistant.Generate(ctx, assist.GenerateInput{Description: description})
	if err != nil {
		log.Printf("workspace: generate: %v", err)
		w.notify(VariantDestructive, noticeGenerateError)
		return nil, err
	}
	w.replaceText(out.Code)
	w.notify(VariantDefault, noticeGenerated)
	return out, nil
}

// Repair runs the repair flow over the current text. The returned status
// is always set, including on failure.
func (w *Workspace) Repair(ctx context.Context) (*assist.RepairOutput, assist.Status, error) {
	if w.assistant == nil {
		w.notify(VariantDestructive, noticeAssistDisabled)
		return nil, assist.RepairStatus(nil, ErrAssistUnavailable), ErrAssistUnavailable
	}

	w.mu.Lock()
	text := w.text
	w.mu.Unlock()

	out, err := w.assistant.Repair(ctx, assist.RepairInput{Code: text})
	status := assist.RepairStatus(out, err)
	if err != nil {
		log.Printf("workspace: repair: %v", err)
		w.notify(VariantDestructive, noticeRepairError)
		return nil, status, err
	}

	w.replaceText(out.RepairedCode)
	if out.Explanation != "" {
		w.notify(VariantDefault, noticeRepaired(out.Explanation))
	} else {
		w.notify(VariantDefault, noticeRepairChecked)
	}
	return out, status, nil
}

// Suggest returns completions for prefix, or for the current text when
// prefix is empty. The text is not modified.
func (w *Workspace) Suggest(ctx context.Context, prefix string) (*assist.SuggestOutput, error) {
	if w.assistant == nil {
		w.notify(VariantDestructive, noticeAssistDisabled)
		return nil, ErrAssistUnavailable
	}
	if prefix == "" {
		w.mu.Lock()
		prefix = w.text
		w.mu.Unlock()
	}

	out, err := w.assistant.Suggest(ctx, assist.SuggestInput{CodePrefix: prefix})
	if err != nil {
		log.Printf("workspace: suggest: %v", err)
		w.notify(VariantDestructive, noticeSuggestError)
		return nil, err
	}
	return out, nil
}

// exportable returns the current graphic, or an error when export is not
// available right now.
func (w *Workspace) exportable() (string, error) {
	snap := w.canvas.Snapshot()
	if snap.State == render.StateRendering {
		return "", ErrBusy
	}
	if !snap.HasGraphic() {
		return "", export.ErrNoGraphic
	}
	return snap.SVG, nil
}

// ExportSVG returns the rendered graphic as diagram.svg.
func (w *Workspace) ExportSVG() (export.Download, error) {
	graphic, err := w.exportable()
	if errors.Is(err, ErrBusy) {
		return export.Download{}, err
	}
	if err == nil {
		var d export.Download
		if d, err = export.SVG(graphic); err == nil {
			w.notify(VariantDefault, noticeExportedSVG)
			return d, nil
		}
	}
	w.notify(VariantDestructive, noticeNoExport)
	return export.Download{}, err
}

// ExportPNG rasterises the rendered graphic over background. A zero scale
// uses the configured default.
func (w *Workspace) ExportPNG(background string, scale float64) (export.Download, error) {
	graphic, err := w.exportable()
	if errors.Is(err, ErrBusy) {
		return export.Download{}, err
	}
	if err == nil {
		if scale == 0 {
			scale = w.pngScale
		}
		var d export.Download
		if d, err = export.PNG(graphic, export.PNGOptions{Scale: scale, Background: background}); err == nil {
			w.notify(VariantDefault, noticeExportedPNG)
			return d, nil
		}
		log.Printf("workspace: png export: %v", err)
	}
	w.notify(VariantDestructive, noticePNGError)
	return export.Download{}, err
}
