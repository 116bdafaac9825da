package render

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

type renderCall struct {
	ID     string
	Source string
	Config LibraryConfig
}

// fakeRenderer accepts any source that starts with "graph" and rejects the
// rest. Delays can be set per source to force overlapping completions.
type fakeRenderer struct {
	mu     sync.Mutex
	calls  []renderCall
	delays map[string]time.Duration
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Render(ctx context.Context, id, source string, cfg LibraryConfig) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, renderCall{ID: id, Source: source, Config: cfg})
	delay := f.delays[source]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if !strings.HasPrefix(source, "graph") {
		return "", &SyntaxError{Message: "Parse error on line 1: " + source}
	}
	return `<svg id="` + id + `" width="100" height="50"><!--` + source + `--></svg>`, nil
}

func (f *fakeRenderer) Calls() []renderCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]renderCall(nil), f.calls...)
}

func newTestCanvas(t *testing.T, r Renderer, settle time.Duration) *Canvas {
	t.Helper()
	c := NewCanvas(context.Background(), r, settle)
	t.Cleanup(c.Close)
	return c
}

func TestCanvasStartsIdle(t *testing.T) {
	c := newTestCanvas(t, &fakeRenderer{}, 0)
	snap := c.Snapshot()
	if snap.State != StateIdle {
		t.Errorf("state = %q, want idle", snap.State)
	}
	if snap.Status != StatusWaiting {
		t.Errorf("status = %q, want %q", snap.Status, StatusWaiting)
	}
}

func TestCanvasRendersAcceptedSource(t *testing.T) {
	r := &fakeRenderer{}
	c := newTestCanvas(t, r, 0)

	c.Trigger("graph TD; A-->B;", DefaultOptions())
	c.Wait()

	snap := c.Snapshot()
	if snap.State != StateRendered {
		t.Fatalf("state = %q, want rendered", snap.State)
	}
	if snap.SVG == "" {
		t.Error("expected a non-empty graphic")
	}
	if snap.Error != "" || snap.ErrorBlock != "" {
		t.Errorf("expected no error, got %q", snap.Error)
	}
	if snap.Status != StatusRendered {
		t.Errorf("status = %q, want %q", snap.Status, StatusRendered)
	}
	if !snap.HasGraphic() {
		t.Error("HasGraphic() = false")
	}
}

func TestCanvasErrorsOnRejectedSource(t *testing.T) {
	r := &fakeRenderer{}
	c := newTestCanvas(t, r, 0)

	c.Trigger("graph TD; A-->B;", DefaultOptions())
	c.Wait()
	c.Trigger("not a diagram", DefaultOptions())
	c.Wait()

	snap := c.Snapshot()
	if snap.State != StateErrored {
		t.Fatalf("state = %q, want errored", snap.State)
	}
	if snap.SVG != "" {
		t.Error("expected graphic to be cleared")
	}
	if !strings.Contains(snap.Error, "Parse error on line 1") {
		t.Errorf("error = %q, want library message", snap.Error)
	}
	if !strings.Contains(snap.ErrorBlock, "Diagram Error:") {
		t.Errorf("error block missing title: %q", snap.ErrorBlock)
	}
	if snap.Status != StatusErrored {
		t.Errorf("status = %q, want %q", snap.Status, StatusErrored)
	}
}

func TestCanvasEmptySourceGoesIdle(t *testing.T) {
	r := &fakeRenderer{}
	c := newTestCanvas(t, r, 0)

	c.Trigger("graph TD; A-->B;", DefaultOptions())
	c.Wait()
	c.Trigger("   \n", DefaultOptions())
	c.Wait()

	snap := c.Snapshot()
	if snap.State != StateIdle {
		t.Errorf("state = %q, want idle", snap.State)
	}
	if snap.SVG != "" {
		t.Error("expected graphic to be cleared")
	}
	if len(r.Calls()) != 1 {
		t.Errorf("renderer called %d times, want 1", len(r.Calls()))
	}
}

func TestCanvasClearsGraphicWhileRendering(t *testing.T) {
	r := &fakeRenderer{delays: map[string]time.Duration{"graph LR; X-->Y;": 50 * time.Millisecond}}
	c := newTestCanvas(t, r, 0)

	c.Trigger("graph TD; A-->B;", DefaultOptions())
	c.Wait()

	c.Trigger("graph LR; X-->Y;", DefaultOptions())
	snap := c.Snapshot()
	if snap.State != StateRendering {
		t.Fatalf("state = %q, want rendering", snap.State)
	}
	if snap.SVG != "" {
		t.Error("previous graphic should be cleared when a cycle starts")
	}
	c.Wait()
}

func TestCanvasDiscardsStaleCompletion(t *testing.T) {
	r := &fakeRenderer{delays: map[string]time.Duration{
		"graph TD; slow;": 150 * time.Millisecond,
	}}
	c := newTestCanvas(t, r, 0)

	c.Trigger("graph TD; slow;", DefaultOptions())
	time.Sleep(20 * time.Millisecond)
	latest := c.Trigger("graph TD; fast;", DefaultOptions())
	c.Wait()

	snap := c.Snapshot()
	if snap.Seq != latest {
		t.Errorf("seq = %d, want %d", snap.Seq, latest)
	}
	if !strings.Contains(snap.SVG, "fast") {
		t.Errorf("displayed graphic belongs to a stale render: %q", snap.SVG)
	}
	if len(r.Calls()) != 2 {
		t.Errorf("renderer called %d times, want 2", len(r.Calls()))
	}
}

func TestCanvasSettleCoalescesBursts(t *testing.T) {
	r := &fakeRenderer{}
	c := newTestCanvas(t, r, 40*time.Millisecond)

	opts := DefaultOptions()
	c.Trigger("graph TD; A-->B;", opts)
	opts.Theme = ThemeDark
	c.Trigger("graph TD; A-->B;", opts)
	opts.Theme = ThemeForest
	c.Trigger("graph TD; A-->B;", opts)
	c.Wait()

	calls := r.Calls()
	if len(calls) != 1 {
		t.Fatalf("renderer called %d times, want 1", len(calls))
	}
	if calls[0].Config.Theme != ThemeForest {
		t.Errorf("rendered with theme %q, want forest", calls[0].Config.Theme)
	}
}

func TestCanvasUsesUniqueRenderIDs(t *testing.T) {
	r := &fakeRenderer{}
	c := newTestCanvas(t, r, 0)

	c.Trigger("graph TD; A;", DefaultOptions())
	c.Wait()
	c.Trigger("graph TD; B;", DefaultOptions())
	c.Wait()

	calls := r.Calls()
	if len(calls) != 2 {
		t.Fatalf("got %d calls, want 2", len(calls))
	}
	if calls[0].ID == calls[1].ID {
		t.Errorf("render ids should differ, both %q", calls[0].ID)
	}
	if !strings.HasPrefix(calls[0].ID, "mermaid-diagram-") {
		t.Errorf("unexpected id format %q", calls[0].ID)
	}
}

func TestCanvasNotifiesListeners(t *testing.T) {
	r := &fakeRenderer{}
	c := newTestCanvas(t, r, 0)

	var mu sync.Mutex
	var states []State
	c.OnChange(func(s Snapshot) {
		mu.Lock()
		states = append(states, s.State)
		mu.Unlock()
	})

	c.Trigger("graph TD; A;", DefaultOptions())
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	want := []State{StateRendering, StateRendered}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("states[%d] = %q, want %q", i, states[i], want[i])
		}
	}
}

func TestCanvasCloseDropsSettlingCycle(t *testing.T) {
	r := &fakeRenderer{}
	c := NewCanvas(context.Background(), r, time.Second)

	c.Trigger("graph TD; A;", DefaultOptions())
	c.Close()

	if len(r.Calls()) != 0 {
		t.Errorf("renderer called %d times after close, want 0", len(r.Calls()))
	}
}

func TestErrorBlockEscapesMessage(t *testing.T) {
	block := ErrorBlock(`Expecting 'SEMI', got '<script>'`)
	if strings.Contains(block, "<script>") {
		t.Errorf("error block not escaped: %s", block)
	}
	if !strings.Contains(block, "&lt;script&gt;") {
		t.Errorf("expected escaped markup, got %s", block)
	}
}
