package render

import (
	"context"
	"errors"
	"html"
	"log"
	"strings"
	"sync"
	"time"
)

// State is the phase of the current render cycle.
type State string

const (
	StateIdle      State = "idle"
	StateRendering State = "rendering"
	StateRendered  State = "rendered"
	StateErrored   State = "errored"
)

// Status lines shown under the visualization pane.
const (
	StatusWaiting   = "Waiting for code..."
	StatusRendering = "Rendering diagram..."
	StatusRendered  = "Diagram rendered successfully."
	StatusErrored   = "Diagram has errors."
)

// DefaultSettle is the pause before invoking the library, which coalesces
// bursts of option changes.
const DefaultSettle = 50 * time.Millisecond

// Snapshot is the observable state of the canvas after a transition.
type Snapshot struct {
	State      State     `json:"state"`
	Seq        uint64    `json:"seq"`
	RenderID   string    `json:"render_id,omitempty"`
	SVG        string    `json:"svg,omitempty"`
	Error      string    `json:"error,omitempty"`
	ErrorBlock string    `json:"error_block,omitempty"`
	Status     string    `json:"status"`
	Options    Options   `json:"options"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasGraphic reports whether a rendered graphic is available.
func (s Snapshot) HasGraphic() bool {
	return s.State == StateRendered && s.SVG != ""
}

// Listener observes canvas transitions. Listeners run while the canvas
// lock is held: they must not block or call back into the Canvas.
type Listener func(Snapshot)

// Canvas drives render cycles and holds the latest result.
//
// Each Trigger starts a new cycle tagged with an increasing sequence number.
// A cycle that is superseded while settling never reaches the library, and a
// cycle that completes after a newer one started is discarded, so the
// displayed result always belongs to the most recently started cycle.
type Canvas struct {
	renderer Renderer
	settle   time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	seq       uint64
	snap      Snapshot
	listeners []Listener
}

// NewCanvas creates a canvas that renders with r. Cycles stop when ctx is
// cancelled or Close is called.
func NewCanvas(ctx context.Context, r Renderer, settle time.Duration) *Canvas {
	ctx, cancel := context.WithCancel(ctx)
	return &Canvas{
		renderer: r,
		settle:   settle,
		ctx:      ctx,
		cancel:   cancel,
		snap: Snapshot{
			State:     StateIdle,
			Status:    StatusWaiting,
			UpdatedAt: time.Now().UTC(),
		},
	}
}

// OnChange registers a listener for every transition.
func (c *Canvas) OnChange(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Snapshot returns the current state.
func (c *Canvas) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap
}

// Trigger starts a render cycle for source with opts and returns its
// sequence number. An empty source puts the canvas back to idle.
func (c *Canvas) Trigger(source string, opts Options) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	seq := c.seq

	if strings.TrimSpace(source) == "" {
		c.setLocked(Snapshot{State: StateIdle, Seq: seq, Status: StatusWaiting, Options: opts})
		return seq
	}

	c.setLocked(Snapshot{State: StateRendering, Seq: seq, Status: StatusRendering, Options: opts})

	c.wg.Add(1)
	go c.run(seq, source, opts)
	return seq
}

func (c *Canvas) run(seq uint64, source string, opts Options) {
	defer c.wg.Done()

	if c.settle > 0 {
		timer := time.NewTimer(c.settle)
		select {
		case <-c.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	if !c.current(seq) {
		return
	}

	id := NewRenderID()
	svg, err := c.renderer.Render(c.ctx, id, source, opts.Config())

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		log.Printf("canvas: discarding result of stale render %d (latest %d)", seq, c.seq)
		return
	}
	if c.ctx.Err() != nil {
		return
	}

	if err != nil {
		msg := errorMessage(err)
		log.Printf("canvas: %s render %s failed: %s", c.renderer.Name(), id, msg)
		c.setLocked(Snapshot{
			State:      StateErrored,
			Seq:        seq,
			RenderID:   id,
			Error:      msg,
			ErrorBlock: ErrorBlock(msg),
			Status:     StatusErrored,
			Options:    opts,
		})
		return
	}

	c.setLocked(Snapshot{
		State:    StateRendered,
		Seq:      seq,
		RenderID: id,
		SVG:      svg,
		Status:   StatusRendered,
		Options:  opts,
	})
}

func (c *Canvas) current(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq == c.seq
}

func (c *Canvas) setLocked(s Snapshot) {
	s.UpdatedAt = time.Now().UTC()
	c.snap = s
	for _, l := range c.listeners {
		l(s)
	}
}

// Wait blocks until every started cycle has finished or been dropped.
func (c *Canvas) Wait() {
	c.wg.Wait()
}

// Close abandons pending cycles and waits for in-flight ones to return.
func (c *Canvas) Close() {
	c.cancel()
	c.wg.Wait()
}

func errorMessage(err error) string {
	var syn *SyntaxError
	if errors.As(err, &syn) {
		return syn.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Error rendering diagram."
}

// ErrorBlock formats a render error for inline display in place of the graphic.
func ErrorBlock(msg string) string {
	return `<div class="diagram-error"><p class="diagram-error-title">Diagram Error:</p><pre class="diagram-error-message">` +
		html.EscapeString(msg) + `</pre></div>`
}
