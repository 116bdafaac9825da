// Package snapshot persists the last saved diagram text and the rendering
// options in the local database.
package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/ziadkadry99/vizlab/internal/db"
	"github.com/ziadkadry99/vizlab/internal/render"
)

// Storage keys.
const (
	KeyText                 = "last-diagram-text"
	KeyTheme                = "diagram-theme"
	KeyFontFamily           = "diagram-font-family"
	KeyFlowchartUseMaxWidth = "flowchart-max-width-flag"
)

// ErrNoSnapshot is returned by Load when no diagram text has been saved.
var ErrNoSnapshot = errors.New("snapshot: no diagram saved")

// Snapshot is the persisted editor state.
type Snapshot struct {
	Text    string         `json:"text"`
	Options render.Options `json:"options"`
	SavedAt time.Time      `json:"saved_at"`
}

// Store reads and writes snapshot entries. Writes overwrite unconditionally.
type Store struct {
	db       *db.DB
	defaults render.Options
}

// NewStore creates a store. defaults fill in any option that was never
// saved or holds a value that is no longer offered.
func NewStore(d *db.DB, defaults render.Options) *Store {
	return &Store{db: d, defaults: defaults}
}

// execer is satisfied by both the database and a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

const upsertEntry = `INSERT INTO snapshot_entries (key, value, updated_at) VALUES (?, ?, ?)
	 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

type entry struct {
	key, value string
}

func putEntry(ctx context.Context, ex execer, e entry, now time.Time) error {
	if _, err := ex.ExecContext(ctx, upsertEntry, e.key, e.value, now); err != nil {
		return fmt.Errorf("saving %s: %w", e.key, err)
	}
	return nil
}

// put stores a single entry.
func (s *Store) put(ctx context.Context, key, value string) error {
	return putEntry(ctx, s.db, entry{key, value}, time.Now().UTC())
}

// putAll stores entries in one transaction: either all are written or none.
func (s *Store) putAll(ctx context.Context, entries ...entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning snapshot write: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	for _, e := range entries {
		if err := putEntry(ctx, tx, e, now); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing snapshot write: %w", err)
	}
	return nil
}

func optionEntries(opts render.Options) []entry {
	return []entry{
		{KeyTheme, string(opts.Theme)},
		{KeyFontFamily, opts.FontFamily},
		{KeyFlowchartUseMaxWidth, strconv.FormatBool(opts.FlowchartUseMaxWidth)},
	}
}

// get returns the value for key and whether it exists.
func (s *Store) get(ctx context.Context, key string) (string, time.Time, bool, error) {
	var value string
	var updated time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM snapshot_entries WHERE key = ?`, key,
	).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return "", time.Time{}, false, nil
	}
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("reading %s: %w", key, err)
	}
	return value, updated, true, nil
}

// SaveText stores the diagram text.
func (s *Store) SaveText(ctx context.Context, text string) error {
	return s.put(ctx, KeyText, text)
}

// SaveOptions stores all three rendering options atomically.
func (s *Store) SaveOptions(ctx context.Context, opts render.Options) error {
	return s.putAll(ctx, optionEntries(opts)...)
}

// Save stores the text and the options atomically.
func (s *Store) Save(ctx context.Context, text string, opts render.Options) error {
	return s.putAll(ctx, append([]entry{{KeyText, text}}, optionEntries(opts)...)...)
}

func (s *Store) SetTheme(ctx context.Context, theme render.Theme) error {
	return s.put(ctx, KeyTheme, string(theme))
}

func (s *Store) SetFontFamily(ctx context.Context, font string) error {
	return s.put(ctx, KeyFontFamily, font)
}

func (s *Store) SetFlowchartUseMaxWidth(ctx context.Context, on bool) error {
	return s.put(ctx, KeyFlowchartUseMaxWidth, strconv.FormatBool(on))
}

// Load returns the saved text with the saved options. It returns
// ErrNoSnapshot when no non-empty text was saved.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	text, savedAt, ok, err := s.get(ctx, KeyText)
	if err != nil {
		return nil, err
	}
	if !ok || text == "" {
		return nil, ErrNoSnapshot
	}
	opts, err := s.LoadOptions(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Text: text, Options: opts, SavedAt: savedAt}, nil
}

// LoadOptions returns the saved options, falling back to the defaults per
// key.
func (s *Store) LoadOptions(ctx context.Context) (render.Options, error) {
	opts := s.defaults

	theme, _, ok, err := s.get(ctx, KeyTheme)
	if err != nil {
		return opts, err
	}
	if ok {
		if render.ValidTheme(render.Theme(theme)) {
			opts.Theme = render.Theme(theme)
		} else {
			log.Printf("snapshot: ignoring unknown saved theme %q", theme)
		}
	}

	font, _, ok, err := s.get(ctx, KeyFontFamily)
	if err != nil {
		return opts, err
	}
	if ok {
		if render.ValidFont(font) {
			opts.FontFamily = font
		} else {
			log.Printf("snapshot: ignoring unknown saved font family %q", font)
		}
	}

	flag, _, ok, err := s.get(ctx, KeyFlowchartUseMaxWidth)
	if err != nil {
		return opts, err
	}
	if ok {
		if on, err := strconv.ParseBool(flag); err == nil {
			opts.FlowchartUseMaxWidth = on
		}
	}

	return opts, nil
}
