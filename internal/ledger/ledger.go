// Package ledger persists the meal history as a single serialized slot and
// derives daily aggregates from it.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vbonduro/mealcam/internal/domain"
)

// DefaultKey is the slot holding the serialized ledger.
const DefaultKey = "mealcam:meals"

// corruptSuffix names the slot a corrupt payload is copied to before the
// ledger is overwritten.
const corruptSuffix = ":corrupt"

// slotStore is the subset of store.SlotStore the ledger requires.
type slotStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Ledger is the meal history. Entries are kept newest-first by insertion and
// every mutation rewrites the whole collection.
type Ledger struct {
	slots  slotStore
	key    string
	loc    *time.Location
	now    func() time.Time
	logger *slog.Logger

	// mu serializes read-modify-write cycles within this process.
	mu sync.Mutex
}

type Option func(*Ledger)

// WithLocation sets the time zone whose calendar days scope date queries.
func WithLocation(loc *time.Location) Option {
	return func(l *Ledger) { l.loc = loc }
}

// WithClock replaces time.Now for timestamp assignment.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithKey stores the ledger under a different slot.
func WithKey(key string) Option {
	return func(l *Ledger) { l.key = key }
}

func New(slots slotStore, logger *slog.Logger, opts ...Option) *Ledger {
	l := &Ledger{
		slots:  slots,
		key:    DefaultKey,
		loc:    time.Local,
		now:    time.Now,
		logger: logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Location returns the time zone used for calendar-day boundaries.
func (l *Ledger) Location() *time.Location {
	return l.loc
}

// GetAll returns the full ledger, newest-first. Missing, unreadable or corrupt
// data yields an empty ledger rather than an error.
func (l *Ledger) GetAll(ctx context.Context) []domain.MealEntry {
	entries, _, _, err := l.load(ctx)
	if err != nil {
		l.logger.Warn("ledger unreadable, treating as empty", "key", l.key, "error", err)
		return []domain.MealEntry{}
	}
	return entries
}

// Verify reports domain.ErrCorruptLedger when stored data cannot be decoded and
// a *domain.PersistenceError when it cannot be read. An absent ledger is valid.
func (l *Ledger) Verify(ctx context.Context) error {
	_, _, _, err := l.load(ctx)
	return err
}

// Append finalizes draft with a fresh ID and the current time, inserts it at
// the head of the ledger and persists the result. On error nothing was saved.
func (l *Ledger) Append(ctx context.Context, draft domain.MealDraft) (domain.MealEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.loadForWrite(ctx, "append")
	if err != nil {
		return domain.MealEntry{}, err
	}

	id, err := newID(entries)
	if err != nil {
		return domain.MealEntry{}, &domain.PersistenceError{Op: "append", Err: err}
	}

	d := draft.Normalize()
	entry := domain.MealEntry{
		ID:        id,
		Name:      d.Name,
		Calories:  d.Calories,
		Proteins:  d.Proteins,
		Fats:      d.Fats,
		Carbs:     d.Carbs,
		Timestamp: l.now().UTC(),
		ImageURL:  d.ImageURL,
	}

	if err := l.save(ctx, "append", slices.Insert(entries, 0, entry)); err != nil {
		return domain.MealEntry{}, err
	}

	l.logger.Debug("meal appended", "id", entry.ID, "name", entry.Name, "calories", entry.Calories)
	return entry, nil
}

// Remove deletes the entry with the given id. It reports false, without
// error, when no such entry exists.
func (l *Ledger) Remove(ctx context.Context, id string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.loadForWrite(ctx, "remove")
	if err != nil {
		return false, err
	}

	idx := slices.IndexFunc(entries, func(e domain.MealEntry) bool { return e.ID == id })
	if idx < 0 {
		return false, nil
	}

	if err := l.save(ctx, "remove", slices.Delete(entries, idx, idx+1)); err != nil {
		return false, err
	}

	l.logger.Debug("meal removed", "id", id)
	return true, nil
}

// Clear deletes the whole ledger. Clearing an empty ledger succeeds.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.slots.Delete(ctx, l.key); err != nil {
		return &domain.PersistenceError{Op: "clear", Err: err}
	}

	l.logger.Info("ledger cleared", "key", l.key)
	return nil
}

// GetByDate returns the entries whose timestamp falls on day's calendar date
// in the ledger's location, oldest-first.
func (l *Ledger) GetByDate(ctx context.Context, day time.Time) []domain.MealEntry {
	return EntriesOn(l.GetAll(ctx), day, l.loc)
}

// load reads and decodes the ledger. Records that fail validation are
// dropped and counted. raw is the stored payload, returned so callers can
// preserve it.
func (l *Ledger) load(ctx context.Context) (entries []domain.MealEntry, raw []byte, dropped int, err error) {
	raw, found, err := l.slots.Get(ctx, l.key)
	if err != nil {
		return nil, nil, 0, &domain.PersistenceError{Op: "read", Err: err}
	}
	if !found || len(raw) == 0 {
		return []domain.MealEntry{}, nil, 0, nil
	}

	var stored []domain.MealEntry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, raw, 0, fmt.Errorf("%w: %v", domain.ErrCorruptLedger, err)
	}

	entries = make([]domain.MealEntry, 0, len(stored))
	for _, e := range stored {
		if !e.Valid() {
			l.logger.Warn("skipping invalid ledger record", "id", e.ID, "timestamp", e.Timestamp)
			dropped++
			continue
		}
		entries = append(entries, e.Sanitized())
	}
	return entries, raw, dropped, nil
}

// loadForWrite loads the ledger ahead of a mutation. When the payload is
// corrupt, or holds records that will not survive the rewrite, it is copied
// aside first. A read failure aborts the mutation so stored data is never
// overwritten blindly.
func (l *Ledger) loadForWrite(ctx context.Context, op string) ([]domain.MealEntry, error) {
	entries, raw, dropped, err := l.load(ctx)
	if err != nil {
		var perr *domain.PersistenceError
		if errors.As(err, &perr) {
			return nil, &domain.PersistenceError{Op: op, Err: perr.Err}
		}
		entries = []domain.MealEntry{}
	} else if dropped == 0 {
		return entries, nil
	}

	quarantine := l.key + corruptSuffix
	if qerr := l.slots.Put(ctx, quarantine, raw); qerr != nil {
		return nil, &domain.PersistenceError{Op: op, Err: fmt.Errorf("quarantine corrupt ledger: %w", qerr)}
	}
	l.logger.Warn("corrupt ledger data set aside", "key", l.key, "quarantine", quarantine,
		"bytes", len(raw), "dropped_records", dropped, "error", err)
	return entries, nil
}

func (l *Ledger) save(ctx context.Context, op string, entries []domain.MealEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return &domain.PersistenceError{Op: op, Err: fmt.Errorf("encode ledger: %w", err)}
	}
	if err := l.slots.Put(ctx, l.key, data); err != nil {
		return &domain.PersistenceError{Op: op, Err: err}
	}
	return nil
}

// newID returns a time-ordered UUID not already present in entries.
func newID(entries []domain.MealEntry) (string, error) {
	for {
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
		s := id.String()
		if !slices.ContainsFunc(entries, func(e domain.MealEntry) bool { return e.ID == s }) {
			return s, nil
		}
	}
}
