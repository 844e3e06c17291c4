// ABOUTME: View-state controller for the diary screen.
// ABOUTME: Keeps the entry list, loading and deleting flags, and form buffers in step with the store.
package diary

import (
	"context"
	"sync"

	"github.com/2389-research/diary/internal/logging"
	"github.com/2389-research/diary/internal/models"
	"github.com/2389-research/diary/internal/storage"
)

// Form holds the three input buffers of the entry form.
type Form struct {
	Title   string
	Mood    string
	Content string
}

// IsComplete reports whether every field is non-empty.
func (f Form) IsComplete() bool {
	return f.Title != "" && f.Mood != "" && f.Content != ""
}

// State is a point-in-time copy of the controller state.
type State struct {
	Entries        []*models.DiaryEntry
	InitialLoading bool
	Deleting       map[string]bool
	Form           Form
}

// ConfirmFunc asks the user whether the entry with the given id should be deleted.
type ConfirmFunc func(id string) bool

// Controller mediates between user actions and an EntryStore.
// Its methods are safe to call from concurrent goroutines; store calls run unlocked.
type Controller struct {
	store  storage.EntryStore
	log    logging.Logger
	userID string

	mu             sync.Mutex
	entries        []*models.DiaryEntry
	initialLoading bool
	deleting       map[string]int
	form           Form
}

// Option configures a Controller.
type Option func(*Controller)

// WithUserID overrides the owner written on new entries.
func WithUserID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.userID = id
		}
	}
}

// New creates a controller over store. Until the first Mount finishes the
// controller reports InitialLoading.
func New(store storage.EntryStore, log logging.Logger, opts ...Option) *Controller {
	if log == nil {
		log = logging.Discard()
	}
	c := &Controller{
		store:          store,
		log:            log.With("component", "diary"),
		userID:         models.DefaultUserID,
		entries:        []*models.DiaryEntry{},
		initialLoading: true,
		deleting:       make(map[string]int),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount performs the initial fetch of all entries.
func (c *Controller) Mount(ctx context.Context) Outcome {
	c.mu.Lock()
	c.initialLoading = true
	c.mu.Unlock()

	return c.fetch(ctx)
}

// Refresh re-runs the full list fetch without raising the initial-loading flag.
func (c *Controller) Refresh(ctx context.Context) Outcome {
	return c.fetch(ctx)
}

func (c *Controller) fetch(ctx context.Context) Outcome {
	entries, err := c.store.ListAll(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.initialLoading = false
	if err != nil {
		c.log.Error(ctx, "failed to fetch entries", "error", err)
		return failed(OpList, err)
	}
	if entries == nil {
		entries = []*models.DiaryEntry{}
	}
	c.entries = entries
	return ok(OpList)
}

// SetForm replaces the form buffers.
func (c *Controller) SetForm(f Form) {
	c.mu.Lock()
	c.form = f
	c.mu.Unlock()
}

// Form returns the current form buffers.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// Submit inserts the form contents as a new entry, then clears the form and
// refetches the list. On failure the form is kept so typed input is not lost.
// Field presence is the caller's responsibility.
func (c *Controller) Submit(ctx context.Context) Outcome {
	c.mu.Lock()
	form := c.form
	c.mu.Unlock()

	draft := models.NewDraft(form.Title, form.Mood, form.Content, c.userID)
	if err := c.store.Insert(ctx, draft); err != nil {
		c.log.Error(ctx, "failed to create entry", "error", err)
		return failed(OpSubmit, err)
	}

	c.mu.Lock()
	c.form = Form{}
	c.mu.Unlock()

	// The inserted row is only shown once the store returns it. A failed
	// refetch is logged by fetch and leaves the previous list in place.
	c.fetch(ctx)
	return ok(OpSubmit)
}

// RequestDelete asks confirm before deleting id. A declined prompt changes nothing.
func (c *Controller) RequestDelete(ctx context.Context, id string, confirm ConfirmFunc) Outcome {
	if confirm == nil || !confirm(id) {
		return Outcome{Op: OpDelete, Status: StatusDeclined}
	}
	return c.Delete(ctx, id)
}

// Delete removes id from the store and, on success, from the in-memory list
// without refetching. The id is reported as deleting while any call for it is in flight.
func (c *Controller) Delete(ctx context.Context, id string) Outcome {
	c.mu.Lock()
	c.deleting[id]++
	c.mu.Unlock()

	err := c.store.DeleteByID(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleting[id] <= 1 {
		delete(c.deleting, id)
	} else {
		c.deleting[id]--
	}
	if err != nil {
		c.log.Error(ctx, "failed to delete entry", "id", id, "error", err)
		return failed(OpDelete, err)
	}

	kept := make([]*models.DiaryEntry, 0, len(c.entries))
	for _, e := range c.entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	c.entries = kept
	return ok(OpDelete)
}

// IsDeleting reports whether a delete of id is in flight.
func (c *Controller) IsDeleting(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.deleting[id]
	return busy
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries := make([]*models.DiaryEntry, len(c.entries))
	copy(entries, c.entries)

	deleting := make(map[string]bool, len(c.deleting))
	for id := range c.deleting {
		deleting[id] = true
	}

	return State{
		Entries:        entries,
		InitialLoading: c.initialLoading,
		Deleting:       deleting,
		Form:           c.form,
	}
}
