// Package autosave implements the debounced persistence loop behind the
// inline nooklet editor. One entry is edited at a time; content changes
// arm a debounce timer, and when it fires the buffer is flushed through a
// Saver. An empty buffer archives the entry instead of updating it.
//
// All state lives on a single event-loop goroutine, so the "at most one
// in-flight save" invariant holds by construction.
package autosave

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

// State is the editor lifecycle phase.
type State int

const (
	// StateIdle means no entry is open for editing.
	StateIdle State = iota
	// StateEditing means an entry is open and its buffer matches the
	// last persisted value.
	StateEditing
	// StatePendingSave means the buffer has unsaved changes and the
	// debounce timer is (or was) armed.
	StatePendingSave
	// StateSaving means a save request is in flight.
	StateSaving
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateEditing:
		return "editing"
	case StatePendingSave:
		return "pending-save"
	case StateSaving:
		return "saving"
	default:
		return "unknown"
	}
}

// Saver persists editor buffers. client.Client satisfies it via a thin
// adapter; tests plug in fakes.
type Saver interface {
	// Update replaces the entry's content.
	Update(ctx context.Context, id, content string) error
	// Archive soft-deletes the entry.
	Archive(ctx context.Context, id string) error
}

// DefaultDebounce is how long the editor waits after the last keystroke
// before flushing.
const DefaultDebounce = 2 * time.Second

var (
	// ErrClosed is returned by all methods after Close.
	ErrClosed = errors.New("autosave: editor closed")
	// ErrEditing is returned by BeginEdit when an entry is already open.
	// Callers must FinishEdit the current entry first.
	ErrEditing = errors.New("autosave: another entry is being edited")
)

// Snapshot is a point-in-time copy of the editor state, for UIs and tests.
type Snapshot struct {
	State   State
	EntryID string
	Content string
	Cursor  int
	// Dirty reports whether the trimmed buffer differs from the trimmed
	// last-saved value, i.e. whether a flush would hit the network.
	Dirty bool
	// SavedAt is the completion time of the last successful save, zero
	// if none has happened for this entry.
	SavedAt time.Time
	// Err is the message of the last failed save, cleared on the next
	// edit or successful flush.
	Err string
}

// Option customizes an Editor.
type Option func(*Editor)

// WithDebounce overrides DefaultDebounce. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(e *Editor) {
		if d > 0 {
			e.debounce = d
		}
	}
}

type saveResult struct {
	archived bool
	content  string
	err      error
}

// Editor runs the auto-save state machine. All exported methods are safe
// for concurrent use; they hand closures to the event loop.
type Editor struct {
	saver    Saver
	debounce time.Duration

	cmds chan func()
	quit chan struct{}
	done chan struct{}

	closeOnce sync.Once

	// Everything below is owned by the event loop goroutine.
	state     State
	entryID   string
	content   string
	cursor    int
	lastSaved string
	savedAt   time.Time
	errMsg    string

	timer  *time.Timer
	timerC <-chan time.Time

	saveDone    chan saveResult // non-nil while a save is in flight
	flushQueued bool            // debounce fired while saving
	waiters     []chan error    // FinishEdit callers blocked on the flush
}

// NewEditor starts the event loop and returns the editor. Callers must
// Close it to stop the loop.
func NewEditor(saver Saver, opts ...Option) *Editor {
	e := &Editor{
		saver:    saver,
		debounce: DefaultDebounce,
		cmds:     make(chan func()),
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	go e.run()
	return e
}

// BeginEdit opens an entry for inline editing. content is the entry's
// current persisted value; cursor is the caret position.
func (e *Editor) BeginEdit(id, content string, cursor int) error {
	ch := make(chan error, 1)
	if err := e.do(func() {
		if e.state != StateIdle {
			ch <- ErrEditing
			return
		}
		e.state = StateEditing
		e.entryID = id
		e.content = content
		e.cursor = cursor
		e.lastSaved = content
		e.savedAt = time.Time{}
		e.errMsg = ""
		ch <- nil
	}); err != nil {
		return err
	}
	return <-ch
}

// SetContent replaces the editing buffer. A change relative to the last
// saved value arms (or re-arms) the debounce timer. No-op when idle.
func (e *Editor) SetContent(content string) error {
	return e.do(func() {
		if e.state == StateIdle {
			return
		}
		e.content = content
		e.savedAt = time.Time{}
		e.errMsg = ""
		if content != e.lastSaved {
			if e.state != StateSaving {
				e.state = StatePendingSave
			}
			e.armTimer()
		}
	})
}

// SetCursor records the caret position without touching the debounce.
func (e *Editor) SetCursor(cursor int) error {
	return e.do(func() {
		if e.state != StateIdle {
			e.cursor = cursor
		}
	})
}

// FinishEdit force-flushes the buffer regardless of debounce timing and,
// on success, closes the entry and returns the editor to idle. On failure
// the entry stays open with the dirty buffer retained so a later
// FinishEdit can retry.
func (e *Editor) FinishEdit(ctx context.Context) error {
	ch := make(chan error, 1)
	if err := e.do(func() {
		if e.state == StateIdle {
			ch <- nil
			return
		}
		e.waiters = append(e.waiters, ch)
		e.disarmTimer()
		e.flush()
	}); err != nil {
		return err
	}
	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Snapshot returns a copy of the current editor state.
func (e *Editor) Snapshot() Snapshot {
	ch := make(chan Snapshot, 1)
	if err := e.do(func() {
		dirty := e.state != StateIdle &&
			strings.TrimSpace(e.content) != strings.TrimSpace(e.lastSaved)
		ch <- Snapshot{
			State:   e.state,
			EntryID: e.entryID,
			Content: e.content,
			Cursor:  e.cursor,
			Dirty:   dirty,
			SavedAt: e.savedAt,
			Err:     e.errMsg,
		}
	}); err != nil {
		return Snapshot{State: StateIdle}
	}
	return <-ch
}

// Close stops the event loop. An in-flight save runs to completion first;
// a pending (not yet started) flush is dropped. Idempotent.
func (e *Editor) Close() error {
	e.closeOnce.Do(func() { close(e.quit) })
	<-e.done
	return nil
}

func (e *Editor) do(fn func()) error {
	select {
	case e.cmds <- fn:
		return nil
	case <-e.quit:
		return ErrClosed
	case <-e.done:
		return ErrClosed
	}
}

func (e *Editor) run() {
	defer close(e.done)
	for {
		select {
		case fn := <-e.cmds:
			fn()
		case <-e.timerC:
			e.timerC = nil
			e.flush()
		case res := <-e.saveDone:
			e.onSaveDone(res)
		case <-e.quit:
			e.disarmTimer()
			// Let an in-flight save finish; saves are never aborted.
			if e.saveDone != nil {
				<-e.saveDone
			}
			e.notifyWaiters(ErrClosed)
			return
		}
	}
}

// flush compares the trimmed buffer to the trimmed last-saved value and
// issues at most one network call: none when equal, Archive when the
// buffer is empty, Update otherwise.
func (e *Editor) flush() {
	if e.state == StateIdle {
		return
	}
	if e.saveDone != nil {
		e.flushQueued = true
		return
	}

	buf := strings.TrimSpace(e.content)
	if buf == strings.TrimSpace(e.lastSaved) {
		e.markClean()
		return
	}

	e.state = StateSaving
	e.errMsg = ""
	archive := buf == ""
	id, content := e.entryID, e.content

	ch := make(chan saveResult, 1)
	e.saveDone = ch
	go func() {
		res := saveResult{archived: archive, content: content}
		if archive {
			res.err = e.saver.Archive(context.Background(), id)
		} else {
			res.err = e.saver.Update(context.Background(), id, content)
		}
		ch <- res
	}()
}

func (e *Editor) onSaveDone(res saveResult) {
	e.saveDone = nil

	if res.err != nil {
		e.state = StatePendingSave
		e.errMsg = res.err.Error()
		e.flushQueued = false
		e.notifyWaiters(res.err)
		return
	}

	if res.archived {
		// Empty content archived the entry; it is gone from the list.
		e.resetToIdle()
		e.notifyWaiters(nil)
		return
	}

	e.lastSaved = res.content
	e.savedAt = time.Now()

	// Edits made while the save was in flight, or a debounce deferred by
	// it, flush immediately.
	if e.flushQueued || strings.TrimSpace(e.content) != strings.TrimSpace(e.lastSaved) {
		e.flushQueued = false
		e.flush()
		return
	}
	e.markClean()
}

func (e *Editor) markClean() {
	e.errMsg = ""
	if len(e.waiters) > 0 {
		e.resetToIdle()
		e.notifyWaiters(nil)
		return
	}
	e.state = StateEditing
}

func (e *Editor) resetToIdle() {
	e.disarmTimer()
	e.state = StateIdle
	e.entryID = ""
	e.content = ""
	e.cursor = 0
	e.lastSaved = ""
	e.flushQueued = false
}

func (e *Editor) notifyWaiters(err error) {
	for _, ch := range e.waiters {
		ch <- err
	}
	e.waiters = nil
}

func (e *Editor) armTimer() {
	if e.timer == nil {
		e.timer = time.NewTimer(e.debounce)
		e.timerC = e.timer.C
		return
	}
	if !e.timer.Stop() && e.timerC != nil {
		select {
		case <-e.timer.C:
		default:
		}
	}
	e.timer.Reset(e.debounce)
	e.timerC = e.timer.C
}

func (e *Editor) disarmTimer() {
	if e.timer == nil {
		return
	}
	if !e.timer.Stop() && e.timerC != nil {
		select {
		case <-e.timer.C:
		default:
		}
	}
	e.timerC = nil
}
