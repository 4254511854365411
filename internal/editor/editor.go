// Package editor holds the operator's working copy of the TX profile
// partition together with the transient UI state around it: the selected
// segment, an active boundary drag, the dirty flag and the in-flight save.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gsweb/internal/logger"
	"gsweb/internal/models"
	"gsweb/internal/partition"
)

var (
	// ErrUnavailable is returned while the profile API cannot be reached or
	// nothing has been loaded yet.
	ErrUnavailable = errors.New("tx profiles unavailable")
	// ErrSaveInFlight is returned when a save is requested during another.
	ErrSaveInFlight = errors.New("save already in progress")
	// ErrNoSelection is returned by UpdateSelected with nothing selected.
	ErrNoSelection = errors.New("no segment selected")
)

// Remote is the profile store the editor loads from and saves to.
type Remote interface {
	FetchProfiles(ctx context.Context) ([]byte, error)
	ReplaceProfiles(ctx context.Context, profiles []models.TxProfile) error
}

// State is the connectivity state of the editor.
type State int

const (
	StateLoading State = iota
	StateReady
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const none = -1

// Editor is safe for concurrent use; every mutation is atomic.
type Editor struct {
	remote Remote
	axis   partition.Axis
	logger logger.Logger

	mu        sync.Mutex
	state     State
	current   partition.Partition
	persisted partition.Partition
	selected  int
	dragging  int
	dirty     bool
	saving    bool
}

// New creates an editor in the loading state. Call Load before editing.
func New(remote Remote, axis partition.Axis, log logger.Logger) *Editor {
	return &Editor{
		remote:   remote,
		axis:     axis,
		logger:   log,
		state:    StateLoading,
		selected: none,
		dragging: none,
	}
}

// Axis returns the axis the editor partitions.
func (e *Editor) Axis() partition.Axis {
	return e.axis
}

// Load fetches the remote table and normalizes it into the working copy. On
// failure the editor becomes unavailable; the previous working copy, if any,
// is kept for display but cannot be edited or saved until a Load succeeds.
// Load is refused with ErrSaveInFlight while a save is running.
func (e *Editor) Load(ctx context.Context) error {
	if e.Saving() {
		return ErrSaveInFlight
	}
	data, err := e.remote.FetchProfiles(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	// A save may have started while the fetch was running.
	if e.saving {
		return ErrSaveInFlight
	}
	if err != nil {
		e.state = StateUnavailable
		e.dragging = none
		e.logger.Warnf("Error fetching txprofiles: %v", err)
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	p := e.axis.Decode(data)
	e.current = p
	e.persisted = p.Clone()
	e.selected = 0
	e.dragging = none
	e.dirty = false
	e.state = StateReady
	e.logger.Debugf("Loaded %d tx profiles", len(p))
	return nil
}

// Save sends the working copy as one atomic replace. The dirty flag is cleared
// when the call completes, whether or not it succeeded; a failed save is not
// retried.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.state != StateReady {
		e.mu.Unlock()
		return ErrUnavailable
	}
	if e.saving {
		e.mu.Unlock()
		return ErrSaveInFlight
	}
	e.saving = true
	snapshot := e.current.Clone()
	e.mu.Unlock()

	err := e.remote.ReplaceProfiles(ctx, snapshot.Profiles())

	e.mu.Lock()
	defer e.mu.Unlock()
	e.saving = false
	e.dirty = false
	if err != nil {
		e.logger.Errorf("Error saving txprofiles: %v", err)
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	e.persisted = snapshot
	e.logger.Infof("Saved %d tx profiles", len(snapshot))
	return nil
}

// editable reports whether edits are currently allowed. Caller holds mu.
func (e *Editor) editable() bool {
	return e.state == StateReady && !e.saving && len(e.current) > 0
}

// Select makes segment i the selected one.
func (e *Editor) Select(i int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateReady || i < 0 || i >= len(e.current) {
		return false
	}
	e.selected = i
	return true
}

// Split splits the selected segment. The right half becomes selected.
func (e *Editor) Split() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editable() || e.selected == none {
		return false
	}
	p, sel, changed := e.axis.Split(e.current, e.selected)
	if !changed {
		return false
	}
	e.commit(p, sel)
	return true
}

// Merge merges the selected segment into its neighbour.
func (e *Editor) Merge() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editable() || e.selected == none {
		return false
	}
	p, sel, changed := e.axis.Merge(e.current, e.selected)
	if !changed {
		return false
	}
	e.commit(p, sel)
	return true
}

// BeginDrag starts moving boundary b, the edge after segment b.
func (e *Editor) BeginDrag(b int) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editable() || b < 0 || b+1 >= len(e.current) {
		return false
	}
	e.dragging = b
	return true
}

// DragTo moves the boundary being dragged to the pointer position fraction.
// It reports whether the partition changed.
func (e *Editor) DragTo(fraction float64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editable() || e.dragging == none {
		return false
	}
	p, changed := e.axis.Drag(e.current, e.dragging, fraction)
	if !changed {
		return false
	}
	e.commit(p, e.selected)
	return true
}

// EndDrag discards the drag session.
func (e *Editor) EndDrag() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dragging = none
}

// ResetToDefaults replaces the working copy with the default ladder once
// confirm approves. Nothing is saved until Save is called.
func (e *Editor) ResetToDefaults(confirm func() bool) bool {
	e.mu.Lock()
	if !e.editable() {
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()

	// confirm may block on the operator, so it runs without the lock.
	if confirm == nil || !confirm() {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editable() {
		return false
	}
	e.current = e.axis.Ladder()
	e.selected = 0
	e.dragging = none
	e.dirty = !e.current.Equal(e.persisted)
	return true
}

// UpdateSelected applies fn to a copy of the selected segment's parameters.
// Range bounds cannot be changed this way. The result must validate.
func (e *Editor) UpdateSelected(fn func(p *models.TxProfile)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editable() {
		return ErrUnavailable
	}
	if e.selected == none {
		return ErrNoSelection
	}

	old := e.current[e.selected]
	updated := old
	fn(&updated)
	updated.RangeStart, updated.RangeEnd = old.RangeStart, old.RangeEnd
	if err := updated.Validate(); err != nil {
		return err
	}
	if updated == old {
		return nil
	}

	p := e.current.Clone()
	p[e.selected] = updated
	e.commit(p, e.selected)
	return nil
}

// commit installs a changed partition. Caller holds mu.
func (e *Editor) commit(p partition.Partition, selected int) {
	e.current = p
	e.selected = selected
	e.dirty = true
}

// Snapshot is a consistent copy of the editor state.
type Snapshot struct {
	State     State
	Partition partition.Partition
	Selected  int // -1 when nothing is selected
	Dragging  int // -1 when no drag is active
	Dirty     bool
	Saving    bool
}

// Snapshot returns a copy of the current state.
func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		State:     e.state,
		Partition: e.current.Clone(),
		Selected:  e.selected,
		Dragging:  e.dragging,
		Dirty:     e.dirty,
		Saving:    e.saving,
	}
}

// Dirty reports whether the working copy has unsaved edits.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// Saving reports whether a save is in flight.
func (e *Editor) Saving() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.saving
}

// State returns the connectivity state.
func (e *Editor) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// SetUnavailable marks the editor unavailable, e.g. when a heartbeat fails.
// Editing stays disabled until the next successful Load.
func (e *Editor) SetUnavailable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = StateUnavailable
	e.dragging = none
}
