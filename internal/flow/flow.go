// Package flow tracks which multi-step conversation each user is in.
//
// Every user is in exactly one State. Idle is the absence of a stored state;
// beginning a flow replaces whatever was active before.
package flow

import (
	"github.com/m3rciful/vocabot/core/telegram/state"
	"github.com/m3rciful/vocabot/internal/entry"
)

// Kind names a state for logging and handler dispatch.
type Kind string

const (
	KindIdle         Kind = "idle"
	KindBulkText     Kind = "awaiting_bulk_text"
	KindDeleteTarget Kind = "awaiting_delete_target"
	KindEditQuery    Kind = "awaiting_edit_query"
	KindEditValue    Kind = "awaiting_edit_value"
	KindSearchQuery  Kind = "awaiting_search_query"
)

// State is one of the concrete states below.
type State interface {
	Kind() Kind
}

// Idle means no flow is active.
type Idle struct{}

// AwaitingBulkText waits for a multi-line message of entries.
type AwaitingBulkText struct{}

// AwaitingDeleteTarget waits for the word to delete.
type AwaitingDeleteTarget struct{}

// AwaitingEditQuery waits for a query to find the entry to edit.
type AwaitingEditQuery struct{}

// AwaitingEditValue waits for the new value of Field of entry EntryID.
type AwaitingEditValue struct {
	EntryID int64
	Field   entry.Field
}

// AwaitingSearchQuery waits for a search query.
type AwaitingSearchQuery struct{}

func (Idle) Kind() Kind                 { return KindIdle }
func (AwaitingBulkText) Kind() Kind     { return KindBulkText }
func (AwaitingDeleteTarget) Kind() Kind { return KindDeleteTarget }
func (AwaitingEditQuery) Kind() Kind    { return KindEditQuery }
func (AwaitingEditValue) Kind() Kind    { return KindEditValue }
func (AwaitingSearchQuery) Kind() Kind  { return KindSearchQuery }

// Machine stores the current state per owner.
type Machine struct {
	states state.Store[State]
}

// NewMachine returns a machine with every owner idle.
func NewMachine() *Machine {
	return &Machine{states: state.NewMemoryStore[State]()}
}

// Current returns the owner's state, Idle when none is stored.
func (m *Machine) Current(owner int64) State {
	if s, ok := m.states.Get(owner); ok {
		return s
	}
	return Idle{}
}

// Begin enters s, superseding any active flow and its payload. Beginning Idle resets.
func (m *Machine) Begin(owner int64, s State) {
	if s == nil || s.Kind() == KindIdle {
		m.states.Clear(owner)
		return
	}
	m.states.Set(owner, s)
}

// Reset returns the owner to Idle and reports the state that was dropped.
func (m *Machine) Reset(owner int64) State {
	return m.Take(owner)
}

// Take atomically reads the owner's state and resets it to Idle.
func (m *Machine) Take(owner int64) State {
	var prev State = Idle{}
	m.states.Update(owner, func(cur State, ok bool) (State, bool) {
		if ok {
			prev = cur
		}
		return nil, false
	})
	return prev
}

// InProgress reports whether the owner is inside a flow.
func (m *Machine) InProgress(owner int64) bool {
	return m.Current(owner).Kind() != KindIdle
}

// Active counts owners with a flow in progress.
func (m *Machine) Active() int {
	return m.states.Len()
}
