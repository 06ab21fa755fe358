// Copyright (c) 2023 Silvano DAL ZILIO
//
// MIT License

package godd

import (
	"time"
)

// HookWhere identifies the event a hook is attached to.
type HookWhere int

const (
	// PreGC hooks run before a garbage collection.
	PreGC HookWhere = iota
	// PostGC hooks run after a garbage collection.
	PostGC
	// PreReorder hooks run when the reordering engine enters Running.
	PreReorder
	// PostReorder hooks run when the reordering engine leaves Running.
	PostReorder
)

// Hook is a callback fired around garbage collections and reorderings. A hook
// returning a non-nil error aborts the surrounding operation: the manager
// error is set to TerminationRequested and the pending operation unwinds with
// the nil-Node sentinel.
type Hook func(b *DD, where HookWhere) error

type registeredHook struct {
	id int
	f  Hook
}

// AddHook registers a hook at the given event and returns an identifier that
// can be passed to RemoveHook.
func (b *DD) AddHook(h Hook, where HookWhere) int {
	if where < PreGC || where > PostReorder || h == nil {
		return -1
	}
	b.hookids++
	b.hooks[where] = append(b.hooks[where], registeredHook{id: b.hookids, f: h})
	return b.hookids
}

// RemoveHook unregisters the hook with the given identifier. It reports
// whether a hook was removed.
func (b *DD) RemoveHook(id int) bool {
	for w := range b.hooks {
		for k, h := range b.hooks[w] {
			if h.id == id {
				b.hooks[w] = append(b.hooks[w][:k], b.hooks[w][k+1:]...)
				return true
			}
		}
	}
	return false
}

// firehooks runs the hooks attached to an event. The first non-nil error
// aborts with TerminationRequested.
func (b *DD) firehooks(where HookWhere) error {
	for _, h := range b.hooks[where] {
		if err := h.f(b, where); err != nil {
			b.seterrcode(TerminationRequested, "hook aborted: %s", err)
			return errTerminate
		}
	}
	return nil
}

// ************************************************************

// SetTimeLimit installs a deadline, relative to now, for the operations on
// the manager. An operation running past the deadline unwinds with the
// nil-Node sentinel and the TimeoutExpired error code. A zero duration
// removes the limit.
func (b *DD) SetTimeLimit(limit time.Duration) {
	b.timelimit = limit
	b.starttime = time.Now()
	b.timedoutf = false
	b.timecheck = 1
}

// ReadTimeLimit returns the configured time limit.
func (b *DD) ReadTimeLimit() time.Duration {
	return b.timelimit
}

// ReadStartTime returns the reference instant of the current time limit.
func (b *DD) ReadStartTime() time.Time {
	return b.starttime
}

// ResetStartTime restarts the clock of the current time limit.
func (b *DD) ResetStartTime() {
	b.starttime = time.Now()
	b.timedoutf = false
	b.timecheck = 1
}

// ClearTimeLimit removes the deadline.
func (b *DD) ClearTimeLimit() {
	b.timelimit = 0
	b.timedoutf = false
}

// SetTimeoutHandler installs a callback fired once when the deadline expires.
func (b *DD) SetTimeoutHandler(f func(*DD)) {
	b.timeouthdl = f
}
