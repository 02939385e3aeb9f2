// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package sharedfile

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type writePhase uint8

const (
	// writePending: the writer is active; committed <= written.
	writePending writePhase = iota
	// writeCompleted: the writer terminated successfully; committed holds
	// the final size and no further bytes will appear.
	writeCompleted
	// writeFailed: the writer observed an unrecoverable I/O failure.
	// Terminal.
	writeFailed
)

// writeState is an immutable snapshot of the writer's progress. A new value
// is published wholesale on every transition, so a single atomic load hands
// readers a consistent (phase, committed, written) triple.
type writeState struct {
	phase writePhase
	// committed is the byte count readers may consume: everything up to it
	// has been pushed through the backing file. In writeCompleted it is the
	// final size.
	committed uint64
	// written is the byte count accepted by the backing write path but not
	// yet promoted by a flush or sync. Meaningless outside writePending.
	written uint64
}

// sentinel is the state shared between the writer and all readers. It also
// holds the backing file, which stays open until SharedFile.Close closes it,
// whether or not the writer and readers are still in use.
type sentinel struct {
	backing Backing

	state atomic.Pointer[writeState]

	// mu guards wakers only. It is never held across I/O.
	mu     sync.Mutex
	wakers map[uuid.UUID]chan struct{}
}

func newSentinel(backing Backing) *sentinel {
	s := &sentinel{
		backing: backing,
		wakers:  make(map[uuid.UUID]chan struct{}),
	}
	s.state.Store(&writeState{phase: writePending})
	return s
}

func (s *sentinel) loadState() writeState { return *s.state.Load() }

// storeState publishes a new snapshot. Only the writer stores during normal
// operation, so a plain replace suffices; there is no CAS loop.
func (s *sentinel) storeState(st writeState) { s.state.Store(&st) }

// wakeReaders drains the waker table under the lock and wakes the drained
// set after releasing it. Draining first keeps a woken reader from
// re-registering into a table that is about to be cleared.
func (s *sentinel) wakeReaders() {
	s.mu.Lock()
	wakers := s.wakers
	s.wakers = make(map[uuid.UUID]chan struct{})
	s.mu.Unlock()
	for _, ch := range wakers {
		close(ch)
	}
}

// registerReaderWaker inserts or replaces the wake channel for the reader
// id. A reader replaces only its own entry, so a displaced channel has no
// parked owner.
func (s *sentinel) registerReaderWaker(id uuid.UUID, ch chan struct{}) {
	s.mu.Lock()
	s.wakers[id] = ch
	s.mu.Unlock()
}

func (s *sentinel) removeReaderWaker(id uuid.UUID) {
	s.mu.Lock()
	delete(s.wakers, id)
	s.mu.Unlock()
}
