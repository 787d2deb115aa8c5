// Mgmt
// Copyright (C) 2013-2024+ James Shubin and the project contributors
// Written by James Shubin <james@shubin.ca> and the project contributors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package timer implements named one-shot timers with cancel/reset, the way
// converger tracked one timer goroutine per registered UID, collapsed here
// into one timer goroutine per named entry with its own duration and
// callback instead of one global convergence timeout shared by every UID.
package timer

import (
	"sync"
	"time"
)

// Callback is invoked with the timer's id when it expires.
type Callback func(id string)

// entry tracks one named timer's live goroutine.
type entry struct {
	duration time.Duration
	callback Callback
	timer    *time.Timer
	stop     chan struct{}
}

// Service is a named one-shot timer registry. The zero value is not usable;
// build one with New.
type Service struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New builds an empty timer Service.
func New() *Service {
	return &Service{
		entries: map[string]*entry{},
	}
}

// Start schedules callback(id) to run after duration. If id already has a
// live timer, it is cancelled first (replace semantics).
func (s *Service) Start(id string, duration time.Duration, callback Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)

	e := &entry{
		duration: duration,
		callback: callback,
		stop:     make(chan struct{}),
	}
	e.timer = time.NewTimer(duration)
	s.entries[id] = e

	go s.run(id, e)
}

// run waits for e's timer to fire or for it to be stopped. On fire, the
// entry is removed from the table before the callback runs, so a callback
// that re-Starts the same id never races with its own removal.
func (s *Service) run(id string, e *entry) {
	select {
	case <-e.timer.C:
		s.mu.Lock()
		if s.entries[id] == e { // still the live entry for this id
			delete(s.entries, id)
		}
		s.mu.Unlock()
		e.callback(id)
	case <-e.stop:
		return
	}
}

// Cancel cancels the named timer if present. Returns true iff it existed.
func (s *Service) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancelLocked(id)
}

func (s *Service) cancelLocked(id string) bool {
	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	close(e.stop)
	delete(s.entries, id)
	return true
}

// Reset cancels and restarts the named timer using its stored duration and
// callback. Returns true iff it existed.
func (s *Service) Reset(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	duration, callback := e.duration, e.callback
	s.cancelLocked(id)
	s.mu.Unlock()

	s.Start(id, duration, callback)
	return true
}

// Active reports whether a timer with the given id is currently pending.
func (s *Service) Active(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Close cancels every pending timer. Safe to call once during shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.entries {
		s.cancelLocked(id)
	}
}
