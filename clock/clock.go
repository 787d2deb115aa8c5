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

// Package clock implements named triggers that fire at a specified local
// time-of-day and re-arm themselves for the same time on the following day.
// It follows the same per-entry-timer idiom as package timer, specialized to
// daily wall-clock schedules instead of a single relative duration.
package clock

import (
	"sync"
	"time"
)

// Callback is invoked with the trigger's id each time its time-of-day
// arrives.
type Callback func(id string)

// Now is overridable in tests so a fixed time can be supplied instead of
// time.Now.
var Now = time.Now

type entry struct {
	hour, minute int
	callback     Callback
	timer        *time.Timer
	stop         chan struct{}
}

// Service is a named daily time-of-day trigger registry.
type Service struct {
	mu      sync.Mutex
	entries map[string]*entry
}

// New builds an empty clock Service.
func New() *Service {
	return &Service{entries: map[string]*entry{}}
}

// nextFire computes the next time.Duration until hour:minute local time,
// today if it hasn't passed yet, tomorrow otherwise.
func nextFire(hour, minute int) time.Duration {
	now := Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Start schedules callback(id) to run daily at hour:minute local time. If
// that time has already passed today, the first fire is tomorrow. If id
// already has a live trigger, it is cancelled first (replace semantics).
func (s *Service) Start(id string, hour, minute int, callback Callback) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(id)

	e := &entry{
		hour:     hour,
		minute:   minute,
		callback: callback,
		stop:     make(chan struct{}),
	}
	e.timer = time.NewTimer(nextFire(hour, minute))
	s.entries[id] = e

	go s.run(id, e)
}

// run waits for e's timer to fire or for it to be stopped. On fire it
// invokes the callback and re-arms for the same time the next day, unless
// the entry has since been replaced or cancelled.
func (s *Service) run(id string, e *entry) {
	for {
		select {
		case <-e.timer.C:
			e.callback(id)

			s.mu.Lock()
			if s.entries[id] != e {
				s.mu.Unlock()
				return // replaced or cancelled while the callback ran
			}
			e.timer.Reset(nextFire(e.hour, e.minute))
			s.mu.Unlock()
		case <-e.stop:
			return
		}
	}
}

// Cancel cancels the named trigger if present. Returns true iff it existed.
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

// Close cancels every pending trigger. Safe to call once during shutdown.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.entries {
		s.cancelLocked(id)
	}
}
