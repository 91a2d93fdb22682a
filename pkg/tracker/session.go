// Plunder Core
// Copyright (c) 2026 The Plunder Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Plunder Core.
//
// Plunder Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Plunder Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Plunder Core.  If not, see <http://www.gnu.org/licenses/>.

// Package tracker drives per-game running/idle state from presence samples
// and accumulates playtime. The state machine itself is pure: all persistence
// and notification side effects live in the accumulation loop.
package tracker

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType is a session state transition kind.
type EventType int

const (
	// SessionStarted marks an Idle -> Running transition.
	SessionStarted EventType = iota
	// SessionEnded marks a Running -> Idle transition carrying the session's
	// duration.
	SessionEnded
)

// Event is one observed transition for one game.
type Event struct {
	At        time.Time
	Start     time.Time
	Name      string
	SessionID uuid.UUID
	Delta     time.Duration
	Type      EventType
}

// sessionState is transient per-game state. start is non-nil iff the game is
// running; it is never persisted.
type sessionState struct {
	start *time.Time
	name  string
	id    uuid.UUID
}

// Sessions holds the running/idle state machine for every game of the loaded
// profile. Every game starts Idle. Not safe for concurrent use; the
// accumulation loop is the sole owner.
type Sessions struct {
	states map[string]*sessionState
}

func NewSessions() *Sessions {
	return &Sessions{
		states: make(map[string]*sessionState),
	}
}

func key(name string) string {
	return strings.ToLower(name)
}

// Observe feeds one presence sample for one game and returns the transition
// it produced, if any. A game observed running across consecutive samples
// contributes no playtime until it stops; the full session duration is
// reported exactly once, on the Running -> Idle edge.
func (s *Sessions) Observe(name string, running bool, now time.Time) (Event, bool) {
	st, ok := s.states[key(name)]
	if !ok {
		st = &sessionState{name: name}
		s.states[key(name)] = st
	}

	switch {
	case running && st.start == nil:
		t := now
		st.start = &t
		st.id = uuid.New()
		return Event{
			Type:      SessionStarted,
			Name:      name,
			SessionID: st.id,
			At:        now,
			Start:     now,
		}, true
	case !running && st.start != nil:
		ev := Event{
			Type:      SessionEnded,
			Name:      name,
			SessionID: st.id,
			At:        now,
			Start:     *st.start,
			Delta:     now.Sub(*st.start),
		}
		st.start = nil
		st.id = uuid.UUID{}
		return ev, true
	default:
		return Event{}, false
	}
}

// Running reports whether the named game is currently in the Running state.
func (s *Sessions) Running(name string) bool {
	st, ok := s.states[key(name)]
	return ok && st.start != nil
}

// Start returns the session start time for a running game.
func (s *Sessions) Start(name string) (time.Time, bool) {
	st, ok := s.states[key(name)]
	if !ok || st.start == nil {
		return time.Time{}, false
	}
	return *st.start, true
}

// Duration returns the current session duration for display. Zero for idle
// games.
func (s *Sessions) Duration(name string, now time.Time) time.Duration {
	start, ok := s.Start(name)
	if !ok {
		return 0
	}
	return now.Sub(start)
}

// Discard drops the transient state for a removed game without flushing any
// in-progress session.
func (s *Sessions) Discard(name string) {
	delete(s.states, key(name))
}

// Flush ends every running session at now and returns the resulting events.
// Used on shutdown and profile switch so in-progress time is not lost.
func (s *Sessions) Flush(now time.Time) []Event {
	var events []Event
	for _, st := range s.states {
		if st.start == nil {
			continue
		}
		events = append(events, Event{
			Type:      SessionEnded,
			Name:      st.name,
			SessionID: st.id,
			At:        now,
			Start:     *st.start,
			Delta:     now.Sub(*st.start),
		})
		st.start = nil
		st.id = uuid.UUID{}
	}
	return events
}
