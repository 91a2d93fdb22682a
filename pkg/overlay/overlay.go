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

// Package overlay renders the live "now playing" readout for the one game
// that currently has the overlay attached. It publishes text only; drawing it
// is the UI's problem.
package overlay

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/PlunderProject/plunder-core/pkg/api/notifications"
	"github.com/PlunderProject/plunder-core/pkg/helpers/syncutil"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const refreshInterval = 1 * time.Second

// startedClauseAfter is how long a session must run before the readout gains
// the "started at" clause.
const startedClauseAfter = 60 * time.Second

// Presenter owns at most one attached game at a time and refreshes its
// readout once per second until detached.
type Presenter struct {
	clock  clockwork.Clock
	ns     chan<- models.Notification
	cancel context.CancelFunc
	done   chan struct{}
	target string
	mu     syncutil.Mutex
}

func NewPresenter(clock clockwork.Clock, ns chan<- models.Notification) *Presenter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Presenter{
		clock: clock,
		ns:    ns,
	}
}

// Target returns the name of the currently attached game, empty when none.
func (p *Presenter) Target() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// Attach starts presenting the named game. An existing attachment is torn
// down first.
func (p *Presenter) Attach(name string, sessionStart time.Time, priorSeconds float64) {
	p.Detach()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	p.target = name
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	log.Info().Str("game", name).Msg("overlay: attached")
	go p.run(ctx, done, name, sessionStart, priorSeconds)
}

// Detach stops the presenter and waits for its refresh goroutine to exit, so
// no readout is published after Detach returns. Safe to call repeatedly and
// when nothing is attached.
func (p *Presenter) Detach() {
	p.mu.Lock()
	cancel := p.cancel
	done := p.done
	target := p.target
	p.cancel = nil
	p.done = nil
	p.target = ""
	p.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
		log.Info().Str("game", target).Msg("overlay: detached")
	}
}

func (p *Presenter) run(ctx context.Context, done chan<- struct{}, name string, sessionStart time.Time, priorSeconds float64) {
	defer close(done)

	ticker := p.clock.NewTicker(refreshInterval)
	defer ticker.Stop()

	p.publish(name, sessionStart, priorSeconds)

	for {
		select {
		case <-ticker.Chan():
			p.publish(name, sessionStart, priorSeconds)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Presenter) publish(name string, sessionStart time.Time, priorSeconds float64) {
	now := p.clock.Now()
	notifications.OverlayUpdated(p.ns, models.OverlayUpdatedParams{
		Name: name,
		Text: RenderLine(name, sessionStart, priorSeconds, now),
	})
}

// RenderLine builds the readout text for one refresh:
//
//	Playing: Foo • Session: 5m 30s • started 2:05 pm • Time Played: 1h 5m 30s
//
// The "started" clause appears once the session is at least a minute old.
func RenderLine(name string, sessionStart time.Time, priorSeconds float64, now time.Time) string {
	session := now.Sub(sessionStart)
	if session < 0 {
		session = 0
	}
	total := time.Duration(priorSeconds)*time.Second + session

	var b strings.Builder
	fmt.Fprintf(&b, "Playing: %s • Session: %s • ", name, FormatDuration(session))
	if session >= startedClauseAfter {
		fmt.Fprintf(&b, "started %s • ", strings.ToLower(sessionStart.Format("3:04 PM")))
	}
	fmt.Fprintf(&b, "Time Played: %s", FormatDuration(total))
	return b.String()
}

// FormatDuration renders a duration as "1h 5m 30s" with leading zero
// components elided: "0h 5m 30s" -> "5m 30s", "0h 0m 12s" -> "12s".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d/time.Minute) % 60
	s := int(d/time.Second) % 60

	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
