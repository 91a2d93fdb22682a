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

package tracker

import (
	"context"
	"time"

	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/PlunderProject/plunder-core/pkg/api/notifications"
	"github.com/PlunderProject/plunder-core/pkg/config"
	"github.com/PlunderProject/plunder-core/pkg/database/registry"
	"github.com/PlunderProject/plunder-core/pkg/overlay"
	"github.com/PlunderProject/plunder-core/pkg/presence"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

// Source supplies presence snapshots. presence.Detector is the production
// implementation; tests substitute fakes.
type Source interface {
	Snapshot(ctx context.Context, targets []string) (presence.Set, error)
}

// Loop samples presence at a fixed cadence and drives the session state
// machine for every registered game. It is the sole owner of the Sessions
// state and the only background writer of the registry.
type Loop struct {
	store    *registry.Store
	source   Source
	clock    clockwork.Clock
	cfg      *config.Instance
	overlay  *overlay.Presenter
	ns       chan<- models.Notification
	sessions *Sessions
	active   string
}

// NewLoop builds an accumulation loop. overlay may be nil when no presenter
// is wanted. A nil clock means the real one.
func NewLoop(
	cfg *config.Instance,
	store *registry.Store,
	source Source,
	ov *overlay.Presenter,
	ns chan<- models.Notification,
	clock clockwork.Clock,
) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loop{
		cfg:      cfg,
		store:    store,
		source:   source,
		overlay:  ov,
		ns:       ns,
		clock:    clock,
		sessions: NewSessions(),
	}
}

// Sessions exposes the transient session state for status queries (current
// session duration display). Read it only from the loop's goroutine or after
// the loop has stopped.
func (l *Loop) Sessions() *Sessions {
	return l.sessions
}

// Run blocks until ctx is cancelled, sampling presence once per poll
// interval. On cancellation all open sessions are flushed so in-progress
// time survives shutdown and profile switches.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.cfg.PollInterval()
	ticker := l.clock.NewTicker(interval)
	defer ticker.Stop()

	log.Info().
		Str("profile", l.store.Profile()).
		Dur("interval", interval).
		Msg("tracker: loop started")

	for {
		select {
		case <-ticker.Chan():
			l.tick(ctx)
		case <-ctx.Done():
			l.shutdown()
			return nil
		}
	}
}

// tick performs one presence sample and feeds it through the state machine.
// A failed scan is logged and the tick skipped; nothing unwinds past here.
func (l *Loop) tick(ctx context.Context) {
	games := l.store.List()
	set, err := l.source.Snapshot(ctx, l.store.Paths())
	if err != nil {
		log.Warn().Err(err).Msg("tracker: presence scan failed, skipping tick")
		return
	}

	now := l.clock.Now()
	changed := false

	for i := range games {
		g := &games[i]
		ev, ok := l.sessions.Observe(g.Name, set.Contains(g.ExecutablePath), now)
		if !ok {
			continue
		}
		changed = true
		switch ev.Type {
		case SessionStarted:
			l.onStarted(g, ev)
		case SessionEnded:
			l.onEnded(g, ev)
		}
	}

	l.pruneRemoved(games)

	if changed {
		notifications.RegistryUpdated(l.ns)
	}
	l.updateActive(games)
}

func (l *Loop) onStarted(g *registry.GameRecord, ev Event) {
	log.Info().Str("game", g.Name).Msg("tracker: session started")

	if err := l.store.SetLastLaunch(g.Name, ev.At); err != nil {
		l.reportWriteFailure(err)
	}

	notifications.SessionStarted(l.ns, models.SessionStartedParams{
		Name:      g.Name,
		SessionID: ev.SessionID,
		StartedAt: ev.At,
	})

	if l.overlay != nil && g.OverlayEnabled && l.cfg.OverlayEnabled() &&
		l.overlay.Target() == "" {
		l.overlay.Attach(g.Name, ev.Start, g.PlaytimeSeconds)
	}
}

func (l *Loop) onEnded(g *registry.GameRecord, ev Event) {
	delta := ev.Delta.Seconds()
	log.Info().
		Str("game", g.Name).
		Float64("seconds", delta).
		Msg("tracker: session ended")

	if err := l.store.AddPlaytime(g.Name, delta); err != nil {
		l.reportWriteFailure(err)
	}

	total := g.PlaytimeSeconds + delta
	if rec, err := l.store.Get(g.Name); err == nil {
		total = rec.PlaytimeSeconds
	}

	notifications.SessionEnded(l.ns, models.SessionEndedParams{
		Name:         g.Name,
		SessionID:    ev.SessionID,
		EndedAt:      ev.At,
		DeltaSeconds: delta,
		TotalSeconds: total,
	})

	if l.overlay != nil && l.overlay.Target() == g.Name {
		l.overlay.Detach()
	}
}

// pruneRemoved discards transient state for games no longer in the registry.
// Removal does not flush: an in-progress session of a removed game is gone.
func (l *Loop) pruneRemoved(games []registry.GameRecord) {
	keep := make(map[string]struct{}, len(games))
	for i := range games {
		keep[key(games[i].Name)] = struct{}{}
	}
	for k, st := range l.sessions.states {
		if _, ok := keep[k]; !ok {
			if l.overlay != nil && l.overlay.Target() == st.name {
				l.overlay.Detach()
			}
			delete(l.sessions.states, k)
		}
	}
}

// updateActive picks the running game with the most recent session start as
// the one for status display and announces changes. Empty means nothing is
// running.
func (l *Loop) updateActive(games []registry.GameRecord) {
	var active string
	var activeStart time.Time
	for i := range games {
		start, ok := l.sessions.Start(games[i].Name)
		if !ok {
			continue
		}
		if active == "" || start.After(activeStart) {
			active = games[i].Name
			activeStart = start
		}
	}

	if active != l.active {
		l.active = active
		notifications.ActiveGameChanged(l.ns, models.ActiveGameChangedParams{
			Name: active,
		})
	}
}

// shutdown flushes all open sessions and tears down the overlay. Flushed
// sessions emit the same events a clean stop would.
func (l *Loop) shutdown() {
	now := l.clock.Now()
	for _, ev := range l.sessions.Flush(now) {
		g, err := l.store.Get(ev.Name)
		if err != nil {
			log.Warn().Str("game", ev.Name).Msg("tracker: flushing session for unknown game")
			continue
		}
		l.onEnded(&g, ev)
	}

	if l.overlay != nil {
		l.overlay.Detach()
	}
	if l.active != "" {
		l.active = ""
		notifications.ActiveGameChanged(l.ns, models.ActiveGameChangedParams{Name: ""})
	}

	log.Info().Str("profile", l.store.Profile()).Msg("tracker: loop stopped")
}

func (l *Loop) reportWriteFailure(err error) {
	log.Error().Err(err).Msg("tracker: registry write failed, in-memory state kept")
	notifications.WriteFailed(l.ns, models.WriteFailedParams{
		Profile: l.store.Profile(),
		Error:   err.Error(),
	})
}
