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

// Package reconcile merges an authoritative external playtime figure into
// locally accumulated playtime. The steam_imported_seconds watermark on each
// record prevents the same external time from being counted twice; a forced
// reconcile overwrites local time with the source value instead.
package reconcile

import (
	"strings"

	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/PlunderProject/plunder-core/pkg/api/notifications"
	"github.com/PlunderProject/plunder-core/pkg/database/registry"
	"github.com/PlunderProject/plunder-core/pkg/steam"
	"github.com/rs/zerolog/log"
)

// Summary reports what one reconcile pass did. Zero updates is a normal
// no-op, not an error.
type Summary struct {
	Matched int
	Updated int
}

// Reconciler folds external playtime into the registry. Callers must not run
// two reconciles concurrently for the same profile; the watermark updates
// would race.
type Reconciler struct {
	store   *registry.Store
	matcher NameMatcher
	ns      chan<- models.Notification
}

// New creates a Reconciler. A nil matcher gets the default alias heuristics.
func New(store *registry.Store, matcher NameMatcher, ns chan<- models.Notification) *Reconciler {
	if matcher == nil {
		matcher = NewDefaultMatcher()
	}
	return &Reconciler{
		store:   store,
		matcher: matcher,
		ns:      ns,
	}
}

// Reconcile merges the source list into the registry. For each local record,
// the source entry is found by exact case-insensitive name match first, then
// by the NameMatcher heuristics. With force the source value overwrites
// local playtime; otherwise only the positive delta above the watermark is
// added. The watermark always advances to the source value.
func (r *Reconciler) Reconcile(source []steam.OwnedGame, force bool) Summary {
	var summary Summary

	for _, game := range r.store.List() {
		src, ok := r.findSource(game.Name, source)
		if !ok {
			continue
		}
		summary.Matched++

		changed, err := r.store.ApplyImport(game.Name, src.PlaytimeSeconds, force)
		if err != nil {
			log.Error().Err(err).Str("game", game.Name).Msg("reconcile: registry write failed")
			notifications.WriteFailed(r.ns, models.WriteFailedParams{
				Profile: r.store.Profile(),
				Error:   err.Error(),
			})
			continue
		}
		if changed {
			summary.Updated++
			log.Info().
				Str("game", game.Name).
				Str("source", src.Name).
				Float64("sourceSeconds", src.PlaytimeSeconds).
				Bool("forced", force).
				Msg("reconcile: playtime merged")
		}
	}

	notifications.ReconcileCompleted(r.ns, models.ReconcileCompletedParams{
		Matched: summary.Matched,
		Updated: summary.Updated,
		Forced:  force,
	})
	return summary
}

// findSource locates the source entry for a local name: exact fold match
// first, then the matcher's best-effort heuristics.
func (r *Reconciler) findSource(local string, source []steam.OwnedGame) (steam.OwnedGame, bool) {
	for _, src := range source {
		if strings.EqualFold(local, src.Name) {
			return src, true
		}
	}
	for _, src := range source {
		if r.matcher.Match(local, src.Name) {
			return src, true
		}
	}
	return steam.OwnedGame{}, false
}
