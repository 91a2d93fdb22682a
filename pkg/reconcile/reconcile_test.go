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

package reconcile

import (
	"testing"

	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/PlunderProject/plunder-core/pkg/database/registry"
	"github.com/PlunderProject/plunder-core/pkg/steam"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *registry.Store {
	t.Helper()
	store, err := registry.Open(afero.NewMemMapFs(), "/data", "Default")
	require.NoError(t, err)
	return store
}

func playtime(t *testing.T, store *registry.Store, name string) float64 {
	t.Helper()
	rec, err := store.Get(name)
	require.NoError(t, err)
	return rec.PlaytimeSeconds
}

func TestReconcileFirstImportAddsFullSource(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Add("Portal 2", "/games/portal2/portal2"))
	ns := make(chan models.Notification, 8)

	r := New(store, nil, ns)
	summary := r.Reconcile([]steam.OwnedGame{
		{Name: "Portal 2", AppID: 620, PlaytimeSeconds: 3600},
	}, false)

	assert.Equal(t, Summary{Matched: 1, Updated: 1}, summary)
	assert.InDelta(t, 3600, playtime(t, store, "Portal 2"), 0.001)

	done := <-ns
	require.Equal(t, models.NotificationReconcileCompleted, done.Method)
	params, ok := done.Params.(models.ReconcileCompletedParams)
	require.True(t, ok)
	assert.Equal(t, 1, params.Matched)
	assert.Equal(t, 1, params.Updated)
	assert.False(t, params.Forced)
}

func TestReconcileIsIdempotent(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Add("Portal 2", "/games/portal2/portal2"))
	ns := make(chan models.Notification, 8)
	source := []steam.OwnedGame{{Name: "Portal 2", PlaytimeSeconds: 3600}}

	r := New(store, nil, ns)
	r.Reconcile(source, false)
	summary := r.Reconcile(source, false)

	assert.Equal(t, Summary{Matched: 1, Updated: 0}, summary)
	assert.InDelta(t, 3600, playtime(t, store, "Portal 2"), 0.001)
}

func TestReconcileOnlyDeltaAboveWatermarkLands(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Add("Portal 2", "/games/portal2/portal2"))
	// 1000 seconds already accumulated locally
	require.NoError(t, store.AddPlaytime("Portal 2", 1000))
	ns := make(chan models.Notification, 8)

	r := New(store, nil, ns)
	r.Reconcile([]steam.OwnedGame{{Name: "Portal 2", PlaytimeSeconds: 500}}, false)
	assert.InDelta(t, 1500, playtime(t, store, "Portal 2"), 0.001)

	// source advanced by 100 since the last import
	r.Reconcile([]steam.OwnedGame{{Name: "Portal 2", PlaytimeSeconds: 600}}, false)
	assert.InDelta(t, 1600, playtime(t, store, "Portal 2"), 0.001)
}

func TestReconcileNeverDecreasesWithoutForce(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Add("Portal 2", "/games/portal2/portal2"))
	ns := make(chan models.Notification, 8)

	r := New(store, nil, ns)
	r.Reconcile([]steam.OwnedGame{{Name: "Portal 2", PlaytimeSeconds: 3600}}, false)

	// source reporting less than the watermark must not shrink local time
	summary := r.Reconcile([]steam.OwnedGame{{Name: "Portal 2", PlaytimeSeconds: 1800}}, false)
	assert.Equal(t, Summary{Matched: 1, Updated: 0}, summary)
	assert.InDelta(t, 3600, playtime(t, store, "Portal 2"), 0.001)
}

func TestReconcileForceOverwrites(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Add("Portal 2", "/games/portal2/portal2"))
	require.NoError(t, store.AddPlaytime("Portal 2", 9999))
	ns := make(chan models.Notification, 8)

	r := New(store, nil, ns)
	summary := r.Reconcile([]steam.OwnedGame{{Name: "Portal 2", PlaytimeSeconds: 1800}}, true)

	assert.Equal(t, Summary{Matched: 1, Updated: 1}, summary)
	assert.InDelta(t, 1800, playtime(t, store, "Portal 2"), 0.001)

	done := <-ns
	require.Equal(t, models.NotificationReconcileCompleted, done.Method)
	assert.True(t, done.Params.(models.ReconcileCompletedParams).Forced)
}

func TestReconcileMatchesFuzzyNames(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Add("CS2", "/games/cs2/cs2"))
	ns := make(chan models.Notification, 8)

	r := New(store, nil, ns)
	summary := r.Reconcile([]steam.OwnedGame{
		{Name: "Counter-Strike 2", PlaytimeSeconds: 7200},
	}, false)

	assert.Equal(t, Summary{Matched: 1, Updated: 1}, summary)
	assert.InDelta(t, 7200, playtime(t, store, "CS2"), 0.001)
}

func TestReconcileIgnoresUnmatchedGames(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.Add("Obscure Indie Game", "/games/indie/indie"))
	ns := make(chan models.Notification, 8)

	r := New(store, nil, ns)
	summary := r.Reconcile([]steam.OwnedGame{
		{Name: "Portal 2", PlaytimeSeconds: 3600},
		{Name: "Half-Life", PlaytimeSeconds: 1200},
	}, false)

	assert.Equal(t, Summary{}, summary)
	assert.InDelta(t, 0, playtime(t, store, "Obscure Indie Game"), 0.001)
}
