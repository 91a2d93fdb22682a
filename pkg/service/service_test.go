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

package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/PlunderProject/plunder-core/pkg/config"
	"github.com/PlunderProject/plunder-core/pkg/database/registry"
	"github.com/PlunderProject/plunder-core/pkg/scraper"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestService(t *testing.T) (*Service, afero.Fs) {
	t.Helper()

	cfg, err := config.NewConfig(t.TempDir(), config.BaseDefaults)
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	svc, err := New(cfg, fs, "/data", "/cache", clockwork.NewFakeClock())
	require.NoError(t, err)
	return svc, fs
}

func TestServiceStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _ := newTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Start(ctx))
	assert.Error(t, svc.Start(ctx))
	assert.Equal(t, "Default", svc.Store().Profile())

	svc.Stop()
	// a second stop is a no-op
	svc.Stop()
}

func TestServiceSubscribersSeeRegistryChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _ := newTestService(t)
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	require.NoError(t, svc.Store().Add("Quake", "/games/quake/quake-bin"))

	rec, err := svc.Store().Get("Quake")
	require.NoError(t, err)
	assert.Equal(t, "/games/quake/quake-bin", rec.ExecutablePath)
}

func TestServiceSwitchProfile(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, fs := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	defer svc.Stop()

	require.NoError(t, svc.Store().Add("Quake", "/games/quake/quake-bin"))
	require.NoError(t, registry.CreateProfile(fs, "/data", "Kids"))

	require.NoError(t, svc.SwitchProfile(ctx, "Kids"))
	assert.Equal(t, "Kids", svc.Store().Profile())
	assert.Empty(t, svc.Store().List())

	// switching to the already active profile is a no-op
	require.NoError(t, svc.SwitchProfile(ctx, "Kids"))

	require.NoError(t, svc.SwitchProfile(ctx, "Default"))
	games := svc.Store().List()
	require.Len(t, games, 1)
	assert.Equal(t, "Quake", games[0].Name)
}

func TestServiceSwitchProfileUnknown(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _ := newTestService(t)
	ctx := context.Background()
	require.NoError(t, svc.Start(ctx))
	defer svc.Stop()

	err := svc.SwitchProfile(ctx, "Nope")
	assert.ErrorIs(t, err, registry.ErrProfileNotFound)
	assert.Equal(t, "Default", svc.Store().Profile())
}

func TestServiceSwitchProfileRequiresStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, fs := newTestService(t)
	require.NoError(t, registry.CreateProfile(fs, "/data", "Kids"))

	err := svc.SwitchProfile(context.Background(), "Kids")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestServiceProfileManagement(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _ := newTestService(t)
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	require.NoError(t, svc.CreateProfile("Kids"))
	profiles, err := svc.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"Default", "Kids"}, profiles)

	assert.Error(t, svc.DeleteProfile("Default"))
	require.NoError(t, svc.DeleteProfile("Kids"))

	profiles, err = svc.Profiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"Default"}, profiles)
}

func TestServiceAddGameRequiresStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _ := newTestService(t)
	err := svc.AddGame(context.Background(), "Quake", "/games/quake/quake-bin")
	assert.ErrorIs(t, err, ErrNotStarted)
}

func TestServiceStopWaitsForMetadataLookup(t *testing.T) {
	defer goleak.VerifyNone(t)

	// the lookup blocks until the gate opens, holding the metadata producer
	// in flight while Stop runs
	gate := make(chan struct{})
	mux := http.NewServeMux()
	mux.HandleFunc("/search/", func(w http.ResponseWriter, _ *http.Request) {
		<-gate
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	svc, fs := newTestService(t)
	svc.scraper = scraper.NewProviderWithEndpoints(fs, "/cache",
		srv.URL+"/search", srv.URL+"/details")

	require.NoError(t, svc.Start(context.Background()))
	ch, _ := svc.Subscribe(8)

	require.NoError(t, svc.AddGame(context.Background(), "Quake", "/games/quake/quake-bin"))

	stopped := make(chan struct{})
	go func() {
		svc.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("Stop returned while the metadata lookup was still in flight")
	case <-time.After(100 * time.Millisecond):
	}

	close(gate)

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return after the metadata lookup finished")
	}

	// the lookup's result went out before the channel closed
	var methods []string
	for n := range ch {
		methods = append(methods, n.Method)
	}
	assert.Contains(t, methods, models.NotificationMetadataUpdated)
}

func TestServiceReconcileWithoutCredentials(t *testing.T) {
	defer goleak.VerifyNone(t)

	svc, _ := newTestService(t)
	require.NoError(t, svc.Start(context.Background()))
	defer svc.Stop()

	_, err := svc.ReconcileSteam(context.Background(), false)
	assert.Error(t, err)
}
