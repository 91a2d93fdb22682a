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

// Package service wires the core together: registry, accumulation loop,
// overlay, reconciler, scraper and the notification broker. Profile switches
// tear the loop down deterministically and recreate it against the new
// registry.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/PlunderProject/plunder-core/pkg/api/notifications"
	"github.com/PlunderProject/plunder-core/pkg/config"
	"github.com/PlunderProject/plunder-core/pkg/database/registry"
	"github.com/PlunderProject/plunder-core/pkg/helpers/syncutil"
	"github.com/PlunderProject/plunder-core/pkg/launcher"
	"github.com/PlunderProject/plunder-core/pkg/overlay"
	"github.com/PlunderProject/plunder-core/pkg/presence"
	"github.com/PlunderProject/plunder-core/pkg/reconcile"
	"github.com/PlunderProject/plunder-core/pkg/scraper"
	"github.com/PlunderProject/plunder-core/pkg/steam"
	"github.com/PlunderProject/plunder-core/pkg/tracker"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// notificationBuffer sizes the source channel between producers and the
// broker.
const notificationBuffer = 64

var ErrNotStarted = errors.New("service not started")

// Service owns all core state for one running instance.
type Service struct {
	cfg      *config.Instance
	fs       afero.Fs
	clock    clockwork.Clock
	dataDir  string
	cacheDir string

	ns      chan models.Notification
	broker  *Broker
	steam   *steam.Client
	scraper *scraper.Provider

	store      *registry.Store
	loop       *tracker.Loop
	overlay    *overlay.Presenter
	cancelLoop context.CancelFunc
	loopGroup  *errgroup.Group
	producers  sync.WaitGroup
	mu         syncutil.Mutex
}

// New builds a service against the given filesystem and directories. A nil
// clock means the real one.
func New(cfg *config.Instance, fs afero.Fs, dataDir, cacheDir string, clock clockwork.Clock) (*Service, error) {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	store, err := registry.Open(fs, dataDir, cfg.Profile())
	if err != nil {
		return nil, fmt.Errorf("error opening registry: %w", err)
	}

	return &Service{
		cfg:      cfg,
		fs:       fs,
		clock:    clock,
		dataDir:  dataDir,
		cacheDir: cacheDir,
		steam:    steam.NewClient(),
		scraper:  scraper.NewProvider(fs, cacheDir),
		store:    store,
	}, nil
}

// Start brings up the broker and the accumulation loop. Blocks only until
// everything is running.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ns != nil {
		return errors.New("service already started")
	}

	s.ns = make(chan models.Notification, notificationBuffer)
	s.broker = NewBroker(s.ns)
	s.broker.Start()

	s.startLoopLocked(ctx)
	log.Info().Str("profile", s.store.Profile()).Msg("service: started")
	return nil
}

// startLoopLocked creates and runs the accumulation loop for the current
// store. Caller must hold the service mutex.
func (s *Service) startLoopLocked(parent context.Context) {
	loopCtx, cancel := context.WithCancel(parent)
	s.cancelLoop = cancel

	s.overlay = overlay.NewPresenter(s.clock, s.ns)
	s.loop = tracker.NewLoop(s.cfg, s.store, presence.NewDetector(), s.overlay, s.ns, s.clock)

	g, gctx := errgroup.WithContext(loopCtx)
	s.loopGroup = g
	g.Go(func() error {
		return s.loop.Run(gctx)
	})
}

// stopLoopLocked cancels the loop and waits for its flush to complete.
// Caller must hold the service mutex.
func (s *Service) stopLoopLocked() {
	if s.cancelLoop == nil {
		return
	}
	s.cancelLoop()
	if err := s.loopGroup.Wait(); err != nil {
		log.Error().Err(err).Msg("service: loop exited with error")
	}
	s.cancelLoop = nil
	s.loop = nil
	s.overlay = nil
}

// Stop tears the service down: the loop flushes open sessions, in-flight
// producers finish their sends, then the notification channel closes so the
// broker drains it and releases its subscribers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ns == nil {
		return
	}
	s.stopLoopLocked()
	// the mutex held here blocks new producers from registering, so after
	// the wait no send can hit the closed channel
	s.producers.Wait()
	close(s.ns)
	s.ns = nil
	log.Info().Msg("service: stopped")
}

// acquireNotifier hands the notification channel to a producer and registers
// it so Stop waits for in-flight sends before closing the channel. release
// must be called exactly once when the producer is done sending.
func (s *Service) acquireNotifier() (ns chan<- models.Notification, release func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ns == nil {
		return nil, nil, ErrNotStarted
	}
	s.producers.Add(1)
	return s.ns, s.producers.Done, nil
}

// SwitchProfile flushes the current loop, loads the named profile's registry
// and restarts tracking against it.
func (s *Service) SwitchProfile(ctx context.Context, name string) error {
	profiles, err := registry.Profiles(s.fs, s.dataDir)
	if err != nil {
		return err
	}
	found := false
	for _, p := range profiles {
		if p == name {
			found = true
			break
		}
	}
	if !found {
		return registry.ErrProfileNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ns == nil {
		return ErrNotStarted
	}
	if name == s.store.Profile() {
		return nil
	}

	s.stopLoopLocked()

	store, err := registry.Open(s.fs, s.dataDir, name)
	if err != nil {
		// reopen the loop on the old store rather than leaving tracking dead
		s.startLoopLocked(ctx)
		return fmt.Errorf("error opening registry for profile %s: %w", name, err)
	}
	s.store = store

	s.cfg.SetProfile(name)
	if err := s.cfg.Save(); err != nil {
		log.Error().Err(err).Msg("service: error saving config after profile switch")
	}

	s.startLoopLocked(ctx)
	log.Info().Str("profile", name).Msg("service: switched profile")
	return nil
}

// CreateProfile adds a new empty profile without switching to it.
func (s *Service) CreateProfile(name string) error {
	return registry.CreateProfile(s.fs, s.dataDir, name)
}

// DeleteProfile removes a profile and its registry file. The active profile
// cannot be deleted.
func (s *Service) DeleteProfile(name string) error {
	s.mu.Lock()
	active := s.store.Profile()
	s.mu.Unlock()
	if name == active {
		return errors.New("cannot delete the active profile")
	}
	return registry.DeleteProfile(s.fs, s.dataDir, name)
}

// Profiles lists the known profile names.
func (s *Service) Profiles() ([]string, error) {
	return registry.Profiles(s.fs, s.dataDir)
}

// Store returns the registry for the active profile. Foreground operations
// (add, remove, favorite, reset) go straight through it; the store
// serializes writers.
func (s *Service) Store() *registry.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store
}

// Subscribe attaches a notification consumer.
func (s *Service) Subscribe(bufferSize int) (<-chan models.Notification, int) {
	return s.broker.Subscribe(bufferSize)
}

// Unsubscribe detaches a notification consumer.
func (s *Service) Unsubscribe(id int) {
	s.broker.Unsubscribe(id)
}

// AddGame registers a game and enriches it in the background. The metadata
// lookup result lands as a metadata.updated notification; Stop waits for the
// lookup before closing the channel.
func (s *Service) AddGame(ctx context.Context, name, path string) error {
	ns, release, err := s.acquireNotifier()
	if err != nil {
		return err
	}

	if err := s.Store().Add(name, path); err != nil {
		release()
		return err
	}
	notifications.RegistryUpdated(ns)

	go func() {
		defer release()
		_, err := s.scraper.Lookup(ctx, name)
		found := err == nil
		if err != nil && !errors.Is(err, scraper.ErrNotFound) {
			log.Warn().Err(err).Str("game", name).Msg("service: metadata lookup failed")
		}
		notifications.MetadataUpdated(ns, models.MetadataUpdatedParams{
			Name:  name,
			Found: found,
		})
	}()
	return nil
}

// LaunchGame starts the named game's executable. Session tracking picks the
// process up on the next presence sample; the handle is only awaited so the
// child is reaped.
func (s *Service) LaunchGame(name string) error {
	game, err := s.Store().Get(name)
	if err != nil {
		return err
	}

	handle, err := launcher.Launch(game.ExecutablePath)
	if err != nil {
		return err
	}

	go func() {
		if err := handle.Wait(); err != nil {
			log.Warn().Err(err).Str("game", name).Msg("service: error awaiting game process")
		}
	}()
	return nil
}

// ReconcileSteam fetches the account's owned games and merges their playtime
// into the registry. The returned error keeps the steam package's outcome
// categories so callers can tell a private profile from an empty library
// from a transport failure.
func (s *Service) ReconcileSteam(ctx context.Context, force bool) (reconcile.Summary, error) {
	ns, release, err := s.acquireNotifier()
	if err != nil {
		return reconcile.Summary{}, err
	}
	defer release()

	steamID, apiKey := s.cfg.SteamCredentials()
	if steamID == "" || apiKey == "" {
		return reconcile.Summary{}, errors.New("steam credentials not configured")
	}

	owned, err := s.steam.GetOwnedGames(ctx, steamID, apiKey)
	if err != nil {
		return reconcile.Summary{}, err
	}

	r := reconcile.New(s.Store(), nil, ns)
	return r.Reconcile(owned, force), nil
}

// ScanSteamLibrary lists installed Steam titles for registration.
func (s *Service) ScanSteamLibrary() ([]steam.InstalledGame, error) {
	dir := steam.FindSteamAppsDir(s.cfg.SteamDir())
	if dir == "" {
		return nil, errors.New("no steam install found")
	}
	return steam.ScanInstalled(dir)
}
