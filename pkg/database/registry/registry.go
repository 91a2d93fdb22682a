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

// Package registry is the durable collection of tracked games for a profile,
// persisted as an ordered JSON document ({profile}_games.json). All access is
// serialized through the store's mutex: the accumulation loop and foreground
// operations both write through here, which makes the store the single writer
// of the profile file.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PlunderProject/plunder-core/pkg/helpers"
	"github.com/PlunderProject/plunder-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

var (
	ErrNotFound  = errors.New("game not found")
	ErrDuplicate = errors.New("game already added")
)

// Platform labels derived from the executable path.
const (
	PlatformSteam   = "Steam"
	PlatformXbox    = "Xbox"
	PlatformPirated = "Pirated"
)

// GameRecord is one tracked title. Name is the primary key within a profile.
type GameRecord struct {
	LastLaunch           *time.Time `json:"last_launch,omitempty"`
	Name                 string     `json:"name"`
	ExecutablePath       string     `json:"path"`
	PlaytimeSeconds      float64    `json:"playtime_seconds"`
	SteamImportedSeconds float64    `json:"steam_imported_seconds"`
	Favorite             bool       `json:"favorite"`
	OverlayEnabled       bool       `json:"overlay_enabled"`
}

// Platform classifies a record by its executable path.
func (g *GameRecord) Platform() string {
	p := strings.ToLower(g.ExecutablePath)
	switch {
	case strings.Contains(p, "steam") && strings.Contains(p, "steamapps"):
		return PlatformSteam
	case strings.Contains(p, "xboxgames"):
		return PlatformXbox
	default:
		return PlatformPirated
	}
}

// Store owns the GameRecords of one loaded profile.
type Store struct {
	fs      afero.Fs
	dataDir string
	profile string
	games   []GameRecord
	mu      syncutil.RWMutex
}

// Open loads the registry file for the named profile, creating an empty
// registry when the file does not exist yet.
func Open(fs afero.Fs, dataDir, profile string) (*Store, error) {
	s := &Store{
		fs:      fs,
		dataDir: dataDir,
		profile: profile,
	}

	path := s.filePath(profile)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error checking registry file: %w", err)
	}
	if !exists {
		log.Info().Str("profile", profile).Msg("no registry file, starting empty")
		return s, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading registry file: %w", err)
	}
	if err := json.Unmarshal(data, &s.games); err != nil {
		return nil, fmt.Errorf("error parsing registry file: %w", err)
	}

	log.Info().Str("profile", profile).Int("games", len(s.games)).Msg("registry loaded")
	return s, nil
}

func (s *Store) filePath(profile string) string {
	return filepath.Join(s.dataDir, fmt.Sprintf("%s_games.json", profile))
}

// Profile returns the profile this store was opened for.
func (s *Store) Profile() string {
	return s.profile
}

// save writes the registry file through a temp file. Caller must hold the
// write lock. A failed write leaves in-memory state authoritative.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.games, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshalling registry: %w", err)
	}

	if err := s.fs.MkdirAll(s.dataDir, 0o750); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}

	path := s.filePath(s.profile)
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o600); err != nil {
		return fmt.Errorf("error writing registry file: %w", err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		return fmt.Errorf("error renaming registry file: %w", err)
	}
	return nil
}

// List returns a copy of all records sorted by name, case-insensitive.
func (s *Store) List() []GameRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]GameRecord, len(s.games))
	copy(out, s.games)
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}

// Get returns a copy of the named record. Name comparison is
// case-insensitive.
func (s *Store) Get(name string) (GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(name)
	if i < 0 {
		return GameRecord{}, ErrNotFound
	}
	return s.games[i], nil
}

// indexOf returns the position of the named record, -1 when absent.
// Caller must hold at least the read lock.
func (s *Store) indexOf(name string) int {
	for i := range s.games {
		if strings.EqualFold(s.games[i].Name, name) {
			return i
		}
	}
	return -1
}

// Paths returns the distinct normalized executable paths of all records, the
// input for a presence scan.
func (s *Store) Paths() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{}, len(s.games))
	paths := make([]string, 0, len(s.games))
	for i := range s.games {
		p := helpers.NormalizePath(s.games[i].ExecutablePath)
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	return paths
}

// Add registers a new game with defaults applied. Duplicate names and
// duplicate executable paths are rejected.
func (s *Store) Add(name, executablePath string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("game name is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexOf(name) >= 0 {
		return ErrDuplicate
	}
	norm := helpers.NormalizePath(executablePath)
	for i := range s.games {
		if helpers.NormalizePath(s.games[i].ExecutablePath) == norm {
			return ErrDuplicate
		}
	}

	s.games = append(s.games, GameRecord{
		Name:           name,
		ExecutablePath: executablePath,
	})
	return s.save()
}

// Remove deletes the named record. The caller is responsible for discarding
// any transient session state held for it.
func (s *Store) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	s.games = append(s.games[:i], s.games[i+1:]...)
	return s.save()
}

// SetFavorite flips the user-set favorite flag.
func (s *Store) SetFavorite(name string, favorite bool) error {
	return s.update(name, func(g *GameRecord) {
		g.Favorite = favorite
	})
}

// SetOverlayEnabled flips the per-game overlay opt-in.
func (s *Store) SetOverlayEnabled(name string, enabled bool) error {
	return s.update(name, func(g *GameRecord) {
		g.OverlayEnabled = enabled
	})
}

// ResetPlaytime zeroes the accumulator and the import watermark. The only
// operation allowed to decrease PlaytimeSeconds.
func (s *Store) ResetPlaytime(name string) error {
	return s.update(name, func(g *GameRecord) {
		g.PlaytimeSeconds = 0
		g.SteamImportedSeconds = 0
		g.LastLaunch = nil
	})
}

// SetLastLaunch records the start of a session.
func (s *Store) SetLastLaunch(name string, t time.Time) error {
	return s.update(name, func(g *GameRecord) {
		g.LastLaunch = &t
	})
}

// AddPlaytime folds a completed session's duration into the accumulator.
// Negative deltas are ignored.
func (s *Store) AddPlaytime(name string, deltaSeconds float64) error {
	if deltaSeconds < 0 {
		return nil
	}
	return s.update(name, func(g *GameRecord) {
		g.PlaytimeSeconds += deltaSeconds
	})
}

// ApplyImport merges an external cumulative playtime figure. With force the
// source value overwrites the accumulator; otherwise only the delta above the
// watermark is added, never decreasing PlaytimeSeconds. The watermark always
// advances to the source value. Reports whether PlaytimeSeconds changed.
func (s *Store) ApplyImport(name string, sourceSeconds float64, force bool) (bool, error) {
	changed := false
	err := s.update(name, func(g *GameRecord) {
		if force {
			changed = g.PlaytimeSeconds != sourceSeconds
			g.PlaytimeSeconds = sourceSeconds
		} else {
			delta := sourceSeconds - g.SteamImportedSeconds
			if delta > 0 {
				g.PlaytimeSeconds += delta
				changed = true
			}
		}
		g.SteamImportedSeconds = sourceSeconds
	})
	return changed, err
}

func (s *Store) update(name string, fn func(*GameRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(name)
	if i < 0 {
		return ErrNotFound
	}
	fn(&s.games[i])
	return s.save()
}
