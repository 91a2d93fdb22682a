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

package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
)

const profilesFile = "profiles.json"

var (
	ErrProfileExists   = errors.New("profile already exists")
	ErrProfileNotFound = errors.New("profile not found")
	ErrLastProfile     = errors.New("cannot delete the last profile")
)

// Profiles lists the known profile names. A missing profiles.json means only
// the Default profile exists.
func Profiles(fs afero.Fs, dataDir string) ([]string, error) {
	path := filepath.Join(dataDir, profilesFile)
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error checking profiles file: %w", err)
	}
	if !exists {
		return []string{"Default"}, nil
	}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("error reading profiles file: %w", err)
	}
	var profiles []string
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, fmt.Errorf("error parsing profiles file: %w", err)
	}
	if len(profiles) == 0 {
		profiles = []string{"Default"}
	}
	return profiles, nil
}

func saveProfiles(fs afero.Fs, dataDir string, profiles []string) error {
	data, err := json.MarshalIndent(profiles, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshalling profiles: %w", err)
	}
	if err := fs.MkdirAll(dataDir, 0o750); err != nil {
		return fmt.Errorf("error creating data directory: %w", err)
	}
	path := filepath.Join(dataDir, profilesFile)
	if err := afero.WriteFile(fs, path, data, 0o600); err != nil {
		return fmt.Errorf("error writing profiles file: %w", err)
	}
	return nil
}

// CreateProfile adds a new, empty profile.
func CreateProfile(fs afero.Fs, dataDir, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("profile name is empty")
	}

	profiles, err := Profiles(fs, dataDir)
	if err != nil {
		return err
	}
	if slices.Contains(profiles, name) {
		return ErrProfileExists
	}
	return saveProfiles(fs, dataDir, append(profiles, name))
}

// DeleteProfile removes a profile and its registry file. The last remaining
// profile cannot be deleted.
func DeleteProfile(fs afero.Fs, dataDir, name string) error {
	profiles, err := Profiles(fs, dataDir)
	if err != nil {
		return err
	}
	if len(profiles) <= 1 {
		return ErrLastProfile
	}

	i := slices.Index(profiles, name)
	if i < 0 {
		return ErrProfileNotFound
	}
	profiles = slices.Delete(profiles, i, i+1)
	if err := saveProfiles(fs, dataDir, profiles); err != nil {
		return err
	}

	gamesFile := filepath.Join(dataDir, fmt.Sprintf("%s_games.json", name))
	if exists, _ := afero.Exists(fs, gamesFile); exists {
		if err := fs.Remove(gamesFile); err != nil {
			return fmt.Errorf("error removing profile registry: %w", err)
		}
	}
	return nil
}
