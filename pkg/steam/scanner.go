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

package steam

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"
)

// ScanInstalled discovers installed Steam titles by walking every library
// listed in libraryfolders.vdf and reading its app manifests. steamDir should
// point to the steamapps directory; errors reading a single library or
// manifest skip that entry rather than failing the scan.
func ScanInstalled(steamDir string) ([]InstalledGame, error) {
	var results []InstalledGame

	//nolint:gosec // Safe: reads Steam config files for game library scanning
	f, err := os.Open(filepath.Join(steamDir, "libraryfolders.vdf"))
	if err != nil {
		log.Error().Err(err).Msg("error opening libraryfolders.vdf")
		return results, nil
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing libraryfolders.vdf")
		}
	}()

	p := vdf.NewParser(f)
	m, err := p.Parse()
	if err != nil {
		log.Error().Err(err).Msg("error parsing libraryfolders.vdf")
		return results, nil
	}
	m = normalizeVDFKeys(m)

	lfs, ok := m["libraryfolders"].(map[string]any)
	if !ok {
		log.Error().Msg("libraryfolders is not a map")
		return results, nil
	}

	for id, v := range lfs {
		lib, ok := v.(map[string]any)
		if !ok {
			continue
		}
		libraryPath, ok := lib["path"].(string)
		if !ok {
			log.Error().Msgf("library %s path is not a string", id)
			continue
		}

		appsDir := filepath.Join(libraryPath, "steamapps")
		entries, err := os.ReadDir(appsDir)
		if err != nil {
			log.Error().Err(err).Msg("error listing steamapps folder")
			continue
		}

		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasPrefix(name, "appmanifest_") || !strings.HasSuffix(name, ".acf") {
				continue
			}
			game, ok := readAppManifest(filepath.Join(appsDir, name))
			if !ok {
				continue
			}
			game.InstallDir = filepath.Join(appsDir, "common", game.InstallDir)
			results = append(results, game)
		}
	}

	log.Info().Int("games", len(results)).Msg("steam: scanned installed games")
	return results, nil
}

// readAppManifest parses one appmanifest_*.acf into an InstalledGame. The
// returned InstallDir is the manifest's bare directory name.
func readAppManifest(path string) (InstalledGame, bool) {
	//nolint:gosec // Safe: reads Steam manifest files for game library scanning
	f, err := os.Open(path)
	if err != nil {
		log.Error().Err(err).Msgf("error opening manifest: %s", path)
		return InstalledGame{}, false
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing manifest file")
		}
	}()

	m, err := vdf.NewParser(f).Parse()
	if err != nil {
		log.Error().Err(err).Msgf("error parsing manifest: %s", path)
		return InstalledGame{}, false
	}
	m = normalizeVDFKeys(m)

	state, ok := m["appstate"].(map[string]any)
	if !ok {
		return InstalledGame{}, false
	}

	name, _ := state["name"].(string)
	installDir, _ := state["installdir"].(string)
	appIDStr, _ := state["appid"].(string)
	appID, err := strconv.Atoi(appIDStr)
	if err != nil || name == "" || installDir == "" {
		return InstalledGame{}, false
	}

	return InstalledGame{
		AppID:      appID,
		Name:       name,
		InstallDir: installDir,
	}, true
}

// FindSteamAppsDir returns the default steamapps directory for this OS, or
// empty when no Steam install is found. A configured dir takes precedence
// over autodetection.
func FindSteamAppsDir(configured string) string {
	if configured != "" {
		return configured
	}

	var candidates []string
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	switch runtime.GOOS {
	case "windows":
		candidates = []string{
			`C:\Program Files (x86)\Steam\steamapps`,
		}
	case "darwin":
		candidates = []string{
			filepath.Join(home, "Library", "Application Support", "Steam", "steamapps"),
		}
	default:
		candidates = []string{
			filepath.Join(home, ".steam", "steam", "steamapps"),
			filepath.Join(home, ".local", "share", "Steam", "steamapps"),
		}
	}

	for _, dir := range candidates {
		if _, err := os.Stat(dir); err == nil {
			return dir
		}
	}
	return ""
}
