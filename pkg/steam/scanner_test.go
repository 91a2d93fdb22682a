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
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// newSteamLibrary lays out a minimal Steam library on disk and returns its
// steamapps directory.
func newSteamLibrary(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	steamapps := filepath.Join(root, "steamapps")

	writeFile(t, filepath.Join(steamapps, "libraryfolders.vdf"), fmt.Sprintf(`
"libraryfolders"
{
	"0"
	{
		"path"		"%s"
	}
}
`, root))

	writeFile(t, filepath.Join(steamapps, "appmanifest_620.acf"), `
"AppState"
{
	"appid"		"620"
	"name"		"Portal 2"
	"installdir"	"Portal 2"
}
`)
	writeFile(t, filepath.Join(steamapps, "appmanifest_730.acf"), `
"AppState"
{
	"appid"		"730"
	"name"		"Counter-Strike 2"
	"installdir"	"Counter-Strike Global Offensive"
}
`)
	// a manifest missing its name must be skipped, not fail the scan
	writeFile(t, filepath.Join(steamapps, "appmanifest_999.acf"), `
"AppState"
{
	"appid"		"999"
	"installdir"	"Broken"
}
`)
	return steamapps
}

func TestScanInstalled(t *testing.T) {
	t.Parallel()

	steamapps := newSteamLibrary(t)
	games, err := ScanInstalled(steamapps)
	require.NoError(t, err)
	require.Len(t, games, 2)

	byID := make(map[int]InstalledGame, len(games))
	for _, g := range games {
		byID[g.AppID] = g
	}

	portal, ok := byID[620]
	require.True(t, ok)
	assert.Equal(t, "Portal 2", portal.Name)
	assert.Equal(t, filepath.Join(steamapps, "common", "Portal 2"), portal.InstallDir)

	cs, ok := byID[730]
	require.True(t, ok)
	assert.Equal(t, "Counter-Strike 2", cs.Name)
}

func TestScanInstalledMissingLibraryFile(t *testing.T) {
	t.Parallel()

	// no libraryfolders.vdf: empty result, not an error
	games, err := ScanInstalled(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestReadAppManifestRejectsBadAppID(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "appmanifest_x.acf")
	writeFile(t, path, `
"AppState"
{
	"appid"		"not-a-number"
	"name"		"Game"
	"installdir"	"Game"
}
`)
	_, ok := readAppManifest(path)
	assert.False(t, ok)
}

func TestFindSteamAppsDirPrefersConfigured(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "/custom/steamapps", FindSteamAppsDir("/custom/steamapps"))
}
