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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigWritesDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	assert.Equal(t, "Default", cfg.Profile())
	assert.True(t, cfg.OverlayEnabled())
	assert.True(t, cfg.AutoRefresh())
	assert.True(t, cfg.ShowToast())
	assert.Equal(t, "relative", cfg.RecentlyPlayedFormat())

	_, err = os.Stat(filepath.Join(dir, CfgFile))
	assert.NoError(t, err)
}

func TestSaveAndReload(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)

	cfg.SetProfile("Kids")
	cfg.SetDebugLogging(true)
	require.NoError(t, cfg.Save())

	reloaded, err := NewConfig(dir, BaseDefaults)
	require.NoError(t, err)
	assert.Equal(t, "Kids", reloaded.Profile())
	assert.True(t, reloaded.DebugLogging())
}

func TestPollInterval(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want time.Duration
	}{
		{name: "unset falls back", raw: "", want: DefaultPollInterval},
		{name: "valid duration", raw: "250ms", want: 250 * time.Millisecond},
		{name: "garbage falls back", raw: "soon", want: DefaultPollInterval},
		{name: "non-positive falls back", raw: "-5s", want: DefaultPollInterval},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defaults := BaseDefaults
			defaults.Tracker.PollInterval = tt.raw

			cfg, err := NewConfig(t.TempDir(), defaults)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.PollInterval())
		})
	}
}

func TestSetSteamCredentials(t *testing.T) {
	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)

	err = cfg.SetSteamCredentials(
		"76561198012345678",
		"0123456789abcdef0123456789ABCDEF",
	)
	require.NoError(t, err)

	id, key := cfg.SteamCredentials()
	assert.Equal(t, "76561198012345678", id)
	assert.Equal(t, "0123456789abcdef0123456789ABCDEF", key)

	assert.Error(t, cfg.SetSteamCredentials("1234", "0123456789abcdef0123456789ABCDEF"))
	assert.Error(t, cfg.SetSteamCredentials("76561198012345678", "not-a-key"))
	assert.Error(t, cfg.SetSteamCredentials("7656119801234567x", "0123456789abcdef0123456789ABCDEF"))

	// failed updates must not clobber the stored values
	id, key = cfg.SteamCredentials()
	assert.Equal(t, "76561198012345678", id)
	assert.Equal(t, "0123456789abcdef0123456789ABCDEF", key)
}

func TestLoadRejectsNewerSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, CfgFile)
	require.NoError(t, os.WriteFile(path, []byte("config_schema = 99\n"), 0o600))

	_, err := NewConfig(dir, BaseDefaults)
	assert.Error(t, err)
}

func TestCfgEnvOverridesPath(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.toml")
	t.Setenv(CfgEnv, custom)

	cfg, err := NewConfig(t.TempDir(), BaseDefaults)
	require.NoError(t, err)
	require.NoError(t, cfg.Save())

	_, err = os.Stat(custom)
	assert.NoError(t, err)
}
