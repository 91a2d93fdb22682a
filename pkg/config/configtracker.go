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
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultPollInterval is the presence sampling period of the accumulation loop.
const DefaultPollInterval = 1 * time.Second

// Profile returns the name of the active profile.
func (c *Instance) Profile() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Service.Profile == "" {
		return "Default"
	}
	return c.vals.Service.Profile
}

func (c *Instance) SetProfile(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Service.Profile = name
}

func (c *Instance) AutoRefresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.AutoRefresh
}

func (c *Instance) ShowToast() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.ShowToast
}

func (c *Instance) RecentlyPlayedFormat() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Service.RecentlyPlayedFormat
}

// PollInterval returns the accumulation loop's sampling period.
// Falls back to the 1 second default if unset or unparseable.
func (c *Instance) PollInterval() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.vals.Tracker.PollInterval == "" {
		return DefaultPollInterval
	}
	d, err := time.ParseDuration(c.vals.Tracker.PollInterval)
	if err != nil || d <= 0 {
		return DefaultPollInterval
	}
	return d
}

// OverlayEnabled returns true if the "now playing" overlay presenter may be
// attached at all. Per-game opt-in is on the GameRecord.
func (c *Instance) OverlayEnabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Tracker.Overlay
}

// SteamDir returns the configured Steam install dir, empty for autodetect.
func (c *Instance) SteamDir() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Steam.Dir
}

// SteamCredentials returns the last-used SteamID64 and Web API key.
func (c *Instance) SteamCredentials() (steamID, apiKey string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.Steam.SteamID64, c.vals.Steam.APIKey
}

type steamCredentials struct {
	SteamID64 string `validate:"required,numeric,len=17"`
	APIKey    string `validate:"required,hexadecimal,len=32"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// SetSteamCredentials validates and stores the Steam Web API credentials.
// A validation failure is reported back to the caller as a plain error for
// display, never as something fatal.
func (c *Instance) SetSteamCredentials(steamID, apiKey string) error {
	creds := steamCredentials{SteamID64: steamID, APIKey: apiKey}
	if err := validate.Struct(&creds); err != nil {
		return fmt.Errorf("invalid steam credentials: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.Steam.SteamID64 = steamID
	c.vals.Steam.APIKey = apiKey
	return nil
}
