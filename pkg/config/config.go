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
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PlunderProject/plunder-core/pkg/helpers/syncutil"
	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

const (
	SchemaVersion = 1
	CfgFile       = "config.toml"
	CfgEnv        = "PLUNDER_CFG"
)

type Values struct {
	Service      Service `toml:"service,omitempty"`
	Tracker      Tracker `toml:"tracker,omitempty"`
	Steam        Steam   `toml:"steam,omitempty"`
	ConfigSchema int     `toml:"config_schema"`
	DebugLogging bool    `toml:"debug_logging"`
}

// Service holds the settings the original launcher kept in settings.json.
type Service struct {
	Profile              string `toml:"profile,omitempty"`
	RecentlyPlayedFormat string `toml:"recently_played_format,omitempty"`
	AutoRefresh          bool   `toml:"auto_refresh"`
	ShowToast            bool   `toml:"show_toast"`
}

// Tracker configures the playtime accumulation loop.
type Tracker struct {
	PollInterval string `toml:"poll_interval,omitempty"`
	Overlay      bool   `toml:"overlay"`
}

// Steam holds the last-used Steam Web API credentials.
type Steam struct {
	SteamID64 string `toml:"last_steamid64,omitempty"`
	APIKey    string `toml:"last_steam_apikey,omitempty"`
	Dir       string `toml:"dir,omitempty"`
}

var BaseDefaults = Values{
	ConfigSchema: SchemaVersion,
	Service: Service{
		Profile:              "Default",
		AutoRefresh:          true,
		ShowToast:            true,
		RecentlyPlayedFormat: "relative",
	},
	Tracker: Tracker{
		Overlay: true,
	},
}

type Instance struct {
	cfgPath  string
	vals     Values
	defaults Values
	mu       syncutil.RWMutex
}

// NewConfig loads config.toml from configDir, creating it with defaults when
// missing. The PLUNDER_CFG environment variable overrides the file path.
func NewConfig(configDir string, defaults Values) (*Instance, error) {
	cfgPath := filepath.Join(configDir, CfgFile)
	if env, ok := os.LookupEnv(CfgEnv); ok && env != "" {
		cfgPath = env
	}

	cfg := Instance{
		cfgPath:  cfgPath,
		vals:     defaults,
		defaults: defaults,
	}

	err := cfg.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	return &cfg, nil
}

func (c *Instance) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if _, err := os.Stat(c.cfgPath); errors.Is(err, os.ErrNotExist) {
		log.Info().Str("path", c.cfgPath).Msg("no config file found, writing defaults")
		c.vals = c.defaults
		return c.saveLocked()
	}

	data, err := os.ReadFile(c.cfgPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	newVals := c.defaults
	err = toml.Unmarshal(data, &newVals)
	if err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}

	if newVals.ConfigSchema > SchemaVersion {
		return fmt.Errorf("config schema %d is newer than supported %d",
			newVals.ConfigSchema, SchemaVersion)
	}
	newVals.ConfigSchema = SchemaVersion

	c.vals = newVals
	return nil
}

func (c *Instance) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saveLocked()
}

// saveLocked writes the config through a temp file so a crash mid-write can't
// truncate the existing file. Caller must hold the write lock.
func (c *Instance) saveLocked() error {
	if c.cfgPath == "" {
		return errors.New("config path not set")
	}

	if err := os.MkdirAll(filepath.Dir(c.cfgPath), 0o750); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := toml.Marshal(&c.vals)
	if err != nil {
		return fmt.Errorf("error marshalling config: %w", err)
	}

	tmp := c.cfgPath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	if err := os.Rename(tmp, c.cfgPath); err != nil {
		return fmt.Errorf("error renaming config file: %w", err)
	}

	return nil
}

// Watch reloads the config when the file changes on disk, until ctx is
// cancelled. External edits show up on the next getter call.
func (c *Instance) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("error creating config watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(c.cfgPath)); err != nil {
		closeErr := watcher.Close()
		if closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing config watcher")
		}
		return fmt.Errorf("error watching config directory: %w", err)
	}

	go func() {
		defer func() {
			if closeErr := watcher.Close(); closeErr != nil {
				log.Warn().Err(closeErr).Msg("error closing config watcher")
			}
		}()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != c.cfgPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if err := c.Load(); err != nil {
					log.Error().Err(err).Msg("error reloading changed config")
				} else {
					log.Info().Msg("config reloaded from disk")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Warn().Err(err).Msg("config watcher error")
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (c *Instance) DebugLogging() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.vals.DebugLogging
}

func (c *Instance) SetDebugLogging(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals.DebugLogging = enabled
}
