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

package helpers

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

const appName = "plunder"

// DataDir returns the directory used for profiles, the registry and logs.
// Respects XDG conventions on every platform.
func DataDir() string {
	return filepath.Join(xdg.DataHome, appName)
}

// CacheDir returns the directory used for scraped metadata and images.
func CacheDir() string {
	return filepath.Join(xdg.CacheHome, appName)
}

// ConfigDir returns the directory holding config.toml.
func ConfigDir() string {
	return filepath.Join(xdg.ConfigHome, appName)
}

// NormalizePath canonicalizes an executable path for identity comparisons:
// cleaned, forward slashes, lowercased. Process presence matching and registry
// duplicate checks must agree on this form.
func NormalizePath(path string) string {
	p := filepath.Clean(path)
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.ToLower(p)
}

// SanitizeName converts a game name into a form safe for use as a cache
// filename.
func SanitizeName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.ReplaceAll(s, " ", "_")
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_' || r == '-' || r == '.':
			b.WriteRune(r)
		default:
			// drop anything the filesystem might object to
		}
	}
	return b.String()
}
