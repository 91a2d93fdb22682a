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

// Package steam talks to the two Steam surfaces the core needs: the Web API
// as the authoritative external playtime source, and the local install's VDF
// files for discovering installed titles.
package steam

import "errors"

// Outcome categories for GetOwnedGames. Callers distinguish these with
// errors.Is; anything else is a transport or decoding failure.
var (
	// ErrPrivateProfile means the profile's game details are not public.
	ErrPrivateProfile = errors.New("steam profile is private")
	// ErrInvalidKey means the Web API rejected the key or SteamID.
	ErrInvalidKey = errors.New("steam api key or steamid rejected")
	// ErrEmptyLibrary means the call succeeded but the account owns no games.
	ErrEmptyLibrary = errors.New("steam library is empty")
)

// OwnedGame is one title from the authoritative playtime source. Playtime is
// converted from the API's minutes to seconds at this boundary.
type OwnedGame struct {
	Name            string
	AppID           int
	PlaytimeSeconds float64
}

// InstalledGame is one title found in a local Steam library.
type InstalledGame struct {
	Name       string
	InstallDir string
	AppID      int
}
