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
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/PlunderProject/plunder-core/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
)

const defaultBaseURL = "https://api.steampowered.com"

// Client calls the Steam Web API.
type Client struct {
	client  *httpclient.Client
	baseURL string
}

// NewClient creates a Steam Web API client.
func NewClient() *Client {
	return &Client{
		client:  httpclient.NewClientWithTimeout(30 * time.Second),
		baseURL: defaultBaseURL,
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint, used by
// tests.
func NewClientWithBaseURL(base string) *Client {
	return &Client{
		client:  httpclient.NewClientWithTimeout(30 * time.Second),
		baseURL: base,
	}
}

type ownedGamesResponse struct {
	Response struct {
		GameCount *int `json:"game_count"`
		Games     []struct {
			Name            string `json:"name"`
			AppID           int    `json:"appid"`
			PlaytimeForever int    `json:"playtime_forever"`
		} `json:"games"`
	} `json:"response"`
}

// GetOwnedGames fetches the account's owned games with cumulative playtime.
// Failure categories: ErrInvalidKey for a rejected key or SteamID,
// ErrPrivateProfile when game details are hidden, ErrEmptyLibrary when the
// account owns nothing; any other error is transport/decoding. A single
// blocking round trip; the caller decides the goroutine.
func (c *Client) GetOwnedGames(ctx context.Context, steamID64, apiKey string) ([]OwnedGame, error) {
	q := url.Values{}
	q.Set("key", apiKey)
	q.Set("steamid", steamID64)
	q.Set("include_appinfo", "1")
	q.Set("include_played_free_games", "1")
	q.Set("format", "json")
	reqURL := fmt.Sprintf("%s/IPlayerService/GetOwnedGames/v1/?%s", c.baseURL, q.Encode())

	resp, err := c.client.Get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("steam api request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("error closing steam api response body")
		}
	}()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to decode
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrInvalidKey
	default:
		return nil, fmt.Errorf("steam api returned status %d", resp.StatusCode)
	}

	var body ownedGamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("error decoding steam api response: %w", err)
	}

	// A private profile answers 200 with an empty response object, no
	// game_count at all. An empty but public library has game_count 0.
	if body.Response.GameCount == nil {
		return nil, ErrPrivateProfile
	}
	if *body.Response.GameCount == 0 {
		return nil, ErrEmptyLibrary
	}

	games := make([]OwnedGame, 0, len(body.Response.Games))
	for _, g := range body.Response.Games {
		games = append(games, OwnedGame{
			Name:            g.Name,
			AppID:           g.AppID,
			PlaytimeSeconds: float64(g.PlaytimeForever) * 60,
		})
	}

	log.Debug().Int("games", len(games)).Msg("steam: fetched owned games")
	return games, nil
}
