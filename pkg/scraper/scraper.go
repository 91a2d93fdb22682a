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

// Package scraper is the best-effort metadata enrichment provider: given a
// game name it returns title, description, appid and a cached cover image,
// or not-found. Results are cached as one JSON document per sanitized game
// name so a lookup only ever hits the network once.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/PlunderProject/plunder-core/pkg/helpers"
	"github.com/PlunderProject/plunder-core/pkg/shared/httpclient"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
)

// ErrNotFound means no provider had metadata for the name. The caller keeps
// its placeholder and may retry later via explicit refresh.
var ErrNotFound = errors.New("no metadata found")

const (
	defaultSearchURL  = "https://steamcommunity.com/actions/SearchApps"
	defaultDetailsURL = "https://store.steampowered.com/api/appdetails"
)

// Metadata is the cached enrichment document for one game.
type Metadata struct {
	Title       string `json:"title"`
	Details     string `json:"details"`
	Description string `json:"description"`
	Image       string `json:"image"`
	AppID       int    `json:"appid,omitempty"`
}

// Provider looks up metadata via the Steam community app search with a
// storefront details call, the same chain the original launcher fell back
// to. Network-bound; callers run it off the interactive thread.
type Provider struct {
	fs         afero.Fs
	client     *httpclient.Client
	cacheDir   string
	searchURL  string
	detailsURL string
}

func NewProvider(fs afero.Fs, cacheDir string) *Provider {
	return &Provider{
		fs:         fs,
		client:     httpclient.NewClientWithTimeout(10 * time.Second),
		cacheDir:   cacheDir,
		searchURL:  defaultSearchURL,
		detailsURL: defaultDetailsURL,
	}
}

// NewProviderWithEndpoints is used by tests to point at stub servers.
func NewProviderWithEndpoints(fs afero.Fs, cacheDir, searchURL, detailsURL string) *Provider {
	p := NewProvider(fs, cacheDir)
	p.searchURL = searchURL
	p.detailsURL = detailsURL
	return p
}

// Lookup returns cached metadata when present, otherwise queries the
// provider chain and caches the result. A transient network failure is
// returned as an error distinct from ErrNotFound so callers can retry.
func (p *Provider) Lookup(ctx context.Context, name string) (Metadata, error) {
	if md, ok := p.cached(name); ok {
		return md, nil
	}

	md, err := p.lookupSteam(ctx, name)
	if err != nil {
		return Metadata{}, err
	}

	if err := p.writeCache(name, md); err != nil {
		log.Warn().Err(err).Str("game", name).Msg("scraper: failed to write metadata cache")
	}
	return md, nil
}

// Refresh drops the cached document for a name so the next Lookup hits the
// network again.
func (p *Provider) Refresh(name string) error {
	path := p.cachePath(name)
	exists, err := afero.Exists(p.fs, path)
	if err != nil || !exists {
		return err
	}
	if err := p.fs.Remove(path); err != nil {
		return fmt.Errorf("error removing metadata cache: %w", err)
	}
	return nil
}

func (p *Provider) cachePath(name string) string {
	return filepath.Join(p.cacheDir, helpers.SanitizeName(name)+"_info.json")
}

func (p *Provider) cached(name string) (Metadata, bool) {
	data, err := afero.ReadFile(p.fs, p.cachePath(name))
	if err != nil {
		return Metadata{}, false
	}
	var md Metadata
	if err := json.Unmarshal(data, &md); err != nil {
		log.Warn().Err(err).Str("game", name).Msg("scraper: corrupt metadata cache, ignoring")
		return Metadata{}, false
	}
	return md, true
}

func (p *Provider) writeCache(name string, md Metadata) error {
	data, err := json.MarshalIndent(md, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshalling metadata: %w", err)
	}
	if err := p.fs.MkdirAll(p.cacheDir, 0o750); err != nil {
		return fmt.Errorf("error creating cache directory: %w", err)
	}
	if err := afero.WriteFile(p.fs, p.cachePath(name), data, 0o600); err != nil {
		return fmt.Errorf("error writing metadata cache: %w", err)
	}
	return nil
}

type searchApp struct {
	Name  string `json:"name"`
	AppID string `json:"appid"`
}

type appDetails struct {
	Success bool `json:"success"`
	Data    struct {
		Name             string `json:"name"`
		ShortDescription string `json:"short_description"`
		HeaderImage      string `json:"header_image"`
	} `json:"data"`
}

func (p *Provider) lookupSteam(ctx context.Context, name string) (Metadata, error) {
	apps, err := p.searchApps(ctx, name)
	if err != nil {
		return Metadata{}, err
	}
	if len(apps) == 0 {
		return Metadata{}, ErrNotFound
	}

	// prefer an exact title match over the first search hit
	app := apps[0]
	for _, a := range apps {
		if strings.EqualFold(a.Name, name) {
			app = a
			break
		}
	}

	appID := app.AppID
	detailsURL := fmt.Sprintf("%s?appids=%s", p.detailsURL, url.QueryEscape(appID))
	resp, err := p.client.Get(ctx, detailsURL)
	if err != nil {
		return Metadata{}, fmt.Errorf("appdetails request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return Metadata{}, fmt.Errorf("appdetails returned status %d", resp.StatusCode)
	}

	var body map[string]appDetails
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Metadata{}, fmt.Errorf("error decoding appdetails response: %w", err)
	}

	details, ok := body[appID]
	if !ok || !details.Success || details.Data.Name == "" {
		return Metadata{}, ErrNotFound
	}

	md := Metadata{
		Title:       details.Data.Name,
		Description: details.Data.ShortDescription,
	}
	if id, err := parseAppID(appID); err == nil {
		md.AppID = id
	}

	if details.Data.HeaderImage != "" {
		imgPath, err := p.downloadImage(ctx, name, details.Data.HeaderImage)
		if err != nil {
			log.Warn().Err(err).Str("game", name).Msg("scraper: cover download failed")
		} else {
			md.Image = imgPath
		}
	}

	return md, nil
}

func (p *Provider) searchApps(ctx context.Context, name string) ([]searchApp, error) {
	searchURL := fmt.Sprintf("%s/%s", p.searchURL, url.PathEscape(name))
	resp, err := p.client.Get(ctx, searchURL)
	if err != nil {
		return nil, fmt.Errorf("app search request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("app search returned status %d", resp.StatusCode)
	}

	var apps []searchApp
	if err := json.NewDecoder(resp.Body).Decode(&apps); err != nil {
		return nil, fmt.Errorf("error decoding app search response: %w", err)
	}
	return apps, nil
}

// downloadImage fetches the cover into the cache dir and returns its path.
func (p *Provider) downloadImage(ctx context.Context, name, imageURL string) (string, error) {
	resp, err := p.client.Get(ctx, imageURL)
	if err != nil {
		return "", fmt.Errorf("image request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("image request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error reading image body: %w", err)
	}

	if err := p.fs.MkdirAll(p.cacheDir, 0o750); err != nil {
		return "", fmt.Errorf("error creating cache directory: %w", err)
	}
	path := filepath.Join(p.cacheDir, helpers.SanitizeName(name)+"_cover.jpg")
	if err := afero.WriteFile(p.fs, path, data, 0o600); err != nil {
		return "", fmt.Errorf("error writing image: %w", err)
	}
	return path, nil
}

func parseAppID(s string) (int, error) {
	var id int
	_, err := fmt.Sscanf(s, "%d", &id)
	if err != nil {
		return 0, fmt.Errorf("bad appid %q: %w", s, err)
	}
	return id, nil
}

func closeBody(body io.ReadCloser) {
	if err := body.Close(); err != nil {
		log.Warn().Err(err).Msg("error closing response body")
	}
}
