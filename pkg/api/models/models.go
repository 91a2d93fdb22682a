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

// Package models defines the notification types published by the core for UI
// front ends to consume.
package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationSessionStarted     = "session.started"
	NotificationSessionEnded       = "session.ended"
	NotificationActiveGameChanged  = "active.changed"
	NotificationOverlayUpdated     = "overlay.updated"
	NotificationReconcileCompleted = "reconcile.completed"
	NotificationMetadataUpdated    = "metadata.updated"
	NotificationRegistryUpdated    = "registry.updated"
	NotificationWriteFailed        = "registry.writeFailed"
)

// Notification is a single event published on the core's notification channel.
// Params is one of the *Params types below, keyed by Method.
type Notification struct {
	Params any
	Method string
}

// SessionStartedParams is sent when a tracked game's process appears.
type SessionStartedParams struct {
	StartedAt time.Time `json:"startedAt"`
	Name      string    `json:"name"`
	SessionID uuid.UUID `json:"sessionId"`
}

// SessionEndedParams is sent when a tracked game's process exits. DeltaSeconds
// is the length of the session just folded into the game's playtime.
type SessionEndedParams struct {
	EndedAt      time.Time `json:"endedAt"`
	Name         string    `json:"name"`
	SessionID    uuid.UUID `json:"sessionId"`
	DeltaSeconds float64   `json:"deltaSeconds"`
	TotalSeconds float64   `json:"totalSeconds"`
}

// ActiveGameChangedParams carries the name of the game now considered active
// for status display. Name is empty when nothing is running.
type ActiveGameChangedParams struct {
	Name string `json:"name"`
}

// OverlayUpdatedParams carries the refreshed "now playing" readout text.
type OverlayUpdatedParams struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// ReconcileCompletedParams summarizes an external playtime merge.
type ReconcileCompletedParams struct {
	Matched int  `json:"matched"`
	Updated int  `json:"updated"`
	Forced  bool `json:"forced"`
}

// MetadataUpdatedParams is sent when the scraper finishes a lookup for a game.
type MetadataUpdatedParams struct {
	Name  string `json:"name"`
	Found bool   `json:"found"`
}

// WriteFailedParams surfaces a registry persistence failure to the UI.
// In-memory state remains authoritative for the rest of the session.
type WriteFailedParams struct {
	Profile string `json:"profile"`
	Error   string `json:"error"`
}
