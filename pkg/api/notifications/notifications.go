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

package notifications

import "github.com/PlunderProject/plunder-core/pkg/api/models"

func SessionStarted(ns chan<- models.Notification, payload models.SessionStartedParams) {
	ns <- models.Notification{
		Method: models.NotificationSessionStarted,
		Params: payload,
	}
}

func SessionEnded(ns chan<- models.Notification, payload models.SessionEndedParams) {
	ns <- models.Notification{
		Method: models.NotificationSessionEnded,
		Params: payload,
	}
}

func ActiveGameChanged(ns chan<- models.Notification, payload models.ActiveGameChangedParams) {
	ns <- models.Notification{
		Method: models.NotificationActiveGameChanged,
		Params: payload,
	}
}

func OverlayUpdated(ns chan<- models.Notification, payload models.OverlayUpdatedParams) {
	ns <- models.Notification{
		Method: models.NotificationOverlayUpdated,
		Params: payload,
	}
}

func ReconcileCompleted(ns chan<- models.Notification, payload models.ReconcileCompletedParams) {
	ns <- models.Notification{
		Method: models.NotificationReconcileCompleted,
		Params: payload,
	}
}

func MetadataUpdated(ns chan<- models.Notification, payload models.MetadataUpdatedParams) {
	ns <- models.Notification{
		Method: models.NotificationMetadataUpdated,
		Params: payload,
	}
}

func RegistryUpdated(ns chan<- models.Notification) {
	ns <- models.Notification{
		Method: models.NotificationRegistryUpdated,
	}
}

func WriteFailed(ns chan<- models.Notification, payload models.WriteFailedParams) {
	ns <- models.Notification{
		Method: models.NotificationWriteFailed,
		Params: payload,
	}
}
