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

package service

import (
	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/PlunderProject/plunder-core/pkg/helpers/syncutil"
	"github.com/rs/zerolog/log"
)

// Broker is the cross-thread update queue: the loop, reconciler and scraper
// produce notifications onto one source channel, and the broker fans them
// out to subscribers. The UI drains its subscription on its own thread and
// never gets touched directly by the core. Sends to subscribers are
// non-blocking so a slow consumer cannot stall the loop.
type Broker struct {
	source      <-chan models.Notification
	subscribers map[int]chan models.Notification
	nextID      int
	mu          syncutil.RWMutex
}

// NewBroker creates a broker reading from the source channel. The broker
// runs until the channel closes; the owner of the channel controls shutdown.
func NewBroker(source <-chan models.Notification) *Broker {
	return &Broker{
		source:      source,
		subscribers: make(map[int]chan models.Notification),
	}
}

// Start begins the broadcast loop in a goroutine. The loop drains the source
// until it closes, so notifications buffered during shutdown (session flush
// events) still reach subscribers before their channels close.
func (b *Broker) Start() {
	go func() {
		for notif := range b.source {
			b.broadcast(notif)
		}
		log.Debug().Msg("broker: source channel closed")
		b.closeAllSubscribers()
	}()
}

func (b *Broker) broadcast(notif models.Notification) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subscribers {
		select {
		case ch <- notif:
		default:
			log.Warn().
				Int("subscriber_id", id).
				Str("method", notif.Method).
				Msg("subscriber channel full, dropping notification")
		}
	}
}

// Subscribe registers a consumer and returns its channel plus an id for
// unsubscribing.
func (b *Broker) Subscribe(bufferSize int) (notifChan <-chan models.Notification, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id = b.nextID
	b.nextID++

	ch := make(chan models.Notification, bufferSize)
	b.subscribers[id] = ch

	log.Debug().Int("subscriber_id", id).Msg("new subscriber registered")
	notifChan = ch
	return
}

// Unsubscribe removes a subscription and closes its channel. Safe to call
// repeatedly with the same id.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[id]; ok {
		delete(b.subscribers, id)
		close(ch)
	}
}

func (b *Broker) closeAllSubscribers() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		delete(b.subscribers, id)
		close(ch)
	}
}
