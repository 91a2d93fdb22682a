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
	"fmt"
	"testing"
	"time"

	"github.com/PlunderProject/plunder-core/pkg/api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestBrokerFansOutToAllSubscribers(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := make(chan models.Notification)
	b := NewBroker(source)
	b.Start()

	first, _ := b.Subscribe(8)
	second, _ := b.Subscribe(8)

	source <- models.Notification{Method: models.NotificationRegistryUpdated}

	for _, ch := range []<-chan models.Notification{first, second} {
		select {
		case n := <-ch:
			assert.Equal(t, models.NotificationRegistryUpdated, n.Method)
		case <-time.After(5 * time.Second):
			t.Fatal("subscriber did not receive notification")
		}
	}

	close(source)
}

func TestBrokerClosesSubscribersWhenSourceCloses(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := make(chan models.Notification)
	b := NewBroker(source)
	b.Start()

	ch, _ := b.Subscribe(8)
	close(source)

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber channel was not closed")
	}
}

func TestBrokerDeliversBufferedNotificationsBeforeClosing(t *testing.T) {
	defer goleak.VerifyNone(t)

	// notifications queued during shutdown (session flush events) must reach
	// subscribers before their channels close
	source := make(chan models.Notification, 8)
	b := NewBroker(source)

	ch, _ := b.Subscribe(8)

	for i := 0; i < 3; i++ {
		source <- models.Notification{Method: fmt.Sprintf("flush-%d", i)}
	}
	close(source)

	b.Start()

	for i := 0; i < 3; i++ {
		select {
		case n := <-ch:
			assert.Equal(t, fmt.Sprintf("flush-%d", i), n.Method)
		case <-time.After(5 * time.Second):
			t.Fatal("buffered notification was not delivered")
		}
	}

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("subscriber channel was not closed")
	}
}

func TestBrokerUnsubscribeIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := make(chan models.Notification)
	b := NewBroker(source)
	b.Start()

	ch, id := b.Subscribe(8)
	b.Unsubscribe(id)
	b.Unsubscribe(id)

	_, ok := <-ch
	assert.False(t, ok)

	close(source)
}

func TestBrokerDropsWhenSubscriberIsFull(t *testing.T) {
	defer goleak.VerifyNone(t)

	source := make(chan models.Notification)
	b := NewBroker(source)
	b.Start()

	ch, _ := b.Subscribe(1)

	// the second send finds the buffer full and is dropped, not blocked on
	source <- models.Notification{Method: "first"}
	source <- models.Notification{Method: "second"}
	source <- models.Notification{Method: "third"}

	require.Equal(t, "first", (<-ch).Method)

	close(source)
	// whatever remains buffered is at most one of the later sends
	var remaining int
	for range ch {
		remaining++
	}
	assert.LessOrEqual(t, remaining, 1)
}
