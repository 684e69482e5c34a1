// Zaparoo Launcher
// Copyright (c) 2026 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Zaparoo Launcher.
//
// Zaparoo Launcher is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Zaparoo Launcher is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Zaparoo Launcher.  If not, see <http://www.gnu.org/licenses/>.

// Package broker fans the launcher's notification stream out to any number
// of consumers. Sends never block: a consumer that falls behind loses
// notifications rather than stalling the session supervisor.
package broker

import (
	"context"

	"github.com/ZaparooProject/zaparoo-launcher/pkg/helpers/syncutil"
	"github.com/ZaparooProject/zaparoo-launcher/pkg/notifications"
	"github.com/rs/zerolog/log"
)

type subscriber struct {
	ch      chan notifications.Notification
	dropped int
}

type Broker struct {
	ctx    context.Context
	source <-chan notifications.Notification
	done   chan struct{}
	subs   map[int]*subscriber
	nextID int
	closed bool
	mu     syncutil.Mutex
}

func NewBroker(ctx context.Context, source <-chan notifications.Notification) *Broker {
	return &Broker{
		ctx:    ctx,
		source: source,
		done:   make(chan struct{}),
		subs:   make(map[int]*subscriber),
	}
}

// Start runs the broadcast loop until the source closes or the context is
// cancelled, then closes every subscriber channel.
func (b *Broker) Start() {
	go func() {
		defer close(b.done)
		for {
			select {
			case n, ok := <-b.source:
				if !ok {
					log.Debug().Msg("broker: source closed")
					b.Stop()
					return
				}
				b.broadcast(n)
			case <-b.ctx.Done():
				log.Debug().Msg("broker: context cancelled")
				b.Stop()
				return
			}
		}
	}()
}

// Done is closed once the broadcast loop has exited.
func (b *Broker) Done() <-chan struct{} {
	return b.done
}

func (b *Broker) broadcast(n notifications.Notification) {
	log.Debug().Str("method", n.Method).Interface("params", n.Params).Msg("notification")

	b.mu.Lock()
	defer b.mu.Unlock()

	for id, sub := range b.subs {
		select {
		case sub.ch <- n:
		default:
			sub.dropped++
			log.Warn().
				Int("subscriber", id).
				Int("dropped", sub.dropped).
				Str("method", n.Method).
				Msg("broker: subscriber full, dropping notification")
		}
	}
}

// Subscribe registers a consumer with a buffer of size notifications. The
// returned channel is closed by Unsubscribe or when the broker stops.
func (b *Broker) Subscribe(size int) (<-chan notifications.Notification, int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++

	ch := make(chan notifications.Notification, size)
	if b.closed {
		close(ch)
		return ch, id
	}
	b.subs[id] = &subscriber{ch: ch}
	log.Debug().Int("subscriber", id).Int("size", size).Msg("broker: subscribed")
	return ch, id
}

// Unsubscribe removes a consumer. Unknown IDs are ignored.
func (b *Broker) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	close(sub.ch)
	log.Debug().Int("subscriber", id).Msg("broker: unsubscribed")
}

// Dropped returns how many notifications a consumer has missed.
func (b *Broker) Dropped(id int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		return sub.dropped
	}
	return 0
}

// Stop closes every subscriber channel. Later subscriptions get a closed
// channel.
func (b *Broker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		close(sub.ch)
		delete(b.subs, id)
	}
}
