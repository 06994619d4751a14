// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package inbox consumes the gateway notification queue for the chat view:
// every received notification is converted, acknowledged by receipt id and
// filtered for duplicates.
package inbox

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/logging"
	"github.com/jeranaias/greenchat-tui/internal/metrics"
	"github.com/jeranaias/greenchat-tui/internal/model"
)

// DefaultBatch is how many notifications one Poll consumes at most.
const DefaultBatch = 20

// Receiver is the part of the gateway client the poller needs.
type Receiver interface {
	ReceiveNotification(ctx context.Context, inst gateway.Instance) (*gateway.Notification, error)
	DeleteNotification(ctx context.Context, inst gateway.Instance, receiptID int64) (bool, error)
}

// Event is one consumed notification worth showing.
type Event struct {
	Type    string         // gateway webhook type
	Message *model.Message // set for message webhooks
	State   gateway.State  // set for stateInstanceChanged
}

// Poller consumes notifications for one instance.
type Poller struct {
	gw     Receiver
	inst   gateway.Instance
	dedupe *Deduper
	batch  int
	logger *slog.Logger
}

// NewPoller creates a poller remembering dedupeSize message ids.
func NewPoller(gw Receiver, inst gateway.Instance, dedupeSize int) (*Poller, error) {
	d, err := NewDeduper(dedupeSize)
	if err != nil {
		return nil, err
	}
	return &Poller{gw: gw, inst: inst, dedupe: d, batch: DefaultBatch, logger: logging.Discard()}, nil
}

// WithLogger sets the logger.
func (p *Poller) WithLogger(l *slog.Logger) *Poller {
	if l != nil {
		p.logger = l
	}
	return p
}

// WithBatch sets the per-Poll notification cap.
func (p *Poller) WithBatch(n int) *Poller {
	if n > 0 {
		p.batch = n
	}
	return p
}

// Dedupe returns the poller's deduper, so history loads can seed it.
func (p *Poller) Dedupe() *Deduper { return p.dedupe }

// Poll consumes notifications until the queue is empty or the batch cap is
// reached. Events gathered before an error are returned with it.
func (p *Poller) Poll(ctx context.Context) ([]Event, error) {
	var events []Event
	for i := 0; i < p.batch; i++ {
		n, err := p.gw.ReceiveNotification(ctx, p.inst)
		if err != nil {
			return events, fmt.Errorf("receive notification: %w", err)
		}
		if n == nil {
			return events, nil
		}

		ev, keep := p.convert(n)

		ok, err := p.gw.DeleteNotification(ctx, p.inst, n.ReceiptID)
		if err != nil {
			// The notification stays queued and comes back; let it through
			// then.
			if ev.Message != nil {
				p.dedupe.Forget(ev.Message.ID)
			}
			return events, fmt.Errorf("delete notification %d: %w", n.ReceiptID, err)
		}
		if !ok {
			p.logger.Warn("notification not deleted", "receipt_id", n.ReceiptID)
		}

		if keep {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (p *Poller) convert(n *gateway.Notification) (Event, bool) {
	w, err := n.Webhook()
	if err != nil {
		p.logger.Warn("undecodable notification", "receipt_id", n.ReceiptID, "error", err)
		metrics.NotificationsTotal.WithLabelValues("undecodable").Inc()
		return Event{}, false
	}
	metrics.NotificationsTotal.WithLabelValues(w.TypeWebhook).Inc()

	switch {
	case w.TypeWebhook == gateway.TypeStateInstanceChanged:
		return Event{Type: w.TypeWebhook, State: w.StateInstance}, true

	case w.IsMessage():
		msg, ok := MessageFromWebhook(w)
		if !ok {
			return Event{}, false
		}
		if p.dedupe.Seen(msg.ID) {
			p.logger.Debug("duplicate message dropped", "id", msg.ID)
			return Event{}, false
		}
		return Event{Type: w.TypeWebhook, Message: msg}, true
	}

	p.logger.Debug("notification ignored", "type", w.TypeWebhook)
	return Event{}, false
}
