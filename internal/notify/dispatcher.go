// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package notify

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/metrics"
)

const (
	// Topic carries every outbound notification.
	Topic = "notifications.outbound"

	// DefaultBuffer is how many notifications may wait for delivery before
	// new ones are dropped.
	DefaultBuffer = 1024

	metaType       = "type"
	metaRecipients = "recipients"
	metaBroadcast  = "broadcast"
)

// Deliverer pushes encoded frames to connected users.
type Deliverer interface {
	SendToUsers(msg []byte, ids []int64) int
	BroadcastAll(msg []byte) int
}

// Dispatcher turns domain events into notification frames.
//
// Posting methods never block: a frame goes into a bounded outbox and is
// dropped with a warning when the outbox is full. Serve forwards the outbox
// onto the watermill topic in order and delivers what it receives there.
type Dispatcher struct {
	pubsub    *gochannel.GoChannel
	deliverer Deliverer
	outbox    chan *message.Message

	closeOnce sync.Once
}

// NewDispatcher creates a Dispatcher delivering through d. buffer <= 0 uses
// DefaultBuffer.
func NewDispatcher(d Deliverer, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            int64(buffer),
			BlockPublishUntilSubscriberAck: true,
		},
		watermill.NewSlogLogger(logging.NewSlogLogger()),
	)
	return &Dispatcher{
		pubsub:    pubsub,
		deliverer: d,
		outbox:    make(chan *message.Message, buffer),
	}
}

// String implements fmt.Stringer for supervisor logs.
func (d *Dispatcher) String() string {
	return "notification-dispatcher"
}

// PhotoProcessed tells the uploader and tagged users the photo is ready.
func (d *Dispatcher) PhotoProcessed(photoID, uploaderID int64, tagged []int64, thumbnailURL string) {
	d.post(processedEnvelope(photoID, thumbnailURL), recipients(uploaderID, tagged), false)
}

// PhotoFailed tells the uploader and tagged users processing failed.
func (d *Dispatcher) PhotoFailed(photoID, uploaderID int64, tagged []int64) {
	d.post(failedEnvelope(photoID), recipients(uploaderID, tagged), false)
}

// LikeUpdate broadcasts a like toggle to everyone connected.
func (d *Dispatcher) LikeUpdate(photoID int64, likesCount int, liked bool, userID int64) {
	d.post(likeEnvelope(photoID, likesCount, liked, userID), nil, true)
}

func (d *Dispatcher) post(envelope any, to []int64, broadcast bool) {
	msgType := envelopeType(envelope)

	payload, err := json.Marshal(envelope)
	if err != nil {
		logging.Error().Err(err).Str("type", msgType).Msg("Failed to encode notification")
		return
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	msg.Metadata.Set(metaType, msgType)
	if broadcast {
		msg.Metadata.Set(metaBroadcast, "true")
	} else {
		msg.Metadata.Set(metaRecipients, encodeIDs(to))
	}

	select {
	case d.outbox <- msg:
	default:
		metrics.RecordNotification(msgType, "dropped")
		logging.Warn().Str("type", msgType).Int("buffer", cap(d.outbox)).Msg("Notification buffer full, dropping message")
	}
}

func envelopeType(envelope any) string {
	switch e := envelope.(type) {
	case ProcessedEnvelope:
		return e.Type
	case LikeEnvelope:
		return e.Type
	}
	return "unknown"
}

// Serve subscribes to the topic and delivers until ctx is cancelled.
func (d *Dispatcher) Serve(ctx context.Context) error {
	msgs, err := d.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", Topic, err)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.forward(ctx)
	}()
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("notification subscription closed")
			}
			d.deliver(msg)
			msg.Ack()
		}
	}
}

// forward publishes outbox entries one at a time. Publish waits for the
// subscriber's ack, so delivery order matches posting order.
func (d *Dispatcher) forward(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-d.outbox:
			if err := d.pubsub.Publish(Topic, msg); err != nil {
				logging.Warn().Err(err).Str("type", msg.Metadata.Get(metaType)).Msg("Failed to publish notification")
			}
		}
	}
}

func (d *Dispatcher) deliver(msg *message.Message) {
	msgType := msg.Metadata.Get(metaType)

	var delivered int
	if msg.Metadata.Get(metaBroadcast) == "true" {
		delivered = d.deliverer.BroadcastAll(msg.Payload)
	} else {
		ids, err := decodeIDs(msg.Metadata.Get(metaRecipients))
		if err != nil {
			logging.Error().Err(err).Str("type", msgType).Msg("Invalid notification recipients")
			return
		}
		delivered = d.deliverer.SendToUsers(msg.Payload, ids)
	}

	outcome := "delivered"
	if delivered == 0 {
		outcome = "offline"
	}
	metrics.RecordNotification(msgType, outcome)
	logging.Debug().Str("type", msgType).Int("connections", delivered).Msg("Notification delivered")
}

// Pending returns how many notifications wait in the outbox.
func (d *Dispatcher) Pending() int {
	return len(d.outbox)
}

// Close shuts down the underlying pub/sub.
func (d *Dispatcher) Close() error {
	var err error
	d.closeOnce.Do(func() { err = d.pubsub.Close() })
	return err
}

func encodeIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func decodeIDs(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("recipient %q: %w", p, err)
		}
		ids[i] = id
	}
	return ids, nil
}
